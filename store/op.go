package store

import (
	"github.com/krsion/MyDenicek-sub001/causal"
	"github.com/krsion/MyDenicek-sub001/dom"
)

// OpKind enumerates the replicated operation kinds.
type OpKind string

const (
	OpCreate OpKind = "create"
	OpMove   OpKind = "move"
	OpDel    OpKind = "del"
	OpPut    OpKind = "put"
	OpSplice OpKind = "splice"
	// OpNote appends an opaque payload to the replicated note log.
	// The document core uses notes to replicate transformation records.
	OpNote OpKind = "note"
)

// Op is one replicated operation. Ops are append-only; state is the fold
// of all known ops in the deterministic total order of their stamps.
type Op struct {
	Stamp causal.Stamp `json:"stamp"`
	Kind  OpKind       `json:"kind"`

	Node   dom.NodeID `json:"node,omitempty"`
	Parent dom.NodeID `json:"parent,omitempty"`
	Index  int        `json:"index,omitempty"`
	Data   *dom.Data  `json:"data,omitempty"`

	// put
	Field string `json:"field,omitempty"`
	Value any    `json:"value,omitempty"`

	// splice
	Off  int    `json:"off,omitempty"`
	Del  int    `json:"del,omitempty"`
	Text string `json:"text,omitempty"`

	// note
	Payload []byte `json:"payload,omitempty"`
}

// Put field names. Attribute and version fields carry a suffix after the
// prefix: "attr.href", "ver.<scopeKey>".
const (
	FieldTag    = "tag"
	FieldText   = "text"
	FieldOp     = "op"
	FieldLabel  = "label"
	FieldTarget = "target"
	FieldScript = "script"

	AttrPrefix    = "attr."
	VersionPrefix = "ver."
)

// Note is one entry of the replicated note log.
type Note struct {
	Stamp   causal.Stamp
	Payload []byte
}
