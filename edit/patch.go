// Package edit defines the generalized patch format the mutation API emits
// and the recorder that turns a patch stream into a replayable script.
// A patch is a single edit with node references that may be symbolic
// ("$0", "$1", ...) or composite wrapper ids built from symbolic parts
// ("w-$1", "$1_w"), so a recorded script can be replayed against a
// different starting node.
package edit

import (
	"encoding/json"
	"fmt"

	"github.com/krsion/MyDenicek-sub001/dom"
)

type Action string

const (
	Insert Action = "insert"
	Put    Action = "put"
	Del    Action = "del"
	Move   Action = "move"
	Splice Action = "splice"
	Copy   Action = "copy"
)

// Segment is one step of a patch path: a node id or a child index.
// It encodes as a JSON string or number.
type Segment struct {
	ID      string
	Index   int
	IsIndex bool
}

func Node(id dom.NodeID) Segment { return Segment{ID: string(id)} }
func Idx(i int) Segment          { return Segment{Index: i, IsIndex: true} }

func (s Segment) MarshalJSON() ([]byte, error) {
	if s.IsIndex {
		return json.Marshal(s.Index)
	}
	return json.Marshal(s.ID)
}

func (s *Segment) UnmarshalJSON(d []byte) error {
	var i int
	if err := json.Unmarshal(d, &i); err == nil {
		*s = Segment{Index: i, IsIndex: true}
		return nil
	}
	var str string
	if err := json.Unmarshal(d, &str); err != nil {
		return fmt.Errorf("path segment must be a string or an index: %w", err)
	}
	*s = Segment{ID: str}
	return nil
}

type Path []Segment

// Value carries the action-specific payload of a patch. Only the fields
// meaningful for the action are set.
type Value struct {
	// insert
	Node *Literal `json:"node,omitempty"`
	// put
	Field string `json:"field,omitempty"`
	Raw   any    `json:"raw,omitempty"`
	// move destination; Parent may be symbolic
	Parent string `json:"parent,omitempty"`
	Index  int    `json:"index,omitempty"`
	// splice
	Offset int    `json:"offset,omitempty"`
	Text   string `json:"text,omitempty"`
	// copy source; replay re-reads its current value, no snapshot
	Source string `json:"sourceId,omitempty"`
}

// Patch is one recorded edit.
//
//   - insert: path [parent, index], value.node is the literal; a symbolic
//     node id binds the created id during replay
//   - put:    path [node], value.field and value.raw
//   - del:    path [node]
//   - move:   path [node], value.parent and value.index
//   - splice: path [node], value.offset, value.text, length = deleted count
//   - copy:   path [parent, index], value.sourceId
type Patch struct {
	Action Action `json:"action"`
	Path   Path   `json:"path"`
	Value  *Value `json:"value,omitempty"`
	Length int    `json:"length,omitempty"`
}

// EncodeScript serializes a script in the stable wire format.
func EncodeScript(script []Patch) ([]byte, error) {
	return json.Marshal(script)
}

func DecodeScript(d []byte) ([]Patch, error) {
	if len(d) == 0 {
		return nil, nil
	}
	var script []Patch
	if err := json.Unmarshal(d, &script); err != nil {
		return nil, fmt.Errorf("decoding script: %w", err)
	}
	return script, nil
}

func (p Patch) clone() Patch {
	out := p
	out.Path = append(Path(nil), p.Path...)
	if p.Value != nil {
		v := *p.Value
		if p.Value.Node != nil {
			n := *p.Value.Node
			v.Node = &n
		}
		out.Value = &v
	}
	return out
}
