// Package store provides the replicated tree primitive the document core is
// layered on: a single-rooted tree of identified nodes plus an opaque note
// log, materialized from an append-only operation log. Replicas exchange ops;
// state is the fold of all known ops in the deterministic total order of
// their causal stamps, so any two replicas holding the same op set agree on
// every read. The core consumes the narrow Tree interface and never reaches
// into merge mechanics; Memory is the reference implementation.
package store

import (
	"github.com/krsion/MyDenicek-sub001/causal"
	"github.com/krsion/MyDenicek-sub001/dom"
)

// Event describes a change to the tree. Remote is true when the change
// arrived through Merge rather than a local operation.
type Event struct {
	Remote bool
	// Ops holds the operations the event covers.
	Ops []Op
}

// Tree is the replicated tree primitive. All structural guarantees -
// operation delivery, causal metadata, one resolved position per node -
// live behind this interface; any compliant backing store can substitute
// for Memory.
type Tree interface {
	// Root returns the fixed root node id.
	Root() dom.NodeID

	// Create creates a node under parent at index. An empty id lets the
	// store assign one; creating an id that already exists is a no-op
	// (concurrent deterministic creations collapse to one node).
	Create(parent, id dom.NodeID, index int, data dom.Data) (dom.NodeID, error)
	// Move re-parents a node. Moves that would break the tree shape are
	// dropped by the fold, not rejected.
	Move(id, parent dom.NodeID, index int) error
	// Delete marks a node dead. Dead nodes stay in the log but disappear
	// from reads.
	Delete(id dom.NodeID) error
	// Put sets one data field, see the Field* constants.
	Put(id dom.NodeID, field string, value any) error
	// Splice edits a value node's text buffer.
	Splice(id dom.NodeID, off, del int, text string) error

	// Data returns a copy of a live node's payload.
	Data(id dom.NodeID) (dom.Data, bool)
	// Children returns the live children of a node in replicated order.
	Children(id dom.NodeID) []dom.NodeID
	// Parent returns the parent of a live non-root node.
	Parent(id dom.NodeID) (dom.NodeID, bool)
	// Stamp returns the creation stamp of a node for causal comparison.
	Stamp(id dom.NodeID) (causal.Stamp, bool)

	// Note appends an opaque payload to the replicated note log.
	Note(payload []byte) error
	// Notes returns the note log in deterministic total order.
	Notes() []Note

	// Subscribe registers a callback fired after local operations and
	// after merges.
	Subscribe(fn func(Event))
}
