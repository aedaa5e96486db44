// Package denicek is a replicated tree-structured document: replicas
// mutate their copy independently and converge after exchanging operations,
// without a coordinator. The document layers domain semantics on the
// replicated store primitive: transactional mutations emitting generalized
// patches, recording and replay of patch scripts, schema-level
// transformations, and post-merge cleanup of concurrently created
// structure.
package denicek

import (
	"fmt"
	"sync"

	"github.com/krsion/MyDenicek-sub001/causal"
	"github.com/krsion/MyDenicek-sub001/dom"
	"github.com/krsion/MyDenicek-sub001/edit"
	"github.com/krsion/MyDenicek-sub001/index"
	"github.com/krsion/MyDenicek-sub001/store"
	"github.com/krsion/MyDenicek-sub001/xform"
)

// RootID is the fixed id of every document's root node.
const RootID dom.NodeID = "root"

// Document is one replica's copy of a shared document. All local mutations
// go through Update; merges from peers go through Merge. Reads observe the
// last built index snapshot.
type Document struct {
	mu     sync.Mutex
	tree   *store.Memory
	idx    *index.Index
	rec    *edit.Recorder
	engine *xform.Engine

	patchSubs []func(edit.Patch)

	evMu       sync.Mutex
	pending    []store.Event
	changeSubs []func(remote bool)
}

// New creates a replica of a document with the given root payload. All
// replicas of one document must use the same root payload. An empty replica
// id gets a generated one.
func New(replica string, root dom.Data) *Document {
	tree := store.NewMemory(replica, RootID, root)
	d := &Document{tree: tree}
	d.engine = xform.New(tree)
	d.idx = index.Build(tree)
	tree.Subscribe(d.enqueue)
	return d
}

// Replica returns this replica's id.
func (d *Document) Replica() string { return d.tree.Replica() }

// Root returns the root node id.
func (d *Document) Root() dom.NodeID { return RootID }

// Index returns the current index snapshot. The snapshot is immutable;
// successive calls may return different snapshots.
func (d *Document) Index() *index.Index {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.idx
}

// GetNode returns a node's payload.
func (d *Document) GetNode(id dom.NodeID) (dom.Data, error) {
	data, ok := d.Index().Node(id)
	if !ok {
		return dom.Data{}, fmt.Errorf("get %q: %w", id, dom.ErrNodeNotFound)
	}
	return data, nil
}

// GetChildIDs returns a node's children in replicated order.
func (d *Document) GetChildIDs(id dom.NodeID) ([]dom.NodeID, error) {
	x := d.Index()
	if !x.Has(id) {
		return nil, fmt.Errorf("children of %q: %w", id, dom.ErrNodeNotFound)
	}
	return x.ChildrenOf(id), nil
}

// GetParentID returns a node's parent; the root has none.
func (d *Document) GetParentID(id dom.NodeID) (dom.NodeID, error) {
	x := d.Index()
	if !x.Has(id) {
		return dom.None, fmt.Errorf("parent of %q: %w", id, dom.ErrNodeNotFound)
	}
	p, _ := x.ParentOf(id)
	return p, nil
}

// WalkDepthFirst traverses the document pre-order from the root. The
// callback returns whether to descend; traversal is finite and restartable.
func (d *Document) WalkDepthFirst(f func(id dom.NodeID, depth int) (bool, error)) error {
	x := d.Index()
	return x.Visit(x.Root(), f)
}

// GeneralizeSelection infers a selector covering "nodes like the selected
// ones"; see xform.Generalize.
func (d *Document) GeneralizeSelection(ids []dom.NodeID) (*xform.Selection, error) {
	return xform.Generalize(d.Index(), ids)
}

// RecordStart opens a recording window capturing every patch emitted by
// subsequent mutations.
func (d *Document) RecordStart() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.rec = edit.NewRecorder()
}

// RecordStop closes the recording window and returns the generalized
// script. Without a prior RecordStart it returns nil.
func (d *Document) RecordStop() []edit.Patch {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.rec == nil {
		return nil
	}
	script := d.rec.Script()
	d.rec = nil
	return script
}

// OnPatch registers a callback receiving every patch emitted by local
// mutations.
func (d *Document) OnPatch(fn func(edit.Patch)) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.patchSubs = append(d.patchSubs, fn)
}

// OnChange registers a callback fired after each committed transaction,
// merge, replay or reconciliation that produced operations. The events
// come off the store's subscription stream; remote reports whether any of
// them originated on another replica. Callbacks run outside the document
// lock.
func (d *Document) OnChange(fn func(remote bool)) {
	d.evMu.Lock()
	defer d.evMu.Unlock()
	d.changeSubs = append(d.changeSubs, fn)
}

// Ops returns the full operation log in total order, for snapshots and
// sync.
func (d *Document) Ops() []store.Op { return d.tree.Ops() }

// Clock returns the replica's current version clock.
func (d *Document) Clock() causal.Clock { return d.tree.Clock() }

// Delta returns the ops a peer with the given clock is missing.
func (d *Document) Delta(c causal.Clock) []store.Op { return d.tree.Delta(c) }

func (d *Document) emit(p edit.Patch) {
	if d.rec != nil {
		d.rec.Observe(p)
	}
	for _, fn := range d.patchSubs {
		fn(p)
	}
}

// enqueue buffers store events as they commit. They fan out to change
// subscribers once the enclosing transaction, merge or replay finishes.
func (d *Document) enqueue(ev store.Event) {
	d.evMu.Lock()
	d.pending = append(d.pending, ev)
	d.evMu.Unlock()
}

// flush fires change subscribers once for the events buffered since the
// last flush. Callers must not hold d.mu.
func (d *Document) flush() {
	d.evMu.Lock()
	pending := d.pending
	d.pending = nil
	subs := make([]func(bool), len(d.changeSubs))
	copy(subs, d.changeSubs)
	d.evMu.Unlock()
	if len(pending) == 0 {
		return
	}
	remote := false
	for _, ev := range pending {
		if ev.Remote {
			remote = true
		}
	}
	for _, fn := range subs {
		fn(remote)
	}
}
