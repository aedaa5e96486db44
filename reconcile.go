package denicek

import (
	"github.com/krsion/MyDenicek-sub001/debug"
	"github.com/krsion/MyDenicek-sub001/index"
	"github.com/krsion/MyDenicek-sub001/resolve"
	"github.com/krsion/MyDenicek-sub001/store"
	"github.com/krsion/MyDenicek-sub001/xform"
)

// Reconcile runs pending transformations to a fixed point and then flattens
// concurrently created wrappers. It is idempotent; running it again with no
// new operations changes nothing.
func (d *Document) Reconcile() {
	d.mu.Lock()
	d.reconcileLocked()
	d.mu.Unlock()
	d.flush()
}

func (d *Document) reconcileLocked() {
	for {
		d.idx = index.Build(d.tree)
		if d.engine.Apply(d.idx) == 0 {
			break
		}
	}
	if n := resolve.Pass(d.tree, d.idx); n > 0 {
		if debug.Resolve() {
			debug.Logf("resolve: flattened %d wrappers\n", n)
		}
		d.idx = index.Build(d.tree)
	}
}

// Merge folds operations from another replica into this document and
// reconciles. Operations already known are ignored, so merging is
// idempotent and order-insensitive across batches.
func (d *Document) Merge(ops []store.Op) int {
	d.mu.Lock()
	n := d.tree.Merge(ops)
	d.reconcileLocked()
	d.mu.Unlock()
	d.flush()
	return n
}

// AddTransformation records a rename or wrap transformation over the scope
// and applies it locally. The record replicates with the op log, so nodes
// created later inside the scope, on any replica, catch up on merge.
func (d *Document) AddTransformation(scope xform.Scope, typ xform.Type, tag string) (xform.Record, error) {
	d.mu.Lock()
	rec, err := d.engine.Add(scope, typ, tag)
	if err == nil {
		d.reconcileLocked()
	}
	d.mu.Unlock()
	if err != nil {
		return xform.Record{}, err
	}
	d.flush()
	return rec, nil
}
