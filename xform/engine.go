package xform

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/krsion/MyDenicek-sub001/debug"
	"github.com/krsion/MyDenicek-sub001/dom"
	"github.com/krsion/MyDenicek-sub001/index"
	"github.com/krsion/MyDenicek-sub001/store"
)

// Engine reads transformation records off the store's note log and applies
// pending ones to lagging nodes. All state lives in the replicated log and
// in per-node applied-version stamps, so the engine itself is stateless and
// its Apply pass is idempotent.
type Engine struct {
	tree store.Tree
}

func New(tree store.Tree) *Engine {
	return &Engine{tree: tree}
}

// notePayload is the note wire form of a transformation record.
type notePayload struct {
	Xform *Record `json:"xform,omitempty"`
}

// Records decodes all transformation records in total order. Notes that are
// not transformation records are skipped.
func (e *Engine) Records() []Record {
	var out []Record
	for _, n := range e.tree.Notes() {
		var p notePayload
		if err := json.Unmarshal(n.Payload, &p); err != nil || p.Xform == nil {
			continue
		}
		out = append(out, *p.Xform)
	}
	return out
}

// Add records a transformation at the next version of the scope's lineage
// and replicates it.
func (e *Engine) Add(scope Scope, typ Type, tag string) (Record, error) {
	if tag == "" {
		return Record{}, fmt.Errorf("transformation needs a tag")
	}
	switch typ {
	case Rename, Wrap:
	default:
		return Record{}, fmt.Errorf("unknown transformation type %q", typ)
	}
	if _, ok := e.tree.Data(scope.LCA); !ok {
		return Record{}, fmt.Errorf("transformation scope %q: %w", scope.LCA, dom.ErrNodeNotFound)
	}
	key := scope.Key()
	version := 0
	for _, r := range e.Records() {
		if r.Scope.Key() == key && r.Version > version {
			version = r.Version
		}
	}
	rec := Record{Scope: scope, Version: version + 1, Type: typ, Tag: tag}
	payload, err := json.Marshal(notePayload{Xform: &rec})
	if err != nil {
		return Record{}, err
	}
	if err := e.tree.Note(payload); err != nil {
		return Record{}, err
	}
	if debug.Xform() {
		debug.Logf("xform: add %s v%d tag=%q scope=%s\n", typ, rec.Version, tag, key)
	}
	return rec, nil
}

// Apply runs one reconciliation pass: for every pending transformation, in
// deterministic order, rename or wrap each matching node whose applied
// version for the scope lags. Concurrent records at the same scope+version
// resolve to the last one in total order. Returns the number of nodes
// changed; zero means the pass was a no-op.
func (e *Engine) Apply(idx *index.Index) int {
	// last writer wins per (scope key, version); notes come pre-sorted
	winners := map[string]Record{}
	for _, r := range e.Records() {
		winners[fmt.Sprintf("%s#%d", r.Scope.Key(), r.Version)] = r
	}
	recs := make([]Record, 0, len(winners))
	for _, r := range winners {
		recs = append(recs, r)
	}
	sort.Slice(recs, func(i, j int) bool {
		ki, kj := recs[i].Scope.Key(), recs[j].Scope.Key()
		if ki != kj {
			return ki < kj
		}
		return recs[i].Version < recs[j].Version
	})

	changed := 0
	for _, r := range recs {
		changed += e.applyOne(idx, r)
	}
	return changed
}

func (e *Engine) applyOne(idx *index.Index, r Record) int {
	if !idx.Has(r.Scope.LCA) {
		return 0
	}
	key := r.Scope.Key()
	// collect against the pre-pass snapshot so wrappers inserted while
	// applying are never revisited
	var targets []dom.NodeID
	var depths []int
	_ = idx.Visit(r.Scope.LCA, func(id dom.NodeID, depth int) (bool, error) {
		if depth > 0 {
			targets = append(targets, id)
			depths = append(depths, depth)
		}
		return true, nil
	})
	changed := 0
	for i, id := range targets {
		data, ok := e.tree.Data(id)
		if !ok {
			continue
		}
		if data.AppliedVersion(key) >= r.Version {
			continue
		}
		if !r.Scope.Match(data, depths[i]) {
			continue
		}
		switch r.Type {
		case Rename:
			if err := e.tree.Put(id, store.FieldTag, r.Tag); err != nil {
				continue
			}
		case Wrap:
			if !e.wrap(key, r, id) {
				continue
			}
		}
		_ = e.tree.Put(id, store.VersionPrefix+key, r.Version)
		if debug.Xform() {
			debug.Logf("xform: applied %s v%d to %s\n", r.Type, r.Version, id)
		}
		changed++
	}
	return changed
}

// wrap inserts the deterministic wrapper around a node, or adopts an
// existing one (a concurrent replica may have created it already).
func (e *Engine) wrap(key string, r Record, id dom.NodeID) bool {
	wid := WrapperID(key, r.Version, id)
	if _, ok := e.tree.Data(wid); ok {
		return true
	}
	parent, ok := e.tree.Parent(id)
	if !ok {
		return false
	}
	pos := 0
	for i, c := range e.tree.Children(parent) {
		if c == id {
			pos = i
			break
		}
	}
	data := dom.Element(r.Tag)
	data.WrapOf = id
	data.Applied = map[string]int{key: r.Version}
	if _, err := e.tree.Create(parent, wid, pos, data); err != nil {
		return false
	}
	if err := e.tree.Move(id, wid, 0); err != nil {
		return false
	}
	return true
}
