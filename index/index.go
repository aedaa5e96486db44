// Package index builds the O(1) lookup maps every reader of a document
// uses: data, parent, ordered children and depth by node id. An Index is a
// derived, disposable snapshot: build one after a mutation or merge, swap it
// in atomically, never mutate it in place.
package index

import (
	"github.com/krsion/MyDenicek-sub001/dom"
	"github.com/krsion/MyDenicek-sub001/store"
)

type Index struct {
	root     dom.NodeID
	data     map[dom.NodeID]dom.Data
	parent   map[dom.NodeID]dom.NodeID
	children map[dom.NodeID][]dom.NodeID
	depth    map[dom.NodeID]int
}

// Build walks the replicated tree once from the root.
func Build(t store.Tree) *Index {
	x := &Index{
		root:     t.Root(),
		data:     map[dom.NodeID]dom.Data{},
		parent:   map[dom.NodeID]dom.NodeID{},
		children: map[dom.NodeID][]dom.NodeID{},
		depth:    map[dom.NodeID]int{},
	}
	type frame struct {
		id    dom.NodeID
		depth int
	}
	stack := []frame{{x.root, 0}}
	for len(stack) > 0 {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		d, ok := t.Data(f.id)
		if !ok {
			continue
		}
		x.data[f.id] = d
		x.depth[f.id] = f.depth
		kids := t.Children(f.id)
		x.children[f.id] = kids
		for i := len(kids) - 1; i >= 0; i-- {
			x.parent[kids[i]] = f.id
			stack = append(stack, frame{kids[i], f.depth + 1})
		}
	}
	return x
}

func (x *Index) Root() dom.NodeID { return x.root }

func (x *Index) Has(id dom.NodeID) bool {
	_, ok := x.data[id]
	return ok
}

func (x *Index) Node(id dom.NodeID) (dom.Data, bool) {
	d, ok := x.data[id]
	return d, ok
}

// ParentOf returns the parent id; the root and unknown ids have none.
func (x *Index) ParentOf(id dom.NodeID) (dom.NodeID, bool) {
	p, ok := x.parent[id]
	return p, ok
}

func (x *Index) ChildrenOf(id dom.NodeID) []dom.NodeID {
	return x.children[id]
}

// Depth returns the distance from the root, -1 for unknown ids.
func (x *Index) Depth(id dom.NodeID) int {
	d, ok := x.depth[id]
	if !ok {
		return -1
	}
	return d
}

// Len returns the number of reachable nodes.
func (x *Index) Len() int { return len(x.data) }

// Visit runs a pre-order depth-first traversal from the given node. The
// callback receives each node id with its depth relative to the start and
// returns whether to descend into its children. Traversal is finite and may
// be restarted at will.
func (x *Index) Visit(from dom.NodeID, f func(id dom.NodeID, depth int) (bool, error)) error {
	if !x.Has(from) {
		return nil
	}
	return x.visit(from, 0, f)
}

func (x *Index) visit(id dom.NodeID, depth int, f func(dom.NodeID, int) (bool, error)) error {
	descend, err := f(id, depth)
	if err != nil {
		return err
	}
	if !descend {
		return nil
	}
	for _, c := range x.children[id] {
		if err := x.visit(c, depth+1, f); err != nil {
			return err
		}
	}
	return nil
}

// Ancestors returns the chain from the node's parent up to the root.
func (x *Index) Ancestors(id dom.NodeID) []dom.NodeID {
	var out []dom.NodeID
	for {
		p, ok := x.parent[id]
		if !ok {
			return out
		}
		out = append(out, p)
		id = p
	}
}
