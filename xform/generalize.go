package xform

import (
	"fmt"

	"github.com/krsion/MyDenicek-sub001/dom"
	"github.com/krsion/MyDenicek-sub001/index"
)

// Selection is the result of generalizing a set of selected nodes: the
// inferred scope and every node under the LCA the selector matches.
type Selection struct {
	Scope    Scope
	Matching []dom.NodeID
}

// Generalize computes the lowest common ancestor of the selected nodes and
// infers a selector from what they have in common: a tag if all selected
// elements share one and no value nodes are mixed in, a depth if all sit at
// the same distance from the LCA, a kind if all agree. A single selected
// node generalizes from its parent, so "nodes like this one" still has a
// scope. Selections whose nodes share no ancestor are an error.
func Generalize(x *index.Index, ids []dom.NodeID) (*Selection, error) {
	if len(ids) == 0 {
		return nil, fmt.Errorf("empty selection: %w", ErrDisjointSelection)
	}
	for _, id := range ids {
		if !x.Has(id) {
			return nil, fmt.Errorf("selected node %q: %w", id, dom.ErrNodeNotFound)
		}
	}

	var lca dom.NodeID
	if len(ids) == 1 {
		p, ok := x.ParentOf(ids[0])
		if !ok {
			return nil, fmt.Errorf("selected root %q: %w", ids[0], ErrDisjointSelection)
		}
		lca = p
	} else {
		lca = ids[0]
		for _, id := range ids[1:] {
			next, ok := commonAncestor(x, lca, id)
			if !ok {
				return nil, ErrDisjointSelection
			}
			lca = next
		}
	}

	scope := Scope{LCA: lca, Depth: -1}
	inferTag(x, ids, &scope)
	inferDepth(x, lca, ids, &scope)
	inferKind(x, ids, &scope)

	sel := &Selection{Scope: scope}
	_ = x.Visit(lca, func(id dom.NodeID, depth int) (bool, error) {
		if depth == 0 {
			return true, nil
		}
		if d, ok := x.Node(id); ok && scope.Match(d, depth) {
			sel.Matching = append(sel.Matching, id)
		}
		return true, nil
	})
	return sel, nil
}

// commonAncestor walks ancestor chains (each node counts as its own
// ancestor) and returns the first shared id.
func commonAncestor(x *index.Index, a, b dom.NodeID) (dom.NodeID, bool) {
	seen := map[dom.NodeID]bool{a: true}
	for _, id := range x.Ancestors(a) {
		seen[id] = true
	}
	if seen[b] {
		return b, true
	}
	for _, id := range x.Ancestors(b) {
		if seen[id] {
			return id, true
		}
	}
	return dom.None, false
}

func inferTag(x *index.Index, ids []dom.NodeID, scope *Scope) {
	tag := ""
	for _, id := range ids {
		d, _ := x.Node(id)
		switch d.Kind {
		case dom.ValueKind:
			return // mixed content, no tag selector
		case dom.ElementKind:
			if tag == "" {
				tag = d.Tag
			} else if tag != d.Tag {
				return
			}
		}
	}
	scope.Tag = tag
}

func inferDepth(x *index.Index, lca dom.NodeID, ids []dom.NodeID, scope *Scope) {
	base := x.Depth(lca)
	depth := -1
	for _, id := range ids {
		d := x.Depth(id) - base
		if depth == -1 {
			depth = d
		} else if depth != d {
			return
		}
	}
	scope.Depth = depth
}

func inferKind(x *index.Index, ids []dom.NodeID, scope *Scope) {
	var kind dom.Kind
	for i, id := range ids {
		d, _ := x.Node(id)
		if i == 0 {
			kind = d.Kind
		} else if kind != d.Kind {
			return
		}
	}
	scope.Kind = &kind
}
