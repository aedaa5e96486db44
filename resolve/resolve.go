// Package resolve restores structural cleanliness after merges. The
// replicated primitive keeps merged state tree-valid, but two replicas that
// concurrently wrapped the same node each contributed a wrapper, leaving
// semantically duplicated structure. The resolver detects wrapper groups
// over the same target, keeps the deterministic winner among the
// concurrently created ones, re-parents the wrapped node under it and
// deletes the losers. Sequential wraps (one causally after the other) are
// intentional nesting and stay untouched.
package resolve

import (
	"sort"

	"github.com/krsion/MyDenicek-sub001/causal"
	"github.com/krsion/MyDenicek-sub001/debug"
	"github.com/krsion/MyDenicek-sub001/dom"
	"github.com/krsion/MyDenicek-sub001/index"
	"github.com/krsion/MyDenicek-sub001/store"
)

// Pass runs one resolution pass and returns the number of wrappers removed.
// It is idempotent and yields identical results on every replica, so
// replicas running it independently after a merge still converge.
func Pass(tree store.Tree, idx *index.Index) int {
	groups := map[dom.NodeID][]dom.NodeID{}
	_ = idx.Visit(idx.Root(), func(id dom.NodeID, _ int) (bool, error) {
		d, ok := idx.Node(id)
		if ok && d.WrapOf != dom.None && idx.Has(d.WrapOf) {
			groups[d.WrapOf] = append(groups[d.WrapOf], id)
		}
		return true, nil
	})

	removed := 0
	for target, wrappers := range groups {
		if len(wrappers) < 2 {
			continue
		}
		removed += flatten(tree, target, wrappers)
	}
	return removed
}

// flatten reduces the concurrently created wrappers of one target to the
// single deterministic winner. Wrappers created sequentially with respect
// to the winner survive as nesting.
func flatten(tree store.Tree, target dom.NodeID, wrappers []dom.NodeID) int {
	// deterministic winner: the highest stamp in total order; wrappers
	// without causal metadata sort lowest so a stamped one always wins
	sort.Slice(wrappers, func(i, j int) bool {
		si, iok := tree.Stamp(wrappers[i])
		sj, jok := tree.Stamp(wrappers[j])
		if iok != jok {
			return jok
		}
		if !iok {
			return wrappers[i] < wrappers[j]
		}
		return causal.Less(si, sj)
	})
	winner := wrappers[len(wrappers)-1]
	winStamp, winOK := tree.Stamp(winner)

	removed := 0
	for _, loser := range wrappers[:len(wrappers)-1] {
		st, ok := tree.Stamp(loser)
		// only concurrent creations are duplicates; missing metadata
		// degrades to concurrent so wrappers cannot accumulate
		if ok && winOK && !causal.Concurrent(st, winStamp) {
			continue
		}
		for _, c := range tree.Children(loser) {
			_ = tree.Move(c, winner, len(tree.Children(winner)))
		}
		if err := tree.Delete(loser); err != nil {
			continue
		}
		if debug.Resolve() {
			debug.Logf("resolve: dropped wrapper %s of %s, winner %s\n", loser, target, winner)
		}
		removed++
	}
	if removed > 0 {
		// the wrapped node follows the winner
		under := false
		for _, c := range tree.Children(winner) {
			if c == target {
				under = true
				break
			}
		}
		if !under {
			_ = tree.Move(target, winner, 0)
		}
	}
	return removed
}
