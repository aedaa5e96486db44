package denicek

import (
	"fmt"

	"github.com/krsion/MyDenicek-sub001/debug"
	"github.com/krsion/MyDenicek-sub001/dom"
	"github.com/krsion/MyDenicek-sub001/edit"
	"github.com/krsion/MyDenicek-sub001/index"
)

// ReplayStats reports how much of a script took effect.
type ReplayStats struct {
	Applied int
	Skipped int
}

// Replay applies a recorded script with "$0" bound to start. Patches whose
// references cannot be resolved against the current document, or whose
// targets no longer exist, are skipped rather than failing the whole
// script. Replayed edits mutate the document directly; they are not
// re-recorded.
func (d *Document) Replay(script []edit.Patch, start dom.NodeID) (ReplayStats, error) {
	d.mu.Lock()
	stats, err := d.replayLocked(script, start)
	d.idx = index.Build(d.tree)
	d.mu.Unlock()
	d.flush()
	return stats, err
}

// RunAction replays the script stored in an action node against the
// action's target.
func (d *Document) RunAction(id dom.NodeID) (ReplayStats, error) {
	d.mu.Lock()
	data, ok := d.tree.Data(id)
	if !ok {
		d.mu.Unlock()
		return ReplayStats{}, fmt.Errorf("run action %q: %w", id, dom.ErrNodeNotFound)
	}
	if data.Kind != dom.ActionKind {
		d.mu.Unlock()
		return ReplayStats{}, fmt.Errorf("run %s node %q: %w", data.Kind, id, dom.ErrInvalidStructuralOp)
	}
	script, err := edit.DecodeScript(data.Script)
	if err != nil {
		d.mu.Unlock()
		return ReplayStats{}, fmt.Errorf("run action %q: %w", id, err)
	}
	stats, err := d.replayLocked(script, data.Target)
	d.idx = index.Build(d.tree)
	d.mu.Unlock()
	d.flush()
	return stats, err
}

func (d *Document) replayLocked(script []edit.Patch, start dom.NodeID) (ReplayStats, error) {
	if _, ok := d.tree.Data(start); !ok {
		return ReplayStats{}, fmt.Errorf("replay against %q: %w", start, dom.ErrNodeNotFound)
	}
	syms := map[string]string{"$0": string(start)}
	var stats ReplayStats
	for i, p := range script {
		if d.replayOne(syms, p) {
			stats.Applied++
		} else {
			stats.Skipped++
			if debug.Replay() {
				debug.Logf("replay: skipped patch %d (%s)\n", i, p.Action)
			}
		}
	}
	return stats, nil
}

func (d *Document) replayOne(syms map[string]string, p edit.Patch) bool {
	switch p.Action {
	case edit.Insert:
		return d.replayInsert(syms, p)
	case edit.Copy:
		return d.replayCopy(syms, p)
	}
	if len(p.Path) < 1 || p.Path[0].IsIndex {
		return false
	}
	node, ok := edit.Resolve(syms, p.Path[0].ID)
	if !ok {
		return false
	}
	id := dom.NodeID(node)
	if _, ok := d.tree.Data(id); !ok {
		return false
	}
	switch p.Action {
	case edit.Put:
		if p.Value == nil {
			return false
		}
		return d.tree.Put(id, p.Value.Field, p.Value.Raw) == nil
	case edit.Del:
		return d.tree.Delete(id) == nil
	case edit.Move:
		if p.Value == nil {
			return false
		}
		parent, ok := edit.Resolve(syms, p.Value.Parent)
		if !ok {
			return false
		}
		return d.tree.Move(id, dom.NodeID(parent), p.Value.Index) == nil
	case edit.Splice:
		if p.Value == nil {
			return false
		}
		return d.tree.Splice(id, p.Value.Offset, p.Length, p.Value.Text) == nil
	}
	return false
}

func (d *Document) replayInsert(syms map[string]string, p edit.Patch) bool {
	if len(p.Path) != 2 || p.Path[0].IsIndex || !p.Path[1].IsIndex || p.Value == nil || p.Value.Node == nil {
		return false
	}
	parentID, ok := edit.Resolve(syms, p.Path[0].ID)
	if !ok {
		return false
	}
	parent := dom.NodeID(parentID)
	pdata, ok := d.tree.Data(parent)
	if !ok || pdata.Kind.IsLeaf() {
		return false
	}
	lit := *p.Value.Node
	target, ok := edit.Resolve(syms, lit.Target)
	if !ok {
		return false
	}
	lit.Target = target
	wrapOf, ok := edit.Resolve(syms, lit.WrapOf)
	if !ok {
		return false
	}
	lit.WrapOf = wrapOf
	data := lit.Data()
	data.Applied = inherited(pdata)

	if id, ok := edit.Resolve(syms, lit.ID); ok {
		if id != "" {
			if _, ok := d.tree.Data(dom.NodeID(id)); ok {
				// deterministic id already created, concurrent replays converge
				return true
			}
		}
		_, err := d.tree.Create(parent, dom.NodeID(id), p.Path[1].Index, data)
		return err == nil
	}
	if !edit.IsPureSymbol(lit.ID) {
		return false
	}
	// fresh symbol: mint an id and bind it
	newID, err := d.tree.Create(parent, dom.None, p.Path[1].Index, data)
	if err != nil {
		return false
	}
	syms[lit.ID] = string(newID)
	return true
}

func (d *Document) replayCopy(syms map[string]string, p edit.Patch) bool {
	if len(p.Path) != 2 || p.Path[0].IsIndex || !p.Path[1].IsIndex || p.Value == nil {
		return false
	}
	parentID, ok := edit.Resolve(syms, p.Path[0].ID)
	if !ok {
		return false
	}
	sourceID, ok := edit.Resolve(syms, p.Value.Source)
	if !ok {
		return false
	}
	parent := dom.NodeID(parentID)
	source := dom.NodeID(sourceID)
	pdata, ok := d.tree.Data(parent)
	if !ok || pdata.Kind.IsLeaf() {
		return false
	}
	// copy reads the source as it is now, so a replayed "copy the total"
	// picks up the current total, not the recorded one
	snap := snapshot(d.tree, source)
	if snap == nil {
		return false
	}
	_, err := plant(d.tree, snap, parent, p.Path[1].Index)
	return err == nil
}
