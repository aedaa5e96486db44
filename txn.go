package denicek

import (
	"fmt"

	diffpatch "github.com/sergi/go-diff/diffmatchpatch"

	"github.com/krsion/MyDenicek-sub001/debug"
	"github.com/krsion/MyDenicek-sub001/dom"
	"github.com/krsion/MyDenicek-sub001/edit"
	"github.com/krsion/MyDenicek-sub001/index"
	"github.com/krsion/MyDenicek-sub001/store"
)

// Txn is a transaction over one replica's document. All mutations happen
// inside Update, which holds the document lock for the duration, so no two
// local mutation sequences interleave. Mutations apply optimistically;
// a returned error ends the transaction but does not undo operations
// already applied, it only releases the scope.
type Txn struct {
	d *Document
}

// Update runs a transaction. The index is rebuilt and swapped when the
// transaction ends, and change subscribers fire afterwards.
func (d *Document) Update(fn func(tx *Txn) error) error {
	d.mu.Lock()
	err := fn(&Txn{d: d})
	d.idx = index.Build(d.tree)
	d.mu.Unlock()
	d.flush()
	return err
}

// AddChild creates a node from the literal under parent at index; a
// negative index appends. It returns the new node's id.
func (tx *Txn) AddChild(parent dom.NodeID, lit edit.Literal, at int) (dom.NodeID, error) {
	pdata, ok := tx.d.tree.Data(parent)
	if !ok {
		return dom.None, fmt.Errorf("add child under %q: %w", parent, dom.ErrNodeNotFound)
	}
	if pdata.Kind.IsLeaf() {
		return dom.None, fmt.Errorf("add child under %s node %q: %w", pdata.Kind, parent, dom.ErrInvalidStructuralOp)
	}
	data := lit.Data()
	data.Applied = inherited(pdata)
	var id dom.NodeID
	if lit.ID != "" && !edit.IsSymbolic(lit.ID) {
		id = dom.NodeID(lit.ID)
	}
	newID, err := tx.d.tree.Create(parent, id, at, data)
	if err != nil {
		return dom.None, err
	}
	tx.emit(edit.Patch{
		Action: edit.Insert,
		Path:   edit.Path{edit.Node(parent), edit.Idx(at)},
		Value:  &edit.Value{Node: literalPtr(edit.LiteralOf(newID, data))},
	})
	return newID, nil
}

// AddSibling creates a node from the literal next to ref.
func (tx *Txn) AddSibling(ref dom.NodeID, lit edit.Literal, before bool) (dom.NodeID, error) {
	if _, ok := tx.d.tree.Data(ref); !ok {
		return dom.None, fmt.Errorf("add sibling of %q: %w", ref, dom.ErrNodeNotFound)
	}
	parent, ok := tx.d.tree.Parent(ref)
	if !ok {
		return dom.None, fmt.Errorf("add sibling of root %q: %w", ref, dom.ErrInvalidStructuralOp)
	}
	at := childPos(tx.d.tree, parent, ref)
	if !before {
		at++
	}
	return tx.AddChild(parent, lit, at)
}

// Delete removes a node and its subtree.
func (tx *Txn) Delete(id dom.NodeID) error {
	if _, ok := tx.d.tree.Data(id); !ok {
		return fmt.Errorf("delete %q: %w", id, dom.ErrNodeNotFound)
	}
	if err := tx.d.tree.Delete(id); err != nil {
		return err
	}
	tx.emit(edit.Patch{Action: edit.Del, Path: edit.Path{edit.Node(id)}})
	return nil
}

// Move re-parents a node; a negative index appends.
func (tx *Txn) Move(id, parent dom.NodeID, at int) error {
	if _, ok := tx.d.tree.Data(id); !ok {
		return fmt.Errorf("move %q: %w", id, dom.ErrNodeNotFound)
	}
	if err := tx.d.tree.Move(id, parent, at); err != nil {
		return err
	}
	tx.emit(edit.Patch{
		Action: edit.Move,
		Path:   edit.Path{edit.Node(id)},
		Value:  &edit.Value{Parent: string(parent), Index: at},
	})
	return nil
}

// Wrap inserts a new element with the given tag between target and its
// parent. The wrapper id is caller-chosen and deterministic; an empty id
// defaults to "w-" + target. Wrapping twice with the same id, tag and
// target is a no-op returning the existing wrapper.
func (tx *Txn) Wrap(target dom.NodeID, tag string, wrapperID dom.NodeID) (dom.NodeID, error) {
	if _, ok := tx.d.tree.Data(target); !ok {
		return dom.None, fmt.Errorf("wrap %q: %w", target, dom.ErrNodeNotFound)
	}
	parent, ok := tx.d.tree.Parent(target)
	if !ok {
		return dom.None, fmt.Errorf("wrap %q without a parent: %w", target, dom.ErrInvalidStructuralOp)
	}
	wid := wrapperID
	if wid == dom.None {
		wid = "w-" + target
	}
	if wdata, ok := tx.d.tree.Data(wid); ok {
		if wdata.Kind == dom.ElementKind && wdata.Tag == tag && wdata.WrapOf == target {
			return wid, nil
		}
		return dom.None, fmt.Errorf("wrapper id %q already in use: %w", wid, dom.ErrInvalidStructuralOp)
	}
	pdata, _ := tx.d.tree.Data(parent)
	at := childPos(tx.d.tree, parent, target)
	data := dom.Element(tag)
	data.WrapOf = target
	data.Applied = inherited(pdata)
	if _, err := tx.d.tree.Create(parent, wid, at, data); err != nil {
		return dom.None, err
	}
	tx.emit(edit.Patch{
		Action: edit.Insert,
		Path:   edit.Path{edit.Node(parent), edit.Idx(at)},
		Value:  &edit.Value{Node: literalPtr(edit.LiteralOf(wid, data))},
	})
	if err := tx.d.tree.Move(target, wid, 0); err != nil {
		return dom.None, err
	}
	tx.emit(edit.Patch{
		Action: edit.Move,
		Path:   edit.Path{edit.Node(target)},
		Value:  &edit.Value{Parent: string(wid), Index: 0},
	})
	return wid, nil
}

// Unwrap removes a wrapper, promoting its single child into its place.
// Wrappers with any other number of children are left alone.
func (tx *Txn) Unwrap(wrapper dom.NodeID) error {
	if _, ok := tx.d.tree.Data(wrapper); !ok {
		return fmt.Errorf("unwrap %q: %w", wrapper, dom.ErrNodeNotFound)
	}
	kids := tx.d.tree.Children(wrapper)
	if len(kids) != 1 {
		return fmt.Errorf("unwrap %q with %d children: %w", wrapper, len(kids), dom.ErrInvalidStructuralOp)
	}
	parent, ok := tx.d.tree.Parent(wrapper)
	if !ok {
		return fmt.Errorf("unwrap root %q: %w", wrapper, dom.ErrInvalidStructuralOp)
	}
	at := childPos(tx.d.tree, parent, wrapper)
	if err := tx.d.tree.Move(kids[0], parent, at); err != nil {
		return err
	}
	tx.emit(edit.Patch{
		Action: edit.Move,
		Path:   edit.Path{edit.Node(kids[0])},
		Value:  &edit.Value{Parent: string(parent), Index: at},
	})
	if err := tx.d.tree.Delete(wrapper); err != nil {
		return err
	}
	tx.emit(edit.Patch{Action: edit.Del, Path: edit.Path{edit.Node(wrapper)}})
	return nil
}

// SetTag renames an element.
func (tx *Txn) SetTag(id dom.NodeID, tag string) error {
	data, ok := tx.d.tree.Data(id)
	if !ok {
		return fmt.Errorf("set tag on %q: %w", id, dom.ErrNodeNotFound)
	}
	if data.Kind != dom.ElementKind {
		return fmt.Errorf("set tag on %s node %q: %w", data.Kind, id, dom.ErrInvalidStructuralOp)
	}
	if err := tx.d.tree.Put(id, store.FieldTag, tag); err != nil {
		return err
	}
	tx.emit(edit.Patch{
		Action: edit.Put,
		Path:   edit.Path{edit.Node(id)},
		Value:  &edit.Value{Field: store.FieldTag, Raw: tag},
	})
	return nil
}

// SetAttr sets an element attribute; a nil value removes it.
func (tx *Txn) SetAttr(id dom.NodeID, name string, value any) error {
	data, ok := tx.d.tree.Data(id)
	if !ok {
		return fmt.Errorf("set attr on %q: %w", id, dom.ErrNodeNotFound)
	}
	if data.Kind != dom.ElementKind {
		return fmt.Errorf("set attr on %s node %q: %w", data.Kind, id, dom.ErrInvalidStructuralOp)
	}
	field := store.AttrPrefix + name
	if err := tx.d.tree.Put(id, field, value); err != nil {
		return err
	}
	tx.emit(edit.Patch{
		Action: edit.Put,
		Path:   edit.Path{edit.Node(id)},
		Value:  &edit.Value{Field: field, Raw: value},
	})
	return nil
}

// SetScript stores a replayable script on an action node.
func (tx *Txn) SetScript(id dom.NodeID, script []edit.Patch) error {
	data, ok := tx.d.tree.Data(id)
	if !ok {
		return fmt.Errorf("set script on %q: %w", id, dom.ErrNodeNotFound)
	}
	if data.Kind != dom.ActionKind {
		return fmt.Errorf("set script on %s node %q: %w", data.Kind, id, dom.ErrInvalidStructuralOp)
	}
	enc, err := edit.EncodeScript(script)
	if err != nil {
		return err
	}
	if err := tx.d.tree.Put(id, store.FieldScript, string(enc)); err != nil {
		return err
	}
	tx.emit(edit.Patch{
		Action: edit.Put,
		Path:   edit.Path{edit.Node(id)},
		Value:  &edit.Value{Field: store.FieldScript, Raw: string(enc)},
	})
	return nil
}

// SetTarget retargets an action or reference node.
func (tx *Txn) SetTarget(id, target dom.NodeID) error {
	data, ok := tx.d.tree.Data(id)
	if !ok {
		return fmt.Errorf("set target on %q: %w", id, dom.ErrNodeNotFound)
	}
	if data.Kind != dom.ActionKind && data.Kind != dom.RefKind {
		return fmt.Errorf("set target on %s node %q: %w", data.Kind, id, dom.ErrInvalidStructuralOp)
	}
	if err := tx.d.tree.Put(id, store.FieldTarget, string(target)); err != nil {
		return err
	}
	tx.emit(edit.Patch{
		Action: edit.Put,
		Path:   edit.Path{edit.Node(id)},
		Value:  &edit.Value{Field: store.FieldTarget, Raw: string(target)},
	})
	return nil
}

// SpliceText edits a value node's text: delete del bytes at off, then
// insert text there.
func (tx *Txn) SpliceText(id dom.NodeID, off, del int, text string) error {
	data, ok := tx.d.tree.Data(id)
	if !ok {
		return fmt.Errorf("splice on %q: %w", id, dom.ErrNodeNotFound)
	}
	if data.Kind != dom.ValueKind {
		return fmt.Errorf("splice on %s node %q: %w", data.Kind, id, dom.ErrInvalidStructuralOp)
	}
	if err := tx.d.tree.Splice(id, off, del, text); err != nil {
		return err
	}
	tx.emit(edit.Patch{
		Action: edit.Splice,
		Path:   edit.Path{edit.Node(id)},
		Value:  &edit.Value{Offset: off, Text: text},
		Length: del,
	})
	return nil
}

// SetText replaces a value node's text, emitting the minimal splices that
// turn the old text into the new one.
func (tx *Txn) SetText(id dom.NodeID, text string) error {
	data, ok := tx.d.tree.Data(id)
	if !ok {
		return fmt.Errorf("set text on %q: %w", id, dom.ErrNodeNotFound)
	}
	if data.Kind != dom.ValueKind {
		return fmt.Errorf("set text on %s node %q: %w", data.Kind, id, dom.ErrInvalidStructuralOp)
	}
	if data.Text == text {
		return nil
	}
	dmp := diffpatch.New()
	diffs := dmp.DiffMain(data.Text, text, false)
	pos := 0
	for _, diff := range diffs {
		switch diff.Type {
		case diffpatch.DiffEqual:
			pos += len(diff.Text)
		case diffpatch.DiffDelete:
			if err := tx.SpliceText(id, pos, len(diff.Text), ""); err != nil {
				return err
			}
		case diffpatch.DiffInsert:
			if err := tx.SpliceText(id, pos, 0, diff.Text); err != nil {
				return err
			}
			pos += len(diff.Text)
		}
	}
	return nil
}

// Copy deep-copies the source subtree under parent at index and returns
// the copy's root id. The emitted patch refers to the source by id, so a
// replayed copy reads the source's value at replay time.
func (tx *Txn) Copy(source, parent dom.NodeID, at int) (dom.NodeID, error) {
	if _, ok := tx.d.tree.Data(source); !ok {
		return dom.None, fmt.Errorf("copy %q: %w", source, dom.ErrNodeNotFound)
	}
	pdata, ok := tx.d.tree.Data(parent)
	if !ok {
		return dom.None, fmt.Errorf("copy under %q: %w", parent, dom.ErrNodeNotFound)
	}
	if pdata.Kind.IsLeaf() {
		return dom.None, fmt.Errorf("copy under %s node %q: %w", pdata.Kind, parent, dom.ErrInvalidStructuralOp)
	}
	snap := snapshot(tx.d.tree, source)
	newID, err := plant(tx.d.tree, snap, parent, at)
	if err != nil {
		return dom.None, err
	}
	tx.emit(edit.Patch{
		Action: edit.Copy,
		Path:   edit.Path{edit.Node(parent), edit.Idx(at)},
		Value:  &edit.Value{Source: string(source)},
	})
	return newID, nil
}

func (tx *Txn) emit(p edit.Patch) {
	if debug.Txn() {
		debug.Logf("txn: %s %v\n", p.Action, p.Path)
	}
	tx.d.emit(p)
}

// subtree is a detached snapshot of a node and its descendants, taken
// before planting a copy so copying into the copied region terminates.
type subtree struct {
	data dom.Data
	kids []*subtree
}

func snapshot(t store.Tree, id dom.NodeID) *subtree {
	data, ok := t.Data(id)
	if !ok {
		return nil
	}
	s := &subtree{data: data.Clone()}
	for _, c := range t.Children(id) {
		if k := snapshot(t, c); k != nil {
			s.kids = append(s.kids, k)
		}
	}
	return s
}

func plant(t store.Tree, s *subtree, parent dom.NodeID, at int) (dom.NodeID, error) {
	id, err := t.Create(parent, dom.None, at, s.data)
	if err != nil {
		return dom.None, err
	}
	for i, k := range s.kids {
		if _, err := plant(t, k, id, i); err != nil {
			return dom.None, err
		}
	}
	return id, nil
}

func childPos(t store.Tree, parent, child dom.NodeID) int {
	for i, c := range t.Children(parent) {
		if c == child {
			return i
		}
	}
	return -1
}

func inherited(parent dom.Data) map[string]int {
	if parent.Applied == nil {
		return nil
	}
	out := make(map[string]int, len(parent.Applied))
	for k, v := range parent.Applied {
		out[k] = v
	}
	return out
}

func literalPtr(l edit.Literal) *edit.Literal { return &l }
