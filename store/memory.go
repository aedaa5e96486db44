package store

import (
	"fmt"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/krsion/MyDenicek-sub001/causal"
	"github.com/krsion/MyDenicek-sub001/dom"
)

// Memory is the in-memory reference Tree. Local operations apply
// optimistically; Merge folds in remote ops and rebuilds state by replaying
// the whole log in total order, so replicas holding the same op set converge
// regardless of delivery order.
type Memory struct {
	mu      sync.Mutex
	replica string
	seq     uint64
	lamport uint64
	clock   causal.Clock

	rootID   dom.NodeID
	rootData dom.Data

	ops   []Op // sorted by causal.Less on stamps
	known map[causal.OpID]bool
	nodes map[dom.NodeID]*node

	subs []func(Event)
}

type node struct {
	data     dom.Data
	parent   dom.NodeID
	children []dom.NodeID // includes dead children; reads filter
	dead     bool
	stamp    causal.Stamp
}

var _ Tree = (*Memory)(nil)

// NewMemory creates a replica-local store with the given fixed root. All
// replicas of one document must be constructed with the same root id and
// root data. An empty replica id gets a generated one.
func NewMemory(replica string, rootID dom.NodeID, rootData dom.Data) *Memory {
	if replica == "" {
		replica = uuid.NewString()
	}
	m := &Memory{
		replica:  replica,
		clock:    causal.Clock{},
		rootID:   rootID,
		rootData: rootData.Clone(),
		known:    map[causal.OpID]bool{},
	}
	m.reset()
	return m
}

func (m *Memory) reset() {
	m.nodes = map[dom.NodeID]*node{
		m.rootID: {data: m.rootData.Clone()},
	}
}

func (m *Memory) Replica() string { return m.replica }

func (m *Memory) Root() dom.NodeID { return m.rootID }

// next mints the stamp for a new local operation. Callers hold m.mu.
func (m *Memory) next() causal.Stamp {
	m.seq++
	m.lamport++
	id := causal.OpID{Replica: m.replica, Seq: m.seq}
	deps := m.clock.Clone()
	if deps == nil {
		deps = causal.Clock{}
	}
	m.clock.Observe(id)
	return causal.Stamp{ID: id, Lamport: m.lamport, Deps: deps}
}

// commit applies and records a local op. Callers hold m.mu.
func (m *Memory) commit(op Op) {
	m.apply(op)
	m.ops = append(m.ops, op) // local stamps always sort last
	m.known[op.Stamp.ID] = true
}

func (m *Memory) Create(parent, id dom.NodeID, index int, data dom.Data) (dom.NodeID, error) {
	m.mu.Lock()
	p, ok := m.nodes[parent]
	if !ok || p.dead {
		m.mu.Unlock()
		return dom.None, fmt.Errorf("create under %q: %w", parent, dom.ErrNodeNotFound)
	}
	if id != dom.None {
		if n, exists := m.nodes[id]; exists && !n.dead {
			m.mu.Unlock()
			return id, nil
		}
	}
	stamp := m.next()
	if id == dom.None {
		id = dom.NodeID(fmt.Sprintf("%s:%d", m.replica, stamp.ID.Seq))
	}
	op := Op{Stamp: stamp, Kind: OpCreate, Node: id, Parent: parent, Index: index, Data: ptr(data.Clone())}
	m.commit(op)
	m.notifyLocked(Event{Ops: []Op{op}})
	return id, nil
}

func (m *Memory) Move(id, parent dom.NodeID, index int) error {
	m.mu.Lock()
	if id == m.rootID {
		m.mu.Unlock()
		return fmt.Errorf("move root: %w", dom.ErrInvalidStructuralOp)
	}
	if _, ok := m.nodes[id]; !ok {
		m.mu.Unlock()
		return fmt.Errorf("move %q: %w", id, dom.ErrNodeNotFound)
	}
	p, ok := m.nodes[parent]
	if !ok || p.dead {
		m.mu.Unlock()
		return fmt.Errorf("move under %q: %w", parent, dom.ErrNodeNotFound)
	}
	if m.inSubtree(parent, id) {
		m.mu.Unlock()
		return fmt.Errorf("move %q under its descendant %q: %w", id, parent, dom.ErrInvalidStructuralOp)
	}
	op := Op{Stamp: m.next(), Kind: OpMove, Node: id, Parent: parent, Index: index}
	m.commit(op)
	m.notifyLocked(Event{Ops: []Op{op}})
	return nil
}

func (m *Memory) Delete(id dom.NodeID) error {
	m.mu.Lock()
	if id == m.rootID {
		m.mu.Unlock()
		return fmt.Errorf("delete root: %w", dom.ErrInvalidStructuralOp)
	}
	if _, ok := m.nodes[id]; !ok {
		m.mu.Unlock()
		return fmt.Errorf("delete %q: %w", id, dom.ErrNodeNotFound)
	}
	op := Op{Stamp: m.next(), Kind: OpDel, Node: id}
	m.commit(op)
	m.notifyLocked(Event{Ops: []Op{op}})
	return nil
}

func (m *Memory) Put(id dom.NodeID, field string, value any) error {
	m.mu.Lock()
	if n, ok := m.nodes[id]; !ok || n.dead {
		m.mu.Unlock()
		return fmt.Errorf("put %q on %q: %w", field, id, dom.ErrNodeNotFound)
	}
	op := Op{Stamp: m.next(), Kind: OpPut, Node: id, Field: field, Value: value}
	m.commit(op)
	m.notifyLocked(Event{Ops: []Op{op}})
	return nil
}

func (m *Memory) Splice(id dom.NodeID, off, del int, text string) error {
	m.mu.Lock()
	if n, ok := m.nodes[id]; !ok || n.dead {
		m.mu.Unlock()
		return fmt.Errorf("splice on %q: %w", id, dom.ErrNodeNotFound)
	}
	op := Op{Stamp: m.next(), Kind: OpSplice, Node: id, Off: off, Del: del, Text: text}
	m.commit(op)
	m.notifyLocked(Event{Ops: []Op{op}})
	return nil
}

func (m *Memory) Note(payload []byte) error {
	m.mu.Lock()
	op := Op{Stamp: m.next(), Kind: OpNote, Payload: append([]byte(nil), payload...)}
	m.commit(op)
	m.notifyLocked(Event{Ops: []Op{op}})
	return nil
}

// Merge folds remote operations into the log and rebuilds state. It returns
// the number of previously unknown ops. Merging is idempotent and commutes
// over delivery order.
func (m *Memory) Merge(ops []Op) int {
	m.mu.Lock()
	var fresh []Op
	for _, op := range ops {
		if m.known[op.Stamp.ID] {
			continue
		}
		m.known[op.Stamp.ID] = true
		m.clock.Observe(op.Stamp.ID)
		if op.Stamp.Lamport > m.lamport {
			m.lamport = op.Stamp.Lamport
		}
		fresh = append(fresh, op)
	}
	if len(fresh) == 0 {
		m.mu.Unlock()
		return 0
	}
	m.ops = append(m.ops, fresh...)
	sort.SliceStable(m.ops, func(i, j int) bool {
		return causal.Less(m.ops[i].Stamp, m.ops[j].Stamp)
	})
	m.reset()
	for _, op := range m.ops {
		m.apply(op)
	}
	m.notifyLocked(Event{Remote: true, Ops: fresh})
	return len(fresh)
}

// apply folds one op into materialized state. Ops that no longer make sense
// against the current fold (missing node, shape violation) are dropped, not
// errors: the fold must accept any causally valid log.
func (m *Memory) apply(op Op) {
	switch op.Kind {
	case OpCreate:
		p, ok := m.nodes[op.Parent]
		if !ok {
			return
		}
		var data dom.Data
		if op.Data != nil {
			data = op.Data.Clone()
		}
		if n, exists := m.nodes[op.Node]; exists {
			if !n.dead {
				return
			}
			// recreating a dead id revives it in place, so a
			// deterministic id can be reused after its node is deleted
			if old, ok := m.nodes[n.parent]; ok {
				old.children = remove(old.children, op.Node)
			}
			n.dead = false
			n.data = data
			n.parent = op.Parent
			n.stamp = op.Stamp
			p.children = insertAt(p.children, op.Node, op.Index)
			return
		}
		m.nodes[op.Node] = &node{data: data, parent: op.Parent, stamp: op.Stamp}
		p.children = insertAt(p.children, op.Node, op.Index)
	case OpMove:
		n, ok := m.nodes[op.Node]
		if !ok || op.Node == m.rootID {
			return
		}
		p, ok := m.nodes[op.Parent]
		if !ok || m.inSubtree(op.Parent, op.Node) {
			return
		}
		if old, ok := m.nodes[n.parent]; ok {
			old.children = remove(old.children, op.Node)
		}
		p.children = insertAt(p.children, op.Node, op.Index)
		n.parent = op.Parent
	case OpDel:
		if n, ok := m.nodes[op.Node]; ok && op.Node != m.rootID {
			n.dead = true
		}
	case OpPut:
		n, ok := m.nodes[op.Node]
		if !ok {
			return
		}
		putField(&n.data, op.Field, op.Value)
	case OpSplice:
		n, ok := m.nodes[op.Node]
		if !ok {
			return
		}
		n.data.Text = splice(n.data.Text, op.Off, op.Del, op.Text)
	case OpNote:
		// notes are read straight off the sorted log
	}
}

func (m *Memory) inSubtree(id, root dom.NodeID) bool {
	for id != dom.None {
		if id == root {
			return true
		}
		n, ok := m.nodes[id]
		if !ok {
			return false
		}
		id = n.parent
	}
	return false
}

// alive reports whether the node and all its ancestors are undeleted.
// Callers hold m.mu.
func (m *Memory) alive(id dom.NodeID) bool {
	for {
		n, ok := m.nodes[id]
		if !ok || n.dead {
			return false
		}
		if id == m.rootID {
			return true
		}
		id = n.parent
	}
}

func (m *Memory) Data(id dom.NodeID) (dom.Data, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.alive(id) {
		return dom.Data{}, false
	}
	return m.nodes[id].data.Clone(), true
}

func (m *Memory) Children(id dom.NodeID) []dom.NodeID {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.alive(id) {
		return nil
	}
	var out []dom.NodeID
	for _, c := range m.nodes[id].children {
		if n, ok := m.nodes[c]; ok && !n.dead {
			out = append(out, c)
		}
	}
	return out
}

func (m *Memory) Parent(id dom.NodeID) (dom.NodeID, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if id == m.rootID || !m.alive(id) {
		return dom.None, false
	}
	return m.nodes[id].parent, true
}

func (m *Memory) Stamp(id dom.NodeID) (causal.Stamp, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n, ok := m.nodes[id]
	if !ok || n.stamp.Zero() {
		return causal.Stamp{}, false
	}
	return n.stamp, true
}

func (m *Memory) Notes() []Note {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []Note
	for _, op := range m.ops {
		if op.Kind == OpNote {
			out = append(out, Note{Stamp: op.Stamp, Payload: op.Payload})
		}
	}
	return out
}

// Ops returns the full log in total order, for snapshot export.
func (m *Memory) Ops() []Op {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Op(nil), m.ops...)
}

// Delta returns the ops not yet covered by the given clock.
func (m *Memory) Delta(c causal.Clock) []Op {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []Op
	for _, op := range m.ops {
		if c == nil || !c.Covers(op.Stamp.ID) {
			out = append(out, op)
		}
	}
	return out
}

// Clock returns a copy of the replica's current clock.
func (m *Memory) Clock() causal.Clock {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.clock.Clone()
}

func (m *Memory) Subscribe(fn func(Event)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.subs = append(m.subs, fn)
}

// notifyLocked releases m.mu and fires subscribers. Calling with the lock
// held lets mutators notify as their last step without re-entrancy.
func (m *Memory) notifyLocked(ev Event) {
	subs := make([]func(Event), len(m.subs))
	copy(subs, m.subs)
	m.mu.Unlock()
	for _, fn := range subs {
		fn(ev)
	}
}

func insertAt(s []dom.NodeID, id dom.NodeID, i int) []dom.NodeID {
	if i < 0 || i > len(s) {
		i = len(s)
	}
	s = append(s, dom.None)
	copy(s[i+1:], s[i:])
	s[i] = id
	return s
}

func remove(s []dom.NodeID, id dom.NodeID) []dom.NodeID {
	for i, v := range s {
		if v == id {
			return append(s[:i], s[i+1:]...)
		}
	}
	return s
}

func splice(text string, off, del int, ins string) string {
	if off < 0 {
		off = 0
	}
	if off > len(text) {
		off = len(text)
	}
	end := off + del
	if end < off {
		end = off
	}
	if end > len(text) {
		end = len(text)
	}
	return text[:off] + ins + text[end:]
}

func putField(d *dom.Data, field string, value any) {
	switch {
	case field == FieldTag:
		d.Tag, _ = value.(string)
	case field == FieldText:
		d.Text, _ = value.(string)
	case field == FieldOp:
		d.Op, _ = value.(string)
	case field == FieldLabel:
		d.Label, _ = value.(string)
	case field == FieldTarget:
		s, _ := value.(string)
		d.Target = dom.NodeID(s)
	case field == FieldScript:
		s, _ := value.(string)
		d.Script = []byte(s)
	case len(field) > len(AttrPrefix) && field[:len(AttrPrefix)] == AttrPrefix:
		name := field[len(AttrPrefix):]
		if value == nil {
			delete(d.Attrs, name)
			return
		}
		if d.Attrs == nil {
			d.Attrs = map[string]any{}
		}
		d.Attrs[name] = value
	case len(field) > len(VersionPrefix) && field[:len(VersionPrefix)] == VersionPrefix:
		key := field[len(VersionPrefix):]
		v, ok := asInt(value)
		if !ok {
			return
		}
		if d.Applied == nil {
			d.Applied = map[string]int{}
		}
		if d.Applied[key] < v {
			d.Applied[key] = v
		}
	}
}

// asInt tolerates the numeric types a JSON round trip may produce.
func asInt(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int64:
		return int(n), true
	case float64:
		return int(n), true
	case uint64:
		return int(n), true
	default:
		return 0, false
	}
}

func ptr[T any](v T) *T { return &v }
