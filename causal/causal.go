// Package causal implements the causal-order comparisons every merge
// decision in the document core is tied back to. Operations carry a Stamp:
// who emitted them, their per-replica sequence number, a lamport timestamp,
// and the dependency clock the emitting replica had seen. Precedes and
// Concurrent answer causality questions; Less is the deterministic total
// order extending causality that all tiebreaks use.
package causal

// OpID identifies one operation: the emitting replica and its sequence
// counter on that replica. Sequence counters start at 1.
type OpID struct {
	Replica string `json:"replica"`
	Seq     uint64 `json:"seq"`
}

// Clock maps replica ids to the highest sequence number seen from each.
type Clock map[string]uint64

func (c Clock) Clone() Clock {
	if c == nil {
		return nil
	}
	out := make(Clock, len(c))
	for k, v := range c {
		out[k] = v
	}
	return out
}

// Observe folds an operation into the clock.
func (c Clock) Observe(id OpID) {
	if c[id.Replica] < id.Seq {
		c[id.Replica] = id.Seq
	}
}

// Merge folds another clock into this one.
func (c Clock) Merge(other Clock) {
	for k, v := range other {
		if c[k] < v {
			c[k] = v
		}
	}
}

// Covers reports whether the clock has seen the given operation.
func (c Clock) Covers(id OpID) bool {
	return c[id.Replica] >= id.Seq
}

// Stamp is the full causal metadata attached to one operation.
type Stamp struct {
	ID      OpID   `json:"id"`
	Lamport uint64 `json:"lamport"`
	// Deps is the emitting replica's clock at emission time, including
	// the replica's own prior operations. Nil means metadata was lost;
	// comparisons then degrade to "concurrent".
	Deps Clock `json:"deps,omitempty"`
}

// Zero reports whether the stamp carries no metadata at all.
func (s Stamp) Zero() bool {
	return s.ID.Replica == "" && s.ID.Seq == 0
}

// Precedes reports whether a causally precedes b: b's emitter had seen a
// when it emitted b. Operations from the same replica are strictly ordered
// by sequence number. Missing dependency data never establishes precedence.
func Precedes(a, b Stamp) bool {
	if a.ID == b.ID {
		return false
	}
	if a.ID.Replica == b.ID.Replica {
		return a.ID.Seq < b.ID.Seq
	}
	if b.Deps == nil {
		return false
	}
	return b.Deps.Covers(a.ID)
}

// Concurrent reports whether neither stamp causally precedes the other.
// Pairs with unavailable metadata come out concurrent, which is the safe
// degradation for conflict resolution.
func Concurrent(a, b Stamp) bool {
	return !Precedes(a, b) && !Precedes(b, a)
}

// Less is a deterministic total order on stamps extending causal order:
// lamport timestamp first, then replica id, then sequence number. Every
// replica sorts any op set identically under it.
func Less(a, b Stamp) bool {
	if a.Lamport != b.Lamport {
		return a.Lamport < b.Lamport
	}
	if a.ID.Replica != b.ID.Replica {
		return a.ID.Replica < b.ID.Replica
	}
	return a.ID.Seq < b.ID.Seq
}

// Max returns the stamp that wins a deterministic last-writer tiebreak.
func Max(a, b Stamp) Stamp {
	if Less(a, b) {
		return b
	}
	return a
}
