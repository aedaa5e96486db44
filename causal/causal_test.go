package causal

import "testing"

func TestClockCovers(t *testing.T) {
	c := Clock{}
	c.Observe(OpID{Replica: "a", Seq: 1})
	c.Observe(OpID{Replica: "a", Seq: 3})
	c.Observe(OpID{Replica: "b", Seq: 2})

	type coverTest struct {
		id  OpID
		res bool
	}
	tests := []coverTest{
		{OpID{Replica: "a", Seq: 1}, true},
		{OpID{Replica: "a", Seq: 3}, true},
		{OpID{Replica: "a", Seq: 4}, false},
		{OpID{Replica: "b", Seq: 2}, true},
		{OpID{Replica: "c", Seq: 1}, false},
	}
	for _, tc := range tests {
		if got := c.Covers(tc.id); got != tc.res {
			t.Errorf("Covers(%v) = %v, want %v", tc.id, got, tc.res)
		}
	}
}

func TestClockMerge(t *testing.T) {
	a := Clock{"a": 3, "b": 1}
	b := Clock{"b": 4, "c": 2}
	a.Merge(b)
	want := Clock{"a": 3, "b": 4, "c": 2}
	for k, v := range want {
		if a[k] != v {
			t.Errorf("merged[%q] = %d, want %d", k, a[k], v)
		}
	}
}

func TestPrecedesAndConcurrent(t *testing.T) {
	a1 := Stamp{ID: OpID{Replica: "a", Seq: 1}, Lamport: 1}
	a2 := Stamp{ID: OpID{Replica: "a", Seq: 2}, Lamport: 2, Deps: Clock{"a": 1}}
	// b saw a1 before issuing
	b1 := Stamp{ID: OpID{Replica: "b", Seq: 1}, Lamport: 2, Deps: Clock{"a": 1}}
	// b2 is independent of a2
	b2 := Stamp{ID: OpID{Replica: "b", Seq: 2}, Lamport: 3, Deps: Clock{"a": 1, "b": 1}}

	type ordTest struct {
		name string
		x, y Stamp
		prec bool
		conc bool
	}
	tests := []ordTest{
		{"same replica seq", a1, a2, true, false},
		{"observed dep", a1, b1, true, false},
		{"independent", a2, b2, false, true},
		{"reverse", a2, a1, false, false},
	}
	for _, tc := range tests {
		if got := Precedes(tc.x, tc.y); got != tc.prec {
			t.Errorf("%s: Precedes = %v, want %v", tc.name, got, tc.prec)
		}
		if got := Concurrent(tc.x, tc.y); got != tc.conc {
			t.Errorf("%s: Concurrent = %v, want %v", tc.name, got, tc.conc)
		}
	}
}

func TestLessIsTotal(t *testing.T) {
	stamps := []Stamp{
		{ID: OpID{Replica: "b", Seq: 1}, Lamport: 1},
		{ID: OpID{Replica: "a", Seq: 1}, Lamport: 1},
		{ID: OpID{Replica: "a", Seq: 2}, Lamport: 2},
		{ID: OpID{Replica: "a", Seq: 3}, Lamport: 2},
	}
	// lamport first, then replica, then seq
	order := []int{1, 0, 2, 3}
	for i := 0; i < len(order)-1; i++ {
		x, y := stamps[order[i]], stamps[order[i+1]]
		if !Less(x, y) {
			t.Errorf("want %v < %v", x.ID, y.ID)
		}
		if Less(y, x) {
			t.Errorf("want !(%v < %v)", y.ID, x.ID)
		}
	}
}

func TestLessExtendsCausality(t *testing.T) {
	a1 := Stamp{ID: OpID{Replica: "a", Seq: 1}, Lamport: 1}
	b1 := Stamp{ID: OpID{Replica: "b", Seq: 1}, Lamport: 2, Deps: Clock{"a": 1}}
	if !Precedes(a1, b1) || !Less(a1, b1) {
		t.Errorf("causal order must be preserved by the total order")
	}
}
