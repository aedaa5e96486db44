package eval

import (
	"errors"
	"testing"

	"github.com/krsion/MyDenicek-sub001/dom"
	"github.com/krsion/MyDenicek-sub001/index"
	"github.com/krsion/MyDenicek-sub001/store"
)

type nodeSpec struct {
	parent dom.NodeID
	id     dom.NodeID
	data   dom.Data
}

func buildDoc(t *testing.T, nodes []nodeSpec) *index.Index {
	t.Helper()
	m := store.NewMemory("a", "root", dom.Element("body"))
	for _, n := range nodes {
		if _, err := m.Create(n.parent, n.id, -1, n.data); err != nil {
			t.Fatal(err)
		}
	}
	return index.Build(m)
}

func TestBuiltinFormulas(t *testing.T) {
	type formulaTest struct {
		op   string
		args []string
		want any
	}
	tests := []formulaTest{
		{"sum", []string{"1", "2", "3"}, 6},
		{"product", []string{"2", "3", "4"}, 24},
		{"count", []string{"a", "b"}, 2},
		{"concat", []string{"foo", "bar"}, "foobar"},
		{"upper", []string{"hello"}, "HELLO"},
		{"lower", []string{"HeLLo"}, "hello"},
		{"first", []string{"x", "y"}, "x"},
		{"last", []string{"x", "y"}, "y"},
		// an unknown op compiles as an expression over args
		{"len(args) * 10", []string{"a", "b", "c"}, 30},
	}
	for _, tc := range tests {
		argIDs := []dom.NodeID{"a", "b", "c", "d"}
		nodes := []nodeSpec{{"root", "f", dom.Formula(tc.op)}}
		for i, a := range tc.args {
			nodes = append(nodes, nodeSpec{"f", argIDs[i], dom.Value(a)})
		}
		x := buildDoc(t, nodes)
		got, err := New(x).Value("f")
		if err != nil {
			t.Errorf("%s: %v", tc.op, err)
			continue
		}
		if !equalNum(got, tc.want) {
			t.Errorf("%s = %v (%T), want %v", tc.op, got, got, tc.want)
		}
	}
}

// equalNum compares tolerating the int widths expr may return.
func equalNum(got, want any) bool {
	toI := func(v any) (int, bool) {
		switch n := v.(type) {
		case int:
			return n, true
		case int64:
			return int(n), true
		case float64:
			return int(n), true
		}
		return 0, false
	}
	gi, gok := toI(got)
	wi, wok := toI(want)
	if gok && wok {
		return gi == wi
	}
	return got == want
}

func TestFormulaWithoutChildrenUsesPrecedingSiblings(t *testing.T) {
	x := buildDoc(t, []nodeSpec{
		{"root", "a", dom.Value("10")},
		{"root", "b", dom.Value("20")},
		{"root", "f", dom.Formula("sum")},
		{"root", "c", dom.Value("99")}, // after the formula, not an argument
	})
	got, err := New(x).Value("f")
	if err != nil {
		t.Fatal(err)
	}
	if !equalNum(got, 30) {
		t.Errorf("sum = %v, want 30", got)
	}
}

func TestRefResolvesLazily(t *testing.T) {
	x := buildDoc(t, []nodeSpec{
		{"root", "v", dom.Value("42")},
		{"root", "r", dom.Ref("v")},
	})
	got, err := New(x).Value("r")
	if err != nil {
		t.Fatal(err)
	}
	if !equalNum(got, 42) {
		t.Errorf("ref = %v, want 42", got)
	}
}

func TestRefCycleDetected(t *testing.T) {
	x := buildDoc(t, []nodeSpec{
		{"root", "r1", dom.Ref("r2")},
		{"root", "r2", dom.Ref("r1")},
	})
	if _, err := New(x).Value("r1"); !errors.Is(err, ErrCycle) {
		t.Errorf("err = %v, want cycle", err)
	}
}

func TestRefUnresolved(t *testing.T) {
	x := buildDoc(t, []nodeSpec{
		{"root", "r", dom.Ref("ghost")},
	})
	if _, err := New(x).Value("r"); !errors.Is(err, dom.ErrUnresolvedRef) {
		t.Errorf("err = %v, want unresolved ref", err)
	}
}

func TestAccessorFunctions(t *testing.T) {
	x := buildDoc(t, []nodeSpec{
		{"root", "v", dom.Value("hi")},
		{"root", "f", dom.Formula(`text("v") + "!"`)},
	})
	got, err := New(x).Value("f")
	if err != nil {
		t.Fatal(err)
	}
	if got != "hi!" {
		t.Errorf("got %v, want hi!", got)
	}
}
