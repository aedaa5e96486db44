package index

import (
	"testing"

	"github.com/krsion/MyDenicek-sub001/dom"
	"github.com/krsion/MyDenicek-sub001/store"
)

func newTestTree(t *testing.T) *store.Memory {
	t.Helper()
	m := store.NewMemory("a", "root", dom.Element("body"))
	mustCreate := func(parent, id dom.NodeID, data dom.Data) {
		if _, err := m.Create(parent, id, -1, data); err != nil {
			t.Fatal(err)
		}
	}
	mustCreate("root", "ul", dom.Element("ul"))
	mustCreate("ul", "li1", dom.Element("li"))
	mustCreate("ul", "li2", dom.Element("li"))
	mustCreate("li1", "t1", dom.Value("one"))
	mustCreate("li2", "t2", dom.Value("two"))
	return m
}

func TestBuildLookups(t *testing.T) {
	x := Build(newTestTree(t))

	if x.Len() != 6 {
		t.Errorf("Len = %d, want 6", x.Len())
	}
	if p, _ := x.ParentOf("t1"); p != "li1" {
		t.Errorf("ParentOf(t1) = %q, want li1", p)
	}
	kids := x.ChildrenOf("ul")
	if len(kids) != 2 || kids[0] != "li1" || kids[1] != "li2" {
		t.Errorf("ChildrenOf(ul) = %v", kids)
	}
	type depthTest struct {
		id    dom.NodeID
		depth int
	}
	tests := []depthTest{
		{"root", 0},
		{"ul", 1},
		{"li2", 2},
		{"t2", 3},
		{"missing", -1},
	}
	for _, tc := range tests {
		if got := x.Depth(tc.id); got != tc.depth {
			t.Errorf("Depth(%s) = %d, want %d", tc.id, got, tc.depth)
		}
	}
}

func TestBuildSkipsDeleted(t *testing.T) {
	m := newTestTree(t)
	if err := m.Delete("li1"); err != nil {
		t.Fatal(err)
	}
	x := Build(m)
	if x.Has("li1") || x.Has("t1") {
		t.Errorf("deleted subtree still indexed")
	}
	if x.Len() != 4 {
		t.Errorf("Len = %d, want 4", x.Len())
	}
}

func TestVisitPreOrder(t *testing.T) {
	x := Build(newTestTree(t))
	var order []dom.NodeID
	err := x.Visit("root", func(id dom.NodeID, depth int) (bool, error) {
		order = append(order, id)
		// do not descend into li2
		return id != "li2", nil
	})
	if err != nil {
		t.Fatal(err)
	}
	want := []dom.NodeID{"root", "ul", "li1", "t1", "li2"}
	if len(order) != len(want) {
		t.Fatalf("visited %v, want %v", order, want)
	}
	for i := range want {
		if order[i] != want[i] {
			t.Fatalf("visited %v, want %v", order, want)
		}
	}
}

func TestAncestors(t *testing.T) {
	x := Build(newTestTree(t))
	anc := x.Ancestors("t2")
	want := []dom.NodeID{"li2", "ul", "root"}
	if len(anc) != len(want) {
		t.Fatalf("Ancestors(t2) = %v, want %v", anc, want)
	}
	for i := range want {
		if anc[i] != want[i] {
			t.Fatalf("Ancestors(t2) = %v, want %v", anc, want)
		}
	}
}
