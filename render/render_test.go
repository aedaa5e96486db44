package render

import (
	"testing"

	"github.com/krsion/MyDenicek-sub001/dom"
	"github.com/krsion/MyDenicek-sub001/index"
	"github.com/krsion/MyDenicek-sub001/store"
)

func TestRenderDocument(t *testing.T) {
	m := store.NewMemory("a", "root", dom.Element("body"))
	mustCreate := func(parent, id dom.NodeID, data dom.Data) {
		t.Helper()
		if _, err := m.Create(parent, id, -1, data); err != nil {
			t.Fatal(err)
		}
	}
	link := dom.Element("a")
	link.Attrs = map[string]any{"href": "http://example.com"}
	mustCreate("root", "a1", link)
	mustCreate("a1", "a1t", dom.Value("Click here"))
	mustCreate("root", "p1", dom.Element("p"))
	mustCreate("p1", "p1t", dom.Value("Hello, world!"))

	got, err := HTML(index.Build(m), "root")
	if err != nil {
		t.Fatal(err)
	}
	want := `<body><a href="http://example.com">Click here</a><p>Hello, world!</p></body>`
	if got != want {
		t.Errorf("HTML =\n %s\nwant\n %s", got, want)
	}
}

func TestRenderAttrsSorted(t *testing.T) {
	m := store.NewMemory("a", "root", dom.Element("div"))
	d := dom.Element("img")
	d.Attrs = map[string]any{"src": "x.png", "alt": "x", "width": 10}
	if _, err := m.Create("root", "i", -1, d); err != nil {
		t.Fatal(err)
	}
	got, err := HTML(index.Build(m), "i")
	if err != nil {
		t.Fatal(err)
	}
	want := `<img alt="x" src="x.png" width="10"/>`
	if got != want {
		t.Errorf("HTML = %s, want %s", got, want)
	}
}

func TestRenderFormulaValue(t *testing.T) {
	m := store.NewMemory("a", "root", dom.Element("p"))
	mustCreate := func(parent, id dom.NodeID, data dom.Data) {
		t.Helper()
		if _, err := m.Create(parent, id, -1, data); err != nil {
			t.Fatal(err)
		}
	}
	mustCreate("root", "x", dom.Value("2"))
	mustCreate("root", "y", dom.Value("3"))
	mustCreate("root", "f", dom.Formula("sum"))

	got, err := HTML(index.Build(m), "root")
	if err != nil {
		t.Fatal(err)
	}
	want := `<p>235</p>`
	if got != want {
		t.Errorf("HTML = %s, want %s", got, want)
	}
}

func TestRenderSkipsActions(t *testing.T) {
	m := store.NewMemory("a", "root", dom.Element("p"))
	if _, err := m.Create("root", "t", -1, dom.Value("hi")); err != nil {
		t.Fatal(err)
	}
	if _, err := m.Create("root", "act", -1, dom.Action("go", nil, "t")); err != nil {
		t.Fatal(err)
	}
	got, err := HTML(index.Build(m), "root")
	if err != nil {
		t.Fatal(err)
	}
	if got != "<p>hi</p>" {
		t.Errorf("HTML = %s", got)
	}
}
