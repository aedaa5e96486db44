// Package render serializes a document to HTML. Elements become tags with
// their attributes sorted by name, value nodes become text, and formula and
// reference nodes render as their evaluated value.
package render

import (
	"fmt"
	"sort"
	"strings"

	"golang.org/x/net/html"

	"github.com/krsion/MyDenicek-sub001/dom"
	"github.com/krsion/MyDenicek-sub001/eval"
)

// HTML renders the subtree at root. Action nodes produce no output.
func HTML(doc eval.Doc, root dom.NodeID) (string, error) {
	ev := eval.New(doc)
	n, err := build(doc, ev, root)
	if err != nil {
		return "", err
	}
	if n == nil {
		return "", nil
	}
	var b strings.Builder
	if err := html.Render(&b, n); err != nil {
		return "", err
	}
	return b.String(), nil
}

func build(doc eval.Doc, ev *eval.Evaluator, id dom.NodeID) (*html.Node, error) {
	data, ok := doc.Node(id)
	if !ok {
		return nil, fmt.Errorf("render %q: %w", id, dom.ErrNodeNotFound)
	}
	switch data.Kind {
	case dom.ValueKind:
		return &html.Node{Type: html.TextNode, Data: data.Text}, nil
	case dom.FormulaKind, dom.RefKind:
		v, err := ev.Value(id)
		if err != nil {
			return nil, fmt.Errorf("render %q: %w", id, err)
		}
		return &html.Node{Type: html.TextNode, Data: fmt.Sprintf("%v", v)}, nil
	case dom.ActionKind:
		return nil, nil
	}

	n := &html.Node{Type: html.ElementNode, Data: data.Tag, Attr: attrs(data)}
	for _, c := range doc.ChildrenOf(id) {
		k, err := build(doc, ev, c)
		if err != nil {
			return nil, err
		}
		if k != nil {
			n.AppendChild(k)
		}
	}
	return n, nil
}

func attrs(data dom.Data) []html.Attribute {
	if len(data.Attrs) == 0 {
		return nil
	}
	keys := make([]string, 0, len(data.Attrs))
	for k := range data.Attrs {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	out := make([]html.Attribute, len(keys))
	for i, k := range keys {
		out[i] = html.Attribute{Key: k, Val: fmt.Sprintf("%v", data.Attrs[k])}
	}
	return out
}
