package edit

import "github.com/krsion/MyDenicek-sub001/dom"

// Literal is a full node literal carried by insert patches. Its id may be
// symbolic or a composite wrapper id; replay binds or derives the concrete
// id when the node is created.
type Literal struct {
	ID    string         `json:"id,omitempty"`
	Kind  dom.Kind       `json:"kind"`
	Tag   string         `json:"tag,omitempty"`
	Attrs map[string]any `json:"attrs,omitempty"`
	Text  string         `json:"text,omitempty"`
	Op    string         `json:"op,omitempty"`
	Label string         `json:"label,omitempty"`
	// Target may be symbolic for action and ref literals.
	Target string `json:"target,omitempty"`
	WrapOf string `json:"wrapOf,omitempty"`
}

// Data converts the literal to a node payload, with any symbolic references
// already resolved by the caller.
func (l Literal) Data() dom.Data {
	d := dom.Data{
		Kind:   l.Kind,
		Tag:    l.Tag,
		Text:   l.Text,
		Op:     l.Op,
		Label:  l.Label,
		Target: dom.NodeID(l.Target),
		WrapOf: dom.NodeID(l.WrapOf),
	}
	if l.Attrs != nil {
		d.Attrs = make(map[string]any, len(l.Attrs))
		for k, v := range l.Attrs {
			d.Attrs[k] = v
		}
	}
	return d
}

// LiteralOf captures a node payload as an insert literal.
func LiteralOf(id dom.NodeID, d dom.Data) Literal {
	l := Literal{
		ID:     string(id),
		Kind:   d.Kind,
		Tag:    d.Tag,
		Text:   d.Text,
		Op:     d.Op,
		Label:  d.Label,
		Target: string(d.Target),
		WrapOf: string(d.WrapOf),
	}
	if d.Attrs != nil {
		l.Attrs = make(map[string]any, len(d.Attrs))
		for k, v := range d.Attrs {
			l.Attrs[k] = v
		}
	}
	return l
}
