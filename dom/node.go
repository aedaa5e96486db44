package dom

// NodeID identifies a node for the lifetime of the document. Ids are
// assigned by the replicated store at creation and never reused.
type NodeID string

// None is the zero NodeID.
const None NodeID = ""

// Data is the payload stored for a node. Which fields are meaningful
// depends on Kind; the rest stay zero.
type Data struct {
	Kind Kind `json:"kind"`

	// Element
	Tag   string         `json:"tag,omitempty"`
	Attrs map[string]any `json:"attrs,omitempty"`

	// Value
	Text string `json:"text,omitempty"`

	// Formula
	Op string `json:"op,omitempty"`

	// Action: Script is an encoded patch script, replayed against Target.
	Label  string `json:"label,omitempty"`
	Script []byte `json:"script,omitempty"`

	// Action, Ref
	Target NodeID `json:"target,omitempty"`

	// WrapOf marks a node created by wrapping another; it names the
	// wrapped node. The conflict resolver groups wrappers by it.
	WrapOf NodeID `json:"wrapOf,omitempty"`

	// Applied records, per transformation scope key, the highest
	// transformation version already applied to this node.
	Applied map[string]int `json:"applied,omitempty"`
}

func (d Data) Clone() Data {
	c := d
	if d.Attrs != nil {
		c.Attrs = make(map[string]any, len(d.Attrs))
		for k, v := range d.Attrs {
			c.Attrs[k] = v
		}
	}
	if d.Script != nil {
		c.Script = append([]byte(nil), d.Script...)
	}
	if d.Applied != nil {
		c.Applied = make(map[string]int, len(d.Applied))
		for k, v := range d.Applied {
			c.Applied[k] = v
		}
	}
	return c
}

// AppliedVersion returns the highest transformation version applied to the
// node for the given scope key, zero if none.
func (d Data) AppliedVersion(scopeKey string) int {
	if d.Applied == nil {
		return 0
	}
	return d.Applied[scopeKey]
}

func Element(tag string) Data {
	return Data{Kind: ElementKind, Tag: tag}
}

func Value(text string) Data {
	return Data{Kind: ValueKind, Text: text}
}

func Formula(op string) Data {
	return Data{Kind: FormulaKind, Op: op}
}

func Action(label string, script []byte, target NodeID) Data {
	return Data{Kind: ActionKind, Label: label, Script: script, Target: target}
}

func Ref(target NodeID) Data {
	return Data{Kind: RefKind, Target: target}
}
