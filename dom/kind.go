package dom

import "fmt"

// Kind enumerates the node kinds a document may contain.
type Kind int

const (
	ElementKind Kind = iota
	ValueKind
	FormulaKind
	ActionKind
	RefKind
)

func (k Kind) String() string {
	s, ok := map[Kind]string{
		ElementKind: "Element",
		ValueKind:   "Value",
		FormulaKind: "Formula",
		ActionKind:  "Action",
		RefKind:     "Ref",
	}[k]
	if ok {
		return s
	}
	return "<unknown kind>"
}

func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

func (k *Kind) UnmarshalText(d []byte) error {
	kk, ok := map[string]Kind{
		"Element": ElementKind,
		"Value":   ValueKind,
		"Formula": FormulaKind,
		"Action":  ActionKind,
		"Ref":     RefKind,
	}[string(d)]
	if !ok {
		return fmt.Errorf("unrecognized kind %q", d)
	}
	*k = kk
	return nil
}

func Kinds() []Kind {
	return []Kind{
		ElementKind,
		ValueKind,
		FormulaKind,
		ActionKind,
		RefKind,
	}
}

// IsLeaf reports whether nodes of this kind may never have children.
// Formulas carry their arguments as children.
func (k Kind) IsLeaf() bool {
	switch k {
	case ElementKind, FormulaKind:
		return false
	default:
		return true
	}
}
