// Package eval computes the values of formula and reference nodes. It
// consumes only the document read API: an Evaluator is built over an index
// snapshot and caches values for that snapshot's lifetime.
//
// A formula's operation is either a builtin name or an expression compiled
// with expr; arguments are the formula's children's values, or, for a
// formula with no children, the values of its preceding siblings.
package eval

import (
	"fmt"
	"strconv"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"

	"github.com/krsion/MyDenicek-sub001/debug"
	"github.com/krsion/MyDenicek-sub001/dom"
)

// Doc is the read surface the evaluator needs; *index.Index satisfies it.
type Doc interface {
	Node(id dom.NodeID) (dom.Data, bool)
	ParentOf(id dom.NodeID) (dom.NodeID, bool)
	ChildrenOf(id dom.NodeID) []dom.NodeID
}

type Evaluator struct {
	doc      Doc
	cache    map[dom.NodeID]any
	busy     map[dom.NodeID]bool
	programs map[string]*vm.Program
}

func New(doc Doc) *Evaluator {
	return &Evaluator{
		doc:      doc,
		cache:    map[dom.NodeID]any{},
		busy:     map[dom.NodeID]bool{},
		programs: map[string]*vm.Program{},
	}
}

// Value computes a node's value. Value nodes yield their text, coerced to a
// number when it parses as one; elements yield the list of their children's
// values; refs follow their target; formulas apply their operation.
func (e *Evaluator) Value(id dom.NodeID) (any, error) {
	if v, ok := e.cache[id]; ok {
		return v, nil
	}
	if e.busy[id] {
		return nil, fmt.Errorf("evaluating %q: %w", id, ErrCycle)
	}
	e.busy[id] = true
	defer delete(e.busy, id)

	data, ok := e.doc.Node(id)
	if !ok {
		return nil, fmt.Errorf("evaluating %q: %w", id, dom.ErrNodeNotFound)
	}
	v, err := e.value(id, data)
	if err != nil {
		return nil, err
	}
	e.cache[id] = v
	return v, nil
}

func (e *Evaluator) value(id dom.NodeID, data dom.Data) (any, error) {
	switch data.Kind {
	case dom.ValueKind:
		return coerce(data.Text), nil
	case dom.ElementKind:
		return e.values(e.doc.ChildrenOf(id))
	case dom.RefKind:
		if _, ok := e.doc.Node(data.Target); !ok {
			return nil, fmt.Errorf("ref %q -> %q: %w", id, data.Target, dom.ErrUnresolvedRef)
		}
		return e.Value(data.Target)
	case dom.FormulaKind:
		return e.formula(id, data)
	}
	return nil, fmt.Errorf("%s node %q has no value", data.Kind, id)
}

func (e *Evaluator) formula(id dom.NodeID, data dom.Data) (any, error) {
	argIDs := e.doc.ChildrenOf(id)
	if len(argIDs) == 0 {
		argIDs = e.preceding(id)
	}
	args, err := e.values(argIDs)
	if err != nil {
		return nil, err
	}
	if debug.Eval() {
		debug.Logf("eval: %q op=%q args=%d\n", id, data.Op, len(args))
	}
	src, ok := builtins[data.Op]
	if !ok {
		src = data.Op
	}
	prog, err := e.program(src)
	if err != nil {
		return nil, fmt.Errorf("formula %q: %w", id, err)
	}
	out, err := expr.Run(prog, map[string]any{"args": args})
	if err != nil {
		return nil, fmt.Errorf("formula %q: %w", id, err)
	}
	return out, nil
}

// preceding returns the siblings before a formula node, its implicit
// argument stack.
func (e *Evaluator) preceding(id dom.NodeID) []dom.NodeID {
	parent, ok := e.doc.ParentOf(id)
	if !ok {
		return nil
	}
	var out []dom.NodeID
	for _, c := range e.doc.ChildrenOf(parent) {
		if c == id {
			break
		}
		out = append(out, c)
	}
	return out
}

func (e *Evaluator) values(ids []dom.NodeID) ([]any, error) {
	out := make([]any, len(ids))
	for i, c := range ids {
		v, err := e.Value(c)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

func (e *Evaluator) program(src string) (*vm.Program, error) {
	if p, ok := e.programs[src]; ok {
		return p, nil
	}
	p, err := expr.Compile(src, e.exprOpts()...)
	if err != nil {
		return nil, err
	}
	e.programs[src] = p
	return p, nil
}

func (e *Evaluator) exprOpts() []expr.Option {
	return []expr.Option{
		expr.AllowUndefinedVariables(),
		expr.Function("text", func(params ...any) (any, error) {
			data, ok := e.doc.Node(dom.NodeID(params[0].(string)))
			if !ok {
				return nil, fmt.Errorf("text(%v): %w", params[0], dom.ErrNodeNotFound)
			}
			return data.Text, nil
		},
			new(func(string) string)),
		expr.Function("value", func(params ...any) (any, error) {
			return e.Value(dom.NodeID(params[0].(string)))
		},
			new(func(string) any)),
		expr.Function("children", func(params ...any) (any, error) {
			kids := e.doc.ChildrenOf(dom.NodeID(params[0].(string)))
			out := make([]any, len(kids))
			for i, c := range kids {
				out[i] = string(c)
			}
			return out, nil
		},
			new(func(string) []any)),
	}
}

func coerce(text string) any {
	if n, err := strconv.ParseInt(text, 10, 64); err == nil {
		return int(n)
	}
	if f, err := strconv.ParseFloat(text, 64); err == nil {
		return f
	}
	return text
}
