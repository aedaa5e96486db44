package denicek

import "github.com/krsion/MyDenicek-sub001/dom"

// The error taxonomy of the core, re-exported for API users. No error here
// is fatal: operations fail individually, replay skips unresolvable
// patches, and missing causal metadata degrades to the safe treatment.
var (
	ErrNodeNotFound        = dom.ErrNodeNotFound
	ErrInvalidStructuralOp = dom.ErrInvalidStructuralOp
	ErrUnresolvedRef       = dom.ErrUnresolvedRef
	ErrNoCausalData        = dom.ErrNoCausalData
)
