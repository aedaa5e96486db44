package dom

import "errors"

var (
	// ErrNodeNotFound indicates an operation referenced a missing node id.
	ErrNodeNotFound = errors.New("node not found")

	// ErrInvalidStructuralOp indicates a structural operation that would
	// not leave a valid tree, e.g. unwrap of a multi-child node or wrap
	// of a node without a parent. The operation is a no-op.
	ErrInvalidStructuralOp = errors.New("invalid structural operation")

	// ErrUnresolvedRef indicates a symbolic reference used before being
	// bound during replay. The affected patch is skipped.
	ErrUnresolvedRef = errors.New("unresolved symbolic reference")

	// ErrNoCausalData indicates causal metadata was unavailable for a
	// node pair; callers degrade to treating the pair as concurrent.
	ErrNoCausalData = errors.New("causal metadata unavailable")
)
