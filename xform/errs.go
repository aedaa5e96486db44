package xform

import "errors"

// ErrDisjointSelection indicates a selection whose nodes share no common
// ancestor. Generalize refuses such selections instead of silently widening
// the scope to the document root.
var ErrDisjointSelection = errors.New("selection has no common ancestor")
