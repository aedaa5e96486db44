package eval

import "errors"

var ErrCycle = errors.New("reference cycle")
