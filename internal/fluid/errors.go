package fluid

import "errors"

var (
	// ErrShapeMismatch reports a grid, mask, or frame whose dimensions do not
	// match the simulation or camera resolution it is used with.
	ErrShapeMismatch = errors.New("fluid: shape mismatch")

	// ErrInvalidDirection reports a flow direction outside 0..3.
	ErrInvalidDirection = errors.New("fluid: invalid flow direction")

	// ErrInvalidConfig reports unusable construction parameters.
	ErrInvalidConfig = errors.New("fluid: invalid configuration")
)
