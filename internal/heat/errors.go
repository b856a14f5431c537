package heat

import "errors"

// Domain errors for configuration and grid operations.
var (
	// ErrInvalidConfig indicates a constant or step ratio outside its valid range.
	ErrInvalidConfig = errors.New("heat: invalid configuration")

	// ErrShapeMismatch indicates a grid whose column count does not match N.
	ErrShapeMismatch = errors.New("heat: grid shape does not match constants")
)
