package loop

import "errors"

var (
	// ErrInvalidDt indicates a non-positive or non-finite step size.
	ErrInvalidDt = errors.New("loop: dt must be positive and finite")

	// ErrInvalidSteps indicates a non-positive step count.
	ErrInvalidSteps = errors.New("loop: steps must be positive")
)
