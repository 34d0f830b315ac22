package kmeans

import (
	"errors"
	"fmt"
)

// Sentinel error kinds for this package. These allow errors.Is/As from callers.
var (
	// ErrInvalidConfig is the parent of every rejected clustering request.
	ErrInvalidConfig = errors.New("invalid clustering config")

	ErrInvalidK          = fmt.Errorf("%w: k out of range", ErrInvalidConfig)
	ErrInvalidIterations = fmt.Errorf("%w: max iterations must be positive", ErrInvalidConfig)
	ErrDimensionMismatch = fmt.Errorf("%w: rows differ in length", ErrInvalidConfig)
)
