package orchestrator

import "errors"

// Sentinel error kinds for this package. These allow errors.Is/As from callers.
var (
	ErrNilStudent = errors.New("nil student")
	ErrCache      = errors.New("coordinate cache failed")
)
