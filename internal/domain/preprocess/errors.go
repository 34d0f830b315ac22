package preprocess

import "errors"

// Sentinel error kinds for this package. These allow errors.Is/As from callers.
var (
	ErrMissingID = errors.New("row has no usable id")
	ErrEmptyRow  = errors.New("row is empty")
)
