package filter

import "errors"

// ErrInvalidFilter is returned by Validate.
var ErrInvalidFilter = errors.New("invalid filter")
