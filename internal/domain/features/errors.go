package features

import "errors"

// ErrUnknownDeviation is returned by ParseDeviation for unsupported names.
var ErrUnknownDeviation = errors.New("unknown deviation")
