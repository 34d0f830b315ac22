package features

import (
	"fmt"
	"strings"
)

// Deviation selects the denominator of the standard deviation.
type Deviation int

const (
	// Population divides by n.
	Population Deviation = iota
	// Sample divides by n-1. A single-row column falls back to 1.
	Sample
)

func (d Deviation) String() string {
	if d == Sample {
		return "sample"
	}
	return "population"
}

// ParseDeviation accepts "population" or "sample" (case-insensitive).
func ParseDeviation(name string) (Deviation, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "population":
		return Population, nil
	case "sample":
		return Sample, nil
	default:
		return Population, fmt.Errorf("%w: %q", ErrUnknownDeviation, name)
	}
}

type standardizer struct {
	deviation Deviation
}

// Option applies a configuration option to Standardize.
type Option func(*standardizer)

// WithDeviation selects population or sample deviation.
func WithDeviation(d Deviation) Option {
	return func(s *standardizer) {
		s.deviation = d
	}
}
