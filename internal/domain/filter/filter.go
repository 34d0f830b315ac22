// Package filter narrows a population before re-clustering.
package filter

import (
	"fmt"
	"strings"

	"github.com/okian/pulse/internal/domain/model"
)

// All disables a categorical constraint. An empty value does the same.
const All = "all"

// Depression filter values.
const (
	Depressed = "depressed"
	Healthy   = "healthy"
)

// Degree filter values. Matching is by case-insensitive substring.
const (
	Bachelor = "Bachelor"
	Master   = "Master"
	PhD      = "PhD"
)

// Range is an inclusive numeric bound. A nil Range does not constrain.
type Range struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// Contains reports whether v lies within the range.
func (r *Range) Contains(v float64) bool {
	return r == nil || (v >= r.Min && v <= r.Max)
}

// Filter selects students by demographics and survey answers.
type Filter struct {
	Gender     string `json:"gender,omitempty"`
	Degree     string `json:"degree,omitempty"`
	Depression string `json:"depression,omitempty"`
	City       string `json:"city,omitempty"`
	AgeRange   *Range `json:"age_range,omitempty"`
	CGPARange  *Range `json:"cgpa_range,omitempty"`
}

// Validate rejects unknown depression values and inverted ranges.
func (f Filter) Validate() error {
	switch strings.ToLower(f.Depression) {
	case "", All, Depressed, Healthy:
	default:
		return fmt.Errorf("%w: depression %q", ErrInvalidFilter, f.Depression)
	}
	for name, r := range map[string]*Range{"age_range": f.AgeRange, "cgpa_range": f.CGPARange} {
		if r != nil && r.Min > r.Max {
			return fmt.Errorf("%w: %s min %v > max %v", ErrInvalidFilter, name, r.Min, r.Max)
		}
	}
	return nil
}

// Apply returns the students that pass every constraint, in input order.
// The input slice is not modified.
func (f Filter) Apply(students []*model.Student) []*model.Student {
	out := make([]*model.Student, 0, len(students))
	for _, s := range students {
		if s != nil && f.Match(s) {
			out = append(out, s)
		}
	}
	return out
}

// Match reports whether one student passes the filter.
func (f Filter) Match(s *model.Student) bool {
	if active(f.Gender) && s.Gender != f.Gender {
		return false
	}
	if active(f.Degree) && !matchDegree(s.Degree, f.Degree) {
		return false
	}
	switch strings.ToLower(f.Depression) {
	case Depressed:
		if s.Depression != 1 {
			return false
		}
	case Healthy:
		if s.Depression != 0 {
			return false
		}
	}
	if active(f.City) && s.City != f.City {
		return false
	}
	return f.AgeRange.Contains(s.Age) && f.CGPARange.Contains(s.CGPA)
}

func active(v string) bool {
	return v != "" && !strings.EqualFold(v, All)
}

// matchDegree treats unknown degree filters as no constraint.
func matchDegree(degree, want string) bool {
	d := strings.ToLower(degree)
	switch {
	case strings.EqualFold(want, Bachelor):
		return strings.Contains(d, "bachelor")
	case strings.EqualFold(want, Master):
		return strings.Contains(d, "master")
	case strings.EqualFold(want, PhD):
		return strings.Contains(d, "doctor") || strings.Contains(d, "phd")
	default:
		return true
	}
}
