// Package projection places students on a 2D map with fixed formulas.
//
// The schemes borrow the names pca, tsne and umap but are not those
// algorithms: each is an affine mix of a few features plus jitter drawn
// from a generator seeded by the student id, so a student always lands on
// the same point for a given scheme and cluster.
package projection

import (
	"fmt"
	"math"
	"strings"

	"github.com/okian/pulse/internal/domain/model"
)

// Projector computes a coordinate for one student.
type Projector interface {
	Project(s *model.Student, scheme model.Scheme) (model.Coordinate, error)
}

// ProjectorFunc adapts a function to Projector.
type ProjectorFunc func(s *model.Student, scheme model.Scheme) (model.Coordinate, error)

// Project calls f.
func (f ProjectorFunc) Project(s *model.Student, scheme model.Scheme) (model.Coordinate, error) {
	return f(s, scheme)
}

// Deterministic is the default Projector.
var Deterministic Projector = ProjectorFunc(Project)

// tsne grid layout.
const (
	gridColumns = 3
	gridSpacing = 5
	gridOffset  = 5
)

// ParseScheme validates a scheme name (case-insensitive).
func ParseScheme(name string) (model.Scheme, error) {
	switch s := model.Scheme(strings.ToLower(strings.TrimSpace(name))); s {
	case model.SchemePCA, model.SchemeTSNE, model.SchemeUMAP:
		return s, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownScheme, name)
	}
}

// Project returns the student's coordinate under scheme. It never reads or
// writes the student's ProjX/ProjY.
func Project(s *model.Student, scheme model.Scheme) (model.Coordinate, error) {
	if s == nil {
		return model.Coordinate{}, fmt.Errorf("project: nil student")
	}
	var x, y float64
	switch scheme {
	case model.SchemePCA:
		x, y = pca(s)
	case model.SchemeTSNE:
		x, y = tsne(s)
	case model.SchemeUMAP:
		x, y = umap(s)
	default:
		return model.Coordinate{}, fmt.Errorf("%w: %q", ErrUnknownScheme, scheme)
	}
	return model.Coordinate{X: x, Y: y, Scheme: scheme}, nil
}

// pca mixes the stress features on x and the wellbeing features on y.
func pca(s *model.Student) (float64, float64) {
	g := newLCG(s.ID)
	x := s.AcademicPressure*0.5 + s.FinancialStress*0.3 + g.jitter(0.5)
	y := s.StudySatisfaction*0.4 + s.SleepDuration*0.3 + s.DietaryHabits*0.3 + g.jitter(0.5)
	return x, y
}

// tsne lays clusters out on a three-column grid. Unclustered students sit
// in cell 0.
func tsne(s *model.Student) (float64, float64) {
	g := newLCG(s.ID)
	cluster := 0
	if s.Clustered() {
		cluster = s.ClusterID
	}
	baseX := float64((cluster%gridColumns)*gridSpacing - gridOffset)
	baseY := math.Floor(float64(cluster)/gridColumns)*gridSpacing - gridOffset
	x := baseX + s.AcademicPressure*0.3 + g.jitter(1.5)
	y := baseY + s.StudySatisfaction*0.4 + g.jitter(1.5)
	return x, y
}

// umap splits depressed and healthy students along x.
func umap(s *model.Student) (float64, float64) {
	g := newLCG(s.ID)
	side := -3.0
	if s.Depressed() {
		side = 3
	}
	x := side + s.AcademicPressure*0.8 + g.jitter(2)
	y := s.SleepDuration*0.6 + s.StudySatisfaction*0.7 + g.jitter(2)
	return x, y
}
