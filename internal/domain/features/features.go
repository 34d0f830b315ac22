// Package features turns students into numeric vectors and rescales them
// for clustering.
package features

import (
	"math"

	"gonum.org/v1/gonum/stat"

	"github.com/okian/pulse/internal/domain/model"
)

// Extract maps every student to its feature vector. Empty input yields an
// empty, non-nil result.
func Extract(students []*model.Student) []model.FeatureVector {
	out := make([]model.FeatureVector, 0, len(students))
	for _, s := range students {
		if s == nil {
			out = append(out, make(model.FeatureVector, model.FeatureCount))
			continue
		}
		out = append(out, model.FeatureVector{
			s.AcademicPressure,
			s.StudySatisfaction,
			s.SleepDuration,
			s.FinancialStress,
			s.DietaryHabits,
			s.WorkStudyHours,
			s.CGPA,
		})
	}
	return out
}

// Standardize rescales each column to zero mean and unit deviation.
// A column whose deviation is zero or undefined is divided by 1, so a
// constant column becomes all zeros. The input is not modified.
func Standardize(matrix []model.FeatureVector, opts ...Option) []model.FeatureVector {
	cfg := standardizer{deviation: Population}
	for _, opt := range opts {
		opt(&cfg)
	}

	if len(matrix) == 0 {
		return []model.FeatureVector{}
	}

	width := len(matrix[0])
	out := make([]model.FeatureVector, len(matrix))
	for i := range out {
		out[i] = make(model.FeatureVector, width)
	}

	column := make([]float64, len(matrix))
	for j := 0; j < width; j++ {
		for i, row := range matrix {
			column[i] = valueAt(row, j)
		}
		mean, dev := cfg.stats(column)
		if dev == 0 || math.IsNaN(dev) || math.IsInf(dev, 0) {
			dev = 1
		}
		for i, v := range column {
			out[i][j] = (v - mean) / dev
		}
	}
	return out
}

func (c standardizer) stats(column []float64) (mean, dev float64) {
	if c.deviation == Sample {
		return stat.MeanStdDev(column, nil)
	}
	return stat.PopMeanStdDev(column, nil)
}

// valueAt treats cells missing from a short row as 0.
func valueAt(row model.FeatureVector, j int) float64 {
	if j < len(row) {
		return row[j]
	}
	return 0
}
