// Package kmeans partitions feature vectors with Lloyd's algorithm.
//
// An Engine is not safe for concurrent use: it owns a *rand.Rand.
package kmeans

import (
	"fmt"
	"math"
	"math/rand"
	"time"

	"gonum.org/v1/gonum/floats"

	"github.com/okian/pulse/internal/domain/model"
)

// unassigned is the label every point starts with, so the first pass
// always reports a change.
const unassigned = -1

// Result is the outcome of one clustering run.
type Result struct {
	// Labels holds one cluster index in [0, k) per input row.
	Labels    []int
	Centroids []model.FeatureVector
	// Iterations counts assignment passes, never more than maxIterations.
	Iterations int
	// Converged is false when maxIterations ran out while labels still moved.
	Converged bool
}

// Engine runs k-means over standardized feature matrices.
type Engine struct {
	rng *rand.Rand
}

// New creates an Engine. Without WithRand or WithSeed the initial
// centroids depend on the wall clock.
func New(opts ...Option) *Engine {
	e := &Engine{}
	for _, opt := range opts {
		opt(e)
	}
	if e.rng == nil {
		e.rng = rand.New(rand.NewSource(time.Now().UnixNano())) //nolint:gosec // not security sensitive
	}
	return e
}

// Validate checks k and maxIterations against a population of n points.
// An empty population accepts any positive k.
func Validate(n, k, maxIterations int) error {
	if k <= 0 {
		return fmt.Errorf("%w: k=%d", ErrInvalidK, k)
	}
	if maxIterations <= 0 {
		return fmt.Errorf("%w: got %d", ErrInvalidIterations, maxIterations)
	}
	if n > 0 && k > n {
		return fmt.Errorf("%w: k=%d exceeds %d points", ErrInvalidK, k, n)
	}
	return nil
}

// Cluster partitions matrix into k groups. Invalid k or maxIterations and
// ragged rows are rejected before any random draw. Empty input returns an
// empty result.
func (e *Engine) Cluster(matrix []model.FeatureVector, k, maxIterations int) (Result, error) {
	if err := Validate(len(matrix), k, maxIterations); err != nil {
		return Result{}, err
	}
	if len(matrix) == 0 {
		return Result{Labels: []int{}, Centroids: []model.FeatureVector{}, Converged: true}, nil
	}
	width := len(matrix[0])
	for i, row := range matrix {
		if len(row) != width {
			return Result{}, fmt.Errorf("%w: row %d has %d values, want %d", ErrDimensionMismatch, i, len(row), width)
		}
	}

	centroids := e.initialCentroids(matrix, k)
	labels := make([]int, len(matrix))
	for i := range labels {
		labels[i] = unassigned
	}

	res := Result{Labels: labels, Centroids: centroids}
	sums := make([]model.FeatureVector, k)
	for c := range sums {
		sums[c] = make(model.FeatureVector, width)
	}
	counts := make([]int, k)

	for res.Iterations < maxIterations {
		res.Iterations++

		changed := false
		for i, point := range matrix {
			if c := nearest(point, centroids); c != labels[i] {
				labels[i] = c
				changed = true
			}
		}
		if !changed {
			res.Converged = true
			break
		}
		recompute(matrix, labels, centroids, sums, counts)
	}
	return res, nil
}

// initialCentroids copies k rows chosen without replacement.
func (e *Engine) initialCentroids(matrix []model.FeatureVector, k int) []model.FeatureVector {
	idx := e.rng.Perm(len(matrix))[:k]
	centroids := make([]model.FeatureVector, k)
	for c, i := range idx {
		centroids[c] = append(model.FeatureVector(nil), matrix[i]...)
	}
	return centroids
}

// nearest returns the index of the closest centroid. Ties go to the lower index.
func nearest(point model.FeatureVector, centroids []model.FeatureVector) int {
	best, bestDist := 0, math.Inf(1)
	for c, centroid := range centroids {
		if d := floats.Distance(point, centroid, 2); d < bestDist {
			best, bestDist = c, d
		}
	}
	return best
}

// recompute moves each centroid to the mean of its members. A centroid
// with no members stays where it is.
func recompute(matrix []model.FeatureVector, labels []int, centroids, sums []model.FeatureVector, counts []int) {
	for c := range sums {
		for j := range sums[c] {
			sums[c][j] = 0
		}
		counts[c] = 0
	}
	for i, point := range matrix {
		floats.Add(sums[labels[i]], point)
		counts[labels[i]]++
	}
	for c, n := range counts {
		if n == 0 {
			continue
		}
		floats.Scale(1/float64(n), sums[c])
		copy(centroids[c], sums[c])
	}
}
