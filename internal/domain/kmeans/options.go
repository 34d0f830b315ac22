package kmeans

import (
	"math/rand"
)

// Option applies a configuration option to the Engine.
type Option func(*Engine)

// WithRand sets the source used to pick initial centroids.
func WithRand(r *rand.Rand) Option {
	return func(e *Engine) {
		if r != nil {
			e.rng = r
		}
	}
}

// WithSeed makes centroid initialisation reproducible.
func WithSeed(seed int64) Option {
	return func(e *Engine) {
		e.rng = rand.New(rand.NewSource(seed)) //nolint:gosec // not security sensitive
	}
}
