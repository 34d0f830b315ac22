package orchestrator

import (
	"github.com/okian/pulse/internal/domain/features"
	"github.com/okian/pulse/internal/domain/kmeans"
	"github.com/okian/pulse/internal/domain/projection"
)

// DefaultMaxIterations bounds k-means when no option overrides it.
const DefaultMaxIterations = 100

// Option applies a configuration option to the Orchestrator.
type Option func(*Orchestrator)

// WithEngine sets the k-means engine, typically one built with kmeans.WithSeed.
func WithEngine(e *kmeans.Engine) Option {
	return func(o *Orchestrator) {
		if e != nil {
			o.engine = e
		}
	}
}

// WithProjector replaces the deterministic projector.
func WithProjector(p projection.Projector) Option {
	return func(o *Orchestrator) {
		if p != nil {
			o.projector = p
		}
	}
}

// WithCache sets the coordinate cache. Each orchestrator needs its own.
func WithCache(c CoordinateCache) Option {
	return func(o *Orchestrator) {
		if c != nil {
			o.cache = c
		}
	}
}

// WithDeviation selects the standardizer deviation.
func WithDeviation(d features.Deviation) Option {
	return func(o *Orchestrator) {
		o.deviation = d
	}
}

// WithMaxIterations sets the default k-means iteration bound.
func WithMaxIterations(n int) Option {
	return func(o *Orchestrator) {
		if n > 0 {
			o.maxIterations = n
		}
	}
}
