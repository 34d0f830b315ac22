package repository

import (
	"time"

	"github.com/okian/pulse/internal/domain/model"
)

// Option applies a configuration option to the TreapStore.
type Option func(*TreapStore)

// WithMetricsUpdateInterval sets the interval for background metrics updates.
func WithMetricsUpdateInterval(interval time.Duration) Option {
	return func(s *TreapStore) {
		if interval > 0 {
			s.metricsUpdateInterval = interval
		}
	}
}

// WithRiskScorer replaces the function that scores students for the risk index.
func WithRiskScorer(fn func(*model.Student) float64) Option {
	return func(s *TreapStore) {
		if fn != nil {
			s.score = fn
		}
	}
}
