// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Provide New() to build a Config with defaults.
// - Load layers defaults, an optional YAML file and PULSE_* env vars.
// - Validation failures wrap ErrInvalidConfig.
package config

import (
	"runtime"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// Addr configures the HTTP listen address, e.g. ":9080".
	Addr string `koanf:"addr"`

	// QueueSize bounds the in-memory ingestion queue.
	QueueSize int `koanf:"queue_size"`

	// WorkerCount sets the number of ingestion workers.
	WorkerCount int `koanf:"worker_count"`

	// DedupeSize bounds how many ingested row ids are remembered.
	DedupeSize int `koanf:"dedupe_size"`

	// ClusterCount is the default k for clustering requests.
	ClusterCount int `koanf:"cluster_count"`

	// MaxIterations caps k-means assignment passes.
	MaxIterations int `koanf:"max_iterations"`

	// DefaultProjection is used when a request names no scheme: pca, tsne or umap.
	DefaultProjection string `koanf:"default_projection"`

	// Deviation selects the standardizer deviation: population or sample.
	Deviation string `koanf:"deviation"`

	// ClusterSeed seeds centroid initialisation. Zero keeps it time-seeded.
	ClusterSeed int64 `koanf:"cluster_seed"`

	// MaxRiskLimit caps GET /risk?limit.
	MaxRiskLimit int `koanf:"max_risk_limit"`

	// CacheBackend stores projected coordinates: memory or redis.
	CacheBackend string `koanf:"cache_backend"`

	// Redis settings, used when CacheBackend is redis.
	RedisAddr       string `koanf:"redis_addr"`
	RedisDB         int    `koanf:"redis_db"`
	RedisTTLSeconds int    `koanf:"redis_ttl_seconds"`
}

// Accepted enum values.
const (
	BackendMemory = "memory"
	BackendRedis  = "redis"

	DeviationPopulation = "population"
	DeviationSample     = "sample"
)

// New creates a Config populated with defaults.
func New() *Config {
	return &Config{
		LogLevel:          "info",
		Addr:              ":9080",
		QueueSize:         50_000,
		WorkerCount:       runtime.NumCPU() * 2,
		DedupeSize:        200_000,
		ClusterCount:      5,
		MaxIterations:     100,
		DefaultProjection: "pca",
		Deviation:         DeviationPopulation,
		ClusterSeed:       0,
		MaxRiskLimit:      100,
		CacheBackend:      BackendMemory,
		RedisAddr:         "localhost:6379",
		RedisDB:           0,
		RedisTTLSeconds:   0,
	}
}
