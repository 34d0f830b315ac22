// Package orchestrator runs the clustering pipeline over a population and
// resolves projected coordinates through a per-session cache.
//
// An Orchestrator is single-threaded: callers serialise access to it.
package orchestrator

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/okian/pulse/internal/domain/features"
	"github.com/okian/pulse/internal/domain/kmeans"
	"github.com/okian/pulse/internal/domain/model"
	"github.com/okian/pulse/internal/domain/projection"
	"github.com/okian/pulse/pkg/metrics"
)

// Clustering describes one run over one population. Labels and Groups are
// never reused for a different input.
type Clustering struct {
	RunID       string
	K           int
	Labels      []int
	Assignments map[int64]int
	Groups      [][]*model.Student
	Centroids   []model.FeatureVector
	Iterations  int
	Converged   bool
	Duration    time.Duration
}

// Orchestrator ties extraction, standardization, k-means and projection together.
type Orchestrator struct {
	engine        *kmeans.Engine
	projector     projection.Projector
	cache         CoordinateCache
	deviation     features.Deviation
	maxIterations int
}

// New creates an Orchestrator with a fresh memory cache unless WithCache is given.
func New(opts ...Option) *Orchestrator {
	o := &Orchestrator{
		projector:     projection.Deterministic,
		deviation:     features.Population,
		maxIterations: DefaultMaxIterations,
	}
	for _, opt := range opts {
		opt(o)
	}
	if o.engine == nil {
		o.engine = kmeans.New()
	}
	if o.cache == nil {
		o.cache = NewMemoryCache()
	}
	return o
}

// MaxIterations returns the default iteration bound.
func (o *Orchestrator) MaxIterations() int { return o.maxIterations }

// RunClustering clusters students into k groups with the default iteration
// bound and writes each label to ClusterID.
func (o *Orchestrator) RunClustering(ctx context.Context, students []*model.Student, k int) (Clustering, error) {
	return o.RunClusteringWithLimit(ctx, students, k, o.maxIterations)
}

// RunClusteringWithLimit is RunClustering with an explicit iteration bound.
// Configuration errors leave every student untouched.
func (o *Orchestrator) RunClusteringWithLimit(ctx context.Context, students []*model.Student, k, maxIterations int) (Clustering, error) {
	if err := ctx.Err(); err != nil {
		return Clustering{}, err
	}
	for i, s := range students {
		if s == nil {
			return Clustering{}, fmt.Errorf("run clustering: row %d: %w", i, ErrNilStudent)
		}
	}

	if err := kmeans.Validate(len(students), k, maxIterations); err != nil {
		metrics.RecordClusteringConfigError()
		return Clustering{}, fmt.Errorf("run clustering: %w", err)
	}

	start := time.Now()
	matrix := features.Standardize(features.Extract(students), features.WithDeviation(o.deviation))
	res, err := o.engine.Cluster(matrix, k, maxIterations)
	if err != nil {
		metrics.RecordClusteringConfigError()
		return Clustering{}, fmt.Errorf("run clustering: %w", err)
	}

	out := Clustering{
		RunID:       uuid.NewString(),
		K:           k,
		Labels:      res.Labels,
		Assignments: make(map[int64]int, len(students)),
		Groups:      make([][]*model.Student, k),
		Centroids:   res.Centroids,
		Iterations:  res.Iterations,
		Converged:   res.Converged,
	}
	for c := range out.Groups {
		out.Groups[c] = []*model.Student{}
	}
	for i, s := range students {
		label := res.Labels[i]
		s.ClusterID = label
		out.Assignments[s.ID] = label
		out.Groups[label] = append(out.Groups[label], s)
	}
	out.Duration = time.Since(start)

	metrics.RecordClusteringRun(len(students), res.Iterations, res.Converged, float64(out.Duration.Microseconds())/1000)
	return out, nil
}

// GetOrComputeCoordinates returns the cached coordinate for the student
// under scheme, projecting and caching it on a miss. The result is also
// written to ProjX and ProjY.
func (o *Orchestrator) GetOrComputeCoordinates(ctx context.Context, s *model.Student, scheme model.Scheme) (model.Coordinate, error) {
	c, err := o.resolve(ctx, s, scheme)
	if err != nil {
		return model.Coordinate{}, err
	}
	s.ProjX, s.ProjY = c.X, c.Y
	return c, nil
}

// Place resolves coordinates for every student and returns them as
// placements without touching ProjX or ProjY.
func (o *Orchestrator) Place(ctx context.Context, students []*model.Student, scheme model.Scheme) ([]model.Placement, error) {
	out := make([]model.Placement, 0, len(students))
	for _, s := range students {
		c, err := o.resolve(ctx, s, scheme)
		if err != nil {
			return nil, err
		}
		out = append(out, model.Placement{
			Student:   s,
			StudentID: s.ID,
			ClusterID: s.ClusterID,
			X:         c.X,
			Y:         c.Y,
		})
	}
	if n, err := o.cache.Len(ctx); err == nil {
		metrics.UpdateProjectionCacheEntries(n)
	}
	return out, nil
}

// CacheLen reports how many students have a cached coordinate.
func (o *Orchestrator) CacheLen(ctx context.Context) (int, error) {
	return o.cache.Len(ctx)
}

func (o *Orchestrator) resolve(ctx context.Context, s *model.Student, scheme model.Scheme) (model.Coordinate, error) {
	if err := ctx.Err(); err != nil {
		return model.Coordinate{}, err
	}
	if s == nil {
		return model.Coordinate{}, ErrNilStudent
	}

	cached, ok, err := o.cache.Get(ctx, s.ID)
	if err != nil {
		return model.Coordinate{}, fmt.Errorf("%w: get %d: %w", ErrCache, s.ID, err)
	}
	if ok && cached.Scheme == scheme {
		metrics.RecordProjectionCacheHit()
		return cached, nil
	}

	c, err := o.projector.Project(s, scheme)
	if err != nil {
		return model.Coordinate{}, fmt.Errorf("project student %d: %w", s.ID, err)
	}
	if err := o.cache.Put(ctx, s.ID, c); err != nil {
		return model.Coordinate{}, fmt.Errorf("%w: put %d: %w", ErrCache, s.ID, err)
	}
	metrics.RecordProjectionCacheMiss(string(scheme))
	return c, nil
}
