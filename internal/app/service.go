// Package service provides the core business service that implements
// the dependencies required by the HTTP API.
package service

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"strings"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/okian/pulse/internal/adapters/cache"
	ingestqueue "github.com/okian/pulse/internal/adapters/mq/queue"
	workerpool "github.com/okian/pulse/internal/adapters/mq/worker"
	"github.com/okian/pulse/internal/adapters/repository"
	"github.com/okian/pulse/internal/domain/dedupe"
	"github.com/okian/pulse/internal/domain/features"
	"github.com/okian/pulse/internal/domain/kmeans"
	"github.com/okian/pulse/internal/domain/model"
	"github.com/okian/pulse/internal/domain/orchestrator"
	"github.com/okian/pulse/internal/domain/preprocess"
	"github.com/okian/pulse/internal/domain/profile"
	"github.com/okian/pulse/internal/domain/projection"
	"github.com/okian/pulse/internal/domain/types"
	"github.com/okian/pulse/pkg/logger"
	"github.com/okian/pulse/pkg/metrics"
)

// Sentinel kinds returned by the service. Callers map them with errors.Is.
var (
	ErrNotStarted     = types.ErrNotStarted
	ErrInvalidRequest = types.ErrInvalidRequest
	ErrNotFound       = types.ErrNotFound
)

// Service implements the API dependencies for the student dashboard.
//
// It owns exactly one session: the orchestrator and its coordinate cache.
// Clustering and coordinate lookups are serialised on sessionMu; ingestion
// workers only touch the repository.
type Service struct {
	mu        sync.RWMutex
	sessionMu sync.Mutex

	// Core components
	students   repository.Store
	deduper    dedupe.Deduper
	queue      ingestqueue.Queue
	workerPool *workerpool.Pool
	orch       *orchestrator.Orchestrator

	// Configuration
	workerCount   int
	queueSize     int
	dedupeSize    int
	clusterCount  int
	maxIterations int
	scheme        model.Scheme
	deviation     features.Deviation
	seed          int64
	redisClient   redis.UniversalClient
	redisTTL      time.Duration
	sessionCache  *cache.RedisCache

	// State
	started bool
	lastRun string

	logger logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithWorkerCount sets the number of ingestion workers.
func WithWorkerCount(count int) Option {
	return func(s *Service) {
		if count > 0 {
			s.workerCount = count
		}
	}
}

// WithQueueSize sets the capacity of the ingestion queue.
func WithQueueSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.queueSize = size
		}
	}
}

// WithDedupeSize sets how many row ids the deduper remembers.
func WithDedupeSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.dedupeSize = size
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithClusterCount sets the k used when a request names none.
func WithClusterCount(k int) Option {
	return func(s *Service) {
		if k > 0 {
			s.clusterCount = k
		}
	}
}

// WithMaxIterations sets the default k-means iteration bound.
func WithMaxIterations(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.maxIterations = n
		}
	}
}

// WithDefaultScheme sets the projection used when a request names none.
func WithDefaultScheme(scheme model.Scheme) Option {
	return func(s *Service) {
		if scheme != "" {
			s.scheme = scheme
		}
	}
}

// WithDeviation selects the standardizer deviation.
func WithDeviation(d features.Deviation) Option {
	return func(s *Service) {
		s.deviation = d
	}
}

// WithClusterSeed makes centroid initialisation reproducible. Zero keeps
// the engine's time-based seed.
func WithClusterSeed(seed int64) Option {
	return func(s *Service) {
		s.seed = seed
	}
}

// WithRedisCache stores projected coordinates in Redis under a per-session
// key instead of in process memory.
func WithRedisCache(client redis.UniversalClient, ttl time.Duration) Option {
	return func(s *Service) {
		if client != nil {
			s.redisClient = client
			s.redisTTL = ttl
		}
	}
}

// New constructs a new Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		workerCount:   runtime.NumCPU() * 2,
		queueSize:     50_000,
		dedupeSize:    200_000,
		clusterCount:  5,
		maxIterations: orchestrator.DefaultMaxIterations,
		scheme:        model.SchemePCA,
		deviation:     features.Population,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start initializes and starts the service components.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}
	if s.logger == nil {
		s.logger = logger.Get().Named("service")
	}

	s.logger.Info(ctx, "starting pulse service...")

	s.students = repository.NewTreapStore(ctx)
	s.deduper = dedupe.NewInMemoryDeduper(dedupe.WithMaxSize(s.dedupeSize))
	s.queue = ingestqueue.NewInMemoryQueue(ingestqueue.WithCapacity(s.queueSize))

	engineOpts := []kmeans.Option{}
	if s.seed != 0 {
		engineOpts = append(engineOpts, kmeans.WithSeed(s.seed))
	}
	orchOpts := []orchestrator.Option{
		orchestrator.WithEngine(kmeans.New(engineOpts...)),
		orchestrator.WithDeviation(s.deviation),
		orchestrator.WithMaxIterations(s.maxIterations),
	}
	backend := "memory"
	if s.redisClient != nil {
		rc := cache.NewRedis(s.redisClient, cache.WithTTL(s.redisTTL))
		orchOpts = append(orchOpts, orchestrator.WithCache(rc))
		s.sessionCache = rc
		backend = "redis:" + rc.Key()
	}
	s.orch = orchestrator.New(orchOpts...)

	s.workerPool = workerpool.NewPool(s.workerCount, s.queue, preprocess.Default, s.students)
	s.workerPool.Start(ctx)

	s.started = true
	s.logger.Info(ctx, "pulse service started",
		logger.Int("workers", s.workerCount),
		logger.Int("queueSize", s.queueSize),
		logger.Int("dedupeSize", s.dedupeSize),
		logger.String("cache", backend),
	)
	return nil
}

// Stop drains the ingestion queue and shuts the service down.
func (s *Service) Stop(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return nil
	}
	s.logger.Info(ctx, "stopping pulse service...")

	var errs []error
	if s.workerPool != nil {
		if err := s.workerPool.Shutdown(ctx); err != nil {
			errs = append(errs, err)
		}
	}
	if closer, ok := s.students.(interface{ Close() error }); ok {
		if err := closer.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	// The session id is never reused, so its redis hash is dropped with it.
	if s.sessionCache != nil {
		if err := s.sessionCache.Clear(ctx); err != nil {
			errs = append(errs, err)
		}
		s.sessionCache = nil
	}

	s.started = false
	s.logger.Info(ctx, "pulse service stopped")
	return errors.Join(errs...)
}

func (s *Service) running() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.started {
		return ErrNotStarted
	}
	return nil
}

// SeenAndRecord atomically checks if a row id was seen and records it if not.
func (s *Service) SeenAndRecord(ctx context.Context, id string) bool {
	seen := s.deduper.SeenAndRecord(ctx, id)
	if seen {
		metrics.RecordRowDuplicate()
	}
	return seen
}

// Unrecord removes a row id from the seen list, allowing it to be retried.
func (s *Service) Unrecord(ctx context.Context, id string) {
	s.deduper.Unrecord(ctx, id)
}

// Size returns the current number of remembered row ids.
func (s *Service) Size() int64 {
	if s.deduper == nil {
		return 0
	}
	return s.deduper.Size()
}

// Ingest dedupes and enqueues every row. Rows without a usable id are
// rejected; rows refused by a full queue are unrecorded so they can be
// resubmitted.
func (s *Service) Ingest(ctx context.Context, rows []model.RawRow) (types.IngestResult, error) {
	if err := s.running(); err != nil {
		return types.IngestResult{}, err
	}

	res := types.IngestResult{Rows: make([]types.RowResult, 0, len(rows))}
	received := time.Now()
	for i, row := range rows {
		id, err := preprocess.RowID(row)
		if err != nil {
			metrics.RecordRowRejected()
			res.Add(types.RowResult{Index: i, Status: types.RowRejected, Error: err.Error()})
			continue
		}
		if s.SeenAndRecord(ctx, id) {
			s.logger.Debug(ctx, "duplicate row skipped", logger.String("id", id))
			res.Add(types.RowResult{Index: i, ID: id, Status: types.RowDuplicate})
			continue
		}
		job := model.Ingest{RowID: id, Index: i, Row: row, Received: received}
		if err := s.queue.Enqueue(ctx, job); err != nil {
			s.Unrecord(ctx, id)
			if !errors.Is(err, ingestqueue.ErrFull) {
				return res, fmt.Errorf("enqueue row %s: %w", id, err)
			}
			res.Add(types.RowResult{Index: i, ID: id, Status: types.RowBackpressured, Error: err.Error()})
			continue
		}
		metrics.RecordRowAccepted()
		res.Add(types.RowResult{Index: i, ID: id, Status: types.RowAccepted})
	}
	return res, nil
}

// Student returns a stored student with its risk position.
func (s *Service) Student(ctx context.Context, id int64) (types.StudentView, error) {
	if err := s.running(); err != nil {
		return types.StudentView{}, err
	}
	st, err := s.students.Get(ctx, id)
	if err != nil {
		return types.StudentView{}, notFound(err)
	}
	risk, err := s.students.RiskRank(ctx, id)
	if err != nil {
		return types.StudentView{}, notFound(err)
	}
	return types.StudentView{Student: st, Risk: risk}, nil
}

// Cluster runs one clustering over the stored population narrowed by the
// request filter, writes the labels back and projects every member.
func (s *Service) Cluster(ctx context.Context, req types.ClusterRequest) (types.ClusterReport, error) {
	if err := s.running(); err != nil {
		return types.ClusterReport{}, err
	}
	if err := req.Filter.Validate(); err != nil {
		return types.ClusterReport{}, fmt.Errorf("%w: %w", ErrInvalidRequest, err)
	}
	scheme, err := s.parseScheme(req.Scheme)
	if err != nil {
		return types.ClusterReport{}, err
	}
	if err := req.Validate(); err != nil {
		return types.ClusterReport{}, err
	}
	k := req.KOr(s.clusterCount)
	maxIter := req.MaxIterationsOr(s.maxIterations)

	s.sessionMu.Lock()
	defer s.sessionMu.Unlock()

	population := req.Filter.Apply(s.population(ctx))

	run, err := s.orch.RunClusteringWithLimit(ctx, population, k, maxIter)
	if err != nil {
		if errors.Is(err, kmeans.ErrInvalidConfig) {
			return types.ClusterReport{}, fmt.Errorf("%w: %w", ErrInvalidRequest, err)
		}
		return types.ClusterReport{}, err
	}
	s.students.AssignClusters(ctx, run.Assignments)

	placements, err := s.orch.Place(ctx, population, scheme)
	if err != nil {
		return types.ClusterReport{}, err
	}

	report := types.ClusterReport{
		RunID:           run.RunID,
		K:               run.K,
		Scheme:          scheme,
		Population:      len(population),
		Iterations:      run.Iterations,
		Converged:       run.Converged,
		DurationMs:      float64(run.Duration.Microseconds()) / 1000,
		Groups:          make([][]int64, len(run.Groups)),
		Placements:      placements,
		Summaries:       profile.Summarize(run.Groups),
		Recommendations: make([][]profile.Recommendation, len(run.Groups)),
		Representatives: []int64{},
	}
	for c, g := range run.Groups {
		ids := make([]int64, len(g))
		for i, st := range g {
			ids[i] = st.ID
		}
		report.Groups[c] = ids
		report.Recommendations[c] = profile.Recommend(g)
	}
	for _, st := range profile.Representatives(run.Groups) {
		report.Representatives = append(report.Representatives, st.ID)
	}

	s.mu.Lock()
	s.lastRun = run.RunID
	s.mu.Unlock()

	s.logger.Info(ctx, "clustering finished",
		logger.String("run", run.RunID),
		logger.Int("population", len(population)),
		logger.Int("k", k),
		logger.Int("iterations", run.Iterations),
		logger.Bool("converged", run.Converged),
		logger.String("scheme", string(scheme)),
	)
	return report, nil
}

// Coordinates returns the session's coordinate for one student, computing
// and caching it on first request.
func (s *Service) Coordinates(ctx context.Context, id int64, scheme string) (model.Coordinate, error) {
	if err := s.running(); err != nil {
		return model.Coordinate{}, err
	}
	sc, err := s.parseScheme(scheme)
	if err != nil {
		return model.Coordinate{}, err
	}
	st, err := s.students.Get(ctx, id)
	if err != nil {
		return model.Coordinate{}, notFound(err)
	}

	s.sessionMu.Lock()
	defer s.sessionMu.Unlock()
	return s.orch.GetOrComputeCoordinates(ctx, &st, sc)
}

// TopRisk returns the n most at-risk students.
func (s *Service) TopRisk(ctx context.Context, n int) ([]model.RiskEntry, error) {
	if err := s.running(); err != nil {
		return nil, err
	}
	entries, err := s.students.TopRisk(ctx, n)
	if errors.Is(err, repository.ErrInvalidLimit) {
		return nil, fmt.Errorf("%w: %w", ErrInvalidRequest, err)
	}
	return entries, err
}

// RiskFactors ranks features by their correlation with depression over
// the whole stored population.
func (s *Service) RiskFactors(ctx context.Context) ([]profile.Factor, error) {
	if err := s.running(); err != nil {
		return nil, err
	}
	return profile.RiskFactors(s.population(ctx)), nil
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]any {
	s.mu.RLock()
	started, lastRun := s.started, s.lastRun
	s.mu.RUnlock()

	stats := map[string]any{
		"started":       started,
		"workerCount":   s.workerCount,
		"queueSize":     s.queueSize,
		"dedupeSize":    s.dedupeSize,
		"clusterCount":  s.clusterCount,
		"maxIterations": s.maxIterations,
		"scheme":        string(s.scheme),
		"deviation":     s.deviation.String(),
	}
	if !started {
		return stats
	}

	ctx := context.Background()
	queueLen := s.queue.Len()
	total := s.students.Count(ctx)
	stats["queueLength"] = queueLen
	stats["totalStudents"] = total
	stats["dedupeEntries"] = s.Size()
	stats["lastRun"] = lastRun
	stats["dataset"] = profile.Stats(s.population(ctx))

	s.sessionMu.Lock()
	if n, err := s.orch.CacheLen(ctx); err == nil {
		stats["cachedCoordinates"] = n
	}
	s.sessionMu.Unlock()

	metrics.UpdateQueueSize(queueLen)
	metrics.UpdateStudentsTotal(total)
	metrics.UpdateWorkerCount(s.workerCount)
	return stats
}

func (s *Service) population(ctx context.Context) []*model.Student {
	all := s.students.All(ctx)
	out := make([]*model.Student, len(all))
	for i := range all {
		out[i] = &all[i]
	}
	return out
}

func (s *Service) parseScheme(name string) (model.Scheme, error) {
	if strings.TrimSpace(name) == "" {
		return s.scheme, nil
	}
	sc, err := projection.ParseScheme(name)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrInvalidRequest, err)
	}
	return sc, nil
}

func notFound(err error) error {
	if errors.Is(err, repository.ErrNotFound) {
		return fmt.Errorf("%w: %w", ErrNotFound, err)
	}
	return err
}
