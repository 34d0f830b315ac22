package loadgen

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/okian/pulse/internal/domain/model"
	"github.com/okian/pulse/internal/domain/types"
	"github.com/okian/pulse/pkg/logger"
)

const maxResubmits = 5

// Normalize fills zero fields with defaults.
func (c *Config) Normalize() {
	if c.BatchSize <= 0 {
		c.BatchSize = DefaultBatchSize
	}
	if c.Workers <= 0 {
		c.Workers = DefaultWorkers
	}
	if c.K <= 0 {
		c.K = DefaultK
	}
	if c.Timeout <= 0 {
		c.Timeout = DefaultTimeout
	}
	if c.WaitTimeout <= 0 {
		c.WaitTimeout = DefaultWaitTimeout
	}
	if c.FirstID == 0 {
		c.FirstID = DefaultFirstID
	}
}

// Run generates students, submits them concurrently, waits for ingestion to
// drain, then clusters under every scheme and verifies the results.
func Run(ctx context.Context, cfg *Config) (*Stats, error) {
	cfg.Normalize()
	stats := &Stats{RunID: uuid.NewString(), StartTime: time.Now()}
	log := logger.Get().With(logger.String("run", stats.RunID))

	log.Info(ctx, "starting pulse load run",
		logger.String("baseURL", cfg.BaseURL),
		logger.Int("students", cfg.NumStudents),
		logger.Int("batchSize", cfg.BatchSize),
		logger.Int("workers", cfg.Workers),
		logger.Int("k", cfg.K))

	if cfg.NumStudents <= 0 {
		return stats, ErrNoRows
	}
	client := NewClient(cfg.BaseURL, cfg.Timeout)
	if err := client.Health(ctx); err != nil {
		return stats, fmt.Errorf("service health check failed: %w", err)
	}
	baseline, err := storedStudents(ctx, client)
	if err != nil {
		return stats, fmt.Errorf("read baseline: %w", err)
	}

	rows := Generate(cfg.NumStudents, cfg.FirstID, cfg.Seed)
	stats.RowsGenerated = len(rows)
	if cfg.OutputFile != "" {
		if err := SaveRows(cfg.OutputFile, rows); err != nil {
			log.Warn(ctx, "failed to save rows", logger.Error(err))
		}
	}

	submitRows(ctx, client, cfg, rows, stats, log)
	log.Info(ctx, "submission completed",
		logger.Int("accepted", stats.Accepted),
		logger.Int("duplicates", stats.Duplicates),
		logger.Int("rejected", stats.Rejected),
		logger.Int("backpressured", stats.Backpressured),
		logger.Int("failedBatches", stats.FailedBatches))

	want := baseline + stats.Accepted
	stored, err := waitForStored(ctx, client, want, cfg.WaitTimeout)
	stats.Stored = stored
	if err != nil {
		return stats, err
	}

	for _, scheme := range Schemes {
		if err := clusterScheme(ctx, client, cfg.K, scheme, stats); err != nil {
			return stats, err
		}
		log.Info(ctx, "scheme verified", logger.String("scheme", scheme))
	}

	top, err := client.TopRisk(ctx, topRiskLimit)
	if err != nil {
		return stats, fmt.Errorf("risk retrieval failed: %w", err)
	}
	if err := VerifyRiskOrder(top); err != nil {
		return stats, err
	}
	stats.TopRiskEntries = len(top)

	stats.EndTime = time.Now()
	stats.Duration = stats.EndTime.Sub(stats.StartTime)
	displayFinalStats(ctx, log, stats)
	return stats, nil
}

// submitRows posts batches from a worker pool. Backpressured rows are
// resubmitted a bounded number of times.
func submitRows(ctx context.Context, client *Client, cfg *Config, rows []model.RawRow, stats *Stats, log logger.Logger) {
	work := make(chan []model.RawRow, cfg.Workers*2)
	var (
		wg sync.WaitGroup
		mu sync.Mutex
	)

	for w := 0; w < cfg.Workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for batch := range work {
				res, failed := postWithResubmit(ctx, client, batch)
				mu.Lock()
				stats.Batches++
				stats.Accepted += res.Accepted
				stats.Duplicates += res.Duplicates
				stats.Rejected += res.Rejected
				stats.Backpressured += res.Backpressured
				if failed {
					stats.FailedBatches++
				}
				mu.Unlock()
				if cfg.Verbose {
					log.Debug(ctx, "batch submitted",
						logger.Int("rows", len(batch)),
						logger.Int("accepted", res.Accepted),
						logger.Bool("failed", failed))
				}
			}
		}()
	}

send:
	for _, b := range batches(rows, cfg.BatchSize) {
		select {
		case <-ctx.Done():
			break send
		case work <- b:
		}
	}
	close(work)
	wg.Wait()
}

// postWithResubmit returns the merged outcome of batch. Backpressured counts
// only rows still refused after the last attempt.
func postWithResubmit(ctx context.Context, client *Client, batch []model.RawRow) (types.IngestResult, bool) {
	var total types.IngestResult
	pending := batch
	for attempt := 0; attempt <= maxResubmits && len(pending) > 0; attempt++ {
		res, _, err := client.PostRows(ctx, pending)
		if err != nil {
			return total, true
		}
		total.Accepted += res.Accepted
		total.Duplicates += res.Duplicates
		total.Rejected += res.Rejected

		var retry []model.RawRow
		for _, row := range res.Rows {
			if row.Status == types.RowBackpressured && row.Index >= 0 && row.Index < len(pending) {
				retry = append(retry, pending[row.Index])
			}
		}
		pending = retry
		if len(pending) > 0 {
			select {
			case <-ctx.Done():
				total.Backpressured += len(pending)
				return total, true
			case <-time.After(pollInterval << attempt):
			}
		}
	}
	total.Backpressured += len(pending)
	return total, false
}

// clusterScheme clusters twice under scheme and checks both reports and
// that coordinates did not move between them.
func clusterScheme(ctx context.Context, client *Client, k int, scheme string, stats *Stats) error {
	req := types.ClusterRequest{K: types.Int(k), Scheme: scheme}
	first, err := client.Cluster(ctx, req)
	if err != nil {
		return fmt.Errorf("cluster %s: %w", scheme, err)
	}
	second, err := client.Cluster(ctx, req)
	if err != nil {
		return fmt.Errorf("cluster %s: %w", scheme, err)
	}
	stats.ClusterRuns += 2

	for _, r := range []types.ClusterReport{first, second} {
		if err := VerifyReport(r); err != nil {
			return fmt.Errorf("%s run %s: %w", scheme, r.RunID, err)
		}
	}
	if err := VerifyStable(first.Placements, second.Placements); err != nil {
		return fmt.Errorf("%s: %w", scheme, err)
	}

	if len(second.Placements) > 0 {
		p := second.Placements[0]
		c, err := client.Coordinates(ctx, p.StudentID, scheme)
		if err != nil {
			return fmt.Errorf("coordinates %s: %w", scheme, err)
		}
		if c.X != p.X || c.Y != p.Y {
			return fmt.Errorf("%w: %s lookup for student %d disagrees with placement", ErrVerification, scheme, p.StudentID)
		}
	}
	stats.StableSchemes++
	return nil
}

// waitForStored polls /stats until totalStudents reaches want.
func waitForStored(ctx context.Context, client *Client, want int, timeout time.Duration) (int, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()
	for {
		n, err := storedStudents(ctx, client)
		if err == nil && n >= want {
			return n, nil
		}
		select {
		case <-ctx.Done():
			return n, fmt.Errorf("%w: %d of %d stored", ErrIngestStall, n, want)
		case <-ticker.C:
		}
	}
}

func storedStudents(ctx context.Context, client *Client) (int, error) {
	st, err := client.Stats(ctx)
	if err != nil {
		return 0, err
	}
	// JSON numbers decode as float64.
	n, _ := st["totalStudents"].(float64)
	return int(n), nil
}

// SaveRows writes rows to path as a JSON array.
func SaveRows(path string, rows []model.RawRow) error {
	if len(rows) == 0 {
		return ErrNoRows
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, directoryPermission); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}
	data, err := json.MarshalIndent(rows, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal rows: %w", err)
	}
	if err := os.WriteFile(path, data, filePermission); err != nil {
		return fmt.Errorf("failed to write rows: %w", err)
	}
	return nil
}

func displayFinalStats(ctx context.Context, log logger.Logger, stats *Stats) {
	var acceptRate, rowsPerSecond float64
	if stats.RowsGenerated > 0 {
		acceptRate = float64(stats.Accepted) / float64(stats.RowsGenerated) * percentageMultiplier
	}
	if stats.Duration > 0 {
		rowsPerSecond = float64(stats.RowsGenerated) / stats.Duration.Seconds()
	}

	log.Info(ctx, "final statistics",
		logger.Int("rowsGenerated", stats.RowsGenerated),
		logger.Int("batches", stats.Batches),
		logger.Int("accepted", stats.Accepted),
		logger.Int("duplicates", stats.Duplicates),
		logger.Int("rejected", stats.Rejected),
		logger.Int("backpressured", stats.Backpressured),
		logger.Int("failedBatches", stats.FailedBatches),
		logger.Int("stored", stats.Stored),
		logger.Int("clusterRuns", stats.ClusterRuns),
		logger.Int("stableSchemes", stats.StableSchemes),
		logger.Int("topRiskEntries", stats.TopRiskEntries),
		logger.Duration("duration", stats.Duration),
		logger.Float64("acceptRate", acceptRate),
		logger.Float64("rowsPerSecond", rowsPerSecond))
}
