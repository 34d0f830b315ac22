// Package types holds request and response shapes shared by the service
// and the HTTP API.
package types

import (
	"fmt"

	"github.com/okian/pulse/internal/domain/filter"
	"github.com/okian/pulse/internal/domain/model"
	"github.com/okian/pulse/internal/domain/profile"
)

// Ingest row outcomes.
const (
	RowAccepted      = "accepted"
	RowDuplicate     = "duplicate"
	RowRejected      = "rejected"
	RowBackpressured = "backpressure"
)

// RowResult is the outcome for one submitted row.
type RowResult struct {
	Index  int    `json:"index"`
	ID     string `json:"id,omitempty"`
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

// IngestResult summarises one POST /students batch.
type IngestResult struct {
	Accepted      int         `json:"accepted"`
	Duplicates    int         `json:"duplicates"`
	Rejected      int         `json:"rejected"`
	Backpressured int         `json:"backpressured"`
	Rows          []RowResult `json:"rows"`
}

// Add records one row outcome.
func (r *IngestResult) Add(row RowResult) {
	switch row.Status {
	case RowAccepted:
		r.Accepted++
	case RowDuplicate:
		r.Duplicates++
	case RowRejected:
		r.Rejected++
	case RowBackpressured:
		r.Backpressured++
	}
	r.Rows = append(r.Rows, row)
}

// ClusterRequest is the body of POST /clusters. Absent K and MaxIterations
// and an empty Scheme select the configured defaults. A present value must
// be positive.
type ClusterRequest struct {
	K             *int          `json:"k,omitempty"`
	Scheme        string        `json:"scheme,omitempty"`
	MaxIterations *int          `json:"max_iterations,omitempty"`
	Filter        filter.Filter `json:"filter"`
}

// Int returns a pointer to v for the optional request fields.
func Int(v int) *int {
	return &v
}

// Validate rejects a K or MaxIterations that is present but not positive.
func (r ClusterRequest) Validate() error {
	if r.K != nil && *r.K <= 0 {
		return fmt.Errorf("%w: k must be positive, got %d", ErrInvalidRequest, *r.K)
	}
	if r.MaxIterations != nil && *r.MaxIterations <= 0 {
		return fmt.Errorf("%w: max_iterations must be positive, got %d", ErrInvalidRequest, *r.MaxIterations)
	}
	return nil
}

// KOr returns K, or def when it is absent.
func (r ClusterRequest) KOr(def int) int {
	if r.K == nil {
		return def
	}
	return *r.K
}

// MaxIterationsOr returns MaxIterations, or def when it is absent.
func (r ClusterRequest) MaxIterationsOr(def int) int {
	if r.MaxIterations == nil {
		return def
	}
	return *r.MaxIterations
}

// ClusterReport is the result of one clustering run.
type ClusterReport struct {
	RunID           string                     `json:"run_id"`
	K               int                        `json:"k"`
	Scheme          model.Scheme               `json:"scheme"`
	Population      int                        `json:"population"`
	Iterations      int                        `json:"iterations"`
	Converged       bool                       `json:"converged"`
	DurationMs      float64                    `json:"duration_ms"`
	Groups          [][]int64                  `json:"groups"`
	Placements      []model.Placement          `json:"placements"`
	Summaries       []profile.ClusterSummary   `json:"summaries"`
	Recommendations [][]profile.Recommendation `json:"recommendations"`
	Representatives []int64                    `json:"representatives"`
}

// StudentView is a stored student with its current risk position.
type StudentView struct {
	Student model.Student   `json:"student"`
	Risk    model.RiskEntry `json:"risk"`
}
