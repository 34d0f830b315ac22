// Package repository holds preprocessed students and their at-risk ranking.
package repository

import (
	"context"

	"github.com/okian/pulse/internal/domain/model"
)

// Store provides read/write access to the student population.
type Store interface {
	// Upsert inserts a student or replaces the one with the same ID.
	Upsert(ctx context.Context, s model.Student) error

	// Get returns a copy of one student.
	// Returns ErrNotFound if the student is unknown.
	Get(ctx context.Context, id int64) (model.Student, error)

	// All returns copies of every student ordered by ID.
	All(ctx context.Context) []model.Student

	// Count returns the number of students held.
	Count(ctx context.Context) int

	// AssignClusters writes cluster labels back to stored students and
	// returns how many were updated. Unknown IDs are ignored.
	AssignClusters(ctx context.Context, labels map[int64]int) int

	// TopRisk returns the n highest-risk students, risk desc then ID asc.
	TopRisk(ctx context.Context, n int) ([]model.RiskEntry, error)

	// RiskRank returns the ranking position of one student.
	// Returns ErrNotFound if the student is unknown.
	RiskRank(ctx context.Context, id int64) (model.RiskEntry, error)
}
