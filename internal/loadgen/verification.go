package loadgen

import (
	"fmt"
	"math"

	"github.com/okian/pulse/internal/domain/model"
	"github.com/okian/pulse/internal/domain/types"
)

// VerifyReport checks that a clustering report is a valid partition of its
// population: every label in [0, k), groups disjoint and complete, and one
// placement per student agreeing with its group.
func VerifyReport(r types.ClusterReport) error {
	if r.K <= 0 {
		return fmt.Errorf("%w: k=%d", ErrVerification, r.K)
	}
	if len(r.Groups) != r.K {
		return fmt.Errorf("%w: %d groups for k=%d", ErrVerification, len(r.Groups), r.K)
	}
	if len(r.Placements) != r.Population {
		return fmt.Errorf("%w: %d placements for population %d", ErrVerification, len(r.Placements), r.Population)
	}

	owner := make(map[int64]int, r.Population)
	for c, group := range r.Groups {
		for _, id := range group {
			if prev, dup := owner[id]; dup {
				return fmt.Errorf("%w: student %d in clusters %d and %d", ErrVerification, id, prev, c)
			}
			owner[id] = c
		}
	}
	if len(owner) != r.Population {
		return fmt.Errorf("%w: groups cover %d of %d students", ErrVerification, len(owner), r.Population)
	}

	for _, p := range r.Placements {
		if p.ClusterID < 0 || p.ClusterID >= r.K {
			return fmt.Errorf("%w: student %d label %d out of range", ErrVerification, p.StudentID, p.ClusterID)
		}
		if owner[p.StudentID] != p.ClusterID {
			return fmt.Errorf("%w: student %d placed in %d but grouped in %d",
				ErrVerification, p.StudentID, p.ClusterID, owner[p.StudentID])
		}
		if math.IsNaN(p.X) || math.IsNaN(p.Y) || math.IsInf(p.X, 0) || math.IsInf(p.Y, 0) {
			return fmt.Errorf("%w: student %d has non-finite coordinates", ErrVerification, p.StudentID)
		}
	}
	return nil
}

// VerifyStable checks that every student placed in both runs kept the same
// coordinates.
func VerifyStable(a, b []model.Placement) error {
	prev := make(map[int64]model.Placement, len(a))
	for _, p := range a {
		prev[p.StudentID] = p
	}
	for _, p := range b {
		q, ok := prev[p.StudentID]
		if !ok {
			continue
		}
		if q.X != p.X || q.Y != p.Y {
			return fmt.Errorf("%w: student %d moved from (%g, %g) to (%g, %g)",
				ErrVerification, p.StudentID, q.X, q.Y, p.X, p.Y)
		}
	}
	return nil
}

// VerifyRiskOrder checks ranks are ascending and scores non-increasing.
func VerifyRiskOrder(entries []model.RiskEntry) error {
	for i := 1; i < len(entries); i++ {
		a, b := entries[i-1], entries[i]
		if b.Score > a.Score {
			return fmt.Errorf("%w: risk score rises at rank %d", ErrVerification, b.Rank)
		}
		if b.Rank < a.Rank {
			return fmt.Errorf("%w: rank falls from %d to %d", ErrVerification, a.Rank, b.Rank)
		}
	}
	return nil
}
