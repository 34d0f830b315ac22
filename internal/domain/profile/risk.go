// Package profile derives risk scores and per-cluster statistics from
// clustered students.
package profile

import (
	"github.com/okian/pulse/internal/domain/model"
)

// Risk levels.
const (
	LevelLow    = "low"
	LevelMedium = "medium"
	LevelHigh   = "high"
)

// Risk score contributions. The total is capped at maxRiskScore.
const (
	weightDepression     = 30
	weightSuicidal       = 25
	weightAcademic       = 15
	weightSleep          = 15
	weightFinancial      = 10
	weightFamilyHistory  = 5
	maxRiskScore         = 100
	highAcademicPressure = 4
	lowSleep             = 2
	highFinancialStress  = 4
	highRiskScore        = 60
	mediumRiskScore      = 30
)

// RiskScore returns a 0-100 score for one student.
func RiskScore(s *model.Student) float64 {
	score := 0
	if s.Depressed() {
		score += weightDepression
	}
	if s.HasSuicidalThoughts {
		score += weightSuicidal
	}
	if s.AcademicPressure >= highAcademicPressure {
		score += weightAcademic
	}
	if s.SleepDuration <= lowSleep {
		score += weightSleep
	}
	if s.FinancialStress >= highFinancialStress {
		score += weightFinancial
	}
	if s.FamilyHistory {
		score += weightFamilyHistory
	}
	return float64(min(score, maxRiskScore))
}

// Level buckets a risk score.
func Level(score float64) string {
	switch {
	case score >= highRiskScore:
		return LevelHigh
	case score >= mediumRiskScore:
		return LevelMedium
	default:
		return LevelLow
	}
}
