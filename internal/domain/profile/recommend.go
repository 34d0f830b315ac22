package profile

import (
	"gonum.org/v1/gonum/stat"

	"github.com/okian/pulse/internal/domain/model"
)

// Recommendation priorities.
const (
	PriorityHigh   = "high"
	PriorityMedium = "medium"
	PriorityLow    = "low"
)

// Recommendation is a suggested intervention for a cluster.
type Recommendation struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Priority    string `json:"priority"`
}

// Recommend suggests interventions for one cluster. The peer support
// group is always suggested last.
func Recommend(group []*model.Student) []Recommendation {
	var out []Recommendation
	if len(group) > 0 {
		depressed, _ := counts(group)
		sleep, academic, financial := make([]float64, len(group)), make([]float64, len(group)), make([]float64, len(group))
		for i, s := range group {
			sleep[i], academic[i], financial[i] = s.SleepDuration, s.AcademicPressure, s.FinancialStress
		}

		if float64(depressed)/float64(len(group)) > 0.4 {
			out = append(out, Recommendation{
				Title:       "Immediate psychological support",
				Description: "Schedule counselling sessions with the university health service.",
				Priority:    PriorityHigh,
			})
		}
		if stat.Mean(sleep, nil) < 2.5 {
			out = append(out, Recommendation{
				Title:       "Sleep management workshops",
				Description: "Four-week programme on sleep hygiene and relaxation techniques.",
				Priority:    PriorityMedium,
			})
		}
		if stat.Mean(academic, nil) > 3.5 {
			out = append(out, Recommendation{
				Title:       "Academic mentoring",
				Description: "Peer mentoring for managing academic stress.",
				Priority:    PriorityMedium,
			})
		}
		if stat.Mean(financial, nil) > 3 {
			out = append(out, Recommendation{
				Title:       "Financial aid and scholarships",
				Description: "Identify eligible students and simplify aid applications.",
				Priority:    PriorityHigh,
			})
		}
	}
	return append(out, Recommendation{
		Title:       "Peer support group",
		Description: "A safe space for sharing experiences and mutual help.",
		Priority:    PriorityLow,
	})
}
