package profile

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"

	"github.com/okian/pulse/internal/domain/features"
	"github.com/okian/pulse/internal/domain/model"
)

// Cluster depression-rate thresholds, in percent.
const (
	highClusterRate   = 40
	mediumClusterRate = 20
	maxRepresentative = 12
)

// ClusterSummary aggregates one cluster.
type ClusterSummary struct {
	ID             int     `json:"id"`
	Size           int     `json:"size"`
	DepressionRate float64 `json:"depression_rate"`
	SuicidalRate   float64 `json:"suicidal_rate"`
	AvgAge         float64 `json:"avg_age"`
	AvgCGPA        float64 `json:"avg_cgpa"`
	AvgSleep       float64 `json:"avg_sleep"`
	AvgAcademic    float64 `json:"avg_academic"`
	AvgFinancial   float64 `json:"avg_financial"`
	RiskLevel      string  `json:"risk_level"`
}

// Basic holds population-wide figures.
type Basic struct {
	Total          int     `json:"total"`
	Depressed      int     `json:"depressed"`
	Suicidal       int     `json:"suicidal"`
	DepressionRate float64 `json:"depression_rate"`
	SuicidalRate   float64 `json:"suicidal_rate"`
	AvgAge         float64 `json:"avg_age"`
	AvgCGPA        float64 `json:"avg_cgpa"`
}

// Factor is the strength of one feature's link to depression.
type Factor struct {
	Name        string  `json:"name"`
	Correlation float64 `json:"correlation"`
	Direction   string  `json:"direction"`
}

// FeatureNames labels the columns of model.FeatureVector.
var FeatureNames = []string{
	"academic_pressure",
	"study_satisfaction",
	"sleep_duration",
	"financial_stress",
	"dietary_habits",
	"work_study_hours",
	"cgpa",
}

// Summarize aggregates every group. Empty groups report zeros and low risk.
func Summarize(groups [][]*model.Student) []ClusterSummary {
	out := make([]ClusterSummary, 0, len(groups))
	for id, g := range groups {
		sum := ClusterSummary{ID: id, Size: len(g), RiskLevel: LevelLow}
		if len(g) > 0 {
			depressed, suicidal := counts(g)
			sum.DepressionRate = percent(depressed, len(g))
			sum.SuicidalRate = percent(suicidal, len(g))
			sum.AvgAge = mean(g, func(s *model.Student) float64 { return s.Age })
			sum.AvgCGPA = mean(g, func(s *model.Student) float64 { return s.CGPA })
			sum.AvgSleep = mean(g, func(s *model.Student) float64 { return s.SleepDuration })
			sum.AvgAcademic = mean(g, func(s *model.Student) float64 { return s.AcademicPressure })
			sum.AvgFinancial = mean(g, func(s *model.Student) float64 { return s.FinancialStress })
			switch {
			case sum.DepressionRate > highClusterRate:
				sum.RiskLevel = LevelHigh
			case sum.DepressionRate > mediumClusterRate:
				sum.RiskLevel = LevelMedium
			}
		}
		out = append(out, sum)
	}
	return out
}

// Representatives picks up to two students per cluster, one depressed and
// one not when both exist, capped at twelve overall.
func Representatives(groups [][]*model.Student) []*model.Student {
	out := make([]*model.Student, 0, maxRepresentative)
	for _, g := range groups {
		picked := 0
		var depressed, healthy *model.Student
		for _, s := range g {
			if depressed == nil && s.Depressed() {
				depressed = s
			}
			if healthy == nil && !s.Depressed() {
				healthy = s
			}
		}
		for _, s := range []*model.Student{depressed, healthy} {
			if s != nil {
				out = append(out, s)
				picked++
			}
		}
		if picked < 2 {
			for _, s := range g {
				if s != depressed && s != healthy {
					out = append(out, s)
					break
				}
			}
		}
	}
	if len(out) > maxRepresentative {
		out = out[:maxRepresentative]
	}
	return out
}

// RiskFactors ranks features by the absolute Pearson correlation with
// depression. Undefined correlations count as 0.
func RiskFactors(students []*model.Student) []Factor {
	out := make([]Factor, 0, len(FeatureNames))
	if len(students) == 0 {
		return out
	}
	matrix := features.Extract(students)
	dep := make([]float64, len(students))
	for i, s := range students {
		dep[i] = float64(s.Depression)
	}
	col := make([]float64, len(students))
	for j, name := range FeatureNames {
		for i, row := range matrix {
			col[i] = row[j]
		}
		r := stat.Correlation(col, dep, nil)
		if math.IsNaN(r) || math.IsInf(r, 0) {
			r = 0
		}
		direction := "negative"
		if r > 0 {
			direction = "positive"
		}
		out = append(out, Factor{Name: name, Correlation: math.Abs(r), Direction: direction})
	}
	sort.SliceStable(out, func(a, b int) bool { return out[a].Correlation > out[b].Correlation })
	return out
}

// Stats computes population-wide figures.
func Stats(students []*model.Student) Basic {
	b := Basic{Total: len(students)}
	if b.Total == 0 {
		return b
	}
	b.Depressed, b.Suicidal = counts(students)
	b.DepressionRate = percent(b.Depressed, b.Total)
	b.SuicidalRate = percent(b.Suicidal, b.Total)
	b.AvgAge = mean(students, func(s *model.Student) float64 { return s.Age })
	b.AvgCGPA = mean(students, func(s *model.Student) float64 { return s.CGPA })
	return b
}

func counts(students []*model.Student) (depressed, suicidal int) {
	for _, s := range students {
		if s.Depressed() {
			depressed++
		}
		if s.HasSuicidalThoughts {
			suicidal++
		}
	}
	return depressed, suicidal
}

func percent(part, total int) float64 {
	return float64(part) / float64(total) * 100
}

func mean(students []*model.Student, field func(*model.Student) float64) float64 {
	values := make([]float64, len(students))
	for i, s := range students {
		values[i] = field(s)
	}
	return stat.Mean(values, nil)
}
