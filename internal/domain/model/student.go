// Package model contains domain models passed between layers.
package model

// Unclustered marks a student that no clustering run has labelled yet.
const Unclustered = -1

// FeatureCount is the length of every FeatureVector.
const FeatureCount = 7

// Student is one preprocessed survey row.
// ClusterID, ProjX and ProjY are written by the orchestrator.
type Student struct {
	ID           int64   `json:"id"`
	Gender       string  `json:"gender"`
	Age          float64 `json:"age"`
	City         string  `json:"city"`
	CityOriginal string  `json:"city_original,omitempty"`
	Profession   string  `json:"profession,omitempty"`
	Degree       string  `json:"degree"`

	AcademicPressure  float64 `json:"academic_pressure"`
	WorkPressure      float64 `json:"work_pressure"`
	CGPA              float64 `json:"cgpa"`
	StudySatisfaction float64 `json:"study_satisfaction"`
	JobSatisfaction   float64 `json:"job_satisfaction"`
	SleepDuration     float64 `json:"sleep_duration"`
	DietaryHabits     float64 `json:"dietary_habits"`
	WorkStudyHours    float64 `json:"work_study_hours"`
	FinancialStress   float64 `json:"financial_stress"`

	Depression          int     `json:"depression"`
	HasSuicidalThoughts bool    `json:"has_suicidal_thoughts"`
	FamilyHistory       bool    `json:"family_history"`
	WellnessScore       float64 `json:"wellness_score"`

	ClusterID int     `json:"cluster_id"`
	ProjX     float64 `json:"proj_x"`
	ProjY     float64 `json:"proj_y"`
}

// Clustered reports whether a clustering run has labelled the student.
func (s *Student) Clustered() bool { return s.ClusterID >= 0 }

// Depressed reports whether the survey marked the student as depressed.
func (s *Student) Depressed() bool { return s.Depression == 1 }

// FeatureVector is the ordered numeric tuple fed to clustering:
// academic pressure, study satisfaction, sleep, financial stress, diet,
// work/study hours, cgpa.
type FeatureVector []float64
