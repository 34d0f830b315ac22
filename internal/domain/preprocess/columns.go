package preprocess

// Survey column names. Each field is looked up under its survey header
// first and its snake_case alias second.
const (
	ColID                = "id"
	ColGender            = "Gender"
	ColAge               = "Age"
	ColCity              = "City"
	ColProfession        = "Profession"
	ColAcademicPressure  = "Academic Pressure"
	ColWorkPressure      = "Work Pressure"
	ColCGPA              = "CGPA"
	ColStudySatisfaction = "Study Satisfaction"
	ColJobSatisfaction   = "Job Satisfaction"
	ColSleepDuration     = "Sleep Duration"
	ColDietaryHabits     = "Dietary Habits"
	ColDegree            = "Degree"
	ColSuicidalThoughts  = "Have you ever had suicidal thoughts ?"
	ColWorkStudyHours    = "Work/Study Hours"
	ColFinancialStress   = "Financial Stress"
	ColFamilyHistory     = "Family History of Mental Illness"
	ColDepression        = "Depression"
)

var aliases = map[string]string{
	ColGender:            "gender",
	ColAge:               "age",
	ColCity:              "city",
	ColProfession:        "profession",
	ColAcademicPressure:  "academic_pressure",
	ColWorkPressure:      "work_pressure",
	ColCGPA:              "cgpa",
	ColStudySatisfaction: "study_satisfaction",
	ColJobSatisfaction:   "job_satisfaction",
	ColSleepDuration:     "sleep_duration",
	ColDietaryHabits:     "dietary_habits",
	ColDegree:            "degree",
	ColSuicidalThoughts:  "has_suicidal_thoughts",
	ColWorkStudyHours:    "work_study_hours",
	ColFinancialStress:   "financial_stress",
	ColFamilyHistory:     "family_history",
	ColDepression:        "depression",
}

// Neutral values used when a column is missing or unparsable.
const (
	DefaultAge               = 20
	DefaultAcademicPressure  = 3
	DefaultCGPA              = 5
	DefaultStudySatisfaction = 3
	DefaultWorkStudyHours    = 8
	DefaultFinancialStress   = 3
	DefaultScore             = 3
	DefaultGender            = "Unknown"
	DefaultDegree            = "Unknown"
	DefaultProfession        = "Student"
)

var cityAliases = map[string]string{
	"Bombay":    "Mumbai",
	"New Delhi": "Delhi",
	"Bengaluru": "Bangalore",
	"Madras":    "Chennai",
	"Calcutta":  "Kolkata",
}

// Text answers for the sleep and diet questions, scored 1 (worst) to 5.
var textScores = map[string]float64{
	"less than 5 hours": 1,
	"5-6 hours":         2,
	"6-7 hours":         3,
	"7-8 hours":         4,
	"more than 8 hours": 5,
	"unhealthy":         1,
	"moderate":          3,
	"healthy":           5,
}
