package loadgen

import (
	"math/rand/v2"

	"github.com/okian/pulse/internal/domain/model"
)

// Student archetypes. Each row is drawn from one so the population has
// structure for k-means to find.
const (
	caseResilient = iota
	caseStrained
	caseAtRisk
	caseMixed
	archetypes
)

const (
	pcgStream = 0x9e3779b97f4a7c15
	prevHigh  = 0.7
	prevLow   = 0.15
)

var (
	genders = []string{"Male", "Female"}
	cities  = []string{"Mumbai", "Bombay", "Delhi", "New Delhi", "Pune", "Bangalore", "Chennai", "Kolkata", "Jaipur", "Hyderabad"}
	degrees = []string{"B.Tech", "BSc", "B.Com", "BA", "M.Tech", "MSc", "MBA", "MA", "PhD", "Class 12"}
	sleeps  = []string{"'Less than 5 hours'", "5-6 hours", "7-8 hours", "More than 8 hours"}
	diets   = []string{"Unhealthy", "Moderate", "Healthy"}
	yesNo   = []string{"No", "Yes"}
)

// Generate builds n survey rows with ids firstID..firstID+n-1. Equal seeds
// yield equal rows.
func Generate(n int, firstID int64, seed uint64) []model.RawRow {
	rng := rand.New(rand.NewPCG(seed, seed^pcgStream))
	rows := make([]model.RawRow, n)
	for i := range rows {
		rows[i] = generateRow(rng, firstID+int64(i))
	}
	return rows
}

func generateRow(rng *rand.Rand, id int64) model.RawRow {
	// Per-archetype levels: pressure, stress, sleep index, diet index, depression odds.
	var pressure, stress, sleep, diet int
	var depressed float64
	switch rng.IntN(archetypes) {
	case caseResilient:
		pressure, stress, sleep, diet, depressed = 1+rng.IntN(2), 1+rng.IntN(2), 2+rng.IntN(2), 1+rng.IntN(2), prevLow
	case caseStrained:
		pressure, stress, sleep, diet, depressed = 3+rng.IntN(2), 2+rng.IntN(3), 1+rng.IntN(2), rng.IntN(3), 0.5
	case caseAtRisk:
		pressure, stress, sleep, diet, depressed = 4+rng.IntN(2), 4+rng.IntN(2), rng.IntN(2), rng.IntN(2), prevHigh
	default:
		pressure, stress, sleep, diet, depressed = 1+rng.IntN(5), 1+rng.IntN(5), rng.IntN(4), rng.IntN(3), 0.4
	}

	dep := 0
	if rng.Float64() < depressed {
		dep = 1
	}
	suicidal := 0
	if rng.Float64() < 0.3+0.4*float64(dep) {
		suicidal = 1
	}

	return model.RawRow{
		"id":                                    id,
		"Gender":                                genders[rng.IntN(len(genders))],
		"Age":                                   18 + rng.IntN(17),
		"City":                                  cities[rng.IntN(len(cities))],
		"Profession":                            "Student",
		"Degree":                                degrees[rng.IntN(len(degrees))],
		"Academic Pressure":                     pressure,
		"Work Pressure":                         0,
		"CGPA":                                  5 + float64(rng.IntN(500))/100,
		"Study Satisfaction":                    1 + rng.IntN(5),
		"Job Satisfaction":                      0,
		"Sleep Duration":                        sleeps[sleep],
		"Dietary Habits":                        diets[diet],
		"Have you ever had suicidal thoughts ?": yesNo[suicidal],
		"Work/Study Hours":                      rng.IntN(13),
		"Financial Stress":                      stress,
		"Family History of Mental Illness":      yesNo[rng.IntN(2)],
		"Depression":                            dep,
	}
}

// batches splits rows into consecutive slices of at most size rows.
func batches(rows []model.RawRow, size int) [][]model.RawRow {
	if size <= 0 {
		size = DefaultBatchSize
	}
	out := make([][]model.RawRow, 0, (len(rows)+size-1)/size)
	for start := 0; start < len(rows); start += size {
		out = append(out, rows[start:min(start+size, len(rows))])
	}
	return out
}
