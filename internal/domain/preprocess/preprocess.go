// Package preprocess turns raw survey rows into students.
//
// Normalize is total: every missing or malformed value falls back to a
// neutral default so downstream feature extraction never sees gaps.
package preprocess

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/okian/pulse/internal/domain/model"
)

// Normalizer converts one raw row into a student. Workers depend on this
// contract rather than on Normalize directly.
type Normalizer interface {
	Normalize(ctx context.Context, row model.RawRow, index int) (model.Student, error)
}

// Default is the Normalizer backed by Normalize.
var Default Normalizer = normalizerFunc(func(ctx context.Context, row model.RawRow, index int) (model.Student, error) {
	if err := ctx.Err(); err != nil {
		return model.Student{}, err
	}
	if len(row) == 0 {
		return model.Student{}, ErrEmptyRow
	}
	return Normalize(row, index), nil
})

type normalizerFunc func(ctx context.Context, row model.RawRow, index int) (model.Student, error)

func (f normalizerFunc) Normalize(ctx context.Context, row model.RawRow, index int) (model.Student, error) {
	return f(ctx, row, index)
}

// Normalize builds a student from row. index is the row's position and
// provides the id (index+1) when the row has none.
func Normalize(row model.RawRow, index int) model.Student {
	cityOriginal := text(row, ColCity, "")
	s := model.Student{
		ID:           int64(number(row, ColID, float64(index+1))),
		Gender:       text(row, ColGender, DefaultGender),
		Age:          number(row, ColAge, DefaultAge),
		City:         NormalizeCity(cityOriginal),
		CityOriginal: cityOriginal,
		Profession:   text(row, ColProfession, DefaultProfession),
		Degree:       text(row, ColDegree, DefaultDegree),

		AcademicPressure:  number(row, ColAcademicPressure, DefaultAcademicPressure),
		WorkPressure:      number(row, ColWorkPressure, 0),
		CGPA:              clamp(number(row, ColCGPA, DefaultCGPA), 0, 10),
		StudySatisfaction: number(row, ColStudySatisfaction, DefaultStudySatisfaction),
		JobSatisfaction:   number(row, ColJobSatisfaction, 0),
		SleepDuration:     Score(lookup(row, ColSleepDuration)),
		DietaryHabits:     Score(lookup(row, ColDietaryHabits)),
		WorkStudyHours:    number(row, ColWorkStudyHours, DefaultWorkStudyHours),
		FinancialStress:   number(row, ColFinancialStress, DefaultFinancialStress),

		Depression:          depression(lookup(row, ColDepression)),
		HasSuicidalThoughts: yes(lookup(row, ColSuicidalThoughts)),
		FamilyHistory:       yes(lookup(row, ColFamilyHistory)),

		ClusterID: model.Unclustered,
	}
	s.WellnessScore = WellnessScore(&s)
	return s
}

// maxExactID bounds id magnitudes; every whole float64 below it is exact.
const maxExactID = 1 << 53

// RowID returns the row's id column as an idempotency key. Ids must be
// whole numbers below 2^53 in magnitude.
func RowID(row model.RawRow) (string, error) {
	v, ok := row[ColID]
	if !ok {
		return "", ErrMissingID
	}
	f, ok := toFloat(v)
	if !ok || f != math.Trunc(f) || math.Abs(f) >= maxExactID {
		return "", fmt.Errorf("%w: %v", ErrMissingID, v)
	}
	return strconv.FormatInt(int64(f), 10), nil
}

// WellnessScore blends sleep, diet, satisfaction and the inverse of the
// two stress features into a 0-100 score.
func WellnessScore(s *model.Student) float64 {
	score := s.SleepDuration/5*0.25 +
		s.DietaryHabits/5*0.15 +
		s.StudySatisfaction/5*0.2 +
		(1-s.FinancialStress/5)*0.2 +
		(1-s.AcademicPressure/5)*0.2
	return math.Min(100, score*100)
}

// NormalizeCity maps historical city names to their current form.
func NormalizeCity(name string) string {
	if canonical, ok := cityAliases[name]; ok {
		return canonical
	}
	return name
}

// Score maps a sleep or diet answer to 1..5. Numbers are clamped; unknown
// or missing answers score 3.
func Score(v any) float64 {
	if f, ok := toFloat(v); ok {
		return clamp(f, 1, 5)
	}
	s, ok := v.(string)
	if !ok {
		return DefaultScore
	}
	key := strings.ToLower(strings.TrimSpace(strings.NewReplacer(`"`, "", `'`, "").Replace(s)))
	if score, ok := textScores[key]; ok {
		return score
	}
	return DefaultScore
}

// lookup returns the value under the survey header or its alias.
// Empty strings and nulls count as missing.
func lookup(row model.RawRow, column string) any {
	for _, key := range []string{column, aliases[column]} {
		if key == "" {
			continue
		}
		v, ok := row[key]
		if !ok || v == nil {
			continue
		}
		if s, isStr := v.(string); isStr && strings.TrimSpace(s) == "" {
			continue
		}
		return v
	}
	return nil
}

func text(row model.RawRow, column, def string) string {
	switch v := lookup(row, column).(type) {
	case nil:
		return def
	case string:
		return strings.TrimSpace(v)
	default:
		return fmt.Sprint(v)
	}
}

func number(row model.RawRow, column string, def float64) float64 {
	if f, ok := toFloat(lookup(row, column)); ok {
		return f
	}
	return def
}

func toFloat(v any) (float64, bool) {
	var f float64
	switch x := v.(type) {
	case float64:
		f = x
	case float32:
		f = float64(x)
	case int:
		f = float64(x)
	case int64:
		f = float64(x)
	case json.Number:
		parsed, err := x.Float64()
		if err != nil {
			return 0, false
		}
		f = parsed
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(x), 64)
		if err != nil {
			return 0, false
		}
		f = parsed
	default:
		return 0, false
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// yes accepts yes/true/1/oui in any case.
func yes(v any) bool {
	switch x := v.(type) {
	case bool:
		return x
	case nil:
		return false
	}
	if f, ok := toFloat(v); ok {
		return f == 1
	}
	switch strings.ToLower(strings.TrimSpace(fmt.Sprint(v))) {
	case "yes", "true", "oui":
		return true
	}
	return false
}

// depression reads 0/1 numerically or as yes/no. Any positive number
// counts as depressed.
func depression(v any) int {
	if f, ok := toFloat(v); ok {
		if f > 0 {
			return 1
		}
		return 0
	}
	if yes(v) {
		return 1
	}
	return 0
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
