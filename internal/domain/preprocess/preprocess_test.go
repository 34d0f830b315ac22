package preprocess_test

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/okian/pulse/internal/domain/model"
	"github.com/okian/pulse/internal/domain/preprocess"
)

func TestNormalize(t *testing.T) {
	Convey("Given a complete survey row", t, func() {
		row := model.RawRow{
			"id":                                    "140",
			"Gender":                                " Female ",
			"Age":                                   "24",
			"City":                                  "Bombay",
			"Profession":                            "Student",
			"Academic Pressure":                     "5",
			"Work Pressure":                         "0",
			"CGPA":                                  "12.4",
			"Study Satisfaction":                    "2",
			"Job Satisfaction":                      "0",
			"Sleep Duration":                        `"Less than 5 hours"`,
			"Dietary Habits":                        "Healthy",
			"Degree":                                "B.Pharm",
			"Have you ever had suicidal thoughts ?": "Yes",
			"Work/Study Hours":                      "3",
			"Financial Stress":                      "1",
			"Family History of Mental Illness":      "No",
			"Depression":                            "1",
		}

		Convey("When it is normalized", func() {
			s := preprocess.Normalize(row, 0)

			Convey("Then every field is parsed", func() {
				So(s.ID, ShouldEqual, 140)
				So(s.Gender, ShouldEqual, "Female")
				So(s.Age, ShouldEqual, 24.0)
				So(s.City, ShouldEqual, "Mumbai")
				So(s.CityOriginal, ShouldEqual, "Bombay")
				So(s.AcademicPressure, ShouldEqual, 5.0)
				So(s.StudySatisfaction, ShouldEqual, 2.0)
				So(s.SleepDuration, ShouldEqual, 1.0)
				So(s.DietaryHabits, ShouldEqual, 5.0)
				So(s.Degree, ShouldEqual, "B.Pharm")
				So(s.HasSuicidalThoughts, ShouldBeTrue)
				So(s.FamilyHistory, ShouldBeFalse)
				So(s.WorkStudyHours, ShouldEqual, 3.0)
				So(s.FinancialStress, ShouldEqual, 1.0)
				So(s.Depression, ShouldEqual, 1)
				So(s.ClusterID, ShouldEqual, model.Unclustered)
			})

			Convey("Then cgpa is clamped to 10", func() {
				So(s.CGPA, ShouldEqual, 10.0)
			})
		})
	})

	Convey("Given an empty row at index 4", t, func() {
		s := preprocess.Normalize(model.RawRow{}, 4)

		Convey("Then neutral defaults are used", func() {
			So(s.ID, ShouldEqual, 5)
			So(s.Gender, ShouldEqual, "Unknown")
			So(s.Degree, ShouldEqual, "Unknown")
			So(s.Profession, ShouldEqual, "Student")
			So(s.Age, ShouldEqual, 20.0)
			So(s.AcademicPressure, ShouldEqual, 3.0)
			So(s.CGPA, ShouldEqual, 5.0)
			So(s.StudySatisfaction, ShouldEqual, 3.0)
			So(s.SleepDuration, ShouldEqual, 3.0)
			So(s.DietaryHabits, ShouldEqual, 3.0)
			So(s.WorkStudyHours, ShouldEqual, 8.0)
			So(s.FinancialStress, ShouldEqual, 3.0)
			So(s.Depression, ShouldEqual, 0)
			So(s.WellnessScore, ShouldAlmostEqual, 52, 1e-9)
		})
	})

	Convey("Given a row using snake_case keys and JSON numbers", t, func() {
		var row model.RawRow
		So(json.Unmarshal([]byte(`{"id": 7, "academic_pressure": 4, "cgpa": -1, "depression": "yes", "sleep_duration": 9, "family_history": true}`), &row), ShouldBeNil)
		s := preprocess.Normalize(row, 0)

		Convey("Then the aliases are honoured", func() {
			So(s.ID, ShouldEqual, 7)
			So(s.AcademicPressure, ShouldEqual, 4.0)
			So(s.CGPA, ShouldEqual, 0.0)
			So(s.Depression, ShouldEqual, 1)
			So(s.SleepDuration, ShouldEqual, 5.0)
			So(s.FamilyHistory, ShouldBeTrue)
		})
	})
}

func TestScore(t *testing.T) {
	Convey("Given sleep and diet answers", t, func() {
		cases := map[string]float64{
			"Less than 5 hours":   1,
			"'5-6 hours'":         2,
			"7-8 hours":           4,
			"More than 8 hours":   5,
			"Unhealthy":           1,
			"Moderate":            3,
			"healthy":             5,
			"Others":              3,
			"":                    3,
		}

		Convey("Then each maps to its 1..5 score", func() {
			for answer, want := range cases {
				So(preprocess.Score(answer), ShouldEqual, want)
			}
			So(preprocess.Score(nil), ShouldEqual, 3.0)
			So(preprocess.Score(0.0), ShouldEqual, 1.0)
		})
	})
}

func TestNormalizeCity(t *testing.T) {
	Convey("Given city names", t, func() {
		So(preprocess.NormalizeCity("Bengaluru"), ShouldEqual, "Bangalore")
		So(preprocess.NormalizeCity("Calcutta"), ShouldEqual, "Kolkata")
		So(preprocess.NormalizeCity("New Delhi"), ShouldEqual, "Delhi")
		So(preprocess.NormalizeCity("Pune"), ShouldEqual, "Pune")
	})
}

func TestWellnessScore(t *testing.T) {
	Convey("Given an ideal student", t, func() {
		s := &model.Student{SleepDuration: 5, DietaryHabits: 5, StudySatisfaction: 5}

		Convey("Then the score is 100", func() {
			So(preprocess.WellnessScore(s), ShouldAlmostEqual, 100, 1e-9)
		})
	})

	Convey("Given a struggling student", t, func() {
		s := &model.Student{SleepDuration: 1, DietaryHabits: 1, StudySatisfaction: 1, FinancialStress: 5, AcademicPressure: 5}

		Convey("Then the score is low", func() {
			So(preprocess.WellnessScore(s), ShouldAlmostEqual, 12, 1e-9)
		})
	})
}

func TestRowID(t *testing.T) {
	Convey("Given rows with and without ids", t, func() {
		id, err := preprocess.RowID(model.RawRow{"id": "12"})
		So(err, ShouldBeNil)
		So(id, ShouldEqual, "12")

		id, err = preprocess.RowID(model.RawRow{"id": 12.0})
		So(err, ShouldBeNil)
		So(id, ShouldEqual, "12")

		_, err = preprocess.RowID(model.RawRow{"Gender": "Male"})
		So(errors.Is(err, preprocess.ErrMissingID), ShouldBeTrue)

		_, err = preprocess.RowID(model.RawRow{"id": "abc"})
		So(errors.Is(err, preprocess.ErrMissingID), ShouldBeTrue)

		id, err = preprocess.RowID(model.RawRow{"id": -42.0})
		So(err, ShouldBeNil)
		So(id, ShouldEqual, "-42")

		id, err = preprocess.RowID(model.RawRow{"id": float64(1<<53 - 1)})
		So(err, ShouldBeNil)
		So(id, ShouldEqual, "9007199254740991")
	})

	Convey("Given ids too large to hold exactly", t, func() {
		for _, v := range []any{1e19, 2e19, -1e19, float64(1 << 53), "9007199254740993", math.Inf(1)} {
			_, err := preprocess.RowID(model.RawRow{"id": v})
			So(errors.Is(err, preprocess.ErrMissingID), ShouldBeTrue)
		}
	})
}

func TestDefaultNormalizer(t *testing.T) {
	Convey("Given the default normalizer", t, func() {
		ctx := context.Background()

		Convey("When the row is empty", func() {
			_, err := preprocess.Default.Normalize(ctx, model.RawRow{}, 0)
			So(errors.Is(err, preprocess.ErrEmptyRow), ShouldBeTrue)
		})

		Convey("When the row has content", func() {
			s, err := preprocess.Default.Normalize(ctx, model.RawRow{"id": 3}, 0)
			So(err, ShouldBeNil)
			So(s.ID, ShouldEqual, 3)
		})
	})
}
