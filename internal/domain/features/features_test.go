package features_test

import (
	"errors"
	"math"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
	"gonum.org/v1/gonum/stat"

	"github.com/okian/pulse/internal/domain/features"
	"github.com/okian/pulse/internal/domain/model"
)

func column(m []model.FeatureVector, j int) []float64 {
	out := make([]float64, len(m))
	for i, row := range m {
		out[i] = row[j]
	}
	return out
}

func TestExtract(t *testing.T) {
	Convey("Given students", t, func() {
		Convey("When a student has every feature set", func() {
			s := &model.Student{
				AcademicPressure:  4,
				StudySatisfaction: 2,
				SleepDuration:     1,
				FinancialStress:   5,
				DietaryHabits:     3,
				WorkStudyHours:    10,
				CGPA:              7.5,
			}
			out := features.Extract([]*model.Student{s})

			Convey("Then the vector keeps the fixed column order", func() {
				So(out, ShouldHaveLength, 1)
				So(out[0], ShouldResemble, model.FeatureVector{4, 2, 1, 5, 3, 10, 7.5})
			})
		})

		Convey("When a student leaves features unset", func() {
			out := features.Extract([]*model.Student{{ID: 9}})

			Convey("Then missing values are zero", func() {
				So(out[0], ShouldResemble, model.FeatureVector{0, 0, 0, 0, 0, 0, 0})
			})
		})

		Convey("When the input is empty", func() {
			out := features.Extract(nil)

			Convey("Then the output is empty", func() {
				So(out, ShouldNotBeNil)
				So(out, ShouldBeEmpty)
			})
		})
	})
}

func TestStandardize(t *testing.T) {
	Convey("Given a feature matrix", t, func() {
		matrix := []model.FeatureVector{
			{1, 10, 3},
			{2, 20, 3},
			{3, 35, 3},
			{4, 41, 3},
			{9, 12, 3},
		}

		Convey("When standardizing with the population deviation", func() {
			out := features.Standardize(matrix)

			Convey("Then non-constant columns have mean 0 and deviation 1", func() {
				for j := 0; j < 2; j++ {
					mean, std := stat.PopMeanStdDev(column(out, j), nil)
					So(mean, ShouldAlmostEqual, 0, 1e-9)
					So(std, ShouldAlmostEqual, 1, 1e-9)
				}
			})

			Convey("Then the constant column becomes zeros", func() {
				for _, v := range column(out, 2) {
					So(v, ShouldEqual, 0.0)
					So(math.IsNaN(v), ShouldBeFalse)
				}
			})

			Convey("Then the input is left untouched", func() {
				So(matrix[0], ShouldResemble, model.FeatureVector{1, 10, 3})
			})
		})

		Convey("When standardizing with the sample deviation", func() {
			out := features.Standardize(matrix, features.WithDeviation(features.Sample))

			Convey("Then the sample deviation of each column is 1", func() {
				mean, std := stat.MeanStdDev(column(out, 1), nil)
				So(mean, ShouldAlmostEqual, 0, 1e-9)
				So(std, ShouldAlmostEqual, 1, 1e-9)
			})
		})

		Convey("When the matrix has a single row", func() {
			single := []model.FeatureVector{{5, 5, 5}}

			Convey("Then both deviations fall back to 1 and yield zeros", func() {
				So(features.Standardize(single)[0], ShouldResemble, model.FeatureVector{0, 0, 0})
				So(features.Standardize(single, features.WithDeviation(features.Sample))[0],
					ShouldResemble, model.FeatureVector{0, 0, 0})
			})
		})

		Convey("When the matrix is empty", func() {
			out := features.Standardize([]model.FeatureVector{})

			Convey("Then an empty result is returned", func() {
				So(out, ShouldNotBeNil)
				So(out, ShouldBeEmpty)
			})
		})
	})
}

func TestParseDeviation(t *testing.T) {
	Convey("Given deviation names", t, func() {
		Convey("Then known names parse", func() {
			d, err := features.ParseDeviation("SAMPLE")
			So(err, ShouldBeNil)
			So(d, ShouldEqual, features.Sample)
			So(d.String(), ShouldEqual, "sample")

			d, err = features.ParseDeviation("")
			So(err, ShouldBeNil)
			So(d, ShouldEqual, features.Population)
		})

		Convey("Then unknown names fail", func() {
			_, err := features.ParseDeviation("mad")
			So(errors.Is(err, features.ErrUnknownDeviation), ShouldBeTrue)
		})
	})
}
