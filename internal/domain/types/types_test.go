package types_test

import (
	"encoding/json"
	"errors"
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	types "github.com/okian/pulse/internal/domain/types"
)

func TestIngestResult(t *testing.T) {
	Convey("Given an empty ingest result", t, func() {
		var res types.IngestResult

		Convey("When row outcomes are added", func() {
			res.Add(types.RowResult{Index: 0, ID: "1", Status: types.RowAccepted})
			res.Add(types.RowResult{Index: 1, ID: "1", Status: types.RowDuplicate})
			res.Add(types.RowResult{Index: 2, Status: types.RowRejected, Error: "missing id"})
			res.Add(types.RowResult{Index: 3, ID: "4", Status: types.RowBackpressured})
			res.Add(types.RowResult{Index: 4, ID: "5", Status: types.RowAccepted})

			Convey("Then each status is counted", func() {
				So(res.Accepted, ShouldEqual, 2)
				So(res.Duplicates, ShouldEqual, 1)
				So(res.Rejected, ShouldEqual, 1)
				So(res.Backpressured, ShouldEqual, 1)
			})

			Convey("Then rows keep submission order", func() {
				So(res.Rows, ShouldHaveLength, 5)
				for i, row := range res.Rows {
					So(row.Index, ShouldEqual, i)
				}
			})
		})

		Convey("When an unknown status is added", func() {
			res.Add(types.RowResult{Status: "other"})

			Convey("Then it is listed but not counted", func() {
				So(res.Rows, ShouldHaveLength, 1)
				So(res.Accepted+res.Duplicates+res.Rejected+res.Backpressured, ShouldEqual, 0)
			})
		})
	})
}

func TestClusterRequest(t *testing.T) {
	Convey("Given cluster request bodies", t, func() {
		decode := func(body string) types.ClusterRequest {
			var req types.ClusterRequest
			So(json.Unmarshal([]byte(body), &req), ShouldBeNil)
			return req
		}

		Convey("When k and max_iterations are absent", func() {
			req := decode(`{"scheme": "umap"}`)

			Convey("Then the defaults are used", func() {
				So(req.Validate(), ShouldBeNil)
				So(req.KOr(5), ShouldEqual, 5)
				So(req.MaxIterationsOr(100), ShouldEqual, 100)
			})
		})

		Convey("When they are present and positive", func() {
			req := decode(`{"k": 3, "max_iterations": 20}`)

			Convey("Then they override the defaults", func() {
				So(req.Validate(), ShouldBeNil)
				So(req.KOr(5), ShouldEqual, 3)
				So(req.MaxIterationsOr(100), ShouldEqual, 20)
			})
		})

		Convey("When k is zero", func() {
			err := decode(`{"k": 0}`).Validate()

			Convey("Then it is rejected rather than defaulted", func() {
				So(errors.Is(err, types.ErrInvalidRequest), ShouldBeTrue)
				So(err.Error(), ShouldContainSubstring, "k must be positive")
			})
		})

		Convey("When max_iterations is zero", func() {
			err := decode(`{"max_iterations": 0}`).Validate()

			Convey("Then it is rejected", func() {
				So(errors.Is(err, types.ErrInvalidRequest), ShouldBeTrue)
			})
		})

		Convey("When a request is built in code", func() {
			req := types.ClusterRequest{K: types.Int(-1)}

			Convey("Then a negative k is rejected", func() {
				So(errors.Is(req.Validate(), types.ErrInvalidRequest), ShouldBeTrue)
			})
		})
	})
}
