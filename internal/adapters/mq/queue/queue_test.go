package queue

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/okian/pulse/internal/domain/model"
)

func job(id string) Job {
	return Job{RowID: id, Row: model.RawRow{"id": id}}
}

func TestInMemoryQueue(t *testing.T) {
	Convey("Given a queue with capacity 2", t, func() {
		ctx := context.Background()
		q := NewInMemoryQueue(WithCapacity(2))

		Convey("When it is new", func() {
			So(q.Len(), ShouldEqual, 0)
			So(q.Capacity(), ShouldEqual, 2)
			So(q.IsClosed(), ShouldBeFalse)
		})

		Convey("When a job is enqueued and consumed", func() {
			So(q.Enqueue(ctx, job("1")), ShouldBeNil)
			So(q.Len(), ShouldEqual, 1)
			got := <-q.Jobs()

			Convey("Then the same job comes out", func() {
				So(got.RowID, ShouldEqual, "1")
				So(q.Len(), ShouldEqual, 0)
			})
		})

		Convey("When the queue is full", func() {
			So(q.Enqueue(ctx, job("1")), ShouldBeNil)
			So(q.Enqueue(ctx, job("2")), ShouldBeNil)
			err := q.Enqueue(ctx, job("3"))

			Convey("Then enqueue reports backpressure", func() {
				So(errors.Is(err, ErrFull), ShouldBeTrue)
				So(q.Len(), ShouldEqual, 2)
			})
		})

		Convey("When the context is cancelled", func() {
			cctx, cancel := context.WithCancel(ctx)
			cancel()
			So(errors.Is(q.Enqueue(cctx, job("1")), context.Canceled), ShouldBeTrue)
		})

		Convey("When the queue is closed", func() {
			So(q.Enqueue(ctx, job("1")), ShouldBeNil)
			So(q.Close(), ShouldBeNil)
			So(q.Close(), ShouldBeNil)

			Convey("Then enqueue fails but queued jobs drain", func() {
				So(errors.Is(q.Enqueue(ctx, job("2")), ErrClosed), ShouldBeTrue)
				So(q.IsClosed(), ShouldBeTrue)
				got, ok := <-q.Jobs()
				So(ok, ShouldBeTrue)
				So(got.RowID, ShouldEqual, "1")
				_, ok = <-q.Jobs()
				So(ok, ShouldBeFalse)
			})
		})
	})
}

func TestInMemoryQueue_ConcurrentAccess(t *testing.T) {
	Convey("Given producers and consumers sharing a queue", t, func() {
		ctx := context.Background()
		q := NewInMemoryQueue(WithCapacity(1000))
		const producers, perProducer = 10, 100

		var wg sync.WaitGroup
		for p := 0; p < producers; p++ {
			wg.Add(1)
			go func(p int) {
				defer wg.Done()
				for i := 0; i < perProducer; i++ {
					_ = q.Enqueue(ctx, job(fmt.Sprintf("%d-%d", p, i)))
				}
			}(p)
		}
		wg.Wait()
		So(q.Close(), ShouldBeNil)

		seen := map[string]bool{}
		for j := range q.Jobs() {
			seen[j.RowID] = true
		}

		Convey("Then every job is delivered once", func() {
			So(seen, ShouldHaveLength, producers*perProducer)
		})
	})
}
