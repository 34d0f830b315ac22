package metrics

import (
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	. "github.com/smartystreets/goconvey/convey"
)

func TestMetricsManagerCreation(t *testing.T) {
	Convey("Given metrics manager creation", t, func() {
		Convey("When creating with a fresh registry", func() {
			registry := prometheus.NewRegistry()
			manager := NewManager(WithPrometheusRegistry(registry))

			Convey("Then collectors are registered under the pulse namespace", func() {
				So(manager, ShouldNotBeNil)
				manager.clusteringRuns.Inc()
				families, err := registry.Gather()
				So(err, ShouldBeNil)
				So(len(families), ShouldBeGreaterThan, 0)
				found := false
				for _, f := range families {
					if f.GetName() == "pulse_clustering_runs_total" {
						found = true
					}
				}
				So(found, ShouldBeTrue)
			})
		})

		Convey("When creating with custom naming", func() {
			registry := prometheus.NewRegistry()
			manager := NewManager(
				WithNamespace("test"),
				WithSubsystem("unit"),
				WithHistogramBuckets([]float64{1, 10}),
				WithIterationBuckets([]float64{1, 2}),
				WithPrometheusRegistry(registry),
			)

			Convey("Then names follow the options", func() {
				manager.rowsAccepted.Inc()
				So(testutil.ToFloat64(manager.rowsAccepted), ShouldEqual, 1.0)
				n, err := testutil.GatherAndCount(registry, "test_unit_rows_accepted_total")
				So(err, ShouldBeNil)
				So(n, ShouldEqual, 1)
			})
		})

		Convey("When two managers share a registry", func() {
			registry := prometheus.NewRegistry()
			_ = NewManager(WithPrometheusRegistry(registry))

			Convey("Then the duplicate registration panics", func() {
				So(func() { NewManager(WithPrometheusRegistry(registry)) }, ShouldPanic)
			})
		})
	})
}

func TestGlobalRecorders(t *testing.T) {
	Convey("Given the global manager", t, func() {
		Convey("When recording a non-converged clustering run", func() {
			before := testutil.ToFloat64(globalManager.clusteringNonConverged)
			runs := testutil.ToFloat64(globalManager.clusteringRuns)
			RecordClusteringRun(12, 100, false, 3.5)

			Convey("Then both the run and the non-convergence are counted", func() {
				So(testutil.ToFloat64(globalManager.clusteringRuns), ShouldEqual, runs+1)
				So(testutil.ToFloat64(globalManager.clusteringNonConverged), ShouldEqual, before+1)
				So(testutil.ToFloat64(globalManager.clusteringPopulation), ShouldEqual, 12.0)
			})
		})

		Convey("When recording a converged run", func() {
			before := testutil.ToFloat64(globalManager.clusteringNonConverged)
			RecordClusteringRun(6, 3, true, 0.2)

			Convey("Then non-convergence is untouched", func() {
				So(testutil.ToFloat64(globalManager.clusteringNonConverged), ShouldEqual, before)
			})
		})

		Convey("When recording projection cache activity", func() {
			hits := testutil.ToFloat64(globalManager.projectionCacheHits)
			misses := testutil.ToFloat64(globalManager.projectionCacheMisses)
			RecordProjectionCacheHit()
			RecordProjectionCacheMiss("tsne")
			UpdateProjectionCacheEntries(7)

			Convey("Then hits, misses and per-scheme counts move", func() {
				So(testutil.ToFloat64(globalManager.projectionCacheHits), ShouldEqual, hits+1)
				So(testutil.ToFloat64(globalManager.projectionCacheMisses), ShouldEqual, misses+1)
				So(testutil.ToFloat64(globalManager.projectionsComputed.WithLabelValues("tsne")), ShouldBeGreaterThanOrEqualTo, 1)
				So(testutil.ToFloat64(globalManager.projectionCacheEntries), ShouldEqual, 7.0)
			})
		})

		Convey("When calling the remaining recorders", func() {
			Convey("Then none of them panic", func() {
				So(func() {
					RecordRowAccepted()
					RecordRowDuplicate()
					RecordRowRejected()
					UpdateQueueSize(3)
					UpdateQueueCapacity(10)
					UpdateQueueUtilization(0.3)
					RecordQueueEnqueue()
					RecordQueueDequeue()
					RecordQueueEnqueueError()
					UpdateWorkerCount(4)
					RecordWorkerProcessingLatency(1)
					RecordWorkerError()
					UpdateStudentsTotal(5)
					UpdateRiskIndexSize(5)
					RecordRepositoryUpsertLatency(0.1)
					RecordRepositoryQueryLatency(0.1)
					RecordClusteringConfigError()
					RecordHTTPRequest("clusters", "POST", "200")
					RecordHTTPRequestDuration("clusters", "POST", "200", 2)
					RecordErrorByComponent("queue", "queue_full")
					RecordErrorByType("client_error", "medium")
					RecordErrorByEndpoint("clusters", "POST", "client_error")
					UpdateSystemMemoryUsage(1024)
					UpdateSystemGoroutineCount(8)
					RecordSystemGCPauseTime(0.4)
				}, ShouldNotPanic)
			})

			Convey("And the registry exposes them", func() {
				families, err := GetRegistry().Gather()
				So(err, ShouldBeNil)
				names := make([]string, 0, len(families))
				for _, f := range families {
					names = append(names, f.GetName())
				}
				So(strings.Join(names, ","), ShouldContainSubstring, "pulse_clustering_http_requests_total")
			})
		})
	})
}
