package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/smartystreets/goconvey/convey"

	app "github.com/okian/pulse/internal/app"
	"github.com/okian/pulse/internal/config"
	"github.com/okian/pulse/pkg/logger"
)

func init() {
	_ = logger.Init()
	_ = logger.SetLevelString("error")
}

// setenv sets kv for the current Convey scope and restores it afterwards.
func setenv(kv map[string]string) {
	for k, v := range kv {
		_ = os.Setenv(k, v)
	}
	convey.Reset(func() {
		for k := range kv {
			_ = os.Unsetenv(k)
		}
	})
}

func TestServiceOptions(t *testing.T) {
	convey.Convey("Given a loaded configuration", t, func() {
		ctx := context.Background()
		cfg := config.New()

		convey.Convey("When the memory backend is configured", func() {
			opts, closeFn, err := serviceOptions(ctx, cfg, logger.Get())

			convey.Convey("Then the service starts without redis", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(closeFn, convey.ShouldNotBeNil)
				defer closeFn()

				svc := app.New(opts...)
				convey.So(svc.Start(ctx), convey.ShouldBeNil)
				defer func() { _ = svc.Stop(ctx) }()
				stats := svc.GetStats()
				convey.So(stats["clusterCount"], convey.ShouldEqual, 5)
				convey.So(stats["scheme"], convey.ShouldEqual, "pca")
			})
		})

		convey.Convey("When the redis backend points at a live server", func() {
			srv := miniredis.RunT(t)
			cfg.CacheBackend = config.BackendRedis
			cfg.RedisAddr = srv.Addr()
			cfg.DefaultProjection = "umap"
			cfg.Deviation = config.DeviationSample

			opts, closeFn, err := serviceOptions(ctx, cfg, logger.Get())

			convey.Convey("Then the options carry the redis cache", func() {
				convey.So(err, convey.ShouldBeNil)
				defer closeFn()

				svc := app.New(opts...)
				convey.So(svc.Start(ctx), convey.ShouldBeNil)
				defer func() { _ = svc.Stop(ctx) }()
				stats := svc.GetStats()
				convey.So(stats["scheme"], convey.ShouldEqual, "umap")
				convey.So(stats["deviation"], convey.ShouldEqual, "sample")
			})
		})

		convey.Convey("When the redis server is unreachable", func() {
			cfg.CacheBackend = config.BackendRedis
			cfg.RedisAddr = "127.0.0.1:1"

			_, _, err := serviceOptions(ctx, cfg, logger.Get())

			convey.Convey("Then an error is returned", func() {
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(err.Error(), convey.ShouldContainSubstring, "connect coordinate cache")
			})
		})

		convey.Convey("When the projection name is unknown", func() {
			cfg.DefaultProjection = "mds"
			_, _, err := serviceOptions(ctx, cfg, logger.Get())

			convey.Convey("Then the configuration is rejected", func() {
				convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
			})
		})
	})
}

func TestNewMux(t *testing.T) {
	convey.Convey("Given a mux over a started service", t, func() {
		ctx := context.Background()
		cfg := config.New()
		svc := app.New(app.WithWorkerCount(2), app.WithQueueSize(100))
		convey.So(svc.Start(ctx), convey.ShouldBeNil)
		convey.Reset(func() { _ = svc.Stop(ctx) })
		mux := newMux(ctx, svc, cfg)

		get := func(path string) *httptest.ResponseRecorder {
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
			return w
		}

		convey.Convey("Then every surface is routed", func() {
			convey.So(get("/").Code, convey.ShouldEqual, http.StatusOK)
			convey.So(get("/api-docs").Code, convey.ShouldEqual, http.StatusOK)
			convey.So(get("/openapi.yaml").Code, convey.ShouldEqual, http.StatusOK)
			convey.So(get("/dashboard").Code, convey.ShouldEqual, http.StatusOK)
			convey.So(get("/healthz").Code, convey.ShouldEqual, http.StatusOK)
			convey.So(get("/stats").Code, convey.ShouldEqual, http.StatusOK)
			convey.So(get("/risk").Code, convey.ShouldEqual, http.StatusOK)
			convey.So(get("/nowhere").Code, convey.ShouldEqual, http.StatusNotFound)
		})

		convey.Convey("When a row is posted and clustered through the mux", func() {
			body := `{"id": 1, "Gender": "Female", "Age": 21, "City": "Pune", "Degree": "Bachelor of Science",
				"Academic Pressure": 4, "CGPA": 7.5, "Study Satisfaction": 2,
				"Sleep Duration": "5-6 hours", "Dietary Habits": "Moderate",
				"Have you ever had suicidal thoughts ?": "No", "Work/Study Hours": 8,
				"Financial Stress": 3, "Family History of Mental Illness": "No", "Depression": 1}`
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/students", strings.NewReader(body)))

			convey.Convey("Then the row is accepted and becomes visible", func() {
				convey.So(w.Code, convey.ShouldEqual, http.StatusAccepted)

				deadline := time.Now().Add(2 * time.Second)
				for time.Now().Before(deadline) && get("/students/1").Code != http.StatusOK {
					time.Sleep(10 * time.Millisecond)
				}
				convey.So(get("/students/1").Code, convey.ShouldEqual, http.StatusOK)
				convey.So(get("/students/1/coordinates?scheme=tsne").Code, convey.ShouldEqual, http.StatusOK)
			})
		})
	})
}

func TestMetricsUpdaters(t *testing.T) {
	convey.Convey("Given the background metric updaters", t, func() {
		convey.Convey("Then a system sample does not panic", func() {
			convey.So(updateSystemMetrics, convey.ShouldNotPanic)
		})

		convey.Convey("Then a service sample works before and after start", func() {
			svc := app.New()
			convey.So(func() { updateServiceMetrics(svc) }, convey.ShouldNotPanic)
			convey.So(svc.Start(context.Background()), convey.ShouldBeNil)
			defer func() { _ = svc.Stop(context.Background()) }()
			convey.So(func() { updateServiceMetrics(svc) }, convey.ShouldNotPanic)
		})

		convey.Convey("Then both loops return once the context ends", func() {
			ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
			defer cancel()
			done := make(chan struct{}, 2)
			go func() { startSystemMetricsUpdater(ctx); done <- struct{}{} }()
			go func() { startServiceMetricsUpdater(ctx, app.New()); done <- struct{}{} }()
			for i := 0; i < 2; i++ {
				select {
				case <-done:
				case <-time.After(2 * time.Second):
					t.Fatal("updater did not stop")
				}
			}
		})
	})
}

func TestRun(t *testing.T) {
	convey.Convey("Given the process entry point", t, func() {
		convey.Convey("When the configuration is invalid", func() {
			setenv(map[string]string{"PULSE_DEVIATION": "bogus"})

			convey.Convey("Then run fails before serving", func() {
				err := run(context.Background())
				convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
			})
		})

		convey.Convey("When the context is cancelled while serving", func() {
			setenv(map[string]string{"PULSE_ADDR": "127.0.0.1:0", "PULSE_WORKER_COUNT": "2"})
			ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
			defer cancel()

			convey.Convey("Then run shuts down cleanly", func() {
				convey.So(run(ctx), convey.ShouldBeNil)
			})
		})

		convey.Convey("When the address is already bound", func() {
			ln, err := net.Listen("tcp", "127.0.0.1:0")
			convey.So(err, convey.ShouldBeNil)
			defer func() { _ = ln.Close() }()
			setenv(map[string]string{"PULSE_ADDR": ln.Addr().String()})

			convey.Convey("Then run reports the listen failure", func() {
				err := run(context.Background())
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(err.Error(), convey.ShouldContainSubstring, "http server")
			})
		})
	})
}
