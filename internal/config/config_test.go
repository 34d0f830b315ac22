package config_test

import (
	"errors"
	"runtime"
	"testing"

	"github.com/okian/pulse/internal/config"
	"github.com/smartystreets/goconvey/convey"
)

func TestConfig_New(t *testing.T) {
	convey.Convey("Given a new config with default options", t, func() {
		cfg := config.New()

		convey.Convey("Then it should have sensible defaults", func() {
			convey.So(cfg.Addr, convey.ShouldEqual, ":9080")
			convey.So(cfg.QueueSize, convey.ShouldEqual, 50_000)
			convey.So(cfg.WorkerCount, convey.ShouldEqual, runtime.NumCPU()*2)
			convey.So(cfg.DedupeSize, convey.ShouldEqual, 200_000)
			convey.So(cfg.ClusterCount, convey.ShouldEqual, 5)
			convey.So(cfg.MaxIterations, convey.ShouldEqual, 100)
			convey.So(cfg.DefaultProjection, convey.ShouldEqual, "pca")
			convey.So(cfg.Deviation, convey.ShouldEqual, config.DeviationPopulation)
			convey.So(cfg.CacheBackend, convey.ShouldEqual, config.BackendMemory)
		})

		convey.Convey("Then the defaults validate", func() {
			convey.So(cfg.Validate(), convey.ShouldBeNil)
		})
	})
}

func TestConfig_Validate(t *testing.T) {
	convey.Convey("Given a default config", t, func() {
		cfg := config.New()

		convey.Convey("When cluster_count is zero", func() {
			cfg.ClusterCount = 0
			err := cfg.Validate()

			convey.Convey("Then it is rejected as invalid", func() {
				convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
				convey.So(err.Error(), convey.ShouldContainSubstring, "cluster_count")
			})
		})

		convey.Convey("When max_iterations is negative", func() {
			cfg.MaxIterations = -1
			convey.So(errors.Is(cfg.Validate(), config.ErrInvalidConfig), convey.ShouldBeTrue)
		})

		convey.Convey("When the default projection is unknown", func() {
			cfg.DefaultProjection = "mds"
			convey.So(errors.Is(cfg.Validate(), config.ErrInvalidConfig), convey.ShouldBeTrue)
		})

		convey.Convey("When the projection is upper case", func() {
			cfg.DefaultProjection = "UMAP"

			convey.Convey("Then it is accepted and normalised", func() {
				convey.So(cfg.Validate(), convey.ShouldBeNil)
				convey.So(cfg.DefaultProjection, convey.ShouldEqual, "umap")
			})
		})

		convey.Convey("When the deviation is unknown", func() {
			cfg.Deviation = "robust"
			convey.So(errors.Is(cfg.Validate(), config.ErrInvalidConfig), convey.ShouldBeTrue)
		})

		convey.Convey("When redis is selected without an address", func() {
			cfg.CacheBackend = "redis"
			cfg.RedisAddr = " "
			convey.So(errors.Is(cfg.Validate(), config.ErrInvalidConfig), convey.ShouldBeTrue)
		})

		convey.Convey("When the cache backend is unknown", func() {
			cfg.CacheBackend = "memcached"
			convey.So(errors.Is(cfg.Validate(), config.ErrInvalidConfig), convey.ShouldBeTrue)
		})
	})
}
