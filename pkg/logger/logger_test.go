package logger

import (
	"bytes"
	"context"
	"errors"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestLoggerInit(t *testing.T) {
	Convey("Given the global logger", t, func() {
		Convey("When Init is called", func() {
			So(Init(), ShouldBeNil)

			Convey("Then Get returns a usable logger", func() {
				So(Get(), ShouldNotBeNil)
				So(Sync(), ShouldBeNil)
			})
		})

		Convey("When InitWithWriter receives a nil writer", func() {
			err := InitWithWriter(nil)

			Convey("Then it is rejected", func() {
				So(err, ShouldNotBeNil)
			})
		})
	})
}

func TestLoggerOutput(t *testing.T) {
	Convey("Given a logger writing to a buffer", t, func() {
		var buf bytes.Buffer
		So(InitWithWriter(&buf), ShouldBeNil)
		ctx := context.Background()

		Convey("When logging with fields", func() {
			Get().Info(ctx, "clustering finished", Int("k", 3), Bool("converged", true))

			Convey("Then the record carries message, fields and source", func() {
				out := buf.String()
				So(out, ShouldContainSubstring, "clustering finished")
				So(out, ShouldContainSubstring, "k=3")
				So(out, ShouldContainSubstring, "converged=true")
				So(out, ShouldContainSubstring, "logger_test.go")
			})
		})

		Convey("When using nested named loggers", func() {
			Named("service").Named("worker").Warn(ctx, "slow", Error(errors.New("boom")))

			Convey("Then the component path is dotted", func() {
				So(buf.String(), ShouldContainSubstring, "component=service.worker")
				So(buf.String(), ShouldContainSubstring, "error=boom")
			})
		})

		Convey("When a child logger is built With fields", func() {
			Get().With(String("run", "abc")).Info(ctx, "tagged")

			Convey("Then every record carries them", func() {
				So(buf.String(), ShouldContainSubstring, "run=abc")
			})
		})

		Convey("When the level is raised to error", func() {
			So(SetLevelString("error"), ShouldBeNil)
			Get().Info(ctx, "hidden")
			Get().Debug(ctx, "hidden too")

			Convey("Then lower records are dropped", func() {
				So(buf.String(), ShouldNotContainSubstring, "hidden")
			})
			So(SetLevelString("info"), ShouldBeNil)
		})
	})
}

func TestSetLevelString(t *testing.T) {
	Convey("Given level names", t, func() {
		So(Init(), ShouldBeNil)

		Convey("Then known names are accepted", func() {
			for _, lvl := range []string{"debug", "INFO", "warn", "warning", "error", ""} {
				So(SetLevelString(lvl), ShouldBeNil)
			}
		})

		Convey("Then unknown names are rejected", func() {
			So(SetLevelString("verbose"), ShouldNotBeNil)
		})
	})
}
