package logger_test

import (
	"context"
	"testing"

	"github.com/acmx/sheetboard/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func TestLogger_Init(t *testing.T) {
	Convey("Given an uninitialized logging package", t, func() {
		Convey("When Init is called", func() {
			err := logger.Init()

			Convey("Then it should succeed", func() {
				So(err, ShouldBeNil)
			})

			Convey("And Get should return a usable logger", func() {
				l := logger.Get()
				So(l, ShouldNotBeNil)
				// Must not panic.
				l.Info(context.Background(), "hello", logger.String("k", "v"))
			})
		})
	})
}

func TestLogger_SetLevelString(t *testing.T) {
	Convey("Given an initialized logger", t, func() {
		So(logger.Init(), ShouldBeNil)

		Convey("When setting known levels", func() {
			for _, lvl := range []string{"debug", "info", "warn", "warning", "error", ""} {
				So(logger.SetLevelString(lvl), ShouldBeNil)
			}
		})

		Convey("When setting an unknown level", func() {
			err := logger.SetLevelString("verbose")

			Convey("Then it should return an error", func() {
				So(err, ShouldNotBeNil)
			})
		})
	})
}

func TestLogger_Named(t *testing.T) {
	Convey("Given an initialized logger", t, func() {
		So(logger.Init(), ShouldBeNil)

		Convey("When creating a named logger", func() {
			l := logger.Named("scorestore")

			Convey("Then it should be usable", func() {
				So(l, ShouldNotBeNil)
				l.Debug(context.Background(), "cache refresh", logger.Int("rows", 3))
			})
		})
	})
}
