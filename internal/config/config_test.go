package config_test

import (
	"errors"
	"testing"
	"time"

	"github.com/okian/navguard/internal/config"
	. "github.com/smartystreets/goconvey/convey"
)

func TestConfig_New(t *testing.T) {
	Convey("Given a new config with default options", t, func() {
		cfg := config.New()

		Convey("Then it should have sensible defaults", func() {
			So(cfg.Addr, ShouldEqual, ":9080")
			So(cfg.TickInterval(), ShouldEqual, time.Second)
			So(cfg.ChimeCooldown(), ShouldEqual, 5*time.Second)
			So(cfg.VNAVDescentAngleDeg, ShouldEqual, 3.0)
			So(cfg.TrafficSensitivityFactor, ShouldEqual, 0.75)
			So(cfg.TrafficTAEnabled, ShouldBeTrue)
			So(cfg.TrafficRAEnabled, ShouldBeTrue)
			So(cfg.Validate(), ShouldBeNil)
		})
	})
}

func TestConfig_Normalize(t *testing.T) {
	Convey("Given out-of-range values", t, func() {
		cfg := config.New()
		cfg.VNAVDescentAngleDeg = 9
		cfg.TrafficSensitivityFactor = 0
		cfg.TickIntervalMS = 1
		cfg.FrameQueueSize = -5
		cfg.FrameDedupeSize = 0
		cfg.HoldSpeedChangeKt = -1
		cfg.TrafficSensitivity = " above "

		Convey("When normalized", func() {
			cfg.Normalize()

			Convey("Then they are clamped into range", func() {
				So(cfg.VNAVDescentAngleDeg, ShouldEqual, 6.0)
				So(cfg.TrafficSensitivityFactor, ShouldEqual, 0.1)
				So(cfg.TickIntervalMS, ShouldEqual, 10)
				So(cfg.FrameQueueSize, ShouldEqual, 1)
				So(cfg.FrameDedupeSize, ShouldEqual, 1)
				So(cfg.HoldSpeedChangeKt, ShouldEqual, 5)
				So(cfg.TrafficSensitivity, ShouldEqual, "ABOVE")
			})
		})
	})

	Convey("Given an unknown sensitivity", t, func() {
		cfg := config.New()
		cfg.TrafficSensitivity = "sideways"
		err := cfg.Validate()
		So(errors.Is(err, config.ErrInvalidConfig), ShouldBeTrue)
	})
}
