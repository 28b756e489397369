package traffic_test

import (
	"context"
	"fmt"
	"math"
	"testing"
	"time"

	"github.com/okian/navguard/internal/domain/model"
	"github.com/okian/navguard/internal/domain/traffic"
	. "github.com/smartystreets/goconvey/convey"
)

const ownLat, ownLon = 40.0, -75.0

// target returns a fully populated report distNM due north of own-ship.
func target(callsign string, distNM, altFt, trackDeg, gsKt, vsFPM float64) model.TrafficTarget {
	return model.TrafficTarget{
		Callsign:         callsign,
		Position:         model.NewAircraftState(ownLat+distNM/60, ownLon, 0, 0, 0, 0).Position,
		AltitudeFt:       altFt,
		HeadingDeg:       trackDeg,
		GroundSpeedKt:    gsKt,
		VerticalSpeedFPM: vsFPM,
		Present:          model.HasAll,
	}
}

func newEngine(opts ...traffic.Option) (*traffic.Engine, *model.Recorder) {
	rec := &model.Recorder{}
	clock := model.NewManualClock(time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC))
	opts = append([]traffic.Option{traffic.WithSink(rec), traffic.WithClock(clock)}, opts...)
	return traffic.New(opts...), rec
}

func TestResolutionAdvisory(t *testing.T) {
	ctx := context.Background()
	own := model.NewAircraftState(ownLat, ownLon, 5000, 0, 200, 0)

	Convey("Given a co-altitude head-on target one mile ahead", t, func() {
		e, rec := newEngine()
		e.Update(ctx, own, []model.TrafficTarget{target("N123", 1, 5000, 180, 200, 0)})

		Convey("Then an RA to climb at 2500 fpm is issued", func() {
			ra, ok := e.ActiveRA()
			So(ok, ShouldBeTrue)
			So(ra.Callsign, ShouldEqual, "N123")
			So(ra.Zone, ShouldEqual, traffic.ZoneRA)
			So(ra.RASense, ShouldEqual, traffic.SenseClimb)
			So(ra.RAVerticalSpeedFPM, ShouldEqual, 2500)
			So(float64(ra.TauS), ShouldAlmostEqual, 9, 0.1)
			So(ra.IsTA, ShouldBeFalse)
			So(rec.Kinds(), ShouldResemble, []string{"RA"})
			So(rec.Events()[0].Message, ShouldEqual, "CLIMB")
			So(rec.Events()[0].Severity, ShouldEqual, model.SeverityCritical)
		})

		Convey("When the same geometry repeats", func() {
			e.Update(ctx, own, []model.TrafficTarget{target("N123", 0.9, 5000, 180, 200, 0)})

			Convey("Then no second RA is raised", func() {
				So(rec.Kinds(), ShouldResemble, []string{"RA"})
			})
		})

		Convey("When the target disappears", func() {
			e.Update(ctx, own, nil)

			Convey("Then clear of conflict is announced and the threat is dropped", func() {
				_, ok := e.ActiveRA()
				So(ok, ShouldBeFalse)
				So(e.Threats(), ShouldBeEmpty)
				So(rec.Kinds(), ShouldResemble, []string{"RA", "CLEAR_OF_CONFLICT"})
			})
		})
	})

	Convey("Given a level target 500 ft above", t, func() {
		e, _ := newEngine()
		e.Update(ctx, own, []model.TrafficTarget{target("N500", 1, 5500, 180, 200, 0)})

		Convey("Then the RA commands a 2000 fpm descent", func() {
			ra, ok := e.ActiveRA()
			So(ok, ShouldBeTrue)
			So(ra.RASense, ShouldEqual, traffic.SenseDescend)
			So(ra.RAVerticalSpeedFPM, ShouldEqual, -2000)
		})
	})

	Convey("Given a stationary target 600 ft above descending fast", t, func() {
		e, _ := newEngine()
		still := model.NewAircraftState(ownLat, ownLon, 5000, 0, 0, 0)
		e.Update(ctx, still, []model.TrafficTarget{target("VERT", 0.5, 5600, 0, 0, -3000)})

		Convey("Then vertical tau alone triggers the RA", func() {
			ra, ok := e.ActiveRA()
			So(ok, ShouldBeTrue)
			So(ra.HorizontalTauS.Infinite(), ShouldBeTrue)
			So(float64(ra.VerticalTauS), ShouldAlmostEqual, 12, 1e-9)
			So(ra.RASense, ShouldEqual, traffic.SenseClimb)
			So(ra.RAVerticalSpeedFPM, ShouldEqual, 2000)
		})
	})
}

func TestCrowdedTraffic(t *testing.T) {
	ctx := context.Background()
	own := model.NewAircraftState(ownLat, ownLon, 5000, 0, 200, 0)

	Convey("Given a threat listed ahead of more distant targets than the cache holds", t, func() {
		e, rec := newEngine()
		targets := []model.TrafficTarget{target("THREAT", 1, 5000, 180, 200, 0)}
		for i := 0; i < 300; i++ {
			targets = append(targets, target(fmt.Sprintf("FAR%03d", i), 40+float64(i)*0.01, 5000, 0, 100, 0))
		}
		e.Update(ctx, own, targets)

		Convey("Then the RA is still raised", func() {
			ra, ok := e.ActiveRA()
			So(ok, ShouldBeTrue)
			So(ra.Callsign, ShouldEqual, "THREAT")
			So(rec.Kinds(), ShouldResemble, []string{"RA"})
		})

		Convey("And the cache keeps the most urgent targets", func() {
			threats := e.Threats()
			So(threats, ShouldHaveLength, 256)
			So(threats[0].Callsign, ShouldEqual, "THREAT")
		})
	})
}

func TestTrafficAdvisory(t *testing.T) {
	ctx := context.Background()
	own := model.NewAircraftState(ownLat, ownLon, 5000, 0, 200, 0)

	Convey("Given a closing target two miles ahead", t, func() {
		e, rec := newEngine()
		e.Update(ctx, own, []model.TrafficTarget{target("N200", 2, 5300, 180, 200, 0)})

		Convey("Then a TA is raised without an RA", func() {
			ta, ok := e.ActiveTA()
			So(ok, ShouldBeTrue)
			So(ta.IsTA, ShouldBeTrue)
			So(ta.IsRA, ShouldBeFalse)
			So(float64(ta.TauS), ShouldBeBetween, 15, 20)
			_, ok = e.ActiveRA()
			So(ok, ShouldBeFalse)
			So(rec.Kinds(), ShouldResemble, []string{"TA"})
			So(rec.Events()[0].Severity, ShouldEqual, model.SeverityWarning)
		})
	})

	Convey("Given one RA target and one TA target", t, func() {
		e, rec := newEngine()
		e.Update(ctx, own, []model.TrafficTarget{
			target("TA1", 2, 5300, 180, 200, 0),
			target("RA1", 1, 5000, 180, 200, 0),
		})

		Convey("Then the RA suppresses every TA", func() {
			_, ok := e.ActiveTA()
			So(ok, ShouldBeFalse)
			for _, th := range e.Threats() {
				So(th.IsTA, ShouldBeFalse)
			}
			So(rec.Kinds(), ShouldResemble, []string{"RA"})
		})

		Convey("And threats are ordered by urgency", func() {
			threats := e.Threats()
			So(threats, ShouldHaveLength, 2)
			So(threats[0].Callsign, ShouldEqual, "RA1")
		})
	})

	Convey("Given TAs are disabled", t, func() {
		e, rec := newEngine(traffic.WithAdvisories(false, true))
		e.Update(ctx, own, []model.TrafficTarget{target("N200", 2, 5300, 180, 200, 0)})
		So(rec.Events(), ShouldBeEmpty)
		So(e.Threats()[0].Zone, ShouldEqual, traffic.ZoneRA)
	})
}

func TestTauNeverNaN(t *testing.T) {
	ctx := context.Background()
	own := model.NewAircraftState(ownLat, ownLon, 5000, 0, 200, 0)

	Convey("Given diverging, coincident and co-altitude targets", t, func() {
		e, rec := newEngine()
		coincident := target("SAME", 0, 5000, 0, 200, 0)
		e.Update(ctx, own, []model.TrafficTarget{
			target("AWAY", 1, 5200, 0, 300, 0),
			coincident,
			target("LEVEL", 5, 5000, 90, 100, 0),
		})

		Convey("Then every tau is a number and non-closing pairs are infinite", func() {
			for _, th := range e.Threats() {
				So(math.IsNaN(float64(th.TauS)), ShouldBeFalse)
				So(math.IsNaN(float64(th.VerticalTauS)), ShouldBeFalse)
				So(th.VerticalTauS.Infinite(), ShouldBeTrue)
				if th.Callsign != "LEVEL" {
					So(th.TauS.Infinite(), ShouldBeTrue)
					So(th.IsRA, ShouldBeFalse)
				}
			}
			So(rec.Kinds(), ShouldNotContain, "RA")
		})
	})
}

func TestZones(t *testing.T) {
	ctx := context.Background()
	own := model.NewAircraftState(ownLat, ownLon, 5000, 0, 0, 0)

	zoneOf := func(e *traffic.Engine, tgt model.TrafficTarget) traffic.Zone {
		e.Update(ctx, own, []model.TrafficTarget{tgt})
		return e.Threats()[0].Zone
	}

	Convey("Given the 2350-5000 ft band (TA 4.8 nm, RA 2.8 nm)", t, func() {
		e, _ := newEngine()
		So(zoneOf(e, target("A", 2.5, 5700, 0, 0, 0)), ShouldEqual, traffic.ZoneRA)
		So(zoneOf(e, target("A", 2.5, 5800, 0, 0, 0)), ShouldEqual, traffic.ZoneTA)
		So(zoneOf(e, target("A", 4.5, 6100, 0, 0, 0)), ShouldEqual, traffic.ZoneTA)
		So(zoneOf(e, target("A", 4.5, 6200, 0, 0, 0)), ShouldEqual, traffic.ZoneProximate)
		So(zoneOf(e, target("A", 9, 5000, 0, 0, 0)), ShouldEqual, traffic.ZoneProximate)
		So(zoneOf(e, target("A", 11, 5000, 0, 0, 0)), ShouldEqual, traffic.ZoneOther)
	})

	Convey("Given ABOVE sensitivity", t, func() {
		e, _ := newEngine(traffic.WithSensitivity(traffic.SensitivityAbove))

		Convey("Then ranges shrink for traffic above only", func() {
			So(zoneOf(e, target("UP", 2.5, 5500, 0, 0, 0)), ShouldEqual, traffic.ZoneTA)
			So(zoneOf(e, target("DN", 2.5, 4500, 0, 0, 0)), ShouldEqual, traffic.ZoneRA)
		})

		Convey("When switched back to normal", func() {
			e.SetSensitivity(traffic.SensitivityNormal)
			So(zoneOf(e, target("UP", 2.5, 5500, 0, 0, 0)), ShouldEqual, traffic.ZoneRA)
		})
	})
}

func TestDisable(t *testing.T) {
	ctx := context.Background()
	own := model.NewAircraftState(ownLat, ownLon, 5000, 0, 200, 0)

	Convey("Given an active RA", t, func() {
		e, rec := newEngine()
		e.Update(ctx, own, []model.TrafficTarget{target("N123", 1, 5000, 180, 200, 0)})

		Convey("When the engine is disabled", func() {
			e.SetEnabled(false)
			e.Update(ctx, own, []model.TrafficTarget{target("N123", 0.8, 5000, 180, 200, 0)})

			Convey("Then all state is cleared silently", func() {
				st := e.Status()
				So(st.Enabled, ShouldBeFalse)
				So(st.ActiveRA, ShouldBeNil)
				So(st.Threats, ShouldBeEmpty)
				So(rec.Kinds(), ShouldResemble, []string{"RA"})
			})
		})
	})

	Convey("Given own-ship without altitude", t, func() {
		e, rec := newEngine()
		partial := model.AircraftState{Present: model.HasPosition}
		e.Update(ctx, partial, []model.TrafficTarget{target("N123", 1, 5000, 180, 200, 0)})
		So(e.Threats(), ShouldBeEmpty)
		So(rec.Events(), ShouldBeEmpty)
	})
}

func TestParseSensitivity(t *testing.T) {
	Convey("Given sensitivity names", t, func() {
		s, err := traffic.ParseSensitivity("above")
		So(err, ShouldBeNil)
		So(s, ShouldEqual, traffic.SensitivityAbove)

		_, err = traffic.ParseSensitivity("sideways")
		So(err, ShouldEqual, traffic.ErrUnknownSensitivity)
	})
}
