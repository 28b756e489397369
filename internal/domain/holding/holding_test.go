package holding_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/okian/navguard/internal/domain/geo"
	"github.com/okian/navguard/internal/domain/holding"
	"github.com/okian/navguard/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

var fix = geo.LatLon{Lat: 40, Lon: -75}

func leg(code string) model.ProcedureLeg {
	return model.ProcedureLeg{
		Fix:            "HOLDR",
		Position:       fix,
		PathTerminator: code,
		TurnDirection:  "R",
		CourseDeg:      360,
		LegTimeS:       60,
	}
}

func TestDetectHold(t *testing.T) {
	Convey("Given procedure legs", t, func() {
		Convey("Then HM and HF legs are holds without an altitude", func() {
			for _, code := range []string{"HM", "hf"} {
				l := leg(code)
				alt := 6000.0
				l.AltitudeFt = &alt
				s, ok := holding.DetectHold(l)
				So(ok, ShouldBeTrue)
				So(s.AltitudeFt, ShouldBeNil)
				So(s.InboundCourseDeg, ShouldEqual, 0)
				So(s.OutboundCourseDeg(), ShouldEqual, 180)
				So(s.LegTimeS, ShouldEqual, 60)
			}
		})

		Convey("Then an HA leg carries its altitude", func() {
			l := leg("HA")
			alt := 16000.0
			l.AltitudeFt = &alt
			l.LegTimeS = 0
			l.TurnDirection = "L"
			s, ok := holding.DetectHold(l)
			So(ok, ShouldBeTrue)
			So(s.Kind, ShouldEqual, holding.KindAltitude)
			So(*s.AltitudeFt, ShouldEqual, 16000)
			So(s.Turn, ShouldEqual, holding.TurnLeft)
			So(s.LegTimeS, ShouldEqual, 90)
		})

		Convey("Then other path terminators are not holds", func() {
			for _, code := range []string{"TF", "CF", "", "H"} {
				_, ok := holding.DetectHold(leg(code))
				So(ok, ShouldBeFalse)
			}
		})

		Convey("Then missing turn directions default to right", func() {
			l := leg("HM")
			l.TurnDirection = ""
			s, _ := holding.DetectHold(l)
			So(s.Turn, ShouldEqual, holding.TurnRight)
		})
	})

	Convey("Given default leg times", t, func() {
		So(holding.DefaultLegTime(14000), ShouldEqual, 60)
		So(holding.DefaultLegTime(14001), ShouldEqual, 90)
	})
}

func TestEntryProcedure(t *testing.T) {
	Convey("Given a right-hand hold inbound 360", t, func() {
		cases := []struct {
			heading float64
			want    holding.Entry
		}{
			{200, holding.EntryDirect},
			{270, holding.EntryTeardrop},
			{0, holding.EntryParallel},
			{250, holding.EntryDirect},
			{251, holding.EntryTeardrop},
			{290, holding.EntryTeardrop},
			{291, holding.EntryParallel},
			{110, holding.EntryDirect},
			{100, holding.EntryParallel},
		}
		for _, c := range cases {
			So(holding.CalculateEntryProcedure(c.heading, 360, holding.TurnRight), ShouldEqual, c.want)
		}
	})

	Convey("Given left-hand holds", t, func() {
		So(holding.CalculateEntryProcedure(270, 90, holding.TurnLeft), ShouldEqual, holding.EntryDirect)
		So(holding.CalculateEntryProcedure(90, 360, holding.TurnLeft), ShouldEqual, holding.EntryTeardrop)
		So(holding.CalculateEntryProcedure(270, 360, holding.TurnLeft), ShouldEqual, holding.EntryParallel)
	})
}

func TestRacetrack(t *testing.T) {
	Convey("Given a hold flown at 120 kt with one minute legs", t, func() {
		r := holding.CalculateRacetrack(fix, 360, 60, holding.TurnRight, 120)

		Convey("Then the legs are 2 nm and the turns one third of a mile", func() {
			So(r.LegLengthNM, ShouldAlmostEqual, 2.0, 1e-9)
			So(r.TurnRadiusNM, ShouldAlmostEqual, 0.333, 0.001)
			So(r.TurnDuration(), ShouldAlmostEqual, 31.4, 0.1)
		})

		Convey("Then the inbound leg ends at the fix", func() {
			So(r.InboundEnd, ShouldResemble, fix)
			d, brg := geo.DistanceBearing(r.InboundStart, fix)
			So(d, ShouldAlmostEqual, 2.0, 1e-6)
			So(geo.HeadingDifference(brg, 0), ShouldBeLessThan, 1e-6)
		})

		Convey("Then the outbound leg is on the right side", func() {
			d, brg := geo.DistanceBearing(fix, r.OutboundStart)
			So(d, ShouldAlmostEqual, 0.667, 0.001)
			So(brg, ShouldAlmostEqual, 90, 0.01)
			So(geo.Distance(r.OutboundStart, r.OutboundEnd), ShouldAlmostEqual, 2.0, 1e-6)
		})

		Convey("Then the arcs join the legs", func() {
			So(r.TurnOutbound, ShouldHaveLength, 13)
			So(geo.Distance(r.TurnOutbound[0], fix), ShouldBeLessThan, 1e-3)
			So(geo.Distance(r.TurnOutbound[12], r.OutboundStart), ShouldBeLessThan, 1e-3)
			So(geo.Distance(r.TurnInbound[0], r.OutboundEnd), ShouldBeLessThan, 1e-3)
			So(geo.Distance(r.TurnInbound[12], r.InboundStart), ShouldBeLessThan, 1e-3)
		})
	})

	Convey("Given a left-hand hold", t, func() {
		r := holding.CalculateRacetrack(fix, 360, 60, holding.TurnLeft, 120)
		_, brg := geo.DistanceBearing(fix, r.OutboundStart)
		So(brg, ShouldAlmostEqual, 270, 0.01)
	})
}

func TestDistanceLeg(t *testing.T) {
	ctx := context.Background()
	distLeg := leg("HM")
	distLeg.LegTimeS = 0
	distLeg.LegDistanceNM = 5

	Convey("Given a hold charted as a 5 nm leg", t, func() {
		spec, ok := holding.DetectHold(distLeg)
		So(ok, ShouldBeTrue)
		So(spec.LegDistanceNM, ShouldEqual, 5)

		Convey("Then the racetrack keeps the charted length at any speed", func() {
			r := spec.Racetrack(120)
			So(r.LegLengthNM, ShouldEqual, 5)
			So(r.LegTimeS, ShouldAlmostEqual, 150, 1e-9)
			So(geo.Distance(r.InboundStart, fix), ShouldAlmostEqual, 5, 1e-6)

			fast := spec.Racetrack(200)
			So(fast.LegLengthNM, ShouldEqual, 5)
			So(fast.LegTimeS, ShouldAlmostEqual, 90, 1e-9)
		})

		Convey("Then a stationary aircraft falls back to the default leg time", func() {
			r := spec.Racetrack(0)
			So(r.LegLengthNM, ShouldEqual, 5)
			So(r.LegTimeS, ShouldEqual, spec.LegTimeS)
		})
	})

	Convey("Given an aircraft entering the distance hold at 120 kt", t, func() {
		clock := model.NewManualClock(time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC))
		e := holding.New(holding.WithClock(clock))
		own := model.NewAircraftState(fix.Lat, fix.Lon, 6000, 200, 120, 0)
		_, err := e.Activate(ctx, distLeg, own)
		So(err, ShouldBeNil)

		step := func(d time.Duration) holding.Phase {
			clock.Advance(d)
			e.Update(ctx, own)
			return e.Phase()
		}

		Convey("Then the outbound leg lasts the time needed to fly 5 nm", func() {
			So(e.Status().Racetrack.LegLengthNM, ShouldEqual, 5)
			So(step(32*time.Second), ShouldEqual, holding.PhaseOutbound)
			So(step(120*time.Second), ShouldEqual, holding.PhaseOutbound)
			So(step(31*time.Second), ShouldEqual, holding.PhaseTurnInbound)
		})
	})
}

func TestPhaseCycle(t *testing.T) {
	ctx := context.Background()

	Convey("Given an aircraft at the fix at 120 kt", t, func() {
		rec := &model.Recorder{}
		clock := model.NewManualClock(time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC))
		e := holding.New(holding.WithSink(rec), holding.WithClock(clock))
		own := model.NewAircraftState(fix.Lat, fix.Lon, 6000, 200, 120, 0)

		step := func(d time.Duration) holding.Phase {
			clock.Advance(d)
			e.Update(ctx, own)
			return e.Phase()
		}

		Convey("When a manual hold is activated", func() {
			spec, err := e.Activate(ctx, leg("HM"), own)
			So(err, ShouldBeNil)
			So(spec.Fix, ShouldEqual, "HOLDR")

			Convey("Then it cycles through the racetrack phases", func() {
				So(e.Phase(), ShouldEqual, holding.PhaseTurnOutbound)
				So(step(32*time.Second), ShouldEqual, holding.PhaseOutbound)
				So(step(60*time.Second), ShouldEqual, holding.PhaseTurnInbound)
				So(step(32*time.Second), ShouldEqual, holding.PhaseInbound)
				So(step(60*time.Second), ShouldEqual, holding.PhaseTurnOutbound)
				So(e.Status().Circuits, ShouldEqual, 1)
				So(*e.Status().Entry, ShouldEqual, holding.EntryDirect)
				So(rec.Kinds(), ShouldResemble, []string{"HOLD_ENTRY"})
			})

			Convey("Then cancel stops it", func() {
				So(e.Cancel(ctx), ShouldBeTrue)
				So(e.Phase(), ShouldEqual, holding.PhaseNone)
				So(e.Cancel(ctx), ShouldBeFalse)
			})
		})

		Convey("When a hold-to-fix is activated", func() {
			_, err := e.Activate(ctx, leg("HF"), own)
			So(err, ShouldBeNil)
			step(32 * time.Second)
			step(60 * time.Second)
			step(32 * time.Second)

			Convey("Then it completes after one circuit", func() {
				So(step(60*time.Second), ShouldEqual, holding.PhaseComplete)
				So(e.Status().Active, ShouldBeFalse)
				So(rec.Kinds(), ShouldResemble, []string{"HOLD_ENTRY", "HOLD_EXIT"})
			})
		})

		Convey("When a long pause covers several phases", func() {
			_, _ = e.Activate(ctx, leg("HM"), own)
			So(step(124*time.Second), ShouldEqual, holding.PhaseInbound)
		})

		Convey("When ground speed changes", func() {
			_, _ = e.Activate(ctx, leg("HM"), own)
			own.GroundSpeedKt = 180
			e.Update(ctx, own)
			So(e.Status().Racetrack.LegLengthNM, ShouldAlmostEqual, 3.0, 1e-9)
		})

		Convey("When the leg is not a hold", func() {
			_, err := e.Activate(ctx, leg("TF"), own)
			So(errors.Is(err, holding.ErrNoHold), ShouldBeTrue)
			So(e.Phase(), ShouldEqual, holding.PhaseNone)
		})

		Convey("When the engine is disabled", func() {
			_, _ = e.Activate(ctx, leg("HM"), own)
			e.SetEnabled(false)
			e.Update(ctx, own)
			So(e.Phase(), ShouldEqual, holding.PhaseNone)
			_, err := e.Activate(ctx, leg("HM"), own)
			So(err, ShouldEqual, holding.ErrDisabled)
		})
	})

	Convey("Given an aircraft five miles south of the fix", t, func() {
		clock := model.NewManualClock(time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC))
		e := holding.New(holding.WithClock(clock))
		far := model.NewAircraftState(fix.Lat-5.0/60, fix.Lon, 6000, 360, 120, 0)
		_, err := e.Activate(ctx, leg("HM"), far)
		So(err, ShouldBeNil)

		Convey("Then the hold stays in entry until the fix is crossed", func() {
			So(e.Phase(), ShouldEqual, holding.PhaseEntry)
			clock.Advance(time.Minute)
			e.Update(ctx, far)
			So(e.Phase(), ShouldEqual, holding.PhaseEntry)

			at := model.NewAircraftState(fix.Lat, fix.Lon, 6000, 360, 120, 0)
			e.Update(ctx, at)
			So(e.Phase(), ShouldEqual, holding.PhaseTurnOutbound)
		})

		Convey("Then heading 360 into an inbound-360 hold is a parallel entry", func() {
			So(*e.Status().Entry, ShouldEqual, holding.EntryParallel)
		})
	})

	Convey("Given a hold to altitude", t, func() {
		clock := model.NewManualClock(time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC))
		e := holding.New(holding.WithClock(clock))
		l := leg("HA")
		alt := 8000.0
		l.AltitudeFt = &alt
		own := model.NewAircraftState(fix.Lat, fix.Lon, 6000, 200, 120, 1000)
		_, err := e.Activate(ctx, l, own)
		So(err, ShouldBeNil)

		cycle := func() {
			for _, d := range []time.Duration{32, 60, 32, 60} {
				clock.Advance(d * time.Second)
				e.Update(ctx, own)
			}
		}

		Convey("Then it keeps holding below the altitude", func() {
			cycle()
			So(e.Phase(), ShouldEqual, holding.PhaseTurnOutbound)
		})

		Convey("Then it exits at the fix once the altitude is reached", func() {
			cycle()
			own.AltitudeFt = 7950
			cycle()
			So(e.Phase(), ShouldEqual, holding.PhaseComplete)
			So(e.Status().Circuits, ShouldEqual, 2)
		})
	})
}
