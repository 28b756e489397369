package vnav_test

import (
	"context"
	"testing"
	"time"

	"github.com/okian/navguard/internal/domain/geo"
	"github.com/okian/navguard/internal/domain/model"
	"github.com/okian/navguard/internal/domain/vnav"
	. "github.com/smartystreets/goconvey/convey"
)

// north returns a point distNM due north of the test origin.
func north(distNM float64) geo.LatLon {
	return geo.LatLon{Lat: 40 + distNM/60, Lon: -75}
}

// route is a two-waypoint route with an AT 8000 constraint 30 nm north.
func route() []model.Waypoint {
	return []model.Waypoint{
		{Ident: "ALPHA", Position: north(10)},
		{Ident: "BRAVO", Position: north(30), Constraint: &model.AltitudeConstraint{Ident: "BRAVO", AltitudeFt: 8000, Descriptor: model.At}},
	}
}

func ownAt(distNM, altFt, gsKt float64) model.AircraftState {
	p := north(distNM)
	return model.NewAircraftState(p.Lat, p.Lon, altFt, 0, gsKt, 0)
}

func TestFindNextConstraint(t *testing.T) {
	Convey("Given a route with mixed constraints", t, func() {
		wps := []model.Waypoint{
			{Ident: "A"},
			{Ident: "B", Constraint: &model.AltitudeConstraint{AltitudeFt: 9000, Descriptor: model.AtOrAbove}},
			{Ident: "C", Constraint: &model.AltitudeConstraint{AltitudeFt: 7000, Descriptor: model.AtOrBelow}},
			{Ident: "D", Constraint: &model.AltitudeConstraint{AltitudeFt: 5000, Descriptor: model.At}},
		}

		Convey("Then at-or-above constraints are skipped", func() {
			idx, ok := vnav.FindNextConstraint(wps, 0)
			So(ok, ShouldBeTrue)
			So(idx, ShouldEqual, 2)
		})

		Convey("Then the scan starts at the active leg", func() {
			idx, _ := vnav.FindNextConstraint(wps, 3)
			So(idx, ShouldEqual, 3)
		})

		Convey("Then nothing is found past the end", func() {
			_, ok := vnav.FindNextConstraint(wps, 4)
			So(ok, ShouldBeFalse)
			_, ok = vnav.FindNextConstraint(nil, 0)
			So(ok, ShouldBeFalse)
		})
	})
}

func TestCalculateTOD(t *testing.T) {
	Convey("Given cruise at 12000 ft with an 8000 ft constraint 30 nm ahead", t, func() {
		e := vnav.New()
		tod, ok := e.CalculateTOD(route(), 0, 12000, north(0))

		Convey("Then a 3 degree path starts descent about 16.7 nm out", func() {
			So(ok, ShouldBeTrue)
			So(tod.DropFt, ShouldEqual, 4000)
			So(tod.DistanceToConstraintNM, ShouldAlmostEqual, 30, 0.05)
			So(tod.DescentDistanceNM, ShouldAlmostEqual, 13.3, 1)
			So(tod.TODDistanceNM, ShouldAlmostEqual, 16.7, 1)
			So(tod.Waypoint.Ident, ShouldEqual, "BRAVO")
		})
	})

	Convey("Given the feet-per-mile conversion", t, func() {
		So(vnav.FeetPerNM(3), ShouldAlmostEqual, 318.44, 0.01)
	})

	Convey("Given an out-of-range descent angle", t, func() {
		e := vnav.New(vnav.WithDescentAngle(10))
		So(e.Status().DescentAngleDeg, ShouldEqual, vnav.MaxDescentAngleDeg)
		So(e.SetDescentAngle(0.2), ShouldEqual, vnav.MinDescentAngleDeg)
		So(e.SetDescentAngle(3.5), ShouldEqual, 3.5)
	})
}

func TestRequiredVerticalSpeed(t *testing.T) {
	Convey("Given a 3000 ft drop over 10 nm", t, func() {
		vs, ok := vnav.RequiredVerticalSpeed(3000, 10, 300)
		So(ok, ShouldBeTrue)
		So(vs, ShouldAlmostEqual, 1500, 1e-9)

		Convey("Then zero ground speed yields no value", func() {
			_, ok := vnav.RequiredVerticalSpeed(3000, 10, 0)
			So(ok, ShouldBeFalse)
		})

		Convey("Then zero distance yields no value", func() {
			_, ok := vnav.RequiredVerticalSpeed(3000, 0, 300)
			So(ok, ShouldBeFalse)
		})
	})
}

func TestArmActive(t *testing.T) {
	ctx := context.Background()

	Convey("Given an enabled engine", t, func() {
		rec := &model.Recorder{}
		clock := model.NewManualClock(time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC))
		e := vnav.New(vnav.WithSink(rec), vnav.WithClock(clock))

		Convey("When far from TOD", func() {
			e.Update(ctx, ownAt(0, 12000, 240), route(), 0)

			Convey("Then VNAV is armed with a required VS and no deviation", func() {
				st := e.Status()
				So(st.State, ShouldEqual, vnav.StateArmed)
				So(st.RequiredVSFPM, ShouldNotBeNil)
				So(*st.RequiredVSFPM, ShouldAlmostEqual, 4000/(30.0/240*60), 5)
				So(st.VerticalDeviationFt, ShouldBeNil)
				So(rec.Kinds(), ShouldResemble, []string{"ARMED"})
			})

			Convey("And closing within a minute of TOD gives an advisory", func() {
				e.Update(ctx, ownAt(14, 12000, 240), route(), 1)
				So(e.State(), ShouldEqual, vnav.StateArmed)
				So(rec.Kinds(), ShouldResemble, []string{"ARMED", "TOD_1MIN"})
			})

			Convey("And passing TOD makes it active", func() {
				e.Update(ctx, ownAt(20, 12000, 240), route(), 1)
				st := e.Status()
				So(st.State, ShouldEqual, vnav.StateActive)
				So(st.VerticalDeviationFt, ShouldNotBeNil)
				So(*st.VerticalDeviationFt, ShouldBeGreaterThan, 0)
				So(rec.Kinds(), ShouldContain, "TOD")

				Convey("And reaching the constraint altitude disarms", func() {
					e.Update(ctx, ownAt(29, 8020, 240), route(), 1)
					So(e.State(), ShouldEqual, vnav.StateIdle)
				})

				Convey("And sequencing past the constraint disarms", func() {
					e.Update(ctx, ownAt(31, 9000, 240), route(), 2)
					So(e.State(), ShouldEqual, vnav.StateIdle)
					So(e.Status().TOD, ShouldBeNil)
				})
			})
		})

		Convey("When disabled", func() {
			e.Update(ctx, ownAt(0, 12000, 240), route(), 0)
			e.SetEnabled(false)
			e.Update(ctx, ownAt(1, 12000, 240), route(), 0)

			Convey("Then it returns to idle and keeps its angle", func() {
				st := e.Status()
				So(st.State, ShouldEqual, vnav.StateIdle)
				So(st.Enabled, ShouldBeFalse)
				So(st.DescentAngleDeg, ShouldEqual, vnav.DefaultDescentAngleDeg)
			})
		})

		Convey("When stationary", func() {
			e.Update(ctx, ownAt(0, 12000, 0), route(), 0)
			So(e.Status().RequiredVSFPM, ShouldBeNil)
		})

		Convey("When already below the constraint", func() {
			e.Update(ctx, ownAt(0, 7000, 240), route(), 0)
			So(e.State(), ShouldEqual, vnav.StateIdle)
			So(rec.Events(), ShouldBeEmpty)
		})
	})
}
