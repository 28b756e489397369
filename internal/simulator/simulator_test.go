package simulator_test

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/okian/navguard/internal/domain/geo"
	"github.com/okian/navguard/internal/domain/model"
	"github.com/okian/navguard/internal/simulator"
	. "github.com/smartystreets/goconvey/convey"
)

var start = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

func TestFrame(t *testing.T) {
	Convey("Given a simulator centered on a fixed point", t, func() {
		center := geo.LatLon{Lat: 47.45, Lon: -122.31}
		clock := model.NewManualClock(start)
		sim := simulator.New(
			simulator.WithCenter(center.Lat, center.Lon),
			simulator.WithOwnShip(8000, 180),
			simulator.WithTraffic(5, 6),
			simulator.WithClock(clock),
		)

		Convey("When the first frame is generated", func() {
			f := sim.Frame(start)

			Convey("Then own-ship is north of the center heading east", func() {
				So(f.ID, ShouldNotBeEmpty)
				So(f.Timestamp, ShouldEqual, start)
				So(f.Own.Has(model.HasAll), ShouldBeTrue)
				d, brg := geo.DistanceBearing(center, f.Own.Position)
				So(d, ShouldAlmostEqual, 8, 1e-6)
				So(brg, ShouldAlmostEqual, 0, 1e-6)
				So(f.Own.HeadingDeg, ShouldEqual, 90)
				So(f.Own.GroundSpeedKt, ShouldEqual, 180)
			})

			Convey("And the traffic picture is populated", func() {
				So(f.Traffic, ShouldHaveLength, 5)
				So(f.Traffic[0].Callsign, ShouldEqual, "SIM00")
				So(f.Traffic[0].GroundSpeedKt, ShouldEqual, 0)
				So(f.Traffic[0].AltitudeFt, ShouldEqual, 8000)

				So(geo.Distance(center, f.Traffic[1].Position), ShouldAlmostEqual, 0.9, 1e-3)
				So(f.Traffic[1].HeadingDeg, ShouldEqual, 90)

				for _, tgt := range f.Traffic[2:] {
					d := geo.Distance(center, tgt.Position)
					So(d, ShouldBeBetweenOrEqual, 0.6*6-1e-6, 6+1e-6)
					So(tgt.Has(model.HasAll), ShouldBeTrue)
				}
			})
		})

		Convey("When the same instant is generated twice", func() {
			a := sim.Frame(start.Add(42 * time.Second))
			b := sim.Frame(start.Add(42 * time.Second))

			Convey("Then only the frame id differs", func() {
				So(a.ID, ShouldNotEqual, b.ID)
				So(a.Own, ShouldResemble, b.Own)
				So(a.Traffic, ShouldResemble, b.Traffic)
			})
		})

		Convey("When a minute passes", func() {
			a := sim.Frame(start)
			b := sim.Frame(start.Add(time.Minute))

			Convey("Then own-ship has flown three miles of arc", func() {
				So(geo.Distance(a.Own.Position, b.Own.Position), ShouldAlmostEqual, 2.98, 0.02)
				So(geo.Distance(center, b.Own.Position), ShouldAlmostEqual, 8, 1e-6)
			})
		})
	})

	Convey("Given a simulator without traffic", t, func() {
		sim := simulator.New(simulator.WithTraffic(0, 0))
		So(sim.Frame(time.Now()).Traffic, ShouldBeEmpty)
	})
}

func TestRun(t *testing.T) {
	Convey("Given a running simulator", t, func() {
		sim := simulator.New(simulator.WithTraffic(2, 3))
		ctx, cancel := context.WithCancel(context.Background())
		var published, failed atomic.Int32

		done := make(chan struct{})
		go func() {
			defer close(done)
			sim.Run(ctx, 5*time.Millisecond, func(_ context.Context, f model.Frame) error {
				if published.Add(1)%2 == 0 {
					failed.Add(1)
					return errors.New("queue full")
				}
				return nil
			})
		}()

		Convey("When it runs for a while and is cancelled", func() {
			deadline := time.Now().Add(2 * time.Second)
			for published.Load() < 4 && time.Now().Before(deadline) {
				time.Sleep(5 * time.Millisecond)
			}
			cancel()
			<-done

			Convey("Then frames were published despite publish errors", func() {
				So(published.Load(), ShouldBeGreaterThanOrEqualTo, 4)
				So(failed.Load(), ShouldBeGreaterThan, 0)
			})
		})
	})
}
