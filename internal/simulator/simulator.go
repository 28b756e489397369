// Package simulator produces deterministic telemetry frames: an own-ship
// flying a wide circuit around a center point and a handful of orbiting and
// crossing traffic targets.
package simulator

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/okian/navguard/internal/domain/geo"
	"github.com/okian/navguard/internal/domain/model"
	"github.com/okian/navguard/pkg/logger"
)

// Simulator generates frames as a pure function of time since start.
type Simulator struct {
	center        geo.LatLon
	ownAltitudeFt float64
	ownSpeedKt    float64
	ownRadiusNM   float64
	trafficCount  int
	trafficRadius float64
	trafficKt     float64
	period        time.Duration
	start         time.Time
	clock         model.Clock
	logger        logger.Logger
}

// New creates a simulator. The scenario starts at the clock's current time.
func New(opts ...Option) *Simulator {
	s := &Simulator{
		center:        geo.LatLon{Lat: 47.4502, Lon: -122.3088},
		ownAltitudeFt: 8000,
		ownSpeedKt:    180,
		ownRadiusNM:   defaultOwnRadiusNM,
		trafficCount:  4,
		trafficRadius: defaultTrafficRadiusNM,
		trafficKt:     defaultTrafficKt,
		period:        defaultPeriod,
		clock:         model.SystemClock{},
		logger:        logger.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.start = s.clock.Now()
	return s
}

// Frame returns the telemetry at now.
func (s *Simulator) Frame(now time.Time) model.Frame {
	return model.Frame{
		ID:        uuid.NewString(),
		Timestamp: now,
		Own:       s.own(now),
		Traffic:   s.targets(now),
	}
}

// own flies a clockwise circle of ownRadiusNM around the center.
func (s *Simulator) own(now time.Time) model.AircraftState {
	elapsedH := now.Sub(s.start).Hours()
	circumference := 2 * math.Pi * s.ownRadiusNM
	theta := 0.0
	if circumference > 0 {
		theta = math.Mod(s.ownSpeedKt*elapsedH/circumference, 1) * 360
	}
	pos := geo.Destination(s.center, theta, s.ownRadiusNM)
	return model.NewAircraftState(pos.Lat, pos.Lon, s.ownAltitudeFt,
		geo.NormalizeHeading(theta+90), s.ownSpeedKt, 0)
}

func (s *Simulator) phase(now time.Time, offset time.Duration) float64 {
	p := s.period.Nanoseconds()
	d := (now.Sub(s.start) + offset).Nanoseconds() % p
	if d < 0 {
		d += p
	}
	return float64(d) / float64(p)
}

// targets returns trafficCount targets. Target 0 is parked near the center,
// target 1 crosses west to east through it, the rest orbit in alternating
// directions with staggered altitudes.
func (s *Simulator) targets(now time.Time) []model.TrafficTarget {
	if s.trafficCount <= 0 {
		return nil
	}
	baseTheta := 2 * math.Pi * s.phase(now, 0)

	out := make([]model.TrafficTarget, 0, s.trafficCount)
	for i := 0; i < s.trafficCount; i++ {
		alt := s.ownAltitudeFt + float64(i-s.trafficCount/2)*300

		const ampAlt = 150.0
		wV := 2 * math.Pi * s.phase(now, time.Duration(i)*31*time.Millisecond)
		alt += ampAlt * math.Sin(wV)
		vs := ampAlt * (2 * math.Pi / s.period.Seconds()) * math.Cos(wV) * 60

		t := model.TrafficTarget{
			Callsign:         fmt.Sprintf("SIM%02d", i),
			AltitudeFt:       math.Round(alt),
			VerticalSpeedFPM: math.Round(vs),
			Present:          model.HasAll,
		}

		switch i {
		case 0:
			t.Position = geo.Destination(s.center, 0, s.trafficRadius*0.1)
			t.AltitudeFt = s.ownAltitudeFt
			t.VerticalSpeedFPM = 0
		case 1:
			off := r2.Scale(s.trafficRadius, r2.Vec{X: math.Sin(baseTheta), Y: -0.15})
			t.Position = offsetFrom(s.center, off)
			t.HeadingDeg = 90
			t.GroundSpeedKt = s.trafficKt
		default:
			dir := 1.0
			if i%2 == 0 {
				dir = -1.0
			}
			theta := dir*baseTheta + 2*math.Pi*float64(i)/float64(s.trafficCount)
			radius := s.trafficRadius * (0.6 + 0.4*math.Mod(float64(i)*0.37, 1.0))
			t.Position = offsetFrom(s.center, r2.Scale(radius, r2.Vec{X: math.Sin(theta), Y: math.Cos(theta)}))
			t.HeadingDeg = geo.NormalizeHeading(theta*180/math.Pi + dir*90)
			t.GroundSpeedKt = s.trafficKt
			if i%5 == 0 {
				t.GroundSpeedKt = math.Round(s.trafficKt * 0.5)
			}
		}
		out = append(out, t)
	}
	return out
}

// offsetFrom projects an east/north offset in nautical miles from origin.
func offsetFrom(origin geo.LatLon, off r2.Vec) geo.LatLon {
	dist := r2.Norm(off)
	if dist == 0 {
		return origin
	}
	brg := math.Atan2(off.X, off.Y) * 180 / math.Pi
	return geo.Destination(origin, geo.NormalizeHeading(brg), dist)
}

// Run emits a frame every interval until ctx is cancelled. Publish errors are
// logged and do not stop the loop.
func (s *Simulator) Run(ctx context.Context, interval time.Duration, publish func(context.Context, model.Frame) error) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	s.logger.Info(ctx, "simulator started",
		logger.Duration("interval", interval),
		logger.Int("traffic", s.trafficCount))
	for {
		select {
		case <-ctx.Done():
			s.logger.Info(ctx, "simulator stopped")
			return
		case <-ticker.C:
			f := s.Frame(s.clock.Now())
			if err := publish(ctx, f); err != nil {
				s.logger.Debug(ctx, "frame not published", logger.String("frame", f.ID), logger.Error(err))
			}
		}
	}
}
