package simulator

import (
	"time"

	"github.com/okian/navguard/internal/domain/geo"
	"github.com/okian/navguard/internal/domain/model"
	"github.com/okian/navguard/pkg/logger"
)

// Default simulator constants.
const (
	defaultOwnRadiusNM     = 8.0
	defaultTrafficRadiusNM = 6.0
	defaultTrafficKt       = 140.0
	defaultPeriod          = 3 * time.Minute
)

// Option applies a configuration option to the Simulator.
type Option func(*Simulator)

// WithCenter sets the point the scenario is built around.
func WithCenter(lat, lon float64) Option {
	return func(s *Simulator) { s.center = geo.LatLon{Lat: lat, Lon: lon} }
}

// WithOwnShip sets the own-ship altitude and ground speed.
func WithOwnShip(altitudeFt, groundSpeedKt float64) Option {
	return func(s *Simulator) {
		s.ownAltitudeFt = altitudeFt
		if groundSpeedKt >= 0 {
			s.ownSpeedKt = groundSpeedKt
		}
	}
}

// WithOwnRadius sets the radius of the own-ship circuit.
func WithOwnRadius(nm float64) Option {
	return func(s *Simulator) {
		if nm > 0 {
			s.ownRadiusNM = nm
		}
	}
}

// WithTraffic sets the number of targets and their orbit radius.
func WithTraffic(count int, radiusNM float64) Option {
	return func(s *Simulator) {
		if count >= 0 {
			s.trafficCount = count
		}
		if radiusNM > 0 {
			s.trafficRadius = radiusNM
		}
	}
}

// WithPeriod sets the orbit period of the traffic.
func WithPeriod(d time.Duration) Option {
	return func(s *Simulator) {
		if d > 0 {
			s.period = d
		}
	}
}

// WithClock sets the time source.
func WithClock(c model.Clock) Option {
	return func(s *Simulator) {
		if c != nil {
			s.clock = c
		}
	}
}

// WithLogger sets a custom logger.
func WithLogger(l logger.Logger) Option {
	return func(s *Simulator) {
		if l != nil {
			s.logger = l
		}
	}
}
