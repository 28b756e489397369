package service

import (
	"github.com/okian/navguard/internal/config"
	"github.com/okian/navguard/internal/domain/altalert"
	"github.com/okian/navguard/internal/domain/holding"
	"github.com/okian/navguard/internal/domain/model"
	"github.com/okian/navguard/internal/domain/traffic"
	"github.com/okian/navguard/internal/domain/vnav"
	"github.com/okian/navguard/pkg/logger"
)

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithQueueSize sets the capacity of the telemetry frame queue.
func WithQueueSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.queueSize = size
		}
	}
}

// WithDedupeSize sets how many recent frame IDs are remembered to reject
// replayed frames.
func WithDedupeSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.dedupeSize = size
		}
	}
}

// WithRecentAlerts sets how many alerts are kept for RecentAlerts.
func WithRecentAlerts(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.recentSize = n
		}
	}
}

// WithLogger sets a custom logger for the service and its engines.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithClock sets the clock shared by every engine.
func WithClock(c model.Clock) Option {
	return func(s *Service) {
		if c != nil {
			s.clock = c
		}
	}
}

// WithSink adds an external alert consumer. It may be given more than once.
func WithSink(sink model.AlertSink) Option {
	return func(s *Service) {
		if sink != nil {
			s.sinks = append(s.sinks, sink)
		}
	}
}

// WithSequenceRadius enables automatic waypoint sequencing when the aircraft
// comes within nm of the active waypoint. Zero disables it.
func WithSequenceRadius(nm float64) Option {
	return func(s *Service) {
		if nm >= 0 {
			s.sequenceNM = nm
		}
	}
}

// WithTrafficOptions passes options through to the traffic engine.
func WithTrafficOptions(opts ...traffic.Option) Option {
	return func(s *Service) { s.trafficOpts = append(s.trafficOpts, opts...) }
}

// WithVNAVOptions passes options through to the vertical guidance engine.
func WithVNAVOptions(opts ...vnav.Option) Option {
	return func(s *Service) { s.vnavOpts = append(s.vnavOpts, opts...) }
}

// WithHoldingOptions passes options through to the holding engine.
func WithHoldingOptions(opts ...holding.Option) Option {
	return func(s *Service) { s.holdingOpts = append(s.holdingOpts, opts...) }
}

// WithAltitudeOptions passes options through to the altitude alert engine.
func WithAltitudeOptions(opts ...altalert.Option) Option {
	return func(s *Service) { s.altitudeOpts = append(s.altitudeOpts, opts...) }
}

// FromConfig translates a loaded configuration into service options.
func FromConfig(cfg *config.Config) []Option {
	if cfg == nil {
		return nil
	}
	sens, err := traffic.ParseSensitivity(cfg.TrafficSensitivity)
	if err != nil {
		sens = traffic.SensitivityNormal
	}
	return []Option{
		WithQueueSize(cfg.FrameQueueSize),
		WithDedupeSize(cfg.FrameDedupeSize),
		WithRecentAlerts(cfg.RecentAlerts),
		WithTrafficOptions(
			traffic.WithSensitivity(sens),
			traffic.WithSensitivityFactor(cfg.TrafficSensitivityFactor),
			traffic.WithAdvisories(cfg.TrafficTAEnabled, cfg.TrafficRAEnabled),
			traffic.WithCacheSize(cfg.TrafficCacheSize),
		),
		WithVNAVOptions(
			vnav.WithEnabled(cfg.VNAVEnabled),
			vnav.WithDescentAngle(cfg.VNAVDescentAngleDeg),
		),
		WithHoldingOptions(
			holding.WithSpeedChangeThreshold(cfg.HoldSpeedChangeKt),
		),
		WithAltitudeOptions(
			altalert.WithChimeCooldown(cfg.ChimeCooldown()),
		),
	}
}
