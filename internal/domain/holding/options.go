package holding

import (
	"github.com/okian/navguard/internal/domain/model"
	"github.com/okian/navguard/pkg/logger"
)

const (
	defaultSpeedChangeKt     = 5.0
	defaultFixCaptureNM      = 0.3
	altitudeReachedTolerance = 100.0
)

// Option applies a configuration option to the Engine.
type Option func(*Engine)

// WithLogger sets a custom logger for the engine.
func WithLogger(l logger.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

// WithSink sets where hold alerts are delivered.
func WithSink(s model.AlertSink) Option {
	return func(e *Engine) {
		if s != nil {
			e.sink = s
		}
	}
}

// WithClock sets the time source that drives the phase timers.
func WithClock(c model.Clock) Option {
	return func(e *Engine) {
		if c != nil {
			e.clock = c
		}
	}
}

// WithSpeedChangeThreshold sets the ground speed change that triggers a
// racetrack rebuild.
func WithSpeedChangeThreshold(kt float64) Option {
	return func(e *Engine) {
		if kt > 0 {
			e.speedChangeKt = kt
		}
	}
}

// WithFixCaptureRadius sets how close to the fix counts as crossing it.
func WithFixCaptureRadius(nm float64) Option {
	return func(e *Engine) {
		if nm > 0 {
			e.fixCaptureNM = nm
		}
	}
}
