package vnav

import (
	"github.com/okian/navguard/internal/domain/model"
	"github.com/okian/navguard/pkg/logger"
)

// Descent path defaults and limits.
const (
	DefaultDescentAngleDeg = 3.0
	MinDescentAngleDeg     = 1.0
	MaxDescentAngleDeg     = 6.0

	defaultCaptureToleranceFt = 50.0
	todAdvisoryLead           = 60.0 // seconds before TOD
	minGroundSpeedKt          = 1.0
	minDistanceNM             = 0.01
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

// WithSink sets where VNAV alerts are delivered.
func WithSink(s model.AlertSink) Option {
	return func(e *Engine) {
		if s != nil {
			e.sink = s
		}
	}
}

// WithClock sets the time source used to stamp alerts.
func WithClock(c model.Clock) Option {
	return func(e *Engine) {
		if c != nil {
			e.clock = c
		}
	}
}

// WithEnabled sets the initial enabled state.
func WithEnabled(enabled bool) Option {
	return func(e *Engine) {
		e.enabled = enabled
	}
}

// WithDescentAngle sets the descent path angle, clamped to [1, 6] degrees.
func WithDescentAngle(deg float64) Option {
	return func(e *Engine) {
		e.angleDeg = clampAngle(deg)
	}
}

// WithCaptureTolerance sets how close to the constraint altitude counts as
// having reached it.
func WithCaptureTolerance(ft float64) Option {
	return func(e *Engine) {
		if ft >= 0 {
			e.captureToleranceFt = ft
		}
	}
}
