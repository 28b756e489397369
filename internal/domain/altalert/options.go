package altalert

import (
	"time"

	"github.com/okian/navguard/internal/domain/model"
	"github.com/okian/navguard/pkg/logger"
)

// Deviation thresholds in feet.
const (
	approachingFt = 1000
	proximityFt   = 200
	captureFt     = 100
	deviationFt   = 300
	minimumsPadFt = 100

	defaultChimeCooldown = 5 * time.Second
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

// WithSink sets where altitude alerts are delivered.
func WithSink(s model.AlertSink) Option {
	return func(e *Engine) {
		if s != nil {
			e.sink = s
		}
	}
}

// WithClock sets the time source the chime cooldown is measured against.
func WithClock(c model.Clock) Option {
	return func(e *Engine) {
		if c != nil {
			e.clock = c
		}
	}
}

// WithChimeCooldown sets the minimum interval between aural alerts.
func WithChimeCooldown(d time.Duration) Option {
	return func(e *Engine) {
		if d >= 0 {
			e.cooldown = d
		}
	}
}
