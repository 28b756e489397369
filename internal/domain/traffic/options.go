package traffic

import (
	"github.com/okian/navguard/internal/domain/geo"
	"github.com/okian/navguard/internal/domain/model"
	"github.com/okian/navguard/pkg/logger"
)

// Default traffic thresholds.
const (
	defaultTAVerticalFt          = 1200
	defaultRAVerticalFt          = 800
	defaultProximateNM           = 10
	defaultTATauS                = 20
	defaultRATauS                = 15
	defaultMinClosureKt          = 10
	defaultMinVerticalClosureFPM = 100
	defaultSensitivityFactor     = 0.75
	defaultCacheSize             = 256
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

// WithSink sets where advisories are delivered.
func WithSink(s model.AlertSink) Option {
	return func(e *Engine) {
		if s != nil {
			e.sink = s
		}
	}
}

// WithClock sets the time source used to stamp threats and alerts.
func WithClock(c model.Clock) Option {
	return func(e *Engine) {
		if c != nil {
			e.clock = c
		}
	}
}

// WithBands overrides the altitude band table.
func WithBands(bands []geo.Band) Option {
	return func(e *Engine) {
		if len(bands) > 0 {
			e.bands = append([]geo.Band(nil), bands...)
		}
	}
}

// WithSensitivity sets the initial sensitivity mode.
func WithSensitivity(s Sensitivity) Option {
	return func(e *Engine) {
		e.sensitivity = s
	}
}

// WithSensitivityFactor sets the multiplier applied to TA and RA ranges for
// targets on the selected side. Values outside (0, 1] are ignored.
func WithSensitivityFactor(f float64) Option {
	return func(e *Engine) {
		if f > 0 && f <= 1 {
			e.sensitivityFactor = f
		}
	}
}

// WithAdvisories enables or disables TA and RA generation.
func WithAdvisories(ta, ra bool) Option {
	return func(e *Engine) {
		e.taEnabled = ta
		e.raEnabled = ra
	}
}

// WithTauThresholds sets the TA and RA tau limits in seconds.
func WithTauThresholds(taS, raS float64) Option {
	return func(e *Engine) {
		if taS > 0 {
			e.taTauS = taS
		}
		if raS > 0 {
			e.raTauS = raS
		}
	}
}

// WithCacheSize bounds the number of tracked threats.
func WithCacheSize(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.cacheSize = n
		}
	}
}
