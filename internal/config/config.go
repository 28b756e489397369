// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Flat snake_case keys shared by the YAML file and NAVGUARD_* env vars.
// - New() builds a Config with defaults; Load layers file and env on top.
// - Out-of-range numeric values are clamped rather than rejected.
package config

import (
	"fmt"
	"strings"
	"time"
)

// Clamping limits.
const (
	minTickIntervalMS     = 10
	minDescentAngleDeg    = 1.0
	maxDescentAngleDeg    = 6.0
	minSensitivityFactor  = 0.1
	maxSensitivityFactor  = 1.0
	defaultSensitivityFac = 0.75
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogFile, when set, also writes logs to a rotating file.
	LogFile string `koanf:"log_file"`

	// Addr configures the HTTP listen address, e.g. ":9080".
	Addr string `koanf:"addr"`

	// TickIntervalMS is the telemetry frame period of the simulator.
	TickIntervalMS int `koanf:"tick_interval_ms"`

	// FrameQueueSize bounds the in-memory telemetry frame queue.
	FrameQueueSize int `koanf:"frame_queue_size"`

	// FrameDedupeSize is how many recent frame IDs are remembered to drop
	// replayed frames.
	FrameDedupeSize int `koanf:"frame_dedupe_size"`

	// RecentAlerts is the number of alerts kept for GET /alerts.
	RecentAlerts int `koanf:"recent_alerts"`

	// Traffic engine.
	TrafficSensitivity       string  `koanf:"traffic_sensitivity"`
	TrafficTAEnabled         bool    `koanf:"traffic_ta_enabled"`
	TrafficRAEnabled         bool    `koanf:"traffic_ra_enabled"`
	TrafficSensitivityFactor float64 `koanf:"traffic_sensitivity_factor"`
	TrafficCacheSize         int     `koanf:"traffic_cache_size"`

	// Vertical guidance.
	VNAVEnabled         bool    `koanf:"vnav_enabled"`
	VNAVDescentAngleDeg float64 `koanf:"vnav_descent_angle_deg"`

	// AltitudeChimeCooldownMS is the minimum gap between aural altitude alerts.
	AltitudeChimeCooldownMS int `koanf:"altitude_chime_cooldown_ms"`

	// HoldSpeedChangeKt is the ground speed change that rebuilds the racetrack.
	HoldSpeedChangeKt float64 `koanf:"hold_speed_change_kt"`

	// Simulator.
	SimCenterLat        float64 `koanf:"sim_center_lat"`
	SimCenterLon        float64 `koanf:"sim_center_lon"`
	SimTrafficCount     int     `koanf:"sim_traffic_count"`
	SimOwnAltitudeFt    float64 `koanf:"sim_own_altitude_ft"`
	SimOwnGroundSpeedKt float64 `koanf:"sim_own_ground_speed_kt"`
}

// New returns a Config populated with defaults.
func New() *Config {
	return &Config{
		LogLevel:                 "info",
		Addr:                     ":9080",
		TickIntervalMS:           1000,
		FrameQueueSize:           64,
		FrameDedupeSize:          1024,
		RecentAlerts:             200,
		TrafficSensitivity:       "NORMAL",
		TrafficTAEnabled:         true,
		TrafficRAEnabled:         true,
		TrafficSensitivityFactor: defaultSensitivityFac,
		TrafficCacheSize:         256,
		VNAVEnabled:              true,
		VNAVDescentAngleDeg:      3.0,
		AltitudeChimeCooldownMS:  5000,
		HoldSpeedChangeKt:        5,
		SimCenterLat:             47.4502,
		SimCenterLon:             -122.3088,
		SimTrafficCount:          4,
		SimOwnAltitudeFt:         8000,
		SimOwnGroundSpeedKt:      180,
	}
}

// TickInterval returns TickIntervalMS as a duration.
func (c *Config) TickInterval() time.Duration {
	return time.Duration(c.TickIntervalMS) * time.Millisecond
}

// ChimeCooldown returns AltitudeChimeCooldownMS as a duration.
func (c *Config) ChimeCooldown() time.Duration {
	return time.Duration(c.AltitudeChimeCooldownMS) * time.Millisecond
}

// Validate rejects values that cannot be clamped into range.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Addr) == "" {
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	}
	switch strings.ToUpper(strings.TrimSpace(c.TrafficSensitivity)) {
	case "", "NORMAL", "ABOVE", "BELOW":
	default:
		return fmt.Errorf("%w: traffic_sensitivity %q", ErrInvalidConfig, c.TrafficSensitivity)
	}
	if c.SimCenterLat < -90 || c.SimCenterLat > 90 {
		return fmt.Errorf("%w: sim_center_lat %v", ErrInvalidConfig, c.SimCenterLat)
	}
	return nil
}

// Normalize clamps numeric settings into their supported ranges.
func (c *Config) Normalize() {
	c.TrafficSensitivity = strings.ToUpper(strings.TrimSpace(c.TrafficSensitivity))
	if c.TrafficSensitivity == "" {
		c.TrafficSensitivity = "NORMAL"
	}
	c.TickIntervalMS = max(c.TickIntervalMS, minTickIntervalMS)
	c.FrameQueueSize = max(c.FrameQueueSize, 1)
	c.FrameDedupeSize = max(c.FrameDedupeSize, 1)
	c.RecentAlerts = max(c.RecentAlerts, 1)
	c.TrafficCacheSize = max(c.TrafficCacheSize, 1)
	c.AltitudeChimeCooldownMS = max(c.AltitudeChimeCooldownMS, 0)
	c.SimTrafficCount = max(c.SimTrafficCount, 0)
	c.SimOwnGroundSpeedKt = max(c.SimOwnGroundSpeedKt, 0)
	c.VNAVDescentAngleDeg = min(max(c.VNAVDescentAngleDeg, minDescentAngleDeg), maxDescentAngleDeg)
	c.TrafficSensitivityFactor = min(max(c.TrafficSensitivityFactor, minSensitivityFactor), maxSensitivityFactor)
	if c.HoldSpeedChangeKt <= 0 {
		c.HoldSpeedChangeKt = 5
	}
}
