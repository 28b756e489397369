// Package model contains the telemetry and alert types shared by the
// engines and the orchestrator.
package model

import (
	"time"

	"github.com/okian/navguard/internal/domain/geo"
)

// Fields is a presence mask over telemetry values. A clear bit is the
// explicit "absent" variant for that value.
type Fields uint8

// Telemetry presence bits.
const (
	HasPosition Fields = 1 << iota
	HasAltitude
	HasHeading
	HasGroundSpeed
	HasVerticalSpeed

	// HasAll marks a fully populated snapshot.
	HasAll = HasPosition | HasAltitude | HasHeading | HasGroundSpeed | HasVerticalSpeed
)

// Has reports whether every bit in want is present.
func (f Fields) Has(want Fields) bool { return f&want == want }

// AircraftState is an own-ship telemetry snapshot.
type AircraftState struct {
	Position         geo.LatLon `json:"position"`
	AltitudeFt       float64    `json:"altitude_ft"`
	HeadingDeg       float64    `json:"heading_deg"`
	GroundSpeedKt    float64    `json:"ground_speed_kt"`
	VerticalSpeedFPM float64    `json:"vertical_speed_fpm"`
	Present          Fields     `json:"present"`
}

// NewAircraftState returns a fully populated snapshot.
func NewAircraftState(lat, lon, altFt, headingDeg, groundSpeedKt, verticalSpeedFPM float64) AircraftState {
	return AircraftState{
		Position:         geo.LatLon{Lat: lat, Lon: lon},
		AltitudeFt:       altFt,
		HeadingDeg:       headingDeg,
		GroundSpeedKt:    groundSpeedKt,
		VerticalSpeedFPM: verticalSpeedFPM,
		Present:          HasAll,
	}
}

// Has reports whether the snapshot carries every value in want.
func (s AircraftState) Has(want Fields) bool { return s.Present.Has(want) }

// Mover returns the horizontal motion of the aircraft. Absent heading or
// ground speed is treated as stationary.
func (s AircraftState) Mover() geo.Mover {
	m := geo.Mover{Position: s.Position}
	if s.Has(HasHeading | HasGroundSpeed) {
		m.TrackDeg = s.HeadingDeg
		m.GroundSpeedKt = s.GroundSpeedKt
	}
	return m
}

// TrafficTarget is a single traffic report. HeadingDeg is the ground track.
type TrafficTarget struct {
	Callsign         string     `json:"callsign"`
	Position         geo.LatLon `json:"position"`
	AltitudeFt       float64    `json:"altitude_ft"`
	HeadingDeg       float64    `json:"heading_deg"`
	GroundSpeedKt    float64    `json:"ground_speed_kt"`
	VerticalSpeedFPM float64    `json:"vertical_speed_fpm"`
	Present          Fields     `json:"present"`
}

// Has reports whether the target carries every value in want.
func (t TrafficTarget) Has(want Fields) bool { return t.Present.Has(want) }

// Mover returns the horizontal motion of the target.
func (t TrafficTarget) Mover() geo.Mover {
	m := geo.Mover{Position: t.Position}
	if t.Has(HasHeading | HasGroundSpeed) {
		m.TrackDeg = t.HeadingDeg
		m.GroundSpeedKt = t.GroundSpeedKt
	}
	return m
}

// Frame is one telemetry tick as delivered to the orchestrator.
type Frame struct {
	ID        string          `json:"id"`
	Timestamp time.Time       `json:"timestamp"`
	Own       AircraftState   `json:"own"`
	Traffic   []TrafficTarget `json:"traffic"`
}
