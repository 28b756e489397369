// Package holding detects holding legs in procedure data, picks the entry
// procedure, builds the racetrack and tracks the aircraft around it.
package holding

import (
	"strings"

	"github.com/okian/navguard/internal/domain/geo"
	"github.com/okian/navguard/internal/domain/model"
)

// Default leg times in seconds, split at 14,000 ft.
const (
	lowLegTimeS    = 60
	highLegTimeS   = 90
	legTimeSplitFt = 14000
)

// Turn is the direction of turns in the hold.
type Turn int

const (
	TurnRight Turn = iota
	TurnLeft
)

func (t Turn) String() string {
	if t == TurnLeft {
		return "L"
	}
	return "R"
}

// MarshalText implements encoding.TextMarshaler.
func (t Turn) MarshalText() ([]byte, error) { return []byte(t.String()), nil }

// ParseTurn parses a turn direction code. Anything but L or LEFT is a right
// turn, which is the standard hold.
func ParseTurn(s string) Turn {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "L", "LEFT":
		return TurnLeft
	}
	return TurnRight
}

// Kind is the hold path terminator.
type Kind string

const (
	KindManual   Kind = "HM"
	KindFix      Kind = "HF"
	KindAltitude Kind = "HA"
)

// Spec describes a hold as published on a procedure leg.
type Spec struct {
	Kind             Kind       `json:"kind"`
	Fix              string     `json:"fix"`
	Position         geo.LatLon `json:"position"`
	InboundCourseDeg float64    `json:"inbound_course_deg"`
	Turn             Turn       `json:"turn"`
	LegTimeS         float64    `json:"leg_time_s"`
	LegDistanceNM    float64    `json:"leg_distance_nm,omitempty"`
	AltitudeFt       *float64   `json:"altitude_ft,omitempty"`
}

// OutboundCourseDeg returns the reciprocal of the inbound course.
func (s Spec) OutboundCourseDeg() float64 { return geo.OppositeHeading(s.InboundCourseDeg) }

// DefaultLegTime returns the leg time used when none is charted.
func DefaultLegTime(altitudeFt float64) float64 {
	if altitudeFt > legTimeSplitFt {
		return highLegTimeS
	}
	return lowLegTimeS
}

// DetectHold reports whether leg is a hold and, if so, its specification.
// HA legs also carry the hold altitude; HM and HF legs do not.
func DetectHold(leg model.ProcedureLeg) (Spec, bool) {
	kind := Kind(strings.ToUpper(strings.TrimSpace(leg.PathTerminator)))
	switch kind {
	case KindManual, KindFix, KindAltitude:
	default:
		return Spec{}, false
	}

	s := Spec{
		Kind:             kind,
		Fix:              leg.Fix,
		Position:         leg.Position,
		InboundCourseDeg: geo.NormalizeHeading(leg.CourseDeg),
		Turn:             ParseTurn(leg.TurnDirection),
		LegTimeS:         leg.LegTimeS,
		LegDistanceNM:    leg.LegDistanceNM,
	}
	if kind == KindAltitude && leg.AltitudeFt != nil {
		alt := *leg.AltitudeFt
		s.AltitudeFt = &alt
	}
	if s.LegTimeS <= 0 {
		alt := 0.0
		if leg.AltitudeFt != nil {
			alt = *leg.AltitudeFt
		}
		s.LegTimeS = DefaultLegTime(alt)
	}
	return s, true
}
