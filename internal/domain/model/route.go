package model

import (
	"fmt"
	"strings"

	"github.com/okian/navguard/internal/domain/geo"
)

// Descriptor qualifies an altitude constraint.
type Descriptor int

const (
	At Descriptor = iota
	AtOrAbove
	AtOrBelow
)

func (d Descriptor) String() string {
	switch d {
	case At:
		return "AT"
	case AtOrAbove:
		return "AT_OR_ABOVE"
	case AtOrBelow:
		return "AT_OR_BELOW"
	}
	return "UNKNOWN"
}

// ParseDescriptor accepts AT, AT_OR_ABOVE/+ and AT_OR_BELOW/- (case-insensitive).
func ParseDescriptor(s string) (Descriptor, bool) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "AT", "@", "":
		return At, true
	case "AT_OR_ABOVE", "+", "ABOVE":
		return AtOrAbove, true
	case "AT_OR_BELOW", "-", "BELOW":
		return AtOrBelow, true
	}
	return At, false
}

// MarshalText implements encoding.TextMarshaler.
func (d Descriptor) MarshalText() ([]byte, error) { return []byte(d.String()), nil }

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Descriptor) UnmarshalText(b []byte) error {
	v, ok := ParseDescriptor(string(b))
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownDescriptor, b)
	}
	*d = v
	return nil
}

// Descending reports whether the constraint can require a descent to meet it.
func (d Descriptor) Descending() bool { return d == At || d == AtOrBelow }

// AltitudeConstraint is a crossing restriction at a route waypoint.
type AltitudeConstraint struct {
	Ident      string     `json:"ident"`
	AltitudeFt float64    `json:"altitude_ft"`
	Descriptor Descriptor `json:"descriptor"`
}

// Waypoint is a route point with an optional altitude constraint.
type Waypoint struct {
	Ident      string              `json:"ident"`
	Position   geo.LatLon          `json:"position"`
	Constraint *AltitudeConstraint `json:"constraint,omitempty"`
}

// ProcedureLeg is a single procedure leg record as supplied by the
// procedure data provider. PathTerminator is the two-letter leg code
// (e.g. "TF", "HM"). LegTimeS and LegDistanceNM are zero when not charted.
type ProcedureLeg struct {
	Fix            string     `json:"fix"`
	Position       geo.LatLon `json:"position"`
	PathTerminator string     `json:"path_terminator"`
	TurnDirection  string     `json:"turn_direction"`
	CourseDeg      float64    `json:"course_deg"`
	LegTimeS       float64    `json:"leg_time_s,omitempty"`
	LegDistanceNM  float64    `json:"leg_distance_nm,omitempty"`
	AltitudeFt     *float64   `json:"altitude_ft,omitempty"`
}
