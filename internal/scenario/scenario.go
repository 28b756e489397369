// Package scenario replays scripted telemetry through the alerting service
// on a manual clock and checks the alerts it raises.
package scenario

import (
	"fmt"
	"time"

	"github.com/okian/navguard/internal/domain/geo"
	"github.com/okian/navguard/internal/domain/model"
)

// Scenario is a named script of steps plus the alert sequence it must produce.
// Expect entries are "KIND" or "source:KIND".
type Scenario struct {
	Name        string   `koanf:"name"`
	Description string   `koanf:"description"`
	Steps       []Step   `koanf:"steps"`
	Expect      []string `koanf:"expect"`
}

// Step advances the clock, applies its commands in order, then ticks one
// frame when Own is set.
type Step struct {
	AdvanceS float64   `koanf:"advance_s"`
	Commands []Command `koanf:"commands"`
	Own      *Aircraft `koanf:"own"`
	Traffic  []Target  `koanf:"traffic"`
}

// Aircraft is own-ship telemetry in scenario form.
type Aircraft struct {
	Lat        float64 `koanf:"lat"`
	Lon        float64 `koanf:"lon"`
	AltitudeFt float64 `koanf:"altitude_ft"`
	HeadingDeg float64 `koanf:"heading_deg"`
	SpeedKt    float64 `koanf:"speed_kt"`
	VSFPM      float64 `koanf:"vs_fpm"`
}

// Target is a traffic report in scenario form.
type Target struct {
	Callsign string `koanf:"callsign"`
	Aircraft `koanf:",squash"`
}

// Command is an operator action applied before the step's frame.
//
// Supported names: assign_altitude, clear_altitude, minimums, clear_minimums,
// sensitivity, descent_angle, route, active_leg, hold, cancel_hold.
type Command struct {
	Name  string     `koanf:"name"`
	Value float64    `koanf:"value"`
	Arg   string     `koanf:"arg"`
	Index int        `koanf:"index"`
	Route []Waypoint `koanf:"route"`
	Leg   *Leg       `koanf:"leg"`
}

// Waypoint is a route point with an optional constraint. Descriptor is
// ignored when AltitudeFt is nil.
type Waypoint struct {
	Ident      string   `koanf:"ident"`
	Lat        float64  `koanf:"lat"`
	Lon        float64  `koanf:"lon"`
	AltitudeFt *float64 `koanf:"altitude_ft"`
	Descriptor string   `koanf:"descriptor"`
}

// Leg is a procedure leg record in scenario form.
type Leg struct {
	Fix            string   `koanf:"fix"`
	Lat            float64  `koanf:"lat"`
	Lon            float64  `koanf:"lon"`
	PathTerminator string   `koanf:"path_terminator"`
	Turn           string   `koanf:"turn"`
	CourseDeg      float64  `koanf:"course_deg"`
	LegTimeS       float64  `koanf:"leg_time_s"`
	LegDistanceNM  float64  `koanf:"leg_distance_nm"`
	AltitudeFt     *float64 `koanf:"altitude_ft"`
}

// Validate checks the scenario has a name and at least one step.
func (s *Scenario) Validate() error {
	if s.Name == "" {
		return fmt.Errorf("%w: missing name", ErrInvalidScenario)
	}
	if len(s.Steps) == 0 {
		return fmt.Errorf("%w: %s has no steps", ErrInvalidScenario, s.Name)
	}
	return nil
}

// Duration is the simulated time the scenario spans.
func (s *Scenario) Duration() time.Duration {
	var total float64
	for _, st := range s.Steps {
		total += st.AdvanceS
	}
	return time.Duration(total * float64(time.Second))
}

func (a Aircraft) state() model.AircraftState {
	return model.NewAircraftState(a.Lat, a.Lon, a.AltitudeFt, a.HeadingDeg, a.SpeedKt, a.VSFPM)
}

func (t Target) target() model.TrafficTarget {
	return model.TrafficTarget{
		Callsign:         t.Callsign,
		Position:         geo.LatLon{Lat: t.Lat, Lon: t.Lon},
		AltitudeFt:       t.AltitudeFt,
		HeadingDeg:       t.HeadingDeg,
		GroundSpeedKt:    t.SpeedKt,
		VerticalSpeedFPM: t.VSFPM,
		Present:          model.HasAll,
	}
}

func (w Waypoint) waypoint() (model.Waypoint, error) {
	wp := model.Waypoint{Ident: w.Ident, Position: geo.LatLon{Lat: w.Lat, Lon: w.Lon}}
	if w.AltitudeFt == nil {
		return wp, nil
	}
	d, ok := model.ParseDescriptor(w.Descriptor)
	if !ok {
		return model.Waypoint{}, fmt.Errorf("%w: %q at %s", model.ErrUnknownDescriptor, w.Descriptor, w.Ident)
	}
	wp.Constraint = &model.AltitudeConstraint{Ident: w.Ident, AltitudeFt: *w.AltitudeFt, Descriptor: d}
	return wp, nil
}

func (l Leg) leg() model.ProcedureLeg {
	return model.ProcedureLeg{
		Fix:            l.Fix,
		Position:       geo.LatLon{Lat: l.Lat, Lon: l.Lon},
		PathTerminator: l.PathTerminator,
		TurnDirection:  l.Turn,
		CourseDeg:      l.CourseDeg,
		LegTimeS:       l.LegTimeS,
		LegDistanceNM:  l.LegDistanceNM,
		AltitudeFt:     l.AltitudeFt,
	}
}
