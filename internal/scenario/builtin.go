package scenario

import (
	"fmt"
	"sort"
)

const (
	baseLat = 40.0
	baseLon = -75.0
)

// Builtin returns the bundled scenarios keyed by name.
func Builtin() map[string]Scenario {
	return map[string]Scenario{
		"altitude-climb": altitudeClimb(),
		"ra-encounter":   raEncounter(),
		"vnav-descent":   vnavDescent(),
		"hold-entry":     holdEntry(),
	}
}

// Names returns the built-in scenario names in sorted order.
func Names() []string {
	b := Builtin()
	names := make([]string, 0, len(b))
	for name := range b {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Lookup returns the named built-in scenario.
func Lookup(name string) (Scenario, error) {
	sc, ok := Builtin()[name]
	if !ok {
		return Scenario{}, fmt.Errorf("%w: %q", ErrUnknownScenario, name)
	}
	return sc, nil
}

func climbing(alt float64) *Aircraft {
	return &Aircraft{Lat: baseLat, Lon: baseLon, AltitudeFt: alt, SpeedKt: 150, VSFPM: 1500}
}

func level(lat, alt float64) *Aircraft {
	return &Aircraft{Lat: lat, Lon: baseLon, AltitudeFt: alt, SpeedKt: 150}
}

func altitudeClimb() Scenario {
	return Scenario{
		Name:        "altitude-climb",
		Description: "climb from 4000 ft to an assigned 12000 ft through every capture band",
		Steps: []Step{
			{Commands: []Command{{Name: "assign_altitude", Value: 12000}}, Own: climbing(4000)},
			{AdvanceS: 10, Own: climbing(11010)},
			{AdvanceS: 10, Own: climbing(11850)},
			{AdvanceS: 10, Own: climbing(11980)},
		},
		Expect: []string{"altitude:APPROACHING", "altitude:PROXIMITY", "altitude:CAPTURED"},
	}
}

func raEncounter() Scenario {
	// Head-on at 300 kt closure: 1.5 nm is a TA, 1 nm is an RA.
	intruder := func(nm float64) []Target {
		return []Target{{
			Callsign: "N123AB",
			Aircraft: Aircraft{Lat: baseLat + nm/60, Lon: baseLon, AltitudeFt: 5000, HeadingDeg: 180, SpeedKt: 150},
		}}
	}
	return Scenario{
		Name:        "ra-encounter",
		Description: "co-altitude head-on intruder escalating from TA to RA, then clearing",
		Steps: []Step{
			{Own: level(baseLat, 5000), Traffic: intruder(6)},
			{AdvanceS: 1, Own: level(baseLat, 5000), Traffic: intruder(1.5)},
			{AdvanceS: 1, Own: level(baseLat, 5000), Traffic: intruder(1)},
			{AdvanceS: 1, Own: level(baseLat, 5000)},
		},
		Expect: []string{"traffic:TA", "traffic:RA", "traffic:CLEAR_OF_CONFLICT"},
	}
}

func vnavDescent() Scenario {
	alt := 4000.0
	return Scenario{
		Name:        "vnav-descent",
		Description: "descent to a 4000 ft crossing restriction thirty miles ahead",
		Steps: []Step{
			{
				Commands: []Command{{Name: "route", Route: []Waypoint{
					{Ident: "ALPHA", Lat: 40.5, Lon: baseLon, AltitudeFt: &alt, Descriptor: "AT"},
				}}},
				Own: level(baseLat, 10000),
			},
			{AdvanceS: 60, Own: level(40.15, 10000)},
			{AdvanceS: 60, Own: level(40.2, 10000)},
		},
		Expect: []string{"vnav:ARMED", "vnav:TOD_1MIN", "vnav:TOD"},
	}
}

func holdEntry() Scenario {
	southbound := func(lat float64) *Aircraft {
		return &Aircraft{Lat: lat, Lon: baseLon, AltitudeFt: 6000, HeadingDeg: 180, SpeedKt: 150}
	}
	return Scenario{
		Name:        "hold-entry",
		Description: "direct entry into a hold-to-fix that terminates after one circuit",
		Steps: []Step{
			{Own: southbound(40.1)},
			{Commands: []Command{{Name: "hold", Leg: &Leg{
				Fix: "HOLDX", Lat: 40.05, Lon: baseLon, PathTerminator: "HF", Turn: "R", CourseDeg: 0, LegTimeS: 60,
			}}}},
			{AdvanceS: 60, Own: southbound(40.05)},
			{AdvanceS: 600, Own: southbound(40.05)},
		},
		Expect: []string{"holding:HOLD_ENTRY", "holding:HOLD_EXIT"},
	}
}
