package holding

import (
	"math"

	"github.com/okian/navguard/internal/domain/geo"
)

const (
	// Standard-rate turn radius is approximated as gs/360 nm.
	turnRadiusDivisor = 360
	arcSegments       = 12
)

// Racetrack is the geometry of a hold flown at a given ground speed.
type Racetrack struct {
	GroundSpeedKt     float64      `json:"ground_speed_kt"`
	LegTimeS          float64      `json:"leg_time_s"`
	LegLengthNM       float64      `json:"leg_length_nm"`
	TurnRadiusNM      float64      `json:"turn_radius_nm"`
	InboundCourseDeg  float64      `json:"inbound_course_deg"`
	OutboundCourseDeg float64      `json:"outbound_course_deg"`
	InboundStart      geo.LatLon   `json:"inbound_start"`
	InboundEnd        geo.LatLon   `json:"inbound_end"`
	OutboundStart     geo.LatLon   `json:"outbound_start"`
	OutboundEnd       geo.LatLon   `json:"outbound_end"`
	TurnOutbound      []geo.LatLon `json:"turn_outbound"`
	TurnInbound       []geo.LatLon `json:"turn_inbound"`
}

// TurnDuration returns the time spent in one 180 degree turn.
func (r Racetrack) TurnDuration() float64 {
	if r.GroundSpeedKt <= 0 {
		return 180 / 3.0 // standard rate
	}
	return math.Pi * r.TurnRadiusNM / r.GroundSpeedKt * 3600
}

// CalculateRacetrack lays out the hold. The inbound leg ends at the fix and
// the outbound leg runs parallel to it two turn radii toward the turn side.
func CalculateRacetrack(fix geo.LatLon, inboundCourseDeg, legTimeS float64, turn Turn, groundSpeedKt float64) Racetrack {
	gs := math.Max(groundSpeedKt, 0)
	inbound := geo.NormalizeHeading(inboundCourseDeg)
	return layoutRacetrack(fix, inbound, gs*legTimeS/3600, legTimeS, turn, gs)
}

// Racetrack lays out the hold for the spec at the given ground speed. A leg
// charted by distance keeps its length and the leg time follows from speed.
func (s Spec) Racetrack(groundSpeedKt float64) Racetrack {
	if s.LegDistanceNM <= 0 {
		return CalculateRacetrack(s.Position, s.InboundCourseDeg, s.LegTimeS, s.Turn, groundSpeedKt)
	}
	gs := math.Max(groundSpeedKt, 0)
	legTimeS := s.LegTimeS
	if gs > 0 {
		legTimeS = s.LegDistanceNM / gs * 3600
	}
	return layoutRacetrack(s.Position, geo.NormalizeHeading(s.InboundCourseDeg), s.LegDistanceNM, legTimeS, s.Turn, gs)
}

func layoutRacetrack(fix geo.LatLon, inbound, leg, legTimeS float64, turn Turn, gs float64) Racetrack {
	outbound := geo.OppositeHeading(inbound)
	side := inbound + 90
	sweep := 180.0
	if turn == TurnLeft {
		side = inbound - 90
		sweep = -180
	}
	side = geo.NormalizeHeading(side)
	radius := gs / turnRadiusDivisor

	r := Racetrack{
		GroundSpeedKt:     gs,
		LegTimeS:          legTimeS,
		LegLengthNM:       leg,
		TurnRadiusNM:      radius,
		InboundCourseDeg:  inbound,
		OutboundCourseDeg: outbound,
		InboundEnd:        fix,
		InboundStart:      geo.Destination(fix, outbound, leg),
		OutboundStart:     geo.Destination(fix, side, 2*radius),
	}
	r.OutboundEnd = geo.Destination(r.OutboundStart, outbound, leg)

	r.TurnOutbound = arc(geo.Destination(fix, side, radius), radius, geo.OppositeHeading(side), sweep)
	r.TurnInbound = arc(geo.Destination(r.InboundStart, side, radius), radius, side, sweep)
	return r
}

// arc samples a turn of sweepDeg around center, starting at the point on
// bearing startDeg from it. Positive sweeps turn clockwise.
func arc(center geo.LatLon, radiusNM, startDeg, sweepDeg float64) []geo.LatLon {
	pts := make([]geo.LatLon, arcSegments+1)
	for i := range pts {
		brg := startDeg + sweepDeg*float64(i)/arcSegments
		pts[i] = geo.Destination(center, geo.NormalizeHeading(brg), radiusNM)
	}
	return pts
}
