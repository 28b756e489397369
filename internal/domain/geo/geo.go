// Package geo holds the shared navigation math used by the alerting engines:
// great-circle distance and bearing on a spherical earth, relative motion
// between two movers, and the traffic sensitivity altitude bands.
//
// Every function is total. Degenerate geometry (coincident points, zero
// speed) produces a degenerate result such as a zero distance, never an error.
package geo

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"
)

const (
	// EarthRadiusNM is the mean earth radius in nautical miles.
	EarthRadiusNM = 3440.065

	// FeetPerNM converts nautical miles to feet.
	FeetPerNM = 6076.12

	// coincidentNM is the distance below which two points are treated as the
	// same point for bearing and closure purposes.
	coincidentNM = 1e-9
)

// LatLon is a position in decimal degrees.
type LatLon struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Radians converts degrees to radians.
func Radians(d float64) float64 { return d * math.Pi / 180 }

// Degrees converts radians to degrees.
func Degrees(r float64) float64 { return r * 180 / math.Pi }

// DistanceBearing returns the haversine distance in nautical miles between
// a and b and the initial great-circle bearing from a to b in degrees true.
// The bearing of coincident points is 0.
func DistanceBearing(a, b LatLon) (float64, float64) {
	lat1, lon1 := Radians(a.Lat), Radians(a.Lon)
	lat2, lon2 := Radians(b.Lat), Radians(b.Lon)
	dlat, dlon := lat2-lat1, lon2-lon1

	// https://www.movable-type.co.uk/scripts/latlong.html
	x := math.Pow(math.Sin(dlat/2), 2) + math.Cos(lat1)*math.Cos(lat2)*math.Pow(math.Sin(dlon/2), 2)
	x = Clamp(x, 0, 1)
	c := 2 * math.Atan2(math.Sqrt(x), math.Sqrt(1-x))
	dist := EarthRadiusNM * c
	if dist < coincidentNM {
		return 0, 0
	}

	y := math.Sin(dlon) * math.Cos(lat2)
	xb := math.Cos(lat1)*math.Sin(lat2) - math.Sin(lat1)*math.Cos(lat2)*math.Cos(dlon)
	return dist, NormalizeHeading(Degrees(math.Atan2(y, xb)))
}

// Distance returns the great-circle distance in nautical miles.
func Distance(a, b LatLon) float64 {
	d, _ := DistanceBearing(a, b)
	return d
}

// Destination returns the point reached by travelling distNM nautical miles
// from p along the great circle with initial bearing bearingDeg.
func Destination(p LatLon, bearingDeg, distNM float64) LatLon {
	if distNM == 0 {
		return p
	}
	lat1, lon1 := Radians(p.Lat), Radians(p.Lon)
	brg := Radians(bearingDeg)
	ad := distNM / EarthRadiusNM

	lat2 := math.Asin(math.Sin(lat1)*math.Cos(ad) + math.Cos(lat1)*math.Sin(ad)*math.Cos(brg))
	lon2 := lon1 + math.Atan2(math.Sin(brg)*math.Sin(ad)*math.Cos(lat1), math.Cos(ad)-math.Sin(lat1)*math.Sin(lat2))

	lon := Degrees(lon2)
	if lon > 180 {
		lon -= 360
	} else if lon < -180 {
		lon += 360
	}
	return LatLon{Lat: Degrees(lat2), Lon: lon}
}

// Mover is a position with a horizontal velocity.
type Mover struct {
	Position      LatLon
	TrackDeg      float64
	GroundSpeedKt float64
}

// Velocity returns the east/north ground velocity in knots for a track and
// ground speed. X is east, Y is north.
func Velocity(trackDeg, groundSpeedKt float64) r2.Vec {
	t := Radians(trackDeg)
	return r2.Vec{X: groundSpeedKt * math.Sin(t), Y: groundSpeedKt * math.Cos(t)}
}

// ClosureRate projects the ground velocity of b relative to a onto the line
// from a to b. The result is in knots and positive when the two are closing.
// Coincident movers have no defined line of sight and report 0.
func ClosureRate(a, b Mover) float64 {
	dist, brg := DistanceBearing(a.Position, b.Position)
	if dist < coincidentNM {
		return 0
	}
	los := Velocity(brg, 1)
	rel := r2.Sub(Velocity(b.TrackDeg, b.GroundSpeedKt), Velocity(a.TrackDeg, a.GroundSpeedKt))
	return -r2.Dot(rel, los)
}
