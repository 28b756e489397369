package traffic

import (
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/okian/navguard/internal/domain/geo"
	"github.com/okian/navguard/internal/domain/model"
)

// Zone is the advisory zone a target currently occupies.
type Zone int

const (
	ZoneOther Zone = iota
	ZoneProximate
	ZoneTA
	ZoneRA
)

func (z Zone) String() string {
	return [...]string{"OTHER", "PROXIMATE", "TA_ZONE", "RA_ZONE"}[z]
}

// MarshalText implements encoding.TextMarshaler.
func (z Zone) MarshalText() ([]byte, error) { return []byte(z.String()), nil }

// Sense is the vertical direction commanded by a resolution advisory.
type Sense int

const (
	SenseNone Sense = iota
	SenseClimb
	SenseDescend
)

func (s Sense) String() string {
	return [...]string{"NONE", "CLIMB", "DESCEND"}[s]
}

// MarshalText implements encoding.TextMarshaler.
func (s Sense) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

// Sensitivity selects which targets get reduced horizontal thresholds.
type Sensitivity int

const (
	SensitivityNormal Sensitivity = iota
	SensitivityAbove
	SensitivityBelow
)

func (s Sensitivity) String() string {
	return [...]string{"NORMAL", "ABOVE", "BELOW"}[s]
}

// MarshalText implements encoding.TextMarshaler.
func (s Sensitivity) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

// ParseSensitivity parses NORMAL, ABOVE or BELOW (case-insensitive).
func ParseSensitivity(s string) (Sensitivity, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "", "NORMAL":
		return SensitivityNormal, nil
	case "ABOVE":
		return SensitivityAbove, nil
	case "BELOW":
		return SensitivityBelow, nil
	}
	return SensitivityNormal, ErrUnknownSensitivity
}

// Tau is a time to closest approach in seconds. +Inf means the pair is not
// closing fast enough for a meaningful estimate.
type Tau float64

// Infinite reports whether t is +Inf.
func (t Tau) Infinite() bool { return math.IsInf(float64(t), 1) }

// MarshalJSON encodes +Inf as null since JSON has no infinity.
func (t Tau) MarshalJSON() ([]byte, error) {
	if t.Infinite() || math.IsNaN(float64(t)) {
		return []byte("null"), nil
	}
	return []byte(strconv.FormatFloat(float64(t), 'f', 1, 64)), nil
}

var infTau = Tau(math.Inf(1))

// Geometry is the relative position and motion of a target.
type Geometry struct {
	DistanceNM             float64 `json:"distance_nm"`
	BearingDeg             float64 `json:"bearing_deg"`
	AltitudeSeparationFt   float64 `json:"altitude_separation_ft"`
	ClosureRateKt          float64 `json:"closure_rate_kt"`
	VerticalClosureRateFPM float64 `json:"vertical_closure_rate_fpm"`
}

// Threat is the per-tick assessment of one target. AltitudeSeparationFt is
// positive when the target is above own ship.
type Threat struct {
	Callsign           string    `json:"callsign"`
	Geometry           Geometry  `json:"geometry"`
	AltitudeFt         float64   `json:"altitude_ft"`
	TauS               Tau       `json:"tau_s"`
	HorizontalTauS     Tau       `json:"horizontal_tau_s"`
	VerticalTauS       Tau       `json:"vertical_tau_s"`
	Zone               Zone      `json:"zone"`
	IsTA               bool      `json:"is_ta"`
	IsRA               bool      `json:"is_ra"`
	RASense            Sense     `json:"ra_sense"`
	RAVerticalSpeedFPM float64   `json:"ra_vertical_speed_fpm"`
	UpdatedAt          time.Time `json:"updated_at"`
}

// thresholds is the set of limits applied to one target.
type thresholds struct {
	taNM                  float64
	raNM                  float64
	taVerticalFt          float64
	raVerticalFt          float64
	proximateNM           float64
	taTau                 float64
	raTau                 float64
	minClosureKt          float64
	minVerticalClosureFPM float64
	taEnabled             bool
	raEnabled             bool
}

// assess computes geometry, tau, zone and advisory eligibility for one
// target. It has no side effects.
func assess(own model.AircraftState, tgt model.TrafficTarget, th thresholds) Threat {
	dist, brg := geo.DistanceBearing(own.Position, tgt.Position)
	altSep := tgt.AltitudeFt - own.AltitudeFt
	closure := geo.ClosureRate(own.Mover(), tgt.Mover())

	var ownVS, tgtVS float64
	if own.Has(model.HasVerticalSpeed) {
		ownVS = own.VerticalSpeedFPM
	}
	if tgt.Has(model.HasVerticalSpeed) {
		tgtVS = tgt.VerticalSpeedFPM
	}
	vClosure := verticalClosure(altSep, tgtVS-ownVS)

	t := Threat{
		Callsign: tgt.Callsign,
		Geometry: Geometry{
			DistanceNM:             dist,
			BearingDeg:             brg,
			AltitudeSeparationFt:   altSep,
			ClosureRateKt:          closure,
			VerticalClosureRateFPM: vClosure,
		},
		AltitudeFt:     tgt.AltitudeFt,
		HorizontalTauS: horizontalTau(dist, closure, th.minClosureKt),
		VerticalTauS:   verticalTau(altSep, vClosure, th.minVerticalClosureFPM),
	}
	t.TauS = min(t.HorizontalTauS, t.VerticalTauS)
	t.Zone = classify(dist, altSep, th)

	tau := float64(t.TauS)
	t.IsTA = th.taEnabled && (t.Zone == ZoneTA || t.Zone == ZoneRA) && tau < th.taTau
	t.IsRA = th.raEnabled && t.Zone == ZoneRA && tau < th.raTau
	if t.IsRA {
		t.RASense = resolutionSense(altSep, tgtVS, ownVS)
		t.RAVerticalSpeedFPM = resolutionRate(altSep, t.RASense)
	}
	return t
}

// verticalClosure returns the rate in fpm at which the vertical gap shrinks.
// relVS is target minus own vertical speed. Co-altitude pairs have no
// vertical gap to close.
func verticalClosure(altSep, relVS float64) float64 {
	switch {
	case altSep > 0:
		return -relVS
	case altSep < 0:
		return relVS
	}
	return 0
}

func horizontalTau(distNM, closureKt, minClosureKt float64) Tau {
	if closureKt <= minClosureKt {
		return infTau
	}
	return Tau(distNM / closureKt * 3600)
}

func verticalTau(altSep, closureFPM, minClosureFPM float64) Tau {
	if closureFPM <= minClosureFPM {
		return infTau
	}
	return Tau(math.Abs(altSep) / closureFPM * 60)
}

func classify(distNM, altSep float64, th thresholds) Zone {
	sep := math.Abs(altSep)
	switch {
	case distNM < th.raNM && sep < th.raVerticalFt:
		return ZoneRA
	case distNM < th.taNM && sep < th.taVerticalFt:
		return ZoneTA
	case distNM < th.proximateNM:
		return ZoneProximate
	}
	return ZoneOther
}

// resolutionSense picks the RA direction from where the intruder is and
// which way it is moving. A level intruder is avoided by moving away from it;
// a co-altitude intruder by continuing own-ship's vertical trend.
func resolutionSense(altSep, tgtVS, ownVS float64) Sense {
	switch {
	case altSep > 0:
		if tgtVS < 0 {
			return SenseClimb
		}
		return SenseDescend
	case altSep < 0:
		if tgtVS < 0 {
			return SenseDescend
		}
		return SenseClimb
	}
	if ownVS < 0 {
		return SenseDescend
	}
	return SenseClimb
}

// resolutionRate returns the signed vertical speed command for an RA.
func resolutionRate(altSep float64, sense Sense) float64 {
	sep := math.Abs(altSep)
	rate := 1500.0
	switch {
	case sep < 400:
		rate = 2500
	case sep <= 600:
		rate = 2000
	}
	if sense == SenseDescend {
		return -rate
	}
	return rate
}

// worse reports whether a is a more urgent threat than b: lower tau first,
// then shorter distance, then callsign for a stable order.
func worse(a, b Threat) bool {
	if a.TauS != b.TauS {
		return a.TauS < b.TauS
	}
	if a.Geometry.DistanceNM != b.Geometry.DistanceNM {
		return a.Geometry.DistanceNM < b.Geometry.DistanceNM
	}
	return a.Callsign < b.Callsign
}
