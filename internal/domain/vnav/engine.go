// Package vnav computes the vertical path to the next descending altitude
// constraint on the route: top of descent, vertical deviation and the
// vertical speed needed to make the crossing.
package vnav

import (
	"context"
	"math"
	"sync"

	"github.com/okian/navguard/internal/domain/geo"
	"github.com/okian/navguard/internal/domain/model"
	"github.com/okian/navguard/pkg/logger"
)

// State is the VNAV arm state.
type State int

const (
	StateIdle State = iota
	StateArmed
	StateActive
)

func (s State) String() string {
	return [...]string{"IDLE", "ARMED", "ACTIVE"}[s]
}

// MarshalText implements encoding.TextMarshaler.
func (s State) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

// TOD is a top-of-descent solution for one constraint.
type TOD struct {
	ConstraintIndex        int            `json:"constraint_index"`
	Waypoint               model.Waypoint `json:"waypoint"`
	DropFt                 float64        `json:"drop_ft"`
	DescentDistanceNM      float64        `json:"descent_distance_nm"`
	DistanceToConstraintNM float64        `json:"distance_to_constraint_nm"`
	TODDistanceNM          float64        `json:"tod_distance_nm"`
}

// Status is a read-only view of the engine state.
type Status struct {
	Enabled             bool     `json:"enabled"`
	State               State    `json:"state"`
	DescentAngleDeg     float64  `json:"descent_angle_deg"`
	FeetPerNM           float64  `json:"feet_per_nm"`
	TOD                 *TOD     `json:"tod,omitempty"`
	VerticalDeviationFt *float64 `json:"vertical_deviation_ft,omitempty"`
	RequiredVSFPM       *float64 `json:"required_vs_fpm,omitempty"`
}

// Engine tracks the descent path toward the next constraint. It is safe for
// concurrent use.
type Engine struct {
	mu sync.Mutex

	enabled            bool
	angleDeg           float64
	captureToleranceFt float64

	state      State
	tod        *TOD
	deviation  *float64
	requiredVS *float64
	todWarned  bool

	logger logger.Logger
	sink   model.AlertSink
	clock  model.Clock
}

// New creates a VNAV engine. It starts enabled with a 3 degree path.
func New(opts ...Option) *Engine {
	e := &Engine{
		enabled:            true,
		angleDeg:           DefaultDescentAngleDeg,
		captureToleranceFt: defaultCaptureToleranceFt,
		logger:             logger.Nop(),
		sink:               model.DiscardSink,
		clock:              model.SystemClock{},
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// FeetPerNM returns the altitude lost per nautical mile on a path of the
// given angle.
func FeetPerNM(angleDeg float64) float64 {
	return math.Tan(geo.Radians(angleDeg)) * geo.FeetPerNM
}

func clampAngle(deg float64) float64 {
	if math.IsNaN(deg) {
		return DefaultDescentAngleDeg
	}
	return geo.Clamp(deg, MinDescentAngleDeg, MaxDescentAngleDeg)
}

// FindNextConstraint returns the index of the first waypoint at or after
// activeIndex whose constraint can require a descent.
func FindNextConstraint(waypoints []model.Waypoint, activeIndex int) (int, bool) {
	for i := max(activeIndex, 0); i < len(waypoints); i++ {
		c := waypoints[i].Constraint
		if c != nil && c.Descriptor.Descending() {
			return i, true
		}
	}
	return -1, false
}

// AlongRouteDistance returns the distance from pos to waypoints[target]
// flying through the active waypoint and every waypoint in between.
func AlongRouteDistance(waypoints []model.Waypoint, activeIndex, target int, pos geo.LatLon) float64 {
	if activeIndex < 0 || target < activeIndex || target >= len(waypoints) {
		return 0
	}
	d := geo.Distance(pos, waypoints[activeIndex].Position)
	for i := activeIndex; i < target; i++ {
		d += geo.Distance(waypoints[i].Position, waypoints[i+1].Position)
	}
	return d
}

// CalculateTOD solves the top of descent for the next descending constraint.
// It reports false when there is no such constraint.
func (e *Engine) CalculateTOD(waypoints []model.Waypoint, activeIndex int, altitudeFt float64, pos geo.LatLon) (TOD, bool) {
	e.mu.Lock()
	fpn := FeetPerNM(e.angleDeg)
	e.mu.Unlock()
	return calculateTOD(waypoints, activeIndex, altitudeFt, pos, fpn)
}

func calculateTOD(waypoints []model.Waypoint, activeIndex int, altitudeFt float64, pos geo.LatLon, fpn float64) (TOD, bool) {
	idx, ok := FindNextConstraint(waypoints, activeIndex)
	if !ok {
		return TOD{}, false
	}
	wp := waypoints[idx]
	drop := altitudeFt - wp.Constraint.AltitudeFt
	dist := AlongRouteDistance(waypoints, activeIndex, idx, pos)
	descent := drop / fpn
	return TOD{
		ConstraintIndex:        idx,
		Waypoint:               wp,
		DropFt:                 drop,
		DescentDistanceNM:      descent,
		DistanceToConstraintNM: dist,
		TODDistanceNM:          dist - descent,
	}, true
}

// RequiredVerticalSpeed returns the vertical speed in fpm that loses dropFt
// over distNM at groundSpeedKt. It reports false for a near-zero ground
// speed or distance.
func RequiredVerticalSpeed(dropFt, distNM, groundSpeedKt float64) (float64, bool) {
	if groundSpeedKt < minGroundSpeedKt || distNM < minDistanceNM {
		return 0, false
	}
	minutes := distNM / groundSpeedKt * 60
	return dropFt / minutes, true
}

// Update evaluates one tick against the route. activeIndex is the waypoint
// currently being flown to.
func (e *Engine) Update(ctx context.Context, own model.AircraftState, waypoints []model.Waypoint, activeIndex int) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.enabled {
		if e.state != StateIdle {
			e.disarmLocked(ctx, "disabled")
		}
		return
	}
	if !own.Has(model.HasPosition | model.HasAltitude) {
		return
	}

	tod, ok := calculateTOD(waypoints, activeIndex, own.AltitudeFt, own.Position, FeetPerNM(e.angleDeg))
	if !ok {
		if e.state != StateIdle {
			e.disarmLocked(ctx, "no constraint")
		}
		e.tod = nil
		return
	}
	if e.tod != nil && (e.tod.ConstraintIndex != tod.ConstraintIndex || e.tod.Waypoint.Ident != tod.Waypoint.Ident) {
		e.disarmLocked(ctx, "constraint sequenced")
	}
	e.tod = &tod
	e.requiredVS = nil
	e.deviation = nil

	if tod.DropFt <= e.captureToleranceFt {
		if e.state != StateIdle {
			e.disarmLocked(ctx, "constraint reached")
			e.tod = &tod
		}
		return
	}

	if own.Has(model.HasGroundSpeed) {
		if vs, ok := RequiredVerticalSpeed(tod.DropFt, tod.DistanceToConstraintNM, own.GroundSpeedKt); ok {
			e.requiredVS = &vs
		}
	}

	now := e.clock.Now()
	if tod.TODDistanceNM > 0 {
		if e.state == StateIdle {
			e.logger.Info(ctx, "vnav armed",
				logger.String("waypoint", tod.Waypoint.Ident),
				logger.Float64("tod_nm", tod.TODDistanceNM))
			e.sink.OnAlert(ctx, model.NewAlertEvent(model.SourceVNAV, "ARMED", "VNAV ARMED", model.SeverityInfo, now))
		}
		e.state = StateArmed
		if !e.todWarned && own.Has(model.HasGroundSpeed) && own.GroundSpeedKt >= minGroundSpeedKt &&
			tod.TODDistanceNM/own.GroundSpeedKt*3600 <= todAdvisoryLead {
			e.todWarned = true
			e.sink.OnAlert(ctx, model.NewAlertEvent(model.SourceVNAV, "TOD_1MIN", "TOD IN 1 MINUTE", model.SeverityInfo, now))
		}
		return
	}

	dev := own.AltitudeFt - (tod.Waypoint.Constraint.AltitudeFt + tod.DistanceToConstraintNM*FeetPerNM(e.angleDeg))
	e.deviation = &dev
	if e.state != StateActive {
		e.logger.Info(ctx, "top of descent",
			logger.String("waypoint", tod.Waypoint.Ident),
			logger.Float64("drop_ft", tod.DropFt))
		e.sink.OnAlert(ctx, model.NewAlertEvent(model.SourceVNAV, "TOD", "TOP OF DESCENT", model.SeverityWarning, now))
		e.state = StateActive
	}
}

func (e *Engine) disarmLocked(ctx context.Context, reason string) {
	e.logger.Debug(ctx, "vnav disarmed", logger.String("reason", reason), logger.String("from", e.state.String()))
	e.state = StateIdle
	e.tod = nil
	e.deviation = nil
	e.requiredVS = nil
	e.todWarned = false
}

// SetEnabled turns VNAV on or off. Disabling takes effect on the next Update.
func (e *Engine) SetEnabled(enabled bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.enabled = enabled
}

// SetDescentAngle changes the path angle, clamped to [1, 6] degrees, and
// returns the value applied.
func (e *Engine) SetDescentAngle(deg float64) float64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.angleDeg = clampAngle(deg)
	return e.angleDeg
}

// State returns the current arm state.
func (e *Engine) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

// Status returns a snapshot of the engine state.
func (e *Engine) Status() Status {
	e.mu.Lock()
	defer e.mu.Unlock()
	st := Status{
		Enabled:         e.enabled,
		State:           e.state,
		DescentAngleDeg: e.angleDeg,
		FeetPerNM:       FeetPerNM(e.angleDeg),
	}
	if e.tod != nil {
		tod := *e.tod
		st.TOD = &tod
	}
	if e.deviation != nil {
		v := *e.deviation
		st.VerticalDeviationFt = &v
	}
	if e.requiredVS != nil {
		v := *e.requiredVS
		st.RequiredVSFPM = &v
	}
	return st
}
