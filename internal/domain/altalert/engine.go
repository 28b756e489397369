// Package altalert monitors the assigned altitude and approach minimums.
package altalert

import (
	"context"
	"fmt"
	"math"
	"strings"
	"sync"
	"time"

	"github.com/okian/navguard/internal/domain/model"
	"github.com/okian/navguard/pkg/logger"
)

// State is the assigned-altitude alerter state.
type State int

const (
	StateIdle State = iota
	StateArmed
	StateApproaching
	StateProximity
	StateCaptured
	StateHolding
	StateDeviation
)

func (s State) String() string {
	return [...]string{"IDLE", "ARMED", "APPROACHING", "PROXIMITY", "CAPTURED", "HOLDING", "DEVIATION"}[s]
}

// MarshalText implements encoding.TextMarshaler.
func (s State) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

// MinimumsType is the kind of approach minimum.
type MinimumsType string

const (
	MinimumsMDA MinimumsType = "MDA"
	MinimumsDA  MinimumsType = "DA"
)

// ParseMinimumsType parses MDA or DA (case-insensitive).
func ParseMinimumsType(s string) (MinimumsType, error) {
	switch t := MinimumsType(strings.ToUpper(strings.TrimSpace(s))); t {
	case MinimumsMDA, MinimumsDA:
		return t, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownMinimums, s)
}

// Minimums is an approach minimum altitude.
type Minimums struct {
	AltitudeFt float64      `json:"altitude_ft"`
	Type       MinimumsType `json:"type"`
	Warned     bool         `json:"warned"`
}

// Status is a read-only view of the engine state.
type Status struct {
	Enabled     bool       `json:"enabled"`
	State       State      `json:"state"`
	AssignedFt  *float64   `json:"assigned_ft,omitempty"`
	DeviationFt *float64   `json:"deviation_ft,omitempty"`
	Minimums    *Minimums  `json:"minimums,omitempty"`
	LastChime   *time.Time `json:"last_chime,omitempty"`
}

// Engine is the altitude alerter. It is safe for concurrent use.
type Engine struct {
	mu sync.Mutex

	enabled  bool
	cooldown time.Duration

	state     State
	assigned  *float64
	deviation *float64
	minimums  *Minimums
	lastChime time.Time

	logger logger.Logger
	sink   model.AlertSink
	clock  model.Clock
}

// New creates an altitude alerter in the IDLE state.
func New(opts ...Option) *Engine {
	e := &Engine{
		enabled:  true,
		cooldown: defaultChimeCooldown,
		logger:   logger.Nop(),
		sink:     model.DiscardSink,
		clock:    model.SystemClock{},
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// SetAssigned sets the assigned altitude and arms the alerter.
func (e *Engine) SetAssigned(ctx context.Context, altitudeFt float64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	alt := altitudeFt
	e.assigned = &alt
	e.deviation = nil
	e.transitionLocked(ctx, StateArmed)
}

// ClearAssigned removes the assigned altitude and returns to IDLE.
func (e *Engine) ClearAssigned(ctx context.Context) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.assigned = nil
	e.deviation = nil
	e.transitionLocked(ctx, StateIdle)
}

// SetMinimums sets the approach minimums and re-arms the warning.
func (e *Engine) SetMinimums(altitudeFt float64, typ MinimumsType) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.minimums = &Minimums{AltitudeFt: altitudeFt, Type: typ}
}

// ClearMinimums removes the approach minimums.
func (e *Engine) ClearMinimums() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.minimums = nil
}

// SetEnabled turns the alerter on or off. A disabled alerter drops to IDLE
// on the next Update but keeps the assigned altitude and minimums.
func (e *Engine) SetEnabled(enabled bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.enabled = enabled
}

// Update evaluates one tick. Ticks without an altitude are ignored.
func (e *Engine) Update(ctx context.Context, own model.AircraftState) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.enabled {
		if e.state != StateIdle {
			e.transitionLocked(ctx, StateIdle)
		}
		return
	}
	if !own.Has(model.HasAltitude) {
		return
	}

	if e.assigned != nil {
		if e.state == StateIdle {
			// re-enabled with an assignment still set
			e.transitionLocked(ctx, StateArmed)
		}
		dev := math.Abs(own.AltitudeFt - *e.assigned)
		e.deviation = &dev
		if next, ok := step(e.state, dev); ok {
			e.transitionLocked(ctx, next)
		}
	}

	e.checkMinimumsLocked(ctx, own)
}

// step applies the transition table once.
func step(s State, dev float64) (State, bool) {
	switch s {
	case StateArmed:
		if dev < captureFt {
			return StateCaptured, true
		}
		if dev < approachingFt {
			return StateApproaching, true
		}
	case StateApproaching:
		if dev < proximityFt {
			return StateProximity, true
		}
	case StateProximity:
		if dev < captureFt {
			return StateCaptured, true
		}
	case StateCaptured:
		if dev >= captureFt && dev < proximityFt {
			return StateHolding, true
		}
	case StateHolding:
		if dev >= deviationFt {
			return StateDeviation, true
		}
		if dev < captureFt {
			return StateCaptured, true
		}
	case StateDeviation:
		if dev < deviationFt {
			return StateHolding, true
		}
	}
	return s, false
}

func (e *Engine) transitionLocked(ctx context.Context, next State) {
	prev := e.state
	e.state = next
	if prev == next {
		return
	}
	e.logger.Debug(ctx, "altitude alerter transition",
		logger.String("from", prev.String()),
		logger.String("to", next.String()))

	var sev model.Severity
	switch next {
	case StateApproaching:
		sev = model.SeverityInfo
	case StateProximity:
		sev = model.SeverityWarning
	case StateCaptured:
		sev = model.SeveritySuccess
	case StateDeviation:
		sev = model.SeverityCritical
	default:
		return
	}
	e.emitLocked(ctx, next.String(), e.message(next), sev)
}

func (e *Engine) message(s State) string {
	if e.assigned == nil {
		return s.String()
	}
	return fmt.Sprintf("%s %.0f FT", s, *e.assigned)
}

func (e *Engine) checkMinimumsLocked(ctx context.Context, own model.AircraftState) {
	m := e.minimums
	if m == nil || m.Warned || !own.Has(model.HasVerticalSpeed) {
		return
	}
	if own.AltitudeFt <= m.AltitudeFt+minimumsPadFt && own.VerticalSpeedFPM < 0 {
		m.Warned = true
		e.logger.Info(ctx, "approaching minimums",
			logger.String("type", string(m.Type)),
			logger.Float64("minimums_ft", m.AltitudeFt),
			logger.Float64("altitude_ft", own.AltitudeFt))
		e.emitLocked(ctx, "MINIMUMS", "MINIMUMS", model.SeverityWarning)
	}
}

// emitLocked delivers an alert, muting the chime inside the cooldown window.
func (e *Engine) emitLocked(ctx context.Context, kind, msg string, sev model.Severity) {
	now := e.clock.Now()
	ev := model.NewAlertEvent(model.SourceAltitude, kind, msg, sev, now)
	if !e.lastChime.IsZero() && now.Sub(e.lastChime) < e.cooldown {
		ev.Chime = false
	} else {
		e.lastChime = now
	}
	e.sink.OnAlert(ctx, ev)
}

// State returns the current alerter state.
func (e *Engine) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

// Status returns a snapshot of the engine state.
func (e *Engine) Status() Status {
	e.mu.Lock()
	defer e.mu.Unlock()
	st := Status{Enabled: e.enabled, State: e.state}
	if e.assigned != nil {
		v := *e.assigned
		st.AssignedFt = &v
	}
	if e.deviation != nil {
		v := *e.deviation
		st.DeviationFt = &v
	}
	if e.minimums != nil {
		m := *e.minimums
		st.Minimums = &m
	}
	if !e.lastChime.IsZero() {
		t := e.lastChime
		st.LastChime = &t
	}
	return st
}
