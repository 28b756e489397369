package holding

import (
	"context"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/okian/navguard/internal/domain/geo"
	"github.com/okian/navguard/internal/domain/model"
	"github.com/okian/navguard/pkg/logger"
)

// Phase is the segment of the hold being flown.
type Phase int

const (
	PhaseNone Phase = iota
	PhaseEntry
	PhaseInbound
	PhaseTurnOutbound
	PhaseOutbound
	PhaseTurnInbound
	PhaseComplete
)

func (p Phase) String() string {
	return [...]string{"NONE", "ENTRY", "INBOUND", "TURN_OUTBOUND", "OUTBOUND", "TURN_INBOUND", "COMPLETE"}[p]
}

// MarshalText implements encoding.TextMarshaler.
func (p Phase) MarshalText() ([]byte, error) { return []byte(p.String()), nil }

// next returns the phase that follows p in the racetrack cycle.
func (p Phase) next() Phase {
	switch p {
	case PhaseInbound:
		return PhaseTurnOutbound
	case PhaseTurnOutbound:
		return PhaseOutbound
	case PhaseOutbound:
		return PhaseTurnInbound
	case PhaseTurnInbound:
		return PhaseInbound
	}
	return p
}

// Status is a read-only view of the engine state.
type Status struct {
	Enabled         bool       `json:"enabled"`
	Active          bool       `json:"active"`
	Spec            *Spec      `json:"spec,omitempty"`
	Entry           *Entry     `json:"entry,omitempty"`
	Phase           Phase      `json:"phase"`
	Circuits        int        `json:"circuits"`
	PhaseElapsedS   float64    `json:"phase_elapsed_s"`
	DistanceToFixNM float64    `json:"distance_to_fix_nm"`
	Racetrack       *Racetrack `json:"racetrack,omitempty"`
}

type activeHold struct {
	spec       Spec
	entry      Entry
	track      Racetrack
	phase      Phase
	phaseStart time.Time
	circuits   int
	distToFix  float64
}

// Engine flies one hold at a time. It is safe for concurrent use.
type Engine struct {
	mu sync.Mutex

	enabled       bool
	speedChangeKt float64
	fixCaptureNM  float64

	hold *activeHold

	logger logger.Logger
	sink   model.AlertSink
	clock  model.Clock
}

// New creates a holding engine.
func New(opts ...Option) *Engine {
	e := &Engine{
		enabled:       true,
		speedChangeKt: defaultSpeedChangeKt,
		fixCaptureNM:  defaultFixCaptureNM,
		logger:        logger.Nop(),
		sink:          model.DiscardSink,
		clock:         model.SystemClock{},
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Activate starts holding on leg. The entry procedure is chosen from the
// aircraft heading, or the bearing to the fix when heading is unknown.
func (e *Engine) Activate(ctx context.Context, leg model.ProcedureLeg, own model.AircraftState) (Spec, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.enabled {
		return Spec{}, ErrDisabled
	}
	spec, ok := DetectHold(leg)
	if !ok {
		return Spec{}, fmt.Errorf("%w: %q at %s", ErrNoHold, leg.PathTerminator, leg.Fix)
	}
	if leg.LegTimeS <= 0 && leg.AltitudeFt == nil && own.Has(model.HasAltitude) {
		spec.LegTimeS = DefaultLegTime(own.AltitudeFt)
	}

	heading := own.HeadingDeg
	if !own.Has(model.HasHeading) && own.Has(model.HasPosition) {
		_, heading = geo.DistanceBearing(own.Position, spec.Position)
	}
	var gs float64
	if own.Has(model.HasGroundSpeed) {
		gs = own.GroundSpeedKt
	}

	now := e.clock.Now()
	h := &activeHold{
		spec:       spec,
		entry:      CalculateEntryProcedure(heading, spec.InboundCourseDeg, spec.Turn),
		track:      spec.Racetrack(gs),
		phase:      PhaseEntry,
		phaseStart: now,
	}
	e.hold = h

	e.logger.Info(ctx, "hold activated",
		logger.String("fix", spec.Fix),
		logger.String("kind", string(spec.Kind)),
		logger.String("entry", h.entry.String()),
		logger.Float64("inbound", spec.InboundCourseDeg),
		logger.String("turn", spec.Turn.String()))
	e.sink.OnAlert(ctx, model.NewAlertEvent(model.SourceHolding, "HOLD_ENTRY",
		fmt.Sprintf("%s ENTRY %s", h.entry, spec.Fix), model.SeverityInfo, now))

	if own.Has(model.HasPosition) {
		h.distToFix = geo.Distance(own.Position, spec.Position)
		if h.distToFix <= e.fixCaptureNM {
			e.crossFixLocked(ctx, h, now)
		}
	}
	return spec, nil
}

// Cancel stops the active hold. It reports whether a hold was active.
func (e *Engine) Cancel(ctx context.Context) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.hold == nil {
		return false
	}
	e.logger.Info(ctx, "hold cancelled", logger.String("fix", e.hold.spec.Fix))
	e.hold = nil
	return true
}

// Update advances the hold for one tick.
func (e *Engine) Update(ctx context.Context, own model.AircraftState) {
	e.mu.Lock()
	defer e.mu.Unlock()

	h := e.hold
	if h == nil {
		return
	}
	if !e.enabled {
		e.logger.Debug(ctx, "holding disabled, dropping hold", logger.String("fix", h.spec.Fix))
		e.hold = nil
		return
	}
	now := e.clock.Now()

	if own.Has(model.HasGroundSpeed) && math.Abs(own.GroundSpeedKt-h.track.GroundSpeedKt) > e.speedChangeKt {
		e.logger.Debug(ctx, "rebuilding racetrack",
			logger.Float64("from_kt", h.track.GroundSpeedKt),
			logger.Float64("to_kt", own.GroundSpeedKt))
		h.track = h.spec.Racetrack(own.GroundSpeedKt)
	}
	if own.Has(model.HasPosition) {
		h.distToFix = geo.Distance(own.Position, h.spec.Position)
	}

	switch h.phase {
	case PhaseEntry:
		if own.Has(model.HasPosition) && h.distToFix <= e.fixCaptureNM {
			e.crossFixLocked(ctx, h, now)
		}
		return
	case PhaseComplete, PhaseNone:
		return
	}

	for {
		d := phaseDuration(h)
		if now.Sub(h.phaseStart).Seconds() < d {
			return
		}
		h.phaseStart = h.phaseStart.Add(time.Duration(d * float64(time.Second)))
		if h.phase == PhaseInbound {
			h.circuits++
			if terminates(h, own) {
				e.completeLocked(ctx, h, now)
				return
			}
		}
		h.phase = h.phase.next()
		e.logger.Debug(ctx, "hold phase", logger.String("phase", h.phase.String()), logger.Int("circuits", h.circuits))
	}
}

func (e *Engine) crossFixLocked(ctx context.Context, h *activeHold, now time.Time) {
	h.phase = PhaseTurnOutbound
	h.phaseStart = now
	e.logger.Debug(ctx, "fix crossed, entering racetrack", logger.String("fix", h.spec.Fix))
}

func (e *Engine) completeLocked(ctx context.Context, h *activeHold, now time.Time) {
	h.phase = PhaseComplete
	e.logger.Info(ctx, "hold complete", logger.String("fix", h.spec.Fix), logger.Int("circuits", h.circuits))
	e.sink.OnAlert(ctx, model.NewAlertEvent(model.SourceHolding, "HOLD_EXIT",
		"EXIT HOLD "+h.spec.Fix, model.SeverityInfo, now))
}

func phaseDuration(h *activeHold) float64 {
	switch h.phase {
	case PhaseTurnOutbound, PhaseTurnInbound:
		return h.track.TurnDuration()
	}
	if h.track.LegTimeS > 0 {
		return h.track.LegTimeS
	}
	return h.spec.LegTimeS
}

// terminates reports whether the hold ends at this fix crossing.
func terminates(h *activeHold, own model.AircraftState) bool {
	switch h.spec.Kind {
	case KindFix:
		return h.circuits >= 1
	case KindAltitude:
		return h.spec.AltitudeFt != nil && own.Has(model.HasAltitude) &&
			math.Abs(own.AltitudeFt-*h.spec.AltitudeFt) < altitudeReachedTolerance
	}
	return false
}

// SetEnabled turns the engine on or off. Disabling drops the active hold
// on the next Update.
func (e *Engine) SetEnabled(enabled bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.enabled = enabled
}

// Phase returns the current phase, or PhaseNone without a hold.
func (e *Engine) Phase() Phase {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.hold == nil {
		return PhaseNone
	}
	return e.hold.phase
}

// Status returns a snapshot of the engine state.
func (e *Engine) Status() Status {
	e.mu.Lock()
	defer e.mu.Unlock()
	st := Status{Enabled: e.enabled}
	h := e.hold
	if h == nil {
		return st
	}
	spec := h.spec
	entry := h.entry
	track := h.track
	st.Active = h.phase != PhaseComplete
	st.Spec = &spec
	st.Entry = &entry
	st.Racetrack = &track
	st.Phase = h.phase
	st.Circuits = h.circuits
	st.DistanceToFixNM = h.distToFix
	if h.phase != PhaseEntry && h.phase != PhaseComplete {
		st.PhaseElapsedS = e.clock.Now().Sub(h.phaseStart).Seconds()
	}
	return st
}
