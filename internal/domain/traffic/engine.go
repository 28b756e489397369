// Package traffic implements collision-avoidance advisories: it classifies
// nearby traffic by range, altitude separation and time to closest approach,
// and raises traffic and resolution advisories for the most urgent target.
package traffic

import (
	"context"
	"fmt"
	"sort"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/okian/navguard/internal/domain/geo"
	"github.com/okian/navguard/internal/domain/model"
	"github.com/okian/navguard/pkg/logger"
)

// Status is a read-only view of the engine state.
type Status struct {
	Enabled     bool        `json:"enabled"`
	TAEnabled   bool        `json:"ta_enabled"`
	RAEnabled   bool        `json:"ra_enabled"`
	Sensitivity Sensitivity `json:"sensitivity"`
	ActiveTA    *Threat     `json:"active_ta,omitempty"`
	ActiveRA    *Threat     `json:"active_ra,omitempty"`
	Threats     []Threat    `json:"threats"`
}

// Engine tracks traffic threats across ticks. It is safe for concurrent use.
type Engine struct {
	mu sync.Mutex

	enabled           bool
	taEnabled         bool
	raEnabled         bool
	sensitivity       Sensitivity
	sensitivityFactor float64
	bands             []geo.Band
	taTauS            float64
	raTauS            float64
	cacheSize         int

	threats  *lru.Cache[string, Threat]
	activeTA *Threat
	activeRA *Threat

	logger logger.Logger
	sink   model.AlertSink
	clock  model.Clock
}

// New creates a traffic engine. It starts enabled with both advisory types on.
func New(opts ...Option) *Engine {
	e := &Engine{
		enabled:           true,
		taEnabled:         true,
		raEnabled:         true,
		sensitivityFactor: defaultSensitivityFactor,
		bands:             geo.DefaultBands,
		taTauS:            defaultTATauS,
		raTauS:            defaultRATauS,
		cacheSize:         defaultCacheSize,
		logger:            logger.Nop(),
		sink:              model.DiscardSink,
		clock:             model.SystemClock{},
	}
	for _, opt := range opts {
		opt(e)
	}
	cache, err := lru.New[string, Threat](e.cacheSize)
	if err != nil {
		// only fails for a non-positive size, which the option guards against
		panic(fmt.Sprintf("traffic: threat cache: %v", err))
	}
	e.threats = cache
	return e
}

// Update evaluates one telemetry tick. Targets without a position or
// altitude are skipped, and so is the whole tick when own-ship lacks either.
func (e *Engine) Update(ctx context.Context, own model.AircraftState, targets []model.TrafficTarget) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.enabled {
		e.resetLocked()
		return
	}
	if !own.Has(model.HasPosition | model.HasAltitude) {
		e.logger.Debug(ctx, "own-ship state incomplete, skipping traffic tick")
		return
	}

	now := e.clock.Now()
	band := geo.BandFor(e.bands, own.AltitudeFt)

	// Phase 1: assess every target. Selection runs over this tick's
	// assessments so a bounded cache never hides a threat.
	assessed := make([]Threat, 0, len(targets))
	for i, tgt := range targets {
		if !tgt.Has(model.HasPosition | model.HasAltitude) {
			continue
		}
		if tgt.Callsign == "" {
			tgt.Callsign = fmt.Sprintf("#%d", i)
		}
		t := assess(own, tgt, e.thresholdsFor(band, tgt.AltitudeFt-own.AltitudeFt))
		t.UpdatedAt = now
		assessed = append(assessed, t)
	}

	// Phase 2: pick the most urgent RA, then the most urgent TA.
	var ra, ta *Threat
	for _, t := range assessed {
		if t.IsRA && (ra == nil || worse(t, *ra)) {
			c := t
			ra = &c
		}
		if t.IsTA && (ta == nil || worse(t, *ta)) {
			c := t
			ta = &c
		}
	}
	if ra != nil {
		ta = nil
		ra.IsTA = false
		for i := range assessed {
			assessed[i].IsTA = false
		}
	}

	// The cache keeps the most urgent targets for status reporting.
	sort.Slice(assessed, func(i, j int) bool { return worse(assessed[i], assessed[j]) })
	e.threats.Purge()
	for i := len(assessed) - 1; i >= 0; i-- {
		e.threats.Add(assessed[i].Callsign, assessed[i])
	}

	e.transition(ctx, ra, ta)
	e.activeRA, e.activeTA = ra, ta
}

func (e *Engine) transition(ctx context.Context, ra, ta *Threat) {
	now := e.clock.Now()
	prevRA, prevTA := e.activeRA, e.activeTA

	switch {
	case ra != nil && (prevRA == nil || prevRA.Callsign != ra.Callsign || prevRA.RASense != ra.RASense):
		e.logger.Warn(ctx, "resolution advisory",
			logger.String("callsign", ra.Callsign),
			logger.String("sense", ra.RASense.String()),
			logger.Float64("vs_fpm", ra.RAVerticalSpeedFPM),
			logger.Float64("tau_s", float64(ra.TauS)))
		e.sink.OnAlert(ctx, model.NewAlertEvent(model.SourceTraffic, "RA", ra.RASense.String(), model.SeverityCritical, now))
	case ra == nil && prevRA != nil:
		e.logger.Info(ctx, "clear of conflict", logger.String("callsign", prevRA.Callsign))
		e.sink.OnAlert(ctx, model.NewAlertEvent(model.SourceTraffic, "CLEAR_OF_CONFLICT", "CLEAR OF CONFLICT", model.SeveritySuccess, now))
	}

	if ta != nil && (prevTA == nil || prevTA.Callsign != ta.Callsign) {
		e.logger.Info(ctx, "traffic advisory",
			logger.String("callsign", ta.Callsign),
			logger.Float64("distance_nm", ta.Geometry.DistanceNM),
			logger.Float64("tau_s", float64(ta.TauS)))
		e.sink.OnAlert(ctx, model.NewAlertEvent(model.SourceTraffic, "TA", "TRAFFIC", model.SeverityWarning, now))
	}
}

func (e *Engine) thresholdsFor(band geo.Band, altSep float64) thresholds {
	th := thresholds{
		taNM:                  band.TANM,
		raNM:                  band.RANM,
		taVerticalFt:          defaultTAVerticalFt,
		raVerticalFt:          defaultRAVerticalFt,
		proximateNM:           defaultProximateNM,
		taTau:                 e.taTauS,
		raTau:                 e.raTauS,
		minClosureKt:          defaultMinClosureKt,
		minVerticalClosureFPM: defaultMinVerticalClosureFPM,
		taEnabled:             e.taEnabled,
		raEnabled:             e.raEnabled,
	}
	if (e.sensitivity == SensitivityAbove && altSep > 0) || (e.sensitivity == SensitivityBelow && altSep < 0) {
		th.taNM *= e.sensitivityFactor
		th.raNM *= e.sensitivityFactor
	}
	return th
}

func (e *Engine) resetLocked() {
	e.threats.Purge()
	e.activeRA = nil
	e.activeTA = nil
}

// SetEnabled turns the engine on or off. Disabling clears all threats
// without raising alerts.
func (e *Engine) SetEnabled(enabled bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.enabled = enabled
	if !enabled {
		e.resetLocked()
	}
}

// SetAdvisories toggles TA and RA generation.
func (e *Engine) SetAdvisories(ta, ra bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.taEnabled = ta
	e.raEnabled = ra
}

// SetSensitivity changes the sensitivity mode from the next tick on.
func (e *Engine) SetSensitivity(s Sensitivity) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.sensitivity = s
}

// ActiveRA returns the current resolution advisory, if any.
func (e *Engine) ActiveRA() (Threat, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.activeRA == nil {
		return Threat{}, false
	}
	return *e.activeRA, true
}

// ActiveTA returns the current traffic advisory, if any.
func (e *Engine) ActiveTA() (Threat, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.activeTA == nil {
		return Threat{}, false
	}
	return *e.activeTA, true
}

// Threats returns the tracked threats, most urgent first.
func (e *Engine) Threats() []Threat {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.sortedLocked()
}

func (e *Engine) sortedLocked() []Threat {
	out := e.threats.Values()
	sort.Slice(out, func(i, j int) bool { return worse(out[i], out[j]) })
	return out
}

// Status returns a snapshot of the engine state.
func (e *Engine) Status() Status {
	e.mu.Lock()
	defer e.mu.Unlock()
	st := Status{
		Enabled:     e.enabled,
		TAEnabled:   e.taEnabled,
		RAEnabled:   e.raEnabled,
		Sensitivity: e.sensitivity,
		Threats:     e.sortedLocked(),
	}
	if e.activeRA != nil {
		ra := *e.activeRA
		st.ActiveRA = &ra
	}
	if e.activeTA != nil {
		ta := *e.activeTA
		st.ActiveTA = &ta
	}
	return st
}
