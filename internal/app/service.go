// Package service wires the alerting engines together and exposes the
// operations required by the HTTP API, the simulator and the scenario runner.
package service

import (
	"context"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/brunoga/deep"
	"github.com/google/uuid"

	framequeue "github.com/okian/navguard/internal/adapters/mq/queue"
	tickworker "github.com/okian/navguard/internal/adapters/mq/worker"
	"github.com/okian/navguard/internal/domain/altalert"
	"github.com/okian/navguard/internal/domain/dedupe"
	"github.com/okian/navguard/internal/domain/geo"
	"github.com/okian/navguard/internal/domain/holding"
	"github.com/okian/navguard/internal/domain/model"
	"github.com/okian/navguard/internal/domain/traffic"
	"github.com/okian/navguard/internal/domain/types"
	"github.com/okian/navguard/internal/domain/vnav"
	"github.com/okian/navguard/pkg/logger"
	"github.com/okian/navguard/pkg/metrics"
)

// Default service configuration constants.
const (
	defaultQueueSize    = 64
	defaultRecentAlerts = 200
	workerStopTimeout   = 5 * time.Second

	minAssignedFt = -2000
	maxAssignedFt = 60000
)

// Service owns the four engines and serializes every tick and command
// against them.
type Service struct {
	// mu guards the engines and the route/frame state below.
	mu sync.RWMutex

	// Engines
	traffic  *traffic.Engine
	vnav     *vnav.Engine
	holding  *holding.Engine
	altitude *altalert.Engine

	route     types.Route
	own       *model.AircraftState
	frameID   string
	lastFrame time.Time
	ticks     int64

	// Alert fan-out
	alertMu sync.Mutex
	recent  *alertRing
	alerts  int64
	sinks   []model.AlertSink

	// Lifecycle
	runMu      sync.RWMutex
	started    bool
	frameQueue *framequeue.InMemoryQueue
	worker     *tickworker.TickWorker
	dedupe     dedupe.Deduper
	dropped    int64
	duplicates int64

	// Configuration
	queueSize    int
	dedupeSize   int
	recentSize   int
	sequenceNM   float64
	clock        model.Clock
	trafficOpts  []traffic.Option
	vnavOpts     []vnav.Option
	holdingOpts  []holding.Option
	altitudeOpts []altalert.Option

	logger logger.Logger
}

// New constructs a Service. The engines are ready for commands and direct
// Tick calls immediately; Start is only needed for queued frames.
func New(opts ...Option) *Service {
	s := &Service{
		queueSize:  defaultQueueSize,
		recentSize: defaultRecentAlerts,
		clock:      model.SystemClock{},
	}

	for _, opt := range opts {
		opt(s)
	}

	if s.logger == nil {
		s.logger = logger.Get().Named("service")
	}
	s.recent = newAlertRing(s.recentSize)
	s.dedupe = dedupe.NewInMemoryDeduper(dedupe.WithMaxSize(s.dedupeSize))

	sink := model.AlertSinkFunc(s.onAlert)
	s.traffic = traffic.New(append(s.trafficOpts,
		traffic.WithLogger(s.logger.Named("traffic")),
		traffic.WithSink(sink),
		traffic.WithClock(s.clock))...)
	s.vnav = vnav.New(append(s.vnavOpts,
		vnav.WithLogger(s.logger.Named("vnav")),
		vnav.WithSink(sink),
		vnav.WithClock(s.clock))...)
	s.holding = holding.New(append(s.holdingOpts,
		holding.WithLogger(s.logger.Named("holding")),
		holding.WithSink(sink),
		holding.WithClock(s.clock))...)
	s.altitude = altalert.New(append(s.altitudeOpts,
		altalert.WithLogger(s.logger.Named("altitude")),
		altalert.WithSink(sink),
		altalert.WithClock(s.clock))...)

	return s
}

// Start creates the frame queue and starts the tick worker.
func (s *Service) Start(ctx context.Context) error {
	s.runMu.Lock()
	defer s.runMu.Unlock()

	if s.started {
		return nil
	}

	s.logger.Info(ctx, "starting alerting service...")

	s.frameQueue = framequeue.NewInMemoryQueue(framequeue.WithCapacity(s.queueSize))
	s.worker = tickworker.NewTickWorker(s.frameQueue, s,
		tickworker.WithLogger(s.logger.Named("worker")))
	go s.worker.Run(context.WithoutCancel(ctx))

	s.started = true
	s.logger.Info(ctx, "alerting service started",
		logger.Int("queueSize", s.queueSize),
		logger.Int("recentAlerts", s.recentSize),
	)
	return nil
}

// Stop closes the frame queue and waits for the worker to drain it.
func (s *Service) Stop() {
	s.runMu.Lock()
	if !s.started {
		s.runMu.Unlock()
		return
	}
	q, w := s.frameQueue, s.worker
	s.started = false
	s.runMu.Unlock()

	ctx := context.Background()
	s.logger.Info(ctx, "stopping alerting service...")

	_ = q.Close()
	select {
	case <-w.Done():
	case <-time.After(workerStopTimeout):
		shutdownCtx, cancel := context.WithTimeout(ctx, workerStopTimeout)
		if err := w.Shutdown(shutdownCtx); err != nil {
			s.logger.Error(ctx, "worker shutdown failed", logger.Error(err))
		}
		cancel()
	}

	s.logger.Info(ctx, "alerting service stopped")
}

// Enqueue submits a telemetry frame for asynchronous processing.
func (s *Service) Enqueue(ctx context.Context, f model.Frame) error { //nolint:gocritic // hugeParam: Frame is passed by value for channel semantics
	s.runMu.Lock()
	defer s.runMu.Unlock()

	if !s.started {
		return ErrNotStarted
	}
	if f.ID == "" {
		f.ID = uuid.NewString()
	}
	if s.dedupe.SeenAndRecord(ctx, f.ID) {
		s.duplicates++
		metrics.RecordErrorByComponent("service", "duplicate_frame")
		return fmt.Errorf("%w: frame %s", ErrDuplicateFrame, f.ID)
	}
	if !s.frameQueue.Enqueue(ctx, f) {
		s.dedupe.Unrecord(ctx, f.ID)
		s.dropped++
		s.logger.Debug(ctx, "frame dropped", logger.String("frame", f.ID))
		return fmt.Errorf("%w: frame %s", ErrQueueFull, f.ID)
	}
	return nil
}

// Tick advances every engine by one telemetry frame. All traffic targets are
// classified before the other engines run.
func (s *Service) Tick(ctx context.Context, f model.Frame) error { //nolint:gocritic // hugeParam: Frame is passed by value for channel semantics
	if err := ctx.Err(); err != nil {
		return err
	}
	start := time.Now()

	s.mu.Lock()
	own := f.Own
	s.own = &own
	s.frameID = f.ID
	s.lastFrame = f.Timestamp
	if s.lastFrame.IsZero() {
		s.lastFrame = s.clock.Now()
	}
	s.sequenceLocked(ctx, own)

	s.traffic.Update(ctx, own, f.Traffic)
	s.vnav.Update(ctx, own, s.route.Waypoints, s.route.ActiveIndex)
	s.holding.Update(ctx, own)
	s.altitude.Update(ctx, own)
	s.ticks++
	snap := s.snapshotLocked()
	s.mu.Unlock()

	publishGauges(&snap)
	metrics.RecordFrameProcessed()
	metrics.RecordTickLatency(float64(time.Since(start).Microseconds()) / 1000)
	return nil
}

func (s *Service) sequenceLocked(ctx context.Context, own model.AircraftState) {
	if s.sequenceNM <= 0 || !own.Has(model.HasPosition) {
		return
	}
	wps := s.route.Waypoints
	idx := s.route.ActiveIndex
	if idx >= len(wps)-1 {
		return
	}
	if geo.Distance(own.Position, wps[idx].Position) <= s.sequenceNM {
		s.route.ActiveIndex++
		s.logger.Info(ctx, "waypoint sequenced",
			logger.String("from", wps[idx].Ident),
			logger.String("to", wps[idx+1].Ident))
	}
}

func (s *Service) onAlert(ctx context.Context, ev model.AlertEvent) { //nolint:gocritic // hugeParam: AlertEvent is a value type
	s.logger.Info(ctx, "alert",
		logger.String("id", ev.ID),
		logger.String("source", string(ev.Source)),
		logger.String("kind", ev.Kind),
		logger.String("message", ev.Message),
		logger.String("severity", string(ev.Severity)),
		logger.Bool("chime", ev.Chime),
	)
	metrics.RecordAlert(string(ev.Source), ev.Kind, string(ev.Severity))

	s.alertMu.Lock()
	s.recent.push(ev)
	s.alerts++
	s.alertMu.Unlock()

	for _, sink := range s.sinks {
		sink.OnAlert(ctx, ev)
	}
}

func publishGauges(snap *types.Snapshot) {
	zones := map[traffic.Zone]int{}
	for i := range snap.Traffic.Threats {
		zones[snap.Traffic.Threats[i].Zone]++
	}
	for _, z := range []traffic.Zone{traffic.ZoneOther, traffic.ZoneProximate, traffic.ZoneTA, traffic.ZoneRA} {
		metrics.UpdateTrafficThreats(z.String(), zones[z])
	}

	trafficLevel := 0
	switch {
	case snap.Traffic.ActiveRA != nil:
		trafficLevel = 2
	case snap.Traffic.ActiveTA != nil:
		trafficLevel = 1
	}
	metrics.UpdateEngineState("traffic", trafficLevel)
	metrics.UpdateEngineState("vnav", int(snap.VNAV.State))
	metrics.UpdateEngineState("holding", int(snap.Holding.Phase))
	metrics.UpdateEngineState("altitude", int(snap.Altitude.State))

	active := map[string]bool{}
	for _, a := range snap.Advisories() {
		active[a] = true
	}
	for _, a := range types.AllAdvisories {
		metrics.UpdateAdvisoryActive(a, active[a])
	}
}

func (s *Service) snapshotLocked() types.Snapshot {
	snap := types.Snapshot{
		FrameID:  s.frameID,
		Own:      s.own,
		Route:    s.route,
		Traffic:  s.traffic.Status(),
		VNAV:     s.vnav.Status(),
		Holding:  s.holding.Status(),
		Altitude: s.altitude.Status(),
	}
	if !s.lastFrame.IsZero() {
		t := s.lastFrame
		snap.LastFrame = &t
	}
	return snap
}

// Status returns a deep copy of every engine's state.
func (s *Service) Status() types.Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return deep.MustCopy(s.snapshotLocked())
}

// RecentAlerts returns up to n of the most recent alerts, newest first.
func (s *Service) RecentAlerts(n int) []model.AlertEvent {
	s.alertMu.Lock()
	defer s.alertMu.Unlock()
	return s.recent.newest(n)
}

// SetAssignedAltitude arms the altitude alerter for a new assignment.
func (s *Service) SetAssignedAltitude(ctx context.Context, altitudeFt float64) error {
	if math.IsNaN(altitudeFt) || altitudeFt < minAssignedFt || altitudeFt > maxAssignedFt {
		return fmt.Errorf("%w: assigned altitude %v out of range", ErrInvalidCommand, altitudeFt)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.altitude.SetAssigned(ctx, altitudeFt)
	return nil
}

// ClearAssignedAltitude returns the altitude alerter to idle.
func (s *Service) ClearAssignedAltitude(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.altitude.ClearAssigned(ctx)
}

// SetMinimums sets the approach minimums. kind is MDA or DA.
func (s *Service) SetMinimums(ctx context.Context, altitudeFt float64, kind string) error {
	typ, err := altalert.ParseMinimumsType(kind)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidCommand, err)
	}
	if math.IsNaN(altitudeFt) || math.IsInf(altitudeFt, 0) {
		return fmt.Errorf("%w: minimums altitude %v", ErrInvalidCommand, altitudeFt)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.altitude.SetMinimums(altitudeFt, typ)
	s.logger.Info(ctx, "minimums set", logger.Float64("altitude", altitudeFt), logger.String("type", string(typ)))
	return nil
}

// ClearMinimums removes the approach minimums.
func (s *Service) ClearMinimums(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.altitude.ClearMinimums()
	s.logger.Info(ctx, "minimums cleared")
}

// SetAltitudeAlertsEnabled toggles the altitude alerter.
func (s *Service) SetAltitudeAlertsEnabled(_ context.Context, enabled bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.altitude.SetEnabled(enabled)
}

// SetTrafficSensitivity selects NORMAL, ABOVE or BELOW.
func (s *Service) SetTrafficSensitivity(ctx context.Context, name string) error {
	sens, err := traffic.ParseSensitivity(name)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidCommand, err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.traffic.SetSensitivity(sens)
	s.logger.Info(ctx, "traffic sensitivity set", logger.String("sensitivity", sens.String()))
	return nil
}

// SetTrafficAdvisories enables or disables TA and RA reporting.
func (s *Service) SetTrafficAdvisories(_ context.Context, ta, ra bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.traffic.SetAdvisories(ta, ra)
}

// SetTrafficEnabled toggles the traffic engine.
func (s *Service) SetTrafficEnabled(_ context.Context, enabled bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.traffic.SetEnabled(enabled)
}

// SetVNAVEnabled toggles vertical guidance.
func (s *Service) SetVNAVEnabled(_ context.Context, enabled bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.vnav.SetEnabled(enabled)
}

// SetDescentAngle sets the VNAV path angle and returns the clamped value.
func (s *Service) SetDescentAngle(ctx context.Context, deg float64) (float64, error) {
	if math.IsNaN(deg) || math.IsInf(deg, 0) {
		return 0, fmt.Errorf("%w: descent angle %v", ErrInvalidCommand, deg)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	applied := s.vnav.SetDescentAngle(deg)
	s.logger.Info(ctx, "descent angle set", logger.Float64("requested", deg), logger.Float64("applied", applied))
	return applied, nil
}

// SetRoute replaces the flight plan and its active waypoint.
func (s *Service) SetRoute(ctx context.Context, waypoints []model.Waypoint, activeIndex int) error {
	if activeIndex < 0 || (len(waypoints) > 0 && activeIndex >= len(waypoints)) {
		return fmt.Errorf("%w: active index %d for %d waypoints", ErrInvalidCommand, activeIndex, len(waypoints))
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.route = types.Route{Waypoints: deep.MustCopy(waypoints), ActiveIndex: activeIndex}
	s.logger.Info(ctx, "route loaded", logger.Int("waypoints", len(waypoints)), logger.Int("active", activeIndex))
	return nil
}

// SetActiveLeg moves the active waypoint.
func (s *Service) SetActiveLeg(ctx context.Context, index int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if index < 0 || index >= len(s.route.Waypoints) {
		return fmt.Errorf("%w: active index %d for %d waypoints", ErrInvalidCommand, index, len(s.route.Waypoints))
	}
	s.route.ActiveIndex = index
	s.logger.Info(ctx, "active leg set", logger.String("waypoint", s.route.Waypoints[index].Ident))
	return nil
}

// ActivateHold starts holding on a procedure leg using the latest telemetry.
func (s *Service) ActivateHold(ctx context.Context, leg model.ProcedureLeg) (holding.Spec, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var own model.AircraftState
	if s.own != nil {
		own = *s.own
	}
	spec, err := s.holding.Activate(ctx, leg, own)
	if err != nil {
		return holding.Spec{}, fmt.Errorf("%w: %w", ErrInvalidCommand, err)
	}
	return spec, nil
}

// CancelHold stops the active hold and reports whether one was active.
func (s *Service) CancelHold(ctx context.Context) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.holding.Cancel(ctx)
}

// SetHoldingEnabled toggles the holding engine.
func (s *Service) SetHoldingEnabled(_ context.Context, enabled bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.holding.SetEnabled(enabled)
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.runMu.RLock()
	started := s.started
	q, w := s.frameQueue, s.worker
	dropped, duplicates := s.dropped, s.duplicates
	s.runMu.RUnlock()

	s.mu.RLock()
	ticks := s.ticks
	s.mu.RUnlock()

	s.alertMu.Lock()
	alerts := s.alerts
	recent := s.recent.len()
	s.alertMu.Unlock()

	stats := map[string]interface{}{
		"started":         started,
		"queueSize":       s.queueSize,
		"ticks":           ticks,
		"alerts":          alerts,
		"recentAlerts":    recent,
		"framesDropped":   dropped,
		"framesDuplicate": duplicates,
		"dedupeEntries":   s.dedupe.Size(),
	}

	if started {
		queueLen := q.Len(context.Background())
		stats["queueLength"] = queueLen
		stats["framesFailed"] = w.Failed()
		metrics.UpdateQueueSize(queueLen)
	}

	return stats
}
