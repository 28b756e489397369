package scenario

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	service "github.com/okian/navguard/internal/app"
	"github.com/okian/navguard/internal/domain/model"
	"github.com/okian/navguard/pkg/logger"
)

// Result holds the outcome of one scenario run.
type Result struct {
	Name      string
	Ticks     int
	Alerts    []model.AlertEvent
	Got       []string
	Want      []string
	Simulated time.Duration
	Elapsed   time.Duration
	Err       error
}

// Passed reports whether the run produced the expected alerts.
func (r *Result) Passed() bool { return r.Err == nil }

// Runner replays scenarios against a fresh service each time.
type Runner struct {
	logger      logger.Logger
	start       time.Time
	serviceOpts []service.Option
}

// NewRunner creates a Runner.
func NewRunner(opts ...Option) *Runner {
	r := &Runner{
		logger: logger.Nop(),
		start:  time.Date(2024, 6, 1, 14, 0, 0, 0, time.UTC),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run replays sc on a manual clock. The returned error is non-nil when a
// step fails or the alerts do not match; Result.Err carries the same error.
func (r *Runner) Run(ctx context.Context, sc Scenario) (Result, error) { //nolint:gocritic // hugeParam: Scenario is read-only
	began := time.Now()
	res := Result{Name: sc.Name, Want: sc.Expect, Simulated: sc.Duration()}

	if err := sc.Validate(); err != nil {
		res.Err = err
		return res, err
	}

	clock := model.NewManualClock(r.start)
	rec := &model.Recorder{}
	svc := service.New(append(r.serviceOpts,
		service.WithClock(clock),
		service.WithSink(rec),
		service.WithLogger(r.logger.Named("service")))...)

	r.logger.Info(ctx, "scenario started",
		logger.String("name", sc.Name),
		logger.Int("steps", len(sc.Steps)),
		logger.Duration("simulated", res.Simulated))

	for i := range sc.Steps {
		st := &sc.Steps[i]
		clock.Advance(time.Duration(st.AdvanceS * float64(time.Second)))

		for _, cmd := range st.Commands {
			if err := apply(ctx, svc, cmd); err != nil {
				res.Err = fmt.Errorf("step %d: %s: %w", i, cmd.Name, err)
				res.Elapsed = time.Since(began)
				return res, res.Err
			}
		}
		if st.Own == nil {
			continue
		}

		f := model.Frame{ID: uuid.NewString(), Timestamp: clock.Now(), Own: st.Own.state()}
		for _, t := range st.Traffic {
			f.Traffic = append(f.Traffic, t.target())
		}
		if err := svc.Tick(ctx, f); err != nil {
			res.Err = fmt.Errorf("step %d: tick: %w", i, err)
			res.Elapsed = time.Since(began)
			return res, res.Err
		}
		res.Ticks++
		r.logger.Debug(ctx, "scenario step",
			logger.Int("step", i),
			logger.Int("alerts", len(rec.Events())))
	}

	res.Alerts = rec.Events()
	res.Got, res.Err = verifyAlerts(sc.Expect, res.Alerts)
	res.Elapsed = time.Since(began)

	if res.Err != nil {
		r.logger.Error(ctx, "scenario failed", logger.String("name", sc.Name), logger.Error(res.Err))
		return res, res.Err
	}
	r.logger.Info(ctx, "scenario passed",
		logger.String("name", sc.Name),
		logger.Int("ticks", res.Ticks),
		logger.Int("alerts", len(res.Alerts)),
		logger.Duration("elapsed", res.Elapsed))
	return res, nil
}

// RunAll runs every scenario and joins the failures.
func (r *Runner) RunAll(ctx context.Context, scenarios []Scenario) ([]Result, error) {
	results := make([]Result, 0, len(scenarios))
	var errs []error
	for i := range scenarios {
		if err := ctx.Err(); err != nil {
			return results, err
		}
		res, err := r.Run(ctx, scenarios[i])
		results = append(results, res)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", scenarios[i].Name, err))
		}
	}
	return results, errors.Join(errs...)
}

func apply(ctx context.Context, svc *service.Service, cmd Command) error { //nolint:gocritic // hugeParam: Command is read-only
	switch cmd.Name {
	case "assign_altitude":
		return svc.SetAssignedAltitude(ctx, cmd.Value)
	case "clear_altitude":
		svc.ClearAssignedAltitude(ctx)
	case "minimums":
		return svc.SetMinimums(ctx, cmd.Value, cmd.Arg)
	case "clear_minimums":
		svc.ClearMinimums(ctx)
	case "sensitivity":
		return svc.SetTrafficSensitivity(ctx, cmd.Arg)
	case "descent_angle":
		_, err := svc.SetDescentAngle(ctx, cmd.Value)
		return err
	case "route":
		wps := make([]model.Waypoint, 0, len(cmd.Route))
		for _, w := range cmd.Route {
			wp, err := w.waypoint()
			if err != nil {
				return err
			}
			wps = append(wps, wp)
		}
		return svc.SetRoute(ctx, wps, cmd.Index)
	case "active_leg":
		return svc.SetActiveLeg(ctx, cmd.Index)
	case "hold":
		if cmd.Leg == nil {
			return fmt.Errorf("%w: hold without leg", service.ErrInvalidCommand)
		}
		_, err := svc.ActivateHold(ctx, cmd.Leg.leg())
		return err
	case "cancel_hold":
		svc.CancelHold(ctx)
	default:
		return fmt.Errorf("%w: %q", ErrUnknownCommand, cmd.Name)
	}
	return nil
}
