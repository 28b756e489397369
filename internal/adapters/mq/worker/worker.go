// Package worker drains the telemetry frame queue and drives the alerting
// service one tick at a time.
package worker

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/okian/navguard/internal/domain/model"
	"github.com/okian/navguard/pkg/logger"
	"github.com/okian/navguard/pkg/metrics"
)

// Default worker configuration constants.
const (
	metricsUpdateInterval = 5 * time.Second
)

// Frame is the unit of work read off the queue.
type Frame = model.Frame

// Ticker advances the engines by one telemetry frame.
type Ticker interface {
	Tick(ctx context.Context, f Frame) error
}

// Queue defines how the worker receives frames.
type Queue interface {
	Dequeue(ctx context.Context) <-chan Frame
}

// Worker processes frames in arrival order.
type Worker interface {
	// Run starts the worker loop until ctx is canceled, Shutdown is called or
	// the queue is closed.
	Run(ctx context.Context)

	// Shutdown gracefully stops the worker.
	Shutdown(ctx context.Context) error
}

// TickWorker implements Worker with a single goroutine so frames are never
// applied out of order.
type TickWorker struct {
	queue  Queue
	ticker Ticker
	name   string

	processed atomic.Int64
	failed    atomic.Int64

	shutdownOnce sync.Once
	shutdown     chan struct{}
	done         chan struct{}

	logger logger.Logger
}

// NewTickWorker creates a new worker with configuration options.
func NewTickWorker(queue Queue, ticker Ticker, opts ...Option) *TickWorker {
	w := &TickWorker{
		queue:    queue,
		ticker:   ticker,
		name:     "tick-worker",
		shutdown: make(chan struct{}),
		done:     make(chan struct{}),
		logger:   logger.Get().Named("worker"),
	}

	for _, opt := range opts {
		opt(w)
	}

	metrics.UpdateWorkerMessagesPerSecond(0.0)

	return w
}

// Run starts the worker loop.
func (w *TickWorker) Run(ctx context.Context) {
	defer close(w.done)

	go w.startMetricsUpdater(ctx)

	frames := w.queue.Dequeue(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.shutdown:
			return
		case f, ok := <-frames:
			if !ok {
				w.logger.Debug(ctx, "frame queue closed", logger.String("worker", w.name))
				return
			}
			if err := w.process(ctx, f); err != nil {
				w.logger.Error(ctx, "error processing frame", logger.String("frame", f.ID), logger.Error(err))
			}
		}
	}
}

// Shutdown gracefully stops the worker. It is safe to call more than once.
func (w *TickWorker) Shutdown(ctx context.Context) error {
	w.shutdownOnce.Do(func() { close(w.shutdown) })

	select {
	case <-w.done:
		return nil
	case <-ctx.Done():
		w.logger.Warn(ctx, "shutdown timed out", logger.String("worker", w.name))
		return fmt.Errorf("shutdown timed out: %w", ctx.Err())
	}
}

// Done is closed once Run has returned.
func (w *TickWorker) Done() <-chan struct{} { return w.done }

// Processed returns the number of frames ticked successfully.
func (w *TickWorker) Processed() int64 { return w.processed.Load() }

// Failed returns the number of frames whose tick returned an error.
func (w *TickWorker) Failed() int64 { return w.failed.Load() }

func (w *TickWorker) process(ctx context.Context, f Frame) error { //nolint:gocritic // hugeParam: Frame is passed by value for channel semantics
	start := time.Now()
	defer func() {
		metrics.RecordWorkerProcessingLatency(float64(time.Since(start).Microseconds()) / 1000)
	}()

	if err := w.ticker.Tick(ctx, f); err != nil {
		w.failed.Add(1)
		metrics.RecordWorkerError()
		metrics.RecordErrorByComponent("worker", "tick_error")
		return fmt.Errorf("tick frame %s: %w", f.ID, err)
	}

	w.processed.Add(1)
	return nil
}

func (w *TickWorker) startMetricsUpdater(ctx context.Context) {
	ticker := time.NewTicker(metricsUpdateInterval)
	defer ticker.Stop()

	last := time.Now()
	var lastCount int64
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.done:
			return
		case now := <-ticker.C:
			count := w.processed.Load()
			if elapsed := now.Sub(last).Seconds(); elapsed > 0 {
				metrics.UpdateWorkerMessagesPerSecond(float64(count-lastCount) / elapsed)
			}
			last, lastCount = now, count
		}
	}
}
