package model

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Severity ranks an alert for presentation.
type Severity string

const (
	SeverityInfo     Severity = "info"
	SeverityWarning  Severity = "warning"
	SeveritySuccess  Severity = "success"
	SeverityCritical Severity = "critical"
)

// Source names the engine that raised an alert.
type Source string

const (
	SourceTraffic  Source = "traffic"
	SourceVNAV     Source = "vnav"
	SourceHolding  Source = "holding"
	SourceAltitude Source = "altitude"
)

// AlertEvent is a single alert raised by an engine. Kind is an
// engine-specific tag such as "RA" or "CAPTURED". Chime is false when the
// alert falls inside an aural cooldown window.
type AlertEvent struct {
	ID        string    `json:"id"`
	Source    Source    `json:"source"`
	Kind      string    `json:"kind"`
	Message   string    `json:"message"`
	Severity  Severity  `json:"severity"`
	Chime     bool      `json:"chime"`
	Timestamp time.Time `json:"timestamp"`
}

// NewAlertEvent stamps a new alert with a fresh ID.
func NewAlertEvent(src Source, kind, message string, sev Severity, ts time.Time) AlertEvent {
	return AlertEvent{
		ID:        uuid.NewString(),
		Source:    src,
		Kind:      kind,
		Message:   message,
		Severity:  sev,
		Chime:     true,
		Timestamp: ts,
	}
}

// AlertSink receives alerts from an engine.
type AlertSink interface {
	OnAlert(ctx context.Context, ev AlertEvent)
}

// AlertSinkFunc adapts a function to AlertSink.
type AlertSinkFunc func(ctx context.Context, ev AlertEvent)

// OnAlert calls f.
func (f AlertSinkFunc) OnAlert(ctx context.Context, ev AlertEvent) { f(ctx, ev) }

// DiscardSink drops every alert.
var DiscardSink AlertSink = AlertSinkFunc(func(context.Context, AlertEvent) {})

// Recorder is an AlertSink that keeps every alert it receives.
type Recorder struct {
	mu     sync.Mutex
	events []AlertEvent
}

// OnAlert records ev.
func (r *Recorder) OnAlert(_ context.Context, ev AlertEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
}

// Events returns a copy of the recorded alerts.
func (r *Recorder) Events() []AlertEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]AlertEvent(nil), r.events...)
}

// Kinds returns the kinds of the recorded alerts in order.
func (r *Recorder) Kinds() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	kinds := make([]string, len(r.events))
	for i, ev := range r.events {
		kinds[i] = ev.Kind
	}
	return kinds
}

// Reset drops the recorded alerts.
func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = nil
}
