// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/okian/navguard/internal/domain/holding"
	"github.com/okian/navguard/internal/domain/model"
	"github.com/okian/navguard/internal/domain/types"
)

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to the service implementation.
type Dependencies interface {
	// Read operations expose engine state and recent alerts.
	Status() types.Snapshot
	RecentAlerts(n int) []model.AlertEvent

	// Altitude alerter commands.
	SetAssignedAltitude(ctx context.Context, altitudeFt float64) error
	ClearAssignedAltitude(ctx context.Context)
	SetMinimums(ctx context.Context, altitudeFt float64, kind string) error
	ClearMinimums(ctx context.Context)

	// Traffic commands.
	SetTrafficSensitivity(ctx context.Context, name string) error
	SetTrafficAdvisories(ctx context.Context, ta, ra bool)

	// Vertical guidance and route commands.
	SetVNAVEnabled(ctx context.Context, enabled bool)
	SetDescentAngle(ctx context.Context, deg float64) (float64, error)
	SetRoute(ctx context.Context, waypoints []model.Waypoint, activeIndex int) error

	// Holding commands.
	ActivateHold(ctx context.Context, leg model.ProcedureLeg) (holding.Spec, error)
	CancelHold(ctx context.Context) bool
}

// Server wires HTTP routes for the alerting API.
type Server struct {
	healthHandler   *HealthHandler
	statsHandler    *StatsHandler
	statusHandler   *StatusHandler
	commandsHandler *CommandsHandler
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, statsProvider StatsProvider) *Server {
	return &Server{
		healthHandler:   NewHealthHandler(),
		statsHandler:    NewStatsHandler(statsProvider),
		statusHandler:   NewStatusHandler(deps),
		commandsHandler: NewCommandsHandler(deps),
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(_ context.Context, mux *http.ServeMux) {
	mux.HandleFunc("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("/stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))
	mux.HandleFunc("/status", MetricsMiddleware(s.statusHandler.HandleStatus, "status"))
	mux.HandleFunc("/alerts", MetricsMiddleware(s.statusHandler.HandleAlerts, "alerts"))
	mux.HandleFunc("/altitude/assigned", MetricsMiddleware(s.commandsHandler.HandleAssigned, "altitude_assigned"))
	mux.HandleFunc("/altitude/minimums", MetricsMiddleware(s.commandsHandler.HandleMinimums, "altitude_minimums"))
	mux.HandleFunc("/traffic/sensitivity", MetricsMiddleware(s.commandsHandler.HandleSensitivity, "traffic_sensitivity"))
	mux.HandleFunc("/vnav/angle", MetricsMiddleware(s.commandsHandler.HandleDescentAngle, "vnav_angle"))
	mux.HandleFunc("/route", MetricsMiddleware(s.commandsHandler.HandleRoute, "route"))
	mux.HandleFunc("/hold", MetricsMiddleware(s.commandsHandler.HandleHold, "hold"))
	mux.HandleFunc("/openapi.yaml", MetricsMiddleware(handleOpenAPI, "openapi"))
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

func decodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}
