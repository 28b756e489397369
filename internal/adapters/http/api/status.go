package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/okian/navguard/internal/domain/model"
	"github.com/okian/navguard/internal/domain/types"
)

const (
	defaultAlertLimit = 50
	maxAlertLimit     = 1000
)

// StatusDependencies defines the read operations used by StatusHandler.
type StatusDependencies interface {
	Status() types.Snapshot
	RecentAlerts(n int) []model.AlertEvent
}

// StatusHandler serves engine snapshots and recent alerts.
type StatusHandler struct {
	deps StatusDependencies
}

// NewStatusHandler creates a new status handler.
func NewStatusHandler(deps StatusDependencies) *StatusHandler {
	return &StatusHandler{deps: deps}
}

type statusResponse struct {
	types.Snapshot
	Advisories []string `json:"advisories"`
}

// HandleStatus handles GET /status requests.
func (h *StatusHandler) HandleStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	snap := h.deps.Status()
	adv := snap.Advisories()
	if adv == nil {
		adv = []string{}
	}
	writeJSON(w, http.StatusOK, statusResponse{Snapshot: snap, Advisories: adv})
}

type alertsResponse struct {
	Alerts []model.AlertEvent `json:"alerts"`
	Count  int                `json:"count"`
}

// HandleAlerts handles GET /alerts?limit=N requests. Alerts are newest first.
func (h *StatusHandler) HandleAlerts(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_alerts"
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	limit := defaultAlertLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 || n > maxAlertLimit {
			writeError(w, http.StatusBadRequest, "bad_request",
				wrapKind(op, ErrBadRequest, errors.New("limit must be between 1 and 1000")))
			return
		}
		limit = n
	}
	alerts := h.deps.RecentAlerts(limit)
	if alerts == nil {
		alerts = []model.AlertEvent{}
	}
	writeJSON(w, http.StatusOK, alertsResponse{Alerts: alerts, Count: len(alerts)})
}

