package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/okian/navguard/internal/domain/holding"
	"github.com/okian/navguard/internal/domain/model"
)

// CommandDependencies defines the write operations used by CommandsHandler.
type CommandDependencies interface {
	SetAssignedAltitude(ctx context.Context, altitudeFt float64) error
	ClearAssignedAltitude(ctx context.Context)
	SetMinimums(ctx context.Context, altitudeFt float64, kind string) error
	ClearMinimums(ctx context.Context)
	SetTrafficSensitivity(ctx context.Context, name string) error
	SetTrafficAdvisories(ctx context.Context, ta, ra bool)
	SetVNAVEnabled(ctx context.Context, enabled bool)
	SetDescentAngle(ctx context.Context, deg float64) (float64, error)
	SetRoute(ctx context.Context, waypoints []model.Waypoint, activeIndex int) error
	ActivateHold(ctx context.Context, leg model.ProcedureLeg) (holding.Spec, error)
	CancelHold(ctx context.Context) bool
}

// CommandsHandler handles pilot and flight-plan commands.
type CommandsHandler struct {
	deps CommandDependencies
}

// NewCommandsHandler creates a new commands handler.
func NewCommandsHandler(deps CommandDependencies) *CommandsHandler {
	return &CommandsHandler{deps: deps}
}

type ackResponse struct {
	Status string `json:"status"`
}

var okResponse = ackResponse{Status: "ok"}

type altitudeRequest struct {
	AltitudeFt *float64 `json:"altitude_ft"`
	Type       string   `json:"type,omitempty"`
}

// HandleAssigned handles POST and DELETE /altitude/assigned.
func (h *CommandsHandler) HandleAssigned(w http.ResponseWriter, r *http.Request) {
	const op = "api.assigned_altitude"
	switch r.Method {
	case http.MethodPost:
		var req altitudeRequest
		if !decodeRequest(w, r, op, &req) {
			return
		}
		if req.AltitudeFt == nil {
			badRequest(w, op, errors.New("missing altitude_ft"))
			return
		}
		if err := h.deps.SetAssignedAltitude(r.Context(), *req.AltitudeFt); err != nil {
			rejected(w, op, err)
			return
		}
		writeJSON(w, http.StatusOK, okResponse)
	case http.MethodDelete:
		h.deps.ClearAssignedAltitude(r.Context())
		writeJSON(w, http.StatusOK, okResponse)
	default:
		http.NotFound(w, r)
	}
}

// HandleMinimums handles POST and DELETE /altitude/minimums.
func (h *CommandsHandler) HandleMinimums(w http.ResponseWriter, r *http.Request) {
	const op = "api.minimums"
	switch r.Method {
	case http.MethodPost:
		var req altitudeRequest
		if !decodeRequest(w, r, op, &req) {
			return
		}
		if req.AltitudeFt == nil {
			badRequest(w, op, errors.New("missing altitude_ft"))
			return
		}
		if err := h.deps.SetMinimums(r.Context(), *req.AltitudeFt, req.Type); err != nil {
			rejected(w, op, err)
			return
		}
		writeJSON(w, http.StatusOK, okResponse)
	case http.MethodDelete:
		h.deps.ClearMinimums(r.Context())
		writeJSON(w, http.StatusOK, okResponse)
	default:
		http.NotFound(w, r)
	}
}

type sensitivityRequest struct {
	Sensitivity string `json:"sensitivity"`
	TAEnabled   *bool  `json:"ta_enabled,omitempty"`
	RAEnabled   *bool  `json:"ra_enabled,omitempty"`
}

// HandleSensitivity handles POST /traffic/sensitivity. TA and RA flags are
// only changed when both are present.
func (h *CommandsHandler) HandleSensitivity(w http.ResponseWriter, r *http.Request) {
	const op = "api.traffic_sensitivity"
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	var req sensitivityRequest
	if !decodeRequest(w, r, op, &req) {
		return
	}
	if (req.TAEnabled == nil) != (req.RAEnabled == nil) {
		badRequest(w, op, errors.New("ta_enabled and ra_enabled must be set together"))
		return
	}
	if req.Sensitivity != "" {
		if err := h.deps.SetTrafficSensitivity(r.Context(), req.Sensitivity); err != nil {
			rejected(w, op, err)
			return
		}
	}
	if req.TAEnabled != nil {
		h.deps.SetTrafficAdvisories(r.Context(), *req.TAEnabled, *req.RAEnabled)
	}
	writeJSON(w, http.StatusOK, okResponse)
}

type angleRequest struct {
	AngleDeg *float64 `json:"angle_deg,omitempty"`
	Enabled  *bool    `json:"enabled,omitempty"`
}

type angleResponse struct {
	AppliedDeg float64 `json:"applied_deg"`
}

// HandleDescentAngle handles POST /vnav/angle. The applied angle is clamped
// to the supported range and echoed back.
func (h *CommandsHandler) HandleDescentAngle(w http.ResponseWriter, r *http.Request) {
	const op = "api.vnav_angle"
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	var req angleRequest
	if !decodeRequest(w, r, op, &req) {
		return
	}
	if req.AngleDeg == nil && req.Enabled == nil {
		badRequest(w, op, errors.New("missing angle_deg or enabled"))
		return
	}
	if req.Enabled != nil {
		h.deps.SetVNAVEnabled(r.Context(), *req.Enabled)
	}
	if req.AngleDeg == nil {
		writeJSON(w, http.StatusOK, okResponse)
		return
	}
	applied, err := h.deps.SetDescentAngle(r.Context(), *req.AngleDeg)
	if err != nil {
		rejected(w, op, err)
		return
	}
	writeJSON(w, http.StatusOK, angleResponse{AppliedDeg: applied})
}

type routeRequest struct {
	Waypoints   []model.Waypoint `json:"waypoints"`
	ActiveIndex int              `json:"active_index"`
}

// HandleRoute handles POST /route.
func (h *CommandsHandler) HandleRoute(w http.ResponseWriter, r *http.Request) {
	const op = "api.route"
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	var req routeRequest
	if !decodeRequest(w, r, op, &req) {
		return
	}
	if err := h.deps.SetRoute(r.Context(), req.Waypoints, req.ActiveIndex); err != nil {
		rejected(w, op, err)
		return
	}
	writeJSON(w, http.StatusOK, okResponse)
}

type cancelResponse struct {
	Cancelled bool `json:"cancelled"`
}

// HandleHold handles POST /hold with a procedure leg, and DELETE /hold.
func (h *CommandsHandler) HandleHold(w http.ResponseWriter, r *http.Request) {
	const op = "api.hold"
	switch r.Method {
	case http.MethodPost:
		var leg model.ProcedureLeg
		if !decodeRequest(w, r, op, &leg) {
			return
		}
		spec, err := h.deps.ActivateHold(r.Context(), leg)
		switch {
		case errors.Is(err, holding.ErrDisabled):
			writeError(w, http.StatusConflict, "disabled", wrapKind(op, ErrRejected, err))
		case errors.Is(err, holding.ErrNoHold):
			writeError(w, http.StatusBadRequest, "no_hold", wrapKind(op, ErrRejected, err))
		case err != nil:
			rejected(w, op, err)
		default:
			writeJSON(w, http.StatusOK, spec)
		}
	case http.MethodDelete:
		writeJSON(w, http.StatusOK, cancelResponse{Cancelled: h.deps.CancelHold(r.Context())})
	default:
		http.NotFound(w, r)
	}
}

func decodeRequest(w http.ResponseWriter, r *http.Request, op string, v any) bool {
	if err := decodeJSON(r, v); err != nil {
		badRequest(w, op, err)
		return false
	}
	return true
}

func badRequest(w http.ResponseWriter, op string, err error) {
	writeError(w, http.StatusBadRequest, "bad_request", wrapKind(op, ErrBadRequest, err))
}

func rejected(w http.ResponseWriter, op string, err error) {
	writeError(w, http.StatusBadRequest, "invalid_command", wrapKind(op, ErrRejected, err))
}
