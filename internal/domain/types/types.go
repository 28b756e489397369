// Package types contains the aggregate views shared by the service and its adapters.
package types

import (
	"time"

	"github.com/okian/navguard/internal/domain/altalert"
	"github.com/okian/navguard/internal/domain/holding"
	"github.com/okian/navguard/internal/domain/model"
	"github.com/okian/navguard/internal/domain/traffic"
	"github.com/okian/navguard/internal/domain/vnav"
)

// Advisory names reported by Snapshot.Advisories.
const (
	AdvisoryRA        = "RA"
	AdvisoryTA        = "TA"
	AdvisoryTOD       = "VNAV_PATH"
	AdvisoryHold      = "HOLD"
	AdvisoryDeviation = "ALT_DEVIATION"
)

// AllAdvisories lists every advisory name in display priority order.
var AllAdvisories = []string{AdvisoryRA, AdvisoryTA, AdvisoryDeviation, AdvisoryTOD, AdvisoryHold}

// Route is the flight-plan context fed to VNAV on every tick.
type Route struct {
	Waypoints   []model.Waypoint `json:"waypoints"`
	ActiveIndex int              `json:"active_index"`
}

// Snapshot is a point-in-time view of every engine.
type Snapshot struct {
	FrameID   string               `json:"frame_id,omitempty"`
	LastFrame *time.Time           `json:"last_frame,omitempty"`
	Own       *model.AircraftState `json:"own,omitempty"`
	Route     Route                `json:"route"`
	Traffic   traffic.Status       `json:"traffic"`
	VNAV      vnav.Status          `json:"vnav"`
	Holding   holding.Status       `json:"holding"`
	Altitude  altalert.Status      `json:"altitude"`
}

// Advisories returns the advisories currently in force, highest priority first.
func (s *Snapshot) Advisories() []string {
	var out []string
	if s.Traffic.ActiveRA != nil {
		out = append(out, AdvisoryRA)
	}
	if s.Traffic.ActiveTA != nil {
		out = append(out, AdvisoryTA)
	}
	if s.Altitude.State == altalert.StateDeviation {
		out = append(out, AdvisoryDeviation)
	}
	if s.VNAV.State == vnav.StateActive {
		out = append(out, AdvisoryTOD)
	}
	if s.Holding.Active {
		out = append(out, AdvisoryHold)
	}
	return out
}
