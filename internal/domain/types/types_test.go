package types_test

import (
	"testing"

	"github.com/okian/navguard/internal/domain/altalert"
	"github.com/okian/navguard/internal/domain/traffic"
	types "github.com/okian/navguard/internal/domain/types"
	"github.com/okian/navguard/internal/domain/vnav"
	. "github.com/smartystreets/goconvey/convey"
)

func TestSnapshotAdvisories(t *testing.T) {
	Convey("Given an empty snapshot", t, func() {
		s := types.Snapshot{}

		Convey("Then no advisory is in force", func() {
			So(s.Advisories(), ShouldBeEmpty)
		})
	})

	Convey("Given a snapshot with several engines alerting", t, func() {
		s := types.Snapshot{
			Traffic:  traffic.Status{ActiveRA: &traffic.Threat{Callsign: "N123"}},
			VNAV:     vnav.Status{State: vnav.StateActive},
			Altitude: altalert.Status{State: altalert.StateDeviation},
		}
		s.Holding.Active = true

		Convey("Then advisories are listed in priority order", func() {
			So(s.Advisories(), ShouldResemble, []string{
				types.AdvisoryRA, types.AdvisoryDeviation, types.AdvisoryTOD, types.AdvisoryHold,
			})
		})
	})

	Convey("Given a TA without an RA", t, func() {
		s := types.Snapshot{Traffic: traffic.Status{ActiveTA: &traffic.Threat{Callsign: "N9"}}}
		So(s.Advisories(), ShouldResemble, []string{types.AdvisoryTA})
	})

	Convey("Given the advisory list", t, func() {
		So(types.AllAdvisories, ShouldHaveLength, 5)
	})
}
