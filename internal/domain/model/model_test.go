package model_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/okian/navguard/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func TestAircraftState(t *testing.T) {
	Convey("Given a fully populated aircraft state", t, func() {
		s := model.NewAircraftState(40, -75, 12000, 90, 250, -500)

		Convey("Then every field is present", func() {
			So(s.Has(model.HasAll), ShouldBeTrue)
			So(s.Mover().GroundSpeedKt, ShouldEqual, 250)
			So(s.Mover().TrackDeg, ShouldEqual, 90)
		})
	})

	Convey("Given a state with only a position", t, func() {
		s := model.AircraftState{GroundSpeedKt: 250, HeadingDeg: 90, Present: model.HasPosition}

		Convey("Then altitude is reported absent", func() {
			So(s.Has(model.HasPosition), ShouldBeTrue)
			So(s.Has(model.HasPosition|model.HasAltitude), ShouldBeFalse)
		})

		Convey("And the mover is stationary", func() {
			So(s.Mover().GroundSpeedKt, ShouldEqual, 0)
		})
	})
}

func TestDescriptor(t *testing.T) {
	Convey("Given constraint descriptors", t, func() {
		So(model.At.Descending(), ShouldBeTrue)
		So(model.AtOrBelow.Descending(), ShouldBeTrue)
		So(model.AtOrAbove.Descending(), ShouldBeFalse)

		d, ok := model.ParseDescriptor("at_or_below")
		So(ok, ShouldBeTrue)
		So(d, ShouldEqual, model.AtOrBelow)

		_, ok = model.ParseDescriptor("between")
		So(ok, ShouldBeFalse)
		So(model.AtOrAbove.String(), ShouldEqual, "AT_OR_ABOVE")
	})

	Convey("Given a constraint in JSON", t, func() {
		var c model.AltitudeConstraint
		err := json.Unmarshal([]byte(`{"ident":"ALPHA","altitude_ft":4000,"descriptor":"AT_OR_BELOW"}`), &c)
		So(err, ShouldBeNil)
		So(c.Descriptor, ShouldEqual, model.AtOrBelow)

		out, err := json.Marshal(c)
		So(err, ShouldBeNil)
		So(string(out), ShouldContainSubstring, `"descriptor":"AT_OR_BELOW"`)

		err = json.Unmarshal([]byte(`{"descriptor":"BETWEEN"}`), &c)
		So(errors.Is(err, model.ErrUnknownDescriptor), ShouldBeTrue)
	})
}

func TestAlerts(t *testing.T) {
	Convey("Given a recorder sink", t, func() {
		rec := &model.Recorder{}
		ts := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)

		Convey("When two alerts are delivered", func() {
			var sink model.AlertSink = rec
			sink.OnAlert(context.Background(), model.NewAlertEvent(model.SourceTraffic, "TA", "TRAFFIC", model.SeverityWarning, ts))
			sink.OnAlert(context.Background(), model.NewAlertEvent(model.SourceTraffic, "RA", "CLIMB", model.SeverityCritical, ts))

			Convey("Then they are kept in order with distinct ids", func() {
				evs := rec.Events()
				So(rec.Kinds(), ShouldResemble, []string{"TA", "RA"})
				So(evs[0].ID, ShouldNotEqual, evs[1].ID)
				So(evs[0].Chime, ShouldBeTrue)
				So(evs[1].Timestamp, ShouldEqual, ts)
			})

			Convey("And reset clears them", func() {
				rec.Reset()
				So(rec.Events(), ShouldBeEmpty)
			})
		})
	})
}

func TestManualClock(t *testing.T) {
	Convey("Given a manual clock", t, func() {
		start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
		c := model.NewManualClock(start)

		So(c.Now(), ShouldEqual, start)
		c.Advance(90 * time.Second)
		So(c.Now().Sub(start), ShouldEqual, 90*time.Second)
		c.Set(start)
		So(c.Now(), ShouldEqual, start)
	})
}
