package scenario

import (
	"fmt"
	"strings"

	"github.com/google/go-cmp/cmp"

	"github.com/okian/navguard/internal/domain/model"
)

// label renders an alert the way Expect entries are written.
func label(ev model.AlertEvent) string { //nolint:gocritic // hugeParam: AlertEvent is a value type
	return string(ev.Source) + ":" + ev.Kind
}

// normalize strips the source from got entries whose expectation omits it,
// so "CAPTURED" matches "altitude:CAPTURED".
func normalize(want, got []string) []string {
	out := make([]string, len(got))
	for i, g := range got {
		out[i] = g
		if i < len(want) && !strings.Contains(want[i], ":") {
			_, kind, _ := strings.Cut(g, ":")
			out[i] = kind
		}
	}
	return out
}

// verifyAlerts compares the recorded alerts against the expected sequence.
func verifyAlerts(want []string, events []model.AlertEvent) ([]string, error) {
	got := make([]string, len(events))
	for i, ev := range events {
		got[i] = label(ev)
	}
	if len(want) == 0 && len(got) == 0 {
		return got, nil
	}
	if diff := cmp.Diff(want, normalize(want, got)); diff != "" {
		return got, fmt.Errorf("%w (-want +got):\n%s", ErrMismatch, diff)
	}
	return got, nil
}
