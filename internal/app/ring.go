package service

import "github.com/okian/navguard/internal/domain/model"

// alertRing keeps the most recent alerts in a fixed-size buffer.
type alertRing struct {
	buf  []model.AlertEvent
	next int
	full bool
}

func newAlertRing(size int) *alertRing {
	return &alertRing{buf: make([]model.AlertEvent, size)}
}

func (r *alertRing) push(ev model.AlertEvent) {
	r.buf[r.next] = ev
	r.next = (r.next + 1) % len(r.buf)
	if r.next == 0 {
		r.full = true
	}
}

func (r *alertRing) len() int {
	if r.full {
		return len(r.buf)
	}
	return r.next
}

// newest returns up to n alerts, newest first. n <= 0 means all.
func (r *alertRing) newest(n int) []model.AlertEvent {
	size := r.len()
	if n <= 0 || n > size {
		n = size
	}
	out := make([]model.AlertEvent, 0, n)
	for i := 1; i <= n; i++ {
		idx := (r.next - i + len(r.buf)) % len(r.buf)
		out = append(out, r.buf[idx])
	}
	return out
}
