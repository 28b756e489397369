package holding

import (
	"math"

	"github.com/okian/navguard/internal/domain/geo"
)

// Entry sector limits in degrees from the outbound course.
const (
	directSectorDeg   = 70
	teardropSectorDeg = 110
)

// Entry is a hold entry procedure.
type Entry int

const (
	EntryDirect Entry = iota
	EntryTeardrop
	EntryParallel
)

func (e Entry) String() string {
	return [...]string{"DIRECT", "TEARDROP", "PARALLEL"}[e]
}

// MarshalText implements encoding.TextMarshaler.
func (e Entry) MarshalText() ([]byte, error) { return []byte(e.String()), nil }

// CalculateEntryProcedure picks the entry for an aircraft arriving at the
// fix on headingDeg. The offset is the signed angle from the outbound course
// to the heading, negated for left-hand holds. Boundaries belong to the
// smaller sector: exactly 70 is DIRECT and exactly 110 is TEARDROP.
func CalculateEntryProcedure(headingDeg, inboundCourseDeg float64, turn Turn) Entry {
	outbound := geo.OppositeHeading(inboundCourseDeg)
	offset := geo.SignedAngle(outbound, headingDeg)
	if turn == TurnLeft {
		offset = -offset
	}
	switch {
	case math.Abs(offset) <= directSectorDeg:
		return EntryDirect
	case offset > directSectorDeg && offset <= teardropSectorDeg:
		return EntryTeardrop
	}
	return EntryParallel
}
