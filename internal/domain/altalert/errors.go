package altalert

import "errors"

// Sentinel errors for this package.
var (
	ErrUnknownMinimums = errors.New("unknown minimums type")
)
