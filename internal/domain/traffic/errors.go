package traffic

import "errors"

// Sentinel errors for this package.
var (
	ErrUnknownSensitivity = errors.New("unknown traffic sensitivity")
)
