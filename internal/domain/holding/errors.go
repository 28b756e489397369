package holding

import "errors"

// Sentinel errors for this package.
var (
	ErrNoHold   = errors.New("leg is not a holding leg")
	ErrDisabled = errors.New("holding engine disabled")
)
