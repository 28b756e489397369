package queue

import "errors"

// Sentinel errors for this package.
var (
	ErrClosed = errors.New("queue closed")
)
