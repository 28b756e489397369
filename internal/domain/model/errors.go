package model

import "errors"

// Sentinel errors for this package.
var (
	ErrUnknownDescriptor = errors.New("unknown constraint descriptor")
)
