package service

import "errors"

// Sentinel errors for this package.
var (
	ErrNotStarted     = errors.New("service not started")
	ErrQueueFull      = errors.New("frame queue full")
	ErrDuplicateFrame = errors.New("duplicate frame")
	ErrInvalidCommand = errors.New("invalid command")
)
