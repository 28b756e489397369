package scenario

import "errors"

var (
	// ErrMismatch is returned when the recorded alerts differ from the expected sequence.
	ErrMismatch = errors.New("alert sequence mismatch")
	// ErrUnknownCommand is returned for a step command the runner does not support.
	ErrUnknownCommand = errors.New("unknown command")
	// ErrUnknownScenario is returned when a built-in scenario name does not exist.
	ErrUnknownScenario = errors.New("unknown scenario")
	// ErrInvalidScenario is returned when a scenario has no name or no steps.
	ErrInvalidScenario = errors.New("invalid scenario")
)
