package scenario

import (
	"time"

	service "github.com/okian/navguard/internal/app"
	"github.com/okian/navguard/pkg/logger"
)

// Option configures a Runner.
type Option func(*Runner)

// WithLogger sets the runner logger. The service under test logs through
// a "service" child of it.
func WithLogger(l logger.Logger) Option {
	return func(r *Runner) {
		if l != nil {
			r.logger = l
		}
	}
}

// WithStart sets the simulated wall-clock time of the first step.
func WithStart(t time.Time) Option {
	return func(r *Runner) {
		r.start = t
	}
}

// WithServiceOptions passes extra options to every service the runner builds.
func WithServiceOptions(opts ...service.Option) Option {
	return func(r *Runner) {
		r.serviceOpts = append(r.serviceOpts, opts...)
	}
}
