package runner

import (
	"log/slog"

	"github.com/aretw0/arbor/pkg/ports"
)

// Option defines a functional option for configuring the Runner.
type Option func(*Runner)

// WithStore configures the SessionStore for persistence.
func WithStore(store ports.SessionStore) Option {
	return func(r *Runner) {
		r.Store = store
	}
}

// WithLogger configures the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Runner) {
		r.Logger = logger
	}
}

// WithInputHandler configures a custom IOHandler.
func WithInputHandler(handler IOHandler) Option {
	return func(r *Runner) {
		r.Handler = handler
	}
}

// WithSanitizer sets the input limits applied to every turn.
func WithSanitizer(s Sanitizer) Option {
	return func(r *Runner) {
		r.Sanitizer = s
	}
}

// WithSessionID sets the session ID used by Start and persistence.
func WithSessionID(id string) Option {
	return func(r *Runner) {
		r.SessionID = id
	}
}
