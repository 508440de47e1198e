package toolbridge

import (
	"log/slog"
	"time"
)

// capabilityOptions hold optional capability settings.
type capabilityOptions struct {
	fieldDescription string
}

// CapabilityOption configures a capability (e.g. WithFieldDescription).
type CapabilityOption func(*capabilityOptions)

// WithFieldDescription sets the description of the declared argument field, shown to the session.
func WithFieldDescription(desc string) CapabilityOption {
	return func(o *capabilityOptions) {
		o.fieldDescription = desc
	}
}

// Option configures a Dispatcher, Responder or Manager.
type Option func(*options)

type options struct {
	logger         *slog.Logger
	observer       Observer
	reportFailures bool
	ackDelay       time.Duration
}

func buildOptions(opts []Option) options {
	o := options{
		logger:   slog.Default(),
		observer: nopObserver{},
		ackDelay: AckDelay,
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// WithLogger sets the structured logger. A nil logger keeps slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithObserver sets the observer notified of dispatch outcomes and acknowledgments.
func WithObserver(obs Observer) Option {
	return func(o *options) {
		if obs != nil {
			o.observer = obs
		}
	}
}

// WithFailureReporting makes the Responder acknowledge calls whose arguments were malformed
// or whose effect failed with success=false and an error message, instead of the uniform
// success acknowledgment.
func WithFailureReporting() Option {
	return func(o *options) {
		o.reportFailures = true
	}
}

// withAckDelay overrides the debounce delay. Tests only.
func withAckDelay(d time.Duration) Option {
	return func(o *options) {
		o.ackDelay = d
	}
}
