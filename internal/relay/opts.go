package relay

import (
	"log/slog"
)

// WithLogger sets the logger used as the invocation log sink.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Relay) {
		r.logger = logger
	}
}

// WithNotifier sets the client used to deliver notifications.
func WithNotifier(notifier Notifier) Option {
	return func(r *Relay) {
		r.notifier = notifier
	}
}

// WithURLResolver sets how the destination webhook URL is obtained.
func WithURLResolver(resolver URLResolver) Option {
	return func(r *Relay) {
		r.resolver = resolver
	}
}
