package archive

import "log/slog"

type options struct {
	registry *Registry
	logger   *slog.Logger
}

// Option configures an Archive.
type Option func(*options)

// WithRegistry resolves polymorphic types through r instead of Default().
func WithRegistry(r *Registry) Option {
	return func(o *options) { o.registry = r }
}

// WithLogger sets the logger used for debug tracing of polymorphic construction.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) { o.logger = l }
}

func buildOptions(opts []Option) options {
	o := options{}
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}
	if o.registry == nil {
		o.registry = Default()
	}
	if o.logger == nil {
		o.logger = discardLogger
	}
	return o
}

var discardLogger = slog.New(slog.DiscardHandler)
