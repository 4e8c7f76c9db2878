// Package store provides model.Resolver implementations backing the value
// maps of model layers.
//
// Memory keeps values for the lifetime of the process and is the usual
// session store. Every model works on its own copy of a layer and writes it
// back on flush. Bolt persists the values of persistent attributes in a bbolt
// file. Token carries persistent values in signed or encrypted strings, for
// state that travels with the client.
package store

import (
	"log/slog"

	"github.com/pthm/talui/lib/model"
)

// Option configures a store.
type Option func(*options)

type options struct {
	logger *slog.Logger
}

// WithLogger sets the logger used for debug output.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		o.logger = l
	}
}

func newOptions(opts []Option) options {
	o := options{logger: slog.New(slog.DiscardHandler)}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// persistent returns the values of the persistent attributes of cfg.
func persistent(cfg *model.Configuration, values map[string]any) map[string]any {
	out := make(map[string]any)
	for _, attr := range cfg.Attributes() {
		if attr.Lifecycle() != model.LifecyclePersist {
			continue
		}
		if v, ok := values[attr.Name()]; ok && v != nil {
			out[attr.Name()] = v
		}
	}
	return out
}

// restore keeps the decoded values of persistent attributes of cfg, converted
// to their declared types. Values that no longer fit are dropped.
func restore(cfg *model.Configuration, raw map[string]any, logger *slog.Logger) map[string]any {
	out := make(map[string]any, len(raw))
	for _, attr := range cfg.Attributes() {
		if attr.Lifecycle() != model.LifecyclePersist {
			continue
		}
		v, ok := raw[attr.Name()]
		if !ok {
			continue
		}
		coerced, err := attr.Type().Coerce(v)
		if err != nil {
			logger.Warn("dropping stored value", "layer", cfg.Name(), "attribute", attr.Name(), "error", err)
			continue
		}
		out[attr.Name()] = coerced
	}
	return out
}
