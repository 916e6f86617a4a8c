package runtime

import (
	"log/slog"

	"github.com/aretw0/turing/internal/logging"
	"github.com/aretw0/turing/pkg/domain"
)

type options struct {
	hooks   domain.LifecycleHooks
	logger  *slog.Logger
	history bool
	dedup   bool
}

func defaultOptions() options {
	return options{
		logger: logging.NewNop(),
		dedup:  true,
	}
}

// EngineOption configures any of the engines in this package.
type EngineOption func(*options)

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) EngineOption {
	return func(o *options) {
		o.hooks = hooks
	}
}

// WithLogger sets a structured logger. Engines only log halts and stuck runs at debug level.
func WithLogger(logger *slog.Logger) EngineOption {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithHistory makes a nondeterministic search keep every generation,
// so a computation tree can be drawn from parent links.
func WithHistory() EngineOption {
	return func(o *options) {
		o.history = true
	}
}

// WithoutDeduplication keeps identical configurations as separate branches.
// By default a generation is a set and equal configurations are merged.
func WithoutDeduplication() EngineOption {
	return func(o *options) {
		o.dedup = false
	}
}
