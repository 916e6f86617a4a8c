package turing

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/aretw0/turing/internal/logging"
	"github.com/aretw0/turing/internal/runtime"
	loamAdapter "github.com/aretw0/turing/pkg/adapters/loam"
	"github.com/aretw0/turing/pkg/adapters/memory"
	"github.com/aretw0/turing/pkg/domain"
	"github.com/aretw0/turing/pkg/machine"
	"github.com/aretw0/turing/pkg/ports"
)

// ErrNotWatchable is returned by Watch when the loader cannot report changes.
var ErrNotWatchable = errors.New("machine loader does not support watching")

// Library is the high-level entry point: a set of named machines plus the
// options every engine built from them shares.
type Library struct {
	loader ports.MachineLoader
	hooks  domain.LifecycleHooks
	logger *slog.Logger
	dedup  bool
	Name   string
}

// Option defines a functional option for configuring the Library.
type Option func(*Library)

// WithLifecycleHooks registers observability hooks on every engine.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(l *Library) {
		l.hooks = l.hooks.Merge(hooks)
	}
}

// WithLoader injects a custom MachineLoader, bypassing the default initialization.
func WithLoader(loader ports.MachineLoader) Option {
	return func(l *Library) {
		l.loader = loader
	}
}

// WithLogger sets a custom structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(l *Library) {
		l.logger = logger
	}
}

// WithoutDeduplication keeps equal configurations apart in nondeterministic searches.
func WithoutDeduplication() Option {
	return func(l *Library) {
		l.dedup = false
	}
}

// New opens a machine library.
// With an empty dir the built-in machines are used; otherwise dir is read as a
// Loam repository (Markdown front matter, JSON or YAML documents).
// If WithLoader is provided, dir only names the library.
func New(dir string, opts ...Option) (*Library, error) {
	lib := &Library{dedup: true}
	for _, opt := range opts {
		opt(lib)
	}

	if lib.loader == nil {
		var err error
		if dir == "" {
			lib.Name = "builtin"
			lib.loader, err = memory.NewBuiltinLoader()
		} else {
			lib.loader, err = loamAdapter.Open(dir)
		}
		if err != nil {
			return nil, fmt.Errorf("failed to open machine library: %w", err)
		}
	}
	if lib.Name == "" {
		lib.Name = dir
	}

	if lib.logger == nil {
		lib.logger = logging.NewNop()
	}
	if lib.Name != "" {
		lib.logger = lib.logger.With("library", lib.Name)
	}
	return lib, nil
}

// Loader returns the underlying MachineLoader.
func (l *Library) Loader() ports.MachineLoader {
	return l.loader
}

// Machines lists the machine names, sorted.
func (l *Library) Machines(ctx context.Context) ([]string, error) {
	return l.loader.List(ctx)
}

// Definition returns the authored definition of a machine.
func (l *Library) Definition(ctx context.Context, name string) (*machine.Definition, error) {
	return l.loader.Get(ctx, name)
}

// Table compiles a machine.
func (l *Library) Table(ctx context.Context, name string) (*domain.Table, error) {
	def, err := l.loader.Get(ctx, name)
	if err != nil {
		return nil, err
	}
	return def.Compile()
}

// EngineOptions returns the options the Library applies to the engines it builds.
func (l *Library) EngineOptions() []runtime.EngineOption {
	opts := []runtime.EngineOption{
		runtime.WithLifecycleHooks(l.hooks),
		runtime.WithLogger(l.logger),
	}
	if !l.dedup {
		opts = append(opts, runtime.WithoutDeduplication())
	}
	return opts
}

// Engine builds a deterministic engine over one input per tape.
func (l *Library) Engine(ctx context.Context, name string, inputs ...string) (*runtime.MultiTapeEngine, error) {
	table, err := l.Table(ctx, name)
	if err != nil {
		return nil, err
	}
	return runtime.NewMultiTapeEngine(table, inputs, l.EngineOptions()...)
}

// Search builds a nondeterministic search started on input.
// Extra options (WithHistory) are appended to the Library's own.
func (l *Library) Search(ctx context.Context, name, input string, opts ...runtime.EngineOption) (*runtime.Nondeterministic, error) {
	table, err := l.Table(ctx, name)
	if err != nil {
		return nil, err
	}
	ntm, err := runtime.NewNondeterministic(table, append(l.EngineOptions(), opts...)...)
	if err != nil {
		return nil, err
	}
	if err := ntm.Start(input); err != nil {
		return nil, err
	}
	return ntm, nil
}

// Watch returns a channel that signals when the underlying library changes.
func (l *Library) Watch(ctx context.Context) (<-chan struct{}, error) {
	if w, ok := l.loader.(ports.Watchable); ok {
		return w.Watch(ctx)
	}
	return nil, ErrNotWatchable
}
