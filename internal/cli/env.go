package cli

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/aretw0/turing"
	"github.com/aretw0/turing/internal/config"
	"github.com/aretw0/turing/internal/logging"
	"github.com/aretw0/turing/pkg/observability"
)

// Env bundles what every command needs: configuration, logger and machine library.
type Env struct {
	Config  *config.Config
	Logger  *slog.Logger
	Library *turing.Library

	closers []io.Closer
}

// Setup loads configuration, builds the logger and opens the machine library.
// An explicit configPath must exist; the default one may be missing.
func Setup(configPath string, overrides config.Overrides, opts ...turing.Option) (*Env, error) {
	required := configPath != ""
	if configPath == "" {
		configPath = config.DefaultPath
	}
	cfg, err := config.Load(configPath, required, overrides)
	if err != nil {
		return nil, err
	}

	env := &Env{Config: cfg}
	env.Logger, err = env.newLogger()
	if err != nil {
		return nil, err
	}

	opts = append([]turing.Option{
		turing.WithLogger(env.Logger),
		turing.WithLifecycleHooks(observability.LogHooks(env.Logger)),
	}, opts...)

	env.Library, err = turing.New(cfg.Dir, opts...)
	if err != nil {
		env.Close()
		return nil, err
	}
	return env, nil
}

func (e *Env) newLogger() (*slog.Logger, error) {
	level, err := logging.ParseLevel(e.Config.LogLevel)
	if err != nil {
		return nil, err
	}
	if e.Config.LogFile == "" {
		return logging.New(level), nil
	}
	f, err := os.OpenFile(e.Config.LogFile, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}
	e.closers = append(e.closers, f)
	return logging.WithFile(level, f), nil
}

// Close releases files and connections opened for the command.
func (e *Env) Close() error {
	var errs []error
	for i := len(e.closers) - 1; i >= 0; i-- {
		errs = append(errs, e.closers[i].Close())
	}
	e.closers = nil
	return errors.Join(errs...)
}
