package cli

import (
	"context"
	"encoding/base64"
	"fmt"

	"github.com/aretw0/turing/internal/config"
	"github.com/aretw0/turing/pkg/adapters/file"
	"github.com/aretw0/turing/pkg/adapters/memory"
	"github.com/aretw0/turing/pkg/adapters/redis"
	"github.com/aretw0/turing/pkg/adapters/sqlite"
	"github.com/aretw0/turing/pkg/persistence/middleware"
	"github.com/aretw0/turing/pkg/ports"
	"github.com/aretw0/turing/pkg/session"
)

// OpenStore builds the RunStore selected by the configuration, sealed when an
// encryption key is configured.
// The redis backend also returns a distributed locker sharing its client.
func OpenStore(ctx context.Context, cfg config.StoreConfig) (ports.RunStore, ports.DistributedLocker, func() error, error) {
	store, locker, closeFn, err := openBackend(ctx, cfg)
	if err != nil || cfg.EncryptionKey == "" {
		return store, locker, closeFn, err
	}

	key, err := base64.StdEncoding.DecodeString(cfg.EncryptionKey)
	if err != nil {
		closeFn()
		return nil, nil, nil, fmt.Errorf("invalid store encryption key: %w", err)
	}
	mw, err := middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: key})
	if err != nil {
		closeFn()
		return nil, nil, nil, err
	}
	return middleware.Chain(store, mw), locker, closeFn, nil
}

func openBackend(ctx context.Context, cfg config.StoreConfig) (ports.RunStore, ports.DistributedLocker, func() error, error) {
	noop := func() error { return nil }

	switch cfg.Backend {
	case config.StoreMemory, "":
		return memory.NewStore(), nil, noop, nil
	case config.StoreFile:
		return file.New(cfg.Path), nil, noop, nil
	case config.StoreSQLite:
		path := cfg.Path
		if path == "" {
			path = "turing.db"
		}
		store, err := sqlite.Open(path)
		if err != nil {
			return nil, nil, nil, err
		}
		return store, nil, store.Close, nil
	case config.StoreRedis:
		r := cfg.Redis
		store := redis.New(r.Addr, r.Password, r.DB,
			redis.WithPrefix(r.Prefix+"run:"),
			redis.WithTTL(r.TTL),
		)
		if err := store.Client().Ping(ctx).Err(); err != nil {
			store.Close()
			return nil, nil, nil, fmt.Errorf("failed to connect to redis at %s: %w", r.Addr, err)
		}
		return store, redis.NewLocker(store.Client(), r.Prefix), store.Close, nil
	}
	return nil, nil, nil, fmt.Errorf("unknown store backend %q", cfg.Backend)
}

// Sessions opens the configured store and returns a session manager over it.
// The store is closed by Env.Close.
func (e *Env) Sessions(ctx context.Context, opts ...session.Option) (*session.Manager, error) {
	store, locker, closeFn, err := OpenStore(ctx, e.Config.Store)
	if err != nil {
		return nil, err
	}
	e.closers = append(e.closers, closerFunc(closeFn))

	base := []session.Option{
		session.WithLogger(e.Logger),
		session.WithWindow(e.Config.Limits.Window),
		session.WithEngineOptions(e.Library.EngineOptions()...),
	}
	if locker != nil {
		base = append(base, session.WithLocker(locker, e.Config.Store.Redis.LockTTL))
	}

	e.Logger.Info("Run store ready", "backend", e.Config.Store.Backend)
	return session.NewManager(store, e.Library.Loader(), append(base, opts...)...), nil
}

type closerFunc func() error

func (f closerFunc) Close() error { return f() }
