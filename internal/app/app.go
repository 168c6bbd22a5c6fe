package app

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/Gopher0727/Himo/config"
	"github.com/Gopher0727/Himo/internal/pkg/kv"
	"github.com/Gopher0727/Himo/internal/pkg/redis"
	"github.com/Gopher0727/Himo/internal/service"
	"github.com/Gopher0727/Himo/internal/session"
	"github.com/Gopher0727/Himo/internal/storage"
	"github.com/Gopher0727/Himo/internal/store"
	logger "github.com/Gopher0727/Himo/middleware/log"
	"github.com/Gopher0727/Himo/utils/ratelimit"
)

// App wires configuration, storage and services together.
type App struct {
	Config   *config.Config
	Logger   *logger.Logger
	Store    *store.Store
	Services *service.Services
}

// New opens the configured backend, loads (and if needed seeds) the store and
// builds the services. Close releases the backend.
func New(ctx context.Context, cfg *config.Config, log *logger.Logger) (*App, error) {
	backend, limiter, err := openBackend(cfg, log.Logger)
	if err != nil {
		return nil, err
	}
	return build(ctx, cfg, log, backend, limiter)
}

// build loads the store over an opened backend. On failure the backend is
// closed before returning.
func build(ctx context.Context, cfg *config.Config, log *logger.Logger, backend kv.Backend, limiter ratelimit.Limiter) (*App, error) {
	st := store.New(backend,
		store.WithKeyFunc(cfg.Storage.Key),
		store.WithSeed(store.DefaultSeed(cfg.Admin.Username, cfg.Admin.UniqueID)),
		store.WithLogger(log.Named("store")),
	)
	if err := st.Load(ctx); err != nil {
		closeBackend(ctx, log, backend)
		return nil, fmt.Errorf("failed to load store: %w", err)
	}

	opts, err := service.OptionsFromConfig(cfg, limiter, log.Named("service"))
	if err != nil {
		closeBackend(ctx, log, backend)
		return nil, err
	}

	return &App{
		Config:   cfg,
		Logger:   log,
		Store:    st,
		Services: service.New(st, opts),
	}, nil
}

func closeBackend(ctx context.Context, log *logger.Logger, backend kv.Backend) {
	if err := backend.Close(); err != nil {
		log.ErrorContext(ctx, "Failed to close backend", zap.Error(err))
	}
}

// NewSession returns a signed-out session over the app's services.
func (a *App) NewSession() *session.Session {
	return session.New(a.Services, a.Logger)
}

func (a *App) Close() error {
	return a.Store.Close()
}

// openBackend picks the durable store and a matching rate limiter: Redis
// counters when the data lives in Redis, in-process counters otherwise.
func openBackend(cfg *config.Config, log *zap.Logger) (kv.Backend, ratelimit.Limiter, error) {
	switch cfg.Storage.Driver {
	case "memory":
		return kv.NewMemory(), ratelimit.NewMemoryLimiter(log), nil
	case "redis":
		client, err := redis.NewClient(&cfg.Redis)
		if err != nil {
			return nil, nil, err
		}
		return client, ratelimit.NewRedisLimiter(client.Redis(), log, cfg.RateLimit.FailOpen), nil
	case "postgres":
		db, err := storage.InitPostgres(&cfg.Postgres)
		if err != nil {
			return nil, nil, err
		}
		backend, err := storage.NewKV(db)
		if err != nil {
			return nil, nil, err
		}
		return backend, ratelimit.NewMemoryLimiter(log), nil
	case "sqlite":
		db, err := storage.InitSQLite(cfg.SQLite.Path)
		if err != nil {
			return nil, nil, err
		}
		backend, err := storage.NewKV(db)
		if err != nil {
			return nil, nil, err
		}
		return backend, ratelimit.NewMemoryLimiter(log), nil
	}
	return nil, nil, fmt.Errorf("%w: %q", config.ErrUnknownDriver, cfg.Storage.Driver)
}
