// Package app wires the stores and the session engine into one application state.
package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/verte-zerg/tally/internal/clock"
	"github.com/verte-zerg/tally/internal/history"
	"github.com/verte-zerg/tally/internal/registry"
	"github.com/verte-zerg/tally/internal/session"
	"github.com/verte-zerg/tally/internal/settings"
	"github.com/verte-zerg/tally/internal/store"
	"github.com/verte-zerg/tally/internal/store/redis"
)

// Backend names accepted by Options.Backend.
const (
	BackendSQLite = "sqlite"
	BackendMemory = "memory"
	BackendRedis  = "redis"
)

// Backends lists the valid backend names.
var Backends = []string{BackendSQLite, BackendMemory, BackendRedis}

// Options configures Open.
type Options struct {
	Backend      string
	DBPath       string
	Redis        redis.Config
	HistoryLimit int
	Logger       *slog.Logger
	Clock        clock.Clock
}

// App holds every piece of application state.
type App struct {
	Adapter  *store.Adapter
	Registry *registry.Registry
	Settings *settings.Store
	History  *history.Store
	Engine   *session.Engine

	backend store.Backend
	logger  *slog.Logger
}

// Open builds the configured backend and loads all stores from it.
func Open(ctx context.Context, opts Options) (*App, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	clk := opts.Clock
	if clk == nil {
		clk = clock.Real{}
	}
	backend, err := openBackend(opts)
	if err != nil {
		return nil, err
	}
	logger.InfoContext(ctx, "storage opened", slog.String("backend", backendName(opts.Backend)))
	return build(ctx, backend, opts.HistoryLimit, clk, logger), nil
}

// New builds an App on an already opened backend.
func New(ctx context.Context, backend store.Backend, historyLimit int, clk clock.Clock, logger *slog.Logger) *App {
	return build(ctx, backend, historyLimit, clk, logger)
}

func build(ctx context.Context, backend store.Backend, historyLimit int, clk clock.Clock, logger *slog.Logger) *App {
	adapter := store.NewAdapter(backend, logger)
	reg := registry.New(ctx, adapter, logger)
	set := settings.New(ctx, adapter, logger)
	hist := history.New(ctx, adapter, logger, historyLimit)
	return &App{
		Adapter:  adapter,
		Registry: reg,
		Settings: set,
		History:  hist,
		Engine:   session.New(adapter, reg, set, hist, clk, logger),
		backend:  backend,
		logger:   logger,
	}
}

func backendName(name string) string {
	if name == "" {
		return BackendSQLite
	}
	return name
}

func openBackend(opts Options) (store.Backend, error) {
	switch backendName(opts.Backend) {
	case BackendSQLite:
		if opts.DBPath == "" {
			return nil, fmt.Errorf("sqlite backend requires a database path")
		}
		st, err := store.Open(opts.DBPath)
		if err != nil {
			return nil, fmt.Errorf("opening sqlite store: %w", err)
		}
		return st, nil
	case BackendMemory:
		return store.NewMemory(), nil
	case BackendRedis:
		st, err := redis.New(opts.Redis)
		if err != nil {
			return nil, fmt.Errorf("opening redis store: %w", err)
		}
		return st, nil
	default:
		return nil, fmt.Errorf("unknown backend %q (want one of %v)", opts.Backend, Backends)
	}
}

// Reset erases every persisted collection and returns all stores and the
// engine to their initial state. Confirming the action is the caller's job.
func (a *App) Reset(ctx context.Context) error {
	if err := a.Adapter.Clear(ctx, store.AllKeys...); err != nil {
		return fmt.Errorf("clearing storage: %w", err)
	}
	a.Registry.Reset()
	a.Settings.Reset()
	a.History.Reset()
	a.Engine.Reset()
	a.logger.InfoContext(ctx, "all data reset")
	return nil
}

// Close releases the backend.
func (a *App) Close() error {
	return a.backend.Close()
}
