// Package app assembles the application's components from configuration.
//
// Setup builds the store stack once and hands it to whichever command
// is running; commands that need the model additionally call
// NewAssistant. A missing or unreachable database degrades to
// local-only operation instead of failing startup.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/askcampus/askcampus/internal/assistant"
	"github.com/askcampus/askcampus/internal/config"
	"github.com/askcampus/askcampus/internal/history"
	"github.com/askcampus/askcampus/internal/identity"
	"github.com/askcampus/askcampus/internal/knowledge"
	"github.com/askcampus/askcampus/internal/mirror"
	"github.com/askcampus/askcampus/internal/recorder"
)

const connectTimeout = 5 * time.Second

// App holds the assembled components.
type App struct {
	Config    *config.Config
	Logger    *slog.Logger
	Pool      *pgxpool.Pool // nil when the mirror is disabled or unreachable
	Local     *history.Store
	Mirror    *mirror.Store
	Recorder  *recorder.Recorder
	Knowledge *knowledge.Base
	Identity  *identity.Manager
}

// Setup builds the application from configuration.
func Setup(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	if logger == nil {
		logger = slog.Default()
	}

	base, err := knowledge.Load(cfg.KnowledgeBasePath, logger)
	if err != nil {
		return nil, fmt.Errorf("loading knowledge base: %w", err)
	}

	var pool *pgxpool.Pool
	if cfg.MirrorEnabled {
		pool = connectPool(ctx, cfg, logger)
	}

	local := history.New(cfg.HistoryDir, logger)
	remote := mirror.New(pool, logger)

	stateDir, err := identity.DefaultDir()
	if err != nil {
		return nil, fmt.Errorf("resolving state directory: %w", err)
	}

	return &App{
		Config:    cfg,
		Logger:    logger,
		Pool:      pool,
		Local:     local,
		Mirror:    remote,
		Recorder:  recorder.New(local, remote, logger),
		Knowledge: base,
		Identity:  identity.New(stateDir),
	}, nil
}

// connectPool opens the mirror database. Failure is not fatal: the
// recorder keeps every record locally and the mirror catches up on a
// later run.
func connectPool(ctx context.Context, cfg *config.Config, logger *slog.Logger) *pgxpool.Pool {
	connCtx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()

	pool, err := pgxpool.New(connCtx, cfg.PostgresConnectionString())
	if err != nil {
		logger.Warn("mirror database unavailable, running local-only", "error", err)
		return nil
	}
	if err := pool.Ping(connCtx); err != nil {
		pool.Close()
		logger.Warn("mirror database unreachable, running local-only",
			"host", cfg.PostgresHost, "error", err)
		return nil
	}

	logger.Debug("connected to mirror database", "host", cfg.PostgresHost, "db", cfg.PostgresDBName)
	return pool
}

// NewAssistant creates the Gemini-backed assistant. Requires an API key.
func (a *App) NewAssistant(ctx context.Context) (*assistant.Assistant, error) {
	gen, err := assistant.NewGeminiGenerator(ctx, a.Config)
	if err != nil {
		return nil, err
	}
	return assistant.New(gen, a.Knowledge, a.Logger), nil
}

// Close releases held resources.
func (a *App) Close() {
	if a.Pool != nil {
		a.Pool.Close()
	}
}
