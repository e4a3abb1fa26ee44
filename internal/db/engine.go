// Package db opens the storage engine the service runs against and
// implements hero.Store on top of it.
package db

import (
	"context"
	"fmt"
	"log/slog"

	"hero-service/internal/config"
	"hero-service/internal/hero"
	"hero-service/internal/memory"
)

// Engine is the process-wide storage handle. It is created once at startup
// and closed at shutdown.
type Engine interface {
	hero.Store
	// EnsureSchema creates missing tables. It is safe to call repeatedly.
	EnsureSchema(ctx context.Context) error
	Close()
}

var (
	_ Engine = (*PostgresStore)(nil)
	_ Engine = (*SQLiteStore)(nil)
	_ Engine = (*memory.Store)(nil)
)

// Open connects to the backend selected by cfg.Driver.
func Open(ctx context.Context, cfg config.Config, log *slog.Logger) (Engine, error) {
	switch cfg.Driver {
	case config.DriverPostgres:
		pool, err := Connect(ctx, cfg.Postgres.URL(), PoolOptions{
			MaxConns: cfg.MaxConns,
			Echo:     cfg.Echo,
			Logger:   log,
		})
		if err != nil {
			return nil, err
		}
		return NewPostgresStore(pool), nil
	case config.DriverSQLite:
		s, err := OpenSQLite(ctx, cfg.SQLitePath)
		if err != nil {
			return nil, err
		}
		return s, nil
	case config.DriverMemory:
		return memory.NewStore(), nil
	default:
		return nil, fmt.Errorf("unsupported driver %q", cfg.Driver)
	}
}
