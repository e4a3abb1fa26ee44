package db

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/tracelog"

	"hero-service/internal/hero"
)

type PoolOptions struct {
	MaxConns int32
	// Echo logs every statement. Traces are written at info level or
	// above so they show under the default LOG_LEVEL.
	Echo   bool
	Logger *slog.Logger
}

// Connect opens the process-wide pool and verifies the server answers.
func Connect(ctx context.Context, dsn string, opts PoolOptions) (*pgxpool.Pool, error) {
	if dsn == "" {
		return nil, errors.New("postgres dsn is required")
	}
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse postgres dsn: %w", err)
	}
	cfg.MaxConnLifetime = 30 * time.Minute
	cfg.MaxConnIdleTime = 5 * time.Minute
	if opts.MaxConns > 0 {
		cfg.MaxConns = opts.MaxConns
	}
	if opts.Echo && opts.Logger != nil {
		cfg.ConnConfig.Tracer = &tracelog.TraceLog{
			Logger:   slogTracer(opts.Logger),
			LogLevel: tracelog.LogLevelDebug,
		}
	}

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return pool, nil
}

func slogTracer(log *slog.Logger) tracelog.LoggerFunc {
	return func(ctx context.Context, level tracelog.LogLevel, msg string, data map[string]any) {
		attrs := make([]slog.Attr, 0, len(data))
		for k, v := range data {
			attrs = append(attrs, slog.Any(k, v))
		}
		lvl := slogLevel(level)
		if lvl < slog.LevelInfo {
			lvl = slog.LevelInfo
		}
		log.LogAttrs(ctx, lvl, "pgx: "+msg, attrs...)
	}
}

func slogLevel(l tracelog.LogLevel) slog.Level {
	switch l {
	case tracelog.LogLevelError:
		return slog.LevelError
	case tracelog.LogLevelWarn:
		return slog.LevelWarn
	case tracelog.LogLevelInfo:
		return slog.LevelInfo
	default:
		return slog.LevelDebug
	}
}

// PostgresStore is the pgxpool-backed hero.Store. Every call acquires its
// own connection from the pool and releases it before returning.
type PostgresStore struct {
	pool *pgxpool.Pool
}

func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

// session acquires a pooled connection for the duration of fn.
func (s *PostgresStore) session(ctx context.Context, fn func(*pgxpool.Conn) error) error {
	conn, err := s.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()
	return fn(conn)
}

func (s *PostgresStore) Create(ctx context.Context, h hero.Hero) (hero.Hero, error) {
	if err := h.Validate(); err != nil {
		return hero.Hero{}, err
	}
	var out hero.Hero
	err := s.session(ctx, func(c *pgxpool.Conn) error {
		return c.QueryRow(ctx,
			`insert into hero(name, secret_name, age) values($1,$2,$3) returning id, name, secret_name, age`,
			h.Name, h.SecretName, h.Age,
		).Scan(&out.ID, &out.Name, &out.SecretName, &out.Age)
	})
	if err != nil {
		return hero.Hero{}, fmt.Errorf("create hero: %w", err)
	}
	return out, nil
}

func (s *PostgresStore) List(ctx context.Context) ([]hero.Hero, error) {
	out := []hero.Hero{}
	err := s.session(ctx, func(c *pgxpool.Conn) error {
		rows, err := c.Query(ctx, `select id, name, secret_name, age from hero order by id asc`)
		if err != nil {
			return err
		}
		out, err = pgx.CollectRows(rows, func(row pgx.CollectableRow) (hero.Hero, error) {
			var h hero.Hero
			err := row.Scan(&h.ID, &h.Name, &h.SecretName, &h.Age)
			return h, err
		})
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("list heroes: %w", err)
	}
	if out == nil {
		out = []hero.Hero{}
	}
	return out, nil
}

func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.session(ctx, func(c *pgxpool.Conn) error {
		return c.Ping(ctx)
	})
}

// EnsureSchema creates the hero table and its indexes when missing. The
// advisory lock serializes concurrent starts against the same database.
func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	err := s.session(ctx, func(c *pgxpool.Conn) error {
		return pgx.BeginFunc(ctx, c, func(tx pgx.Tx) error {
			if _, err := tx.Exec(ctx, `select pg_advisory_xact_lock($1)`, schemaLockKey); err != nil {
				return fmt.Errorf("schema lock: %w", err)
			}
			for _, stmt := range postgresSchema {
				if _, err := tx.Exec(ctx, stmt); err != nil {
					return err
				}
			}
			return nil
		})
	})
	if err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}
	return nil
}

func (s *PostgresStore) Close() {
	s.pool.Close()
}
