package db

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"
	"path/filepath"
	"strings"

	_ "modernc.org/sqlite"

	"hero-service/internal/hero"
)

// SQLiteStore is a hero.Store over a single SQLite file.
type SQLiteStore struct {
	sqlDB *sql.DB
}

// OpenSQLite opens (or creates) the database at path. The handle keeps a
// single connection so writers never contend for the file lock.
func OpenSQLite(ctx context.Context, path string) (*SQLiteStore, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("sqlite path is required")
	}
	dsn, err := sqliteDSN(path)
	if err != nil {
		return nil, err
	}
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	sqlDB.SetMaxOpenConns(1)
	if err := sqlDB.PingContext(ctx); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	return &SQLiteStore{sqlDB: sqlDB}, nil
}

// session checks out a dedicated connection for the duration of fn.
func (s *SQLiteStore) session(ctx context.Context, fn func(*sql.Conn) error) error {
	conn, err := s.sqlDB.Conn(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Close()
	return fn(conn)
}

func (s *SQLiteStore) Create(ctx context.Context, h hero.Hero) (hero.Hero, error) {
	if err := h.Validate(); err != nil {
		return hero.Hero{}, err
	}
	var out hero.Hero
	err := s.session(ctx, func(c *sql.Conn) error {
		var age sql.NullInt64
		err := c.QueryRowContext(ctx,
			`insert into hero(name, secret_name, age) values(?,?,?) returning id, name, secret_name, age`,
			h.Name, h.SecretName, nullableAge(h.Age),
		).Scan(&out.ID, &out.Name, &out.SecretName, &age)
		out.Age = ageFromNull(age)
		return err
	})
	if err != nil {
		return hero.Hero{}, fmt.Errorf("create hero: %w", err)
	}
	return out, nil
}

func (s *SQLiteStore) List(ctx context.Context) ([]hero.Hero, error) {
	out := []hero.Hero{}
	err := s.session(ctx, func(c *sql.Conn) error {
		rows, err := c.QueryContext(ctx, `select id, name, secret_name, age from hero order by id asc`)
		if err != nil {
			return err
		}
		defer rows.Close()
		for rows.Next() {
			var h hero.Hero
			var age sql.NullInt64
			if err := rows.Scan(&h.ID, &h.Name, &h.SecretName, &age); err != nil {
				return err
			}
			h.Age = ageFromNull(age)
			out = append(out, h)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, fmt.Errorf("list heroes: %w", err)
	}
	return out, nil
}

func (s *SQLiteStore) Ping(ctx context.Context) error {
	return s.session(ctx, func(c *sql.Conn) error {
		return c.PingContext(ctx)
	})
}

func (s *SQLiteStore) EnsureSchema(ctx context.Context) error {
	err := s.session(ctx, func(c *sql.Conn) error {
		tx, err := c.BeginTx(ctx, nil)
		if err != nil {
			return err
		}
		for _, stmt := range sqliteSchema {
			if _, err := tx.ExecContext(ctx, stmt); err != nil {
				_ = tx.Rollback()
				return err
			}
		}
		return tx.Commit()
	})
	if err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}
	return nil
}

func (s *SQLiteStore) Close() {
	_ = s.sqlDB.Close()
}

// sqliteDSN builds a file: URI for path. The path is made absolute and
// escaped so that '?' and '#' in file names are not read as URI syntax.
func sqliteDSN(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("resolve sqlite path: %w", err)
	}
	p := filepath.ToSlash(abs)
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	u := url.URL{
		Scheme:   "file",
		Path:     p,
		RawQuery: "_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&_pragma=synchronous(NORMAL)",
	}
	return u.String(), nil
}

func nullableAge(age *int) sql.NullInt64 {
	if age == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*age), Valid: true}
}

func ageFromNull(n sql.NullInt64) *int {
	if !n.Valid {
		return nil
	}
	return hero.IntPtr(int(n.Int64))
}
