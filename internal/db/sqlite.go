package db

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	_ "github.com/mattn/go-sqlite3"
	_ "modernc.org/sqlite"
)

const (
	// DriverCGo is github.com/mattn/go-sqlite3.
	DriverCGo = "sqlite3"
	// DriverPure is modernc.org/sqlite.
	DriverPure = "sqlite"

	MemoryPath = ":memory:"
)

type SQLite struct {
	driver string
	path   string
	conn   *sql.DB
}

func NewSQLite(driver, path string) *SQLite {
	if driver == "" {
		driver = DriverCGo
	}
	return &SQLite{
		driver: driver,
		path:   path,
		conn:   nil,
	}
}

// InitDB opens the connection pool. Tables are owned and created by the
// stores built on top of it.
func (s *SQLite) InitDB(ctx context.Context) error {
	conn, err := sql.Open(s.driver, s.dsn())
	if err != nil {
		return fmt.Errorf("open %s database %q: %w", s.driver, s.path, err)
	}

	// Every connection to :memory: is a separate database.
	if s.path == MemoryPath {
		conn.SetMaxOpenConns(1)
	}

	if err := conn.PingContext(ctx); err != nil {
		conn.Close()
		return fmt.Errorf("connect to %s database %q: %w", s.driver, s.path, err)
	}

	s.conn = conn
	dbLogger.Info().Str("driver", s.driver).Str("path", s.path).Msg("Database initialized")
	return nil
}

// dsn carries the pragmas in the connection string so that every pooled
// connection gets them, not only the first one.
func (s *SQLite) dsn() string {
	pragmas := [][2]string{
		{"foreign_keys", "1"},
		{"busy_timeout", "5000"},
	}
	if s.path != MemoryPath {
		pragmas = append(pragmas, [2]string{"journal_mode", "WAL"})
	}

	params := make([]string, 0, len(pragmas))
	for _, p := range pragmas {
		switch s.driver {
		case DriverPure:
			params = append(params, "_pragma="+p[0]+"("+p[1]+")")
		default:
			params = append(params, "_"+p[0]+"="+p[1])
		}
	}

	name := s.path
	if s.driver != DriverPure {
		name = "file:" + name
	}
	return name + "?" + strings.Join(params, "&")
}

func (s *SQLite) Driver() string {
	return s.driver
}

func (s *SQLite) Close() error {
	if s.conn != nil {
		return s.conn.Close()
	}
	return nil
}

func (s *SQLite) Ping(ctx context.Context) error {
	if s.conn == nil {
		return fmt.Errorf("database %q is not initialized", s.path)
	}
	return s.conn.PingContext(ctx)
}

func (s *SQLite) QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	dbLogger.Debug().Str("query", query).Msg("Query")
	return s.conn.QueryContext(ctx, query, args...)
}

func (s *SQLite) QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row {
	dbLogger.Debug().Str("query", query).Msg("QueryRow")
	return s.conn.QueryRowContext(ctx, query, args...)
}

func (s *SQLite) ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error) {
	dbLogger.Debug().Str("query", query).Msg("Exec")
	return s.conn.ExecContext(ctx, query, args...)
}
