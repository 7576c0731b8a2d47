package session

import (
	"context"
	"fmt"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/sqlite3"
	"github.com/golang-module/carbon/v2"

	"github.com/debemdeboas/the-blog/internal/cache"
	"github.com/debemdeboas/the-blog/internal/db"
)

// Store maps a visitor token to whether that visitor has seen the welcome
// screen. Unknown tokens are unacknowledged.
type Store interface {
	Init(ctx context.Context) error
	Acknowledged(ctx context.Context, token string) (bool, error)
	Acknowledge(ctx context.Context, token string) error
}

type MemoryStore struct { // implements Store
	visitors *cache.Cache[string, bool]
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{visitors: cache.NewCache[string, bool]()}
}

func (s *MemoryStore) Init(context.Context) error { return nil }

func (s *MemoryStore) Acknowledged(_ context.Context, token string) (bool, error) {
	ack, _ := s.visitors.Get(token)
	return ack, nil
}

func (s *MemoryStore) Acknowledge(_ context.Context, token string) error {
	s.visitors.Set(token, true)
	return nil
}

const (
	visitorsTable     = "visitors"
	colToken          = "token"
	colAcknowledgedAt = "acknowledged_at"
)

const sqlCreateVisitorsTable = `
CREATE TABLE IF NOT EXISTS visitors (
    token TEXT PRIMARY KEY,
    acknowledged_at TEXT NOT NULL
);`

var dialect = goqu.Dialect("sqlite3")

// DBStore keeps acknowledged visitors in the blog database so the welcome
// state survives restarts.
type DBStore struct { // implements Store
	db db.DB
}

func NewDBStore(db db.DB) *DBStore {
	return &DBStore{db: db}
}

func (s *DBStore) Init(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, sqlCreateVisitorsTable); err != nil {
		return fmt.Errorf("error creating visitors table: %w", err)
	}
	return nil
}

func (s *DBStore) Acknowledged(ctx context.Context, token string) (bool, error) {
	query, args, err := dialect.From(visitorsTable).
		Prepared(true).
		Select(goqu.COUNT(goqu.Star())).
		Where(goqu.C(colToken).Eq(token)).
		ToSQL()
	if err != nil {
		return false, fmt.Errorf("error building visitor lookup: %w", err)
	}

	var count int
	if err := s.db.QueryRowContext(ctx, query, args...).Scan(&count); err != nil {
		return false, fmt.Errorf("error looking up visitor: %w", err)
	}
	return count > 0, nil
}

func (s *DBStore) Acknowledge(ctx context.Context, token string) error {
	query, args, err := dialect.Insert(visitorsTable).
		Prepared(true).
		Rows(goqu.Record{
			colToken:          token,
			colAcknowledgedAt: carbon.Now(carbon.UTC).ToDateTimeString(),
		}).
		OnConflict(goqu.DoNothing()).
		ToSQL()
	if err != nil {
		return fmt.Errorf("error building visitor insert: %w", err)
	}

	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("error saving visitor: %w", err)
	}
	return nil
}
