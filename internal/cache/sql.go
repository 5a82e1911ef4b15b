package cache

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres"
	_ "github.com/doug-martin/goqu/v9/dialect/sqlite3"
	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"
)

const searchCacheTable = "search_cache"

const createSearchCacheTable = `CREATE TABLE IF NOT EXISTS search_cache (
	actor_id   TEXT NOT NULL,
	scope      TEXT NOT NULL,
	data       TEXT NOT NULL,
	expires_at TEXT NOT NULL,
	PRIMARY KEY (actor_id, scope)
)`

// database/sql driver name -> goqu dialect
var sqlDialects = map[string]string{
	"sqlite":   "sqlite3",
	"postgres": "postgres",
}

type SQLConfig struct {
	Driver string
	DSN    string
}

// SQLStore keeps one row per (actor, scope) in the search_cache table.
type SQLStore struct {
	db      *sql.DB
	dialect goqu.DialectWrapper
}

func OpenSQLStore(ctx context.Context, cfg SQLConfig) (*SQLStore, error) {
	dialect, ok := sqlDialects[cfg.Driver]
	if !ok {
		return nil, fmt.Errorf("unsupported cache driver %q", cfg.Driver)
	}

	db, err := sql.Open(cfg.Driver, cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("failed to open cache database: %w", err)
	}
	if cfg.Driver == "sqlite" {
		db.SetMaxOpenConns(1)
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to cache database: %w", err)
	}
	if _, err := db.ExecContext(ctx, createSearchCacheTable); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create %s table: %w", searchCacheTable, err)
	}

	return &SQLStore{db: db, dialect: goqu.Dialect(dialect)}, nil
}

func (s *SQLStore) Get(ctx context.Context, key Key) (Record, bool, error) {
	query, args, err := s.dialect.From(searchCacheTable).
		Select("data", "expires_at").
		Where(keyExpr(key)).
		Prepared(true).
		ToSQL()
	if err != nil {
		return Record{}, false, err
	}

	var data, expiresAt string
	err = s.db.QueryRowContext(ctx, query, args...).Scan(&data, &expiresAt)
	if errors.Is(err, sql.ErrNoRows) {
		return Record{}, false, nil
	}
	if err != nil {
		return Record{}, false, err
	}

	expires, err := time.Parse(time.RFC3339Nano, expiresAt)
	if err != nil {
		return Record{}, false, fmt.Errorf("invalid expires_at %q: %w", expiresAt, err)
	}
	return Record{Data: []byte(data), ExpiresAt: expires}, true, nil
}

func (s *SQLStore) Set(ctx context.Context, key Key, rec Record) error {
	query, args, err := s.dialect.Insert(searchCacheTable).
		Rows(goqu.Record{
			"actor_id":   key.Actor,
			"scope":      string(key.Scope),
			"data":       string(rec.Data),
			"expires_at": rec.ExpiresAt.UTC().Format(time.RFC3339Nano),
		}).
		OnConflict(goqu.DoUpdate("actor_id, scope", goqu.Record{
			"data":       goqu.I("excluded.data"),
			"expires_at": goqu.I("excluded.expires_at"),
		})).
		Prepared(true).
		ToSQL()
	if err != nil {
		return err
	}

	_, err = s.db.ExecContext(ctx, query, args...)
	return err
}

func (s *SQLStore) Delete(ctx context.Context, key Key) error {
	query, args, err := s.dialect.Delete(searchCacheTable).
		Where(keyExpr(key)).
		Prepared(true).
		ToSQL()
	if err != nil {
		return err
	}

	_, err = s.db.ExecContext(ctx, query, args...)
	return err
}

func (s *SQLStore) Close() error {
	return s.db.Close()
}

func keyExpr(key Key) goqu.Ex {
	return goqu.Ex{
		"actor_id": key.Actor,
		"scope":    string(key.Scope),
	}
}
