package kv

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"
)

// SQL stores values in a single two-column table.
type SQL struct {
	db     *sql.DB
	getQ   string
	setQ   string
	removQ string
}

const createTable = `CREATE TABLE IF NOT EXISTS kv (key TEXT PRIMARY KEY, value TEXT NOT NULL)`

// OpenSQLite opens (creating when missing) the database file at path.
func OpenSQLite(ctx context.Context, path string) (*SQL, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)
	for _, pragma := range []string{"PRAGMA journal_mode=WAL", "PRAGMA busy_timeout=5000"} {
		if _, err := db.ExecContext(ctx, pragma); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("set pragma: %w", err)
		}
	}
	return newSQL(ctx, db,
		`SELECT value FROM kv WHERE key = ?`,
		`INSERT INTO kv (key, value) VALUES (?, ?) ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
		`DELETE FROM kv WHERE key = ?`)
}

// OpenPostgres connects using a lib/pq DSN.
func OpenPostgres(ctx context.Context, dsn string) (*SQL, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	return newSQL(ctx, db,
		`SELECT value FROM kv WHERE key = $1`,
		`INSERT INTO kv (key, value) VALUES ($1, $2) ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value`,
		`DELETE FROM kv WHERE key = $1`)
}

func newSQL(ctx context.Context, db *sql.DB, getQ, setQ, removeQ string) (*SQL, error) {
	if _, err := db.ExecContext(ctx, createTable); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create kv table: %w", err)
	}
	return &SQL{db: db, getQ: getQ, setQ: setQ, removQ: removeQ}, nil
}

func (s *SQL) Get(ctx context.Context, key string) ([]byte, error) {
	var v string
	err := s.db.QueryRowContext(ctx, s.getQ, key).Scan(&v)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("kv get %s: %w", key, err)
	}
	return []byte(v), nil
}

func (s *SQL) Set(ctx context.Context, key string, value []byte) error {
	if _, err := s.db.ExecContext(ctx, s.setQ, key, string(value)); err != nil {
		return fmt.Errorf("kv set %s: %w", key, err)
	}
	return nil
}

func (s *SQL) Remove(ctx context.Context, key string) error {
	if _, err := s.db.ExecContext(ctx, s.removQ, key); err != nil {
		return fmt.Errorf("kv remove %s: %w", key, err)
	}
	return nil
}

func (s *SQL) Close() error { return s.db.Close() }
