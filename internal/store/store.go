// Package store is the SQLite-backed ledger store: durable state for
// customers, accounts, devices, transactions, auth logs, and risk tags.
package store

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"
)

//go:embed schema.sql
var schemaSQL string

// Store wraps the ledger database.
type Store struct {
	db *sql.DB
}

// Querier is the subset of database/sql shared by *sql.DB and *sql.Tx, so
// ledger operations can run either standalone or inside a unit of work.
type Querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Open opens (creating if needed) the ledger database at path and applies
// the schema.
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating database dir: %w", err)
		}
	}

	// Units of work start as writers (_txlock=immediate) so concurrent
	// resolutions queue on the busy timeout instead of hitting lock-upgrade
	// conflicts mid-transaction.
	db, err := sql.Open("sqlite3", path+"?_fk=1&_busy_timeout=5000&_txlock=immediate")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) migrate() error {
	if _, err := s.db.Exec(schemaSQL); err != nil {
		return fmt.Errorf("applying schema: %w", err)
	}
	return nil
}

// Begin starts a unit of work. The caller must Commit or Rollback.
func (s *Store) Begin(ctx context.Context) (*sql.Tx, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning unit of work: %w", err)
	}
	return tx, nil
}

// DB returns the underlying handle for read-only queries outside a unit of
// work.
func (s *Store) DB() Querier {
	return s.db
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}
