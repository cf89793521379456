// Package sqlstore implements storage.Store on database/sql for Postgres (pgx) and SQLite (modernc).
// Queries are built with the ent dialect builder so one repository serves both dialects.
package sqlstore

import (
	"context"
	"database/sql"
	"fmt"
	"log"

	"altiora-api/internal/storage"

	"entgo.io/ent/dialect"
)

// querier is satisfied by both *sql.DB and *sql.Tx.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

// Store implements storage.Store.
type Store struct {
	*ApplicationRepo
	db *sql.DB
}

// New creates a Store for db speaking the given ent dialect (dialect.Postgres or dialect.SQLite).
func New(db *sql.DB, dialectName string) (*Store, error) {
	switch dialectName {
	case dialect.Postgres, dialect.SQLite:
	default:
		return nil, fmt.Errorf("sqlstore: unsupported dialect %q", dialectName)
	}
	return &Store{
		ApplicationRepo: &ApplicationRepo{q: db, dialect: dialectName},
		db:              db,
	}, nil
}

var _ storage.Store = (*Store)(nil)

// WithinTx runs fn inside a database transaction.
func (s *Store) WithinTx(ctx context.Context, fn func(repo storage.ApplicationRepository) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		log.Printf("Store: Error beginning transaction: %v", err)
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() // no-op after a successful commit

	if err := fn(&ApplicationRepo{q: tx, dialect: s.dialect, inTx: true}); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		log.Printf("Store: Error committing transaction: %v", err)
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: %v", storage.ErrConflict, err)
		}
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

// Ping verifies the database is reachable.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}
