package database

import (
	"context"
	"database/sql"
	"fmt"

	"entgo.io/ent/dialect"
)

// Migrate creates the applicants and application_essays tables.
// Safe to call multiple times - uses IF NOT EXISTS.
func Migrate(ctx context.Context, db *sql.DB, dialectName string) error {
	var statements []string
	switch dialectName {
	case dialect.Postgres:
		statements = postgresSchema
	case dialect.SQLite:
		statements = sqliteSchema
	default:
		return fmt.Errorf("no schema for dialect %q", dialectName)
	}

	for _, stmt := range statements {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to create schema: %w", err)
		}
	}
	return nil
}

var postgresSchema = []string{
	`CREATE TABLE IF NOT EXISTS applicants (
    id UUID PRIMARY KEY,
    first_name TEXT NOT NULL,
    last_name TEXT NOT NULL,
    email TEXT NOT NULL,
    phone TEXT,
    year TEXT NOT NULL DEFAULT '',
    major TEXT NOT NULL DEFAULT '',
    instagram TEXT NOT NULL DEFAULT '',
    linkedin TEXT NOT NULL DEFAULT '',
    portfolio TEXT NOT NULL DEFAULT '',
    how_hear TEXT NOT NULL DEFAULT '',
    divisions TEXT NOT NULL DEFAULT '[]',
    created_at TIMESTAMPTZ NOT NULL,
    updated_at TIMESTAMPTZ NOT NULL,
    CHECK (updated_at >= created_at)
)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS idx_applicants_email ON applicants(email)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS idx_applicants_phone ON applicants(phone)`,
	`CREATE INDEX IF NOT EXISTS idx_applicants_created_at ON applicants(created_at)`,
	`CREATE TABLE IF NOT EXISTS application_essays (
    applicant_id UUID PRIMARY KEY REFERENCES applicants(id) ON DELETE CASCADE,
    convince TEXT NOT NULL DEFAULT '',
    project TEXT NOT NULL DEFAULT '',
    reasons TEXT NOT NULL DEFAULT '',
    intent TEXT NOT NULL DEFAULT ''
)`,
}

// Timestamps are stored as fixed-width UTC text so that string order is time order.
var sqliteSchema = []string{
	`CREATE TABLE IF NOT EXISTS applicants (
    id TEXT PRIMARY KEY,
    first_name TEXT NOT NULL,
    last_name TEXT NOT NULL,
    email TEXT NOT NULL,
    phone TEXT,
    year TEXT NOT NULL DEFAULT '',
    major TEXT NOT NULL DEFAULT '',
    instagram TEXT NOT NULL DEFAULT '',
    linkedin TEXT NOT NULL DEFAULT '',
    portfolio TEXT NOT NULL DEFAULT '',
    how_hear TEXT NOT NULL DEFAULT '',
    divisions TEXT NOT NULL DEFAULT '[]',
    created_at TEXT NOT NULL,
    updated_at TEXT NOT NULL,
    CHECK (updated_at >= created_at)
)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS idx_applicants_email ON applicants(email)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS idx_applicants_phone ON applicants(phone)`,
	`CREATE INDEX IF NOT EXISTS idx_applicants_created_at ON applicants(created_at)`,
	`CREATE TABLE IF NOT EXISTS application_essays (
    applicant_id TEXT PRIMARY KEY REFERENCES applicants(id) ON DELETE CASCADE,
    convince TEXT NOT NULL DEFAULT '',
    project TEXT NOT NULL DEFAULT '',
    reasons TEXT NOT NULL DEFAULT '',
    intent TEXT NOT NULL DEFAULT ''
)`,
}
