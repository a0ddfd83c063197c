// ABOUTME: Versioned SQLite schema for the record store
// ABOUTME: Ordered migrations are applied inside the open protocol in one transaction
package recordstore

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/rs/zerolog"
)

// SchemaVersion is the newest schema this build understands
const SchemaVersion = 1

type migration struct {
	version int
	name    string
	sql     string
}

// migrations must stay ordered by version; never edit an applied entry, append a new one.
var migrations = []migration{
	{version: 1, name: "create record tables", sql: schemaV1},
}

const schemaV1 = `
CREATE TABLE IF NOT EXISTS profile (
    key TEXT PRIMARY KEY CHECK (key = 'current'),
    value TEXT NOT NULL,
    updated_at TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS tasks (
    key TEXT PRIMARY KEY CHECK (key = 'current'),
    value TEXT NOT NULL,
    updated_at TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS chat (
    key TEXT PRIMARY KEY CHECK (key = 'current'),
    value TEXT NOT NULL,
    updated_at TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS plan (
    key TEXT PRIMARY KEY CHECK (key = 'current'),
    value TEXT NOT NULL,
    updated_at TEXT NOT NULL
);
`

const migrationsTable = `
CREATE TABLE IF NOT EXISTS schema_migrations (
    version INTEGER PRIMARY KEY,
    name TEXT NOT NULL,
    applied_at TEXT NOT NULL
);
`

// migrate brings db up to the last entry of list and returns how many steps ran.
func migrate(ctx context.Context, db *sql.DB, list []migration) (int, error) {
	logger := zerolog.Ctx(ctx)
	latest := 0
	if len(list) > 0 {
		latest = list[len(list)-1].version
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin migration: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, migrationsTable); err != nil {
		return 0, fmt.Errorf("create schema_migrations: %w", err)
	}

	var current int
	if err := tx.QueryRowContext(ctx, `SELECT COALESCE(MAX(version), 0) FROM schema_migrations`).Scan(&current); err != nil {
		return 0, fmt.Errorf("read schema version: %w", err)
	}
	if current > latest {
		return 0, &Error{
			Kind: KindSchemaUpgrade,
			Op:   "open",
			Err:  fmt.Errorf("database schema version %d is newer than supported %d", current, latest),
		}
	}

	applied := 0
	for _, m := range list {
		if m.version <= current {
			continue
		}
		if _, err := tx.ExecContext(ctx, m.sql); err != nil {
			return 0, &Error{
				Kind: KindSchemaUpgrade,
				Op:   "open",
				Err:  fmt.Errorf("migration %d (%s): %w", m.version, m.name, err),
			}
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO schema_migrations (version, name, applied_at) VALUES (?, ?, ?)`,
			m.version, m.name, time.Now().UTC().Format(time.RFC3339Nano),
		); err != nil {
			return 0, fmt.Errorf("record migration %d: %w", m.version, err)
		}
		applied++
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit migration: %w", err)
	}

	if applied > 0 {
		logger.Info().
			Int("from", current).
			Int("to", latest).
			Int("steps", applied).
			Msg("schema migrated")
	}
	return applied, nil
}
