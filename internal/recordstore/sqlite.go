// ABOUTME: SQLite backend for the record store
// ABOUTME: Uses modernc.org/sqlite with WAL journaling and synchronous=FULL for durable writes
package recordstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

const busyTimeoutMillis = 5000

// DefaultDataDir returns $XDG_DATA_HOME/focusflow, falling back to ~/.local/share/focusflow.
func DefaultDataDir() string {
	dataHome := os.Getenv("XDG_DATA_HOME")
	if dataHome == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return ".local/share/focusflow"
		}
		dataHome = filepath.Join(homeDir, ".local", "share")
	}
	return filepath.Join(dataHome, "focusflow")
}

// DefaultDBPath returns the default database file path
func DefaultDBPath() string {
	return filepath.Join(DefaultDataDir(), "focusflow.db")
}

// SQLite returns an OpenFunc for a database file at path, creating its directory if needed.
func SQLite(path string) OpenFunc {
	return func(ctx context.Context) (Backend, error) {
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return nil, fmt.Errorf("failed to create data directory: %w", err)
		}
		dsn := fmt.Sprintf("%s?_pragma=journal_mode(WAL)&_pragma=synchronous(FULL)&_pragma=busy_timeout(%d)",
			path, busyTimeoutMillis)
		return openSQLite(ctx, dsn, path, false)
	}
}

// SQLiteInMemory returns an OpenFunc for a private in-memory database (for testing)
func SQLiteInMemory() OpenFunc {
	return func(ctx context.Context) (Backend, error) {
		return openSQLite(ctx, ":memory:?_pragma=synchronous(FULL)", ":memory:", true)
	}
}

type sqliteBackend struct {
	db   *sql.DB
	path string
}

func openSQLite(ctx context.Context, dsn, path string, memory bool) (*sqliteBackend, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// Every connection to :memory: is a separate database.
	if memory {
		db.SetMaxOpenConns(1)
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if _, err := migrate(ctx, db, migrations); err != nil {
		_ = db.Close()
		return nil, err
	}

	return &sqliteBackend{db: db, path: path}, nil
}

func (b *sqliteBackend) Get(ctx context.Context, table Table) (Document, bool, error) {
	if err := checkTable(table); err != nil {
		return nil, false, err
	}

	var value string
	err := b.db.QueryRowContext(ctx,
		fmt.Sprintf(`SELECT value FROM %s WHERE key = ?`, table), SingletonKey,
	).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return Document(value), true, nil
}

func (b *sqliteBackend) Put(ctx context.Context, table Table, doc Document) error {
	if err := checkTable(table); err != nil {
		return err
	}

	_, err := b.db.ExecContext(ctx, fmt.Sprintf(`
		INSERT INTO %s (key, value, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET
			value = excluded.value,
			updated_at = excluded.updated_at
	`, table), SingletonKey, string(doc), time.Now().UTC().Format(time.RFC3339Nano))
	return err
}

// ClearAll deletes every table's document in one transaction.
func (b *sqliteBackend) ClearAll(ctx context.Context) error {
	tx, err := b.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	for _, table := range tables {
		if _, err := tx.ExecContext(ctx, fmt.Sprintf(`DELETE FROM %s`, table)); err != nil {
			return fmt.Errorf("clear %s: %w", table, err)
		}
	}
	return tx.Commit()
}

func (b *sqliteBackend) SchemaVersion(ctx context.Context) (int, error) {
	var version int
	err := b.db.QueryRowContext(ctx, `SELECT COALESCE(MAX(version), 0) FROM schema_migrations`).Scan(&version)
	return version, err
}

func (b *sqliteBackend) Close() error {
	if b.db != nil {
		return b.db.Close()
	}
	return nil
}
