package db

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	"github.com/hpungsan/orbit/internal/config"
	_ "modernc.org/sqlite"
)

// CurrentSchemaVersion is the latest schema version.
// Bump this when adding migrations.
const CurrentSchemaVersion = 1

// FileName is the database file inside the base directory.
const FileName = "orbit.db"

// DBTX is satisfied by *sql.DB and *sql.Tx so query functions can run
// inside or outside a transaction.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Init initializes the SQLite database at baseDir/orbit.db.
// The baseDir parameter allows tests to use t.TempDir() instead of ~/.orbit.
func Init(baseDir string) (*sql.DB, error) {
	// Create base directory with restricted permissions
	if err := os.MkdirAll(baseDir, 0700); err != nil {
		return nil, fmt.Errorf("failed to create base directory: %w", err)
	}
	_ = os.Chmod(baseDir, 0700)

	// Pragmas in the connection string apply to every pooled connection.
	dbPath := filepath.Join(baseDir, FileName)
	dsn := dbPath + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&_pragma=foreign_keys(1)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := verifyWALMode(db); err != nil {
		db.Close()
		return nil, err
	}

	if err := migrate(db); err != nil {
		db.Close()
		return nil, err
	}

	// Set file permissions after file exists (best-effort)
	_ = os.Chmod(dbPath, 0600)

	return db, nil
}

// ConfigurePool applies connection pool settings from config.
// Only sets limits if explicitly configured (non-zero values).
func ConfigurePool(db *sql.DB, cfg *config.Config) {
	if cfg == nil {
		return
	}
	if cfg.DBMaxOpenConns > 0 {
		db.SetMaxOpenConns(cfg.DBMaxOpenConns)
	}
	if cfg.DBMaxIdleConns > 0 {
		db.SetMaxIdleConns(cfg.DBMaxIdleConns)
	}
}

// migrate applies schema migrations based on user_version.
func migrate(db *sql.DB) error {
	version, err := GetUserVersion(db)
	if err != nil {
		return err
	}

	// Migration 0 -> 1: Initial schema
	if version < 1 {
		schema := `
		CREATE TABLE IF NOT EXISTS contacts (
		  id              TEXT PRIMARY KEY,
		  name            TEXT NOT NULL,
		  name_norm       TEXT NOT NULL,
		  notes           TEXT NOT NULL DEFAULT '',
		  archived        INTEGER NOT NULL DEFAULT 0,
		  target_orbit    INTEGER NOT NULL DEFAULT 2,
		  last_contact_at INTEGER,
		  created_at      INTEGER NOT NULL,
		  updated_at      INTEGER NOT NULL
		);

		CREATE UNIQUE INDEX IF NOT EXISTS idx_contacts_name_norm
		ON contacts(name_norm);

		CREATE INDEX IF NOT EXISTS idx_contacts_archived
		ON contacts(archived, name_norm);

		CREATE TABLE IF NOT EXISTS interactions (
		  id          TEXT PRIMARY KEY,
		  contact_id  TEXT NOT NULL REFERENCES contacts(id) ON DELETE CASCADE,
		  impulse     TEXT NOT NULL,
		  content     TEXT NOT NULL DEFAULT '',
		  date        INTEGER NOT NULL,
		  tag_names   TEXT NOT NULL DEFAULT '',
		  created_at  INTEGER NOT NULL,
		  deleted_at  INTEGER
		);

		CREATE INDEX IF NOT EXISTS idx_interactions_contact_date
		ON interactions(contact_id, date DESC)
		WHERE deleted_at IS NULL;

		CREATE INDEX IF NOT EXISTS idx_interactions_date
		ON interactions(date DESC)
		WHERE deleted_at IS NULL;

		CREATE TABLE IF NOT EXISTS artifacts (
		  id          TEXT PRIMARY KEY,
		  contact_id  TEXT NOT NULL REFERENCES contacts(id) ON DELETE CASCADE,
		  key         TEXT NOT NULL,
		  key_norm    TEXT NOT NULL,
		  value       TEXT NOT NULL,
		  is_array    INTEGER NOT NULL DEFAULT 0,
		  category    TEXT,
		  created_at  INTEGER NOT NULL,
		  updated_at  INTEGER NOT NULL,
		  UNIQUE (contact_id, key_norm)
		);

		CREATE TABLE IF NOT EXISTS tags (
		  id          TEXT PRIMARY KEY,
		  name        TEXT NOT NULL,
		  name_norm   TEXT NOT NULL UNIQUE,
		  created_at  INTEGER NOT NULL
		);

		CREATE TABLE IF NOT EXISTS constellations (
		  id          TEXT PRIMARY KEY,
		  name        TEXT NOT NULL,
		  name_norm   TEXT NOT NULL,
		  created_at  INTEGER NOT NULL,
		  updated_at  INTEGER NOT NULL
		);

		CREATE UNIQUE INDEX IF NOT EXISTS idx_constellations_name_norm
		ON constellations(name_norm);

		CREATE TABLE IF NOT EXISTS constellation_members (
		  constellation_id TEXT NOT NULL REFERENCES constellations(id) ON DELETE CASCADE,
		  contact_id       TEXT NOT NULL REFERENCES contacts(id) ON DELETE CASCADE,
		  added_at         INTEGER NOT NULL,
		  PRIMARY KEY (constellation_id, contact_id)
		);

		CREATE INDEX IF NOT EXISTS idx_constellation_members_contact
		ON constellation_members(contact_id);
		`
		if _, err := db.Exec(schema); err != nil {
			return fmt.Errorf("migration 1 failed: %w", err)
		}
		if err := SetUserVersion(db, 1); err != nil {
			return err
		}
	}

	return nil
}

// verifyWALMode checks that WAL mode is active (set via connection string).
func verifyWALMode(db *sql.DB) error {
	var journalMode string
	if err := db.QueryRow("PRAGMA journal_mode;").Scan(&journalMode); err != nil {
		return fmt.Errorf("failed to verify journal mode: %w", err)
	}
	if journalMode != "wal" {
		return fmt.Errorf("expected WAL mode, got %s", journalMode)
	}
	return nil
}

// GetUserVersion returns the current schema version (user_version pragma).
func GetUserVersion(db *sql.DB) (int, error) {
	var version int
	if err := db.QueryRow("PRAGMA user_version;").Scan(&version); err != nil {
		return 0, fmt.Errorf("failed to get user_version: %w", err)
	}
	return version, nil
}

// SetUserVersion sets the schema version (user_version pragma).
func SetUserVersion(db *sql.DB, version int) error {
	_, err := db.Exec(fmt.Sprintf("PRAGMA user_version=%d", version))
	if err != nil {
		return fmt.Errorf("failed to set user_version: %w", err)
	}
	return nil
}
