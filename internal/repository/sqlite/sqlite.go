// Package sqlite implements the repository interfaces on SQLite.
//
// modernc.org/sqlite is a pure Go translation of SQLite — no CGo, no C
// compiler, cross-compiles anywhere Go does. The database is a single file
// (or ":memory:" in tests), which fits this app: one server, one store per
// mode. Real accounts and demo mode each get their own DB file, opened
// through the same New call.
package sqlite

import (
	"database/sql"
	"fmt"

	// Registers the "sqlite" driver with database/sql.
	_ "modernc.org/sqlite"
)

// DB wraps a sql.DB connection pool and provides the repository methods.
type DB struct {
	conn *sql.DB
}

// New opens the database at dbPath and runs migrations. Use ":memory:"
// for tests.
func New(dbPath string) (*DB, error) {
	conn, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("sqlite: opening database: %w", err)
	}

	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: pinging database: %w", err)
	}

	// WAL allows concurrent reads during writes — without it SQLite locks
	// the whole file for every insert.
	if _, err := conn.Exec("PRAGMA journal_mode=WAL"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: setting WAL mode: %w", err)
	}

	if _, err := conn.Exec("PRAGMA foreign_keys=ON"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: enabling foreign keys: %w", err)
	}

	db := &DB{conn: conn}
	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: running migrations: %w", err)
	}

	return db, nil
}

func (db *DB) Close() error {
	return db.conn.Close()
}

func (db *DB) migrate() error {
	// overlay_elements is the canonical caption shape, stored as JSON.
	// top_text/bottom_text survive from the original two-slot schema; rows
	// carrying them are upgraded to elements when scanned.
	_, err := db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS memes (
			id                 TEXT PRIMARY KEY,
			template_id        TEXT NOT NULL DEFAULT '',
			template_name      TEXT NOT NULL DEFAULT '',
			template_image_url TEXT NOT NULL DEFAULT '',
			overlay_elements   TEXT NOT NULL DEFAULT '',
			top_text           TEXT NOT NULL DEFAULT '',
			bottom_text        TEXT NOT NULL DEFAULT '',
			text_color         TEXT NOT NULL DEFAULT '',
			font_size          REAL NOT NULL DEFAULT 0,
			font_family        TEXT NOT NULL DEFAULT '',
			text_effect        TEXT NOT NULL DEFAULT '',
			text_align         TEXT NOT NULL DEFAULT '',
			image_url          TEXT NOT NULL DEFAULT '',
			image_ref          TEXT NOT NULL DEFAULT '',
			has_local_image    INTEGER NOT NULL DEFAULT 0,
			owner_id           TEXT NOT NULL,
			owner_email        TEXT NOT NULL DEFAULT '',
			created_at         DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			views              INTEGER NOT NULL DEFAULT 0,
			shares             INTEGER NOT NULL DEFAULT 0
		);
		CREATE INDEX IF NOT EXISTS idx_memes_owner_created
			ON memes(owner_id, created_at DESC);
	`)
	if err != nil {
		return fmt.Errorf("creating memes table: %w", err)
	}

	_, err = db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS users (
			id           TEXT PRIMARY KEY,
			email        TEXT NOT NULL DEFAULT '',
			display_name TEXT NOT NULL DEFAULT '',
			photo_url    TEXT NOT NULL DEFAULT '',
			created_at   DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at   DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		);
	`)
	if err != nil {
		return fmt.Errorf("creating users table: %w", err)
	}

	return nil
}
