// Package index provides a SQLite-backed component catalog with
// optional FTS5 full-text search over component attributes.
package index

import (
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

const coreSchemaSQL = `
CREATE TABLE IF NOT EXISTS designs (
	path       TEXT PRIMARY KEY,
	checksum   TEXT NOT NULL DEFAULT '',
	updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS components (
	design      TEXT NOT NULL,
	ref         TEXT NOT NULL,
	value       TEXT NOT NULL DEFAULT '',
	footprint   TEXT NOT NULL DEFAULT '',
	lib_id      TEXT NOT NULL DEFAULT '',
	description TEXT NOT NULL DEFAULT '',
	nets        TEXT NOT NULL DEFAULT '[]',
	PRIMARY KEY (design, ref)
);

CREATE INDEX IF NOT EXISTS idx_components_design ON components(design);
CREATE INDEX IF NOT EXISTS idx_components_value ON components(value);
`

// DB wraps a sql.DB with catalog-specific operations.
type DB struct {
	conn *sql.DB
}

// Open opens (or creates) the SQLite database and applies the schema.
func Open(dsn string) (*DB, error) {
	conn, err := sql.Open("sqlite3", dsn+"?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("index: open db: %w", err)
	}
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("index: ping: %w", err)
	}
	if _, err := conn.Exec(coreSchemaSQL); err != nil {
		conn.Close()
		return nil, fmt.Errorf("index: apply core schema: %w", err)
	}
	if err := initFTS(conn); err != nil {
		conn.Close()
		return nil, fmt.Errorf("index: apply fts schema: %w", err)
	}
	return &DB{conn: conn}, nil
}

// Close closes the underlying database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}
