//go:build sqlite_fts5

package index

import (
	"database/sql"
	"fmt"
	"strings"
)

func initFTS(conn *sql.DB) error {
	_, err := conn.Exec(`
		CREATE VIRTUAL TABLE IF NOT EXISTS components_fts USING fts5(
			design UNINDEXED,
			ref,
			value,
			footprint,
			description,
			nets,
			tokenize = 'unicode61 remove_diacritics 2'
		);
	`)
	return err
}

func ftsUpsert(tx *sql.Tx, design string, c ComponentRow) error {
	_, err := tx.Exec(`
		INSERT INTO components_fts (design, ref, value, footprint, description, nets)
		VALUES (?, ?, ?, ?, ?, ?)
	`, design, c.Ref, c.Value, c.Footprint, c.Description, strings.Join(c.Nets, " "))
	if err != nil {
		return fmt.Errorf("index: upsert fts: %w", err)
	}
	return nil
}

func ftsDeleteDesign(tx *sql.Tx, design string) {
	_, _ = tx.Exec(`DELETE FROM components_fts WHERE design = ?`, design)
}

// Search performs an FTS5 full-text search over component attributes.
func (db *DB) Search(query string, limit int) ([]SearchResult, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := db.conn.Query(`
		SELECT design,
		       ref,
		       value,
		       footprint,
		       snippet(components_fts, 4, '<b>', '</b>', '...', 64)
		FROM components_fts
		WHERE components_fts MATCH ?
		ORDER BY rank
		LIMIT ?
	`, query, limit)
	if err != nil {
		return nil, fmt.Errorf("index: search: %w", err)
	}
	defer rows.Close()

	var out []SearchResult
	for rows.Next() {
		var r SearchResult
		if err := rows.Scan(&r.Design, &r.Ref, &r.Value, &r.Footprint, &r.Snippet); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
