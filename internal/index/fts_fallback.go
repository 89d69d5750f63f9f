//go:build !sqlite_fts5

package index

import (
	"database/sql"
	"fmt"
)

func initFTS(_ *sql.DB) error {
	// FTS5 not available; search uses a LIKE fallback on the components table.
	return nil
}

func ftsUpsert(_ *sql.Tx, _ string, _ ComponentRow) error {
	// Attributes already live in the components table; nothing extra to do.
	return nil
}

func ftsDeleteDesign(_ *sql.Tx, _ string) {}

// Search performs a LIKE-based search (fallback when FTS5 is not compiled in).
func (db *DB) Search(query string, limit int) ([]SearchResult, error) {
	if limit <= 0 {
		limit = 20
	}
	like := "%" + query + "%"
	rows, err := db.conn.Query(`
		SELECT design, ref, value, footprint, substr(description, 1, 200)
		FROM components
		WHERE ref LIKE ? OR value LIKE ? OR footprint LIKE ? OR description LIKE ? OR nets LIKE ?
		ORDER BY design, ref
		LIMIT ?
	`, like, like, like, like, like, limit)
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
