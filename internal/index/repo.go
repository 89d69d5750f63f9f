package index

import (
	"encoding/json"
	"fmt"
	"time"
)

// DesignRow represents a row in the designs table.
type DesignRow struct {
	Path      string
	Checksum  string
	UpdatedAt time.Time
}

// ComponentRow represents one cataloged component of a design.
type ComponentRow struct {
	Design      string
	Ref         string
	Value       string
	Footprint   string
	LibID       string
	Description string
	Nets        []string
}

// SearchResult represents one component search hit.
type SearchResult struct {
	Design    string
	Ref       string
	Value     string
	Footprint string
	Snippet   string
}

// UpsertDesign replaces a design row and its component set within a
// transaction.
func (db *DB) UpsertDesign(d DesignRow, comps []ComponentRow) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("index: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // best-effort on failure path

	_, err = tx.Exec(`
		INSERT INTO designs (path, checksum, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT(path) DO UPDATE SET
			checksum   = excluded.checksum,
			updated_at = excluded.updated_at
	`, d.Path, d.Checksum, d.UpdatedAt)
	if err != nil {
		return fmt.Errorf("index: upsert design: %w", err)
	}

	// Replace components: delete old then bulk insert.
	_, _ = tx.Exec(`DELETE FROM components WHERE design = ?`, d.Path)
	ftsDeleteDesign(tx, d.Path)
	if len(comps) > 0 {
		stmt, err := tx.Prepare(`
			INSERT INTO components (design, ref, value, footprint, lib_id, description, nets)
			VALUES (?, ?, ?, ?, ?, ?, ?)
		`)
		if err != nil {
			return fmt.Errorf("index: prepare component insert: %w", err)
		}
		defer stmt.Close()
		for _, c := range comps {
			netsJSON, _ := json.Marshal(c.Nets)
			if _, err := stmt.Exec(d.Path, c.Ref, c.Value, c.Footprint, c.LibID, c.Description, string(netsJSON)); err != nil {
				return fmt.Errorf("index: insert component: %w", err)
			}
			if err := ftsUpsert(tx, d.Path, c); err != nil {
				return err
			}
		}
	}

	return tx.Commit()
}

// DeleteDesign removes a design and its components from the catalog.
func (db *DB) DeleteDesign(path string) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("index: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	ftsDeleteDesign(tx, path)
	_, _ = tx.Exec(`DELETE FROM components WHERE design = ?`, path)
	_, _ = tx.Exec(`DELETE FROM designs WHERE path = ?`, path)

	return tx.Commit()
}

// GetChecksum returns the stored checksum for a design, or empty string
// if not found.
func (db *DB) GetChecksum(path string) (string, error) {
	var cs string
	err := db.conn.QueryRow(`SELECT checksum FROM designs WHERE path = ?`, path).Scan(&cs)
	if err != nil {
		return "", nil // not found is fine
	}
	return cs, nil
}

// AllChecksums returns path -> checksum for every cataloged design.
func (db *DB) AllChecksums() (map[string]string, error) {
	rows, err := db.conn.Query(`SELECT path, checksum FROM designs`)
	if err != nil {
		return nil, fmt.Errorf("index: all checksums: %w", err)
	}
	defer rows.Close()
	out := make(map[string]string)
	for rows.Next() {
		var p, cs string
		if err := rows.Scan(&p, &cs); err != nil {
			return nil, err
		}
		out[p] = cs
	}
	return out, rows.Err()
}

// ListDesigns returns every cataloged design sorted by path.
func (db *DB) ListDesigns() ([]DesignRow, error) {
	rows, err := db.conn.Query(`SELECT path, checksum, updated_at FROM designs ORDER BY path`)
	if err != nil {
		return nil, fmt.Errorf("index: list designs: %w", err)
	}
	defer rows.Close()

	var out []DesignRow
	for rows.Next() {
		var d DesignRow
		if err := rows.Scan(&d.Path, &d.Checksum, &d.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

// Components returns the cataloged components of a design sorted by
// reference.
func (db *DB) Components(design string) ([]ComponentRow, error) {
	rows, err := db.conn.Query(`
		SELECT design, ref, value, footprint, lib_id, description, nets
		FROM components
		WHERE design = ?
		ORDER BY ref
	`, design)
	if err != nil {
		return nil, fmt.Errorf("index: components: %w", err)
	}
	defer rows.Close()

	var out []ComponentRow
	for rows.Next() {
		var c ComponentRow
		var netsJSON string
		if err := rows.Scan(&c.Design, &c.Ref, &c.Value, &c.Footprint, &c.LibID, &c.Description, &netsJSON); err != nil {
			return nil, err
		}
		_ = json.Unmarshal([]byte(netsJSON), &c.Nets)
		out = append(out, c)
	}
	return out, rows.Err()
}
