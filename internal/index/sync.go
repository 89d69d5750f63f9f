package index

import (
	"log/slog"
	"sort"
	"time"

	"github.com/starford/raido/internal/checksum"
	"github.com/starford/raido/internal/kicadnet"
	"github.com/starford/raido/internal/storage"
)

// Sync walks the workspace and brings the catalog up to date:
//   - new/changed design files are parsed and upserted
//   - designs removed from disk are deleted from the catalog
func Sync(db *DB, store storage.Provider, logger *slog.Logger) error {
	metas, err := store.List("")
	if err != nil {
		return err
	}

	checksums, err := db.AllChecksums()
	if err != nil {
		return err
	}

	disk := make(map[string]struct{}, len(metas))
	for _, m := range metas {
		disk[m.Path] = struct{}{}

		if checksums[m.Path] == m.Checksum {
			continue
		}

		data, err := store.Read(m.Path)
		if err != nil {
			logger.Warn("sync: read failed", slog.String("path", m.Path), slog.String("error", err.Error()))
			continue
		}
		if err := indexFile(db, m.Path, data); err != nil {
			logger.Warn("sync: catalog failed", slog.String("path", m.Path), slog.String("error", err.Error()))
		} else {
			logger.Debug("sync: cataloged", slog.String("path", m.Path))
		}
	}

	// Remove stale entries.
	for p := range checksums {
		if _, ok := disk[p]; !ok {
			if err := db.DeleteDesign(p); err != nil {
				logger.Warn("sync: delete failed", slog.String("path", p), slog.String("error", err.Error()))
			} else {
				logger.Debug("sync: removed stale", slog.String("path", p))
			}
		}
	}

	return nil
}

// indexFile parses design data and upserts its component set.
func indexFile(db *DB, path string, data []byte) error {
	raw, err := kicadnet.ParseString(string(data))
	if err != nil {
		return err
	}

	// Net membership per component reference.
	netsByRef := make(map[string][]string)
	for _, net := range raw.Nets {
		seen := make(map[string]struct{})
		for _, node := range net.Nodes {
			if _, dup := seen[node.Ref]; dup {
				continue
			}
			seen[node.Ref] = struct{}{}
			netsByRef[node.Ref] = append(netsByRef[node.Ref], net.Name)
		}
	}

	comps := make([]ComponentRow, 0, len(raw.Components))
	for _, c := range raw.Components {
		nets := netsByRef[c.Ref]
		sort.Strings(nets)
		comps = append(comps, ComponentRow{
			Design:      path,
			Ref:         c.Ref,
			Value:       c.Value,
			Footprint:   c.Footprint,
			LibID:       c.LibID,
			Description: c.Description,
			Nets:        nets,
		})
	}

	row := DesignRow{
		Path:      path,
		Checksum:  checksum.Sum(data),
		UpdatedAt: time.Now().UTC(),
	}
	return db.UpsertDesign(row, comps)
}
