package index

import (
	"io"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/starford/raido/internal/storage"
)

func testDB(t *testing.T) *DB {
	t.Helper()
	f, err := os.CreateTemp("", "raido-test-*.db")
	if err != nil {
		t.Fatal(err)
	}
	f.Close()
	t.Cleanup(func() { os.Remove(f.Name()) })

	db, err := Open(f.Name())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestSchemaCreation(t *testing.T) {
	db := testDB(t)
	var count int
	if err := db.conn.QueryRow(`SELECT count(*) FROM designs`).Scan(&count); err != nil {
		t.Fatalf("designs table missing: %v", err)
	}
	if err := db.conn.QueryRow(`SELECT count(*) FROM components`).Scan(&count); err != nil {
		t.Fatalf("components table missing: %v", err)
	}
}

func TestUpsertAndGetChecksum(t *testing.T) {
	db := testDB(t)
	row := DesignRow{Path: "main.net", Checksum: "abc123", UpdatedAt: time.Now()}
	comps := []ComponentRow{
		{Design: "main.net", Ref: "R1", Value: "10k", Footprint: "R_0603", Nets: []string{"N1", "VCC"}},
		{Design: "main.net", Ref: "C1", Value: "100n", Footprint: "C_0603", Nets: []string{"N1", "GND"}},
	}
	if err := db.UpsertDesign(row, comps); err != nil {
		t.Fatalf("UpsertDesign: %v", err)
	}
	cs, err := db.GetChecksum("main.net")
	if err != nil {
		t.Fatalf("GetChecksum: %v", err)
	}
	if cs != "abc123" {
		t.Errorf("checksum = %q, want %q", cs, "abc123")
	}
}

func TestUpsertReplacesComponents(t *testing.T) {
	db := testDB(t)
	row := DesignRow{Path: "main.net", Checksum: "v1", UpdatedAt: time.Now()}
	_ = db.UpsertDesign(row, []ComponentRow{
		{Design: "main.net", Ref: "R1"},
		{Design: "main.net", Ref: "R2"},
	})

	row.Checksum = "v2"
	if err := db.UpsertDesign(row, []ComponentRow{{Design: "main.net", Ref: "U1"}}); err != nil {
		t.Fatalf("UpsertDesign: %v", err)
	}
	got, err := db.Components("main.net")
	if err != nil {
		t.Fatalf("Components: %v", err)
	}
	if len(got) != 1 || got[0].Ref != "U1" {
		t.Errorf("components = %+v", got)
	}
}

func TestComponentsSortedWithNets(t *testing.T) {
	db := testDB(t)
	row := DesignRow{Path: "main.net", Checksum: "x", UpdatedAt: time.Now()}
	_ = db.UpsertDesign(row, []ComponentRow{
		{Design: "main.net", Ref: "U1", Nets: []string{"N1", "N2"}},
		{Design: "main.net", Ref: "C1", Nets: []string{"GND"}},
	})

	got, err := db.Components("main.net")
	if err != nil {
		t.Fatalf("Components: %v", err)
	}
	if len(got) != 2 || got[0].Ref != "C1" || got[1].Ref != "U1" {
		t.Fatalf("order = %+v", got)
	}
	if len(got[1].Nets) != 2 || got[1].Nets[0] != "N1" {
		t.Errorf("nets round-trip = %v", got[1].Nets)
	}
}

func TestDeleteDesign(t *testing.T) {
	db := testDB(t)
	_ = db.UpsertDesign(DesignRow{Path: "del.net", Checksum: "x", UpdatedAt: time.Now()},
		[]ComponentRow{{Design: "del.net", Ref: "R1"}})

	if err := db.DeleteDesign("del.net"); err != nil {
		t.Fatalf("DeleteDesign: %v", err)
	}
	cs, _ := db.GetChecksum("del.net")
	if cs != "" {
		t.Errorf("checksum after delete = %q, want empty", cs)
	}
	comps, _ := db.Components("del.net")
	if len(comps) != 0 {
		t.Errorf("components after delete = %+v", comps)
	}
}

func TestSearchComponents(t *testing.T) {
	db := testDB(t)
	_ = db.UpsertDesign(DesignRow{Path: "main.net", Checksum: "x", UpdatedAt: time.Now()}, []ComponentRow{
		{Design: "main.net", Ref: "U1", Value: "STM32F103", Footprint: "LQFP-48", Description: "ARM MCU"},
		{Design: "main.net", Ref: "R1", Value: "10k", Footprint: "R_0603"},
	})

	hits, err := db.Search("STM32F103", 10)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(hits) != 1 || hits[0].Ref != "U1" {
		t.Fatalf("hits = %+v", hits)
	}
	if hits[0].Design != "main.net" {
		t.Errorf("design = %q", hits[0].Design)
	}
}

const testNetlist = `(export (version "E")
  (components
    (comp (ref "R1") (value "10k") (footprint "Resistor_SMD:R_0603")
      (libsource (lib "Device") (part "R") (description "Resistor")))
    (comp (ref "C1") (value "100n") (footprint "Capacitor_SMD:C_0603")
      (libsource (lib "Device") (part "C") (description "Capacitor"))))
  (nets
    (net (code "1") (name "N1")
      (node (ref "R1") (pin "1") (pintype "passive"))
      (node (ref "C1") (pin "1") (pintype "passive")))
    (net (code "2") (name "GND")
      (node (ref "C1") (pin "2") (pintype "passive")))
    (net (code "3") (name "unconnected-(R1-Pad2)")
      (node (ref "R1") (pin "2") (pintype "passive")))))
`

func TestSyncFromWorkspace(t *testing.T) {
	db := testDB(t)
	dir := t.TempDir()
	store, err := storage.NewFS(dir)
	if err != nil {
		t.Fatal(err)
	}
	if err := store.Write("main.net", []byte(testNetlist)); err != nil {
		t.Fatal(err)
	}
	logger := slog.New(slog.NewJSONHandler(io.Discard, nil))

	if err := Sync(db, store, logger); err != nil {
		t.Fatalf("Sync: %v", err)
	}
	comps, err := db.Components("main.net")
	if err != nil {
		t.Fatalf("Components: %v", err)
	}
	if len(comps) != 2 {
		t.Fatalf("components = %d, want 2", len(comps))
	}
	if comps[0].Ref != "C1" || comps[1].Ref != "R1" {
		t.Errorf("refs = %s, %s", comps[0].Ref, comps[1].Ref)
	}
	// Unconnected stub nets are not recorded as membership.
	if len(comps[1].Nets) != 1 || comps[1].Nets[0] != "N1" {
		t.Errorf("R1 nets = %v", comps[1].Nets)
	}

	// Second sync with unchanged content is a no-op for the checksum.
	before, _ := db.GetChecksum("main.net")
	if err := Sync(db, store, logger); err != nil {
		t.Fatalf("second Sync: %v", err)
	}
	after, _ := db.GetChecksum("main.net")
	if before != after {
		t.Error("checksum changed on unchanged file")
	}

	// Removing the file prunes the catalog on the next sync.
	_ = store.Delete("main.net")
	if err := Sync(db, store, logger); err != nil {
		t.Fatalf("third Sync: %v", err)
	}
	designs, _ := db.ListDesigns()
	if len(designs) != 0 {
		t.Errorf("designs after prune = %+v", designs)
	}
}
