package kicadnet

import (
	"strings"
	"testing"
)

const sampleExport = `(export (version "E")
  (design
    (source "/home/user/boards/demo/demo.kicad_sch")
    (date "2026-01-10")
    (tool "Eeschema 8.0.4"))
  (components
    (comp (ref "R1")
      (value "10k")
      (footprint "Resistor_SMD:R_0603_1608Metric")
      (description "Resistor")
      (libsource (lib "Device") (part "R") (description "Resistor"))
      (property (name "Sheetname") (value "Root"))
      (property (name "MPN") (value "RC0603FR-0710KL")))
    (comp (ref "C1")
      (value "100n")
      (footprint "Capacitor_SMD:C_0603_1608Metric")
      (libsource (lib "Device") (part "C") (description "Unpolarized capacitor")))
    (comp (ref "U1")
      (value "NE555")
      (footprint "Package_DIP:DIP-8_W7.62mm")
      (libsource (lib "Timer") (part "NE555") (description "Single precision timer"))))
  (nets
    (net (code "1") (name "/OUT")
      (node (ref "U1") (pin "3") (pintype "output"))
      (node (ref "R1") (pin "1") (pintype "passive")))
    (net (code "2") (name "GND")
      (node (ref "C1") (pin "2") (pintype "passive"))
      (node (ref "U1") (pin "1") (pintype "power_in")))
    (net (code "3") (name "unconnected-(U1-Pad5)")
      (node (ref "U1") (pin "5") (pintype "input")))
    (net (code "4") (name "Node \"A\"")
      (node (ref "R1") (pin "2") (pintype "passive"))
      (node (ref "C1") (pin "1") (pintype "passive")))))
`

func TestParseComponents(t *testing.T) {
	d, err := ParseString(sampleExport)
	if err != nil {
		t.Fatalf("ParseString: %v", err)
	}
	if len(d.Components) != 3 {
		t.Fatalf("got %d components, want 3", len(d.Components))
	}

	r1 := d.Components[0]
	if r1.Ref != "R1" || r1.Value != "10k" {
		t.Errorf("R1 = %+v", r1)
	}
	if r1.Footprint != "Resistor_SMD:R_0603_1608Metric" {
		t.Errorf("R1 footprint = %q", r1.Footprint)
	}
	if r1.LibID != "Device:R" {
		t.Errorf("R1 lib id = %q, want Device:R", r1.LibID)
	}
	if r1.Description != "Resistor" {
		t.Errorf("R1 description = %q", r1.Description)
	}
	if got := r1.Fields["MPN"]; got != "RC0603FR-0710KL" {
		t.Errorf("R1 MPN = %q", got)
	}
}

func TestParseLibsourceDescriptionFallback(t *testing.T) {
	d, err := ParseString(sampleExport)
	if err != nil {
		t.Fatalf("ParseString: %v", err)
	}
	// C1 has no top-level description, so the libsource one applies.
	c1 := d.Components[1]
	if c1.Description != "Unpolarized capacitor" {
		t.Errorf("C1 description = %q", c1.Description)
	}
}

func TestParseNetsSkipsUnconnected(t *testing.T) {
	d, err := ParseString(sampleExport)
	if err != nil {
		t.Fatalf("ParseString: %v", err)
	}
	if len(d.Nets) != 3 {
		t.Fatalf("got %d nets, want 3 (no-connect stub dropped)", len(d.Nets))
	}
	for _, n := range d.Nets {
		if strings.Contains(n.Name, "unconnected") {
			t.Errorf("no-connect net %q should have been dropped", n.Name)
		}
		if n.IsPower != nil {
			t.Errorf("net %q: IsPower should be nil, classification is the builder's job", n.Name)
		}
	}

	gnd := d.Nets[1]
	if gnd.Name != "GND" || gnd.Code != "2" {
		t.Fatalf("gnd = %+v", gnd)
	}
	if len(gnd.Nodes) != 2 {
		t.Fatalf("GND has %d nodes, want 2", len(gnd.Nodes))
	}
	if gnd.Nodes[1].Ref != "U1" || gnd.Nodes[1].Pin != "1" || gnd.Nodes[1].PinType != "power_in" {
		t.Errorf("GND node = %+v", gnd.Nodes[1])
	}
}

func TestParseUnquotesEscapedStrings(t *testing.T) {
	d, err := ParseString(sampleExport)
	if err != nil {
		t.Fatalf("ParseString: %v", err)
	}
	last := d.Nets[len(d.Nets)-1]
	if last.Name != `Node "A"` {
		t.Errorf("net name = %q, want %q", last.Name, `Node "A"`)
	}
}

func TestParseRejectsNonExport(t *testing.T) {
	if _, err := ParseString(`(kicad_sch (version 20230121))`); err == nil {
		t.Error("expected error for non-export document")
	}
}

func TestParseRejectsMalformedInput(t *testing.T) {
	if _, err := ParseString(`(export (components`); err == nil {
		t.Error("expected error for unbalanced parens")
	}
}
