// Package models defines the raw design types exchanged with netlist adapters.
package models

import "time"

// RawDesign is the flat, already-parsed view of a design: a component
// list and pin-to-net membership. It is the input contract of the graph
// builder; adapters produce it, the core never parses file syntax
// itself.
type RawDesign struct {
	Source     string
	Components []RawComponent
	Nets       []RawNet
}

// RawComponent is one schematic symbol instance.
type RawComponent struct {
	Ref         string
	Value       string
	Footprint   string
	LibID       string
	Description string
	Fields      map[string]string
}

// RawNet is a named set of pin connections.
//
// IsPower carries the adapter's power classification when it has one;
// nil means "unknown" and the builder falls back to naming conventions.
type RawNet struct {
	Name    string
	Code    string
	IsPower *bool
	Nodes   []RawNode
}

// RawNode is one pin's membership in a net.
type RawNode struct {
	Ref     string
	Pin     string
	PinType string
}

// DesignMetadata is a lightweight representation returned by list operations.
type DesignMetadata struct {
	Path      string    `json:"path"`
	Checksum  string    `json:"checksum"`
	UpdatedAt time.Time `json:"updated_at"`
}
