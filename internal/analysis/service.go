// Package analysis coordinates storage, the graph cache, and the
// catalog behind one service surface shared by the HTTP API and the
// MCP server.
package analysis

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"sort"

	"github.com/starford/raido/internal/apperr"
	"github.com/starford/raido/internal/board"
	"github.com/starford/raido/internal/cache"
	"github.com/starford/raido/internal/checksum"
	"github.com/starford/raido/internal/circuit"
	"github.com/starford/raido/internal/index"
	"github.com/starford/raido/internal/kicadnet"
	"github.com/starford/raido/internal/layers"
	"github.com/starford/raido/internal/patterns"
	"github.com/starford/raido/internal/storage"
)

// DefaultMaxRadius bounds neighborhood queries when the caller does not
// configure one.
const DefaultMaxRadius = 10

// Summary is the high-level report for one design file.
type Summary struct {
	Path          string         `json:"path"`
	Checksum      string         `json:"checksum"`
	Components    int            `json:"components"`
	Nets          int            `json:"nets"`
	PowerNets     []string       `json:"power_nets"`
	FloatingNets  []string       `json:"floating_nets,omitempty"`
	Kinds         map[string]int `json:"kinds"`
	MostConnected []Connectivity `json:"most_connected"`
}

// Connectivity pairs a component with the number of distinct components
// it shares a net with.
type Connectivity struct {
	Ref    string `json:"ref"`
	Degree int    `json:"degree"`
}

// ComponentDetail is the full view of one component.
type ComponentDetail struct {
	Ref        string            `json:"ref"`
	Kind       circuit.Kind      `json:"kind"`
	Value      string            `json:"value,omitempty"`
	Footprint  string            `json:"footprint,omitempty"`
	Properties map[string]string `json:"properties,omitempty"`
	PinCount   int               `json:"pin_count"`
	Nets       []string          `json:"nets"`
}

// NetConnections lists the pins attached to one net of a component's
// connection report.
type NetConnections struct {
	Net     string    `json:"net"`
	IsPower bool      `json:"is_power"`
	Peers   []PeerPin `json:"peers"`
}

// PeerPin is one far-end attachment on a shared net.
type PeerPin struct {
	Ref  string          `json:"ref"`
	Pin  string          `json:"pin"`
	Role circuit.PinRole `json:"role"`
}

// EventFunc receives highlight lifecycle notifications for fan-out to
// subscribers. Called after the change has been persisted.
type EventFunc func(event, design, pathID string)

// Service coordinates workspace, cache, catalog, and highlight
// operations.
type Service struct {
	store      storage.Provider
	graphs     *cache.Cache
	catalog    index.Catalog
	highlights *board.Store
	classifier *circuit.PowerClassifier
	maxRadius  int
	notify     EventFunc
}

// SetNotify installs the event hook. Must be called before the service
// starts handling requests.
func (s *Service) SetNotify(fn EventFunc) { s.notify = fn }

func (s *Service) emit(event, design, pathID string) {
	if s.notify != nil {
		s.notify(event, design, pathID)
	}
}

// Config carries the service's tunables.
type Config struct {
	PowerPatterns []string
	MaxRadius     int
}

// NewService creates the analysis service. A zero Config applies the
// default power patterns and radius bound.
func NewService(store storage.Provider, catalog index.Catalog, highlights *board.Store, cfg Config) *Service {
	maxRadius := cfg.MaxRadius
	if maxRadius <= 0 {
		maxRadius = DefaultMaxRadius
	}
	return &Service{
		store:      store,
		graphs:     cache.New(),
		catalog:    catalog,
		highlights: highlights,
		classifier: circuit.NewPowerClassifier(cfg.PowerPatterns),
		maxRadius:  maxRadius,
	}
}

// Graph returns the connectivity graph for a design, building it on
// first access and after every file change. Concurrent callers share
// one build.
func (s *Service) Graph(_ context.Context, path string) (*circuit.Graph, error) {
	data, err := s.store.Read(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, apperr.ErrNotFound
		}
		return nil, err
	}
	sig := checksum.Sum(data)
	return s.graphs.GetOrBuild(path, sig, func() (*circuit.Graph, error) {
		raw, err := kicadnet.Parse(bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("%w: %v", apperr.ErrMalformedModel, err)
		}
		return circuit.Build(raw, s.classifier)
	})
}

// AnalyzeFile builds (or reuses) the design's graph and summarizes it.
func (s *Service) AnalyzeFile(ctx context.Context, path string) (*Summary, error) {
	g, err := s.Graph(ctx, path)
	if err != nil {
		return nil, err
	}
	meta, err := s.store.Stat(path)
	if err != nil {
		return nil, err
	}

	kinds := make(map[string]int)
	var degrees []Connectivity
	for _, c := range g.Components() {
		kinds[string(c.Kind)]++
		neigh, err := g.Neighbors(c.Ref, 1, true)
		if err != nil {
			return nil, err
		}
		degrees = append(degrees, Connectivity{Ref: c.Ref, Degree: len(neigh) - 1})
	}
	sort.Slice(degrees, func(i, j int) bool {
		if degrees[i].Degree != degrees[j].Degree {
			return degrees[i].Degree > degrees[j].Degree
		}
		return degrees[i].Ref < degrees[j].Ref
	})
	if len(degrees) > 5 {
		degrees = degrees[:5]
	}

	var power, floating []string
	for _, n := range g.Nets() {
		if n.IsPower {
			power = append(power, n.Name)
		}
		// A net with a single pin drives nothing.
		if len(n.Pins) < 2 {
			floating = append(floating, n.Name)
		}
	}

	return &Summary{
		Path:          path,
		Checksum:      meta.Checksum,
		Components:    len(g.Components()),
		Nets:          len(g.Nets()),
		PowerNets:     power,
		FloatingNets:  floating,
		Kinds:         kinds,
		MostConnected: degrees,
	}, nil
}

// ComponentInfo returns one component's attributes and net memberships.
func (s *Service) ComponentInfo(ctx context.Context, path, ref string) (*ComponentDetail, error) {
	g, err := s.Graph(ctx, path)
	if err != nil {
		return nil, err
	}
	c := g.Component(ref)
	if c == nil {
		return nil, fmt.Errorf("%w: %s", apperr.ErrComponentNotFound, ref)
	}
	seen := make(map[string]struct{})
	var nets []string
	for _, p := range c.Pins {
		if p.Net == nil {
			continue
		}
		if _, dup := seen[p.Net.Name]; dup {
			continue
		}
		seen[p.Net.Name] = struct{}{}
		nets = append(nets, p.Net.Name)
	}
	sort.Strings(nets)
	return &ComponentDetail{
		Ref:        c.Ref,
		Kind:       c.Kind,
		Value:      c.Value,
		Footprint:  c.Footprint,
		Properties: c.Properties,
		PinCount:   len(c.Pins),
		Nets:       nets,
	}, nil
}

// Connections returns the per-net connection report for a component:
// every far-end pin on every net the component touches.
func (s *Service) Connections(ctx context.Context, path, ref string) ([]NetConnections, error) {
	g, err := s.Graph(ctx, path)
	if err != nil {
		return nil, err
	}
	c := g.Component(ref)
	if c == nil {
		return nil, fmt.Errorf("%w: %s", apperr.ErrComponentNotFound, ref)
	}

	seen := make(map[string]struct{})
	var out []NetConnections
	for _, p := range c.Pins {
		if p.Net == nil {
			continue
		}
		if _, dup := seen[p.Net.Name]; dup {
			continue
		}
		seen[p.Net.Name] = struct{}{}

		nc := NetConnections{Net: p.Net.Name, IsPower: p.Net.IsPower}
		for _, peer := range p.Net.Pins {
			if peer.Component == ref {
				continue
			}
			nc.Peers = append(nc.Peers, PeerPin{Ref: peer.Component, Pin: peer.Number, Role: peer.Role})
		}
		sort.Slice(nc.Peers, func(i, j int) bool {
			if nc.Peers[i].Ref != nc.Peers[j].Ref {
				return nc.Peers[i].Ref < nc.Peers[j].Ref
			}
			return nc.Peers[i].Pin < nc.Peers[j].Pin
		})
		out = append(out, nc)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Net < out[j].Net })
	return out, nil
}

// Neighbors returns the refs reachable from ref within radius component
// hops. The configured radius bound caps runaway queries.
func (s *Service) Neighbors(ctx context.Context, path, ref string, radius int, includePower bool) ([]string, error) {
	if radius > s.maxRadius {
		radius = s.maxRadius
	}
	g, err := s.Graph(ctx, path)
	if err != nil {
		return nil, err
	}
	return g.Neighbors(ref, radius, includePower)
}

// FindPaths returns up to maxPaths simple paths between two components,
// shortest first.
func (s *Service) FindPaths(ctx context.Context, path, from, to string, includePower bool, maxPaths int) ([]circuit.Path, error) {
	g, err := s.Graph(ctx, path)
	if err != nil {
		return nil, err
	}
	return g.FindPaths(from, to, includePower, maxPaths)
}

// HighlightPath assigns a visualization layer to a found path. Every
// hop net must exist in the design's graph.
func (s *Service) HighlightPath(ctx context.Context, path, pathID string, nets []string, preferred string) (*layers.Assignment, error) {
	g, err := s.Graph(ctx, path)
	if err != nil {
		return nil, err
	}
	for _, net := range nets {
		if g.Net(net) == nil {
			return nil, fmt.Errorf("%w: net %s", apperr.ErrNotFound, net)
		}
	}
	a, err := s.highlights.Highlight(path, pathID, nets, preferred)
	if err != nil {
		return nil, err
	}
	s.emit("highlight.created", path, pathID)
	return a, nil
}

// DeleteHighlight removes one highlight, leaving others untouched.
func (s *Service) DeleteHighlight(_ context.Context, path, pathID string) error {
	if err := s.highlights.Delete(path, pathID); err != nil {
		return err
	}
	s.emit("highlight.deleted", path, pathID)
	return nil
}

// ListHighlights returns a design's current highlights.
func (s *Service) ListHighlights(_ context.Context, path string) ([]*layers.Assignment, error) {
	return s.highlights.List(path)
}

// Patterns runs structural pattern recognition on the design.
func (s *Service) Patterns(ctx context.Context, path string) ([]patterns.Match, error) {
	g, err := s.Graph(ctx, path)
	if err != nil {
		return nil, err
	}
	return patterns.Scan(g), nil
}

// Search delegates component search to the catalog.
func (s *Service) Search(_ context.Context, query string, limit int) ([]index.SearchResult, error) {
	return s.catalog.Search(query, limit)
}

// ListDesigns returns the cataloged designs.
func (s *Service) ListDesigns(_ context.Context) ([]index.DesignRow, error) {
	return s.catalog.ListDesigns()
}

// Invalidate drops a design's cached graph. The next query rebuilds
// from the file. Deleted designs also drop their in-memory highlight
// state.
func (s *Service) Invalidate(path string, deleted bool) {
	s.graphs.Clear(path)
	if deleted && s.highlights != nil {
		s.highlights.Forget(path)
	}
}
