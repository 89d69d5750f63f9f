// Package board persists path-highlight markings for design files.
//
// Each design gets its own layer allocator and a YAML sidecar file next
// to the design (<path>.highlights.yaml) so highlights survive a
// restart. The sidecar is rewritten atomically after every mutation and
// removed once the last highlight is deleted.
package board

import (
	"errors"
	"fmt"
	"io/fs"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/starford/raido/internal/layers"
	"github.com/starford/raido/internal/storage"
)

// SidecarSuffix is appended to a design path to form its sidecar path.
const SidecarSuffix = ".highlights.yaml"

type sidecar struct {
	Assignments []layers.Assignment `yaml:"assignments"`
}

// Store manages highlight assignments across all designs in a workspace.
type Store struct {
	mu     sync.Mutex
	files  storage.Provider
	pool   layers.Pool
	allocs map[string]*layers.Allocator // design path -> allocator
}

// NewStore creates a highlight store over the given workspace provider.
func NewStore(files storage.Provider, pool layers.Pool) *Store {
	return &Store{
		files:  files,
		pool:   pool,
		allocs: make(map[string]*layers.Allocator),
	}
}

// allocator returns the design's allocator, loading the sidecar on
// first access. Caller holds s.mu.
func (s *Store) allocator(design string) (*layers.Allocator, error) {
	if a, ok := s.allocs[design]; ok {
		return a, nil
	}
	a := layers.New(s.pool)
	data, err := s.files.Read(design + SidecarSuffix)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		// No sidecar yet.
	case err != nil:
		return nil, fmt.Errorf("board: load sidecar: %w", err)
	default:
		var sc sidecar
		if err := yaml.Unmarshal(data, &sc); err != nil {
			return nil, fmt.Errorf("board: decode sidecar for %s: %w", design, err)
		}
		for _, asg := range sc.Assignments {
			nets := make([]string, 0, len(asg.Tracks))
			for _, tr := range asg.Tracks {
				nets = append(nets, tr.Net)
			}
			if _, err := a.Assign(asg.PathID, nets, asg.Layer); err != nil {
				return nil, fmt.Errorf("board: replay sidecar for %s: %w", design, err)
			}
		}
	}
	s.allocs[design] = a
	return a, nil
}

// persist rewrites or removes the sidecar to match the allocator state.
// Caller holds s.mu.
func (s *Store) persist(design string, a *layers.Allocator) error {
	assignments := a.Assignments()
	side := design + SidecarSuffix
	if len(assignments) == 0 {
		if err := s.files.Delete(side); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("board: remove sidecar: %w", err)
		}
		return nil
	}
	sc := sidecar{Assignments: make([]layers.Assignment, 0, len(assignments))}
	for _, asg := range assignments {
		sc.Assignments = append(sc.Assignments, *asg)
	}
	data, err := yaml.Marshal(sc)
	if err != nil {
		return fmt.Errorf("board: encode sidecar: %w", err)
	}
	if err := s.files.Write(side, data); err != nil {
		return fmt.Errorf("board: write sidecar: %w", err)
	}
	return nil
}

// Highlight assigns a layer to pathID on the given design and persists
// the marking.
func (s *Store) Highlight(design, pathID string, nets []string, preferred string) (*layers.Assignment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	a, err := s.allocator(design)
	if err != nil {
		return nil, err
	}
	asg, err := a.Assign(pathID, nets, preferred)
	if err != nil {
		return nil, err
	}
	if err := s.persist(design, a); err != nil {
		// Roll the in-memory state back so it matches disk.
		_ = a.Release(pathID)
		return nil, err
	}
	return asg, nil
}

// Delete removes a single highlight from the design. Other highlights
// on the same design keep their layers.
func (s *Store) Delete(design, pathID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	a, err := s.allocator(design)
	if err != nil {
		return err
	}
	asg := a.Get(pathID)
	if err := a.Release(pathID); err != nil {
		return err
	}
	if err := s.persist(design, a); err != nil {
		// Re-bind the freed layer so memory matches the sidecar still
		// on disk.
		nets := make([]string, 0, len(asg.Tracks))
		for _, tr := range asg.Tracks {
			nets = append(nets, tr.Net)
		}
		_, _ = a.Assign(pathID, nets, asg.Layer)
		return err
	}
	return nil
}

// List returns the design's current highlights sorted by path id.
func (s *Store) List(design string) ([]*layers.Assignment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	a, err := s.allocator(design)
	if err != nil {
		return nil, err
	}
	return a.Assignments(), nil
}

// Forget drops the in-memory allocator for a design. The sidecar is
// left alone; the next access reloads it. Used when a design file is
// removed from the workspace.
func (s *Store) Forget(design string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.allocs, design)
}
