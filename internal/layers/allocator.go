// Package layers assigns highlighted paths to board layers from a
// bounded, ordered pool with first-fit semantics.
package layers

import (
	"fmt"
	"sort"
	"sync"

	"github.com/starford/raido/internal/apperr"
)

// Pool is the ordered layer pool. Assist layers are tried before
// general layers; the scan order inside each sub-pool is the slice
// order, which keeps first-fit deterministic.
type Pool struct {
	Assist  []string `yaml:"assist"`
	General []string `yaml:"general"`
}

// DefaultPool returns the stock KiCad user-layer pool: two assist
// layers, then the nine numbered user layers — eleven in total.
func DefaultPool() Pool {
	return Pool{
		Assist: []string{"Eco1.User", "Eco2.User"},
		General: []string{
			"User.1", "User.2", "User.3", "User.4", "User.5",
			"User.6", "User.7", "User.8", "User.9",
		},
	}
}

// Size returns the total number of assignable layers.
func (p Pool) Size() int { return len(p.Assist) + len(p.General) }

// TrackHighlight is one render instruction: paint the tracks of a net
// on the assigned layer.
type TrackHighlight struct {
	Net   string `json:"net" yaml:"net"`
	Layer string `json:"layer" yaml:"layer"`
}

// Assignment binds one highlighted path to one layer for the duration
// of its visualization. It is removed only by an explicit release.
type Assignment struct {
	PathID string           `json:"path_id" yaml:"path_id"`
	Layer  string           `json:"layer" yaml:"layer"`
	Tracks []TrackHighlight `json:"tracks" yaml:"tracks"`
}

// Allocator tracks layer occupancy. A layer is either free or occupied
// by exactly one assignment; Assign and Release are mutually exclusive
// with each other and independent of graph reads.
type Allocator struct {
	mu       sync.Mutex
	order    []string
	members  map[string]struct{}
	occupied map[string]string // layer -> path id
	byPath   map[string]*Assignment
}

// New creates an allocator over the given pool.
func New(pool Pool) *Allocator {
	order := make([]string, 0, pool.Size())
	order = append(order, pool.Assist...)
	order = append(order, pool.General...)
	members := make(map[string]struct{}, len(order))
	for _, l := range order {
		members[l] = struct{}{}
	}
	return &Allocator{
		order:    order,
		members:  members,
		occupied: make(map[string]string),
		byPath:   make(map[string]*Assignment),
	}
}

// Assign binds pathID to a layer and returns the track-highlight
// instructions for the path's nets. A free preferred layer is honored;
// otherwise the first free layer in pool order wins. Fails with
// apperr.ErrNoFreeLayer when every layer is occupied and with
// apperr.ErrAlreadyAssigned when pathID already holds a layer.
func (a *Allocator) Assign(pathID string, nets []string, preferred string) (*Assignment, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if _, dup := a.byPath[pathID]; dup {
		return nil, fmt.Errorf("%w: %s", apperr.ErrAlreadyAssigned, pathID)
	}

	layer := ""
	if preferred != "" {
		if _, known := a.members[preferred]; known {
			if _, busy := a.occupied[preferred]; !busy {
				layer = preferred
			}
		}
	}
	if layer == "" {
		for _, l := range a.order {
			if _, busy := a.occupied[l]; !busy {
				layer = l
				break
			}
		}
	}
	if layer == "" {
		return nil, fmt.Errorf("%w: all %d layers occupied", apperr.ErrNoFreeLayer, len(a.order))
	}

	tracks := make([]TrackHighlight, 0, len(nets))
	for _, net := range nets {
		tracks = append(tracks, TrackHighlight{Net: net, Layer: layer})
	}
	asg := &Assignment{PathID: pathID, Layer: layer, Tracks: tracks}

	a.occupied[layer] = pathID
	a.byPath[pathID] = asg
	return asg, nil
}

// Release frees the layer held by pathID. Other assignments are never
// affected. Fails with apperr.ErrPathNotFound for an unknown id.
func (a *Allocator) Release(pathID string) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	asg, ok := a.byPath[pathID]
	if !ok {
		return fmt.Errorf("%w: %s", apperr.ErrPathNotFound, pathID)
	}
	delete(a.byPath, pathID)
	delete(a.occupied, asg.Layer)
	return nil
}

// Get returns the current assignment for pathID, or nil.
func (a *Allocator) Get(pathID string) *Assignment {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.byPath[pathID]
}

// Assignments returns every current assignment, sorted by path id.
func (a *Allocator) Assignments() []*Assignment {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]*Assignment, 0, len(a.byPath))
	for _, asg := range a.byPath {
		out = append(out, asg)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].PathID < out[j].PathID })
	return out
}

// InUse returns the number of occupied layers.
func (a *Allocator) InUse() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.occupied)
}

// Capacity returns the pool size.
func (a *Allocator) Capacity() int { return len(a.order) }
