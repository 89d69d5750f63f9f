package circuit

import (
	"fmt"
	"sort"

	"github.com/starford/raido/internal/apperr"
)

// DefaultMaxPaths bounds FindPaths when the caller passes no limit.
const DefaultMaxPaths = 5

// DefaultMaxDepth caps the hop count of any enumerated path. Without it
// a query with an unreachable target would enumerate every simple path
// in the source's connected block before returning empty.
const DefaultMaxDepth = 10

// Neighbors returns the references of every component reachable from
// ref within radius adjacency hops, including ref itself. Radius 0
// yields only the component. With includePower false, hops across a
// power net are not traversed. The result is sorted by reference.
func (g *Graph) Neighbors(ref string, radius int, includePower bool) ([]string, error) {
	if _, ok := g.components[ref]; !ok {
		return nil, fmt.Errorf("%w: %s", apperr.ErrComponentNotFound, ref)
	}
	if radius < 0 {
		radius = 0
	}

	visited := map[string]struct{}{ref: {}}
	frontier := []string{ref}

	for depth := 0; depth < radius && len(frontier) > 0; depth++ {
		var next []string
		for _, cur := range frontier {
			for neighbor, nets := range g.adjacency[cur] {
				if _, seen := visited[neighbor]; seen {
					continue
				}
				if !traversable(nets, includePower) {
					continue
				}
				visited[neighbor] = struct{}{}
				next = append(next, neighbor)
			}
		}
		frontier = next
	}

	out := make([]string, 0, len(visited))
	for r := range visited {
		out = append(out, r)
	}
	sort.Strings(out)
	return out, nil
}

// FindPaths enumerates up to maxPaths simple paths between two
// components, shortest first; equal-length paths are ordered by the
// lexicographic order of their component sequence, so repeated queries
// on an unchanged graph return identical results. With includePower
// false, power nets are removed from the search space entirely: a pair
// connected only through a power net is not adjacent. Paths longer than
// DefaultMaxDepth hops are not considered, which keeps the worst case
// bounded on dense designs. An empty slice (not an error) means no path
// exists within the depth bound.
func (g *Graph) FindPaths(from, to string, includePower bool, maxPaths int) ([]Path, error) {
	if _, ok := g.components[from]; !ok {
		return nil, fmt.Errorf("%w: %s", apperr.ErrComponentNotFound, from)
	}
	if _, ok := g.components[to]; !ok {
		return nil, fmt.Errorf("%w: %s", apperr.ErrComponentNotFound, to)
	}
	if maxPaths <= 0 {
		maxPaths = DefaultMaxPaths
	}

	if from == to {
		return []Path{{Refs: []string{from}}}, nil
	}

	// An unreachable target would force a full enumeration of the
	// source's connected block, so restrict the search to components
	// with a route to the target.
	reach := g.reachable(to, includePower)
	if _, ok := reach[from]; !ok {
		return nil, nil
	}

	// Breadth-first enumeration over partial paths. Expanding neighbors
	// in sorted order keeps same-length paths in lexicographic order
	// without a final sort. Simple-path pruning bounds the depth by the
	// component count.
	type partial struct {
		refs []string
		on   map[string]struct{}
	}
	queue := []partial{{refs: []string{from}, on: map[string]struct{}{from: {}}}}
	var found []Path

	for len(queue) > 0 && len(found) < maxPaths {
		cur := queue[0]
		queue = queue[1:]
		last := cur.refs[len(cur.refs)-1]

		neighbors := make([]string, 0, len(g.adjacency[last]))
		for n, nets := range g.adjacency[last] {
			if _, seen := cur.on[n]; seen {
				continue
			}
			if _, ok := reach[n]; !ok {
				continue
			}
			if !traversable(nets, includePower) {
				continue
			}
			neighbors = append(neighbors, n)
		}
		sort.Strings(neighbors)

		for _, n := range neighbors {
			refs := append(append([]string(nil), cur.refs...), n)
			if n == to {
				found = append(found, g.makePath(refs, includePower))
				if len(found) == maxPaths {
					break
				}
				continue
			}
			// len(refs)-1 hops so far; a partial at the depth bound can
			// no longer reach to within it.
			if len(refs)-1 >= DefaultMaxDepth {
				continue
			}
			on := make(map[string]struct{}, len(cur.on)+1)
			for r := range cur.on {
				on[r] = struct{}{}
			}
			on[n] = struct{}{}
			queue = append(queue, partial{refs: refs, on: on})
		}
	}

	return found, nil
}

// makePath materialises the hop list for a component sequence. Each hop
// reports the lexicographically smallest eligible connecting net.
func (g *Graph) makePath(refs []string, includePower bool) Path {
	hops := make([]Hop, 0, len(refs)-1)
	for i := 0; i+1 < len(refs); i++ {
		nets := g.adjacency[refs[i]][refs[i+1]]
		name := ""
		for _, n := range nets {
			if includePower || !n.IsPower {
				name = n.Name
				break
			}
		}
		hops = append(hops, Hop{From: refs[i], To: refs[i+1], Net: name})
	}
	return Path{Refs: refs, Hops: hops}
}

// reachable returns every component with a route to ref under the
// power-inclusion rule. Adjacency is symmetric, so this doubles as the
// set of components ref can be reached from.
func (g *Graph) reachable(ref string, includePower bool) map[string]struct{} {
	visited := map[string]struct{}{ref: {}}
	frontier := []string{ref}
	for len(frontier) > 0 {
		var next []string
		for _, cur := range frontier {
			for n, nets := range g.adjacency[cur] {
				if _, seen := visited[n]; seen {
					continue
				}
				if !traversable(nets, includePower) {
					continue
				}
				visited[n] = struct{}{}
				next = append(next, n)
			}
		}
		frontier = next
	}
	return visited
}

// traversable reports whether an edge backed by the given nets may be
// crossed under the power-inclusion rule.
func traversable(nets []*Net, includePower bool) bool {
	if includePower {
		return len(nets) > 0
	}
	for _, n := range nets {
		if !n.IsPower {
			return true
		}
	}
	return false
}
