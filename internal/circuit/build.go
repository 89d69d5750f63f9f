package circuit

import (
	"fmt"
	"sort"

	"github.com/starford/raido/internal/apperr"
	"github.com/starford/raido/internal/models"
)

// Build constructs the connectivity graph from a raw design. It is pure:
// the raw model is not mutated and every call produces a fresh graph.
//
// Validation failures (duplicate references, dangling net nodes, a pin
// claimed by two nets) return an error wrapping apperr.ErrMalformedModel.
// Per-net power classification uses the adapter's IsPower flag when
// present and falls back to the classifier otherwise.
func Build(raw *models.RawDesign, classifier *PowerClassifier) (*Graph, error) {
	if classifier == nil {
		classifier = NewPowerClassifier(nil)
	}

	g := &Graph{
		components: make(map[string]*Component, len(raw.Components)),
		nets:       make(map[string]*Net, len(raw.Nets)),
		adjacency:  make(map[string]map[string][]*Net, len(raw.Components)),
	}

	for _, rc := range raw.Components {
		if rc.Ref == "" {
			return nil, fmt.Errorf("%w: component with empty reference", apperr.ErrMalformedModel)
		}
		if _, dup := g.components[rc.Ref]; dup {
			return nil, fmt.Errorf("%w: duplicate component reference %q", apperr.ErrMalformedModel, rc.Ref)
		}
		props := make(map[string]string, len(rc.Fields)+2)
		for k, v := range rc.Fields {
			props[k] = v
		}
		if rc.Value != "" {
			props["value"] = rc.Value
		}
		if rc.Footprint != "" {
			props["footprint"] = rc.Footprint
		}
		if rc.LibID != "" {
			props["lib_id"] = rc.LibID
		}
		if rc.Description != "" {
			props["description"] = rc.Description
		}
		g.components[rc.Ref] = &Component{
			Ref:        rc.Ref,
			Kind:       KindOf(rc.Ref),
			Value:      rc.Value,
			Footprint:  rc.Footprint,
			Properties: props,
		}
	}

	// Track pin ownership so a pin can belong to at most one net.
	type pinKey struct{ ref, pin string }
	claimed := make(map[pinKey]string)

	for _, rn := range raw.Nets {
		if _, dup := g.nets[rn.Name]; dup {
			return nil, fmt.Errorf("%w: duplicate net %q", apperr.ErrMalformedModel, rn.Name)
		}
		isPower := classifier.IsPower(rn.Name)
		if rn.IsPower != nil {
			isPower = *rn.IsPower
		}
		net := &Net{Name: rn.Name, IsPower: isPower}

		for _, node := range rn.Nodes {
			comp, ok := g.components[node.Ref]
			if !ok {
				return nil, fmt.Errorf("%w: net %q references unknown component %q",
					apperr.ErrMalformedModel, rn.Name, node.Ref)
			}
			key := pinKey{node.Ref, node.Pin}
			if other, taken := claimed[key]; taken {
				return nil, fmt.Errorf("%w: pin %s.%s claimed by nets %q and %q",
					apperr.ErrMalformedModel, node.Ref, node.Pin, other, rn.Name)
			}
			claimed[key] = rn.Name

			pin := &Pin{
				Component: node.Ref,
				Number:    node.Pin,
				Role:      roleOf(node.PinType),
				Net:       net,
			}
			comp.Pins = append(comp.Pins, pin)
			net.Pins = append(net.Pins, pin)
		}
		g.nets[rn.Name] = net
	}

	g.buildAdjacency()
	return g, nil
}

// buildAdjacency derives the component-level edge map from net
// membership. Net lists per edge are sorted by name so later traversal
// tie-breaks are deterministic.
func (g *Graph) buildAdjacency() {
	seen := make(map[[2]string]map[string]struct{})

	addEdge := func(a, b string, net *Net) {
		key := [2]string{a, b}
		if a > b {
			key = [2]string{b, a}
		}
		if seen[key] == nil {
			seen[key] = make(map[string]struct{})
		}
		if _, dup := seen[key][net.Name]; dup {
			return
		}
		seen[key][net.Name] = struct{}{}

		for _, pair := range [][2]string{{a, b}, {b, a}} {
			if g.adjacency[pair[0]] == nil {
				g.adjacency[pair[0]] = make(map[string][]*Net)
			}
			g.adjacency[pair[0]][pair[1]] = append(g.adjacency[pair[0]][pair[1]], net)
		}
	}

	for _, net := range g.nets {
		refs := make([]string, 0, len(net.Pins))
		unique := make(map[string]struct{}, len(net.Pins))
		for _, p := range net.Pins {
			if _, ok := unique[p.Component]; !ok {
				unique[p.Component] = struct{}{}
				refs = append(refs, p.Component)
			}
		}
		for i := 0; i < len(refs); i++ {
			for j := i + 1; j < len(refs); j++ {
				addEdge(refs[i], refs[j], net)
			}
		}
	}

	for _, neighbors := range g.adjacency {
		for _, nets := range neighbors {
			sort.Slice(nets, func(i, j int) bool { return nets[i].Name < nets[j].Name })
		}
	}
}
