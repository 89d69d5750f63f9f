// Package patterns recognizes common circuit building blocks in a
// connectivity graph: decoupling capacitors, RC filters, and power
// supply blocks. Recognition is structural only; it never guesses from
// component values.
package patterns

import (
	"fmt"
	"sort"
	"strings"

	"github.com/starford/raido/internal/circuit"
)

// Match is one recognized pattern instance.
type Match struct {
	Kind        string   `json:"kind"`
	Components  []string `json:"components"`
	Nets        []string `json:"nets"`
	Description string   `json:"description"`
}

// Scan runs every recognizer and returns matches sorted by kind, then
// by first component.
func Scan(g *circuit.Graph) []Match {
	var out []Match
	out = append(out, DecouplingCapacitors(g)...)
	out = append(out, RCFilters(g)...)
	out = append(out, PowerBlocks(g)...)
	sort.Slice(out, func(i, j int) bool {
		if out[i].Kind != out[j].Kind {
			return out[i].Kind < out[j].Kind
		}
		return out[i].Components[0] < out[j].Components[0]
	})
	return out
}

// netsOf returns the distinct nets a component's pins attach to,
// sorted by name.
func netsOf(c *circuit.Component) []*circuit.Net {
	seen := make(map[string]*circuit.Net)
	for _, p := range c.Pins {
		if p.Net != nil {
			seen[p.Net.Name] = p.Net
		}
	}
	out := make([]*circuit.Net, 0, len(seen))
	for _, n := range seen {
		out = append(out, n)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// isGroundName reports whether a net name follows a ground naming
// convention.
func isGroundName(name string) bool {
	upper := strings.ToUpper(name)
	return strings.Contains(upper, "GND") || strings.HasPrefix(upper, "VSS")
}

// DecouplingCapacitors finds capacitors bridging a supply net and a
// ground net.
func DecouplingCapacitors(g *circuit.Graph) []Match {
	var out []Match
	for _, c := range g.Components() {
		if c.Kind != circuit.KindCapacitor {
			continue
		}
		nets := netsOf(c)
		if len(nets) != 2 {
			continue
		}
		var supply, ground *circuit.Net
		for _, n := range nets {
			switch {
			case isGroundName(n.Name):
				ground = n
			case n.IsPower:
				supply = n
			}
		}
		if supply == nil || ground == nil {
			continue
		}
		out = append(out, Match{
			Kind:        "decoupling_capacitor",
			Components:  []string{c.Ref},
			Nets:        []string{supply.Name, ground.Name},
			Description: fmt.Sprintf("%s decouples %s to %s", c.Ref, supply.Name, ground.Name),
		})
	}
	return out
}

// RCFilters finds a resistor and capacitor joined on a signal net where
// the capacitor's other side goes to ground.
func RCFilters(g *circuit.Graph) []Match {
	var out []Match
	for _, r := range g.Components() {
		if r.Kind != circuit.KindResistor {
			continue
		}
		for _, mid := range netsOf(r) {
			if mid.IsPower {
				continue
			}
			for _, pin := range mid.Pins {
				capComp := g.Component(pin.Component)
				if capComp == nil || capComp.Kind != circuit.KindCapacitor || capComp.Ref == r.Ref {
					continue
				}
				for _, other := range netsOf(capComp) {
					if other.Name == mid.Name || !isGroundName(other.Name) {
						continue
					}
					out = append(out, Match{
						Kind:        "rc_filter",
						Components:  []string{r.Ref, capComp.Ref},
						Nets:        []string{mid.Name, other.Name},
						Description: fmt.Sprintf("%s and %s form an RC filter on %s", r.Ref, capComp.Ref, mid.Name),
					})
				}
			}
		}
	}
	return dedupe(out)
}

// PowerBlocks finds ICs attached to at least two distinct supply nets
// with a decoupling capacitor nearby. These are regulator or
// power-management candidates.
func PowerBlocks(g *circuit.Graph) []Match {
	decoupled := make(map[string]bool)
	for _, m := range DecouplingCapacitors(g) {
		decoupled[m.Nets[0]] = true
	}

	var out []Match
	for _, c := range g.Components() {
		if c.Kind != circuit.KindIC {
			continue
		}
		var supplies []string
		hasDecap := false
		for _, n := range netsOf(c) {
			if n.IsPower && !isGroundName(n.Name) {
				supplies = append(supplies, n.Name)
				if decoupled[n.Name] {
					hasDecap = true
				}
			}
		}
		if len(supplies) < 2 || !hasDecap {
			continue
		}
		out = append(out, Match{
			Kind:        "power_block",
			Components:  []string{c.Ref},
			Nets:        supplies,
			Description: fmt.Sprintf("%s bridges supplies %s", c.Ref, strings.Join(supplies, ", ")),
		})
	}
	return out
}

func dedupe(in []Match) []Match {
	seen := make(map[string]struct{}, len(in))
	out := in[:0]
	for _, m := range in {
		key := m.Kind + "|" + strings.Join(m.Components, ",") + "|" + strings.Join(m.Nets, ",")
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, m)
	}
	return out
}
