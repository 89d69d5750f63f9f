// Package circuit builds and queries the connectivity graph of a design:
// components as nodes, shared nets as edges. Graphs are immutable after
// Build, so any number of queries may run against one concurrently.
package circuit

import "sort"

// Kind is the semantic class of a component, derived from its
// reference designator prefix.
type Kind string

const (
	KindResistor   Kind = "resistor"
	KindCapacitor  Kind = "capacitor"
	KindInductor   Kind = "inductor"
	KindDiode      Kind = "diode"
	KindTransistor Kind = "transistor"
	KindIC         Kind = "ic"
	KindConnector  Kind = "connector"
	KindCrystal    Kind = "crystal"
	KindSwitch     Kind = "switch"
	KindOther      Kind = "other"
)

// PinRole is the electrical role a pin declares in the netlist.
type PinRole string

const (
	RoleInput         PinRole = "input"
	RoleOutput        PinRole = "output"
	RoleBidirectional PinRole = "bidirectional"
	RoleTriState      PinRole = "tri_state"
	RolePassive       PinRole = "passive"
	RolePowerIn       PinRole = "power_in"
	RolePowerOut      PinRole = "power_out"
	RoleUnspecified   PinRole = "unspecified"
)

// Component is one graph node. Immutable once built.
type Component struct {
	Ref        string            `json:"ref"`
	Kind       Kind              `json:"kind"`
	Value      string            `json:"value,omitempty"`
	Footprint  string            `json:"footprint,omitempty"`
	Properties map[string]string `json:"properties,omitempty"`
	Pins       []*Pin            `json:"pins,omitempty"`
}

// Pin belongs to exactly one component and at most one net.
type Pin struct {
	Component string  `json:"component"`
	Number    string  `json:"number"`
	Role      PinRole `json:"role"`
	Net       *Net    `json:"-"`
}

// Net is a named equivalence class of electrically connected pins.
type Net struct {
	Name    string  `json:"name"`
	IsPower bool    `json:"is_power"`
	Pins    []*Pin  `json:"-"`
}

// Hop is one step of a path: the net that connects two consecutive
// components. When several nets connect the pair, the lexicographically
// smallest eligible net is reported.
type Hop struct {
	From string `json:"from"`
	To   string `json:"to"`
	Net  string `json:"net"`
}

// Path is an ordered sequence of distinct components where each
// consecutive pair shares a net. Paths are ephemeral query results.
type Path struct {
	Refs []string `json:"refs"`
	Hops []Hop    `json:"hops"`
}

// Graph is the canonical connectivity graph of one design file.
// Adjacency is simple at the component level: multiple shared nets
// between two components collapse to one edge that retains its net set.
type Graph struct {
	components map[string]*Component
	nets       map[string]*Net
	adjacency  map[string]map[string][]*Net
}

// Component returns the node for ref, or nil if absent.
func (g *Graph) Component(ref string) *Component {
	return g.components[ref]
}

// Components returns every component, sorted by reference.
func (g *Graph) Components() []*Component {
	out := make([]*Component, 0, len(g.components))
	for _, c := range g.components {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Ref < out[j].Ref })
	return out
}

// Net returns the net with the given name, or nil if absent.
func (g *Graph) Net(name string) *Net {
	return g.nets[name]
}

// Nets returns every net, sorted by name.
func (g *Graph) Nets() []*Net {
	out := make([]*Net, 0, len(g.nets))
	for _, n := range g.nets {
		out = append(out, n)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// ConnectingNets returns the nets shared by two components, sorted by
// name, or nil when the components are not adjacent.
func (g *Graph) ConnectingNets(a, b string) []*Net {
	return g.adjacency[a][b]
}

// KindOf maps a reference designator to its component kind.
func KindOf(ref string) Kind {
	prefix := ref
	for i, r := range ref {
		if r >= '0' && r <= '9' {
			prefix = ref[:i]
			break
		}
	}
	switch prefix {
	case "R", "RN", "RV":
		return KindResistor
	case "C", "CP":
		return KindCapacitor
	case "L", "FB":
		return KindInductor
	case "D", "LED", "ZD":
		return KindDiode
	case "Q", "T":
		return KindTransistor
	case "U", "IC", "A":
		return KindIC
	case "J", "P", "CN", "CONN":
		return KindConnector
	case "Y", "X", "XTAL":
		return KindCrystal
	case "SW", "S":
		return KindSwitch
	default:
		return KindOther
	}
}

// roleOf normalises a netlist pintype string to a PinRole.
func roleOf(pinType string) PinRole {
	switch pinType {
	case "input":
		return RoleInput
	case "output":
		return RoleOutput
	case "bidirectional":
		return RoleBidirectional
	case "tri_state":
		return RoleTriState
	case "passive":
		return RolePassive
	case "power_in":
		return RolePowerIn
	case "power_out":
		return RolePowerOut
	default:
		return RoleUnspecified
	}
}
