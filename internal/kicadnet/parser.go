// Package kicadnet parses the KiCad s-expression netlist export
// (`kicad-cli sch export netlist --format kicadsexpr`) into a RawDesign.
// It is a raw model adapter: file syntax in, flat design data out.
package kicadnet

import (
	"fmt"
	"io"
	"strings"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"

	"github.com/starford/raido/internal/models"
)

var netlistLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "String", Pattern: `"(\\.|[^"\\])*"`},
	{Name: "LParen", Pattern: `\(`},
	{Name: "RParen", Pattern: `\)`},
	{Name: "Atom", Pattern: `[^\s()"]+`},
	{Name: "Whitespace", Pattern: `\s+`},
})

// expr is one node of the s-expression tree.
type expr struct {
	Str  *string `parser:"  @String"`
	Atom *string `parser:"| @Atom"`
	List *list   `parser:"| @@"`
}

type list struct {
	Items []*expr `parser:"LParen @@* RParen"`
}

var netlistParser = participle.MustBuild[expr](
	participle.Lexer(netlistLexer),
	participle.Elide("Whitespace"),
)

// value returns the textual content of a leaf node, unquoting strings.
func (e *expr) value() string {
	switch {
	case e == nil:
		return ""
	case e.Str != nil:
		s := *e.Str
		s = s[1 : len(s)-1]
		s = strings.ReplaceAll(s, `\"`, `"`)
		s = strings.ReplaceAll(s, `\\`, `\`)
		return s
	case e.Atom != nil:
		return *e.Atom
	default:
		return ""
	}
}

// tag returns the list head symbol, or empty string for leaves.
func (e *expr) tag() string {
	if e == nil || e.List == nil || len(e.List.Items) == 0 {
		return ""
	}
	return e.List.Items[0].value()
}

// child returns the first sub-list with the given tag.
func (e *expr) child(tag string) *expr {
	if e == nil || e.List == nil {
		return nil
	}
	for _, item := range e.List.Items[1:] {
		if item.tag() == tag {
			return item
		}
	}
	return nil
}

// children returns every sub-list with the given tag, in document order.
func (e *expr) children(tag string) []*expr {
	if e == nil || e.List == nil {
		return nil
	}
	var out []*expr
	for _, item := range e.List.Items[1:] {
		if item.tag() == tag {
			out = append(out, item)
		}
	}
	return out
}

// field returns the value of a (tag "value") pair, e.g. (ref "R1") -> "R1".
func (e *expr) field(tag string) string {
	c := e.child(tag)
	if c == nil || len(c.List.Items) < 2 {
		return ""
	}
	return c.List.Items[1].value()
}

// Parse reads a KiCad netlist export and returns the flat design model.
func Parse(r io.Reader) (*models.RawDesign, error) {
	root, err := netlistParser.Parse("", r)
	if err != nil {
		return nil, fmt.Errorf("kicadnet: parse: %w", err)
	}
	if root.tag() != "export" {
		return nil, fmt.Errorf("kicadnet: not a netlist export (got %q)", root.tag())
	}
	return structure(root), nil
}

// ParseString parses a netlist from a string.
func ParseString(s string) (*models.RawDesign, error) {
	return Parse(strings.NewReader(s))
}

// structure flattens the parsed tree into a RawDesign.
//
// The exported netlist carries no explicit power classification per net,
// so RawNet.IsPower is left nil and the graph builder's naming-convention
// fallback decides. Nets named "unconnected-*" are no-connect stubs and
// are dropped, matching the exporter's semantics.
func structure(root *expr) *models.RawDesign {
	design := &models.RawDesign{}

	if comps := root.child("components"); comps != nil {
		for _, comp := range comps.children("comp") {
			rc := models.RawComponent{
				Ref:         comp.field("ref"),
				Value:       comp.field("value"),
				Footprint:   comp.field("footprint"),
				Description: comp.field("description"),
			}
			if src := comp.child("libsource"); src != nil {
				lib := src.field("lib")
				part := src.field("part")
				if lib != "" || part != "" {
					rc.LibID = lib + ":" + part
				}
				if rc.Description == "" {
					rc.Description = src.field("description")
				}
			}
			for _, prop := range comp.children("property") {
				name := prop.field("name")
				if name == "" {
					continue
				}
				if rc.Fields == nil {
					rc.Fields = make(map[string]string)
				}
				rc.Fields[name] = prop.field("value")
			}
			design.Components = append(design.Components, rc)
		}
	}

	if nets := root.child("nets"); nets != nil {
		for _, net := range nets.children("net") {
			name := net.field("name")
			if strings.Contains(name, "unconnected") {
				continue
			}
			rn := models.RawNet{
				Name: name,
				Code: net.field("code"),
			}
			for _, node := range net.children("node") {
				rn.Nodes = append(rn.Nodes, models.RawNode{
					Ref:     node.field("ref"),
					Pin:     node.field("pin"),
					PinType: node.field("pintype"),
				})
			}
			design.Nets = append(design.Nets, rn)
		}
	}

	return design
}
