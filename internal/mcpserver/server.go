// Package mcpserver provides an MCP (Model Context Protocol) server
// that exposes Raido's circuit analysis tools for LLM integration via
// stdio transport.
package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/starford/raido/internal/analysis"
	"github.com/starford/raido/internal/circuit"
)

// Server wraps the MCP server with Raido tools.
type Server struct {
	mcp *server.MCPServer
	svc *analysis.Service
}

// New creates a new MCP server with all Raido tools registered.
func New(svc *analysis.Service) *Server {
	s := &Server{svc: svc}

	s.mcp = server.NewMCPServer(
		"Raido",
		"1.0.0",
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	s.mcp.AddTool(mcp.NewTool("list_designs",
		mcp.WithDescription("List the design files cataloged from the workspace."),
	), s.listDesigns)

	s.mcp.AddTool(mcp.NewTool("analyze_design",
		mcp.WithDescription("Build (or reuse) the connectivity graph of a design file and "+
			"return a summary: component and net counts, power rails, kind breakdown, "+
			"and the most connected components."),
		mcp.WithString("design", mcp.Required(), mcp.Description("Relative path to the design file (e.g. boards/main.net)")),
	), s.analyzeDesign)

	s.mcp.AddTool(mcp.NewTool("get_component_info",
		mcp.WithDescription("Get one component's attributes, pin count, and net memberships, "+
			"plus the per-net connection report listing every far-end pin."),
		mcp.WithString("design", mcp.Required(), mcp.Description("Relative path to the design file")),
		mcp.WithString("ref", mcp.Required(), mcp.Description("Reference designator (e.g. U1)")),
	), s.getComponentInfo)

	s.mcp.AddTool(mcp.NewTool("analyze_functional_block",
		mcp.WithDescription("Return the components within a hop radius of one component. "+
			"Power nets are skipped unless include_power is true; read the "+
			"raido://power-net-conventions resource for the classification rules."),
		mcp.WithString("design", mcp.Required(), mcp.Description("Relative path to the design file")),
		mcp.WithString("ref", mcp.Required(), mcp.Description("Center component reference")),
		mcp.WithNumber("radius", mcp.Description("Component-hop radius (default 1)")),
		mcp.WithBoolean("include_power", mcp.Description("Traverse power nets (default false)")),
	), s.analyzeFunctionalBlock)

	s.mcp.AddTool(mcp.NewTool("find_circuit_paths",
		mcp.WithDescription("Find simple paths between two components, shortest first. "+
			"Each hop names the connecting net."),
		mcp.WithString("design", mcp.Required(), mcp.Description("Relative path to the design file")),
		mcp.WithString("from", mcp.Required(), mcp.Description("Start component reference")),
		mcp.WithString("to", mcp.Required(), mcp.Description("End component reference")),
		mcp.WithBoolean("include_power", mcp.Description("Traverse power nets (default false)")),
		mcp.WithNumber("max_paths", mcp.Description("Maximum paths to return (default 5)")),
	), s.findCircuitPaths)

	s.mcp.AddTool(mcp.NewTool("highlight_path",
		mcp.WithDescription("Assign a board visualization layer to a found path. The "+
			"assignment persists until delete_highlight; the layer pool is bounded, "+
			"so delete highlights you no longer need."),
		mcp.WithString("design", mcp.Required(), mcp.Description("Relative path to the design file")),
		mcp.WithString("path_id", mcp.Required(), mcp.Description("Caller-chosen id for the highlight")),
		mcp.WithString("nets", mcp.Required(), mcp.Description("Comma-separated hop nets of the path")),
		mcp.WithString("layer", mcp.Description("Preferred layer name (optional)")),
	), s.highlightPath)

	s.mcp.AddTool(mcp.NewTool("delete_highlight",
		mcp.WithDescription("Delete one path highlight, freeing its layer. Other highlights keep theirs."),
		mcp.WithString("design", mcp.Required(), mcp.Description("Relative path to the design file")),
		mcp.WithString("path_id", mcp.Required(), mcp.Description("Id of the highlight to delete")),
	), s.deleteHighlight)

	s.mcp.AddTool(mcp.NewTool("search_components",
		mcp.WithDescription("Full-text search across cataloged components (refs, values, footprints, descriptions)."),
		mcp.WithString("query", mcp.Required(), mcp.Description("Search query string")),
	), s.searchComponents)

	s.mcp.AddTool(mcp.NewTool("identify_circuit_patterns",
		mcp.WithDescription("Recognize common building blocks in a design: decoupling capacitors, "+
			"RC filters, and power supply blocks."),
		mcp.WithString("design", mcp.Required(), mcp.Description("Relative path to the design file")),
	), s.identifyCircuitPatterns)

	// Resource: power net conventions.
	s.mcp.AddResource(
		mcp.NewResource("raido://power-net-conventions", "Power Net Conventions",
			mcp.WithResourceDescription("How power nets are classified and how that shapes traversal."),
			mcp.WithMIMEType("text/markdown"),
		),
		s.readPowerConventionsResource,
	)

	return s
}

// ServeStdio starts the MCP server on stdin/stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcp)
}

// MCPServer returns the underlying server for testing.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcp
}

func (s *Server) listDesigns(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	rows, err := s.svc.ListDesigns(ctx)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if len(rows) == 0 {
		return mcp.NewToolResultText("no designs cataloged"), nil
	}
	var paths []string
	for _, d := range rows {
		paths = append(paths, d.Path)
	}
	return mcp.NewToolResultText(strings.Join(paths, "\n")), nil
}

func (s *Server) analyzeDesign(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	design, err := req.RequireString("design")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	sum, err := s.svc.AnalyzeFile(ctx, design)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	out, _ := json.MarshalIndent(sum, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) getComponentInfo(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	design, err := req.RequireString("design")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	ref, err := req.RequireString("ref")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	info, err := s.svc.ComponentInfo(ctx, design, ref)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	conns, err := s.svc.Connections(ctx, design, ref)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	out, _ := json.MarshalIndent(map[string]any{
		"component":   info,
		"connections": conns,
	}, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) analyzeFunctionalBlock(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	design, err := req.RequireString("design")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	ref, err := req.RequireString("ref")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	radius := req.GetInt("radius", 1)
	includePower := req.GetBool("include_power", false)

	neighbors, err := s.svc.Neighbors(ctx, design, ref, radius, includePower)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	out, _ := json.MarshalIndent(map[string]any{
		"ref":       ref,
		"radius":    radius,
		"neighbors": neighbors,
	}, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) findCircuitPaths(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	design, err := req.RequireString("design")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	from, err := req.RequireString("from")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	to, err := req.RequireString("to")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	includePower := req.GetBool("include_power", false)
	maxPaths := req.GetInt("max_paths", 0)

	paths, err := s.svc.FindPaths(ctx, design, from, to, includePower, maxPaths)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if len(paths) == 0 {
		return mcp.NewToolResultText(fmt.Sprintf("no path between %s and %s", from, to)), nil
	}
	return mcp.NewToolResultText(renderPaths(paths)), nil
}

// renderPaths formats paths as "C1 -[N1]-> R1 -[N2]-> U1" lines.
func renderPaths(paths []circuit.Path) string {
	var b strings.Builder
	for i, p := range paths {
		if i > 0 {
			b.WriteByte('\n')
		}
		fmt.Fprintf(&b, "%d hops: ", len(p.Hops))
		for j, ref := range p.Refs {
			if j > 0 {
				fmt.Fprintf(&b, " -[%s]-> ", p.Hops[j-1].Net)
			}
			b.WriteString(ref)
		}
	}
	return b.String()
}

func (s *Server) highlightPath(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	design, err := req.RequireString("design")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	pathID, err := req.RequireString("path_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	netsArg, err := req.RequireString("nets")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	var nets []string
	for _, n := range strings.Split(netsArg, ",") {
		if n = strings.TrimSpace(n); n != "" {
			nets = append(nets, n)
		}
	}
	if len(nets) == 0 {
		return mcp.NewToolResultError("nets must name at least one net"), nil
	}
	preferred := req.GetString("layer", "")

	asg, err := s.svc.HighlightPath(ctx, design, pathID, nets, preferred)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	out, _ := json.MarshalIndent(asg, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) deleteHighlight(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	design, err := req.RequireString("design")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	pathID, err := req.RequireString("path_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if err := s.svc.DeleteHighlight(ctx, design, pathID); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("deleted highlight %s", pathID)), nil
}

func (s *Server) searchComponents(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, err := req.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	results, err := s.svc.Search(ctx, query, 20)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	out, _ := json.MarshalIndent(results, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) identifyCircuitPatterns(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	design, err := req.RequireString("design")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	matches, err := s.svc.Patterns(ctx, design)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if len(matches) == 0 {
		return mcp.NewToolResultText("no patterns recognized"), nil
	}
	out, _ := json.MarshalIndent(matches, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) readPowerConventionsResource(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      "raido://power-net-conventions",
			MIMEType: "text/markdown",
			Text:     PowerNetConventions,
		},
	}, nil
}
