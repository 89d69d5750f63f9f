package api

import (
	"time"

	"github.com/starford/raido/internal/analysis"
	"github.com/starford/raido/internal/circuit"
	"github.com/starford/raido/internal/layers"
	"github.com/starford/raido/internal/patterns"
)

// Summary is the design analysis response (aliased from the domain layer).
type Summary = analysis.Summary

// ComponentDetail is the component response type (aliased from the domain layer).
type ComponentDetail = analysis.ComponentDetail

// DesignListItem is one entry of a design listing.
type DesignListItem struct {
	Path      string    `json:"path" example:"boards/main.net" validate:"required"`
	Checksum  string    `json:"checksum" example:"abc123..." validate:"required"`
	UpdatedAt time.Time `json:"updated_at"`
}

// DesignListResponse wraps the design listing.
type DesignListResponse struct {
	Designs []DesignListItem `json:"designs" validate:"required"`
}

// NeighborsResponse wraps a neighborhood query result.
type NeighborsResponse struct {
	Ref       string   `json:"ref" example:"U1" validate:"required"`
	Radius    int      `json:"radius" example:"2" validate:"required"`
	Neighbors []string `json:"neighbors" validate:"required"`
}

// PathsResponse wraps a path-finding result.
type PathsResponse struct {
	From  string         `json:"from" example:"C1" validate:"required"`
	To    string         `json:"to" example:"U1" validate:"required"`
	Paths []circuit.Path `json:"paths" validate:"required"`
}

// HighlightRequest is the request body for creating a highlight.
type HighlightRequest struct {
	Design string   `json:"design" example:"boards/main.net" validate:"required"`
	PathID string   `json:"path_id" example:"c1-u1-0" validate:"required"`
	Nets   []string `json:"nets" validate:"required"`
	Layer  string   `json:"layer,omitempty" example:"User.3"`
}

// HighlightsResponse wraps a design's highlight listing.
type HighlightsResponse struct {
	Highlights []*layers.Assignment `json:"highlights" validate:"required"`
}

// PatternsResponse wraps pattern recognition results.
type PatternsResponse struct {
	Patterns []patterns.Match `json:"patterns" validate:"required"`
}

// SearchResponse wraps component search results.
type SearchResponse struct {
	Results []SearchResult `json:"results" validate:"required"`
}

// SearchResult is a single component search hit.
type SearchResult struct {
	Design    string `json:"design" example:"boards/main.net" validate:"required"`
	Ref       string `json:"ref" example:"U1" validate:"required"`
	Value     string `json:"value" example:"STM32F103"`
	Footprint string `json:"footprint" example:"LQFP-48"`
	Snippet   string `json:"snippet" example:"...matched text..."`
}

// InvalidateRequest is the request body for dropping a cached graph.
type InvalidateRequest struct {
	Design string `json:"design" example:"boards/main.net" validate:"required"`
}
