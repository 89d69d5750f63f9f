package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/starford/raido/internal/analysis"
)

// NewRouter creates a chi router with all API routes mounted.
// authEnabled controls whether Bearer token auth is enforced.
// sseHandler, if non-nil, is mounted at GET /events inside the auth group.
func NewRouter(svc *analysis.Service, authEnabled bool, token string, sseHandler http.Handler) chi.Router {
	h := NewHandler(svc)

	r := chi.NewRouter()
	r.Use(AuthMiddleware(authEnabled, token))

	// Designs and analysis.
	r.Get("/designs", h.ListDesigns)
	r.Get("/analyze", h.Analyze)
	r.Post("/cache/invalidate", h.Invalidate)

	// Components.
	r.Get("/components/{ref}", h.GetComponent)
	r.Get("/components/{ref}/connections", h.GetConnections)

	// Traversal.
	r.Get("/neighbors", h.Neighbors)
	r.Get("/paths", h.Paths)

	// Highlights.
	r.Get("/highlights", h.ListHighlights)
	r.Post("/highlights", h.CreateHighlight)
	r.Delete("/highlights/{pathID}", h.DeleteHighlight)

	// Patterns and search.
	r.Get("/patterns", h.Patterns)
	r.Get("/search", h.Search)

	// SSE endpoint (protected by same auth middleware).
	if sseHandler != nil {
		r.Get("/events", sseHandler.ServeHTTP)
	}

	return r
}
