package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/starford/raido/internal/analysis"
	"github.com/starford/raido/internal/apperr"
)

// Handler holds API route handlers.
type Handler struct {
	svc *analysis.Service
}

// NewHandler creates a new Handler.
func NewHandler(svc *analysis.Service) *Handler {
	return &Handler{svc: svc}
}

// designParam extracts the mandatory design query parameter.
func designParam(w http.ResponseWriter, r *http.Request) (string, bool) {
	design := r.URL.Query().Get("design")
	if design == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("query parameter 'design' is required"))
		return "", false
	}
	return design, true
}

// writeDomainError maps service errors onto HTTP statuses.
func writeDomainError(w http.ResponseWriter, err error, op string) {
	switch {
	case errors.Is(err, apperr.ErrNotFound),
		errors.Is(err, apperr.ErrComponentNotFound),
		errors.Is(err, apperr.ErrPathNotFound):
		writeJSON(w, http.StatusNotFound, errorBody(err.Error()))
	case errors.Is(err, apperr.ErrMalformedModel):
		writeJSON(w, http.StatusUnprocessableEntity, errorBody(err.Error()))
	case errors.Is(err, apperr.ErrNoFreeLayer),
		errors.Is(err, apperr.ErrAlreadyAssigned):
		writeJSON(w, http.StatusConflict, errorBody(err.Error()))
	default:
		slog.Error(op+" failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
	}
}

// ListDesigns handles GET /api/designs.
//
//	@Summary		List cataloged design files
//	@Tags			designs
//	@Produce		json
//	@Success		200	{object}	DesignListResponse
//	@Security		BearerAuth
//	@Router			/designs [get]
func (h *Handler) ListDesigns(w http.ResponseWriter, r *http.Request) {
	rows, err := h.svc.ListDesigns(r.Context())
	if err != nil {
		writeDomainError(w, err, "list designs")
		return
	}
	items := make([]DesignListItem, len(rows))
	for i, d := range rows {
		items[i] = DesignListItem{Path: d.Path, Checksum: d.Checksum, UpdatedAt: d.UpdatedAt}
	}
	writeJSON(w, http.StatusOK, map[string]any{"designs": items})
}

// Analyze handles GET /api/analyze.
//
//	@Summary		Build (or reuse) a design's connectivity graph and summarize it
//	@Tags			designs
//	@Produce		json
//	@Param			design	query		string	true	"Design file path"
//	@Success		200		{object}	Summary
//	@Failure		404		{object}	errResponse
//	@Failure		422		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/analyze [get]
func (h *Handler) Analyze(w http.ResponseWriter, r *http.Request) {
	design, ok := designParam(w, r)
	if !ok {
		return
	}
	sum, err := h.svc.AnalyzeFile(r.Context(), design)
	if err != nil {
		writeDomainError(w, err, "analyze")
		return
	}
	writeJSON(w, http.StatusOK, sum)
}

// GetComponent handles GET /api/components/{ref}.
//
//	@Summary		Get one component's attributes and net memberships
//	@Tags			components
//	@Produce		json
//	@Param			ref		path		string	true	"Reference designator"
//	@Param			design	query		string	true	"Design file path"
//	@Success		200		{object}	ComponentDetail
//	@Failure		404		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/components/{ref} [get]
func (h *Handler) GetComponent(w http.ResponseWriter, r *http.Request) {
	design, ok := designParam(w, r)
	if !ok {
		return
	}
	ref := chi.URLParam(r, "ref")
	info, err := h.svc.ComponentInfo(r.Context(), design, ref)
	if err != nil {
		writeDomainError(w, err, "get component")
		return
	}
	writeJSON(w, http.StatusOK, info)
}

// GetConnections handles GET /api/components/{ref}/connections.
//
//	@Summary		Per-net connection report for one component
//	@Tags			components
//	@Produce		json
//	@Param			ref		path		string	true	"Reference designator"
//	@Param			design	query		string	true	"Design file path"
//	@Success		200		{array}		analysis.NetConnections
//	@Failure		404		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/components/{ref}/connections [get]
func (h *Handler) GetConnections(w http.ResponseWriter, r *http.Request) {
	design, ok := designParam(w, r)
	if !ok {
		return
	}
	ref := chi.URLParam(r, "ref")
	report, err := h.svc.Connections(r.Context(), design, ref)
	if err != nil {
		writeDomainError(w, err, "get connections")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ref": ref, "connections": report})
}

// Neighbors handles GET /api/neighbors.
//
//	@Summary		Components within a hop radius of one component
//	@Tags			traversal
//	@Produce		json
//	@Param			design			query		string	true	"Design file path"
//	@Param			ref				query		string	true	"Reference designator"
//	@Param			radius			query		int		false	"Hop radius (default 1)"
//	@Param			include_power	query		bool	false	"Traverse power nets"
//	@Success		200				{object}	NeighborsResponse
//	@Failure		404				{object}	errResponse
//	@Security		BearerAuth
//	@Router			/neighbors [get]
func (h *Handler) Neighbors(w http.ResponseWriter, r *http.Request) {
	design, ok := designParam(w, r)
	if !ok {
		return
	}
	q := r.URL.Query()
	ref := q.Get("ref")
	if ref == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("query parameter 'ref' is required"))
		return
	}
	radius := 1
	if v := q.Get("radius"); v != "" {
		radius, _ = strconv.Atoi(v)
	}
	includePower := q.Get("include_power") == "true"

	neighbors, err := h.svc.Neighbors(r.Context(), design, ref, radius, includePower)
	if err != nil {
		writeDomainError(w, err, "neighbors")
		return
	}
	writeJSON(w, http.StatusOK, NeighborsResponse{Ref: ref, Radius: radius, Neighbors: neighbors})
}

// Paths handles GET /api/paths.
//
//	@Summary		Simple paths between two components, shortest first
//	@Tags			traversal
//	@Produce		json
//	@Param			design			query		string	true	"Design file path"
//	@Param			from			query		string	true	"Start reference"
//	@Param			to				query		string	true	"End reference"
//	@Param			include_power	query		bool	false	"Traverse power nets"
//	@Param			max				query		int		false	"Max paths (default 5)"
//	@Success		200				{object}	PathsResponse
//	@Failure		404				{object}	errResponse
//	@Security		BearerAuth
//	@Router			/paths [get]
func (h *Handler) Paths(w http.ResponseWriter, r *http.Request) {
	design, ok := designParam(w, r)
	if !ok {
		return
	}
	q := r.URL.Query()
	from, to := q.Get("from"), q.Get("to")
	if from == "" || to == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("query parameters 'from' and 'to' are required"))
		return
	}
	maxPaths, _ := strconv.Atoi(q.Get("max"))
	includePower := q.Get("include_power") == "true"

	paths, err := h.svc.FindPaths(r.Context(), design, from, to, includePower, maxPaths)
	if err != nil {
		writeDomainError(w, err, "paths")
		return
	}
	writeJSON(w, http.StatusOK, PathsResponse{From: from, To: to, Paths: paths})
}

// ListHighlights handles GET /api/highlights.
//
//	@Summary		List a design's current path highlights
//	@Tags			highlights
//	@Produce		json
//	@Param			design	query		string	true	"Design file path"
//	@Success		200		{object}	HighlightsResponse
//	@Security		BearerAuth
//	@Router			/highlights [get]
func (h *Handler) ListHighlights(w http.ResponseWriter, r *http.Request) {
	design, ok := designParam(w, r)
	if !ok {
		return
	}
	hs, err := h.svc.ListHighlights(r.Context(), design)
	if err != nil {
		writeDomainError(w, err, "list highlights")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"highlights": hs})
}

// CreateHighlight handles POST /api/highlights.
//
//	@Summary		Assign a visualization layer to a path
//	@Tags			highlights
//	@Accept			json
//	@Produce		json
//	@Param			body	body		HighlightRequest	true	"Highlight to create"
//	@Success		201		{object}	layers.Assignment
//	@Failure		400		{object}	errResponse
//	@Failure		409		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/highlights [post]
func (h *Handler) CreateHighlight(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	var req HighlightRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	if req.Design == "" || req.PathID == "" || len(req.Nets) == 0 {
		writeJSON(w, http.StatusBadRequest, errorBody("design, path_id, and nets are required"))
		return
	}
	asg, err := h.svc.HighlightPath(r.Context(), req.Design, req.PathID, req.Nets, req.Layer)
	if err != nil {
		writeDomainError(w, err, "create highlight")
		return
	}
	writeJSON(w, http.StatusCreated, asg)
}

// DeleteHighlight handles DELETE /api/highlights/{pathID}.
//
//	@Summary		Delete one highlight, leaving others untouched
//	@Tags			highlights
//	@Param			pathID	path	string	true	"Highlight path id"
//	@Param			design	query	string	true	"Design file path"
//	@Success		204		"Highlight deleted"
//	@Failure		404		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/highlights/{pathID} [delete]
func (h *Handler) DeleteHighlight(w http.ResponseWriter, r *http.Request) {
	design, ok := designParam(w, r)
	if !ok {
		return
	}
	pathID := chi.URLParam(r, "pathID")
	if err := h.svc.DeleteHighlight(r.Context(), design, pathID); err != nil {
		writeDomainError(w, err, "delete highlight")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Patterns handles GET /api/patterns.
//
//	@Summary		Recognize circuit building blocks in a design
//	@Tags			patterns
//	@Produce		json
//	@Param			design	query		string	true	"Design file path"
//	@Success		200		{object}	PatternsResponse
//	@Failure		404		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/patterns [get]
func (h *Handler) Patterns(w http.ResponseWriter, r *http.Request) {
	design, ok := designParam(w, r)
	if !ok {
		return
	}
	matches, err := h.svc.Patterns(r.Context(), design)
	if err != nil {
		writeDomainError(w, err, "patterns")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"patterns": matches})
}

// Search handles GET /api/search.
//
//	@Summary		Full-text search across cataloged components
//	@Tags			search
//	@Produce		json
//	@Param			q		query		string	true	"Search query"
//	@Param			limit	query		int		false	"Max results"
//	@Success		200		{object}	SearchResponse
//	@Failure		400		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/search [get]
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	if q == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("query parameter 'q' is required"))
		return
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	hits, err := h.svc.Search(r.Context(), q, limit)
	if err != nil {
		writeDomainError(w, err, "search")
		return
	}
	results := make([]SearchResult, len(hits))
	for i, hit := range hits {
		results[i] = SearchResult{
			Design:    hit.Design,
			Ref:       hit.Ref,
			Value:     hit.Value,
			Footprint: hit.Footprint,
			Snippet:   hit.Snippet,
		}
	}
	writeJSON(w, http.StatusOK, map[string]any{"results": results})
}

// Invalidate handles POST /api/cache/invalidate.
//
//	@Summary		Drop a design's cached graph so the next query rebuilds it
//	@Tags			designs
//	@Accept			json
//	@Param			body	body	InvalidateRequest	true	"Design to invalidate"
//	@Success		204		"Cache entry dropped"
//	@Failure		400		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/cache/invalidate [post]
func (h *Handler) Invalidate(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	var req InvalidateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	if req.Design == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("design is required"))
		return
	}
	h.svc.Invalidate(req.Design, false)
	w.WriteHeader(http.StatusNoContent)
}
