package server

import (
	"database/sql"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/loomworks/seam/internal/catalog"
	"github.com/loomworks/seam/internal/engine"
	"github.com/loomworks/seam/internal/events"
	"github.com/loomworks/seam/internal/store"
)

// submitAnalysisInput is the request body for POST /v1/analyses.
type submitAnalysisInput struct {
	Components  []*catalog.Component     `json:"components"`
	Missing     []catalog.MissingRequest `json:"missing"`
	Actor       string                   `json:"actor,omitempty"`
	Overrides   map[string]string        `json:"overrides,omitempty"`
	RenderWidth int                      `json:"render_width,omitempty"`
	Selected    string                   `json:"selected,omitempty"`
}

// handleSubmitAnalysis handles POST /v1/analyses.
func (s *SeamServer) handleSubmitAnalysis(w http.ResponseWriter, r *http.Request) {
	var in submitAnalysisInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	p := &catalog.Payload{Components: in.Components, Missing: in.Missing}
	s.publish(r.Context(), events.AnalysisSubmitted{
		Actor:      in.Actor,
		Components: len(p.Components),
		Missing:    len(p.Missing),
	})

	opts := engine.Options{
		Overrides:   in.Overrides,
		RenderWidth: in.RenderWidth,
		Selected:    in.Selected,
	}
	analysis, fixes, err := s.runAnalysis(r.Context(), p, opts, in.Actor)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{
		"analysis": analysis,
		"fixes":    fixes,
	})
}

// handleListAnalyses handles GET /v1/analyses.
func (s *SeamServer) handleListAnalyses(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := store.AnalysisFilter{
		Actor: q.Get("actor"),
		Sort:  q.Get("sort"),
	}

	if v := q.Get("since"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			writeError(w, http.StatusBadRequest, "since must be RFC 3339")
			return
		}
		filter.Since = &t
	}
	if v := q.Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			filter.Limit = n
		}
	}
	if v := q.Get("offset"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			filter.Offset = n
		}
	}

	analyses, total, err := s.store.ListAnalyses(r.Context(), filter)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list analyses")
		return
	}

	// Ensure analyses is never null in JSON output.
	if analyses == nil {
		analyses = []*store.Analysis{}
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"analyses": analyses,
		"total":    total,
	})
}

// handleGetAnalysis handles GET /v1/analyses/{id}.
func (s *SeamServer) handleGetAnalysis(w http.ResponseWriter, r *http.Request) {
	analysis, ok := s.fetchAnalysis(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, analysis)
}

// handleDeleteAnalysis handles DELETE /v1/analyses/{id}.
func (s *SeamServer) handleDeleteAnalysis(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "id is required")
		return
	}

	if err := s.store.DeleteAnalysis(r.Context(), id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			writeError(w, http.StatusNotFound, "analysis not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to delete analysis")
		return
	}

	s.publish(r.Context(), events.AnalysisDeleted{AnalysisID: id})
	w.WriteHeader(http.StatusNoContent)
}

// handleGetGraph handles GET /v1/analyses/{id}/graph. The layout is
// recomputed from the stored payload so clients always see the current
// drawing description.
func (s *SeamServer) handleGetGraph(w http.ResponseWriter, r *http.Request) {
	analysis, ok := s.fetchAnalysis(w, r)
	if !ok {
		return
	}
	snap, err := decodeSnapshot(analysis)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	c := snap.Payload.Catalog()
	l := engine.Layout(c, engine.BuildIndex(c))
	writeJSON(w, http.StatusOK, l)
}

// handleRenderAnalysis handles GET /v1/analyses/{id}/render.
// Query params: width (default 80), selected.
func (s *SeamServer) handleRenderAnalysis(w http.ResponseWriter, r *http.Request) {
	analysis, ok := s.fetchAnalysis(w, r)
	if !ok {
		return
	}
	snap, err := decodeSnapshot(analysis)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	width := 0
	if v := r.URL.Query().Get("width"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			writeError(w, http.StatusBadRequest, "width must be a positive integer")
			return
		}
		width = n
	}

	c := snap.Payload.Catalog()
	l := engine.Layout(c, engine.BuildIndex(c))
	diagram := engine.Render(l, width, r.URL.Query().Get("selected"))
	writeJSON(w, http.StatusOK, map[string]any{"diagram": diagram})
}

// handleListFixes handles GET /v1/analyses/{id}/fixes.
func (s *SeamServer) handleListFixes(w http.ResponseWriter, r *http.Request) {
	analysis, ok := s.fetchAnalysis(w, r)
	if !ok {
		return
	}

	fixes, err := s.store.ListFixes(r.Context(), analysis.ID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list fixes")
		return
	}
	if fixes == nil {
		fixes = []*store.Fix{}
	}

	writeJSON(w, http.StatusOK, map[string]any{"fixes": fixes})
}

// reresolveInput is the request body for POST /v1/analyses/{id}/resolve.
type reresolveInput struct {
	Requested []string          `json:"requested,omitempty"`
	Overrides map[string]string `json:"overrides,omitempty"`
}

// handleReresolve handles POST /v1/analyses/{id}/resolve: a fresh resolution
// pass over the stored catalog, typically with different overrides. Requested
// defaults to the payload's missing capabilities. Nothing is persisted.
func (s *SeamServer) handleReresolve(w http.ResponseWriter, r *http.Request) {
	analysis, ok := s.fetchAnalysis(w, r)
	if !ok {
		return
	}
	snap, err := decodeSnapshot(analysis)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	// An empty body means "defaults": re-resolve the stored missing set.
	var in reresolveInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	requested := in.Requested
	if len(requested) == 0 {
		requested = snap.Payload.MissingCapabilities()
	}

	ix := engine.BuildIndex(snap.Payload.Catalog())
	writeJSON(w, http.StatusOK, engine.Resolve(requested, ix, in.Overrides))
}

// resolveInput is the request body for POST /v1/resolve.
type resolveInput struct {
	Components []*catalog.Component `json:"components"`
	Requested  []string             `json:"requested"`
	Overrides  map[string]string    `json:"overrides,omitempty"`
}

// handleResolve handles POST /v1/resolve: a stateless resolution pass with
// nothing persisted.
func (s *SeamServer) handleResolve(w http.ResponseWriter, r *http.Request) {
	var in resolveInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if len(in.Requested) == 0 {
		writeError(w, http.StatusBadRequest, "requested is required")
		return
	}

	ix := engine.BuildIndex(catalog.New(in.Components))
	writeJSON(w, http.StatusOK, engine.Resolve(in.Requested, ix, in.Overrides))
}

// handleGetStats handles GET /v1/stats.
func (s *SeamServer) handleGetStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.store.GetStats(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to get stats")
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

// fetchAnalysis loads the analysis named by the {id} path value, writing the
// error response itself when the lookup fails.
func (s *SeamServer) fetchAnalysis(w http.ResponseWriter, r *http.Request) (*store.Analysis, bool) {
	id := r.PathValue("id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "id is required")
		return nil, false
	}

	analysis, err := s.store.GetAnalysis(r.Context(), id)
	if errors.Is(err, sql.ErrNoRows) {
		writeError(w, http.StatusNotFound, "analysis not found")
		return nil, false
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to get analysis")
		return nil, false
	}
	return analysis, true
}
