package server

import (
	"encoding/json"
	"net/http"
)

// NewHTTPHandler returns an http.Handler with all routes registered.
// When authToken is non-empty, requests (except GET /v1/health) must include
// a valid Authorization: Bearer <token> header.
func (s *SeamServer) NewHTTPHandler(authToken string) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /v1/analyses", s.handleSubmitAnalysis)
	mux.HandleFunc("GET /v1/analyses", s.handleListAnalyses)
	mux.HandleFunc("GET /v1/analyses/{id}", s.handleGetAnalysis)
	mux.HandleFunc("DELETE /v1/analyses/{id}", s.handleDeleteAnalysis)
	mux.HandleFunc("GET /v1/analyses/{id}/graph", s.handleGetGraph)
	mux.HandleFunc("GET /v1/analyses/{id}/render", s.handleRenderAnalysis)
	mux.HandleFunc("GET /v1/analyses/{id}/fixes", s.handleListFixes)
	mux.HandleFunc("POST /v1/analyses/{id}/resolve", s.handleReresolve)
	mux.HandleFunc("POST /v1/resolve", s.handleResolve)
	mux.HandleFunc("GET /v1/stats", s.handleGetStats)
	mux.HandleFunc("GET /v1/events/stream", s.handleEventStream)
	mux.HandleFunc("GET /v1/health", s.handleHealth)
	return AuthMiddleware(authToken, RecoveryMiddleware(mux))
}

// handleHealth handles GET /v1/health.
func (s *SeamServer) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
