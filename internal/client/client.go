// Package client provides a transport-agnostic interface for the seam service
// and an HTTP/JSON implementation that talks to the seam REST API.
package client

import (
	"context"
	"encoding/json"

	"github.com/loomworks/seam/internal/catalog"
	"github.com/loomworks/seam/internal/layout"
	"github.com/loomworks/seam/internal/resolve"
	"github.com/loomworks/seam/internal/store"
)

// SeamClient is the interface that all seam CLI commands use to communicate
// with the seam server. It is implemented by HTTPClient (default) and can be
// backed by any transport.
type SeamClient interface {
	// Analyses
	SubmitAnalysis(ctx context.Context, req *SubmitAnalysisRequest) (*SubmitAnalysisResponse, error)
	GetAnalysis(ctx context.Context, id string) (*store.Analysis, error)
	ListAnalyses(ctx context.Context, req *ListAnalysesRequest) (*ListAnalysesResponse, error)
	DeleteAnalysis(ctx context.Context, id string) error

	// Derived views
	GetGraph(ctx context.Context, id string) (*layout.Layout, error)
	RenderAnalysis(ctx context.Context, id string, width int, selected string) ([]string, error)
	ListFixes(ctx context.Context, analysisID string) ([]*store.Fix, error)

	// Stateless resolution
	Resolve(ctx context.Context, req *ResolveRequest) (*resolve.Result, error)
	Reresolve(ctx context.Context, id string, req *ReresolveRequest) (*resolve.Result, error)

	// Aggregates
	GetStats(ctx context.Context) (*store.Stats, error)

	// Events
	StreamEvents(ctx context.Context, topics []string) (<-chan StreamEvent, error)

	// Health
	Health(ctx context.Context) (string, error)

	// Lifecycle
	Close() error
}

// SubmitAnalysisRequest holds parameters for submitting an analysis.
type SubmitAnalysisRequest struct {
	Components  []*catalog.Component     `json:"components"`
	Missing     []catalog.MissingRequest `json:"missing,omitempty"`
	Actor       string                   `json:"actor,omitempty"`
	Overrides   map[string]string        `json:"overrides,omitempty"`
	RenderWidth int                      `json:"render_width,omitempty"`
	Selected    string                   `json:"selected,omitempty"`
}

// SubmitAnalysisResponse is the response from SubmitAnalysis.
type SubmitAnalysisResponse struct {
	Analysis *store.Analysis `json:"analysis"`
	Fixes    []*store.Fix    `json:"fixes"`
}

// ListAnalysesRequest holds parameters for listing analyses.
type ListAnalysesRequest struct {
	Actor  string `json:"actor,omitempty"`
	Since  string `json:"since,omitempty"` // RFC 3339
	Sort   string `json:"sort,omitempty"`
	Limit  int    `json:"limit,omitempty"`
	Offset int    `json:"offset,omitempty"`
}

// ListAnalysesResponse is the response from ListAnalyses.
type ListAnalysesResponse struct {
	Analyses []*store.Analysis `json:"analyses"`
	Total    int               `json:"total"`
}

// ResolveRequest holds parameters for a stateless resolution pass.
type ResolveRequest struct {
	Components []*catalog.Component `json:"components"`
	Requested  []string             `json:"requested"`
	Overrides  map[string]string    `json:"overrides,omitempty"`
}

// ReresolveRequest holds parameters for re-resolving a stored analysis.
// Empty Requested means the analysis's missing capabilities.
type ReresolveRequest struct {
	Requested []string          `json:"requested,omitempty"`
	Overrides map[string]string `json:"overrides,omitempty"`
}

// StreamEvent is one event received from the server's SSE stream.
type StreamEvent struct {
	ID    string          `json:"id"`
	Topic string          `json:"topic"`
	Data  json.RawMessage `json:"data"`
}
