package store

import (
	"context"
	"encoding/json"
	"time"
)

// Analysis is one persisted analysis run: the submitted payload plus
// everything the engine derived from it, kept as an opaque snapshot.
type Analysis struct {
	ID             string          `json:"id"`
	Actor          string          `json:"actor,omitempty"`
	CreatedAt      time.Time       `json:"created_at"`
	ComponentCount int             `json:"component_count"`
	MissingCount   int             `json:"missing_count"`
	CycleCount     int             `json:"cycle_count"`
	OrphanCount    int             `json:"orphan_count"`
	Snapshot       json.RawMessage `json:"snapshot,omitempty"`
}

// Fix is one persisted wiring fix, tied to the analysis that produced it.
type Fix struct {
	ID         string    `json:"id"`
	AnalysisID string    `json:"analysis_id"`
	File       string    `json:"file"`
	Line       int       `json:"line"`
	Plan       string    `json:"plan"`
	Components []string  `json:"components,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

// AnalysisFilter selects analyses for listing.
type AnalysisFilter struct {
	Actor  string     `json:"actor,omitempty"`
	Since  *time.Time `json:"since,omitempty"`
	Sort   string     `json:"sort,omitempty"`
	Limit  int        `json:"limit,omitempty"`
	Offset int        `json:"offset,omitempty"`
}

// Stats summarizes the stored history.
type Stats struct {
	Analyses      int        `json:"analyses"`
	Fixes         int        `json:"fixes"`
	LastCreatedAt *time.Time `json:"last_created_at,omitempty"`
}

// Store defines the persistence interface for analyses and fixes.
type Store interface {
	// Analyses
	CreateAnalysis(ctx context.Context, a *Analysis) error
	GetAnalysis(ctx context.Context, id string) (*Analysis, error)
	ListAnalyses(ctx context.Context, filter AnalysisFilter) ([]*Analysis, int, error) // returns analyses, total count, error
	DeleteAnalysis(ctx context.Context, id string) error

	// Fixes
	CreateFix(ctx context.Context, f *Fix) error
	ListFixes(ctx context.Context, analysisID string) ([]*Fix, error)

	// Aggregates
	GetStats(ctx context.Context) (*Stats, error)

	// Transaction support
	RunInTransaction(ctx context.Context, fn func(tx Store) error) error

	// Lifecycle
	Close() error
}
