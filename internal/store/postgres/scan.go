package postgres

import (
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/loomworks/seam/internal/store"
)

// scannable is the interface satisfied by both *sql.Row and *sql.Rows.
type scannable interface {
	Scan(dest ...any) error
}

// scanAnalysis scans a single row into a store.Analysis.
// The row must contain columns in the order defined by analysisColumns.
func scanAnalysis(row scannable) (*store.Analysis, error) {
	var a store.Analysis
	var (
		actor    sql.NullString
		snapshot []byte
	)

	err := row.Scan(
		&a.ID,
		&actor,
		&a.CreatedAt,
		&a.ComponentCount,
		&a.MissingCount,
		&a.CycleCount,
		&a.OrphanCount,
		&snapshot,
	)
	if err != nil {
		return nil, err
	}

	a.Actor = actor.String
	if len(snapshot) > 0 {
		a.Snapshot = json.RawMessage(snapshot)
	}

	return &a, nil
}

// scanAnalysisWithTotal scans a row that has a leading total_count column
// followed by the standard analysis columns. Used by queryListAnalyses with
// COUNT(*) OVER().
func scanAnalysisWithTotal(row scannable) (*store.Analysis, int, error) {
	var total int
	var a store.Analysis
	var (
		actor    sql.NullString
		snapshot []byte
	)

	err := row.Scan(
		&total,
		&a.ID,
		&actor,
		&a.CreatedAt,
		&a.ComponentCount,
		&a.MissingCount,
		&a.CycleCount,
		&a.OrphanCount,
		&snapshot,
	)
	if err != nil {
		return nil, 0, err
	}

	a.Actor = actor.String
	if len(snapshot) > 0 {
		a.Snapshot = json.RawMessage(snapshot)
	}

	return &a, total, nil
}

// scanFix scans a single row into a store.Fix.
// The row must contain columns in the order defined by fixColumns.
func scanFix(row scannable) (*store.Fix, error) {
	var f store.Fix
	var components []byte

	err := row.Scan(
		&f.ID,
		&f.AnalysisID,
		&f.File,
		&f.Line,
		&f.Plan,
		&components,
		&f.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	if len(components) > 0 {
		if err := json.Unmarshal(components, &f.Components); err != nil {
			return nil, fmt.Errorf("unmarshal fix components: %w", err)
		}
	}

	return &f, nil
}
