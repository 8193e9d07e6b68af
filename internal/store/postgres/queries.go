package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/loomworks/seam/internal/store"
)

// analysisColumns is the column list used for SELECT statements on the analyses table.
const analysisColumns = `id, actor, created_at, component_count, missing_count,
	cycle_count, orphan_count, snapshot`

// fixColumns is the column list used for SELECT statements on the fixes table.
const fixColumns = `id, analysis_id, file, line, plan, components, created_at`

// executor is the interface satisfied by both *sql.DB and *sql.Tx.
type executor interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func queryCreateAnalysis(ctx context.Context, db executor, a *store.Analysis) error {
	_, err := db.ExecContext(ctx, `
		INSERT INTO analyses (
			id, actor, created_at, component_count, missing_count,
			cycle_count, orphan_count, snapshot
		) VALUES (
			$1, $2, $3, $4, $5,
			$6, $7, $8
		)`,
		a.ID,
		nullString(a.Actor),
		a.CreatedAt,
		a.ComponentCount,
		a.MissingCount,
		a.CycleCount,
		a.OrphanCount,
		jsonbBytes(a.Snapshot),
	)
	return err
}

func queryGetAnalysis(ctx context.Context, db executor, id string) (*store.Analysis, error) {
	row := db.QueryRowContext(ctx, `SELECT `+analysisColumns+` FROM analyses WHERE id = $1`, id)
	return scanAnalysis(row)
}

func queryListAnalyses(ctx context.Context, db executor, filter store.AnalysisFilter) ([]*store.Analysis, int, error) {
	var (
		whereClauses []string
		args         []any
		argIdx       int
	)

	nextArg := func() string {
		argIdx++
		return fmt.Sprintf("$%d", argIdx)
	}

	if filter.Actor != "" {
		whereClauses = append(whereClauses, "actor = "+nextArg())
		args = append(args, filter.Actor)
	}

	if filter.Since != nil {
		whereClauses = append(whereClauses, "created_at >= "+nextArg())
		args = append(args, *filter.Since)
	}

	whereSQL := ""
	if len(whereClauses) > 0 {
		whereSQL = " WHERE " + strings.Join(whereClauses, " AND ")
	}

	// Single query with COUNT(*) OVER() to get total and rows atomically.
	dataQuery := "SELECT COUNT(*) OVER() AS total_count, " + analysisColumns + " FROM analyses" + whereSQL + " ORDER BY " + parseSortClause(filter.Sort)

	if filter.Limit > 0 {
		dataQuery += " LIMIT " + nextArg()
		args = append(args, filter.Limit)
	}
	if filter.Offset > 0 {
		dataQuery += " OFFSET " + nextArg()
		args = append(args, filter.Offset)
	}

	rows, err := db.QueryContext(ctx, dataQuery, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list analyses: %w", err)
	}
	defer rows.Close()

	var analyses []*store.Analysis
	var total int
	for rows.Next() {
		a, t, err := scanAnalysisWithTotal(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan analyses: %w", err)
		}
		total = t
		analyses = append(analyses, a)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("scan analyses: %w", err)
	}

	return analyses, total, nil
}

func queryDeleteAnalysis(ctx context.Context, db executor, id string) error {
	// Fixes are removed by the ON DELETE CASCADE on fixes.analysis_id.
	res, err := db.ExecContext(ctx, `DELETE FROM analyses WHERE id = $1`, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func queryCreateFix(ctx context.Context, db executor, f *store.Fix) error {
	components, err := json.Marshal(f.Components)
	if err != nil {
		return fmt.Errorf("marshal fix components: %w", err)
	}
	_, err = db.ExecContext(ctx, `
		INSERT INTO fixes (
			id, analysis_id, file, line, plan, components, created_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7
		)`,
		f.ID,
		f.AnalysisID,
		f.File,
		f.Line,
		f.Plan,
		components,
		f.CreatedAt,
	)
	return err
}

func queryListFixes(ctx context.Context, db executor, analysisID string) ([]*store.Fix, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT `+fixColumns+` FROM fixes WHERE analysis_id = $1 ORDER BY file, line, id`,
		analysisID)
	if err != nil {
		return nil, fmt.Errorf("list fixes: %w", err)
	}
	defer rows.Close()

	var fixes []*store.Fix
	for rows.Next() {
		f, err := scanFix(rows)
		if err != nil {
			return nil, fmt.Errorf("scan fixes: %w", err)
		}
		fixes = append(fixes, f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("scan fixes: %w", err)
	}
	return fixes, nil
}

func queryGetStats(ctx context.Context, db executor) (*store.Stats, error) {
	row := db.QueryRowContext(ctx, `
		SELECT
			(SELECT COUNT(*) FROM analyses),
			(SELECT COUNT(*) FROM fixes),
			(SELECT MAX(created_at) FROM analyses)`)

	var stats store.Stats
	var last sql.NullTime
	if err := row.Scan(&stats.Analyses, &stats.Fixes, &last); err != nil {
		return nil, fmt.Errorf("get stats: %w", err)
	}
	if last.Valid {
		t := last.Time
		stats.LastCreatedAt = &t
	}
	return &stats, nil
}

// sortColumns lists the columns callers may sort analyses by.
var sortColumns = map[string]bool{
	"created_at":      true,
	"component_count": true,
	"missing_count":   true,
	"cycle_count":     true,
	"orphan_count":    true,
}

// parseSortClause converts a filter sort field ("-created_at", "missing_count")
// into a safe ORDER BY clause. Unknown columns fall back to the default.
func parseSortClause(sort string) string {
	desc := strings.HasPrefix(sort, "-")
	col := strings.TrimPrefix(sort, "-")
	if !sortColumns[col] {
		return "created_at DESC"
	}
	if desc {
		return col + " DESC"
	}
	return col + " ASC"
}

func nullString(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func jsonbBytes(raw json.RawMessage) any {
	if len(raw) == 0 {
		return nil
	}
	return []byte(raw)
}
