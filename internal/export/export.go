// Package export assembles the stored analysis history into a typed
// snapshot, renders it as JSONL, and ships it to configured
// destinations on a schedule.
package export

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/loomworks/seam/internal/store"
)

// History is one collected export: every stored analysis paired with
// its fixes, in ascending ID order.
type History struct {
	GeneratedAt time.Time
	Entries     []Entry
}

// Entry is one analysis with the wiring fixes it produced.
type Entry struct {
	Analysis *store.Analysis
	Fixes    []*store.Fix
}

// FixCount returns the total number of fixes across all entries.
func (h *History) FixCount() int {
	n := 0
	for _, e := range h.Entries {
		n += len(e.Fixes)
	}
	return n
}

// Collect loads the full analysis history from the store.
func Collect(ctx context.Context, s store.Store) (*History, error) {
	analyses, _, err := s.ListAnalyses(ctx, store.AnalysisFilter{Sort: "created_at"})
	if err != nil {
		return nil, fmt.Errorf("list analyses: %w", err)
	}
	sort.Slice(analyses, func(i, j int) bool {
		return analyses[i].ID < analyses[j].ID
	})

	h := &History{
		GeneratedAt: time.Now().UTC(),
		Entries:     make([]Entry, 0, len(analyses)),
	}
	for _, a := range analyses {
		fixes, err := s.ListFixes(ctx, a.ID)
		if err != nil {
			return nil, fmt.Errorf("list fixes for %s: %w", a.ID, err)
		}
		h.Entries = append(h.Entries, Entry{Analysis: a, Fixes: fixes})
	}
	return h, nil
}

// header is the first JSONL line of a rendered history. It carries no
// timestamp so that identical histories render to identical bytes,
// which lets destinations detect no-op exports.
type header struct {
	Version       string `json:"version"`
	Type          string `json:"type"`
	AnalysisCount int    `json:"analysis_count"`
	FixCount      int    `json:"fix_count"`
}

// record wraps a single JSONL line with a type discriminator.
type record struct {
	Type string `json:"type"`
	Data any    `json:"data"`
}

// WriteJSONL renders the history: one header line, then each analysis
// line followed by its fix lines.
func (h *History) WriteJSONL(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)

	if err := enc.Encode(header{
		Version:       "1",
		Type:          "header",
		AnalysisCount: len(h.Entries),
		FixCount:      h.FixCount(),
	}); err != nil {
		return fmt.Errorf("encode header: %w", err)
	}

	for _, e := range h.Entries {
		if err := enc.Encode(record{Type: "analysis", Data: e.Analysis}); err != nil {
			return fmt.Errorf("encode analysis %s: %w", e.Analysis.ID, err)
		}
		for _, f := range e.Fixes {
			if err := enc.Encode(record{Type: "fix", Data: f}); err != nil {
				return fmt.Errorf("encode fix %s: %w", f.ID, err)
			}
		}
	}
	return nil
}

// ExportJSONL collects the history and renders it to w in one step.
func ExportJSONL(ctx context.Context, s store.Store, w io.Writer) error {
	h, err := Collect(ctx, s)
	if err != nil {
		return err
	}
	return h.WriteJSONL(w)
}
