// Package server exposes the analysis engine and the stored history over
// HTTP/JSON, with an SSE stream for live events.
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/loomworks/seam/internal/catalog"
	"github.com/loomworks/seam/internal/engine"
	"github.com/loomworks/seam/internal/events"
	"github.com/loomworks/seam/internal/idgen"
	"github.com/loomworks/seam/internal/store"
)

// SeamServer serves analyses: it runs the engine over submitted payloads,
// persists the results, and fans out events.
type SeamServer struct {
	store     store.Store
	publisher events.Publisher
	sseHub    *sseHub
}

// NewSeamServer returns a new SeamServer backed by the given store and publisher.
func NewSeamServer(s store.Store, p events.Publisher) *SeamServer {
	return &SeamServer{
		store:     s,
		publisher: p,
		sseHub:    newSSEHub(),
	}
}

// publish sends an event to NATS and to connected SSE clients. Both are
// best-effort; failures are logged but do not block the caller.
func (s *SeamServer) publish(ctx context.Context, event events.Event) {
	if err := s.publisher.Publish(ctx, event); err != nil {
		slog.Warn("failed to publish event", "topic", event.Topic(), "error", err)
	}
	s.broadcastEvent(event)
}

// runAnalysis runs one engine pass over the payload, persists the analysis
// and its fixes in a single transaction, and publishes lifecycle events.
func (s *SeamServer) runAnalysis(ctx context.Context, p *catalog.Payload, opts engine.Options, actor string) (*store.Analysis, []*store.Fix, error) {
	snap := engine.Analyze(p, opts)

	raw, err := json.Marshal(snap)
	if err != nil {
		return nil, nil, fmt.Errorf("marshal snapshot: %w", err)
	}

	id, err := idgen.Generate()
	if err != nil {
		return nil, nil, err
	}

	now := time.Now().UTC()
	analysis := &store.Analysis{
		ID:             id,
		Actor:          actor,
		CreatedAt:      now,
		ComponentCount: len(p.Components),
		MissingCount:   len(snap.Resolution.Missing),
		CycleCount:     len(snap.Cycles),
		OrphanCount:    len(snap.Orphans),
		Snapshot:       raw,
	}

	fixes := make([]*store.Fix, 0, len(snap.Fixes))
	for _, wf := range snap.Fixes {
		fixID, err := idgen.GenerateWithPrefix(idgen.FixPrefix)
		if err != nil {
			return nil, nil, err
		}
		fixes = append(fixes, &store.Fix{
			ID:         fixID,
			AnalysisID: id,
			File:       wf.File,
			Line:       wf.Line,
			Plan:       wf.Plan.String(),
			Components: wf.Components,
			CreatedAt:  now,
		})
	}

	err = s.store.RunInTransaction(ctx, func(tx store.Store) error {
		if err := tx.CreateAnalysis(ctx, analysis); err != nil {
			return fmt.Errorf("create analysis: %w", err)
		}
		for _, f := range fixes {
			if err := tx.CreateFix(ctx, f); err != nil {
				return fmt.Errorf("create fix: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		s.publish(ctx, events.AnalysisFailed{AnalysisID: id, Error: err.Error()})
		return nil, nil, err
	}

	s.publish(ctx, events.AnalysisCompleted{
		AnalysisID: id,
		Components: analysis.ComponentCount,
		Missing:    analysis.MissingCount,
		Cycles:     analysis.CycleCount,
		Orphans:    analysis.OrphanCount,
		Fixes:      len(fixes),
	})
	for _, f := range fixes {
		s.publish(ctx, events.FixPlanned{
			AnalysisID: id,
			FixID:      f.ID,
			File:       f.File,
			Line:       f.Line,
			Plan:       f.Plan,
			Components: f.Components,
		})
	}

	return analysis, fixes, nil
}

// decodeSnapshot unpacks the stored engine snapshot of an analysis.
func decodeSnapshot(a *store.Analysis) (*engine.Snapshot, error) {
	if len(a.Snapshot) == 0 {
		return nil, fmt.Errorf("analysis %s has no snapshot", a.ID)
	}
	var snap engine.Snapshot
	if err := json.Unmarshal(a.Snapshot, &snap); err != nil {
		return nil, fmt.Errorf("decode snapshot for %s: %w", a.ID, err)
	}
	return &snap, nil
}
