package export

import (
	"bytes"
	"context"
	"log/slog"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/loomworks/seam/internal/store"
)

// mockDestination records the histories handed to Write.
type mockDestination struct {
	mu     sync.Mutex
	writes int
	last   *History
}

func (d *mockDestination) Write(_ context.Context, h *History) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.writes++
	d.last = h
	return nil
}

func (d *mockDestination) snapshot() (int, *History) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.writes, d.last
}

func TestSchedulerStartStop(t *testing.T) {
	ms := newMockStore()
	now := time.Now().UTC()
	ms.analyses["an-1"] = &store.Analysis{ID: "an-1", ComponentCount: 1, CreatedAt: now}
	ms.fixes["an-1"] = []*store.Fix{{ID: "fx-1", AnalysisID: "an-1", File: "main.x", Plan: "provide(Db)", CreatedAt: now}}

	dest := &mockDestination{}
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	sched := NewScheduler(ms, []Destination{dest}, 50*time.Millisecond, logger)
	sched.Start()

	// Wait for at least the initial export + one tick.
	time.Sleep(120 * time.Millisecond)
	sched.Stop()

	writes, last := dest.snapshot()
	if writes < 2 {
		t.Fatalf("expected at least 2 writes, got %d", writes)
	}
	if last == nil {
		t.Fatal("no history delivered")
	}
	if len(last.Entries) != 1 || last.FixCount() != 1 {
		t.Fatalf("history has %d entries, %d fixes; want 1 and 1", len(last.Entries), last.FixCount())
	}
	if last.Entries[0].Analysis.ID != "an-1" {
		t.Errorf("entry ID = %s, want an-1", last.Entries[0].Analysis.ID)
	}

	var buf bytes.Buffer
	if err := last.WriteJSONL(&buf); err != nil {
		t.Fatalf("render delivered history: %v", err)
	}
	// 1 header + 1 analysis + 1 fix = 3
	if lines := nonEmptyLines(buf.String()); len(lines) != 3 {
		t.Fatalf("expected 3 lines, got %d", len(lines))
	}
}

func TestSchedulerStop_NoStart(t *testing.T) {
	ms := newMockStore()
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	sched := NewScheduler(ms, nil, time.Minute, logger)
	// Stop without Start should not panic.
	sched.Stop()
}

func TestSchedulerMultipleDestinations(t *testing.T) {
	ms := newMockStore()
	dest1 := &mockDestination{}
	dest2 := &mockDestination{}
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	sched := NewScheduler(ms, []Destination{dest1, dest2}, time.Second, logger)
	sched.Start()

	// Wait for the initial export.
	time.Sleep(50 * time.Millisecond)
	sched.Stop()

	for i, dest := range []*mockDestination{dest1, dest2} {
		writes, last := dest.snapshot()
		if writes < 1 {
			t.Fatalf("dest%d expected at least 1 write", i+1)
		}
		if last == nil {
			t.Fatalf("dest%d received no history", i+1)
		}
	}
}
