package export

import (
	"context"
	"log/slog"
	"strconv"
	"sync"
	"time"

	"github.com/loomworks/seam/internal/store"
)

// Destination ships one collected history to an export target.
type Destination interface {
	Write(ctx context.Context, h *History) error
}

// Scheduler runs periodic exports to one or more destinations.
type Scheduler struct {
	store        store.Store
	destinations []Destination
	interval     time.Duration
	logger       *slog.Logger

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewScheduler creates a scheduler that exports from the store to the given
// destinations at the specified interval.
func NewScheduler(s store.Store, destinations []Destination, interval time.Duration, logger *slog.Logger) *Scheduler {
	return &Scheduler{
		store:        s,
		destinations: destinations,
		interval:     interval,
		logger:       logger,
	}
}

// Start begins periodic export. It runs an initial export immediately, then
// on each tick.
func (s *Scheduler) Start() {
	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.run(ctx)
	}()
}

// Stop cancels the scheduler and waits for the current export (if any) to finish.
func (s *Scheduler) Stop() {
	if s.cancel != nil {
		s.cancel()
	}
	s.wg.Wait()
}

func (s *Scheduler) run(ctx context.Context) {
	// Run once immediately at startup.
	s.exportOnce(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.exportOnce(ctx)
		}
	}
}

func (s *Scheduler) exportOnce(ctx context.Context) {
	h, err := Collect(ctx, s.store)
	if err != nil {
		s.logger.Error("export collect failed", "err", err)
		return
	}

	for i, dest := range s.destinations {
		if err := dest.Write(ctx, h); err != nil {
			s.logger.Error("export destination write failed", "destination", strconv.Itoa(i), "err", err)
		}
	}

	s.logger.Info("export completed",
		"destinations", len(s.destinations),
		"analyses", len(h.Entries),
		"fixes", h.FixCount())
}
