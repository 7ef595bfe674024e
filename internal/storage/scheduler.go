package storage

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/mmuslimabdulj/goat-rooms/internal/domain"
)

// SnapshotSource produces a consistent view of what should be persisted
type SnapshotSource interface {
	Snapshot(ctx context.Context) (*domain.Snapshot, error)
}

// Scheduler periodically writes snapshots to a store
type Scheduler struct {
	source   SnapshotSource
	store    *Store
	interval time.Duration

	// serializes writes between ticks and Flush
	mu sync.Mutex
}

// NewScheduler creates a scheduler. Non-positive intervals use the default.
func NewScheduler(source SnapshotSource, store *Store, interval time.Duration) *Scheduler {
	if interval <= 0 {
		interval = domain.PersistInterval
	}
	return &Scheduler{source: source, store: store, interval: interval}
}

// Run saves on every tick until ctx is cancelled. Failures are logged and
// retried on the next tick.
func (s *Scheduler) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := s.Flush(ctx); err != nil && ctx.Err() == nil {
				log.Printf("[storage] periodic save failed: %v", err)
			}
		}
	}
}

// Flush takes a snapshot and writes it now
func (s *Scheduler) Flush(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap, err := s.source.Snapshot(ctx)
	if err != nil {
		return err
	}
	return s.store.Save(ctx, snap)
}
