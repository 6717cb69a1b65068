package storage

import (
	"context"
	"fmt"
	"sync"
	"time"

	"milkround/internal/core"
	applog "milkround/internal/log"
)

// Source is the in-memory book being persisted.
type Source interface {
	Snapshot() core.Snapshot
	Version() uint64
}

type Repository interface {
	LoadAll(ctx context.Context) (core.Snapshot, error)
	SaveAll(ctx context.Context, snap core.Snapshot) error
}

// Snapshotter saves the book whenever its version moved since the last save.
type Snapshotter struct {
	src    Source
	repo   Repository
	logger *applog.Logger

	mu    sync.Mutex
	saved uint64
}

func NewSnapshotter(src Source, repo Repository, logger *applog.Logger) *Snapshotter {
	if logger == nil {
		logger = applog.Discard()
	}
	return &Snapshotter{src: src, repo: repo, logger: logger.WithComponent(applog.ComponentStorage)}
}

// MarkLoaded records the version right after a restore so an unchanged book
// is not written back.
func (s *Snapshotter) MarkLoaded() {
	s.mu.Lock()
	s.saved = s.src.Version()
	s.mu.Unlock()
}

// Flush saves if anything changed. It reports whether a save happened.
func (s *Snapshotter) Flush(ctx context.Context) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	version := s.src.Version()
	if version == s.saved {
		return false, nil
	}
	snap := s.src.Snapshot()
	if err := s.repo.SaveAll(ctx, snap); err != nil {
		return false, fmt.Errorf("save snapshot: %w", err)
	}
	s.saved = version
	s.logger.DebugContext(ctx, "snapshot saved",
		"version", version,
		"customers", len(snap.Customers),
		"deliveries", len(snap.Deliveries))
	return true, nil
}

// Run flushes every interval until ctx is done. Failed saves are logged and
// retried on the next tick.
func (s *Snapshotter) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := s.Flush(ctx); err != nil {
				s.logger.ErrorContext(ctx, "periodic snapshot failed", applog.FieldError, err, applog.FieldOperation, applog.OpSave)
			}
		}
	}
}
