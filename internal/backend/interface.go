// Package backend opens the book on the configured persistence backend.
package backend

import (
	"context"
	"time"

	"milkround/internal/storage"
	"milkround/internal/store"
)

// BackendType names where the book is persisted.
type BackendType string

const (
	MemoryBackend BackendType = "memory"
	SQLiteBackend BackendType = "sqlite"
)

func (bt BackendType) String() string {
	return string(bt)
}

func (bt BackendType) IsValid() bool {
	switch bt {
	case MemoryBackend, SQLiteBackend:
		return true
	default:
		return false
	}
}

type Config struct {
	Type BackendType

	// SQLite specific
	SQLiteDBPath     string
	SnapshotInterval time.Duration

	// Location is the calendar of the book; nil means UTC.
	Location *time.Location
}

// CleanupFunc releases the backend. It saves pending changes first.
type CleanupFunc func(ctx context.Context) error

// BackendResult is an opened book. Snapshotter is nil for the memory backend.
type BackendResult struct {
	Store       *store.Store
	Snapshotter *storage.Snapshotter
	Interval    time.Duration
	Cleanup     CleanupFunc
}

// Start runs periodic snapshots until ctx is done. It is a no-op without persistence.
func (r *BackendResult) Start(ctx context.Context) {
	if r.Snapshotter == nil {
		return
	}
	go r.Snapshotter.Run(ctx, r.Interval)
}

type Factory interface {
	CreateBackend(ctx context.Context, config Config) (*BackendResult, error)
}
