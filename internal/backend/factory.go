package backend

import (
	"context"
	"errors"
	"fmt"

	applog "milkround/internal/log"
	"milkround/internal/storage"
	"milkround/internal/store"
)

type DefaultFactory struct {
	logger *applog.Logger
}

func NewFactory(logger *applog.Logger) Factory {
	if logger == nil {
		logger = applog.Discard()
	}
	return &DefaultFactory{logger: logger.WithComponent(applog.ComponentStorage)}
}

func (f *DefaultFactory) CreateBackend(ctx context.Context, config Config) (*BackendResult, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	switch config.Type {
	case SQLiteBackend:
		return f.createSQLiteBackend(ctx, config)
	case MemoryBackend:
		return f.createMemoryBackend(config), nil
	default:
		return nil, fmt.Errorf("unsupported backend type: %s", config.Type)
	}
}

func (f *DefaultFactory) createMemoryBackend(config Config) *BackendResult {
	f.logger.Info("Initialized memory backend", applog.FieldBackend, config.Type.String())
	return &BackendResult{
		Store:   store.New(store.WithLocation(config.Location)),
		Cleanup: func(context.Context) error { return nil },
	}
}

// createSQLiteBackend restores the last snapshot and wires the snapshotter.
func (f *DefaultFactory) createSQLiteBackend(ctx context.Context, config Config) (*BackendResult, error) {
	repo, err := storage.NewSQLiteRepository(config.SQLiteDBPath)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize SQLite repository: %w", err)
	}

	snap, err := repo.LoadAll(ctx)
	if err != nil {
		repo.Close()
		return nil, fmt.Errorf("load snapshot: %w", err)
	}
	book := store.New(store.WithLocation(config.Location))
	if err := book.Restore(snap); err != nil {
		repo.Close()
		return nil, fmt.Errorf("restore snapshot: %w", err)
	}

	snapshotter := storage.NewSnapshotter(book, repo, f.logger)
	snapshotter.MarkLoaded()

	f.logger.Info("Initialized SQLite backend",
		applog.FieldBackend, config.Type.String(),
		"path", config.SQLiteDBPath,
		"customers", len(snap.Customers),
		"deliveries", len(snap.Deliveries))

	return &BackendResult{
		Store:       book,
		Snapshotter: snapshotter,
		Interval:    config.SnapshotInterval,
		Cleanup: func(ctx context.Context) error {
			_, flushErr := snapshotter.Flush(ctx)
			return errors.Join(flushErr, repo.Close())
		},
	}, nil
}
