package cache

import (
	"time"

	applog "milkround/internal/log"
)

// Cache is the read-through store used by services for generated text.
type Cache[T any] interface {
	Get(key string) (T, bool)
	Set(key string, data T)
	Delete(key string)
	Size() int
}

// Cleaner is implemented by caches that can drop expired entries.
type Cleaner interface {
	CleanExpired() int
}

// Janitor periodically cleans every registered cache until stopped.
type Janitor struct {
	logger *applog.Logger
	caches []Cleaner
	stop   chan struct{}
	done   chan struct{}
}

func NewJanitor(logger *applog.Logger, caches ...Cleaner) *Janitor {
	return &Janitor{
		logger: logger.WithComponent(applog.ComponentCache),
		caches: caches,
		stop:   make(chan struct{}),
		done:   make(chan struct{}),
	}
}

// Start runs the cleanup loop in its own goroutine.
func (j *Janitor) Start(interval time.Duration) {
	go j.run(interval)
}

func (j *Janitor) run(interval time.Duration) {
	defer close(j.done)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			cleaned := 0
			for _, c := range j.caches {
				cleaned += c.CleanExpired()
			}
			if cleaned > 0 {
				j.logger.Debug("expired cache entries removed", "count", cleaned)
			}
		case <-j.stop:
			return
		}
	}
}

// Stop ends the loop and waits for it to exit. Call it once, after Start.
func (j *Janitor) Stop() {
	close(j.stop)
	<-j.done
}
