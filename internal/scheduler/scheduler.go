// Package scheduler runs the timed publishing sweep. Every minute it
// publishes pages whose go-live moment has passed and unpublishes pages
// whose expiry has passed, then evicts the affected cached responses.
package scheduler

import (
	"context"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"gazette/internal/cache"
	"gazette/internal/store"
)

// Scheduler owns the cron runner for scheduled publishing.
type Scheduler struct {
	cron      *cron.Cron
	pages     *store.PageStore
	pageCache *cache.PageCache
}

// New creates a Scheduler. pageCache may be nil when Valkey is not
// configured.
func New(pages *store.PageStore, pageCache *cache.PageCache) *Scheduler {
	return &Scheduler{
		cron:      cron.New(),
		pages:     pages,
		pageCache: pageCache,
	}
}

// Start registers the publishing sweep and starts the cron runner.
func (s *Scheduler) Start() error {
	if _, err := s.cron.AddFunc("@every 1m", s.sweep); err != nil {
		return err
	}
	s.cron.Start()
	return nil
}

// Stop stops the cron runner and waits for a running sweep to finish.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
}

// sweep publishes due pages and expires overdue ones in a single pass.
// Errors are logged, not fatal; the next tick retries.
func (s *Scheduler) sweep() {
	now := time.Now()

	published, err := s.pages.PublishDue(now)
	if err != nil {
		slog.Error("scheduled publish failed", "error", err)
	}
	expired, err := s.pages.ExpireDue(now)
	if err != nil {
		slog.Error("scheduled expiry failed", "error", err)
	}

	if len(published) == 0 && len(expired) == 0 {
		return
	}
	slog.Info("publishing sweep applied",
		"published", published,
		"expired", expired,
	)

	// Visibility changed under an unknown set of indexes, so flush the
	// whole page cache rather than guessing parents per slug.
	if s.pageCache != nil {
		s.pageCache.InvalidateAll(context.Background())
	}
}
