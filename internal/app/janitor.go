package app

import (
	"context"
	"time"

	"github.com/maxth/mediadl/internal/logger"
	"github.com/maxth/mediadl/internal/store"
)

// Janitor forgets finished jobs once they are older than ttl.
type Janitor struct {
	store    store.JobStore
	ttl      time.Duration
	interval time.Duration
	logger   *logger.Logger
	now      func() time.Time
}

func NewJanitor(st store.JobStore, ttl, interval time.Duration, log *logger.Logger) *Janitor {
	return &Janitor{
		store:    st,
		ttl:      ttl,
		interval: interval,
		logger:   log.WithComponent("janitor"),
		now:      time.Now,
	}
}

// Run sweeps every interval until ctx is done.
func (j *Janitor) Run(ctx context.Context) {
	j.logger.Info("Starting janitor", "ttl", j.ttl, "interval", j.interval)
	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := j.Sweep(ctx); err != nil {
				j.logger.Error("Failed to evict jobs", "error", err)
			}
		}
	}
}

// Sweep evicts terminal jobs last updated more than ttl ago.
func (j *Janitor) Sweep(ctx context.Context) (int, error) {
	n, err := j.store.Evict(ctx, j.now().Add(-j.ttl))
	if err != nil {
		return 0, err
	}
	if n > 0 {
		j.logger.Info("Evicted finished jobs", "count", n)
	}
	return n, nil
}
