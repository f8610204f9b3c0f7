package reaper

import (
	"context"
	"time"

	"seatlease/internal/seats/repository"
	"seatlease/pkg/logger"
)

// Reaper physically deletes lapsed leases on a fixed interval. It is purely
// storage hygiene: every read path already filters on expires_at, so the
// system stays correct if the reaper never runs at all.
type Reaper struct {
	leases   repository.LeaseRepository
	interval time.Duration
	log      *logger.Logger
}

func New(leases repository.LeaseRepository, interval time.Duration, log *logger.Logger) *Reaper {
	return &Reaper{
		leases:   leases,
		interval: interval,
		log:      log,
	}
}

// Run blocks until ctx is cancelled.
func (r *Reaper) Run(ctx context.Context) {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	r.log.Info("Lease reaper started", "interval", r.interval)

	for {
		select {
		case <-ctx.Done():
			r.log.Info("Lease reaper stopped")
			return
		case <-ticker.C:
			r.sweep(ctx)
		}
	}
}

func (r *Reaper) sweep(ctx context.Context) {
	deleted, err := r.leases.DeleteExpired(ctx, time.Now().UTC())
	if err != nil {
		r.log.Error("Failed to reap expired leases", "error", err)
		return
	}
	if deleted > 0 {
		r.log.Info("Reaped expired leases", "count", deleted)
	}
}
