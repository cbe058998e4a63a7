package service

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"complaint-engine/internal/model"
	"complaint-engine/internal/remote"
)

// Refresher polls the full complaint list on an interval and keeps the
// latest snapshot for feed consumers. A refresh already in flight suppresses
// duplicate triggers, and a result that lands after teardown is discarded.
type Refresher struct {
	remote   remote.Client
	interval time.Duration
	log      zerolog.Logger

	inFlight atomic.Bool

	mu          sync.RWMutex
	snapshot    []model.Complaint
	refreshedAt time.Time
}

func NewRefresher(client remote.Client, interval time.Duration, log zerolog.Logger) *Refresher {
	return &Refresher{
		remote:   client,
		interval: interval,
		log:      log,
	}
}

// Run refreshes once immediately, then on every tick until the context is
// canceled.
func (r *Refresher) Run(ctx context.Context) {
	r.Refresh(ctx)

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			r.log.Info().Msg("feed refresher stopped")
			return
		case <-ticker.C:
			r.Refresh(ctx)
		}
	}
}

// Refresh fetches the full list once. It returns true when a fetch was
// actually started; a duplicate invocation while one is in flight is a
// no-op.
func (r *Refresher) Refresh(ctx context.Context) bool {
	if !r.inFlight.CompareAndSwap(false, true) {
		return false
	}
	defer r.inFlight.Store(false)

	complaints, err := r.remote.ListComplaints(ctx, remote.ListQuery{})
	if err != nil {
		r.log.Warn().Err(err).Msg("feed refresh failed, keeping previous snapshot")
		return true
	}

	// The consumer may have been torn down while the fetch was in flight;
	// a late result must not be applied.
	if ctx.Err() != nil {
		return true
	}

	r.mu.Lock()
	r.snapshot = complaints
	r.refreshedAt = time.Now()
	r.mu.Unlock()

	r.log.Debug().Int("complaints", len(complaints)).Msg("feed snapshot refreshed")
	return true
}

// Snapshot returns the latest refreshed collection and when it was taken.
func (r *Refresher) Snapshot() ([]model.Complaint, time.Time) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]model.Complaint, len(r.snapshot))
	copy(out, r.snapshot)
	return out, r.refreshedAt
}
