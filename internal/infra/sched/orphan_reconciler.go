package sched

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"corporate-gifting/internal/domain/ports/repository"
	"corporate-gifting/internal/infra/metrics"
)

const (
	defaultSweepBatch   = 200
	defaultSweepTimeout = 30 * time.Second
)

// OrphanReconciler removes redemption orders that no invite references. They are
// left behind only when both the transaction and its compensating delete failed.
type OrphanReconciler struct {
	orders   repository.OrderRepository
	interval time.Duration // how often to sweep
	graceAge time.Duration // minimum order age before it is considered orphaned
	batch    int
	now      func() time.Time
	log      *zerolog.Logger
}

func NewOrphanReconciler(orders repository.OrderRepository, interval, graceAge time.Duration, logger *zerolog.Logger) *OrphanReconciler {
	if interval <= 0 {
		interval = 10 * time.Minute
	}
	if graceAge <= 0 {
		graceAge = 5 * time.Minute
	}
	l := logger.With().Str("component", "OrphanReconciler").Logger()
	return &OrphanReconciler{
		orders:   orders,
		interval: interval,
		graceAge: graceAge,
		batch:    defaultSweepBatch,
		now:      time.Now,
		log:      &l,
	}
}

func (w *OrphanReconciler) Run(ctx context.Context) error {
	w.log.Info().Dur("interval", w.interval).Dur("grace_age", w.graceAge).Msg("Starting orphan reconciler")
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.log.Info().Msg("Stopping orphan reconciler")
			return ctx.Err()
		case <-ticker.C:
			runCtx, cancel := context.WithTimeout(ctx, defaultSweepTimeout)
			if _, err := w.Sweep(runCtx); err != nil {
				w.log.Error().Err(err).Msg("orphan sweep failed")
			}
			cancel()
		}
	}
}

// Sweep deletes one batch of orphans and reports how many were removed.
// A failed delete is logged and retried on the next sweep.
func (w *OrphanReconciler) Sweep(ctx context.Context) (int, error) {
	cutoff := w.now().Add(-w.graceAge)
	orphans, err := w.orders.ListOrphans(ctx, repository.NoTX, cutoff, w.batch)
	if err != nil {
		return 0, err
	}
	removed := 0
	for _, o := range orphans {
		if err := w.orders.Delete(ctx, repository.NoTX, o.ID); err != nil {
			w.log.Warn().Err(err).Str("order_id", o.ID).Msg("orphan delete failed")
			continue
		}
		removed++
		w.log.Info().Str("order_id", o.ID).Str("order_number", o.OrderNumber).Time("created_at", o.CreatedAt).Msg("orphan order removed")
	}
	if removed > 0 {
		metrics.AddOrphanOrdersRemoved(removed)
	}
	return removed, nil
}
