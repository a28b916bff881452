package sched

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"wedding-ecard-platform/internal/domain/ports/repository"
	"wedding-ecard-platform/internal/infra/metrics"
)

// UnlockReconciler periodically repairs the payment→e-card cascade: any
// completed payment whose card is still locked gets the card unlocked.
// This covers a crash between the status write and the unlock, or rows
// mutated outside the normal callback path. Stale pending payments are
// only reported; the gateway never re-notifies us for them, so an operator
// has to look at the merchant portal.
type UnlockReconciler struct {
	ecards     repository.ECardRepository
	payments   repository.PaymentRepository
	interval   time.Duration // how often to scan
	staleAfter time.Duration // how old a pending payment must be to report
	log        *zerolog.Logger
}

func NewUnlockReconciler(ecards repository.ECardRepository, payments repository.PaymentRepository, interval, staleAfter time.Duration, logger *zerolog.Logger) *UnlockReconciler {
	if interval <= 0 {
		interval = time.Minute
	}
	if staleAfter <= 0 {
		staleAfter = 30 * time.Minute
	}
	return &UnlockReconciler{ecards: ecards, payments: payments, interval: interval, staleAfter: staleAfter, log: logger}
}

func (w *UnlockReconciler) Start(ctx context.Context) {
	t := time.NewTicker(w.interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			w.tick(ctx)
		}
	}
}

func (w *UnlockReconciler) tick(ctx context.Context) {
	orphaned, err := w.payments.ListCompletedUnpaid(ctx, repository.NoTX, 200)
	if err != nil {
		w.log.Error().Err(err).Msg("unlock-reconciler: list completed-unpaid failed")
		return
	}
	for _, p := range orphaned {
		if err := w.ecards.SetPaid(ctx, repository.NoTX, p.ECardID); err != nil {
			w.log.Error().Err(err).Str("payment_id", p.ID).Str("ecard_id", p.ECardID).Msg("unlock-reconciler: repair failed")
			continue
		}
		metrics.IncUnlock("reconciler")
		w.log.Info().Str("payment_id", p.ID).Str("ecard_id", p.ECardID).Msg("unlock-reconciler: repaired missing unlock")
	}

	cutoff := time.Now().Add(-w.staleAfter)
	stale, err := w.payments.ListPendingOlderThan(ctx, repository.NoTX, cutoff, 200)
	if err != nil {
		w.log.Error().Err(err).Msg("unlock-reconciler: list stale pending failed")
		return
	}
	for _, p := range stale {
		w.log.Warn().
			Str("payment_id", p.ID).
			Str("order_id", p.OrderID).
			Time("created_at", p.CreatedAt).
			Msg("unlock-reconciler: stale pending payment, no callback received")
	}
}
