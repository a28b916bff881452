package repository

import (
	"context"
	"time"

	"wedding-ecard-platform/internal/domain/model"
)

type PaymentRepository interface {
	Save(ctx context.Context, tx Tx, p *model.Payment) error
	FindByID(ctx context.Context, tx Tx, id string) (*model.Payment, error)
	FindByOrderID(ctx context.Context, tx Tx, orderID string) (*model.Payment, error)
	ListByECard(ctx context.Context, tx Tx, ecardID string) ([]*model.Payment, error)
	// UpdateStatus writes a terminal status. refID and paidAt are COALESCEd
	// so a re-delivery of the same status never clears earlier values.
	UpdateStatus(ctx context.Context, tx Tx, id string, status model.PaymentStatus, refID *string, paidAt *time.Time) error
	// ListPendingOlderThan feeds the unlock reconciler.
	ListPendingOlderThan(ctx context.Context, tx Tx, cutoff time.Time, limit int) ([]*model.Payment, error)
	// ListCompletedUnpaid returns completed payments whose e-card is still
	// locked: the half-applied cascade the reconciler repairs.
	ListCompletedUnpaid(ctx context.Context, tx Tx, limit int) ([]*model.Payment, error)
	SumByPeriod(ctx context.Context, tx Tx, period string) (int64, error)
}
