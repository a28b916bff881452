package usecase

import (
	"context"

	"wedding-ecard-platform/internal/domain"
	"wedding-ecard-platform/internal/domain/model"
	"wedding-ecard-platform/internal/domain/ports/repository"
)

var _ StatsUseCase = (*statsUC)(nil)

// ECardStats is the owner dashboard summary for one card.
type ECardStats struct {
	IsPaid        bool
	RSVPCounts    map[model.RSVPStatus]int
	AttendingPax  int
	WishCount     int
	Payments      []*model.Payment
	LatestPayment *model.Payment // nil when no attempt was ever made
}

type StatsUseCase interface {
	CardStats(ctx context.Context, ownerID, ecardID string) (*ECardStats, error)
	// Revenue sums completed payments for the current week/month/year.
	Revenue(ctx context.Context) (week, month, year int64, err error)
}

type statsUC struct {
	ecards   repository.ECardRepository
	rsvps    repository.RSVPRepository
	wishes   repository.WishRepository
	payments repository.PaymentRepository
}

func NewStatsUseCase(
	ecards repository.ECardRepository,
	rsvps repository.RSVPRepository,
	wishes repository.WishRepository,
	payments repository.PaymentRepository,
) *statsUC {
	return &statsUC{ecards: ecards, rsvps: rsvps, wishes: wishes, payments: payments}
}

func (u *statsUC) CardStats(ctx context.Context, ownerID, ecardID string) (*ECardStats, error) {
	if ownerID == "" {
		return nil, domain.ErrUnauthorized
	}
	card, err := u.ecards.FindByID(ctx, repository.NoTX, ecardID)
	if err != nil {
		return nil, err
	}
	if card.OwnerID != ownerID {
		return nil, domain.ErrForbidden
	}

	counts, pax, err := u.rsvps.CountByECard(ctx, repository.NoTX, ecardID)
	if err != nil {
		return nil, err
	}
	wishCount, err := u.wishes.CountByECard(ctx, repository.NoTX, ecardID)
	if err != nil {
		return nil, err
	}
	payments, err := u.payments.ListByECard(ctx, repository.NoTX, ecardID)
	if err != nil {
		return nil, err
	}

	stats := &ECardStats{
		IsPaid:       card.IsPaid,
		RSVPCounts:   counts,
		AttendingPax: pax,
		WishCount:    wishCount,
		Payments:     payments,
	}
	if len(payments) > 0 {
		stats.LatestPayment = payments[0]
	}
	return stats, nil
}

func (u *statsUC) Revenue(ctx context.Context) (int64, int64, int64, error) {
	week, err := u.payments.SumByPeriod(ctx, repository.NoTX, "week")
	if err != nil {
		return 0, 0, 0, err
	}
	month, err := u.payments.SumByPeriod(ctx, repository.NoTX, "month")
	if err != nil {
		return 0, 0, 0, err
	}
	year, err := u.payments.SumByPeriod(ctx, repository.NoTX, "year")
	if err != nil {
		return 0, 0, 0, err
	}
	return week, month, year, nil
}
