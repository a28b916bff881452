package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"wedding-ecard-platform/internal/domain"
	"wedding-ecard-platform/internal/domain/model"
	"wedding-ecard-platform/internal/domain/ports/repository"
	"wedding-ecard-platform/internal/infra/logging"
)

var _ RSVPUseCase = (*rsvpUC)(nil)

type RSVPInput struct {
	GuestName   string
	PhoneNumber string
	NumberOfPax int
	Status      model.RSVPStatus
	Message     string
}

type RSVPUseCase interface {
	// Submit accepts a guest reply from the public card page. Unpaid cards
	// still accept submissions; the widget gating is client-side only and
	// the gap is logged rather than enforced here.
	Submit(ctx context.Context, ecardID string, in RSVPInput) (*model.RSVP, error)
	ListForOwner(ctx context.Context, ownerID, ecardID string) ([]*model.RSVP, error)
}

type rsvpUC struct {
	rsvps  repository.RSVPRepository
	ecards repository.ECardRepository
	log    *zerolog.Logger
}

func NewRSVPUseCase(rsvps repository.RSVPRepository, ecards repository.ECardRepository, logger *zerolog.Logger) *rsvpUC {
	return &rsvpUC{rsvps: rsvps, ecards: ecards, log: logger}
}

func (u *rsvpUC) Submit(ctx context.Context, ecardID string, in RSVPInput) (*model.RSVP, error) {
	log := logging.With(ctx, u.log)

	card, err := u.ecards.FindByID(ctx, repository.NoTX, ecardID)
	if err != nil {
		return nil, err
	}
	if !card.RSVPOpen(time.Now()) {
		return nil, domain.ErrDeadlinePassed
	}
	if !card.IsPaid {
		log.Warn().Str("ecard_id", card.ID).Msg("rsvp submitted for unpaid card")
	}

	r, err := model.NewRSVP(uuid.NewString(), card.ID, in.GuestName, in.NumberOfPax, in.Status)
	if err != nil {
		return nil, err
	}
	r.PhoneNumber = in.PhoneNumber
	r.Message = in.Message

	if err := u.rsvps.Save(ctx, repository.NoTX, r); err != nil {
		return nil, err
	}
	return r, nil
}

func (u *rsvpUC) ListForOwner(ctx context.Context, ownerID, ecardID string) ([]*model.RSVP, error) {
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
	return u.rsvps.ListByECard(ctx, repository.NoTX, ecardID)
}
