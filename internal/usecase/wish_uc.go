package usecase

import (
	"context"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"wedding-ecard-platform/internal/domain"
	"wedding-ecard-platform/internal/domain/model"
	"wedding-ecard-platform/internal/domain/ports/repository"
	"wedding-ecard-platform/internal/infra/logging"
)

var _ WishUseCase = (*wishUC)(nil)

type WishUseCase interface {
	Submit(ctx context.Context, ecardID, guestName, message string) (*model.Wish, error)
	ListPublic(ctx context.Context, slug string) ([]*model.Wish, error)
	ListForOwner(ctx context.Context, ownerID, ecardID string) ([]*model.Wish, error)
}

type wishUC struct {
	wishes repository.WishRepository
	ecards repository.ECardRepository
	log    *zerolog.Logger
}

func NewWishUseCase(wishes repository.WishRepository, ecards repository.ECardRepository, logger *zerolog.Logger) *wishUC {
	return &wishUC{wishes: wishes, ecards: ecards, log: logger}
}

func (u *wishUC) Submit(ctx context.Context, ecardID, guestName, message string) (*model.Wish, error) {
	card, err := u.ecards.FindByID(ctx, repository.NoTX, ecardID)
	if err != nil {
		return nil, err
	}
	if !card.IsPaid {
		logging.With(ctx, u.log).Warn().Str("ecard_id", card.ID).Msg("wish submitted for unpaid card")
	}

	w, err := model.NewWish(uuid.NewString(), card.ID, guestName, message)
	if err != nil {
		return nil, err
	}
	if err := u.wishes.Save(ctx, repository.NoTX, w); err != nil {
		return nil, err
	}
	return w, nil
}

func (u *wishUC) ListPublic(ctx context.Context, slug string) ([]*model.Wish, error) {
	card, err := u.ecards.FindBySlug(ctx, repository.NoTX, slug)
	if err != nil {
		return nil, err
	}
	return u.wishes.ListByECard(ctx, repository.NoTX, card.ID)
}

func (u *wishUC) ListForOwner(ctx context.Context, ownerID, ecardID string) ([]*model.Wish, error) {
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
	return u.wishes.ListByECard(ctx, repository.NoTX, ecardID)
}
