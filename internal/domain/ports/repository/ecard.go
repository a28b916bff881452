package repository

import (
	"context"

	"wedding-ecard-platform/internal/domain/model"
)

type ECardRepository interface {
	Save(ctx context.Context, tx Tx, c *model.ECard) error
	FindByID(ctx context.Context, tx Tx, id string) (*model.ECard, error)
	FindBySlug(ctx context.Context, tx Tx, slug string) (*model.ECard, error)
	ListByOwner(ctx context.Context, tx Tx, ownerID string) ([]*model.ECard, error)
	// SetPaid flips is_paid to true. The write is naturally idempotent.
	SetPaid(ctx context.Context, tx Tx, id string) error
}
