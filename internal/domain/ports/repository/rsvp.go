package repository

import (
	"context"

	"wedding-ecard-platform/internal/domain/model"
)

type RSVPRepository interface {
	Save(ctx context.Context, tx Tx, r *model.RSVP) error
	ListByECard(ctx context.Context, tx Tx, ecardID string) ([]*model.RSVP, error)
	// CountByECard returns replies and total pax per status.
	CountByECard(ctx context.Context, tx Tx, ecardID string) (map[model.RSVPStatus]int, int, error)
}

type WishRepository interface {
	Save(ctx context.Context, tx Tx, w *model.Wish) error
	ListByECard(ctx context.Context, tx Tx, ecardID string) ([]*model.Wish, error)
	CountByECard(ctx context.Context, tx Tx, ecardID string) (int, error)
}
