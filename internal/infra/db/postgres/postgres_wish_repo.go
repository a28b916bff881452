package postgres

import (
	"context"

	"github.com/jackc/pgx/v4/pgxpool"

	"wedding-ecard-platform/internal/domain"
	"wedding-ecard-platform/internal/domain/model"
	"wedding-ecard-platform/internal/domain/ports/repository"
)

var _ repository.WishRepository = (*wishRepo)(nil)

type wishRepo struct{ pool *pgxpool.Pool }

func NewWishRepo(pool *pgxpool.Pool) *wishRepo {
	return &wishRepo{pool: pool}
}

func (r *wishRepo) Save(ctx context.Context, tx repository.Tx, w *model.Wish) error {
	const q = `
INSERT INTO wishes (id, ecard_id, guest_name, message, created_at)
VALUES ($1,$2,$3,$4,$5);`

	_, err := execSQL(ctx, r.pool, tx, q, w.ID, w.ECardID, w.GuestName, w.Message, w.CreatedAt)
	if err != nil {
		if err == domain.ErrInvalidArgument || err == domain.ErrInvalidExecContext {
			return err
		}
		return domain.ErrOperationFailed
	}
	return nil
}

func (r *wishRepo) ListByECard(ctx context.Context, tx repository.Tx, ecardID string) ([]*model.Wish, error) {
	const q = `SELECT id, ecard_id, guest_name, message, created_at FROM wishes WHERE ecard_id=$1 ORDER BY created_at DESC;`
	rows, err := pickRows(ctx, r.pool, tx, q, ecardID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*model.Wish
	for rows.Next() {
		w := &model.Wish{}
		if err := rows.Scan(&w.ID, &w.ECardID, &w.GuestName, &w.Message, &w.CreatedAt); err != nil {
			return nil, domain.ErrReadDatabaseRow
		}
		out = append(out, w)
	}
	return out, rows.Err()
}

func (r *wishRepo) CountByECard(ctx context.Context, tx repository.Tx, ecardID string) (int, error) {
	const q = `SELECT COUNT(*) FROM wishes WHERE ecard_id=$1;`
	row, err := pickRow(ctx, r.pool, tx, q, ecardID)
	if err != nil {
		return 0, err
	}
	var n int64
	if err := row.Scan(&n); err != nil {
		return 0, domain.ErrReadDatabaseRow
	}
	return int(n), nil
}
