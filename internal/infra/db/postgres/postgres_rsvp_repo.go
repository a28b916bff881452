package postgres

import (
	"context"

	"github.com/jackc/pgx/v4/pgxpool"

	"wedding-ecard-platform/internal/domain"
	"wedding-ecard-platform/internal/domain/model"
	"wedding-ecard-platform/internal/domain/ports/repository"
)

var _ repository.RSVPRepository = (*rsvpRepo)(nil)

type rsvpRepo struct{ pool *pgxpool.Pool }

func NewRSVPRepo(pool *pgxpool.Pool) *rsvpRepo {
	return &rsvpRepo{pool: pool}
}

func (r *rsvpRepo) Save(ctx context.Context, tx repository.Tx, v *model.RSVP) error {
	const q = `
INSERT INTO rsvps (id, ecard_id, guest_name, phone_number, number_of_pax, status, message, created_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8);`

	_, err := execSQL(ctx, r.pool, tx, q, v.ID, v.ECardID, v.GuestName, v.PhoneNumber, v.NumberOfPax, v.Status, v.Message, v.CreatedAt)
	if err != nil {
		if err == domain.ErrInvalidArgument || err == domain.ErrInvalidExecContext {
			return err
		}
		return domain.ErrOperationFailed
	}
	return nil
}

func (r *rsvpRepo) ListByECard(ctx context.Context, tx repository.Tx, ecardID string) ([]*model.RSVP, error) {
	const q = `
SELECT id, ecard_id, guest_name, phone_number, number_of_pax, status, message, created_at
FROM rsvps WHERE ecard_id=$1 ORDER BY created_at DESC;`

	rows, err := pickRows(ctx, r.pool, tx, q, ecardID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*model.RSVP
	for rows.Next() {
		v := &model.RSVP{}
		if err := rows.Scan(&v.ID, &v.ECardID, &v.GuestName, &v.PhoneNumber, &v.NumberOfPax, &v.Status, &v.Message, &v.CreatedAt); err != nil {
			return nil, domain.ErrReadDatabaseRow
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

func (r *rsvpRepo) CountByECard(ctx context.Context, tx repository.Tx, ecardID string) (map[model.RSVPStatus]int, int, error) {
	const q = `SELECT status, COUNT(*), COALESCE(SUM(number_of_pax),0) FROM rsvps WHERE ecard_id=$1 GROUP BY status;`
	rows, err := pickRows(ctx, r.pool, tx, q, ecardID)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	counts := make(map[model.RSVPStatus]int)
	var totalPax int64
	for rows.Next() {
		var status model.RSVPStatus
		var n, pax int64
		if err := rows.Scan(&status, &n, &pax); err != nil {
			return nil, 0, domain.ErrReadDatabaseRow
		}
		counts[status] = int(n)
		if status == model.RSVPStatusAttending {
			totalPax += pax
		}
	}
	return counts, int(totalPax), rows.Err()
}
