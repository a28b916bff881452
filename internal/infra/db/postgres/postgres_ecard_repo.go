package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"wedding-ecard-platform/internal/domain"
	"wedding-ecard-platform/internal/domain/model"
	"wedding-ecard-platform/internal/domain/ports/repository"
)

var _ repository.ECardRepository = (*ecardRepo)(nil)

type ecardRepo struct{ pool *pgxpool.Pool }

func NewECardRepo(pool *pgxpool.Pool) *ecardRepo {
	return &ecardRepo{pool: pool}
}

const ecardColumns = `id, owner_id, bride_name, groom_name, parents_names, wedding_date,
wedding_venue, template_type, slug, is_paid, music_url, google_maps_url, waze_url,
gift_bank_name, gift_account_no, rsvp_deadline, created_at, updated_at`

func (r *ecardRepo) Save(ctx context.Context, tx repository.Tx, c *model.ECard) error {
	// slug and is_paid deliberately excluded from the UPDATE set: the slug
	// is immutable after creation and is_paid only moves through SetPaid.
	const q = `
INSERT INTO ecards (
  id, owner_id, bride_name, groom_name, parents_names, wedding_date, wedding_venue,
  template_type, slug, is_paid, music_url, google_maps_url, waze_url,
  gift_bank_name, gift_account_no, rsvp_deadline, created_at, updated_at
) VALUES (
  $1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18
) ON CONFLICT (id) DO UPDATE SET
  bride_name=$3, groom_name=$4, parents_names=$5, wedding_date=$6, wedding_venue=$7,
  template_type=$8, music_url=$11, google_maps_url=$12, waze_url=$13,
  gift_bank_name=$14, gift_account_no=$15, rsvp_deadline=$16, updated_at=$18;`

	_, err := execSQL(ctx, r.pool, tx, q,
		c.ID, c.OwnerID, c.BrideName, c.GroomName, c.ParentsNames, c.WeddingDate, c.WeddingVenue,
		c.TemplateType, c.Slug, c.IsPaid, c.MusicURL, c.GoogleMapsURL, c.WazeURL,
		c.GiftBankName, c.GiftAccountNo, c.RSVPDeadline, c.CreatedAt, c.UpdatedAt)
	if err != nil {
		if err == domain.ErrInvalidArgument || err == domain.ErrInvalidExecContext {
			return err
		}
		return domain.ErrOperationFailed
	}
	return nil
}

func (r *ecardRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.ECard, error) {
	q := `SELECT ` + ecardColumns + ` FROM ecards WHERE id=$1`
	if _, ok := tx.(pgx.Tx); ok {
		q += " FOR UPDATE"
	}
	q += ";"
	return r.scanOne(ctx, tx, q, id)
}

func (r *ecardRepo) FindBySlug(ctx context.Context, tx repository.Tx, slug string) (*model.ECard, error) {
	const q = `SELECT ` + ecardColumns + ` FROM ecards WHERE slug=$1;`
	return r.scanOne(ctx, tx, q, slug)
}

func (r *ecardRepo) ListByOwner(ctx context.Context, tx repository.Tx, ownerID string) ([]*model.ECard, error) {
	const q = `SELECT ` + ecardColumns + ` FROM ecards WHERE owner_id=$1 ORDER BY created_at DESC;`
	rows, err := pickRows(ctx, r.pool, tx, q, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var cards []*model.ECard
	for rows.Next() {
		c := &model.ECard{}
		if err := scanECard(rows, c); err != nil {
			return nil, domain.ErrReadDatabaseRow
		}
		cards = append(cards, c)
	}
	return cards, rows.Err()
}

func (r *ecardRepo) SetPaid(ctx context.Context, tx repository.Tx, id string) error {
	const q = `UPDATE ecards SET is_paid=TRUE, updated_at=NOW() WHERE id=$1;`
	_, err := execSQL(ctx, r.pool, tx, q, id)
	if err != nil {
		if err == domain.ErrInvalidArgument || err == domain.ErrInvalidExecContext {
			return err
		}
		return domain.ErrOperationFailed
	}
	return nil
}

func (r *ecardRepo) scanOne(ctx context.Context, tx repository.Tx, q string, arg interface{}) (*model.ECard, error) {
	row, err := pickRow(ctx, r.pool, tx, q, arg)
	if err != nil {
		return nil, err
	}
	c := &model.ECard{}
	if err := scanECard(row, c); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, domain.ErrReadDatabaseRow
	}
	return c, nil
}

func scanECard(row pgx.Row, c *model.ECard) error {
	return row.Scan(&c.ID, &c.OwnerID, &c.BrideName, &c.GroomName, &c.ParentsNames, &c.WeddingDate,
		&c.WeddingVenue, &c.TemplateType, &c.Slug, &c.IsPaid, &c.MusicURL, &c.GoogleMapsURL, &c.WazeURL,
		&c.GiftBankName, &c.GiftAccountNo, &c.RSVPDeadline, &c.CreatedAt, &c.UpdatedAt)
}
