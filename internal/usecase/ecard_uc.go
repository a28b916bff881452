package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/gosimple/slug"
	"github.com/rs/zerolog"

	"wedding-ecard-platform/internal/domain"
	"wedding-ecard-platform/internal/domain/model"
	"wedding-ecard-platform/internal/domain/ports/repository"
	"wedding-ecard-platform/internal/infra/logging"
	"wedding-ecard-platform/internal/infra/security"
)

var _ ECardUseCase = (*ecardUC)(nil)

// ECardInput is the owner-editable field set. Slug and is_paid are not
// part of it: the slug is fixed at creation and is_paid only moves through
// the payment flow.
type ECardInput struct {
	BrideName     string
	GroomName     string
	ParentsNames  string
	WeddingDate   time.Time
	WeddingVenue  string
	TemplateType  string
	MusicURL      string
	GoogleMapsURL string
	WazeURL       string
	GiftBankName  string
	GiftAccountNo string
	RSVPDeadline  *time.Time
}

type ECardUseCase interface {
	Create(ctx context.Context, ownerID string, in ECardInput) (*model.ECard, error)
	Update(ctx context.Context, ownerID, id string, in ECardInput) (*model.ECard, error)
	ListOwn(ctx context.Context, ownerID string) ([]*model.ECard, error)
	GetOwned(ctx context.Context, ownerID, id string) (*model.ECard, error)
	// PublicBySlug is the guest-facing lookup. No ownership check; unpaid
	// cards are still viewable as previews. The gift account number comes
	// back masked to its last four characters.
	PublicBySlug(ctx context.Context, s string) (*model.ECard, error)
}

type ecardUC struct {
	ecards repository.ECardRepository
	enc    *security.EncryptionService // nil disables at-rest encryption
	log    *zerolog.Logger
}

func NewECardUseCase(ecards repository.ECardRepository, enc *security.EncryptionService, logger *zerolog.Logger) *ecardUC {
	return &ecardUC{ecards: ecards, enc: enc, log: logger}
}

func (u *ecardUC) Create(ctx context.Context, ownerID string, in ECardInput) (*model.ECard, error) {
	log := logging.With(ctx, u.log)

	if ownerID == "" {
		return nil, domain.ErrUnauthorized
	}
	if in.BrideName == "" || in.GroomName == "" || in.WeddingDate.IsZero() {
		return nil, domain.ErrInvalidArgument
	}

	// Slug is generated exactly once; the millisecond suffix keeps
	// same-name couples from colliding without a retry loop.
	s := fmt.Sprintf("%s-%d", slug.Make(in.GroomName+" "+in.BrideName), time.Now().UnixMilli())
	card, err := model.NewECard(uuid.NewString(), ownerID, in.BrideName, in.GroomName, s)
	if err != nil {
		return nil, err
	}
	u.apply(card, in)
	if err := u.encryptGiftAccount(card); err != nil {
		return nil, err
	}

	if err := u.ecards.Save(ctx, repository.NoTX, card); err != nil {
		return nil, err
	}
	log.Info().Str("ecard_id", card.ID).Str("slug", card.Slug).Msg("e-card created")
	card.GiftAccountNo = in.GiftAccountNo
	return card, nil
}

func (u *ecardUC) Update(ctx context.Context, ownerID, id string, in ECardInput) (*model.ECard, error) {
	if ownerID == "" {
		return nil, domain.ErrUnauthorized
	}
	card, err := u.ecards.FindByID(ctx, repository.NoTX, id)
	if err != nil {
		return nil, err
	}
	if card.OwnerID != ownerID {
		return nil, domain.ErrForbidden
	}

	u.apply(card, in)
	card.UpdatedAt = time.Now()
	if err := u.encryptGiftAccount(card); err != nil {
		return nil, err
	}
	if err := u.ecards.Save(ctx, repository.NoTX, card); err != nil {
		return nil, err
	}
	card.GiftAccountNo = in.GiftAccountNo
	return card, nil
}

func (u *ecardUC) ListOwn(ctx context.Context, ownerID string) ([]*model.ECard, error) {
	if ownerID == "" {
		return nil, domain.ErrUnauthorized
	}
	cards, err := u.ecards.ListByOwner(ctx, repository.NoTX, ownerID)
	if err != nil {
		return nil, err
	}
	for _, c := range cards {
		u.decryptGiftAccount(ctx, c)
	}
	return cards, nil
}

func (u *ecardUC) GetOwned(ctx context.Context, ownerID, id string) (*model.ECard, error) {
	if ownerID == "" {
		return nil, domain.ErrUnauthorized
	}
	card, err := u.ecards.FindByID(ctx, repository.NoTX, id)
	if err != nil {
		return nil, err
	}
	if card.OwnerID != ownerID {
		return nil, domain.ErrForbidden
	}
	u.decryptGiftAccount(ctx, card)
	return card, nil
}

func (u *ecardUC) PublicBySlug(ctx context.Context, s string) (*model.ECard, error) {
	card, err := u.ecards.FindBySlug(ctx, repository.NoTX, s)
	if err != nil {
		return nil, err
	}
	// Guests only get the tail of the account number; the full value
	// stays on owner endpoints.
	u.decryptGiftAccount(ctx, card)
	card.GiftAccountNo = maskAccountNo(card.GiftAccountNo)
	return card, nil
}

// maskAccountNo keeps the last four characters of an account number.
func maskAccountNo(s string) string {
	switch {
	case s == "":
		return ""
	case len(s) <= 4:
		return "****"
	default:
		return "****" + s[len(s)-4:]
	}
}

func (u *ecardUC) apply(card *model.ECard, in ECardInput) {
	card.BrideName = in.BrideName
	card.GroomName = in.GroomName
	card.ParentsNames = in.ParentsNames
	card.WeddingDate = in.WeddingDate
	card.WeddingVenue = in.WeddingVenue
	if in.TemplateType != "" {
		card.TemplateType = in.TemplateType
	}
	card.MusicURL = in.MusicURL
	card.GoogleMapsURL = in.GoogleMapsURL
	card.WazeURL = in.WazeURL
	card.GiftBankName = in.GiftBankName
	card.GiftAccountNo = in.GiftAccountNo
	card.RSVPDeadline = in.RSVPDeadline
}

func (u *ecardUC) encryptGiftAccount(card *model.ECard) error {
	if u.enc == nil || card.GiftAccountNo == "" {
		return nil
	}
	ct, err := u.enc.Encrypt(card.GiftAccountNo)
	if err != nil {
		return fmt.Errorf("encrypt gift account: %w", err)
	}
	card.GiftAccountNo = ct
	return nil
}

func (u *ecardUC) decryptGiftAccount(ctx context.Context, card *model.ECard) {
	if u.enc == nil || card.GiftAccountNo == "" {
		return
	}
	pt, err := u.enc.Decrypt(card.GiftAccountNo)
	if err != nil {
		// Legacy plaintext rows or a rotated key; serve as stored.
		logging.With(ctx, u.log).Warn().Str("ecard_id", card.ID).Msg("gift account decrypt failed; serving stored value")
		return
	}
	card.GiftAccountNo = pt
}
