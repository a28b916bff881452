package model

import (
	"time"

	"wedding-ecard-platform/internal/domain"
)

// ECard is the invitation itself. A card starts life as an unpaid draft;
// IsPaid flips to true exactly once, as a side effect of a Payment reaching
// completed, and never reverts.
type ECard struct {
	ID            string // UUID
	OwnerID       string // UUID -> User; only the owner may mutate
	BrideName     string
	GroomName     string
	ParentsNames  string
	WeddingDate   time.Time
	WeddingVenue  string
	TemplateType  string
	Slug          string // unique, generated once at creation, immutable
	IsPaid        bool
	MusicURL      string
	GoogleMapsURL string
	WazeURL       string
	GiftBankName  string
	GiftAccountNo string // encrypted at rest (AES-GCM)
	RSVPDeadline  *time.Time
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

const DefaultTemplateType = "elegant"

// NewECard validates and constructs an unpaid draft card. Slug generation
// happens in the use case layer so the entropy source stays injectable.
func NewECard(id, ownerID, brideName, groomName, slug string) (*ECard, error) {
	if id == "" || ownerID == "" || brideName == "" || groomName == "" || slug == "" {
		return nil, domain.ErrInvalidArgument
	}
	now := time.Now()
	return &ECard{
		ID:           id,
		OwnerID:      ownerID,
		BrideName:    brideName,
		GroomName:    groomName,
		TemplateType: DefaultTemplateType,
		Slug:         slug,
		IsPaid:       false,
		CreatedAt:    now,
		UpdatedAt:    now,
	}, nil
}

// RSVPOpen reports whether submissions are still accepted at t.
func (c *ECard) RSVPOpen(t time.Time) bool {
	return c.RSVPDeadline == nil || t.Before(*c.RSVPDeadline)
}
