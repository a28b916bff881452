package model

import (
	"time"

	"wedding-ecard-platform/internal/domain"
)

type RSVPStatus string

const (
	RSVPStatusAttending    RSVPStatus = "attending"
	RSVPStatusNotAttending RSVPStatus = "not_attending"
	RSVPStatusMaybe        RSVPStatus = "maybe"
)

func (s RSVPStatus) Valid() bool {
	switch s {
	case RSVPStatusAttending, RSVPStatusNotAttending, RSVPStatusMaybe:
		return true
	}
	return false
}

// RSVP is a guest's attendance reply, submitted from the public card page.
type RSVP struct {
	ID          string // UUID
	ECardID     string // UUID -> ECard
	GuestName   string
	PhoneNumber string
	NumberOfPax int
	Status      RSVPStatus
	Message     string
	CreatedAt   time.Time
}

func NewRSVP(id, ecardID, guestName string, pax int, status RSVPStatus) (*RSVP, error) {
	if id == "" || ecardID == "" || guestName == "" || !status.Valid() {
		return nil, domain.ErrInvalidArgument
	}
	if pax <= 0 {
		pax = 1
	}
	return &RSVP{
		ID:          id,
		ECardID:     ecardID,
		GuestName:   guestName,
		NumberOfPax: pax,
		Status:      status,
		CreatedAt:   time.Now(),
	}, nil
}
