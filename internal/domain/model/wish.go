package model

import (
	"time"

	"wedding-ecard-platform/internal/domain"
)

// Wish is a guestbook entry left by a visitor.
type Wish struct {
	ID        string // UUID
	ECardID   string // UUID -> ECard
	GuestName string
	Message   string
	CreatedAt time.Time
}

func NewWish(id, ecardID, guestName, message string) (*Wish, error) {
	if id == "" || ecardID == "" || guestName == "" || message == "" {
		return nil, domain.ErrInvalidArgument
	}
	return &Wish{
		ID:        id,
		ECardID:   ecardID,
		GuestName: guestName,
		Message:   message,
		CreatedAt: time.Now(),
	}, nil
}
