package model

import (
	"time"

	"wedding-ecard-platform/internal/domain"
)

type User struct {
	ID           string // UUID
	Name         string
	Email        string // unique, used for login
	PasswordHash string // bcrypt
	Phone        string // optional, forwarded to the gateway checkout form
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// NewUser validates and constructs a user. The password hash is produced
// by the use case layer; an empty hash is rejected here.
func NewUser(id, name, email, passwordHash string) (*User, error) {
	if id == "" || name == "" || email == "" || passwordHash == "" {
		return nil, domain.ErrInvalidArgument
	}
	now := time.Now()
	return &User{
		ID:           id,
		Name:         name,
		Email:        email,
		PasswordHash: passwordHash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}, nil
}
