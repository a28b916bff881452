package model

import (
	"time"

	"wedding-ecard-platform/internal/domain"
)

type PaymentStatus string

const (
	PaymentStatusPending   PaymentStatus = "pending"   // redirected to gateway; awaiting callback
	PaymentStatusCompleted PaymentStatus = "completed" // gateway reported success
	PaymentStatusFailed    PaymentStatus = "failed"    // gateway reported failure
)

// Terminal reports whether no further transition is allowed from s.
func (s PaymentStatus) Terminal() bool {
	return s == PaymentStatusCompleted || s == PaymentStatusFailed
}

// UnlockPriceSen is the one-time unlock price: RM 10.00, stored in sen
// (integer minor units) to avoid float errors.
const (
	UnlockPriceSen int64 = 1000
	Currency            = "MYR"
)

// Payment records one purchase attempt for an e-card. A card may accumulate
// many attempts over time (retries after failure); a single completed one
// unlocks it.
type Payment struct {
	ID           string        // UUID
	ECardID      string        // UUID -> ECard (1:N, indexed)
	Provider     string        // e.g. "senangpay", "mock"
	Amount       int64         // sen
	Currency     string        // "MYR"
	OrderID      string        // id handed to the gateway; unique per attempt, traceable to ECardID
	GatewayTxnID string        // gateway transaction reference, set only on completion
	Status       PaymentStatus
	CreatedAt    time.Time
	UpdatedAt    time.Time
	PaidAt       *time.Time // set when completed
}

func NewPayment(id, ecardID, provider, orderID string) (*Payment, error) {
	if id == "" || ecardID == "" || provider == "" || orderID == "" {
		return nil, domain.ErrInvalidArgument
	}
	now := time.Now()
	return &Payment{
		ID:        id,
		ECardID:   ecardID,
		Provider:  provider,
		Amount:    UnlockPriceSen,
		Currency:  Currency,
		OrderID:   orderID,
		Status:    PaymentStatusPending,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}
