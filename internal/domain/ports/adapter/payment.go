package adapter

import "context"

// CheckoutRequest carries everything a gateway needs to build the redirect
// URL for one purchase attempt.
type CheckoutRequest struct {
	PaymentID string // our payment row id, embedded in return/callback URLs
	OrderID   string // unique order reference handed to the gateway
	AmountSen int64  // minor units (sen)
	Detail    string // human-readable purchase description
	Name      string // buyer name
	Email     string
	Phone     string
}

// CallbackFields are the signed parameters a gateway attaches to its
// return-redirect and server-to-server callback.
type CallbackFields struct {
	StatusID      string
	OrderID       string
	TransactionID string
	Msg           string
	Hash          string
}

// Empty reports whether the callback carries none of the signed fields,
// i.e. the bare dev-path invocation that has no gateway signature at all.
func (f CallbackFields) Empty() bool {
	return f.StatusID == "" && f.OrderID == "" && f.TransactionID == "" && f.Msg == "" && f.Hash == ""
}

// Complete reports whether every field needed to verify the signature is
// present. Msg is part of the signed payload but may legitimately be blank.
func (f CallbackFields) Complete() bool {
	return f.StatusID != "" && f.OrderID != "" && f.TransactionID != "" && f.Hash != ""
}

// PaymentGateway is the hex port for payment providers. Two implementations
// exist: the live senangPay redirect gateway and a mock used when no
// credentials are configured. Selection happens once at wiring time so
// tests and deployments pick the implementation deterministically.
type PaymentGateway interface {
	Name() string

	// PaymentURL builds the URL the buyer is redirected to for req.
	PaymentURL(ctx context.Context, req CheckoutRequest) (string, error)

	// VerifyCallback authenticates an inbound callback against the
	// provider's signature scheme. Implementations must compare in
	// constant time.
	VerifyCallback(f CallbackFields) bool

	// SupportsMockCompletion reports whether the unconditional
	// mock-completion endpoint may be exposed for this gateway.
	SupportsMockCompletion() bool
}
