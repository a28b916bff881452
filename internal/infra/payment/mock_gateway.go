package payment

import (
	"context"
	"fmt"
	"net/url"

	"wedding-ecard-platform/internal/domain/ports/adapter"
)

var _ adapter.PaymentGateway = (*MockGateway)(nil)

// MockGateway stands in for senangPay when no credentials are configured.
// Instead of a hosted checkout it points the buyer straight at the local
// mock-completion endpoint, which finalizes the payment unconditionally.
// It trusts no callback signature: the signed-callback path is dead under
// this gateway, only /payment/mock-complete is live.
type MockGateway struct {
	completeURL string // absolute URL of /payment/mock-complete
}

func NewMockGateway(completeURL string) *MockGateway {
	return &MockGateway{completeURL: completeURL}
}

func (g *MockGateway) Name() string { return "mock" }

func (g *MockGateway) SupportsMockCompletion() bool { return true }

func (g *MockGateway) PaymentURL(_ context.Context, req adapter.CheckoutRequest) (string, error) {
	return fmt.Sprintf("%s?paymentId=%s", g.completeURL, url.QueryEscape(req.PaymentID)), nil
}

func (g *MockGateway) VerifyCallback(adapter.CallbackFields) bool { return false }
