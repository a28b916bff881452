package payment

import (
	"context"
	"fmt"
	"net/url"

	"wedding-ecard-platform/internal/domain"
	"wedding-ecard-platform/internal/domain/ports/adapter"
)

// senangPay status_id values delivered on the return/callback URLs.
const (
	StatusSuccess = "1"
	StatusFailed  = "2"
	StatusPending = "3"
)

var _ adapter.PaymentGateway = (*SenangPayGateway)(nil)

// SenangPayGateway implements the redirect-based senangPay checkout flow.
// There is no server-to-server session call: the checkout URL carries the
// merchant id, order details and a keyed hash, and the gateway notifies us
// back on the configured callback URL.
type SenangPayGateway struct {
	merchantID  string
	secretKey   string
	baseURL     string
	callbackURL string // absolute URL of our /payment/callback endpoint
}

func NewSenangPayGateway(merchantID, secretKey, baseURL, callbackURL string) (*SenangPayGateway, error) {
	if merchantID == "" || secretKey == "" {
		return nil, domain.ErrInvalidArgument
	}
	return &SenangPayGateway{
		merchantID:  merchantID,
		secretKey:   secretKey,
		baseURL:     baseURL,
		callbackURL: callbackURL,
	}, nil
}

func (g *SenangPayGateway) Name() string { return "senangpay" }

func (g *SenangPayGateway) SupportsMockCompletion() bool { return false }

// PaymentURL builds the hosted checkout URL:
// <base>/payment/<merchantID>?merchant_id=...&detail=...&amount=...&order_id=...&hash=...
// return_url and callback_url both point at our callback endpoint,
// parameterized with the payment id so re-delivery resolves the same row.
func (g *SenangPayGateway) PaymentURL(_ context.Context, req adapter.CheckoutRequest) (string, error) {
	if req.PaymentID == "" || req.OrderID == "" || req.AmountSen <= 0 {
		return "", domain.ErrInvalidArgument
	}
	notify := fmt.Sprintf("%s?paymentId=%s", g.callbackURL, url.QueryEscape(req.PaymentID))

	params := url.Values{}
	params.Set("merchant_id", g.merchantID)
	params.Set("detail", req.Detail)
	params.Set("amount", FormatAmount(req.AmountSen))
	params.Set("order_id", req.OrderID)
	params.Set("name", req.Name)
	params.Set("email", req.Email)
	params.Set("phone", req.Phone)
	params.Set("hash", GenerateHash(g.secretKey, req.Detail, req.AmountSen, req.OrderID))
	params.Set("return_url", notify)
	params.Set("callback_url", notify)

	return fmt.Sprintf("%s/payment/%s?%s", g.baseURL, g.merchantID, params.Encode()), nil
}

func (g *SenangPayGateway) VerifyCallback(f adapter.CallbackFields) bool {
	if !f.Complete() {
		return false
	}
	return VerifyHash(g.secretKey, f.StatusID, f.OrderID, f.TransactionID, f.Msg, f.Hash)
}
