package web

import (
	"errors"
	"net/http"
	"net/url"
	"time"

	"wedding-ecard-platform/internal/domain"
	"wedding-ecard-platform/internal/domain/ports/adapter"
	"wedding-ecard-platform/internal/infra/logging"
	"wedding-ecard-platform/internal/infra/metrics"
)

type paymentCreateRequest struct {
	ECardID string `json:"ecard_id" validate:"required"`
}

type paymentCreateResponse struct {
	PaymentID string `json:"payment_id"`
	OrderID   string `json:"order_id"`
	AmountSen int64  `json:"amount_sen"`
	Currency  string `json:"currency"`
	URL       string `json:"url"`
}

func (s *Server) handlePaymentCreate(w http.ResponseWriter, r *http.Request) {
	var req paymentCreateRequest
	if err := s.decodeAndValidate(r, &req); err != nil {
		writeError(w, err)
		return
	}
	payment, redirectURL, err := s.paymentUC.Checkout(r.Context(), userID(r.Context()), req.ECardID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, paymentCreateResponse{
		PaymentID: payment.ID,
		OrderID:   payment.OrderID,
		AmountSen: payment.Amount,
		Currency:  payment.Currency,
		URL:       redirectURL,
	})
}

// handleGatewaySession is the explicit "take me to the real gateway" entry.
// Unlike /payment/create it refuses to hand out a mock URL.
func (s *Server) handleGatewaySession(w http.ResponseWriter, r *http.Request) {
	if s.mockEnabled {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "payment gateway is not configured", Code: "gateway_not_configured"})
		return
	}
	s.handlePaymentCreate(w, r)
}

// handlePaymentCallback takes the gateway's browser return / server notify.
// Verification failures answer with a JSON error so the gateway retries;
// settled outcomes redirect the buyer to the dashboard.
func (s *Server) handlePaymentCallback(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	q := r.URL.Query()
	paymentID := q.Get("paymentId")
	fields := adapter.CallbackFields{
		StatusID:      q.Get("status_id"),
		OrderID:       q.Get("order_id"),
		TransactionID: q.Get("transaction_id"),
		Msg:           q.Get("msg"),
		Hash:          q.Get("hash"),
	}

	ctx := r.Context()
	if paymentID != "" {
		ctx = logging.WithPaymentID(ctx, paymentID)
	}
	log := logging.With(ctx, s.log)

	outcome, err := s.paymentUC.FinalizeFromCallback(ctx, paymentID, fields)
	if err != nil {
		reason := callbackFailReason(err)
		metrics.CallbackRequests.WithLabelValues("fail", reason).Inc()
		metrics.CallbackDuration.WithLabelValues("fail").Observe(time.Since(start).Seconds())
		log.Warn().Err(err).Str("reason", reason).Msg("payment callback rejected")
		writeError(w, err)
		return
	}

	metrics.CallbackRequests.WithLabelValues("ok", "").Inc()
	metrics.CallbackDuration.WithLabelValues("ok").Observe(time.Since(start).Seconds())

	if outcome.Success() {
		http.Redirect(w, r, s.dashboardURL+"?success=true&slug="+url.QueryEscape(outcome.Slug), http.StatusFound)
		return
	}
	http.Redirect(w, r, s.dashboardURL+"?error=payment_failed", http.StatusFound)
}

// handleMockComplete settles a payment without a gateway. The route only
// exists when the mock gateway is wired, so reaching it in production 404s.
func (s *Server) handleMockComplete(w http.ResponseWriter, r *http.Request) {
	paymentID := r.URL.Query().Get("paymentId")
	ctx := r.Context()
	if paymentID != "" {
		ctx = logging.WithPaymentID(ctx, paymentID)
	}
	outcome, err := s.paymentUC.MockComplete(ctx, paymentID)
	if err != nil {
		writeError(w, err)
		return
	}
	if outcome.Success() {
		http.Redirect(w, r, s.dashboardURL+"?success=true&slug="+url.QueryEscape(outcome.Slug), http.StatusFound)
		return
	}
	http.Redirect(w, r, s.dashboardURL+"?error=payment_failed", http.StatusFound)
}

// callbackFailReason keeps the metric label set bounded.
func callbackFailReason(err error) string {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return "not_found"
	case errors.Is(err, domain.ErrInvalidSignature):
		return "bad_signature"
	case errors.Is(err, domain.ErrInvalidArgument):
		return "missing_status"
	case errors.Is(err, domain.ErrLockNotAcquired):
		return "conflict"
	case errors.Is(err, domain.ErrOperationFailed):
		return "internal"
	default:
		return "unknown"
	}
}
