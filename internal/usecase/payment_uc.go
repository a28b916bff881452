// File: internal/usecase/payment_uc.go
package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v4"
	"github.com/oklog/ulid/v2"
	"github.com/rs/zerolog"

	"wedding-ecard-platform/internal/domain"
	"wedding-ecard-platform/internal/domain/model"
	"wedding-ecard-platform/internal/domain/ports/adapter"
	"wedding-ecard-platform/internal/domain/ports/repository"
	"wedding-ecard-platform/internal/infra/logging"
	"wedding-ecard-platform/internal/infra/metrics"
	red "wedding-ecard-platform/internal/infra/redis"
)

// Compile-time check
var _ PaymentUseCase = (*paymentUC)(nil)

// CallbackOutcome tells the handler where to send the buyer afterwards.
type CallbackOutcome struct {
	Status model.PaymentStatus
	Slug   string
}

func (o *CallbackOutcome) Success() bool { return o.Status == model.PaymentStatusCompleted }

type PaymentUseCase interface {
	// Checkout starts a purchase attempt for an e-card and returns the new
	// payment plus the redirect URL (gateway checkout or local mock).
	// Every call creates a fresh attempt; it is deliberately not idempotent.
	Checkout(ctx context.Context, userID, ecardID string) (*model.Payment, string, error)
	// FinalizeFromCallback applies a gateway notification to a payment and,
	// on success, unlocks the owning e-card in the same transaction.
	// The payment is addressed by paymentID or, when that is absent (the
	// gateway's server-to-server notify), by the signed order id.
	// Safe under re-delivery: a repeated terminal status is a no-op.
	FinalizeFromCallback(ctx context.Context, paymentID string, f adapter.CallbackFields) (*CallbackOutcome, error)
	// MockComplete is the dev fallback: completes the payment without any
	// signature. Refused when a live gateway is configured.
	MockComplete(ctx context.Context, paymentID string) (*CallbackOutcome, error)
}

type paymentUC struct {
	payments repository.PaymentRepository
	ecards   repository.ECardRepository
	users    repository.UserRepository
	gateway  adapter.PaymentGateway
	tm       repository.TransactionManager
	locker   red.Locker
	log      *zerolog.Logger
}

func NewPaymentUseCase(
	payments repository.PaymentRepository,
	ecards repository.ECardRepository,
	users repository.UserRepository,
	gateway adapter.PaymentGateway,
	tm repository.TransactionManager,
	locker red.Locker,
	logger *zerolog.Logger,
) *paymentUC {
	return &paymentUC{
		payments: payments,
		ecards:   ecards,
		users:    users,
		gateway:  gateway,
		tm:       tm,
		locker:   locker,
		log:      logger,
	}
}

func (u *paymentUC) Checkout(ctx context.Context, userID, ecardID string) (*model.Payment, string, error) {
	log := logging.With(ctx, u.log)
	defer logging.TraceDuration(log, "PaymentUC.Checkout")()

	if userID == "" {
		return nil, "", domain.ErrUnauthorized
	}
	card, err := u.ecards.FindByID(ctx, repository.NoTX, ecardID)
	if err != nil {
		return nil, "", err
	}
	if card.OwnerID != userID {
		return nil, "", domain.ErrForbidden
	}
	if card.IsPaid {
		return nil, "", domain.ErrAlreadyUnlocked
	}

	owner, err := u.users.FindByID(ctx, repository.NoTX, userID)
	if err != nil {
		return nil, "", err
	}

	// Order id is unique per attempt and traceable back to the card.
	orderID := fmt.Sprintf("ECARD-%s-%s", card.ID, ulid.Make().String())
	p, err := model.NewPayment(uuid.NewString(), card.ID, u.gateway.Name(), orderID)
	if err != nil {
		return nil, "", err
	}
	if err := u.payments.Save(ctx, repository.NoTX, p); err != nil {
		return nil, "", err
	}

	url, err := u.gateway.PaymentURL(ctx, adapter.CheckoutRequest{
		PaymentID: p.ID,
		OrderID:   p.OrderID,
		AmountSen: p.Amount,
		Detail:    fmt.Sprintf("Unlock Wedding E-Card: %s & %s", card.GroomName, card.BrideName),
		Name:      owner.Name,
		Email:     owner.Email,
		Phone:     owner.Phone,
	})
	if err != nil {
		// The pending row stays behind; the reconciler will flag it stale.
		return nil, "", err
	}

	metrics.IncPayment(string(model.PaymentStatusPending))
	log.Info().Str("payment_id", p.ID).Str("ecard_id", card.ID).
		Str("provider", u.gateway.Name()).Str("order_id", p.OrderID).
		Msg("payment attempt created")
	return p, url, nil
}

func (u *paymentUC) FinalizeFromCallback(ctx context.Context, paymentID string, f adapter.CallbackFields) (*CallbackOutcome, error) {
	log := logging.With(ctx, u.log)
	defer logging.TraceDuration(log, "PaymentUC.FinalizeFromCallback")()

	// A callback with none of the signed fields belongs to the mock path,
	// which has its own endpoint. The live callback cannot finalize
	// anything without a status.
	if f.Empty() || f.StatusID == "" {
		return nil, domain.ErrInvalidArgument
	}

	// Lookup precedes verification so an unknown payment reports NotFound.
	// The return URL carries our paymentId; the server notify only has the
	// signed order id.
	var known *model.Payment
	var err error
	switch {
	case paymentID != "":
		known, err = u.payments.FindByID(ctx, repository.NoTX, paymentID)
	case f.OrderID != "":
		known, err = u.payments.FindByOrderID(ctx, repository.NoTX, f.OrderID)
	default:
		return nil, domain.ErrInvalidArgument
	}
	if err != nil {
		return nil, err
	}
	paymentID = known.ID

	ctx = logging.WithPaymentID(ctx, known.ID)
	ctx = logging.WithECardID(ctx, known.ECardID)
	log = logging.With(ctx, u.log)

	// Partially-populated signed fields are treated the same as a bad
	// signature: verification is never skipped on this path.
	if !u.gateway.VerifyCallback(f) {
		return nil, domain.ErrInvalidSignature
	}

	success := f.StatusID == "1"
	desired := model.PaymentStatusFailed
	if success {
		desired = model.PaymentStatusCompleted
	}

	if u.locker != nil {
		token, err := u.locker.TryLock(ctx, red.PaymentLockKey(paymentID), 10*time.Second)
		if err == nil {
			defer func() { _ = u.locker.Unlock(ctx, red.PaymentLockKey(paymentID), token) }()
		} else {
			// The row lock inside the transaction is the backstop.
			log.Warn().Msg("payment lock not acquired; relying on row lock")
		}
	}

	var outcome *CallbackOutcome
	var applied bool
	err = u.tm.WithTx(ctx, pgx.TxOptions{}, func(ctx context.Context, tx repository.Tx) error {
		p, err := u.payments.FindByID(ctx, tx, paymentID)
		if err != nil {
			return err
		}
		// The signed order id must belong to this payment row; a valid
		// signature replayed against a different paymentId is a forgery.
		if f.OrderID != p.OrderID {
			return domain.ErrInvalidSignature
		}
		card, err := u.ecards.FindByID(ctx, tx, p.ECardID)
		if err != nil {
			return err
		}

		if p.Status.Terminal() {
			if p.Status != desired {
				log.Warn().
					Str("stored", string(p.Status)).Str("incoming", string(desired)).
					Msg("conflicting terminal status on callback re-delivery; keeping stored state")
			}
			outcome = &CallbackOutcome{Status: p.Status, Slug: card.Slug}
			return nil
		}

		now := time.Now()
		if success {
			var refID *string
			if f.TransactionID != "" {
				refID = &f.TransactionID
			}
			if err := u.payments.UpdateStatus(ctx, tx, p.ID, model.PaymentStatusCompleted, refID, &now); err != nil {
				return err
			}
			if err := u.ecards.SetPaid(ctx, tx, card.ID); err != nil {
				return err
			}
			outcome = &CallbackOutcome{Status: model.PaymentStatusCompleted, Slug: card.Slug}
		} else {
			if err := u.payments.UpdateStatus(ctx, tx, p.ID, model.PaymentStatusFailed, nil, nil); err != nil {
				return err
			}
			outcome = &CallbackOutcome{Status: model.PaymentStatusFailed, Slug: card.Slug}
		}
		applied = true
		return nil
	})
	if err != nil {
		return nil, err
	}

	if applied {
		metrics.IncPayment(string(outcome.Status))
		if outcome.Success() {
			metrics.AddPaymentRevenue(model.Currency, model.UnlockPriceSen)
			metrics.IncUnlock("callback")
		}
		log.Info().Str("status", string(outcome.Status)).Msg("payment finalized")
	}
	return outcome, nil
}

func (u *paymentUC) MockComplete(ctx context.Context, paymentID string) (*CallbackOutcome, error) {
	log := logging.With(ctx, u.log)
	defer logging.TraceDuration(log, "PaymentUC.MockComplete")()

	if !u.gateway.SupportsMockCompletion() {
		return nil, domain.ErrMockUnavailable
	}
	if paymentID == "" {
		return nil, domain.ErrInvalidArgument
	}

	var outcome *CallbackOutcome
	var applied bool
	err := u.tm.WithTx(ctx, pgx.TxOptions{}, func(ctx context.Context, tx repository.Tx) error {
		p, err := u.payments.FindByID(ctx, tx, paymentID)
		if err != nil {
			return err
		}
		card, err := u.ecards.FindByID(ctx, tx, p.ECardID)
		if err != nil {
			return err
		}

		if p.Status.Terminal() {
			if p.Status == model.PaymentStatusFailed {
				log.Warn().Str("payment_id", p.ID).Msg("mock completion on failed payment; keeping stored state")
			}
			outcome = &CallbackOutcome{Status: p.Status, Slug: card.Slug}
			return nil
		}

		now := time.Now()
		if err := u.payments.UpdateStatus(ctx, tx, p.ID, model.PaymentStatusCompleted, nil, &now); err != nil {
			return err
		}
		if err := u.ecards.SetPaid(ctx, tx, card.ID); err != nil {
			return err
		}
		outcome = &CallbackOutcome{Status: model.PaymentStatusCompleted, Slug: card.Slug}
		applied = true
		return nil
	})
	if err != nil {
		return nil, err
	}

	if applied {
		metrics.IncPayment(string(model.PaymentStatusCompleted))
		metrics.IncUnlock("mock")
		log.Info().Str("payment_id", paymentID).Msg("payment mock-completed")
	}
	return outcome, nil
}
