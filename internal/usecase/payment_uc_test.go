//go:build !integration

package usecase_test

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"wedding-ecard-platform/internal/domain"
	"wedding-ecard-platform/internal/domain/model"
	"wedding-ecard-platform/internal/domain/ports/adapter"
	"wedding-ecard-platform/internal/domain/ports/repository"
	"wedding-ecard-platform/internal/usecase"
)

// paymentUCTestDeps holds all the mock dependencies for the payment
// use case tests.
type paymentUCTestDeps struct {
	payments *MockPaymentRepo
	ecards   *MockECardRepo
	users    *MockUserRepo
	gateway  *MockPaymentGateway
	tm       *MockTxManager
	locker   *MockLocker
}

func newPaymentUCDeps() *paymentUCTestDeps {
	return &paymentUCTestDeps{
		payments: NewMockPaymentRepo(),
		ecards:   NewMockECardRepo(),
		users:    NewMockUserRepo(),
		gateway:  &MockPaymentGateway{},
		tm:       NewMockTxManager(),
		locker:   NewMockLocker(),
	}
}

func (d *paymentUCTestDeps) uc() usecase.PaymentUseCase {
	return usecase.NewPaymentUseCase(d.payments, d.ecards, d.users, d.gateway, d.tm, d.locker, newTestLogger())
}

func seedCardAndOwner(t *testing.T, d *paymentUCTestDeps, paid bool) (*model.User, *model.ECard) {
	t.Helper()
	ctx := context.Background()
	owner := &model.User{ID: "user-1", Name: "Demo Couple", Email: "demo@example.com", PasswordHash: "x"}
	if err := d.users.Save(ctx, nil, owner); err != nil {
		t.Fatalf("seed owner: %v", err)
	}
	card := &model.ECard{
		ID:        "card-1",
		OwnerID:   owner.ID,
		BrideName: "Aisyah",
		GroomName: "Hafiz",
		Slug:      "hafiz-aisyah-1700000000000",
		IsPaid:    paid,
	}
	if err := d.ecards.Save(ctx, nil, card); err != nil {
		t.Fatalf("seed card: %v", err)
	}
	return owner, card
}

func seedPendingPayment(t *testing.T, d *paymentUCTestDeps, id, cardID string) *model.Payment {
	t.Helper()
	p, err := model.NewPayment(id, cardID, "testpay", "ECARD-"+cardID+"-ORDER1")
	if err != nil {
		t.Fatalf("new payment: %v", err)
	}
	if err := d.payments.Save(context.Background(), nil, p); err != nil {
		t.Fatalf("seed payment: %v", err)
	}
	return p
}

func TestPaymentUseCase_Checkout(t *testing.T) {
	ctx := context.Background()

	t.Run("should create a pending payment and return the gateway URL", func(t *testing.T) {
		deps := newPaymentUCDeps()
		seedCardAndOwner(t, deps, false)

		var saved *model.Payment
		deps.payments.SaveFunc = func(ctx context.Context, tx repository.Tx, p *model.Payment) error {
			saved = p
			return nil
		}

		p, payURL, err := deps.uc().Checkout(ctx, "user-1", "card-1")
		if err != nil {
			t.Fatalf("expected no error, got: %v", err)
		}
		if payURL == "" {
			t.Error("expected a payment URL, got empty string")
		}
		if saved == nil {
			t.Fatal("expected a payment record to be saved")
		}
		if saved.Status != model.PaymentStatusPending {
			t.Errorf("expected status pending, got %s", saved.Status)
		}
		if saved.Amount != model.UnlockPriceSen {
			t.Errorf("expected amount %d, got %d", model.UnlockPriceSen, saved.Amount)
		}
		if saved.Currency != model.Currency {
			t.Errorf("expected currency %s, got %s", model.Currency, saved.Currency)
		}
		if !strings.HasPrefix(p.OrderID, "ECARD-card-1-") {
			t.Errorf("order id %q should embed the card id", p.OrderID)
		}
	})

	t.Run("each attempt gets a fresh order id", func(t *testing.T) {
		deps := newPaymentUCDeps()
		seedCardAndOwner(t, deps, false)
		uc := deps.uc()

		p1, _, err := uc.Checkout(ctx, "user-1", "card-1")
		if err != nil {
			t.Fatalf("first attempt: %v", err)
		}
		p2, _, err := uc.Checkout(ctx, "user-1", "card-1")
		if err != nil {
			t.Fatalf("second attempt: %v", err)
		}
		if p1.OrderID == p2.OrderID {
			t.Error("two attempts must not share an order id")
		}
		if p1.ID == p2.ID {
			t.Error("two attempts must not share a payment id")
		}
	})

	t.Run("should reject a missing user", func(t *testing.T) {
		deps := newPaymentUCDeps()
		seedCardAndOwner(t, deps, false)
		_, _, err := deps.uc().Checkout(ctx, "", "card-1")
		if !errors.Is(err, domain.ErrUnauthorized) {
			t.Errorf("expected ErrUnauthorized, got: %v", err)
		}
	})

	t.Run("should reject an unknown card", func(t *testing.T) {
		deps := newPaymentUCDeps()
		seedCardAndOwner(t, deps, false)
		_, _, err := deps.uc().Checkout(ctx, "user-1", "card-missing")
		if !errors.Is(err, domain.ErrNotFound) {
			t.Errorf("expected ErrNotFound, got: %v", err)
		}
	})

	t.Run("should reject a non-owner", func(t *testing.T) {
		deps := newPaymentUCDeps()
		seedCardAndOwner(t, deps, false)
		_, _, err := deps.uc().Checkout(ctx, "user-2", "card-1")
		if !errors.Is(err, domain.ErrForbidden) {
			t.Errorf("expected ErrForbidden, got: %v", err)
		}
	})

	t.Run("should reject an already unlocked card", func(t *testing.T) {
		deps := newPaymentUCDeps()
		seedCardAndOwner(t, deps, true)
		_, _, err := deps.uc().Checkout(ctx, "user-1", "card-1")
		if !errors.Is(err, domain.ErrAlreadyUnlocked) {
			t.Errorf("expected ErrAlreadyUnlocked, got: %v", err)
		}
	})
}

func validCallback(p *model.Payment) adapter.CallbackFields {
	return adapter.CallbackFields{
		StatusID:      "1",
		OrderID:       p.OrderID,
		TransactionID: "TXN-1",
		Msg:           "Payment_was_successful",
		Hash:          "aabbcc",
	}
}

func TestPaymentUseCase_FinalizeFromCallback(t *testing.T) {
	ctx := context.Background()

	t.Run("successful callback completes the payment and unlocks the card", func(t *testing.T) {
		deps := newPaymentUCDeps()
		seedCardAndOwner(t, deps, false)
		p := seedPendingPayment(t, deps, "pay-1", "card-1")

		outcome, err := deps.uc().FinalizeFromCallback(ctx, p.ID, validCallback(p))
		if err != nil {
			t.Fatalf("expected no error, got: %v", err)
		}
		if !outcome.Success() {
			t.Fatalf("expected success outcome, got status %s", outcome.Status)
		}
		if outcome.Slug != "hafiz-aisyah-1700000000000" {
			t.Errorf("outcome slug = %q", outcome.Slug)
		}

		stored, _ := deps.payments.FindByID(ctx, nil, p.ID)
		if stored.Status != model.PaymentStatusCompleted {
			t.Errorf("payment status = %s, want completed", stored.Status)
		}
		if stored.GatewayTxnID != "TXN-1" {
			t.Errorf("gateway txn id = %q, want TXN-1", stored.GatewayTxnID)
		}
		if stored.PaidAt == nil {
			t.Error("paid_at not set on completion")
		}

		card, _ := deps.ecards.FindByID(ctx, nil, "card-1")
		if !card.IsPaid {
			t.Error("card not unlocked after successful callback")
		}
	})

	t.Run("failure status marks the payment failed and keeps the card locked", func(t *testing.T) {
		deps := newPaymentUCDeps()
		seedCardAndOwner(t, deps, false)
		p := seedPendingPayment(t, deps, "pay-1", "card-1")

		f := validCallback(p)
		f.StatusID = "2"
		outcome, err := deps.uc().FinalizeFromCallback(ctx, p.ID, f)
		if err != nil {
			t.Fatalf("expected no error, got: %v", err)
		}
		if outcome.Success() {
			t.Error("expected failure outcome")
		}

		stored, _ := deps.payments.FindByID(ctx, nil, p.ID)
		if stored.Status != model.PaymentStatusFailed {
			t.Errorf("payment status = %s, want failed", stored.Status)
		}
		card, _ := deps.ecards.FindByID(ctx, nil, "card-1")
		if card.IsPaid {
			t.Error("card must stay locked after a failed payment")
		}
	})

	t.Run("unknown payment reports NotFound before verification", func(t *testing.T) {
		deps := newPaymentUCDeps()
		verifyCalled := false
		deps.gateway.VerifyCallbackFunc = func(adapter.CallbackFields) bool {
			verifyCalled = true
			return true
		}

		_, err := deps.uc().FinalizeFromCallback(ctx, "pay-missing", adapter.CallbackFields{
			StatusID: "1", OrderID: "o", TransactionID: "t", Hash: "h",
		})
		if !errors.Is(err, domain.ErrNotFound) {
			t.Errorf("expected ErrNotFound, got: %v", err)
		}
		if verifyCalled {
			t.Error("verification must not run for an unknown payment")
		}
	})

	t.Run("bad signature is rejected without mutation", func(t *testing.T) {
		deps := newPaymentUCDeps()
		seedCardAndOwner(t, deps, false)
		p := seedPendingPayment(t, deps, "pay-1", "card-1")
		deps.gateway.VerifyCallbackFunc = func(adapter.CallbackFields) bool { return false }

		_, err := deps.uc().FinalizeFromCallback(ctx, p.ID, validCallback(p))
		if !errors.Is(err, domain.ErrInvalidSignature) {
			t.Errorf("expected ErrInvalidSignature, got: %v", err)
		}

		stored, _ := deps.payments.FindByID(ctx, nil, p.ID)
		if stored.Status != model.PaymentStatusPending {
			t.Errorf("payment mutated on rejected callback: %s", stored.Status)
		}
	})

	t.Run("missing status_id is rejected even with other fields present", func(t *testing.T) {
		deps := newPaymentUCDeps()
		seedCardAndOwner(t, deps, false)
		p := seedPendingPayment(t, deps, "pay-1", "card-1")

		f := validCallback(p)
		f.StatusID = ""
		_, err := deps.uc().FinalizeFromCallback(ctx, p.ID, f)
		if !errors.Is(err, domain.ErrInvalidArgument) {
			t.Errorf("expected ErrInvalidArgument, got: %v", err)
		}
	})

	t.Run("signed order id must belong to the payment row", func(t *testing.T) {
		deps := newPaymentUCDeps()
		seedCardAndOwner(t, deps, false)
		p := seedPendingPayment(t, deps, "pay-1", "card-1")

		// A signature valid for some other order replayed against pay-1.
		f := validCallback(p)
		f.OrderID = "ECARD-card-2-OTHER"
		_, err := deps.uc().FinalizeFromCallback(ctx, p.ID, f)
		if !errors.Is(err, domain.ErrInvalidSignature) {
			t.Errorf("expected ErrInvalidSignature, got: %v", err)
		}

		stored, _ := deps.payments.FindByID(ctx, nil, p.ID)
		if stored.Status != model.PaymentStatusPending {
			t.Errorf("payment mutated on replayed callback: %s", stored.Status)
		}
	})

	t.Run("resolves the payment by signed order id when paymentId is absent", func(t *testing.T) {
		deps := newPaymentUCDeps()
		seedCardAndOwner(t, deps, false)
		p := seedPendingPayment(t, deps, "pay-1", "card-1")

		// The gateway's server-to-server notify carries no paymentId.
		outcome, err := deps.uc().FinalizeFromCallback(ctx, "", validCallback(p))
		if err != nil {
			t.Fatalf("expected no error, got: %v", err)
		}
		if !outcome.Success() {
			t.Fatalf("expected success outcome, got status %s", outcome.Status)
		}

		stored, _ := deps.payments.FindByID(ctx, nil, p.ID)
		if stored.Status != model.PaymentStatusCompleted {
			t.Errorf("payment status = %s, want completed", stored.Status)
		}
		card, _ := deps.ecards.FindByID(ctx, nil, "card-1")
		if !card.IsPaid {
			t.Error("card not unlocked via order id resolution")
		}
	})

	t.Run("a callback with neither paymentId nor order id is rejected", func(t *testing.T) {
		deps := newPaymentUCDeps()
		seedCardAndOwner(t, deps, false)
		seedPendingPayment(t, deps, "pay-1", "card-1")

		_, err := deps.uc().FinalizeFromCallback(ctx, "", adapter.CallbackFields{
			StatusID: "1", TransactionID: "t", Hash: "h",
		})
		if !errors.Is(err, domain.ErrInvalidArgument) {
			t.Errorf("expected ErrInvalidArgument, got: %v", err)
		}
	})

	t.Run("re-delivery of the same terminal status is a no-op", func(t *testing.T) {
		deps := newPaymentUCDeps()
		seedCardAndOwner(t, deps, false)
		p := seedPendingPayment(t, deps, "pay-1", "card-1")
		uc := deps.uc()

		if _, err := uc.FinalizeFromCallback(ctx, p.ID, validCallback(p)); err != nil {
			t.Fatalf("first delivery: %v", err)
		}
		first, _ := deps.payments.FindByID(ctx, nil, p.ID)

		updates := 0
		deps.payments.UpdateStatusFunc = func(ctx context.Context, tx repository.Tx, id string, status model.PaymentStatus, refID *string, paidAt *time.Time) error {
			updates++
			return nil
		}

		outcome, err := uc.FinalizeFromCallback(ctx, p.ID, validCallback(p))
		if err != nil {
			t.Fatalf("re-delivery: %v", err)
		}
		if !outcome.Success() {
			t.Error("re-delivery must still report the stored terminal outcome")
		}
		if updates != 0 {
			t.Errorf("re-delivery wrote %d status updates, want 0", updates)
		}

		second, _ := deps.payments.FindByID(ctx, nil, p.ID)
		if !second.PaidAt.Equal(*first.PaidAt) {
			t.Error("paid_at changed on re-delivery")
		}
	})

	t.Run("conflicting terminal status keeps the stored state", func(t *testing.T) {
		deps := newPaymentUCDeps()
		seedCardAndOwner(t, deps, false)
		p := seedPendingPayment(t, deps, "pay-1", "card-1")
		uc := deps.uc()

		if _, err := uc.FinalizeFromCallback(ctx, p.ID, validCallback(p)); err != nil {
			t.Fatalf("first delivery: %v", err)
		}

		f := validCallback(p)
		f.StatusID = "2"
		outcome, err := uc.FinalizeFromCallback(ctx, p.ID, f)
		if err != nil {
			t.Fatalf("conflicting delivery: %v", err)
		}
		if outcome.Status != model.PaymentStatusCompleted {
			t.Errorf("outcome = %s, want stored completed", outcome.Status)
		}

		stored, _ := deps.payments.FindByID(ctx, nil, p.ID)
		if stored.Status != model.PaymentStatusCompleted {
			t.Errorf("stored status flipped to %s", stored.Status)
		}
		card, _ := deps.ecards.FindByID(ctx, nil, "card-1")
		if !card.IsPaid {
			t.Error("card lost its unlock on conflicting re-delivery")
		}
	})

	t.Run("transaction failure rolls up as an error", func(t *testing.T) {
		deps := newPaymentUCDeps()
		seedCardAndOwner(t, deps, false)
		p := seedPendingPayment(t, deps, "pay-1", "card-1")

		deps.ecards.SetPaidFunc = func(ctx context.Context, tx repository.Tx, id string) error {
			return errors.New("db down")
		}

		_, err := deps.uc().FinalizeFromCallback(ctx, p.ID, validCallback(p))
		if err == nil {
			t.Fatal("expected error when the unlock write fails")
		}
	})

	t.Run("concurrent deliveries settle on one completed state", func(t *testing.T) {
		deps := newPaymentUCDeps()
		seedCardAndOwner(t, deps, false)
		p := seedPendingPayment(t, deps, "pay-1", "card-1")
		uc := deps.uc()

		var wg sync.WaitGroup
		for i := 0; i < 8; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, _ = uc.FinalizeFromCallback(ctx, p.ID, validCallback(p))
			}()
		}
		wg.Wait()

		stored, _ := deps.payments.FindByID(ctx, nil, p.ID)
		if stored.Status != model.PaymentStatusCompleted {
			t.Errorf("status after concurrent deliveries = %s", stored.Status)
		}
		card, _ := deps.ecards.FindByID(ctx, nil, "card-1")
		if !card.IsPaid {
			t.Error("card not unlocked after concurrent deliveries")
		}
	})
}

func TestPaymentUseCase_MockComplete(t *testing.T) {
	ctx := context.Background()

	t.Run("completes and unlocks under the mock gateway", func(t *testing.T) {
		deps := newPaymentUCDeps()
		deps.gateway.MockCapable = true
		seedCardAndOwner(t, deps, false)
		p := seedPendingPayment(t, deps, "pay-1", "card-1")

		outcome, err := deps.uc().MockComplete(ctx, p.ID)
		if err != nil {
			t.Fatalf("expected no error, got: %v", err)
		}
		if !outcome.Success() {
			t.Error("expected success outcome")
		}
		card, _ := deps.ecards.FindByID(ctx, nil, "card-1")
		if !card.IsPaid {
			t.Error("card not unlocked by mock completion")
		}
	})

	t.Run("refused when a live gateway is configured", func(t *testing.T) {
		deps := newPaymentUCDeps()
		deps.gateway.MockCapable = false
		seedCardAndOwner(t, deps, false)
		p := seedPendingPayment(t, deps, "pay-1", "card-1")

		_, err := deps.uc().MockComplete(ctx, p.ID)
		if !errors.Is(err, domain.ErrMockUnavailable) {
			t.Errorf("expected ErrMockUnavailable, got: %v", err)
		}
		stored, _ := deps.payments.FindByID(ctx, nil, p.ID)
		if stored.Status != model.PaymentStatusPending {
			t.Errorf("payment mutated: %s", stored.Status)
		}
	})

	t.Run("a failed payment stays failed", func(t *testing.T) {
		deps := newPaymentUCDeps()
		deps.gateway.MockCapable = true
		seedCardAndOwner(t, deps, false)
		p := seedPendingPayment(t, deps, "pay-1", "card-1")
		if err := deps.payments.UpdateStatus(ctx, nil, p.ID, model.PaymentStatusFailed, nil, nil); err != nil {
			t.Fatalf("seed failed status: %v", err)
		}

		outcome, err := deps.uc().MockComplete(ctx, p.ID)
		if err != nil {
			t.Fatalf("expected no error, got: %v", err)
		}
		if outcome.Status != model.PaymentStatusFailed {
			t.Errorf("outcome = %s, want failed", outcome.Status)
		}
		card, _ := deps.ecards.FindByID(ctx, nil, "card-1")
		if card.IsPaid {
			t.Error("card unlocked by mock completion of a failed payment")
		}
	})
}
