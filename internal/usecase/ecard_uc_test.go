//go:build !integration

package usecase_test

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"wedding-ecard-platform/internal/domain"
	"wedding-ecard-platform/internal/domain/model"
	"wedding-ecard-platform/internal/infra/security"
	"wedding-ecard-platform/internal/usecase"
)

func validECardInput() usecase.ECardInput {
	return usecase.ECardInput{
		BrideName:   "Aisyah",
		GroomName:   "Hafiz",
		WeddingDate: time.Now().AddDate(0, 3, 0),
	}
}

func TestECardUseCase_Create(t *testing.T) {
	ctx := context.Background()

	t.Run("creates an unpaid draft with a generated slug", func(t *testing.T) {
		ecards := NewMockECardRepo()
		uc := usecase.NewECardUseCase(ecards, nil, newTestLogger())

		card, err := uc.Create(ctx, "user-1", validECardInput())
		if err != nil {
			t.Fatalf("expected no error, got: %v", err)
		}
		if card.IsPaid {
			t.Error("new card must start unpaid")
		}
		if card.TemplateType != model.DefaultTemplateType {
			t.Errorf("template = %q, want default %q", card.TemplateType, model.DefaultTemplateType)
		}
		// slugified names plus a millisecond suffix
		if ok, _ := regexp.MatchString(`^hafiz-aisyah-\d+$`, card.Slug); !ok {
			t.Errorf("unexpected slug %q", card.Slug)
		}
	})

	t.Run("rejects missing required fields", func(t *testing.T) {
		uc := usecase.NewECardUseCase(NewMockECardRepo(), nil, newTestLogger())
		in := validECardInput()
		in.BrideName = ""
		if _, err := uc.Create(ctx, "user-1", in); !errors.Is(err, domain.ErrInvalidArgument) {
			t.Errorf("expected ErrInvalidArgument, got: %v", err)
		}
		if _, err := uc.Create(ctx, "", validECardInput()); !errors.Is(err, domain.ErrUnauthorized) {
			t.Errorf("expected ErrUnauthorized, got: %v", err)
		}
	})

	t.Run("stores the gift account encrypted but returns plaintext", func(t *testing.T) {
		enc, err := security.NewEncryptionService("0123456789abcdef0123456789abcdef")
		if err != nil {
			t.Fatalf("encryption service: %v", err)
		}
		ecards := NewMockECardRepo()
		uc := usecase.NewECardUseCase(ecards, enc, newTestLogger())

		in := validECardInput()
		in.GiftBankName = "Maybank"
		in.GiftAccountNo = "1234567890"

		card, err := uc.Create(ctx, "user-1", in)
		if err != nil {
			t.Fatalf("create: %v", err)
		}
		if card.GiftAccountNo != "1234567890" {
			t.Errorf("returned gift account = %q, want plaintext", card.GiftAccountNo)
		}

		stored, _ := ecards.FindByID(ctx, nil, card.ID)
		if stored.GiftAccountNo == "" || stored.GiftAccountNo == "1234567890" {
			t.Errorf("stored gift account must be ciphertext, got %q", stored.GiftAccountNo)
		}
	})
}

func TestECardUseCase_Update(t *testing.T) {
	ctx := context.Background()

	setup := func(t *testing.T) (*MockECardRepo, usecase.ECardUseCase, *model.ECard) {
		t.Helper()
		ecards := NewMockECardRepo()
		uc := usecase.NewECardUseCase(ecards, nil, newTestLogger())
		card, err := uc.Create(ctx, "user-1", validECardInput())
		if err != nil {
			t.Fatalf("seed card: %v", err)
		}
		return ecards, uc, card
	}

	t.Run("slug survives an update", func(t *testing.T) {
		_, uc, card := setup(t)

		in := validECardInput()
		in.BrideName = "Nurul"
		in.GroomName = "Irfan"
		in.WeddingVenue = "KLCC"

		updated, err := uc.Update(ctx, "user-1", card.ID, in)
		if err != nil {
			t.Fatalf("update: %v", err)
		}
		if updated.Slug != card.Slug {
			t.Errorf("slug changed from %q to %q on update", card.Slug, updated.Slug)
		}
		if updated.BrideName != "Nurul" || updated.WeddingVenue != "KLCC" {
			t.Error("editable fields not applied")
		}
	})

	t.Run("update cannot flip is_paid", func(t *testing.T) {
		ecards, uc, card := setup(t)
		if err := ecards.SetPaid(ctx, nil, card.ID); err != nil {
			t.Fatalf("seed paid: %v", err)
		}

		if _, err := uc.Update(ctx, "user-1", card.ID, validECardInput()); err != nil {
			t.Fatalf("update: %v", err)
		}
		stored, _ := ecards.FindByID(ctx, nil, card.ID)
		if !stored.IsPaid {
			t.Error("update cleared is_paid")
		}
	})

	t.Run("only the owner may update", func(t *testing.T) {
		_, uc, card := setup(t)
		if _, err := uc.Update(ctx, "user-2", card.ID, validECardInput()); !errors.Is(err, domain.ErrForbidden) {
			t.Errorf("expected ErrForbidden, got: %v", err)
		}
	})
}

func TestECardUseCase_PublicBySlug(t *testing.T) {
	ctx := context.Background()
	ecards := NewMockECardRepo()
	uc := usecase.NewECardUseCase(ecards, nil, newTestLogger())

	card, err := uc.Create(ctx, "user-1", validECardInput())
	if err != nil {
		t.Fatalf("seed card: %v", err)
	}

	t.Run("unpaid card is still viewable", func(t *testing.T) {
		got, err := uc.PublicBySlug(ctx, card.Slug)
		if err != nil {
			t.Fatalf("expected no error, got: %v", err)
		}
		if got.IsPaid {
			t.Error("expected is_paid=false on the preview")
		}
	})

	t.Run("unknown slug reports NotFound", func(t *testing.T) {
		if _, err := uc.PublicBySlug(ctx, "no-such-card"); !errors.Is(err, domain.ErrNotFound) {
			t.Errorf("expected ErrNotFound, got: %v", err)
		}
	})

	t.Run("masks the gift account number for guests", func(t *testing.T) {
		enc, err := security.NewEncryptionService("0123456789abcdef0123456789abcdef")
		if err != nil {
			t.Fatalf("encryption service: %v", err)
		}
		ecards := NewMockECardRepo()
		uc := usecase.NewECardUseCase(ecards, enc, newTestLogger())

		in := validECardInput()
		in.GiftBankName = "Maybank"
		in.GiftAccountNo = "1234567890123456"
		card, err := uc.Create(ctx, "user-1", in)
		if err != nil {
			t.Fatalf("seed card: %v", err)
		}

		got, err := uc.PublicBySlug(ctx, card.Slug)
		if err != nil {
			t.Fatalf("public lookup: %v", err)
		}
		if got.GiftAccountNo != "****3456" {
			t.Errorf("public gift account = %q, want ****3456", got.GiftAccountNo)
		}

		// The owner keeps the full number.
		owned, err := uc.GetOwned(ctx, "user-1", card.ID)
		if err != nil {
			t.Fatalf("owner lookup: %v", err)
		}
		if owned.GiftAccountNo != "1234567890123456" {
			t.Errorf("owner gift account = %q, want the full value", owned.GiftAccountNo)
		}
	})
}
