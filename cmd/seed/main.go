package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"time"

	"wedding-ecard-platform/internal/config"
	"wedding-ecard-platform/internal/domain/model"
	"wedding-ecard-platform/internal/infra/db/postgres"
	"wedding-ecard-platform/internal/infra/logging"
	"wedding-ecard-platform/internal/usecase"
)

// Seeds a demo account with one unpaid e-card so the payment flow can be
// exercised end to end against a fresh database.
func main() {
	cfgPath := flag.String("config", "config.yaml", "path to YAML config file")
	flag.Parse()

	cfg, err := config.LoadConfig(*cfgPath, true)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	logger := logging.New(cfg.Log, true)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := postgres.NewPgxPool(ctx, cfg.Database.URL, 4)
	if err != nil {
		log.Fatalf("postgres: %v", err)
	}
	defer pool.Close()

	userRepo := postgres.NewUserRepo(pool)
	ecardRepo := postgres.NewECardRepo(pool)

	userUC := usecase.NewUserUseCase(userRepo, logger)
	ecardUC := usecase.NewECardUseCase(ecardRepo, nil, logger)

	const demoEmail = "demo@example.com"
	user, err := userUC.Register(ctx, "Demo Couple", demoEmail, "demo-password-123")
	if err != nil {
		// Re-running the seed is fine; the account survives.
		log.Fatalf("register demo user (already seeded?): %v", err)
	}
	fmt.Printf("seeded user: %s (%s)\n", user.Name, demoEmail)

	weddingDate := time.Now().AddDate(0, 3, 0)
	deadline := weddingDate.AddDate(0, 0, -14)
	card, err := ecardUC.Create(ctx, user.ID, usecase.ECardInput{
		BrideName:    "Aisyah",
		GroomName:    "Hafiz",
		ParentsNames: "Tn. Hj. Ahmad & Pn. Hjh. Salmah",
		WeddingDate:  weddingDate,
		WeddingVenue: "Dewan Seri Melati, Shah Alam",
		TemplateType: model.DefaultTemplateType,
		RSVPDeadline: &deadline,
	})
	if err != nil {
		log.Fatalf("create demo e-card: %v", err)
	}
	fmt.Printf("seeded e-card: id=%s slug=%s is_paid=%v\n", card.ID, card.Slug, card.IsPaid)
	fmt.Println("Seeding complete.")
}
