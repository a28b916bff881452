// File: cmd/app/main.go
package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"wedding-ecard-platform/internal/config"
	"wedding-ecard-platform/internal/domain/ports/adapter"
	"wedding-ecard-platform/internal/infra/db/postgres"
	"wedding-ecard-platform/internal/infra/logging"
	"wedding-ecard-platform/internal/infra/metrics"
	"wedding-ecard-platform/internal/infra/payment"
	red "wedding-ecard-platform/internal/infra/redis"
	"wedding-ecard-platform/internal/infra/sched"
	"wedding-ecard-platform/internal/infra/security"
	"wedding-ecard-platform/internal/infra/web"
	"wedding-ecard-platform/internal/usecase"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ---- CLI flags ----
	cfgPath := flag.String("config", "config.yaml", "path to YAML config file")
	devMode := flag.Bool("dev", false, "enable developer mode (mock payment gateway)")
	flag.Parse()

	cfg, err := config.LoadConfig(*cfgPath, *devMode)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	logger := logging.New(cfg.Log, cfg.Runtime.Dev)
	if cfg.Runtime.Dev {
		logger.Warn().Msg("[DEV MODE] enabled")
	}

	// ---- Postgres ----
	pool, err := postgres.NewPgxPool(ctx, cfg.Database.URL, 10)
	if err != nil {
		logger.Fatal().Err(err).Msg("postgres")
	}
	defer pool.Close()
	txManager := postgres.NewTxManager(pool)

	// ---- Redis ----
	redisClient, err := red.NewClient(ctx, &cfg.Redis)
	if err != nil {
		logger.Fatal().Err(err).Msg("redis")
	}
	defer redisClient.Close()
	rateLimiter := red.NewRateLimiter(redisClient)
	locker := red.NewLocker(redisClient)

	// ---- Encryption ----
	encKey := cfg.Security.EncryptionKey
	if len(encKey) != 32 {
		logger.Warn().Msg("security.encryption_key not set or not 32 bytes; falling back to dev key (INSECURE)")
		encKey = "0123456789abcdef0123456789abcdef"
	}
	encSvc, err := security.NewEncryptionService(encKey)
	if err != nil {
		logger.Fatal().Err(err).Msg("encryption")
	}

	// ---- Repositories ----
	userRepo := postgres.NewUserRepo(pool)
	ecardRepo := postgres.NewECardRepoCacheDecorator(postgres.NewECardRepo(pool), redisClient, cfg.Redis.TTL)
	paymentRepo := postgres.NewPaymentRepo(pool)
	rsvpRepo := postgres.NewRSVPRepo(pool)
	wishRepo := postgres.NewWishRepo(pool)

	// ---- Payment gateway (senangPay -> mock fallback) ----
	var gateway adapter.PaymentGateway
	if cfg.Payment.SenangPay.Configured() && !cfg.Runtime.Dev {
		callbackURL := cfg.Server.BaseURL + "/payment/callback"
		gateway, err = payment.NewSenangPayGateway(
			cfg.Payment.SenangPay.MerchantID,
			cfg.Payment.SenangPay.SecretKey,
			cfg.Payment.SenangPay.BaseURL,
			callbackURL,
		)
		if err != nil {
			logger.Fatal().Err(err).Msg("senangpay gateway")
		}
		logger.Info().Str("merchant_id", logging.Redact(cfg.Payment.SenangPay.MerchantID, cfg.Runtime.Dev)).Msg("payment gateway: senangPay")
	} else {
		gateway = payment.NewMockGateway(cfg.Server.BaseURL + "/payment/mock-complete")
		logger.Warn().Msg("payment gateway: mock (no live credentials); payments settle via /payment/mock-complete")
	}

	// ---- Use cases ----
	userUC := usecase.NewUserUseCase(userRepo, logger)
	ecardUC := usecase.NewECardUseCase(ecardRepo, encSvc, logger)
	paymentUC := usecase.NewPaymentUseCase(paymentRepo, ecardRepo, userRepo, gateway, txManager, locker, logger)
	rsvpUC := usecase.NewRSVPUseCase(rsvpRepo, ecardRepo, logger)
	wishUC := usecase.NewWishUseCase(wishRepo, ecardRepo, logger)
	statsUC := usecase.NewStatsUseCase(ecardRepo, rsvpRepo, wishRepo, paymentRepo)

	// ---- HTTP ----
	auth := web.NewAuthManager(cfg.Auth.JWTSecret, cfg.Auth.SecureCookie, cfg.Auth.CookieDomain, cfg.Auth.SessionTTL)
	srv := web.NewServer(userUC, ecardUC, paymentUC, rsvpUC, wishUC, statsUC, auth, rateLimiter, web.Options{
		DashboardURL: cfg.Server.DashboardURL,
		AdminAPIKey:  cfg.Admin.APIKey,
		MockEnabled:  gateway.SupportsMockCompletion(),
		RateLimit:    cfg.RateLimit.PublicPerMinute,
	}, logger)

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           srv.Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		logger.Info().Str("addr", server.Addr).Msg("http listening")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error().Err(err).Msg("http server")
		}
	}()

	// ---- Metrics ----
	metrics.MustRegister()
	metricsMux := http.NewServeMux()
	metricsMux.Handle("/metrics", promhttp.Handler())
	metricsServer := &http.Server{Addr: fmt.Sprintf(":%d", cfg.Server.MetricsPort), Handler: metricsMux}
	go func() {
		logger.Info().Str("addr", metricsServer.Addr).Msg("metrics listening")
		if err := metricsServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error().Err(err).Msg("metrics server")
		}
	}()

	// ---- Unlock reconciler ----
	reconciler := sched.NewUnlockReconciler(ecardRepo, paymentRepo, cfg.Reconciler.Interval, cfg.Reconciler.StaleAfter, logger)
	go reconciler.Start(ctx)

	// ---- Graceful shutdown ----
	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, syscall.SIGINT, syscall.SIGTERM)
	<-sigc
	logger.Info().Msg("shutdown requested")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	_ = server.Shutdown(shutdownCtx)
	_ = metricsServer.Shutdown(shutdownCtx)
}
