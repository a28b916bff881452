package web

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"wedding-ecard-platform/internal/infra/logging"
	"wedding-ecard-platform/internal/infra/metrics"
	red "wedding-ecard-platform/internal/infra/redis"
	"wedding-ecard-platform/internal/usecase"
)

type Server struct {
	userUC    usecase.UserUseCase
	ecardUC   usecase.ECardUseCase
	paymentUC usecase.PaymentUseCase
	rsvpUC    usecase.RSVPUseCase
	wishUC    usecase.WishUseCase
	statsUC   usecase.StatsUseCase

	auth      *AuthManager
	validate  *validator.Validate
	limiter   *red.RateLimiter
	rateLimit int // public submissions per minute per address

	dashboardURL string
	adminAPIKey  string
	mockEnabled  bool

	log *zerolog.Logger
}

type Options struct {
	DashboardURL string
	AdminAPIKey  string
	MockEnabled  bool
	RateLimit    int
}

func NewServer(
	userUC usecase.UserUseCase,
	ecardUC usecase.ECardUseCase,
	paymentUC usecase.PaymentUseCase,
	rsvpUC usecase.RSVPUseCase,
	wishUC usecase.WishUseCase,
	statsUC usecase.StatsUseCase,
	auth *AuthManager,
	limiter *red.RateLimiter,
	opts Options,
	logger *zerolog.Logger,
) *Server {
	return &Server{
		userUC:       userUC,
		ecardUC:      ecardUC,
		paymentUC:    paymentUC,
		rsvpUC:       rsvpUC,
		wishUC:       wishUC,
		statsUC:      statsUC,
		auth:         auth,
		validate:     validator.New(),
		limiter:      limiter,
		rateLimit:    opts.RateLimit,
		dashboardURL: opts.DashboardURL,
		adminAPIKey:  opts.AdminAPIKey,
		mockEnabled:  opts.MockEnabled,
		log:          logger,
	}
}

// Router builds the full route tree.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(s.traceMiddleware)
	r.Use(s.metricsMiddleware)
	r.Use(chimw.Recoverer)

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})

	r.Route("/api/v1", func(api chi.Router) {
		api.Post("/auth/register", s.handleRegister)
		api.Post("/auth/login", s.handleLogin)
		api.Post("/auth/logout", s.handleLogout)

		api.Group(func(owner chi.Router) {
			owner.Use(s.requireUser)
			owner.Post("/ecards", s.handleECardCreate)
			owner.Get("/ecards", s.handleECardList)
			owner.Get("/ecards/{id}", s.handleECardGet)
			owner.Put("/ecards/{id}", s.handleECardUpdate)
			owner.Get("/ecards/{id}/stats", s.handleECardStats)
			owner.Get("/ecards/{id}/rsvps", s.handleRSVPList)
			owner.Get("/ecards/{id}/wishes", s.handleWishList)
			owner.Post("/payment/create", s.handlePaymentCreate)
			owner.Post("/payment/gateway-session", s.handleGatewaySession)
		})

		api.Group(func(guest chi.Router) {
			guest.Use(s.publicRateLimit)
			guest.Post("/rsvp", s.handleRSVPSubmit)
			guest.Post("/wishes", s.handleWishSubmit)
		})

		api.Get("/admin/stats", s.adminAuth(s.handleAdminStats))
	})

	r.Get("/card/{slug}", s.handleCardPublic)
	r.Get("/payment/callback", s.handlePaymentCallback)
	if s.mockEnabled {
		r.Get("/payment/mock-complete", s.handleMockComplete)
	}

	return r
}

// requireUser parses the session and stores the caller id in the context.
func (s *Server) requireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims, err := s.auth.ParseFromRequest(r)
		if err != nil {
			writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "authentication required", Code: "unauthorized"})
			return
		}
		ctx := withUserID(r.Context(), claims.Subject)
		ctx = logging.WithUserID(ctx, claims.Subject)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// adminAuth provides simple Bearer token authentication for the stats API.
func (s *Server) adminAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if s.adminAPIKey == "" {
			s.log.Error().Msg("admin API key is not configured")
			http.Error(w, "Forbidden", http.StatusForbidden)
			return
		}
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}
		tokenParts := strings.Split(authHeader, " ")
		if len(tokenParts) != 2 || strings.ToLower(tokenParts[0]) != "bearer" {
			http.Error(w, "Unauthorized: Malformed token", http.StatusUnauthorized)
			return
		}
		if tokenParts[1] != s.adminAPIKey {
			http.Error(w, "Forbidden", http.StatusForbidden)
			return
		}
		next.ServeHTTP(w, r)
	}
}

// publicRateLimit buckets guest submissions per remote address.
func (s *Server) publicRateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.limiter != nil {
			key := red.GuestSubmitKey(r.RemoteAddr, r.URL.Path)
			ok, err := s.limiter.Allow(r.Context(), key, s.rateLimit, time.Minute)
			if err != nil {
				// Redis trouble should not take guest submissions down.
				s.log.Warn().Err(err).Msg("rate limiter unavailable; allowing request")
			} else if !ok {
				writeJSON(w, http.StatusTooManyRequests, errorResponse{Error: "too many requests", Code: "rate_limited"})
				return
			}
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) traceMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if reqID := chimw.GetReqID(ctx); reqID != "" {
			ctx = logging.WithTraceID(ctx, reqID)
		}
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (s *Server) metricsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
			route = rctx.RoutePattern()
		}
		metrics.ObserveHTTP(route, r.Method, ww.Status(), time.Since(start).Seconds())
	})
}
