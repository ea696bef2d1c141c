// Package server sets up the HTTP server, router, and all route definitions.
//
// SERVER ARCHITECTURE:
// This package is the "wiring" layer — it connects handlers, middleware, and
// routes. It is also the composition root: every repository, service, and
// handler is constructed here, in one place, rather than scattered across the
// codebase.
//
// WHY SEPARATE FROM main.go?
// Keeping server setup in its own package makes it:
// - Testable (a test server can be built without running main)
// - Reusable (multiple entry points share the same wiring)
// - Clean (main.go stays minimal — load config, start the server)
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/Atulsharma2004/quote-app-at/internal/auth"
	"github.com/Atulsharma2004/quote-app-at/internal/config"
	"github.com/Atulsharma2004/quote-app-at/internal/handler"
	"github.com/Atulsharma2004/quote-app-at/internal/middleware"
	"github.com/Atulsharma2004/quote-app-at/internal/payment"
	sqliteRepo "github.com/Atulsharma2004/quote-app-at/internal/repository/sqlite"
	"github.com/Atulsharma2004/quote-app-at/internal/service"
)

// Server owns the router and the resources that must be released on
// shutdown. The database connection in particular must be closed after the
// last in-flight request finishes, so WAL pages are flushed and the file
// lock released.
type Server struct {
	router  *chi.Mux
	cfg     *config.Config
	logger  *slog.Logger
	db      *sqliteRepo.DB
	limiter *middleware.RateLimiter
}

// New assembles the full dependency chain:
//
//	sqlite.DB → repositories → services → handlers → routes
//
// Each layer only receives what it needs: services get repository
// interfaces, handlers get services, and nothing below the handler layer
// ever sees HTTP.
func New(cfg *config.Config, logger *slog.Logger) (*Server, error) {
	db, err := sqliteRepo.New(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Server{
		router: chi.NewRouter(),
		cfg:    cfg,
		logger: logger,
		db:     db,
	}

	if err := s.setupRoutes(); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting up routes: %w", err)
	}

	return s, nil
}

// setupRoutes configures all middleware and route handlers.
//
// MIDDLEWARE ORDER MATTERS:
//  1. RequestID — assigns a unique ID to each request (for tracing)
//  2. RealIP — extracts the real client IP from proxy headers (the rate
//     limiter keys on this, so it must run first)
//  3. Recoverer — catches panics and returns 500 instead of crashing
//  4. Logger, Metrics — observe every request
//  5. RateLimiter — per-IP token bucket
func (s *Server) setupRoutes() error {
	s.router.Use(chimiddleware.RequestID)
	s.router.Use(chimiddleware.RealIP)
	s.router.Use(chimiddleware.Recoverer)
	s.router.Use(middleware.Logger(s.logger))
	s.router.Use(middleware.Metrics())
	s.limiter = middleware.NewRateLimiter(s.cfg.RateLimitRPS, s.cfg.RateLimitBurst)
	s.router.Use(s.limiter.Handler)

	// === Services ===
	tokens, err := auth.NewTokenService(s.cfg.JWTSecret)
	if err != nil {
		return fmt.Errorf("creating token service: %w", err)
	}
	passwords := auth.NewPasswordService()

	resolver := service.NewResolver(s.db.Users(), s.logger)
	authService := service.NewAuthService(s.db.Users(), tokens, passwords, s.logger)
	socialService := service.NewSocialService(s.db.Users(), s.logger)
	quoteService := service.NewQuoteService(s.db.Quotes(), resolver, s.logger)
	feedService := service.NewFeedService(s.db.Quotes(), s.db.Users(), resolver, s.logger)
	payments := payment.NewClient(s.cfg.PaymentSecretKey, s.cfg.PaymentSuccessURL, s.cfg.PaymentCancelURL)

	// === Handlers ===
	var google *auth.GoogleProvider
	if s.cfg.GoogleEnabled() {
		google = auth.NewGoogleProvider(s.cfg.GoogleClientID, s.cfg.GoogleClientSecret, s.cfg.GoogleCallbackURL)
	}
	authHandler := handler.NewAuthHandler(authService, google, s.logger)
	quoteHandler := handler.NewQuoteHandler(quoteService, feedService, s.logger)
	userHandler := handler.NewUserHandler(socialService, feedService, s.logger)
	homeHandler := handler.NewHomeHandler(feedService, s.logger)
	paymentHandler := handler.NewPaymentHandler(payments, s.logger)

	requireAuth := auth.RequireAuth(tokens)
	optionalAuth := auth.OptionalAuth(tokens)

	// === OAuth browser flow (outside /api — these are navigations) ===
	if google != nil {
		s.router.Get("/auth/google/login", authHandler.HandleGoogleLogin)
		s.router.Get("/auth/google/callback", authHandler.HandleGoogleCallback)
	} else {
		s.logger.Warn("Google OAuth not configured — /auth/google routes disabled")
	}

	// === Operational ===
	s.router.Handle("/metrics", promhttp.Handler())
	s.router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	// === API ===
	s.router.Route("/api", func(r chi.Router) {
		r.Post("/auth/signup", authHandler.HandleSignup)
		r.Post("/auth/login", authHandler.HandleLogin)
		r.Post("/auth/logout", authHandler.HandleLogout)
		r.With(requireAuth).Get("/me", authHandler.HandleMe)

		// Public reads
		r.With(optionalAuth).Get("/quotes", quoteHandler.HandleList)
		r.Get("/quotes/recent", homeHandler.HandleRecentQuotes)
		r.Get("/stats", homeHandler.HandleSiteStats)
		r.Get("/categories", homeHandler.HandleCategories)

		// Authenticated
		r.Group(func(r chi.Router) {
			r.Use(requireAuth)

			r.Post("/quotes", quoteHandler.HandleCreate)
			r.Get("/quotes/{id}", quoteHandler.HandleGet)
			r.Put("/quotes/{id}", quoteHandler.HandleUpdate)
			r.Delete("/quotes/{id}", quoteHandler.HandleDelete)
			r.Post("/quotes/{id}/like", quoteHandler.HandleToggleLike)
			r.Post("/quotes/{id}/comment", quoteHandler.HandleAddComment)

			r.Put("/users/profile", userHandler.HandleUpdateProfile)
			r.Get("/users/{id}/profile", userHandler.HandleGetProfile)
			r.Get("/users/{id}/quotes", userHandler.HandleUserQuotes)
			r.Get("/users/{id}/liked-quotes", userHandler.HandleLikedQuotes)
			r.Get("/users/{id}/followers", userHandler.HandleListFollowers)
			r.Get("/users/{id}/following", userHandler.HandleListFollowing)
			r.Get("/users/{id}/stats", userHandler.HandleUserStats)
			r.Post("/users/{id}/follow", userHandler.HandleToggleFollow)
			r.Get("/users/{id}/follow-status", userHandler.HandleFollowStatus)

			r.Post("/payment/checkout", paymentHandler.HandleCheckout)
		})
	})

	return nil
}

// Start runs the HTTP server and handles graceful shutdown.
//
// GRACEFUL SHUTDOWN:
//  1. Stop accepting new connections
//  2. Wait for in-flight requests to finish (30s timeout)
//  3. Close the database connection (deferred — flushes WAL, releases the
//     file lock)
func (s *Server) Start() error {
	defer s.db.Close()
	defer s.limiter.Stop()

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", s.cfg.Port),
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	serverErrors := make(chan error, 1)

	go func() {
		s.logger.Info("server starting",
			slog.Int("port", s.cfg.Port),
			slog.String("url", fmt.Sprintf("http://localhost:%d", s.cfg.Port)),
			slog.String("database", s.cfg.DBPath),
		)
		serverErrors <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if err != http.ErrServerClosed {
			return fmt.Errorf("server error: %w", err)
		}

	case sig := <-quit:
		s.logger.Info("shutdown signal received", slog.String("signal", sig.String()))

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
		s.logger.Info("server stopped gracefully")
	}

	return nil
}
