// Package config loads runtime configuration from the environment.
//
// A .env file in the working directory is loaded first (godotenv) so local
// development doesn't need exported shell variables; real environment
// variables always win over the file, which is how production overrides work.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config is everything the server needs from the environment, already typed
// and defaulted.
type Config struct {
	Port   int
	DBPath string

	// JWTSecret signs session tokens. Required — the server refuses to start
	// without it rather than running with open sessions.
	JWTSecret string

	// Google OAuth credentials. Optional; when empty the /auth/google routes
	// are not registered.
	GoogleClientID     string
	GoogleClientSecret string
	GoogleCallbackURL  string

	// Checkout provider credentials. Optional; when the key is empty the
	// payment endpoint returns a validation error.
	PaymentSecretKey  string
	PaymentSuccessURL string
	PaymentCancelURL  string

	// Rate limiting, per client IP.
	RateLimitRPS   float64
	RateLimitBurst int
}

// Load reads .env (if present) and the environment into a Config.
func Load(logger *slog.Logger) (*Config, error) {
	if err := godotenv.Load(); err != nil {
		// No .env file is the normal case in production.
		logger.Debug("no .env file loaded", slog.String("reason", err.Error()))
	}

	cfg := &Config{
		Port:               8080,
		DBPath:             "data/quoteapp.db",
		JWTSecret:          os.Getenv("JWT_SECRET"),
		GoogleClientID:     os.Getenv("GOOGLE_CLIENT_ID"),
		GoogleClientSecret: os.Getenv("GOOGLE_CLIENT_SECRET"),
		GoogleCallbackURL:  os.Getenv("GOOGLE_CALLBACK_URL"),
		PaymentSecretKey:   os.Getenv("PAYMENT_SECRET_KEY"),
		PaymentSuccessURL:  os.Getenv("PAYMENT_SUCCESS_URL"),
		PaymentCancelURL:   os.Getenv("PAYMENT_CANCEL_URL"),
		RateLimitRPS:       10,
		RateLimitBurst:     20,
	}

	if v := os.Getenv("PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("config: invalid PORT %q: %w", v, err)
		}
		cfg.Port = port
	}
	if v := os.Getenv("DB_PATH"); v != "" {
		cfg.DBPath = v
	}
	if v := os.Getenv("RATE_LIMIT_RPS"); v != "" {
		rps, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return nil, fmt.Errorf("config: invalid RATE_LIMIT_RPS %q: %w", v, err)
		}
		cfg.RateLimitRPS = rps
	}
	if v := os.Getenv("RATE_LIMIT_BURST"); v != "" {
		burst, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("config: invalid RATE_LIMIT_BURST %q: %w", v, err)
		}
		cfg.RateLimitBurst = burst
	}

	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("config: JWT_SECRET is required")
	}

	if cfg.GoogleCallbackURL == "" {
		cfg.GoogleCallbackURL = fmt.Sprintf("http://localhost:%d/auth/google/callback", cfg.Port)
	}
	if cfg.PaymentSuccessURL == "" {
		cfg.PaymentSuccessURL = fmt.Sprintf("http://localhost:%d/payment/success", cfg.Port)
	}
	if cfg.PaymentCancelURL == "" {
		cfg.PaymentCancelURL = fmt.Sprintf("http://localhost:%d/payment/cancel", cfg.Port)
	}

	// GoogleEnabled requires both halves of the credential.
	if (cfg.GoogleClientID == "") != (cfg.GoogleClientSecret == "") {
		logger.Warn("partial Google OAuth configuration — OAuth disabled")
		cfg.GoogleClientID = ""
		cfg.GoogleClientSecret = ""
	}

	return cfg, nil
}

// GoogleEnabled reports whether the OAuth routes should be registered.
func (c *Config) GoogleEnabled() bool {
	return c.GoogleClientID != "" && c.GoogleClientSecret != ""
}
