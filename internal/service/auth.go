// Package service contains the business logic layer of the application.
//
// THE THREE-LAYER ARCHITECTURE:
//
//	Handler (HTTP layer)     → parses requests, writes responses
//	Service (Business layer) → validates, enforces rules, orchestrates
//	Repository (Data layer)  → reads/writes the store
//
// Services accept repository interfaces, not concrete types, so tests inject
// in-memory mocks and the sqlite package stays an implementation detail of
// the composition root.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/Atulsharma2004/quote-app-at/internal/apperror"
	"github.com/Atulsharma2004/quote-app-at/internal/auth"
	"github.com/Atulsharma2004/quote-app-at/internal/model"
	"github.com/Atulsharma2004/quote-app-at/internal/repository"
)

// MinPasswordLength is the signup rule: 5 characters fail, 6 succeed.
const MinPasswordLength = 6

// AuthService handles signup, credential login, and OAuth provisioning.
type AuthService struct {
	users     repository.UserRepository
	tokens    *auth.TokenService
	passwords *auth.PasswordService
	logger    *slog.Logger
}

// NewAuthService creates an AuthService with all required dependencies.
func NewAuthService(
	users repository.UserRepository,
	tokens *auth.TokenService,
	passwords *auth.PasswordService,
	logger *slog.Logger,
) *AuthService {
	return &AuthService{
		users:     users,
		tokens:    tokens,
		passwords: passwords,
		logger:    logger,
	}
}

// AuthResult bundles the user record and the issued JWT so the handler can
// set the cookie and respond in one step.
type AuthResult struct {
	User  *model.User
	Token string
}

// Signup registers a credential account.
//
// Rules: name, email, and password are required; the password must be at
// least MinPasswordLength characters; the email must not already be
// registered. New accounts get role "user", an empty bio, and empty social
// lists. profilePicture is optional (a data-URI-encoded image or empty).
func (s *AuthService) Signup(ctx context.Context, name, email, password, profilePicture string) (*model.User, error) {
	name = strings.TrimSpace(name)
	email = strings.ToLower(strings.TrimSpace(email))

	if name == "" || email == "" || password == "" {
		return nil, apperror.ValidationFailed("", "name, email and password are required")
	}
	if len(password) < MinPasswordLength {
		return nil, apperror.ValidationFailed("password",
			fmt.Sprintf("password must be at least %d characters long", MinPasswordLength))
	}

	// Duplicate check up front so the caller gets a 400 with a clear
	// message. The UNIQUE constraint still backstops the race window.
	if _, err := s.users.GetByEmail(ctx, email); err == nil {
		return nil, apperror.ValidationFailed("email", "user already exists")
	} else if !errors.Is(err, apperror.ErrNotFound) {
		return nil, fmt.Errorf("service/auth: checking email %s: %w", email, err)
	}

	hash, err := s.passwords.Hash(password)
	if err != nil {
		return nil, fmt.Errorf("service/auth: %w", err)
	}

	user := &model.User{
		Name:           name,
		Email:          email,
		PasswordHash:   hash,
		Role:           model.RoleUser,
		Bio:            "",
		ProfilePicture: profilePicture,
		Followers:      []string{},
		Following:      []string{},
	}

	if err := s.users.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("service/auth: creating user %s: %w", email, err)
	}

	s.logger.Info("user signed up",
		slog.String("userID", user.ID),
		slog.String("email", user.Email),
	)

	return user, nil
}

// Login verifies an email+password credential and issues a session token.
//
// Both "unknown email" and "wrong password" surface as the same
// Unauthorized error — the response must not reveal which half failed.
func (s *AuthService) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return nil, apperror.ValidationFailed("", "email and password are required")
	}

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return nil, apperror.Unauthorized("invalid email or password")
		}
		return nil, fmt.Errorf("service/auth: looking up %s: %w", email, err)
	}

	// OAuth-only accounts have no stored credential.
	if user.PasswordHash == "" {
		return nil, apperror.Unauthorized("invalid email or password")
	}

	if err := s.passwords.Verify(user.PasswordHash, password); err != nil {
		return nil, apperror.Unauthorized("invalid email or password")
	}

	token, err := s.tokens.Generate(principalFor(user))
	if err != nil {
		return nil, fmt.Errorf("service/auth: generating token for user %s: %w", user.ID, err)
	}

	s.logger.Info("user logged in", slog.String("userID", user.ID))

	return &AuthResult{User: user, Token: token}, nil
}

// LoginOrRegisterGoogle handles the Google OAuth callback.
//
// Email is the stable key for federated accounts: first sign-in
// auto-provisions a user (empty credential, empty bio/social lists, Google
// avatar); later sign-ins find the same row by email even though Google never
// sees our internal ids.
func (s *AuthService) LoginOrRegisterGoogle(ctx context.Context, gUser *auth.GoogleUser) (*AuthResult, error) {
	if gUser == nil {
		return nil, fmt.Errorf("service/auth: Google user must not be nil")
	}

	email := strings.ToLower(strings.TrimSpace(gUser.Email))

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if !errors.Is(err, apperror.ErrNotFound) {
			return nil, fmt.Errorf("service/auth: looking up %s: %w", email, err)
		}

		user = &model.User{
			Name:           gUser.Name,
			Email:          email,
			Role:           model.RoleUser,
			Bio:            "",
			ProfilePicture: gUser.Picture,
			Followers:      []string{},
			Following:      []string{},
		}
		if err := s.users.Create(ctx, user); err != nil {
			return nil, fmt.Errorf("service/auth: provisioning Google user %s: %w", email, err)
		}

		s.logger.Info("user provisioned via Google",
			slog.String("userID", user.ID),
			slog.String("email", user.Email),
		)
	}

	token, err := s.tokens.Generate(principalFor(user))
	if err != nil {
		return nil, fmt.Errorf("service/auth: generating token for user %s: %w", user.ID, err)
	}

	return &AuthResult{User: user, Token: token}, nil
}

// GetUserByID returns the user for the given internal ID. Used by /api/me.
func (s *AuthService) GetUserByID(ctx context.Context, id string) (*model.User, error) {
	if id == "" {
		return nil, fmt.Errorf("service/auth: user ID must not be empty")
	}
	return s.users.GetByID(ctx, id)
}

func principalFor(u *model.User) auth.Principal {
	return auth.Principal{
		ID:    u.ID,
		Email: u.Email,
		Name:  u.Name,
		Role:  u.Role,
	}
}
