package auth

import (
	"context"
	"net/http"
	"time"
)

// contextKey is an unexported type used for context keys in this package.
// Using a package-private type means only this package can read or write the
// principal value in a context — no collisions with other packages.
type contextKey string

const principalKey contextKey = "principal"

// sessionCookie is the name of the HttpOnly cookie carrying the JWT.
const sessionCookie = "token"

// RequireAuth is a middleware that enforces authentication on protected
// routes.
//
// It reads the JWT from the session cookie, validates it, and stores the
// Principal in the request context. If the token is missing or invalid, it
// returns 401 Unauthorized and stops the request chain.
//
// COOKIE-BASED TOKEN STORAGE:
// The JWT lives in an HttpOnly cookie rather than localStorage or a header.
// HttpOnly means JavaScript cannot read it, so an XSS can't steal the token.
func RequireAuth(tokens *TokenService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			p, err := extractPrincipal(r, tokens)
			if err != nil {
				http.Error(w, `{"error":"unauthorized","message":"valid authentication required"}`, http.StatusUnauthorized)
				return
			}

			ctx := context.WithValue(r.Context(), principalKey, p)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// OptionalAuth extracts the principal if a valid token is present but does
// NOT block the request if it's missing or invalid.
//
// Used on public routes like GET /api/quotes where anonymous users can read
// but logged-in users may see extra state. Handlers check via
// PrincipalFromContext — (zero, false) means anonymous.
func OptionalAuth(tokens *TokenService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if p, err := extractPrincipal(r, tokens); err == nil && p.ID != "" {
				ctx := context.WithValue(r.Context(), principalKey, p)
				r = r.WithContext(ctx)
			}
			// Always continue — no 401 even without a token
			next.ServeHTTP(w, r)
		})
	}
}

// ContextWithPrincipal returns ctx carrying the given principal. The
// middleware uses it internally; handler tests use it to simulate an
// authenticated request without minting a token.
func ContextWithPrincipal(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, principalKey, p)
}

// PrincipalFromContext retrieves the authenticated principal from the request
// context. Returns (zero, false) for anonymous requests.
func PrincipalFromContext(ctx context.Context) (Principal, bool) {
	p, ok := ctx.Value(principalKey).(Principal)
	return p, ok && p.ID != ""
}

// extractPrincipal reads the session cookie and validates it. Shared by
// RequireAuth and OptionalAuth.
func extractPrincipal(r *http.Request, tokens *TokenService) (Principal, error) {
	cookie, err := r.Cookie(sessionCookie)
	if err != nil {
		// http.ErrNoCookie — not an error, just anonymous
		return Principal{}, err
	}

	return tokens.Validate(cookie.Value)
}

// SessionCookieMaxAge matches the token lifetime so the cookie and the JWT
// inside it expire together.
const SessionCookieMaxAge = int(sessionLifetime / time.Second)

// SetSessionCookie writes the JWT session cookie on a login/signup response.
// SameSite=Lax keeps the cookie off cross-site POSTs; Secure should be set
// behind HTTPS in production.
func SetSessionCookie(w http.ResponseWriter, token string, maxAge int) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    token,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

// ClearSessionCookie tells the browser to drop the session cookie.
func ClearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}
