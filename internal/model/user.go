// Package model defines the data structures used throughout the application.
package model

import "time"

// Role values stored on User.Role. Admins may edit or delete any quote;
// regular users only their own.
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// User represents a registered account and a node in the social graph.
//
// Accounts come from two places: credential signup (email + bcrypt-hashed
// password) and Google OAuth (auto-provisioned on first sign-in, in which case
// PasswordHash is empty). Email is the stable lookup key for OAuth accounts;
// ID is the stable key for everything else and for all references from quotes
// and comments.
//
// Followers and Following hold user IDs. They are stored as JSON lists but
// carry set semantics — the application never inserts a duplicate, and a
// user's own ID never appears in either list. The two lists form a symmetric
// edge: if A's ID is in B's Following, then B's ID is in A's Followers. Both
// sides are updated in the same transaction (see repository/sqlite).
//
// ProfilePicture is one of: empty, a data-URI-encoded small image uploaded at
// signup/profile edit, or an external URL (Google avatar).
type User struct {
	ID             string    `json:"id"`
	Name           string    `json:"name"`
	Email          string    `json:"email"`
	PasswordHash   string    `json:"-"` // never serialized; empty for OAuth-only accounts
	Role           string    `json:"role"`
	Bio            string    `json:"bio"`
	ProfilePicture string    `json:"profilePicture"`
	Followers      []string  `json:"followers"`
	Following      []string  `json:"following"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

// RelatedUser is the display projection returned by the followers/following
// listings. Only public display fields — no role, no timestamps.
type RelatedUser struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	Email          string `json:"email"`
	ProfilePicture string `json:"profilePicture"`
	Bio            string `json:"bio"`
}
