package model

import "time"

// SuggestedCategories is the fixed suggestion set offered by clients.
// Category remains free-form on the wire — anything outside this list is
// stored as-is, and an empty category is the default.
var SuggestedCategories = []string{
	"motivation", "wisdom", "love", "success", "life", "happiness", "inspiration",
}

// Quote is a user-authored statement attributed to someone else.
//
// UserName, UserEmail and UserImage are denormalized from the posting user at
// creation time so a quote can render without a join. They go stale when the
// poster edits their profile; read paths re-resolve the avatar through the
// identity resolver and fall back to these snapshots only when both lookups
// fail (see service.Resolver).
//
// Likes holds the IDs of users who liked the quote, with set semantics — an ID
// appears at most once. LikesCount always equals len(Likes): every mutation
// moves the list and the counter together, nothing recomputes it lazily. The
// same holds for Comments and CommentsCount.
type Quote struct {
	ID            string    `json:"id"`
	Text          string    `json:"text"`
	Author        string    `json:"author"`
	Category      string    `json:"category"`
	UserID        string    `json:"userId"`
	UserName      string    `json:"userName"`
	UserEmail     string    `json:"userEmail"`
	UserImage     string    `json:"userImage"`
	Likes         []string  `json:"likes"`
	LikesCount    int       `json:"likesCount"`
	Comments      []Comment `json:"comments"`
	CommentsCount int       `json:"commentsCount"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

// Comment is embedded in its parent quote and has no independent lifecycle.
// Comments are immutable once created; the list is append-only and ordered by
// insertion.
//
// UserImage is a snapshot taken at comment time. It is not trusted on reads —
// the commenter's avatar may have changed since — so enrichment re-resolves it
// and uses the snapshot only as a fallback.
type Comment struct {
	ID        string    `json:"id"`
	Text      string    `json:"text"`
	UserID    string    `json:"userId"`
	UserName  string    `json:"userName"`
	UserEmail string    `json:"userEmail"`
	UserImage string    `json:"userImage"`
	CreatedAt time.Time `json:"createdAt"`
}

// RecentQuote is the trimmed projection served on the home page.
type RecentQuote struct {
	ID            string    `json:"id"`
	Text          string    `json:"text"`
	Author        string    `json:"author"`
	LikesCount    int       `json:"likesCount"`
	CommentsCount int       `json:"commentsCount"`
	CreatedAt     time.Time `json:"createdAt"`
}
