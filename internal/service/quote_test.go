package service

import (
	"context"
	"errors"
	"testing"

	"github.com/Atulsharma2004/quote-app-at/internal/apperror"
	"github.com/Atulsharma2004/quote-app-at/internal/auth"
	"github.com/Atulsharma2004/quote-app-at/internal/model"
)

func newTestQuoteService(t *testing.T) (*QuoteService, *mockQuoteRepo, *mockUserRepo) {
	t.Helper()
	users := newMockUserRepo()
	quotes := newMockQuoteRepo()
	resolver := NewResolver(users, testLogger())
	return NewQuoteService(quotes, resolver, testLogger()), quotes, users
}

func principalOf(u *model.User) auth.Principal {
	return auth.Principal{ID: u.ID, Email: u.Email, Name: u.Name, Role: u.Role}
}

// =========================================================================
// CREATE TESTS
// =========================================================================

func TestQuoteCreate_SnapshotsPosterIdentity(t *testing.T) {
	svc, _, users := newTestQuoteService(t)
	ctx := context.Background()

	alice := seedUser(t, users, "Alice", "alice@example.com")
	users.users[alice.ID].ProfilePicture = "alice-avatar"

	quote, err := svc.Create(ctx, principalOf(alice), QuoteInput{
		Text:     "Stay hungry.",
		Author:   "Steve Jobs",
		Category: "motivation",
	})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	if quote.UserID != alice.ID || quote.UserName != "Alice" ||
		quote.UserEmail != "alice@example.com" || quote.UserImage != "alice-avatar" {
		t.Errorf("denormalized poster fields = %q/%q/%q/%q",
			quote.UserID, quote.UserName, quote.UserEmail, quote.UserImage)
	}
	if quote.Likes == nil || quote.Comments == nil {
		t.Error("Create() must initialise empty engagement lists")
	}
}

func TestQuoteCreate_Validation(t *testing.T) {
	svc, _, users := newTestQuoteService(t)
	ctx := context.Background()

	alice := seedUser(t, users, "Alice", "alice@example.com")

	for _, in := range []QuoteInput{
		{Text: "", Author: "A"},
		{Text: "something", Author: ""},
		{Text: "  ", Author: "  "},
	} {
		if _, err := svc.Create(ctx, principalOf(alice), in); !errors.Is(err, apperror.ErrValidation) {
			t.Errorf("Create(%+v) error = %v, want ErrValidation", in, err)
		}
	}
}

func TestQuoteCreate_UnresolvablePoster(t *testing.T) {
	svc, _, _ := newTestQuoteService(t)

	// A live cookie for a deleted account: neither id nor email resolves.
	ghost := auth.Principal{ID: "gone", Email: "gone@example.com", Name: "Ghost"}

	_, err := svc.Create(context.Background(), ghost, QuoteInput{Text: "boo", Author: "Ghost"})
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("Create(deleted account) error = %v, want ErrNotFound", err)
	}
}

// =========================================================================
// UPDATE / DELETE PERMISSION TESTS
// =========================================================================

func TestQuoteUpdate_OwnerOnly(t *testing.T) {
	svc, _, users := newTestQuoteService(t)
	ctx := context.Background()

	alice := seedUser(t, users, "Alice", "alice@example.com")
	mallory := seedUser(t, users, "Mallory", "mallory@example.com")

	quote, err := svc.Create(ctx, principalOf(alice), QuoteInput{Text: "mine", Author: "A"})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	// A different user is refused.
	_, err = svc.Update(ctx, principalOf(mallory), quote.ID, QuoteInput{Text: "stolen", Author: "M"})
	if !errors.Is(err, apperror.ErrForbidden) {
		t.Errorf("Update(non-owner) error = %v, want ErrForbidden", err)
	}

	// The owner succeeds.
	updated, err := svc.Update(ctx, principalOf(alice), quote.ID, QuoteInput{Text: "edited", Author: "A"})
	if err != nil {
		t.Fatalf("Update(owner) error = %v", err)
	}
	if updated.Text != "edited" {
		t.Errorf("Update() text = %q, want edited", updated.Text)
	}
}

func TestQuoteDelete_AdminOverride(t *testing.T) {
	svc, _, users := newTestQuoteService(t)
	ctx := context.Background()

	alice := seedUser(t, users, "Alice", "alice@example.com")
	admin := seedUser(t, users, "Root", "root@example.com")
	users.users[admin.ID].Role = model.RoleAdmin

	quote, err := svc.Create(ctx, principalOf(alice), QuoteInput{Text: "mine", Author: "A"})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	adminPrincipal := principalOf(users.users[admin.ID])
	if err := svc.Delete(ctx, adminPrincipal, quote.ID); err != nil {
		t.Errorf("Delete(admin) error = %v, want nil", err)
	}
}

func TestQuoteUpdate_OwnershipSurvivesQuotedStoredID(t *testing.T) {
	svc, quotes, users := newTestQuoteService(t)
	ctx := context.Background()

	alice := seedUser(t, users, "Alice", "alice@example.com")

	quote, err := svc.Create(ctx, principalOf(alice), QuoteInput{Text: "mine", Author: "A"})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	// Simulate a legacy row whose stored owner id carries JSON quotes.
	quotes.quotes[quote.ID].UserID = `"` + alice.ID + `"`

	if _, err := svc.Update(ctx, principalOf(alice), quote.ID, QuoteInput{Text: "still mine", Author: "A"}); err != nil {
		t.Errorf("Update(owner, quoted stored id) error = %v, want nil", err)
	}
}

// =========================================================================
// LIKE TESTS
// =========================================================================

func TestToggleLike_PairRestoresCount(t *testing.T) {
	svc, quotes, users := newTestQuoteService(t)
	ctx := context.Background()

	alice := seedUser(t, users, "Alice", "alice@example.com")
	fan := seedUser(t, users, "Fan", "fan@example.com")

	quote, err := svc.Create(ctx, principalOf(alice), QuoteInput{Text: "likeable", Author: "A"})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	liked, err := svc.ToggleLike(ctx, principalOf(fan), quote.ID)
	if err != nil {
		t.Fatalf("ToggleLike() error = %v", err)
	}
	if !liked.Liked || liked.LikesCount != 1 {
		t.Errorf("first toggle = %+v, want liked/1", liked)
	}

	unliked, err := svc.ToggleLike(ctx, principalOf(fan), quote.ID)
	if err != nil {
		t.Fatalf("ToggleLike() error = %v", err)
	}
	if unliked.Liked || unliked.LikesCount != 0 {
		t.Errorf("second toggle = %+v, want unliked/0", unliked)
	}

	stored, _ := quotes.GetByID(ctx, quote.ID)
	if stored.LikesCount != len(stored.Likes) {
		t.Errorf("counter drifted: count=%d len=%d", stored.LikesCount, len(stored.Likes))
	}
}

func TestToggleLike_QuoteNotFound(t *testing.T) {
	svc, _, users := newTestQuoteService(t)

	fan := seedUser(t, users, "Fan", "fan@example.com")

	_, err := svc.ToggleLike(context.Background(), principalOf(fan), "missing")
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("ToggleLike(missing quote) error = %v, want ErrNotFound", err)
	}
}

// =========================================================================
// COMMENT TESTS
// =========================================================================

func TestAddComment_SnapshotsCommenter(t *testing.T) {
	svc, quotes, users := newTestQuoteService(t)
	ctx := context.Background()

	alice := seedUser(t, users, "Alice", "alice@example.com")
	carol := seedUser(t, users, "Carol", "carol@example.com")
	users.users[carol.ID].ProfilePicture = "carol-avatar"

	quote, err := svc.Create(ctx, principalOf(alice), QuoteInput{Text: "discuss", Author: "A"})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	comment, err := svc.AddComment(ctx, principalOf(carol), quote.ID, "well said")
	if err != nil {
		t.Fatalf("AddComment() error = %v", err)
	}
	if comment.ID == "" {
		t.Error("AddComment() did not assign an id")
	}
	if comment.UserName != "Carol" || comment.UserImage != "carol-avatar" {
		t.Errorf("comment snapshot = %q/%q", comment.UserName, comment.UserImage)
	}
	if comment.CreatedAt.IsZero() {
		t.Error("AddComment() did not timestamp the comment")
	}

	stored, _ := quotes.GetByID(ctx, quote.ID)
	if stored.CommentsCount != 1 || len(stored.Comments) != 1 {
		t.Errorf("comment counter = %d, len = %d", stored.CommentsCount, len(stored.Comments))
	}
}

func TestAddComment_EmptyText(t *testing.T) {
	svc, _, users := newTestQuoteService(t)
	ctx := context.Background()

	alice := seedUser(t, users, "Alice", "alice@example.com")
	quote, err := svc.Create(ctx, principalOf(alice), QuoteInput{Text: "discuss", Author: "A"})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	_, err = svc.AddComment(ctx, principalOf(alice), quote.ID, "   ")
	if !errors.Is(err, apperror.ErrValidation) {
		t.Errorf("AddComment(blank) error = %v, want ErrValidation", err)
	}
}
