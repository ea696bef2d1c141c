package sqlite

import (
	"context"
	"errors"
	"testing"

	"github.com/Atulsharma2004/quote-app-at/internal/apperror"
	"github.com/Atulsharma2004/quote-app-at/internal/model"
	"github.com/Atulsharma2004/quote-app-at/internal/repository"
)

// TESTING WITH IN-MEMORY SQLITE:
// Using ":memory:" creates a fresh database that exists only during the test.
// Fast (no disk I/O), isolated (each test gets its own database), and clean
// (destroyed when the connection closes).
//
// newTestDB is a test helper; t.Helper() makes failures report at the
// CALLER's line number, and t.Cleanup closes the database even in subtests.
func newTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := New(":memory:")
	if err != nil {
		t.Fatalf("failed to create test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func createTestUser(t *testing.T, users *UserRepo, name, email string) *model.User {
	t.Helper()
	u := &model.User{
		Name:      name,
		Email:     email,
		Role:      model.RoleUser,
		Followers: []string{},
		Following: []string{},
	}
	if err := users.Create(context.Background(), u); err != nil {
		t.Fatalf("failed to create test user: %v", err)
	}
	return u
}

// =========================================================================
// CREATE TESTS
// =========================================================================

func TestUserCreate(t *testing.T) {
	users := newTestDB(t).Users()

	u := createTestUser(t, users, "Alice", "alice@example.com")

	if u.ID == "" {
		t.Error("Create() did not assign an ID")
	}
	if u.CreatedAt.IsZero() || u.UpdatedAt.IsZero() {
		t.Error("Create() did not set timestamps")
	}
}

func TestUserCreate_DuplicateEmail(t *testing.T) {
	users := newTestDB(t).Users()

	createTestUser(t, users, "Alice", "alice@example.com")

	dup := &model.User{Name: "Other Alice", Email: "alice@example.com"}
	err := users.Create(context.Background(), dup)
	if !errors.Is(err, apperror.ErrConflict) {
		t.Errorf("Create() with duplicate email: error = %v, want ErrConflict", err)
	}
}

// =========================================================================
// GET TESTS
// =========================================================================

func TestUserGetByID(t *testing.T) {
	users := newTestDB(t).Users()

	created := createTestUser(t, users, "Alice", "alice@example.com")

	got, err := users.GetByID(context.Background(), created.ID)
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if got.Email != "alice@example.com" {
		t.Errorf("GetByID() email = %q, want alice@example.com", got.Email)
	}
	if got.Followers == nil || got.Following == nil {
		t.Error("GetByID() returned nil social lists, want empty slices")
	}
}

func TestUserGetByID_NotFound(t *testing.T) {
	users := newTestDB(t).Users()

	_, err := users.GetByID(context.Background(), "does-not-exist")
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("GetByID() error = %v, want ErrNotFound", err)
	}
}

func TestUserGetByID_MalformedID(t *testing.T) {
	users := newTestDB(t).Users()

	// Legacy rows mean ids arrive in shapes that were never valid. Those
	// must be a clean not-found, never an internal error.
	_, err := users.GetByID(context.Background(), `{"$oid":"abc"}`)
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("GetByID() with malformed id: error = %v, want ErrNotFound", err)
	}
}

func TestUserGetByEmail(t *testing.T) {
	users := newTestDB(t).Users()

	createTestUser(t, users, "Alice", "alice@example.com")

	got, err := users.GetByEmail(context.Background(), "alice@example.com")
	if err != nil {
		t.Fatalf("GetByEmail() error = %v", err)
	}
	if got.Name != "Alice" {
		t.Errorf("GetByEmail() name = %q, want Alice", got.Name)
	}
}

// =========================================================================
// UPDATE PROFILE TESTS
// =========================================================================

func TestUpdateProfile_KeepsAvatarWhenNil(t *testing.T) {
	users := newTestDB(t).Users()
	ctx := context.Background()

	u := createTestUser(t, users, "Alice", "alice@example.com")

	pic := "data:image/png;base64,xyz"
	if err := users.UpdateProfile(ctx, u.ID, repository.ProfileUpdate{
		Name: "Alice", Bio: "hello", ProfilePicture: &pic,
	}); err != nil {
		t.Fatalf("UpdateProfile() error = %v", err)
	}

	// Second edit omits the picture — it must survive.
	if err := users.UpdateProfile(ctx, u.ID, repository.ProfileUpdate{
		Name: "Alice Cooper", Bio: "updated",
	}); err != nil {
		t.Fatalf("UpdateProfile() error = %v", err)
	}

	got, _ := users.GetByID(ctx, u.ID)
	if got.ProfilePicture != pic {
		t.Errorf("UpdateProfile() cleared the avatar: got %q", got.ProfilePicture)
	}
	if got.Name != "Alice Cooper" || got.Bio != "updated" {
		t.Errorf("UpdateProfile() name/bio = %q/%q", got.Name, got.Bio)
	}
}

func TestUpdateProfile_NotFound(t *testing.T) {
	users := newTestDB(t).Users()

	err := users.UpdateProfile(context.Background(), "missing", repository.ProfileUpdate{Name: "X"})
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("UpdateProfile() error = %v, want ErrNotFound", err)
	}
}

// =========================================================================
// FOLLOW EDGE TESTS
// =========================================================================

func TestSetFollowEdge_Symmetric(t *testing.T) {
	users := newTestDB(t).Users()
	ctx := context.Background()

	a := createTestUser(t, users, "Alice", "alice@example.com")
	b := createTestUser(t, users, "Bob", "bob@example.com")

	if err := users.SetFollowEdge(ctx, a.ID, b.ID, true); err != nil {
		t.Fatalf("SetFollowEdge() error = %v", err)
	}

	gotA, _ := users.GetByID(ctx, a.ID)
	gotB, _ := users.GetByID(ctx, b.ID)

	if len(gotA.Following) != 1 || gotA.Following[0] != b.ID {
		t.Errorf("follower.Following = %v, want [%s]", gotA.Following, b.ID)
	}
	if len(gotB.Followers) != 1 || gotB.Followers[0] != a.ID {
		t.Errorf("followee.Followers = %v, want [%s]", gotB.Followers, a.ID)
	}
	// The edge is directed: no reverse entries.
	if len(gotA.Followers) != 0 || len(gotB.Following) != 0 {
		t.Error("SetFollowEdge() wrote the reverse direction too")
	}
}

func TestSetFollowEdge_Idempotent(t *testing.T) {
	users := newTestDB(t).Users()
	ctx := context.Background()

	a := createTestUser(t, users, "Alice", "alice@example.com")
	b := createTestUser(t, users, "Bob", "bob@example.com")

	for i := 0; i < 3; i++ {
		if err := users.SetFollowEdge(ctx, a.ID, b.ID, true); err != nil {
			t.Fatalf("SetFollowEdge() error = %v", err)
		}
	}

	gotA, _ := users.GetByID(ctx, a.ID)
	if len(gotA.Following) != 1 {
		t.Errorf("Following has %d entries after repeated follow, want 1", len(gotA.Following))
	}
}

func TestSetFollowEdge_UnfollowRestoresOriginalState(t *testing.T) {
	users := newTestDB(t).Users()
	ctx := context.Background()

	a := createTestUser(t, users, "Alice", "alice@example.com")
	b := createTestUser(t, users, "Bob", "bob@example.com")

	if err := users.SetFollowEdge(ctx, a.ID, b.ID, true); err != nil {
		t.Fatalf("follow: %v", err)
	}
	if err := users.SetFollowEdge(ctx, a.ID, b.ID, false); err != nil {
		t.Fatalf("unfollow: %v", err)
	}

	gotA, _ := users.GetByID(ctx, a.ID)
	gotB, _ := users.GetByID(ctx, b.ID)

	if len(gotA.Following) != 0 || len(gotB.Followers) != 0 {
		t.Errorf("after follow+unfollow: Following = %v, Followers = %v, want both empty",
			gotA.Following, gotB.Followers)
	}
}

func TestSetFollowEdge_UnknownUser(t *testing.T) {
	users := newTestDB(t).Users()
	ctx := context.Background()

	a := createTestUser(t, users, "Alice", "alice@example.com")

	err := users.SetFollowEdge(ctx, a.ID, "missing", true)
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("SetFollowEdge() error = %v, want ErrNotFound", err)
	}

	// The failed transaction must not have touched the follower's row.
	gotA, _ := users.GetByID(ctx, a.ID)
	if len(gotA.Following) != 0 {
		t.Errorf("Following = %v after failed follow, want empty", gotA.Following)
	}
}

// seedLegacyFollowEdge rewrites the stored lists with JSON-quoted entries,
// the shape rows migrated from the previous store arrive in.
func seedLegacyFollowEdge(t *testing.T, db *DB, followerID, followeeID string) {
	t.Helper()
	following := `["\"` + followeeID + `\""]`
	followers := `["\"` + followerID + `\""]`
	if _, err := db.conn.Exec(`UPDATE users SET following = ? WHERE id = ?`, following, followerID); err != nil {
		t.Fatalf("seeding legacy following list: %v", err)
	}
	if _, err := db.conn.Exec(`UPDATE users SET followers = ? WHERE id = ?`, followers, followeeID); err != nil {
		t.Fatalf("seeding legacy followers list: %v", err)
	}
}

func TestSetFollowEdge_RemovesLegacyQuotedEntry(t *testing.T) {
	db := newTestDB(t)
	users := db.Users()
	ctx := context.Background()

	a := createTestUser(t, users, "Alice", "alice@example.com")
	b := createTestUser(t, users, "Bob", "bob@example.com")
	seedLegacyFollowEdge(t, db, a.ID, b.ID)

	if err := users.SetFollowEdge(ctx, a.ID, b.ID, false); err != nil {
		t.Fatalf("SetFollowEdge() error = %v", err)
	}

	gotA, _ := users.GetByID(ctx, a.ID)
	gotB, _ := users.GetByID(ctx, b.ID)
	if len(gotA.Following) != 0 || len(gotB.Followers) != 0 {
		t.Errorf("unfollow left legacy entries behind: Following = %v, Followers = %v",
			gotA.Following, gotB.Followers)
	}
}

func TestSetFollowEdge_LegacyQuotedEntryNotDuplicated(t *testing.T) {
	db := newTestDB(t)
	users := db.Users()
	ctx := context.Background()

	a := createTestUser(t, users, "Alice", "alice@example.com")
	b := createTestUser(t, users, "Bob", "bob@example.com")
	seedLegacyFollowEdge(t, db, a.ID, b.ID)

	// Re-following an edge the legacy list already holds must keep set
	// semantics across the two representations.
	if err := users.SetFollowEdge(ctx, a.ID, b.ID, true); err != nil {
		t.Fatalf("SetFollowEdge() error = %v", err)
	}

	gotA, _ := users.GetByID(ctx, a.ID)
	if len(gotA.Following) != 1 {
		t.Errorf("Following = %v, want exactly one entry", gotA.Following)
	}
}

// =========================================================================
// BATCH FETCH / COUNT TESTS
// =========================================================================

func TestListByIDs_SkipsUnknown(t *testing.T) {
	users := newTestDB(t).Users()
	ctx := context.Background()

	a := createTestUser(t, users, "Alice", "alice@example.com")
	b := createTestUser(t, users, "Bob", "bob@example.com")

	got, err := users.ListByIDs(ctx, []string{a.ID, "missing", b.ID})
	if err != nil {
		t.Fatalf("ListByIDs() error = %v", err)
	}
	if len(got) != 2 {
		t.Errorf("ListByIDs() returned %d users, want 2", len(got))
	}
}

func TestListByIDs_Empty(t *testing.T) {
	users := newTestDB(t).Users()

	got, err := users.ListByIDs(context.Background(), nil)
	if err != nil {
		t.Fatalf("ListByIDs() error = %v", err)
	}
	if len(got) != 0 {
		t.Errorf("ListByIDs(nil) returned %d users, want 0", len(got))
	}
}

func TestUserCount(t *testing.T) {
	users := newTestDB(t).Users()

	createTestUser(t, users, "Alice", "alice@example.com")
	createTestUser(t, users, "Bob", "bob@example.com")

	n, err := users.Count(context.Background())
	if err != nil {
		t.Fatalf("Count() error = %v", err)
	}
	if n != 2 {
		t.Errorf("Count() = %d, want 2", n)
	}
}
