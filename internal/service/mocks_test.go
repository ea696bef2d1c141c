package service

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"strings"
	"testing"

	"github.com/rs/xid"

	"github.com/Atulsharma2004/quote-app-at/internal/apperror"
	"github.com/Atulsharma2004/quote-app-at/internal/model"
	"github.com/Atulsharma2004/quote-app-at/internal/repository"
)

// =========================================================================
// MOCK REPOSITORIES
// =========================================================================
//
// Hand-written in-memory fakes of the repository interfaces. The services
// only know the interfaces, so swapping sqlite for a map is invisible to the
// code under test. Each mock also carries a failWith error so tests can
// simulate a dead store.

type mockUserRepo struct {
	users    map[string]*model.User // keyed by id
	failWith error                  // returned by every method when set
}

func newMockUserRepo() *mockUserRepo {
	return &mockUserRepo{users: make(map[string]*model.User)}
}

func (m *mockUserRepo) Create(_ context.Context, user *model.User) error {
	if m.failWith != nil {
		return m.failWith
	}
	for _, u := range m.users {
		if u.Email == user.Email {
			return apperror.Conflict("user", user.Email)
		}
	}
	user.ID = xid.New().String()
	stored := *user
	m.users[user.ID] = &stored
	return nil
}

func (m *mockUserRepo) GetByID(_ context.Context, id string) (*model.User, error) {
	if m.failWith != nil {
		return nil, m.failWith
	}
	u, ok := m.users[id]
	if !ok {
		return nil, apperror.NotFound("user", id)
	}
	result := *u
	return &result, nil
}

func (m *mockUserRepo) GetByEmail(_ context.Context, email string) (*model.User, error) {
	if m.failWith != nil {
		return nil, m.failWith
	}
	for _, u := range m.users {
		if u.Email == email {
			result := *u
			return &result, nil
		}
	}
	return nil, apperror.NotFound("user", email)
}

func (m *mockUserRepo) UpdateProfile(_ context.Context, id string, upd repository.ProfileUpdate) error {
	if m.failWith != nil {
		return m.failWith
	}
	u, ok := m.users[id]
	if !ok {
		return apperror.NotFound("user", id)
	}
	u.Name = upd.Name
	u.Bio = upd.Bio
	if upd.ProfilePicture != nil {
		u.ProfilePicture = *upd.ProfilePicture
	}
	return nil
}

func (m *mockUserRepo) SetFollowEdge(_ context.Context, followerID, followeeID string, follow bool) error {
	if m.failWith != nil {
		return m.failWith
	}
	follower, ok := m.users[followerID]
	if !ok {
		return apperror.NotFound("user", followerID)
	}
	followee, ok := m.users[followeeID]
	if !ok {
		return apperror.NotFound("user", followeeID)
	}
	if follow {
		follower.Following = addUnique(follower.Following, followeeID)
		followee.Followers = addUnique(followee.Followers, followerID)
	} else {
		follower.Following = removeAll(follower.Following, followeeID)
		followee.Followers = removeAll(followee.Followers, followerID)
	}
	return nil
}

func (m *mockUserRepo) ListByIDs(_ context.Context, ids []string) ([]model.User, error) {
	if m.failWith != nil {
		return nil, m.failWith
	}
	out := make([]model.User, 0, len(ids))
	for _, id := range ids {
		if u, ok := m.users[id]; ok {
			out = append(out, *u)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *mockUserRepo) Count(_ context.Context) (int, error) {
	if m.failWith != nil {
		return 0, m.failWith
	}
	return len(m.users), nil
}

// addUnique and removeAll mirror the real repository's set operations,
// including the normalization of legacy quoted entries.
func addUnique(ids []string, id string) []string {
	for _, v := range ids {
		if normalizeID(v) == normalizeID(id) {
			return ids
		}
	}
	return append(ids, id)
}

func removeAll(ids []string, id string) []string {
	id = normalizeID(id)
	out := ids[:0]
	for _, v := range ids {
		if normalizeID(v) != id {
			out = append(out, v)
		}
	}
	return out
}

type mockQuoteRepo struct {
	quotes   map[string]*model.Quote
	order    []string // insertion order, for deterministic listing
	failWith error
}

func newMockQuoteRepo() *mockQuoteRepo {
	return &mockQuoteRepo{quotes: make(map[string]*model.Quote)}
}

func (m *mockQuoteRepo) Create(_ context.Context, quote *model.Quote) error {
	if m.failWith != nil {
		return m.failWith
	}
	quote.ID = fmt.Sprintf("quote-%d", len(m.order)+1)
	stored := *quote
	m.quotes[quote.ID] = &stored
	m.order = append(m.order, quote.ID)
	return nil
}

func (m *mockQuoteRepo) GetByID(_ context.Context, id string) (*model.Quote, error) {
	if m.failWith != nil {
		return nil, m.failWith
	}
	q, ok := m.quotes[id]
	if !ok {
		return nil, apperror.NotFound("quote", id)
	}
	result := *q
	return &result, nil
}

func (m *mockQuoteRepo) Update(_ context.Context, quote *model.Quote) error {
	if m.failWith != nil {
		return m.failWith
	}
	q, ok := m.quotes[quote.ID]
	if !ok {
		return apperror.NotFound("quote", quote.ID)
	}
	q.Text = quote.Text
	q.Author = quote.Author
	q.Category = quote.Category
	return nil
}

func (m *mockQuoteRepo) Delete(_ context.Context, id string) error {
	if m.failWith != nil {
		return m.failWith
	}
	if _, ok := m.quotes[id]; !ok {
		return apperror.NotFound("quote", id)
	}
	delete(m.quotes, id)
	m.order = removeAll(m.order, id)
	return nil
}

func (m *mockQuoteRepo) List(_ context.Context, filter repository.QuoteFilter) ([]model.Quote, int, error) {
	if m.failWith != nil {
		return nil, 0, m.failWith
	}
	var matched []model.Quote
	for _, id := range m.order {
		q := m.quotes[id]
		if filter.Search != "" &&
			!strings.Contains(strings.ToLower(q.Text), strings.ToLower(filter.Search)) {
			continue
		}
		if filter.Category != "" && filter.Category != repository.CategoryAll &&
			q.Category != filter.Category {
			continue
		}
		matched = append(matched, *q)
	}
	total := len(matched)

	start := (filter.Page - 1) * filter.Limit
	if start >= total {
		return []model.Quote{}, total, nil
	}
	end := start + filter.Limit
	if end > total {
		end = total
	}
	return matched[start:end], total, nil
}

func (m *mockQuoteRepo) ListLikedBy(_ context.Context, userID string) ([]model.Quote, error) {
	if m.failWith != nil {
		return nil, m.failWith
	}
	var out []model.Quote
	for _, id := range m.order {
		q := m.quotes[id]
		for _, liker := range q.Likes {
			if normalizeID(liker) == normalizeID(userID) {
				out = append(out, *q)
				break
			}
		}
	}
	return out, nil
}

func (m *mockQuoteRepo) ListByUser(_ context.Context, userID string) ([]model.Quote, error) {
	if m.failWith != nil {
		return nil, m.failWith
	}
	out := []model.Quote{}
	for _, id := range m.order {
		if q := m.quotes[id]; q.UserID == userID {
			out = append(out, *q)
		}
	}
	return out, nil
}

func (m *mockQuoteRepo) Recent(_ context.Context, limit int) ([]model.RecentQuote, error) {
	if m.failWith != nil {
		return nil, m.failWith
	}
	if limit <= 0 {
		limit = 3
	}
	out := []model.RecentQuote{}
	for i := len(m.order) - 1; i >= 0 && len(out) < limit; i-- {
		q := m.quotes[m.order[i]]
		out = append(out, model.RecentQuote{
			ID: q.ID, Text: q.Text, Author: q.Author,
			LikesCount: q.LikesCount, CommentsCount: q.CommentsCount,
			CreatedAt: q.CreatedAt,
		})
	}
	return out, nil
}

func (m *mockQuoteRepo) Count(_ context.Context) (int, error) {
	if m.failWith != nil {
		return 0, m.failWith
	}
	return len(m.quotes), nil
}

func (m *mockQuoteRepo) SetLike(_ context.Context, quoteID, userID string, like bool) error {
	if m.failWith != nil {
		return m.failWith
	}
	q, ok := m.quotes[quoteID]
	if !ok {
		return apperror.NotFound("quote", quoteID)
	}
	if like {
		q.Likes = addUnique(q.Likes, userID)
	} else {
		q.Likes = removeAll(q.Likes, userID)
	}
	q.LikesCount = len(q.Likes)
	return nil
}

func (m *mockQuoteRepo) AppendComment(_ context.Context, quoteID string, comment model.Comment) error {
	if m.failWith != nil {
		return m.failWith
	}
	q, ok := m.quotes[quoteID]
	if !ok {
		return apperror.NotFound("quote", quoteID)
	}
	q.Comments = append(q.Comments, comment)
	q.CommentsCount = len(q.Comments)
	return nil
}

// compile-time interface checks
var (
	_ repository.UserRepository  = (*mockUserRepo)(nil)
	_ repository.QuoteRepository = (*mockQuoteRepo)(nil)
)

// =========================================================================
// SHARED HELPERS
// =========================================================================

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func seedUser(t *testing.T, repo *mockUserRepo, name, email string) *model.User {
	t.Helper()
	u := &model.User{
		Name:      name,
		Email:     email,
		Role:      model.RoleUser,
		Followers: []string{},
		Following: []string{},
	}
	if err := repo.Create(context.Background(), u); err != nil {
		t.Fatalf("seeding user %s: %v", email, err)
	}
	return u
}
