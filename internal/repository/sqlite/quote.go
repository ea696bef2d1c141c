package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/rs/xid"

	"github.com/Atulsharma2004/quote-app-at/internal/apperror"
	"github.com/Atulsharma2004/quote-app-at/internal/model"
	"github.com/Atulsharma2004/quote-app-at/internal/repository"
)

// compile-time check that *QuoteRepo implements repository.QuoteRepository
var _ repository.QuoteRepository = (*QuoteRepo)(nil)

const quoteColumns = `id, text, author, category, user_id, user_name, user_email,
	user_image, likes, likes_count, comments, comments_count, created_at, updated_at`

func scanQuote(scan func(dest ...any) error) (*model.Quote, error) {
	var (
		q                    model.Quote
		rawLikes, rawComments string
	)
	if err := scan(
		&q.ID, &q.Text, &q.Author, &q.Category, &q.UserID, &q.UserName,
		&q.UserEmail, &q.UserImage, &rawLikes, &q.LikesCount,
		&rawComments, &q.CommentsCount, &q.CreatedAt, &q.UpdatedAt,
	); err != nil {
		return nil, err
	}

	var err error
	if q.Likes, err = unmarshalList(rawLikes); err != nil {
		return nil, fmt.Errorf("quote %s likes: %w", q.ID, err)
	}
	if q.Comments, err = unmarshalComments(rawComments); err != nil {
		return nil, fmt.Errorf("quote %s comments: %w", q.ID, err)
	}
	return &q, nil
}

func marshalComments(comments []model.Comment) (string, error) {
	if comments == nil {
		comments = []model.Comment{}
	}
	raw, err := json.Marshal(comments)
	if err != nil {
		return "", fmt.Errorf("encoding comments: %w", err)
	}
	return string(raw), nil
}

func unmarshalComments(raw string) ([]model.Comment, error) {
	if raw == "" {
		return []model.Comment{}, nil
	}
	var comments []model.Comment
	if err := json.Unmarshal([]byte(raw), &comments); err != nil {
		return nil, fmt.Errorf("decoding comments: %w", err)
	}
	if comments == nil {
		comments = []model.Comment{}
	}
	return comments, nil
}

// Create inserts a new quote. The caller has already captured the poster's
// denormalized display fields (UserName/UserEmail/UserImage); ID, timestamps
// and the empty like/comment state are set here.
func (r *QuoteRepo) Create(ctx context.Context, quote *model.Quote) error {
	quote.ID = xid.New().String()
	now := time.Now()
	quote.CreatedAt = now
	quote.UpdatedAt = now
	if quote.Likes == nil {
		quote.Likes = []string{}
	}
	if quote.Comments == nil {
		quote.Comments = []model.Comment{}
	}
	quote.LikesCount = len(quote.Likes)
	quote.CommentsCount = len(quote.Comments)

	likes, err := marshalList(quote.Likes)
	if err != nil {
		return fmt.Errorf("sqlite: creating quote: %w", err)
	}
	comments, err := marshalComments(quote.Comments)
	if err != nil {
		return fmt.Errorf("sqlite: creating quote: %w", err)
	}

	_, err = r.conn.ExecContext(ctx,
		`INSERT INTO quotes (id, text, author, category, user_id, user_name,
		 user_email, user_image, likes, likes_count, comments, comments_count,
		 created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		quote.ID, quote.Text, quote.Author, quote.Category, quote.UserID,
		quote.UserName, quote.UserEmail, quote.UserImage, likes,
		quote.LikesCount, comments, quote.CommentsCount,
		quote.CreatedAt, quote.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("sqlite: creating quote: %w", err)
	}

	return nil
}

// GetByID retrieves a single quote by its ID.
func (r *QuoteRepo) GetByID(ctx context.Context, id string) (*model.Quote, error) {
	row := r.conn.QueryRowContext(ctx,
		`SELECT `+quoteColumns+` FROM quotes WHERE id = ?`, id)

	q, err := scanQuote(row.Scan)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("quote", id)
		}
		return nil, fmt.Errorf("sqlite: getting quote %s: %w", id, err)
	}
	return q, nil
}

// Update writes the editable fields (text, author, category). Like and
// comment state is owned by SetLike/AppendComment and never touched here.
func (r *QuoteRepo) Update(ctx context.Context, quote *model.Quote) error {
	quote.UpdatedAt = time.Now()

	result, err := r.conn.ExecContext(ctx,
		`UPDATE quotes SET text = ?, author = ?, category = ?, updated_at = ?
		 WHERE id = ?`,
		quote.Text, quote.Author, quote.Category, quote.UpdatedAt, quote.ID,
	)
	if err != nil {
		return fmt.Errorf("sqlite: updating quote %s: %w", quote.ID, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return apperror.NotFound("quote", quote.ID)
	}
	return nil
}

// Delete removes a quote by its ID.
func (r *QuoteRepo) Delete(ctx context.Context, id string) error {
	result, err := r.conn.ExecContext(ctx, `DELETE FROM quotes WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("sqlite: deleting quote %s: %w", id, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return apperror.NotFound("quote", id)
	}
	return nil
}

// buildFilter translates a QuoteFilter into a WHERE clause and args.
// Search matches case-insensitively against text, author, and the
// denormalized poster name (logical OR of three substring tests). The "all"
// category sentinel applies no category filter.
func buildFilter(filter repository.QuoteFilter) (string, []any) {
	var (
		conds []string
		args  []any
	)

	if search := strings.TrimSpace(filter.Search); search != "" {
		pattern := "%" + strings.ToLower(search) + "%"
		conds = append(conds,
			`(lower(text) LIKE ? OR lower(author) LIKE ? OR lower(user_name) LIKE ?)`)
		args = append(args, pattern, pattern, pattern)
	}

	if filter.Category != "" && filter.Category != repository.CategoryAll {
		conds = append(conds, `category = ?`)
		args = append(args, filter.Category)
	}

	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

// orderClause maps a sort name to a total ordering. Ties break by rowid —
// insertion order.
func orderClause(sort string) string {
	switch sort {
	case repository.SortOldest:
		return " ORDER BY created_at ASC, rowid ASC"
	case repository.SortMostLiked:
		return " ORDER BY likes_count DESC, rowid ASC"
	case repository.SortMostCommented:
		return " ORDER BY comments_count DESC, rowid ASC"
	default: // SortNewest
		return " ORDER BY created_at DESC, rowid ASC"
	}
}

// List returns one page of quotes matching the filter plus the total match
// count (the page window is skip = (page-1)*limit).
func (r *QuoteRepo) List(ctx context.Context, filter repository.QuoteFilter) ([]model.Quote, int, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit <= 0 {
		filter.Limit = 10
	}

	where, args := buildFilter(filter)

	var total int
	if err := r.conn.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM quotes`+where, args...,
	).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("sqlite: counting quotes: %w", err)
	}

	offset := (filter.Page - 1) * filter.Limit
	query := `SELECT ` + quoteColumns + ` FROM quotes` + where +
		orderClause(filter.Sort) + ` LIMIT ? OFFSET ?`
	args = append(args, filter.Limit, offset)

	rows, err := r.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("sqlite: listing quotes: %w", err)
	}
	defer rows.Close()

	quotes, err := collectQuotes(rows, filter.Limit)
	if err != nil {
		return nil, 0, err
	}
	return quotes, total, nil
}

// ListLikedBy returns every quote whose like set contains userID,
// newest-first. json_each unpacks the JSON likes column server-side so the
// membership test stays in SQL; the double TRIM strips whitespace and the
// quoting that legacy entries carry, mirroring normalizeEntry.
func (r *QuoteRepo) ListLikedBy(ctx context.Context, userID string) ([]model.Quote, error) {
	rows, err := r.conn.QueryContext(ctx,
		`SELECT `+quoteColumns+` FROM quotes
		 WHERE EXISTS (SELECT 1 FROM json_each(quotes.likes)
		               WHERE TRIM(TRIM(json_each.value), '"') = ?)
		 ORDER BY created_at DESC, rowid ASC`,
		normalizeEntry(userID),
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing quotes liked by %s: %w", userID, err)
	}
	defer rows.Close()

	return collectQuotes(rows, 16)
}

// ListByUser returns every quote posted by userID, newest-first.
func (r *QuoteRepo) ListByUser(ctx context.Context, userID string) ([]model.Quote, error) {
	rows, err := r.conn.QueryContext(ctx,
		`SELECT `+quoteColumns+` FROM quotes WHERE user_id = ?
		 ORDER BY created_at DESC, rowid ASC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing quotes by user %s: %w", userID, err)
	}
	defer rows.Close()

	return collectQuotes(rows, 16)
}

func collectQuotes(rows *sql.Rows, capacity int) ([]model.Quote, error) {
	quotes := make([]model.Quote, 0, capacity)
	for rows.Next() {
		q, err := scanQuote(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("sqlite: scanning quote row: %w", err)
		}
		quotes = append(quotes, *q)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating quotes: %w", err)
	}
	return quotes, nil
}

// Recent returns the newest quotes projected down to the home-page fields.
func (r *QuoteRepo) Recent(ctx context.Context, limit int) ([]model.RecentQuote, error) {
	if limit <= 0 {
		limit = 3
	}

	rows, err := r.conn.QueryContext(ctx,
		`SELECT id, text, author, likes_count, comments_count, created_at
		 FROM quotes ORDER BY created_at DESC, rowid ASC LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing recent quotes: %w", err)
	}
	defer rows.Close()

	recent := make([]model.RecentQuote, 0, limit)
	for rows.Next() {
		var r model.RecentQuote
		if err := rows.Scan(&r.ID, &r.Text, &r.Author, &r.LikesCount,
			&r.CommentsCount, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("sqlite: scanning recent quote: %w", err)
		}
		recent = append(recent, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating recent quotes: %w", err)
	}
	return recent, nil
}

// Count returns the total number of quotes (home-page statistics).
func (r *QuoteRepo) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.conn.QueryRowContext(ctx, `SELECT COUNT(*) FROM quotes`).Scan(&n); err != nil {
		return 0, fmt.Errorf("sqlite: counting quotes: %w", err)
	}
	return n, nil
}

// SetLike adds or removes userID from the quote's like set. The list and
// likes_count move together inside one transaction, and the counter is always
// recomputed from the new list — likesCount == len(likes) is an invariant of
// this method, not something callers maintain.
func (r *QuoteRepo) SetLike(ctx context.Context, quoteID, userID string, like bool) error {
	tx, err := r.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("sqlite: beginning like tx: %w", err)
	}
	defer tx.Rollback()

	var rawLikes string
	err = tx.QueryRowContext(ctx,
		`SELECT likes FROM quotes WHERE id = ?`, quoteID,
	).Scan(&rawLikes)
	if err != nil {
		if err == sql.ErrNoRows {
			return apperror.NotFound("quote", quoteID)
		}
		return fmt.Errorf("sqlite: reading likes for quote %s: %w", quoteID, err)
	}

	likes, err := unmarshalList(rawLikes)
	if err != nil {
		return fmt.Errorf("sqlite: quote %s: %w", quoteID, err)
	}

	if like {
		likes = addID(likes, userID)
	} else {
		likes = removeID(likes, userID)
	}

	encoded, err := marshalList(likes)
	if err != nil {
		return fmt.Errorf("sqlite: quote %s: %w", quoteID, err)
	}

	_, err = tx.ExecContext(ctx,
		`UPDATE quotes SET likes = ?, likes_count = ?, updated_at = ? WHERE id = ?`,
		encoded, len(likes), time.Now(), quoteID,
	)
	if err != nil {
		return fmt.Errorf("sqlite: writing likes for quote %s: %w", quoteID, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("sqlite: committing like tx: %w", err)
	}
	return nil
}

// AppendComment appends the comment and moves comments_count with the list in
// one transaction. Append-only — existing comments are never rewritten.
func (r *QuoteRepo) AppendComment(ctx context.Context, quoteID string, comment model.Comment) error {
	tx, err := r.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("sqlite: beginning comment tx: %w", err)
	}
	defer tx.Rollback()

	var rawComments string
	err = tx.QueryRowContext(ctx,
		`SELECT comments FROM quotes WHERE id = ?`, quoteID,
	).Scan(&rawComments)
	if err != nil {
		if err == sql.ErrNoRows {
			return apperror.NotFound("quote", quoteID)
		}
		return fmt.Errorf("sqlite: reading comments for quote %s: %w", quoteID, err)
	}

	comments, err := unmarshalComments(rawComments)
	if err != nil {
		return fmt.Errorf("sqlite: quote %s: %w", quoteID, err)
	}
	comments = append(comments, comment)

	encoded, err := marshalComments(comments)
	if err != nil {
		return fmt.Errorf("sqlite: quote %s: %w", quoteID, err)
	}

	_, err = tx.ExecContext(ctx,
		`UPDATE quotes SET comments = ?, comments_count = ?, updated_at = ? WHERE id = ?`,
		encoded, len(comments), time.Now(), quoteID,
	)
	if err != nil {
		return fmt.Errorf("sqlite: writing comments for quote %s: %w", quoteID, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("sqlite: committing comment tx: %w", err)
	}
	return nil
}
