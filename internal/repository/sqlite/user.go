package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/rs/xid"

	"github.com/Atulsharma2004/quote-app-at/internal/apperror"
	"github.com/Atulsharma2004/quote-app-at/internal/model"
	"github.com/Atulsharma2004/quote-app-at/internal/repository"
)

// compile-time check that *UserRepo implements repository.UserRepository
var _ repository.UserRepository = (*UserRepo)(nil)

const userColumns = `id, name, email, password_hash, role, bio, profile_picture,
	followers, following, created_at, updated_at`

// scanUser reads one user row. Works for both *sql.Row and *sql.Rows via the
// shared Scan signature.
func scanUser(scan func(dest ...any) error) (*model.User, error) {
	var (
		u                      model.User
		rawFollowers, rawFollowing string
	)
	if err := scan(
		&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.Role, &u.Bio,
		&u.ProfilePicture, &rawFollowers, &rawFollowing,
		&u.CreatedAt, &u.UpdatedAt,
	); err != nil {
		return nil, err
	}

	var err error
	if u.Followers, err = unmarshalList(rawFollowers); err != nil {
		return nil, fmt.Errorf("user %s followers: %w", u.ID, err)
	}
	if u.Following, err = unmarshalList(rawFollowing); err != nil {
		return nil, fmt.Errorf("user %s following: %w", u.ID, err)
	}
	return &u, nil
}

// Create inserts a new user. The email column is UNIQUE — a duplicate email
// surfaces as apperror.ErrConflict so the signup handler can return 400
// instead of a generic 500.
func (r *UserRepo) Create(ctx context.Context, user *model.User) error {
	user.ID = xid.New().String()
	now := time.Now()
	user.CreatedAt = now
	user.UpdatedAt = now
	if user.Role == "" {
		user.Role = model.RoleUser
	}

	followers, err := marshalList(user.Followers)
	if err != nil {
		return fmt.Errorf("sqlite: creating user: %w", err)
	}
	following, err := marshalList(user.Following)
	if err != nil {
		return fmt.Errorf("sqlite: creating user: %w", err)
	}

	_, err = r.conn.ExecContext(ctx,
		`INSERT INTO users (id, name, email, password_hash, role, bio,
		 profile_picture, followers, following, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		user.ID, user.Name, user.Email, user.PasswordHash, user.Role,
		user.Bio, user.ProfilePicture, followers, following,
		user.CreatedAt, user.UpdatedAt,
	)
	if err != nil {
		// The driver reports UNIQUE violations as a plain error; match on
		// the constraint text rather than importing driver internals.
		if strings.Contains(err.Error(), "UNIQUE constraint failed: users.email") {
			return apperror.Conflict("user", user.Email)
		}
		return fmt.Errorf("sqlite: inserting user (email=%s): %w", user.Email, err)
	}

	return nil
}

// GetByID retrieves a user by their internal ID.
//
// Returns apperror.ErrNotFound for unknown ids AND for malformed ids — a
// string that was never a valid identifier simply doesn't match any row, and
// callers (the identity resolver in particular) rely on that being a clean
// "not found" rather than an error.
func (r *UserRepo) GetByID(ctx context.Context, id string) (*model.User, error) {
	row := r.conn.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = ?`, id)

	u, err := scanUser(row.Scan)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("user", id)
		}
		return nil, fmt.Errorf("sqlite: getting user %s: %w", id, err)
	}
	return u, nil
}

// GetByEmail retrieves a user by email — the stable lookup key for
// OAuth-provisioned accounts and the second tier of the resolver fallback.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	row := r.conn.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE email = ?`, email)

	u, err := scanUser(row.Scan)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("user", email)
		}
		return nil, fmt.Errorf("sqlite: getting user by email %s: %w", email, err)
	}
	return u, nil
}

// UpdateProfile applies a profile edit. Name and bio are always written; the
// avatar only when upd.ProfilePicture is non-nil (so a profile edit that
// doesn't touch the picture can't clear it).
func (r *UserRepo) UpdateProfile(ctx context.Context, id string, upd repository.ProfileUpdate) error {
	var (
		result sql.Result
		err    error
	)
	now := time.Now()

	if upd.ProfilePicture != nil {
		result, err = r.conn.ExecContext(ctx,
			`UPDATE users SET name = ?, bio = ?, profile_picture = ?, updated_at = ?
			 WHERE id = ?`,
			upd.Name, upd.Bio, *upd.ProfilePicture, now, id,
		)
	} else {
		result, err = r.conn.ExecContext(ctx,
			`UPDATE users SET name = ?, bio = ?, updated_at = ?
			 WHERE id = ?`,
			upd.Name, upd.Bio, now, id,
		)
	}
	if err != nil {
		return fmt.Errorf("sqlite: updating profile %s: %w", id, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return apperror.NotFound("user", id)
	}
	return nil
}

// SetFollowEdge applies or removes the follower→followee edge on both user
// rows inside one transaction.
//
// The original store issued the two updates independently, which could leave
// the edge asymmetric if one write failed. Wrapping both rows in a
// transaction closes that window: either both lists change or neither does.
// Set semantics make the operation idempotent — re-applying an existing edge
// rewrites the same lists.
func (r *UserRepo) SetFollowEdge(ctx context.Context, followerID, followeeID string, follow bool) error {
	tx, err := r.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("sqlite: beginning follow tx: %w", err)
	}
	defer tx.Rollback()

	follower, err := getUserTx(ctx, tx, followerID)
	if err != nil {
		return err
	}
	followee, err := getUserTx(ctx, tx, followeeID)
	if err != nil {
		return err
	}

	if follow {
		follower.Following = addID(follower.Following, followeeID)
		followee.Followers = addID(followee.Followers, followerID)
	} else {
		follower.Following = removeID(follower.Following, followeeID)
		followee.Followers = removeID(followee.Followers, followerID)
	}

	now := time.Now()
	if err := writeEdgeLists(ctx, tx, follower, now); err != nil {
		return err
	}
	if err := writeEdgeLists(ctx, tx, followee, now); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("sqlite: committing follow tx: %w", err)
	}
	return nil
}

func getUserTx(ctx context.Context, tx *sql.Tx, id string) (*model.User, error) {
	row := tx.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = ?`, id)
	u, err := scanUser(row.Scan)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("user", id)
		}
		return nil, fmt.Errorf("sqlite: getting user %s: %w", id, err)
	}
	return u, nil
}

func writeEdgeLists(ctx context.Context, tx *sql.Tx, u *model.User, now time.Time) error {
	followers, err := marshalList(u.Followers)
	if err != nil {
		return fmt.Errorf("sqlite: user %s: %w", u.ID, err)
	}
	following, err := marshalList(u.Following)
	if err != nil {
		return fmt.Errorf("sqlite: user %s: %w", u.ID, err)
	}
	_, err = tx.ExecContext(ctx,
		`UPDATE users SET followers = ?, following = ?, updated_at = ? WHERE id = ?`,
		followers, following, now, u.ID,
	)
	if err != nil {
		return fmt.Errorf("sqlite: writing follow lists for %s: %w", u.ID, err)
	}
	return nil
}

// ListByIDs batch-fetches users in one query. Ids that don't resolve are
// simply absent from the result, and output order is storage order — callers
// must not depend on it matching the input.
func (r *UserRepo) ListByIDs(ctx context.Context, ids []string) ([]model.User, error) {
	if len(ids) == 0 {
		return []model.User{}, nil
	}

	placeholders := strings.Repeat("?,", len(ids))
	placeholders = placeholders[:len(placeholders)-1]
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}

	rows, err := r.conn.QueryContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE id IN (`+placeholders+`)`,
		args...,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing users by ids: %w", err)
	}
	defer rows.Close()

	users := make([]model.User, 0, len(ids))
	for rows.Next() {
		u, err := scanUser(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("sqlite: scanning user row: %w", err)
		}
		users = append(users, *u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating users: %w", err)
	}

	return users, nil
}

// Count returns the total number of users (home-page statistics).
func (r *UserRepo) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.conn.QueryRowContext(ctx, `SELECT COUNT(*) FROM users`).Scan(&n); err != nil {
		return 0, fmt.Errorf("sqlite: counting users: %w", err)
	}
	return n, nil
}
