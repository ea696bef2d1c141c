// Package sqlite implements the repository interfaces using SQLite as the
// storage backend.
//
// WHY modernc.org/sqlite INSTEAD OF github.com/mattn/go-sqlite3?
// mattn/go-sqlite3 uses CGo, which means you need a C compiler installed and
// cross-compilation becomes painful. modernc.org/sqlite is a pure Go
// translation of the SQLite C code — works everywhere Go works.
//
// DOCUMENT-SHAPED ROWS:
// The data model came from a document database: users carry follower/following
// id lists, quotes embed their comments and like sets. Rather than exploding
// those into join tables, each list is stored as a JSON text column next to
// its denormalized counter (likes_count, comments_count). Every mutation that
// touches a list rewrites the list and its counter inside one transaction, so
// the counter can never drift from the list it summarizes. A single row is the
// unit of atomicity, exactly as a single document was in the original store —
// with the one deliberate upgrade that the two-row follow edge is also wrapped
// in a transaction (see user.go).
package sqlite

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"

	// BLANK IMPORT:
	// Side-effect only — the sqlite package's init() registers itself with
	// database/sql as a driver named "sqlite". After this import,
	// sql.Open("sqlite", ...) knows how to talk to SQLite.
	_ "modernc.org/sqlite"
)

// DB wraps a sql.DB connection pool and hands out the repositories that share
// it.
type DB struct {
	conn *sql.DB
}

// UserRepo implements repository.UserRepository over the users table.
type UserRepo struct {
	conn *sql.DB
}

// QuoteRepo implements repository.QuoteRepository over the quotes table.
type QuoteRepo struct {
	conn *sql.DB
}

// Users returns the user repository backed by this connection pool.
func (db *DB) Users() *UserRepo {
	return &UserRepo{conn: db.conn}
}

// Quotes returns the quote repository backed by this connection pool.
func (db *DB) Quotes() *QuoteRepo {
	return &QuoteRepo{conn: db.conn}
}

// New creates a new SQLite database connection and runs migrations.
//
// dbPath examples:
//   - "data/quoteapp.db"  → file-based database (persistent)
//   - ":memory:"          → in-memory database (great for tests, lost on close)
func New(dbPath string) (*DB, error) {
	conn, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("sqlite: opening database: %w", err)
	}

	// Ping verifies the connection actually works. Without this, a bad path
	// or permissions issue would only surface on the first query.
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: pinging database: %w", err)
	}

	// WAL mode allows concurrent reads while a write is happening — important
	// for a web server where multiple requests hit the DB.
	if _, err := conn.Exec("PRAGMA journal_mode=WAL"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: setting WAL mode: %w", err)
	}

	if _, err := conn.Exec("PRAGMA foreign_keys=ON"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: enabling foreign keys: %w", err)
	}

	db := &DB{conn: conn}

	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: running migrations: %w", err)
	}

	return db, nil
}

// Close closes the database connection pool.
func (db *DB) Close() error {
	return db.conn.Close()
}

// migrate creates the two tables. CREATE TABLE IF NOT EXISTS is safe to run
// on every start.
//
// NOTE ON user_id: quotes.user_id is deliberately NOT a foreign key. The
// store accepts legacy rows whose user_id predates the current id scheme and
// no longer resolves; the read-time identity resolver handles those (id →
// email → stored snapshot → empty).
func (db *DB) migrate() error {
	_, err := db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS users (
			id              TEXT PRIMARY KEY,
			name            TEXT NOT NULL,
			email           TEXT NOT NULL UNIQUE,
			password_hash   TEXT NOT NULL DEFAULT '',
			role            TEXT NOT NULL DEFAULT 'user',
			bio             TEXT NOT NULL DEFAULT '',
			profile_picture TEXT NOT NULL DEFAULT '',
			followers       TEXT NOT NULL DEFAULT '[]',
			following       TEXT NOT NULL DEFAULT '[]',
			created_at      DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at      DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		);
		CREATE INDEX IF NOT EXISTS idx_users_email ON users(email);
	`)
	if err != nil {
		return fmt.Errorf("creating users table: %w", err)
	}

	_, err = db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS quotes (
			id             TEXT PRIMARY KEY,
			text           TEXT NOT NULL,
			author         TEXT NOT NULL,
			category       TEXT NOT NULL DEFAULT '',
			user_id        TEXT NOT NULL DEFAULT '',
			user_name      TEXT NOT NULL DEFAULT '',
			user_email     TEXT NOT NULL DEFAULT '',
			user_image     TEXT NOT NULL DEFAULT '',
			likes          TEXT NOT NULL DEFAULT '[]',
			likes_count    INTEGER NOT NULL DEFAULT 0,
			comments       TEXT NOT NULL DEFAULT '[]',
			comments_count INTEGER NOT NULL DEFAULT 0,
			created_at     DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at     DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		);
		CREATE INDEX IF NOT EXISTS idx_quotes_created_at ON quotes(created_at);
		CREATE INDEX IF NOT EXISTS idx_quotes_user_id ON quotes(user_id);
		CREATE INDEX IF NOT EXISTS idx_quotes_category ON quotes(category);
	`)
	if err != nil {
		return fmt.Errorf("creating quotes table: %w", err)
	}

	return nil
}

// marshalList encodes a string list column. nil encodes as "[]" so the column
// never holds SQL NULL or the JSON literal null.
func marshalList(ids []string) (string, error) {
	if ids == nil {
		ids = []string{}
	}
	raw, err := json.Marshal(ids)
	if err != nil {
		return "", fmt.Errorf("encoding id list: %w", err)
	}
	return string(raw), nil
}

// unmarshalList decodes a string list column, defaulting to empty on a blank
// column (rows written before the column existed).
func unmarshalList(raw string) ([]string, error) {
	if raw == "" {
		return []string{}, nil
	}
	var ids []string
	if err := json.Unmarshal([]byte(raw), &ids); err != nil {
		return nil, fmt.Errorf("decoding id list: %w", err)
	}
	if ids == nil {
		ids = []string{}
	}
	return ids, nil
}

// normalizeEntry reduces the stored id representations to one comparable
// form. Lists migrated from the previous store carry JSON-quoted entries
// (`"\"abc\""`) and stray whitespace; those must still match the raw id, or
// set operations against legacy rows silently no-op.
func normalizeEntry(id string) string {
	return strings.Trim(strings.TrimSpace(id), `"`)
}

// containsID reports whether id is in the list, comparing normalized forms.
// Lists carry set semantics but membership is still a linear scan — they are
// small (follower/like lists of a single document).
func containsID(ids []string, id string) bool {
	id = normalizeEntry(id)
	for _, v := range ids {
		if normalizeEntry(v) == id {
			return true
		}
	}
	return false
}

// addID appends id if absent (set add). A legacy quoted form of the same id
// counts as present, so re-following a migrated edge can't duplicate it.
func addID(ids []string, id string) []string {
	if containsID(ids, id) {
		return ids
	}
	return append(ids, id)
}

// removeID removes every entry whose normalized form matches id, preserving
// order of the rest.
func removeID(ids []string, id string) []string {
	id = normalizeEntry(id)
	out := ids[:0]
	for _, v := range ids {
		if normalizeEntry(v) != id {
			out = append(out, v)
		}
	}
	return out
}
