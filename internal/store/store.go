// Package store provides SQLite-backed persistence for users, categories,
// transactions, and budgets. Monetary amounts are stored as decimal strings
// to keep currency math exact.
package store

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	_ "modernc.org/sqlite" // register sqlite driver
)

var (
	// ErrNotFound indicates the requested row does not exist.
	ErrNotFound = errors.New("store: not found")
	// ErrTokenExpired indicates a token exists but is past its expiry.
	ErrTokenExpired = errors.New("store: token expired")
	// ErrBadCredentials indicates an unknown user or wrong password.
	ErrBadCredentials = errors.New("store: invalid credentials")
)

// Store wraps the SQLite database.
type Store struct {
	db *sql.DB
}

// Open opens or creates the database at the given path and applies the
// schema.
func Open(dbPath string) (*Store, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("creating data dir: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(wal)&_pragma=synchronous(normal)&_pragma=foreign_keys(on)")
	if err != nil {
		return nil, fmt.Errorf("opening db: %w", err)
	}

	if _, err := db.Exec(schemaSQL); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// hashPassword derives a salted sha256 digest stored as "salt$hex".
func hashPassword(salt, password string) string {
	sum := sha256.Sum256([]byte(salt + ":" + password))
	return salt + "$" + hex.EncodeToString(sum[:])
}

func verifyPassword(stored, password string) bool {
	salt, _, ok := strings.Cut(stored, "$")
	if !ok {
		return false
	}
	return hashPassword(salt, password) == stored
}

// CreateUser registers a new user and returns its id.
func (s *Store) CreateUser(ctx context.Context, username, password string) (int64, error) {
	if username == "" || password == "" {
		return 0, errors.New("store: username and password required")
	}

	hash := hashPassword(uuid.NewString(), password)
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO users (username, password_hash, created_at) VALUES (?, ?, ?)`,
		username, hash, time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return 0, fmt.Errorf("creating user: %w", err)
	}
	return res.LastInsertId()
}

// Authenticate verifies credentials and returns the user id.
func (s *Store) Authenticate(ctx context.Context, username, password string) (int64, error) {
	var id int64
	var hash string
	err := s.db.QueryRowContext(ctx,
		`SELECT id, password_hash FROM users WHERE username = ?`, username).Scan(&id, &hash)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, ErrBadCredentials
	}
	if err != nil {
		return 0, fmt.Errorf("looking up user: %w", err)
	}

	if !verifyPassword(hash, password) {
		return 0, ErrBadCredentials
	}
	return id, nil
}

// CreateToken issues a bearer token for the user.
func (s *Store) CreateToken(ctx context.Context, userID int64, ttl time.Duration) (string, error) {
	token := uuid.NewString()
	expires := time.Now().UTC().Add(ttl).Format(time.RFC3339)

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO tokens (token, user_id, expires_at) VALUES (?, ?, ?)`,
		token, userID, expires)
	if err != nil {
		return "", fmt.Errorf("creating token: %w", err)
	}
	return token, nil
}

// UserForToken resolves a bearer token to a user id.
func (s *Store) UserForToken(ctx context.Context, token string) (int64, error) {
	var userID int64
	var expiresStr string
	err := s.db.QueryRowContext(ctx,
		`SELECT user_id, expires_at FROM tokens WHERE token = ?`, token).Scan(&userID, &expiresStr)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, ErrNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("looking up token: %w", err)
	}

	expires, err := time.Parse(time.RFC3339, expiresStr)
	if err != nil || time.Now().UTC().After(expires) {
		return 0, ErrTokenExpired
	}
	return userID, nil
}

// DeleteToken revokes a token.
func (s *Store) DeleteToken(ctx context.Context, token string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM tokens WHERE token = ?`, token)
	return err
}
