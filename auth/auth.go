// Package auth keeps the single CMS admin account and its login sessions.
package auth

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"golang.org/x/crypto/bcrypt"
)

const (
	DefaultUsername = "admin"
	DefaultPassword = "admin123"

	SessionTimeout = 24 * time.Hour
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrSessionExpired     = errors.New("session expired")
	ErrNoSession          = errors.New("no session")
)

type credentials struct {
	Username     string    `db:"username"`
	PasswordHash string    `db:"password_hash"`
	UpdatedAt    time.Time `db:"updated_at"`
}

type Session struct {
	Token     string    `db:"token"`
	Username  string    `db:"username"`
	CreatedAt time.Time `db:"created_at"`
}

func (s Session) ExpiresAt() time.Time {
	return s.CreatedAt.Add(SessionTimeout)
}

type Store struct {
	db  *sqlx.DB
	now func() time.Time
}

func NewStore(db *sqlx.DB) *Store {
	return &Store{db: db, now: time.Now}
}

// current returns the stored account, seeding the default one on first use.
func (s *Store) current(ctx context.Context) (credentials, error) {
	var c credentials
	err := s.db.GetContext(ctx, &c, `SELECT username, password_hash, updated_at FROM credentials WHERE id = 1`)
	if err == nil {
		return c, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return c, errors.Wrap(err, "load credentials")
	}
	if err := s.save(ctx, DefaultUsername, DefaultPassword); err != nil {
		return c, err
	}
	return s.current(ctx)
}

func (s *Store) save(ctx context.Context, username, password string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return errors.Wrap(err, "hash password")
	}
	return s.saveHash(ctx, username, string(hash))
}

func (s *Store) saveHash(ctx context.Context, username, hash string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO credentials (id, username, password_hash, updated_at) VALUES (1, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET username = excluded.username,
			password_hash = excluded.password_hash, updated_at = excluded.updated_at`,
		username, hash, s.now().UTC())
	return errors.Wrap(err, "save credentials")
}

func (s *Store) verify(ctx context.Context, password string) (credentials, error) {
	c, err := s.current(ctx)
	if err != nil {
		return c, err
	}
	if bcrypt.CompareHashAndPassword([]byte(c.PasswordHash), []byte(password)) != nil {
		return c, ErrInvalidCredentials
	}
	return c, nil
}

// Login checks username and password and opens a session.
func (s *Store) Login(ctx context.Context, username, password string) (*Session, error) {
	c, err := s.verify(ctx, password)
	if err != nil {
		return nil, err
	}
	if c.Username != username {
		return nil, ErrInvalidCredentials
	}
	sess := &Session{
		Token:     uuid.NewString(),
		Username:  c.Username,
		CreatedAt: s.now().UTC(),
	}
	_, err = s.db.NamedExecContext(ctx,
		`INSERT INTO sessions (token, username, created_at) VALUES (:token, :username, :created_at)`, sess)
	if err != nil {
		return nil, errors.Wrap(err, "create session")
	}
	return sess, nil
}

func (s *Store) Logout(ctx context.Context, token string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM sessions WHERE token = ?`, token)
	return errors.Wrap(err, "delete session")
}

// Authenticated returns the session for token. Sessions older than
// SessionTimeout are removed and reported as expired.
func (s *Store) Authenticated(ctx context.Context, token string) (*Session, error) {
	if token == "" {
		return nil, ErrNoSession
	}
	var sess Session
	err := s.db.GetContext(ctx, &sess, `SELECT token, username, created_at FROM sessions WHERE token = ?`, token)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNoSession
	}
	if err != nil {
		return nil, errors.Wrap(err, "load session")
	}
	if s.now().After(sess.ExpiresAt()) {
		if err := s.Logout(ctx, token); err != nil {
			return nil, err
		}
		return nil, ErrSessionExpired
	}
	return &sess, nil
}

// Username returns the name of the admin account.
func (s *Store) Username(ctx context.Context) (string, error) {
	c, err := s.current(ctx)
	return c.Username, err
}

func (s *Store) UpdatePassword(ctx context.Context, oldPassword, newPassword string) error {
	c, err := s.verify(ctx, oldPassword)
	if err != nil {
		return err
	}
	return s.save(ctx, c.Username, newPassword)
}

// UpdateUsername renames the account and its open sessions.
func (s *Store) UpdateUsername(ctx context.Context, newUsername, password string) error {
	c, err := s.verify(ctx, password)
	if err != nil {
		return err
	}
	if err := s.saveHash(ctx, newUsername, c.PasswordHash); err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, `UPDATE sessions SET username = ?`, newUsername)
	return errors.Wrap(err, "rename sessions")
}
