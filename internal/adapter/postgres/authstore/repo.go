// Package authstore persists credentials and server-side session records
// for the remote authenticator.
package authstore

import (
	"context"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	postgres "github.com/heartmarshall/solarsite/internal/adapter/postgres"
)

// Credential is a row of auth_users.
type Credential struct {
	UserID       uuid.UUID
	Email        string
	PasswordHash string
}

// SessionRecord is a row of auth_sessions.
type SessionRecord struct {
	ID        uuid.UUID
	UserID    uuid.UUID
	CreatedAt time.Time
	ExpiresAt time.Time
	RevokedAt *time.Time
}

// Active reports whether the session is neither revoked nor expired at now.
func (s SessionRecord) Active(now time.Time) bool {
	return s.RevokedAt == nil && now.Before(s.ExpiresAt)
}

// Repo provides access to auth_users and auth_sessions.
type Repo struct {
	db postgres.Querier
}

// New creates a new auth store.
func New(db postgres.Querier) *Repo {
	return &Repo{db: db}
}

// CredentialByEmail looks up a user by email (case-insensitive).
func (r *Repo) CredentialByEmail(ctx context.Context, email string) (*Credential, error) {
	query, args, err := postgres.Builder().
		Select("id", "email", "password_hash").
		From("auth_users").
		Where("lower(email) = lower(?)", email).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("authstore.CredentialByEmail: build query: %w", err)
	}

	var c Credential
	err = postgres.QuerierFromCtx(ctx, r.db).QueryRow(ctx, query, args...).
		Scan(&c.UserID, &c.Email, &c.PasswordHash)
	if err != nil {
		return nil, postgres.MapError(err, "auth_user", uuid.Nil)
	}
	return &c, nil
}

// CreateCredential inserts a user with an already hashed password.
func (r *Repo) CreateCredential(ctx context.Context, email, passwordHash string) (uuid.UUID, error) {
	id := uuid.New()
	query, args, err := postgres.Builder().
		Insert("auth_users").
		Columns("id", "email", "password_hash").
		Values(id, email, passwordHash).
		ToSql()
	if err != nil {
		return uuid.Nil, fmt.Errorf("authstore.CreateCredential: build query: %w", err)
	}

	if _, err := postgres.QuerierFromCtx(ctx, r.db).Exec(ctx, query, args...); err != nil {
		return uuid.Nil, postgres.MapError(err, "auth_user", id)
	}
	return id, nil
}

// CreateSession records a new server-side session.
func (r *Repo) CreateSession(ctx context.Context, userID uuid.UUID, expiresAt time.Time) (SessionRecord, error) {
	id := uuid.New()
	query, args, err := postgres.Builder().
		Insert("auth_sessions").
		Columns("id", "user_id", "expires_at").
		Values(id, userID, expiresAt).
		Suffix("RETURNING id, user_id, created_at, expires_at, revoked_at").
		ToSql()
	if err != nil {
		return SessionRecord{}, fmt.Errorf("authstore.CreateSession: build query: %w", err)
	}

	s, err := scanSession(postgres.QuerierFromCtx(ctx, r.db).QueryRow(ctx, query, args...))
	if err != nil {
		return SessionRecord{}, postgres.MapError(err, "auth_session", id)
	}
	return s, nil
}

// Session returns a session record by id.
func (r *Repo) Session(ctx context.Context, id uuid.UUID) (SessionRecord, error) {
	query, args, err := postgres.Builder().
		Select("id", "user_id", "created_at", "expires_at", "revoked_at").
		From("auth_sessions").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return SessionRecord{}, fmt.Errorf("authstore.Session: build query: %w", err)
	}

	s, err := scanSession(postgres.QuerierFromCtx(ctx, r.db).QueryRow(ctx, query, args...))
	if err != nil {
		return SessionRecord{}, postgres.MapError(err, "auth_session", id)
	}
	return s, nil
}

// RevokeSession marks a session revoked. Revoking an already revoked
// session is a no-op. The database trigger notifies listeners.
func (r *Repo) RevokeSession(ctx context.Context, id uuid.UUID) error {
	query, args, err := postgres.Builder().
		Update("auth_sessions").
		Set("revoked_at", squirrel.Expr("now()")).
		Where(squirrel.Eq{"id": id, "revoked_at": nil}).
		ToSql()
	if err != nil {
		return fmt.Errorf("authstore.RevokeSession: build query: %w", err)
	}

	if _, err := postgres.QuerierFromCtx(ctx, r.db).Exec(ctx, query, args...); err != nil {
		return postgres.MapError(err, "auth_session", id)
	}
	return nil
}

// DeleteExpiredSessions removes sessions that expired or were revoked
// before the cutoff.
func (r *Repo) DeleteExpiredSessions(ctx context.Context, before time.Time) (int64, error) {
	query, args, err := postgres.Builder().
		Delete("auth_sessions").
		Where(squirrel.Or{
			squirrel.Lt{"expires_at": before},
			squirrel.Lt{"revoked_at": before},
		}).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("authstore.DeleteExpiredSessions: build query: %w", err)
	}

	tag, err := postgres.QuerierFromCtx(ctx, r.db).Exec(ctx, query, args...)
	if err != nil {
		return 0, postgres.MapError(err, "auth_session", uuid.Nil)
	}
	return tag.RowsAffected(), nil
}

func scanSession(row pgx.Row) (SessionRecord, error) {
	var s SessionRecord
	if err := row.Scan(&s.ID, &s.UserID, &s.CreatedAt, &s.ExpiresAt, &s.RevokedAt); err != nil {
		return SessionRecord{}, err
	}
	return s, nil
}
