// Package profile implements profile lookups using PostgreSQL.
package profile

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"

	postgres "github.com/heartmarshall/solarsite/internal/adapter/postgres"
	"github.com/heartmarshall/solarsite/internal/domain"
)

var columns = []string{"id", "is_admin", "full_name", "avatar_url", "created_at", "updated_at"}

// Repo provides profile persistence backed by PostgreSQL.
type Repo struct {
	db postgres.Querier
}

// New creates a new profile repository.
func New(db postgres.Querier) *Repo {
	return &Repo{db: db}
}

// GetProfile returns the profile for an identity.
func (r *Repo) GetProfile(ctx context.Context, id uuid.UUID) (*domain.Profile, error) {
	query, args, err := postgres.Builder().
		Select(columns...).
		From("profiles").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("profile.GetProfile: build query: %w", err)
	}

	p, err := scanProfile(postgres.QuerierFromCtx(ctx, r.db).QueryRow(ctx, query, args...))
	if err != nil {
		return nil, postgres.MapError(err, "profile", id)
	}
	return &p, nil
}

// Upsert creates or replaces the profile for p.ID.
func (r *Repo) Upsert(ctx context.Context, p domain.Profile) (*domain.Profile, error) {
	query, args, err := postgres.Builder().
		Insert("profiles").
		Columns("id", "is_admin", "full_name", "avatar_url").
		Values(p.ID, p.IsAdmin, p.FullName, p.AvatarURL).
		Suffix("ON CONFLICT (id) DO UPDATE SET is_admin = EXCLUDED.is_admin, " +
			"full_name = EXCLUDED.full_name, avatar_url = EXCLUDED.avatar_url, updated_at = now() " +
			"RETURNING " + postgres.Columns(columns)).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("profile.Upsert: build query: %w", err)
	}

	out, err := scanProfile(postgres.QuerierFromCtx(ctx, r.db).QueryRow(ctx, query, args...))
	if err != nil {
		return nil, postgres.MapError(err, "profile", p.ID)
	}
	return &out, nil
}

func scanProfile(row postgres.Scanner) (domain.Profile, error) {
	var p domain.Profile
	if err := row.Scan(&p.ID, &p.IsAdmin, &p.FullName, &p.AvatarURL, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return domain.Profile{}, err
	}
	p.CreatedAt = p.CreatedAt.UTC()
	p.UpdatedAt = p.UpdatedAt.UTC()
	return p, nil
}
