package profile

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	pgxmock "github.com/pashagolub/pgxmock/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/heartmarshall/solarsite/internal/domain"
)

func TestRepo_GetProfile(t *testing.T) {
	t.Parallel()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()
	repo := New(mock)

	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	avatar := "https://cdn.example/a.png"
	want := domain.Profile{ID: uuid.New(), IsAdmin: true, FullName: "Admin", AvatarURL: &avatar, CreatedAt: now, UpdatedAt: now}

	mock.ExpectQuery(`SELECT id, is_admin, full_name, avatar_url, created_at, updated_at FROM profiles WHERE id = \$1`).
		WithArgs(want.ID).
		WillReturnRows(pgxmock.NewRows(columns).AddRow(want.ID, true, "Admin", &avatar, now, now))

	got, err := repo.GetProfile(context.Background(), want.ID)
	require.NoError(t, err)
	assert.Equal(t, want, *got)
}

func TestRepo_GetProfile_NotFound(t *testing.T) {
	t.Parallel()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()
	repo := New(mock)
	id := uuid.New()

	mock.ExpectQuery(`FROM profiles`).WithArgs(id).WillReturnError(pgx.ErrNoRows)

	got, err := repo.GetProfile(context.Background(), id)
	assert.Nil(t, got)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
