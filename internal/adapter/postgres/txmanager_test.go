package postgres_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/heartmarshall/solarsite/internal/adapter/postgres"
	"github.com/heartmarshall/solarsite/internal/adapter/postgres/testhelper"
	"github.com/heartmarshall/solarsite/internal/domain"
)

const insertProject = `INSERT INTO projects (id, title, capacity_kw, city) VALUES ($1, $2, $3, $4)`

func projectExists(t *testing.T, pool *pgxpool.Pool, id uuid.UUID) bool {
	t.Helper()
	var exists bool
	err := pool.QueryRow(context.Background(),
		`SELECT EXISTS(SELECT 1 FROM projects WHERE id = $1)`, id).Scan(&exists)
	require.NoError(t, err)
	return exists
}

func insert(ctx context.Context, pool *pgxpool.Pool, id uuid.UUID, title string, kw float64) error {
	_, err := postgres.QuerierFromCtx(ctx, pool).Exec(ctx, insertProject, id, title, kw, "Pune")
	return err
}

func TestRunInTx_Commit(t *testing.T) {
	pool := testhelper.SetupTestDB(t)
	tm := postgres.NewTxManager(pool)
	id := uuid.New()

	err := tm.RunInTx(context.Background(), func(ctx context.Context) error {
		require.NoError(t, insert(ctx, pool, id, "Rooftop 5kW", 5))

		var visible bool
		err := postgres.QuerierFromCtx(ctx, pool).
			QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM projects WHERE id = $1)`, id).Scan(&visible)
		require.NoError(t, err)
		assert.True(t, visible, "row visible inside its own tx")
		assert.False(t, projectExists(t, pool, id), "row hidden from other connections before commit")
		return nil
	})

	require.NoError(t, err)
	assert.True(t, projectExists(t, pool, id))
}

func TestRunInTx_RollbackOnError(t *testing.T) {
	pool := testhelper.SetupTestDB(t)
	tm := postgres.NewTxManager(pool)
	id := uuid.New()
	sentinel := errors.New("inquiry rejected")

	err := tm.RunInTx(context.Background(), func(ctx context.Context) error {
		require.NoError(t, insert(ctx, pool, id, "Ground mount", 12))
		return sentinel
	})

	assert.ErrorIs(t, err, sentinel)
	assert.False(t, projectExists(t, pool, id))
}

func TestRunInTx_ConstraintViolationRollsBackEarlierWrites(t *testing.T) {
	pool := testhelper.SetupTestDB(t)
	tm := postgres.NewTxManager(pool)
	first, second := uuid.New(), uuid.New()

	err := tm.RunInTx(context.Background(), func(ctx context.Context) error {
		if err := insert(ctx, pool, first, "Valid array", 3); err != nil {
			return err
		}
		return postgres.MapError(insert(ctx, pool, second, "Negative array", -1), "project", second)
	})

	assert.ErrorIs(t, err, domain.ErrValidation)
	assert.False(t, projectExists(t, pool, first))
	assert.False(t, projectExists(t, pool, second))
}

func TestRunInTx_NestedRollsBackWithOuter(t *testing.T) {
	pool := testhelper.SetupTestDB(t)
	tm := postgres.NewTxManager(pool)
	outer, inner := uuid.New(), uuid.New()
	sentinel := errors.New("abort")

	err := tm.RunInTx(context.Background(), func(ctx context.Context) error {
		require.NoError(t, insert(ctx, pool, outer, "Outer", 4))
		require.NoError(t, tm.RunInTx(ctx, func(ctx context.Context) error {
			return insert(ctx, pool, inner, "Inner", 2)
		}))
		return sentinel
	})

	assert.ErrorIs(t, err, sentinel)
	assert.False(t, projectExists(t, pool, outer))
	assert.False(t, projectExists(t, pool, inner), "nested call must not commit on its own")
}

func TestRunInTx_RollbackOnPanic(t *testing.T) {
	pool := testhelper.SetupTestDB(t)
	tm := postgres.NewTxManager(pool)
	id := uuid.New()

	assert.PanicsWithValue(t, "settings row missing", func() {
		_ = tm.RunInTx(context.Background(), func(ctx context.Context) error {
			require.NoError(t, insert(ctx, pool, id, "Panic", 1))
			panic("settings row missing")
		})
	})
	assert.False(t, projectExists(t, pool, id))
}
