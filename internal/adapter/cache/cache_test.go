package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type item struct {
	Title string `json:"title"`
}

func TestMemory_SetGet(t *testing.T) {
	t.Parallel()
	c := NewMemory(time.Minute)
	ctx := context.Background()

	gen, err := c.Generation(ctx, "projects")
	require.NoError(t, err)

	var got []item
	ok, err := c.Get(ctx, "projects", gen, "k", &got)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, c.Set(ctx, "projects", gen, "k", []item{{Title: "a"}}))

	ok, err = c.Get(ctx, "projects", gen, "k", &got)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []item{{Title: "a"}}, got)
}

func TestMemory_InvalidateIsPerNamespace(t *testing.T) {
	t.Parallel()
	c := NewMemory(time.Minute)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "projects", 0, "k", 1))
	require.NoError(t, c.Set(ctx, "reviews", 0, "k", 2))
	require.NoError(t, c.Invalidate(ctx, "projects"))

	gen, err := c.Generation(ctx, "projects")
	require.NoError(t, err)
	assert.EqualValues(t, 1, gen)

	var n int
	ok, err := c.Get(ctx, "projects", gen, "k", &n)
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = c.Get(ctx, "reviews", 0, "k", &n)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 2, n)

	require.NoError(t, c.Set(ctx, "projects", gen, "k", 3))
	ok, err = c.Get(ctx, "projects", gen, "k", &n)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 3, n)
}

// A load that started before an invalidation must not repopulate the
// namespace with rows read before the mutation.
func TestMemory_SetForStaleGenerationIsDropped(t *testing.T) {
	t.Parallel()
	c := NewMemory(time.Minute)
	ctx := context.Background()

	before, err := c.Generation(ctx, "projects")
	require.NoError(t, err)
	require.NoError(t, c.Invalidate(ctx, "projects"))
	require.NoError(t, c.Set(ctx, "projects", before, "k", []item{{Title: "stale"}}))

	after, err := c.Generation(ctx, "projects")
	require.NoError(t, err)

	var got []item
	for _, gen := range []int64{before, after} {
		ok, err := c.Get(ctx, "projects", gen, "k", &got)
		require.NoError(t, err)
		assert.False(t, ok, "generation %d", gen)
	}
}

func TestMemory_Expiry(t *testing.T) {
	t.Parallel()
	c := NewMemory(time.Minute)
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "projects", 0, "k", 1))
	now = now.Add(time.Minute)

	var n int
	ok, err := c.Get(ctx, "projects", 0, "k", &n)
	require.NoError(t, err)
	assert.False(t, ok)
}
