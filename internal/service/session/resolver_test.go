package session

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/heartmarshall/solarsite/internal/domain"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestResolver_SingleFlight(t *testing.T) {
	t.Parallel()
	src := newProfileSource()
	id := uuid.New()
	src.put(domain.Profile{ID: id, IsAdmin: true})
	gate := src.gate(id)
	r := NewResolver(src, time.Second, discardLogger())

	var wg sync.WaitGroup
	results := make([]*domain.Profile, 2)
	for i := range results {
		i := i
		wg.Add(1)
		go func() {
			defer wg.Done()
			results[i] = r.Resolve(context.Background(), id, 0)
		}()
	}

	require.Eventually(t, func() bool { return src.callCount() == 1 }, time.Second, time.Millisecond)
	// Give the second caller time to join.
	time.Sleep(20 * time.Millisecond)
	close(gate)
	wg.Wait()

	assert.Equal(t, 1, src.callCount())
	assert.EqualValues(t, 1, r.Fetches())
	for _, p := range results {
		require.NotNil(t, p)
		assert.True(t, p.IsAdmin)
	}
}

func TestResolver_DifferentIdentitiesFetchSeparately(t *testing.T) {
	t.Parallel()
	src := newProfileSource()
	a, b := uuid.New(), uuid.New()
	src.put(domain.Profile{ID: a})
	src.put(domain.Profile{ID: b})
	r := NewResolver(src, time.Second, discardLogger())

	require.NotNil(t, r.Resolve(context.Background(), a, 0))
	require.NotNil(t, r.Resolve(context.Background(), b, 0))
	assert.Equal(t, 2, src.callCount())
}

func TestResolver_TimeoutBound(t *testing.T) {
	t.Parallel()
	src := newProfileSource()
	id := uuid.New()
	src.gate(id) // never released
	r := NewResolver(src, time.Second, discardLogger())

	start := time.Now()
	p := r.Resolve(context.Background(), id, 50*time.Millisecond)
	elapsed := time.Since(start)

	assert.Nil(t, p)
	assert.Less(t, elapsed, 500*time.Millisecond)
}

func TestResolver_FailureIsNil(t *testing.T) {
	t.Parallel()
	src := newProfileSource()
	src.err = errors.New("connection refused")
	r := NewResolver(src, time.Second, discardLogger())

	assert.Nil(t, r.Resolve(context.Background(), uuid.New(), 0))
	assert.Nil(t, r.Fetch(context.Background(), uuid.New(), 0))
}

func TestResolver_FetchBypassesInflight(t *testing.T) {
	t.Parallel()
	src := newProfileSource()
	id := uuid.New()
	src.put(domain.Profile{ID: id})
	gate := src.gate(id)
	r := NewResolver(src, time.Second, discardLogger())

	done := make(chan struct{})
	go func() {
		r.Resolve(context.Background(), id, 0)
		close(done)
	}()
	require.Eventually(t, func() bool { return src.callCount() == 1 }, time.Second, time.Millisecond)

	go r.Fetch(context.Background(), id, 0)
	require.Eventually(t, func() bool { return src.callCount() == 2 }, time.Second, time.Millisecond)

	close(gate)
	<-done
}

func TestWithTimeout_OperationWins(t *testing.T) {
	t.Parallel()
	v, err := withTimeout(context.Background(), time.Second, func(context.Context) (int, error) {
		return 7, nil
	})
	require.NoError(t, err)
	assert.Equal(t, 7, v)
}

func TestWithTimeout_TimerWinsAndCancelsOperation(t *testing.T) {
	t.Parallel()
	cancelled := make(chan struct{})
	_, err := withTimeout(context.Background(), 10*time.Millisecond, func(ctx context.Context) (int, error) {
		<-ctx.Done()
		close(cancelled)
		return 0, ctx.Err()
	})
	assert.ErrorIs(t, err, domain.ErrTimeout)

	select {
	case <-cancelled:
	case <-time.After(time.Second):
		t.Fatal("operation context was not cancelled")
	}
}
