package notify_test

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/heartmarshall/solarsite/internal/adapter/postgres/notify"
	"github.com/heartmarshall/solarsite/internal/adapter/postgres/testhelper"
)

func TestListener_ReceivesNotifications(t *testing.T) {
	if testing.Short() {
		t.Skip("requires docker")
	}
	pool := testhelper.SetupTestDB(t)

	got := make(chan string, 1)
	l := notify.New(pool, "notify_test", func(p string) { got <- p }, slog.New(slog.NewTextHandler(io.Discard, nil)))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- l.Run(ctx) }()

	require.Eventually(t, func() bool {
		_, err := pool.Exec(context.Background(), "SELECT pg_notify('notify_test', 'hello')")
		if err != nil {
			return false
		}
		select {
		case p := <-got:
			assert.Equal(t, "hello", p)
			return true
		case <-time.After(100 * time.Millisecond):
			return false
		}
	}, 10*time.Second, 50*time.Millisecond)

	cancel()
	assert.NoError(t, <-done)
}

func TestListener_CatalogTriggers(t *testing.T) {
	if testing.Short() {
		t.Skip("requires docker")
	}
	pool := testhelper.SetupTestDB(t)

	got := make(chan string, 16)
	listening := make(chan struct{}, 1)
	l := notify.New(pool, "catalog_changes", func(p string) { got <- p }, slog.New(slog.NewTextHandler(io.Discard, nil))).
		OnListen(func() { listening <- struct{}{} })

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- l.Run(ctx) }()

	select {
	case <-listening:
	case <-time.After(10 * time.Second):
		t.Fatal("listener never subscribed")
	}

	p := testhelper.SeedProject(t, pool, "Pune")
	testhelper.SeedReview(t, pool, &p.ID, false)

	want := map[string]bool{"projects": false, "reviews": false}
	deadline := time.After(10 * time.Second)
	for !want["projects"] || !want["reviews"] {
		select {
		case table := <-got:
			want[table] = true
		case <-deadline:
			t.Fatalf("missing notifications: %v", want)
		}
	}

	cancel()
	assert.NoError(t, <-done)
}
