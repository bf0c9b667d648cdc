// Package notify listens for PostgreSQL NOTIFY payloads on a channel and
// hands them to a callback.
package notify

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Handler receives a notification payload.
type Handler func(payload string)

// Listener holds one pooled connection in LISTEN mode and reconnects with a
// fixed backoff when it is dropped.
type Listener struct {
	pool    *pgxpool.Pool
	channel string
	handler Handler
	log     *slog.Logger
	backoff time.Duration

	onListen func()
}

// New creates a listener for channel.
func New(pool *pgxpool.Pool, channel string, handler Handler, logger *slog.Logger) *Listener {
	return &Listener{
		pool:    pool,
		channel: channel,
		handler: handler,
		log:     logger.With("service", "notify", "channel", channel),
		backoff: 2 * time.Second,
	}
}

// OnListen registers fn to run every time LISTEN is established, including
// after a reconnect. Notifications sent while disconnected are lost, so
// callers use it to resynchronise.
func (l *Listener) OnListen(fn func()) *Listener {
	l.onListen = fn
	return l
}

// Run blocks until ctx is cancelled.
func (l *Listener) Run(ctx context.Context) error {
	for {
		err := l.listen(ctx)
		if ctx.Err() != nil {
			return nil
		}
		l.log.WarnContext(ctx, "listener dropped, reconnecting", slog.String("error", err.Error()))

		select {
		case <-ctx.Done():
			return nil
		case <-time.After(l.backoff):
		}
	}
}

func (l *Listener) listen(ctx context.Context) error {
	conn, err := l.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	if _, err := conn.Exec(ctx, "LISTEN "+pgx.Identifier{l.channel}.Sanitize()); err != nil {
		return fmt.Errorf("listen: %w", err)
	}
	l.log.DebugContext(ctx, "listening")
	if l.onListen != nil {
		l.onListen()
	}

	for {
		n, err := conn.Conn().WaitForNotification(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				return err
			}
			// The connection state is unknown after an error, drop it.
			conn.Hijack().Close(context.Background())
			return fmt.Errorf("wait for notification: %w", err)
		}
		l.dispatch(n)
	}
}

func (l *Listener) dispatch(n *pgconn.Notification) {
	defer func() {
		if r := recover(); r != nil {
			l.log.Error("notification handler panicked", slog.Any("panic", r))
		}
	}()
	l.handler(n.Payload)
}
