// Command cleanup-sessions deletes expired and revoked remote sessions.
// It is intended to be invoked by an external cron job.
//
// Usage:
//
//	cleanup-sessions [--grace=24h]
//
// Requires remote mode (REMOTE_URL and REMOTE_KEY).
// Exit codes: 0 = success, 1 = error.
package main

import (
	"context"
	"flag"
	"log"
	"log/slog"
	"os"
	"time"

	"github.com/heartmarshall/solarsite/internal/adapter/postgres"
	"github.com/heartmarshall/solarsite/internal/adapter/postgres/authstore"
	"github.com/heartmarshall/solarsite/internal/app"
	"github.com/heartmarshall/solarsite/internal/backend"
	"github.com/heartmarshall/solarsite/internal/config"
)

func main() {
	grace := flag.Duration("grace", 24*time.Hour, "keep sessions that ended less than this long ago")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logger := app.NewLogger(cfg.Log)

	sel := backend.Select(cfg.Remote)
	if !sel.Remote() {
		logger.Error("cleanup-sessions needs the remote backend; REMOTE_URL and REMOTE_KEY are not both set")
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	pool, err := postgres.NewPool(ctx, sel.URL(), cfg.Database)
	if err != nil {
		logger.Error("connect to database", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer pool.Close()

	cutoff := time.Now().Add(-*grace)

	deleted, err := authstore.New(pool).DeleteExpiredSessions(ctx, cutoff)
	if err != nil {
		logger.Error("session cleanup failed",
			slog.String("error", err.Error()),
			slog.Time("cutoff", cutoff),
		)
		os.Exit(1)
	}

	logger.Info("session cleanup completed",
		slog.Int64("deleted", deleted),
		slog.Time("cutoff", cutoff),
	)
}
