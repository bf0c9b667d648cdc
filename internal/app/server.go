package app

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/heartmarshall/solarsite/internal/config"
	"github.com/heartmarshall/solarsite/internal/transport/middleware"
	"github.com/heartmarshall/solarsite/internal/transport/rest"
)

// Run is the server entry point. It loads configuration, wires the
// selected backend and serves the public catalogue API until ctx is
// cancelled, then shuts down gracefully.
func Run(ctx context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logger := NewLogger(cfg.Log)

	logger.Info("starting application",
		slog.String("version", BuildVersion()),
		slog.String("log_level", cfg.Log.Level),
	)

	a, err := New(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer a.Close()

	return a.Serve(ctx)
}

// Handler builds the HTTP handler for the catalogue API. The returned stop
// function releases the rate limiter.
func (a *App) Handler() (http.Handler, func()) {
	limiter := middleware.NewRateLimiter(time.Minute)
	catalogHandler := rest.NewCatalogHandler(
		a.Catalog.Projects,
		a.Catalog.Reviews,
		a.Catalog.Inquiries,
		a.Catalog.Settings,
		a.Logger,
	)

	return rest.NewRouter(rest.RouterDeps{
		Health:  rest.NewHealthHandler(string(a.Selector.Mode()), BuildVersion(), a.Checks...),
		Catalog: catalogHandler,
		Limiter: limiter,
		Logger:  a.Logger,
		Server:  a.Config.Server,
		CORS:    a.Config.CORS,
	}), limiter.Stop
}

// Serve listens on the configured address until ctx is done.
func (a *App) Serve(ctx context.Context) error {
	cfg := a.Config.Server
	handler, stop := a.Handler()
	defer stop()

	srv := &http.Server{
		Addr:         net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port)),
		Handler:      handler,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return a.WatchCatalog(gctx) })
	g.Go(func() error {
		a.Logger.Info("http server listening", slog.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		a.Logger.Info("http server shutting down")
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}
