package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/heartmarshall/solarsite/internal/adapter/cache"
	"github.com/heartmarshall/solarsite/internal/adapter/events"
	"github.com/heartmarshall/solarsite/internal/adapter/localstate"
	"github.com/heartmarshall/solarsite/internal/adapter/memory"
	"github.com/heartmarshall/solarsite/internal/adapter/postgres"
	"github.com/heartmarshall/solarsite/internal/adapter/postgres/authstore"
	"github.com/heartmarshall/solarsite/internal/adapter/postgres/inquiry"
	"github.com/heartmarshall/solarsite/internal/adapter/postgres/notify"
	"github.com/heartmarshall/solarsite/internal/adapter/postgres/profile"
	"github.com/heartmarshall/solarsite/internal/adapter/postgres/project"
	"github.com/heartmarshall/solarsite/internal/adapter/postgres/review"
	"github.com/heartmarshall/solarsite/internal/adapter/postgres/settings"
	"github.com/heartmarshall/solarsite/internal/adapter/postgres/stats"
	"github.com/heartmarshall/solarsite/internal/adapter/remoteauth"
	"github.com/heartmarshall/solarsite/internal/auth"
	"github.com/heartmarshall/solarsite/internal/backend"
	"github.com/heartmarshall/solarsite/internal/config"
	"github.com/heartmarshall/solarsite/internal/service/catalog"
	"github.com/heartmarshall/solarsite/internal/service/session"
	"github.com/heartmarshall/solarsite/internal/transport/rest"
)

type listCache interface {
	Generation(ctx context.Context, ns string) (int64, error)
	Get(ctx context.Context, ns string, gen int64, key string, dest any) (bool, error)
	Set(ctx context.Context, ns string, gen int64, key string, v any) error
	Invalidate(ctx context.Context, ns string) error
}

// catalogChannel carries the table name of every catalogue write; see
// migrations/00004_catalog_changes.sql.
const catalogChannel = "catalog_changes"

type eventPublisher interface {
	Publish(ctx context.Context, topic string, data any) error
	Close() error
}

// App is the wired object graph shared by the server and the console. The
// backend is selected once in New and never consulted again.
type App struct {
	Config   *config.Config
	Logger   *slog.Logger
	Selector backend.Selector
	Catalog  *catalog.Service
	Session  *session.Manager
	Checks   []rest.Check

	listener        *notify.Listener
	catalogListener *notify.Listener
	closers         []func()

	startOnce sync.Once
	stop      context.CancelFunc
	wg        sync.WaitGroup
}

// New selects the backend and builds every component for it. On error
// everything opened so far is closed.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	a := &App{
		Config:   cfg,
		Logger:   logger,
		Selector: backend.Select(cfg.Remote),
	}

	pub, err := newPublisher(cfg.Events, logger)
	if err != nil {
		return nil, err
	}
	a.closers = append(a.closers, func() { _ = pub.Close() })

	if a.Selector.Remote() {
		err = a.wireRemote(ctx, pub)
	} else {
		err = a.wireMemory(pub)
	}
	if err != nil {
		a.Close()
		return nil, err
	}

	logger.Info("backend selected", slog.String("backend", string(a.Selector.Mode())))
	return a, nil
}

func (a *App) wireMemory(pub eventPublisher) error {
	db, err := memory.NewSeeded()
	if err != nil {
		return fmt.Errorf("app: seed memory backend: %w", err)
	}

	state := localstate.New(a.Config.Session.StatePath())
	demo := memory.NewDemoAuth(a.Config.Session.DemoEmail, a.Config.Session.DemoPassword, state)
	a.Session = a.newManager(demo, demo)

	a.Catalog = catalog.NewService(a.Logger, a.Selector, catalog.Stores{
		Projects:  db.Projects(),
		Reviews:   db.Reviews(),
		Inquiries: db.Inquiries(),
		Settings:  db.Settings(),
		Stats:     db.Stats(),
	}, nil, pub)
	return nil
}

func (a *App) wireRemote(ctx context.Context, pub eventPublisher) error {
	cfg := a.Config

	pool, err := postgres.NewPool(ctx, a.Selector.URL(), cfg.Database)
	if err != nil {
		return fmt.Errorf("app: connect remote backend: %w", err)
	}
	a.closers = append(a.closers, pool.Close)
	a.Checks = append(a.Checks, rest.Check{Name: "database", Pinger: pool})

	lists, err := a.newListCache(ctx)
	if err != nil {
		return err
	}

	tokens := auth.NewTokenManager(a.Selector.Key(), cfg.Auth.TokenIssuer, cfg.Auth.TokenTTL)
	state := localstate.New(cfg.Session.StatePath())
	client := remoteauth.New(authstore.New(pool), tokens, state, a.Logger)
	a.listener = notify.New(pool, cfg.Auth.EventsChannel, client.HandleNotification, a.Logger)
	a.Session = a.newManager(client, profile.New(pool))

	a.Catalog = catalog.NewService(a.Logger, a.Selector, catalog.Stores{
		Projects:  project.New(pool),
		Reviews:   review.New(pool),
		Inquiries: inquiry.New(pool),
		Settings:  settings.New(pool),
		Stats:     stats.New(pool),
	}, lists, pub)

	// The in-process cache cannot see writes made by other processes
	// (console, other replicas); follow them through NOTIFY. Redis is shared
	// and invalidated by the writer itself.
	if cfg.Cache.RedisAddr == "" {
		a.catalogListener = notify.New(pool, catalogChannel, a.catalogChanged, a.Logger).
			OnListen(func() { a.Catalog.FlushLists(context.Background()) })
	}
	return nil
}

func (a *App) catalogChanged(table string) {
	if !a.Catalog.ListsChanged(context.Background(), table) {
		a.Logger.Warn("unknown catalog change notice", slog.String("table", table))
	}
}

// WatchCatalog follows catalogue writes made by other processes until ctx is
// done. It returns at once when there is nothing to follow: memory mode, or
// a Redis cache shared by every writer.
func (a *App) WatchCatalog(ctx context.Context) error {
	if a.catalogListener == nil {
		return nil
	}
	return a.catalogListener.Run(ctx)
}

func (a *App) newManager(authn session.Authenticator, profiles session.ProfileSource) *session.Manager {
	timeout := a.Config.Session.ProfileTimeout
	resolver := session.NewResolver(profiles, timeout, a.Logger)
	return session.NewManager(a.Logger, authn, resolver, session.WithProfileTimeout(timeout))
}

func (a *App) newListCache(ctx context.Context) (listCache, error) {
	cfg := a.Config.Cache
	if cfg.RedisAddr == "" {
		return cache.NewMemory(cfg.TTL), nil
	}

	rdb, err := cache.NewRedisClient(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("app: connect cache: %w", err)
	}
	a.closers = append(a.closers, func() { _ = rdb.Close() })

	c := cache.NewRedis(rdb, cfg.Prefix, cfg.TTL)
	a.Checks = append(a.Checks, rest.Check{Name: "cache", Pinger: c, Optional: true})
	return c, nil
}

func newPublisher(cfg config.EventsConfig, logger *slog.Logger) (eventPublisher, error) {
	if cfg.AMQPURL == "" {
		return events.Noop{}, nil
	}
	p, err := events.NewAMQP(cfg.AMQPURL, cfg.Exchange, logger)
	if err != nil {
		return nil, fmt.Errorf("app: connect events broker: %w", err)
	}
	return p, nil
}

// StartSession bootstraps the session manager and, in remote mode, starts
// listening for server-side session revocations. It is used by front ends
// that act on behalf of a signed-in user.
func (a *App) StartSession(ctx context.Context) error {
	var err error
	a.startOnce.Do(func() {
		if err = a.Session.Bootstrap(ctx); err != nil {
			return
		}
		if a.listener == nil {
			return
		}

		listenCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
		a.stop = cancel
		a.wg.Add(1)
		go func() {
			defer a.wg.Done()
			if err := a.listener.Run(listenCtx); err != nil && !errors.Is(err, context.Canceled) {
				a.Logger.Error("session listener stopped", slog.String("error", err.Error()))
			}
		}()
	})
	return err
}

// Close stops background work and releases connections in reverse order.
func (a *App) Close() {
	if a.stop != nil {
		a.stop()
	}
	a.wg.Wait()
	if a.Session != nil {
		a.Session.Close()
	}
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
}
