package session

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"

	"github.com/heartmarshall/solarsite/internal/domain"
)

// ProfileSource looks up the profile for an identity.
type ProfileSource interface {
	GetProfile(ctx context.Context, id uuid.UUID) (*domain.Profile, error)
}

// DefaultProfileTimeout bounds a profile lookup when no timeout is given.
const DefaultProfileTimeout = 10 * time.Second

// Resolver fetches profiles with a timeout. Concurrent Resolve calls for
// the same identity share one lookup.
type Resolver struct {
	source  ProfileSource
	timeout time.Duration
	log     *slog.Logger

	inflight singleflight.Group
	fetches  atomic.Int64
}

// NewResolver creates a resolver. A non-positive timeout selects
// DefaultProfileTimeout.
func NewResolver(source ProfileSource, timeout time.Duration, log *slog.Logger) *Resolver {
	if timeout <= 0 {
		timeout = DefaultProfileTimeout
	}
	return &Resolver{
		source:  source,
		timeout: timeout,
		log:     log.With("service", "profile_resolver"),
	}
}

// Resolve returns the profile for id, or nil when the lookup fails or does
// not finish within timeout (the resolver default when timeout <= 0). A
// lookup already in flight for id is joined instead of starting another.
func (r *Resolver) Resolve(ctx context.Context, id uuid.UUID, timeout time.Duration) *domain.Profile {
	timeout = r.bound(timeout)
	p, err := withTimeout(ctx, timeout, func(ctx context.Context) (*domain.Profile, error) {
		ch := r.inflight.DoChan(id.String(), func() (any, error) {
			// The shared lookup must not die with whichever caller started it.
			fctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), timeout)
			defer cancel()
			return r.lookup(fctx, id)
		})
		select {
		case res := <-ch:
			p, _ := res.Val.(*domain.Profile)
			return p, res.Err
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	})
	return r.settle(ctx, id, p, err)
}

// Fetch is Resolve without joining an in-flight lookup.
func (r *Resolver) Fetch(ctx context.Context, id uuid.UUID, timeout time.Duration) *domain.Profile {
	p, err := withTimeout(ctx, r.bound(timeout), func(ctx context.Context) (*domain.Profile, error) {
		return r.lookup(ctx, id)
	})
	return r.settle(ctx, id, p, err)
}

// Fetches returns how many lookups reached the profile source.
func (r *Resolver) Fetches() int64 { return r.fetches.Load() }

func (r *Resolver) lookup(ctx context.Context, id uuid.UUID) (*domain.Profile, error) {
	r.fetches.Add(1)
	return r.source.GetProfile(ctx, id)
}

func (r *Resolver) settle(ctx context.Context, id uuid.UUID, p *domain.Profile, err error) *domain.Profile {
	if err != nil {
		r.log.WarnContext(ctx, "profile unresolved",
			slog.String("identity_id", id.String()),
			slog.String("error", err.Error()))
		return nil
	}
	return p
}

func (r *Resolver) bound(timeout time.Duration) time.Duration {
	if timeout <= 0 {
		return r.timeout
	}
	return timeout
}
