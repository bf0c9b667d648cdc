package catalog

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"github.com/heartmarshall/solarsite/internal/domain"
)

// Filter is implemented by the domain list filters.
type Filter interface {
	Key() string
}

type store[T any, F Filter, N any, P any] interface {
	List(ctx context.Context, filter F) ([]T, error)
	GetByID(ctx context.Context, id uuid.UUID) (*T, error)
	Create(ctx context.Context, in N) (*T, error)
	Update(ctx context.Context, id uuid.UUID, patch P) (*T, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// Repository is the CRUD facade for one entity type. It never returns
// errors: failures are logged and surfaced as nil, false or an empty list.
//
// In remote mode successful mutations flush the entity's list cache, and the
// caches of lists that embed this entity, then re-run the most recent List
// so Items reflects the mutation. In memory mode the store is the state and
// the next List sees the change directly.
type Repository[T any, F Filter, N any, P any] struct {
	name       string
	store      store[T, F, N, P]
	cache      listCache
	refresh    bool
	dependents []lister
	log        *slog.Logger

	mu         sync.Mutex
	lastFilter *F
	items      []T
	epoch      uint64 // advanced by invalidate
}

// lister is a list whose rows may embed data owned by another entity.
type lister interface {
	invalidate(ctx context.Context)
}

func newRepository[T any, F Filter, N any, P any](
	name string,
	s store[T, F, N, P],
	cache listCache,
	refresh bool,
	log *slog.Logger,
) *Repository[T, F, N, P] {
	return &Repository[T, F, N, P]{
		name:    name,
		store:   s,
		cache:   cache,
		refresh: refresh,
		log:     log.With("entity", name),
		items:   []T{},
	}
}

// List returns the entities matching filter, newest first, and remembers
// filter and result as the current view (see Items).
func (r *Repository[T, F, N, P]) List(ctx context.Context, filter F) []T {
	r.mu.Lock()
	f := filter
	r.lastFilter = &f
	epoch := r.epoch
	r.mu.Unlock()

	items, ok := r.load(ctx, filter)
	if ok {
		r.setItems(epoch, items)
	}
	return items
}

// Query answers like List without touching the current view. Shared
// readers such as the public HTTP API use it.
func (r *Repository[T, F, N, P]) Query(ctx context.Context, filter F) []T {
	items, _ := r.load(ctx, filter)
	return items
}

// load reads through the list cache. The generation is taken before the
// store read so a result that raced with a mutation is never cached as
// current.
func (r *Repository[T, F, N, P]) load(ctx context.Context, filter F) ([]T, bool) {
	gen, cacheOK := r.generation(ctx)
	if cacheOK {
		if cached, hit := r.cached(ctx, gen, filter); hit {
			return cached, true
		}
	}

	items, err := r.store.List(ctx, filter)
	if err != nil {
		r.fail(ctx, "list", err)
		return []T{}, false
	}
	if items == nil {
		items = []T{}
	}

	if cacheOK {
		if err := r.cache.Set(ctx, r.name, gen, filter.Key(), items); err != nil {
			r.log.WarnContext(ctx, "cache write failed", slog.String("error", err.Error()))
		}
	}
	return items, true
}

// Items returns the result of the most recent List or refresh.
func (r *Repository[T, F, N, P]) Items() []T {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]T, len(r.items))
	copy(out, r.items)
	return out
}

// GetByID returns the entity or nil.
func (r *Repository[T, F, N, P]) GetByID(ctx context.Context, id uuid.UUID) *T {
	v, err := r.store.GetByID(ctx, id)
	if err != nil {
		r.fail(ctx, "get", err, slog.String("id", id.String()))
		return nil
	}
	return v
}

// Create stores a new entity and returns it, or nil on failure.
func (r *Repository[T, F, N, P]) Create(ctx context.Context, in N) *T {
	return r.mutate(ctx, "create", func() (*T, error) {
		return r.store.Create(ctx, in)
	})
}

// Update merges patch onto the entity. It returns nil when the id does not
// exist or the update fails.
func (r *Repository[T, F, N, P]) Update(ctx context.Context, id uuid.UUID, patch P) *T {
	return r.mutate(ctx, "update", func() (*T, error) {
		return r.store.Update(ctx, id, patch)
	}, slog.String("id", id.String()))
}

// Delete removes the entity and reports whether it existed.
func (r *Repository[T, F, N, P]) Delete(ctx context.Context, id uuid.UUID) bool {
	if err := r.store.Delete(ctx, id); err != nil {
		r.fail(ctx, "delete", err, slog.String("id", id.String()))
		return false
	}
	r.changed(ctx)
	return true
}

func (r *Repository[T, F, N, P]) mutate(ctx context.Context, op string, fn func() (*T, error), attrs ...any) *T {
	v, err := fn()
	if err != nil {
		r.fail(ctx, op, err, attrs...)
		return nil
	}
	r.changed(ctx)
	return v
}

// changed runs after a mutation of this entity, here or in another process.
func (r *Repository[T, F, N, P]) changed(ctx context.Context) {
	r.invalidate(ctx)
	for _, d := range r.dependents {
		d.invalidate(ctx)
	}
}

// invalidate flushes this entity's cached lists and refreshes the current
// view. It is a no-op in memory mode.
func (r *Repository[T, F, N, P]) invalidate(ctx context.Context) {
	if !r.refresh {
		return
	}
	if r.cache != nil {
		if err := r.cache.Invalidate(ctx, r.name); err != nil {
			r.log.WarnContext(ctx, "cache invalidate failed", slog.String("error", err.Error()))
		}
	}

	r.mu.Lock()
	r.epoch++
	last := r.lastFilter
	r.mu.Unlock()
	if last != nil {
		r.List(ctx, *last)
	}
}

func (r *Repository[T, F, N, P]) generation(ctx context.Context) (int64, bool) {
	if r.cache == nil {
		return 0, false
	}
	gen, err := r.cache.Generation(ctx, r.name)
	if err != nil {
		r.log.WarnContext(ctx, "cache generation read failed", slog.String("error", err.Error()))
		return 0, false
	}
	return gen, true
}

func (r *Repository[T, F, N, P]) cached(ctx context.Context, gen int64, filter F) ([]T, bool) {
	var items []T
	ok, err := r.cache.Get(ctx, r.name, gen, filter.Key(), &items)
	if err != nil {
		r.log.WarnContext(ctx, "cache read failed", slog.String("error", err.Error()))
		return nil, false
	}
	if !ok {
		return nil, false
	}
	if items == nil {
		items = []T{}
	}
	return items, true
}

// setItems publishes a List result unless an invalidation happened while
// it was loading; the refresh that followed it is newer.
func (r *Repository[T, F, N, P]) setItems(epoch uint64, items []T) {
	r.mu.Lock()
	if epoch == r.epoch {
		r.items = items
	}
	r.mu.Unlock()
}

func (r *Repository[T, F, N, P]) fail(ctx context.Context, op string, err error, attrs ...any) {
	logFailure(ctx, r.log, op, err, attrs...)
}

// logFailure logs expected outcomes (missing rows, bad input) at warn level
// and everything else at error level.
func logFailure(ctx context.Context, log *slog.Logger, op string, err error, attrs ...any) {
	attrs = append(attrs, slog.String("op", op), slog.String("error", err.Error()))
	if errors.Is(err, domain.ErrNotFound) || errors.Is(err, domain.ErrValidation) {
		log.WarnContext(ctx, "catalog operation rejected", attrs...)
		return
	}
	log.ErrorContext(ctx, "catalog operation failed", attrs...)
}
