// Package catalog is the uniform CRUD facade over projects, reviews,
// inquiries, settings and dashboard stats. The backing stores are chosen
// once at wiring time; nothing in here checks which backend is in use
// beyond the refresh policy.
package catalog

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"github.com/heartmarshall/solarsite/internal/backend"
	"github.com/heartmarshall/solarsite/internal/domain"
)

type projectStore interface {
	store[domain.Project, domain.ProjectFilter, domain.NewProject, domain.ProjectPatch]
	Cities(ctx context.Context) ([]string, error)
}

type reviewStore interface {
	store[domain.Review, domain.ReviewFilter, domain.NewReview, domain.ReviewPatch]
	Approve(ctx context.Context, id uuid.UUID, response *string) (*domain.Review, error)
}

type inquiryStore interface {
	store[domain.Inquiry, domain.InquiryFilter, domain.NewInquiry, domain.InquiryPatch]
}

type settingsStore interface {
	Get(ctx context.Context) (*domain.Settings, error)
	Update(ctx context.Context, patch domain.SettingsPatch) (*domain.Settings, error)
}

type statsStore interface {
	Compute(ctx context.Context) (domain.DashboardStats, error)
}

// listCache stores list results per namespace. Entries are written and read
// under a namespace generation that Invalidate advances.
type listCache interface {
	Generation(ctx context.Context, ns string) (int64, error)
	Get(ctx context.Context, ns string, gen int64, key string, dest any) (bool, error)
	Set(ctx context.Context, ns string, gen int64, key string, v any) error
	Invalidate(ctx context.Context, ns string) error
}

type publisher interface {
	Publish(ctx context.Context, topic string, data any) error
}

// Stores bundles one implementation per entity.
type Stores struct {
	Projects  projectStore
	Reviews   reviewStore
	Inquiries inquiryStore
	Settings  settingsStore
	Stats     statsStore
}

// Service exposes one facade per entity.
type Service struct {
	Projects  *Projects
	Reviews   *Reviews
	Inquiries *Inquiries
	Settings  *Settings
	Stats     *Stats

	lists map[string]changeable
}

type changeable interface {
	lister
	changed(ctx context.Context)
}

// NewService wires the facades. cache may be nil; it is only consulted in
// remote mode.
func NewService(
	log *slog.Logger,
	sel backend.Selector,
	stores Stores,
	cache listCache,
	events publisher,
) *Service {
	log = log.With("service", "catalog")
	refresh := sel.Remote()
	if !refresh {
		cache = nil
	}

	projects := newRepository[domain.Project, domain.ProjectFilter, domain.NewProject, domain.ProjectPatch]("projects", stores.Projects, cache, refresh, log)
	reviews := newRepository[domain.Review, domain.ReviewFilter, domain.NewReview, domain.ReviewPatch]("reviews", stores.Reviews, cache, refresh, log)
	inquiries := newRepository[domain.Inquiry, domain.InquiryFilter, domain.NewInquiry, domain.InquiryPatch]("inquiries", stores.Inquiries, cache, refresh, log)

	// Review and inquiry rows carry the project title and city, and lose
	// their project_id when the project is deleted.
	projects.dependents = []lister{reviews, inquiries}

	return &Service{
		Projects:  &Projects{Repository: projects, store: stores.Projects, log: log},
		Reviews:   &Reviews{Repository: reviews, store: stores.Reviews, events: events, log: log},
		Inquiries: &Inquiries{Repository: inquiries, events: events, log: log},
		Settings:  &Settings{store: stores.Settings, log: log.With("entity", "settings")},
		Stats:     &Stats{store: stores.Stats, log: log.With("entity", "stats")},
		lists: map[string]changeable{
			projects.name:  projects,
			reviews.name:   reviews,
			inquiries.name: inquiries,
		},
	}
}

// ListsChanged reacts to a change of entity ("projects", "reviews",
// "inquiries") made by another process: the entity's lists and those that
// embed it are flushed and refreshed. It reports whether entity is known.
func (s *Service) ListsChanged(ctx context.Context, entity string) bool {
	l, ok := s.lists[entity]
	if ok {
		l.changed(ctx)
	}
	return ok
}

// FlushLists drops every cached list, for when change notices may have
// been missed.
func (s *Service) FlushLists(ctx context.Context) {
	for _, l := range s.lists {
		l.invalidate(ctx)
	}
}
