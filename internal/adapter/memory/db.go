// Package memory is the in-process substitute for the remote service. It
// keeps every entity in maps behind one lock so mutations are visible to
// the next read without any refresh step.
package memory

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/heartmarshall/solarsite/internal/domain"
)

// DB holds the in-memory dataset shared by all stores.
type DB struct {
	mu        sync.RWMutex
	projects  map[uuid.UUID]domain.Project
	reviews   map[uuid.UUID]domain.Review
	inquiries map[uuid.UUID]domain.Inquiry
	settings  domain.Settings

	now   func() time.Time
	newID func() uuid.UUID
}

// Option configures a DB.
type Option func(*DB)

// WithClock overrides the time source used for timestamps.
func WithClock(now func() time.Time) Option {
	return func(db *DB) { db.now = now }
}

// WithIDGenerator overrides id generation.
func WithIDGenerator(fn func() uuid.UUID) Option {
	return func(db *DB) { db.newID = fn }
}

// New creates an empty dataset with default settings.
func New(opts ...Option) *DB {
	db := &DB{
		projects:  make(map[uuid.UUID]domain.Project),
		reviews:   make(map[uuid.UUID]domain.Review),
		inquiries: make(map[uuid.UUID]domain.Inquiry),
		settings:  domain.DefaultSettings(),
		now:       time.Now,
		newID:     uuid.New,
	}
	for _, opt := range opts {
		opt(db)
	}
	db.settings.UpdatedAt = db.timestamp()
	return db
}

// Projects returns the project store.
func (db *DB) Projects() *ProjectStore { return &ProjectStore{db: db} }

// Reviews returns the review store.
func (db *DB) Reviews() *ReviewStore { return &ReviewStore{db: db} }

// Inquiries returns the inquiry store.
func (db *DB) Inquiries() *InquiryStore { return &InquiryStore{db: db} }

// Settings returns the settings store.
func (db *DB) Settings() *SettingsStore { return &SettingsStore{db: db} }

// Stats returns the dashboard statistics reader.
func (db *DB) Stats() *StatsStore { return &StatsStore{db: db} }

// timestamp matches the microsecond precision of the remote store so that
// ordering is identical across backends.
func (db *DB) timestamp() time.Time {
	return db.now().UTC().Truncate(time.Microsecond)
}

// projectRef must be called with db.mu held.
func (db *DB) projectRef(id *uuid.UUID) *domain.ProjectRef {
	if id == nil {
		return nil
	}
	p, ok := db.projects[*id]
	if !ok {
		return nil
	}
	return &domain.ProjectRef{Title: p.Title, City: p.City}
}
