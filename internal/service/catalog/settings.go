package catalog

import (
	"context"
	"log/slog"

	"github.com/heartmarshall/solarsite/internal/domain"
)

// Settings is the facade over the singleton settings record.
type Settings struct {
	store settingsStore
	log   *slog.Logger
}

// Get returns the settings or nil.
func (s *Settings) Get(ctx context.Context) *domain.Settings {
	v, err := s.store.Get(ctx)
	if err != nil {
		logFailure(ctx, s.log, "get", err)
		return nil
	}
	return v
}

// Update applies patch and returns the new settings, or nil on failure.
func (s *Settings) Update(ctx context.Context, patch domain.SettingsPatch) *domain.Settings {
	v, err := s.store.Update(ctx, patch)
	if err != nil {
		logFailure(ctx, s.log, "update", err)
		return nil
	}
	return v
}

// Stats computes dashboard figures.
type Stats struct {
	store statsStore
	log   *slog.Logger
}

// Compute returns the dashboard figures; zero values on failure.
func (s *Stats) Compute(ctx context.Context) domain.DashboardStats {
	st, err := s.store.Compute(ctx)
	if err != nil {
		logFailure(ctx, s.log, "compute", err)
		return domain.DashboardStats{}
	}
	return st
}
