package memory

import (
	"context"

	"github.com/heartmarshall/solarsite/internal/domain"
)

// SettingsStore serves the settings singleton.
type SettingsStore struct {
	db *DB
}

func (s *SettingsStore) Get(_ context.Context) (*domain.Settings, error) {
	s.db.mu.RLock()
	defer s.db.mu.RUnlock()

	out := s.db.settings
	return &out, nil
}

func (s *SettingsStore) Update(_ context.Context, patch domain.SettingsPatch) (*domain.Settings, error) {
	if err := patch.Validate(); err != nil {
		return nil, err
	}

	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	s.db.settings = s.db.settings.Apply(patch)
	s.db.settings.UpdatedAt = s.db.timestamp()
	out := s.db.settings
	return &out, nil
}
