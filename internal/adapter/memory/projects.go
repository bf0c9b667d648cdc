package memory

import (
	"context"
	"fmt"
	"slices"

	"github.com/google/uuid"

	"github.com/heartmarshall/solarsite/internal/domain"
)

// ProjectStore serves projects from the in-memory dataset.
type ProjectStore struct {
	db *DB
}

func (s *ProjectStore) List(_ context.Context, filter domain.ProjectFilter) ([]domain.Project, error) {
	s.db.mu.RLock()
	defer s.db.mu.RUnlock()

	out := make([]domain.Project, 0, len(s.db.projects))
	for _, p := range s.db.projects {
		if filter.Matches(p) {
			out = append(out, p.Clone())
		}
	}
	domain.SortProjects(out)
	return out, nil
}

func (s *ProjectStore) GetByID(_ context.Context, id uuid.UUID) (*domain.Project, error) {
	s.db.mu.RLock()
	defer s.db.mu.RUnlock()

	p, ok := s.db.projects[id]
	if !ok {
		return nil, fmt.Errorf("project %s: %w", id, domain.ErrNotFound)
	}
	out := p.Clone()
	return &out, nil
}

func (s *ProjectStore) Create(_ context.Context, in domain.NewProject) (*domain.Project, error) {
	in = in.WithDefaults()
	if err := in.Validate(); err != nil {
		return nil, err
	}

	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	now := s.db.timestamp()
	p := domain.Project{
		ID:               s.db.newID(),
		Title:            in.Title,
		Description:      in.Description,
		CapacityKW:       in.CapacityKW,
		Address:          in.Address,
		City:             in.City,
		State:            in.State,
		Latitude:         in.Latitude,
		Longitude:        in.Longitude,
		Images:           in.Images,
		InstallationDate: in.InstallationDate,
		Status:           in.Status,
		Tags:             in.Tags,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	s.db.projects[p.ID] = p.Clone()
	return &p, nil
}

func (s *ProjectStore) Update(_ context.Context, id uuid.UUID, patch domain.ProjectPatch) (*domain.Project, error) {
	if err := patch.Validate(); err != nil {
		return nil, err
	}

	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	p, ok := s.db.projects[id]
	if !ok {
		return nil, fmt.Errorf("project %s: %w", id, domain.ErrNotFound)
	}
	p = p.Apply(patch)
	p.UpdatedAt = s.db.timestamp()
	s.db.projects[id] = p
	out := p.Clone()
	return &out, nil
}

// Delete removes the project and detaches reviews and inquiries that
// referenced it.
func (s *ProjectStore) Delete(_ context.Context, id uuid.UUID) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	if _, ok := s.db.projects[id]; !ok {
		return fmt.Errorf("project %s: %w", id, domain.ErrNotFound)
	}
	delete(s.db.projects, id)

	for rid, r := range s.db.reviews {
		if r.ProjectID != nil && *r.ProjectID == id {
			r.ProjectID = nil
			s.db.reviews[rid] = r
		}
	}
	for iid, inq := range s.db.inquiries {
		if inq.ProjectID != nil && *inq.ProjectID == id {
			inq.ProjectID = nil
			s.db.inquiries[iid] = inq
		}
	}
	return nil
}

// Cities returns the distinct non-empty cities in ascending order.
func (s *ProjectStore) Cities(_ context.Context) ([]string, error) {
	s.db.mu.RLock()
	defer s.db.mu.RUnlock()

	seen := make(map[string]struct{})
	out := []string{}
	for _, p := range s.db.projects {
		if p.City == "" {
			continue
		}
		if _, ok := seen[p.City]; ok {
			continue
		}
		seen[p.City] = struct{}{}
		out = append(out, p.City)
	}
	slices.Sort(out)
	return out, nil
}
