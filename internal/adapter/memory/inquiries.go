package memory

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/heartmarshall/solarsite/internal/domain"
)

// InquiryStore serves inquiries from the in-memory dataset.
type InquiryStore struct {
	db *DB
}

func (s *InquiryStore) List(_ context.Context, filter domain.InquiryFilter) ([]domain.Inquiry, error) {
	s.db.mu.RLock()
	defer s.db.mu.RUnlock()

	out := make([]domain.Inquiry, 0, len(s.db.inquiries))
	for _, i := range s.db.inquiries {
		if filter.Matches(i) {
			out = append(out, s.joined(i))
		}
	}
	domain.SortInquiries(out)
	return out, nil
}

func (s *InquiryStore) GetByID(_ context.Context, id uuid.UUID) (*domain.Inquiry, error) {
	s.db.mu.RLock()
	defer s.db.mu.RUnlock()

	i, ok := s.db.inquiries[id]
	if !ok {
		return nil, fmt.Errorf("inquiry %s: %w", id, domain.ErrNotFound)
	}
	out := s.joined(i)
	return &out, nil
}

func (s *InquiryStore) Create(_ context.Context, in domain.NewInquiry) (*domain.Inquiry, error) {
	in = in.WithDefaults()
	if err := in.Validate(); err != nil {
		return nil, err
	}

	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	if in.ProjectID != nil {
		if _, ok := s.db.projects[*in.ProjectID]; !ok {
			return nil, fmt.Errorf("project %s: %w", *in.ProjectID, domain.ErrNotFound)
		}
	}

	now := s.db.timestamp()
	i := domain.Inquiry{
		ID:        s.db.newID(),
		ProjectID: in.ProjectID,
		Name:      in.Name,
		Email:     in.Email,
		Phone:     in.Phone,
		Message:   in.Message,
		Status:    domain.InquiryStatusNew,
		CreatedAt: now,
		UpdatedAt: now,
	}
	s.db.inquiries[i.ID] = i
	out := s.joined(i)
	return &out, nil
}

func (s *InquiryStore) Update(_ context.Context, id uuid.UUID, patch domain.InquiryPatch) (*domain.Inquiry, error) {
	if err := patch.Validate(); err != nil {
		return nil, err
	}

	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	i, ok := s.db.inquiries[id]
	if !ok {
		return nil, fmt.Errorf("inquiry %s: %w", id, domain.ErrNotFound)
	}
	if patch.ProjectID != nil {
		if _, ok := s.db.projects[*patch.ProjectID]; !ok {
			return nil, fmt.Errorf("project %s: %w", *patch.ProjectID, domain.ErrNotFound)
		}
	}
	i = i.Apply(patch)
	i.UpdatedAt = s.db.timestamp()
	i.Project = nil
	s.db.inquiries[id] = i
	out := s.joined(i)
	return &out, nil
}

func (s *InquiryStore) Delete(_ context.Context, id uuid.UUID) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	if _, ok := s.db.inquiries[id]; !ok {
		return fmt.Errorf("inquiry %s: %w", id, domain.ErrNotFound)
	}
	delete(s.db.inquiries, id)
	return nil
}

// joined must be called with db.mu held. Inquiries embed only the title.
func (s *InquiryStore) joined(i domain.Inquiry) domain.Inquiry {
	out := i.Clone()
	if ref := s.db.projectRef(i.ProjectID); ref != nil {
		out.Project = &domain.ProjectRef{Title: ref.Title}
	} else {
		out.Project = nil
	}
	return out
}
