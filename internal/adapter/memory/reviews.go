package memory

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/heartmarshall/solarsite/internal/domain"
)

// ReviewStore serves reviews from the in-memory dataset. The embedded
// project reference is joined on read.
type ReviewStore struct {
	db *DB
}

func (s *ReviewStore) List(_ context.Context, filter domain.ReviewFilter) ([]domain.Review, error) {
	s.db.mu.RLock()
	defer s.db.mu.RUnlock()

	out := make([]domain.Review, 0, len(s.db.reviews))
	for _, r := range s.db.reviews {
		if filter.Matches(r) {
			out = append(out, s.joined(r))
		}
	}
	domain.SortReviews(out)
	return out, nil
}

func (s *ReviewStore) GetByID(_ context.Context, id uuid.UUID) (*domain.Review, error) {
	s.db.mu.RLock()
	defer s.db.mu.RUnlock()

	r, ok := s.db.reviews[id]
	if !ok {
		return nil, fmt.Errorf("review %s: %w", id, domain.ErrNotFound)
	}
	out := s.joined(r)
	return &out, nil
}

func (s *ReviewStore) Create(_ context.Context, in domain.NewReview) (*domain.Review, error) {
	in = in.WithDefaults()
	if err := in.Validate(); err != nil {
		return nil, err
	}

	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	if err := s.checkProject(in.ProjectID); err != nil {
		return nil, err
	}

	now := s.db.timestamp()
	r := domain.Review{
		ID:           s.db.newID(),
		ProjectID:    in.ProjectID,
		ReviewerName: in.ReviewerName,
		Rating:       in.Rating,
		Comment:      in.Comment,
		IsApproved:   false,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	s.db.reviews[r.ID] = r
	out := s.joined(r)
	return &out, nil
}

func (s *ReviewStore) Update(_ context.Context, id uuid.UUID, patch domain.ReviewPatch) (*domain.Review, error) {
	if err := patch.Validate(); err != nil {
		return nil, err
	}

	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	r, ok := s.db.reviews[id]
	if !ok {
		return nil, fmt.Errorf("review %s: %w", id, domain.ErrNotFound)
	}
	if err := s.checkProject(patch.ProjectID); err != nil {
		return nil, err
	}
	r = r.Apply(patch)
	r.UpdatedAt = s.db.timestamp()
	r.Project = nil
	s.db.reviews[id] = r
	out := s.joined(r)
	return &out, nil
}

// Approve sets is_approved and admin_response under a single write lock,
// so no reader sees one without the other.
func (s *ReviewStore) Approve(_ context.Context, id uuid.UUID, response *string) (*domain.Review, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	r, ok := s.db.reviews[id]
	if !ok {
		return nil, fmt.Errorf("review %s: %w", id, domain.ErrNotFound)
	}
	r = r.Approve(response)
	r.UpdatedAt = s.db.timestamp()
	s.db.reviews[id] = r
	out := s.joined(r)
	return &out, nil
}

func (s *ReviewStore) Delete(_ context.Context, id uuid.UUID) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	if _, ok := s.db.reviews[id]; !ok {
		return fmt.Errorf("review %s: %w", id, domain.ErrNotFound)
	}
	delete(s.db.reviews, id)
	return nil
}

// joined must be called with db.mu held.
func (s *ReviewStore) joined(r domain.Review) domain.Review {
	out := r.Clone()
	out.Project = s.db.projectRef(r.ProjectID)
	return out
}

// checkProject must be called with db.mu held.
func (s *ReviewStore) checkProject(id *uuid.UUID) error {
	if id == nil {
		return nil
	}
	if _, ok := s.db.projects[*id]; !ok {
		return fmt.Errorf("project %s: %w", *id, domain.ErrNotFound)
	}
	return nil
}
