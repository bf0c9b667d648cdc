package catalog

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/heartmarshall/solarsite/internal/adapter/events"
	"github.com/heartmarshall/solarsite/internal/domain"
)

// Reviews is the review facade.
type Reviews struct {
	*Repository[domain.Review, domain.ReviewFilter, domain.NewReview, domain.ReviewPatch]
	store  reviewStore
	events publisher
	log    *slog.Logger
}

type reviewSubmitted struct {
	ID           uuid.UUID  `json:"id"`
	ProjectID    *uuid.UUID `json:"project_id,omitempty"`
	ReviewerName string     `json:"reviewer_name"`
	Rating       int        `json:"rating"`
	CreatedAt    time.Time  `json:"created_at"`
}

// Create stores a review (always unapproved) and announces it.
func (r *Reviews) Create(ctx context.Context, in domain.NewReview) *domain.Review {
	rev := r.Repository.Create(ctx, in)
	if rev == nil {
		return nil
	}
	publish(ctx, r.events, r.log, events.TopicReviewSubmitted, reviewSubmitted{
		ID:           rev.ID,
		ProjectID:    rev.ProjectID,
		ReviewerName: rev.ReviewerName,
		Rating:       rev.Rating,
		CreatedAt:    rev.CreatedAt,
	})
	return rev
}

// Approve marks the review approved and sets the admin response in one
// mutation. A nil response keeps the existing one.
func (r *Reviews) Approve(ctx context.Context, id uuid.UUID, response *string) *domain.Review {
	return r.mutate(ctx, "approve", func() (*domain.Review, error) {
		return r.store.Approve(ctx, id, response)
	}, slog.String("id", id.String()))
}

// ListApproved returns the approved reviews shown on the public site,
// optionally for one project. It leaves the current view (Items) alone.
func (r *Reviews) ListApproved(ctx context.Context, projectID *uuid.UUID) []domain.Review {
	approved := true
	return r.Query(ctx, domain.ReviewFilter{IsApproved: &approved, ProjectID: projectID})
}
