package catalog

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/heartmarshall/solarsite/internal/adapter/events"
	"github.com/heartmarshall/solarsite/internal/domain"
)

// Inquiries is the inquiry facade.
type Inquiries struct {
	*Repository[domain.Inquiry, domain.InquiryFilter, domain.NewInquiry, domain.InquiryPatch]
	events publisher
	log    *slog.Logger
}

type inquiryCreated struct {
	ID        uuid.UUID  `json:"id"`
	ProjectID *uuid.UUID `json:"project_id,omitempty"`
	Name      string     `json:"name"`
	Email     string     `json:"email"`
	Phone     string     `json:"phone,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
}

// Create stores an inquiry with status new and announces it.
func (i *Inquiries) Create(ctx context.Context, in domain.NewInquiry) *domain.Inquiry {
	inq := i.Repository.Create(ctx, in)
	if inq == nil {
		return nil
	}
	publish(ctx, i.events, i.log, events.TopicInquiryCreated, inquiryCreated{
		ID:        inq.ID,
		ProjectID: inq.ProjectID,
		Name:      inq.Name,
		Email:     inq.Email,
		Phone:     inq.Phone,
		CreatedAt: inq.CreatedAt,
	})
	return inq
}

// SetStatus moves an inquiry through its workflow.
func (i *Inquiries) SetStatus(ctx context.Context, id uuid.UUID, status domain.InquiryStatus) *domain.Inquiry {
	return i.Update(ctx, id, domain.InquiryPatch{Status: &status})
}

func publish(ctx context.Context, p publisher, log *slog.Logger, topic string, data any) {
	if p == nil {
		return
	}
	if err := p.Publish(ctx, topic, data); err != nil {
		log.WarnContext(ctx, "publish event failed", slog.String("topic", topic), slog.String("error", err.Error()))
	}
}
