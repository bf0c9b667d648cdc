package rest

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/heartmarshall/solarsite/internal/domain"
	"github.com/heartmarshall/solarsite/internal/service/calculator"
)

type projectCatalog interface {
	Query(ctx context.Context, filter domain.ProjectFilter) []domain.Project
	GetByID(ctx context.Context, id uuid.UUID) *domain.Project
	Cities(ctx context.Context) []string
}

type reviewCatalog interface {
	ListApproved(ctx context.Context, projectID *uuid.UUID) []domain.Review
	Create(ctx context.Context, in domain.NewReview) *domain.Review
}

type inquiryCatalog interface {
	Create(ctx context.Context, in domain.NewInquiry) *domain.Inquiry
}

type settingsSource interface {
	Get(ctx context.Context) *domain.Settings
}

// CatalogHandler serves the public catalogue API. The facades it wraps
// report failures by returning nil or empty results, so handlers validate
// input up front and map nil to 404 (lookups) or 500 (writes).
type CatalogHandler struct {
	projects  projectCatalog
	reviews   reviewCatalog
	inquiries inquiryCatalog
	settings  settingsSource
	log       *slog.Logger
}

// NewCatalogHandler creates a CatalogHandler.
func NewCatalogHandler(
	projects projectCatalog,
	reviews reviewCatalog,
	inquiries inquiryCatalog,
	settings settingsSource,
	logger *slog.Logger,
) *CatalogHandler {
	return &CatalogHandler{
		projects:  projects,
		reviews:   reviews,
		inquiries: inquiries,
		settings:  settings,
		log:       logger.With("handler", "catalog"),
	}
}

// ListProjects handles GET /api/projects.
func (h *CatalogHandler) ListProjects(w http.ResponseWriter, r *http.Request) {
	filter, err := projectFilterFromQuery(r)
	if err != nil {
		writeValidation(w, err)
		return
	}
	projects := h.projects.Query(r.Context(), filter)
	writeJSON(w, http.StatusOK, mapSlice(projects, toProjectDTO))
}

// GetProject handles GET /api/projects/{id}.
func (h *CatalogHandler) GetProject(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusNotFound, "project not found")
		return
	}
	p := h.projects.GetByID(r.Context(), id)
	if p == nil {
		writeError(w, http.StatusNotFound, "project not found")
		return
	}
	writeJSON(w, http.StatusOK, toProjectDTO(*p))
}

// ListCities handles GET /api/projects/cities.
func (h *CatalogHandler) ListCities(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, nonNil(h.projects.Cities(r.Context())))
}

// ListReviews handles GET /api/reviews. Only approved reviews are public.
func (h *CatalogHandler) ListReviews(w http.ResponseWriter, r *http.Request) {
	var projectID *uuid.UUID
	if raw := r.URL.Query().Get("project_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			writeValidation(w, domain.NewValidationError("project_id", "invalid id"))
			return
		}
		projectID = &id
	}
	reviews := h.reviews.ListApproved(r.Context(), projectID)
	writeJSON(w, http.StatusOK, mapSlice(reviews, toReviewDTO))
}

// SubmitReview handles POST /api/reviews.
func (h *CatalogHandler) SubmitReview(w http.ResponseWriter, r *http.Request) {
	var req newReviewRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	in := req.toDomain()
	if err := in.Validate(); err != nil {
		writeValidation(w, err)
		return
	}
	if !h.projectExists(r.Context(), in.ProjectID) {
		writeValidation(w, domain.NewValidationError("project_id", "unknown project"))
		return
	}

	rev := h.reviews.Create(r.Context(), in)
	if rev == nil {
		writeError(w, http.StatusInternalServerError, "could not submit review")
		return
	}
	writeJSON(w, http.StatusCreated, toReviewDTO(*rev))
}

// SubmitInquiry handles POST /api/inquiries.
func (h *CatalogHandler) SubmitInquiry(w http.ResponseWriter, r *http.Request) {
	var req newInquiryRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	in := req.toDomain()
	if err := in.Validate(); err != nil {
		writeValidation(w, err)
		return
	}
	if !h.projectExists(r.Context(), in.ProjectID) {
		writeValidation(w, domain.NewValidationError("project_id", "unknown project"))
		return
	}

	inq := h.inquiries.Create(r.Context(), in)
	if inq == nil {
		writeError(w, http.StatusInternalServerError, "could not submit inquiry")
		return
	}
	writeJSON(w, http.StatusCreated, inquiryReceipt{
		ID:        inq.ID,
		Status:    inq.Status.String(),
		CreatedAt: inq.CreatedAt,
	})
}

// GetSettings handles GET /api/settings.
func (h *CatalogHandler) GetSettings(w http.ResponseWriter, r *http.Request) {
	s := h.settings.Get(r.Context())
	if s == nil {
		writeError(w, http.StatusServiceUnavailable, "settings unavailable")
		return
	}
	writeJSON(w, http.StatusOK, toSettingsDTO(*s))
}

// Calculate handles POST /api/calculator using the current settings.
func (h *CatalogHandler) Calculate(w http.ResponseWriter, r *http.Request) {
	var req calculatorRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	var energy bool
	switch strings.ToLower(req.Input) {
	case "", "bill":
	case "energy":
		energy = true
	default:
		writeValidation(w, domain.NewValidationError("input", "must be bill or energy"))
		return
	}

	s := h.settings.Get(r.Context())
	if s == nil {
		writeError(w, http.StatusServiceUnavailable, "settings unavailable")
		return
	}

	res, ok := calculator.ComputeSavings(req.Monthly, energy, *s)
	if !ok {
		writeValidation(w, domain.NewValidationError("monthly", "must be a positive number"))
		return
	}
	writeJSON(w, http.StatusOK, toCalculatorResponse(res))
}

func (h *CatalogHandler) projectExists(ctx context.Context, id *uuid.UUID) bool {
	if id == nil {
		return true
	}
	return h.projects.GetByID(ctx, *id) != nil
}

func projectFilterFromQuery(r *http.Request) (domain.ProjectFilter, error) {
	q := r.URL.Query()
	f := domain.ProjectFilter{
		Search: q.Get("search"),
		City:   q.Get("city"),
		State:  q.Get("state"),
		Tag:    q.Get("tag"),
	}

	var errs []domain.FieldError
	if raw := q.Get("status"); raw != "" {
		f.Status = domain.ProjectStatus(raw)
		if !f.Status.IsValid() {
			errs = append(errs, domain.FieldError{Field: "status", Message: "must be one of active, completed, pending"})
		}
	}
	for _, bound := range []struct {
		name string
		dst  **float64
	}{
		{"min_capacity", &f.MinCapacity},
		{"max_capacity", &f.MaxCapacity},
	} {
		raw := q.Get(bound.name)
		if raw == "" {
			continue
		}
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			errs = append(errs, domain.FieldError{Field: bound.name, Message: "must be a number"})
			continue
		}
		*bound.dst = &v
	}

	if len(errs) > 0 {
		return domain.ProjectFilter{}, domain.NewValidationErrors(errs)
	}
	return f, nil
}
