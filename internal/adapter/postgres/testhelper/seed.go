package testhelper

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/heartmarshall/solarsite/internal/domain"
)

// uniqueSuffix returns a short unique string for generating non-conflicting test data.
func uniqueSuffix() string {
	return uuid.New().String()[:8]
}

// SeedProject inserts an active project in the given city.
func SeedProject(t *testing.T, pool *pgxpool.Pool, city string) domain.Project {
	t.Helper()
	ctx := context.Background()

	now := time.Now().UTC().Truncate(time.Microsecond)
	p := domain.Project{
		ID:          uuid.New(),
		Title:       "Rooftop " + uniqueSuffix(),
		Description: "Seeded project",
		CapacityKW:  10,
		City:        city,
		State:       "Maharashtra",
		Images:      []string{},
		Status:      domain.ProjectStatusActive,
		Tags:        []string{"residential"},
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	_, err := pool.Exec(ctx,
		`INSERT INTO projects (id, title, description, capacity_kw, city, state, images, status, tags, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		p.ID, p.Title, p.Description, p.CapacityKW, p.City, p.State, p.Images, string(p.Status), p.Tags, p.CreatedAt, p.UpdatedAt,
	)
	if err != nil {
		t.Fatalf("testhelper: SeedProject: %v", err)
	}
	return p
}

// SeedReview inserts a review, optionally attached to a project.
func SeedReview(t *testing.T, pool *pgxpool.Pool, projectID *uuid.UUID, approved bool) domain.Review {
	t.Helper()

	now := time.Now().UTC().Truncate(time.Microsecond)
	r := domain.Review{
		ID:           uuid.New(),
		ProjectID:    projectID,
		ReviewerName: "Reviewer " + uniqueSuffix(),
		Rating:       5,
		Comment:      "Great install",
		IsApproved:   approved,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	_, err := pool.Exec(context.Background(),
		`INSERT INTO reviews (id, project_id, reviewer_name, rating, comment, is_approved, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		r.ID, r.ProjectID, r.ReviewerName, r.Rating, r.Comment, r.IsApproved, r.CreatedAt, r.UpdatedAt,
	)
	if err != nil {
		t.Fatalf("testhelper: SeedReview: %v", err)
	}
	return r
}

// SeedInquiry inserts an inquiry with status new.
func SeedInquiry(t *testing.T, pool *pgxpool.Pool, projectID *uuid.UUID) domain.Inquiry {
	t.Helper()

	now := time.Now().UTC().Truncate(time.Microsecond)
	suffix := uniqueSuffix()
	in := domain.Inquiry{
		ID:        uuid.New(),
		ProjectID: projectID,
		Name:      "Visitor " + suffix,
		Email:     "visitor-" + suffix + "@example.com",
		Message:   "Please call me",
		Status:    domain.InquiryStatusNew,
		CreatedAt: now,
		UpdatedAt: now,
	}

	_, err := pool.Exec(context.Background(),
		`INSERT INTO inquiries (id, project_id, name, email, message, status, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		in.ID, in.ProjectID, in.Name, in.Email, in.Message, string(in.Status), in.CreatedAt, in.UpdatedAt,
	)
	if err != nil {
		t.Fatalf("testhelper: SeedInquiry: %v", err)
	}
	return in
}

// SeedAdmin inserts an auth user with the given bcrypt hash and an admin
// profile. Returns the user id and email.
func SeedAdmin(t *testing.T, pool *pgxpool.Pool, passwordHash string) (uuid.UUID, string) {
	t.Helper()
	ctx := context.Background()

	id := uuid.New()
	email := "admin-" + uniqueSuffix() + "@example.com"

	if _, err := pool.Exec(ctx,
		`INSERT INTO auth_users (id, email, password_hash) VALUES ($1, $2, $3)`,
		id, email, passwordHash,
	); err != nil {
		t.Fatalf("testhelper: SeedAdmin insert auth_user: %v", err)
	}
	if _, err := pool.Exec(ctx,
		`INSERT INTO profiles (id, is_admin, full_name) VALUES ($1, true, $2)`,
		id, "Admin "+email,
	); err != nil {
		t.Fatalf("testhelper: SeedAdmin insert profile: %v", err)
	}
	return id, email
}
