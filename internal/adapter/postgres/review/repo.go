// Package review implements the Review store using PostgreSQL.
package review

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	postgres "github.com/heartmarshall/solarsite/internal/adapter/postgres"
	"github.com/heartmarshall/solarsite/internal/domain"
)

const table = "reviews"

// columns are selected from reviews r LEFT JOIN projects p.
var columns = []string{
	"r.id", "r.project_id", "r.reviewer_name", "r.rating", "r.comment",
	"r.is_approved", "r.admin_response", "r.created_at", "r.updated_at",
	"p.title", "p.city",
}

// returning lists the reviews columns a mutation hands to joinMutation.
const returning = "RETURNING id, project_id, reviewer_name, rating, comment, is_approved, admin_response, created_at, updated_at"

// SearchColumns are matched by the free-text filter.
var SearchColumns = []string{"r.reviewer_name", "r.comment"}

// Repo provides review persistence backed by PostgreSQL.
type Repo struct {
	db    postgres.Querier
	newID func() uuid.UUID
}

// New creates a new review repository.
func New(db postgres.Querier) *Repo {
	return &Repo{db: db, newID: uuid.New}
}

func selectJoined() squirrel.SelectBuilder {
	return postgres.Builder().
		Select(columns...).
		From(table + " r").
		LeftJoin("projects p ON p.id = r.project_id")
}

// joinMutation wraps an INSERT/UPDATE ... RETURNING so the result carries
// the project reference.
func joinMutation(mutation string) string {
	return "WITH r AS (" + mutation + ") SELECT " + postgres.Columns(columns) +
		" FROM r LEFT JOIN projects p ON p.id = r.project_id"
}

// List returns reviews matching the filter, newest first.
func (r *Repo) List(ctx context.Context, filter domain.ReviewFilter) ([]domain.Review, error) {
	query, args, err := listQuery(filter).ToSql()
	if err != nil {
		return nil, fmt.Errorf("review.List: build query: %w", err)
	}

	rows, err := postgres.QuerierFromCtx(ctx, r.db).Query(ctx, query, args...)
	if err != nil {
		return nil, postgres.MapError(err, "review", uuid.Nil)
	}
	defer rows.Close()

	out := []domain.Review{}
	for rows.Next() {
		rv, err := scanReview(rows)
		if err != nil {
			return nil, fmt.Errorf("review.List: scan: %w", err)
		}
		out = append(out, rv)
	}
	if err := rows.Err(); err != nil {
		return nil, postgres.MapError(err, "review", uuid.Nil)
	}
	return out, nil
}

func listQuery(f domain.ReviewFilter) squirrel.SelectBuilder {
	q := selectJoined()

	if search := postgres.SearchAny(f.Search, SearchColumns...); search != nil {
		q = q.Where(search)
	}
	if f.ProjectID != nil {
		q = q.Where(squirrel.Eq{"r.project_id": *f.ProjectID})
	}
	if f.IsApproved != nil {
		q = q.Where(squirrel.Eq{"r.is_approved": *f.IsApproved})
	}
	if f.MinRating != nil {
		q = q.Where(squirrel.GtOrEq{"r.rating": *f.MinRating})
	}
	if f.MaxRating != nil {
		q = q.Where(squirrel.LtOrEq{"r.rating": *f.MaxRating})
	}

	return q.OrderBy(postgres.NewestFirst("r")...)
}

// GetByID returns a review by primary key.
func (r *Repo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Review, error) {
	query, args, err := selectJoined().Where(squirrel.Eq{"r.id": id}).ToSql()
	if err != nil {
		return nil, fmt.Errorf("review.GetByID: build query: %w", err)
	}

	rv, err := scanReview(postgres.QuerierFromCtx(ctx, r.db).QueryRow(ctx, query, args...))
	if err != nil {
		return nil, postgres.MapError(err, "review", id)
	}
	return &rv, nil
}

// Create inserts an unapproved review.
func (r *Repo) Create(ctx context.Context, in domain.NewReview) (*domain.Review, error) {
	in = in.WithDefaults()
	if err := in.Validate(); err != nil {
		return nil, err
	}

	id := r.newID()
	insert, args, err := postgres.Builder().
		Insert(table).
		Columns("id", "project_id", "reviewer_name", "rating", "comment", "is_approved").
		Values(id, in.ProjectID, in.ReviewerName, in.Rating, in.Comment, false).
		Suffix(returning).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("review.Create: build query: %w", err)
	}

	rv, err := scanReview(postgres.QuerierFromCtx(ctx, r.db).QueryRow(ctx, joinMutation(insert), args...))
	if err != nil {
		return nil, postgres.MapError(err, "review", id)
	}
	return &rv, nil
}

// Update applies the set fields of patch and refreshes updated_at.
func (r *Repo) Update(ctx context.Context, id uuid.UUID, patch domain.ReviewPatch) (*domain.Review, error) {
	if err := patch.Validate(); err != nil {
		return nil, err
	}

	q := postgres.Builder().Update(table).Set("updated_at", squirrel.Expr("now()"))
	if patch.ProjectID != nil {
		q = q.Set("project_id", *patch.ProjectID)
	}
	if patch.ClearProject {
		q = q.Set("project_id", nil)
	}
	q = setIf(q, "reviewer_name", patch.ReviewerName)
	q = setIf(q, "rating", patch.Rating)
	q = setIf(q, "comment", patch.Comment)
	q = setIf(q, "admin_response", patch.AdminResponse)
	if patch.ClearAdminResponse {
		q = q.Set("admin_response", nil)
	}
	q = setIf(q, "is_approved", patch.IsApproved)

	update, args, err := q.Where(squirrel.Eq{"id": id}).Suffix(returning).ToSql()
	if err != nil {
		return nil, fmt.Errorf("review.Update: build query: %w", err)
	}

	rv, err := scanReview(postgres.QuerierFromCtx(ctx, r.db).QueryRow(ctx, joinMutation(update), args...))
	if err != nil {
		return nil, postgres.MapError(err, "review", id)
	}
	return &rv, nil
}

// Approve sets is_approved and admin_response in a single UPDATE. A nil
// response keeps the stored one.
func (r *Repo) Approve(ctx context.Context, id uuid.UUID, response *string) (*domain.Review, error) {
	q := postgres.Builder().
		Update(table).
		Set("is_approved", true).
		Set("updated_at", squirrel.Expr("now()"))
	if response != nil {
		q = q.Set("admin_response", *response)
	}

	update, args, err := q.Where(squirrel.Eq{"id": id}).Suffix(returning).ToSql()
	if err != nil {
		return nil, fmt.Errorf("review.Approve: build query: %w", err)
	}

	rv, err := scanReview(postgres.QuerierFromCtx(ctx, r.db).QueryRow(ctx, joinMutation(update), args...))
	if err != nil {
		return nil, postgres.MapError(err, "review", id)
	}
	return &rv, nil
}

// Delete removes a review.
func (r *Repo) Delete(ctx context.Context, id uuid.UUID) error {
	query, args, err := postgres.Builder().Delete(table).Where(squirrel.Eq{"id": id}).ToSql()
	if err != nil {
		return fmt.Errorf("review.Delete: build query: %w", err)
	}

	tag, err := postgres.QuerierFromCtx(ctx, r.db).Exec(ctx, query, args...)
	if err != nil {
		return postgres.MapError(err, "review", id)
	}
	if tag.RowsAffected() == 0 {
		return postgres.MapError(pgx.ErrNoRows, "review", id)
	}
	return nil
}

func setIf[T any](q squirrel.UpdateBuilder, col string, v *T) squirrel.UpdateBuilder {
	if v == nil {
		return q
	}
	return q.Set(col, *v)
}

func scanReview(row postgres.Scanner) (domain.Review, error) {
	var (
		rv           domain.Review
		projectTitle *string
		projectCity  *string
	)
	err := row.Scan(
		&rv.ID, &rv.ProjectID, &rv.ReviewerName, &rv.Rating, &rv.Comment,
		&rv.IsApproved, &rv.AdminResponse, &rv.CreatedAt, &rv.UpdatedAt,
		&projectTitle, &projectCity,
	)
	if err != nil {
		return domain.Review{}, err
	}
	if rv.ProjectID != nil && projectTitle != nil {
		ref := domain.ProjectRef{Title: *projectTitle}
		if projectCity != nil {
			ref.City = *projectCity
		}
		rv.Project = &ref
	}
	rv.CreatedAt = rv.CreatedAt.UTC()
	rv.UpdatedAt = rv.UpdatedAt.UTC()
	return rv, nil
}
