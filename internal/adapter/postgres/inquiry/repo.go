// Package inquiry implements the Inquiry store using PostgreSQL.
package inquiry

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	postgres "github.com/heartmarshall/solarsite/internal/adapter/postgres"
	"github.com/heartmarshall/solarsite/internal/domain"
)

const table = "inquiries"

var columns = []string{
	"i.id", "i.project_id", "i.name", "i.email", "i.phone", "i.message",
	"i.status", "i.notes", "i.created_at", "i.updated_at", "p.title",
}

// returning lists the inquiries columns a mutation hands to joinMutation.
const returning = "RETURNING id, project_id, name, email, phone, message, status, notes, created_at, updated_at"

// SearchColumns are matched by the free-text filter.
var SearchColumns = []string{"i.name", "i.email", "i.phone", "i.message"}

// Repo provides inquiry persistence backed by PostgreSQL.
type Repo struct {
	db    postgres.Querier
	newID func() uuid.UUID
}

// New creates a new inquiry repository.
func New(db postgres.Querier) *Repo {
	return &Repo{db: db, newID: uuid.New}
}

func selectJoined() squirrel.SelectBuilder {
	return postgres.Builder().
		Select(columns...).
		From(table + " i").
		LeftJoin("projects p ON p.id = i.project_id")
}

func joinMutation(mutation string) string {
	return "WITH i AS (" + mutation + ") SELECT " + postgres.Columns(columns) +
		" FROM i LEFT JOIN projects p ON p.id = i.project_id"
}

// List returns inquiries matching the filter, newest first.
func (r *Repo) List(ctx context.Context, filter domain.InquiryFilter) ([]domain.Inquiry, error) {
	query, args, err := listQuery(filter).ToSql()
	if err != nil {
		return nil, fmt.Errorf("inquiry.List: build query: %w", err)
	}

	rows, err := postgres.QuerierFromCtx(ctx, r.db).Query(ctx, query, args...)
	if err != nil {
		return nil, postgres.MapError(err, "inquiry", uuid.Nil)
	}
	defer rows.Close()

	out := []domain.Inquiry{}
	for rows.Next() {
		i, err := scanInquiry(rows)
		if err != nil {
			return nil, fmt.Errorf("inquiry.List: scan: %w", err)
		}
		out = append(out, i)
	}
	if err := rows.Err(); err != nil {
		return nil, postgres.MapError(err, "inquiry", uuid.Nil)
	}
	return out, nil
}

func listQuery(f domain.InquiryFilter) squirrel.SelectBuilder {
	q := selectJoined()

	if search := postgres.SearchAny(f.Search, SearchColumns...); search != nil {
		q = q.Where(search)
	}
	if f.Status != "" {
		q = q.Where(squirrel.Eq{"i.status": string(f.Status)})
	}
	if f.ProjectID != nil {
		q = q.Where(squirrel.Eq{"i.project_id": *f.ProjectID})
	}

	return q.OrderBy(postgres.NewestFirst("i")...)
}

// GetByID returns an inquiry by primary key.
func (r *Repo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Inquiry, error) {
	query, args, err := selectJoined().Where(squirrel.Eq{"i.id": id}).ToSql()
	if err != nil {
		return nil, fmt.Errorf("inquiry.GetByID: build query: %w", err)
	}

	i, err := scanInquiry(postgres.QuerierFromCtx(ctx, r.db).QueryRow(ctx, query, args...))
	if err != nil {
		return nil, postgres.MapError(err, "inquiry", id)
	}
	return &i, nil
}

// Create inserts an inquiry in status "new".
func (r *Repo) Create(ctx context.Context, in domain.NewInquiry) (*domain.Inquiry, error) {
	in = in.WithDefaults()
	if err := in.Validate(); err != nil {
		return nil, err
	}

	id := r.newID()
	insert, args, err := postgres.Builder().
		Insert(table).
		Columns("id", "project_id", "name", "email", "phone", "message", "status").
		Values(id, in.ProjectID, in.Name, in.Email, in.Phone, in.Message, string(domain.InquiryStatusNew)).
		Suffix(returning).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("inquiry.Create: build query: %w", err)
	}

	i, err := scanInquiry(postgres.QuerierFromCtx(ctx, r.db).QueryRow(ctx, joinMutation(insert), args...))
	if err != nil {
		return nil, postgres.MapError(err, "inquiry", id)
	}
	return &i, nil
}

// Update applies the set fields of patch and refreshes updated_at.
func (r *Repo) Update(ctx context.Context, id uuid.UUID, patch domain.InquiryPatch) (*domain.Inquiry, error) {
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
	q = setIf(q, "name", patch.Name)
	q = setIf(q, "email", patch.Email)
	q = setIf(q, "phone", patch.Phone)
	q = setIf(q, "message", patch.Message)
	if patch.Status != nil {
		q = q.Set("status", string(*patch.Status))
	}
	q = setIf(q, "notes", patch.Notes)
	if patch.ClearNotes {
		q = q.Set("notes", nil)
	}

	update, args, err := q.Where(squirrel.Eq{"id": id}).Suffix(returning).ToSql()
	if err != nil {
		return nil, fmt.Errorf("inquiry.Update: build query: %w", err)
	}

	i, err := scanInquiry(postgres.QuerierFromCtx(ctx, r.db).QueryRow(ctx, joinMutation(update), args...))
	if err != nil {
		return nil, postgres.MapError(err, "inquiry", id)
	}
	return &i, nil
}

// Delete removes an inquiry.
func (r *Repo) Delete(ctx context.Context, id uuid.UUID) error {
	query, args, err := postgres.Builder().Delete(table).Where(squirrel.Eq{"id": id}).ToSql()
	if err != nil {
		return fmt.Errorf("inquiry.Delete: build query: %w", err)
	}

	tag, err := postgres.QuerierFromCtx(ctx, r.db).Exec(ctx, query, args...)
	if err != nil {
		return postgres.MapError(err, "inquiry", id)
	}
	if tag.RowsAffected() == 0 {
		return postgres.MapError(pgx.ErrNoRows, "inquiry", id)
	}
	return nil
}

func setIf[T any](q squirrel.UpdateBuilder, col string, v *T) squirrel.UpdateBuilder {
	if v == nil {
		return q
	}
	return q.Set(col, *v)
}

func scanInquiry(row postgres.Scanner) (domain.Inquiry, error) {
	var (
		i            domain.Inquiry
		status       string
		projectTitle *string
	)
	err := row.Scan(
		&i.ID, &i.ProjectID, &i.Name, &i.Email, &i.Phone, &i.Message,
		&status, &i.Notes, &i.CreatedAt, &i.UpdatedAt, &projectTitle,
	)
	if err != nil {
		return domain.Inquiry{}, err
	}
	i.Status = domain.InquiryStatus(status)
	if i.ProjectID != nil && projectTitle != nil {
		i.Project = &domain.ProjectRef{Title: *projectTitle}
	}
	i.CreatedAt = i.CreatedAt.UTC()
	i.UpdatedAt = i.UpdatedAt.UTC()
	return i, nil
}
