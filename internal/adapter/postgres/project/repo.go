// Package project implements the Project store using PostgreSQL.
package project

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	postgres "github.com/heartmarshall/solarsite/internal/adapter/postgres"
	"github.com/heartmarshall/solarsite/internal/domain"
)

const table = "projects"

var columns = []string{
	"id", "title", "description", "capacity_kw", "address", "city", "state",
	"latitude", "longitude", "images", "installation_date", "status", "tags",
	"created_at", "updated_at",
}

// SearchColumns are matched by the free-text filter.
var SearchColumns = []string{"title", "description", "address", "city", "state"}

// Repo provides project persistence backed by PostgreSQL.
type Repo struct {
	db    postgres.Querier
	newID func() uuid.UUID
}

// New creates a new project repository.
func New(db postgres.Querier) *Repo {
	return &Repo{db: db, newID: uuid.New}
}

// List returns projects matching the filter, newest first.
func (r *Repo) List(ctx context.Context, filter domain.ProjectFilter) ([]domain.Project, error) {
	query, args, err := listQuery(filter).ToSql()
	if err != nil {
		return nil, fmt.Errorf("project.List: build query: %w", err)
	}

	rows, err := postgres.QuerierFromCtx(ctx, r.db).Query(ctx, query, args...)
	if err != nil {
		return nil, postgres.MapError(err, "project", uuid.Nil)
	}
	defer rows.Close()

	out := []domain.Project{}
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, fmt.Errorf("project.List: scan: %w", err)
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, postgres.MapError(err, "project", uuid.Nil)
	}
	return out, nil
}

func listQuery(f domain.ProjectFilter) squirrel.SelectBuilder {
	q := postgres.Builder().Select(columns...).From(table)

	if search := postgres.SearchAny(f.Search, SearchColumns...); search != nil {
		q = q.Where(search)
	}
	if f.City != "" {
		q = q.Where(squirrel.Eq{"city": f.City})
	}
	if f.State != "" {
		q = q.Where(squirrel.Eq{"state": f.State})
	}
	if f.Status != "" {
		q = q.Where(squirrel.Eq{"status": string(f.Status)})
	}
	if f.Tag != "" {
		q = q.Where("? = ANY(tags)", f.Tag)
	}
	if f.MinCapacity != nil {
		q = q.Where(squirrel.GtOrEq{"capacity_kw": *f.MinCapacity})
	}
	if f.MaxCapacity != nil {
		q = q.Where(squirrel.LtOrEq{"capacity_kw": *f.MaxCapacity})
	}

	return q.OrderBy(postgres.NewestFirst("")...)
}

// GetByID returns a project by primary key.
func (r *Repo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Project, error) {
	query, args, err := postgres.Builder().
		Select(columns...).
		From(table).
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("project.GetByID: build query: %w", err)
	}

	p, err := scanProject(postgres.QuerierFromCtx(ctx, r.db).QueryRow(ctx, query, args...))
	if err != nil {
		return nil, postgres.MapError(err, "project", id)
	}
	return &p, nil
}

// Create inserts a project after applying defaults.
func (r *Repo) Create(ctx context.Context, in domain.NewProject) (*domain.Project, error) {
	in = in.WithDefaults()
	if err := in.Validate(); err != nil {
		return nil, err
	}

	id := r.newID()
	query, args, err := postgres.Builder().
		Insert(table).
		Columns("id", "title", "description", "capacity_kw", "address", "city", "state",
			"latitude", "longitude", "images", "installation_date", "status", "tags").
		Values(id, in.Title, in.Description, in.CapacityKW, in.Address, in.City, in.State,
			in.Latitude, in.Longitude, in.Images, in.InstallationDate, string(in.Status), in.Tags).
		Suffix("RETURNING " + postgres.Columns(columns)).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("project.Create: build query: %w", err)
	}

	p, err := scanProject(postgres.QuerierFromCtx(ctx, r.db).QueryRow(ctx, query, args...))
	if err != nil {
		return nil, postgres.MapError(err, "project", id)
	}
	return &p, nil
}

// Update applies the set fields of patch and refreshes updated_at.
func (r *Repo) Update(ctx context.Context, id uuid.UUID, patch domain.ProjectPatch) (*domain.Project, error) {
	if err := patch.Validate(); err != nil {
		return nil, err
	}

	q := postgres.Builder().Update(table).Set("updated_at", squirrel.Expr("now()"))
	q = setIf(q, "title", patch.Title)
	q = setIf(q, "description", patch.Description)
	q = setIf(q, "capacity_kw", patch.CapacityKW)
	q = setIf(q, "address", patch.Address)
	q = setIf(q, "city", patch.City)
	q = setIf(q, "state", patch.State)
	q = setIf(q, "latitude", patch.Latitude)
	q = setIf(q, "longitude", patch.Longitude)
	q = setIf(q, "images", patch.Images)
	q = setIf(q, "tags", patch.Tags)
	if patch.InstallationDate != nil {
		q = q.Set("installation_date", *patch.InstallationDate)
	}
	if patch.ClearInstallationDate {
		q = q.Set("installation_date", nil)
	}
	if patch.Status != nil {
		q = q.Set("status", string(*patch.Status))
	}

	query, args, err := q.
		Where(squirrel.Eq{"id": id}).
		Suffix("RETURNING " + postgres.Columns(columns)).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("project.Update: build query: %w", err)
	}

	p, err := scanProject(postgres.QuerierFromCtx(ctx, r.db).QueryRow(ctx, query, args...))
	if err != nil {
		return nil, postgres.MapError(err, "project", id)
	}
	return &p, nil
}

// Delete removes a project. Reviews and inquiries keep their rows with a
// NULL project_id (ON DELETE SET NULL).
func (r *Repo) Delete(ctx context.Context, id uuid.UUID) error {
	query, args, err := postgres.Builder().
		Delete(table).
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("project.Delete: build query: %w", err)
	}

	tag, err := postgres.QuerierFromCtx(ctx, r.db).Exec(ctx, query, args...)
	if err != nil {
		return postgres.MapError(err, "project", id)
	}
	if tag.RowsAffected() == 0 {
		return postgres.MapError(pgx.ErrNoRows, "project", id)
	}
	return nil
}

// Cities returns the distinct non-empty cities in byte order.
func (r *Repo) Cities(ctx context.Context) ([]string, error) {
	query, args, err := postgres.Builder().
		Select("DISTINCT city").
		From(table).
		Where(squirrel.NotEq{"city": ""}).
		OrderBy(`city COLLATE "C"`).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("project.Cities: build query: %w", err)
	}

	rows, err := postgres.QuerierFromCtx(ctx, r.db).Query(ctx, query, args...)
	if err != nil {
		return nil, postgres.MapError(err, "project", uuid.Nil)
	}
	cities, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, postgres.MapError(err, "project", uuid.Nil)
	}
	if cities == nil {
		cities = []string{}
	}
	return cities, nil
}

func setIf[T any](q squirrel.UpdateBuilder, col string, v *T) squirrel.UpdateBuilder {
	if v == nil {
		return q
	}
	return q.Set(col, *v)
}

func scanProject(row postgres.Scanner) (domain.Project, error) {
	var (
		p      domain.Project
		status string
	)
	err := row.Scan(
		&p.ID, &p.Title, &p.Description, &p.CapacityKW, &p.Address, &p.City, &p.State,
		&p.Latitude, &p.Longitude, &p.Images, &p.InstallationDate, &status, &p.Tags,
		&p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return domain.Project{}, err
	}
	p.Status = domain.ProjectStatus(status)
	if p.Images == nil {
		p.Images = []string{}
	}
	if p.Tags == nil {
		p.Tags = []string{}
	}
	p.CreatedAt = p.CreatedAt.UTC()
	p.UpdatedAt = p.UpdatedAt.UTC()
	if p.InstallationDate != nil {
		d := p.InstallationDate.UTC()
		p.InstallationDate = &d
	}
	return p, nil
}
