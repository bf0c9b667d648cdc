// Package stats derives dashboard statistics with aggregate-only queries.
package stats

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	postgres "github.com/heartmarshall/solarsite/internal/adapter/postgres"
	"github.com/heartmarshall/solarsite/internal/domain"
)

// Repo computes DashboardStats.
type Repo struct {
	db postgres.Querier
}

// New creates a new stats repository.
func New(db postgres.Querier) *Repo {
	return &Repo{db: db}
}

// Compute issues the project, review and inquiry aggregates concurrently and
// combines them. No row payload is transferred.
func (r *Repo) Compute(ctx context.Context) (domain.DashboardStats, error) {
	var (
		st domain.DashboardStats
		db = postgres.QuerierFromCtx(ctx, r.db)
	)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return r.scanAggregate(gctx, db,
			postgres.Builder().
				Select("COUNT(*)", "COALESCE(SUM(capacity_kw), 0)").
				From("projects"),
			&st.TotalProjects, &st.TotalCapacity)
	})

	g.Go(func() error {
		return r.scanAggregate(gctx, db,
			postgres.Builder().
				Select("COUNT(*) FILTER (WHERE is_approved)", "COUNT(*) FILTER (WHERE NOT is_approved)").
				From("reviews"),
			&st.ApprovedReviews, &st.PendingReviews)
	})

	g.Go(func() error {
		return r.scanAggregate(gctx, db,
			postgres.Builder().
				Select("COUNT(*)").
				Column("COUNT(*) FILTER (WHERE status = ?)", string(domain.InquiryStatusNew)).
				From("inquiries"),
			&st.TotalInquiries, &st.PendingInquiries)
	})

	if err := g.Wait(); err != nil {
		return domain.DashboardStats{}, fmt.Errorf("stats.Compute: %w", err)
	}
	st.TotalCapacity = domain.RoundCapacity(st.TotalCapacity)
	return st, nil
}

func (r *Repo) scanAggregate(ctx context.Context, db postgres.Querier, q squirrel.SelectBuilder, dest ...any) error {
	query, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build query: %w", err)
	}
	if err := db.QueryRow(ctx, query, args...).Scan(dest...); err != nil {
		return postgres.MapError(err, "stats", uuid.Nil)
	}
	return nil
}
