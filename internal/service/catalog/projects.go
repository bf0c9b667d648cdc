package catalog

import (
	"context"
	"log/slog"

	"github.com/heartmarshall/solarsite/internal/domain"
)

// Projects is the project facade.
type Projects struct {
	*Repository[domain.Project, domain.ProjectFilter, domain.NewProject, domain.ProjectPatch]
	store projectStore
	log   *slog.Logger
}

// Cities returns the distinct non-empty project cities in ascending order.
func (p *Projects) Cities(ctx context.Context) []string {
	cities, err := p.store.Cities(ctx)
	if err != nil {
		logFailure(ctx, p.log, "cities", err)
		return []string{}
	}
	return cities
}
