// Package settings implements the settings singleton store using PostgreSQL.
package settings

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"

	postgres "github.com/heartmarshall/solarsite/internal/adapter/postgres"
	"github.com/heartmarshall/solarsite/internal/domain"
)

const table = "settings"

var columns = []string{
	"id", "company_name", "email", "phone", "address", "whatsapp",
	"kwh_per_kw_per_month", "tariff_per_kwh", "system_cost_per_kw", "subsidy_percentage",
	"maintenance_cost_per_kw_year", "carousel_speed", "map_center_lat", "map_center_lng",
	"map_zoom", "updated_at",
}

// Repo reads and updates the settings row.
type Repo struct {
	db postgres.Querier
}

// New creates a new settings repository.
func New(db postgres.Querier) *Repo {
	return &Repo{db: db}
}

// Get returns the settings row.
func (r *Repo) Get(ctx context.Context) (*domain.Settings, error) {
	query, args, err := postgres.Builder().
		Select(columns...).
		From(table).
		Where(squirrel.Eq{"id": domain.SettingsID}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("settings.Get: build query: %w", err)
	}

	s, err := scanSettings(postgres.QuerierFromCtx(ctx, r.db).QueryRow(ctx, query, args...))
	if err != nil {
		return nil, postgres.MapError(err, "settings", uuid.Nil)
	}
	return &s, nil
}

// Update applies the set fields of patch to the settings row.
func (r *Repo) Update(ctx context.Context, patch domain.SettingsPatch) (*domain.Settings, error) {
	if err := patch.Validate(); err != nil {
		return nil, err
	}

	q := postgres.Builder().Update(table).Set("updated_at", squirrel.Expr("now()"))
	q = setIf(q, "company_name", patch.CompanyName)
	q = setIf(q, "email", patch.Email)
	q = setIf(q, "phone", patch.Phone)
	q = setIf(q, "address", patch.Address)
	q = setIf(q, "whatsapp", patch.WhatsApp)
	q = setIf(q, "kwh_per_kw_per_month", patch.KWhPerKWPerMonth)
	q = setIf(q, "tariff_per_kwh", patch.TariffPerKWh)
	q = setIf(q, "system_cost_per_kw", patch.SystemCostPerKW)
	q = setIf(q, "subsidy_percentage", patch.SubsidyPercentage)
	q = setIf(q, "maintenance_cost_per_kw_year", patch.MaintenanceCostPerKWYear)
	q = setIf(q, "carousel_speed", patch.CarouselSpeed)
	q = setIf(q, "map_center_lat", patch.MapCenterLat)
	q = setIf(q, "map_center_lng", patch.MapCenterLng)
	q = setIf(q, "map_zoom", patch.MapZoom)

	query, args, err := q.
		Where(squirrel.Eq{"id": domain.SettingsID}).
		Suffix("RETURNING " + postgres.Columns(columns)).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("settings.Update: build query: %w", err)
	}

	s, err := scanSettings(postgres.QuerierFromCtx(ctx, r.db).QueryRow(ctx, query, args...))
	if err != nil {
		return nil, postgres.MapError(err, "settings", uuid.Nil)
	}
	return &s, nil
}

func setIf[T any](q squirrel.UpdateBuilder, col string, v *T) squirrel.UpdateBuilder {
	if v == nil {
		return q
	}
	return q.Set(col, *v)
}

func scanSettings(row postgres.Scanner) (domain.Settings, error) {
	var s domain.Settings
	err := row.Scan(
		&s.ID, &s.CompanyName, &s.Email, &s.Phone, &s.Address, &s.WhatsApp,
		&s.KWhPerKWPerMonth, &s.TariffPerKWh, &s.SystemCostPerKW, &s.SubsidyPercentage,
		&s.MaintenanceCostPerKWYear, &s.CarouselSpeed, &s.MapCenterLat, &s.MapCenterLng,
		&s.MapZoom, &s.UpdatedAt,
	)
	if err != nil {
		return domain.Settings{}, err
	}
	s.UpdatedAt = s.UpdatedAt.UTC()
	return s, nil
}
