package rest

import (
	"math"
	"time"

	"github.com/google/uuid"

	"github.com/heartmarshall/solarsite/internal/domain"
	"github.com/heartmarshall/solarsite/internal/service/calculator"
)

type projectDTO struct {
	ID               uuid.UUID  `json:"id"`
	Title            string     `json:"title"`
	Description      string     `json:"description"`
	CapacityKW       float64    `json:"capacity_kw"`
	Address          string     `json:"address"`
	City             string     `json:"city"`
	State            string     `json:"state"`
	Latitude         float64    `json:"latitude"`
	Longitude        float64    `json:"longitude"`
	Images           []string   `json:"images"`
	InstallationDate *time.Time `json:"installation_date"`
	Status           string     `json:"status"`
	Tags             []string   `json:"tags"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
}

func toProjectDTO(p domain.Project) projectDTO {
	return projectDTO{
		ID:               p.ID,
		Title:            p.Title,
		Description:      p.Description,
		CapacityKW:       p.CapacityKW,
		Address:          p.Address,
		City:             p.City,
		State:            p.State,
		Latitude:         p.Latitude,
		Longitude:        p.Longitude,
		Images:           nonNil(p.Images),
		InstallationDate: p.InstallationDate,
		Status:           p.Status.String(),
		Tags:             nonNil(p.Tags),
		CreatedAt:        p.CreatedAt,
		UpdatedAt:        p.UpdatedAt,
	}
}

type projectRefDTO struct {
	Title string `json:"title"`
	City  string `json:"city,omitempty"`
}

type reviewDTO struct {
	ID            uuid.UUID      `json:"id"`
	ProjectID     *uuid.UUID     `json:"project_id"`
	ReviewerName  string         `json:"reviewer_name"`
	Rating        int            `json:"rating"`
	Comment       string         `json:"comment"`
	IsApproved    bool           `json:"is_approved"`
	AdminResponse *string        `json:"admin_response"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
	Project       *projectRefDTO `json:"project,omitempty"`
}

func toReviewDTO(r domain.Review) reviewDTO {
	out := reviewDTO{
		ID:            r.ID,
		ProjectID:     r.ProjectID,
		ReviewerName:  r.ReviewerName,
		Rating:        r.Rating,
		Comment:       r.Comment,
		IsApproved:    r.IsApproved,
		AdminResponse: r.AdminResponse,
		CreatedAt:     r.CreatedAt,
		UpdatedAt:     r.UpdatedAt,
	}
	if r.Project != nil {
		out.Project = &projectRefDTO{Title: r.Project.Title, City: r.Project.City}
	}
	return out
}

type newReviewRequest struct {
	ProjectID    *uuid.UUID `json:"project_id"`
	ReviewerName string     `json:"reviewer_name"`
	Rating       int        `json:"rating"`
	Comment      string     `json:"comment"`
}

func (req newReviewRequest) toDomain() domain.NewReview {
	return domain.NewReview{
		ProjectID:    req.ProjectID,
		ReviewerName: req.ReviewerName,
		Rating:       req.Rating,
		Comment:      req.Comment,
	}
}

// inquiryReceipt is what the contact form gets back. Admin-only fields such
// as notes are not echoed.
type inquiryReceipt struct {
	ID        uuid.UUID `json:"id"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
}

type newInquiryRequest struct {
	ProjectID *uuid.UUID `json:"project_id"`
	Name      string     `json:"name"`
	Email     string     `json:"email"`
	Phone     string     `json:"phone"`
	Message   string     `json:"message"`
}

func (req newInquiryRequest) toDomain() domain.NewInquiry {
	return domain.NewInquiry{
		ProjectID: req.ProjectID,
		Name:      req.Name,
		Email:     req.Email,
		Phone:     req.Phone,
		Message:   req.Message,
	}
}

// settingsDTO is the public view of the settings row.
type settingsDTO struct {
	CompanyName              string    `json:"company_name"`
	Email                    string    `json:"email"`
	Phone                    string    `json:"phone"`
	Address                  string    `json:"address"`
	WhatsApp                 string    `json:"whatsapp"`
	KWhPerKWPerMonth         float64   `json:"kwh_per_kw_per_month"`
	TariffPerKWh             float64   `json:"tariff_per_kwh"`
	SystemCostPerKW          float64   `json:"system_cost_per_kw"`
	SubsidyPercentage        float64   `json:"subsidy_percentage"`
	MaintenanceCostPerKWYear float64   `json:"maintenance_cost_per_kw_year"`
	CarouselSpeed            int       `json:"carousel_speed"`
	MapCenterLat             float64   `json:"map_center_lat"`
	MapCenterLng             float64   `json:"map_center_lng"`
	MapZoom                  int       `json:"map_zoom"`
	UpdatedAt                time.Time `json:"updated_at"`
}

func toSettingsDTO(s domain.Settings) settingsDTO {
	return settingsDTO{
		CompanyName:              s.CompanyName,
		Email:                    s.Email,
		Phone:                    s.Phone,
		Address:                  s.Address,
		WhatsApp:                 s.WhatsApp,
		KWhPerKWPerMonth:         s.KWhPerKWPerMonth,
		TariffPerKWh:             s.TariffPerKWh,
		SystemCostPerKW:          s.SystemCostPerKW,
		SubsidyPercentage:        s.SubsidyPercentage,
		MaintenanceCostPerKWYear: s.MaintenanceCostPerKWYear,
		CarouselSpeed:            s.CarouselSpeed,
		MapCenterLat:             s.MapCenterLat,
		MapCenterLng:             s.MapCenterLng,
		MapZoom:                  s.MapZoom,
		UpdatedAt:                s.UpdatedAt,
	}
}

type calculatorRequest struct {
	Monthly float64 `json:"monthly"`
	// Input is "bill" (currency, the default) or "energy" (kWh).
	Input string `json:"input"`
}

// calculatorResponse mirrors calculator.Results. PaybackPeriodYears is null
// when the system never pays back, since JSON has no infinity.
type calculatorResponse struct {
	MonthlyEnergyKWh     float64  `json:"monthly_energy_kwh"`
	MonthlyCost          float64  `json:"monthly_cost"`
	RecommendedSystemKW  float64  `json:"recommended_system_kw"`
	SystemCost           float64  `json:"system_cost"`
	Subsidy              float64  `json:"subsidy"`
	NetCost              float64  `json:"net_cost"`
	MonthlyGenerationKWh float64  `json:"monthly_generation_kwh"`
	MonthlySavings       float64  `json:"monthly_savings"`
	YearlySavings        float64  `json:"yearly_savings"`
	SavingsPercentage    float64  `json:"savings_percentage"`
	PaybackPeriodYears   *float64 `json:"payback_period_years"`
	MaintenanceTotal     float64  `json:"maintenance_total"`
	NetLifetimeSavings   float64  `json:"net_lifetime_savings"`
	CO2ReductionKg       float64  `json:"co2_reduction_kg"`
}

func toCalculatorResponse(r calculator.Results) calculatorResponse {
	out := calculatorResponse{
		MonthlyEnergyKWh:     r.MonthlyEnergyKWh,
		MonthlyCost:          r.MonthlyCost,
		RecommendedSystemKW:  r.RecommendedSystemKW,
		SystemCost:           r.SystemCost,
		Subsidy:              r.Subsidy,
		NetCost:              r.NetCost,
		MonthlyGenerationKWh: r.MonthlyGenerationKWh,
		MonthlySavings:       r.MonthlySavings,
		YearlySavings:        r.YearlySavings,
		SavingsPercentage:    r.SavingsPercentage,
		MaintenanceTotal:     r.MaintenanceTotal,
		NetLifetimeSavings:   r.NetLifetimeSavings,
		CO2ReductionKg:       r.CO2ReductionKg,
	}
	if r.PaybackReachable && !math.IsInf(r.PaybackPeriodYears, 0) {
		payback := r.PaybackPeriodYears
		out.PaybackPeriodYears = &payback
	}
	return out
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

func mapSlice[T, D any](in []T, fn func(T) D) []D {
	out := make([]D, 0, len(in))
	for _, v := range in {
		out = append(out, fn(v))
	}
	return out
}
