package domain

import "time"

// SettingsID is the primary key of the single settings row.
const SettingsID = 1

// Settings is the organization-wide singleton: contact details plus the
// tunables used by the savings calculator and the project map.
type Settings struct {
	ID          int
	CompanyName string
	Email       string
	Phone       string
	Address     string
	WhatsApp    string

	KWhPerKWPerMonth         float64
	TariffPerKWh             float64
	SystemCostPerKW          float64
	SubsidyPercentage        float64
	MaintenanceCostPerKWYear float64

	CarouselSpeed int
	MapCenterLat  float64
	MapCenterLng  float64
	MapZoom       int

	UpdatedAt time.Time
}

// DefaultSettings returns the values the settings row is seeded with.
func DefaultSettings() Settings {
	return Settings{
		ID:                       SettingsID,
		CompanyName:              "SunGrid Solar",
		Email:                    "hello@sungrid.example",
		Phone:                    "+91 98765 43210",
		Address:                  "12 MG Road, Pune, Maharashtra",
		WhatsApp:                 "+919876543210",
		KWhPerKWPerMonth:         120,
		TariffPerKWh:             8,
		SystemCostPerKW:          50000,
		SubsidyPercentage:        30,
		MaintenanceCostPerKWYear: 500,
		CarouselSpeed:            5000,
		MapCenterLat:             18.5204,
		MapCenterLng:             73.8567,
		MapZoom:                  6,
	}
}

// SettingsPatch is a partial update of the settings row.
type SettingsPatch struct {
	CompanyName *string
	Email       *string
	Phone       *string
	Address     *string
	WhatsApp    *string

	KWhPerKWPerMonth         *float64
	TariffPerKWh             *float64
	SystemCostPerKW          *float64
	SubsidyPercentage        *float64
	MaintenanceCostPerKWYear *float64

	CarouselSpeed *int
	MapCenterLat  *float64
	MapCenterLng  *float64
	MapZoom       *int
}

func (p SettingsPatch) Validate() error {
	var errs []FieldError
	if p.CompanyName != nil && *p.CompanyName == "" {
		errs = append(errs, FieldError{Field: "company_name", Message: "required"})
	}
	if p.Email != nil && *p.Email != "" {
		errs = validateEmail(errs, *p.Email)
	}
	errs = positive(errs, "kwh_per_kw_per_month", p.KWhPerKWPerMonth)
	errs = positive(errs, "tariff_per_kwh", p.TariffPerKWh)
	errs = nonNegative(errs, "system_cost_per_kw", p.SystemCostPerKW)
	errs = nonNegative(errs, "maintenance_cost_per_kw_year", p.MaintenanceCostPerKWYear)
	if v := p.SubsidyPercentage; v != nil && (*v < 0 || *v > 100) {
		errs = append(errs, FieldError{Field: "subsidy_percentage", Message: "must be between 0 and 100"})
	}
	if v := p.CarouselSpeed; v != nil && *v <= 0 {
		errs = append(errs, FieldError{Field: "carousel_speed", Message: "must be positive"})
	}
	if v := p.MapCenterLat; v != nil && (*v < -90 || *v > 90) {
		errs = append(errs, FieldError{Field: "map_center_lat", Message: "must be between -90 and 90"})
	}
	if v := p.MapCenterLng; v != nil && (*v < -180 || *v > 180) {
		errs = append(errs, FieldError{Field: "map_center_lng", Message: "must be between -180 and 180"})
	}
	if v := p.MapZoom; v != nil && (*v < 1 || *v > 20) {
		errs = append(errs, FieldError{Field: "map_zoom", Message: "must be between 1 and 20"})
	}
	return validationResult(errs)
}

func (p SettingsPatch) IsEmpty() bool {
	return p.CompanyName == nil && p.Email == nil && p.Phone == nil &&
		p.Address == nil && p.WhatsApp == nil && p.KWhPerKWPerMonth == nil &&
		p.TariffPerKWh == nil && p.SystemCostPerKW == nil &&
		p.SubsidyPercentage == nil && p.MaintenanceCostPerKWYear == nil &&
		p.CarouselSpeed == nil && p.MapCenterLat == nil &&
		p.MapCenterLng == nil && p.MapZoom == nil
}

// Apply merges the patch onto s. The ID never changes.
func (s Settings) Apply(p SettingsPatch) Settings {
	setIf(&s.CompanyName, p.CompanyName)
	setIf(&s.Email, p.Email)
	setIf(&s.Phone, p.Phone)
	setIf(&s.Address, p.Address)
	setIf(&s.WhatsApp, p.WhatsApp)
	setIf(&s.KWhPerKWPerMonth, p.KWhPerKWPerMonth)
	setIf(&s.TariffPerKWh, p.TariffPerKWh)
	setIf(&s.SystemCostPerKW, p.SystemCostPerKW)
	setIf(&s.SubsidyPercentage, p.SubsidyPercentage)
	setIf(&s.MaintenanceCostPerKWYear, p.MaintenanceCostPerKWYear)
	setIf(&s.CarouselSpeed, p.CarouselSpeed)
	setIf(&s.MapCenterLat, p.MapCenterLat)
	setIf(&s.MapCenterLng, p.MapCenterLng)
	setIf(&s.MapZoom, p.MapZoom)
	s.ID = SettingsID
	return s
}

func setIf[T any](dst *T, v *T) {
	if v != nil {
		*dst = *v
	}
}

func positive(errs []FieldError, field string, v *float64) []FieldError {
	if v != nil && *v <= 0 {
		return append(errs, FieldError{Field: field, Message: "must be positive"})
	}
	return errs
}

func nonNegative(errs []FieldError, field string, v *float64) []FieldError {
	if v != nil && *v < 0 {
		return append(errs, FieldError{Field: field, Message: "must not be negative"})
	}
	return errs
}
