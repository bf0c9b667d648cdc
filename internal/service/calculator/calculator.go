// Package calculator estimates rooftop solar sizing and savings from a
// monthly bill or consumption figure.
package calculator

import (
	"math"

	"github.com/heartmarshall/solarsite/internal/domain"
)

const (
	// LifetimeYears is the horizon for lifetime totals.
	LifetimeYears = 25
	// CO2KgPerKWh is the grid emissions factor.
	CO2KgPerKWh = 0.85
	// MaxSavingsPercentage caps the savings share of the current bill.
	MaxSavingsPercentage = 100
)

// Results is the savings estimate.
type Results struct {
	MonthlyEnergyKWh     float64
	MonthlyCost          float64
	RecommendedSystemKW  float64
	SystemCost           float64
	Subsidy              float64
	NetCost              float64
	MonthlyGenerationKWh float64
	MonthlySavings       float64
	YearlySavings        float64
	SavingsPercentage    float64
	PaybackPeriodYears   float64
	MaintenanceTotal     float64
	NetLifetimeSavings   float64
	CO2ReductionKg       float64
	PaybackReachable     bool
}

// ComputeSavings derives the estimate. monthly is kWh when inputIsEnergy is
// true and currency otherwise. ok is false for non-positive input or
// settings that would divide by zero.
//
// PaybackPeriodYears is +Inf (and PaybackReachable false) when the system
// saves nothing per year.
func ComputeSavings(monthly float64, inputIsEnergy bool, s domain.Settings) (Results, bool) {
	if !(monthly > 0) || math.IsInf(monthly, 0) {
		return Results{}, false
	}
	if !(s.TariffPerKWh > 0) || !(s.KWhPerKWPerMonth > 0) {
		return Results{}, false
	}

	var r Results
	if inputIsEnergy {
		r.MonthlyEnergyKWh = monthly
		r.MonthlyCost = monthly * s.TariffPerKWh
	} else {
		r.MonthlyCost = monthly
		r.MonthlyEnergyKWh = monthly / s.TariffPerKWh
	}

	size := math.Ceil(r.MonthlyEnergyKWh / s.KWhPerKWPerMonth)
	r.RecommendedSystemKW = size

	r.SystemCost = size * s.SystemCostPerKW
	r.Subsidy = r.SystemCost * s.SubsidyPercentage / 100
	r.NetCost = r.SystemCost - r.Subsidy

	r.MonthlyGenerationKWh = size * s.KWhPerKWPerMonth
	r.MonthlySavings = r.MonthlyGenerationKWh * s.TariffPerKWh
	r.YearlySavings = r.MonthlySavings * 12

	r.SavingsPercentage = math.Min(MaxSavingsPercentage, r.MonthlySavings/r.MonthlyCost*100)

	if r.YearlySavings > 0 {
		r.PaybackPeriodYears = r.NetCost / r.YearlySavings
		r.PaybackReachable = true
	} else {
		r.PaybackPeriodYears = math.Inf(1)
	}

	r.MaintenanceTotal = size * s.MaintenanceCostPerKWYear * LifetimeYears
	r.NetLifetimeSavings = r.YearlySavings*LifetimeYears - r.NetCost - r.MaintenanceTotal
	r.CO2ReductionKg = r.MonthlyGenerationKWh * 12 * LifetimeYears * CO2KgPerKWh

	return r, true
}
