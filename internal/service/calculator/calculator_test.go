package calculator

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/heartmarshall/solarsite/internal/domain"
)

func exampleSettings() domain.Settings {
	s := domain.DefaultSettings()
	s.TariffPerKWh = 8.5
	s.KWhPerKWPerMonth = 130
	s.SystemCostPerKW = 45000
	s.SubsidyPercentage = 30
	s.MaintenanceCostPerKWYear = 500
	return s
}

func TestComputeSavings_BillExample(t *testing.T) {
	t.Parallel()

	r, ok := ComputeSavings(5000, false, exampleSettings())
	require.True(t, ok)

	assert.InDelta(t, 588.235, r.MonthlyEnergyKWh, 0.001)
	assert.Equal(t, 5000.0, r.MonthlyCost)
	assert.Equal(t, 5.0, r.RecommendedSystemKW)
	assert.Equal(t, 225000.0, r.SystemCost)
	assert.Equal(t, 67500.0, r.Subsidy)
	assert.Equal(t, 157500.0, r.NetCost)
	assert.Equal(t, 650.0, r.MonthlyGenerationKWh)
	assert.Equal(t, 5525.0, r.MonthlySavings)
	assert.Equal(t, 66300.0, r.YearlySavings)
	assert.Equal(t, 100.0, r.SavingsPercentage, "generation exceeds the bill, capped")
	assert.InDelta(t, 2.3756, r.PaybackPeriodYears, 0.0001)
	assert.True(t, r.PaybackReachable)
	assert.Equal(t, 62500.0, r.MaintenanceTotal)
	assert.Equal(t, 66300.0*25-157500-62500, r.NetLifetimeSavings)
	assert.InDelta(t, 650*12*25*0.85, r.CO2ReductionKg, 1e-9)
}

func TestComputeSavings_EnergyInput(t *testing.T) {
	t.Parallel()

	r, ok := ComputeSavings(260, true, exampleSettings())
	require.True(t, ok)

	assert.Equal(t, 260.0, r.MonthlyEnergyKWh)
	assert.Equal(t, 260*8.5, r.MonthlyCost)
	assert.Equal(t, 2.0, r.RecommendedSystemKW)
	assert.Equal(t, 100.0, r.SavingsPercentage)
}

func TestComputeSavings_PercentageNeverExceeds100(t *testing.T) {
	t.Parallel()

	for _, bill := range []float64{0.01, 1, 99, 1105, 5000, 1e6, 1e12} {
		r, ok := ComputeSavings(bill, false, exampleSettings())
		require.True(t, ok, "bill %v", bill)
		assert.LessOrEqual(t, r.SavingsPercentage, 100.0, "bill %v", bill)
		assert.GreaterOrEqual(t, r.RecommendedSystemKW, 1.0)
	}
}

func TestComputeSavings_RejectsInput(t *testing.T) {
	t.Parallel()

	for _, v := range []float64{0, -1, math.NaN(), math.Inf(1)} {
		_, ok := ComputeSavings(v, false, exampleSettings())
		assert.False(t, ok, "input %v", v)
	}

	s := exampleSettings()
	s.TariffPerKWh = 0
	_, ok := ComputeSavings(100, false, s)
	assert.False(t, ok)

	s = exampleSettings()
	s.KWhPerKWPerMonth = -1
	_, ok = ComputeSavings(100, true, s)
	assert.False(t, ok)
}

func TestComputeSavings_Deterministic(t *testing.T) {
	t.Parallel()

	a, _ := ComputeSavings(3210, false, exampleSettings())
	b, _ := ComputeSavings(3210, false, exampleSettings())
	assert.Equal(t, a, b)
}
