package domain

import "math"

// DashboardStats is the admin overview, derived on every request.
type DashboardStats struct {
	TotalProjects    int
	TotalCapacity    float64
	PendingInquiries int
	PendingReviews   int
	TotalInquiries   int
	ApprovedReviews  int
}

// RoundCapacity rounds a kW total to the watt. Float sums differ in their
// last bits with summation order, and both backends report through it.
func RoundCapacity(kw float64) float64 {
	return math.Round(kw*1000) / 1000
}
