package memory

import (
	"context"
	"slices"

	"github.com/heartmarshall/solarsite/internal/domain"
)

// StatsStore derives dashboard statistics.
type StatsStore struct {
	db *DB
}

// Compute walks every collection once under a single read lock.
func (s *StatsStore) Compute(_ context.Context) (domain.DashboardStats, error) {
	s.db.mu.RLock()
	defer s.db.mu.RUnlock()

	var st domain.DashboardStats
	st.TotalProjects = len(s.db.projects)

	// Map order is random; sum in a fixed order so the total is stable.
	capacities := make([]float64, 0, len(s.db.projects))
	for _, p := range s.db.projects {
		capacities = append(capacities, p.CapacityKW)
	}
	slices.Sort(capacities)
	for _, kw := range capacities {
		st.TotalCapacity += kw
	}
	st.TotalCapacity = domain.RoundCapacity(st.TotalCapacity)

	for _, r := range s.db.reviews {
		if r.IsApproved {
			st.ApprovedReviews++
		} else {
			st.PendingReviews++
		}
	}
	st.TotalInquiries = len(s.db.inquiries)
	for _, i := range s.db.inquiries {
		if i.Status == domain.InquiryStatusNew {
			st.PendingInquiries++
		}
	}
	return st, nil
}
