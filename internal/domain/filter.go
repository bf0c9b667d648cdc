package domain

import (
	"slices"
	"strconv"
	"strings"

	"github.com/google/uuid"
)

// ProjectFilter narrows a project listing. All set criteria must hold.
// Search matches title, description, address, city and state.
type ProjectFilter struct {
	Search      string
	City        string
	State       string
	Status      ProjectStatus
	Tag         string
	MinCapacity *float64
	MaxCapacity *float64
}

// Matches reports whether p satisfies every criterion of the filter.
func (f ProjectFilter) Matches(p Project) bool {
	if term := NormalizeSearch(f.Search); term != "" &&
		!containsFold(term, p.Title, p.Description, p.Address, p.City, p.State) {
		return false
	}
	if f.City != "" && p.City != f.City {
		return false
	}
	if f.State != "" && p.State != f.State {
		return false
	}
	if f.Status != "" && p.Status != f.Status {
		return false
	}
	if f.Tag != "" && !slices.Contains(p.Tags, f.Tag) {
		return false
	}
	if f.MinCapacity != nil && p.CapacityKW < *f.MinCapacity {
		return false
	}
	if f.MaxCapacity != nil && p.CapacityKW > *f.MaxCapacity {
		return false
	}
	return true
}

// Key is a stable cache key for the filter.
func (f ProjectFilter) Key() string {
	return joinKey("project",
		NormalizeSearch(f.Search), f.City, f.State, string(f.Status), f.Tag,
		floatKey(f.MinCapacity), floatKey(f.MaxCapacity))
}

// ReviewFilter narrows a review listing. Search matches reviewer name and
// comment.
type ReviewFilter struct {
	Search     string
	ProjectID  *uuid.UUID
	IsApproved *bool
	MinRating  *int
	MaxRating  *int
}

func (f ReviewFilter) Matches(r Review) bool {
	if term := NormalizeSearch(f.Search); term != "" &&
		!containsFold(term, r.ReviewerName, r.Comment) {
		return false
	}
	if f.ProjectID != nil && (r.ProjectID == nil || *r.ProjectID != *f.ProjectID) {
		return false
	}
	if f.IsApproved != nil && r.IsApproved != *f.IsApproved {
		return false
	}
	if f.MinRating != nil && r.Rating < *f.MinRating {
		return false
	}
	if f.MaxRating != nil && r.Rating > *f.MaxRating {
		return false
	}
	return true
}

func (f ReviewFilter) Key() string {
	approved := ""
	if f.IsApproved != nil {
		approved = strconv.FormatBool(*f.IsApproved)
	}
	return joinKey("review",
		NormalizeSearch(f.Search), uuidKey(f.ProjectID), approved,
		intKey(f.MinRating), intKey(f.MaxRating))
}

// InquiryFilter narrows an inquiry listing. Search matches name, email,
// phone and message.
type InquiryFilter struct {
	Search    string
	Status    InquiryStatus
	ProjectID *uuid.UUID
}

func (f InquiryFilter) Matches(i Inquiry) bool {
	if term := NormalizeSearch(f.Search); term != "" &&
		!containsFold(term, i.Name, i.Email, i.Phone, i.Message) {
		return false
	}
	if f.Status != "" && i.Status != f.Status {
		return false
	}
	if f.ProjectID != nil && (i.ProjectID == nil || *i.ProjectID != *f.ProjectID) {
		return false
	}
	return true
}

func (f InquiryFilter) Key() string {
	return joinKey("inquiry", NormalizeSearch(f.Search), string(f.Status), uuidKey(f.ProjectID))
}

func joinKey(kind string, parts ...string) string {
	for i, p := range parts {
		parts[i] = strconv.Quote(p)
	}
	return kind + ":" + strings.Join(parts, ",")
}

func floatKey(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'g', -1, 64)
}

func intKey(v *int) string {
	if v == nil {
		return ""
	}
	return strconv.Itoa(*v)
}

func uuidKey(v *uuid.UUID) string {
	if v == nil {
		return ""
	}
	return v.String()
}

// newerFirst orders by created_at DESC, id DESC.
func newerFirst(aCreated, bCreated int64, aID, bID uuid.UUID) int {
	if aCreated != bCreated {
		if aCreated > bCreated {
			return -1
		}
		return 1
	}
	return -strings.Compare(aID.String(), bID.String())
}

// SortProjects orders projects newest first, ties broken by id descending.
func SortProjects(ps []Project) {
	slices.SortFunc(ps, func(a, b Project) int {
		return newerFirst(a.CreatedAt.UnixNano(), b.CreatedAt.UnixNano(), a.ID, b.ID)
	})
}

func SortReviews(rs []Review) {
	slices.SortFunc(rs, func(a, b Review) int {
		return newerFirst(a.CreatedAt.UnixNano(), b.CreatedAt.UnixNano(), a.ID, b.ID)
	})
}

func SortInquiries(is []Inquiry) {
	slices.SortFunc(is, func(a, b Inquiry) int {
		return newerFirst(a.CreatedAt.UnixNano(), b.CreatedAt.UnixNano(), a.ID, b.ID)
	})
}
