package domain

import (
	"time"

	"github.com/google/uuid"
)

// Review is customer feedback, optionally tied to a project.
type Review struct {
	ID            uuid.UUID
	ProjectID     *uuid.UUID
	ReviewerName  string
	Rating        int
	Comment       string
	IsApproved    bool
	AdminResponse *string
	CreatedAt     time.Time
	UpdatedAt     time.Time

	Project *ProjectRef
}

// Clone returns a copy that shares no pointers with r.
func (r Review) Clone() Review {
	r.ProjectID = cloneUUID(r.ProjectID)
	r.AdminResponse = cloneString(r.AdminResponse)
	if r.Project != nil {
		ref := *r.Project
		r.Project = &ref
	}
	return r
}

// NewReview holds the fields accepted when a review is submitted.
// Reviews always start unapproved.
type NewReview struct {
	ProjectID    *uuid.UUID
	ReviewerName string
	Rating       int
	Comment      string
}

func (in NewReview) WithDefaults() NewReview {
	in.ProjectID = cloneUUID(in.ProjectID)
	return in
}

func (in NewReview) Validate() error {
	var errs []FieldError
	if in.ReviewerName == "" {
		errs = append(errs, FieldError{Field: "reviewer_name", Message: "required"})
	}
	errs = validateRating(errs, in.Rating)
	if in.Comment == "" {
		errs = append(errs, FieldError{Field: "comment", Message: "required"})
	}
	return validationResult(errs)
}

// ReviewPatch is a partial update. Approval goes through the dedicated
// approve operation so is_approved and admin_response change together.
type ReviewPatch struct {
	ProjectID          *uuid.UUID
	ClearProject       bool
	ReviewerName       *string
	Rating             *int
	Comment            *string
	AdminResponse      *string
	ClearAdminResponse bool
	IsApproved         *bool
}

func (p ReviewPatch) Validate() error {
	var errs []FieldError
	if p.ReviewerName != nil && *p.ReviewerName == "" {
		errs = append(errs, FieldError{Field: "reviewer_name", Message: "required"})
	}
	if p.Rating != nil {
		errs = validateRating(errs, *p.Rating)
	}
	if p.ProjectID != nil && p.ClearProject {
		errs = append(errs, FieldError{Field: "project_id", Message: "cannot set and clear at once"})
	}
	if p.AdminResponse != nil && p.ClearAdminResponse {
		errs = append(errs, FieldError{Field: "admin_response", Message: "cannot set and clear at once"})
	}
	return validationResult(errs)
}

func (p ReviewPatch) IsEmpty() bool {
	return p.ProjectID == nil && !p.ClearProject && p.ReviewerName == nil &&
		p.Rating == nil && p.Comment == nil && p.AdminResponse == nil &&
		!p.ClearAdminResponse && p.IsApproved == nil
}

// Apply merges the patch onto r. The embedded project reference is not
// recomputed here.
func (r Review) Apply(patch ReviewPatch) Review {
	out := r.Clone()
	if patch.ProjectID != nil {
		out.ProjectID = cloneUUID(patch.ProjectID)
	}
	if patch.ClearProject {
		out.ProjectID = nil
	}
	if patch.ReviewerName != nil {
		out.ReviewerName = *patch.ReviewerName
	}
	if patch.Rating != nil {
		out.Rating = *patch.Rating
	}
	if patch.Comment != nil {
		out.Comment = *patch.Comment
	}
	if patch.AdminResponse != nil {
		out.AdminResponse = cloneString(patch.AdminResponse)
	}
	if patch.ClearAdminResponse {
		out.AdminResponse = nil
	}
	if patch.IsApproved != nil {
		out.IsApproved = *patch.IsApproved
	}
	return out
}

// Approve marks the review approved and sets the admin response in one step.
// A nil response leaves the current one untouched.
func (r Review) Approve(response *string) Review {
	out := r.Clone()
	out.IsApproved = true
	if response != nil {
		out.AdminResponse = cloneString(response)
	}
	return out
}

func validateRating(errs []FieldError, rating int) []FieldError {
	if rating < 1 || rating > 5 {
		return append(errs, FieldError{Field: "rating", Message: "must be between 1 and 5"})
	}
	return errs
}

func cloneUUID(id *uuid.UUID) *uuid.UUID {
	if id == nil {
		return nil
	}
	v := *id
	return &v
}

func cloneString(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}
