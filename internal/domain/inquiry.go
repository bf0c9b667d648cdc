package domain

import (
	"net/mail"
	"time"

	"github.com/google/uuid"
)

// Inquiry is a contact request left on the public site.
type Inquiry struct {
	ID        uuid.UUID
	ProjectID *uuid.UUID
	Name      string
	Email     string
	Phone     string
	Message   string
	Status    InquiryStatus
	Notes     *string
	CreatedAt time.Time
	UpdatedAt time.Time

	// Project carries only the title.
	Project *ProjectRef
}

func (i Inquiry) Clone() Inquiry {
	i.ProjectID = cloneUUID(i.ProjectID)
	i.Notes = cloneString(i.Notes)
	if i.Project != nil {
		ref := ProjectRef{Title: i.Project.Title}
		i.Project = &ref
	}
	return i
}

// NewInquiry holds the fields accepted from the contact form.
// Inquiries always start in status "new".
type NewInquiry struct {
	ProjectID *uuid.UUID
	Name      string
	Email     string
	Phone     string
	Message   string
}

func (in NewInquiry) WithDefaults() NewInquiry {
	in.ProjectID = cloneUUID(in.ProjectID)
	return in
}

func (in NewInquiry) Validate() error {
	var errs []FieldError
	if in.Name == "" {
		errs = append(errs, FieldError{Field: "name", Message: "required"})
	}
	errs = validateEmail(errs, in.Email)
	if in.Message == "" {
		errs = append(errs, FieldError{Field: "message", Message: "required"})
	}
	return validationResult(errs)
}

// InquiryPatch is a partial update applied from the admin console.
type InquiryPatch struct {
	ProjectID    *uuid.UUID
	ClearProject bool
	Name         *string
	Email        *string
	Phone        *string
	Message      *string
	Status       *InquiryStatus
	Notes        *string
	ClearNotes   bool
}

func (p InquiryPatch) Validate() error {
	var errs []FieldError
	if p.Name != nil && *p.Name == "" {
		errs = append(errs, FieldError{Field: "name", Message: "required"})
	}
	if p.Email != nil {
		errs = validateEmail(errs, *p.Email)
	}
	if p.Status != nil && !p.Status.IsValid() {
		errs = append(errs, FieldError{Field: "status", Message: "must be one of new, in_progress, resolved, archived"})
	}
	if p.ProjectID != nil && p.ClearProject {
		errs = append(errs, FieldError{Field: "project_id", Message: "cannot set and clear at once"})
	}
	if p.Notes != nil && p.ClearNotes {
		errs = append(errs, FieldError{Field: "notes", Message: "cannot set and clear at once"})
	}
	return validationResult(errs)
}

func (p InquiryPatch) IsEmpty() bool {
	return p.ProjectID == nil && !p.ClearProject && p.Name == nil &&
		p.Email == nil && p.Phone == nil && p.Message == nil &&
		p.Status == nil && p.Notes == nil && !p.ClearNotes
}

func (i Inquiry) Apply(patch InquiryPatch) Inquiry {
	out := i.Clone()
	if patch.ProjectID != nil {
		out.ProjectID = cloneUUID(patch.ProjectID)
	}
	if patch.ClearProject {
		out.ProjectID = nil
	}
	if patch.Name != nil {
		out.Name = *patch.Name
	}
	if patch.Email != nil {
		out.Email = *patch.Email
	}
	if patch.Phone != nil {
		out.Phone = *patch.Phone
	}
	if patch.Message != nil {
		out.Message = *patch.Message
	}
	if patch.Status != nil {
		out.Status = *patch.Status
	}
	if patch.Notes != nil {
		out.Notes = cloneString(patch.Notes)
	}
	if patch.ClearNotes {
		out.Notes = nil
	}
	return out
}

func validateEmail(errs []FieldError, email string) []FieldError {
	if email == "" {
		return append(errs, FieldError{Field: "email", Message: "required"})
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return append(errs, FieldError{Field: "email", Message: "invalid format"})
	}
	return errs
}
