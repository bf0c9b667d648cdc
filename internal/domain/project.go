package domain

import (
	"slices"
	"time"

	"github.com/google/uuid"
)

// Project is a completed or ongoing solar installation shown in the catalogue.
type Project struct {
	ID               uuid.UUID
	Title            string
	Description      string
	CapacityKW       float64
	Address          string
	City             string
	State            string
	Latitude         float64
	Longitude        float64
	Images           []string
	InstallationDate *time.Time
	Status           ProjectStatus
	Tags             []string
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// ProjectRef is the slice of a project embedded in reviews and inquiries.
type ProjectRef struct {
	Title string
	City  string
}

// Clone returns a deep copy so callers cannot alias stored slices.
func (p Project) Clone() Project {
	p.Images = cloneStrings(p.Images)
	p.Tags = cloneStrings(p.Tags)
	if p.InstallationDate != nil {
		d := *p.InstallationDate
		p.InstallationDate = &d
	}
	return p
}

// NewProject holds the fields accepted when creating a project.
type NewProject struct {
	Title            string
	Description      string
	CapacityKW       float64
	Address          string
	City             string
	State            string
	Latitude         float64
	Longitude        float64
	Images           []string
	InstallationDate *time.Time
	Status           ProjectStatus
	Tags             []string
}

// WithDefaults fills omitted optional fields: status "active" and empty
// image/tag sequences.
func (in NewProject) WithDefaults() NewProject {
	if in.Status == "" {
		in.Status = ProjectStatusActive
	}
	in.Images = cloneStrings(in.Images)
	in.Tags = cloneStrings(in.Tags)
	return in
}

// Validate checks the create input.
func (in NewProject) Validate() error {
	var errs []FieldError
	errs = validateTitle(errs, in.Title)
	errs = validateCapacity(errs, in.CapacityKW)
	errs = validateCoordinates(errs, in.Latitude, in.Longitude)
	if in.Status != "" && !in.Status.IsValid() {
		errs = append(errs, FieldError{Field: "status", Message: "must be one of active, completed, pending"})
	}
	return validationResult(errs)
}

// ProjectPatch is a partial update; nil fields are left unchanged.
type ProjectPatch struct {
	Title                 *string
	Description           *string
	CapacityKW            *float64
	Address               *string
	City                  *string
	State                 *string
	Latitude              *float64
	Longitude             *float64
	Images                *[]string
	InstallationDate      *time.Time
	ClearInstallationDate bool
	Status                *ProjectStatus
	Tags                  *[]string
}

// Validate checks only the fields that are set.
func (p ProjectPatch) Validate() error {
	var errs []FieldError
	if p.Title != nil {
		errs = validateTitle(errs, *p.Title)
	}
	if p.CapacityKW != nil {
		errs = validateCapacity(errs, *p.CapacityKW)
	}
	if p.Latitude != nil && (*p.Latitude < -90 || *p.Latitude > 90) {
		errs = append(errs, FieldError{Field: "latitude", Message: "must be between -90 and 90"})
	}
	if p.Longitude != nil && (*p.Longitude < -180 || *p.Longitude > 180) {
		errs = append(errs, FieldError{Field: "longitude", Message: "must be between -180 and 180"})
	}
	if p.Status != nil && !p.Status.IsValid() {
		errs = append(errs, FieldError{Field: "status", Message: "must be one of active, completed, pending"})
	}
	if p.InstallationDate != nil && p.ClearInstallationDate {
		errs = append(errs, FieldError{Field: "installation_date", Message: "cannot set and clear at once"})
	}
	return validationResult(errs)
}

// IsEmpty reports whether the patch changes nothing.
func (p ProjectPatch) IsEmpty() bool {
	return p.Title == nil && p.Description == nil && p.CapacityKW == nil &&
		p.Address == nil && p.City == nil && p.State == nil &&
		p.Latitude == nil && p.Longitude == nil && p.Images == nil &&
		p.InstallationDate == nil && !p.ClearInstallationDate &&
		p.Status == nil && p.Tags == nil
}

// Apply merges the patch onto p. UpdatedAt is left to the store.
func (p Project) Apply(patch ProjectPatch) Project {
	out := p.Clone()
	if patch.Title != nil {
		out.Title = *patch.Title
	}
	if patch.Description != nil {
		out.Description = *patch.Description
	}
	if patch.CapacityKW != nil {
		out.CapacityKW = *patch.CapacityKW
	}
	if patch.Address != nil {
		out.Address = *patch.Address
	}
	if patch.City != nil {
		out.City = *patch.City
	}
	if patch.State != nil {
		out.State = *patch.State
	}
	if patch.Latitude != nil {
		out.Latitude = *patch.Latitude
	}
	if patch.Longitude != nil {
		out.Longitude = *patch.Longitude
	}
	if patch.Images != nil {
		out.Images = cloneStrings(*patch.Images)
	}
	if patch.InstallationDate != nil {
		d := *patch.InstallationDate
		out.InstallationDate = &d
	}
	if patch.ClearInstallationDate {
		out.InstallationDate = nil
	}
	if patch.Status != nil {
		out.Status = *patch.Status
	}
	if patch.Tags != nil {
		out.Tags = cloneStrings(*patch.Tags)
	}
	return out
}

func validateTitle(errs []FieldError, title string) []FieldError {
	switch {
	case title == "":
		return append(errs, FieldError{Field: "title", Message: "required"})
	case len(title) > 200:
		return append(errs, FieldError{Field: "title", Message: "too long"})
	}
	return errs
}

func validateCapacity(errs []FieldError, kw float64) []FieldError {
	if kw < 0 {
		return append(errs, FieldError{Field: "capacity_kw", Message: "must not be negative"})
	}
	return errs
}

func validateCoordinates(errs []FieldError, lat, lng float64) []FieldError {
	if lat < -90 || lat > 90 {
		errs = append(errs, FieldError{Field: "latitude", Message: "must be between -90 and 90"})
	}
	if lng < -180 || lng > 180 {
		errs = append(errs, FieldError{Field: "longitude", Message: "must be between -180 and 180"})
	}
	return errs
}

// cloneStrings copies s and never returns nil.
func cloneStrings(s []string) []string {
	if s == nil {
		return []string{}
	}
	return slices.Clone(s)
}
