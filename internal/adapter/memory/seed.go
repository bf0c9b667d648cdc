package memory

import (
	_ "embed"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/heartmarshall/solarsite/internal/domain"
)

//go:embed seed.yaml
var seedYAML []byte

type seedFile struct {
	Projects  []seedProject `yaml:"projects"`
	Reviews   []seedReview  `yaml:"reviews"`
	Inquiries []seedInquiry `yaml:"inquiries"`
}

type seedProject struct {
	ID               uuid.UUID  `yaml:"id"`
	Title            string     `yaml:"title"`
	Description      string     `yaml:"description"`
	CapacityKW       float64    `yaml:"capacity_kw"`
	Address          string     `yaml:"address"`
	City             string     `yaml:"city"`
	State            string     `yaml:"state"`
	Latitude         float64    `yaml:"latitude"`
	Longitude        float64    `yaml:"longitude"`
	Images           []string   `yaml:"images"`
	InstallationDate *time.Time `yaml:"installation_date"`
	Status           string     `yaml:"status"`
	Tags             []string   `yaml:"tags"`
	CreatedAt        time.Time  `yaml:"created_at"`
}

type seedReview struct {
	ID            uuid.UUID  `yaml:"id"`
	ProjectID     *uuid.UUID `yaml:"project_id"`
	ReviewerName  string     `yaml:"reviewer_name"`
	Rating        int        `yaml:"rating"`
	Comment       string     `yaml:"comment"`
	IsApproved    bool       `yaml:"is_approved"`
	AdminResponse *string    `yaml:"admin_response"`
	CreatedAt     time.Time  `yaml:"created_at"`
}

type seedInquiry struct {
	ID        uuid.UUID  `yaml:"id"`
	ProjectID *uuid.UUID `yaml:"project_id"`
	Name      string     `yaml:"name"`
	Email     string     `yaml:"email"`
	Phone     string     `yaml:"phone"`
	Message   string     `yaml:"message"`
	Status    string     `yaml:"status"`
	Notes     *string    `yaml:"notes"`
	CreatedAt time.Time  `yaml:"created_at"`
}

// NewSeeded creates a DB pre-populated with the embedded demo dataset.
func NewSeeded(opts ...Option) (*DB, error) {
	db := New(opts...)
	if err := db.load(seedYAML); err != nil {
		return nil, fmt.Errorf("memory.NewSeeded: %w", err)
	}
	return db, nil
}

func (db *DB) load(data []byte) error {
	var f seedFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return fmt.Errorf("parse seed: %w", err)
	}

	db.mu.Lock()
	defer db.mu.Unlock()

	for _, sp := range f.Projects {
		status := domain.ProjectStatus(sp.Status)
		if status == "" {
			status = domain.ProjectStatusActive
		}
		if !status.IsValid() {
			return fmt.Errorf("project %s: invalid status %q", sp.ID, sp.Status)
		}
		created := sp.CreatedAt.UTC().Truncate(time.Microsecond)
		p := domain.Project{
			ID:               sp.ID,
			Title:            sp.Title,
			Description:      sp.Description,
			CapacityKW:       sp.CapacityKW,
			Address:          sp.Address,
			City:             sp.City,
			State:            sp.State,
			Latitude:         sp.Latitude,
			Longitude:        sp.Longitude,
			Images:           sp.Images,
			InstallationDate: sp.InstallationDate,
			Status:           status,
			Tags:             sp.Tags,
			CreatedAt:        created,
			UpdatedAt:        created,
		}
		db.projects[p.ID] = p.Clone()
	}

	for _, sr := range f.Reviews {
		if sr.Rating < 1 || sr.Rating > 5 {
			return fmt.Errorf("review %s: rating %d out of range", sr.ID, sr.Rating)
		}
		created := sr.CreatedAt.UTC().Truncate(time.Microsecond)
		db.reviews[sr.ID] = domain.Review{
			ID:            sr.ID,
			ProjectID:     sr.ProjectID,
			ReviewerName:  sr.ReviewerName,
			Rating:        sr.Rating,
			Comment:       sr.Comment,
			IsApproved:    sr.IsApproved,
			AdminResponse: sr.AdminResponse,
			CreatedAt:     created,
			UpdatedAt:     created,
		}
	}

	for _, si := range f.Inquiries {
		status := domain.InquiryStatus(si.Status)
		if status == "" {
			status = domain.InquiryStatusNew
		}
		if !status.IsValid() {
			return fmt.Errorf("inquiry %s: invalid status %q", si.ID, si.Status)
		}
		created := si.CreatedAt.UTC().Truncate(time.Microsecond)
		db.inquiries[si.ID] = domain.Inquiry{
			ID:        si.ID,
			ProjectID: si.ProjectID,
			Name:      si.Name,
			Email:     si.Email,
			Phone:     si.Phone,
			Message:   si.Message,
			Status:    status,
			Notes:     si.Notes,
			CreatedAt: created,
			UpdatedAt: created,
		}
	}
	return nil
}
