package domain

// ProjectStatus is the lifecycle state of an installation project.
type ProjectStatus string

const (
	ProjectStatusActive    ProjectStatus = "active"
	ProjectStatusCompleted ProjectStatus = "completed"
	ProjectStatusPending   ProjectStatus = "pending"
)

func (s ProjectStatus) String() string { return string(s) }

func (s ProjectStatus) IsValid() bool {
	switch s {
	case ProjectStatusActive, ProjectStatusCompleted, ProjectStatusPending:
		return true
	}
	return false
}

// InquiryStatus is the handling state of a customer inquiry.
type InquiryStatus string

const (
	InquiryStatusNew        InquiryStatus = "new"
	InquiryStatusInProgress InquiryStatus = "in_progress"
	InquiryStatusResolved   InquiryStatus = "resolved"
	InquiryStatusArchived   InquiryStatus = "archived"
)

func (s InquiryStatus) String() string { return string(s) }

func (s InquiryStatus) IsValid() bool {
	switch s {
	case InquiryStatusNew, InquiryStatusInProgress, InquiryStatusResolved, InquiryStatusArchived:
		return true
	}
	return false
}

// AuthEventKind identifies a session change pushed by an authenticator.
type AuthEventKind string

const (
	AuthEventSignedIn       AuthEventKind = "SIGNED_IN"
	AuthEventSignedOut      AuthEventKind = "SIGNED_OUT"
	AuthEventSessionExpired AuthEventKind = "SESSION_EXPIRED"
)

func (k AuthEventKind) String() string { return string(k) }
