package memory

import (
	"context"
	"crypto/subtle"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/heartmarshall/solarsite/internal/domain"
)

// FlagStore persists the standing demo session flag.
type FlagStore interface {
	DemoSession() (bool, error)
	SetDemoSession(on bool) error
}

// DemoAuth authenticates against a single fixed credential pair and keeps
// the signed-in state in a persisted flag. It also serves the demo profile.
type DemoAuth struct {
	email    string
	password string
	flags    FlagStore

	mu      sync.Mutex
	created time.Time
}

// NewDemoAuth creates a DemoAuth for the given credential pair.
func NewDemoAuth(email, password string, flags FlagStore) *DemoAuth {
	return &DemoAuth{
		email:    email,
		password: password,
		flags:    flags,
		created:  time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

// Session returns the demo session when the flag is set, nil otherwise.
func (a *DemoAuth) Session(_ context.Context) (*domain.Session, error) {
	on, err := a.flags.DemoSession()
	if err != nil {
		return nil, fmt.Errorf("memory.DemoAuth.Session: %w", err)
	}
	if !on {
		return nil, nil
	}
	return a.session(), nil
}

// SignInWithPassword accepts only the configured credential pair.
func (a *DemoAuth) SignInWithPassword(_ context.Context, email, password string) (*domain.Session, error) {
	emailOK := subtle.ConstantTimeCompare([]byte(email), []byte(a.email)) == 1
	passOK := subtle.ConstantTimeCompare([]byte(password), []byte(a.password)) == 1
	if !emailOK || !passOK {
		return nil, domain.ErrInvalidCredentials
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	if err := a.flags.SetDemoSession(true); err != nil {
		return nil, fmt.Errorf("memory.DemoAuth.SignInWithPassword: %w", err)
	}
	return a.session(), nil
}

// SignOut clears the persisted flag.
func (a *DemoAuth) SignOut(_ context.Context) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if err := a.flags.SetDemoSession(false); err != nil {
		return fmt.Errorf("memory.DemoAuth.SignOut: %w", err)
	}
	return nil
}

// Subscribe never delivers events: the demo session only changes through
// SignIn and SignOut, which the caller already observes.
func (a *DemoAuth) Subscribe(func(domain.AuthEvent)) func() {
	return func() {}
}

// GetProfile returns the demo profile for the demo identity.
func (a *DemoAuth) GetProfile(_ context.Context, id uuid.UUID) (*domain.Profile, error) {
	if id != domain.DemoIdentityID {
		return nil, fmt.Errorf("profile %s: %w", id, domain.ErrNotFound)
	}
	p := a.profile()
	return &p, nil
}

func (a *DemoAuth) session() *domain.Session {
	p := a.profile()
	return &domain.Session{
		Identity: domain.Identity{
			ID:       domain.DemoIdentityID,
			Email:    a.email,
			IsAdmin:  true,
			FullName: "Demo Admin",
		},
		Profile: &p,
	}
}

func (a *DemoAuth) profile() domain.Profile {
	return domain.Profile{
		ID:        domain.DemoIdentityID,
		IsAdmin:   true,
		FullName:  "Demo Admin",
		CreatedAt: a.created,
		UpdatedAt: a.created,
	}
}
