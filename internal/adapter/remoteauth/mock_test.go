package remoteauth

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/heartmarshall/solarsite/internal/adapter/postgres/authstore"
)

type credentialStoreMock struct {
	CredentialByEmailFunc func(ctx context.Context, email string) (*authstore.Credential, error)
	CreateSessionFunc     func(ctx context.Context, userID uuid.UUID, expiresAt time.Time) (authstore.SessionRecord, error)
	SessionFunc           func(ctx context.Context, id uuid.UUID) (authstore.SessionRecord, error)
	RevokeSessionFunc     func(ctx context.Context, id uuid.UUID) error

	mu      sync.Mutex
	revoked []uuid.UUID
}

func (m *credentialStoreMock) CredentialByEmail(ctx context.Context, email string) (*authstore.Credential, error) {
	return m.CredentialByEmailFunc(ctx, email)
}

func (m *credentialStoreMock) CreateSession(ctx context.Context, userID uuid.UUID, expiresAt time.Time) (authstore.SessionRecord, error) {
	return m.CreateSessionFunc(ctx, userID, expiresAt)
}

func (m *credentialStoreMock) Session(ctx context.Context, id uuid.UUID) (authstore.SessionRecord, error) {
	return m.SessionFunc(ctx, id)
}

func (m *credentialStoreMock) RevokeSession(ctx context.Context, id uuid.UUID) error {
	m.mu.Lock()
	m.revoked = append(m.revoked, id)
	m.mu.Unlock()
	if m.RevokeSessionFunc == nil {
		return nil
	}
	return m.RevokeSessionFunc(ctx, id)
}

type memTokenStore struct {
	mu    sync.Mutex
	token string
}

func (s *memTokenStore) SessionToken() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.token, nil
}

func (s *memTokenStore) SetSessionToken(token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = token
	return nil
}
