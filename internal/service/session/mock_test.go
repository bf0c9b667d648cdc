package session

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/heartmarshall/solarsite/internal/domain"
)

// profileSourceMock serves profiles from a map. When gate is set, lookups
// for ids in it block until the gate channel is closed or ctx ends.
type profileSourceMock struct {
	mu       sync.Mutex
	profiles map[uuid.UUID]domain.Profile
	gates    map[uuid.UUID]chan struct{}
	calls    []uuid.UUID
	err      error
}

func newProfileSource() *profileSourceMock {
	return &profileSourceMock{
		profiles: make(map[uuid.UUID]domain.Profile),
		gates:    make(map[uuid.UUID]chan struct{}),
	}
}

func (m *profileSourceMock) put(p domain.Profile) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.profiles[p.ID] = p
}

func (m *profileSourceMock) gate(id uuid.UUID) chan struct{} {
	m.mu.Lock()
	defer m.mu.Unlock()
	ch := make(chan struct{})
	m.gates[id] = ch
	return ch
}

func (m *profileSourceMock) GetProfile(ctx context.Context, id uuid.UUID) (*domain.Profile, error) {
	m.mu.Lock()
	m.calls = append(m.calls, id)
	gate := m.gates[id]
	m.mu.Unlock()

	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	p, ok := m.profiles[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &p, nil
}

func (m *profileSourceMock) callCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.calls)
}

// authMock is a scriptable Authenticator.
type authMock struct {
	mu         sync.Mutex
	session    *domain.Session
	signIn     func(ctx context.Context, email, password string) (*domain.Session, error)
	signOutErr error
	signOuts   int
	subs       map[int]func(domain.AuthEvent)
	next       int
}

func newAuthMock() *authMock {
	return &authMock{subs: make(map[int]func(domain.AuthEvent))}
}

func (a *authMock) Session(context.Context) (*domain.Session, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.session, nil
}

func (a *authMock) SignInWithPassword(ctx context.Context, email, password string) (*domain.Session, error) {
	return a.signIn(ctx, email, password)
}

func (a *authMock) SignOut(context.Context) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.signOuts++
	return a.signOutErr
}

func (a *authMock) Subscribe(fn func(domain.AuthEvent)) func() {
	a.mu.Lock()
	defer a.mu.Unlock()
	id := a.next
	a.next++
	a.subs[id] = fn
	return func() {
		a.mu.Lock()
		defer a.mu.Unlock()
		delete(a.subs, id)
	}
}

func (a *authMock) emit(ev domain.AuthEvent) {
	a.mu.Lock()
	subs := make([]func(domain.AuthEvent), 0, len(a.subs))
	for _, fn := range a.subs {
		subs = append(subs, fn)
	}
	a.mu.Unlock()
	for _, fn := range subs {
		fn(ev)
	}
}

func (a *authMock) subscribers() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.subs)
}
