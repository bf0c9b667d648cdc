// Package session tracks who is signed in and what they may do. The
// Manager owns the identity, resolves the matching profile in the
// background and fans snapshots out to watchers.
package session

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/heartmarshall/solarsite/internal/domain"
)

// Authenticator is the sign-in backend: the demo authenticator in memory
// mode, the remote client otherwise.
type Authenticator interface {
	Session(ctx context.Context) (*domain.Session, error)
	SignInWithPassword(ctx context.Context, email, password string) (*domain.Session, error)
	SignOut(ctx context.Context) error
	Subscribe(fn func(domain.AuthEvent)) (unsubscribe func())
}

// DefaultSignInTimeout bounds the credential exchange.
const DefaultSignInTimeout = 15 * time.Second

// Option configures a Manager.
type Option func(*Manager)

// WithSignInTimeout overrides DefaultSignInTimeout.
func WithSignInTimeout(d time.Duration) Option {
	return func(m *Manager) { m.signInTimeout = d }
}

// WithProfileTimeout overrides the resolver's default lookup bound.
func WithProfileTimeout(d time.Duration) Option {
	return func(m *Manager) { m.profileTimeout = d }
}

// Manager is the session state machine.
//
// Every resolution is tagged with the generation current when it started.
// The generation moves whenever the identity changes or is cleared, and a
// result carrying an older generation is dropped.
type Manager struct {
	auth           Authenticator
	resolver       *Resolver
	log            *slog.Logger
	signInTimeout  time.Duration
	profileTimeout time.Duration

	mu          sync.Mutex
	phase       Phase
	identity    *domain.Identity
	profile     *domain.Profile
	loading     bool
	gen         uint64
	resolvedFor *uuid.UUID
	unsubscribe func()
	watchers    map[int]chan State
	nextWatcher int
	closed      bool

	bg sync.WaitGroup
}

// NewManager creates a Manager in the booting phase.
func NewManager(log *slog.Logger, auth Authenticator, resolver *Resolver, opts ...Option) *Manager {
	m := &Manager{
		auth:          auth,
		resolver:      resolver,
		log:           log.With("service", "session"),
		signInTimeout: DefaultSignInTimeout,
		phase:         PhaseBooting,
		watchers:      make(map[int]chan State),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Bootstrap restores an existing session and subscribes to pushed session
// changes. A session that already carries its profile is authenticated
// immediately; otherwise the profile is resolved in the background.
func (m *Manager) Bootstrap(ctx context.Context) error {
	m.mu.Lock()
	if m.unsubscribe == nil && !m.closed {
		m.unsubscribe = m.auth.Subscribe(m.handleEvent)
	}
	m.mu.Unlock()

	sess, err := m.auth.Session(ctx)
	if err != nil {
		m.mu.Lock()
		m.clearLocked(PhaseUnauthenticated)
		m.mu.Unlock()
		return fmt.Errorf("session.Bootstrap: %w", err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if sess == nil {
		m.clearLocked(PhaseUnauthenticated)
		return nil
	}
	m.installLocked(sess)
	return nil
}

// SignIn exchanges credentials for a session. The exchange is bounded by
// the sign-in timeout. On success the profile is resolved once before
// returning, so IsAdmin is settled when SignIn returns nil. Failures leave
// the manager unauthenticated and come back as *SignInError.
func (m *Manager) SignIn(ctx context.Context, email, password string) error {
	sess, err := withTimeout(ctx, m.signInTimeout, func(ctx context.Context) (*domain.Session, error) {
		return m.auth.SignInWithPassword(ctx, email, password)
	})
	if err == nil && sess == nil {
		err = fmt.Errorf("authenticator returned no session")
	}
	if err != nil {
		m.mu.Lock()
		m.clearLocked(PhaseUnauthenticated)
		m.mu.Unlock()

		sErr := newSignInError(err)
		m.log.InfoContext(ctx, "sign in failed", slog.String("kind", string(sErr.Kind)), slog.String("error", err.Error()))
		return sErr
	}

	m.mu.Lock()
	if sess.Profile != nil {
		m.installLocked(sess)
		m.mu.Unlock()
		return nil
	}
	id, gen := m.setIdentityLocked(sess.Identity)
	m.resolvedFor = &id
	m.loading = true
	m.notifyLocked()
	m.mu.Unlock()

	p := m.resolver.Resolve(ctx, id, m.profileTimeout)
	m.apply(id, gen, p)
	return nil
}

// SignOut ends the session. Local state is cleared even when the
// authenticator reports an error.
func (m *Manager) SignOut(ctx context.Context) error {
	err := m.auth.SignOut(ctx)

	m.mu.Lock()
	m.clearLocked(PhaseSignedOut)
	m.mu.Unlock()

	if err != nil {
		m.log.WarnContext(ctx, "sign out failed", slog.String("error", err.Error()))
		return fmt.Errorf("session.SignOut: %w", err)
	}
	return nil
}

// RefreshProfile re-fetches the profile for the current identity, even when
// a lookup already ran or is running. It returns the current profile
// afterwards; a failed lookup keeps the previous one.
func (m *Manager) RefreshProfile(ctx context.Context) *domain.Profile {
	m.mu.Lock()
	if m.identity == nil {
		m.mu.Unlock()
		return nil
	}
	id, gen := m.identity.ID, m.gen
	m.loading = true
	m.notifyLocked()
	m.mu.Unlock()

	p := m.resolver.Fetch(ctx, id, m.profileTimeout)
	m.apply(id, gen, p)

	m.mu.Lock()
	defer m.mu.Unlock()
	return cloneProfile(m.profile)
}

// Snapshot returns the current state.
func (m *Manager) Snapshot() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.snapshotLocked()
}

// IsAdmin reports whether the caller is known to be an administrator.
func (m *Manager) IsAdmin() bool {
	return m.Snapshot().IsAdmin()
}

// Watch returns a channel that receives a snapshot after every change.
// Slow readers only see the latest snapshot. cancel closes the channel.
func (m *Manager) Watch() (<-chan State, func()) {
	m.mu.Lock()
	defer m.mu.Unlock()

	ch := make(chan State, 1)
	if m.closed {
		close(ch)
		return ch, func() {}
	}
	id := m.nextWatcher
	m.nextWatcher++
	m.watchers[id] = ch

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			m.mu.Lock()
			defer m.mu.Unlock()
			if w, ok := m.watchers[id]; ok {
				delete(m.watchers, id)
				close(w)
			}
		})
	}
}

// WaitSettled blocks until no profile lookup is outstanding or ctx is done,
// and returns the latest snapshot. It never starts a lookup itself.
func (m *Manager) WaitSettled(ctx context.Context) State {
	ch, cancel := m.Watch()
	defer cancel()

	st := m.Snapshot()
	for st.Loading {
		select {
		case next, ok := <-ch:
			if !ok {
				return m.Snapshot()
			}
			st = next
		case <-ctx.Done():
			return st
		}
	}
	return st
}

// Close unsubscribes from pushed events, waits for background lookups and
// closes all watchers.
func (m *Manager) Close() {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return
	}
	m.closed = true
	unsubscribe := m.unsubscribe
	m.unsubscribe = nil
	m.mu.Unlock()

	if unsubscribe != nil {
		unsubscribe()
	}
	m.bg.Wait()

	m.mu.Lock()
	defer m.mu.Unlock()
	for id, ch := range m.watchers {
		delete(m.watchers, id)
		close(ch)
	}
}

// handleEvent runs on the authenticator's goroutine. It only updates state
// and schedules work; it never waits on a lookup.
func (m *Manager) handleEvent(ev domain.AuthEvent) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.log.Debug("auth event", slog.String("kind", ev.Kind.String()))
	if ev.Session == nil {
		m.clearLocked(PhaseUnauthenticated)
		return
	}
	m.resolvedFor = nil
	m.installLocked(ev.Session)
}

// installLocked adopts sess. A session without a profile moves to
// AuthenticatingProfile and schedules a background lookup.
func (m *Manager) installLocked(sess *domain.Session) {
	m.setIdentityLocked(sess.Identity)
	if sess.Profile != nil {
		m.profile = cloneProfile(sess.Profile)
		m.phase = PhaseAuthenticated
		m.loading = false
		m.notifyLocked()
		return
	}
	m.scheduleLocked()
	m.notifyLocked()
}

// setIdentityLocked records identity and moves the generation when the
// identity id changes. Remote identities start without admin rights.
func (m *Manager) setIdentityLocked(identity domain.Identity) (uuid.UUID, uint64) {
	if m.identity == nil || m.identity.ID != identity.ID {
		m.gen++
		m.profile = nil
		m.resolvedFor = nil
	}
	ident := identity
	m.identity = &ident
	if m.profile == nil {
		m.phase = PhaseAuthenticatingProfile
	}
	return ident.ID, m.gen
}

// scheduleLocked starts a background lookup unless one was already started
// for this identity since the guard was last reset.
func (m *Manager) scheduleLocked() {
	if m.identity == nil || m.closed {
		return
	}
	id := m.identity.ID
	if m.resolvedFor != nil && *m.resolvedFor == id {
		return
	}
	m.resolvedFor = &id
	m.loading = true
	gen := m.gen

	m.bg.Add(1)
	go func() {
		defer m.bg.Done()
		p := m.resolver.Resolve(context.Background(), id, m.profileTimeout)
		m.apply(id, gen, p)
	}()
}

// apply installs a lookup result if it still belongs to the current
// identity and generation. A nil profile leaves privileges unknown.
func (m *Manager) apply(id uuid.UUID, gen uint64, p *domain.Profile) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.identity == nil || m.identity.ID != id || m.gen != gen {
		m.log.Debug("dropping stale profile", slog.String("identity_id", id.String()))
		return
	}
	if p != nil {
		m.profile = cloneProfile(p)
	}
	m.phase = PhaseAuthenticated
	m.loading = false
	m.notifyLocked()
}

func (m *Manager) clearLocked(phase Phase) {
	m.gen++
	m.identity = nil
	m.profile = nil
	m.resolvedFor = nil
	m.loading = false
	m.phase = phase
	m.notifyLocked()
}

func (m *Manager) snapshotLocked() State {
	s := State{Phase: m.phase, Loading: m.loading, Profile: cloneProfile(m.profile)}
	if m.identity != nil {
		ident := *m.identity
		s.Identity = &ident
	}
	return s
}

func (m *Manager) notifyLocked() {
	if len(m.watchers) == 0 {
		return
	}
	s := m.snapshotLocked()
	for _, ch := range m.watchers {
		select {
		case ch <- s:
		default:
			// Replace the unread snapshot with the newer one.
			select {
			case <-ch:
			default:
			}
			ch <- s
		}
	}
}

func cloneProfile(p *domain.Profile) *domain.Profile {
	if p == nil {
		return nil
	}
	c := *p
	if p.AvatarURL != nil {
		u := *p.AvatarURL
		c.AvatarURL = &u
	}
	return &c
}
