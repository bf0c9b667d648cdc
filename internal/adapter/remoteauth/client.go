// Package remoteauth authenticates admins against the remote service:
// bcrypt credentials in auth_users, server-side session records in
// auth_sessions and signed session tokens persisted locally.
package remoteauth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/heartmarshall/solarsite/internal/adapter/postgres/authstore"
	"github.com/heartmarshall/solarsite/internal/auth"
	"github.com/heartmarshall/solarsite/internal/domain"
)

type credentialStore interface {
	CredentialByEmail(ctx context.Context, email string) (*authstore.Credential, error)
	CreateSession(ctx context.Context, userID uuid.UUID, expiresAt time.Time) (authstore.SessionRecord, error)
	Session(ctx context.Context, id uuid.UUID) (authstore.SessionRecord, error)
	RevokeSession(ctx context.Context, id uuid.UUID) error
}

type tokenIssuer interface {
	Issue(c auth.SessionClaims) (string, error)
	Parse(token string) (auth.SessionClaims, error)
	TTL() time.Duration
}

// TokenStore persists the session token between runs.
type TokenStore interface {
	SessionToken() (string, error)
	SetSessionToken(token string) error
}

// Client is the remote authenticator. It pushes events only for changes it
// did not initiate: server-side revocation and token expiry.
type Client struct {
	store  credentialStore
	tokens tokenIssuer
	local  TokenStore
	log    *slog.Logger
	now    func() time.Time

	mu      sync.Mutex
	current *auth.SessionClaims
	expiry  *time.Timer
	subs    map[int]func(domain.AuthEvent)
	nextSub int
}

// New creates a remote authenticator.
func New(store credentialStore, tokens tokenIssuer, local TokenStore, logger *slog.Logger) *Client {
	return &Client{
		store:  store,
		tokens: tokens,
		local:  local,
		log:    logger.With("service", "remoteauth"),
		now:    time.Now,
		subs:   make(map[int]func(domain.AuthEvent)),
	}
}

// Session restores the persisted session. It returns nil without error when
// there is no token or the token no longer names an active session.
func (c *Client) Session(ctx context.Context) (*domain.Session, error) {
	token, err := c.local.SessionToken()
	if err != nil {
		return nil, fmt.Errorf("remoteauth.Session: %w", err)
	}
	if token == "" {
		return nil, nil
	}

	claims, err := c.tokens.Parse(token)
	if err != nil {
		c.log.InfoContext(ctx, "discarding persisted token", slog.String("error", err.Error()))
		c.forget()
		return nil, nil
	}

	rec, err := c.store.Session(ctx, claims.SessionID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			c.forget()
			return nil, nil
		}
		return nil, fmt.Errorf("remoteauth.Session: %w", err)
	}
	if !rec.Active(c.now()) {
		c.forget()
		return nil, nil
	}

	c.install(claims)
	return sessionFrom(claims, token), nil
}

// SignInWithPassword exchanges credentials for a new session.
func (c *Client) SignInWithPassword(ctx context.Context, email, password string) (*domain.Session, error) {
	cred, err := c.store.CredentialByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("remoteauth.SignInWithPassword: %w", err)
	}

	ok, err := auth.CheckPassword(cred.PasswordHash, password)
	if err != nil {
		return nil, fmt.Errorf("remoteauth.SignInWithPassword: %w", err)
	}
	if !ok {
		return nil, domain.ErrInvalidCredentials
	}

	expiresAt := c.now().Add(c.tokens.TTL()).UTC().Truncate(time.Second)
	rec, err := c.store.CreateSession(ctx, cred.UserID, expiresAt)
	if err != nil {
		return nil, fmt.Errorf("remoteauth.SignInWithPassword: create session: %w", err)
	}

	claims := auth.SessionClaims{
		SessionID: rec.ID,
		UserID:    cred.UserID,
		Email:     cred.Email,
		ExpiresAt: expiresAt,
	}
	token, err := c.tokens.Issue(claims)
	if err != nil {
		return nil, fmt.Errorf("remoteauth.SignInWithPassword: %w", err)
	}
	if err := c.local.SetSessionToken(token); err != nil {
		return nil, fmt.Errorf("remoteauth.SignInWithPassword: persist token: %w", err)
	}

	c.install(claims)
	c.log.InfoContext(ctx, "signed in", slog.String("user_id", cred.UserID.String()))
	return sessionFrom(claims, token), nil
}

// SignOut revokes the current session and forgets the local token. The
// local state is cleared even when revocation fails.
func (c *Client) SignOut(ctx context.Context) error {
	c.mu.Lock()
	current := c.current
	c.mu.Unlock()

	c.forget()

	if current == nil {
		return nil
	}
	if err := c.store.RevokeSession(ctx, current.SessionID); err != nil {
		return fmt.Errorf("remoteauth.SignOut: %w", err)
	}
	return nil
}

// Subscribe registers fn for pushed session changes and returns a function
// that removes it. fn runs on the notifying goroutine and must not block.
func (c *Client) Subscribe(fn func(domain.AuthEvent)) func() {
	c.mu.Lock()
	defer c.mu.Unlock()

	id := c.nextSub
	c.nextSub++
	c.subs[id] = fn

	return func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		delete(c.subs, id)
	}
}

type notification struct {
	Kind      domain.AuthEventKind `json:"kind"`
	SessionID uuid.UUID            `json:"session_id"`
	UserID    uuid.UUID            `json:"user_id"`
}

// HandleNotification consumes an auth_events payload. Only revocations of
// the current session matter.
func (c *Client) HandleNotification(payload string) {
	var n notification
	if err := json.Unmarshal([]byte(payload), &n); err != nil {
		c.log.Warn("malformed auth notification", slog.String("error", err.Error()))
		return
	}
	if n.Kind != domain.AuthEventSignedOut {
		return
	}
	c.end(n.SessionID, domain.AuthEventSignedOut)
}

func (c *Client) install(claims auth.SessionClaims) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.expiry != nil {
		c.expiry.Stop()
	}
	c.current = &claims

	sid := claims.SessionID
	c.expiry = time.AfterFunc(claims.ExpiresAt.Sub(c.now()), func() {
		c.end(sid, domain.AuthEventSessionExpired)
	})
}

// end clears sid if it is still current and notifies subscribers.
func (c *Client) end(sid uuid.UUID, kind domain.AuthEventKind) {
	c.mu.Lock()
	if c.current == nil || c.current.SessionID != sid {
		c.mu.Unlock()
		return
	}
	c.current = nil
	if c.expiry != nil {
		c.expiry.Stop()
		c.expiry = nil
	}
	subs := make([]func(domain.AuthEvent), 0, len(c.subs))
	for _, fn := range c.subs {
		subs = append(subs, fn)
	}
	c.mu.Unlock()

	if err := c.local.SetSessionToken(""); err != nil {
		c.log.Error("clear session token", slog.String("error", err.Error()))
	}
	c.log.Info("session ended", slog.String("kind", kind.String()), slog.String("session_id", sid.String()))

	ev := domain.AuthEvent{Kind: kind}
	for _, fn := range subs {
		fn(ev)
	}
}

func (c *Client) forget() {
	c.mu.Lock()
	c.current = nil
	if c.expiry != nil {
		c.expiry.Stop()
		c.expiry = nil
	}
	c.mu.Unlock()

	if err := c.local.SetSessionToken(""); err != nil {
		c.log.Error("clear session token", slog.String("error", err.Error()))
	}
}

func sessionFrom(claims auth.SessionClaims, token string) *domain.Session {
	return &domain.Session{
		Identity: domain.Identity{
			ID:    claims.UserID,
			Email: claims.Email,
		},
		Token:     token,
		ExpiresAt: claims.ExpiresAt,
	}
}
