// Package auth issues and validates the session tokens handed out by the
// remote authenticator and hashes admin passwords.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// ErrInvalidToken is returned for tokens that fail signature, issuer or
// expiry checks.
var ErrInvalidToken = errors.New("invalid session token")

// SessionClaims is what a session token carries.
type SessionClaims struct {
	SessionID uuid.UUID
	UserID    uuid.UUID
	Email     string
	ExpiresAt time.Time
}

// TokenManager signs and validates HS256 session tokens.
type TokenManager struct {
	secret []byte
	issuer string
	ttl    time.Duration
	now    func() time.Time
}

// NewTokenManager creates a new token manager.
// secret must be at least 32 characters for HS256 security.
func NewTokenManager(secret, issuer string, ttl time.Duration) *TokenManager {
	return &TokenManager{
		secret: []byte(secret),
		issuer: issuer,
		ttl:    ttl,
		now:    time.Now,
	}
}

// TTL returns the lifetime given to issued tokens.
func (m *TokenManager) TTL() time.Duration { return m.ttl }

type sessionClaims struct {
	jwt.RegisteredClaims
	SessionID string `json:"sid"`
	Email     string `json:"email,omitempty"`
}

// Issue signs a token for the session. ExpiresAt in c is used as is, so the
// token and the server-side record expire together.
func (m *TokenManager) Issue(c SessionClaims) (string, error) {
	claims := sessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   c.UserID.String(),
			Issuer:    m.issuer,
			ExpiresAt: jwt.NewNumericDate(c.ExpiresAt),
			IssuedAt:  jwt.NewNumericDate(m.now()),
		},
		SessionID: c.SessionID.String(),
		Email:     c.Email,
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Parse validates a token and returns its claims.
func (m *TokenManager) Parse(token string) (SessionClaims, error) {
	if token == "" {
		return SessionClaims{}, fmt.Errorf("%w: empty", ErrInvalidToken)
	}

	parsed, err := jwt.ParseWithClaims(token, &sessionClaims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return m.secret, nil
	},
		jwt.WithIssuer(m.issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(m.now),
	)
	if err != nil {
		return SessionClaims{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	claims, ok := parsed.Claims.(*sessionClaims)
	if !ok || !parsed.Valid {
		return SessionClaims{}, fmt.Errorf("%w: claims", ErrInvalidToken)
	}

	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return SessionClaims{}, fmt.Errorf("%w: subject: %v", ErrInvalidToken, err)
	}
	sessionID, err := uuid.Parse(claims.SessionID)
	if err != nil {
		return SessionClaims{}, fmt.Errorf("%w: sid: %v", ErrInvalidToken, err)
	}

	return SessionClaims{
		SessionID: sessionID,
		UserID:    userID,
		Email:     claims.Email,
		ExpiresAt: claims.ExpiresAt.Time,
	}, nil
}
