package session

import (
	"errors"
	"fmt"

	"github.com/heartmarshall/solarsite/internal/domain"
)

// Phase is the session lifecycle position.
type Phase string

const (
	PhaseBooting               Phase = "booting"
	PhaseUnauthenticated       Phase = "unauthenticated"
	PhaseAuthenticatingProfile Phase = "authenticating_profile"
	PhaseAuthenticated         Phase = "authenticated"
	PhaseSignedOut             Phase = "signed_out"
)

// State is an immutable snapshot of the session.
type State struct {
	Phase    Phase
	Identity *domain.Identity
	Profile  *domain.Profile
	// Loading is true while a profile lookup for Identity is outstanding.
	Loading bool
}

// IsAdmin is Identity.IsAdmin OR Profile.IsAdmin; false while neither is known.
func (s State) IsAdmin() bool {
	return (s.Identity != nil && s.Identity.IsAdmin) || (s.Profile != nil && s.Profile.IsAdmin)
}

// SignInErrorKind classifies sign-in failures.
type SignInErrorKind string

const (
	SignInInvalidCredentials SignInErrorKind = "invalid_credentials"
	SignInTimeout            SignInErrorKind = "timeout"
	SignInTransport          SignInErrorKind = "transport"
)

// SignInError is returned by Manager.SignIn.
type SignInError struct {
	Kind SignInErrorKind
	Err  error
}

func (e *SignInError) Error() string {
	return fmt.Sprintf("sign in: %s: %v", e.Kind, e.Err)
}

func (e *SignInError) Unwrap() error { return e.Err }

func newSignInError(err error) *SignInError {
	kind := SignInTransport
	switch {
	case errors.Is(err, domain.ErrInvalidCredentials):
		kind = SignInInvalidCredentials
	case errors.Is(err, domain.ErrTimeout):
		kind = SignInTimeout
	}
	return &SignInError{Kind: kind, Err: err}
}
