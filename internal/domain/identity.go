package domain

import (
	"time"

	"github.com/google/uuid"
)

// Identity is the authenticated caller. IsAdmin starts false for remote
// sessions and is only raised through the resolved Profile.
type Identity struct {
	ID       uuid.UUID
	Email    string
	IsAdmin  bool
	FullName string
}

// Profile holds role and display attributes keyed 1:1 by Identity.ID.
type Profile struct {
	ID        uuid.UUID
	IsAdmin   bool
	FullName  string
	AvatarURL *string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Session is what an authenticator hands back for a signed-in caller.
// Profile is set only when the authenticator knows it up front.
type Session struct {
	Identity  Identity
	Profile   *Profile
	Token     string
	ExpiresAt time.Time
}

// AuthEvent is a session change pushed by an authenticator. Session is nil
// for sign-out and expiry.
type AuthEvent struct {
	Kind    AuthEventKind
	Session *Session
}

// DemoIdentityID is the fixed id of the demo administrator.
var DemoIdentityID = uuid.MustParse("00000000-0000-4000-8000-000000000001")
