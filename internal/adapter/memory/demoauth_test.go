package memory

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/heartmarshall/solarsite/internal/domain"
)

type fakeFlags struct {
	mu     sync.Mutex
	on     bool
	writes int
	err    error
}

func (f *fakeFlags) DemoSession() (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.on, f.err
}

func (f *fakeFlags) SetDemoSession(on bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.on = on
	f.writes++
	return nil
}

func TestDemoAuth_SignInWithPassword(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	tests := []struct {
		name     string
		email    string
		password string
		wantErr  error
	}{
		{"fixed pair", "admin@demo.local", "demo1234", nil},
		{"wrong password", "admin@demo.local", "nope", domain.ErrInvalidCredentials},
		{"wrong email", "someone@demo.local", "demo1234", domain.ErrInvalidCredentials},
		{"empty", "", "", domain.ErrInvalidCredentials},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			flags := &fakeFlags{}
			auth := NewDemoAuth("admin@demo.local", "demo1234", flags)

			sess, err := auth.SignInWithPassword(ctx, tt.email, tt.password)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, sess)
				assert.False(t, flags.on)
				return
			}
			require.NoError(t, err)
			assert.True(t, sess.Identity.IsAdmin)
			require.NotNil(t, sess.Profile)
			assert.True(t, sess.Profile.IsAdmin)
			assert.True(t, flags.on)
			assert.Equal(t, 1, flags.writes)
		})
	}
}

func TestDemoAuth_SessionFollowsFlag(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	flags := &fakeFlags{}
	auth := NewDemoAuth("a@b.c", "pw", flags)

	sess, err := auth.Session(ctx)
	require.NoError(t, err)
	assert.Nil(t, sess)

	flags.on = true
	sess, err = auth.Session(ctx)
	require.NoError(t, err)
	require.NotNil(t, sess)
	assert.Equal(t, domain.DemoIdentityID, sess.Identity.ID)

	require.NoError(t, auth.SignOut(ctx))
	assert.False(t, flags.on)
}

func TestDemoAuth_FlagStoreError(t *testing.T) {
	t.Parallel()
	flags := &fakeFlags{err: errors.New("disk full")}
	auth := NewDemoAuth("a@b.c", "pw", flags)

	_, err := auth.SignInWithPassword(context.Background(), "a@b.c", "pw")
	assert.Error(t, err)
	assert.NotErrorIs(t, err, domain.ErrInvalidCredentials)
}

func TestDemoAuth_GetProfile(t *testing.T) {
	t.Parallel()
	auth := NewDemoAuth("a@b.c", "pw", &fakeFlags{})

	p, err := auth.GetProfile(context.Background(), domain.DemoIdentityID)
	require.NoError(t, err)
	assert.True(t, p.IsAdmin)

	_, err = auth.GetProfile(context.Background(), uuid.New())
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
