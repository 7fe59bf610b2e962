package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"job-tracker/internal/events"
	sharedauth "job-tracker/internal/shared/auth"
	"job-tracker/internal/users"
)

func newTestService() *Service {
	svc := NewService(users.NewService(users.NewMemoryRepo(), events.NewMemoryBroker()), NewMemoryRevocations())
	svc.BcryptCost = bcrypt.MinCost
	return svc
}

// failingUpdates lets Create and Get through but fails profile updates.
type failingUpdates struct {
	users.Repo
}

func (failingUpdates) Update(context.Context, users.Profile) error {
	return errors.New("profile store down")
}

func TestRegisterThenLogin(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	reg, err := svc.Register(ctx, Credentials{Email: "Ana@Example.com", Password: "secret1"})
	require.NoError(t, err)
	require.NotEmpty(t, reg.Token)
	require.NotNil(t, reg.Profile)
	assert.True(t, reg.Profile.IsActive)
	assert.False(t, reg.Profile.IsAdmin)

	claims, err := sharedauth.VerifyJWT(reg.Token)
	require.NoError(t, err)
	assert.Equal(t, reg.UID, claims.UserID())
	assert.Equal(t, sharedauth.ProviderPassword, claims.Provider)

	in, err := svc.Login(ctx, Credentials{Email: "ana@example.com", Password: "secret1"})
	require.NoError(t, err)
	assert.Equal(t, reg.UID, in.UID)
}

func TestRegisterErrors(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()
	_, err := svc.Register(ctx, Credentials{Email: "taken@example.com", Password: "secret1"})
	require.NoError(t, err)

	cases := []struct {
		name string
		in   Credentials
		want Code
	}{
		{"bad email", Credentials{Email: "nope", Password: "secret1"}, CodeInvalidEmail},
		{"short password", Credentials{Email: "new@example.com", Password: "12345"}, CodeWeakPassword},
		{"duplicate", Credentials{Email: "TAKEN@example.com", Password: "secret1"}, CodeEmailInUse},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Register(ctx, tc.in)
			assert.Equal(t, tc.want, CodeOf(err))
		})
	}
}

func TestLoginFailures(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()
	reg, err := svc.Register(ctx, Credentials{Email: "a@example.com", Password: "secret1"})
	require.NoError(t, err)

	_, err = svc.Login(ctx, Credentials{Email: "a@example.com", Password: "wrong!"})
	assert.Equal(t, CodeInvalidCredential, CodeOf(err))

	_, err = svc.Login(ctx, Credentials{Email: "ghost@example.com", Password: "secret1"})
	assert.Equal(t, CodeInvalidCredential, CodeOf(err), "unknown accounts look like bad passwords")

	_, err = svc.Users.SetActive(ctx, reg.UID, false)
	require.NoError(t, err)
	_, err = svc.Login(ctx, Credentials{Email: "a@example.com", Password: "secret1"})
	assert.Equal(t, CodeUserDisabled, CodeOf(err))
}

func TestLoginThrottlesPerAddress(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	var last error
	for i := 0; i < loginRule.Burst+1; i++ {
		_, last = svc.Login(ctx, Credentials{Email: "slow@example.com", Password: "x"})
	}
	assert.Equal(t, CodeTooManyRequests, CodeOf(last))

	_, err := svc.Login(ctx, Credentials{Email: "other@example.com", Password: "x"})
	assert.Equal(t, CodeInvalidCredential, CodeOf(err))
}

func TestProfileUpsertFailureDoesNotFailLogin(t *testing.T) {
	repo := users.NewMemoryRepo()
	usersSvc := users.NewService(repo, nil)
	svc := NewService(usersSvc, nil)
	svc.BcryptCost = bcrypt.MinCost
	ctx := context.Background()

	_, err := svc.Register(ctx, Credentials{Email: "a@example.com", Password: "secret1"})
	require.NoError(t, err)

	usersSvc.Repo = failingUpdates{Repo: repo}
	out, err := svc.Login(ctx, Credentials{Email: "a@example.com", Password: "secret1"})
	require.NoError(t, err)
	assert.NotEmpty(t, out.Token)
	assert.Nil(t, out.Profile)
}

func TestGoogleSignIn(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	out, err := svc.GoogleSignIn(ctx, "123", "g@gmail.com")
	require.NoError(t, err)
	assert.Equal(t, "google:123", out.UID)
	require.NotNil(t, out.Profile)
	assert.Equal(t, users.ProviderGoogle, out.Profile.Provider)

	_, err = svc.Register(ctx, Credentials{Email: "pw@example.com", Password: "secret1"})
	require.NoError(t, err)
	_, err = svc.GoogleSignIn(ctx, "456", "pw@example.com")
	assert.Equal(t, CodeAccountExists, CodeOf(err))

	_, err = svc.Users.SetActive(ctx, "google:123", false)
	require.NoError(t, err)
	_, err = svc.GoogleSignIn(ctx, "123", "g@gmail.com")
	assert.Equal(t, CodeUserDisabled, CodeOf(err))
}

func TestLogoutRevokesToken(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()
	reg, err := svc.Register(ctx, Credentials{Email: "a@example.com", Password: "secret1"})
	require.NoError(t, err)
	claims, err := sharedauth.VerifyJWT(reg.Token)
	require.NoError(t, err)

	assert.False(t, svc.IsRevoked(claims.TokenID()))
	require.NoError(t, svc.Logout(ctx, claims))
	assert.True(t, svc.IsRevoked(claims.TokenID()))
}

func TestMemoryRevocationsExpire(t *testing.T) {
	r := NewMemoryRevocations()
	now := time.Date(2024, 6, 10, 12, 0, 0, 0, time.UTC)
	r.now = func() time.Time { return now }

	require.NoError(t, r.Revoke(context.Background(), "jti", now.Add(time.Minute)))
	assert.True(t, r.IsRevoked("jti"))

	now = now.Add(2 * time.Minute)
	assert.False(t, r.IsRevoked("jti"))
}

func TestStateStoreConsumesOnce(t *testing.T) {
	s := newStateStore()
	s.put("abc", FlowRegister, time.Now().Add(time.Minute))

	flow, ok := s.consume("abc")
	require.True(t, ok)
	assert.Equal(t, FlowRegister, flow)
	_, ok = s.consume("abc")
	assert.False(t, ok)

	s.put("old", FlowLogin, time.Now().Add(-time.Second))
	_, ok = s.consume("old")
	assert.False(t, ok)
}
