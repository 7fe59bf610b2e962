package users

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"job-tracker/internal/events"
)

var fixedNow = time.Date(2024, time.June, 10, 12, 0, 0, 0, time.UTC)

func newTestService() (*Service, *events.MemoryBroker) {
	broker := events.NewMemoryBroker()
	svc := NewService(NewMemoryRepo(), broker)
	svc.Now = func() time.Time { return fixedNow }
	return svc, broker
}

func TestCreateOrUpdateProfile(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	created, err := svc.CreateOrUpdateProfile(ctx, "u1", "a@example.com", ProviderGoogle)
	require.NoError(t, err)
	assert.True(t, created.IsActive)
	assert.False(t, created.IsAdmin)
	assert.Equal(t, ProviderGoogle, created.Provider)
	assert.Equal(t, fixedNow, created.CreatedAt)

	later := fixedNow.Add(48 * time.Hour)
	svc.Now = func() time.Time { return later }
	again, err := svc.CreateOrUpdateProfile(ctx, "u1", "changed@example.com", ProviderPassword)
	require.NoError(t, err)
	assert.Equal(t, "a@example.com", again.Email, "existing profile keeps its data")
	assert.Equal(t, fixedNow, again.CreatedAt)
	assert.Equal(t, later, again.LastLoginAt)
}

func TestRegisterRejectsDuplicateEmail(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	_, err := svc.Register(ctx, "u1", "a@example.com", "hash")
	require.NoError(t, err)
	_, err = svc.Register(ctx, "u2", "A@Example.com", "hash")
	assert.True(t, errors.Is(err, ErrEmailTaken))

	p, err := svc.GetByEmail(ctx, "A@EXAMPLE.COM")
	require.NoError(t, err)
	assert.Equal(t, "u1", p.UID)
	assert.True(t, p.HasPassword())
}

func TestSetAdminRaisesPermissionsChanged(t *testing.T) {
	svc, broker := newTestService()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	_, err := svc.CreateOrUpdateProfile(ctx, "u1", "a@example.com", "")
	require.NoError(t, err)

	sub := broker.Subscribe(ctx, events.PermissionsChanged)
	p, err := svc.SetAdmin(ctx, "u1", true)
	require.NoError(t, err)
	assert.True(t, p.IsAdmin)
	assert.Equal(t, fixedNow, p.UpdatedAt)

	select {
	case evt := <-sub:
		assert.Equal(t, "u1", evt.UserID)
	case <-time.After(time.Second):
		t.Fatalf("expected permissions event")
	}

	admin, err := svc.IsAdmin(ctx, "u1")
	require.NoError(t, err)
	assert.True(t, admin)
}

func TestTogglesOnMissingProfile(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	_, err := svc.SetActive(ctx, "ghost", false)
	assert.True(t, errors.Is(err, ErrNotFound))
	_, err = svc.SetAdmin(ctx, "ghost", true)
	assert.True(t, errors.Is(err, ErrNotFound))

	admin, err := svc.IsAdmin(ctx, "ghost")
	require.NoError(t, err)
	assert.False(t, admin)
	assert.Equal(t, UnknownUser, svc.EmailFor(ctx, "ghost"))
}

func TestSetActiveAndEmails(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()
	_, _ = svc.CreateOrUpdateProfile(ctx, "u1", "a@example.com", "")
	_, _ = svc.CreateOrUpdateProfile(ctx, "u2", "b@example.com", "")

	p, err := svc.SetActive(ctx, "u2", false)
	require.NoError(t, err)
	assert.False(t, p.IsActive)

	emails, err := svc.Emails(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"u1": "a@example.com", "u2": "b@example.com"}, emails)
	assert.Equal(t, "b@example.com", svc.EmailFor(ctx, "u2"))
}
