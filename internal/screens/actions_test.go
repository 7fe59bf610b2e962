package screens

import (
	"context"
	"encoding/csv"
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"job-tracker/internal/applications"
	"job-tracker/internal/events"
	"job-tracker/internal/export"
	"job-tracker/internal/permissions"
	"job-tracker/internal/resumes"
	"job-tracker/internal/session"
	"job-tracker/internal/shared/storage/object/local"
	"job-tracker/internal/users"
)

var fixedNow = time.Date(2024, time.June, 10, 12, 0, 0, 0, time.UTC)

// journal records the order of side effects across fakes.
type journal struct {
	mu      sync.Mutex
	entries []string
}

func (j *journal) add(s string) {
	j.mu.Lock()
	j.entries = append(j.entries, s)
	j.mu.Unlock()
}

func (j *journal) all() []string {
	j.mu.Lock()
	defer j.mu.Unlock()
	return append([]string(nil), j.entries...)
}

type countingAppRepo struct {
	applications.Repo
	log     *journal
	gets    int
	deletes int
	failDel error
	lists   atomic.Int32
}

func (r *countingAppRepo) ListByUser(ctx context.Context, userID string) ([]applications.Application, error) {
	r.lists.Add(1)
	return r.Repo.ListByUser(ctx, userID)
}

func (r *countingAppRepo) GetByID(ctx context.Context, id string) (applications.Application, error) {
	r.gets++
	return r.Repo.GetByID(ctx, id)
}

func (r *countingAppRepo) Delete(ctx context.Context, id string) error {
	r.deletes++
	r.log.add("delete")
	if r.failDel != nil {
		return r.failDel
	}
	return r.Repo.Delete(ctx, id)
}

type fakeConfirmer struct {
	log     *journal
	answer  bool
	dialogs []Dialog
}

func (f *fakeConfirmer) Confirm(_ context.Context, d Dialog) (bool, error) {
	f.log.add("confirm")
	f.dialogs = append(f.dialogs, d)
	return f.answer, nil
}

type fakeNotifier struct {
	log     *journal
	notices []users.Notice
}

func (f *fakeNotifier) Notify(_ context.Context, n users.Notice) {
	f.log.add("toast")
	f.notices = append(f.notices, n)
}

type fixture struct {
	deps     Deps
	appRepo  *countingAppRepo
	log      *journal
	ownerApp applications.Application
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	log := &journal{}
	broker := events.NewMemoryBroker()
	appRepo := &countingAppRepo{Repo: applications.NewMemoryRepo(), log: log}
	appSvc := applications.NewService(appRepo, broker)
	appSvc.Now = func() time.Time { return fixedNow }
	usersSvc := users.NewService(users.NewMemoryRepo(), broker)
	usersSvc.Now = func() time.Time { return fixedNow }
	resumeSvc := resumes.NewService(resumes.NewMemoryRepo(), local.New(t.TempDir(), "http://localhost/files"), broker)

	ctx := context.Background()
	for _, p := range []struct{ uid, email string }{{"A", "a@example.com"}, {"B", "b@example.com"}, {"admin", "boss@example.com"}} {
		_, err := usersSvc.CreateOrUpdateProfile(ctx, p.uid, p.email, users.ProviderPassword)
		require.NoError(t, err)
	}
	_, err := usersSvc.SetAdmin(ctx, "admin", true)
	require.NoError(t, err)

	app, err := appSvc.Create(ctx, "A", applications.Input{
		JobTitle:    "Backend Engineer",
		Company:     "Acme",
		DateApplied: fixedNow.AddDate(0, 0, -1),
		Status:      applications.StatusApplied,
	})
	require.NoError(t, err)

	return &fixture{
		deps:     Deps{Applications: appSvc, Users: usersSvc, Resumes: resumeSvc, Events: broker},
		appRepo:  appRepo,
		log:      log,
		ownerApp: app,
	}
}

func (f *fixture) actionsFor(uid string, answer bool) (*Actions, *fakeConfirmer, *fakeNotifier, *int) {
	perms := permissions.New(session.New(&session.Identity{UID: uid}), f.deps.Users)
	confirmer := &fakeConfirmer{log: f.log, answer: answer}
	notifier := &fakeNotifier{log: f.log}
	refreshes := new(int)
	return &Actions{
		Deps:    f.deps,
		Perms:   perms,
		Confirm: confirmer,
		Notify:  notifier,
		Refresh: func() {
			*refreshes++
			f.log.add("refresh")
		},
		Now: func() time.Time { return fixedNow },
	}, confirmer, notifier, refreshes
}

func TestDeleteDeniedForNonOwner(t *testing.T) {
	f := newFixture(t)
	a, confirmer, notifier, refreshes := f.actionsFor("B", true)

	err := a.DeleteApplication(context.Background(), f.ownerApp.ID)
	require.ErrorIs(t, err, ErrForbidden)
	assert.Equal(t, 0, f.appRepo.deletes, "no backend delete for a denied caller")
	assert.Empty(t, confirmer.dialogs, "denied callers are never asked to confirm")
	require.Len(t, notifier.notices, 1)
	assert.True(t, notifier.notices[0].Error)
	assert.Equal(t, 0, *refreshes)
}

func TestDeleteMissingLooksLikeDenied(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	a, _, notifier, _ := f.actionsFor("B", true)
	require.ErrorIs(t, a.DeleteApplication(ctx, f.ownerApp.ID), ErrForbidden)
	require.ErrorIs(t, a.DeleteApplication(ctx, "no-such-id"), ErrForbidden)
	require.Len(t, notifier.notices, 2)
	assert.Equal(t, notifier.notices[0], notifier.notices[1])

	require.ErrorIs(t, a.DeleteResume(ctx, "no-such-id"), ErrForbidden)
	require.ErrorIs(t, a.SetDefaultResume(ctx, "no-such-id"), ErrForbidden)
	assert.Equal(t, 0, f.appRepo.deletes)
}

func TestSignedOutDeleteSkipsLookup(t *testing.T) {
	f := newFixture(t)
	notifier := &fakeNotifier{log: f.log}
	a := &Actions{
		Deps:   f.deps,
		Perms:  permissions.New(session.New(nil), f.deps.Users),
		Notify: notifier,
	}

	require.ErrorIs(t, a.DeleteApplication(context.Background(), f.ownerApp.ID), ErrForbidden)
	assert.Equal(t, 0, f.appRepo.gets)
	assert.Equal(t, 0, f.appRepo.deletes)
	require.Len(t, notifier.notices, 1)
	assert.True(t, notifier.notices[0].Error)
}

func TestAdminDeleteConfirmsThenDeletesOnceAndRefreshesOnce(t *testing.T) {
	f := newFixture(t)
	a, confirmer, notifier, refreshes := f.actionsFor("admin", true)

	require.NoError(t, a.DeleteApplication(context.Background(), f.ownerApp.ID))
	assert.Equal(t, 1, f.appRepo.deletes)
	assert.Equal(t, 1, *refreshes)
	assert.Equal(t, []string{"confirm", "delete", "toast", "refresh"}, f.log.all())
	require.Len(t, confirmer.dialogs, 1)
	assert.Equal(t, "Delete Job Application", confirmer.dialogs[0].Title)
	assert.Equal(t, "Delete Application", confirmer.dialogs[0].ConfirmText)
	assert.Equal(t, "Keep Application", confirmer.dialogs[0].CancelText)
	assert.False(t, notifier.notices[0].Error)

	_, err := f.deps.Applications.Get(context.Background(), f.ownerApp.ID)
	assert.ErrorIs(t, err, applications.ErrNotFound)
}

func TestOwnerCancelDoesNothing(t *testing.T) {
	f := newFixture(t)
	a, _, notifier, refreshes := f.actionsFor("A", false)

	err := a.DeleteApplication(context.Background(), f.ownerApp.ID)
	require.ErrorIs(t, err, ErrCancelled)
	assert.Equal(t, 0, f.appRepo.deletes)
	assert.Empty(t, notifier.notices)
	assert.Equal(t, 0, *refreshes)
}

func TestFailedDeleteKeepsListAndToastsError(t *testing.T) {
	f := newFixture(t)
	f.appRepo.failDel = errors.New("store unavailable")
	a, _, notifier, refreshes := f.actionsFor("A", true)

	err := a.DeleteApplication(context.Background(), f.ownerApp.ID)
	require.Error(t, err)
	assert.Equal(t, 0, *refreshes, "no refresh after a failed delete")
	require.Len(t, notifier.notices, 1)
	assert.Equal(t, "Failed to delete application. Please try again.", notifier.notices[0].Message)

	_, err = f.deps.Applications.Get(context.Background(), f.ownerApp.ID)
	assert.NoError(t, err, "the record is still there")
}

func TestToggleUserAdminRequiresAdmin(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	a, _, notifier, _ := f.actionsFor("A", true)
	require.ErrorIs(t, a.ToggleUserAdmin(ctx, "B"), ErrForbidden)
	assert.True(t, notifier.notices[0].Error)

	admin, _, notifier, refreshes := f.actionsFor("admin", true)
	require.NoError(t, admin.ToggleUserAdmin(ctx, "B"))
	assert.Equal(t, "Successfully grant admin access to b@example.com", notifier.notices[0].Message)
	assert.Equal(t, 1, *refreshes)

	p, err := f.deps.Users.GetProfile(ctx, "B")
	require.NoError(t, err)
	assert.True(t, p.IsAdmin)
}

func TestToggleUserActive(t *testing.T) {
	f := newFixture(t)
	admin, _, notifier, _ := f.actionsFor("admin", true)

	require.NoError(t, admin.ToggleUserActive(context.Background(), "A"))
	assert.Equal(t, "User a@example.com has been deactivated successfully", notifier.notices[0].Message)
}

func TestSetDefaultResumeChecksOwnership(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	repo := f.deps.Resumes.Repo
	require.NoError(t, repo.Create(ctx, resumes.Resume{ID: "r1", UserID: "A", DisplayName: "CV", UploadDate: fixedNow}))

	a, _, _, _ := f.actionsFor("B", true)
	require.ErrorIs(t, a.SetDefaultResume(ctx, "r1"), ErrForbidden)

	owner, _, notifier, refreshes := f.actionsFor("A", true)
	require.NoError(t, owner.SetDefaultResume(ctx, "r1"))
	assert.Equal(t, `"CV" is now your default resume`, notifier.notices[0].Message)
	assert.Equal(t, 1, *refreshes)

	def, err := f.deps.Resumes.Default(ctx, "A")
	require.NoError(t, err)
	assert.Equal(t, "r1", def.ID)
}

func TestExport(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	owner, _, _, _ := f.actionsFor("A", true)
	dl, err := owner.Export(ctx, export.FormatCSV, false, "", "all")
	require.NoError(t, err)
	assert.Equal(t, "job-applications-2024-06-10.csv", dl.Filename)
	records, err := csv.NewReader(strings.NewReader(string(dl.Data))).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "Backend Engineer", records[1][0])

	other, _, notifier, _ := f.actionsFor("B", true)
	_, err = other.Export(ctx, export.FormatCSV, false, "", "")
	require.ErrorIs(t, err, export.ErrNothingToExport)
	assert.Equal(t, "No data to export", notifier.notices[0].Message)

	_, err = other.Export(ctx, export.FormatJSON, true, "", "")
	require.ErrorIs(t, err, ErrForbidden)

	admin, _, _, _ := f.actionsFor("admin", true)
	dl, err = admin.Export(ctx, export.FormatCSV, true, "a@example", "")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(dl.Filename, "all-job-applications-"))
	assert.Contains(t, string(dl.Data), "a@example.com")
}
