package screens

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"time"

	"job-tracker/internal/applications"
	"job-tracker/internal/export"
	"job-tracker/internal/permissions"
	"job-tracker/internal/resumes"
	"job-tracker/internal/shared/telemetry"
	"job-tracker/internal/users"
)

// ErrCancelled is returned when the user declines a confirmation.
var ErrCancelled = errors.New("cancelled")

const (
	successDuration = 3 * time.Second
	errorDuration   = 5 * time.Second
)

// Dialog is a confirmation prompt.
type Dialog struct {
	Title       string `json:"title"`
	Message     string `json:"message"`
	ConfirmText string `json:"confirmText"`
	CancelText  string `json:"cancelText"`
	Type        string `json:"type"`
	Icon        string `json:"icon"`
}

// ConfirmDelete is the generic delete prompt.
func ConfirmDelete(name, kind string) Dialog {
	return Dialog{
		Title:       "Delete " + kind,
		Message:     fmt.Sprintf("Are you sure you want to delete %q?\n\nThis action cannot be undone.", name),
		ConfirmText: "Delete",
		CancelText:  "Cancel",
		Type:        "danger",
		Icon:        "delete",
	}
}

// ConfirmApplicationDelete is the prompt before removing an application.
func ConfirmApplicationDelete(jobTitle, company string) Dialog {
	return Dialog{
		Title:       "Delete Job Application",
		Message:     fmt.Sprintf("Are you sure you want to delete the application for:\n\n%s\nat %s?\n\nThis action cannot be undone and will permanently remove all application data.", jobTitle, company),
		ConfirmText: "Delete Application",
		CancelText:  "Keep Application",
		Type:        "danger",
		Icon:        "delete_forever",
	}
}

// Confirmer asks the user to approve a destructive step.
type Confirmer interface {
	Confirm(ctx context.Context, d Dialog) (bool, error)
}

// Notifier shows a toast.
type Notifier interface {
	Notify(ctx context.Context, n users.Notice)
}

// Download is a rendered export.
type Download struct {
	Filename    string
	ContentType string
	Data        []byte
}

// Actions runs screen actions in a fixed order: permission check, confirm,
// backend call, toast, refresh. A denied action only toasts. A cancelled one
// does nothing. A failed call toasts the error and leaves the list alone.
type Actions struct {
	Deps    Deps
	Perms   *permissions.Cache
	Confirm Confirmer
	Notify  Notifier
	// Refresh re-reads the current screen after a successful change.
	Refresh func()
	Now     func() time.Time
}

func (a *Actions) now() time.Time {
	if a.Now == nil {
		return time.Now().UTC()
	}
	return a.Now().UTC()
}

func (a *Actions) toast(ctx context.Context, msg string, isErr bool) {
	if a.Notify == nil {
		return
	}
	d := successDuration
	if isErr {
		d = errorDuration
	}
	a.Notify.Notify(ctx, users.Notice{Message: msg, Duration: d, Error: isErr})
}

func (a *Actions) deny(ctx context.Context, msg string) error {
	a.toast(ctx, msg, true)
	return ErrForbidden
}

func (a *Actions) confirm(ctx context.Context, d Dialog) error {
	if a.Confirm == nil {
		return nil
	}
	ok, err := a.Confirm.Confirm(ctx, d)
	if err != nil {
		return err
	}
	if !ok {
		return ErrCancelled
	}
	return nil
}

func (a *Actions) refresh() {
	if a.Refresh != nil {
		a.Refresh()
	}
}

// DeleteApplication removes an application after confirmation.
func (a *Actions) DeleteApplication(ctx context.Context, id string) error {
	const denied = "You do not have permission to delete this application."
	if a.Perms.Session().UserID() == "" {
		return a.deny(ctx, denied)
	}
	// Ownership lives on the record, so it is read before the check. A
	// missing record is denied the same way as someone else's.
	app, err := a.Deps.Applications.Get(ctx, id)
	if err != nil || !a.Perms.CanDelete(ctx, app.UserID) {
		return a.deny(ctx, denied)
	}
	if err := a.confirm(ctx, ConfirmApplicationDelete(app.JobTitle, app.Company)); err != nil {
		return err
	}
	if err := a.Deps.Applications.Delete(ctx, app.ID); err != nil {
		telemetry.Warn("screens.delete_application_failed", map[string]any{"application_id": app.ID, "error": err})
		a.toast(ctx, "Failed to delete application. Please try again.", true)
		return err
	}
	a.toast(ctx, "Application deleted successfully", false)
	a.refresh()
	return nil
}

// DeleteResume removes a resume and its file after confirmation.
func (a *Actions) DeleteResume(ctx context.Context, id string) error {
	res, err := a.ownedResume(ctx, id, "You do not have permission to delete this resume.", a.Perms.CanDelete)
	if err != nil {
		return err
	}
	if err := a.confirm(ctx, ConfirmDelete(res.DisplayName, "Resume")); err != nil {
		return err
	}
	if err := a.Deps.Resumes.Delete(ctx, res.ID); err != nil {
		telemetry.Warn("screens.delete_resume_failed", map[string]any{"resume_id": res.ID, "error": err})
		a.toast(ctx, "Failed to delete resume. Please try again.", true)
		return err
	}
	a.toast(ctx, "Resume deleted successfully", false)
	a.refresh()
	return nil
}

// SetDefaultResume marks a resume as the owner's default.
func (a *Actions) SetDefaultResume(ctx context.Context, id string) error {
	res, err := a.ownedResume(ctx, id, "You do not have permission to modify this resume.", a.Perms.CanModify)
	if err != nil {
		return err
	}
	if _, err := a.Deps.Resumes.SetDefault(ctx, res.ID); err != nil {
		a.toast(ctx, "Failed to set default resume. Please try again.", true)
		return err
	}
	a.toast(ctx, fmt.Sprintf("%q is now your default resume", res.DisplayName), false)
	a.refresh()
	return nil
}

// ownedResume loads a resume for an owner-scoped action. Signed-out callers
// are denied without a lookup; missing and foreign resumes get the same
// denial.
func (a *Actions) ownedResume(ctx context.Context, id, denied string, allowed func(context.Context, string) bool) (resumes.Resume, error) {
	if a.Perms.Session().UserID() == "" {
		return resumes.Resume{}, a.deny(ctx, denied)
	}
	res, err := a.Deps.Resumes.Get(ctx, id)
	if err != nil || !allowed(ctx, res.UserID) {
		return resumes.Resume{}, a.deny(ctx, denied)
	}
	return res, nil
}

// ToggleUserActive flips a user's active flag.
func (a *Actions) ToggleUserActive(ctx context.Context, uid string) error {
	if !a.Perms.CanToggleUserStatus(ctx) {
		return a.deny(ctx, ErrForbidden.Error())
	}
	p, err := a.Deps.Users.GetProfile(ctx, uid)
	if err != nil {
		a.toast(ctx, "User not found.", true)
		return err
	}
	active := !p.IsActive
	_, err = a.Deps.Users.SetActive(ctx, uid, active)
	n := users.ActiveNotice(p.Email, active, err)
	if a.Notify != nil {
		a.Notify.Notify(ctx, n)
	}
	if err != nil {
		return err
	}
	a.refresh()
	return nil
}

// ToggleUserAdmin grants or removes the admin role. The permissions change
// event it raises invalidates that user's cached role.
func (a *Actions) ToggleUserAdmin(ctx context.Context, uid string) error {
	if !a.Perms.CanAssignAdminRole(ctx) {
		return a.deny(ctx, ErrForbidden.Error())
	}
	p, err := a.Deps.Users.GetProfile(ctx, uid)
	if err != nil {
		a.toast(ctx, "User not found.", true)
		return err
	}
	admin := !p.IsAdmin
	_, err = a.Deps.Users.SetAdmin(ctx, uid, admin)
	n := users.AdminNotice(p.Email, admin, err)
	if a.Notify != nil {
		a.Notify.Notify(ctx, n)
	}
	if err != nil {
		return err
	}
	a.refresh()
	return nil
}

// Export renders the caller's applications, or every user's when all is set
// and the caller may export data. Nothing to export is a toast, not a file.
func (a *Actions) Export(ctx context.Context, format export.Format, all bool, search, status string) (Download, error) {
	var (
		rows   []export.Row
		opts   export.Options
		prefix string
	)
	if all {
		if !a.Perms.CanExportData(ctx) {
			return Download{}, a.deny(ctx, ErrForbidden.Error())
		}
		joined, err := LoadAdminApplications(ctx, a.Deps)
		if err != nil {
			a.toast(ctx, "Failed to export applications. Please try again.", true)
			return Download{}, err
		}
		emails := make(map[string]string, len(joined))
		apps := make([]applications.Application, 0, len(joined))
		for _, j := range joined {
			emails[j.UserID] = j.UserEmail
			apps = append(apps, j.Application)
		}
		apps = FilterAdminApplications(apps, emails, search, status, "")
		rows = applications.ToExportRows(apps, emails)
		opts.IncludeUserEmail = true
		prefix = "all-job-applications"
	} else {
		uid := a.Perms.Session().UserID()
		if uid == "" {
			return Download{}, a.deny(ctx, "Please log in to export applications.")
		}
		apps, err := a.Deps.Applications.ListByUser(ctx, uid)
		if err != nil {
			a.toast(ctx, "Failed to export applications. Please try again.", true)
			return Download{}, err
		}
		rows = applications.ToExportRows(FilterApplications(apps, search, status), nil)
	}

	var buf bytes.Buffer
	if err := export.Write(&buf, format, rows, opts); err != nil {
		if errors.Is(err, export.ErrNothingToExport) {
			a.toast(ctx, err.Error(), true)
		} else {
			a.toast(ctx, "Failed to export applications. Please try again.", true)
		}
		return Download{}, err
	}
	return Download{
		Filename:    export.Filename(prefix, format, a.now()),
		ContentType: format.ContentType(),
		Data:        buf.Bytes(),
	}, nil
}
