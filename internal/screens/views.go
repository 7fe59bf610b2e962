// Package screens composes each screen's live list from the domain services,
// the permission cache and the change broker, and runs the user actions
// those screens offer.
package screens

import (
	"context"
	"errors"
	"fmt"
	"time"

	"job-tracker/internal/applications"
	"job-tracker/internal/events"
	"job-tracker/internal/permissions"
	"job-tracker/internal/resumes"
	"job-tracker/internal/users"
	"job-tracker/internal/viewstate"
)

// Screen names accepted by Build.
const (
	NameDashboard = "dashboard"
	NameAdmin     = "admin"
	NameUsers     = "users"
	NameResumes   = "resumes"
)

var (
	ErrForbidden     = errors.New("You do not have permission to perform this action.")
	ErrUnknownScreen = errors.New("unknown screen")
)

// Deps are the services and settings every screen reads from.
type Deps struct {
	Applications *applications.Service
	Users        *users.Service
	Resumes      *resumes.Service
	Events       events.Broker
	Debounce     time.Duration
}

// Frame is one rendered snapshot of a screen, independent of its item type.
type Frame struct {
	Screen  string            `json:"screen"`
	Items   any               `json:"items"`
	Total   int               `json:"total"`
	Filters viewstate.Filters `json:"filters"`
	Loading bool              `json:"loading"`
	Error   string            `json:"error,omitempty"`
}

// Screen is a running view driven by a transport.
type Screen interface {
	Name() string
	Start(ctx context.Context) <-chan Frame
	// SetFilter routes free-text fields through the debounce and applies
	// the rest immediately.
	SetFilter(name, value string)
	Refresh()
}

// AdminApplication is an application joined with its owner's email.
type AdminApplication struct {
	applications.Application
	UserEmail string
}

// AdminApplicationResponse renders an AdminApplication.
type AdminApplicationResponse struct {
	applications.ApplicationResponse
	UserEmail string `json:"userEmail"`
}

type screen[T, R any] struct {
	name   string
	view   *viewstate.View[T]
	render func([]T) R
	text   map[string]bool
	perms  *permissions.Cache
	broker events.Broker
	topics []events.Topic
	// own limits change events to the signed-in user's data.
	own bool
}

func (s *screen[T, R]) Name() string { return s.name }

// Start begins the fetch, re-reads on change events and keeps the loading
// flag raised while the caller's role is resolved.
func (s *screen[T, R]) Start(ctx context.Context) <-chan Frame {
	snaps := s.view.Start(ctx)

	if s.broker != nil && len(s.topics) > 0 {
		changes := s.broker.Subscribe(ctx, s.topics...)
		go func() {
			for evt := range changes {
				if s.own && !s.ownEvent(evt) {
					continue
				}
				s.view.NotifyChange(evt.At)
			}
		}()
	}
	if s.perms != nil {
		go s.perms.Run(ctx, s.broker)
		done := s.view.Track(viewstate.FlagAuth)
		go func() {
			defer done()
			s.perms.IsAdmin(ctx)
		}()
	}

	return viewstate.Map(snaps, func(snap viewstate.Snapshot[T]) Frame {
		return Frame{
			Screen:  s.name,
			Items:   s.render(snap.Items),
			Total:   snap.Total,
			Filters: snap.Filters,
			Loading: snap.Loading,
			Error:   snap.Error,
		}
	})
}

func (s *screen[T, R]) ownEvent(evt events.Event) bool {
	if evt.UserID == "" || s.perms == nil {
		return true
	}
	return evt.UserID == s.perms.Session().UserID()
}

func (s *screen[T, R]) SetFilter(name, value string) {
	if s.text[name] {
		s.view.SetText(name, value)
		return
	}
	s.view.SetOption(name, value)
}

func (s *screen[T, R]) Refresh() { s.view.Refresh() }

var searchOnly = map[string]bool{"search": true}

// Build returns the named screen for the caller behind perms.
func Build(name string, d Deps, perms *permissions.Cache) (Screen, error) {
	switch name {
	case NameDashboard:
		return Dashboard(d, perms), nil
	case NameAdmin:
		return AdminDashboard(d, perms), nil
	case NameUsers:
		return UserManagement(d, perms), nil
	case NameResumes:
		return Resumes(d, perms), nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownScreen, name)
}

// Dashboard lists the caller's own applications. Signed out, it is empty.
func Dashboard(d Deps, perms *permissions.Cache) Screen {
	fetch := func(ctx context.Context) ([]applications.Application, error) {
		uid := perms.Session().UserID()
		if uid == "" {
			return nil, nil
		}
		return d.Applications.ListByUser(ctx, uid)
	}
	return &screen[applications.Application, []applications.ApplicationResponse]{
		name: NameDashboard,
		view: viewstate.New(fetch, applicationFilter, viewstate.Options{
			Debounce: d.Debounce,
			Filters:  viewstate.Filters{"search": "", "status": "all"},
			Name:     NameDashboard,
		}),
		render: applications.ToResponses,
		text:   searchOnly,
		perms:  perms,
		broker: d.Events,
		topics: []events.Topic{events.ApplicationsChanged},
		own:    true,
	}
}

// AdminDashboard lists every user's applications with owner emails.
func AdminDashboard(d Deps, perms *permissions.Cache) Screen {
	fetch := func(ctx context.Context) ([]AdminApplication, error) {
		if !perms.CanViewAllApplications(ctx) {
			return nil, ErrForbidden
		}
		return LoadAdminApplications(ctx, d)
	}
	return &screen[AdminApplication, []AdminApplicationResponse]{
		name: NameAdmin,
		view: viewstate.New(fetch, adminFilter, viewstate.Options{
			Debounce: d.Debounce,
			Filters:  viewstate.Filters{"search": "", "status": "all", "user": "all"},
			Name:     NameAdmin,
		}),
		render: renderAdmin,
		text:   searchOnly,
		perms:  perms,
		broker: d.Events,
		topics: []events.Topic{events.ApplicationsChanged, events.UsersChanged, events.PermissionsChanged},
	}
}

// UserManagement lists every profile.
func UserManagement(d Deps, perms *permissions.Cache) Screen {
	fetch := func(ctx context.Context) ([]users.Profile, error) {
		if !perms.CanViewUserManagement(ctx) {
			return nil, ErrForbidden
		}
		return d.Users.ListAll(ctx)
	}
	return &screen[users.Profile, []users.ProfileResponse]{
		name: NameUsers,
		view: viewstate.New(fetch, userFilter, viewstate.Options{
			Debounce: d.Debounce,
			Filters:  viewstate.Filters{"search": "", "status": "all", "role": "all"},
			Name:     NameUsers,
		}),
		render: users.ToResponses,
		text:   searchOnly,
		perms:  perms,
		broker: d.Events,
		topics: []events.Topic{events.UsersChanged, events.PermissionsChanged},
	}
}

// Resumes lists the caller's resumes.
func Resumes(d Deps, perms *permissions.Cache) Screen {
	fetch := func(ctx context.Context) ([]resumes.Resume, error) {
		uid := perms.Session().UserID()
		if uid == "" {
			return nil, nil
		}
		return d.Resumes.List(ctx, uid)
	}
	return &screen[resumes.Resume, []resumes.ResumeResponse]{
		name: NameResumes,
		view: viewstate.New(fetch, resumeFilter, viewstate.Options{
			Debounce: d.Debounce,
			Filters:  viewstate.Filters{"search": "", "tag": "all"},
			Name:     NameResumes,
		}),
		render: resumes.ToResponses,
		text:   searchOnly,
		perms:  perms,
		broker: d.Events,
		topics: []events.Topic{events.ResumesChanged},
		own:    true,
	}
}

// LoadAdminApplications joins every application with its owner's email.
// Owners without a profile show as users.UnknownUser.
func LoadAdminApplications(ctx context.Context, d Deps) ([]AdminApplication, error) {
	apps, err := d.Applications.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	emails, err := d.Users.Emails(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]AdminApplication, 0, len(apps))
	for _, app := range apps {
		email := emails[app.UserID]
		if email == "" {
			email = users.UnknownUser
		}
		out = append(out, AdminApplication{Application: app, UserEmail: email})
	}
	return out, nil
}

func renderAdmin(items []AdminApplication) []AdminApplicationResponse {
	out := make([]AdminApplicationResponse, 0, len(items))
	for _, it := range items {
		out = append(out, AdminApplicationResponse{
			ApplicationResponse: applications.ToResponse(it.Application),
			UserEmail:           it.UserEmail,
		})
	}
	return out
}
