// Package session tracks who is signed in on one client connection and
// announces identity changes to interested parties.
package session

import (
	"context"

	"job-tracker/internal/viewstate"
)

// Provider values match the identity providers the auth service issues.
const (
	ProviderPassword = "password"
	ProviderGoogle   = "google"
)

// Identity is an authenticated principal.
type Identity struct {
	UID      string
	Email    string
	Provider string
}

// Session holds the current identity.
type Session struct {
	cell *viewstate.Cell[*Identity]
}

// New returns a session signed in as id, or signed out when id is nil.
func New(id *Identity) *Session {
	return &Session{cell: viewstate.NewCell(clone(id), sameIdentity)}
}

// Current returns a copy of the signed-in identity, or nil.
func (s *Session) Current() *Identity {
	return clone(s.cell.Get())
}

// UserID returns the signed-in uid, or "".
func (s *Session) UserID() string {
	if id := s.Current(); id != nil {
		return id.UID
	}
	return ""
}

// Email returns the signed-in email, or "".
func (s *Session) Email() string {
	if id := s.Current(); id != nil {
		return id.Email
	}
	return ""
}

// IsFederated reports whether the identity came from Google sign-in.
func (s *Session) IsFederated() bool {
	id := s.Current()
	return id != nil && id.Provider == ProviderGoogle
}

// SignIn replaces the identity and notifies watchers when it changed.
func (s *Session) SignIn(id Identity) {
	s.cell.Set(&id)
}

// SignOut clears the identity; watchers receive nil.
func (s *Session) SignOut() {
	s.cell.Set(nil)
}

// Watch delivers each identity change until ctx is done. Only the most
// recent unread change is retained. Receivers must not modify the value.
func (s *Session) Watch(ctx context.Context) <-chan *Identity {
	return s.cell.Watch(ctx)
}

func clone(id *Identity) *Identity {
	if id == nil {
		return nil
	}
	cp := *id
	return &cp
}

func sameIdentity(a, b *Identity) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
