package users

import "time"

// Provider values recorded on a profile.
const (
	ProviderPassword = "password"
	ProviderGoogle   = "google"
)

// Profile is the account record keyed by the identity's subject id.
type Profile struct {
	UID          string
	Email        string
	IsAdmin      bool
	IsActive     bool
	Provider     string
	PasswordHash string
	CreatedAt    time.Time
	LastLoginAt  time.Time
	UpdatedAt    time.Time
}

// HasPassword reports whether the account can sign in with a password.
func (p Profile) HasPassword() bool { return p.PasswordHash != "" }
