package users

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"job-tracker/internal/events"
	"job-tracker/internal/shared/telemetry"
)

// UnknownUser labels records whose owner has no profile.
const UnknownUser = "Unknown User"

// Service manages account profiles and the admin and active flags.
type Service struct {
	Repo   Repo
	Events events.Broker
	Now    func() time.Time
}

// NewService constructs a Service.
func NewService(repo Repo, broker events.Broker) *Service {
	if broker == nil {
		broker = events.Nop{}
	}
	return &Service{Repo: repo, Events: broker, Now: time.Now}
}

func (s *Service) now() time.Time {
	if s.Now == nil {
		return time.Now().UTC()
	}
	return s.Now().UTC()
}

// Register creates a password account. New accounts are active and not
// admin.
func (s *Service) Register(ctx context.Context, uid, email, passwordHash string) (Profile, error) {
	uid = strings.TrimSpace(uid)
	email = strings.TrimSpace(email)
	if uid == "" || email == "" {
		return Profile{}, fmt.Errorf("%w: uid and email are required", ErrInvalidInput)
	}
	now := s.now()
	p := Profile{
		UID:          uid,
		Email:        email,
		IsActive:     true,
		Provider:     ProviderPassword,
		PasswordHash: passwordHash,
		CreatedAt:    now,
		LastLoginAt:  now,
	}
	if err := s.Repo.Create(ctx, p); err != nil {
		return Profile{}, err
	}
	s.publish(ctx, events.UsersChanged, uid)
	return p, nil
}

// CreateOrUpdateProfile records a sign-in. A first sign-in creates the
// profile; later ones only move lastLoginAt.
func (s *Service) CreateOrUpdateProfile(ctx context.Context, uid, email, provider string) (Profile, error) {
	if strings.TrimSpace(uid) == "" {
		return Profile{}, fmt.Errorf("%w: uid is required", ErrInvalidInput)
	}
	now := s.now()
	existing, err := s.Repo.Get(ctx, uid)
	switch {
	case errors.Is(err, ErrNotFound):
		if provider == "" {
			provider = ProviderPassword
		}
		p := Profile{
			UID:         uid,
			Email:       strings.TrimSpace(email),
			IsActive:    true,
			Provider:    provider,
			CreatedAt:   now,
			LastLoginAt: now,
		}
		if err := s.Repo.Create(ctx, p); err != nil {
			return Profile{}, fmt.Errorf("create profile: %w", err)
		}
		s.publish(ctx, events.UsersChanged, uid)
		return p, nil
	case err != nil:
		return Profile{}, fmt.Errorf("load profile: %w", err)
	}

	existing.LastLoginAt = now
	if err := s.Repo.Update(ctx, existing); err != nil {
		return Profile{}, fmt.Errorf("update profile: %w", err)
	}
	return existing, nil
}

// GetProfile returns a profile or ErrNotFound.
func (s *Service) GetProfile(ctx context.Context, uid string) (Profile, error) {
	if strings.TrimSpace(uid) == "" {
		return Profile{}, ErrNotFound
	}
	return s.Repo.Get(ctx, uid)
}

// GetByEmail looks an account up by address, case-insensitively.
func (s *Service) GetByEmail(ctx context.Context, email string) (Profile, error) {
	if strings.TrimSpace(email) == "" {
		return Profile{}, ErrNotFound
	}
	return s.Repo.GetByEmail(ctx, strings.TrimSpace(email))
}

// ListAll returns every profile, newest account first.
func (s *Service) ListAll(ctx context.Context) ([]Profile, error) {
	return s.Repo.List(ctx)
}

// SetActive sets the active flag.
func (s *Service) SetActive(ctx context.Context, uid string, active bool) (Profile, error) {
	p, err := s.GetProfile(ctx, uid)
	if err != nil {
		return Profile{}, err
	}
	p.IsActive = active
	p.UpdatedAt = s.now()
	if err := s.Repo.Update(ctx, p); err != nil {
		return Profile{}, err
	}
	s.publish(ctx, events.UsersChanged, uid)
	return p, nil
}

// SetAdmin grants or removes the admin role and raises a permissions
// change for that user.
func (s *Service) SetAdmin(ctx context.Context, uid string, admin bool) (Profile, error) {
	p, err := s.GetProfile(ctx, uid)
	if err != nil {
		return Profile{}, err
	}
	p.IsAdmin = admin
	p.UpdatedAt = s.now()
	if err := s.Repo.Update(ctx, p); err != nil {
		return Profile{}, err
	}
	s.publish(ctx, events.PermissionsChanged, uid)
	s.publish(ctx, events.UsersChanged, uid)
	return p, nil
}

// IsAdmin implements permissions.AdminLookup. A missing profile is not
// admin.
func (s *Service) IsAdmin(ctx context.Context, uid string) (bool, error) {
	p, err := s.GetProfile(ctx, uid)
	if errors.Is(err, ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return p.IsAdmin, nil
}

// Emails maps every known uid to its address.
func (s *Service) Emails(ctx context.Context) (map[string]string, error) {
	profiles, err := s.Repo.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make(map[string]string, len(profiles))
	for _, p := range profiles {
		out[p.UID] = p.Email
	}
	return out, nil
}

// EmailFor returns a user's address, or UnknownUser.
func (s *Service) EmailFor(ctx context.Context, uid string) string {
	p, err := s.GetProfile(ctx, uid)
	if err != nil || p.Email == "" {
		return UnknownUser
	}
	return p.Email
}

func (s *Service) publish(ctx context.Context, topic events.Topic, uid string) {
	if err := s.Events.Publish(ctx, events.New(topic, uid, uid)); err != nil {
		telemetry.Warn("users.publish_failed", map[string]any{
			"user_id": uid,
			"topic":   string(topic),
			"error":   err,
		})
	}
}
