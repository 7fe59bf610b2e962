// Package auth issues and ends sessions for password and Google sign-in.
package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	sharedauth "job-tracker/internal/shared/auth"
	"job-tracker/internal/shared/metrics"
	"job-tracker/internal/shared/server/middleware"
	"job-tracker/internal/shared/telemetry"
	"job-tracker/internal/users"
	"job-tracker/internal/validation"
)

// loginRule allows a short burst of attempts per address, then one every
// six seconds.
var loginRule = middleware.RateLimitRule{Rate: 1.0 / 6, Burst: 5}

// Credentials is an email and password pair.
type Credentials struct {
	Email    string
	Password string
}

// SignIn is an issued session.
type SignIn struct {
	Token     string
	ExpiresAt time.Time
	UID       string
	Email     string
	Provider  string
	Profile   *users.Profile
}

// Service signs users in and out.
type Service struct {
	Users       *users.Service
	Revocations Revocations
	Limiter     *middleware.RateLimiter
	BcryptCost  int
}

// NewService wires the auth service.
func NewService(usersSvc *users.Service, revocations Revocations) *Service {
	if revocations == nil {
		revocations = NewMemoryRevocations()
	}
	return &Service{
		Users:       usersSvc,
		Revocations: revocations,
		Limiter:     middleware.NewRateLimiter(nil),
		BcryptCost:  bcrypt.DefaultCost,
	}
}

// Register creates a password account and signs it in.
func (s *Service) Register(ctx context.Context, in Credentials) (SignIn, error) {
	email := strings.TrimSpace(in.Email)
	if !validation.ValidEmail(email) {
		return SignIn{}, s.failed(fail(CodeInvalidEmail, nil))
	}
	if utf8.RuneCountInString(in.Password) < validation.MinPasswordLength {
		return SignIn{}, s.failed(fail(CodeWeakPassword, nil))
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.BcryptCost)
	if err != nil {
		return SignIn{}, s.failed(fail(CodeInternal, fmt.Errorf("hash password: %w", err)))
	}

	profile, err := s.Users.Register(ctx, uuid.NewString(), email, string(hash))
	if errors.Is(err, users.ErrEmailTaken) {
		return SignIn{}, s.failed(fail(CodeEmailInUse, err))
	}
	if err != nil {
		return SignIn{}, s.failed(fail(CodeInternal, err))
	}

	out, err := s.issue(profile.UID, profile.Email, sharedauth.ProviderPassword)
	if err != nil {
		return SignIn{}, err
	}
	out.Profile = &profile
	telemetry.Info("auth.registered", map[string]any{"user_id": profile.UID})
	return out, nil
}

// Login checks a password. Unknown addresses and wrong passwords both report
// CodeInvalidCredential.
func (s *Service) Login(ctx context.Context, in Credentials) (SignIn, error) {
	email := strings.TrimSpace(in.Email)
	if !validation.ValidEmail(email) {
		return SignIn{}, s.failed(fail(CodeInvalidEmail, nil))
	}
	if ok, _ := s.Limiter.Allow("login|"+strings.ToLower(email), loginRule); !ok {
		return SignIn{}, s.failed(fail(CodeTooManyRequests, nil))
	}

	profile, err := s.Users.GetByEmail(ctx, email)
	if errors.Is(err, users.ErrNotFound) {
		return SignIn{}, s.failed(fail(CodeInvalidCredential, nil))
	}
	if err != nil {
		return SignIn{}, s.failed(fail(CodeNetwork, err))
	}
	if !profile.HasPassword() {
		return SignIn{}, s.failed(fail(CodeInvalidCredential, nil))
	}
	if err := bcrypt.CompareHashAndPassword([]byte(profile.PasswordHash), []byte(in.Password)); err != nil {
		return SignIn{}, s.failed(fail(CodeInvalidCredential, nil))
	}
	if !profile.IsActive {
		return SignIn{}, s.failed(fail(CodeUserDisabled, nil))
	}

	out, err := s.issue(profile.UID, profile.Email, sharedauth.ProviderPassword)
	if err != nil {
		return SignIn{}, err
	}
	out.Profile = s.recordSignIn(ctx, profile.UID, profile.Email, sharedauth.ProviderPassword)
	return out, nil
}

// GoogleSignIn signs in a verified Google identity. The subject is prefixed
// so it cannot collide with password account ids.
func (s *Service) GoogleSignIn(ctx context.Context, subject, email string) (SignIn, error) {
	if strings.TrimSpace(subject) == "" {
		return SignIn{}, s.failed(fail(CodeInternal, errors.New("google subject is empty")))
	}
	uid := "google:" + subject
	email = strings.TrimSpace(email)

	if email != "" {
		other, err := s.Users.GetByEmail(ctx, email)
		if err == nil && other.UID != uid {
			return SignIn{}, s.failed(fail(CodeAccountExists, nil))
		}
	}
	existing, err := s.Users.GetProfile(ctx, uid)
	switch {
	case err == nil && !existing.IsActive:
		return SignIn{}, s.failed(fail(CodeUserDisabled, nil))
	case err != nil && !errors.Is(err, users.ErrNotFound):
		telemetry.Warn("auth.profile_lookup_failed", map[string]any{"user_id": uid, "error": err})
	}

	out, err := s.issue(uid, email, sharedauth.ProviderGoogle)
	if err != nil {
		return SignIn{}, err
	}
	out.Profile = s.recordSignIn(ctx, uid, email, sharedauth.ProviderGoogle)
	return out, nil
}

// Logout revokes the token so it stops authenticating.
func (s *Service) Logout(ctx context.Context, claims sharedauth.Claims) error {
	if err := s.Revocations.Revoke(ctx, claims.TokenID(), claims.Expiry()); err != nil {
		return fmt.Errorf("revoke token: %w", err)
	}
	telemetry.Info("auth.logged_out", map[string]any{"user_id": claims.UserID()})
	return nil
}

// IsRevoked implements middleware.RevocationChecker.
func (s *Service) IsRevoked(tokenID string) bool {
	return s.Revocations.IsRevoked(tokenID)
}

func (s *Service) issue(uid, email, provider string) (SignIn, error) {
	token, claims, err := sharedauth.SignJWT(uid, email, provider)
	if err != nil {
		return SignIn{}, s.failed(fail(CodeInternal, err))
	}
	return SignIn{
		Token:     token,
		ExpiresAt: claims.Expiry(),
		UID:       uid,
		Email:     email,
		Provider:  provider,
	}, nil
}

// recordSignIn upserts the profile. Sign-in has already succeeded, so a
// failure here is logged and the session stands.
func (s *Service) recordSignIn(ctx context.Context, uid, email, provider string) *users.Profile {
	p, err := s.Users.CreateOrUpdateProfile(ctx, uid, email, provider)
	if err != nil {
		telemetry.Warn("auth.profile_upsert_failed", map[string]any{
			"user_id": uid,
			"error":   err,
		})
		return nil
	}
	return &p
}

func (s *Service) failed(err error) error {
	metrics.IncAuthFailure(string(CodeOf(err)))
	return err
}
