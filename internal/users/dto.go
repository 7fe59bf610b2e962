package users

import (
	"time"

	"job-tracker/internal/dates"
)

// ProfileResponse is the outward-facing representation of a profile. The
// password hash never leaves the service.
type ProfileResponse struct {
	UID           string     `json:"uid"`
	Email         string     `json:"email"`
	IsAdmin       bool       `json:"isAdmin"`
	IsActive      bool       `json:"isActive"`
	Provider      string     `json:"provider"`
	CreatedAt     time.Time  `json:"createdAt"`
	CreatedText   string     `json:"createdText"`
	LastLoginAt   *time.Time `json:"lastLoginAt,omitempty"`
	LastLoginText string     `json:"lastLoginText"`
	Status        Badge      `json:"status"`
	Role          Badge      `json:"role"`
}

// ToResponse renders p for clients.
func ToResponse(p Profile) ProfileResponse {
	out := ProfileResponse{
		UID:           p.UID,
		Email:         p.Email,
		IsAdmin:       p.IsAdmin,
		IsActive:      p.IsActive,
		Provider:      p.Provider,
		CreatedAt:     p.CreatedAt,
		CreatedText:   dates.FormatShort(p.CreatedAt),
		LastLoginText: dates.FormatMedium(p.LastLoginAt),
		Status:        StatusBadge(p.IsActive),
		Role:          RoleBadge(p.IsAdmin),
	}
	if !p.LastLoginAt.IsZero() {
		t := p.LastLoginAt
		out.LastLoginAt = &t
	}
	return out
}

// ToResponses renders a list.
func ToResponses(profiles []Profile) []ProfileResponse {
	out := make([]ProfileResponse, 0, len(profiles))
	for _, p := range profiles {
		out = append(out, ToResponse(p))
	}
	return out
}
