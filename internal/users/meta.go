package users

import (
	"fmt"
	"time"
)

// Badge is display metadata for a status or role chip.
type Badge struct {
	Label string `json:"label"`
	Class string `json:"class"`
	Color string `json:"color"`
	Icon  string `json:"icon"`
}

// StatusBadge describes the active flag.
func StatusBadge(active bool) Badge {
	if active {
		return Badge{Label: "Active", Class: "active", Color: "primary", Icon: "check_circle"}
	}
	return Badge{Label: "Inactive", Class: "inactive", Color: "warn", Icon: "cancel"}
}

// RoleBadge describes the admin flag.
func RoleBadge(admin bool) Badge {
	if admin {
		return Badge{Label: "Administrator", Class: "admin", Color: "accent", Icon: "admin_panel_settings"}
	}
	return Badge{Label: "User", Class: "user", Color: "", Icon: "person"}
}

// Stats summarizes the user list for the management screen.
type Stats struct {
	TotalUsers       int `json:"totalUsers"`
	ActiveUsers      int `json:"activeUsers"`
	AdminUsers       int `json:"adminUsers"`
	NewUsersThisWeek int `json:"newUsersThisWeek"`
}

// Statistics counts profiles; new means created within seven days of now.
func Statistics(profiles []Profile, now time.Time) Stats {
	cutoff := now.Add(-7 * 24 * time.Hour)
	st := Stats{TotalUsers: len(profiles)}
	for _, p := range profiles {
		if p.IsActive {
			st.ActiveUsers++
		}
		if p.IsAdmin {
			st.AdminUsers++
		}
		if !p.CreatedAt.Before(cutoff) {
			st.NewUsersThisWeek++
		}
	}
	return st
}

// Notice is a toast: text plus how long to show it.
type Notice struct {
	Message  string        `json:"message"`
	Duration time.Duration `json:"-"`
	Error    bool          `json:"error"`
}

// ActiveNotice is the toast after toggling the active flag.
func ActiveNotice(email string, active bool, err error) Notice {
	if err != nil {
		verb := "deactivate"
		if active {
			verb = "activate"
		}
		return Notice{Message: fmt.Sprintf("Failed to %s user. Please try again.", verb), Duration: 5 * time.Second, Error: true}
	}
	verb := "deactivated"
	if active {
		verb = "activated"
	}
	return Notice{Message: fmt.Sprintf("User %s has been %s successfully", email, verb), Duration: 3 * time.Second}
}

// AdminNotice is the toast after toggling the admin flag.
func AdminNotice(email string, admin bool, err error) Notice {
	if err != nil {
		return Notice{Message: "Failed to update admin status. Please try again.", Duration: 5 * time.Second, Error: true}
	}
	if admin {
		return Notice{Message: "Successfully grant admin access to " + email, Duration: 3 * time.Second}
	}
	return Notice{Message: "Successfully remove admin access from " + email, Duration: 3 * time.Second}
}
