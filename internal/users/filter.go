package users

import "job-tracker/internal/shared/util"

// Filter is the user-management filter state. Empty or "all" disables a
// discrete field; an empty search matches everyone. Any other value that is
// not a known status or role matches nobody.
type Filter struct {
	Search string
	Status string // active | inactive
	Role   string // admin | user
}

// Matches reports whether p passes every active predicate.
func (f Filter) Matches(p Profile) bool {
	switch f.Status {
	case "active":
		if !p.IsActive {
			return false
		}
	case "inactive":
		if p.IsActive {
			return false
		}
	default:
		if !util.IsAllOrEmpty(f.Status) {
			return false
		}
	}
	switch f.Role {
	case "admin":
		if !p.IsAdmin {
			return false
		}
	case "user":
		if p.IsAdmin {
			return false
		}
	default:
		if !util.IsAllOrEmpty(f.Role) {
			return false
		}
	}
	return util.ContainsFold(p.Email, f.Search)
}

// Apply returns matching profiles in input order.
func (f Filter) Apply(profiles []Profile) []Profile {
	out := make([]Profile, 0, len(profiles))
	for _, p := range profiles {
		if f.Matches(p) {
			out = append(out, p)
		}
	}
	return out
}
