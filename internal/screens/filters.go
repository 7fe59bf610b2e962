package screens

import (
	"job-tracker/internal/applications"
	"job-tracker/internal/resumes"
	"job-tracker/internal/shared/util"
	"job-tracker/internal/users"
	"job-tracker/internal/viewstate"
)

// FilterApplications narrows the dashboard list. Every active predicate must
// hold; empty and "all" disable a field.
func FilterApplications(apps []applications.Application, search, status string) []applications.Application {
	return applications.Filter{Search: search, Status: status}.Apply(apps)
}

// FilterAdminApplications narrows the all-users list. Search also matches
// the owner's email; user limits to one owner id.
func FilterAdminApplications(apps []applications.Application, emails map[string]string, search, status, user string) []applications.Application {
	out := make([]applications.Application, 0, len(apps))
	for _, app := range apps {
		if matchAdmin(app, emails[app.UserID], search, status, user) {
			out = append(out, app)
		}
	}
	return out
}

func matchAdmin(app applications.Application, email, search, status, user string) bool {
	if !(applications.Filter{Status: status}).Matches(app) {
		return false
	}
	if !util.IsAllOrEmpty(user) && app.UserID != user {
		return false
	}
	return (applications.Filter{Search: search}).Matches(app) || util.ContainsFold(email, search)
}

// FilterUsers narrows the user-management list.
func FilterUsers(profiles []users.Profile, search, status, role string) []users.Profile {
	return users.Filter{Search: search, Status: status, Role: role}.Apply(profiles)
}

// FilterResumes narrows the resume list.
func FilterResumes(list []resumes.Resume, search, tag string) []resumes.Resume {
	return resumes.Filter{Search: search, Tag: tag}.Apply(list)
}

func applicationFilter(items []applications.Application, f viewstate.Filters) []applications.Application {
	return FilterApplications(items, f.Get("search"), f.Get("status"))
}

func adminFilter(items []AdminApplication, f viewstate.Filters) []AdminApplication {
	out := make([]AdminApplication, 0, len(items))
	for _, it := range items {
		if matchAdmin(it.Application, it.UserEmail, f.Get("search"), f.Get("status"), f.Get("user")) {
			out = append(out, it)
		}
	}
	return out
}

func userFilter(items []users.Profile, f viewstate.Filters) []users.Profile {
	return FilterUsers(items, f.Get("search"), f.Get("status"), f.Get("role"))
}

func resumeFilter(items []resumes.Resume, f viewstate.Filters) []resumes.Resume {
	return FilterResumes(items, f.Get("search"), f.Get("tag"))
}
