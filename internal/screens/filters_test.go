package screens

import (
	"testing"
	"time"

	"job-tracker/internal/applications"
	"job-tracker/internal/resumes"
	"job-tracker/internal/users"
)

func sampleApps() []applications.Application {
	day := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	return []applications.Application{
		{ID: "1", UserID: "u1", JobTitle: "Go Developer", Company: "Acme", Location: "Berlin", Status: applications.StatusApplied, DateApplied: day},
		{ID: "2", UserID: "u2", JobTitle: "Data Engineer", Company: "Globex", Location: "Remote", Status: applications.StatusInterview, DateApplied: day},
		{ID: "3", UserID: "u1", JobTitle: "SRE", Company: "Initech", Status: applications.StatusRejected, DateApplied: day},
		{ID: "4", UserID: "u3", JobTitle: "", Company: "", Status: applications.Status("archived"), DateApplied: day},
	}
}

func ids(apps []applications.Application) []string {
	out := make([]string, 0, len(apps))
	for _, a := range apps {
		out = append(out, a.ID)
	}
	return out
}

func equalIDs(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestFilterApplications(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name   string
		search string
		status string
		want   []string
	}{
		{"no filters", "", "all", []string{"1", "2", "3", "4"}},
		{"empty status is all", "", "", []string{"1", "2", "3", "4"}},
		{"search title folded", "go DEV", "all", []string{"1"}},
		{"search company", "globex", "", []string{"2"}},
		{"search location", "remote", "", []string{"2"}},
		{"status only", "", "rejected", []string{"3"}},
		{"and semantics", "engineer", "applied", []string{}},
		{"literal all is searchable", "all", "all", []string{}},
		{"unknown status never matches", "", "offer", []string{}},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := ids(FilterApplications(sampleApps(), tt.search, tt.status))
			if !equalIDs(got, tt.want) {
				t.Fatalf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestFilterAdminApplications(t *testing.T) {
	t.Parallel()
	emails := map[string]string{"u1": "ana@corp.io", "u2": "bo@gmail.com"}
	tests := []struct {
		name                 string
		search, status, user string
		want                 []string
	}{
		{"everything", "", "all", "all", []string{"1", "2", "3", "4"}},
		{"owner email search", "CORP.io", "", "", []string{"1", "3"}},
		{"owner filter", "", "", "u2", []string{"2"}},
		{"email and status", "corp", "rejected", "", []string{"3"}},
		{"owner without profile", "gmail", "", "u3", []string{}},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := ids(FilterAdminApplications(sampleApps(), emails, tt.search, tt.status, tt.user))
			if !equalIDs(got, tt.want) {
				t.Fatalf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestFilterUsers(t *testing.T) {
	t.Parallel()
	profiles := []users.Profile{
		{UID: "1", Email: "admin@example.com", IsAdmin: true, IsActive: true},
		{UID: "2", Email: "user@example.com", IsActive: true},
		{UID: "3", Email: "gone@example.com"},
	}
	cases := []struct {
		search, status, role string
		want                 int
	}{
		{"", "all", "all", 3},
		{"EXAMPLE", "active", "all", 2},
		{"", "inactive", "", 1},
		{"", "active", "user", 1},
		{"admin", "inactive", "admin", 0},
	}
	for _, c := range cases {
		if got := len(FilterUsers(profiles, c.search, c.status, c.role)); got != c.want {
			t.Fatalf("FilterUsers(%q,%q,%q) = %d, want %d", c.search, c.status, c.role, got, c.want)
		}
	}
}

func TestFilterResumes(t *testing.T) {
	t.Parallel()
	list := []resumes.Resume{
		{ID: "1", DisplayName: "Backend CV", FileName: "a.pdf", Tags: []string{"go"}},
		{ID: "2", DisplayName: "Frontend CV", FileName: "b.pdf", Tags: []string{"ts"}},
		{ID: "3", DisplayName: "Old", FileName: "c.pdf"},
	}
	if got := len(FilterResumes(list, "cv", "all")); got != 2 {
		t.Fatalf("search cv = %d, want 2", got)
	}
	if got := len(FilterResumes(list, "cv", "go")); got != 1 {
		t.Fatalf("search cv tag go = %d, want 1", got)
	}
	if got := len(FilterResumes(list, "", "")); got != 3 {
		t.Fatalf("no filters = %d, want 3", got)
	}
}
