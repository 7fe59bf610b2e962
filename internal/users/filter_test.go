package users

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func sampleProfiles() []Profile {
	return []Profile{
		{UID: "1", Email: "alice@acme.com", IsActive: true, IsAdmin: true, CreatedAt: fixedNow.AddDate(0, 0, -1)},
		{UID: "2", Email: "bob@gmail.com", IsActive: true, CreatedAt: fixedNow.AddDate(0, 0, -30)},
		{UID: "3", Email: "carol@acme.com", IsActive: false, CreatedAt: fixedNow.AddDate(0, 0, -7)},
		{UID: "4", Email: "dave@acme.com", IsActive: false, IsAdmin: true, CreatedAt: fixedNow.AddDate(0, -2, 0)},
	}
}

func uids(ps []Profile) string {
	out := ""
	for _, p := range ps {
		out += p.UID
	}
	return out
}

func TestFilterAndSemantics(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		filter Filter
		want   string
	}{
		{name: "sentinels", filter: Filter{Status: "all", Role: "all"}, want: "1234"},
		{name: "zero value", filter: Filter{}, want: "1234"},
		{name: "search", filter: Filter{Search: "ACME"}, want: "134"},
		{name: "active", filter: Filter{Status: "active"}, want: "12"},
		{name: "inactive admins", filter: Filter{Status: "inactive", Role: "admin"}, want: "4"},
		{name: "plain users", filter: Filter{Role: "user"}, want: "23"},
		{name: "all three", filter: Filter{Search: "acme", Status: "active", Role: "admin"}, want: "1"},
		{name: "none", filter: Filter{Search: "gmail", Role: "admin"}, want: ""},
		{name: "unknown status", filter: Filter{Status: "Active"}, want: ""},
		{name: "unknown role", filter: Filter{Role: "owner"}, want: ""},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, uids(tt.filter.Apply(sampleProfiles())))
		})
	}
}

func TestStatistics(t *testing.T) {
	st := Statistics(sampleProfiles(), fixedNow)
	assert.Equal(t, Stats{TotalUsers: 4, ActiveUsers: 2, AdminUsers: 2, NewUsersThisWeek: 2}, st)
}

func TestBadgesAndNotices(t *testing.T) {
	assert.Equal(t, "Active", StatusBadge(true).Label)
	assert.Equal(t, "cancel", StatusBadge(false).Icon)
	assert.Equal(t, "Administrator", RoleBadge(true).Label)
	assert.Equal(t, "person", RoleBadge(false).Icon)

	n := ActiveNotice("a@example.com", true, nil)
	assert.Equal(t, "User a@example.com has been activated successfully", n.Message)
	assert.Equal(t, 3*time.Second, n.Duration)

	n = ActiveNotice("a@example.com", false, assert.AnError)
	assert.Equal(t, "Failed to deactivate user. Please try again.", n.Message)
	assert.True(t, n.Error)
	assert.Equal(t, 5*time.Second, n.Duration)

	assert.Equal(t, "Successfully remove admin access from a@example.com", AdminNotice("a@example.com", false, nil).Message)
	assert.Equal(t, "Failed to update admin status. Please try again.", AdminNotice("a@example.com", true, assert.AnError).Message)
}
