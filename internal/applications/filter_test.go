package applications

import (
	"testing"
	"time"
)

func sampleApps() []Application {
	return []Application{
		{ID: "1", JobTitle: "Go Developer", Company: "Acme", Location: "Berlin", Status: StatusApplied, DateApplied: fixedNow.AddDate(0, 0, -1)},
		{ID: "2", JobTitle: "Frontend Engineer", Company: "Globex", Location: "Remote", Status: StatusInterview, DateApplied: fixedNow.AddDate(0, 0, -3)},
		{ID: "3", JobTitle: "Data Scientist", Company: "Initech", Location: "berlin", Status: StatusOffer, DateApplied: fixedNow.AddDate(0, 0, -20)},
		{ID: "4", JobTitle: "SRE", Company: "Acme", Location: "Paris", Status: StatusRejected, DateApplied: fixedNow.AddDate(0, 0, -7)},
	}
}

func ids(apps []Application) string {
	out := ""
	for _, a := range apps {
		out += a.ID
	}
	return out
}

func TestFilterApply(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		filter Filter
		want   string
	}{
		{name: "no filter", filter: Filter{}, want: "1234"},
		{name: "all status", filter: Filter{Status: "all"}, want: "1234"},
		{name: "company search", filter: Filter{Search: "acme"}, want: "14"},
		{name: "location case insensitive", filter: Filter{Search: "BERLIN"}, want: "13"},
		{name: "title substring", filter: Filter{Search: "engineer"}, want: "2"},
		{name: "status only", filter: Filter{Status: "offer"}, want: "3"},
		{name: "search and status", filter: Filter{Search: "acme", Status: "rejected"}, want: "4"},
		{name: "no match", filter: Filter{Search: "acme", Status: "offer"}, want: ""},
		{name: "whitespace search", filter: Filter{Search: "   "}, want: "1234"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := ids(tt.filter.Apply(sampleApps())); got != tt.want {
				t.Fatalf("expected %q, got %q", tt.want, got)
			}
		})
	}
}

func TestStatistics(t *testing.T) {
	st := Statistics(sampleApps(), fixedNow)
	if st.Total != 4 {
		t.Fatalf("expected total 4, got %d", st.Total)
	}
	for _, s := range []Status{StatusApplied, StatusInterview, StatusOffer, StatusRejected} {
		if st.ByStatus[s] != 1 {
			t.Fatalf("expected 1 %s, got %d", s, st.ByStatus[s])
		}
	}
	// the seven-day boundary is inclusive
	if st.Recent != 3 {
		t.Fatalf("expected 3 recent, got %d", st.Recent)
	}
	if st.SuccessRate != 50 {
		t.Fatalf("expected 50%% success, got %v", st.SuccessRate)
	}
}

func TestStatisticsEmpty(t *testing.T) {
	st := Statistics(nil, time.Now())
	if st.Total != 0 || st.SuccessRate != 0 || len(st.ByStatus) != 4 {
		t.Fatalf("unexpected empty stats %+v", st)
	}
}

func TestStatusMetadata(t *testing.T) {
	t.Parallel()

	tests := []struct {
		status Status
		label  string
		icon   string
		class  string
	}{
		{StatusApplied, "Applied", "send", "status-applied"},
		{StatusInterview, "Interview", "event", "status-interview"},
		{StatusOffer, "Offer", "celebration", "status-offer"},
		{StatusRejected, "Rejected", "cancel", "status-rejected"},
		{Status("ghosted"), "Unknown", "help", ""},
	}
	for _, tt := range tests {
		if tt.status.Label() != tt.label || tt.status.Icon() != tt.icon {
			t.Fatalf("%s: got %s/%s", tt.status, tt.status.Label(), tt.status.Icon())
		}
		if tt.class != "" && tt.status.Class() != tt.class {
			t.Fatalf("%s: class %s", tt.status, tt.status.Class())
		}
	}
	if _, err := ParseStatus("ghosted"); err == nil {
		t.Fatalf("expected error for unknown status")
	}
}
