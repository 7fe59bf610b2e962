package applications

import (
	"job-tracker/internal/shared/util"
)

// Filter is the dashboard filter state. An empty search or an empty or
// "all" status disables that field.
type Filter struct {
	Search string
	Status string
}

// Matches reports whether app passes every active predicate. Search looks
// at title, company and location.
func (f Filter) Matches(app Application) bool {
	if !util.IsAllOrEmpty(f.Status) && string(app.Status) != f.Status {
		return false
	}
	return util.ContainsFold(app.JobTitle, f.Search) ||
		util.ContainsFold(app.Company, f.Search) ||
		util.ContainsFold(app.Location, f.Search)
}

// Apply returns the matching applications in input order.
func (f Filter) Apply(apps []Application) []Application {
	out := make([]Application, 0, len(apps))
	for _, app := range apps {
		if f.Matches(app) {
			out = append(out, app)
		}
	}
	return out
}
