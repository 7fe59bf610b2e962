package resumes

import (
	"job-tracker/internal/shared/util"
)

// Filter narrows the resume list by display name, file name or tag text,
// and optionally by an exact tag.
type Filter struct {
	Search string
	Tag    string
}

// Matches reports whether res passes every active predicate.
func (f Filter) Matches(res Resume) bool {
	if !util.IsAllOrEmpty(f.Tag) && !hasTag(res.Tags, f.Tag) {
		return false
	}
	if util.ContainsFold(res.DisplayName, f.Search) || util.ContainsFold(res.FileName, f.Search) {
		return true
	}
	for _, t := range res.Tags {
		if util.ContainsFold(t, f.Search) {
			return true
		}
	}
	return false
}

// Apply returns matching resumes in input order.
func (f Filter) Apply(list []Resume) []Resume {
	out := make([]Resume, 0, len(list))
	for _, res := range list {
		if f.Matches(res) {
			out = append(out, res)
		}
	}
	return out
}

func hasTag(tags []string, tag string) bool {
	want := util.Fold(tag)
	for _, t := range tags {
		if util.Fold(t) == want {
			return true
		}
	}
	return false
}
