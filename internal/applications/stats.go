package applications

import (
	"math"
	"time"
)

const recentWindow = 7 * 24 * time.Hour

// Stats summarizes a list of applications.
type Stats struct {
	Total       int            `json:"total"`
	ByStatus    map[Status]int `json:"byStatus"`
	Recent      int            `json:"recent"`
	SuccessRate float64        `json:"successRate"`
}

// Statistics counts apps by status, counts those applied within the last
// seven days of now, and reports the share of interview or offer outcomes as
// a percentage rounded to one decimal.
func Statistics(apps []Application, now time.Time) Stats {
	st := Stats{
		Total: len(apps),
		ByStatus: map[Status]int{
			StatusApplied:   0,
			StatusInterview: 0,
			StatusOffer:     0,
			StatusRejected:  0,
		},
	}
	cutoff := now.Add(-recentWindow)
	positive := 0
	for _, app := range apps {
		if app.Status.Valid() {
			st.ByStatus[app.Status]++
		}
		if app.Status.IsPositive() {
			positive++
		}
		if !app.DateApplied.Before(cutoff) {
			st.Recent++
		}
	}
	if st.Total > 0 {
		st.SuccessRate = math.Round(float64(positive)*1000/float64(st.Total)) / 10
	}
	return st
}
