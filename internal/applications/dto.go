package applications

import (
	"strings"
	"time"

	"job-tracker/internal/dates"
)

// ApplicationResponse is the outward-facing representation of an application.
type ApplicationResponse struct {
	ID              string     `json:"id"`
	UserID          string     `json:"userId"`
	UserEmail       string     `json:"userEmail,omitempty"`
	JobTitle        string     `json:"jobTitle"`
	Company         string     `json:"company"`
	DateApplied     time.Time  `json:"dateApplied"`
	DateAppliedText string     `json:"dateAppliedText"`
	AppliedRelative string     `json:"appliedRelative"`
	Location        string     `json:"location"`
	Salary          float64    `json:"salary"`
	Status          Status     `json:"status"`
	StatusMeta      StatusMeta `json:"statusMeta"`
	Notes           string     `json:"notes"`
	JobURL          string     `json:"jobUrl,omitempty"`
	Resume          *ResumeRef `json:"resume,omitempty"`
	CreatedAt       time.Time  `json:"createdAt"`
	UpdatedAt       time.Time  `json:"updatedAt"`
}

// ToResponse renders app for clients.
func ToResponse(app Application) ApplicationResponse {
	meta, _ := app.Status.meta()
	return ApplicationResponse{
		ID:              app.ID,
		UserID:          app.UserID,
		JobTitle:        app.JobTitle,
		Company:         app.Company,
		DateApplied:     app.DateApplied,
		DateAppliedText: dates.FormatShort(app.DateApplied),
		AppliedRelative: dates.Relative(app.DateApplied),
		Location:        app.Location,
		Salary:          app.Salary,
		Status:          app.Status,
		StatusMeta:      meta,
		Notes:           app.Notes,
		JobURL:          app.JobURL,
		Resume:          app.Resume,
		CreatedAt:       app.CreatedAt,
		UpdatedAt:       app.UpdatedAt,
	}
}

// ToResponses renders a list.
func ToResponses(apps []Application) []ApplicationResponse {
	out := make([]ApplicationResponse, 0, len(apps))
	for _, app := range apps {
		out = append(out, ToResponse(app))
	}
	return out
}

// applicationRequest is the create/update body. Dates accept any shape the
// dates package understands (ISO string, epoch millis, seconds object).
type applicationRequest struct {
	JobTitle    *string    `json:"jobTitle"`
	Company     *string    `json:"company"`
	DateApplied any        `json:"dateApplied"`
	Location    *string    `json:"location"`
	Salary      *float64   `json:"salary"`
	Status      *string    `json:"status"`
	Notes       *string    `json:"notes"`
	JobURL      *string    `json:"jobUrl"`
	Resume      *ResumeRef `json:"resume"`
	ClearResume bool       `json:"clearResume"`
}

func (r applicationRequest) toInput() (Input, error) {
	in := Input{
		JobTitle: deref(r.JobTitle),
		Company:  deref(r.Company),
		Location: deref(r.Location),
		Notes:    deref(r.Notes),
		JobURL:   deref(r.JobURL),
		Resume:   r.Resume,
	}
	if r.Salary != nil {
		in.Salary = *r.Salary
	}
	if r.DateApplied != nil {
		in.DateApplied = dates.NormalizeAny(r.DateApplied)
	}
	in.Status = StatusApplied
	if r.Status != nil && strings.TrimSpace(*r.Status) != "" {
		st, err := ParseStatus(*r.Status)
		if err != nil {
			return Input{}, err
		}
		in.Status = st
	}
	return in, nil
}

func (r applicationRequest) toPatch() (Patch, error) {
	p := Patch{
		JobTitle:    r.JobTitle,
		Company:     r.Company,
		Location:    r.Location,
		Salary:      r.Salary,
		Notes:       r.Notes,
		JobURL:      r.JobURL,
		Resume:      r.Resume,
		ClearResume: r.ClearResume,
	}
	if r.DateApplied != nil {
		t := dates.NormalizeAny(r.DateApplied)
		p.DateApplied = &t
	}
	if r.Status != nil {
		st, err := ParseStatus(*r.Status)
		if err != nil {
			return Patch{}, err
		}
		p.Status = &st
	}
	return p, nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
