package applications

import "time"

// ResumeRef points an application at the resume sent with it.
type ResumeRef struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	URL  string `json:"url"`
}

// Application is one job application owned by a user. UserID never changes
// after creation.
type Application struct {
	ID          string
	UserID      string
	JobTitle    string
	Company     string
	DateApplied time.Time
	Location    string
	Salary      float64
	Status      Status
	Notes       string
	JobURL      string
	Resume      *ResumeRef
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Input is the submitted application form.
type Input struct {
	JobTitle    string
	Company     string
	DateApplied time.Time
	Location    string
	Salary      float64
	Status      Status
	Notes       string
	JobURL      string
	Resume      *ResumeRef
}

// Patch is a partial update; nil fields are left unchanged.
type Patch struct {
	JobTitle    *string
	Company     *string
	DateApplied *time.Time
	Location    *string
	Salary      *float64
	Status      *Status
	Notes       *string
	JobURL      *string
	Resume      *ResumeRef
	ClearResume bool
}

func (a Application) input() Input {
	return Input{
		JobTitle:    a.JobTitle,
		Company:     a.Company,
		DateApplied: a.DateApplied,
		Location:    a.Location,
		Salary:      a.Salary,
		Status:      a.Status,
		Notes:       a.Notes,
		JobURL:      a.JobURL,
		Resume:      a.Resume,
	}
}

func (p Patch) apply(in Input) Input {
	if p.JobTitle != nil {
		in.JobTitle = *p.JobTitle
	}
	if p.Company != nil {
		in.Company = *p.Company
	}
	if p.DateApplied != nil {
		in.DateApplied = *p.DateApplied
	}
	if p.Location != nil {
		in.Location = *p.Location
	}
	if p.Salary != nil {
		in.Salary = *p.Salary
	}
	if p.Status != nil {
		in.Status = *p.Status
	}
	if p.Notes != nil {
		in.Notes = *p.Notes
	}
	if p.JobURL != nil {
		in.JobURL = *p.JobURL
	}
	if p.ClearResume {
		in.Resume = nil
	} else if p.Resume != nil {
		ref := *p.Resume
		in.Resume = &ref
	}
	return in
}
