package applications

import (
	"fmt"

	"job-tracker/internal/validation"
)

const (
	minTextLength = 2
	maxNotes      = 500
)

// Validate checks the form rules. It returns nil or an error wrapping both
// ErrInvalidInput and validation.Errors.
func Validate(in Input) error {
	var c validation.Checker
	if c.Required("jobTitle", "Job Title", in.JobTitle) {
		c.MinLength("jobTitle", "Job Title", in.JobTitle, minTextLength)
	}
	if c.Required("company", "Company", in.Company) {
		c.MinLength("company", "Company", in.Company, minTextLength)
	}
	if in.DateApplied.IsZero() {
		c.Fail("dateApplied", "Date Applied is required")
	}
	c.Min("salary", "Salary", in.Salary, 0)
	if !in.Status.Valid() {
		c.Fail("status", "Status is invalid")
	}
	c.OptionalURL("jobUrl", in.JobURL)
	c.MaxLength("notes", "Notes", in.Notes, maxNotes)

	if errs := c.Errors(); len(errs) > 0 {
		return fmt.Errorf("%w: %w", ErrInvalidInput, errs)
	}
	return nil
}
