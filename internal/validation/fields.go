// Package validation holds form rules shared by the services: field checks,
// password strength and the email-domain sign-in heuristic.
package validation

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"
)

var (
	urlRe    = regexp.MustCompile(`^https?://.+`)
	validate = validator.New()
)

// ValidEmail reports whether s is a syntactically valid email address.
func ValidEmail(s string) bool {
	s = strings.TrimSpace(s)
	if s == "" {
		return false
	}
	return validate.Var(s, "email") == nil
}

// ValidURL reports whether s starts with http:// or https:// and has more
// after the scheme. Empty input is not valid; callers treat empty optional
// fields separately.
func ValidURL(s string) bool {
	return urlRe.MatchString(strings.TrimSpace(s))
}

// FieldError is one failed rule on one form field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Errors collects field errors. A non-empty Errors is an error.
type Errors []FieldError

func (e Errors) Error() string {
	if len(e) == 0 {
		return "validation passed"
	}
	parts := make([]string, 0, len(e))
	for _, fe := range e {
		parts = append(parts, fe.Message)
	}
	return "Please fix the following: " + strings.Join(parts, ", ")
}

// Details maps field names to messages for error envelopes.
func (e Errors) Details() map[string]string {
	out := make(map[string]string, len(e))
	for _, fe := range e {
		if _, seen := out[fe.Field]; !seen {
			out[fe.Field] = fe.Message
		}
	}
	return out
}

// Err returns e as an error, or nil when empty.
func (e Errors) Err() error {
	if len(e) == 0 {
		return nil
	}
	return e
}

// Checker accumulates field errors with the standard messages.
type Checker struct {
	errs Errors
}

func (c *Checker) add(field, msg string) {
	c.errs = append(c.errs, FieldError{Field: field, Message: msg})
}

// Required fails when value is blank.
func (c *Checker) Required(field, label, value string) bool {
	if strings.TrimSpace(value) == "" {
		c.add(field, label+" is required")
		return false
	}
	return true
}

// MinLength fails when the trimmed value is shorter than n characters.
func (c *Checker) MinLength(field, label, value string, n int) {
	if utf8.RuneCountInString(strings.TrimSpace(value)) < n {
		c.add(field, fmt.Sprintf("%s must be at least %d characters", label, n))
	}
}

// MaxLength fails when value is longer than n characters.
func (c *Checker) MaxLength(field, label, value string, n int) {
	if utf8.RuneCountInString(value) > n {
		c.add(field, fmt.Sprintf("%s must be less than %d characters", label, n))
	}
}

// Min fails when value is below min.
func (c *Checker) Min(field, label string, value, min float64) {
	if value < min {
		c.add(field, fmt.Sprintf("%s must be at least %g", label, min))
	}
}

// OptionalURL fails when value is set but is not an http(s) URL.
func (c *Checker) OptionalURL(field, value string) {
	if strings.TrimSpace(value) != "" && !ValidURL(value) {
		c.add(field, "Please enter a valid URL (starting with http:// or https://)")
	}
}

// Email fails when value is not a valid address.
func (c *Checker) Email(field, value string) {
	if !ValidEmail(value) {
		c.add(field, "Please enter a valid email address")
	}
}

// Fail records a custom failure.
func (c *Checker) Fail(field, msg string) {
	c.add(field, msg)
}

// Errors returns the accumulated errors.
func (c *Checker) Errors() Errors {
	return c.errs
}

// Err returns the accumulated errors as an error, or nil.
func (c *Checker) Err() error {
	return c.errs.Err()
}
