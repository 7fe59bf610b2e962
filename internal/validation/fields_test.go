package validation

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidEmailAndURL(t *testing.T) {
	t.Parallel()
	assert.True(t, ValidEmail("jane@example.com"))
	assert.False(t, ValidEmail("jane@"))
	assert.False(t, ValidEmail(""))

	assert.True(t, ValidURL("https://jobs.example.com/123"))
	assert.True(t, ValidURL("http://x"))
	assert.False(t, ValidURL("ftp://jobs.example.com"))
	assert.False(t, ValidURL("https://"))
	assert.False(t, ValidURL(""))
}

func TestCheckerCollectsErrors(t *testing.T) {
	t.Parallel()
	var c Checker
	c.Required("jobTitle", "Job Title", " ")
	c.MinLength("company", "Company", " a ", 2)
	c.Min("salary", "Salary", -1, 0)
	c.OptionalURL("jobUrl", "")
	c.OptionalURL("jobUrl", "www.example.com")
	c.MaxLength("notes", "Notes", "short", 500)

	err := c.Err()
	require.Error(t, err)

	var verrs Errors
	require.True(t, errors.As(err, &verrs))
	assert.Len(t, verrs, 4)
	assert.Equal(t, "Job Title is required", verrs.Details()["jobTitle"])
	assert.Equal(t, "Company must be at least 2 characters", verrs.Details()["company"])
	assert.Equal(t, "Salary must be at least 0", verrs.Details()["salary"])
	assert.Contains(t, err.Error(), "Please fix the following:")

	var empty Checker
	assert.NoError(t, empty.Err())
}
