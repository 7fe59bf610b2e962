package resumes

import "errors"

var (
	ErrNotFound     = errors.New("Resume not found")
	ErrInvalidInput = errors.New("invalid resume")
)
