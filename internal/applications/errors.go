package applications

import "errors"

var (
	ErrNotFound     = errors.New("application not found")
	ErrInvalidInput = errors.New("invalid application")
	ErrForbidden    = errors.New("not allowed to change this application")
)
