package auth

import (
	"errors"
	"fmt"
)

// Code identifies why a sign-in or registration failed. Clients map codes to
// hint text with Hint.
type Code string

const (
	CodeInvalidCredential Code = "auth/invalid-credential"
	CodeUserNotFound      Code = "auth/user-not-found"
	CodeWrongPassword     Code = "auth/wrong-password"
	CodeTooManyRequests   Code = "auth/too-many-requests"
	CodeUserDisabled      Code = "auth/user-disabled"
	CodeInvalidEmail      Code = "auth/invalid-email"
	CodeNetwork           Code = "auth/network-request-failed"
	CodeEmailInUse        Code = "auth/email-already-in-use"
	CodeWeakPassword      Code = "auth/weak-password"
	CodeNotAllowed        Code = "auth/operation-not-allowed"
	CodeCancelled         Code = "auth/popup-closed-by-user"
	CodeAccountExists     Code = "auth/account-exists-with-different-credential"
	CodeInternal          Code = "auth/internal-error"
)

// Error is an auth failure carrying a Code.
type Error struct {
	Code Code
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Code, e.Err)
	}
	return string(e.Code)
}

func (e *Error) Unwrap() error { return e.Err }

func fail(code Code, err error) error {
	return &Error{Code: code, Err: err}
}

// CodeOf extracts the Code from err, or CodeInternal.
func CodeOf(err error) Code {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Code
	}
	return CodeInternal
}
