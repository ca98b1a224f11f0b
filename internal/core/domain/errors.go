package domain

import (
	"errors"
	"fmt"
)

var (
	ErrUserNotFound = errors.New("user not found")
	ErrUserExists   = errors.New("user already exists")

	// ErrInvalidCredentials covers unknown email and wrong password alike
	// so callers cannot enumerate accounts.
	ErrInvalidCredentials = errors.New("incorrect email or password")

	// ErrInvalidToken covers forged, malformed and expired tokens alike.
	ErrInvalidToken = errors.New("invalid token")

	ErrInactiveUser = errors.New("inactive user")

	// ErrPermissionDenied: the old password was missing or wrong on a
	// password change.
	ErrPermissionDenied = errors.New("old password is missing or invalid")

	// ErrPasswordNotSet: a password change was requested before any
	// password was ever defined.
	ErrPasswordNotSet = errors.New("a password must first be defined")

	// ErrPasswordAlreadySet: a temporary password was requested for an
	// account that already chose a permanent one.
	ErrPasswordAlreadySet = errors.New("a password is already set")

	// ErrVersionConflict: an optimistic update lost the race on the
	// user's version field.
	ErrVersionConflict = errors.New("concurrent update conflict")
)

// PolicyReason is a machine-checkable password rejection code.
type PolicyReason string

const (
	ReasonEmpty          PolicyReason = "empty"
	ReasonTooShort       PolicyReason = "too_short"
	ReasonForbiddenChars PolicyReason = "forbidden_characters"
	ReasonCompromised    PolicyReason = "compromised"
)

// PolicyError is returned when a candidate password fails validation.
type PolicyError struct {
	Reason PolicyReason
}

func (e *PolicyError) Error() string {
	switch e.Reason {
	case ReasonEmpty:
		return "password cannot be empty"
	case ReasonTooShort:
		return "password is too short"
	case ReasonForbiddenChars:
		return "password contains forbidden characters"
	case ReasonCompromised:
		return "please use a different password, this one has been compromised"
	default:
		return fmt.Sprintf("password rejected (%s)", e.Reason)
	}
}
