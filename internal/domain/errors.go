package domain

import "errors"

// Error taxonomy surfaced to API callers. Services wrap these with
// fmt.Errorf("%w: ...") so handlers can map errors.Is to HTTP statuses.
var (
	ErrValidation        = errors.New("validation failed")
	ErrNotFound          = errors.New("not found")
	ErrPrecondition      = errors.New("precondition failed")
	ErrNoAvailability    = errors.New("no flights available")
	ErrFlightUnavailable = errors.New("flight not available at the selected time")
	ErrInvalidCode       = errors.New("invalid or expired OTP")
	ErrRecipientNotFound = errors.New("recipient not found")
	ErrInvalidAmount     = errors.New("invalid bill amount")
	ErrUnauthorized      = errors.New("unauthorized")
	ErrForbidden         = errors.New("access forbidden")
	ErrDependency        = errors.New("dependency failure")
)
