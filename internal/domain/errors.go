package domain

import "errors"

// Domain errors
var (
	// QR payload errors
	ErrDecode = errors.New("qr payload contains no usable identifier")

	// Attendee errors
	ErrAttendeeNotFound = errors.New("attendee not found")
	ErrAttendeeInactive = errors.New("attendee is inactive")

	// Event errors
	ErrEventNotFound = errors.New("event not found")

	// Check-in errors
	ErrNotPermitted = errors.New("attendee is not permitted for this event")

	// Validation errors
	ErrInvalidEventID = errors.New("invalid event id")
	ErrInvalidLimit   = errors.New("limit must be between 1 and 5000")
	ErrInvalidOffset  = errors.New("offset must not be negative")
)

// IsDecodeError checks if the error is a QR decode failure
func IsDecodeError(err error) bool {
	return errors.Is(err, ErrDecode)
}

// IsNotFoundError checks if the error is a not found error
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrAttendeeNotFound) ||
		errors.Is(err, ErrEventNotFound)
}

// IsForbiddenError checks if the error is an authorization failure
func IsForbiddenError(err error) bool {
	return errors.Is(err, ErrAttendeeInactive) ||
		errors.Is(err, ErrNotPermitted)
}

// IsValidationError checks if the error is a validation error
func IsValidationError(err error) bool {
	return errors.Is(err, ErrInvalidEventID) ||
		errors.Is(err, ErrInvalidLimit) ||
		errors.Is(err, ErrInvalidOffset)
}
