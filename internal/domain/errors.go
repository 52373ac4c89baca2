package domain

import "errors"

// Domain errors
var (
	// Booking errors
	ErrBookingNotFound         = errors.New("booking not found")
	ErrBookingForbidden        = errors.New("not allowed to modify this booking")
	ErrBookingAlreadyCancelled = errors.New("booking is already cancelled")
	ErrBookingNotCancellable   = errors.New("only CONFIRMED bookings can be cancelled")
	ErrBookingNotReschedulable = errors.New("only CONFIRMED bookings can be rescheduled")

	// Room errors
	ErrRoomNotFound = errors.New("room not found")
	ErrRoomInactive = errors.New("room is inactive or does not exist")
	ErrRoomConflict = errors.New("room is already booked for the requested dates")
	ErrRoomBlocked  = errors.New("room is blocked for the requested dates")

	// Validation errors
	ErrPastStartDate    = errors.New("cannot create a booking in the past")
	ErrInvalidDateRange = errors.New("end date must be after start date")
	ErrInvalidCapacity  = errors.New("capacity must be greater than zero")
	ErrInvalidRoomName  = errors.New("room name is required")
)

// IsNotFoundError checks if the error is a not found error
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrBookingNotFound) ||
		errors.Is(err, ErrRoomNotFound)
}

// IsValidationError checks if the error is a validation error
func IsValidationError(err error) bool {
	return errors.Is(err, ErrPastStartDate) ||
		errors.Is(err, ErrInvalidDateRange) ||
		errors.Is(err, ErrInvalidCapacity) ||
		errors.Is(err, ErrInvalidRoomName) ||
		errors.Is(err, ErrRoomInactive) ||
		errors.Is(err, ErrBookingNotReschedulable)
}

// IsConflictError checks if the error is a conflict error
func IsConflictError(err error) bool {
	return errors.Is(err, ErrRoomConflict) ||
		errors.Is(err, ErrRoomBlocked) ||
		errors.Is(err, ErrBookingAlreadyCancelled) ||
		errors.Is(err, ErrBookingNotCancellable)
}

// IsForbiddenError checks if the error is an authorization error
func IsForbiddenError(err error) bool {
	return errors.Is(err, ErrBookingForbidden)
}
