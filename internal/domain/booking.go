package domain

import (
	"time"
)

// BookingStatus represents the status of a booking
type BookingStatus string

const (
	BookingStatusConfirmed BookingStatus = "CONFIRMED"
	BookingStatusCancelled BookingStatus = "CANCELLED"
)

// IsValid checks if the status is a valid BookingStatus
func (s BookingStatus) IsValid() bool {
	switch s {
	case BookingStatusConfirmed, BookingStatusCancelled:
		return true
	}
	return false
}

// String returns the string representation of BookingStatus
func (s BookingStatus) String() string {
	return string(s)
}

// Booking represents a reservation of a room over a half-open date range
// [StartDate, EndDate). Cancelled bookings are kept for history and never
// count toward room occupancy.
type Booking struct {
	ID        string        `json:"id"`
	UserID    string        `json:"user_id"`
	RoomID    string        `json:"room_id"`
	StartDate time.Time     `json:"start_date"`
	EndDate   time.Time     `json:"end_date"`
	Status    BookingStatus `json:"status"`
	CreatedAt time.Time     `json:"created_at"`
	UpdatedAt time.Time     `json:"updated_at"`
}

// ValidateDates validates the requested date range against "now".
// Start must not fall before today's UTC midnight and the range must be
// non-empty.
func ValidateDates(start, end, now time.Time) error {
	today := DayOf(now)
	if start.Before(today) {
		return ErrPastStartDate
	}
	if !end.After(start) {
		return ErrInvalidDateRange
	}
	return nil
}

// Overlaps reports whether the booking's range intersects [start, end).
// Ranges that merely touch at a boundary do not overlap.
func (b *Booking) Overlaps(start, end time.Time) bool {
	return b.StartDate.Before(end) && b.EndDate.After(start)
}

// IsConfirmed checks if the booking is in CONFIRMED status
func (b *Booking) IsConfirmed() bool {
	return b.Status == BookingStatusConfirmed
}

// IsCancelled checks if the booking is in CANCELLED status
func (b *Booking) IsCancelled() bool {
	return b.Status == BookingStatusCancelled
}

// BelongsToUser checks if the booking belongs to the specified user
func (b *Booking) BelongsToUser(userID string) bool {
	return b.UserID == userID
}

// CanBeModifiedBy checks if the requester may cancel or reschedule the
// booking: the owner or an admin.
func (b *Booking) CanBeModifiedBy(userID, role string) bool {
	return b.BelongsToUser(userID) || role == "ADMIN"
}
