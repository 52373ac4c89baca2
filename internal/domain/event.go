package domain

import (
	"time"
)

// Booking event types published to Kafka
const (
	EventBookingCreated     = "booking.created"
	EventBookingCancelled   = "booking.cancelled"
	EventBookingRescheduled = "booking.rescheduled"
)

// BookingEvent is the payload published after a booking mutation commits
type BookingEvent struct {
	Type       string    `json:"type"`
	BookingID  string    `json:"booking_id"`
	UserID     string    `json:"user_id"`
	RoomID     string    `json:"room_id"`
	StartDate  time.Time `json:"start_date"`
	EndDate    time.Time `json:"end_date"`
	Status     string    `json:"status"`
	OccurredAt time.Time `json:"occurred_at"`
}

// NewBookingEvent builds an event snapshot from a booking
func NewBookingEvent(eventType string, b *Booking) *BookingEvent {
	return &BookingEvent{
		Type:       eventType,
		BookingID:  b.ID,
		UserID:     b.UserID,
		RoomID:     b.RoomID,
		StartDate:  b.StartDate,
		EndDate:    b.EndDate,
		Status:     b.Status.String(),
		OccurredAt: time.Now().UTC(),
	}
}

// Key returns the partition key. Events for one room stay ordered.
func (e *BookingEvent) Key() string {
	return e.RoomID
}
