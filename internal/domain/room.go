package domain

import (
	"strings"
	"time"
)

// Room represents a bookable room. Rooms are soft-deactivated rather than
// deleted so historical bookings keep a valid reference.
type Room struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	Capacity    int       `json:"capacity"`
	IsActive    bool      `json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Validate validates all room fields
func (r *Room) Validate() error {
	if strings.TrimSpace(r.Name) == "" {
		return ErrInvalidRoomName
	}
	if r.Capacity <= 0 {
		return ErrInvalidCapacity
	}
	return nil
}
