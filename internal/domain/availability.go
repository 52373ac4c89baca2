package domain

import "time"

// AvailabilityBlock marks a single calendar day on which a room cannot be
// booked. Days are stored at UTC midnight and are unique per (room, day).
type AvailabilityBlock struct {
	ID        string    `json:"id"`
	RoomID    string    `json:"room_id"`
	Day       time.Time `json:"day"`
	IsBlocked bool      `json:"is_blocked"`
	CreatedAt time.Time `json:"created_at"`
}

// DayOf truncates t to UTC midnight
func DayOf(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}

// ExpandDays lists every day of the inclusive range [DayOf(start), DayOf(end)].
// Admin-facing block ranges include their last day.
func ExpandDays(start, end time.Time) []time.Time {
	first := DayOf(start)
	last := DayOf(end)
	if last.Before(first) {
		return nil
	}

	var days []time.Time
	for d := first; !d.After(last); d = d.AddDate(0, 0, 1) {
		days = append(days, d)
	}
	return days
}
