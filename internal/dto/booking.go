package dto

import (
	"time"

	"github.com/bookwise/room-booking-backend/internal/domain"
	"github.com/bookwise/room-booking-backend/internal/repository"
)

// CreateBookingRequest represents a request to book a room
type CreateBookingRequest struct {
	RoomID    string    `json:"room_id" binding:"required,uuid"`
	StartDate time.Time `json:"start_date" binding:"required" time_format:"2006-01-02T15:04:05Z07:00"`
	EndDate   time.Time `json:"end_date" binding:"required" time_format:"2006-01-02T15:04:05Z07:00"`
}

// RescheduleBookingRequest represents a request to move a booking
type RescheduleBookingRequest struct {
	StartDate time.Time `json:"start_date" binding:"required"`
	EndDate   time.Time `json:"end_date" binding:"required"`
}

// BookingResponse represents a booking in API responses
type BookingResponse struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	RoomID    string    `json:"room_id"`
	StartDate time.Time `json:"start_date"`
	EndDate   time.Time `json:"end_date"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// BookingWithRoomResponse is a booking joined with its room for listings
type BookingWithRoomResponse struct {
	BookingResponse
	RoomName     string `json:"room_name"`
	RoomCapacity int    `json:"room_capacity"`
}

// SectionCountsResponse holds per-section booking totals
type SectionCountsResponse struct {
	Upcoming  int `json:"upcoming"`
	Past      int `json:"past"`
	Cancelled int `json:"cancelled"`
}

// BookingListResponse represents one page of bookings
type BookingListResponse struct {
	Bookings []*BookingWithRoomResponse `json:"bookings"`
	Page     int                        `json:"page"`
	PageSize int                        `json:"page_size"`
	Total    int                        `json:"total"`
	HasMore  bool                       `json:"has_more"`
	Counts   *SectionCountsResponse     `json:"counts,omitempty"`
}

// BookingFromDomain converts a domain Booking to a BookingResponse
func BookingFromDomain(b *domain.Booking) *BookingResponse {
	return &BookingResponse{
		ID:        b.ID,
		UserID:    b.UserID,
		RoomID:    b.RoomID,
		StartDate: b.StartDate,
		EndDate:   b.EndDate,
		Status:    string(b.Status),
		CreatedAt: b.CreatedAt,
		UpdatedAt: b.UpdatedAt,
	}
}

// BookingWithRoomFromRepo converts a joined booking row to its response form
func BookingWithRoomFromRepo(b *repository.BookingWithRoom) *BookingWithRoomResponse {
	return &BookingWithRoomResponse{
		BookingResponse: *BookingFromDomain(&b.Booking),
		RoomName:        b.RoomName,
		RoomCapacity:    b.RoomCapacity,
	}
}

// BookingListFromRepo converts one page of joined booking rows
func BookingListFromRepo(items []*repository.BookingWithRoom, page, pageSize, total int, hasMore bool, counts *repository.SectionCounts) *BookingListResponse {
	bookings := make([]*BookingWithRoomResponse, 0, len(items))
	for _, item := range items {
		bookings = append(bookings, BookingWithRoomFromRepo(item))
	}

	resp := &BookingListResponse{
		Bookings: bookings,
		Page:     page,
		PageSize: pageSize,
		Total:    total,
		HasMore:  hasMore,
	}
	if counts != nil {
		resp.Counts = &SectionCountsResponse{
			Upcoming:  counts.Upcoming,
			Past:      counts.Past,
			Cancelled: counts.Cancelled,
		}
	}
	return resp
}
