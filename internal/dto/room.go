package dto

import (
	"time"

	"github.com/bookwise/room-booking-backend/internal/domain"
)

// CreateRoomRequest represents a request to create a room
type CreateRoomRequest struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description,omitempty"`
	Capacity    int    `json:"capacity" binding:"required,min=1"`
}

// UpdateRoomRequest represents a request to update a room
type UpdateRoomRequest struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description,omitempty"`
	Capacity    int    `json:"capacity" binding:"required,min=1"`
}

// BlockRangeRequest represents a request to block or unblock a date range
type BlockRangeRequest struct {
	StartDate time.Time `json:"start_date" binding:"required"`
	EndDate   time.Time `json:"end_date" binding:"required"`
	Reason    string    `json:"reason,omitempty"`
}

// RoomResponse represents a room in API responses
type RoomResponse struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	Capacity    int       `json:"capacity"`
	IsActive    bool      `json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// RoomListResponse represents one page of rooms
type RoomListResponse struct {
	Rooms    []*RoomResponse `json:"rooms"`
	Page     int             `json:"page"`
	PageSize int             `json:"page_size"`
	Total    int             `json:"total"`
	HasMore  bool            `json:"has_more"`
}

// AvailabilityBlockResponse represents a blocked day in API responses
type AvailabilityBlockResponse struct {
	ID        string    `json:"id"`
	RoomID    string    `json:"room_id"`
	Day       time.Time `json:"day"`
	IsBlocked bool      `json:"is_blocked"`
	CreatedAt time.Time `json:"created_at"`
}

// BlockRangeResponse reports the days touched by a block or unblock
type BlockRangeResponse struct {
	RoomID string      `json:"room_id"`
	Days   []time.Time `json:"days"`
}

// RoomFromDomain converts a domain Room to a RoomResponse
func RoomFromDomain(r *domain.Room) *RoomResponse {
	return &RoomResponse{
		ID:          r.ID,
		Name:        r.Name,
		Description: r.Description,
		Capacity:    r.Capacity,
		IsActive:    r.IsActive,
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
	}
}

// RoomListFromDomain converts one page of rooms
func RoomListFromDomain(items []*domain.Room, page, pageSize, total int, hasMore bool) *RoomListResponse {
	rooms := make([]*RoomResponse, 0, len(items))
	for _, item := range items {
		rooms = append(rooms, RoomFromDomain(item))
	}
	return &RoomListResponse{
		Rooms:    rooms,
		Page:     page,
		PageSize: pageSize,
		Total:    total,
		HasMore:  hasMore,
	}
}

// BlocksFromDomain converts availability blocks
func BlocksFromDomain(blocks []*domain.AvailabilityBlock) []*AvailabilityBlockResponse {
	out := make([]*AvailabilityBlockResponse, 0, len(blocks))
	for _, b := range blocks {
		out = append(out, &AvailabilityBlockResponse{
			ID:        b.ID,
			RoomID:    b.RoomID,
			Day:       b.Day,
			IsBlocked: b.IsBlocked,
			CreatedAt: b.CreatedAt,
		})
	}
	return out
}
