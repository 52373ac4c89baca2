package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/bookwise/room-booking-backend/internal/domain"
)

// TxRunner runs a function inside a database transaction. Implemented by
// database.PostgresDB; tests substitute a fake that passes a nil tx.
type TxRunner interface {
	WithinTx(ctx context.Context, fn func(tx pgx.Tx) error) error
}

// BookingSection selects which slice of a user's bookings to list
type BookingSection string

const (
	SectionUpcoming  BookingSection = "upcoming"
	SectionPast      BookingSection = "past"
	SectionCancelled BookingSection = "cancelled"
)

// IsValid checks if the section is known
func (s BookingSection) IsValid() bool {
	switch s {
	case SectionUpcoming, SectionPast, SectionCancelled:
		return true
	}
	return false
}

// BookingWithRoom is a booking row joined with its room for listings
type BookingWithRoom struct {
	domain.Booking
	RoomName     string `json:"room_name"`
	RoomCapacity int    `json:"room_capacity"`
}

// SectionCounts holds per-section booking totals for one user
type SectionCounts struct {
	Upcoming  int `json:"upcoming"`
	Past      int `json:"past"`
	Cancelled int `json:"cancelled"`
}

// ListMyBookingsParams filters and paginates a user's own bookings
type ListMyBookingsParams struct {
	UserID      string
	Section     BookingSection
	Search      string
	DateFrom    *time.Time
	DateTo      *time.Time
	MinCapacity int
	SortBy      string // roomName | startDate | createdAt
	Order       string // asc | desc
	Page        int
	PageSize    int
}

// ListAllBookingsParams filters and paginates bookings across all users
type ListAllBookingsParams struct {
	UserID   string
	RoomID   string
	Status   string
	Search   string
	DateFrom *time.Time
	DateTo   *time.Time
	SortBy   string
	Order    string
	Page     int
	PageSize int
}

// SearchRoomsParams filters the public room search
type SearchRoomsParams struct {
	StartDate   *time.Time
	EndDate     *time.Time
	MinCapacity int
	SortBy      string // name | capacity | createdAt
	Order       string
	Page        int
	PageSize    int
}

// ListRoomsParams filters the admin room listing
type ListRoomsParams struct {
	Search      string
	Status      string // active | inactive | all
	MinCapacity int
	SortBy      string
	Order       string
	Page        int
	PageSize    int
}

// BookingRepository persists bookings. The *Tx methods participate in a
// caller-owned transaction and are the only ones that take row locks.
type BookingRepository interface {
	// LockTx locks the booking row for the duration of the transaction
	LockTx(ctx context.Context, tx pgx.Tx, id string) error
	// GetByIDTx reads a booking inside the transaction
	GetByIDTx(ctx context.Context, tx pgx.Tx, id string) (*domain.Booking, error)
	// CreateTx inserts a new booking inside the transaction
	CreateTx(ctx context.Context, tx pgx.Tx, booking *domain.Booking) error
	// UpdateStatusTx changes the booking status inside the transaction
	UpdateStatusTx(ctx context.Context, tx pgx.Tx, id string, status domain.BookingStatus) error
	// UpdateDatesTx rewrites the booking date range inside the transaction
	UpdateDatesTx(ctx context.Context, tx pgx.Tx, id string, start, end time.Time) error
	// HasOverlappingTx reports whether any CONFIRMED booking for the room
	// intersects [start, end), excluding excludeID when non-empty
	HasOverlappingTx(ctx context.Context, tx pgx.Tx, roomID string, start, end time.Time, excludeID string) (bool, error)

	// GetByID reads a booking without locking
	GetByID(ctx context.Context, id string) (*domain.Booking, error)
	// ListByUser lists one section of a user's bookings
	ListByUser(ctx context.Context, params ListMyBookingsParams) ([]*BookingWithRoom, int, error)
	// CountSections returns per-section totals for a user
	CountSections(ctx context.Context, userID string) (*SectionCounts, error)
	// ListAll lists bookings across users for admins
	ListAll(ctx context.Context, params ListAllBookingsParams) ([]*BookingWithRoom, int, error)
}

// RoomRepository persists rooms
type RoomRepository interface {
	// LockForUpdateTx locks the room row and returns its active flag.
	// Returns domain.ErrRoomNotFound if the room does not exist.
	LockForUpdateTx(ctx context.Context, tx pgx.Tx, id string) (bool, error)

	Create(ctx context.Context, room *domain.Room) error
	Update(ctx context.Context, room *domain.Room) error
	GetByID(ctx context.Context, id string) (*domain.Room, error)
	// ToggleActive flips the active flag and returns the updated room
	ToggleActive(ctx context.Context, id string) (*domain.Room, error)
	// Search lists active rooms, excluding rooms with a CONFIRMED booking
	// overlapping the given range when one is set
	Search(ctx context.Context, params SearchRoomsParams) ([]*domain.Room, int, error)
	// List lists rooms for admins regardless of active flag
	List(ctx context.Context, params ListRoomsParams) ([]*domain.Room, int, error)
}

// AvailabilityRepository persists per-day room blocks
type AvailabilityRepository interface {
	// HasBlockedInRangeTx reports whether any blocked day falls in the
	// half-open day range [startDay, endDay)
	HasBlockedInRangeTx(ctx context.Context, tx pgx.Tx, roomID string, startDay, endDay time.Time) (bool, error)

	// BlockDays upserts blocks for each given day
	BlockDays(ctx context.Context, roomID string, days []time.Time) error
	// UnblockDays removes blocks for each given day
	UnblockDays(ctx context.Context, roomID string, days []time.Time) error
	// ListByRoom lists all blocks for a room ordered by day
	ListByRoom(ctx context.Context, roomID string) ([]*domain.AvailabilityBlock, error)
}

// AuditRepository persists audit events
type AuditRepository interface {
	// CreateTx appends an audit event inside the transaction so the event
	// commits atomically with the write it records
	CreateTx(ctx context.Context, tx pgx.Tx, event *domain.AuditEvent) error
	// Create appends an audit event outside any transaction
	Create(ctx context.Context, event *domain.AuditEvent) error
}
