package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/bookwise/room-booking-backend/internal/domain"
	"github.com/bookwise/room-booking-backend/internal/repository"
	"github.com/bookwise/room-booking-backend/pkg/telemetry"
)

// CreateRoomInput carries the parameters for creating a room
type CreateRoomInput struct {
	Name        string
	Description string
	Capacity    int
}

// UpdateRoomInput carries the parameters for updating a room
type UpdateRoomInput struct {
	RoomID      string
	Name        string
	Description string
	Capacity    int
}

// BlockRangeInput carries the parameters for blocking or unblocking days
type BlockRangeInput struct {
	RoomID    string
	StartDate time.Time
	EndDate   time.Time
	Reason    string
}

// RoomList is one page of rooms
type RoomList struct {
	Items    []*domain.Room
	Page     int
	PageSize int
	Total    int
	HasMore  bool
}

// RoomService defines the interface for room catalog and availability
// administration
type RoomService interface {
	// Search lists active rooms, optionally filtered to rooms free for a
	// date range
	Search(ctx context.Context, params repository.SearchRoomsParams) (*RoomList, error)

	// GetRoom retrieves a room by ID
	GetRoom(ctx context.Context, roomID string) (*domain.Room, error)

	// CreateRoom creates a new room
	CreateRoom(ctx context.Context, input CreateRoomInput) (*domain.Room, error)

	// UpdateRoom updates a room's name, description, and capacity
	UpdateRoom(ctx context.Context, input UpdateRoomInput) (*domain.Room, error)

	// ToggleActive flips a room between active and inactive
	ToggleActive(ctx context.Context, roomID string) (*domain.Room, error)

	// ListRooms lists rooms for admin views, including inactive ones
	ListRooms(ctx context.Context, params repository.ListRoomsParams) (*RoomList, error)

	// BlockRange blocks every day in the inclusive date range
	BlockRange(ctx context.Context, input BlockRangeInput) ([]time.Time, error)

	// UnblockRange unblocks every day in the inclusive date range
	UnblockRange(ctx context.Context, input BlockRangeInput) ([]time.Time, error)

	// ListBlocks lists all blocked days for a room
	ListBlocks(ctx context.Context, roomID string) ([]*domain.AvailabilityBlock, error)
}

// roomService implements RoomService
type roomService struct {
	roomRepo         repository.RoomRepository
	availabilityRepo repository.AvailabilityRepository
	auditRepo        repository.AuditRepository
	now              func() time.Time
}

// NewRoomService creates a new room service
func NewRoomService(
	roomRepo repository.RoomRepository,
	availabilityRepo repository.AvailabilityRepository,
	auditRepo repository.AuditRepository,
	clock func() time.Time,
) RoomService {
	if clock == nil {
		clock = time.Now
	}
	return &roomService{
		roomRepo:         roomRepo,
		availabilityRepo: availabilityRepo,
		auditRepo:        auditRepo,
		now:              clock,
	}
}

// Search lists active rooms matching the filters
func (s *roomService) Search(ctx context.Context, params repository.SearchRoomsParams) (*RoomList, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.room.search")
	defer span.End()

	normalizePage(&params.Page, &params.PageSize)

	// A half range is meaningless for the availability filter
	if (params.StartDate == nil) != (params.EndDate == nil) {
		span.SetStatus(codes.Error, "incomplete date range")
		return nil, domain.ErrInvalidDateRange
	}
	if params.StartDate != nil && !params.EndDate.After(*params.StartDate) {
		span.SetStatus(codes.Error, "invalid date range")
		return nil, domain.ErrInvalidDateRange
	}

	rooms, total, err := s.roomRepo.Search(ctx, params)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	span.SetAttributes(attribute.Int("count", len(rooms)))
	span.SetStatus(codes.Ok, "")
	return &RoomList{
		Items:    rooms,
		Page:     params.Page,
		PageSize: params.PageSize,
		Total:    total,
		HasMore:  params.Page*params.PageSize < total,
	}, nil
}

// GetRoom retrieves a room by ID
func (s *roomService) GetRoom(ctx context.Context, roomID string) (*domain.Room, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.room.get")
	defer span.End()

	span.SetAttributes(attribute.String("room_id", roomID))

	room, err := s.roomRepo.GetByID(ctx, roomID)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	span.SetStatus(codes.Ok, "")
	return room, nil
}

// CreateRoom creates a new active room
func (s *roomService) CreateRoom(ctx context.Context, input CreateRoomInput) (*domain.Room, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.room.create")
	defer span.End()

	now := s.now()
	room := &domain.Room{
		ID:          uuid.NewString(),
		Name:        input.Name,
		Description: input.Description,
		Capacity:    input.Capacity,
		IsActive:    true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := room.Validate(); err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	if err := s.roomRepo.Create(ctx, room); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	span.SetAttributes(attribute.String("room_id", room.ID))
	span.SetStatus(codes.Ok, "")
	return room, nil
}

// UpdateRoom updates a room's mutable fields
func (s *roomService) UpdateRoom(ctx context.Context, input UpdateRoomInput) (*domain.Room, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.room.update")
	defer span.End()

	span.SetAttributes(attribute.String("room_id", input.RoomID))

	room, err := s.roomRepo.GetByID(ctx, input.RoomID)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	room.Name = input.Name
	room.Description = input.Description
	room.Capacity = input.Capacity
	room.UpdatedAt = s.now()

	if err := room.Validate(); err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	if err := s.roomRepo.Update(ctx, room); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	span.SetStatus(codes.Ok, "")
	return room, nil
}

// ToggleActive flips a room between active and inactive. Existing bookings
// are untouched; an inactive room just refuses new ones.
func (s *roomService) ToggleActive(ctx context.Context, roomID string) (*domain.Room, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.room.toggle_active")
	defer span.End()

	span.SetAttributes(attribute.String("room_id", roomID))

	room, err := s.roomRepo.ToggleActive(ctx, roomID)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	span.SetAttributes(attribute.Bool("is_active", room.IsActive))
	span.SetStatus(codes.Ok, "")
	return room, nil
}

// ListRooms lists rooms for admin views
func (s *roomService) ListRooms(ctx context.Context, params repository.ListRoomsParams) (*RoomList, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.room.list")
	defer span.End()

	normalizePage(&params.Page, &params.PageSize)

	rooms, total, err := s.roomRepo.List(ctx, params)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	span.SetAttributes(attribute.Int("count", len(rooms)))
	span.SetStatus(codes.Ok, "")
	return &RoomList{
		Items:    rooms,
		Page:     params.Page,
		PageSize: params.PageSize,
		Total:    total,
		HasMore:  params.Page*params.PageSize < total,
	}, nil
}

// BlockRange blocks every day between StartDate and EndDate inclusive.
// Blocking is day-granular and does not cancel existing bookings.
func (s *roomService) BlockRange(ctx context.Context, input BlockRangeInput) ([]time.Time, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.room.block_range")
	defer span.End()

	span.SetAttributes(attribute.String("room_id", input.RoomID))

	days, err := s.expandRange(ctx, input)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	if err := s.availabilityRepo.BlockDays(ctx, input.RoomID, days); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	if err := s.auditRepo.Create(ctx, &domain.AuditEvent{
		Entity:   domain.AuditEntityRoom,
		EntityID: input.RoomID,
		Action:   domain.AuditActionBlocked,
		Metadata: map[string]interface{}{
			"start_date": input.StartDate,
			"end_date":   input.EndDate,
			"days":       len(days),
			"reason":     input.Reason,
		},
	}); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	span.SetAttributes(attribute.Int("days", len(days)))
	span.SetStatus(codes.Ok, "")
	return days, nil
}

// UnblockRange unblocks every day between StartDate and EndDate inclusive
func (s *roomService) UnblockRange(ctx context.Context, input BlockRangeInput) ([]time.Time, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.room.unblock_range")
	defer span.End()

	span.SetAttributes(attribute.String("room_id", input.RoomID))

	days, err := s.expandRange(ctx, input)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	if err := s.availabilityRepo.UnblockDays(ctx, input.RoomID, days); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	if err := s.auditRepo.Create(ctx, &domain.AuditEvent{
		Entity:   domain.AuditEntityRoom,
		EntityID: input.RoomID,
		Action:   domain.AuditActionUnblocked,
		Metadata: map[string]interface{}{
			"start_date": input.StartDate,
			"end_date":   input.EndDate,
			"days":       len(days),
		},
	}); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	span.SetAttributes(attribute.Int("days", len(days)))
	span.SetStatus(codes.Ok, "")
	return days, nil
}

// ListBlocks lists all blocked days for a room
func (s *roomService) ListBlocks(ctx context.Context, roomID string) ([]*domain.AvailabilityBlock, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.room.list_blocks")
	defer span.End()

	span.SetAttributes(attribute.String("room_id", roomID))

	if _, err := s.roomRepo.GetByID(ctx, roomID); err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	blocks, err := s.availabilityRepo.ListByRoom(ctx, roomID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	span.SetAttributes(attribute.Int("count", len(blocks)))
	span.SetStatus(codes.Ok, "")
	return blocks, nil
}

// expandRange verifies the room exists and expands the inclusive date range
// into individual days
func (s *roomService) expandRange(ctx context.Context, input BlockRangeInput) ([]time.Time, error) {
	if _, err := s.roomRepo.GetByID(ctx, input.RoomID); err != nil {
		return nil, err
	}

	days := domain.ExpandDays(input.StartDate, input.EndDate)
	if len(days) == 0 {
		return nil, domain.ErrInvalidDateRange
	}

	return days, nil
}

// Ensure roomService implements RoomService
var _ RoomService = (*roomService)(nil)
