package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/bookwise/room-booking-backend/internal/domain"
	"github.com/bookwise/room-booking-backend/internal/dto"
	"github.com/bookwise/room-booking-backend/internal/repository"
	"github.com/bookwise/room-booking-backend/internal/service"
	"github.com/bookwise/room-booking-backend/pkg/response"
	"github.com/bookwise/room-booking-backend/pkg/telemetry"
)

// AdminHandler handles the admin endpoints for room and availability
// management. Routes using it sit behind the ADMIN role middleware.
type AdminHandler struct {
	roomService    service.RoomService
	bookingService service.BookingService
}

// NewAdminHandler creates a new admin handler
func NewAdminHandler(roomService service.RoomService, bookingService service.BookingService) *AdminHandler {
	return &AdminHandler{
		roomService:    roomService,
		bookingService: bookingService,
	}
}

// CreateRoom handles POST /admin/rooms
func (h *AdminHandler) CreateRoom(c *gin.Context) {
	ctx, span := telemetry.StartSpan(c.Request.Context(), "handler.admin.create_room")
	defer span.End()
	c.Request = c.Request.WithContext(ctx)

	var req dto.CreateRoomRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "invalid request")
		response.Error(c, http.StatusBadRequest, "INVALID_REQUEST", "invalid request body", err.Error())
		return
	}

	room, err := h.roomService.CreateRoom(ctx, service.CreateRoomInput{
		Name:        req.Name,
		Description: req.Description,
		Capacity:    req.Capacity,
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		handleError(c, err)
		return
	}

	span.SetAttributes(attribute.String("room_id", room.ID))
	span.SetStatus(codes.Ok, "")
	response.Created(c, dto.RoomFromDomain(room))
}

// UpdateRoom handles PUT /admin/rooms/:id
func (h *AdminHandler) UpdateRoom(c *gin.Context) {
	ctx, span := telemetry.StartSpan(c.Request.Context(), "handler.admin.update_room")
	defer span.End()
	c.Request = c.Request.WithContext(ctx)

	roomID, ok := pathUUID(c)
	if !ok {
		span.SetStatus(codes.Error, "invalid room id")
		response.NotFound(c, domain.ErrRoomNotFound.Error())
		return
	}
	span.SetAttributes(attribute.String("room_id", roomID))

	var req dto.UpdateRoomRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "invalid request")
		response.Error(c, http.StatusBadRequest, "INVALID_REQUEST", "invalid request body", err.Error())
		return
	}

	room, err := h.roomService.UpdateRoom(ctx, service.UpdateRoomInput{
		RoomID:      roomID,
		Name:        req.Name,
		Description: req.Description,
		Capacity:    req.Capacity,
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		handleError(c, err)
		return
	}

	span.SetStatus(codes.Ok, "")
	response.Success(c, dto.RoomFromDomain(room))
}

// ToggleRoomActive handles POST /admin/rooms/:id/toggle
func (h *AdminHandler) ToggleRoomActive(c *gin.Context) {
	ctx, span := telemetry.StartSpan(c.Request.Context(), "handler.admin.toggle_room")
	defer span.End()
	c.Request = c.Request.WithContext(ctx)

	roomID, ok := pathUUID(c)
	if !ok {
		span.SetStatus(codes.Error, "invalid room id")
		response.NotFound(c, domain.ErrRoomNotFound.Error())
		return
	}
	span.SetAttributes(attribute.String("room_id", roomID))

	room, err := h.roomService.ToggleActive(ctx, roomID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		handleError(c, err)
		return
	}

	span.SetAttributes(attribute.Bool("is_active", room.IsActive))
	span.SetStatus(codes.Ok, "")
	response.Success(c, dto.RoomFromDomain(room))
}

// ListRooms handles GET /admin/rooms, including inactive rooms
func (h *AdminHandler) ListRooms(c *gin.Context) {
	ctx, span := telemetry.StartSpan(c.Request.Context(), "handler.admin.list_rooms")
	defer span.End()
	c.Request = c.Request.WithContext(ctx)

	params := repository.ListRoomsParams{
		Search:      c.Query("search"),
		Status:      c.DefaultQuery("status", "all"),
		MinCapacity: queryInt(c, "min_capacity", 0),
		SortBy:      c.Query("sort_by"),
		Order:       c.Query("order"),
		Page:        queryInt(c, "page", 1),
		PageSize:    queryInt(c, "page_size", 20),
	}

	list, err := h.roomService.ListRooms(ctx, params)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		handleError(c, err)
		return
	}

	span.SetStatus(codes.Ok, "")
	response.Success(c, dto.RoomListFromDomain(list.Items, list.Page, list.PageSize, list.Total, list.HasMore))
}

// BlockRange handles POST /admin/rooms/:id/blocks
func (h *AdminHandler) BlockRange(c *gin.Context) {
	ctx, span := telemetry.StartSpan(c.Request.Context(), "handler.admin.block_range")
	defer span.End()
	c.Request = c.Request.WithContext(ctx)

	roomID, ok := pathUUID(c)
	if !ok {
		span.SetStatus(codes.Error, "invalid room id")
		response.NotFound(c, domain.ErrRoomNotFound.Error())
		return
	}
	span.SetAttributes(attribute.String("room_id", roomID))

	var req dto.BlockRangeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "invalid request")
		response.Error(c, http.StatusBadRequest, "INVALID_REQUEST", "invalid request body", err.Error())
		return
	}

	days, err := h.roomService.BlockRange(ctx, service.BlockRangeInput{
		RoomID:    roomID,
		StartDate: req.StartDate,
		EndDate:   req.EndDate,
		Reason:    req.Reason,
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		handleError(c, err)
		return
	}

	span.SetAttributes(attribute.Int("days", len(days)))
	span.SetStatus(codes.Ok, "")
	response.Success(c, dto.BlockRangeResponse{RoomID: roomID, Days: days})
}

// UnblockRange handles DELETE /admin/rooms/:id/blocks
func (h *AdminHandler) UnblockRange(c *gin.Context) {
	ctx, span := telemetry.StartSpan(c.Request.Context(), "handler.admin.unblock_range")
	defer span.End()
	c.Request = c.Request.WithContext(ctx)

	roomID, ok := pathUUID(c)
	if !ok {
		span.SetStatus(codes.Error, "invalid room id")
		response.NotFound(c, domain.ErrRoomNotFound.Error())
		return
	}
	span.SetAttributes(attribute.String("room_id", roomID))

	var req dto.BlockRangeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "invalid request")
		response.Error(c, http.StatusBadRequest, "INVALID_REQUEST", "invalid request body", err.Error())
		return
	}

	days, err := h.roomService.UnblockRange(ctx, service.BlockRangeInput{
		RoomID:    roomID,
		StartDate: req.StartDate,
		EndDate:   req.EndDate,
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		handleError(c, err)
		return
	}

	span.SetAttributes(attribute.Int("days", len(days)))
	span.SetStatus(codes.Ok, "")
	response.Success(c, dto.BlockRangeResponse{RoomID: roomID, Days: days})
}

// ListBlocks handles GET /admin/rooms/:id/blocks
func (h *AdminHandler) ListBlocks(c *gin.Context) {
	ctx, span := telemetry.StartSpan(c.Request.Context(), "handler.admin.list_blocks")
	defer span.End()
	c.Request = c.Request.WithContext(ctx)

	roomID, ok := pathUUID(c)
	if !ok {
		span.SetStatus(codes.Error, "invalid room id")
		response.NotFound(c, domain.ErrRoomNotFound.Error())
		return
	}
	span.SetAttributes(attribute.String("room_id", roomID))

	blocks, err := h.roomService.ListBlocks(ctx, roomID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		handleError(c, err)
		return
	}

	span.SetStatus(codes.Ok, "")
	response.Success(c, dto.BlocksFromDomain(blocks))
}

// ListBookings handles GET /admin/bookings
func (h *AdminHandler) ListBookings(c *gin.Context) {
	ctx, span := telemetry.StartSpan(c.Request.Context(), "handler.admin.list_bookings")
	defer span.End()
	c.Request = c.Request.WithContext(ctx)

	params := repository.ListAllBookingsParams{
		UserID:   c.Query("user_id"),
		RoomID:   c.Query("room_id"),
		Status:   c.Query("status"),
		Search:   c.Query("search"),
		SortBy:   c.Query("sort_by"),
		Order:    c.Query("order"),
		Page:     queryInt(c, "page", 1),
		PageSize: queryInt(c, "page_size", 20),
	}
	params.DateFrom = queryTime(c, "date_from")
	params.DateTo = queryTime(c, "date_to")

	list, err := h.bookingService.ListAll(ctx, params)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		handleError(c, err)
		return
	}

	span.SetStatus(codes.Ok, "")
	response.Success(c, dto.BookingListFromRepo(list.Items, list.Page, list.PageSize, list.Total, list.HasMore, nil))
}
