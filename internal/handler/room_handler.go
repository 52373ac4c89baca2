package handler

import (
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

// RoomHandler handles the public room endpoints
type RoomHandler struct {
	roomService service.RoomService
}

// NewRoomHandler creates a new room handler
func NewRoomHandler(roomService service.RoomService) *RoomHandler {
	return &RoomHandler{roomService: roomService}
}

// Search handles GET /rooms. With start_date and end_date it returns only
// rooms free for that range.
func (h *RoomHandler) Search(c *gin.Context) {
	ctx, span := telemetry.StartSpan(c.Request.Context(), "handler.room.search")
	defer span.End()
	c.Request = c.Request.WithContext(ctx)

	params := repository.SearchRoomsParams{
		MinCapacity: queryInt(c, "min_capacity", 0),
		SortBy:      c.Query("sort_by"),
		Order:       c.Query("order"),
		Page:        queryInt(c, "page", 1),
		PageSize:    queryInt(c, "page_size", 20),
	}
	params.StartDate = queryTime(c, "start_date")
	params.EndDate = queryTime(c, "end_date")

	span.SetAttributes(
		attribute.Int("min_capacity", params.MinCapacity),
		attribute.Int("page", params.Page),
	)

	list, err := h.roomService.Search(ctx, params)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		handleError(c, err)
		return
	}

	span.SetStatus(codes.Ok, "")
	response.Success(c, dto.RoomListFromDomain(list.Items, list.Page, list.PageSize, list.Total, list.HasMore))
}

// Get handles GET /rooms/:id
func (h *RoomHandler) Get(c *gin.Context) {
	ctx, span := telemetry.StartSpan(c.Request.Context(), "handler.room.get")
	defer span.End()
	c.Request = c.Request.WithContext(ctx)

	roomID, ok := pathUUID(c)
	if !ok {
		span.SetStatus(codes.Error, "invalid room id")
		response.NotFound(c, domain.ErrRoomNotFound.Error())
		return
	}
	span.SetAttributes(attribute.String("room_id", roomID))

	room, err := h.roomService.GetRoom(ctx, roomID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		handleError(c, err)
		return
	}

	span.SetStatus(codes.Ok, "")
	response.Success(c, dto.RoomFromDomain(room))
}
