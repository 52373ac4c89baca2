package handler

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/bookwise/room-booking-backend/internal/domain"
	"github.com/bookwise/room-booking-backend/internal/dto"
	"github.com/bookwise/room-booking-backend/internal/repository"
	"github.com/bookwise/room-booking-backend/internal/service"
	"github.com/bookwise/room-booking-backend/pkg/middleware"
	"github.com/bookwise/room-booking-backend/pkg/response"
	"github.com/bookwise/room-booking-backend/pkg/telemetry"
)

// BookingHandler handles booking HTTP requests
type BookingHandler struct {
	bookingService service.BookingService
}

// NewBookingHandler creates a new booking handler
func NewBookingHandler(bookingService service.BookingService) *BookingHandler {
	return &BookingHandler{bookingService: bookingService}
}

// Create handles POST /bookings
func (h *BookingHandler) Create(c *gin.Context) {
	ctx, span := telemetry.StartSpan(c.Request.Context(), "handler.booking.create")
	defer span.End()
	c.Request = c.Request.WithContext(ctx)

	userID, ok := middleware.GetUserID(c)
	if !ok || userID == "" {
		span.SetStatus(codes.Error, "unauthorized")
		response.Unauthorized(c, "authentication required")
		return
	}

	var req dto.CreateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "invalid request")
		response.Error(c, http.StatusBadRequest, "INVALID_REQUEST", "invalid request body", err.Error())
		return
	}

	span.SetAttributes(
		attribute.String("user_id", userID),
		attribute.String("room_id", req.RoomID),
	)

	booking, err := h.bookingService.Create(ctx, service.CreateBookingInput{
		UserID:    userID,
		RoomID:    req.RoomID,
		StartDate: req.StartDate,
		EndDate:   req.EndDate,
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		handleError(c, err)
		return
	}

	span.SetStatus(codes.Ok, "")
	response.Created(c, dto.BookingFromDomain(booking))
}

// Cancel handles POST /bookings/:id/cancel
func (h *BookingHandler) Cancel(c *gin.Context) {
	ctx, span := telemetry.StartSpan(c.Request.Context(), "handler.booking.cancel")
	defer span.End()
	c.Request = c.Request.WithContext(ctx)

	userID, ok := middleware.GetUserID(c)
	if !ok || userID == "" {
		span.SetStatus(codes.Error, "unauthorized")
		response.Unauthorized(c, "authentication required")
		return
	}

	bookingID, ok := pathUUID(c)
	if !ok {
		span.SetStatus(codes.Error, "invalid booking id")
		response.NotFound(c, domain.ErrBookingNotFound.Error())
		return
	}
	span.SetAttributes(attribute.String("booking_id", bookingID))

	booking, err := h.bookingService.Cancel(ctx, service.CancelBookingInput{
		BookingID:     bookingID,
		RequesterID:   userID,
		RequesterRole: requesterRole(c),
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		handleError(c, err)
		return
	}

	span.SetStatus(codes.Ok, "")
	response.Success(c, dto.BookingFromDomain(booking))
}

// Reschedule handles PATCH /bookings/:id
func (h *BookingHandler) Reschedule(c *gin.Context) {
	ctx, span := telemetry.StartSpan(c.Request.Context(), "handler.booking.reschedule")
	defer span.End()
	c.Request = c.Request.WithContext(ctx)

	userID, ok := middleware.GetUserID(c)
	if !ok || userID == "" {
		span.SetStatus(codes.Error, "unauthorized")
		response.Unauthorized(c, "authentication required")
		return
	}

	bookingID, ok := pathUUID(c)
	if !ok {
		span.SetStatus(codes.Error, "invalid booking id")
		response.NotFound(c, domain.ErrBookingNotFound.Error())
		return
	}
	span.SetAttributes(attribute.String("booking_id", bookingID))

	var req dto.RescheduleBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "invalid request")
		response.Error(c, http.StatusBadRequest, "INVALID_REQUEST", "invalid request body", err.Error())
		return
	}

	booking, err := h.bookingService.Reschedule(ctx, service.RescheduleBookingInput{
		BookingID:     bookingID,
		RequesterID:   userID,
		RequesterRole: requesterRole(c),
		StartDate:     req.StartDate,
		EndDate:       req.EndDate,
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		handleError(c, err)
		return
	}

	span.SetStatus(codes.Ok, "")
	response.Success(c, dto.BookingFromDomain(booking))
}

// Get handles GET /bookings/:id
func (h *BookingHandler) Get(c *gin.Context) {
	ctx, span := telemetry.StartSpan(c.Request.Context(), "handler.booking.get")
	defer span.End()
	c.Request = c.Request.WithContext(ctx)

	userID, ok := middleware.GetUserID(c)
	if !ok || userID == "" {
		span.SetStatus(codes.Error, "unauthorized")
		response.Unauthorized(c, "authentication required")
		return
	}

	bookingID, ok := pathUUID(c)
	if !ok {
		span.SetStatus(codes.Error, "invalid booking id")
		response.NotFound(c, domain.ErrBookingNotFound.Error())
		return
	}
	span.SetAttributes(attribute.String("booking_id", bookingID))

	booking, err := h.bookingService.Get(ctx, bookingID, userID, requesterRole(c))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		handleError(c, err)
		return
	}

	span.SetStatus(codes.Ok, "")
	response.Success(c, dto.BookingFromDomain(booking))
}

// ListMine handles GET /bookings
func (h *BookingHandler) ListMine(c *gin.Context) {
	ctx, span := telemetry.StartSpan(c.Request.Context(), "handler.booking.list_mine")
	defer span.End()
	c.Request = c.Request.WithContext(ctx)

	userID, ok := middleware.GetUserID(c)
	if !ok || userID == "" {
		span.SetStatus(codes.Error, "unauthorized")
		response.Unauthorized(c, "authentication required")
		return
	}

	params := repository.ListMyBookingsParams{
		UserID:      userID,
		Section:     repository.BookingSection(c.DefaultQuery("section", "upcoming")),
		Search:      c.Query("search"),
		MinCapacity: queryInt(c, "min_capacity", 0),
		SortBy:      c.Query("sort_by"),
		Order:       c.Query("order"),
		Page:        queryInt(c, "page", 1),
		PageSize:    queryInt(c, "page_size", 20),
	}
	params.DateFrom = queryTime(c, "date_from")
	params.DateTo = queryTime(c, "date_to")

	if !params.Section.IsValid() {
		span.SetStatus(codes.Error, "invalid section")
		response.BadRequest(c, "section must be one of upcoming, past, cancelled")
		return
	}

	span.SetAttributes(
		attribute.String("user_id", userID),
		attribute.String("section", string(params.Section)),
		attribute.Int("page", params.Page),
	)

	list, err := h.bookingService.ListMine(ctx, params)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		handleError(c, err)
		return
	}

	span.SetStatus(codes.Ok, "")
	response.Success(c, dto.BookingListFromRepo(list.Items, list.Page, list.PageSize, list.Total, list.HasMore, list.Counts))
}

// handleError converts domain errors to HTTP responses
func handleError(c *gin.Context, err error) {
	switch {
	case domain.IsNotFoundError(err):
		response.NotFound(c, err.Error())
	case domain.IsForbiddenError(err):
		response.Forbidden(c, err.Error())
	case domain.IsConflictError(err):
		response.Conflict(c, err.Error())
	case domain.IsValidationError(err):
		response.BadRequest(c, err.Error())
	default:
		response.InternalError(c, errors.New("internal server error"))
	}
}

// pathUUID returns the :id path parameter, rejecting non-uuid values so
// malformed ids never reach the uuid codec in the store layer
func pathUUID(c *gin.Context) (string, bool) {
	id := c.Param("id")
	if _, err := uuid.Parse(id); err != nil {
		return "", false
	}
	return id, true
}

// requesterRole returns the authenticated role, empty when absent
func requesterRole(c *gin.Context) string {
	role, _ := middleware.GetUserRole(c)
	return role
}

// queryInt parses an integer query parameter with a fallback
func queryInt(c *gin.Context, key string, fallback int) int {
	if v := c.Query(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

// queryTime parses an RFC3339 or date-only query parameter
func queryTime(c *gin.Context, key string) *time.Time {
	v := c.Query(key)
	if v == "" {
		return nil
	}
	if t, err := time.Parse(time.RFC3339, v); err == nil {
		return &t
	}
	if t, err := time.Parse("2006-01-02", v); err == nil {
		return &t
	}
	return nil
}
