package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"

	"github.com/bookwise/room-booking-backend/internal/domain"
	"github.com/bookwise/room-booking-backend/internal/repository"
	"github.com/bookwise/room-booking-backend/pkg/logger"
	"github.com/bookwise/room-booking-backend/pkg/telemetry"
)

// CreateBookingInput carries the parameters for creating a booking
type CreateBookingInput struct {
	UserID    string
	RoomID    string
	StartDate time.Time
	EndDate   time.Time
}

// CancelBookingInput carries the parameters for cancelling a booking
type CancelBookingInput struct {
	BookingID     string
	RequesterID   string
	RequesterRole string
}

// RescheduleBookingInput carries the parameters for rescheduling a booking
type RescheduleBookingInput struct {
	BookingID     string
	RequesterID   string
	RequesterRole string
	StartDate     time.Time
	EndDate       time.Time
}

// BookingList is one page of bookings with optional per-section counts
type BookingList struct {
	Items    []*repository.BookingWithRoom
	Page     int
	PageSize int
	Total    int
	HasMore  bool
	Counts   *repository.SectionCounts
}

// BookingService defines the interface for booking business logic. Every
// write runs in a single transaction holding the relevant row locks, so no
// two CONFIRMED bookings for a room can ever overlap.
type BookingService interface {
	// Create books a room for [StartDate, EndDate)
	Create(ctx context.Context, input CreateBookingInput) (*domain.Booking, error)

	// Cancel marks a CONFIRMED booking CANCELLED
	Cancel(ctx context.Context, input CancelBookingInput) (*domain.Booking, error)

	// Reschedule moves a CONFIRMED booking to a new date range
	Reschedule(ctx context.Context, input RescheduleBookingInput) (*domain.Booking, error)

	// Get retrieves a booking visible to its owner or an admin
	Get(ctx context.Context, bookingID, requesterID, requesterRole string) (*domain.Booking, error)

	// ListMine retrieves one section of the requester's bookings
	ListMine(ctx context.Context, params repository.ListMyBookingsParams) (*BookingList, error)

	// ListAll retrieves bookings across all users for admin views
	ListAll(ctx context.Context, params repository.ListAllBookingsParams) (*BookingList, error)
}

// bookingService implements BookingService
type bookingService struct {
	tx             repository.TxRunner
	bookingRepo    repository.BookingRepository
	roomRepo       repository.RoomRepository
	auditRepo      repository.AuditRepository
	availability   AvailabilityChecker
	eventPublisher EventPublisher
	audit          AuditLogger
	now            func() time.Time
	publishTimeout time.Duration
}

// BookingServiceConfig contains configuration for the booking service
type BookingServiceConfig struct {
	// Clock overrides the time source, mainly for tests
	Clock func() time.Time

	// PublishTimeout bounds the post-commit event publish
	PublishTimeout time.Duration
}

// NewBookingService creates a new booking service
func NewBookingService(
	tx repository.TxRunner,
	bookingRepo repository.BookingRepository,
	roomRepo repository.RoomRepository,
	auditRepo repository.AuditRepository,
	availability AvailabilityChecker,
	eventPublisher EventPublisher,
	audit AuditLogger,
	cfg *BookingServiceConfig,
) BookingService {
	now := time.Now
	publishTimeout := 5 * time.Second
	if cfg != nil {
		if cfg.Clock != nil {
			now = cfg.Clock
		}
		if cfg.PublishTimeout > 0 {
			publishTimeout = cfg.PublishTimeout
		}
	}

	return &bookingService{
		tx:             tx,
		bookingRepo:    bookingRepo,
		roomRepo:       roomRepo,
		auditRepo:      auditRepo,
		availability:   availability,
		eventPublisher: eventPublisher,
		audit:          audit,
		now:            now,
		publishTimeout: publishTimeout,
	}
}

// Create books a room. The availability check and the insert run in one
// transaction under the room lock; the booking row and its audit event
// commit atomically.
func (s *bookingService) Create(ctx context.Context, input CreateBookingInput) (*domain.Booking, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.booking.create")
	defer span.End()

	span.SetAttributes(
		attribute.String("user_id", input.UserID),
		attribute.String("room_id", input.RoomID),
	)

	now := s.now()
	if err := domain.ValidateDates(input.StartDate, input.EndDate, now); err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	s.audit.Log(ctx, AuditBookingAttempt, map[string]interface{}{
		"user_id":    input.UserID,
		"room_id":    input.RoomID,
		"start_date": input.StartDate,
		"end_date":   input.EndDate,
	})

	booking := &domain.Booking{
		ID:        uuid.NewString(),
		UserID:    input.UserID,
		RoomID:    input.RoomID,
		StartDate: input.StartDate,
		EndDate:   input.EndDate,
		Status:    domain.BookingStatusConfirmed,
		CreatedAt: now,
		UpdatedAt: now,
	}

	err := s.tx.WithinTx(ctx, func(tx pgx.Tx) error {
		if err := s.availability.CheckRoomAvailable(ctx, tx, input.RoomID, input.StartDate, input.EndDate, ""); err != nil {
			return err
		}

		if err := s.bookingRepo.CreateTx(ctx, tx, booking); err != nil {
			return err
		}

		return s.auditRepo.CreateTx(ctx, tx, &domain.AuditEvent{
			Entity:   domain.AuditEntityBooking,
			EntityID: booking.ID,
			Action:   domain.AuditActionCreated,
			Metadata: map[string]interface{}{
				"user_id":    booking.UserID,
				"room_id":    booking.RoomID,
				"start_date": booking.StartDate,
				"end_date":   booking.EndDate,
			},
		})
	})
	if err != nil {
		s.audit.Log(ctx, AuditBookingFailed, map[string]interface{}{
			"user_id": input.UserID,
			"room_id": input.RoomID,
			"reason":  err.Error(),
		})
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	s.audit.Log(ctx, AuditBookingCreated, map[string]interface{}{
		"booking_id": booking.ID,
		"user_id":    booking.UserID,
		"room_id":    booking.RoomID,
	})

	s.publishAsync(booking, s.eventPublisher.PublishBookingCreated)

	span.SetAttributes(attribute.String("booking_id", booking.ID))
	span.SetStatus(codes.Ok, "")
	return booking, nil
}

// Cancel marks a CONFIRMED booking CANCELLED. Lock order is booking row
// first, then room row, same as Reschedule.
func (s *bookingService) Cancel(ctx context.Context, input CancelBookingInput) (*domain.Booking, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.booking.cancel")
	defer span.End()

	span.SetAttributes(attribute.String("booking_id", input.BookingID))

	s.audit.Log(ctx, AuditBookingCancelAttempt, map[string]interface{}{
		"booking_id":   input.BookingID,
		"requester_id": input.RequesterID,
	})

	var booking *domain.Booking
	err := s.tx.WithinTx(ctx, func(tx pgx.Tx) error {
		if err := s.bookingRepo.LockTx(ctx, tx, input.BookingID); err != nil {
			return err
		}

		var err error
		booking, err = s.bookingRepo.GetByIDTx(ctx, tx, input.BookingID)
		if err != nil {
			return err
		}

		if !booking.CanBeModifiedBy(input.RequesterID, input.RequesterRole) {
			return domain.ErrBookingForbidden
		}
		if booking.IsCancelled() {
			return domain.ErrBookingAlreadyCancelled
		}
		if !booking.IsConfirmed() {
			return domain.ErrBookingNotCancellable
		}

		// Room lock keeps the cancellation ordered against concurrent
		// creates for the same room
		if _, err := s.roomRepo.LockForUpdateTx(ctx, tx, booking.RoomID); err != nil {
			return err
		}

		if err := s.bookingRepo.UpdateStatusTx(ctx, tx, booking.ID, domain.BookingStatusCancelled); err != nil {
			return err
		}

		return s.auditRepo.CreateTx(ctx, tx, &domain.AuditEvent{
			Entity:   domain.AuditEntityBooking,
			EntityID: booking.ID,
			Action:   domain.AuditActionCancelled,
			Metadata: map[string]interface{}{
				"requester_id": input.RequesterID,
			},
		})
	})
	if err != nil {
		s.audit.Log(ctx, AuditBookingCancelFailed, map[string]interface{}{
			"booking_id": input.BookingID,
			"reason":     err.Error(),
		})
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	booking.Status = domain.BookingStatusCancelled
	booking.UpdatedAt = s.now()

	s.audit.Log(ctx, AuditBookingCancelled, map[string]interface{}{
		"booking_id": booking.ID,
	})

	s.publishAsync(booking, s.eventPublisher.PublishBookingCancelled)

	span.SetStatus(codes.Ok, "")
	return booking, nil
}

// Reschedule moves a CONFIRMED booking to a new range after re-running the
// full availability check for that range, excluding the booking itself.
func (s *bookingService) Reschedule(ctx context.Context, input RescheduleBookingInput) (*domain.Booking, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.booking.reschedule")
	defer span.End()

	span.SetAttributes(attribute.String("booking_id", input.BookingID))

	s.audit.Log(ctx, AuditBookingRescheduleAttempt, map[string]interface{}{
		"booking_id":   input.BookingID,
		"requester_id": input.RequesterID,
		"start_date":   input.StartDate,
		"end_date":     input.EndDate,
	})

	now := s.now()

	var booking *domain.Booking
	err := s.tx.WithinTx(ctx, func(tx pgx.Tx) error {
		if err := s.bookingRepo.LockTx(ctx, tx, input.BookingID); err != nil {
			return err
		}

		var err error
		booking, err = s.bookingRepo.GetByIDTx(ctx, tx, input.BookingID)
		if err != nil {
			return err
		}

		if !booking.CanBeModifiedBy(input.RequesterID, input.RequesterRole) {
			return domain.ErrBookingForbidden
		}
		if !booking.IsConfirmed() {
			return domain.ErrBookingNotReschedulable
		}

		if err := domain.ValidateDates(input.StartDate, input.EndDate, now); err != nil {
			return err
		}

		if err := s.availability.CheckRoomAvailable(ctx, tx, booking.RoomID, input.StartDate, input.EndDate, booking.ID); err != nil {
			return err
		}

		if err := s.bookingRepo.UpdateDatesTx(ctx, tx, booking.ID, input.StartDate, input.EndDate); err != nil {
			return err
		}

		return s.auditRepo.CreateTx(ctx, tx, &domain.AuditEvent{
			Entity:   domain.AuditEntityBooking,
			EntityID: booking.ID,
			Action:   domain.AuditActionRescheduled,
			Metadata: map[string]interface{}{
				"requester_id": input.RequesterID,
				"old_start":    booking.StartDate,
				"old_end":      booking.EndDate,
				"new_start":    input.StartDate,
				"new_end":      input.EndDate,
			},
		})
	})
	if err != nil {
		s.audit.Log(ctx, AuditBookingRescheduleFailed, map[string]interface{}{
			"booking_id": input.BookingID,
			"reason":     err.Error(),
		})
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	booking.StartDate = input.StartDate
	booking.EndDate = input.EndDate
	booking.UpdatedAt = now

	s.audit.Log(ctx, AuditBookingRescheduled, map[string]interface{}{
		"booking_id": booking.ID,
	})

	s.publishAsync(booking, s.eventPublisher.PublishBookingRescheduled)

	span.SetStatus(codes.Ok, "")
	return booking, nil
}

// Get returns a booking visible to its owner or an admin
func (s *bookingService) Get(ctx context.Context, bookingID, requesterID, requesterRole string) (*domain.Booking, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.booking.get")
	defer span.End()

	span.SetAttributes(attribute.String("booking_id", bookingID))

	booking, err := s.bookingRepo.GetByID(ctx, bookingID)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	if !booking.CanBeModifiedBy(requesterID, requesterRole) {
		span.SetStatus(codes.Error, "forbidden")
		return nil, domain.ErrBookingForbidden
	}

	span.SetStatus(codes.Ok, "")
	return booking, nil
}

// ListMine returns one section of the requester's bookings plus the
// per-section totals. Read-only snapshot, no locking.
func (s *bookingService) ListMine(ctx context.Context, params repository.ListMyBookingsParams) (*BookingList, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.booking.list_mine")
	defer span.End()

	if !params.Section.IsValid() {
		params.Section = repository.SectionUpcoming
	}
	normalizePage(&params.Page, &params.PageSize)

	items, total, err := s.bookingRepo.ListByUser(ctx, params)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	counts, err := s.bookingRepo.CountSections(ctx, params.UserID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	span.SetStatus(codes.Ok, "")
	return &BookingList{
		Items:    items,
		Page:     params.Page,
		PageSize: params.PageSize,
		Total:    total,
		HasMore:  params.Page*params.PageSize < total,
		Counts:   counts,
	}, nil
}

// ListAll returns bookings across users for admin views
func (s *bookingService) ListAll(ctx context.Context, params repository.ListAllBookingsParams) (*BookingList, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.booking.list_all")
	defer span.End()

	normalizePage(&params.Page, &params.PageSize)

	items, total, err := s.bookingRepo.ListAll(ctx, params)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	span.SetStatus(codes.Ok, "")
	return &BookingList{
		Items:    items,
		Page:     params.Page,
		PageSize: params.PageSize,
		Total:    total,
		HasMore:  params.Page*params.PageSize < total,
	}, nil
}

// publishAsync publishes a booking event after commit without blocking the
// request. Publish failures are logged and dropped.
func (s *bookingService) publishAsync(booking *domain.Booking, publish func(context.Context, *domain.Booking) error) {
	b := *booking
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), s.publishTimeout)
		defer cancel()

		if err := publish(ctx, &b); err != nil {
			logger.Get().Warn("failed to publish booking event",
				zap.String("booking_id", b.ID),
				zap.Error(err),
			)
		}
	}()
}

func normalizePage(page, pageSize *int) {
	if *page < 1 {
		*page = 1
	}
	if *pageSize < 1 {
		*pageSize = 20
	}
	if *pageSize > 100 {
		*pageSize = 100
	}
}

// Ensure bookingService implements BookingService
var _ BookingService = (*bookingService)(nil)
