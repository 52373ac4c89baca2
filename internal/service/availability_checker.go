package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/bookwise/room-booking-backend/internal/domain"
	"github.com/bookwise/room-booking-backend/internal/repository"
	"github.com/bookwise/room-booking-backend/pkg/telemetry"
)

// AvailabilityChecker decides whether a room can accept a booking range.
// CheckRoomAvailable takes the room row lock, so two concurrent checks for
// the same room serialize and the loser sees the winner's committed state.
type AvailabilityChecker interface {
	// CheckRoomAvailable locks the room row, then verifies the room is
	// active, has no blocked day in the range, and has no CONFIRMED
	// booking overlapping [start, end). excludeBookingID is skipped in the
	// overlap check so a reschedule does not collide with itself.
	CheckRoomAvailable(ctx context.Context, tx pgx.Tx, roomID string, start, end time.Time, excludeBookingID string) error
}

type availabilityChecker struct {
	roomRepo         repository.RoomRepository
	availabilityRepo repository.AvailabilityRepository
	bookingRepo      repository.BookingRepository
}

// NewAvailabilityChecker creates a new AvailabilityChecker
func NewAvailabilityChecker(
	roomRepo repository.RoomRepository,
	availabilityRepo repository.AvailabilityRepository,
	bookingRepo repository.BookingRepository,
) AvailabilityChecker {
	return &availabilityChecker{
		roomRepo:         roomRepo,
		availabilityRepo: availabilityRepo,
		bookingRepo:      bookingRepo,
	}
}

func (c *availabilityChecker) CheckRoomAvailable(ctx context.Context, tx pgx.Tx, roomID string, start, end time.Time, excludeBookingID string) error {
	ctx, span := telemetry.StartSpan(ctx, "service.availability.check")
	defer span.End()

	span.SetAttributes(attribute.String("room_id", roomID))

	isActive, err := c.roomRepo.LockForUpdateTx(ctx, tx, roomID)
	if err != nil {
		if errors.Is(err, domain.ErrRoomNotFound) {
			// A missing room is indistinguishable from an inactive one
			// for booking purposes
			span.SetStatus(codes.Error, "room missing")
			return domain.ErrRoomInactive
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("failed to lock room: %w", err)
	}
	if !isActive {
		span.SetStatus(codes.Error, "room inactive")
		return domain.ErrRoomInactive
	}

	startDay := domain.DayOf(start)
	endDay := domain.DayOf(end)
	if !endDay.After(startDay) {
		// A booking inside a single day still occupies that day
		endDay = startDay.AddDate(0, 0, 1)
	}

	blocked, err := c.availabilityRepo.HasBlockedInRangeTx(ctx, tx, roomID, startDay, endDay)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("failed to check blocked days: %w", err)
	}
	if blocked {
		span.SetStatus(codes.Error, "room blocked")
		return domain.ErrRoomBlocked
	}

	overlap, err := c.bookingRepo.HasOverlappingTx(ctx, tx, roomID, start, end, excludeBookingID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("failed to check overlapping bookings: %w", err)
	}
	if overlap {
		span.SetStatus(codes.Error, "room conflict")
		return domain.ErrRoomConflict
	}

	span.SetStatus(codes.Ok, "")
	return nil
}

var _ AvailabilityChecker = (*availabilityChecker)(nil)
