package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestValidateDates(t *testing.T) {
	now := time.Date(2026, 3, 10, 15, 30, 0, 0, time.UTC)

	tests := []struct {
		name    string
		start   time.Time
		end     time.Time
		wantErr error
	}{
		{
			name:  "future range is valid",
			start: day(2026, 3, 11),
			end:   day(2026, 3, 13),
		},
		{
			name:  "start of today is valid even later in the day",
			start: day(2026, 3, 10),
			end:   day(2026, 3, 11),
		},
		{
			name:    "start before today",
			start:   day(2026, 3, 9),
			end:     day(2026, 3, 12),
			wantErr: ErrPastStartDate,
		},
		{
			name:    "end equals start",
			start:   day(2026, 3, 11),
			end:     day(2026, 3, 11),
			wantErr: ErrInvalidDateRange,
		},
		{
			name:    "end before start",
			start:   day(2026, 3, 12),
			end:     day(2026, 3, 11),
			wantErr: ErrInvalidDateRange,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateDates(tt.start, tt.end, now)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestBooking_Overlaps(t *testing.T) {
	b := &Booking{
		StartDate: day(2026, 3, 10),
		EndDate:   day(2026, 3, 15),
	}

	// Fully inside
	assert.True(t, b.Overlaps(day(2026, 3, 11), day(2026, 3, 12)))
	// Straddles the start
	assert.True(t, b.Overlaps(day(2026, 3, 8), day(2026, 3, 11)))
	// Straddles the end
	assert.True(t, b.Overlaps(day(2026, 3, 14), day(2026, 3, 20)))
	// Contains the booking
	assert.True(t, b.Overlaps(day(2026, 3, 1), day(2026, 3, 30)))

	// Adjacent ranges share only a boundary and do not overlap
	assert.False(t, b.Overlaps(day(2026, 3, 15), day(2026, 3, 18)))
	assert.False(t, b.Overlaps(day(2026, 3, 8), day(2026, 3, 10)))
	// Disjoint
	assert.False(t, b.Overlaps(day(2026, 3, 20), day(2026, 3, 22)))
}

func TestBooking_CanBeModifiedBy(t *testing.T) {
	b := &Booking{UserID: "user-1"}

	assert.True(t, b.CanBeModifiedBy("user-1", "USER"))
	assert.True(t, b.CanBeModifiedBy("someone-else", "ADMIN"))
	assert.False(t, b.CanBeModifiedBy("someone-else", "USER"))
}

func TestBookingStatus_IsValid(t *testing.T) {
	assert.True(t, BookingStatusConfirmed.IsValid())
	assert.True(t, BookingStatusCancelled.IsValid())
	assert.False(t, BookingStatus("PENDING").IsValid())
}

func TestDayOf(t *testing.T) {
	got := DayOf(time.Date(2026, 3, 10, 23, 59, 59, 0, time.UTC))
	assert.Equal(t, day(2026, 3, 10), got)

	// Non-UTC input is converted before truncation
	loc := time.FixedZone("UTC+7", 7*3600)
	got = DayOf(time.Date(2026, 3, 11, 2, 0, 0, 0, loc))
	assert.Equal(t, day(2026, 3, 10), got)
}

func TestExpandDays(t *testing.T) {
	days := ExpandDays(day(2026, 3, 10), day(2026, 3, 12))
	assert.Equal(t, []time.Time{day(2026, 3, 10), day(2026, 3, 11), day(2026, 3, 12)}, days)

	// Single day range
	days = ExpandDays(day(2026, 3, 10), day(2026, 3, 10))
	assert.Equal(t, []time.Time{day(2026, 3, 10)}, days)

	// Times inside the day collapse to the day
	days = ExpandDays(
		time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC),
		time.Date(2026, 3, 11, 18, 0, 0, 0, time.UTC),
	)
	assert.Equal(t, []time.Time{day(2026, 3, 10), day(2026, 3, 11)}, days)

	// Inverted range yields nothing
	assert.Nil(t, ExpandDays(day(2026, 3, 12), day(2026, 3, 10)))
}

func TestErrorClassifiers(t *testing.T) {
	assert.True(t, IsValidationError(ErrPastStartDate))
	assert.True(t, IsValidationError(ErrInvalidDateRange))
	assert.True(t, IsValidationError(ErrRoomInactive))
	assert.True(t, IsValidationError(ErrBookingNotReschedulable))

	assert.True(t, IsConflictError(ErrRoomConflict))
	assert.True(t, IsConflictError(ErrRoomBlocked))
	assert.True(t, IsConflictError(ErrBookingAlreadyCancelled))
	// Cancelling a booking in a non-cancellable state is a conflict, not bad input
	assert.True(t, IsConflictError(ErrBookingNotCancellable))
	assert.False(t, IsValidationError(ErrBookingNotCancellable))

	assert.True(t, IsNotFoundError(ErrBookingNotFound))
	assert.True(t, IsNotFoundError(ErrRoomNotFound))

	assert.True(t, IsForbiddenError(ErrBookingForbidden))

	assert.False(t, IsValidationError(ErrRoomConflict))
	assert.False(t, IsConflictError(ErrBookingNotFound))
	assert.False(t, IsNotFoundError(ErrRoomBlocked))
}
