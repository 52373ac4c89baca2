package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/bookwise/room-booking-backend/internal/domain"
	"github.com/bookwise/room-booking-backend/pkg/telemetry"
)

// PostgresBookingRepository implements BookingRepository using PostgreSQL with pgxpool
type PostgresBookingRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresBookingRepository creates a new PostgresBookingRepository
func NewPostgresBookingRepository(pool *pgxpool.Pool) *PostgresBookingRepository {
	return &PostgresBookingRepository{pool: pool}
}

const bookingColumns = `id, user_id, room_id, start_date, end_date, status, created_at, updated_at`

// LockTx locks the booking row until the transaction ends
func (r *PostgresBookingRepository) LockTx(ctx context.Context, tx pgx.Tx, id string) error {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.booking.lock")
	defer span.End()

	span.SetAttributes(attribute.String("booking_id", id))

	var lockedID string
	err := tx.QueryRow(ctx, `SELECT id FROM bookings WHERE id = $1 FOR UPDATE`, id).Scan(&lockedID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			span.SetStatus(codes.Error, "not found")
			return domain.ErrBookingNotFound
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("failed to lock booking: %w", err)
	}

	span.SetStatus(codes.Ok, "")
	return nil
}

// GetByIDTx retrieves a booking inside the transaction
func (r *PostgresBookingRepository) GetByIDTx(ctx context.Context, tx pgx.Tx, id string) (*domain.Booking, error) {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.booking.get_by_id_tx")
	defer span.End()

	span.SetAttributes(attribute.String("booking_id", id))

	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE id = $1`

	booking, err := scanBookingRow(tx.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			span.SetStatus(codes.Error, "not found")
			return nil, domain.ErrBookingNotFound
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("failed to get booking: %w", err)
	}

	span.SetStatus(codes.Ok, "")
	return booking, nil
}

// CreateTx inserts a new booking inside the transaction
func (r *PostgresBookingRepository) CreateTx(ctx context.Context, tx pgx.Tx, booking *domain.Booking) error {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.booking.create")
	defer span.End()

	span.SetAttributes(
		attribute.String("booking_id", booking.ID),
		attribute.String("user_id", booking.UserID),
		attribute.String("room_id", booking.RoomID),
	)

	query := `
		INSERT INTO bookings (id, user_id, room_id, start_date, end_date, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err := tx.Exec(ctx, query,
		booking.ID,
		booking.UserID,
		booking.RoomID,
		booking.StartDate,
		booking.EndDate,
		booking.Status.String(),
		booking.CreatedAt,
		booking.UpdatedAt,
	)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("failed to create booking: %w", err)
	}

	span.SetStatus(codes.Ok, "")
	return nil
}

// UpdateStatusTx changes the booking status inside the transaction
func (r *PostgresBookingRepository) UpdateStatusTx(ctx context.Context, tx pgx.Tx, id string, status domain.BookingStatus) error {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.booking.update_status")
	defer span.End()

	span.SetAttributes(
		attribute.String("booking_id", id),
		attribute.String("status", status.String()),
	)

	query := `UPDATE bookings SET status = $2, updated_at = $3 WHERE id = $1`

	result, err := tx.Exec(ctx, query, id, status.String(), time.Now().UTC())
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("failed to update booking status: %w", err)
	}

	if result.RowsAffected() == 0 {
		span.SetStatus(codes.Error, "not found")
		return domain.ErrBookingNotFound
	}

	span.SetStatus(codes.Ok, "")
	return nil
}

// UpdateDatesTx rewrites the booking date range inside the transaction
func (r *PostgresBookingRepository) UpdateDatesTx(ctx context.Context, tx pgx.Tx, id string, start, end time.Time) error {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.booking.update_dates")
	defer span.End()

	span.SetAttributes(attribute.String("booking_id", id))

	query := `UPDATE bookings SET start_date = $2, end_date = $3, updated_at = $4 WHERE id = $1`

	result, err := tx.Exec(ctx, query, id, start, end, time.Now().UTC())
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("failed to update booking dates: %w", err)
	}

	if result.RowsAffected() == 0 {
		span.SetStatus(codes.Error, "not found")
		return domain.ErrBookingNotFound
	}

	span.SetStatus(codes.Ok, "")
	return nil
}

// HasOverlappingTx checks for a CONFIRMED booking of the room intersecting
// [start, end). Ranges touching only at a boundary do not count.
func (r *PostgresBookingRepository) HasOverlappingTx(ctx context.Context, tx pgx.Tx, roomID string, start, end time.Time, excludeID string) (bool, error) {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.booking.has_overlapping")
	defer span.End()

	span.SetAttributes(attribute.String("room_id", roomID))

	// The exclusion parameter stays NULL unless a reschedule excludes its
	// own row; the explicit casts keep $4 comparable with the uuid primary
	// key instead of resolving to text.
	query := `
		SELECT EXISTS(
			SELECT 1 FROM bookings
			WHERE room_id = $1
				AND status = 'CONFIRMED'
				AND start_date < $3
				AND end_date > $2
				AND ($4::uuid IS NULL OR id <> $4::uuid)
		)
	`

	var exclude *string
	if excludeID != "" {
		exclude = &excludeID
	}

	var exists bool
	err := tx.QueryRow(ctx, query, roomID, start, end, exclude).Scan(&exists)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return false, fmt.Errorf("failed to check overlapping bookings: %w", err)
	}

	span.SetAttributes(attribute.Bool("overlap", exists))
	span.SetStatus(codes.Ok, "")
	return exists, nil
}

// GetByID retrieves a booking by its ID without locking
func (r *PostgresBookingRepository) GetByID(ctx context.Context, id string) (*domain.Booking, error) {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.booking.get_by_id")
	defer span.End()

	span.SetAttributes(attribute.String("booking_id", id))

	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE id = $1`

	booking, err := scanBookingRow(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			span.SetStatus(codes.Error, "not found")
			return nil, domain.ErrBookingNotFound
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("failed to get booking: %w", err)
	}

	span.SetStatus(codes.Ok, "")
	return booking, nil
}

// ListByUser lists one section of a user's bookings joined with room info
func (r *PostgresBookingRepository) ListByUser(ctx context.Context, params ListMyBookingsParams) ([]*BookingWithRoom, int, error) {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.booking.list_by_user")
	defer span.End()

	span.SetAttributes(
		attribute.String("user_id", params.UserID),
		attribute.String("section", string(params.Section)),
	)

	where := []string{"b.user_id = $1"}
	args := []interface{}{params.UserID}

	now := time.Now().UTC()
	switch params.Section {
	case SectionPast:
		args = append(args, now)
		where = append(where, "b.status = 'CONFIRMED'", fmt.Sprintf("b.end_date <= $%d", len(args)))
	case SectionCancelled:
		where = append(where, "b.status = 'CANCELLED'")
	default: // upcoming
		args = append(args, now)
		where = append(where, "b.status = 'CONFIRMED'", fmt.Sprintf("b.end_date > $%d", len(args)))
	}

	if params.Search != "" {
		args = append(args, "%"+params.Search+"%")
		where = append(where, fmt.Sprintf("r.name ILIKE $%d", len(args)))
	}
	if params.DateFrom != nil {
		args = append(args, *params.DateFrom)
		where = append(where, fmt.Sprintf("b.start_date >= $%d", len(args)))
	}
	if params.DateTo != nil {
		args = append(args, *params.DateTo)
		where = append(where, fmt.Sprintf("b.start_date <= $%d", len(args)))
	}
	if params.MinCapacity > 0 {
		args = append(args, params.MinCapacity)
		where = append(where, fmt.Sprintf("r.capacity >= $%d", len(args)))
	}

	whereClause := strings.Join(where, " AND ")

	countQuery := `
		SELECT COUNT(*)
		FROM bookings b
		JOIN rooms r ON r.id = b.room_id
		WHERE ` + whereClause

	var total int
	if err := r.pool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, 0, fmt.Errorf("failed to count bookings: %w", err)
	}

	orderClause := bookingOrderClause(params.SortBy, params.Order)

	page := params.Page
	if page < 1 {
		page = 1
	}
	pageSize := params.PageSize
	if pageSize < 1 {
		pageSize = 20
	}

	args = append(args, pageSize, (page-1)*pageSize)
	listQuery := fmt.Sprintf(`
		SELECT b.id, b.user_id, b.room_id, b.start_date, b.end_date, b.status,
			b.created_at, b.updated_at, r.name, r.capacity
		FROM bookings b
		JOIN rooms r ON r.id = b.room_id
		WHERE %s
		ORDER BY %s
		LIMIT $%d OFFSET $%d
	`, whereClause, orderClause, len(args)-1, len(args))

	rows, err := r.pool.Query(ctx, listQuery, args...)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, 0, fmt.Errorf("failed to list bookings: %w", err)
	}
	defer rows.Close()

	bookings, err := scanBookingsWithRoom(rows)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, 0, err
	}

	span.SetAttributes(attribute.Int("count", len(bookings)), attribute.Int("total", total))
	span.SetStatus(codes.Ok, "")
	return bookings, total, nil
}

// CountSections returns per-section totals for a user in a single query
func (r *PostgresBookingRepository) CountSections(ctx context.Context, userID string) (*SectionCounts, error) {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.booking.count_sections")
	defer span.End()

	span.SetAttributes(attribute.String("user_id", userID))

	query := `
		SELECT
			COUNT(*) FILTER (WHERE status = 'CONFIRMED' AND end_date > $2),
			COUNT(*) FILTER (WHERE status = 'CONFIRMED' AND end_date <= $2),
			COUNT(*) FILTER (WHERE status = 'CANCELLED')
		FROM bookings
		WHERE user_id = $1
	`

	counts := &SectionCounts{}
	err := r.pool.QueryRow(ctx, query, userID, time.Now().UTC()).Scan(
		&counts.Upcoming,
		&counts.Past,
		&counts.Cancelled,
	)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("failed to count booking sections: %w", err)
	}

	span.SetStatus(codes.Ok, "")
	return counts, nil
}

// ListAll lists bookings across all users for admins
func (r *PostgresBookingRepository) ListAll(ctx context.Context, params ListAllBookingsParams) ([]*BookingWithRoom, int, error) {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.booking.list_all")
	defer span.End()

	where := []string{"TRUE"}
	var args []interface{}

	if params.UserID != "" {
		args = append(args, params.UserID)
		where = append(where, fmt.Sprintf("b.user_id = $%d", len(args)))
	}
	if params.RoomID != "" {
		args = append(args, params.RoomID)
		where = append(where, fmt.Sprintf("b.room_id = $%d", len(args)))
	}
	if params.Status != "" {
		args = append(args, params.Status)
		where = append(where, fmt.Sprintf("b.status = $%d", len(args)))
	}
	if params.Search != "" {
		args = append(args, "%"+params.Search+"%")
		where = append(where, fmt.Sprintf("r.name ILIKE $%d", len(args)))
	}
	if params.DateFrom != nil {
		args = append(args, *params.DateFrom)
		where = append(where, fmt.Sprintf("b.start_date >= $%d", len(args)))
	}
	if params.DateTo != nil {
		args = append(args, *params.DateTo)
		where = append(where, fmt.Sprintf("b.start_date <= $%d", len(args)))
	}

	whereClause := strings.Join(where, " AND ")

	countQuery := `
		SELECT COUNT(*)
		FROM bookings b
		JOIN rooms r ON r.id = b.room_id
		WHERE ` + whereClause

	var total int
	if err := r.pool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, 0, fmt.Errorf("failed to count bookings: %w", err)
	}

	orderClause := bookingOrderClause(params.SortBy, params.Order)

	page := params.Page
	if page < 1 {
		page = 1
	}
	pageSize := params.PageSize
	if pageSize < 1 {
		pageSize = 20
	}

	args = append(args, pageSize, (page-1)*pageSize)
	listQuery := fmt.Sprintf(`
		SELECT b.id, b.user_id, b.room_id, b.start_date, b.end_date, b.status,
			b.created_at, b.updated_at, r.name, r.capacity
		FROM bookings b
		JOIN rooms r ON r.id = b.room_id
		WHERE %s
		ORDER BY %s
		LIMIT $%d OFFSET $%d
	`, whereClause, orderClause, len(args)-1, len(args))

	rows, err := r.pool.Query(ctx, listQuery, args...)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, 0, fmt.Errorf("failed to list bookings: %w", err)
	}
	defer rows.Close()

	bookings, err := scanBookingsWithRoom(rows)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, 0, err
	}

	span.SetAttributes(attribute.Int("count", len(bookings)), attribute.Int("total", total))
	span.SetStatus(codes.Ok, "")
	return bookings, total, nil
}

// bookingOrderClause maps an API sort key onto a safe ORDER BY clause
func bookingOrderClause(sortBy, order string) string {
	column := "b.created_at"
	switch sortBy {
	case "roomName":
		column = "r.name"
	case "startDate":
		column = "b.start_date"
	case "createdAt":
		column = "b.created_at"
	}

	direction := "DESC"
	if strings.EqualFold(order, "asc") {
		direction = "ASC"
	}

	return column + " " + direction + ", b.id ASC"
}

// scanBookingRow scans a single-row result into a Booking
func scanBookingRow(row pgx.Row) (*domain.Booking, error) {
	booking := &domain.Booking{}
	var status string

	err := row.Scan(
		&booking.ID,
		&booking.UserID,
		&booking.RoomID,
		&booking.StartDate,
		&booking.EndDate,
		&status,
		&booking.CreatedAt,
		&booking.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	booking.Status = domain.BookingStatus(status)
	return booking, nil
}

// scanBookingsWithRoom scans joined booking+room rows
func scanBookingsWithRoom(rows pgx.Rows) ([]*BookingWithRoom, error) {
	var bookings []*BookingWithRoom
	for rows.Next() {
		b := &BookingWithRoom{}
		var status string

		err := rows.Scan(
			&b.ID,
			&b.UserID,
			&b.RoomID,
			&b.StartDate,
			&b.EndDate,
			&status,
			&b.CreatedAt,
			&b.UpdatedAt,
			&b.RoomName,
			&b.RoomCapacity,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan booking: %w", err)
		}

		b.Status = domain.BookingStatus(status)
		bookings = append(bookings, b)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating bookings: %w", err)
	}

	return bookings, nil
}

// Ensure PostgresBookingRepository implements BookingRepository
var _ BookingRepository = (*PostgresBookingRepository)(nil)
