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

// PostgresRoomRepository implements RoomRepository using PostgreSQL with pgxpool
type PostgresRoomRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRoomRepository creates a new PostgresRoomRepository
func NewPostgresRoomRepository(pool *pgxpool.Pool) *PostgresRoomRepository {
	return &PostgresRoomRepository{pool: pool}
}

const roomColumns = `id, name, description, capacity, is_active, created_at, updated_at`

// LockForUpdateTx locks the room row and returns its active flag. Concurrent
// writers for the same room serialize on this lock.
func (r *PostgresRoomRepository) LockForUpdateTx(ctx context.Context, tx pgx.Tx, id string) (bool, error) {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.room.lock")
	defer span.End()

	span.SetAttributes(attribute.String("room_id", id))

	var isActive bool
	err := tx.QueryRow(ctx, `SELECT is_active FROM rooms WHERE id = $1 FOR UPDATE`, id).Scan(&isActive)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			span.SetStatus(codes.Error, "not found")
			return false, domain.ErrRoomNotFound
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return false, fmt.Errorf("failed to lock room: %w", err)
	}

	span.SetAttributes(attribute.Bool("is_active", isActive))
	span.SetStatus(codes.Ok, "")
	return isActive, nil
}

// Create inserts a new room
func (r *PostgresRoomRepository) Create(ctx context.Context, room *domain.Room) error {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.room.create")
	defer span.End()

	span.SetAttributes(attribute.String("room_id", room.ID))

	query := `
		INSERT INTO rooms (id, name, description, capacity, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := r.pool.Exec(ctx, query,
		room.ID,
		room.Name,
		room.Description,
		room.Capacity,
		room.IsActive,
		room.CreatedAt,
		room.UpdatedAt,
	)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("failed to create room: %w", err)
	}

	span.SetStatus(codes.Ok, "")
	return nil
}

// Update updates a room's name and capacity
func (r *PostgresRoomRepository) Update(ctx context.Context, room *domain.Room) error {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.room.update")
	defer span.End()

	span.SetAttributes(attribute.String("room_id", room.ID))

	query := `UPDATE rooms SET name = $2, description = $3, capacity = $4, updated_at = $5 WHERE id = $1`

	result, err := r.pool.Exec(ctx, query, room.ID, room.Name, room.Description, room.Capacity, time.Now().UTC())
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("failed to update room: %w", err)
	}

	if result.RowsAffected() == 0 {
		span.SetStatus(codes.Error, "not found")
		return domain.ErrRoomNotFound
	}

	span.SetStatus(codes.Ok, "")
	return nil
}

// GetByID retrieves a room by its ID
func (r *PostgresRoomRepository) GetByID(ctx context.Context, id string) (*domain.Room, error) {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.room.get_by_id")
	defer span.End()

	span.SetAttributes(attribute.String("room_id", id))

	query := `SELECT ` + roomColumns + ` FROM rooms WHERE id = $1`

	room := &domain.Room{}
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&room.ID,
		&room.Name,
		&room.Description,
		&room.Capacity,
		&room.IsActive,
		&room.CreatedAt,
		&room.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			span.SetStatus(codes.Error, "not found")
			return nil, domain.ErrRoomNotFound
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("failed to get room: %w", err)
	}

	span.SetStatus(codes.Ok, "")
	return room, nil
}

// ToggleActive flips the room's active flag and returns the updated room
func (r *PostgresRoomRepository) ToggleActive(ctx context.Context, id string) (*domain.Room, error) {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.room.toggle_active")
	defer span.End()

	span.SetAttributes(attribute.String("room_id", id))

	query := `
		UPDATE rooms SET is_active = NOT is_active, updated_at = $2
		WHERE id = $1
		RETURNING ` + roomColumns

	room := &domain.Room{}
	err := r.pool.QueryRow(ctx, query, id, time.Now().UTC()).Scan(
		&room.ID,
		&room.Name,
		&room.Description,
		&room.Capacity,
		&room.IsActive,
		&room.CreatedAt,
		&room.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			span.SetStatus(codes.Error, "not found")
			return nil, domain.ErrRoomNotFound
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("failed to toggle room: %w", err)
	}

	span.SetAttributes(attribute.Bool("is_active", room.IsActive))
	span.SetStatus(codes.Ok, "")
	return room, nil
}

// Search lists active rooms. When a date range is set, rooms that already
// have a CONFIRMED booking overlapping [start, end) are excluded.
func (r *PostgresRoomRepository) Search(ctx context.Context, params SearchRoomsParams) ([]*domain.Room, int, error) {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.room.search")
	defer span.End()

	where := []string{"is_active = TRUE"}
	var args []interface{}

	if params.MinCapacity > 0 {
		args = append(args, params.MinCapacity)
		where = append(where, fmt.Sprintf("capacity >= $%d", len(args)))
	}

	if params.StartDate != nil && params.EndDate != nil {
		args = append(args, *params.StartDate, *params.EndDate)
		where = append(where, fmt.Sprintf(`NOT EXISTS (
			SELECT 1 FROM bookings b
			WHERE b.room_id = rooms.id
				AND b.status = 'CONFIRMED'
				AND b.start_date < $%d
				AND b.end_date > $%d
		)`, len(args), len(args)-1))
	}

	whereClause := strings.Join(where, " AND ")

	var total int
	countQuery := `SELECT COUNT(*) FROM rooms WHERE ` + whereClause
	if err := r.pool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, 0, fmt.Errorf("failed to count rooms: %w", err)
	}

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
		SELECT %s FROM rooms
		WHERE %s
		ORDER BY %s
		LIMIT $%d OFFSET $%d
	`, roomColumns, whereClause, roomOrderClause(params.SortBy, params.Order), len(args)-1, len(args))

	rooms, err := r.queryRooms(ctx, listQuery, args...)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, 0, err
	}

	span.SetAttributes(attribute.Int("count", len(rooms)), attribute.Int("total", total))
	span.SetStatus(codes.Ok, "")
	return rooms, total, nil
}

// List lists rooms for admins regardless of the active flag
func (r *PostgresRoomRepository) List(ctx context.Context, params ListRoomsParams) ([]*domain.Room, int, error) {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.room.list")
	defer span.End()

	where := []string{"TRUE"}
	var args []interface{}

	switch params.Status {
	case "active":
		where = append(where, "is_active = TRUE")
	case "inactive":
		where = append(where, "is_active = FALSE")
	}

	if params.Search != "" {
		args = append(args, "%"+params.Search+"%")
		where = append(where, fmt.Sprintf("name ILIKE $%d", len(args)))
	}
	if params.MinCapacity > 0 {
		args = append(args, params.MinCapacity)
		where = append(where, fmt.Sprintf("capacity >= $%d", len(args)))
	}

	whereClause := strings.Join(where, " AND ")

	var total int
	countQuery := `SELECT COUNT(*) FROM rooms WHERE ` + whereClause
	if err := r.pool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, 0, fmt.Errorf("failed to count rooms: %w", err)
	}

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
		SELECT %s FROM rooms
		WHERE %s
		ORDER BY %s
		LIMIT $%d OFFSET $%d
	`, roomColumns, whereClause, roomOrderClause(params.SortBy, params.Order), len(args)-1, len(args))

	rooms, err := r.queryRooms(ctx, listQuery, args...)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, 0, err
	}

	span.SetAttributes(attribute.Int("count", len(rooms)), attribute.Int("total", total))
	span.SetStatus(codes.Ok, "")
	return rooms, total, nil
}

func (r *PostgresRoomRepository) queryRooms(ctx context.Context, query string, args ...interface{}) ([]*domain.Room, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list rooms: %w", err)
	}
	defer rows.Close()

	var rooms []*domain.Room
	for rows.Next() {
		room := &domain.Room{}
		err := rows.Scan(
			&room.ID,
			&room.Name,
			&room.Description,
			&room.Capacity,
			&room.IsActive,
			&room.CreatedAt,
			&room.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan room: %w", err)
		}
		rooms = append(rooms, room)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rooms: %w", err)
	}

	return rooms, nil
}

// roomOrderClause maps an API sort key onto a safe ORDER BY clause
func roomOrderClause(sortBy, order string) string {
	column := "name"
	switch sortBy {
	case "capacity":
		column = "capacity"
	case "createdAt":
		column = "created_at"
	}

	direction := "ASC"
	if strings.EqualFold(order, "desc") {
		direction = "DESC"
	}

	return column + " " + direction + ", id ASC"
}

// Ensure PostgresRoomRepository implements RoomRepository
var _ RoomRepository = (*PostgresRoomRepository)(nil)
