package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/bookwise/room-booking-backend/internal/domain"
	"github.com/bookwise/room-booking-backend/pkg/telemetry"
)

// PostgresAvailabilityRepository implements AvailabilityRepository using PostgreSQL
type PostgresAvailabilityRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresAvailabilityRepository creates a new PostgresAvailabilityRepository
func NewPostgresAvailabilityRepository(pool *pgxpool.Pool) *PostgresAvailabilityRepository {
	return &PostgresAvailabilityRepository{pool: pool}
}

// HasBlockedInRangeTx checks the half-open day range [startDay, endDay) for
// blocked days. Runs inside the caller's transaction so the answer is
// consistent with the room lock already held.
func (r *PostgresAvailabilityRepository) HasBlockedInRangeTx(ctx context.Context, tx pgx.Tx, roomID string, startDay, endDay time.Time) (bool, error) {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.availability.has_blocked")
	defer span.End()

	span.SetAttributes(attribute.String("room_id", roomID))

	query := `
		SELECT EXISTS(
			SELECT 1 FROM availability_blocks
			WHERE room_id = $1 AND is_blocked = TRUE AND day >= $2 AND day < $3
		)
	`

	var exists bool
	err := tx.QueryRow(ctx, query, roomID, startDay, endDay).Scan(&exists)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return false, fmt.Errorf("failed to check blocked days: %w", err)
	}

	span.SetAttributes(attribute.Bool("blocked", exists))
	span.SetStatus(codes.Ok, "")
	return exists, nil
}

// BlockDays upserts a block row for each given day
func (r *PostgresAvailabilityRepository) BlockDays(ctx context.Context, roomID string, days []time.Time) error {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.availability.block_days")
	defer span.End()

	span.SetAttributes(
		attribute.String("room_id", roomID),
		attribute.Int("days", len(days)),
	)

	query := `
		INSERT INTO availability_blocks (id, room_id, day, is_blocked, created_at)
		VALUES ($1, $2, $3, TRUE, $4)
		ON CONFLICT (room_id, day) DO UPDATE SET is_blocked = TRUE
	`

	batch := &pgx.Batch{}
	now := time.Now().UTC()
	for _, day := range days {
		batch.Queue(query, uuid.NewString(), roomID, day, now)
	}

	results := r.pool.SendBatch(ctx, batch)
	defer results.Close()

	for range days {
		if _, err := results.Exec(); err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return fmt.Errorf("failed to block days: %w", err)
		}
	}

	span.SetStatus(codes.Ok, "")
	return nil
}

// UnblockDays removes block rows for each given day
func (r *PostgresAvailabilityRepository) UnblockDays(ctx context.Context, roomID string, days []time.Time) error {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.availability.unblock_days")
	defer span.End()

	span.SetAttributes(
		attribute.String("room_id", roomID),
		attribute.Int("days", len(days)),
	)

	query := `DELETE FROM availability_blocks WHERE room_id = $1 AND day = ANY($2)`

	_, err := r.pool.Exec(ctx, query, roomID, days)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("failed to unblock days: %w", err)
	}

	span.SetStatus(codes.Ok, "")
	return nil
}

// ListByRoom lists all blocks for a room ordered by day
func (r *PostgresAvailabilityRepository) ListByRoom(ctx context.Context, roomID string) ([]*domain.AvailabilityBlock, error) {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.availability.list_by_room")
	defer span.End()

	span.SetAttributes(attribute.String("room_id", roomID))

	query := `
		SELECT id, room_id, day, is_blocked, created_at
		FROM availability_blocks
		WHERE room_id = $1
		ORDER BY day ASC
	`

	rows, err := r.pool.Query(ctx, query, roomID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("failed to list blocks: %w", err)
	}
	defer rows.Close()

	var blocks []*domain.AvailabilityBlock
	for rows.Next() {
		block := &domain.AvailabilityBlock{}
		err := rows.Scan(&block.ID, &block.RoomID, &block.Day, &block.IsBlocked, &block.CreatedAt)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return nil, fmt.Errorf("failed to scan block: %w", err)
		}
		blocks = append(blocks, block)
	}

	if err := rows.Err(); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("error iterating blocks: %w", err)
	}

	span.SetAttributes(attribute.Int("count", len(blocks)))
	span.SetStatus(codes.Ok, "")
	return blocks, nil
}

// Ensure PostgresAvailabilityRepository implements AvailabilityRepository
var _ AvailabilityRepository = (*PostgresAvailabilityRepository)(nil)
