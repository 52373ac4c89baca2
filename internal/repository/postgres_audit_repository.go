package repository

import (
	"context"
	"encoding/json"
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

// PostgresAuditRepository implements AuditRepository using PostgreSQL
type PostgresAuditRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresAuditRepository creates a new PostgresAuditRepository
func NewPostgresAuditRepository(pool *pgxpool.Pool) *PostgresAuditRepository {
	return &PostgresAuditRepository{pool: pool}
}

const auditInsert = `
	INSERT INTO audit_events (id, entity, entity_id, action, metadata, created_at)
	VALUES ($1, $2, $3, $4, $5, $6)
`

// CreateTx appends an audit event inside the caller's transaction
func (r *PostgresAuditRepository) CreateTx(ctx context.Context, tx pgx.Tx, event *domain.AuditEvent) error {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.audit.create_tx")
	defer span.End()

	span.SetAttributes(
		attribute.String("entity", event.Entity),
		attribute.String("action", event.Action),
	)

	id, metadata, createdAt, err := auditRow(event)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	if _, err := tx.Exec(ctx, auditInsert, id, event.Entity, event.EntityID, event.Action, metadata, createdAt); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("failed to create audit event: %w", err)
	}

	span.SetStatus(codes.Ok, "")
	return nil
}

// Create appends an audit event outside any transaction
func (r *PostgresAuditRepository) Create(ctx context.Context, event *domain.AuditEvent) error {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.audit.create")
	defer span.End()

	span.SetAttributes(
		attribute.String("entity", event.Entity),
		attribute.String("action", event.Action),
	)

	id, metadata, createdAt, err := auditRow(event)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	if _, err := r.pool.Exec(ctx, auditInsert, id, event.Entity, event.EntityID, event.Action, metadata, createdAt); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("failed to create audit event: %w", err)
	}

	span.SetStatus(codes.Ok, "")
	return nil
}

func auditRow(event *domain.AuditEvent) (id string, metadata []byte, createdAt time.Time, err error) {
	id = event.ID
	if id == "" {
		id = uuid.NewString()
	}

	createdAt = event.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	if event.Metadata != nil {
		metadata, err = json.Marshal(event.Metadata)
		if err != nil {
			return "", nil, time.Time{}, fmt.Errorf("failed to marshal audit metadata: %w", err)
		}
	}

	return id, metadata, createdAt, nil
}

// Ensure PostgresAuditRepository implements AuditRepository
var _ AuditRepository = (*PostgresAuditRepository)(nil)
