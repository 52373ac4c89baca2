package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/bookwise/room-booking-backend/pkg/logger"
	"github.com/bookwise/room-booking-backend/pkg/telemetry"
)

// Audit trail actions emitted around booking operations. Attempt and
// failure entries are emitted outside the transaction; success entries
// after commit.
const (
	AuditBookingAttempt           = "booking_attempt"
	AuditBookingCreated           = "booking_created"
	AuditBookingFailed            = "booking_failed"
	AuditBookingCancelAttempt     = "booking_cancel_attempt"
	AuditBookingCancelled         = "booking_cancelled"
	AuditBookingCancelFailed      = "booking_cancel_failed"
	AuditBookingRescheduleAttempt = "booking_reschedule_attempt"
	AuditBookingRescheduled       = "booking_rescheduled"
	AuditBookingRescheduleFailed  = "booking_reschedule_failed"
)

// AuditLogger emits the structured audit trail. Fire-and-forget: a Log call
// never fails and never affects the operation it describes.
type AuditLogger interface {
	Log(ctx context.Context, action string, fields map[string]interface{})
}

type zapAuditLogger struct {
	log *logger.Logger
}

// NewAuditLogger creates an AuditLogger backed by the global zap logger
func NewAuditLogger() AuditLogger {
	return &zapAuditLogger{
		log: logger.Get().With(zap.String("log_type", "audit")),
	}
}

func (a *zapAuditLogger) Log(ctx context.Context, action string, fields map[string]interface{}) {
	zapFields := make([]zap.Field, 0, len(fields)+2)
	zapFields = append(zapFields, zap.String("action", action))
	if traceID := telemetry.GetTraceID(ctx); traceID != "" {
		zapFields = append(zapFields, zap.String("trace_id", traceID))
	}
	for k, v := range fields {
		zapFields = append(zapFields, zap.Any(k, v))
	}

	a.log.Info(action, zapFields...)
}

// NoOpAuditLogger discards all audit entries
type NoOpAuditLogger struct{}

func (NoOpAuditLogger) Log(ctx context.Context, action string, fields map[string]interface{}) {}
