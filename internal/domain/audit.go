package domain

import "time"

// Audit actions recorded alongside booking mutations
const (
	AuditActionCreated     = "CREATED"
	AuditActionCancelled   = "CANCELLED"
	AuditActionRescheduled = "RESCHEDULED"
	AuditActionBlocked     = "BLOCKED"
	AuditActionUnblocked   = "UNBLOCKED"
)

// Audit entity kinds
const (
	AuditEntityBooking = "booking"
	AuditEntityRoom    = "room"
)

// AuditEvent is an append-only record of a mutation. Events for booking
// writes are inserted in the same transaction as the write itself.
type AuditEvent struct {
	ID        string                 `json:"id"`
	Entity    string                 `json:"entity"`
	EntityID  string                 `json:"entity_id"`
	Action    string                 `json:"action"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	CreatedAt time.Time              `json:"created_at"`
}
