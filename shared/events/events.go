package events

import (
	"time"

	"github.com/google/uuid"
)

// Envelope wraps an audit entry published to Kafka for downstream consumers.
type Envelope struct {
	EventID    uuid.UUID `json:"event_id"`
	OccurredAt time.Time `json:"occurred_at"`
	EventType  string    `json:"event_type"`
	AuditID    string    `json:"audit_id"`
	User       string    `json:"user"`
	Action     string    `json:"action"`
	Details    string    `json:"details"`
}

const (
	TopicAudit = "dorm.audit"

	EventTypeAuditRecorded = "audit.recorded"

	// TaskAuditArchive is the asynq task type carrying one audit entry from
	// the API to the archive worker.
	TaskAuditArchive = "audit.archive"
)
