package events

import (
	"time"

	"github.com/fluxdesk/helpdesk-sla/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventTicketStatusChanged EventType = "ticket_status_changed"
	EventTicketPaused        EventType = "ticket_paused"
	EventTicketResumed       EventType = "ticket_resumed"
	EventSlaRecomputed       EventType = "sla_recomputed"
)

// Event represents a domain event emitted by services.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	TicketID  string      `json:"ticket_id"`
	ActorID   string      `json:"actor_id,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// TicketStatusChangedPayload payload.
type TicketStatusChangedPayload struct {
	OldStatus domain.TicketStatus `json:"old_status"`
	NewStatus domain.TicketStatus `json:"new_status"`
	Comment   string              `json:"comment,omitempty"`
}

// TicketPausedPayload payload.
type TicketPausedPayload struct {
	Kind          domain.PauseKind    `json:"kind"`
	TriggerStatus domain.TicketStatus `json:"trigger_status"`
	Reason        string              `json:"reason,omitempty"`
}

// TicketResumedPayload payload.
type TicketResumedPayload struct {
	PausedHours float64 `json:"paused_hours"`
}

// SlaRecomputedPayload payload. TicketID is empty for batch runs.
type SlaRecomputedPayload struct {
	Stats domain.BatchStats `json:"stats"`
}
