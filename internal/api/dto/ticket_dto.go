package dto

import (
	"time"

	"github.com/fluxdesk/helpdesk-sla/internal/domain"
)

// UpdateStatusRequest payload. Status accepts any historical spelling.
type UpdateStatusRequest struct {
	Status  string `json:"status"`
	Comment string `json:"comment"`
}

// PauseRequest payload for manual pauses.
type PauseRequest struct {
	Reason string `json:"reason"`
}

// TicketResponse is the lifecycle view of a ticket.
type TicketResponse struct {
	ID              string                `json:"id"`
	ExternalKey     string                `json:"external_key"`
	Title           string                `json:"title"`
	Priority        domain.TicketPriority `json:"priority"`
	Status          domain.TicketStatus   `json:"status"`
	OpenedAt        time.Time             `json:"opened_at"`
	FirstResponseAt *time.Time            `json:"first_response_at"`
	ConcludedAt     *time.Time            `json:"concluded_at"`
	CancelledAt     *time.Time            `json:"cancelled_at"`
	UpdatedAt       time.Time             `json:"updated_at"`
}

// NewTicketResponse maps a domain ticket.
func NewTicketResponse(t *domain.Ticket) TicketResponse {
	return TicketResponse{
		ID:              t.ID,
		ExternalKey:     t.ExternalKey,
		Title:           t.Title,
		Priority:        t.Priority,
		Status:          t.Status,
		OpenedAt:        t.OpenedAt,
		FirstResponseAt: t.FirstResponseAt,
		ConcludedAt:     t.ConcludedAt,
		CancelledAt:     t.CancelledAt,
		UpdatedAt:       t.UpdatedAt,
	}
}

// PauseResponse describes one pause interval.
type PauseResponse struct {
	ID            string              `json:"id"`
	TicketID      string              `json:"ticket_id"`
	StartedAt     time.Time           `json:"started_at"`
	EndedAt       *time.Time          `json:"ended_at"`
	DurationHours *float64            `json:"duration_hours"`
	Kind          domain.PauseKind    `json:"kind"`
	TriggerStatus domain.TicketStatus `json:"trigger_status"`
	Reason        string              `json:"reason"`
}

// NewPauseResponse maps a domain pause interval.
func NewPauseResponse(p *domain.PauseInterval) PauseResponse {
	return PauseResponse{
		ID:            p.ID,
		TicketID:      p.TicketID,
		StartedAt:     p.StartedAt,
		EndedAt:       p.EndedAt,
		DurationHours: p.DurationHours,
		Kind:          p.Kind,
		TriggerStatus: p.TriggerStatus,
		Reason:        p.Reason,
	}
}

// StatusHistoryEntry describes one recorded transition.
type StatusHistoryEntry struct {
	ID        string              `json:"id"`
	OldStatus domain.TicketStatus `json:"old_status"`
	NewStatus domain.TicketStatus `json:"new_status"`
	ChangedBy string              `json:"changed_by"`
	Comment   string              `json:"comment,omitempty"`
	CreatedAt time.Time           `json:"created_at"`
}

// NewStatusHistoryEntries maps a history slice.
func NewStatusHistoryEntries(entries []domain.StatusHistory) []StatusHistoryEntry {
	out := make([]StatusHistoryEntry, 0, len(entries))
	for _, e := range entries {
		out = append(out, StatusHistoryEntry{
			ID:        e.ID,
			OldStatus: e.OldStatus,
			NewStatus: e.NewStatus,
			ChangedBy: e.ChangedBy,
			Comment:   e.Comment,
			CreatedAt: e.CreatedAt,
		})
	}
	return out
}
