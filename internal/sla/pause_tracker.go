package sla

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/fluxdesk/helpdesk-sla/internal/domain"
)

// PauseStore is the persistence boundary for pause intervals.
type PauseStore interface {
	// ListOpenByTicket returns open pauses ordered by start ascending.
	// A healthy ticket has at most one.
	ListOpenByTicket(ctx context.Context, ticketID string) ([]domain.PauseInterval, error)
	ListByTicket(ctx context.Context, ticketID string) ([]domain.PauseInterval, error)
	Create(ctx context.Context, pause *domain.PauseInterval) error
	Close(ctx context.Context, pauseID string, endedAt time.Time, durationHours float64) error
}

// PauseTracker maintains pause/resume bookkeeping per ticket. Recorded pause
// durations are wall-clock hours; the business-hour contribution to SLA is
// computed by the accumulator at evaluation time.
type PauseTracker struct {
	store  PauseStore
	logger *zap.Logger
}

// NewPauseTracker builds a tracker over the store.
func NewPauseTracker(store PauseStore, logger *zap.Logger) *PauseTracker {
	return &PauseTracker{store: store, logger: logger}
}

// OpenPause opens a pause for the ticket at the given instant. When an open
// pause already exists it is returned unchanged.
func (t *PauseTracker) OpenPause(ctx context.Context, ticketID string, at time.Time, kind domain.PauseKind, status domain.TicketStatus, reason string) (*domain.PauseInterval, error) {
	if existing, err := t.openPause(ctx, ticketID); err != nil {
		return nil, err
	} else if existing != nil {
		return existing, nil
	}

	pause := &domain.PauseInterval{
		TicketID:      ticketID,
		StartedAt:     at,
		Kind:          kind,
		TriggerStatus: status,
		Reason:        reason,
	}
	if pause.Reason == "" && kind == domain.PauseAutomatic {
		pause.Reason = fmt.Sprintf("automatic pause on status %s", status)
	}
	if err := t.store.Create(ctx, pause); err != nil {
		return nil, err
	}
	t.logger.Info("sla pause opened",
		zap.String("ticket_id", ticketID),
		zap.String("kind", string(kind)),
		zap.String("status", string(status)))
	return pause, nil
}

// ClosePause closes the open pause, recording the wall-clock duration. It
// returns nil when no pause is open.
func (t *PauseTracker) ClosePause(ctx context.Context, ticketID string, at time.Time) (*domain.PauseInterval, error) {
	pause, err := t.openPause(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	if pause == nil {
		return nil, nil
	}

	duration := at.Sub(pause.StartedAt).Hours()
	if duration < 0 {
		duration = 0
	}
	if err := t.store.Close(ctx, pause.ID, at, duration); err != nil {
		return nil, err
	}
	pause.EndedAt = &at
	pause.DurationHours = &duration
	t.logger.Info("sla pause closed",
		zap.String("ticket_id", ticketID),
		zap.Float64("duration_hours", duration))
	return pause, nil
}

// TotalPausedHours sums the recorded wall-clock duration of closed pauses.
func (t *PauseTracker) TotalPausedHours(ctx context.Context, ticketID string) (float64, error) {
	pauses, err := t.store.ListByTicket(ctx, ticketID)
	if err != nil {
		return 0, err
	}
	total := 0.0
	for _, pause := range pauses {
		if pause.Open() || pause.DurationHours == nil {
			continue
		}
		total += *pause.DurationHours
	}
	return total, nil
}

// ActivePauseDuration returns the wall-clock hours elapsed on the currently
// open pause, or 0 when none is open.
func (t *PauseTracker) ActivePauseDuration(ctx context.Context, ticketID string, now time.Time) (float64, error) {
	pause, err := t.openPause(ctx, ticketID)
	if err != nil {
		return 0, err
	}
	if pause == nil {
		return 0, nil
	}
	duration := now.Sub(pause.StartedAt).Hours()
	if duration < 0 {
		duration = 0
	}
	return duration, nil
}

// HandleStatusChange applies the automatic pause/resume rule for a status
// transition: entering a pausing status opens an automatic pause, leaving one
// closes the open pause.
func (t *PauseTracker) HandleStatusChange(ctx context.Context, ticketID string, newStatus domain.TicketStatus, at time.Time) error {
	if newStatus.IsPausing() {
		_, err := t.OpenPause(ctx, ticketID, at, domain.PauseAutomatic, newStatus, "")
		return err
	}
	_, err := t.ClosePause(ctx, ticketID, at)
	return err
}

// openPause returns the single open pause for the ticket. When the store
// reports more than one (an invariant violation), the earliest-opened interval
// wins and the anomaly is logged; evaluation must not fail over it.
func (t *PauseTracker) openPause(ctx context.Context, ticketID string) (*domain.PauseInterval, error) {
	open, err := t.store.ListOpenByTicket(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	if len(open) == 0 {
		return nil, nil
	}
	if len(open) > 1 {
		t.logger.Warn("multiple open pause intervals for ticket; using earliest",
			zap.String("ticket_id", ticketID),
			zap.Int("open_count", len(open)))
	}
	return &open[0], nil
}
