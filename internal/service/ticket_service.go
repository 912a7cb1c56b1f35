package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/fluxdesk/helpdesk-sla/internal/domain"
	"github.com/fluxdesk/helpdesk-sla/internal/events"
	"github.com/fluxdesk/helpdesk-sla/internal/repository"
	"github.com/fluxdesk/helpdesk-sla/internal/sla"
	"github.com/fluxdesk/helpdesk-sla/pkg/util"
)

// TicketService coordinates ticket lifecycle transitions and the manual
// pause/resume workflow.
type TicketService struct {
	tickets    repository.TicketRepository
	history    repository.StatusHistoryRepository
	tracker    *sla.PauseTracker
	dispatcher events.Dispatcher
	logger     *zap.Logger
	now        func() time.Time
}

// TicketDependencies bundles collaborators for the ticket service.
type TicketDependencies struct {
	TicketRepo  repository.TicketRepository
	HistoryRepo repository.StatusHistoryRepository
	Tracker     *sla.PauseTracker
	Dispatcher  events.Dispatcher
	Logger      *zap.Logger
}

// NewTicketService constructs the service.
func NewTicketService(deps TicketDependencies) *TicketService {
	return &TicketService{
		tickets:    deps.TicketRepo,
		history:    deps.HistoryRepo,
		tracker:    deps.Tracker,
		dispatcher: deps.Dispatcher,
		logger:     deps.Logger,
		now:        time.Now,
	}
}

// WithClock overrides the time source. Intended for tests.
func (s *TicketService) WithClock(now func() time.Time) *TicketService {
	s.now = now
	return s
}

// GetTicket loads a ticket by id.
func (s *TicketService) GetTicket(ctx context.Context, id string) (*domain.Ticket, error) {
	ticket, err := s.tickets.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, util.NewNotFound("ticket", map[string]any{"ticket_id": id})
		}
		return nil, err
	}
	return ticket, nil
}

// UpdateStatus applies a status transition. The raw status may use any
// historical spelling. Changing into em_atendimento stamps the first response
// instant once; reaching a final status stamps the matching terminal instant.
func (s *TicketService) UpdateStatus(ctx context.Context, id, rawStatus, actorID, comment string) (*domain.Ticket, error) {
	ticket, err := s.GetTicket(ctx, id)
	if err != nil {
		return nil, err
	}

	next := domain.NormalizeStatus(rawStatus)
	current := ticket.Status
	if next == current {
		return ticket, nil
	}
	if !domain.IsValidTransition(current, next) {
		return nil, util.NewValidationError("invalid status transition", map[string]any{
			"current": string(current),
			"next":    string(next),
		})
	}

	now := s.now()
	ticket.Status = next
	switch {
	case next == domain.StatusInProgress && ticket.FirstResponseAt == nil:
		ticket.FirstResponseAt = &now
	case next == domain.StatusResolved:
		ticket.ConcludedAt = &now
	case next == domain.StatusCancelled:
		ticket.CancelledAt = &now
	}
	if current == domain.StatusResolved && next == domain.StatusInProgress {
		// Reopened: the resolution clock runs again.
		ticket.ConcludedAt = nil
	}

	if err := s.tickets.Update(ctx, ticket); err != nil {
		return nil, err
	}

	entry := &domain.StatusHistory{
		TicketID:  ticket.ID,
		OldStatus: current,
		NewStatus: next,
		ChangedBy: actorID,
		Comment:   comment,
	}
	if err := s.history.Create(ctx, entry); err != nil {
		s.logger.Warn("failed to record status history",
			zap.String("ticket_id", ticket.ID), zap.Error(err))
	}

	_ = s.dispatcher.Publish(ctx, events.Event{
		ID:        uuid.NewString(),
		Type:      events.EventTicketStatusChanged,
		TicketID:  ticket.ID,
		ActorID:   actorID,
		Timestamp: now,
		Payload: events.TicketStatusChangedPayload{
			OldStatus: current,
			NewStatus: next,
			Comment:   comment,
		},
	})

	return ticket, nil
}

// PauseTicket opens a manual pause. Final tickets cannot be paused.
func (s *TicketService) PauseTicket(ctx context.Context, id, actorID, reason string) (*domain.PauseInterval, error) {
	ticket, err := s.GetTicket(ctx, id)
	if err != nil {
		return nil, err
	}
	if ticket.Status.IsFinal() {
		return nil, util.NewConflict("ticket already finalized", map[string]any{
			"status": string(ticket.Status),
		})
	}

	now := s.now()
	pause, err := s.tracker.OpenPause(ctx, ticket.ID, now, domain.PauseManual, ticket.Status, reason)
	if err != nil {
		return nil, err
	}

	_ = s.dispatcher.Publish(ctx, events.Event{
		ID:        uuid.NewString(),
		Type:      events.EventTicketPaused,
		TicketID:  ticket.ID,
		ActorID:   actorID,
		Timestamp: now,
		Payload: events.TicketPausedPayload{
			Kind:          pause.Kind,
			TriggerStatus: pause.TriggerStatus,
			Reason:        pause.Reason,
		},
	})
	return pause, nil
}

// ResumeTicket closes the open pause, if any.
func (s *TicketService) ResumeTicket(ctx context.Context, id, actorID string) (*domain.PauseInterval, error) {
	ticket, err := s.GetTicket(ctx, id)
	if err != nil {
		return nil, err
	}

	now := s.now()
	pause, err := s.tracker.ClosePause(ctx, ticket.ID, now)
	if err != nil {
		return nil, err
	}
	if pause == nil {
		return nil, util.NewConflict("ticket is not paused", map[string]any{
			"ticket_id": ticket.ID,
		})
	}

	paused := 0.0
	if pause.DurationHours != nil {
		paused = *pause.DurationHours
	}
	_ = s.dispatcher.Publish(ctx, events.Event{
		ID:        uuid.NewString(),
		Type:      events.EventTicketResumed,
		TicketID:  ticket.ID,
		ActorID:   actorID,
		Timestamp: now,
		Payload:   events.TicketResumedPayload{PausedHours: paused},
	})
	return pause, nil
}

// History lists the recorded status transitions, newest first.
func (s *TicketService) History(ctx context.Context, id string) ([]domain.StatusHistory, error) {
	if _, err := s.GetTicket(ctx, id); err != nil {
		return nil, err
	}
	return s.history.ListByTicket(ctx, id)
}
