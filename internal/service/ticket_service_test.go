package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/fluxdesk/helpdesk-sla/internal/cache"
	"github.com/fluxdesk/helpdesk-sla/internal/domain"
	"github.com/fluxdesk/helpdesk-sla/internal/events"
	"github.com/fluxdesk/helpdesk-sla/internal/sla"
	"github.com/fluxdesk/helpdesk-sla/pkg/util"
)

type ticketFixture struct {
	tickets    *fakeTicketRepo
	history    *fakeHistoryRepo
	pauses     *fakePauseStore
	dispatcher events.Dispatcher
	service    *TicketService
	slaService *SlaService
	now        time.Time
}

func newTicketFixture(t *testing.T, tickets ...*domain.Ticket) *ticketFixture {
	t.Helper()
	now := at(2026, time.March, 2, 12, 0)
	ticketRepo := newFakeTicketRepo(tickets...)
	historyRepo := &fakeHistoryRepo{}
	pauseStore := &fakePauseStore{}
	dispatcher := events.NewInMemoryDispatcher(zap.NewNop())
	tracker := sla.NewPauseTracker(pauseStore, zap.NewNop())

	slaService := NewSlaService(SlaDependencies{
		TicketRepo: ticketRepo,
		ConfigRepo: &fakeConfigRepo{configs: defaultConfigs()},
		ResultRepo: newFakeResultRepo(),
		RunRepo:    &fakeRunRepo{},
		Evaluator:  newTestEvaluator(pauseStore, now),
		Tracker:    tracker,
		Metrics:    cache.NewMemoryMetricsCache(),
		Dispatcher: dispatcher,
		Logger:     zap.NewNop(),
	}).WithClock(func() time.Time { return now })

	ticketService := NewTicketService(TicketDependencies{
		TicketRepo:  ticketRepo,
		HistoryRepo: historyRepo,
		Tracker:     tracker,
		Dispatcher:  dispatcher,
		Logger:      zap.NewNop(),
	}).WithClock(func() time.Time { return now })

	return &ticketFixture{
		tickets:    ticketRepo,
		history:    historyRepo,
		pauses:     pauseStore,
		dispatcher: dispatcher,
		service:    ticketService,
		slaService: slaService,
		now:        now,
	}
}

func openTicket(id string) *domain.Ticket {
	return &domain.Ticket{
		ID:          id,
		ExternalKey: "CH-" + id,
		Title:       "Impressora não imprime",
		Priority:    domain.PriorityHigh,
		Status:      domain.StatusOpen,
		OpenedAt:    at(2026, time.March, 2, 9, 0),
	}
}

func TestUpdateStatusStampsFirstResponse(t *testing.T) {
	fix := newTicketFixture(t, openTicket("t1"))

	ticket, err := fix.service.UpdateStatus(context.Background(), "t1", "Em Andamento", "agent-1", "")
	require.NoError(t, err)

	assert.Equal(t, domain.StatusInProgress, ticket.Status)
	require.NotNil(t, ticket.FirstResponseAt)
	assert.Equal(t, fix.now, *ticket.FirstResponseAt)

	// A later return to em_atendimento must not move the stamp.
	_, err = fix.service.UpdateStatus(context.Background(), "t1", "aguardando", "agent-1", "")
	require.NoError(t, err)
	ticket, err = fix.service.UpdateStatus(context.Background(), "t1", "em_atendimento", "agent-1", "")
	require.NoError(t, err)
	assert.Equal(t, fix.now, *ticket.FirstResponseAt)
}

func TestUpdateStatusRejectsInvalidTransition(t *testing.T) {
	fix := newTicketFixture(t, openTicket("t1"))

	_, err := fix.service.UpdateStatus(context.Background(), "t1", "concluido", "agent-1", "")
	require.Error(t, err)

	domainErr := util.ToDomainError(err)
	assert.Equal(t, "VALIDATION_FAILED", domainErr.Code)
}

func TestUpdateStatusSameStatusIsNoOp(t *testing.T) {
	fix := newTicketFixture(t, openTicket("t1"))

	ticket, err := fix.service.UpdateStatus(context.Background(), "t1", "aberto", "agent-1", "")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusOpen, ticket.Status)
	assert.Empty(t, fix.history.entries)
}

func TestUpdateStatusToPausingOpensAutomaticPause(t *testing.T) {
	fix := newTicketFixture(t, openTicket("t1"))
	ctx := context.Background()

	_, err := fix.service.UpdateStatus(ctx, "t1", "em_atendimento", "agent-1", "")
	require.NoError(t, err)
	_, err = fix.service.UpdateStatus(ctx, "t1", "aguardando", "agent-1", "esperando cliente")
	require.NoError(t, err)

	open, err := fix.pauses.ListOpenByTicket(ctx, "t1")
	require.NoError(t, err)
	require.Len(t, open, 1)
	assert.Equal(t, domain.PauseAutomatic, open[0].Kind)
	assert.Equal(t, domain.StatusWaiting, open[0].TriggerStatus)

	// Leaving the pausing status closes the pause.
	_, err = fix.service.UpdateStatus(ctx, "t1", "em_atendimento", "agent-1", "")
	require.NoError(t, err)
	open, err = fix.pauses.ListOpenByTicket(ctx, "t1")
	require.NoError(t, err)
	assert.Empty(t, open)
}

func TestUpdateStatusTerminalStamps(t *testing.T) {
	fix := newTicketFixture(t, openTicket("t1"))
	ctx := context.Background()

	_, err := fix.service.UpdateStatus(ctx, "t1", "em_atendimento", "agent-1", "")
	require.NoError(t, err)
	ticket, err := fix.service.UpdateStatus(ctx, "t1", "Concluído", "agent-1", "resolvido")
	require.NoError(t, err)

	assert.Equal(t, domain.StatusResolved, ticket.Status)
	require.NotNil(t, ticket.ConcludedAt)

	// Reopening clears the conclusion stamp.
	ticket, err = fix.service.UpdateStatus(ctx, "t1", "em_atendimento", "agent-2", "voltou")
	require.NoError(t, err)
	assert.Nil(t, ticket.ConcludedAt)
}

func TestUpdateStatusRecordsHistory(t *testing.T) {
	fix := newTicketFixture(t, openTicket("t1"))

	_, err := fix.service.UpdateStatus(context.Background(), "t1", "em_atendimento", "agent-1", "atendendo")
	require.NoError(t, err)

	require.Len(t, fix.history.entries, 1)
	entry := fix.history.entries[0]
	assert.Equal(t, domain.StatusOpen, entry.OldStatus)
	assert.Equal(t, domain.StatusInProgress, entry.NewStatus)
	assert.Equal(t, "agent-1", entry.ChangedBy)
	assert.Equal(t, "atendendo", entry.Comment)
}

func TestManualPauseAndResume(t *testing.T) {
	fix := newTicketFixture(t, openTicket("t1"))
	ctx := context.Background()

	pause, err := fix.service.PauseTicket(ctx, "t1", "agent-1", "aguardando peça")
	require.NoError(t, err)
	assert.Equal(t, domain.PauseManual, pause.Kind)
	assert.Equal(t, "aguardando peça", pause.Reason)

	// Resuming a ticket that is not paused is a conflict.
	resumed, err := fix.service.ResumeTicket(ctx, "t1", "agent-1")
	require.NoError(t, err)
	require.NotNil(t, resumed.EndedAt)

	_, err = fix.service.ResumeTicket(ctx, "t1", "agent-1")
	require.Error(t, err)
	assert.Equal(t, "CONFLICT", util.ToDomainError(err).Code)
}

func TestPauseFinalTicketRejected(t *testing.T) {
	ticket := openTicket("t1")
	concluded := at(2026, time.March, 2, 11, 0)
	ticket.Status = domain.StatusResolved
	ticket.ConcludedAt = &concluded
	fix := newTicketFixture(t, ticket)

	_, err := fix.service.PauseTicket(context.Background(), "t1", "agent-1", "")
	require.Error(t, err)
	assert.Equal(t, "CONFLICT", util.ToDomainError(err).Code)
}

func TestGetTicketNotFound(t *testing.T) {
	fix := newTicketFixture(t)

	_, err := fix.service.GetTicket(context.Background(), "missing")
	require.Error(t, err)
	assert.Equal(t, "NOT_FOUND", util.ToDomainError(err).Code)
}
