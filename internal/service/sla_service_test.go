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

type slaFixture struct {
	tickets *fakeTicketRepo
	results *fakeResultRepo
	runs    *fakeRunRepo
	service *SlaService
	now     time.Time
}

func newSlaFixture(t *testing.T, tickets ...*domain.Ticket) *slaFixture {
	t.Helper()
	now := at(2026, time.March, 3, 12, 0)
	ticketRepo := newFakeTicketRepo(tickets...)
	resultRepo := newFakeResultRepo()
	runRepo := &fakeRunRepo{}
	pauseStore := &fakePauseStore{}

	svc := NewSlaService(SlaDependencies{
		TicketRepo: ticketRepo,
		ConfigRepo: &fakeConfigRepo{configs: defaultConfigs()},
		ResultRepo: resultRepo,
		RunRepo:    runRepo,
		Evaluator:  newTestEvaluator(pauseStore, now),
		Tracker:    sla.NewPauseTracker(pauseStore, zap.NewNop()),
		Metrics:    cache.NewMemoryMetricsCache(),
		Dispatcher: events.NewInMemoryDispatcher(zap.NewNop()),
		Logger:     zap.NewNop(),
	}).WithClock(func() time.Time { return now })

	return &slaFixture{tickets: ticketRepo, results: resultRepo, runs: runRepo, service: svc, now: now}
}

func TestEvaluateOneNotFound(t *testing.T) {
	fix := newSlaFixture(t)

	_, err := fix.service.EvaluateOne(context.Background(), "missing")
	require.Error(t, err)
	assert.Equal(t, "NOT_FOUND", util.ToDomainError(err).Code)
}

func TestEvaluateOneUntrackedTicket(t *testing.T) {
	ticket := openTicket("old")
	ticket.OpenedAt = at(2026, time.January, 5, 9, 0)
	fix := newSlaFixture(t, ticket)

	_, err := fix.service.EvaluateOne(context.Background(), "old")
	require.Error(t, err)
	assert.Equal(t, "SLA_NOT_TRACKED", util.ToDomainError(err).Code)
}

func TestEvaluateOnePersistsResult(t *testing.T) {
	fix := newSlaFixture(t, openTicket("t1"))

	result, err := fix.service.EvaluateOne(context.Background(), "t1")
	require.NoError(t, err)
	require.NotNil(t, result)
	assert.Equal(t, "t1", result.TicketID)
	assert.True(t, result.HasConfig)

	stored, err := fix.results.GetByTicket(context.Background(), "t1")
	require.NoError(t, err)
	assert.Equal(t, result.Resolution.WorkedHours, stored.Resolution.WorkedHours)
}

func TestRecomputeAllCountsAndLogsRun(t *testing.T) {
	breached := openTicket("b1") // opened Monday 09:00, evaluated Tuesday 12:00
	onTime := openTicket("o1")
	onTime.OpenedAt = at(2026, time.March, 3, 10, 0)
	untracked := openTicket("u1")
	untracked.OpenedAt = at(2026, time.January, 5, 9, 0)

	fix := newSlaFixture(t, breached, onTime, untracked)

	stats, err := fix.service.RecomputeAll(context.Background(), "manual")
	require.NoError(t, err)

	assert.Equal(t, 2, stats.Processed)
	assert.Equal(t, 1, stats.Breached)
	assert.Equal(t, 0, stats.Failed)

	require.Len(t, fix.runs.runs, 1)
	run := fix.runs.runs[0]
	assert.Equal(t, "manual", run.Kind)
	assert.True(t, run.Success)
	assert.Equal(t, 2, run.Processed)

	runs, err := fix.service.ListRuns(context.Background(), 10)
	require.NoError(t, err)
	assert.Len(t, runs, 1)
}

func TestRecomputeAllSingleFlight(t *testing.T) {
	fix := newSlaFixture(t)

	fix.service.recomputeMu.Lock()
	defer fix.service.recomputeMu.Unlock()

	_, err := fix.service.RecomputeAll(context.Background(), "manual")
	require.ErrorIs(t, err, ErrRecomputeInFlight)
}
