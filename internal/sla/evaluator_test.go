package sla

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/fluxdesk/helpdesk-sla/internal/domain"
)

var testCutover = date(2026, time.February, 16)

func altaConfig() map[domain.TicketPriority]domain.SlaConfig {
	return map[domain.TicketPriority]domain.SlaConfig{
		domain.PriorityHigh: {
			Priority:             domain.PriorityHigh,
			ResponseLimitHours:   2,
			ResolutionLimitHours: 8,
			RiskPercent:          80,
			UseBusinessHours:     true,
			UseHolidays:          true,
			Active:               true,
		},
		domain.PriorityNormal: {
			Priority:             domain.PriorityNormal,
			ResponseLimitHours:   4,
			ResolutionLimitHours: 24,
			RiskPercent:          80,
			UseBusinessHours:     true,
			UseHolidays:          true,
			Active:               true,
		},
	}
}

func newTestEvaluator(store PauseStore, now time.Time) *Evaluator {
	acc := newTestAccumulator(nil)
	return NewEvaluator(acc, store, testCutover, domain.PriorityNormal, zap.NewNop()).
		WithClock(func() time.Time { return now })
}

func TestEvaluateSkipsPreCutoverAndDeleted(t *testing.T) {
	eval := newTestEvaluator(&memPauseStore{}, at(2026, time.March, 2, 12, 0))
	ctx := context.Background()

	result, err := eval.Evaluate(ctx, &domain.Ticket{
		ID:       "t1",
		Priority: domain.PriorityHigh,
		Status:   domain.StatusOpen,
		OpenedAt: at(2026, time.January, 10, 9, 0),
	}, altaConfig())
	require.NoError(t, err)
	assert.Nil(t, result)

	deletedAt := at(2026, time.March, 1, 0, 0)
	result, err = eval.Evaluate(ctx, &domain.Ticket{
		ID:        "t2",
		Priority:  domain.PriorityHigh,
		Status:    domain.StatusOpen,
		OpenedAt:  at(2026, time.March, 2, 9, 0),
		DeletedAt: &deletedAt,
	}, altaConfig())
	require.NoError(t, err)
	assert.Nil(t, result)
}

func TestEvaluateResponseOnTime(t *testing.T) {
	now := at(2026, time.March, 2, 11, 0)
	eval := newTestEvaluator(&memPauseStore{}, now)

	firstResponse := at(2026, time.March, 2, 10, 30)
	result, err := eval.Evaluate(context.Background(), &domain.Ticket{
		ID:              "t1",
		Priority:        domain.PriorityHigh,
		Status:          domain.StatusInProgress,
		OpenedAt:        at(2026, time.March, 2, 9, 0),
		FirstResponseAt: &firstResponse,
	}, altaConfig())
	require.NoError(t, err)
	require.NotNil(t, result)

	assert.True(t, result.HasConfig)
	assert.Equal(t, 1.5, result.Response.WorkedHours)
	assert.Equal(t, 75.0, result.Response.Percent)
	assert.True(t, result.Response.OnTime)
	assert.False(t, result.Response.AtRisk)
	assert.False(t, result.Response.Breached)
}

func TestEvaluateFrozenResponseNeverAtRisk(t *testing.T) {
	// First response at exactly the limit: frozen clock breaches only on
	// strict excess, so 2.0 worked against a 2h limit stays on time even
	// though a live clock would have breached.
	now := at(2026, time.March, 4, 11, 0)
	eval := newTestEvaluator(&memPauseStore{}, now)

	firstResponse := at(2026, time.March, 2, 11, 0)
	result, err := eval.Evaluate(context.Background(), &domain.Ticket{
		ID:              "t1",
		Priority:        domain.PriorityHigh,
		Status:          domain.StatusInProgress,
		OpenedAt:        at(2026, time.March, 2, 9, 0),
		FirstResponseAt: &firstResponse,
	}, altaConfig())
	require.NoError(t, err)
	require.NotNil(t, result)

	assert.Equal(t, 2.0, result.Response.WorkedHours)
	assert.True(t, result.Response.OnTime)
	assert.False(t, result.Response.Breached)
	assert.False(t, result.Response.AtRisk)
}

func TestEvaluateResponseBreachedWithoutResponse(t *testing.T) {
	now := at(2026, time.March, 2, 12, 0)
	eval := newTestEvaluator(&memPauseStore{}, now)

	result, err := eval.Evaluate(context.Background(), &domain.Ticket{
		ID:       "t1",
		Priority: domain.PriorityHigh,
		Status:   domain.StatusOpen,
		OpenedAt: at(2026, time.March, 2, 9, 0),
	}, altaConfig())
	require.NoError(t, err)
	require.NotNil(t, result)

	assert.Equal(t, 3.0, result.Response.WorkedHours)
	assert.True(t, result.Response.Breached)
	assert.Equal(t, 150.0, result.Response.Percent)
}

func TestEvaluateResolutionWithPause(t *testing.T) {
	// Opened Monday 09:00, automatic pause Monday 12:00 to Tuesday 09:00,
	// evaluated Tuesday 12:00: 13 gross business hours, 7 paused, 6 worked.
	now := at(2026, time.March, 3, 12, 0)
	store := &memPauseStore{}
	pauseEnd := at(2026, time.March, 3, 9, 0)
	store.pauses = append(store.pauses, domain.PauseInterval{
		ID:        "p1",
		TicketID:  "t1",
		StartedAt: at(2026, time.March, 2, 12, 0),
		EndedAt:   &pauseEnd,
	})
	eval := newTestEvaluator(store, now)

	result, err := eval.Evaluate(context.Background(), &domain.Ticket{
		ID:       "t1",
		Priority: domain.PriorityHigh,
		Status:   domain.StatusInProgress,
		OpenedAt: at(2026, time.March, 2, 9, 0),
	}, altaConfig())
	require.NoError(t, err)
	require.NotNil(t, result)

	assert.Equal(t, 6.0, result.Resolution.WorkedHours)
	assert.Equal(t, 7.0, result.Resolution.PausedHours)
	assert.Equal(t, 75.0, result.Resolution.Percent)
	assert.False(t, result.Resolution.Breached)
	assert.False(t, result.Resolution.AtRisk)
	assert.True(t, result.Resolution.OnTime)
}

func TestEvaluateResolutionBreached(t *testing.T) {
	now := at(2026, time.March, 3, 12, 0)
	eval := newTestEvaluator(&memPauseStore{}, now)

	result, err := eval.Evaluate(context.Background(), &domain.Ticket{
		ID:       "t1",
		Priority: domain.PriorityHigh,
		Status:   domain.StatusOpen,
		OpenedAt: at(2026, time.March, 2, 9, 0),
	}, altaConfig())
	require.NoError(t, err)
	require.NotNil(t, result)

	assert.Equal(t, 13.0, result.Resolution.WorkedHours)
	assert.True(t, result.Resolution.Breached)
	assert.False(t, result.Resolution.AtRisk)
	assert.Equal(t, 162.5, result.Resolution.Percent)
}

func TestEvaluateFinalTicketUsesTerminalInstant(t *testing.T) {
	now := at(2026, time.March, 10, 12, 0)
	eval := newTestEvaluator(&memPauseStore{}, now)

	concluded := at(2026, time.March, 2, 15, 0)
	result, err := eval.Evaluate(context.Background(), &domain.Ticket{
		ID:          "t1",
		Priority:    domain.PriorityHigh,
		Status:      domain.StatusResolved,
		OpenedAt:    at(2026, time.March, 2, 9, 0),
		ConcludedAt: &concluded,
	}, altaConfig())
	require.NoError(t, err)
	require.NotNil(t, result)

	// Clock stopped at conclusion; a final ticket is never flagged.
	assert.Equal(t, 6.0, result.Resolution.WorkedHours)
	assert.True(t, result.Resolution.OnTime)
	assert.False(t, result.Active)
	assert.False(t, result.Paused)
}

func TestEvaluateFallsBackToDefaultPriority(t *testing.T) {
	now := at(2026, time.March, 2, 10, 0)
	eval := newTestEvaluator(&memPauseStore{}, now)

	result, err := eval.Evaluate(context.Background(), &domain.Ticket{
		ID:       "t1",
		Priority: domain.TicketPriority("urgentissima"),
		Status:   domain.StatusOpen,
		OpenedAt: at(2026, time.March, 2, 9, 0),
	}, altaConfig())
	require.NoError(t, err)
	require.NotNil(t, result)

	assert.True(t, result.HasConfig)
	assert.Equal(t, 24.0, result.Resolution.LimitHours)
}

func TestEvaluateNoConfigurationAtAll(t *testing.T) {
	now := at(2026, time.March, 2, 10, 0)
	eval := newTestEvaluator(&memPauseStore{}, now)

	result, err := eval.Evaluate(context.Background(), &domain.Ticket{
		ID:       "t1",
		Priority: domain.PriorityLow,
		Status:   domain.StatusOpen,
		OpenedAt: at(2026, time.March, 2, 9, 0),
	}, map[domain.TicketPriority]domain.SlaConfig{})
	require.NoError(t, err)
	require.NotNil(t, result)

	assert.False(t, result.HasConfig)
	assert.True(t, result.Response.OnTime)
	assert.Zero(t, result.Resolution.WorkedHours)
}

func TestEvaluatePausedStatusFlagged(t *testing.T) {
	now := at(2026, time.March, 2, 13, 0)
	store := &memPauseStore{}
	store.pauses = append(store.pauses, domain.PauseInterval{
		ID:        "p1",
		TicketID:  "t1",
		StartedAt: at(2026, time.March, 2, 12, 0),
	})
	eval := newTestEvaluator(store, now)

	result, err := eval.Evaluate(context.Background(), &domain.Ticket{
		ID:       "t1",
		Priority: domain.PriorityHigh,
		Status:   domain.StatusWaiting,
		OpenedAt: at(2026, time.March, 2, 9, 0),
	}, altaConfig())
	require.NoError(t, err)
	require.NotNil(t, result)

	assert.True(t, result.Paused)
	assert.False(t, result.Active)
	assert.Equal(t, 1.0, result.Resolution.PausedHours)
	assert.Equal(t, 3.0, result.Resolution.WorkedHours)
}
