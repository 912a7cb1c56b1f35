package sla

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fluxdesk/helpdesk-sla/internal/domain"
)

func newTestAccumulator(holidays []time.Time) *Accumulator {
	cal, _ := newTestCalendar(holidays, nil)
	return NewAccumulator(cal)
}

func TestHoursBetweenSameDay(t *testing.T) {
	acc := newTestAccumulator(nil)

	hours, err := acc.HoursBetween(context.Background(),
		at(2026, time.March, 2, 9, 0), at(2026, time.March, 2, 10, 30), DefaultMode)
	require.NoError(t, err)
	assert.Equal(t, 1.5, hours)
}

func TestHoursBetweenClipsToWindow(t *testing.T) {
	acc := newTestAccumulator(nil)

	// Opened before the window, closed after it: only the 08:00-18:00 span counts.
	hours, err := acc.HoursBetween(context.Background(),
		at(2026, time.March, 2, 6, 0), at(2026, time.March, 2, 22, 0), DefaultMode)
	require.NoError(t, err)
	assert.Equal(t, 10.0, hours)
}

func TestHoursBetweenSpansWeekend(t *testing.T) {
	acc := newTestAccumulator(nil)

	// Friday 17:00 to Monday 09:00: one hour Friday plus one hour Monday.
	hours, err := acc.HoursBetween(context.Background(),
		at(2026, time.March, 6, 17, 0), at(2026, time.March, 9, 9, 0), DefaultMode)
	require.NoError(t, err)
	assert.Equal(t, 2.0, hours)
}

func TestHoursBetweenSkipsHolidays(t *testing.T) {
	acc := newTestAccumulator([]time.Time{date(2026, time.March, 3)})

	hours, err := acc.HoursBetween(context.Background(),
		at(2026, time.March, 2, 17, 0), at(2026, time.March, 4, 9, 0), DefaultMode)
	require.NoError(t, err)
	assert.Equal(t, 2.0, hours)

	// Same span with holidays disabled counts the Tuesday window in full.
	hours, err = acc.HoursBetween(context.Background(),
		at(2026, time.March, 2, 17, 0), at(2026, time.March, 4, 9, 0),
		ClockMode{BusinessHours: true, Holidays: false})
	require.NoError(t, err)
	assert.Equal(t, 12.0, hours)
}

func TestHoursBetweenWallClockMode(t *testing.T) {
	acc := newTestAccumulator(nil)

	hours, err := acc.HoursBetween(context.Background(),
		at(2026, time.March, 6, 17, 0), at(2026, time.March, 9, 9, 0),
		ClockMode{BusinessHours: false})
	require.NoError(t, err)
	assert.Equal(t, 64.0, hours)
}

func TestHoursBetweenDegenerateRanges(t *testing.T) {
	acc := newTestAccumulator(nil)
	ctx := context.Background()
	ref := at(2026, time.March, 2, 9, 0)

	hours, err := acc.HoursBetween(ctx, ref, ref, DefaultMode)
	require.NoError(t, err)
	assert.Zero(t, hours)

	hours, err = acc.HoursBetween(ctx, ref, ref.Add(-time.Hour), DefaultMode)
	require.NoError(t, err)
	assert.Zero(t, hours)

	hours, err = acc.HoursBetween(ctx, time.Time{}, ref, DefaultMode)
	require.NoError(t, err)
	assert.Zero(t, hours)
}

func TestHoursWithPausesClosedPause(t *testing.T) {
	acc := newTestAccumulator(nil)

	// Opened Monday 09:00, paused Monday 12:00 until Tuesday 09:00,
	// evaluated Tuesday 12:00.
	opened := at(2026, time.March, 2, 9, 0)
	now := at(2026, time.March, 3, 12, 0)
	pauseEnd := at(2026, time.March, 3, 9, 0)
	pauses := []domain.PauseInterval{{
		StartedAt: at(2026, time.March, 2, 12, 0),
		EndedAt:   &pauseEnd,
	}}

	worked, paused, err := acc.HoursWithPauses(context.Background(), opened, now, pauses, now, DefaultMode)
	require.NoError(t, err)
	assert.Equal(t, 7.0, paused)
	assert.Equal(t, 6.0, worked)
}

func TestHoursWithPausesOpenPauseCappedAtNow(t *testing.T) {
	acc := newTestAccumulator(nil)

	opened := at(2026, time.March, 2, 9, 0)
	now := at(2026, time.March, 2, 16, 0)
	pauses := []domain.PauseInterval{{StartedAt: at(2026, time.March, 2, 12, 0)}}

	worked, paused, err := acc.HoursWithPauses(context.Background(), opened, now, pauses, now, DefaultMode)
	require.NoError(t, err)
	assert.Equal(t, 4.0, paused)
	assert.Equal(t, 3.0, worked)
}

func TestHoursWithPausesOutsideSpanIgnored(t *testing.T) {
	acc := newTestAccumulator(nil)

	opened := at(2026, time.March, 2, 9, 0)
	end := at(2026, time.March, 2, 12, 0)
	pauseEnd := at(2026, time.March, 2, 17, 0)
	pauses := []domain.PauseInterval{{
		StartedAt: at(2026, time.March, 2, 14, 0),
		EndedAt:   &pauseEnd,
	}}

	worked, paused, err := acc.HoursWithPauses(context.Background(), opened, end, pauses, end, DefaultMode)
	require.NoError(t, err)
	assert.Zero(t, paused)
	assert.Equal(t, 3.0, worked)
}
