package sla

import (
	"context"
	"math"
	"time"

	"github.com/fluxdesk/helpdesk-sla/internal/domain"
)

// ClockMode controls how a configuration wants elapsed time measured.
type ClockMode struct {
	BusinessHours bool
	Holidays      bool
}

// ModeFor derives the clock mode from an SLA configuration.
func ModeFor(cfg domain.SlaConfig) ClockMode {
	return ClockMode{BusinessHours: cfg.UseBusinessHours, Holidays: cfg.UseHolidays}
}

// DefaultMode measures business hours with holiday exclusion.
var DefaultMode = ClockMode{BusinessHours: true, Holidays: true}

// Accumulator converts instant ranges into elapsed business hours by clipping
// each calendar day's window against the requested span.
type Accumulator struct {
	cal *Calendar
}

// NewAccumulator builds an accumulator over the calendar.
func NewAccumulator(cal *Calendar) *Accumulator {
	return &Accumulator{cal: cal}
}

// HoursBetween computes elapsed hours between two instants under the given
// mode. It returns 0 when either instant is zero or start >= end; that is a
// defined edge case, not an error. Results carry 4 decimal places.
func (a *Accumulator) HoursBetween(ctx context.Context, start, end time.Time, mode ClockMode) (float64, error) {
	if start.IsZero() || end.IsZero() || !start.Before(end) {
		return 0, nil
	}
	if !mode.BusinessHours {
		return round4(end.Sub(start).Hours()), nil
	}

	total := 0.0
	last := dateOnly(end)
	for day := dateOnly(start); !day.After(last); day = day.AddDate(0, 0, 1) {
		winStart, winEnd, ok, err := a.cal.WindowFor(ctx, day, mode.Holidays)
		if err != nil {
			return 0, err
		}
		if !ok {
			continue
		}
		effStart := winStart
		if sameDate(day, start) && start.After(winStart) {
			effStart = start
		}
		effEnd := winEnd
		if sameDate(day, end) && end.Before(winEnd) {
			effEnd = end
		}
		if effStart.Before(effEnd) {
			total += effEnd.Sub(effStart).Hours()
		}
	}
	return round4(total), nil
}

// HoursWithPauses computes the net worked hours over [start,end] after
// subtracting, for each pause interval intersecting the span, the elapsed
// hours of the intersection measured under the same mode. Open pauses are
// capped at now. Worked is floored at 0.
func (a *Accumulator) HoursWithPauses(ctx context.Context, start, end time.Time, pauses []domain.PauseInterval, now time.Time, mode ClockMode) (worked, paused float64, err error) {
	gross, err := a.HoursBetween(ctx, start, end, mode)
	if err != nil {
		return 0, 0, err
	}

	for _, pause := range pauses {
		pauseEnd := now
		if pause.EndedAt != nil {
			pauseEnd = *pause.EndedAt
		}
		clipStart := maxTime(pause.StartedAt, start)
		clipEnd := minTime(pauseEnd, end)
		if !clipStart.Before(clipEnd) {
			continue
		}
		hours, herr := a.HoursBetween(ctx, clipStart, clipEnd, mode)
		if herr != nil {
			return 0, 0, herr
		}
		paused += hours
	}

	worked = gross - paused
	if worked < 0 {
		worked = 0
	}
	return round4(worked), round4(paused), nil
}

func round4(v float64) float64 {
	return math.Round(v*10000) / 10000
}

func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

func sameDate(day, t time.Time) bool {
	return day.Year() == t.Year() && day.YearDay() == t.YearDay()
}

func maxTime(a, b time.Time) time.Time {
	if a.After(b) {
		return a
	}
	return b
}

func minTime(a, b time.Time) time.Time {
	if a.Before(b) {
		return a
	}
	return b
}
