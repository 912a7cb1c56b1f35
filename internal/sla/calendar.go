// Package sla implements the SLA calculation engine: the business calendar,
// the working-time accumulator, pause tracking and the per-ticket evaluator.
// The engine is pure computation over data fetched through narrow accessor
// interfaces; it holds no global state.
package sla

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/fluxdesk/helpdesk-sla/internal/domain"
)

// DefaultWindow is applied Monday through Friday when no business-hours rows
// are configured at all. Partial configuration is honored as-is.
var DefaultWindow = domain.BusinessWindow{StartMinute: 8 * 60, EndMinute: 18 * 60}

// HolidaySource yields the active holiday dates for a calendar year.
type HolidaySource interface {
	ActiveDates(ctx context.Context, year int) ([]time.Time, error)
}

// HoursSource yields the active per-weekday business windows.
type HoursSource interface {
	ActiveWindows(ctx context.Context) (map[time.Weekday]domain.BusinessWindow, error)
}

// Calendar answers whether a date is a working day and what its business
// window is. Holiday lookups are cached per calendar year and weekday windows
// are cached once; Invalidate must be called by the configuration mutation
// path, there is no TTL.
type Calendar struct {
	holidays HolidaySource
	hours    HoursSource
	logger   *zap.Logger

	mu            sync.RWMutex
	holidayYears  map[int]map[string]struct{}
	windows       map[time.Weekday]domain.BusinessWindow
	windowsLoaded bool
}

// NewCalendar builds a calendar over the given accessors.
func NewCalendar(holidays HolidaySource, hours HoursSource, logger *zap.Logger) *Calendar {
	return &Calendar{
		holidays:     holidays,
		hours:        hours,
		logger:       logger,
		holidayYears: make(map[int]map[string]struct{}),
	}
}

// Invalidate drops all cached holiday and window data. The next read reloads
// from the sources.
func (c *Calendar) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.holidayYears = make(map[int]map[string]struct{})
	c.windows = nil
	c.windowsLoaded = false
}

// IsBusinessDay reports whether the date is a weekday that is not an active
// holiday.
func (c *Calendar) IsBusinessDay(ctx context.Context, date time.Time) (bool, error) {
	if isWeekend(date) {
		return false, nil
	}
	holiday, err := c.isHoliday(ctx, date)
	if err != nil {
		return false, err
	}
	return !holiday, nil
}

// WindowFor returns the business window for the date as concrete instants, or
// ok=false when the date has no working window. When includeHolidays is false
// only the weekday check applies.
func (c *Calendar) WindowFor(ctx context.Context, date time.Time, includeHolidays bool) (start, end time.Time, ok bool, err error) {
	if isWeekend(date) {
		return time.Time{}, time.Time{}, false, nil
	}
	if includeHolidays {
		holiday, herr := c.isHoliday(ctx, date)
		if herr != nil {
			return time.Time{}, time.Time{}, false, herr
		}
		if holiday {
			return time.Time{}, time.Time{}, false, nil
		}
	}

	windows, err := c.loadWindows(ctx)
	if err != nil {
		return time.Time{}, time.Time{}, false, err
	}
	window, exists := windows[date.Weekday()]
	if !exists {
		return time.Time{}, time.Time{}, false, nil
	}

	day := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, date.Location())
	start = day.Add(time.Duration(window.StartMinute) * time.Minute)
	end = day.Add(time.Duration(window.EndMinute) * time.Minute)
	return start, end, true, nil
}

func (c *Calendar) isHoliday(ctx context.Context, date time.Time) (bool, error) {
	set, err := c.holidaySet(ctx, date.Year())
	if err != nil {
		return false, err
	}
	_, found := set[dateKey(date)]
	return found, nil
}

func (c *Calendar) holidaySet(ctx context.Context, year int) (map[string]struct{}, error) {
	c.mu.RLock()
	set, ok := c.holidayYears[year]
	c.mu.RUnlock()
	if ok {
		return set, nil
	}

	dates, err := c.holidays.ActiveDates(ctx, year)
	if err != nil {
		return nil, err
	}
	set = make(map[string]struct{}, len(dates))
	for _, d := range dates {
		set[dateKey(d)] = struct{}{}
	}

	c.mu.Lock()
	c.holidayYears[year] = set
	c.mu.Unlock()

	c.logger.Debug("holiday cache loaded",
		zap.Int("year", year),
		zap.Int("count", len(set)))
	return set, nil
}

func (c *Calendar) loadWindows(ctx context.Context) (map[time.Weekday]domain.BusinessWindow, error) {
	c.mu.RLock()
	if c.windowsLoaded {
		windows := c.windows
		c.mu.RUnlock()
		return windows, nil
	}
	c.mu.RUnlock()

	configured, err := c.hours.ActiveWindows(ctx)
	if err != nil {
		return nil, err
	}
	windows := configured
	if len(windows) == 0 {
		// Absence of all configured hours triggers the global default.
		windows = map[time.Weekday]domain.BusinessWindow{
			time.Monday:    DefaultWindow,
			time.Tuesday:   DefaultWindow,
			time.Wednesday: DefaultWindow,
			time.Thursday:  DefaultWindow,
			time.Friday:    DefaultWindow,
		}
	}

	c.mu.Lock()
	c.windows = windows
	c.windowsLoaded = true
	c.mu.Unlock()
	return windows, nil
}

func isWeekend(date time.Time) bool {
	wd := date.Weekday()
	return wd == time.Saturday || wd == time.Sunday
}

func dateKey(t time.Time) string {
	return t.Format("2006-01-02")
}
