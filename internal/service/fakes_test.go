package service

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/fluxdesk/helpdesk-sla/internal/domain"
	"github.com/fluxdesk/helpdesk-sla/internal/sla"
)

func at(y int, m time.Month, d, hour, min int) time.Time {
	return time.Date(y, m, d, hour, min, 0, 0, time.UTC)
}

var testCutover = at(2026, time.February, 16, 0, 0)

type fakeTicketRepo struct {
	tickets map[string]*domain.Ticket
	updated []string
}

func newFakeTicketRepo(tickets ...*domain.Ticket) *fakeTicketRepo {
	repo := &fakeTicketRepo{tickets: map[string]*domain.Ticket{}}
	for _, t := range tickets {
		repo.tickets[t.ID] = t
	}
	return repo
}

func (r *fakeTicketRepo) GetByID(_ context.Context, id string) (*domain.Ticket, error) {
	ticket, ok := r.tickets[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	copied := *ticket
	return &copied, nil
}

func (r *fakeTicketRepo) Update(_ context.Context, ticket *domain.Ticket) error {
	if _, ok := r.tickets[ticket.ID]; !ok {
		return pgx.ErrNoRows
	}
	copied := *ticket
	r.tickets[ticket.ID] = &copied
	r.updated = append(r.updated, ticket.ID)
	return nil
}

func (r *fakeTicketRepo) ListSlaPopulation(_ context.Context, cutover, periodStart, periodEnd time.Time) ([]domain.Ticket, error) {
	var out []domain.Ticket
	for _, t := range r.tickets {
		if t.DeletedAt != nil || t.OpenedAt.Before(cutover) {
			continue
		}
		if t.Status.IsFinal() {
			if t.OpenedAt.Before(periodStart) || t.OpenedAt.After(periodEnd) {
				continue
			}
		}
		out = append(out, *t)
	}
	return out, nil
}

func (r *fakeTicketRepo) ListOpenedSince(_ context.Context, since time.Time) ([]domain.Ticket, error) {
	var out []domain.Ticket
	for _, t := range r.tickets {
		if t.DeletedAt == nil && !t.OpenedAt.Before(since) {
			out = append(out, *t)
		}
	}
	return out, nil
}

type fakeConfigRepo struct {
	configs []domain.SlaConfig
}

func (r *fakeConfigRepo) ListActive(_ context.Context) ([]domain.SlaConfig, error) {
	return r.configs, nil
}

func (r *fakeConfigRepo) GetByPriority(_ context.Context, priority domain.TicketPriority) (*domain.SlaConfig, error) {
	for i := range r.configs {
		if r.configs[i].Priority == priority {
			return &r.configs[i], nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r *fakeConfigRepo) Update(_ context.Context, cfg *domain.SlaConfig) error {
	for i := range r.configs {
		if r.configs[i].Priority == cfg.Priority {
			r.configs[i] = *cfg
			return nil
		}
	}
	return pgx.ErrNoRows
}

type fakeResultRepo struct {
	results map[string]domain.SlaResult
}

func newFakeResultRepo() *fakeResultRepo {
	return &fakeResultRepo{results: map[string]domain.SlaResult{}}
}

func (r *fakeResultRepo) Upsert(_ context.Context, result *domain.SlaResult) error {
	r.results[result.TicketID] = *result
	return nil
}

func (r *fakeResultRepo) GetByTicket(_ context.Context, ticketID string) (*domain.SlaResult, error) {
	result, ok := r.results[ticketID]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return &result, nil
}

type fakeRunRepo struct {
	runs []domain.BatchRun
}

func (r *fakeRunRepo) Create(_ context.Context, run *domain.BatchRun) error {
	run.ID = fmt.Sprintf("run-%d", len(r.runs)+1)
	r.runs = append(r.runs, *run)
	return nil
}

func (r *fakeRunRepo) List(_ context.Context, limit int) ([]domain.BatchRun, error) {
	out := append([]domain.BatchRun{}, r.runs...)
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

type fakeHistoryRepo struct {
	entries []domain.StatusHistory
}

func (r *fakeHistoryRepo) Create(_ context.Context, entry *domain.StatusHistory) error {
	entry.ID = fmt.Sprintf("hist-%d", len(r.entries)+1)
	r.entries = append(r.entries, *entry)
	return nil
}

func (r *fakeHistoryRepo) ListByTicket(_ context.Context, ticketID string) ([]domain.StatusHistory, error) {
	var out []domain.StatusHistory
	for _, e := range r.entries {
		if e.TicketID == ticketID {
			out = append(out, e)
		}
	}
	return out, nil
}

type fakePauseStore struct {
	pauses []domain.PauseInterval
	nextID int
}

func (s *fakePauseStore) ListOpenByTicket(_ context.Context, ticketID string) ([]domain.PauseInterval, error) {
	var out []domain.PauseInterval
	for _, p := range s.pauses {
		if p.TicketID == ticketID && p.EndedAt == nil {
			out = append(out, p)
		}
	}
	return out, nil
}

func (s *fakePauseStore) ListByTicket(_ context.Context, ticketID string) ([]domain.PauseInterval, error) {
	var out []domain.PauseInterval
	for _, p := range s.pauses {
		if p.TicketID == ticketID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (s *fakePauseStore) Create(_ context.Context, pause *domain.PauseInterval) error {
	s.nextID++
	pause.ID = fmt.Sprintf("pause-%d", s.nextID)
	s.pauses = append(s.pauses, *pause)
	return nil
}

func (s *fakePauseStore) Close(_ context.Context, pauseID string, endedAt time.Time, durationHours float64) error {
	for i := range s.pauses {
		if s.pauses[i].ID == pauseID && s.pauses[i].EndedAt == nil {
			s.pauses[i].EndedAt = &endedAt
			s.pauses[i].DurationHours = &durationHours
			return nil
		}
	}
	return pgx.ErrNoRows
}

type fakeHolidaySource struct{}

func (fakeHolidaySource) ActiveDates(context.Context, int) ([]time.Time, error) { return nil, nil }

type fakeHoursSource struct{}

func (fakeHoursSource) ActiveWindows(context.Context) (map[time.Weekday]domain.BusinessWindow, error) {
	return nil, nil
}

func newTestEvaluator(store sla.PauseStore, now time.Time) *sla.Evaluator {
	cal := sla.NewCalendar(fakeHolidaySource{}, fakeHoursSource{}, zap.NewNop())
	acc := sla.NewAccumulator(cal)
	return sla.NewEvaluator(acc, store, testCutover, domain.PriorityNormal, zap.NewNop()).
		WithClock(func() time.Time { return now })
}

func defaultConfigs() []domain.SlaConfig {
	return []domain.SlaConfig{
		{
			Priority:             domain.PriorityHigh,
			ResponseLimitHours:   2,
			ResolutionLimitHours: 8,
			RiskPercent:          80,
			UseBusinessHours:     true,
			UseHolidays:          true,
			Active:               true,
		},
		{
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
