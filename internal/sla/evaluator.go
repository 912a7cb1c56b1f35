package sla

import (
	"context"
	"math"
	"time"

	"go.uber.org/zap"

	"github.com/fluxdesk/helpdesk-sla/internal/domain"
)

// Evaluator derives the SLA state of a single ticket. Given the same ticket,
// configuration, pause set and reference instant it always produces the same
// result.
type Evaluator struct {
	acc             *Accumulator
	pauses          PauseStore
	cutover         time.Time
	defaultPriority domain.TicketPriority
	logger          *zap.Logger
	now             func() time.Time
}

// NewEvaluator builds an evaluator. Tickets opened before cutover are exempt
// from SLA tracking and evaluate to nil.
func NewEvaluator(acc *Accumulator, pauses PauseStore, cutover time.Time, defaultPriority domain.TicketPriority, logger *zap.Logger) *Evaluator {
	return &Evaluator{
		acc:             acc,
		pauses:          pauses,
		cutover:         cutover,
		defaultPriority: defaultPriority,
		logger:          logger,
		now:             time.Now,
	}
}

// WithClock overrides the time source. Intended for tests.
func (e *Evaluator) WithClock(now func() time.Time) *Evaluator {
	e.now = now
	return e
}

// Cutover returns the SLA cutover epoch.
func (e *Evaluator) Cutover() time.Time {
	return e.cutover
}

// Subject reports whether the ticket is subject to SLA tracking at all.
// Pre-cutover and soft-deleted tickets are excluded from every computation.
func (e *Evaluator) Subject(t *domain.Ticket) bool {
	return t != nil && !t.Deleted() && !t.OpenedAt.IsZero() && !t.OpenedAt.Before(e.cutover)
}

// ResolveConfig picks the active configuration for a priority, falling back
// to the default priority. ok=false means no usable configuration exists.
func (e *Evaluator) ResolveConfig(configs map[domain.TicketPriority]domain.SlaConfig, priority domain.TicketPriority) (domain.SlaConfig, bool) {
	if cfg, found := configs[priority]; found {
		return cfg, true
	}
	cfg, found := configs[e.defaultPriority]
	return cfg, found
}

// Evaluate computes the SLA result for a ticket. It returns (nil, nil) for
// tickets outside the cutover policy, and a zeroed no-data result when no
// configuration matches the priority; neither case is an error.
func (e *Evaluator) Evaluate(ctx context.Context, t *domain.Ticket, configs map[domain.TicketPriority]domain.SlaConfig) (*domain.SlaResult, error) {
	if !e.Subject(t) {
		return nil, nil
	}

	now := e.now()
	status := t.Status
	result := &domain.SlaResult{
		TicketID:    t.ID,
		ExternalKey: t.ExternalKey,
		Priority:    t.Priority,
		Status:      status,
		Paused:      status.IsPausing(),
		Active:      status.IsActive(),
		EvaluatedAt: now,
	}

	cfg, found := e.ResolveConfig(configs, t.Priority)
	if !found {
		e.logger.Warn("no sla configuration for priority",
			zap.String("ticket_id", t.ID),
			zap.String("priority", string(t.Priority)))
		result.Response = emptyClock()
		result.Resolution = emptyClock()
		return result, nil
	}
	result.HasConfig = true

	refEnd := now
	if status.IsFinal() {
		switch {
		case t.ConcludedAt != nil:
			refEnd = *t.ConcludedAt
		case t.CancelledAt != nil:
			refEnd = *t.CancelledAt
		}
	}

	pauses, err := e.pauses.ListByTicket(ctx, t.ID)
	if err != nil {
		return nil, err
	}
	mode := ModeFor(cfg)

	worked, paused, err := e.acc.HoursWithPauses(ctx, t.OpenedAt, refEnd, pauses, now, mode)
	if err != nil {
		return nil, err
	}
	result.Resolution = liveClock(cfg.ResolutionLimitHours, worked, paused, cfg.RiskPercent, status.IsFinal())

	if t.FirstResponseAt != nil {
		// First response is a point-in-time event: once met the clock is
		// frozen and never regresses to at-risk.
		worked, paused, err = e.acc.HoursWithPauses(ctx, t.OpenedAt, *t.FirstResponseAt, pauses, now, mode)
		if err != nil {
			return nil, err
		}
		result.Response = frozenClock(cfg.ResponseLimitHours, worked, paused)
	} else {
		worked, paused, err = e.acc.HoursWithPauses(ctx, t.OpenedAt, refEnd, pauses, now, mode)
		if err != nil {
			return nil, err
		}
		result.Response = liveClock(cfg.ResponseLimitHours, worked, paused, cfg.RiskPercent, status.IsFinal())
	}

	return result, nil
}

// liveClock classifies a still-running clock. Final tickets are never marked
// breached or at-risk retroactively; their outcome is historical.
func liveClock(limit, worked, paused, riskPercent float64, final bool) domain.SlaClock {
	clock := domain.SlaClock{
		LimitHours:  limit,
		WorkedHours: worked,
		PausedHours: paused,
		Percent:     consumption(worked, limit),
	}
	if !final {
		clock.Breached = limit > 0 && worked >= limit
		clock.AtRisk = clock.Percent >= riskPercent && !clock.Breached
	}
	clock.OnTime = !clock.Breached && !clock.AtRisk
	return clock
}

// frozenClock classifies the response clock of a ticket that already received
// its first response. It can only be on-time or breached.
func frozenClock(limit, worked, paused float64) domain.SlaClock {
	clock := domain.SlaClock{
		LimitHours:  limit,
		WorkedHours: worked,
		PausedHours: paused,
		Percent:     consumption(worked, limit),
	}
	clock.Breached = limit > 0 && worked > limit
	clock.OnTime = !clock.Breached
	return clock
}

func emptyClock() domain.SlaClock {
	return domain.SlaClock{OnTime: true}
}

func consumption(worked, limit float64) float64 {
	if limit <= 0 {
		return 0
	}
	return round1(worked / limit * 100)
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
