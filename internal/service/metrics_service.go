package service

import (
	"context"
	"math"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/fluxdesk/helpdesk-sla/internal/cache"
	"github.com/fluxdesk/helpdesk-sla/internal/domain"
	"github.com/fluxdesk/helpdesk-sla/internal/repository"
	"github.com/fluxdesk/helpdesk-sla/internal/sla"
	"github.com/fluxdesk/helpdesk-sla/pkg/util"
)

const (
	defaultPeriodDays = 30
	topListSize       = 50

	// Floor applied to average inputs so same-minute responses do not zero
	// out the mean. Roughly one minute in hours.
	minAverageHours = 0.017
)

// MetricsService aggregates per-ticket SLA results into the dashboard payload.
type MetricsService struct {
	tickets   repository.TicketRepository
	configs   repository.SlaConfigRepository
	evaluator *sla.Evaluator
	metrics   cache.MetricsCache
	ttl       time.Duration
	logger    *zap.Logger
	now       func() time.Time
}

// MetricsDependencies bundles collaborators for the metrics service.
type MetricsDependencies struct {
	TicketRepo repository.TicketRepository
	ConfigRepo repository.SlaConfigRepository
	Evaluator  *sla.Evaluator
	Metrics    cache.MetricsCache
	CacheTTL   time.Duration
	Logger     *zap.Logger
}

// NewMetricsService constructs the service.
func NewMetricsService(deps MetricsDependencies) *MetricsService {
	ttl := deps.CacheTTL
	if ttl <= 0 {
		ttl = 15 * time.Minute
	}
	return &MetricsService{
		tickets:   deps.TicketRepo,
		configs:   deps.ConfigRepo,
		evaluator: deps.Evaluator,
		metrics:   deps.Metrics,
		ttl:       ttl,
		logger:    deps.Logger,
		now:       time.Now,
	}
}

// WithClock overrides the time source. Intended for tests.
func (s *MetricsService) WithClock(now func() time.Time) *MetricsService {
	s.now = now
	return s
}

// Dashboard builds the aggregate payload for a period. Zero instants select
// the default window: the last 30 days, clamped to the tracking start date.
// Open and paused tickets are always included regardless of the period; final
// tickets only count when opened inside it.
func (s *MetricsService) Dashboard(ctx context.Context, periodStart, periodEnd time.Time) (*domain.DashboardMetrics, error) {
	now := s.now()
	cutover := s.evaluator.Cutover()

	if periodEnd.IsZero() {
		periodEnd = now
	}
	if periodStart.IsZero() {
		periodStart = periodEnd.AddDate(0, 0, -defaultPeriodDays)
	}
	if periodStart.Before(cutover) {
		periodStart = cutover
	}
	if !periodStart.Before(periodEnd) {
		return nil, util.NewValidationError("period start must precede period end", map[string]any{
			"period_start": periodStart,
			"period_end":   periodEnd,
		})
	}

	key := cache.DashboardKey(periodStart, periodEnd)
	if cached, err := s.metrics.GetDashboard(ctx, key); err != nil {
		s.logger.Warn("dashboard cache read failed", zap.Error(err))
	} else if cached != nil {
		cachedAt := cached.GeneratedAt
		cached.CachedAt = &cachedAt
		return cached, nil
	}

	tickets, err := s.tickets.ListSlaPopulation(ctx, cutover, periodStart, periodEnd)
	if err != nil {
		return nil, err
	}
	configList, err := s.configs.ListActive(ctx)
	if err != nil {
		return nil, err
	}
	configs := make(map[domain.TicketPriority]domain.SlaConfig, len(configList))
	for _, cfg := range configList {
		configs[cfg.Priority] = cfg
	}

	metrics := &domain.DashboardMetrics{
		PeriodStart: periodStart,
		PeriodEnd:   periodEnd,
		CutoverDate: cutover,
		GeneratedAt: now,
		ByPriority:  []domain.PrioritySummary{},
		TopAtRisk:   []domain.SlaResult{},
		TopBreached: []domain.SlaResult{},
		TopPaused:   []domain.SlaResult{},
	}

	var (
		results         []domain.SlaResult
		byPriority      = map[domain.TicketPriority]*domain.PrioritySummary{}
		responseSum     float64
		responseCount   int
		resolutionSum   float64
		resolutionCount int
	)

	for i := range tickets {
		ticket := &tickets[i]
		result, err := s.evaluator.Evaluate(ctx, ticket, configs)
		if err != nil {
			s.logger.Warn("skipping ticket in dashboard aggregation",
				zap.String("ticket_id", ticket.ID), zap.Error(err))
			continue
		}
		if result == nil {
			continue
		}
		results = append(results, *result)

		metrics.TotalTickets++
		if result.Active {
			metrics.OpenTickets++
		}

		summary, ok := byPriority[result.Priority]
		if !ok {
			summary = &domain.PrioritySummary{Priority: result.Priority}
			byPriority[result.Priority] = summary
		}
		summary.Total++

		// Each ticket lands in exactly one bucket; paused dominates so a
		// breached-while-paused ticket is not double counted.
		switch {
		case result.Paused:
			metrics.TicketsPaused++
			summary.Paused++
		case result.Resolution.Breached:
			metrics.TicketsBreached++
			summary.Breached++
		case result.Resolution.AtRisk:
			metrics.TicketsAtRisk++
			summary.AtRisk++
		}

		if ticket.FirstResponseAt != nil {
			responseSum += averageInput(result.Response.WorkedHours, ticket.OpenedAt, *ticket.FirstResponseAt)
			responseCount++
		}
		if ticket.ConcludedAt != nil {
			resolutionSum += averageInput(result.Resolution.WorkedHours, ticket.OpenedAt, *ticket.ConcludedAt)
			resolutionCount++
		}
	}

	if metrics.TotalTickets > 0 {
		total := float64(metrics.TotalTickets)
		compliant := metrics.TotalTickets - metrics.TicketsBreached - metrics.TicketsAtRisk
		metrics.BreachedPercent = round1(float64(metrics.TicketsBreached) / total * 100)
		metrics.AtRiskPercent = round1(float64(metrics.TicketsAtRisk) / total * 100)
		metrics.CompliancePercent = round1(float64(compliant) / total * 100)
	} else {
		metrics.CompliancePercent = 100
	}
	if responseCount > 0 {
		metrics.AvgResponseHours = round4(responseSum / float64(responseCount))
	}
	if resolutionCount > 0 {
		metrics.AvgResolutionHours = round4(resolutionSum / float64(resolutionCount))
	}

	for _, summary := range byPriority {
		if summary.Total > 0 {
			summary.AtRiskPercent = round1(float64(summary.AtRisk) / float64(summary.Total) * 100)
			summary.BreachedPercent = round1(float64(summary.Breached) / float64(summary.Total) * 100)
		}
		metrics.ByPriority = append(metrics.ByPriority, *summary)
	}
	sort.Slice(metrics.ByPriority, func(i, j int) bool {
		return priorityRank(metrics.ByPriority[i].Priority) < priorityRank(metrics.ByPriority[j].Priority)
	})

	metrics.TopAtRisk = topBy(results, func(r *domain.SlaResult) bool { return !r.Paused && r.Resolution.AtRisk })
	metrics.TopBreached = topBy(results, func(r *domain.SlaResult) bool { return !r.Paused && r.Resolution.Breached })
	metrics.TopPaused = topBy(results, func(r *domain.SlaResult) bool { return r.Paused })

	if err := s.metrics.SetDashboard(ctx, key, metrics, s.ttl); err != nil {
		s.logger.Warn("dashboard cache write failed", zap.Error(err))
	}
	return metrics, nil
}

// averageInput picks the business-hours figure for an average. When the event
// happened entirely outside the working window the wall-clock span is used
// instead, floored so instant responses still register. A positive business
// figure is taken as-is, however small.
func averageInput(workedHours float64, start, end time.Time) float64 {
	if workedHours > 0 {
		return workedHours
	}
	return math.Max(end.Sub(start).Hours(), minAverageHours)
}

// topBy returns the matching results ordered by resolution consumption,
// worst first, capped at the dashboard list size.
func topBy(results []domain.SlaResult, match func(*domain.SlaResult) bool) []domain.SlaResult {
	out := []domain.SlaResult{}
	for i := range results {
		if match(&results[i]) {
			out = append(out, results[i])
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Resolution.Percent > out[j].Resolution.Percent
	})
	if len(out) > topListSize {
		out = out[:topListSize]
	}
	return out
}

func priorityRank(p domain.TicketPriority) int {
	switch p {
	case domain.PriorityCritical:
		return 0
	case domain.PriorityHigh:
		return 1
	case domain.PriorityNormal:
		return 2
	case domain.PriorityLow:
		return 3
	default:
		return 4
	}
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

func round4(v float64) float64 {
	return math.Round(v*10000) / 10000
}
