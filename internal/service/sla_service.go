package service

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/fluxdesk/helpdesk-sla/internal/cache"
	"github.com/fluxdesk/helpdesk-sla/internal/domain"
	"github.com/fluxdesk/helpdesk-sla/internal/events"
	"github.com/fluxdesk/helpdesk-sla/internal/repository"
	"github.com/fluxdesk/helpdesk-sla/internal/sla"
	"github.com/fluxdesk/helpdesk-sla/pkg/util"
)

// ErrRecomputeInFlight signals that a batch recompute is already running.
var ErrRecomputeInFlight = util.NewConflict("sla recompute already in progress", nil)

// SlaService drives per-ticket evaluation and the periodic batch recompute.
type SlaService struct {
	tickets    repository.TicketRepository
	configs    repository.SlaConfigRepository
	results    repository.SlaResultRepository
	runs       repository.SlaRunRepository
	evaluator  *sla.Evaluator
	tracker    *sla.PauseTracker
	metrics    cache.MetricsCache
	dispatcher events.Dispatcher
	logger     *zap.Logger
	now        func() time.Time

	recomputeMu sync.Mutex
}

// SlaDependencies bundles collaborators for the SLA service.
type SlaDependencies struct {
	TicketRepo repository.TicketRepository
	ConfigRepo repository.SlaConfigRepository
	ResultRepo repository.SlaResultRepository
	RunRepo    repository.SlaRunRepository
	Evaluator  *sla.Evaluator
	Tracker    *sla.PauseTracker
	Metrics    cache.MetricsCache
	Dispatcher events.Dispatcher
	Logger     *zap.Logger
}

// NewSlaService constructs the service and subscribes the pause bookkeeping
// to ticket status changes.
func NewSlaService(deps SlaDependencies) *SlaService {
	s := &SlaService{
		tickets:    deps.TicketRepo,
		configs:    deps.ConfigRepo,
		results:    deps.ResultRepo,
		runs:       deps.RunRepo,
		evaluator:  deps.Evaluator,
		tracker:    deps.Tracker,
		metrics:    deps.Metrics,
		dispatcher: deps.Dispatcher,
		logger:     deps.Logger,
		now:        time.Now,
	}
	deps.Dispatcher.Subscribe(events.EventTicketStatusChanged, s.onStatusChanged)
	return s
}

// WithClock overrides the time source. Intended for tests.
func (s *SlaService) WithClock(now func() time.Time) *SlaService {
	s.now = now
	return s
}

// onStatusChanged applies the automatic pause rule whenever a ticket changes
// status.
func (s *SlaService) onStatusChanged(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.TicketStatusChangedPayload)
	if !ok {
		return nil
	}
	return s.tracker.HandleStatusChange(ctx, event.TicketID, payload.NewStatus, event.Timestamp)
}

// EvaluateOne computes the current SLA state of a single ticket on demand.
// A ticket opened before the tracking start date is reported as untracked,
// which is distinct from the ticket not existing.
func (s *SlaService) EvaluateOne(ctx context.Context, ticketID string) (*domain.SlaResult, error) {
	ticket, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, util.NewNotFound("ticket", map[string]any{"ticket_id": ticketID})
		}
		return nil, err
	}

	configs, err := s.configMap(ctx)
	if err != nil {
		return nil, err
	}

	result, err := s.evaluator.Evaluate(ctx, ticket, configs)
	if err != nil {
		return nil, err
	}
	if result == nil {
		return nil, util.NewDomainError("SLA_NOT_TRACKED",
			"ticket is not subject to sla tracking",
			http.StatusUnprocessableEntity,
			map[string]any{
				"ticket_id":    ticketID,
				"cutover_date": s.evaluator.Cutover().Format("2006-01-02"),
			})
	}

	if err := s.results.Upsert(ctx, result); err != nil {
		s.logger.Warn("failed to persist sla result",
			zap.String("ticket_id", ticketID), zap.Error(err))
	}
	return result, nil
}

// RecomputeAll re-evaluates every tracked ticket and refreshes the persisted
// results. Only one run may be active at a time; concurrent callers get
// ErrRecomputeInFlight instead of queueing.
func (s *SlaService) RecomputeAll(ctx context.Context, kind string) (*domain.BatchStats, error) {
	if !s.recomputeMu.TryLock() {
		return nil, ErrRecomputeInFlight
	}
	defer s.recomputeMu.Unlock()

	started := s.now()
	stats := &domain.BatchStats{}

	tickets, err := s.tickets.ListOpenedSince(ctx, s.evaluator.Cutover())
	if err != nil {
		s.logRun(ctx, kind, started, stats, err)
		return nil, err
	}
	configs, err := s.configMap(ctx)
	if err != nil {
		s.logRun(ctx, kind, started, stats, err)
		return nil, err
	}

	for i := range tickets {
		ticket := &tickets[i]
		result, err := s.evaluator.Evaluate(ctx, ticket, configs)
		if err != nil {
			stats.Failed++
			s.logger.Warn("sla evaluation failed",
				zap.String("ticket_id", ticket.ID), zap.Error(err))
			continue
		}
		if result == nil {
			continue
		}
		if err := s.results.Upsert(ctx, result); err != nil {
			stats.Failed++
			s.logger.Warn("failed to persist sla result",
				zap.String("ticket_id", ticket.ID), zap.Error(err))
			continue
		}
		stats.Processed++
		if result.Paused {
			stats.Paused++
		}
		if result.Resolution.Breached {
			stats.Breached++
		} else if result.Resolution.AtRisk {
			stats.AtRisk++
		}
	}
	stats.ElapsedMS = time.Since(started).Milliseconds()

	s.logRun(ctx, kind, started, stats, nil)
	if err := s.metrics.InvalidateDashboards(ctx); err != nil {
		s.logger.Warn("failed to invalidate dashboard cache", zap.Error(err))
	}
	_ = s.dispatcher.Publish(ctx, events.Event{
		ID:        uuid.NewString(),
		Type:      events.EventSlaRecomputed,
		Timestamp: s.now(),
		Payload:   events.SlaRecomputedPayload{Stats: *stats},
	})

	s.logger.Info("sla recompute finished",
		zap.String("kind", kind),
		zap.Int("processed", stats.Processed),
		zap.Int("at_risk", stats.AtRisk),
		zap.Int("breached", stats.Breached),
		zap.Int("paused", stats.Paused),
		zap.Int("failed", stats.Failed),
		zap.Int64("elapsed_ms", stats.ElapsedMS))
	return stats, nil
}

// ListRuns returns recent batch runs, newest first.
func (s *SlaService) ListRuns(ctx context.Context, limit int) ([]domain.BatchRun, error) {
	return s.runs.List(ctx, limit)
}

func (s *SlaService) logRun(ctx context.Context, kind string, executedAt time.Time, stats *domain.BatchStats, runErr error) {
	run := &domain.BatchRun{
		Kind:       kind,
		ExecutedAt: executedAt,
		Processed:  stats.Processed,
		AtRisk:     stats.AtRisk,
		Breached:   stats.Breached,
		Paused:     stats.Paused,
		Failed:     stats.Failed,
		ElapsedMS:  stats.ElapsedMS,
		Success:    runErr == nil,
	}
	if runErr != nil {
		run.ErrorMessage = runErr.Error()
	}
	if err := s.runs.Create(ctx, run); err != nil {
		s.logger.Warn("failed to log sla run", zap.Error(err))
	}
}

// configMap loads the active configurations keyed by priority.
func (s *SlaService) configMap(ctx context.Context) (map[domain.TicketPriority]domain.SlaConfig, error) {
	list, err := s.configs.ListActive(ctx)
	if err != nil {
		return nil, err
	}
	configs := make(map[domain.TicketPriority]domain.SlaConfig, len(list))
	for _, cfg := range list {
		configs[cfg.Priority] = cfg
	}
	return configs, nil
}
