package worker

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/fluxdesk/helpdesk-sla/internal/service"
)

// warmPeriodsDays are the dashboard windows rebuilt after every recompute so
// the common period selections are always served from cache.
var warmPeriodsDays = []int{7, 30, 60, 90}

// SlaScheduler runs the periodic batch recompute and keeps the dashboard
// cache warm.
type SlaScheduler struct {
	slaService     *service.SlaService
	metricsService *service.MetricsService
	interval       time.Duration
	logger         *zap.Logger
	cron           *cron.Cron
}

// NewSlaScheduler constructs the scheduler.
func NewSlaScheduler(slaService *service.SlaService, metricsService *service.MetricsService, intervalMinutes int, logger *zap.Logger) *SlaScheduler {
	if intervalMinutes <= 0 {
		intervalMinutes = 15
	}
	return &SlaScheduler{
		slaService:     slaService,
		metricsService: metricsService,
		interval:       time.Duration(intervalMinutes) * time.Minute,
		logger:         logger,
		cron:           cron.New(),
	}
}

// Start registers the recompute job and launches the cron loop.
func (s *SlaScheduler) Start() error {
	spec := fmt.Sprintf("@every %dm", int(s.interval.Minutes()))
	if _, err := s.cron.AddFunc(spec, s.runOnce); err != nil {
		return err
	}
	s.cron.Start()
	s.logger.Info("sla scheduler started", zap.String("schedule", spec))
	return nil
}

// Stop halts the cron loop and waits for a running job to finish.
func (s *SlaScheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.logger.Info("sla scheduler stopped")
}

func (s *SlaScheduler) runOnce() {
	ctx, cancel := context.WithTimeout(context.Background(), s.interval)
	defer cancel()

	if _, err := s.slaService.RecomputeAll(ctx, "scheduled"); err != nil {
		if errors.Is(err, service.ErrRecomputeInFlight) {
			s.logger.Info("skipping scheduled recompute; previous run still active")
			return
		}
		s.logger.Error("scheduled sla recompute failed", zap.Error(err))
		return
	}

	for _, days := range warmPeriodsDays {
		end := time.Now()
		start := end.AddDate(0, 0, -days)
		if _, err := s.metricsService.Dashboard(ctx, start, end); err != nil {
			s.logger.Warn("dashboard warmup failed",
				zap.Int("period_days", days), zap.Error(err))
		}
	}
}
