package service

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/fluxdesk/helpdesk-sla/internal/cache"
	"github.com/fluxdesk/helpdesk-sla/internal/domain"
	"github.com/fluxdesk/helpdesk-sla/internal/repository"
	"github.com/fluxdesk/helpdesk-sla/internal/sla"
	"github.com/fluxdesk/helpdesk-sla/pkg/util"
)

// ConfigService manages SLA thresholds, business hours and the holiday table.
// Every mutation invalidates the calendar and dashboard caches.
type ConfigService struct {
	configs  repository.SlaConfigRepository
	hours    repository.BusinessHoursRepository
	holidays repository.HolidayRepository
	calendar *sla.Calendar
	metrics  cache.MetricsCache
	logger   *zap.Logger
}

// ConfigDependencies bundles collaborators for the config service.
type ConfigDependencies struct {
	ConfigRepo  repository.SlaConfigRepository
	HoursRepo   repository.BusinessHoursRepository
	HolidayRepo repository.HolidayRepository
	Calendar    *sla.Calendar
	Metrics     cache.MetricsCache
	Logger      *zap.Logger
}

// NewConfigService constructs the service.
func NewConfigService(deps ConfigDependencies) *ConfigService {
	return &ConfigService{
		configs:  deps.ConfigRepo,
		hours:    deps.HoursRepo,
		holidays: deps.HolidayRepo,
		calendar: deps.Calendar,
		metrics:  deps.Metrics,
		logger:   deps.Logger,
	}
}

// ListConfigs returns the active per-priority configurations.
func (s *ConfigService) ListConfigs(ctx context.Context) ([]domain.SlaConfig, error) {
	return s.configs.ListActive(ctx)
}

// SlaConfigUpdateInput carries the editable fields of a configuration.
type SlaConfigUpdateInput struct {
	Priority             string
	ResponseLimitHours   float64
	ResolutionLimitHours float64
	RiskPercent          float64
	UseBusinessHours     bool
	UseHolidays          bool
	Description          string
	Active               bool
}

// UpdateConfig updates the configuration of one priority.
func (s *ConfigService) UpdateConfig(ctx context.Context, input SlaConfigUpdateInput) (*domain.SlaConfig, error) {
	priority := domain.NormalizePriority(input.Priority)
	if input.ResponseLimitHours <= 0 || input.ResolutionLimitHours <= 0 {
		return nil, util.NewValidationError("limits must be positive hours", map[string]any{
			"response_limit_hours":   input.ResponseLimitHours,
			"resolution_limit_hours": input.ResolutionLimitHours,
		})
	}
	if input.ResponseLimitHours > input.ResolutionLimitHours {
		return nil, util.NewValidationError("response limit cannot exceed resolution limit", nil)
	}
	if input.RiskPercent <= 0 || input.RiskPercent > 100 {
		return nil, util.NewValidationError("risk percent must be within (0, 100]", map[string]any{
			"risk_percent": input.RiskPercent,
		})
	}

	cfg := &domain.SlaConfig{
		Priority:             priority,
		ResponseLimitHours:   input.ResponseLimitHours,
		ResolutionLimitHours: input.ResolutionLimitHours,
		RiskPercent:          input.RiskPercent,
		UseBusinessHours:     input.UseBusinessHours,
		UseHolidays:          input.UseHolidays,
		Description:          input.Description,
		Active:               input.Active,
	}
	if err := s.configs.Update(ctx, cfg); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, util.NewNotFound("sla configuration", map[string]any{
				"priority": string(priority),
			})
		}
		return nil, err
	}
	s.invalidate(ctx)
	return cfg, nil
}

// ListBusinessHours returns every configured weekday window.
func (s *ConfigService) ListBusinessHours(ctx context.Context) ([]domain.BusinessHours, error) {
	return s.hours.List(ctx)
}

// UpsertBusinessHours creates or replaces the window of one weekday.
func (s *ConfigService) UpsertBusinessHours(ctx context.Context, weekday int, startMinute, endMinute int, active bool) (*domain.BusinessHours, error) {
	if weekday < 0 || weekday > 6 {
		return nil, util.NewValidationError("weekday must be within [0, 6]", map[string]any{"weekday": weekday})
	}
	if startMinute < 0 || endMinute > 24*60 || startMinute >= endMinute {
		return nil, util.NewValidationError("window must satisfy 0 <= start < end <= 1440", map[string]any{
			"start_minute": startMinute,
			"end_minute":   endMinute,
		})
	}

	hours := &domain.BusinessHours{
		Weekday: time.Weekday(weekday),
		Window:  domain.BusinessWindow{StartMinute: startMinute, EndMinute: endMinute},
		Active:  active,
	}
	if err := s.hours.Upsert(ctx, hours); err != nil {
		return nil, err
	}
	s.invalidate(ctx)
	return hours, nil
}

// ListHolidays returns every holiday row of a year.
func (s *ConfigService) ListHolidays(ctx context.Context, year int) ([]domain.Holiday, error) {
	if year < 2000 || year > 2100 {
		return nil, util.NewValidationError("year out of range", map[string]any{"year": year})
	}
	return s.holidays.ListYear(ctx, year)
}

// GenerateHolidays computes the national calendar for a year range and upserts
// it into the holiday table.
func (s *ConfigService) GenerateHolidays(ctx context.Context, fromYear, toYear int) ([]domain.Holiday, error) {
	if fromYear < 2000 || toYear > 2100 || fromYear > toYear {
		return nil, util.NewValidationError("invalid year range", map[string]any{
			"from_year": fromYear,
			"to_year":   toYear,
		})
	}

	generated := sla.GenerateHolidayRange(fromYear, toYear)
	out := make([]domain.Holiday, 0, len(generated))
	for _, g := range generated {
		holiday := domain.Holiday{
			Date:      g.Date,
			Name:      g.Name,
			Kind:      g.Kind,
			Recurring: g.Recurring,
			Active:    g.Kind != domain.HolidayOptional,
		}
		if err := s.holidays.Upsert(ctx, &holiday); err != nil {
			return nil, err
		}
		out = append(out, holiday)
	}
	s.logger.Info("holiday calendar generated",
		zap.Int("from_year", fromYear),
		zap.Int("to_year", toYear),
		zap.Int("count", len(out)))
	s.invalidate(ctx)
	return out, nil
}

// SetHolidayActive toggles a single holiday row, for regional adjustments.
func (s *ConfigService) SetHolidayActive(ctx context.Context, holiday *domain.Holiday) error {
	if err := s.holidays.Upsert(ctx, holiday); err != nil {
		return err
	}
	s.invalidate(ctx)
	return nil
}

func (s *ConfigService) invalidate(ctx context.Context) {
	s.calendar.Invalidate()
	if err := s.metrics.InvalidateDashboards(ctx); err != nil {
		s.logger.Warn("failed to invalidate dashboard cache", zap.Error(err))
	}
}
