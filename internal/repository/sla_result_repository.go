package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/fluxdesk/helpdesk-sla/internal/domain"
)

// SlaResultRepository caches derived per-ticket SLA records. These rows are
// rebuilt by every batch recompute; they are never the source of truth.
type SlaResultRepository interface {
	Upsert(ctx context.Context, result *domain.SlaResult) error
	GetByTicket(ctx context.Context, ticketID string) (*domain.SlaResult, error)
}

type slaResultRepository struct {
	pool *pgxpool.Pool
}

// NewSlaResultRepository instantiates repository.
func NewSlaResultRepository(pool *pgxpool.Pool) SlaResultRepository {
	return &slaResultRepository{pool: pool}
}

func (r *slaResultRepository) Upsert(ctx context.Context, result *domain.SlaResult) error {
	const query = `
        INSERT INTO sla_results (
            ticket_id, external_key, priority, status, paused, active, has_config,
            response_limit_hours, response_worked_hours, response_paused_hours,
            response_percent, response_on_time, response_at_risk, response_breached,
            resolution_limit_hours, resolution_worked_hours, resolution_paused_hours,
            resolution_percent, resolution_on_time, resolution_at_risk, resolution_breached,
            evaluated_at)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19,$20,$21,$22)
        ON CONFLICT (ticket_id) DO UPDATE SET
            external_key=EXCLUDED.external_key,
            priority=EXCLUDED.priority,
            status=EXCLUDED.status,
            paused=EXCLUDED.paused,
            active=EXCLUDED.active,
            has_config=EXCLUDED.has_config,
            response_limit_hours=EXCLUDED.response_limit_hours,
            response_worked_hours=EXCLUDED.response_worked_hours,
            response_paused_hours=EXCLUDED.response_paused_hours,
            response_percent=EXCLUDED.response_percent,
            response_on_time=EXCLUDED.response_on_time,
            response_at_risk=EXCLUDED.response_at_risk,
            response_breached=EXCLUDED.response_breached,
            resolution_limit_hours=EXCLUDED.resolution_limit_hours,
            resolution_worked_hours=EXCLUDED.resolution_worked_hours,
            resolution_paused_hours=EXCLUDED.resolution_paused_hours,
            resolution_percent=EXCLUDED.resolution_percent,
            resolution_on_time=EXCLUDED.resolution_on_time,
            resolution_at_risk=EXCLUDED.resolution_at_risk,
            resolution_breached=EXCLUDED.resolution_breached,
            evaluated_at=EXCLUDED.evaluated_at`
	_, err := r.pool.Exec(ctx, query,
		result.TicketID,
		result.ExternalKey,
		string(result.Priority),
		string(result.Status),
		result.Paused,
		result.Active,
		result.HasConfig,
		result.Response.LimitHours,
		result.Response.WorkedHours,
		result.Response.PausedHours,
		result.Response.Percent,
		result.Response.OnTime,
		result.Response.AtRisk,
		result.Response.Breached,
		result.Resolution.LimitHours,
		result.Resolution.WorkedHours,
		result.Resolution.PausedHours,
		result.Resolution.Percent,
		result.Resolution.OnTime,
		result.Resolution.AtRisk,
		result.Resolution.Breached,
		result.EvaluatedAt,
	)
	return err
}

func (r *slaResultRepository) GetByTicket(ctx context.Context, ticketID string) (*domain.SlaResult, error) {
	const query = `
        SELECT ticket_id, external_key, priority, status, paused, active, has_config,
            response_limit_hours, response_worked_hours, response_paused_hours,
            response_percent, response_on_time, response_at_risk, response_breached,
            resolution_limit_hours, resolution_worked_hours, resolution_paused_hours,
            resolution_percent, resolution_on_time, resolution_at_risk, resolution_breached,
            evaluated_at
        FROM sla_results WHERE ticket_id=$1`
	var (
		result      domain.SlaResult
		rawPriority string
		rawStatus   string
	)
	if err := r.pool.QueryRow(ctx, query, ticketID).Scan(
		&result.TicketID,
		&result.ExternalKey,
		&rawPriority,
		&rawStatus,
		&result.Paused,
		&result.Active,
		&result.HasConfig,
		&result.Response.LimitHours,
		&result.Response.WorkedHours,
		&result.Response.PausedHours,
		&result.Response.Percent,
		&result.Response.OnTime,
		&result.Response.AtRisk,
		&result.Response.Breached,
		&result.Resolution.LimitHours,
		&result.Resolution.WorkedHours,
		&result.Resolution.PausedHours,
		&result.Resolution.Percent,
		&result.Resolution.OnTime,
		&result.Resolution.AtRisk,
		&result.Resolution.Breached,
		&result.EvaluatedAt,
	); err != nil {
		return nil, err
	}
	result.Priority = domain.NormalizePriority(rawPriority)
	result.Status = domain.NormalizeStatus(rawStatus)
	return &result, nil
}
