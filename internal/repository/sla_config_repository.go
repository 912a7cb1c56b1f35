package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/fluxdesk/helpdesk-sla/internal/domain"
)

const slaConfigColumns = `id, priority, response_limit_hours, resolution_limit_hours,
	risk_percent, use_business_hours, use_holidays, description, active, created_at, updated_at`

// SlaConfigRepository provides access to per-priority SLA configurations.
type SlaConfigRepository interface {
	ListActive(ctx context.Context) ([]domain.SlaConfig, error)
	GetByPriority(ctx context.Context, priority domain.TicketPriority) (*domain.SlaConfig, error)
	Update(ctx context.Context, cfg *domain.SlaConfig) error
}

type slaConfigRepository struct {
	pool *pgxpool.Pool
}

// NewSlaConfigRepository instantiates repository.
func NewSlaConfigRepository(pool *pgxpool.Pool) SlaConfigRepository {
	return &slaConfigRepository{pool: pool}
}

func (r *slaConfigRepository) ListActive(ctx context.Context) ([]domain.SlaConfig, error) {
	query := `SELECT ` + slaConfigColumns + ` FROM sla_configs WHERE active ORDER BY priority`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.SlaConfig
	for rows.Next() {
		cfg, err := scanSlaConfig(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *cfg)
	}
	return result, rows.Err()
}

func (r *slaConfigRepository) GetByPriority(ctx context.Context, priority domain.TicketPriority) (*domain.SlaConfig, error) {
	query := `SELECT ` + slaConfigColumns + ` FROM sla_configs WHERE priority=$1 AND active`
	return scanSlaConfig(r.pool.QueryRow(ctx, query, string(priority)))
}

func (r *slaConfigRepository) Update(ctx context.Context, cfg *domain.SlaConfig) error {
	const query = `
        UPDATE sla_configs SET response_limit_hours=$1, resolution_limit_hours=$2,
            risk_percent=$3, use_business_hours=$4, use_holidays=$5, description=$6,
            active=$7, updated_at=NOW()
        WHERE priority=$8
        RETURNING id, created_at, updated_at`
	return r.pool.QueryRow(ctx, query,
		cfg.ResponseLimitHours,
		cfg.ResolutionLimitHours,
		cfg.RiskPercent,
		cfg.UseBusinessHours,
		cfg.UseHolidays,
		cfg.Description,
		cfg.Active,
		string(cfg.Priority),
	).Scan(&cfg.ID, &cfg.CreatedAt, &cfg.UpdatedAt)
}

func scanSlaConfig(row rowScanner) (*domain.SlaConfig, error) {
	var (
		cfg         domain.SlaConfig
		rawPriority string
	)
	if err := row.Scan(
		&cfg.ID,
		&rawPriority,
		&cfg.ResponseLimitHours,
		&cfg.ResolutionLimitHours,
		&cfg.RiskPercent,
		&cfg.UseBusinessHours,
		&cfg.UseHolidays,
		&cfg.Description,
		&cfg.Active,
		&cfg.CreatedAt,
		&cfg.UpdatedAt,
	); err != nil {
		return nil, err
	}
	cfg.Priority = domain.NormalizePriority(rawPriority)
	return &cfg, nil
}
