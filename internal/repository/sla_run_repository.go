package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/fluxdesk/helpdesk-sla/internal/domain"
)

// SlaRunRepository logs batch recompute executions for the admin audit view.
type SlaRunRepository interface {
	Create(ctx context.Context, run *domain.BatchRun) error
	List(ctx context.Context, limit int) ([]domain.BatchRun, error)
}

type slaRunRepository struct {
	pool *pgxpool.Pool
}

// NewSlaRunRepository instantiates repository.
func NewSlaRunRepository(pool *pgxpool.Pool) SlaRunRepository {
	return &slaRunRepository{pool: pool}
}

func (r *slaRunRepository) Create(ctx context.Context, run *domain.BatchRun) error {
	const query = `
        INSERT INTO sla_runs (kind, executed_at, processed, at_risk, breached,
            paused, failed, elapsed_ms, success, error_message)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
        RETURNING id`
	return r.pool.QueryRow(ctx, query,
		run.Kind,
		run.ExecutedAt,
		run.Processed,
		run.AtRisk,
		run.Breached,
		run.Paused,
		run.Failed,
		run.ElapsedMS,
		run.Success,
		run.ErrorMessage,
	).Scan(&run.ID)
}

func (r *slaRunRepository) List(ctx context.Context, limit int) ([]domain.BatchRun, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	const query = `
        SELECT id, kind, executed_at, processed, at_risk, breached,
            paused, failed, elapsed_ms, success, error_message
        FROM sla_runs
        ORDER BY executed_at DESC
        LIMIT $1`
	rows, err := r.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.BatchRun
	for rows.Next() {
		var run domain.BatchRun
		if err := rows.Scan(
			&run.ID,
			&run.Kind,
			&run.ExecutedAt,
			&run.Processed,
			&run.AtRisk,
			&run.Breached,
			&run.Paused,
			&run.Failed,
			&run.ElapsedMS,
			&run.Success,
			&run.ErrorMessage,
		); err != nil {
			return nil, err
		}
		result = append(result, run)
	}
	return result, rows.Err()
}
