package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/fluxdesk/helpdesk-sla/internal/domain"
)

const pauseColumns = `id, ticket_id, started_at, ended_at, duration_hours,
	kind, trigger_status, reason, created_at`

// PauseRepository persists SLA pause intervals. It implements the engine's
// PauseStore contract.
type PauseRepository interface {
	ListOpenByTicket(ctx context.Context, ticketID string) ([]domain.PauseInterval, error)
	ListByTicket(ctx context.Context, ticketID string) ([]domain.PauseInterval, error)
	Create(ctx context.Context, pause *domain.PauseInterval) error
	Close(ctx context.Context, pauseID string, endedAt time.Time, durationHours float64) error
}

type pauseRepository struct {
	pool *pgxpool.Pool
}

// NewPauseRepository instantiates repository.
func NewPauseRepository(pool *pgxpool.Pool) PauseRepository {
	return &pauseRepository{pool: pool}
}

func (r *pauseRepository) ListOpenByTicket(ctx context.Context, ticketID string) ([]domain.PauseInterval, error) {
	query := `SELECT ` + pauseColumns + `
        FROM pause_intervals
        WHERE ticket_id=$1 AND ended_at IS NULL
        ORDER BY started_at`
	rows, err := r.pool.Query(ctx, query, ticketID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanPauses(rows)
}

func (r *pauseRepository) ListByTicket(ctx context.Context, ticketID string) ([]domain.PauseInterval, error) {
	query := `SELECT ` + pauseColumns + `
        FROM pause_intervals
        WHERE ticket_id=$1
        ORDER BY started_at`
	rows, err := r.pool.Query(ctx, query, ticketID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanPauses(rows)
}

func (r *pauseRepository) Create(ctx context.Context, pause *domain.PauseInterval) error {
	const query = `
        INSERT INTO pause_intervals (ticket_id, started_at, kind, trigger_status, reason)
        VALUES ($1,$2,$3,$4,$5)
        RETURNING id, created_at`
	return r.pool.QueryRow(ctx, query,
		pause.TicketID,
		pause.StartedAt,
		string(pause.Kind),
		string(pause.TriggerStatus),
		pause.Reason,
	).Scan(&pause.ID, &pause.CreatedAt)
}

func (r *pauseRepository) Close(ctx context.Context, pauseID string, endedAt time.Time, durationHours float64) error {
	const query = `
        UPDATE pause_intervals SET ended_at=$1, duration_hours=$2
        WHERE id=$3 AND ended_at IS NULL`
	cmd, err := r.pool.Exec(ctx, query, endedAt, durationHours, pauseID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func scanPauses(rows pgx.Rows) ([]domain.PauseInterval, error) {
	var result []domain.PauseInterval
	for rows.Next() {
		var (
			pause         domain.PauseInterval
			kind          string
			triggerStatus string
		)
		if err := rows.Scan(
			&pause.ID,
			&pause.TicketID,
			&pause.StartedAt,
			&pause.EndedAt,
			&pause.DurationHours,
			&kind,
			&triggerStatus,
			&pause.Reason,
			&pause.CreatedAt,
		); err != nil {
			return nil, err
		}
		pause.Kind = domain.PauseKind(kind)
		pause.TriggerStatus = domain.NormalizeStatus(triggerStatus)
		result = append(result, pause)
	}
	return result, rows.Err()
}
