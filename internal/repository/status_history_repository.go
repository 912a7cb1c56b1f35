package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/fluxdesk/helpdesk-sla/internal/domain"
)

// StatusHistoryRepository records ticket status transitions.
type StatusHistoryRepository interface {
	Create(ctx context.Context, entry *domain.StatusHistory) error
	ListByTicket(ctx context.Context, ticketID string) ([]domain.StatusHistory, error)
}

type statusHistoryRepository struct {
	pool *pgxpool.Pool
}

// NewStatusHistoryRepository instantiates repository.
func NewStatusHistoryRepository(pool *pgxpool.Pool) StatusHistoryRepository {
	return &statusHistoryRepository{pool: pool}
}

func (r *statusHistoryRepository) Create(ctx context.Context, entry *domain.StatusHistory) error {
	const query = `
        INSERT INTO ticket_status_history (ticket_id, old_status, new_status, changed_by, comment)
        VALUES ($1,$2,$3,$4,$5)
        RETURNING id, created_at`
	return r.pool.QueryRow(ctx, query,
		entry.TicketID,
		string(entry.OldStatus),
		string(entry.NewStatus),
		entry.ChangedBy,
		entry.Comment,
	).Scan(&entry.ID, &entry.CreatedAt)
}

func (r *statusHistoryRepository) ListByTicket(ctx context.Context, ticketID string) ([]domain.StatusHistory, error) {
	const query = `
        SELECT id, ticket_id, old_status, new_status, changed_by, comment, created_at
        FROM ticket_status_history
        WHERE ticket_id=$1
        ORDER BY created_at DESC`
	rows, err := r.pool.Query(ctx, query, ticketID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.StatusHistory
	for rows.Next() {
		var (
			entry     domain.StatusHistory
			oldStatus string
			newStatus string
		)
		if err := rows.Scan(
			&entry.ID,
			&entry.TicketID,
			&oldStatus,
			&newStatus,
			&entry.ChangedBy,
			&entry.Comment,
			&entry.CreatedAt,
		); err != nil {
			return nil, err
		}
		entry.OldStatus = domain.NormalizeStatus(oldStatus)
		entry.NewStatus = domain.NormalizeStatus(newStatus)
		result = append(result, entry)
	}
	return result, rows.Err()
}
