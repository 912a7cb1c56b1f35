package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/fluxdesk/helpdesk-sla/internal/domain"
)

const ticketColumns = `id, external_key, title, priority, status, opened_at,
	first_response_at, concluded_at, cancelled_at, deleted_at, created_at, updated_at`

// TicketRepository encapsulates ticket persistence. Status and priority are
// normalized at scan time so the rest of the application only ever sees the
// canonical enums.
type TicketRepository interface {
	GetByID(ctx context.Context, id string) (*domain.Ticket, error)
	Update(ctx context.Context, ticket *domain.Ticket) error
	// ListSlaPopulation returns the dashboard population: tickets in active or
	// paused status regardless of period, plus final tickets opened within
	// [periodStart, periodEnd]. Soft-deleted and pre-cutover tickets are
	// excluded at the query level.
	ListSlaPopulation(ctx context.Context, cutover, periodStart, periodEnd time.Time) ([]domain.Ticket, error)
	// ListOpenedSince returns every non-deleted ticket opened at or after the
	// given instant, for batch recompute.
	ListOpenedSince(ctx context.Context, since time.Time) ([]domain.Ticket, error)
}

type ticketRepository struct {
	pool *pgxpool.Pool
}

// NewTicketRepository instantiates repository.
func NewTicketRepository(pool *pgxpool.Pool) TicketRepository {
	return &ticketRepository{pool: pool}
}

func (r *ticketRepository) GetByID(ctx context.Context, id string) (*domain.Ticket, error) {
	query := `SELECT ` + ticketColumns + ` FROM tickets WHERE id=$1`
	row := r.pool.QueryRow(ctx, query, id)
	return scanTicketRow(row)
}

func (r *ticketRepository) Update(ctx context.Context, ticket *domain.Ticket) error {
	const query = `
        UPDATE tickets SET status=$1, first_response_at=$2, concluded_at=$3,
            cancelled_at=$4, updated_at=NOW()
        WHERE id=$5`
	cmd, err := r.pool.Exec(ctx, query,
		string(ticket.Status),
		ticket.FirstResponseAt,
		ticket.ConcludedAt,
		ticket.CancelledAt,
		ticket.ID,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *ticketRepository) ListSlaPopulation(ctx context.Context, cutover, periodStart, periodEnd time.Time) ([]domain.Ticket, error) {
	query := `SELECT ` + ticketColumns + `
        FROM tickets
        WHERE deleted_at IS NULL
          AND opened_at >= $1
          AND (status = ANY($2)
               OR (status = ANY($3) AND opened_at >= $4 AND opened_at <= $5))
        ORDER BY opened_at`
	rows, err := r.pool.Query(ctx, query,
		cutover,
		trackedStatuses(),
		finalStatuses(),
		periodStart,
		periodEnd,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanTickets(rows)
}

func (r *ticketRepository) ListOpenedSince(ctx context.Context, since time.Time) ([]domain.Ticket, error) {
	query := `SELECT ` + ticketColumns + `
        FROM tickets
        WHERE deleted_at IS NULL AND opened_at >= $1
        ORDER BY opened_at`
	rows, err := r.pool.Query(ctx, query, since)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanTickets(rows)
}

// trackedStatuses are the active + paused canonical statuses.
func trackedStatuses() []string {
	return []string{
		string(domain.StatusOpen),
		string(domain.StatusInProgress),
		string(domain.StatusWaiting),
		string(domain.StatusReview),
	}
}

func finalStatuses() []string {
	return []string{
		string(domain.StatusResolved),
		string(domain.StatusCancelled),
	}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTicketRow(row rowScanner) (*domain.Ticket, error) {
	var (
		ticket      domain.Ticket
		rawPriority string
		rawStatus   string
	)
	if err := row.Scan(
		&ticket.ID,
		&ticket.ExternalKey,
		&ticket.Title,
		&rawPriority,
		&rawStatus,
		&ticket.OpenedAt,
		&ticket.FirstResponseAt,
		&ticket.ConcludedAt,
		&ticket.CancelledAt,
		&ticket.DeletedAt,
		&ticket.CreatedAt,
		&ticket.UpdatedAt,
	); err != nil {
		return nil, err
	}
	ticket.Priority = domain.NormalizePriority(rawPriority)
	ticket.Status = domain.NormalizeStatus(rawStatus)
	return &ticket, nil
}

func scanTickets(rows pgx.Rows) ([]domain.Ticket, error) {
	var result []domain.Ticket
	for rows.Next() {
		ticket, err := scanTicketRow(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *ticket)
	}
	return result, rows.Err()
}
