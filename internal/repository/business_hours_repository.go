package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/fluxdesk/helpdesk-sla/internal/domain"
)

// BusinessHoursRepository provides access to the per-weekday working windows.
// It satisfies the engine's HoursSource accessor.
type BusinessHoursRepository interface {
	ActiveWindows(ctx context.Context) (map[time.Weekday]domain.BusinessWindow, error)
	List(ctx context.Context) ([]domain.BusinessHours, error)
	Upsert(ctx context.Context, hours *domain.BusinessHours) error
}

type businessHoursRepository struct {
	pool *pgxpool.Pool
}

// NewBusinessHoursRepository instantiates repository.
func NewBusinessHoursRepository(pool *pgxpool.Pool) BusinessHoursRepository {
	return &businessHoursRepository{pool: pool}
}

func (r *businessHoursRepository) ActiveWindows(ctx context.Context) (map[time.Weekday]domain.BusinessWindow, error) {
	const query = `SELECT weekday, start_minute, end_minute FROM business_hours WHERE active`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	windows := make(map[time.Weekday]domain.BusinessWindow)
	for rows.Next() {
		var (
			weekday int
			window  domain.BusinessWindow
		)
		if err := rows.Scan(&weekday, &window.StartMinute, &window.EndMinute); err != nil {
			return nil, err
		}
		windows[time.Weekday(weekday)] = window
	}
	return windows, rows.Err()
}

func (r *businessHoursRepository) List(ctx context.Context) ([]domain.BusinessHours, error) {
	const query = `
        SELECT id, weekday, start_minute, end_minute, active, created_at, updated_at
        FROM business_hours ORDER BY weekday`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.BusinessHours
	for rows.Next() {
		var (
			entry   domain.BusinessHours
			weekday int
		)
		if err := rows.Scan(
			&entry.ID,
			&weekday,
			&entry.Window.StartMinute,
			&entry.Window.EndMinute,
			&entry.Active,
			&entry.CreatedAt,
			&entry.UpdatedAt,
		); err != nil {
			return nil, err
		}
		entry.Weekday = time.Weekday(weekday)
		result = append(result, entry)
	}
	return result, rows.Err()
}

func (r *businessHoursRepository) Upsert(ctx context.Context, hours *domain.BusinessHours) error {
	const query = `
        INSERT INTO business_hours (weekday, start_minute, end_minute, active)
        VALUES ($1,$2,$3,$4)
        ON CONFLICT (weekday) DO UPDATE SET
            start_minute=EXCLUDED.start_minute,
            end_minute=EXCLUDED.end_minute,
            active=EXCLUDED.active,
            updated_at=NOW()
        RETURNING id, created_at, updated_at`
	return r.pool.QueryRow(ctx, query,
		int(hours.Weekday),
		hours.Window.StartMinute,
		hours.Window.EndMinute,
		hours.Active,
	).Scan(&hours.ID, &hours.CreatedAt, &hours.UpdatedAt)
}
