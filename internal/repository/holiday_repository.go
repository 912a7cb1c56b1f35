package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/fluxdesk/helpdesk-sla/internal/domain"
)

// HolidayRepository provides access to the holiday table. It satisfies the
// engine's HolidaySource accessor.
type HolidayRepository interface {
	ActiveDates(ctx context.Context, year int) ([]time.Time, error)
	ListYear(ctx context.Context, year int) ([]domain.Holiday, error)
	Upsert(ctx context.Context, holiday *domain.Holiday) error
}

type holidayRepository struct {
	pool *pgxpool.Pool
}

// NewHolidayRepository instantiates repository.
func NewHolidayRepository(pool *pgxpool.Pool) HolidayRepository {
	return &holidayRepository{pool: pool}
}

func (r *holidayRepository) ActiveDates(ctx context.Context, year int) ([]time.Time, error) {
	const query = `
        SELECT holiday_date FROM holidays
        WHERE active AND holiday_date >= $1 AND holiday_date < $2
        ORDER BY holiday_date`
	from := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(1, 0, 0)
	rows, err := r.pool.Query(ctx, query, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var dates []time.Time
	for rows.Next() {
		var d time.Time
		if err := rows.Scan(&d); err != nil {
			return nil, err
		}
		dates = append(dates, d)
	}
	return dates, rows.Err()
}

func (r *holidayRepository) ListYear(ctx context.Context, year int) ([]domain.Holiday, error) {
	const query = `
        SELECT id, holiday_date, name, kind, recurring, active, created_at, updated_at
        FROM holidays
        WHERE holiday_date >= $1 AND holiday_date < $2
        ORDER BY holiday_date`
	from := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(1, 0, 0)
	rows, err := r.pool.Query(ctx, query, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Holiday
	for rows.Next() {
		var (
			holiday domain.Holiday
			kind    string
		)
		if err := rows.Scan(
			&holiday.ID,
			&holiday.Date,
			&holiday.Name,
			&kind,
			&holiday.Recurring,
			&holiday.Active,
			&holiday.CreatedAt,
			&holiday.UpdatedAt,
		); err != nil {
			return nil, err
		}
		holiday.Kind = domain.HolidayKind(kind)
		result = append(result, holiday)
	}
	return result, rows.Err()
}

func (r *holidayRepository) Upsert(ctx context.Context, holiday *domain.Holiday) error {
	// One active holiday per date; regenerating a year refreshes names/kinds
	// without duplicating rows.
	const query = `
        INSERT INTO holidays (holiday_date, name, kind, recurring, active)
        VALUES ($1,$2,$3,$4,$5)
        ON CONFLICT (holiday_date) DO UPDATE SET
            name=EXCLUDED.name,
            kind=EXCLUDED.kind,
            recurring=EXCLUDED.recurring,
            active=EXCLUDED.active,
            updated_at=NOW()
        RETURNING id, created_at, updated_at`
	return r.pool.QueryRow(ctx, query,
		holiday.Date,
		holiday.Name,
		string(holiday.Kind),
		holiday.Recurring,
		holiday.Active,
	).Scan(&holiday.ID, &holiday.CreatedAt, &holiday.UpdatedAt)
}
