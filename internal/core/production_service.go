package core

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// ProductionService records daily tonnage per worker. One row per
// (worker, date); re-entry of the same day is a normal workflow, so writes use
// upsert semantics rather than failing on conflict.
type ProductionService interface {
	// Upsert inserts or overwrites the entry for (workerID, date).
	Upsert(ctx context.Context, e ProductionEntry) (*DailyTon, error)
	Delete(ctx context.Context, id int) error
	// EntriesForDate returns all entries on a calendar day with worker names.
	EntriesForDate(ctx context.Context, date time.Time) ([]DailyTon, error)
	// TotalTons sums tons_lifted over an inclusive date range.
	TotalTons(ctx context.Context, from, to time.Time) (decimal.Decimal, error)
	// PerWorkerTons sums tons per worker over an inclusive date range. Used by
	// the revenue-linked payroll projection, never by payroll arithmetic.
	PerWorkerTons(ctx context.Context, from, to time.Time) (map[int]decimal.Decimal, error)
	// RecordedDates returns the distinct calendar days in [from, to) that have
	// at least one entry. Feeds the month-end completeness check.
	RecordedDates(ctx context.Context, from, to time.Time) (map[string]bool, error)
}

// ProductionEntry is the input for one day's record. Tons > 0 forces
// IsPresent; an explicit zero-ton entry may still mark attendance.
type ProductionEntry struct {
	WorkerID   int
	Date       time.Time
	TonsLifted decimal.Decimal
	IsPresent  bool
	Notes      string
}

func (e ProductionEntry) validate() error {
	if e.WorkerID <= 0 {
		return invalid("worker_id", "must be selected")
	}
	if e.Date.IsZero() {
		return invalid("date", "must be set")
	}
	if e.TonsLifted.IsNegative() {
		return invalid("tons_lifted", "must be >= 0")
	}
	return nil
}

type productionService struct {
	pool *pgxpool.Pool
}

// NewProductionService constructs a ProductionService backed by PostgreSQL.
func NewProductionService(pool *pgxpool.Pool) ProductionService {
	return &productionService{pool: pool}
}

func (s *productionService) Upsert(ctx context.Context, e ProductionEntry) (*DailyTon, error) {
	if err := e.validate(); err != nil {
		return nil, err
	}
	present := e.IsPresent || e.TonsLifted.IsPositive()

	d := &DailyTon{}
	err := s.pool.QueryRow(ctx, `
		INSERT INTO daily_tons (worker_id, date, tons_lifted, is_present, notes)
		VALUES ($1, $2, $3, $4, NULLIF($5, ''))
		ON CONFLICT (worker_id, date) DO UPDATE
		SET tons_lifted = EXCLUDED.tons_lifted,
		    is_present  = EXCLUDED.is_present,
		    notes       = EXCLUDED.notes
		RETURNING id, worker_id, date, tons_lifted, is_present, COALESCE(notes, ''), created_at`,
		e.WorkerID, e.Date, e.TonsLifted, present, e.Notes,
	).Scan(&d.ID, &d.WorkerID, &d.Date, &d.TonsLifted, &d.IsPresent, &d.Notes, &d.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to upsert daily tons: %w", err)
	}
	return d, nil
}

func (s *productionService) Delete(ctx context.Context, id int) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM daily_tons WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete entry %d: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("entry %d: %w", id, ErrNotFound)
	}
	return nil
}

func (s *productionService) EntriesForDate(ctx context.Context, date time.Time) ([]DailyTon, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT dt.id, dt.worker_id, w.name, dt.date, dt.tons_lifted, dt.is_present,
		       COALESCE(dt.notes, ''), dt.created_at
		FROM daily_tons dt
		JOIN workers w ON w.id = dt.worker_id
		WHERE dt.date = $1
		ORDER BY w.name`, date)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch entries for %s: %w", date.Format("2006-01-02"), err)
	}
	defer rows.Close()

	var out []DailyTon
	for rows.Next() {
		var d DailyTon
		if err := rows.Scan(&d.ID, &d.WorkerID, &d.WorkerName, &d.Date, &d.TonsLifted,
			&d.IsPresent, &d.Notes, &d.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan entry: %w", err)
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

func (s *productionService) TotalTons(ctx context.Context, from, to time.Time) (decimal.Decimal, error) {
	var total decimal.Decimal
	err := s.pool.QueryRow(ctx, `
		SELECT COALESCE(SUM(tons_lifted), 0)
		FROM daily_tons
		WHERE date >= $1 AND date <= $2`, from, to).Scan(&total)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to sum tons: %w", err)
	}
	return total, nil
}

func (s *productionService) PerWorkerTons(ctx context.Context, from, to time.Time) (map[int]decimal.Decimal, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT worker_id, COALESCE(SUM(tons_lifted), 0)
		FROM daily_tons
		WHERE date >= $1 AND date <= $2
		GROUP BY worker_id`, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to sum tons per worker: %w", err)
	}
	defer rows.Close()

	out := make(map[int]decimal.Decimal)
	for rows.Next() {
		var workerID int
		var tons decimal.Decimal
		if err := rows.Scan(&workerID, &tons); err != nil {
			return nil, fmt.Errorf("failed to scan per-worker tons: %w", err)
		}
		out[workerID] = tons
	}
	return out, rows.Err()
}

func (s *productionService) RecordedDates(ctx context.Context, from, to time.Time) (map[string]bool, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT DISTINCT date FROM daily_tons
		WHERE date >= $1 AND date < $2`, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch recorded dates: %w", err)
	}
	defer rows.Close()

	out := make(map[string]bool)
	for rows.Next() {
		var d time.Time
		if err := rows.Scan(&d); err != nil {
			return nil, fmt.Errorf("failed to scan date: %w", err)
		}
		out[d.Format("2006-01-02")] = true
	}
	return out, rows.Err()
}
