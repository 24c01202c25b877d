package core

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// WorkerService is the canonical registry of workers and field supervisors.
type WorkerService interface {
	Create(ctx context.Context, w NewWorker) (*Worker, error)
	Update(ctx context.Context, id int, w NewWorker) (*Worker, error)
	GetByID(ctx context.Context, id int) (*Worker, error)
	// List returns workers, optionally filtered by status, newest first.
	List(ctx context.Context, status *WorkerStatus) ([]Worker, error)
	// ListActive returns active workers ordered by name, optionally restricted
	// to one role. Payroll and reporting both key off this set.
	ListActive(ctx context.Context, role *WorkerRole) ([]Worker, error)
	SetStatus(ctx context.Context, id int, status WorkerStatus) error
	// Delete hard-deletes a worker. Destructive; normal flow toggles status.
	Delete(ctx context.Context, id int) error
}

// NewWorker carries the editable fields of a worker record.
type NewWorker struct {
	Name          string
	Phone         string
	AccountNumber string
	Role          WorkerRole
	BaseSalary    decimal.Decimal
}

func (w NewWorker) validate() error {
	if strings.TrimSpace(w.Name) == "" {
		return invalid("name", "must not be empty")
	}
	if w.BaseSalary.IsNegative() {
		return invalid("base_salary", "must be >= 0")
	}
	switch w.Role {
	case WorkerRoleWorker, WorkerRoleSupervisor:
	default:
		return invalid("role", fmt.Sprintf("unknown role %q", w.Role))
	}
	return nil
}

type workerService struct {
	pool *pgxpool.Pool
}

// NewWorkerService constructs a WorkerService backed by PostgreSQL.
func NewWorkerService(pool *pgxpool.Pool) WorkerService {
	return &workerService{pool: pool}
}

const workerColumns = `id, name, COALESCE(phone, ''), COALESCE(account_number, ''), role, status, base_salary, join_date, created_at, updated_at`

func scanWorker(row pgx.Row) (*Worker, error) {
	w := &Worker{}
	err := row.Scan(&w.ID, &w.Name, &w.Phone, &w.AccountNumber, &w.Role, &w.Status,
		&w.BaseSalary, &w.JoinDate, &w.CreatedAt, &w.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return w, nil
}

func (s *workerService) Create(ctx context.Context, nw NewWorker) (*Worker, error) {
	if err := nw.validate(); err != nil {
		return nil, err
	}
	row := s.pool.QueryRow(ctx, `
		INSERT INTO workers (name, phone, account_number, role, status, base_salary)
		VALUES ($1, NULLIF($2, ''), NULLIF($3, ''), $4, 'active', $5)
		RETURNING `+workerColumns,
		strings.TrimSpace(nw.Name), nw.Phone, nw.AccountNumber, nw.Role, nw.BaseSalary)
	w, err := scanWorker(row)
	if err != nil {
		return nil, fmt.Errorf("failed to insert worker: %w", err)
	}
	return w, nil
}

func (s *workerService) Update(ctx context.Context, id int, nw NewWorker) (*Worker, error) {
	if err := nw.validate(); err != nil {
		return nil, err
	}
	row := s.pool.QueryRow(ctx, `
		UPDATE workers
		SET name = $2, phone = NULLIF($3, ''), account_number = NULLIF($4, ''),
		    role = $5, base_salary = $6, updated_at = NOW()
		WHERE id = $1
		RETURNING `+workerColumns,
		id, strings.TrimSpace(nw.Name), nw.Phone, nw.AccountNumber, nw.Role, nw.BaseSalary)
	w, err := scanWorker(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("worker %d: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to update worker %d: %w", id, err)
	}
	return w, nil
}

func (s *workerService) GetByID(ctx context.Context, id int) (*Worker, error) {
	w, err := scanWorker(s.pool.QueryRow(ctx,
		`SELECT `+workerColumns+` FROM workers WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("worker %d: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to fetch worker %d: %w", id, err)
	}
	return w, nil
}

func (s *workerService) List(ctx context.Context, status *WorkerStatus) ([]Worker, error) {
	q := `SELECT ` + workerColumns + ` FROM workers`
	args := []any{}
	if status != nil {
		q += ` WHERE status = $1`
		args = append(args, *status)
	}
	q += ` ORDER BY created_at DESC`

	rows, err := s.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list workers: %w", err)
	}
	defer rows.Close()
	return collectWorkers(rows)
}

func (s *workerService) ListActive(ctx context.Context, role *WorkerRole) ([]Worker, error) {
	q := `SELECT ` + workerColumns + ` FROM workers WHERE status = 'active'`
	args := []any{}
	if role != nil {
		q += ` AND role = $1`
		args = append(args, *role)
	}
	q += ` ORDER BY name`

	rows, err := s.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list active workers: %w", err)
	}
	defer rows.Close()
	return collectWorkers(rows)
}

func collectWorkers(rows pgx.Rows) ([]Worker, error) {
	var out []Worker
	for rows.Next() {
		w, err := scanWorker(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan worker: %w", err)
		}
		out = append(out, *w)
	}
	return out, rows.Err()
}

func (s *workerService) SetStatus(ctx context.Context, id int, status WorkerStatus) error {
	switch status {
	case WorkerActive, WorkerInactive, WorkerResigned:
	default:
		return invalid("status", fmt.Sprintf("unknown status %q", status))
	}
	tag, err := s.pool.Exec(ctx,
		`UPDATE workers SET status = $2, updated_at = NOW() WHERE id = $1`, id, status)
	if err != nil {
		return fmt.Errorf("failed to set worker %d status: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("worker %d: %w", id, ErrNotFound)
	}
	return nil
}

func (s *workerService) Delete(ctx context.Context, id int) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM workers WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete worker %d: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("worker %d: %w", id, ErrNotFound)
	}
	return nil
}
