package core

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// PayrollService turns the month's inputs into locked salary rows. A month is
// unlocked while no rows exist (figures are live projections) and locked once
// Save has inserted them; the only way back is the destructive Reset.
type PayrollService interface {
	// Projection computes the month's payroll. If salary rows already exist
	// the projection is frozen from them; otherwise it is live-computed from
	// active workers, outstanding advances and the installment schedule.
	Projection(ctx context.Context, month, year int, cfg PayrollConfig) (*PayrollProjection, error)
	// Save locks the month: one salary row per input row. Workers that
	// already have a row for the month are skipped, so a retried "process
	// all" is idempotent per worker. After each insert the worker's advance
	// is amortized by the deduction actually applied.
	Save(ctx context.Context, month, year int, rows []PayrollRowInput) (*SaveResult, error)
	// MarkPaid flips one salary row to paid with today's date.
	MarkPaid(ctx context.Context, salaryID int) (*SalaryPayment, error)
	// Reset unlocks the month by deleting its salary rows. Advance-balance
	// decrements applied at Save time are NOT reversed; that asymmetry is a
	// documented caveat of the recovery model, not an oversight.
	Reset(ctx context.Context, month, year int) (int, error)
	RowsForMonth(ctx context.Context, month, year int) ([]SalaryPayment, error)
}

// PayrollConfig carries the operator-adjustable parameters of a payroll run.
type PayrollConfig struct {
	// RatePerTon prices the revenue-linked projection column. Informational
	// only; it never enters net-pay arithmetic.
	RatePerTon decimal.Decimal
	// HULDirectWorker is the fixed client-direct payment per worker-role
	// worker. Supervisors always get zero. Informational only.
	HULDirectWorker decimal.Decimal
}

// PayrollRow is one worker's line in a projection.
type PayrollRow struct {
	WorkerID      int             `json:"worker_id"`
	WorkerName    string          `json:"worker_name"`
	Role          WorkerRole      `json:"role,omitempty"`
	BaseSalary    decimal.Decimal `json:"base_salary"`
	HULDirect     decimal.Decimal `json:"hul_direct_payment"`
	AdvanceDeduct decimal.Decimal `json:"advance_deductions"`
	OtherDeduct   decimal.Decimal `json:"other_deductions"`
	NetPayable    decimal.Decimal `json:"net_payable"`
	PeriodTons    decimal.Decimal `json:"period_tons"`
	PeriodRevenue decimal.Decimal `json:"period_revenue"`
	// Set only when the month is locked.
	SalaryID      int           `json:"salary_id,omitempty"`
	PaymentStatus PaymentStatus `json:"payment_status"`
	PaymentDate   *time.Time    `json:"payment_date,omitempty"`
}

// PayrollProjection is the month's payroll view, live or frozen.
type PayrollProjection struct {
	Month  int          `json:"month"`
	Year   int          `json:"year"`
	Locked bool         `json:"locked"`
	Rows   []PayrollRow `json:"rows"`
}

// PayrollRowInput is one worker's final figures at lock time. Values may be
// manual overrides of the projection.
type PayrollRowInput struct {
	WorkerID      int
	BaseSalary    decimal.Decimal
	HULDirect     decimal.Decimal
	AdvanceDeduct decimal.Decimal
	OtherDeduct   decimal.Decimal
	Notes         string
}

func (r PayrollRowInput) validate() error {
	if r.WorkerID <= 0 {
		return invalid("worker_id", "must be selected")
	}
	if r.BaseSalary.IsNegative() {
		return invalid("base_salary", "must be >= 0")
	}
	if r.HULDirect.IsNegative() {
		return invalid("hul_direct_payment", "must be >= 0")
	}
	if r.AdvanceDeduct.IsNegative() {
		return invalid("advance_deductions", "must be >= 0")
	}
	if r.OtherDeduct.IsNegative() {
		return invalid("other_deductions", "must be >= 0")
	}
	return nil
}

// SaveResult reports what a Save actually did.
type SaveResult struct {
	Saved          int   `json:"saved"`
	SkippedWorkers []int `json:"skipped_workers"` // already had a row for the month
}

func validateMonth(month, year int) error {
	if month < 1 || month > 12 {
		return invalid("month", fmt.Sprintf("%d is out of range", month))
	}
	if year < 2000 || year > 2200 {
		return invalid("year", fmt.Sprintf("%d is out of range", year))
	}
	return nil
}

// NetPayable is the payroll identity: gross minus advance and other
// deductions. The client-direct payment is never subtracted here; it is money
// this ledger never handles.
func NetPayable(base, advanceDeduct, otherDeduct decimal.Decimal) decimal.Decimal {
	return base.Sub(advanceDeduct).Sub(otherDeduct)
}

type payrollService struct {
	pool       *pgxpool.Pool
	workers    WorkerService
	production ProductionService
	advances   AdvanceService
}

// NewPayrollService constructs a PayrollService.
func NewPayrollService(pool *pgxpool.Pool, workers WorkerService, production ProductionService, advances AdvanceService) PayrollService {
	return &payrollService{pool: pool, workers: workers, production: production, advances: advances}
}

func (s *payrollService) Projection(ctx context.Context, month, year int, cfg PayrollConfig) (*PayrollProjection, error) {
	if err := validateMonth(month, year); err != nil {
		return nil, err
	}

	from, to := MonthBounds(month, year)
	tonsByWorker, err := s.production.PerWorkerTons(ctx, from, to)
	if err != nil {
		return nil, err
	}

	locked, err := s.RowsForMonth(ctx, month, year)
	if err != nil {
		return nil, err
	}
	if len(locked) > 0 {
		p := &PayrollProjection{Month: month, Year: year, Locked: true}
		for _, row := range locked {
			tons := tonsByWorker[row.WorkerID]
			p.Rows = append(p.Rows, PayrollRow{
				WorkerID:      row.WorkerID,
				WorkerName:    row.WorkerName,
				BaseSalary:    row.BaseSalary,
				HULDirect:     row.HULDirect,
				AdvanceDeduct: row.AdvanceDeduct,
				OtherDeduct:   row.OtherDeduct,
				NetPayable:    row.NetSalary,
				PeriodTons:    tons,
				PeriodRevenue: tons.Mul(cfg.RatePerTon),
				SalaryID:      row.ID,
				PaymentStatus: row.PaymentStatus,
				PaymentDate:   row.PaymentDate,
			})
		}
		return p, nil
	}

	workers, err := s.workers.ListActive(ctx, nil)
	if err != nil {
		return nil, err
	}

	p := &PayrollProjection{Month: month, Year: year}
	for _, w := range workers {
		deduction, err := s.projectedDeduction(ctx, w.ID, month, year)
		if err != nil {
			return nil, err
		}
		hul := decimal.Zero
		if w.Role == WorkerRoleWorker {
			hul = cfg.HULDirectWorker
		}
		tons := tonsByWorker[w.ID]
		p.Rows = append(p.Rows, PayrollRow{
			WorkerID:      w.ID,
			WorkerName:    w.Name,
			Role:          w.Role,
			BaseSalary:    w.BaseSalary,
			HULDirect:     hul,
			AdvanceDeduct: deduction,
			OtherDeduct:   decimal.Zero,
			NetPayable:    NetPayable(w.BaseSalary, deduction, decimal.Zero),
			PeriodTons:    tons,
			PeriodRevenue: tons.Mul(cfg.RatePerTon),
			PaymentStatus: PaymentPending,
		})
	}
	return p, nil
}

// projectedDeduction prefers the explicit schedule for the month; an
// unscheduled repaying advance falls back to the automatic suggestion.
func (s *payrollService) projectedDeduction(ctx context.Context, workerID, month, year int) (decimal.Decimal, error) {
	scheduled, err := s.advances.ScheduledDeduction(ctx, workerID, month, year)
	if err != nil {
		return decimal.Zero, err
	}
	if scheduled.IsPositive() {
		return scheduled, nil
	}
	adv, err := s.advances.Outstanding(ctx, workerID)
	if err != nil {
		return decimal.Zero, err
	}
	if adv == nil || adv.Mode != AdvanceDirect {
		return decimal.Zero, nil
	}
	return SuggestDeduction(adv.Balance), nil
}

func (s *payrollService) Save(ctx context.Context, month, year int, rows []PayrollRowInput) (*SaveResult, error) {
	if err := validateMonth(month, year); err != nil {
		return nil, err
	}
	seen := make(map[int]bool, len(rows))
	for _, r := range rows {
		if err := r.validate(); err != nil {
			return nil, err
		}
		if seen[r.WorkerID] {
			return nil, fmt.Errorf("worker %d appears twice in the batch: %w", r.WorkerID, ErrDuplicatePayroll)
		}
		seen[r.WorkerID] = true
	}

	res := &SaveResult{}
	for _, r := range rows {
		// ON CONFLICT DO NOTHING is the duplicate guard: an existing
		// (worker, month, year) row means the worker is already locked and
		// gets skipped, keeping a retried batch idempotent per worker.
		tag, err := s.pool.Exec(ctx, `
			INSERT INTO salary_payments
				(worker_id, month, year, base_salary, hul_direct_payment,
				 advance_deductions, other_deductions, payment_status, notes)
			VALUES ($1, $2, $3, $4, $5, $6, $7, 'pending', NULLIF($8, ''))
			ON CONFLICT (worker_id, month, year) DO NOTHING`,
			r.WorkerID, month, year, r.BaseSalary, r.HULDirect,
			r.AdvanceDeduct, r.OtherDeduct, r.Notes)
		if err != nil {
			return res, fmt.Errorf("failed to insert salary row for worker %d: %w", r.WorkerID, err)
		}
		if tag.RowsAffected() == 0 {
			res.SkippedWorkers = append(res.SkippedWorkers, r.WorkerID)
			continue
		}
		res.Saved++

		// Amortize after the row is committed. Best-effort: a failure here
		// leaves a locked row whose advance decrement is missing; re-running
		// RealizeMonth is safe because it only touches unpaid installments
		// and repaying advances.
		if r.AdvanceDeduct.IsPositive() {
			if err := s.advances.RealizeMonth(ctx, r.WorkerID, month, year, r.AdvanceDeduct); err != nil {
				return res, fmt.Errorf("salary row saved but advance amortization failed for worker %d: %w", r.WorkerID, err)
			}
		}
	}
	return res, nil
}

const salaryColumns = `sp.id, sp.worker_id, w.name, sp.month, sp.year, sp.base_salary,
	sp.hul_direct_payment, sp.advance_deductions, sp.other_deductions, sp.net_salary,
	sp.payment_status, sp.payment_date, COALESCE(sp.notes, ''), sp.created_at`

func scanSalary(row pgx.Row) (*SalaryPayment, error) {
	sp := &SalaryPayment{}
	err := row.Scan(&sp.ID, &sp.WorkerID, &sp.WorkerName, &sp.Month, &sp.Year, &sp.BaseSalary,
		&sp.HULDirect, &sp.AdvanceDeduct, &sp.OtherDeduct, &sp.NetSalary,
		&sp.PaymentStatus, &sp.PaymentDate, &sp.Notes, &sp.CreatedAt)
	if err != nil {
		return nil, err
	}
	return sp, nil
}

func (s *payrollService) MarkPaid(ctx context.Context, salaryID int) (*SalaryPayment, error) {
	sp, err := scanSalary(s.pool.QueryRow(ctx, `
		WITH sp AS (
			UPDATE salary_payments
			SET payment_status = 'paid', payment_date = CURRENT_DATE
			WHERE id = $1 AND payment_status = 'pending'
			RETURNING *
		)
		SELECT `+salaryColumns+`
		FROM sp JOIN workers w ON w.id = sp.worker_id`, salaryID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("salary row %d is missing or already paid: %w", salaryID, ErrInvalidTransition)
		}
		return nil, fmt.Errorf("failed to mark salary %d paid: %w", salaryID, err)
	}
	return sp, nil
}

func (s *payrollService) Reset(ctx context.Context, month, year int) (int, error) {
	if err := validateMonth(month, year); err != nil {
		return 0, err
	}
	tag, err := s.pool.Exec(ctx,
		`DELETE FROM salary_payments WHERE month = $1 AND year = $2`, month, year)
	if err != nil {
		return 0, fmt.Errorf("failed to reset payroll %d/%d: %w", month, year, err)
	}
	return int(tag.RowsAffected()), nil
}

func (s *payrollService) RowsForMonth(ctx context.Context, month, year int) ([]SalaryPayment, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT `+salaryColumns+`
		FROM salary_payments sp
		JOIN workers w ON w.id = sp.worker_id
		WHERE sp.month = $1 AND sp.year = $2
		ORDER BY w.name`, month, year)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch salary rows: %w", err)
	}
	defer rows.Close()

	var out []SalaryPayment
	for rows.Next() {
		sp, err := scanSalary(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan salary row: %w", err)
		}
		out = append(out, *sp)
	}
	return out, rows.Err()
}
