package core

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// scheduleTolerance is how far the installment sum may drift from the advance
// amount before the schedule is rejected.
var scheduleTolerance = decimal.NewFromFloat(0.01)

// autoDeductCap and autoDeductRate drive the suggested monthly recovery for an
// unscheduled advance: 20% of the outstanding balance, capped at 2000, rounded
// up to the nearest 100. A policy default, not a hard rule; payroll accepts
// manual overrides before locking.
var (
	autoDeductRate = decimal.NewFromFloat(0.20)
	autoDeductCap  = decimal.NewFromInt(2000)
	roundingStep   = decimal.NewFromInt(100)
)

// AdvanceService issues advances and amortizes them back. Direct advances move
// petty cash on issue and on every ad-hoc repayment; scheduled advances wait
// for an installment plan and are recovered through payroll.
type AdvanceService interface {
	// Issue creates an advance. Direct mode starts repaying with the full
	// balance and logs an approved petty-cash expense; scheduled mode starts
	// pending until a schedule is attached. A worker may have at most one
	// advance that is not completed.
	Issue(ctx context.Context, in AdvanceInput) (*Advance, error)
	// Repay collects cash against a repaying advance, clamping the balance at
	// zero and logging an approved petty-cash deposit. The returned overpay is
	// the amount beyond the outstanding balance, for the caller to warn about.
	Repay(ctx context.Context, advanceID int, amount decimal.Decimal, date time.Time) (adv *Advance, overpay decimal.Decimal, err error)
	// CreateSchedule attaches an installment plan to a pending advance and
	// moves it to repaying. The whole plan is validated and inserted as one
	// statement; an abandoned flow leaves no partial schedule behind.
	CreateSchedule(ctx context.Context, advanceID int, plan []InstallmentInput) ([]Installment, error)
	// Outstanding returns the worker's repaying advance with balance > 0, or
	// nil if there is none.
	Outstanding(ctx context.Context, workerID int) (*Advance, error)
	// ScheduledDeduction sums the worker's unpaid installments for a month.
	ScheduledDeduction(ctx context.Context, workerID, month, year int) (decimal.Decimal, error)
	// RealizeMonth marks the worker's unpaid installments for the month as
	// paid and decrements the parent advance by the deduction actually applied
	// in payroll (manual overrides mean it can differ from the nominal sum).
	RealizeMonth(ctx context.Context, workerID, month, year int, applied decimal.Decimal) error
	List(ctx context.Context) ([]Advance, error)
	GetByID(ctx context.Context, id int) (*Advance, error)
	Installments(ctx context.Context, advanceID int) ([]Installment, error)
}

// AdvanceInput carries the fields of a new advance.
type AdvanceInput struct {
	WorkerID int
	Amount   decimal.Decimal
	Date     time.Time
	Reason   string
	Mode     AdvanceMode
}

func (in AdvanceInput) validate() error {
	if in.WorkerID <= 0 {
		return invalid("worker_id", "must be selected")
	}
	if !in.Amount.IsPositive() {
		return invalid("advance_amount", "must be > 0")
	}
	if in.Date.IsZero() {
		return invalid("advance_date", "must be set")
	}
	switch in.Mode {
	case AdvanceDirect, AdvanceScheduled:
	default:
		return invalid("mode", fmt.Sprintf("unknown issuance mode %q", in.Mode))
	}
	return nil
}

// InstallmentInput is one planned (month, year, amount) slice.
type InstallmentInput struct {
	Month  int
	Year   int
	Amount decimal.Decimal
}

// SuggestDeduction computes the automatic payroll deduction for an outstanding
// balance: ceil(min(balance x 0.20, 2000) / 100) x 100. Zero for a zero or
// negative balance.
func SuggestDeduction(balance decimal.Decimal) decimal.Decimal {
	if !balance.IsPositive() {
		return decimal.Zero
	}
	d := balance.Mul(autoDeductRate)
	if d.Cmp(autoDeductCap) > 0 {
		d = autoDeductCap
	}
	return d.Div(roundingStep).Ceil().Mul(roundingStep)
}

// ValidateSchedule checks a plan against the advance amount: months in range,
// positive amounts, no duplicate (month, year), and a sum within tolerance.
func ValidateSchedule(advanceAmount decimal.Decimal, plan []InstallmentInput) error {
	if len(plan) == 0 {
		return invalid("installments", "must not be empty")
	}
	seen := make(map[[2]int]bool, len(plan))
	sum := decimal.Zero
	for _, inst := range plan {
		if inst.Month < 1 || inst.Month > 12 {
			return invalid("month", fmt.Sprintf("%d is out of range", inst.Month))
		}
		if inst.Year < 2000 {
			return invalid("year", fmt.Sprintf("%d is out of range", inst.Year))
		}
		if !inst.Amount.IsPositive() {
			return invalid("deduction_amount", "must be > 0")
		}
		key := [2]int{inst.Year, inst.Month}
		if seen[key] {
			return invalid("installments", fmt.Sprintf("duplicate slice for %d/%d", inst.Month, inst.Year))
		}
		seen[key] = true
		sum = sum.Add(inst.Amount)
	}
	if sum.Sub(advanceAmount).Abs().Cmp(scheduleTolerance) > 0 {
		return fmt.Errorf("installments sum to %s, advance is %s: %w",
			sum.StringFixed(2), advanceAmount.StringFixed(2), ErrScheduleMismatch)
	}
	return nil
}

type advanceService struct {
	pool      *pgxpool.Pool
	pettyCash PettyCashService
}

// NewAdvanceService constructs an AdvanceService. It writes to the petty-cash
// log for direct-mode cash movements; the two writes are independent remote
// calls, so a failure in between leaves an advance without its cash-out row
// rather than corrupting either ledger (balances are re-derived on read).
func NewAdvanceService(pool *pgxpool.Pool, pettyCash PettyCashService) AdvanceService {
	return &advanceService{pool: pool, pettyCash: pettyCash}
}

const advanceColumns = `a.id, a.worker_id, w.name, a.advance_amount, a.advance_date,
	COALESCE(a.reason, ''), a.mode, a.total_repaid, a.balance, a.status, a.created_at`

func scanAdvance(row pgx.Row) (*Advance, error) {
	a := &Advance{}
	err := row.Scan(&a.ID, &a.WorkerID, &a.WorkerName, &a.Amount, &a.AdvanceDate,
		&a.Reason, &a.Mode, &a.TotalRepaid, &a.Balance, &a.Status, &a.CreatedAt)
	if err != nil {
		return nil, err
	}
	return a, nil
}

func (s *advanceService) Issue(ctx context.Context, in AdvanceInput) (*Advance, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	var openCount int
	err := s.pool.QueryRow(ctx, `
		SELECT COUNT(*) FROM advances
		WHERE worker_id = $1 AND status <> 'completed'`, in.WorkerID).Scan(&openCount)
	if err != nil {
		return nil, fmt.Errorf("failed to check open advances: %w", err)
	}
	if openCount > 0 {
		return nil, fmt.Errorf("worker %d: %w", in.WorkerID, ErrAdvanceOutstanding)
	}

	status := AdvancePending
	if in.Mode == AdvanceDirect {
		status = AdvanceRepaying
	}

	var advanceID int
	err = s.pool.QueryRow(ctx, `
		INSERT INTO advances (worker_id, advance_amount, advance_date, reason, mode, total_repaid, balance, status)
		VALUES ($1, $2, $3, NULLIF($4, ''), $5, 0, $2, $6)
		RETURNING id`,
		in.WorkerID, in.Amount, in.Date, strings.TrimSpace(in.Reason), in.Mode, status).Scan(&advanceID)
	if err != nil {
		return nil, fmt.Errorf("failed to insert advance: %w", err)
	}
	adv, err := s.GetByID(ctx, advanceID)
	if err != nil {
		return nil, err
	}

	// Direct advances come out of the wallet. Separate write by design; if it
	// fails the caller retries or reconciles, the advance itself is valid.
	if in.Mode == AdvanceDirect {
		_, err = s.pettyCash.RecordApprovedExpense(ctx, TxInput{
			Amount:      in.Amount,
			Category:    "Advance",
			Description: fmt.Sprintf("Advance given to %s", adv.WorkerName),
			Date:        in.Date,
		})
		if err != nil {
			return adv, fmt.Errorf("advance %d created but cash-out log failed: %w", adv.ID, err)
		}
	}
	return adv, nil
}

func (s *advanceService) Repay(ctx context.Context, advanceID int, amount decimal.Decimal, date time.Time) (*Advance, decimal.Decimal, error) {
	if !amount.IsPositive() {
		return nil, decimal.Zero, invalid("amount", "must be > 0")
	}
	if date.IsZero() {
		date = time.Now()
	}

	current, err := s.GetByID(ctx, advanceID)
	if err != nil {
		return nil, decimal.Zero, err
	}
	if current.Status != AdvanceRepaying {
		return nil, decimal.Zero, fmt.Errorf("advance %d is %s: %w", advanceID, current.Status, ErrInvalidTransition)
	}

	overpay := decimal.Zero
	newBalance := current.Balance.Sub(amount)
	if newBalance.Sign() < 0 {
		overpay = newBalance.Neg()
		newBalance = decimal.Zero
	}
	newStatus := AdvanceRepaying
	if newBalance.IsZero() {
		newStatus = AdvanceCompleted
	}

	_, err = s.pool.Exec(ctx, `
		UPDATE advances
		SET balance = $2, status = $3, total_repaid = total_repaid + $4
		WHERE id = $1`,
		advanceID, newBalance, newStatus, amount)
	if err != nil {
		return nil, decimal.Zero, fmt.Errorf("failed to update advance %d balance: %w", advanceID, err)
	}

	// Cash comes back into the wallet.
	_, err = s.pettyCash.RecordDeposit(ctx, TxInput{
		Amount:      amount,
		Category:    "Repayment",
		Description: fmt.Sprintf("Advance repayment from %s", current.WorkerName),
		Date:        date,
	})
	if err != nil {
		return nil, decimal.Zero, fmt.Errorf("repayment applied but cash-in log failed: %w", err)
	}

	adv, err := s.GetByID(ctx, advanceID)
	if err != nil {
		return nil, decimal.Zero, err
	}
	return adv, overpay, nil
}

func (s *advanceService) CreateSchedule(ctx context.Context, advanceID int, plan []InstallmentInput) ([]Installment, error) {
	adv, err := s.GetByID(ctx, advanceID)
	if err != nil {
		return nil, err
	}
	if adv.Status != AdvancePending {
		return nil, fmt.Errorf("advance %d is %s, schedule requires pending: %w", advanceID, adv.Status, ErrInvalidTransition)
	}
	if err := ValidateSchedule(adv.Amount, plan); err != nil {
		return nil, err
	}

	// One multi-row statement: either the whole plan lands or none of it.
	sb := strings.Builder{}
	sb.WriteString(`INSERT INTO advance_repayments (advance_id, month, year, deduction_amount) VALUES `)
	args := make([]any, 0, len(plan)*4)
	for i, inst := range plan {
		if i > 0 {
			sb.WriteString(", ")
		}
		n := i * 4
		fmt.Fprintf(&sb, "($%d, $%d, $%d, $%d)", n+1, n+2, n+3, n+4)
		args = append(args, advanceID, inst.Month, inst.Year, inst.Amount)
	}
	if _, err := s.pool.Exec(ctx, sb.String(), args...); err != nil {
		return nil, fmt.Errorf("failed to insert schedule: %w", err)
	}

	if _, err := s.pool.Exec(ctx,
		`UPDATE advances SET status = 'repaying' WHERE id = $1 AND status = 'pending'`, advanceID); err != nil {
		return nil, fmt.Errorf("schedule saved but status update failed: %w", err)
	}

	return s.Installments(ctx, advanceID)
}

func (s *advanceService) Outstanding(ctx context.Context, workerID int) (*Advance, error) {
	adv, err := scanAdvance(s.pool.QueryRow(ctx, `
		SELECT `+advanceColumns+`
		FROM advances a JOIN workers w ON w.id = a.worker_id
		WHERE a.worker_id = $1 AND a.status = 'repaying' AND a.balance > 0
		ORDER BY a.advance_date
		LIMIT 1`, workerID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to fetch outstanding advance: %w", err)
	}
	return adv, nil
}

func (s *advanceService) ScheduledDeduction(ctx context.Context, workerID, month, year int) (decimal.Decimal, error) {
	var total decimal.Decimal
	err := s.pool.QueryRow(ctx, `
		SELECT COALESCE(SUM(ar.deduction_amount), 0)
		FROM advance_repayments ar
		JOIN advances a ON a.id = ar.advance_id
		WHERE a.worker_id = $1 AND ar.month = $2 AND ar.year = $3 AND NOT ar.is_paid`,
		workerID, month, year).Scan(&total)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to sum scheduled deductions: %w", err)
	}
	return total, nil
}

func (s *advanceService) RealizeMonth(ctx context.Context, workerID, month, year int, applied decimal.Decimal) error {
	if !applied.IsPositive() {
		return nil
	}

	_, err := s.pool.Exec(ctx, `
		UPDATE advance_repayments ar
		SET is_paid = true, paid_date = CURRENT_DATE
		FROM advances a
		WHERE a.id = ar.advance_id AND a.worker_id = $1
		  AND ar.month = $2 AND ar.year = $3 AND NOT ar.is_paid`,
		workerID, month, year)
	if err != nil {
		return fmt.Errorf("failed to mark installments paid: %w", err)
	}

	// Decrement the live advance by what payroll actually withheld, which may
	// differ from the nominal installment sum after a manual override.
	_, err = s.pool.Exec(ctx, `
		UPDATE advances
		SET total_repaid = total_repaid + $2,
		    balance = GREATEST(balance - $2, 0),
		    status = CASE WHEN balance - $2 <= 0 THEN 'completed' ELSE status END
		WHERE worker_id = $1 AND status = 'repaying'`,
		workerID, applied)
	if err != nil {
		return fmt.Errorf("failed to decrement advance balance: %w", err)
	}
	return nil
}

func (s *advanceService) List(ctx context.Context) ([]Advance, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT `+advanceColumns+`
		FROM advances a JOIN workers w ON w.id = a.worker_id
		ORDER BY a.advance_date DESC, a.id DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list advances: %w", err)
	}
	defer rows.Close()

	var out []Advance
	for rows.Next() {
		a, err := scanAdvance(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan advance: %w", err)
		}
		out = append(out, *a)
	}
	return out, rows.Err()
}

func (s *advanceService) GetByID(ctx context.Context, id int) (*Advance, error) {
	adv, err := scanAdvance(s.pool.QueryRow(ctx, `
		SELECT `+advanceColumns+`
		FROM advances a JOIN workers w ON w.id = a.worker_id
		WHERE a.id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("advance %d: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to fetch advance %d: %w", id, err)
	}
	return adv, nil
}

func (s *advanceService) Installments(ctx context.Context, advanceID int) ([]Installment, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, advance_id, month, year, deduction_amount, is_paid, paid_date, created_at
		FROM advance_repayments
		WHERE advance_id = $1
		ORDER BY year, month`, advanceID)
	if err != nil {
		return nil, fmt.Errorf("failed to list installments: %w", err)
	}
	defer rows.Close()

	var out []Installment
	for rows.Next() {
		var inst Installment
		if err := rows.Scan(&inst.ID, &inst.AdvanceID, &inst.Month, &inst.Year,
			&inst.Amount, &inst.IsPaid, &inst.PaidDate, &inst.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan installment: %w", err)
		}
		out = append(out, inst)
	}
	return out, rows.Err()
}
