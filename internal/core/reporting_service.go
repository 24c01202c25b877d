package core

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// ReportingService derives the month-end views. Every figure is recomputed
// from the raw ledgers on each call; nothing here writes except the advisory
// finalize, whose only durable effect is the audit event the caller records.
type ReportingService interface {
	// MonthlySummary is the month's profit and loss.
	MonthlySummary(ctx context.Context, month, year int, cfg ReportConfig) (*MonthlySummary, error)
	// Checklist gathers what a book-keeper checks before closing the month.
	Checklist(ctx context.Context, month, year int) (*Checklist, error)
	// Finalize verifies the month is closeable and returns the cash variance
	// (physical count minus ledger balance at month end). It fails while any
	// expense is still pending. Advisory: no entity is locked.
	Finalize(ctx context.Context, month, year int, physicalCount decimal.Decimal) (*FinalizeResult, error)
	// ClientBill prices the month's tonnage for invoicing.
	ClientBill(ctx context.Context, month, year int, ratePerTon decimal.Decimal) (*ClientBill, error)
}

// ReportConfig carries the pricing parameters of a monthly summary.
type ReportConfig struct {
	RatePerTon      decimal.Decimal
	AllowancePerDay decimal.Decimal
}

// MonthlySummary is the derived P&L for one month.
type MonthlySummary struct {
	Month           int             `json:"month"`
	Year            int             `json:"year"`
	TotalTons       decimal.Decimal `json:"total_tons"`
	Revenue         decimal.Decimal `json:"revenue"`
	SalaryCost      decimal.Decimal `json:"salary_cost"`
	SalaryProjected bool            `json:"salary_projected"`
	WorkerCount     int             `json:"worker_count"`
	LivingAllowance decimal.Decimal `json:"living_allowance"`
	PettyCashSpent  decimal.Decimal `json:"petty_cash_spent"`
	NetProfit       decimal.Decimal `json:"net_profit"`
}

// Checklist is the pre-close readiness view.
type Checklist struct {
	Month           int             `json:"month"`
	Year            int             `json:"year"`
	MissingDates    []MissingDate   `json:"missing_dates"`
	PendingExpenses int             `json:"pending_expenses"`
	PayrollLocked   bool            `json:"payroll_locked"`
	WalletBalance   decimal.Decimal `json:"wallet_balance"`
	ReadyToClose    bool            `json:"ready_to_close"`
}

// FinalizeResult reports the outcome of an advisory close.
type FinalizeResult struct {
	Month         int             `json:"month"`
	Year          int             `json:"year"`
	LedgerBalance decimal.Decimal `json:"ledger_balance"`
	PhysicalCount decimal.Decimal `json:"physical_count"`
	Variance      decimal.Decimal `json:"variance"`
}

// ClientBill is the month's invoice line for the client.
type ClientBill struct {
	Month      int             `json:"month"`
	Year       int             `json:"year"`
	TotalTons  decimal.Decimal `json:"total_tons"`
	RatePerTon decimal.Decimal `json:"rate_per_ton"`
	Amount     decimal.Decimal `json:"amount"`
}

// LivingAllowance prices the crew's daily stipend for a whole month.
func LivingAllowance(workerCount, daysInMonth int, perDay decimal.Decimal) decimal.Decimal {
	return perDay.Mul(decimal.NewFromInt(int64(workerCount))).Mul(decimal.NewFromInt(int64(daysInMonth)))
}

type reportingService struct {
	workers    WorkerService
	production ProductionService
	pettyCash  PettyCashService
	payroll    PayrollService
}

// NewReportingService constructs a ReportingService over the other services.
func NewReportingService(workers WorkerService, production ProductionService, pettyCash PettyCashService, payroll PayrollService) ReportingService {
	return &reportingService{workers: workers, production: production, pettyCash: pettyCash, payroll: payroll}
}

func (s *reportingService) MonthlySummary(ctx context.Context, month, year int, cfg ReportConfig) (*MonthlySummary, error) {
	if err := validateMonth(month, year); err != nil {
		return nil, err
	}
	from, to := MonthBounds(month, year)

	tons, err := s.production.TotalTons(ctx, from, to)
	if err != nil {
		return nil, err
	}

	// Salary cost prefers the locked rows; a month not yet processed falls
	// back to the active roster and is flagged as a projection. The worker
	// count always matches whichever set priced the salary line, so the
	// allowance line cannot drift against it.
	salaryCost := decimal.Zero
	projected := false
	var workerCount int
	locked, err := s.payroll.RowsForMonth(ctx, month, year)
	if err != nil {
		return nil, err
	}
	if len(locked) > 0 {
		for _, row := range locked {
			salaryCost = salaryCost.Add(row.BaseSalary)
		}
		workerCount = len(locked)
	} else {
		projected = true
		active, err := s.workers.ListActive(ctx, nil)
		if err != nil {
			return nil, err
		}
		for _, w := range active {
			salaryCost = salaryCost.Add(w.BaseSalary)
		}
		workerCount = len(active)
	}

	allowance := LivingAllowance(workerCount, DaysInMonth(month, year), cfg.AllowancePerDay)

	spent, err := s.pettyCash.ApprovedExpenseTotal(ctx, from, to)
	if err != nil {
		return nil, err
	}

	revenue := tons.Mul(cfg.RatePerTon)
	return &MonthlySummary{
		Month:           month,
		Year:            year,
		TotalTons:       tons,
		Revenue:         revenue,
		SalaryCost:      salaryCost,
		SalaryProjected: projected,
		WorkerCount:     workerCount,
		LivingAllowance: allowance,
		PettyCashSpent:  spent,
		NetProfit:       revenue.Sub(salaryCost).Sub(allowance).Sub(spent),
	}, nil
}

func (s *reportingService) Checklist(ctx context.Context, month, year int) (*Checklist, error) {
	if err := validateMonth(month, year); err != nil {
		return nil, err
	}
	from, _ := MonthBounds(month, year)

	recorded, err := s.production.RecordedDates(ctx, from, from.AddDate(0, 1, 0))
	if err != nil {
		return nil, err
	}
	missing := MissingProductionDates(month, year, time.Now().UTC(), recorded)

	pending, err := s.pettyCash.PendingExpenseCount(ctx)
	if err != nil {
		return nil, err
	}

	rows, err := s.payroll.RowsForMonth(ctx, month, year)
	if err != nil {
		return nil, err
	}

	_, last := MonthBounds(month, year)
	balance, err := s.pettyCash.BalanceAsOf(ctx, last)
	if err != nil {
		return nil, err
	}

	return &Checklist{
		Month:           month,
		Year:            year,
		MissingDates:    missing,
		PendingExpenses: pending,
		PayrollLocked:   len(rows) > 0,
		WalletBalance:   balance,
		ReadyToClose:    pending == 0,
	}, nil
}

func (s *reportingService) Finalize(ctx context.Context, month, year int, physicalCount decimal.Decimal) (*FinalizeResult, error) {
	if err := validateMonth(month, year); err != nil {
		return nil, err
	}
	pending, err := s.pettyCash.PendingExpenseCount(ctx)
	if err != nil {
		return nil, err
	}
	if pending > 0 {
		return nil, fmt.Errorf("%d expense(s) still pending: %w", pending, ErrInvalidTransition)
	}

	_, last := MonthBounds(month, year)
	balance, err := s.pettyCash.BalanceAsOf(ctx, last)
	if err != nil {
		return nil, err
	}
	return &FinalizeResult{
		Month:         month,
		Year:          year,
		LedgerBalance: balance,
		PhysicalCount: physicalCount,
		Variance:      physicalCount.Sub(balance),
	}, nil
}

func (s *reportingService) ClientBill(ctx context.Context, month, year int, ratePerTon decimal.Decimal) (*ClientBill, error) {
	if err := validateMonth(month, year); err != nil {
		return nil, err
	}
	if !ratePerTon.IsPositive() {
		return nil, invalid("rate_per_ton", "must be > 0")
	}
	from, to := MonthBounds(month, year)
	tons, err := s.production.TotalTons(ctx, from, to)
	if err != nil {
		return nil, err
	}
	return &ClientBill{
		Month:      month,
		Year:       year,
		TotalTons:  tons,
		RatePerTon: ratePerTon,
		Amount:     tons.Mul(ratePerTon),
	}, nil
}
