package app

import (
	"context"
	"time"

	"liftledger/internal/core"

	"github.com/shopspring/decimal"
)

// ApplicationService is the single interface the web adapter calls. It owns
// role enforcement and audit emission; implementations contain no HTTP or
// display logic of any kind. Every method takes the resolved core.Caller
// explicitly; nothing in here reads ambient auth state.
type ApplicationService interface {
	// Login verifies credentials and returns the operator's session identity.
	Login(ctx context.Context, username, password string) (*SessionResult, error)
	// Operator returns the operator behind an authenticated session.
	Operator(ctx context.Context, operatorID int) (*core.Operator, error)

	// ListWorkers returns workers, optionally filtered by status.
	ListWorkers(ctx context.Context, caller core.Caller, status *core.WorkerStatus) (*WorkerListResult, error)
	GetWorker(ctx context.Context, caller core.Caller, id int) (*core.Worker, error)
	CreateWorker(ctx context.Context, caller core.Caller, req WorkerRequest) (*core.Worker, error)
	UpdateWorker(ctx context.Context, caller core.Caller, id int, req WorkerRequest) (*core.Worker, error)
	SetWorkerStatus(ctx context.Context, caller core.Caller, id int, status core.WorkerStatus) error
	// DeleteWorker hard-deletes. Admin only.
	DeleteWorker(ctx context.Context, caller core.Caller, id int) error

	// RecordProduction upserts one (worker, date) tonnage entry.
	RecordProduction(ctx context.Context, caller core.Caller, req ProductionRequest) (*core.DailyTon, error)
	DeleteProduction(ctx context.Context, caller core.Caller, id int) error
	ProductionForDate(ctx context.Context, caller core.Caller, day time.Time) (*ProductionDayResult, error)

	// AddFunds records an approved deposit. Admin only.
	AddFunds(ctx context.Context, caller core.Caller, req TxRequest) (*core.PettyCashTx, error)
	// RequestExpense records a pending expense. Any operator.
	RequestExpense(ctx context.Context, caller core.Caller, req TxRequest) (*core.PettyCashTx, error)
	// DecideExpense approves or rejects a pending expense. Admin only.
	DecideExpense(ctx context.Context, caller core.Caller, id int, approve bool) (*core.PettyCashTx, error)
	// PettyCashOverview returns the derived balance, recent transactions and
	// the pending count in one shot.
	PettyCashOverview(ctx context.Context, caller core.Caller, limit int) (*PettyCashResult, error)

	// GiveAdvance issues an advance. Admin only.
	GiveAdvance(ctx context.Context, caller core.Caller, req AdvanceRequest) (*core.Advance, error)
	// RepayAdvance collects cash against an advance. Admin only. The result
	// carries the overpaid remainder for the UI to warn about.
	RepayAdvance(ctx context.Context, caller core.Caller, advanceID int, amount decimal.Decimal, day time.Time) (*RepaymentResult, error)
	// ScheduleAdvance attaches an installment plan. Admin only.
	ScheduleAdvance(ctx context.Context, caller core.Caller, advanceID int, plan []InstallmentRequest) ([]core.Installment, error)
	ListAdvances(ctx context.Context, caller core.Caller) (*AdvanceListResult, error)
	AdvanceDetail(ctx context.Context, caller core.Caller, id int) (*AdvanceDetailResult, error)

	// PayrollProjection returns the month's payroll, live or frozen.
	PayrollProjection(ctx context.Context, caller core.Caller, month, year int) (*core.PayrollProjection, error)
	// ProcessPayroll locks the month. Admin only.
	ProcessPayroll(ctx context.Context, caller core.Caller, req PayrollSaveRequest) (*core.SaveResult, error)
	// ResetPayroll unlocks the month by deleting its rows. Admin only.
	ResetPayroll(ctx context.Context, caller core.Caller, month, year int) (int, error)
	// MarkSalaryPaid flips one row to paid. Admin only.
	MarkSalaryPaid(ctx context.Context, caller core.Caller, salaryID int) (*core.SalaryPayment, error)
	// ExportPayrollCSV renders the month's payroll as a CSV file.
	ExportPayrollCSV(ctx context.Context, caller core.Caller, month, year int) ([]byte, error)
	// ExportPayrollXLSX renders the month's payroll as an Excel workbook.
	ExportPayrollXLSX(ctx context.Context, caller core.Caller, month, year int) ([]byte, error)

	// MonthlySummary is the month's P&L. Admin only.
	MonthlySummary(ctx context.Context, caller core.Caller, month, year int) (*core.MonthlySummary, error)
	// MonthEndChecklist is the pre-close readiness view. Admin only.
	MonthEndChecklist(ctx context.Context, caller core.Caller, month, year int) (*core.Checklist, error)
	// FinalizeMonth performs the advisory close. Admin only.
	FinalizeMonth(ctx context.Context, caller core.Caller, month, year int, physicalCount decimal.Decimal) (*core.FinalizeResult, error)
	// GenerateBill prices the month's tonnage for the client. Admin only.
	GenerateBill(ctx context.Context, caller core.Caller, month, year int) (*core.ClientBill, error)

	// RecentActivity lists the audit trail. Admin only.
	RecentActivity(ctx context.Context, caller core.Caller, limit int) ([]core.ActivityLog, error)
}
