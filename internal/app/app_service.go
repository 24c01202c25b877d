package app

import (
	"context"
	"fmt"
	"time"

	"liftledger/internal/core"

	"github.com/shopspring/decimal"
)

type appService struct {
	cfg        Config
	operators  core.OperatorService
	workers    core.WorkerService
	production core.ProductionService
	pettyCash  core.PettyCashService
	advances   core.AdvanceService
	payroll    core.PayrollService
	reporting  core.ReportingService
	audit      core.AuditService
}

// NewAppService constructs an appService that satisfies ApplicationService.
func NewAppService(
	cfg Config,
	operators core.OperatorService,
	workers core.WorkerService,
	production core.ProductionService,
	pettyCash core.PettyCashService,
	advances core.AdvanceService,
	payroll core.PayrollService,
	reporting core.ReportingService,
	audit core.AuditService,
) ApplicationService {
	return &appService{
		cfg:        cfg,
		operators:  operators,
		workers:    workers,
		production: production,
		pettyCash:  pettyCash,
		advances:   advances,
		payroll:    payroll,
		reporting:  reporting,
		audit:      audit,
	}
}

// requireAdmin gates the operations a supervisor may not perform.
func requireAdmin(caller core.Caller) error {
	if !caller.IsAdmin() {
		return fmt.Errorf("%s requires an admin: %w", caller.Label, core.ErrForbidden)
	}
	return nil
}

func (s *appService) payrollConfig() core.PayrollConfig {
	return core.PayrollConfig{RatePerTon: s.cfg.RatePerTon, HULDirectWorker: s.cfg.HULDirectWorker}
}

func (s *appService) reportConfig() core.ReportConfig {
	return core.ReportConfig{RatePerTon: s.cfg.RatePerTon, AllowancePerDay: s.cfg.AllowancePerDay}
}

// ── Auth ─────────────────────────────────────────────────────────────────────

func (s *appService) Login(ctx context.Context, username, password string) (*SessionResult, error) {
	op, err := s.operators.Authenticate(ctx, username, password)
	if err != nil {
		return nil, err
	}
	return &SessionResult{
		OperatorID:  op.ID,
		Username:    op.Username,
		DisplayName: op.DisplayName,
		Role:        op.Role,
	}, nil
}

func (s *appService) Operator(ctx context.Context, operatorID int) (*core.Operator, error) {
	return s.operators.GetByID(ctx, operatorID)
}

// ── Workers ──────────────────────────────────────────────────────────────────

func (s *appService) ListWorkers(ctx context.Context, caller core.Caller, status *core.WorkerStatus) (*WorkerListResult, error) {
	workers, err := s.workers.List(ctx, status)
	if err != nil {
		return nil, err
	}
	active := 0
	for _, w := range workers {
		if w.Status == core.WorkerActive {
			active++
		}
	}
	return &WorkerListResult{Workers: workers, ActiveCount: active}, nil
}

func (s *appService) GetWorker(ctx context.Context, caller core.Caller, id int) (*core.Worker, error) {
	return s.workers.GetByID(ctx, id)
}

func (s *appService) CreateWorker(ctx context.Context, caller core.Caller, req WorkerRequest) (*core.Worker, error) {
	return s.workers.Create(ctx, core.NewWorker{
		Name:          req.Name,
		Phone:         req.Phone,
		AccountNumber: req.AccountNumber,
		Role:          req.Role,
		BaseSalary:    req.BaseSalary,
	})
}

func (s *appService) UpdateWorker(ctx context.Context, caller core.Caller, id int, req WorkerRequest) (*core.Worker, error) {
	return s.workers.Update(ctx, id, core.NewWorker{
		Name:          req.Name,
		Phone:         req.Phone,
		AccountNumber: req.AccountNumber,
		Role:          req.Role,
		BaseSalary:    req.BaseSalary,
	})
}

func (s *appService) SetWorkerStatus(ctx context.Context, caller core.Caller, id int, status core.WorkerStatus) error {
	return s.workers.SetStatus(ctx, id, status)
}

func (s *appService) DeleteWorker(ctx context.Context, caller core.Caller, id int) error {
	if err := requireAdmin(caller); err != nil {
		return err
	}
	return s.workers.Delete(ctx, id)
}

// ── Production ───────────────────────────────────────────────────────────────

func (s *appService) RecordProduction(ctx context.Context, caller core.Caller, req ProductionRequest) (*core.DailyTon, error) {
	return s.production.Upsert(ctx, core.ProductionEntry{
		WorkerID:   req.WorkerID,
		Date:       req.Date,
		TonsLifted: req.TonsLifted,
		IsPresent:  req.IsPresent,
		Notes:      req.Notes,
	})
}

func (s *appService) DeleteProduction(ctx context.Context, caller core.Caller, id int) error {
	return s.production.Delete(ctx, id)
}

func (s *appService) ProductionForDate(ctx context.Context, caller core.Caller, day time.Time) (*ProductionDayResult, error) {
	entries, err := s.production.EntriesForDate(ctx, day)
	if err != nil {
		return nil, err
	}
	total := decimal.Zero
	for _, e := range entries {
		total = total.Add(e.TonsLifted)
	}
	return &ProductionDayResult{Entries: entries, TotalTons: total}, nil
}

// ── Petty cash ───────────────────────────────────────────────────────────────

func (s *appService) AddFunds(ctx context.Context, caller core.Caller, req TxRequest) (*core.PettyCashTx, error) {
	if err := requireAdmin(caller); err != nil {
		return nil, err
	}
	tx, err := s.pettyCash.RecordDeposit(ctx, core.TxInput{
		Amount:      req.Amount,
		Category:    req.Category,
		Description: req.Description,
		Date:        req.Date,
	})
	if err != nil {
		return nil, err
	}
	s.audit.Log(ctx, caller, core.ActionAddFunds,
		fmt.Sprintf("Added %s to petty cash: %s", tx.Amount.StringFixed(2), tx.Description))
	return tx, nil
}

func (s *appService) RequestExpense(ctx context.Context, caller core.Caller, req TxRequest) (*core.PettyCashTx, error) {
	tx, err := s.pettyCash.RecordExpense(ctx, core.TxInput{
		Amount:      req.Amount,
		Category:    req.Category,
		Description: req.Description,
		Date:        req.Date,
	})
	if err != nil {
		return nil, err
	}
	s.audit.Log(ctx, caller, core.ActionExpenseRequest,
		fmt.Sprintf("Requested expense of %s: %s", tx.Amount.StringFixed(2), tx.Description))
	return tx, nil
}

func (s *appService) DecideExpense(ctx context.Context, caller core.Caller, id int, approve bool) (*core.PettyCashTx, error) {
	if err := requireAdmin(caller); err != nil {
		return nil, err
	}
	status, action := core.TxApproved, core.ActionExpenseApproved
	if !approve {
		status, action = core.TxRejected, core.ActionExpenseRejected
	}
	tx, err := s.pettyCash.SetExpenseStatus(ctx, id, status)
	if err != nil {
		return nil, err
	}
	s.audit.Log(ctx, caller, action,
		fmt.Sprintf("Expense %d (%s) %s", tx.ID, tx.Amount.StringFixed(2), tx.Status))
	return tx, nil
}

func (s *appService) PettyCashOverview(ctx context.Context, caller core.Caller, limit int) (*PettyCashResult, error) {
	balance, err := s.pettyCash.Balance(ctx)
	if err != nil {
		return nil, err
	}
	txs, err := s.pettyCash.List(ctx, limit)
	if err != nil {
		return nil, err
	}
	pending, err := s.pettyCash.PendingExpenseCount(ctx)
	if err != nil {
		return nil, err
	}
	return &PettyCashResult{Balance: balance, Transactions: txs, PendingCount: pending}, nil
}

// ── Advances ─────────────────────────────────────────────────────────────────

func (s *appService) GiveAdvance(ctx context.Context, caller core.Caller, req AdvanceRequest) (*core.Advance, error) {
	if err := requireAdmin(caller); err != nil {
		return nil, err
	}
	adv, err := s.advances.Issue(ctx, core.AdvanceInput{
		WorkerID: req.WorkerID,
		Amount:   req.Amount,
		Date:     req.Date,
		Reason:   req.Reason,
		Mode:     req.Mode,
	})
	if err != nil {
		return nil, err
	}
	s.audit.Log(ctx, caller, core.ActionGiveAdvance,
		fmt.Sprintf("Advance of %s to %s (%s)", adv.Amount.StringFixed(2), adv.WorkerName, adv.Mode))
	return adv, nil
}

func (s *appService) RepayAdvance(ctx context.Context, caller core.Caller, advanceID int, amount decimal.Decimal, day time.Time) (*RepaymentResult, error) {
	if err := requireAdmin(caller); err != nil {
		return nil, err
	}
	adv, overpay, err := s.advances.Repay(ctx, advanceID, amount, day)
	if err != nil {
		return nil, err
	}
	s.audit.Log(ctx, caller, core.ActionRepayAdvance,
		fmt.Sprintf("Repayment of %s from %s against advance %d",
			amount.StringFixed(2), adv.WorkerName, adv.ID))
	return &RepaymentResult{Advance: adv, Overpay: overpay}, nil
}

func (s *appService) ScheduleAdvance(ctx context.Context, caller core.Caller, advanceID int, plan []InstallmentRequest) ([]core.Installment, error) {
	if err := requireAdmin(caller); err != nil {
		return nil, err
	}
	inputs := make([]core.InstallmentInput, len(plan))
	for i, p := range plan {
		inputs[i] = core.InstallmentInput{Month: p.Month, Year: p.Year, Amount: p.Amount}
	}
	return s.advances.CreateSchedule(ctx, advanceID, inputs)
}

func (s *appService) ListAdvances(ctx context.Context, caller core.Caller) (*AdvanceListResult, error) {
	advances, err := s.advances.List(ctx)
	if err != nil {
		return nil, err
	}
	return &AdvanceListResult{Advances: advances}, nil
}

func (s *appService) AdvanceDetail(ctx context.Context, caller core.Caller, id int) (*AdvanceDetailResult, error) {
	adv, err := s.advances.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	insts, err := s.advances.Installments(ctx, id)
	if err != nil {
		return nil, err
	}
	return &AdvanceDetailResult{Advance: adv, Installments: insts}, nil
}

// ── Payroll ──────────────────────────────────────────────────────────────────

func (s *appService) PayrollProjection(ctx context.Context, caller core.Caller, month, year int) (*core.PayrollProjection, error) {
	return s.payroll.Projection(ctx, month, year, s.payrollConfig())
}

func (s *appService) ProcessPayroll(ctx context.Context, caller core.Caller, req PayrollSaveRequest) (*core.SaveResult, error) {
	if err := requireAdmin(caller); err != nil {
		return nil, err
	}
	rows := make([]core.PayrollRowInput, len(req.Rows))
	for i, r := range req.Rows {
		rows[i] = core.PayrollRowInput{
			WorkerID:      r.WorkerID,
			BaseSalary:    r.BaseSalary,
			HULDirect:     r.HULDirect,
			AdvanceDeduct: r.AdvanceDeduct,
			OtherDeduct:   r.OtherDeduct,
			Notes:         r.Notes,
		}
	}
	res, err := s.payroll.Save(ctx, req.Month, req.Year, rows)
	if err != nil {
		return res, err
	}
	s.audit.Log(ctx, caller, core.ActionProcessPayroll,
		fmt.Sprintf("Processed payroll %d/%d: %d saved, %d skipped",
			req.Month, req.Year, res.Saved, len(res.SkippedWorkers)))
	return res, nil
}

func (s *appService) ResetPayroll(ctx context.Context, caller core.Caller, month, year int) (int, error) {
	if err := requireAdmin(caller); err != nil {
		return 0, err
	}
	n, err := s.payroll.Reset(ctx, month, year)
	if err != nil {
		return 0, err
	}
	s.audit.Log(ctx, caller, core.ActionResetPayroll,
		fmt.Sprintf("Reset payroll %d/%d: %d rows deleted", month, year, n))
	return n, nil
}

func (s *appService) MarkSalaryPaid(ctx context.Context, caller core.Caller, salaryID int) (*core.SalaryPayment, error) {
	if err := requireAdmin(caller); err != nil {
		return nil, err
	}
	sp, err := s.payroll.MarkPaid(ctx, salaryID)
	if err != nil {
		return nil, err
	}
	s.audit.Log(ctx, caller, core.ActionMarkPaid,
		fmt.Sprintf("Marked salary of %s for %d/%d as paid", sp.WorkerName, sp.Month, sp.Year))
	return sp, nil
}

// ── Reports ──────────────────────────────────────────────────────────────────

func (s *appService) MonthlySummary(ctx context.Context, caller core.Caller, month, year int) (*core.MonthlySummary, error) {
	if err := requireAdmin(caller); err != nil {
		return nil, err
	}
	sum, err := s.reporting.MonthlySummary(ctx, month, year, s.reportConfig())
	if err != nil {
		return nil, err
	}
	s.audit.Log(ctx, caller, core.ActionViewReport,
		fmt.Sprintf("Viewed monthly summary %d/%d", month, year))
	return sum, nil
}

func (s *appService) MonthEndChecklist(ctx context.Context, caller core.Caller, month, year int) (*core.Checklist, error) {
	if err := requireAdmin(caller); err != nil {
		return nil, err
	}
	return s.reporting.Checklist(ctx, month, year)
}

func (s *appService) FinalizeMonth(ctx context.Context, caller core.Caller, month, year int, physicalCount decimal.Decimal) (*core.FinalizeResult, error) {
	if err := requireAdmin(caller); err != nil {
		return nil, err
	}
	res, err := s.reporting.Finalize(ctx, month, year, physicalCount)
	if err != nil {
		return nil, err
	}
	s.audit.Log(ctx, caller, core.ActionMonthClose,
		fmt.Sprintf("Closed %d/%d: ledger %s, counted %s, variance %s",
			month, year, res.LedgerBalance.StringFixed(2),
			res.PhysicalCount.StringFixed(2), res.Variance.StringFixed(2)))
	return res, nil
}

func (s *appService) GenerateBill(ctx context.Context, caller core.Caller, month, year int) (*core.ClientBill, error) {
	if err := requireAdmin(caller); err != nil {
		return nil, err
	}
	bill, err := s.reporting.ClientBill(ctx, month, year, s.cfg.RatePerTon)
	if err != nil {
		return nil, err
	}
	s.audit.Log(ctx, caller, core.ActionGenerateBill,
		fmt.Sprintf("Generated bill %d/%d: %s tons, %s", month, year,
			bill.TotalTons.String(), bill.Amount.StringFixed(2)))
	return bill, nil
}

// ── Activity ─────────────────────────────────────────────────────────────────

func (s *appService) RecentActivity(ctx context.Context, caller core.Caller, limit int) ([]core.ActivityLog, error) {
	if err := requireAdmin(caller); err != nil {
		return nil, err
	}
	return s.audit.Recent(ctx, limit)
}
