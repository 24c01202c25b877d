package core_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"liftledger/internal/core"

	"github.com/jackc/pgx/v5/pgxpool"
)

func reportingFixture(t *testing.T) (context.Context, *pgxpool.Pool, core.ReportingService, core.PettyCashService, core.ProductionService) {
	pool := setupTestDB(t)
	ctx := context.Background()

	workers := core.NewWorkerService(pool)
	production := core.NewProductionService(pool)
	pettyCash := core.NewPettyCashService(pool)
	advances := core.NewAdvanceService(pool, pettyCash)
	payroll := core.NewPayrollService(pool, workers, production, advances)
	reporting := core.NewReportingService(workers, production, pettyCash, payroll)
	return ctx, pool, reporting, pettyCash, production
}

var reportConfig = core.ReportConfig{
	RatePerTon:      d("167"),
	AllowancePerDay: d("192"),
}

func TestReporting_MonthlySummary(t *testing.T) {
	ctx, pool, reporting, pettyCash, production := reportingFixture(t)
	w := seedWorker(t, pool, "Ravi Kumar", core.WorkerRoleWorker, "13000")
	seedWorker(t, pool, "Suresh Babu", core.WorkerRoleSupervisor, "18000")

	// 12.5 tons in June at 167/ton.
	if _, err := production.Upsert(ctx, core.ProductionEntry{
		WorkerID: w.ID, Date: date(2026, time.June, 2), TonsLifted: d("12.5"),
	}); err != nil {
		t.Fatalf("Upsert failed: %v", err)
	}

	// One approved, one pending, one rejected expense. Only approved counts
	// as spend for the report.
	if _, err := pettyCash.RecordApprovedExpense(ctx, core.TxInput{
		Amount: d("2000"), Description: "Crane hire", Date: date(2026, time.June, 5),
	}); err != nil {
		t.Fatalf("RecordApprovedExpense failed: %v", err)
	}
	if _, err := pettyCash.RecordExpense(ctx, core.TxInput{
		Amount: d("700"), Description: "Fuel", Date: date(2026, time.June, 6),
	}); err != nil {
		t.Fatalf("RecordExpense failed: %v", err)
	}
	rejected, err := pettyCash.RecordExpense(ctx, core.TxInput{
		Amount: d("300"), Description: "Snacks", Date: date(2026, time.June, 7),
	})
	if err != nil {
		t.Fatalf("RecordExpense failed: %v", err)
	}
	if _, err := pettyCash.SetExpenseStatus(ctx, rejected.ID, core.TxRejected); err != nil {
		t.Fatalf("SetExpenseStatus failed: %v", err)
	}

	sum, err := reporting.MonthlySummary(ctx, 6, 2026, reportConfig)
	if err != nil {
		t.Fatalf("MonthlySummary failed: %v", err)
	}
	if !sum.Revenue.Equal(d("2087.50")) {
		t.Errorf("revenue = %s, want 2087.50", sum.Revenue)
	}
	if !sum.SalaryProjected {
		t.Error("unlocked month not flagged as projected")
	}
	if !sum.SalaryCost.Equal(d("31000")) {
		t.Errorf("projected salary cost = %s, want 31000", sum.SalaryCost)
	}
	if sum.WorkerCount != 2 {
		t.Errorf("worker count = %d, want 2", sum.WorkerCount)
	}
	// 2 workers x 30 days x 192.
	if !sum.LivingAllowance.Equal(d("11520")) {
		t.Errorf("living allowance = %s, want 11520", sum.LivingAllowance)
	}
	if !sum.PettyCashSpent.Equal(d("2000")) {
		t.Errorf("petty cash spent = %s, want 2000 (approved only)", sum.PettyCashSpent)
	}
	want := d("2087.50").Sub(d("31000")).Sub(d("11520")).Sub(d("2000"))
	if !sum.NetProfit.Equal(want) {
		t.Errorf("net profit = %s, want %s", sum.NetProfit, want)
	}
}

func TestReporting_FinalizeGatedOnPending(t *testing.T) {
	ctx, _, reporting, pettyCash, _ := reportingFixture(t)

	if _, err := pettyCash.RecordDeposit(ctx, core.TxInput{
		Amount: d("10000"), Description: "Float", Date: date(2026, time.June, 1),
	}); err != nil {
		t.Fatalf("RecordDeposit failed: %v", err)
	}
	pending, err := pettyCash.RecordExpense(ctx, core.TxInput{
		Amount: d("400"), Description: "Fuel", Date: date(2026, time.June, 3),
	})
	if err != nil {
		t.Fatalf("RecordExpense failed: %v", err)
	}

	if _, err := reporting.Finalize(ctx, 6, 2026, d("9600")); !errors.Is(err, core.ErrInvalidTransition) {
		t.Fatalf("Finalize with pending expense: got %v, want ErrInvalidTransition", err)
	}

	if _, err := pettyCash.SetExpenseStatus(ctx, pending.ID, core.TxApproved); err != nil {
		t.Fatalf("SetExpenseStatus failed: %v", err)
	}
	res, err := reporting.Finalize(ctx, 6, 2026, d("9500"))
	if err != nil {
		t.Fatalf("Finalize failed: %v", err)
	}
	if !res.LedgerBalance.Equal(d("9600")) {
		t.Errorf("ledger balance = %s, want 9600", res.LedgerBalance)
	}
	if !res.Variance.Equal(d("-100")) {
		t.Errorf("variance = %s, want -100", res.Variance)
	}
}

func TestReporting_ClientBill(t *testing.T) {
	ctx, pool, reporting, _, production := reportingFixture(t)
	w := seedWorker(t, pool, "Ravi Kumar", core.WorkerRoleWorker, "13000")

	for day, tons := range map[int]string{3: "10", 4: "8.25"} {
		if _, err := production.Upsert(ctx, core.ProductionEntry{
			WorkerID: w.ID, Date: date(2026, time.June, day), TonsLifted: d(tons),
		}); err != nil {
			t.Fatalf("Upsert failed: %v", err)
		}
	}

	bill, err := reporting.ClientBill(ctx, 6, 2026, d("167"))
	if err != nil {
		t.Fatalf("ClientBill failed: %v", err)
	}
	if !bill.TotalTons.Equal(d("18.25")) {
		t.Errorf("total tons = %s, want 18.25", bill.TotalTons)
	}
	if !bill.Amount.Equal(d("3047.75")) {
		t.Errorf("amount = %s, want 3047.75", bill.Amount)
	}
}
