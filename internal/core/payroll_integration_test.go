package core_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"liftledger/internal/core"

	"github.com/shopspring/decimal"
)

func payrollFixture(t *testing.T) (context.Context, core.PayrollService, core.AdvanceService, *core.Worker, *core.Worker) {
	pool := setupTestDB(t)
	ctx := context.Background()
	worker := seedWorker(t, pool, "Ravi Kumar", core.WorkerRoleWorker, "13000")
	supervisor := seedWorker(t, pool, "Suresh Babu", core.WorkerRoleSupervisor, "18000")

	workers := core.NewWorkerService(pool)
	production := core.NewProductionService(pool)
	advances := core.NewAdvanceService(pool, core.NewPettyCashService(pool))
	payroll := core.NewPayrollService(pool, workers, production, advances)
	return ctx, payroll, advances, worker, supervisor
}

var testConfig = core.PayrollConfig{
	RatePerTon:      d("167"),
	HULDirectWorker: d("3000"),
}

func TestPayroll_ProjectionDeductions(t *testing.T) {
	ctx, payroll, advances, worker, supervisor := payrollFixture(t)

	// Outstanding direct advance of 9000 suggests an 1800 deduction.
	if _, err := advances.Issue(ctx, core.AdvanceInput{
		WorkerID: worker.ID, Amount: d("9000"), Date: date(2026, time.May, 20), Mode: core.AdvanceDirect,
	}); err != nil {
		t.Fatalf("Issue failed: %v", err)
	}

	p, err := payroll.Projection(ctx, 6, 2026, testConfig)
	if err != nil {
		t.Fatalf("Projection failed: %v", err)
	}
	if p.Locked {
		t.Fatal("fresh month reported locked")
	}
	if len(p.Rows) != 2 {
		t.Fatalf("got %d rows, want 2", len(p.Rows))
	}

	byID := map[int]core.PayrollRow{}
	for _, r := range p.Rows {
		byID[r.WorkerID] = r
	}
	wr := byID[worker.ID]
	if !wr.AdvanceDeduct.Equal(d("1800")) {
		t.Errorf("worker advance deduction = %s, want 1800", wr.AdvanceDeduct)
	}
	if !wr.NetPayable.Equal(d("11200")) {
		t.Errorf("worker net = %s, want 11200", wr.NetPayable)
	}
	if !wr.HULDirect.Equal(d("3000")) {
		t.Errorf("worker client-direct = %s, want 3000", wr.HULDirect)
	}
	sr := byID[supervisor.ID]
	if !sr.HULDirect.IsZero() {
		t.Errorf("supervisor client-direct = %s, want 0", sr.HULDirect)
	}
	if !sr.AdvanceDeduct.IsZero() {
		t.Errorf("supervisor advance deduction = %s, want 0", sr.AdvanceDeduct)
	}
}

func TestPayroll_SaveIsIdempotentPerWorker(t *testing.T) {
	ctx, payroll, _, worker, supervisor := payrollFixture(t)

	rows := []core.PayrollRowInput{
		{WorkerID: worker.ID, BaseSalary: d("13000"), HULDirect: d("3000"), AdvanceDeduct: d("0"), OtherDeduct: d("0")},
		{WorkerID: supervisor.ID, BaseSalary: d("18000"), HULDirect: d("0"), AdvanceDeduct: d("0"), OtherDeduct: d("0")},
	}
	res, err := payroll.Save(ctx, 6, 2026, rows)
	if err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if res.Saved != 2 || len(res.SkippedWorkers) != 0 {
		t.Fatalf("first save: saved=%d skipped=%v", res.Saved, res.SkippedWorkers)
	}

	// The retry saves nothing and reports both workers as skipped.
	res, err = payroll.Save(ctx, 6, 2026, rows)
	if err != nil {
		t.Fatalf("retry Save failed: %v", err)
	}
	if res.Saved != 0 || len(res.SkippedWorkers) != 2 {
		t.Errorf("retry save: saved=%d skipped=%v", res.Saved, res.SkippedWorkers)
	}

	// Locked month: the projection is frozen from the rows.
	p, err := payroll.Projection(ctx, 6, 2026, testConfig)
	if err != nil {
		t.Fatalf("Projection failed: %v", err)
	}
	if !p.Locked {
		t.Error("month with rows not reported locked")
	}
}

func TestPayroll_SaveRealizesAdvance(t *testing.T) {
	ctx, payroll, advances, worker, _ := payrollFixture(t)

	adv, err := advances.Issue(ctx, core.AdvanceInput{
		WorkerID: worker.ID, Amount: d("9000"), Date: date(2026, time.May, 20), Mode: core.AdvanceDirect,
	})
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}

	// Manual override below the 1800 suggestion.
	_, err = payroll.Save(ctx, 6, 2026, []core.PayrollRowInput{
		{WorkerID: worker.ID, BaseSalary: d("13000"), HULDirect: d("3000"),
			AdvanceDeduct: d("1500"), OtherDeduct: decimal.Zero},
	})
	if err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	adv, err = advances.GetByID(ctx, adv.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if !adv.Balance.Equal(d("7500")) {
		t.Errorf("balance after save = %s, want 7500", adv.Balance)
	}
	if !adv.TotalRepaid.Equal(d("1500")) {
		t.Errorf("total repaid = %s, want 1500", adv.TotalRepaid)
	}
}

func TestPayroll_MarkPaidAndReset(t *testing.T) {
	ctx, payroll, _, worker, _ := payrollFixture(t)

	if _, err := payroll.Save(ctx, 6, 2026, []core.PayrollRowInput{
		{WorkerID: worker.ID, BaseSalary: d("13000"), HULDirect: d("3000"),
			AdvanceDeduct: decimal.Zero, OtherDeduct: decimal.Zero},
	}); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	rows, err := payroll.RowsForMonth(ctx, 6, 2026)
	if err != nil || len(rows) != 1 {
		t.Fatalf("RowsForMonth: rows=%d err=%v", len(rows), err)
	}
	if !rows[0].NetSalary.Equal(d("13000")) {
		t.Errorf("net = %s, want 13000 (client-direct never deducted)", rows[0].NetSalary)
	}

	paid, err := payroll.MarkPaid(ctx, rows[0].ID)
	if err != nil {
		t.Fatalf("MarkPaid failed: %v", err)
	}
	if paid.PaymentStatus != core.PaymentPaid || paid.PaymentDate == nil {
		t.Errorf("after MarkPaid: status=%s date=%v", paid.PaymentStatus, paid.PaymentDate)
	}

	// Paying twice is refused.
	if _, err := payroll.MarkPaid(ctx, rows[0].ID); !errors.Is(err, core.ErrInvalidTransition) {
		t.Errorf("second MarkPaid: got %v, want ErrInvalidTransition", err)
	}

	n, err := payroll.Reset(ctx, 6, 2026)
	if err != nil {
		t.Fatalf("Reset failed: %v", err)
	}
	if n != 1 {
		t.Errorf("Reset deleted %d rows, want 1", n)
	}
	rows, _ = payroll.RowsForMonth(ctx, 6, 2026)
	if len(rows) != 0 {
		t.Errorf("rows remain after reset: %d", len(rows))
	}
}
