package core_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"liftledger/internal/core"
)

func TestAdvance_DirectIssueLogsCashOut(t *testing.T) {
	pool := setupTestDB(t)
	ctx := context.Background()
	w := seedWorker(t, pool, "Ravi Kumar", core.WorkerRoleWorker, "13000")

	pettyCash := core.NewPettyCashService(pool)
	svc := core.NewAdvanceService(pool, pettyCash)

	adv, err := svc.Issue(ctx, core.AdvanceInput{
		WorkerID: w.ID, Amount: d("9000"), Date: date(2026, time.June, 10),
		Reason: "Medical", Mode: core.AdvanceDirect,
	})
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}
	if adv.Status != core.AdvanceRepaying {
		t.Errorf("direct advance status = %s, want repaying", adv.Status)
	}
	if !adv.Balance.Equal(d("9000")) {
		t.Errorf("balance = %s, want 9000", adv.Balance)
	}

	// The wallet must show the cash-out as an approved expense.
	balance, err := pettyCash.Balance(ctx)
	if err != nil {
		t.Fatalf("Balance failed: %v", err)
	}
	if !balance.Equal(d("-9000")) {
		t.Errorf("wallet balance = %s, want -9000", balance)
	}
	txs, err := pettyCash.List(ctx, 10)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(txs) != 1 || txs[0].Category != "Advance" || txs[0].Status != core.TxApproved {
		t.Errorf("unexpected cash-out row: %+v", txs)
	}
}

func TestAdvance_OneOutstandingPerWorker(t *testing.T) {
	pool := setupTestDB(t)
	ctx := context.Background()
	w := seedWorker(t, pool, "Ravi Kumar", core.WorkerRoleWorker, "13000")
	svc := core.NewAdvanceService(pool, core.NewPettyCashService(pool))

	if _, err := svc.Issue(ctx, core.AdvanceInput{
		WorkerID: w.ID, Amount: d("5000"), Date: date(2026, time.June, 1), Mode: core.AdvanceDirect,
	}); err != nil {
		t.Fatalf("first Issue failed: %v", err)
	}
	_, err := svc.Issue(ctx, core.AdvanceInput{
		WorkerID: w.ID, Amount: d("2000"), Date: date(2026, time.June, 15), Mode: core.AdvanceDirect,
	})
	if !errors.Is(err, core.ErrAdvanceOutstanding) {
		t.Errorf("second Issue: got %v, want ErrAdvanceOutstanding", err)
	}
}

func TestAdvance_RepayClampsAndCompletes(t *testing.T) {
	pool := setupTestDB(t)
	ctx := context.Background()
	w := seedWorker(t, pool, "Ravi Kumar", core.WorkerRoleWorker, "13000")
	pettyCash := core.NewPettyCashService(pool)
	svc := core.NewAdvanceService(pool, pettyCash)

	adv, err := svc.Issue(ctx, core.AdvanceInput{
		WorkerID: w.ID, Amount: d("3000"), Date: date(2026, time.June, 1), Mode: core.AdvanceDirect,
	})
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}

	adv, overpay, err := svc.Repay(ctx, adv.ID, d("1000"), date(2026, time.June, 20))
	if err != nil {
		t.Fatalf("Repay failed: %v", err)
	}
	if !overpay.IsZero() || !adv.Balance.Equal(d("2000")) || adv.Status != core.AdvanceRepaying {
		t.Errorf("after partial repay: balance=%s status=%s overpay=%s", adv.Balance, adv.Status, overpay)
	}

	// Overpay clamps at zero and completes the advance.
	adv, overpay, err = svc.Repay(ctx, adv.ID, d("2500"), date(2026, time.June, 25))
	if err != nil {
		t.Fatalf("Repay failed: %v", err)
	}
	if !overpay.Equal(d("500")) {
		t.Errorf("overpay = %s, want 500", overpay)
	}
	if !adv.Balance.IsZero() || adv.Status != core.AdvanceCompleted {
		t.Errorf("after overpay: balance=%s status=%s", adv.Balance, adv.Status)
	}

	// Cash-out 3000, cash-in 1000 + 2500.
	balance, _ := pettyCash.Balance(ctx)
	if !balance.Equal(d("500")) {
		t.Errorf("wallet balance = %s, want 500", balance)
	}

	// A completed advance takes no further repayments.
	_, _, err = svc.Repay(ctx, adv.ID, d("100"), date(2026, time.June, 26))
	if !errors.Is(err, core.ErrInvalidTransition) {
		t.Errorf("repaying a completed advance: got %v, want ErrInvalidTransition", err)
	}
}

func TestAdvance_ScheduleLifecycle(t *testing.T) {
	pool := setupTestDB(t)
	ctx := context.Background()
	w := seedWorker(t, pool, "Suresh Babu", core.WorkerRoleSupervisor, "18000")
	svc := core.NewAdvanceService(pool, core.NewPettyCashService(pool))

	adv, err := svc.Issue(ctx, core.AdvanceInput{
		WorkerID: w.ID, Amount: d("6000"), Date: date(2026, time.June, 1), Mode: core.AdvanceScheduled,
	})
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}
	if adv.Status != core.AdvancePending {
		t.Fatalf("scheduled advance status = %s, want pending", adv.Status)
	}

	// A mismatched plan is rejected outright and leaves nothing behind.
	_, err = svc.CreateSchedule(ctx, adv.ID, []core.InstallmentInput{
		{Month: 7, Year: 2026, Amount: d("2000")},
	})
	if !errors.Is(err, core.ErrScheduleMismatch) {
		t.Fatalf("short plan: got %v, want ErrScheduleMismatch", err)
	}
	if insts, _ := svc.Installments(ctx, adv.ID); len(insts) != 0 {
		t.Fatalf("rejected plan left %d installments behind", len(insts))
	}

	insts, err := svc.CreateSchedule(ctx, adv.ID, []core.InstallmentInput{
		{Month: 7, Year: 2026, Amount: d("2000")},
		{Month: 8, Year: 2026, Amount: d("2000")},
		{Month: 9, Year: 2026, Amount: d("2000")},
	})
	if err != nil {
		t.Fatalf("CreateSchedule failed: %v", err)
	}
	if len(insts) != 3 {
		t.Fatalf("got %d installments, want 3", len(insts))
	}

	adv, _ = svc.GetByID(ctx, adv.ID)
	if adv.Status != core.AdvanceRepaying {
		t.Errorf("status after scheduling = %s, want repaying", adv.Status)
	}

	ded, err := svc.ScheduledDeduction(ctx, w.ID, 8, 2026)
	if err != nil {
		t.Fatalf("ScheduledDeduction failed: %v", err)
	}
	if !ded.Equal(d("2000")) {
		t.Errorf("scheduled deduction for 8/2026 = %s, want 2000", ded)
	}

	// Realizing the month pays the installment and decrements the balance.
	if err := svc.RealizeMonth(ctx, w.ID, 8, 2026, d("2000")); err != nil {
		t.Fatalf("RealizeMonth failed: %v", err)
	}
	adv, _ = svc.GetByID(ctx, adv.ID)
	if !adv.Balance.Equal(d("4000")) {
		t.Errorf("balance after realization = %s, want 4000", adv.Balance)
	}
	ded, _ = svc.ScheduledDeduction(ctx, w.ID, 8, 2026)
	if !ded.IsZero() {
		t.Errorf("realized month still suggests %s", ded)
	}
}
