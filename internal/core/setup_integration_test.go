package core_test

import (
	"context"
	"os"
	"testing"
	"time"

	"liftledger/internal/core"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
)

func setupTestDB(t *testing.T) *pgxpool.Pool {
	_ = godotenv.Load("../../.env")

	// Use a dedicated TEST database to avoid wiping the live app database.
	// Set TEST_DATABASE_URL in your .env or environment to run integration tests.
	dbURL := os.Getenv("TEST_DATABASE_URL")
	if dbURL == "" {
		t.Skip("TEST_DATABASE_URL not set, skipping integration test to protect live database")
	}

	ctx := context.Background()
	pool, err := pgxpool.New(ctx, dbURL)
	if err != nil {
		t.Fatalf("Failed to connect to test database: %v", err)
	}
	t.Cleanup(pool.Close)

	_, err = pool.Exec(ctx, `
		TRUNCATE TABLE advance_repayments, advances, salary_payments, daily_tons,
			petty_cash_transactions, activity_logs, workers, operators
		RESTART IDENTITY CASCADE;
	`)
	if err != nil {
		t.Fatalf("Failed to clean test database: %v", err)
	}

	return pool
}

// seedWorker inserts a worker through the service and returns it.
func seedWorker(t *testing.T, pool *pgxpool.Pool, name string, role core.WorkerRole, baseSalary string) *core.Worker {
	t.Helper()
	w, err := core.NewWorkerService(pool).Create(context.Background(), core.NewWorker{
		Name:       name,
		Role:       role,
		BaseSalary: d(baseSalary),
	})
	if err != nil {
		t.Fatalf("Failed to seed worker %s: %v", name, err)
	}
	return w
}

func date(y int, m time.Month, day int) time.Time {
	return time.Date(y, m, day, 0, 0, 0, 0, time.UTC)
}
