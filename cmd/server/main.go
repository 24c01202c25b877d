package main

import (
	"context"
	"log"
	"net/http"
	"os"

	webAdapter "liftledger/internal/adapters/web"
	"liftledger/internal/app"
	"liftledger/internal/core"
	"liftledger/internal/db"
	"liftledger/internal/logger"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func main() {
	_ = godotenv.Load()

	zl, err := logger.New()
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer func() { _ = zl.Sync() }()

	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		zl.Fatal("JWT_SECRET environment variable not set")
	}

	ctx := context.Background()
	pool, err := db.NewPool(ctx)
	if err != nil {
		zl.Fatal("database", zap.Error(err))
	}
	defer pool.Close()

	operators := core.NewOperatorService(pool)
	workers := core.NewWorkerService(pool)
	production := core.NewProductionService(pool)
	pettyCash := core.NewPettyCashService(pool)
	advances := core.NewAdvanceService(pool, pettyCash)
	payroll := core.NewPayrollService(pool, workers, production, advances)
	reporting := core.NewReportingService(workers, production, pettyCash, payroll)
	audit := core.NewAuditService(pool, zl)

	svc := app.NewAppService(app.LoadConfig(),
		operators, workers, production, pettyCash, advances, payroll, reporting, audit)

	port := os.Getenv("SERVER_PORT")
	if port == "" {
		port = "8080"
	}

	handler := webAdapter.NewHandler(svc, os.Getenv("ALLOWED_ORIGINS"), jwtSecret, zl)

	zl.Info("server starting", zap.String("port", port))
	if err := http.ListenAndServe(":"+port, handler); err != nil {
		zl.Fatal("server", zap.Error(err))
	}
}
