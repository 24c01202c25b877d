package web

import (
	"net/http"
	"strconv"

	"liftledger/internal/app"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// Handler holds the ApplicationService and the chi router.
type Handler struct {
	svc       app.ApplicationService
	jwtSecret string
	log       *zap.Logger
}

// NewHandler creates and wires the chi router with all routes.
func NewHandler(svc app.ApplicationService, allowedOrigins, jwtSecret string, log *zap.Logger) http.Handler {
	h := &Handler{svc: svc, jwtSecret: jwtSecret, log: log}

	r := chi.NewRouter()
	r.Use(RequestID)
	r.Use(Logger(log))
	r.Use(Recoverer(log))
	r.Use(CORS(allowedOrigins))

	// ── Public ───────────────────────────────────────────────────────────────
	r.Get("/api/health", h.health)
	r.Post("/api/auth/login", h.login)
	r.Post("/api/auth/logout", h.logout)

	// ── Protected API (401 JSON when unauthenticated) ────────────────────────
	r.Group(func(r chi.Router) {
		r.Use(h.RequireAuth)
		r.Use(RequestBodyLimit(1 << 20)) // 1 MB

		r.Get("/api/auth/me", h.me)

		// Workers
		r.Get("/api/workers", h.listWorkers)
		r.Post("/api/workers", h.createWorker)
		r.Get("/api/workers/{id}", h.getWorker)
		r.Put("/api/workers/{id}", h.updateWorker)
		r.Patch("/api/workers/{id}/status", h.setWorkerStatus)
		r.Delete("/api/workers/{id}", h.deleteWorker)

		// Daily production
		r.Get("/api/production", h.productionForDate)
		r.Post("/api/production", h.recordProduction)
		r.Delete("/api/production/{id}", h.deleteProduction)

		// Petty cash
		r.Get("/api/petty-cash", h.pettyCashOverview)
		r.Post("/api/petty-cash/deposits", h.addFunds)
		r.Post("/api/petty-cash/expenses", h.requestExpense)
		r.Patch("/api/petty-cash/{id}/status", h.decideExpense)

		// Advances
		r.Get("/api/advances", h.listAdvances)
		r.Post("/api/advances", h.giveAdvance)
		r.Get("/api/advances/{id}", h.advanceDetail)
		r.Post("/api/advances/{id}/repay", h.repayAdvance)
		r.Post("/api/advances/{id}/schedule", h.scheduleAdvance)

		// Payroll
		r.Get("/api/payroll", h.payrollProjection)
		r.Post("/api/payroll", h.processPayroll)
		r.Delete("/api/payroll", h.resetPayroll)
		r.Post("/api/payroll/{id}/paid", h.markSalaryPaid)
		r.Get("/api/payroll/export.csv", h.exportPayrollCSV)
		r.Get("/api/payroll/export.xlsx", h.exportPayrollXLSX)

		// Reports
		r.Get("/api/reports/summary", h.monthlySummary)
		r.Get("/api/reports/checklist", h.monthEndChecklist)
		r.Post("/api/reports/finalize", h.finalizeMonth)
		r.Get("/api/reports/bill", h.generateBill)

		// Activity trail
		r.Get("/api/activity", h.recentActivity)
	})

	return r
}

func (h *Handler) health(w http.ResponseWriter, r *http.Request) {
	type response struct {
		Status string `json:"status"`
	}
	writeJSON(w, response{Status: "ok"})
}

// idParam extracts the numeric {id} URL parameter.
func idParam(r *http.Request) (int, error) {
	return strconv.Atoi(chi.URLParam(r, "id"))
}
