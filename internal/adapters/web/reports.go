package web

import (
	"net/http"
	"strconv"

	"github.com/shopspring/decimal"
)

func (h *Handler) monthlySummary(w http.ResponseWriter, r *http.Request) {
	month, year, err := monthYearParams(r)
	if err != nil {
		writeError(w, r, err.Error(), "BAD_REQUEST", http.StatusBadRequest)
		return
	}
	sum, err := h.svc.MonthlySummary(r.Context(), caller(r), month, year)
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, sum)
}

func (h *Handler) monthEndChecklist(w http.ResponseWriter, r *http.Request) {
	month, year, err := monthYearParams(r)
	if err != nil {
		writeError(w, r, err.Error(), "BAD_REQUEST", http.StatusBadRequest)
		return
	}
	checklist, err := h.svc.MonthEndChecklist(r.Context(), caller(r), month, year)
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, checklist)
}

func (h *Handler) finalizeMonth(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Month         int             `json:"month"`
		Year          int             `json:"year"`
		PhysicalCount decimal.Decimal `json:"physical_count"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	res, err := h.svc.FinalizeMonth(r.Context(), caller(r), req.Month, req.Year, req.PhysicalCount)
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, res)
}

func (h *Handler) generateBill(w http.ResponseWriter, r *http.Request) {
	month, year, err := monthYearParams(r)
	if err != nil {
		writeError(w, r, err.Error(), "BAD_REQUEST", http.StatusBadRequest)
		return
	}
	bill, err := h.svc.GenerateBill(r.Context(), caller(r), month, year)
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, bill)
}

func (h *Handler) recentActivity(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	logs, err := h.svc.RecentActivity(r.Context(), caller(r), limit)
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, logs)
}
