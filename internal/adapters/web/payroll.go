package web

import (
	"fmt"
	"net/http"
	"strconv"

	"liftledger/internal/app"
)

// monthYearParams parses the month and year query parameters.
func monthYearParams(r *http.Request) (int, int, error) {
	month, err := strconv.Atoi(r.URL.Query().Get("month"))
	if err != nil {
		return 0, 0, fmt.Errorf("invalid month")
	}
	year, err := strconv.Atoi(r.URL.Query().Get("year"))
	if err != nil {
		return 0, 0, fmt.Errorf("invalid year")
	}
	return month, year, nil
}

func (h *Handler) payrollProjection(w http.ResponseWriter, r *http.Request) {
	month, year, err := monthYearParams(r)
	if err != nil {
		writeError(w, r, err.Error(), "BAD_REQUEST", http.StatusBadRequest)
		return
	}
	p, err := h.svc.PayrollProjection(r.Context(), caller(r), month, year)
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, p)
}

func (h *Handler) processPayroll(w http.ResponseWriter, r *http.Request) {
	var req app.PayrollSaveRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	res, err := h.svc.ProcessPayroll(r.Context(), caller(r), req)
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, res)
}

func (h *Handler) resetPayroll(w http.ResponseWriter, r *http.Request) {
	month, year, err := monthYearParams(r)
	if err != nil {
		writeError(w, r, err.Error(), "BAD_REQUEST", http.StatusBadRequest)
		return
	}
	n, err := h.svc.ResetPayroll(r.Context(), caller(r), month, year)
	if err != nil {
		respondError(w, r, err)
		return
	}
	type response struct {
		Deleted int `json:"deleted"`
	}
	writeJSON(w, response{Deleted: n})
}

func (h *Handler) markSalaryPaid(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		writeError(w, r, "invalid salary id", "BAD_REQUEST", http.StatusBadRequest)
		return
	}
	sp, err := h.svc.MarkSalaryPaid(r.Context(), caller(r), id)
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, sp)
}

func (h *Handler) exportPayrollCSV(w http.ResponseWriter, r *http.Request) {
	month, year, err := monthYearParams(r)
	if err != nil {
		writeError(w, r, err.Error(), "BAD_REQUEST", http.StatusBadRequest)
		return
	}
	data, err := h.svc.ExportPayrollCSV(r.Context(), caller(r), month, year)
	if err != nil {
		respondError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition",
		fmt.Sprintf(`attachment; filename="payroll-%02d-%d.csv"`, month, year))
	_, _ = w.Write(data)
}

func (h *Handler) exportPayrollXLSX(w http.ResponseWriter, r *http.Request) {
	month, year, err := monthYearParams(r)
	if err != nil {
		writeError(w, r, err.Error(), "BAD_REQUEST", http.StatusBadRequest)
		return
	}
	data, err := h.svc.ExportPayrollXLSX(r.Context(), caller(r), month, year)
	if err != nil {
		respondError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition",
		fmt.Sprintf(`attachment; filename="payroll-%02d-%d.xlsx"`, month, year))
	_, _ = w.Write(data)
}
