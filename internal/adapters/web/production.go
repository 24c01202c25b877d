package web

import (
	"net/http"
	"time"

	"liftledger/internal/app"
)

// dateParam parses a YYYY-MM-DD query parameter, defaulting to today.
func dateParam(r *http.Request, key string) (time.Time, error) {
	q := r.URL.Query().Get(key)
	if q == "" {
		now := time.Now().UTC()
		return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC), nil
	}
	return time.Parse("2006-01-02", q)
}

func (h *Handler) productionForDate(w http.ResponseWriter, r *http.Request) {
	day, err := dateParam(r, "date")
	if err != nil {
		writeError(w, r, "invalid date, want YYYY-MM-DD", "BAD_REQUEST", http.StatusBadRequest)
		return
	}
	res, err := h.svc.ProductionForDate(r.Context(), caller(r), day)
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, res)
}

func (h *Handler) recordProduction(w http.ResponseWriter, r *http.Request) {
	var req app.ProductionRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	entry, err := h.svc.RecordProduction(r.Context(), caller(r), req)
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, entry)
}

func (h *Handler) deleteProduction(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		writeError(w, r, "invalid entry id", "BAD_REQUEST", http.StatusBadRequest)
		return
	}
	if err := h.svc.DeleteProduction(r.Context(), caller(r), id); err != nil {
		respondError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
