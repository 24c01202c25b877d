package web

import (
	"net/http"
	"time"

	"liftledger/internal/app"

	"github.com/shopspring/decimal"
)

func (h *Handler) listAdvances(w http.ResponseWriter, r *http.Request) {
	res, err := h.svc.ListAdvances(r.Context(), caller(r))
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, res)
}

func (h *Handler) giveAdvance(w http.ResponseWriter, r *http.Request) {
	var req app.AdvanceRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	adv, err := h.svc.GiveAdvance(r.Context(), caller(r), req)
	if err != nil {
		respondError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusCreated)
	writeJSON(w, adv)
}

func (h *Handler) advanceDetail(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		writeError(w, r, "invalid advance id", "BAD_REQUEST", http.StatusBadRequest)
		return
	}
	res, err := h.svc.AdvanceDetail(r.Context(), caller(r), id)
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, res)
}

func (h *Handler) repayAdvance(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		writeError(w, r, "invalid advance id", "BAD_REQUEST", http.StatusBadRequest)
		return
	}
	var req struct {
		Amount decimal.Decimal `json:"amount"`
		Date   time.Time       `json:"date"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	res, err := h.svc.RepayAdvance(r.Context(), caller(r), id, req.Amount, req.Date)
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, res)
}

func (h *Handler) scheduleAdvance(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		writeError(w, r, "invalid advance id", "BAD_REQUEST", http.StatusBadRequest)
		return
	}
	var req struct {
		Installments []app.InstallmentRequest `json:"installments"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	insts, err := h.svc.ScheduleAdvance(r.Context(), caller(r), id, req.Installments)
	if err != nil {
		respondError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusCreated)
	writeJSON(w, insts)
}
