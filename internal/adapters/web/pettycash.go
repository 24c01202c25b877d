package web

import (
	"net/http"
	"strconv"

	"liftledger/internal/app"
)

func (h *Handler) pettyCashOverview(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	res, err := h.svc.PettyCashOverview(r.Context(), caller(r), limit)
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, res)
}

func (h *Handler) addFunds(w http.ResponseWriter, r *http.Request) {
	var req app.TxRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	tx, err := h.svc.AddFunds(r.Context(), caller(r), req)
	if err != nil {
		respondError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusCreated)
	writeJSON(w, tx)
}

func (h *Handler) requestExpense(w http.ResponseWriter, r *http.Request) {
	var req app.TxRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	tx, err := h.svc.RequestExpense(r.Context(), caller(r), req)
	if err != nil {
		respondError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusCreated)
	writeJSON(w, tx)
}

func (h *Handler) decideExpense(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		writeError(w, r, "invalid transaction id", "BAD_REQUEST", http.StatusBadRequest)
		return
	}
	var req struct {
		Approve bool `json:"approve"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	tx, err := h.svc.DecideExpense(r.Context(), caller(r), id, req.Approve)
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, tx)
}
