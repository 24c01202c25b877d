package web

import (
	"net/http"

	"liftledger/internal/app"
	"liftledger/internal/core"
)

func (h *Handler) listWorkers(w http.ResponseWriter, r *http.Request) {
	var status *core.WorkerStatus
	if q := r.URL.Query().Get("status"); q != "" {
		s := core.WorkerStatus(q)
		status = &s
	}
	res, err := h.svc.ListWorkers(r.Context(), caller(r), status)
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, res)
}

func (h *Handler) getWorker(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		writeError(w, r, "invalid worker id", "BAD_REQUEST", http.StatusBadRequest)
		return
	}
	worker, err := h.svc.GetWorker(r.Context(), caller(r), id)
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, worker)
}

func (h *Handler) createWorker(w http.ResponseWriter, r *http.Request) {
	var req app.WorkerRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	worker, err := h.svc.CreateWorker(r.Context(), caller(r), req)
	if err != nil {
		respondError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusCreated)
	writeJSON(w, worker)
}

func (h *Handler) updateWorker(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		writeError(w, r, "invalid worker id", "BAD_REQUEST", http.StatusBadRequest)
		return
	}
	var req app.WorkerRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	worker, err := h.svc.UpdateWorker(r.Context(), caller(r), id, req)
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, worker)
}

func (h *Handler) setWorkerStatus(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		writeError(w, r, "invalid worker id", "BAD_REQUEST", http.StatusBadRequest)
		return
	}
	var req struct {
		Status core.WorkerStatus `json:"status"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := h.svc.SetWorkerStatus(r.Context(), caller(r), id, req.Status); err != nil {
		respondError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) deleteWorker(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		writeError(w, r, "invalid worker id", "BAD_REQUEST", http.StatusBadRequest)
		return
	}
	if err := h.svc.DeleteWorker(r.Context(), caller(r), id); err != nil {
		respondError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
