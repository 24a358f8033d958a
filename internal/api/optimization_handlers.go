package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/nurlan/debtnet/internal/middleware"
)

func (h *Handlers) CreateOptimization(w http.ResponseWriter, r *http.Request) {
	request, err := h.optimizations.Request(r.Context(), middleware.GetUserID(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toOptimizationResponse(request))
}

func (h *Handlers) ListOptimizations(w http.ResponseWriter, r *http.Request) {
	requests, err := h.optimizations.List(r.Context(), middleware.GetUserID(r.Context()))
	if err != nil {
		writeError(w, err)
		return
	}

	items := make([]optimizationResponse, 0, len(requests))
	for _, o := range requests {
		items = append(items, toOptimizationResponse(o))
	}
	writeJSON(w, http.StatusOK, listResponse[optimizationResponse]{Items: items, Total: len(items)})
}

func (h *Handlers) ApproveOptimization(w http.ResponseWriter, r *http.Request) {
	request, err := h.optimizations.Approve(r.Context(), middleware.GetUserID(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toOptimizationResponse(request))
}

func (h *Handlers) DeclineOptimization(w http.ResponseWriter, r *http.Request) {
	if err := h.optimizations.Decline(r.Context(), middleware.GetUserID(r.Context()), chi.URLParam(r, "id")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// RunOptimization executes the netting run and returns the replacement
// debts.
func (h *Handlers) RunOptimization(w http.ResponseWriter, r *http.Request) {
	newDebts, err := h.optimizations.Optimize(r.Context(), middleware.GetUserID(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, listResponse[debtResponse]{
		Items: toDebtResponses(newDebts),
		Total: len(newDebts),
	})
}
