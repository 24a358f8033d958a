package api

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/nurlan/debtnet/internal/middleware"
	"github.com/nurlan/debtnet/internal/service"
	"github.com/nurlan/debtnet/internal/storage"
)

type debtRequest struct {
	BorrowerID string `json:"borrower_id"`
	GroupID    string `json:"group_id"`
	CurrencyID string `json:"currency_id"`
	Amount     string `json:"amount"`
	DueAt      int64  `json:"due_at"`
	RemindAt   int64  `json:"remind_at"`
}

func parseAmount(s string) (decimal.Decimal, error) {
	amount, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: malformed amount", service.ErrInvalidInput)
	}
	return amount, nil
}

func (h *Handlers) ProposeDebt(w http.ResponseWriter, r *http.Request) {
	var req debtRequest
	if err := decode(r, &req); err != nil {
		writeError(w, err)
		return
	}
	amount, err := parseAmount(req.Amount)
	if err != nil {
		writeError(w, err)
		return
	}

	debt, err := h.debts.Propose(r.Context(), middleware.GetUserID(r.Context()), service.ProposeDebtInput{
		BorrowerID: req.BorrowerID,
		GroupID:    req.GroupID,
		CurrencyID: req.CurrencyID,
		Amount:     amount,
		DueAt:      req.DueAt,
		RemindAt:   req.RemindAt,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toDebtResponse(debt))
}

func (h *Handlers) GetDebt(w http.ResponseWriter, r *http.Request) {
	debt, err := h.debts.Get(r.Context(), middleware.GetUserID(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toDebtResponse(debt))
}

func (h *Handlers) ListDebts(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := storage.DebtFilter{GroupID: q.Get("group_id")}
	if v := q.Get("role"); v == "borrower" || v == "lender" {
		borrower := v == "borrower"
		filter.Borrower = &borrower
	}
	if v := q.Get("completed"); v == "true" || v == "false" {
		completed := v == "true"
		filter.Completed = &completed
	}

	debts, total, err := h.debts.List(r.Context(), middleware.GetUserID(r.Context()), filter, pageFromQuery(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, listResponse[debtResponse]{Items: toDebtResponses(debts), Total: total})
}

func (h *Handlers) AcceptDebt(w http.ResponseWriter, r *http.Request) {
	debt, err := h.debts.Accept(r.Context(), middleware.GetUserID(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toDebtResponse(debt))
}

type debtUpdateRequest struct {
	Amount   string `json:"amount"`
	DueAt    int64  `json:"due_at"`
	RemindAt int64  `json:"remind_at"`
}

func (h *Handlers) UpdateDebt(w http.ResponseWriter, r *http.Request) {
	var req debtUpdateRequest
	if err := decode(r, &req); err != nil {
		writeError(w, err)
		return
	}
	amount, err := parseAmount(req.Amount)
	if err != nil {
		writeError(w, err)
		return
	}

	debt, err := h.debts.Update(r.Context(), middleware.GetUserID(r.Context()), chi.URLParam(r, "id"),
		service.UpdateDebtInput{Amount: amount, DueAt: req.DueAt, RemindAt: req.RemindAt})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toDebtResponse(debt))
}

func (h *Handlers) DeleteDebt(w http.ResponseWriter, r *http.Request) {
	if err := h.debts.Delete(r.Context(), middleware.GetUserID(r.Context()), chi.URLParam(r, "id")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type transactionRequest struct {
	CurrencyID string `json:"currency_id"`
	Amount     string `json:"amount"`
}

func (h *Handlers) CreateTransaction(w http.ResponseWriter, r *http.Request) {
	var req transactionRequest
	if err := decode(r, &req); err != nil {
		writeError(w, err)
		return
	}
	amount, err := parseAmount(req.Amount)
	if err != nil {
		writeError(w, err)
		return
	}

	txn, err := h.transactions.Create(r.Context(), middleware.GetUserID(r.Context()),
		chi.URLParam(r, "id"), req.CurrencyID, amount)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toTransactionResponse(txn))
}

func (h *Handlers) ListTransactions(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := storage.TransactionFilter{DebtID: q.Get("debt_id")}
	if v := q.Get("direction"); v == "incoming" || v == "outgoing" {
		incoming := v == "incoming"
		filter.Incoming = &incoming
	}

	txns, total, err := h.transactions.List(r.Context(), middleware.GetUserID(r.Context()), filter, pageFromQuery(r))
	if err != nil {
		writeError(w, err)
		return
	}

	items := make([]transactionResponse, 0, len(txns))
	for _, t := range txns {
		items = append(items, toTransactionResponse(t))
	}
	writeJSON(w, http.StatusOK, listResponse[transactionResponse]{Items: items, Total: total})
}

func (h *Handlers) AcceptTransaction(w http.ResponseWriter, r *http.Request) {
	debt, err := h.transactions.Accept(r.Context(), middleware.GetUserID(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toDebtResponse(debt))
}

func (h *Handlers) DeleteTransaction(w http.ResponseWriter, r *http.Request) {
	if err := h.transactions.Delete(r.Context(), middleware.GetUserID(r.Context()), chi.URLParam(r, "id")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
