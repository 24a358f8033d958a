// Package api exposes the application over HTTP with a chi router.
package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/nurlan/debtnet/internal/auth"
	"github.com/nurlan/debtnet/internal/service"
	"github.com/nurlan/debtnet/internal/storage"
)

// Handlers groups all HTTP handler methods and their dependencies.
type Handlers struct {
	auth          *service.AuthService
	users         *service.UserService
	groups        *service.GroupService
	invites       *service.InviteService
	merges        *service.MergeService
	debts         *service.DebtService
	transactions  *service.TransactionService
	balances      *service.BalanceService
	ratings       *service.RatingService
	optimizations *service.OptimizationService
	notifications *service.NotificationService
	store         storage.Store
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Response encode failed", "error", err)
	}
}

// writeError maps domain errors onto HTTP status codes.
func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, storage.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, service.ErrInvalidInput):
		status = http.StatusBadRequest
	case errors.Is(err, service.ErrForbidden):
		status = http.StatusForbidden
	case errors.Is(err, service.ErrConflict):
		status = http.StatusConflict
	case errors.Is(err, service.ErrUnavailable):
		status = http.StatusServiceUnavailable
	case errors.Is(err, auth.ErrInvalidCredentials),
		errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrMissingToken):
		status = http.StatusUnauthorized
	}

	if status == http.StatusInternalServerError {
		slog.Error("Internal error", "error", err)
		writeJSON(w, status, map[string]string{"error": "internal error"})
		return
	}
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

// decode parses the JSON request body into v.
func decode(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return service.ErrInvalidInput
	}
	return nil
}

// pageFromQuery reads page/page_size query params; zero values let the
// storage layer apply its defaults.
func pageFromQuery(r *http.Request) storage.Page {
	q := r.URL.Query()
	page, _ := strconv.Atoi(q.Get("page"))
	size, _ := strconv.Atoi(q.Get("page_size"))
	return storage.Page{Number: page, Size: size}
}
