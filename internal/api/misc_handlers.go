package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/nurlan/debtnet/internal/middleware"
)

func (h *Handlers) Me(w http.ResponseWriter, r *http.Request) {
	user, err := h.users.Get(r.Context(), middleware.GetUserID(r.Context()))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toUserResponse(user))
}

type profileRequest struct {
	Name    string `json:"name"`
	Surname string `json:"surname"`
}

func (h *Handlers) UpdateMe(w http.ResponseWriter, r *http.Request) {
	var req profileRequest
	if err := decode(r, &req); err != nil {
		writeError(w, err)
		return
	}

	user, err := h.users.UpdateProfile(r.Context(), middleware.GetUserID(r.Context()), req.Name, req.Surname)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toUserResponse(user))
}

func (h *Handlers) DeleteMe(w http.ResponseWriter, r *http.Request) {
	if err := h.users.Delete(r.Context(), middleware.GetUserID(r.Context())); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handlers) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, total, err := h.users.List(r.Context(), pageFromQuery(r))
	if err != nil {
		writeError(w, err)
		return
	}

	items := make([]userResponse, 0, len(users))
	for _, u := range users {
		items = append(items, toUserResponse(u))
	}
	writeJSON(w, http.StatusOK, listResponse[userResponse]{Items: items, Total: total})
}

func (h *Handlers) ListCurrencies(w http.ResponseWriter, r *http.Request) {
	currencies, err := h.store.ListCurrencies(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}

	items := make([]currencyResponse, 0, len(currencies))
	for _, c := range currencies {
		items = append(items, currencyResponse{ID: c.ID, Code: c.Code, Name: c.Name})
	}
	writeJSON(w, http.StatusOK, listResponse[currencyResponse]{Items: items, Total: len(items)})
}

func (h *Handlers) GetBalance(w http.ResponseWriter, r *http.Request) {
	balance, err := h.balances.Balance(r.Context(), middleware.GetUserID(r.Context()), r.URL.Query().Get("group_id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toBalanceResponse(balance))
}

func (h *Handlers) GetRating(w http.ResponseWriter, r *http.Request) {
	rating, err := h.ratings.UserRating(r.Context(), middleware.GetUserID(r.Context()))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]float64{"rating": rating})
}

func (h *Handlers) GetGroupRatings(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	groupID := chi.URLParam(r, "id")

	// Membership gate via the group service.
	if _, err := h.groups.GetGroup(r.Context(), userID, groupID); err != nil {
		writeError(w, err)
		return
	}

	ratings, err := h.ratings.GroupRatings(r.Context(), groupID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]map[string]float64{"ratings": ratings})
}

func (h *Handlers) ListNotifications(w http.ResponseWriter, r *http.Request) {
	notifications, total, err := h.notifications.ListUnread(r.Context(), middleware.GetUserID(r.Context()), pageFromQuery(r))
	if err != nil {
		writeError(w, err)
		return
	}

	items := make([]notificationResponse, 0, len(notifications))
	for _, n := range notifications {
		items = append(items, toNotificationResponse(n))
	}
	writeJSON(w, http.StatusOK, listResponse[notificationResponse]{Items: items, Total: total})
}

func (h *Handlers) ReadNotification(w http.ResponseWriter, r *http.Request) {
	if err := h.notifications.MarkRead(r.Context(), middleware.GetUserID(r.Context()), chi.URLParam(r, "id")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handlers) DeleteNotification(w http.ResponseWriter, r *http.Request) {
	if err := h.notifications.Delete(r.Context(), middleware.GetUserID(r.Context()), chi.URLParam(r, "id")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
