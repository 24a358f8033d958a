package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/nurlan/debtnet/internal/middleware"
)

type groupRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

func (h *Handlers) CreateGroup(w http.ResponseWriter, r *http.Request) {
	var req groupRequest
	if err := decode(r, &req); err != nil {
		writeError(w, err)
		return
	}

	group, err := h.groups.CreateGroup(r.Context(), middleware.GetUserID(r.Context()), req.Name, req.Description)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toGroupResponse(group))
}

func (h *Handlers) GetGroup(w http.ResponseWriter, r *http.Request) {
	group, err := h.groups.GetGroup(r.Context(), middleware.GetUserID(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toGroupResponse(group))
}

func (h *Handlers) ListGroups(w http.ResponseWriter, r *http.Request) {
	groups, total, err := h.groups.ListGroups(r.Context(), middleware.GetUserID(r.Context()), pageFromQuery(r))
	if err != nil {
		writeError(w, err)
		return
	}

	items := make([]groupResponse, 0, len(groups))
	for _, g := range groups {
		items = append(items, toGroupResponse(g))
	}
	writeJSON(w, http.StatusOK, listResponse[groupResponse]{Items: items, Total: total})
}

func (h *Handlers) UpdateGroup(w http.ResponseWriter, r *http.Request) {
	var req groupRequest
	if err := decode(r, &req); err != nil {
		writeError(w, err)
		return
	}

	group, err := h.groups.UpdateGroup(r.Context(), middleware.GetUserID(r.Context()),
		chi.URLParam(r, "id"), req.Name, req.Description)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toGroupResponse(group))
}

func (h *Handlers) DeleteGroup(w http.ResponseWriter, r *http.Request) {
	if err := h.groups.DeleteGroup(r.Context(), middleware.GetUserID(r.Context()), chi.URLParam(r, "id")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type inviteRequest struct {
	Username string `json:"username"`
}

func (h *Handlers) CreateInvite(w http.ResponseWriter, r *http.Request) {
	var req inviteRequest
	if err := decode(r, &req); err != nil {
		writeError(w, err)
		return
	}

	invite, err := h.invites.Invite(r.Context(), middleware.GetUserID(r.Context()),
		chi.URLParam(r, "id"), req.Username)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toInviteResponse(invite))
}

func (h *Handlers) ListInvites(w http.ResponseWriter, r *http.Request) {
	invites, err := h.invites.ListPending(r.Context(), middleware.GetUserID(r.Context()))
	if err != nil {
		writeError(w, err)
		return
	}

	items := make([]inviteResponse, 0, len(invites))
	for _, i := range invites {
		items = append(items, toInviteResponse(i))
	}
	writeJSON(w, http.StatusOK, listResponse[inviteResponse]{Items: items, Total: len(items)})
}

func (h *Handlers) AcceptInvite(w http.ResponseWriter, r *http.Request) {
	if err := h.invites.Accept(r.Context(), middleware.GetUserID(r.Context()), chi.URLParam(r, "id")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handlers) DeclineInvite(w http.ResponseWriter, r *http.Request) {
	if err := h.invites.Decline(r.Context(), middleware.GetUserID(r.Context()), chi.URLParam(r, "id")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type mergeRequestBody struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	GroupIDs    []string `json:"group_ids"`
}

func (h *Handlers) CreateMerge(w http.ResponseWriter, r *http.Request) {
	var req mergeRequestBody
	if err := decode(r, &req); err != nil {
		writeError(w, err)
		return
	}

	request, err := h.merges.Request(r.Context(), middleware.GetUserID(r.Context()),
		req.Name, req.Description, req.GroupIDs)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toMergeResponse(request))
}

func (h *Handlers) ListMerges(w http.ResponseWriter, r *http.Request) {
	requests, err := h.merges.List(r.Context(), middleware.GetUserID(r.Context()))
	if err != nil {
		writeError(w, err)
		return
	}

	items := make([]mergeResponse, 0, len(requests))
	for _, m := range requests {
		items = append(items, toMergeResponse(m))
	}
	writeJSON(w, http.StatusOK, listResponse[mergeResponse]{Items: items, Total: len(items)})
}

func (h *Handlers) ApproveMerge(w http.ResponseWriter, r *http.Request) {
	request, err := h.merges.Approve(r.Context(), middleware.GetUserID(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toMergeResponse(request))
}

func (h *Handlers) DeclineMerge(w http.ResponseWriter, r *http.Request) {
	if err := h.merges.Decline(r.Context(), middleware.GetUserID(r.Context()), chi.URLParam(r, "id")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
