package api

import (
	"github.com/nurlan/debtnet/internal/models"
	"github.com/nurlan/debtnet/internal/service"
)

type userResponse struct {
	ID        string `json:"id"`
	Username  string `json:"username"`
	Name      string `json:"name"`
	Surname   string `json:"surname,omitempty"`
	Email     string `json:"email"`
	CreatedAt int64  `json:"created_at"`
}

func toUserResponse(u *models.User) userResponse {
	return userResponse{
		ID:        u.ID,
		Username:  u.Username,
		Name:      u.Name,
		Surname:   u.Surname,
		Email:     u.Email,
		CreatedAt: u.CreatedAt,
	}
}

type groupResponse struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description,omitempty"`
	Members     []string `json:"members"`
	CreatedAt   int64    `json:"created_at"`
}

func toGroupResponse(g *models.Group) groupResponse {
	return groupResponse{
		ID:          g.ID,
		Name:        g.Name,
		Description: g.Description,
		Members:     g.Members,
		CreatedAt:   g.CreatedAt,
	}
}

type currencyResponse struct {
	ID   string `json:"id"`
	Code string `json:"code"`
	Name string `json:"name"`
}

// Monetary amounts travel as decimal strings, never floats.
type debtResponse struct {
	ID         string `json:"id"`
	LenderID   string `json:"lender_id"`
	BorrowerID string `json:"borrower_id"`
	GroupID    string `json:"group_id"`
	CurrencyID string `json:"currency_id"`
	Amount     string `json:"amount"`
	Remainder  string `json:"remainder"`
	Approved   bool   `json:"approved"`
	Completed  bool   `json:"completed"`
	CreatedAt  int64  `json:"created_at"`
	DueAt      int64  `json:"due_at,omitempty"`
	RemindAt   int64  `json:"remind_at,omitempty"`
}

func toDebtResponse(d *models.Debt) debtResponse {
	return debtResponse{
		ID:         d.ID,
		LenderID:   d.LenderID,
		BorrowerID: d.BorrowerID,
		GroupID:    d.GroupID,
		CurrencyID: d.CurrencyID,
		Amount:     d.Amount.String(),
		Remainder:  d.Remainder.String(),
		Approved:   d.Approved,
		Completed:  d.Completed,
		CreatedAt:  d.CreatedAt,
		DueAt:      d.DueAt,
		RemindAt:   d.RemindAt,
	}
}

func toDebtResponses(debts []*models.Debt) []debtResponse {
	out := make([]debtResponse, 0, len(debts))
	for _, d := range debts {
		out = append(out, toDebtResponse(d))
	}
	return out
}

type transactionResponse struct {
	ID        string `json:"id"`
	DebtID    string `json:"debt_id"`
	Amount    string `json:"amount"`
	Approved  bool   `json:"approved"`
	CreatedAt int64  `json:"created_at"`
}

func toTransactionResponse(t *models.Transaction) transactionResponse {
	return transactionResponse{
		ID:        t.ID,
		DebtID:    t.DebtID,
		Amount:    t.Amount.String(),
		Approved:  t.Approved,
		CreatedAt: t.CreatedAt,
	}
}

type inviteResponse struct {
	ID        string `json:"id"`
	GroupID   string `json:"group_id"`
	InviterID string `json:"inviter_id"`
	InvitedID string `json:"invited_id"`
	Status    string `json:"status"`
	CreatedAt int64  `json:"created_at"`
}

func toInviteResponse(i *models.GroupInvite) inviteResponse {
	return inviteResponse{
		ID:        i.ID,
		GroupID:   i.GroupID,
		InviterID: i.InviterID,
		InvitedID: i.InvitedID,
		Status:    string(i.Status),
		CreatedAt: i.CreatedAt,
	}
}

type approvalResponse struct {
	ID        string `json:"id"`
	RequestID string `json:"request_id"`
	UserID    string `json:"user_id"`
	Approved  bool   `json:"approved"`
}

type mergeResponse struct {
	ID             string             `json:"id"`
	InitiatorID    string             `json:"initiator_id"`
	NewName        string             `json:"new_name"`
	NewDescription string             `json:"new_description,omitempty"`
	Status         string             `json:"status"`
	GroupIDs       []string           `json:"group_ids"`
	Approvals      []approvalResponse `json:"approvals"`
	CreatedAt      int64              `json:"created_at"`
}

func toMergeResponse(m *models.MergeRequest) mergeResponse {
	resp := mergeResponse{
		ID:             m.ID,
		InitiatorID:    m.InitiatorID,
		NewName:        m.NewName,
		NewDescription: m.NewDescription,
		Status:         string(m.Status),
		GroupIDs:       m.GroupIDs,
		CreatedAt:      m.CreatedAt,
	}
	for _, a := range m.Approvals {
		resp.Approvals = append(resp.Approvals, approvalResponse{
			ID:        a.ID,
			RequestID: a.MergeRequestID,
			UserID:    a.UserID,
			Approved:  a.Approved,
		})
	}
	return resp
}

type optimizationResponse struct {
	ID          string             `json:"id"`
	GroupID     string             `json:"group_id"`
	InitiatorID string             `json:"initiator_id"`
	Status      string             `json:"status"`
	Approvals   []approvalResponse `json:"approvals"`
	CreatedAt   int64              `json:"created_at"`
}

func toOptimizationResponse(o *models.OptimizationRequest) optimizationResponse {
	resp := optimizationResponse{
		ID:          o.ID,
		GroupID:     o.GroupID,
		InitiatorID: o.InitiatorID,
		Status:      string(o.Status),
		CreatedAt:   o.CreatedAt,
	}
	for _, a := range o.Approvals {
		resp.Approvals = append(resp.Approvals, approvalResponse{
			ID:        a.ID,
			RequestID: a.RequestID,
			UserID:    a.UserID,
			Approved:  a.Approved,
		})
	}
	return resp
}

type balanceResponse struct {
	Total    string           `json:"total"`
	Income   string           `json:"income"`
	Outcome  string           `json:"outcome"`
	Currency currencyResponse `json:"currency"`
}

func toBalanceResponse(b *service.Balance) balanceResponse {
	return balanceResponse{
		Total:   b.Total.String(),
		Income:  b.Income.String(),
		Outcome: b.Outcome.String(),
		Currency: currencyResponse{
			ID:   b.Currency.ID,
			Code: b.Currency.Code,
			Name: b.Currency.Name,
		},
	}
}

type notificationResponse struct {
	ID        string `json:"id"`
	DebtID    string `json:"debt_id"`
	Message   string `json:"message"`
	Read      bool   `json:"read"`
	CreatedAt int64  `json:"created_at"`
}

func toNotificationResponse(n *models.Notification) notificationResponse {
	return notificationResponse{
		ID:        n.ID,
		DebtID:    n.DebtID,
		Message:   n.Message,
		Read:      n.Read,
		CreatedAt: n.CreatedAt,
	}
}

// listResponse wraps paged collections.
type listResponse[T any] struct {
	Items []T `json:"items"`
	Total int `json:"total"`
}
