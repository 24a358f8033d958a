// Package storage provides abstractions for persistent data storage.
package storage

import (
	"context"
	"errors"

	"github.com/nurlan/debtnet/internal/models"
)

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("record not found")

// Page is a pagination request. Zero values normalize to the first page
// with the default size.
type Page struct {
	Number int
	Size   int
}

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// Normalize clamps the page to sane bounds.
func (p Page) Normalize() Page {
	if p.Number < 1 {
		p.Number = 1
	}
	if p.Size < 1 {
		p.Size = defaultPageSize
	}
	if p.Size > maxPageSize {
		p.Size = maxPageSize
	}
	return p
}

// Limit returns the SQL LIMIT for the page.
func (p Page) Limit() int { return p.Normalize().Size }

// Offset returns the SQL OFFSET for the page.
func (p Page) Offset() int {
	p = p.Normalize()
	return (p.Number - 1) * p.Size
}

// DebtFilter narrows debt listings. Zero values mean "no constraint".
type DebtFilter struct {
	// UserID restricts to debts where the user is lender or borrower,
	// depending on Borrower.
	UserID string

	// Borrower, when set, selects the user's borrower side (true) or
	// lender side (false). Ignored without UserID.
	Borrower *bool

	// Completed, when set, filters by completion state.
	Completed *bool

	// GroupID restricts to a single group.
	GroupID string
}

// TransactionFilter narrows repayment listings.
type TransactionFilter struct {
	// DebtID restricts to repayments of one debt.
	DebtID string

	// UserID with Incoming selects repayments against debts where the user
	// is the lender (incoming money) or the borrower (outgoing).
	UserID   string
	Incoming *bool
}

// Store defines the persistence interface for debtnet. The SQLite
// implementation lives in the sqlite subpackage; the abstraction keeps the
// service layer independent of the backend.
//
// Methods that combine several writes (AcceptInvite, AcceptTransaction,
// CompleteMerge, ApplyOptimization) are atomic: they either apply fully or
// not at all.
type Store interface {
	// Users.
	CreateUser(ctx context.Context, user *models.User) error
	GetUserByID(ctx context.Context, id string) (*models.User, error)
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	ListUsers(ctx context.Context, page Page) ([]*models.User, int, error)
	UpdateUser(ctx context.Context, user *models.User) error
	DeleteUser(ctx context.Context, id string) error

	// Email confirmation codes and refresh tokens.
	CreateConfirmationCode(ctx context.Context, code *models.ConfirmationCode) error
	GetConfirmationCode(ctx context.Context, userID, code string) (*models.ConfirmationCode, error)
	DeleteConfirmationCodes(ctx context.Context, userID string) error
	SaveRefreshToken(ctx context.Context, token *models.RefreshToken) error
	GetRefreshToken(ctx context.Context, token string) (*models.RefreshToken, error)
	InvalidateRefreshTokens(ctx context.Context, userID string) error

	// Currencies. The set is seeded by migrations and read-only at runtime.
	ListCurrencies(ctx context.Context) ([]*models.Currency, error)
	GetCurrencyByID(ctx context.Context, id string) (*models.Currency, error)
	GetCurrencyByCode(ctx context.Context, code string) (*models.Currency, error)

	// Groups.
	CreateGroup(ctx context.Context, group *models.Group) error
	GetGroup(ctx context.Context, id string) (*models.Group, error)
	ListGroupsForUser(ctx context.Context, userID string, page Page) ([]*models.Group, int, error)
	UpdateGroup(ctx context.Context, group *models.Group) error
	DeleteGroup(ctx context.Context, id string) error
	IsGroupMember(ctx context.Context, groupID, userID string) (bool, error)

	// Group invites.
	CreateInvite(ctx context.Context, invite *models.GroupInvite) error
	GetInvite(ctx context.Context, id string) (*models.GroupInvite, error)
	GetInviteForUser(ctx context.Context, groupID, invitedID string) (*models.GroupInvite, error)
	ListPendingInvites(ctx context.Context, invitedID string) ([]*models.GroupInvite, error)
	// AcceptInvite marks the invite accepted and adds the invited user to
	// the group in one transaction.
	AcceptInvite(ctx context.Context, id string) error
	UpdateInviteStatus(ctx context.Context, id string, status models.InviteStatus) error

	// Merge requests.
	CreateMergeRequest(ctx context.Context, request *models.MergeRequest) error
	GetMergeRequest(ctx context.Context, id string) (*models.MergeRequest, error)
	ListMergeRequestsForUser(ctx context.Context, userID string) ([]*models.MergeRequest, error)
	ListPendingMergeApprovals(ctx context.Context, userID string) ([]*models.MergeApproval, error)
	GetMergeApproval(ctx context.Context, id string) (*models.MergeApproval, error)
	// ResolveMergeApproval stores the approval decision and the resulting
	// request status together.
	ResolveMergeApproval(ctx context.Context, approvalID string, approved bool, status models.MergeStatus) error
	// CompleteMerge creates the merged group, moves every debt of the old
	// groups into it, drops the old groups along with approvals of other
	// merge requests touching them, and marks the request completed.
	CompleteMerge(ctx context.Context, request *models.MergeRequest, newGroup *models.Group) error

	// Debts.
	CreateDebt(ctx context.Context, debt *models.Debt) error
	GetDebt(ctx context.Context, id string) (*models.Debt, error)
	ListDebts(ctx context.Context, filter DebtFilter, page Page) ([]*models.Debt, int, error)
	UpdateDebt(ctx context.Context, debt *models.Debt) error
	DeleteDebt(ctx context.Context, id string) error
	// ListActiveDebtsAmong returns uncompleted debts whose lender and
	// borrower both belong to the participant set. This is the ledger
	// snapshot the netting engine runs on.
	ListActiveDebtsAmong(ctx context.Context, participantIDs []string) ([]*models.Debt, error)
	// ListOpenDebtsForUser returns approved, uncompleted debts where the
	// user is lender or borrower, optionally narrowed to one group.
	ListOpenDebtsForUser(ctx context.Context, userID, groupID string) ([]*models.Debt, error)
	ListLenderDebts(ctx context.Context, userID string) ([]*models.Debt, error)
	ListBorrowerDebts(ctx context.Context, userID string) ([]*models.Debt, error)
	ListGroupDebts(ctx context.Context, groupID string) ([]*models.Debt, error)
	// DebtsWithReminderBetween returns uncompleted debts whose reminder
	// timestamp falls in [from, to). Used by the reminder job.
	DebtsWithReminderBetween(ctx context.Context, from, to int64) ([]*models.Debt, error)

	// Repayment transactions.
	CreateTransaction(ctx context.Context, txn *models.Transaction) error
	GetTransaction(ctx context.Context, id string) (*models.Transaction, error)
	ListTransactions(ctx context.Context, filter TransactionFilter, page Page) ([]*models.Transaction, int, error)
	UpdateTransaction(ctx context.Context, txn *models.Transaction) error
	DeleteTransaction(ctx context.Context, id string) error
	// AcceptTransaction approves the repayment and subtracts its amount
	// from the debt's remainder, completing the debt at zero, atomically.
	AcceptTransaction(ctx context.Context, id string) error

	// Optimization requests.
	CreateOptimizationRequest(ctx context.Context, request *models.OptimizationRequest) error
	GetOptimizationRequest(ctx context.Context, id string) (*models.OptimizationRequest, error)
	ListOptimizationRequestsForUser(ctx context.Context, userID string) ([]*models.OptimizationRequest, error)
	ListPendingOptimizationApprovals(ctx context.Context, userID string) ([]*models.OptimizationApproval, error)
	GetOptimizationApproval(ctx context.Context, id string) (*models.OptimizationApproval, error)
	ApproveOptimization(ctx context.Context, approvalID string) error
	UpdateOptimizationStatus(ctx context.Context, requestID string, status models.OptimizationStatus) error
	// ApplyOptimization commits a netting run: zeroes and completes the
	// superseded debts, inserts the replacement debts, and marks the
	// request optimized, all in one transaction.
	ApplyOptimization(ctx context.Context, requestID string, closedDebtIDs []string, newDebts []*models.Debt) error

	// Notifications.
	CreateNotifications(ctx context.Context, notifications []*models.Notification) error
	GetNotification(ctx context.Context, id string) (*models.Notification, error)
	ListUnreadNotifications(ctx context.Context, borrowerID string, page Page) ([]*models.Notification, int, error)
	MarkNotificationRead(ctx context.Context, id string) error
	DeleteNotification(ctx context.Context, id string) error

	// Close releases any resources held by the store.
	Close() error
}
