package models

import "github.com/shopspring/decimal"

// Debt is an obligation from Borrower to Lender for Amount in the given
// currency. Remainder shrinks as repayment transactions are accepted and
// the debt is completed exactly when the remainder reaches zero.
//
// Invariant: 0 <= Remainder <= Amount, and Completed <=> Remainder == 0.
type Debt struct {
	// ID is the unique identifier for the debt (UUID format).
	ID string

	// LenderID is the user who is owed money.
	LenderID string

	// BorrowerID is the user who owes money.
	BorrowerID string

	// GroupID is the group this debt belongs to.
	GroupID string

	// CurrencyID is the currency the debt is denominated in.
	CurrencyID string

	// Amount is the original debt amount.
	Amount decimal.Decimal

	// Remainder is the outstanding (unpaid) amount.
	Remainder decimal.Decimal

	// Approved reports whether the borrower accepted the debt. Debts created
	// by the netting engine are auto-approved.
	Approved bool

	// Completed reports whether the debt is fully repaid or was superseded
	// by a netting run. Completed debts are kept for history, never deleted.
	Completed bool

	// CreatedAt is the Unix timestamp when the debt was created.
	CreatedAt int64

	// DueAt is the Unix timestamp the debt should be repaid by. Zero means
	// no due date.
	DueAt int64

	// RemindAt is the Unix timestamp on whose calendar day the borrower is
	// reminded about the debt. Zero means no reminder.
	RemindAt int64
}

// Transaction is a single repayment against a debt, created by the borrower
// and accepted by the lender. Accepting subtracts the amount from the debt's
// remainder. The amount is always denominated in the debt's currency.
type Transaction struct {
	ID        string
	DebtID    string
	Amount    decimal.Decimal
	Approved  bool
	CreatedAt int64
}
