// Package netting implements the balance reduction engine: it collapses the
// web of mutual debts inside a group into a minimal set of replacement debts.
//
// The engine is a pure pipeline over data supplied by the caller:
//
//	AggregateBalances -> Reduce -> Materialize
//
// It owns no persistent state. Reading the debt snapshot and atomically
// applying the result is the caller's job, as is making sure at most one
// run per group executes at a time; the engine does not lock the ledger
// while it converts currencies in between.
package netting

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"
)

// ErrConversion wraps any currency conversion failure. A single failed
// conversion aborts the entire run with no partial result.
var ErrConversion = errors.New("currency conversion failed")

// Converter converts an amount between two currencies. Implementations may
// suspend on network I/O; the engine calls it once per debt during
// aggregation and once per instruction during materialization, sequentially.
type Converter interface {
	Convert(ctx context.Context, amount decimal.Decimal, fromCurrencyID, toCurrencyID string) (decimal.Decimal, error)
}

// UserBalance is one participant's net position in the reference currency.
// Positive means the group owes the user, negative means the user owes the
// group. Built fresh per run and discarded afterwards.
type UserBalance struct {
	UserID string

	// Balance is the net amount in the reference currency. Note that Reduce
	// overwrites this field with unsigned residual magnitudes as it settles;
	// callers must not reuse the slice after reduction.
	Balance decimal.Decimal

	// PreferredCurrencyID is the currency new debts owed to this user are
	// denominated in.
	PreferredCurrencyID string
}

// Instruction is one computed replacement debt: Borrower owes Lender Amount
// in the given currency. Amount is expressed in the reference currency; the
// materializer re-denominates it into CurrencyID.
type Instruction struct {
	LenderID   string
	BorrowerID string
	GroupID    string
	Amount     decimal.Decimal
	CurrencyID string
}
