package netting

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/nurlan/debtnet/internal/models"
)

// AggregateBalances computes each participant's net balance in the reference
// currency. The input debts must already be filtered to uncompleted debts
// whose lender and borrower are both participants.
//
// For every participant, each of their debts' remainders is converted into
// the reference currency (one Converter call per debt per side) and summed:
// lender-side amounts count positive, borrower-side negative. Participants
// whose net balance is exactly zero have nothing to settle and are dropped.
//
// The output order follows the participants slice; Reduce depends on it.
func AggregateBalances(ctx context.Context, debts []*models.Debt, participants []string, referenceCurrencyID string, conv Converter) ([]UserBalance, error) {
	balances := make([]UserBalance, 0, len(participants))
	for _, userID := range participants {
		net := decimal.Zero
		for _, debt := range debts {
			if debt.LenderID != userID && debt.BorrowerID != userID {
				continue
			}
			amount, err := conv.Convert(ctx, debt.Remainder, debt.CurrencyID, referenceCurrencyID)
			if err != nil {
				return nil, fmt.Errorf("%w: debt %s: %v", ErrConversion, debt.ID, err)
			}
			if debt.LenderID == userID {
				net = net.Add(amount)
			} else {
				net = net.Sub(amount)
			}
		}
		if net.IsZero() {
			continue
		}
		balances = append(balances, UserBalance{
			UserID:              userID,
			Balance:             net,
			PreferredCurrencyID: preferredCurrency(debts, userID, referenceCurrencyID),
		})
	}
	return balances, nil
}

// preferredCurrency picks the currency appearing most often among the debts
// where the user is the lender. Ties go to the currency encountered first.
// A user who never lent anything falls back to the reference currency.
func preferredCurrency(debts []*models.Debt, userID, referenceCurrencyID string) string {
	counts := make(map[string]int)
	var order []string
	for _, debt := range debts {
		if debt.LenderID != userID {
			continue
		}
		if counts[debt.CurrencyID] == 0 {
			order = append(order, debt.CurrencyID)
		}
		counts[debt.CurrencyID]++
	}

	preferred := referenceCurrencyID
	best := 0
	for _, currencyID := range order {
		if counts[currencyID] > best {
			preferred = currencyID
			best = counts[currencyID]
		}
	}
	return preferred
}
