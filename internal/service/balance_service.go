package service

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/nurlan/debtnet/internal/models"
	"github.com/nurlan/debtnet/internal/netting"
	"github.com/nurlan/debtnet/internal/storage"
)

// Balance is a user's position in their priority currency.
type Balance struct {
	// Total is Income minus Outcome.
	Total decimal.Decimal

	// Income is the sum of remainders owed to the user.
	Income decimal.Decimal

	// Outcome is the sum of remainders the user owes.
	Outcome decimal.Decimal

	// Currency is the priority currency everything is denominated in.
	Currency *models.Currency
}

// BalanceService computes user balances across open debts.
type BalanceService struct {
	store           storage.Store
	converter       netting.Converter
	defaultCurrency string
}

// NewBalanceService creates a new BalanceService. defaultCurrency is the
// ISO code used when the user has no lender-side debts.
func NewBalanceService(store storage.Store, converter netting.Converter, defaultCurrency string) *BalanceService {
	return &BalanceService{store: store, converter: converter, defaultCurrency: defaultCurrency}
}

// Balance sums the caller's open debts in their priority currency, the
// most frequent currency among their lender-side debts. An empty groupID
// spans all groups.
func (s *BalanceService) Balance(ctx context.Context, userID, groupID string) (*Balance, error) {
	debts, err := s.store.ListOpenDebtsForUser(ctx, userID, groupID)
	if err != nil {
		return nil, err
	}

	currency, err := s.priorityCurrency(ctx, userID, debts)
	if err != nil {
		return nil, err
	}

	income, outcome := decimal.Zero, decimal.Zero
	for _, debt := range debts {
		amount := debt.Remainder
		if debt.CurrencyID != currency.ID {
			amount, err = s.converter.Convert(ctx, debt.Remainder, debt.CurrencyID, currency.ID)
			if err != nil {
				return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
			}
		}
		if debt.LenderID == userID {
			income = income.Add(amount)
		} else {
			outcome = outcome.Add(amount)
		}
	}

	return &Balance{
		Total:    income.Sub(outcome),
		Income:   income,
		Outcome:  outcome,
		Currency: currency,
	}, nil
}

// priorityCurrency picks the most frequent currency among the user's
// lender-side debts, first seen winning ties, falling back to the default.
func (s *BalanceService) priorityCurrency(ctx context.Context, userID string, debts []*models.Debt) (*models.Currency, error) {
	counts := make(map[string]int)
	var order []string
	for _, debt := range debts {
		if debt.LenderID != userID {
			continue
		}
		if _, ok := counts[debt.CurrencyID]; !ok {
			order = append(order, debt.CurrencyID)
		}
		counts[debt.CurrencyID]++
	}

	best, bestCount := "", 0
	for _, currencyID := range order {
		if counts[currencyID] > bestCount {
			best, bestCount = currencyID, counts[currencyID]
		}
	}
	if best != "" {
		return s.store.GetCurrencyByID(ctx, best)
	}
	return s.store.GetCurrencyByCode(ctx, s.defaultCurrency)
}
