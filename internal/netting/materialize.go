package netting

import (
	"context"
	"fmt"
	"time"

	"github.com/nurlan/debtnet/internal/models"
)

// Materialize turns settlement instructions into persistable debts. Each
// instruction's amount, still expressed in the reference currency, is
// converted into the instruction's target currency with one Converter call.
// An instruction whose target already is the reference currency still takes
// the same round trip, so rounding behaves identically for every debt.
//
// The produced debts are auto-approved, skipping the usual borrower
// acceptance flow, and carry amount == remainder.
func Materialize(ctx context.Context, instructions []Instruction, referenceCurrencyID string, conv Converter) ([]*models.Debt, error) {
	debts := make([]*models.Debt, 0, len(instructions))
	now := time.Now().Unix()
	for _, in := range instructions {
		amount, err := conv.Convert(ctx, in.Amount, referenceCurrencyID, in.CurrencyID)
		if err != nil {
			return nil, fmt.Errorf("%w: settlement %s->%s: %v", ErrConversion, in.BorrowerID, in.LenderID, err)
		}
		debts = append(debts, &models.Debt{
			LenderID:   in.LenderID,
			BorrowerID: in.BorrowerID,
			GroupID:    in.GroupID,
			CurrencyID: in.CurrencyID,
			Amount:     amount,
			Remainder:  amount,
			Approved:   true,
			CreatedAt:  now,
		})
	}
	return debts, nil
}
