package netting

import "sort"

// Reduce runs a greedy two-pointer pass over the balance list and returns
// the replacement debt set. The left pointer walks the borrower side and the
// right pointer the lender side; each step settles the smaller of the two
// magnitudes, denominated in the right side's preferred currency, and fully
// resolves at least one pointer. For n balances the result holds at most
// n-1 instructions.
//
// The pass consumes balances in slice order and does not sort. Roles are
// positional: a correct netting outcome relies on the aggregation order
// placing net debtors on the left and net creditors on the right. Callers
// who need that guarantee independent of input order can apply
// SortByBalance first; it changes which pairs settle with which but not the
// total settled amount.
//
// The input need not sum to zero: each step settles min(|left|, |right|),
// so a rounding residue from currency conversion is absorbed into the last
// emitted instruction rather than looping forever.
//
// Reduce mutates the Balance fields of its input.
func Reduce(balances []UserBalance, groupID string) []Instruction {
	var instructions []Instruction
	left := 0
	right := len(balances) - 1
	for left <= right {
		borrowerMag := balances[left].Balance.Abs()
		lenderMag := balances[right].Balance.Abs()

		switch borrowerMag.Cmp(lenderMag) {
		case 1: // borrower side is bigger; the lender side settles fully
			balances[left].Balance = borrowerMag.Sub(lenderMag)
			instructions = append(instructions, Instruction{
				LenderID:   balances[right].UserID,
				BorrowerID: balances[left].UserID,
				GroupID:    groupID,
				Amount:     lenderMag,
				CurrencyID: balances[right].PreferredCurrencyID,
			})
			right--
		case -1: // borrower side settles fully
			balances[right].Balance = lenderMag.Sub(borrowerMag)
			instructions = append(instructions, Instruction{
				LenderID:   balances[right].UserID,
				BorrowerID: balances[left].UserID,
				GroupID:    groupID,
				Amount:     borrowerMag,
				CurrencyID: balances[right].PreferredCurrencyID,
			})
			left++
		default: // both settle fully
			instructions = append(instructions, Instruction{
				LenderID:   balances[right].UserID,
				BorrowerID: balances[left].UserID,
				GroupID:    groupID,
				Amount:     borrowerMag,
				CurrencyID: balances[right].PreferredCurrencyID,
			})
			left++
			right--
		}
	}
	return instructions
}

// SortByBalance orders balances ascending by signed balance, so that net
// debtors come first and net creditors last. It is an optional, documented
// pre-step for Reduce that makes the pointer roles match the balance signs
// regardless of aggregation order. The sort is stable: participants with
// equal balances keep their aggregation order.
func SortByBalance(balances []UserBalance) {
	sort.SliceStable(balances, func(i, j int) bool {
		return balances[i].Balance.Cmp(balances[j].Balance) < 0
	})
}
