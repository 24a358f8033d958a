// Package models defines the core domain models for debtnet.
//
// # Overview
//
// debtnet tracks debts between members of groups:
//   - User: a registered account, identified by a UUID
//   - Group: a set of users who lend to and borrow from each other
//   - Debt: an obligation from a borrower to a lender, with a shrinking
//     remainder as repayments are accepted
//   - Transaction: a single repayment against a debt
//   - OptimizationRequest: a proposal to net out the mutual debts of a group
//   - MergeRequest: a proposal to fold several groups into one
//
// # Money
//
// All monetary amounts are shopspring decimals, never floats. Each amount
// carries a currency via CurrencyID; cross-currency arithmetic goes through
// the exchange service.
//
// # Design Principles
//
//  1. **Flat references**: models reference each other by ID strings rather
//     than pointers, avoiding circular object graphs
//  2. **Soft closure**: debts are never deleted by the netting engine, only
//     marked completed with a zero remainder
//  3. **Unix timestamps**: all times are Unix seconds; zero means unset
package models
