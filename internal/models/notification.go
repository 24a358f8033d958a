package models

// Notification is an in-app message for the borrower of a debt, created by
// the reminder job when a debt's reminder date arrives.
type Notification struct {
	ID        string
	DebtID    string
	Message   string
	Read      bool
	CreatedAt int64
}
