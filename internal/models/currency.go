package models

// Currency is a supported settlement currency. The set of currencies is
// seeded at migration time; rates between them come from the exchange
// service at conversion time and are never stored.
type Currency struct {
	// ID is the unique identifier for the currency (UUID format).
	ID string

	// Code is the ISO 4217 code, e.g. "USD".
	Code string

	// Name is the human-readable currency name.
	Name string
}
