// Package service implements the application use cases on top of the
// storage, exchange and netting packages. Services are transport-free;
// the api package maps their errors onto HTTP status codes.
package service

import "errors"

var (
	// ErrInvalidInput reports a request that fails validation.
	ErrInvalidInput = errors.New("invalid input")

	// ErrForbidden reports an operation the caller is not allowed to perform.
	ErrForbidden = errors.New("operation not allowed")

	// ErrConflict reports an operation that clashes with existing state,
	// e.g. a duplicate invite or username.
	ErrConflict = errors.New("conflicting state")

	// ErrUnavailable reports a dependency outage, e.g. the exchange rate
	// provider. The operation may be retried later.
	ErrUnavailable = errors.New("temporarily unavailable")
)
