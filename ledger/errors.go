/*
errors.go - Centralized error types for the ledger and its consumers

ERROR POLICY:
  Malformed records (bad dates, negative points) never produce errors;
  they are skipped record by record and the computation continues. The
  only errors defined here signal a contract violation by the caller
  (missing reference time, unknown record) and fail loudly.
*/
package ledger

import "errors"

var (
	// ErrNoReferenceTime is returned when an analytics computation is
	// invoked without an injected reference "now". The engine never
	// reads the wall clock itself.
	ErrNoReferenceTime = errors.New("reference time required")

	// ErrAccountNotFound is returned when a referenced account doesn't exist.
	ErrAccountNotFound = errors.New("account not found")

	// ErrEntryNotFound is returned when a referenced entry doesn't exist.
	ErrEntryNotFound = errors.New("entry not found")

	// ErrWithdrawalNotFound is returned when a referenced withdrawal doesn't exist.
	ErrWithdrawalNotFound = errors.New("withdrawal not found")

	// ErrAlreadyCompleted is returned when completing a withdrawal twice.
	ErrAlreadyCompleted = errors.New("withdrawal already completed")
)
