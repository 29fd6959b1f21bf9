package storage

import "errors"

// Shared errors for the claim-record, snapshot and sample stores. All
// three are append-only: rows are written once per plan or refresh cycle
// and never updated.
var (
	// ErrNotFound is returned when a requested record does not exist.
	ErrNotFound = errors.New("not found")

	// ErrDuplicateKey is returned when inserting a row whose key already
	// exists; history rows are immutable once written.
	ErrDuplicateKey = errors.New("duplicate key: history rows are immutable")

	// ErrInvalidInput is returned when input validation fails.
	ErrInvalidInput = errors.New("invalid input")
)
