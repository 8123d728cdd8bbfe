package repository

import "errors"

var (
	// ErrSchema is returned when a column operation fails for a reason other
	// than the column already existing. It aborts a run.
	ErrSchema = errors.New("schema error")

	// ErrProductNotFound is returned when no product has the requested name
	ErrProductNotFound = errors.New("product not found")
)
