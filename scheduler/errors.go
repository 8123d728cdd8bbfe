package scheduler

import "errors"

var (
	// ErrCatalog is returned when the product list cannot be read. It aborts a run.
	ErrCatalog = errors.New("catalog unavailable")

	// ErrQueueFull is returned when a run is submitted while the queue is full
	ErrQueueFull = errors.New("run queue is full")

	// ErrStopped is returned when a run is submitted after the manager stopped
	ErrStopped = errors.New("run manager stopped")
)
