// Package repository defines error types that are reused across multiple
// repositories. These sentinel values allow higher layers such as handlers
// to distinguish between different failure scenarios without inspecting
// driver-specific errors.
package repository

import "errors"

// ErrSlotNotFound is returned when a recurring slot referenced by id does
// not exist. Handlers should translate this into an HTTP 404 response.
var ErrSlotNotFound = errors.New("slot not found")

// ErrExceptionNotFound is returned when an exception lookup or deletion by
// id or by (slot, date) matches no row. Handlers should translate this into
// an HTTP 404 response.
var ErrExceptionNotFound = errors.New("exception not found")
