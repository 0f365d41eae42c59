package repository

import "errors"

// ErrNotFound is returned when a referenced record does not exist.
// Callers use errors.Is to map it to 404s or relay error events.
var ErrNotFound = errors.New("record not found")
