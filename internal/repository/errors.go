// Package repository defines error types that are reused across multiple
// repositories. These sentinel values allow higher layers such as
// services and handlers to distinguish between different failure
// scenarios without knowing which database driver is in use.
package repository

import "errors"

// ErrNotFound is returned when the requested row does not exist.
var ErrNotFound = errors.New("not found")

// ErrDuplicate is returned when an insert violates a uniqueness
// constraint, for example a second friendship row for the same pair of
// users or a participant joining the same booking twice.
var ErrDuplicate = errors.New("duplicate")

// ErrConflict is returned when a conditional update matched no row
// because the row changed state concurrently (e.g. a friendship that was
// accepted by a racing request).
var ErrConflict = errors.New("conflict")
