// Package repository defines error values that are reused across
// multiple repositories.  These sentinels let higher layers such as
// handlers distinguish failure scenarios with errors.Is instead of
// inspecting driver errors.  Repositories translate sql.ErrNoRows
// into the specific not-found sentinel for the record they serve.
package repository

import "errors"

// ErrBookingNotFound is returned when a referenced meal booking does
// not exist, or does not belong to the user the caller named.
var ErrBookingNotFound = errors.New("booking not found")

// ErrUserNotFound is returned when a referenced user does not exist.
var ErrUserNotFound = errors.New("user not found")

// ErrForbidden is returned when the caller attempts an operation on
// a resource they do not own.  Handlers translate this into an HTTP
// 403 response.
var ErrForbidden = errors.New("forbidden")

// ErrConflict is returned when an update cannot be performed because
// of conflicting state, such as issuing a booking that has already
// been served.  Handlers translate this into an HTTP 409 response.
var ErrConflict = errors.New("conflict")
