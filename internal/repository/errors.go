// Package repository defines the data access layer and the sentinel
// errors shared across repositories. The sentinels let higher layers
// distinguish failure scenarios with errors.Is and map them to HTTP
// statuses without inspecting SQL errors: ErrSoldOut and
// ErrAlreadyReserved are terminal business-rule failures that are never
// retried, while ErrForbidden indicates the caller does not own the
// resource it is operating on.
package repository

import "errors"

// ErrEventNotFound indicates that the referenced event does not exist.
// Handlers translate this into an HTTP 404 response.
var ErrEventNotFound = errors.New("event not found")

// ErrTicketNotFound indicates that the referenced ticket does not exist.
var ErrTicketNotFound = errors.New("ticket not found")

// ErrUserNotFound indicates that no user matches the given identifier
// or email.
var ErrUserNotFound = errors.New("user not found")

// ErrEmailTaken is returned on registration when the email is already
// in use. Handlers translate this into an HTTP 409 response.
var ErrEmailTaken = errors.New("email already registered")

// ErrSoldOut is returned when an event has no remaining tickets at the
// moment the reservation transaction holds the event row lock.
var ErrSoldOut = errors.New("no tickets available")

// ErrAlreadyReserved is returned when the user already holds a ticket
// for the event.
var ErrAlreadyReserved = errors.New("ticket already reserved")

// ErrForbidden is returned when the caller attempts an operation on a
// resource they do not own. Handlers translate this into an HTTP 403
// response.
var ErrForbidden = errors.New("forbidden")
