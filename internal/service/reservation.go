// Package service implements the reservation transactor: the one code
// path allowed to create tickets and move event inventory.
package service

import (
	"context"

	"github.com/tickzi/tickzi/internal/model"
	"github.com/tickzi/tickzi/internal/repository"
)

// Store is the persistence surface the reservation service transacts
// through. Implementations must guarantee that methods called inside
// the WithTx callback share one transaction, that any error returned
// from the callback rolls the transaction back, and that
// GetEventForUpdate takes an exclusive lock on the event row which is
// held until the transaction ends.
type Store interface {
	WithTx(ctx context.Context, fn func(ctx context.Context) error) error
	GetEventForUpdate(ctx context.Context, eventID uint64) (*model.Event, error)
	HasTicket(ctx context.Context, eventID, userID uint64) (bool, error)
	InsertTicket(ctx context.Context, t *model.Ticket) error
	GetTicketWithOwner(ctx context.Context, ticketID uint64) (*model.Ticket, uint64, error)
	DeleteTicket(ctx context.Context, ticketID uint64) (bool, error)
	AdjustTicketQuantity(ctx context.Context, eventID uint64, delta int) error
}

// Reservation executes atomic ticket reservations and releases.
// Correctness across server processes comes entirely from the event
// row lock, not from in-process synchronization.
type Reservation struct {
	store Store
}

// NewReservation constructs the service over the given store.
func NewReservation(store Store) *Reservation {
	if store == nil {
		panic("nil store passed to NewReservation")
	}
	return &Reservation{store: store}
}

// Released describes the outcome of a ticket release, carrying the ids
// the caller needs to invalidate cached views of the affected event and
// users.
type Released struct {
	TicketID     uint64
	EventID      uint64
	EventOwnerID uint64
	HolderID     uint64
}

// Reserve atomically creates one ticket for (eventID, userID) and
// decrements the event's remaining inventory, or fails with no side
// effects. The protocol inside one transaction is: lock the event row,
// check existence, check availability, check for a duplicate ticket,
// insert, decrement, commit. Concurrent attempts against the same
// event block on the row lock and observe each other's committed
// writes, so for N attempts against K remaining tickets exactly
// min(N, K) succeed and inventory never goes negative.
//
// The duplicate check reads the tickets table without a lock of its
// own. That is race-free only because this method locks the event row
// first; if the lock step is ever removed or reordered, the
// one-ticket-per-user guarantee goes with it.
//
// Error kinds: repository.ErrEventNotFound, repository.ErrSoldOut,
// repository.ErrAlreadyReserved. None of them are retried here.
func (s *Reservation) Reserve(ctx context.Context, eventID, userID uint64) (*model.Ticket, *model.Event, error) {
	var ticket *model.Ticket
	var event *model.Event

	err := s.store.WithTx(ctx, func(txCtx context.Context) error {
		ev, err := s.store.GetEventForUpdate(txCtx, eventID)
		if err != nil {
			return err
		}
		if ev.TicketQuantity <= 0 {
			return repository.ErrSoldOut
		}
		taken, err := s.store.HasTicket(txCtx, eventID, userID)
		if err != nil {
			return err
		}
		if taken {
			return repository.ErrAlreadyReserved
		}

		t := &model.Ticket{EventID: eventID, UserID: userID}
		if err := s.store.InsertTicket(txCtx, t); err != nil {
			return err
		}
		if err := s.store.AdjustTicketQuantity(txCtx, eventID, -1); err != nil {
			return err
		}

		ev.TicketQuantity--
		ticket = t
		event = ev
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	return ticket, event, nil
}

// Release deletes a ticket and restores one unit of inventory to its
// event. Permitted for the ticket holder or the event owner; anyone
// else gets repository.ErrForbidden. The event row is locked before
// the delete so that a concurrent release of the same ticket observes
// the deletion and cannot restore the unit twice.
func (s *Reservation) Release(ctx context.Context, ticketID, userID uint64) (*Released, error) {
	var out *Released

	err := s.store.WithTx(ctx, func(txCtx context.Context) error {
		t, eventOwnerID, err := s.store.GetTicketWithOwner(txCtx, ticketID)
		if err != nil {
			return err
		}
		if userID != t.UserID && userID != eventOwnerID {
			return repository.ErrForbidden
		}
		if _, err := s.store.GetEventForUpdate(txCtx, t.EventID); err != nil {
			return err
		}
		deleted, err := s.store.DeleteTicket(txCtx, ticketID)
		if err != nil {
			return err
		}
		if !deleted {
			// Lost the race to another release after our unlocked read.
			return repository.ErrTicketNotFound
		}
		if err := s.store.AdjustTicketQuantity(txCtx, t.EventID, +1); err != nil {
			return err
		}

		out = &Released{
			TicketID:     ticketID,
			EventID:      t.EventID,
			EventOwnerID: eventOwnerID,
			HolderID:     t.UserID,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}
