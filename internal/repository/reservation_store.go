package repository

import (
	"context"

	"github.com/tickzi/tickzi/internal/model"
)

// ReservationStore bundles the event and ticket repositories behind the
// narrow surface the reservation service transacts through. All methods
// participate in the ambient transaction installed by WithTx.
type ReservationStore struct {
	events  *EventRepo
	tickets *TicketRepo
}

// NewReservationStore constructs a ReservationStore. Both repositories
// must share the same underlying database.
func NewReservationStore(events *EventRepo, tickets *TicketRepo) *ReservationStore {
	if events == nil || tickets == nil {
		panic("nil repository passed to NewReservationStore")
	}
	return &ReservationStore{events: events, tickets: tickets}
}

// WithTx runs fn inside one transaction scope with rollback on error.
func (s *ReservationStore) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return WithTx(ctx, s.events.DB(), fn)
}

// GetEventForUpdate locks and returns the event row.
func (s *ReservationStore) GetEventForUpdate(ctx context.Context, eventID uint64) (*model.Event, error) {
	return s.events.GetForUpdate(ctx, eventID)
}

// HasTicket reports whether the user already holds a ticket for the event.
func (s *ReservationStore) HasTicket(ctx context.Context, eventID, userID uint64) (bool, error) {
	return s.tickets.Exists(ctx, eventID, userID)
}

// InsertTicket creates the ticket row.
func (s *ReservationStore) InsertTicket(ctx context.Context, t *model.Ticket) error {
	return s.tickets.Create(ctx, t)
}

// GetTicketWithOwner returns a ticket and its event's owner id.
func (s *ReservationStore) GetTicketWithOwner(ctx context.Context, ticketID uint64) (*model.Ticket, uint64, error) {
	return s.tickets.GetWithOwner(ctx, ticketID)
}

// DeleteTicket removes the ticket row, reporting whether it still existed.
func (s *ReservationStore) DeleteTicket(ctx context.Context, ticketID uint64) (bool, error) {
	return s.tickets.Delete(ctx, ticketID)
}

// AdjustTicketQuantity applies a server-side inventory delta.
func (s *ReservationStore) AdjustTicketQuantity(ctx context.Context, eventID uint64, delta int) error {
	return s.events.AdjustTicketQuantity(ctx, eventID, delta)
}
