package model

import "time"

// Event represents a bookable occasion with a finite ticket pool,
// mirroring the `events` table. TicketQuantity is the REMAINING
// inventory, not the initial pool size: it is decremented by each
// successful reservation and restored when a ticket is released.
// The invariant ticket_quantity >= 0 is maintained by the
// reservation transaction; no other code path may decrement it.
//
// TicketPrice is expressed in minor currency units (cents).
type Event struct {
	ID             uint64    `json:"id"`
	UserID         uint64    `json:"user_id"`
	Title          string    `json:"title"`
	Description    *string   `json:"description"`
	Date           time.Time `json:"date"`
	Location       string    `json:"location"`
	TicketQuantity int       `json:"ticket_quantity"`
	TicketPrice    int       `json:"ticket_price"`
	CreatedAt      time.Time `json:"created_at"`
}

// EventSummary is the event payload embedded in ticket listings.
// It omits ownership and inventory fields that are irrelevant to a
// ticket holder.
type EventSummary struct {
	ID          uint64    `json:"id"`
	Title       string    `json:"title"`
	Description *string   `json:"description"`
	Date        time.Time `json:"date"`
	Location    string    `json:"location"`
	TicketPrice int       `json:"ticket_price"`
}
