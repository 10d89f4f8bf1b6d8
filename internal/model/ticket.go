package model

import "time"

// Ticket is a single confirmed reservation linking one user to one
// event, mirroring the `tickets` table. At most one ticket exists
// per (event_id, user_id) pair; the check lives inside the
// reservation transaction, not in the schema.
type Ticket struct {
	ID          uint64    `json:"id"`
	EventID     uint64    `json:"event_id"`
	UserID      uint64    `json:"user_id"`
	PurchasedAt time.Time `json:"purchased_at"`
}

// TicketWithEvent joins a ticket with its event for "my tickets"
// listings and search results.
type TicketWithEvent struct {
	ID          uint64       `json:"id"`
	PurchasedAt time.Time    `json:"purchased_at"`
	Event       EventSummary `json:"event"`
}

// TicketWithBuyer joins a ticket with its buyer for the per-event
// sold-ticket listing shown to the event owner.
type TicketWithBuyer struct {
	ID          uint64     `json:"id"`
	PurchasedAt time.Time  `json:"purchased_at"`
	User        PublicUser `json:"user"`
}
