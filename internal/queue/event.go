// Package queue defines message payloads exchanged over the message broker
// and the background consumer that processes them.
package queue

// TicketReservedEvent is published when a ticket reservation commits.
// It carries enough information for downstream consumers to log, notify,
// or feed analytics without querying the primary database.
type TicketReservedEvent struct {
	TicketID   uint64 `json:"ticket_id"`
	EventID    uint64 `json:"event_id"`
	UserID     uint64 `json:"user_id"`
	EventTitle string `json:"event_title"`
	EventDate  string `json:"event_date"`
	Location   string `json:"location"`
	PriceCents int    `json:"price_cents"`
	Remaining  int    `json:"remaining"`
	ReservedAt string `json:"reserved_at"`
}
