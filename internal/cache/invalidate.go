package cache

import "context"

// Invalidation sets are hand-enumerated per mutation: each write path
// below names every key pattern whose cached value could now be stale.
// Keeping the enumeration in one file is what makes it maintainable —
// a new cacheable read must add its key here for every mutation that
// affects it. A cleaner design would tag entries with the entity ids
// they depend on and invalidate by tag.
//
// Invalidation runs after the store transaction commits and is not
// atomic with it; a crash in between leaves stale entries until their
// TTL expires.

// EventCreatedPatterns covers the views a brand-new event appears in:
// the public listing, public search, and the owner's listing and
// search. No detail or ticket keys can exist for a new id.
func EventCreatedPatterns(ownerID uint64) []string {
	return []string{
		"events:list:*",
		"events:search:*",
		"events:my:" + itoa(ownerID) + ":*",
	}
}

// EventChangedPatterns covers every view of an existing event: public
// listing and search, the detail entry, the owner's listings and
// searches, and the event's sold-ticket pages (which embed nothing
// mutable today, but are dropped with the event on delete).
func EventChangedPatterns(eventID, ownerID uint64) []string {
	return []string{
		"events:list:*",
		"events:search:*",
		EventDetailKey(eventID),
		"events:my:" + itoa(ownerID) + ":*",
		"event:" + itoa(eventID) + ":tickets:*",
	}
}

// TicketMutationPatterns covers every view a reservation or release
// can change: the event's availability shows in the public listing,
// search and detail; the owner's listings embed the quantity; the
// holder's ticket listing and searches gain or lose a row; and the
// event's sold-ticket pages change.
func TicketMutationPatterns(eventID, eventOwnerID, holderID uint64) []string {
	return []string{
		"events:list:*",
		"events:search:*",
		EventDetailKey(eventID),
		"events:my:" + itoa(eventOwnerID) + ":*",
		"event:" + itoa(eventID) + ":tickets:*",
		"tickets:my:" + itoa(holderID) + ":*",
		"tickets:" + itoa(holderID) + ":search:*",
	}
}

// InvalidateEventCreated drops the cached views affected by a new event.
func (s *Store) InvalidateEventCreated(ctx context.Context, ownerID uint64) {
	s.deletePatterns(ctx, EventCreatedPatterns(ownerID))
}

// InvalidateEventChanged drops the cached views affected by an event
// update or delete.
func (s *Store) InvalidateEventChanged(ctx context.Context, eventID, ownerID uint64) {
	s.deletePatterns(ctx, EventChangedPatterns(eventID, ownerID))
}

// InvalidateTicketMutation drops the cached views affected by a
// reservation or release.
func (s *Store) InvalidateTicketMutation(ctx context.Context, eventID, eventOwnerID, holderID uint64) {
	s.deletePatterns(ctx, TicketMutationPatterns(eventID, eventOwnerID, holderID))
}
