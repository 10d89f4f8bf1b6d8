// Package cache implements the read-through cache in front of event
// and ticket queries. Every cacheable query maps deterministically to
// one key encoding the entity kind, its disambiguating scope (owner
// id, lower-cased search text) and paging parameters, so mutations can
// invalidate all affected variants by pattern.
package cache

import (
	"fmt"
	"strconv"
	"strings"
)

func itoa(id uint64) string { return strconv.FormatUint(id, 10) }

// EventsListKey caches one page of the public event listing.
func EventsListKey(page, limit int) string {
	return fmt.Sprintf("events:list:%d:%d", page, limit)
}

// EventDetailKey caches a single event.
func EventDetailKey(eventID uint64) string {
	return fmt.Sprintf("event:%d", eventID)
}

// EventsSearchKey caches a public search result. Query text is
// lower-cased so that differently-cased requests share one entry.
func EventsSearchKey(query string, limit int) string {
	return fmt.Sprintf("events:search:%s:%d", strings.ToLower(query), limit)
}

// MyEventsListKey caches one page of an owner's event listing.
func MyEventsListKey(userID uint64, page, limit int) string {
	return fmt.Sprintf("events:my:%d:list:%d:%d", userID, page, limit)
}

// MyEventsSearchKey caches an owner-scoped event search result.
func MyEventsSearchKey(userID uint64, query string, limit int) string {
	return fmt.Sprintf("events:my:%d:search:%s:%d", userID, strings.ToLower(query), limit)
}

// EventTicketsKey caches one page of an event's sold-ticket listing.
func EventTicketsKey(eventID uint64, page, limit int) string {
	return fmt.Sprintf("event:%d:tickets:list:%d:%d", eventID, page, limit)
}

// MyTicketsListKey caches one page of a user's ticket listing.
func MyTicketsListKey(userID uint64, page, limit int) string {
	return fmt.Sprintf("tickets:my:%d:list:%d:%d", userID, page, limit)
}

// TicketsSearchKey caches a user-scoped ticket search result.
func TicketsSearchKey(userID uint64, query string, limit int) string {
	return fmt.Sprintf("tickets:%d:search:%s:%d", userID, strings.ToLower(query), limit)
}
