package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/tickzi/tickzi/internal/cache"
	"github.com/tickzi/tickzi/internal/model"
	"github.com/tickzi/tickzi/internal/queue"
	"github.com/tickzi/tickzi/internal/repository"
	"github.com/tickzi/tickzi/internal/service"
)

// Reserver is the slice of the reservation service the ticket handler
// needs. Declared here so tests can substitute a fake.
type Reserver interface {
	Reserve(ctx context.Context, eventID, userID uint64) (*model.Ticket, *model.Event, error)
	Release(ctx context.Context, ticketID, userID uint64) (*service.Released, error)
}

// TicketHandler serves ticket reservation, release and listing
// endpoints. Publish is optional; when nil, broker notifications are
// skipped entirely.
type TicketHandler struct {
	Reservations Reserver
	Tickets      *repository.TicketRepo
	Cache        *cache.Store
	Publish      func(ctx context.Context, event queue.TicketReservedEvent) error
}

// NewTicketHandler constructs a TicketHandler with its dependencies.
func NewTicketHandler(reservations Reserver, tickets *repository.TicketRepo, store *cache.Store) *TicketHandler {
	if reservations == nil || tickets == nil {
		panic("nil dependency passed to NewTicketHandler")
	}
	return &TicketHandler{Reservations: reservations, Tickets: tickets, Cache: store}
}

type reserveReq struct {
	EventID uint64 `json:"event_id"`
}

// Reserve handles POST /v1/tickets. The service does the whole
// reservation in one transaction; the handler only maps outcomes to
// statuses, invalidates caches and notifies the broker.
func (h *TicketHandler) Reserve(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var req reserveReq
	if err := c.Bind(&req); err != nil || req.EventID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "event_id is required"})
	}

	ctx := c.Request().Context()
	ticket, event, err := h.Reservations.Reserve(ctx, req.EventID, userID)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrEventNotFound):
			return c.JSON(http.StatusNotFound, echo.Map{"success": false, "error": "Event not found"})
		case errors.Is(err, repository.ErrSoldOut):
			return c.JSON(http.StatusBadRequest, echo.Map{"success": false, "error": "Tickets are sold out"})
		case errors.Is(err, repository.ErrAlreadyReserved):
			return c.JSON(http.StatusBadRequest, echo.Map{"success": false, "error": "You already have a ticket for this event"})
		default:
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal server error"})
		}
	}

	h.Cache.InvalidateTicketMutation(ctx, event.ID, event.UserID, userID)

	if h.Publish != nil {
		// Best effort: a committed reservation is never rolled back
		// because the broker is unreachable.
		_ = h.Publish(ctx, queue.TicketReservedEvent{
			TicketID:   ticket.ID,
			EventID:    event.ID,
			UserID:     userID,
			EventTitle: event.Title,
			EventDate:  event.Date.UTC().Format(time.RFC3339),
			Location:   event.Location,
			PriceCents: event.TicketPrice,
			Remaining:  event.TicketQuantity,
			ReservedAt: time.Now().UTC().Format(time.RFC3339),
		})
	}

	return c.JSON(http.StatusCreated, echo.Map{
		"success": true,
		"message": "Ticket reserved successfully",
		"data":    ticket,
	})
}

// Delete handles DELETE /v1/tickets/:id. Allowed for the ticket holder
// or the owner of the event; restores one unit of inventory.
func (h *TicketHandler) Delete(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	ticketID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || ticketID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid ticket id"})
	}

	ctx := c.Request().Context()
	rel, err := h.Reservations.Release(ctx, ticketID, userID)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrTicketNotFound):
			return c.JSON(http.StatusNotFound, echo.Map{"success": false, "error": "Ticket not found"})
		case errors.Is(err, repository.ErrEventNotFound):
			return c.JSON(http.StatusNotFound, echo.Map{"success": false, "error": "Event not found"})
		case errors.Is(err, repository.ErrForbidden):
			return c.JSON(http.StatusForbidden, echo.Map{"success": false, "error": "forbidden"})
		default:
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal server error"})
		}
	}

	h.Cache.InvalidateTicketMutation(ctx, rel.EventID, rel.EventOwnerID, rel.HolderID)
	return c.NoContent(http.StatusNoContent)
}

// ListMine handles GET /v1/tickets, the caller's tickets with their
// event details embedded.
func (h *TicketHandler) ListMine(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	page, limit := parsePagination(c)
	ctx := c.Request().Context()

	key := cache.MyTicketsListKey(userID, page, limit)
	var cached paginatedResponse
	if h.Cache.Get(ctx, key, &cached) {
		return c.JSON(http.StatusOK, cached)
	}

	tickets, total, err := h.Tickets.ListByUser(ctx, userID, page, limit)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal server error"})
	}
	resp := paginatedResponse{Success: true, Data: tickets, Pagination: newPagination(page, limit, total)}
	h.Cache.SetList(ctx, key, resp)
	return c.JSON(http.StatusOK, resp)
}

// SearchMine handles GET /v1/tickets/search?q=...&limit=... and matches
// against the event fields of the caller's tickets.
func (h *TicketHandler) SearchMine(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	q, limit, ok := parseSearch(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "q is required"})
	}
	ctx := c.Request().Context()

	key := cache.TicketsSearchKey(userID, q, limit)
	var cached []model.TicketWithEvent
	if h.Cache.Get(ctx, key, &cached) {
		return c.JSON(http.StatusOK, searchResponse{Success: true, Data: cached, Query: q})
	}

	tickets, err := h.Tickets.SearchByUser(ctx, userID, q, limit)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal server error"})
	}
	h.Cache.SetSearch(ctx, key, tickets)
	return c.JSON(http.StatusOK, searchResponse{Success: true, Data: tickets, Query: q})
}
