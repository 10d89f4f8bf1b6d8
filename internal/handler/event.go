package handler

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/tickzi/tickzi/internal/cache"
	"github.com/tickzi/tickzi/internal/model"
	"github.com/tickzi/tickzi/internal/repository"
)

// EventHandler serves event CRUD, listings and search. Every read goes
// through the cache store first; every mutation invalidates the
// affected key patterns after the database write succeeds.
type EventHandler struct {
	Events  *repository.EventRepo
	Tickets *repository.TicketRepo
	Cache   *cache.Store
}

// NewEventHandler constructs an EventHandler with its dependencies.
func NewEventHandler(events *repository.EventRepo, tickets *repository.TicketRepo, store *cache.Store) *EventHandler {
	if events == nil || tickets == nil {
		panic("nil repository passed to NewEventHandler")
	}
	return &EventHandler{Events: events, Tickets: tickets, Cache: store}
}

// ----- DTOs -----

type createEventReq struct {
	Title          string  `json:"title"`
	Description    *string `json:"description"`
	Date           string  `json:"date"`
	Location       string  `json:"location"`
	TicketQuantity int     `json:"ticket_quantity"`
	TicketPrice    int     `json:"ticket_price"`
}

type updateEventReq struct {
	Title          *string `json:"title"`
	Description    *string `json:"description"`
	Date           *string `json:"date"`
	Location       *string `json:"location"`
	TicketQuantity *int    `json:"ticket_quantity"`
	TicketPrice    *int    `json:"ticket_price"`
}

// parseEventDate accepts RFC3339 or the DB timestamp layout.
func parseEventDate(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t.UTC(), nil
	}
	t, err := time.Parse("2006-01-02 15:04:05", s)
	if err != nil {
		return time.Time{}, err
	}
	return t.UTC(), nil
}

func parseEventID(c echo.Context) (uint64, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	return id, err == nil && id != 0
}

// List handles GET /v1/events. Only events with remaining inventory
// are listed publicly, ordered by date ascending.
func (h *EventHandler) List(c echo.Context) error {
	page, limit := parsePagination(c)
	ctx := c.Request().Context()

	key := cache.EventsListKey(page, limit)
	var cached paginatedResponse
	if h.Cache.Get(ctx, key, &cached) {
		return c.JSON(http.StatusOK, cached)
	}

	events, total, err := h.Events.ListPublic(ctx, page, limit)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal server error"})
	}
	resp := paginatedResponse{Success: true, Data: events, Pagination: newPagination(page, limit, total)}
	h.Cache.SetList(ctx, key, resp)
	return c.JSON(http.StatusOK, resp)
}

// Search handles GET /v1/events/search?q=...&limit=...
func (h *EventHandler) Search(c echo.Context) error {
	q, limit, ok := parseSearch(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "q is required"})
	}
	ctx := c.Request().Context()

	key := cache.EventsSearchKey(q, limit)
	var cached []model.Event
	if h.Cache.Get(ctx, key, &cached) {
		return c.JSON(http.StatusOK, searchResponse{Success: true, Data: cached, Query: q})
	}

	events, err := h.Events.SearchPublic(ctx, q, limit)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal server error"})
	}
	h.Cache.SetSearch(ctx, key, events)
	return c.JSON(http.StatusOK, searchResponse{Success: true, Data: events, Query: q})
}

// ListMine handles GET /v1/events/my-events for the authenticated owner.
func (h *EventHandler) ListMine(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	page, limit := parsePagination(c)
	ctx := c.Request().Context()

	key := cache.MyEventsListKey(userID, page, limit)
	var cached paginatedResponse
	if h.Cache.Get(ctx, key, &cached) {
		return c.JSON(http.StatusOK, cached)
	}

	events, total, err := h.Events.ListByOwner(ctx, userID, page, limit)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal server error"})
	}
	resp := paginatedResponse{Success: true, Data: events, Pagination: newPagination(page, limit, total)}
	h.Cache.SetList(ctx, key, resp)
	return c.JSON(http.StatusOK, resp)
}

// SearchMine handles GET /v1/events/my-events/search?q=...&limit=...
func (h *EventHandler) SearchMine(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	q, limit, ok := parseSearch(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "q is required"})
	}
	ctx := c.Request().Context()

	key := cache.MyEventsSearchKey(userID, q, limit)
	var cached []model.Event
	if h.Cache.Get(ctx, key, &cached) {
		return c.JSON(http.StatusOK, searchResponse{Success: true, Data: cached, Query: q})
	}

	events, err := h.Events.SearchByOwner(ctx, userID, q, limit)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal server error"})
	}
	h.Cache.SetSearch(ctx, key, events)
	return c.JSON(http.StatusOK, searchResponse{Success: true, Data: events, Query: q})
}

// Get handles GET /v1/events/:id.
func (h *EventHandler) Get(c echo.Context) error {
	id, ok := parseEventID(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid event id"})
	}
	ctx := c.Request().Context()

	key := cache.EventDetailKey(id)
	var cached model.Event
	if h.Cache.Get(ctx, key, &cached) {
		return c.JSON(http.StatusOK, echo.Map{"success": true, "data": cached})
	}

	event, err := h.Events.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrEventNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"success": false, "error": "Event not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal server error"})
	}
	h.Cache.SetDetail(ctx, key, event)
	return c.JSON(http.StatusOK, echo.Map{"success": true, "data": event})
}

// ListEventTickets handles GET /v1/events/:id/tickets. Only the event
// owner may see who bought tickets. The ownership check runs before
// the cache is consulted so a cached page never leaks to a non-owner.
func (h *EventHandler) ListEventTickets(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, ok := parseEventID(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid event id"})
	}
	page, limit := parsePagination(c)
	ctx := c.Request().Context()

	event, err := h.Events.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrEventNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"success": false, "error": "Event not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal server error"})
	}
	if event.UserID != userID {
		return c.JSON(http.StatusForbidden, echo.Map{"success": false, "error": "forbidden"})
	}

	key := cache.EventTicketsKey(id, page, limit)
	var cached paginatedResponse
	if h.Cache.Get(ctx, key, &cached) {
		return c.JSON(http.StatusOK, cached)
	}

	tickets, total, err := h.Tickets.ListByEvent(ctx, id, page, limit)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal server error"})
	}
	resp := paginatedResponse{Success: true, Data: tickets, Pagination: newPagination(page, limit, total)}
	h.Cache.SetList(ctx, key, resp)
	return c.JSON(http.StatusOK, resp)
}

// Create handles POST /v1/events.
func (h *EventHandler) Create(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var req createEventReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if req.Title == "" || req.Location == "" || req.Date == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "title, date and location are required"})
	}
	if req.TicketQuantity < 1 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "ticket_quantity must be at least 1"})
	}
	if req.TicketPrice < 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "ticket_price must be at least 0"})
	}
	if req.Description != nil && len(*req.Description) > 500 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "description must be at most 500 characters"})
	}
	date, err := parseEventDate(req.Date)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid date"})
	}

	ctx := c.Request().Context()
	event := &model.Event{
		UserID:         userID,
		Title:          req.Title,
		Description:    req.Description,
		Date:           date,
		Location:       req.Location,
		TicketQuantity: req.TicketQuantity,
		TicketPrice:    req.TicketPrice,
	}
	if err := h.Events.Create(ctx, event); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal server error"})
	}

	h.Cache.InvalidateEventCreated(ctx, userID)
	return c.JSON(http.StatusCreated, echo.Map{
		"success": true,
		"message": "Event created successfully",
		"data":    event,
	})
}

// Update handles PUT /v1/events/:id. Fields absent from the body keep
// their current values.
func (h *EventHandler) Update(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, ok := parseEventID(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid event id"})
	}
	var req updateEventReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}

	ctx := c.Request().Context()
	event, err := h.Events.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrEventNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"success": false, "error": "Event not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal server error"})
	}
	if event.UserID != userID {
		return c.JSON(http.StatusForbidden, echo.Map{"success": false, "error": "forbidden"})
	}

	if req.Title != nil {
		if *req.Title == "" {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "title cannot be empty"})
		}
		event.Title = *req.Title
	}
	if req.Description != nil {
		if len(*req.Description) > 500 {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "description must be at most 500 characters"})
		}
		event.Description = req.Description
	}
	if req.Date != nil {
		date, err := parseEventDate(*req.Date)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid date"})
		}
		event.Date = date
	}
	if req.Location != nil {
		if *req.Location == "" {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "location cannot be empty"})
		}
		event.Location = *req.Location
	}
	if req.TicketQuantity != nil {
		if *req.TicketQuantity < 1 {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "ticket_quantity must be at least 1"})
		}
		event.TicketQuantity = *req.TicketQuantity
	}
	if req.TicketPrice != nil {
		if *req.TicketPrice < 0 {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "ticket_price must be at least 0"})
		}
		event.TicketPrice = *req.TicketPrice
	}

	if err := h.Events.Update(ctx, event); err != nil {
		if errors.Is(err, repository.ErrEventNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"success": false, "error": "Event not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal server error"})
	}

	h.Cache.InvalidateEventChanged(ctx, id, userID)
	return c.JSON(http.StatusOK, echo.Map{
		"success": true,
		"message": "Event updated successfully",
		"data":    event,
	})
}

// Delete handles DELETE /v1/events/:id. An event with sold tickets
// cannot be deleted; release the tickets first.
func (h *EventHandler) Delete(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, ok := parseEventID(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid event id"})
	}

	ctx := c.Request().Context()
	event, err := h.Events.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrEventNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"success": false, "error": "Event not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal server error"})
	}
	if event.UserID != userID {
		return c.JSON(http.StatusForbidden, echo.Map{"success": false, "error": "forbidden"})
	}

	sold, err := h.Tickets.CountByEvent(ctx, id)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal server error"})
	}
	if sold > 0 {
		return c.JSON(http.StatusConflict, echo.Map{"success": false, "error": "Cannot delete event with sold tickets"})
	}

	if err := h.Events.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrEventNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"success": false, "error": "Event not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal server error"})
	}

	h.Cache.InvalidateEventChanged(ctx, id, userID)
	return c.JSON(http.StatusOK, echo.Map{"success": true, "message": "Event deleted successfully"})
}
