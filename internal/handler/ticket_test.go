package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tickzi/tickzi/internal/model"
	"github.com/tickzi/tickzi/internal/queue"
	"github.com/tickzi/tickzi/internal/repository"
	"github.com/tickzi/tickzi/internal/service"
)

// fakeReserver scripts the outcome of Reserve and Release so handler
// tests exercise only status mapping and side effects.
type fakeReserver struct {
	reserveErr error
	releaseErr error

	ticket *model.Ticket
	event  *model.Event
}

func (f *fakeReserver) Reserve(ctx context.Context, eventID, userID uint64) (*model.Ticket, *model.Event, error) {
	if f.reserveErr != nil {
		return nil, nil, f.reserveErr
	}
	return f.ticket, f.event, nil
}

func (f *fakeReserver) Release(ctx context.Context, ticketID, userID uint64) (*service.Released, error) {
	if f.releaseErr != nil {
		return nil, f.releaseErr
	}
	return &service.Released{TicketID: ticketID, EventID: 7, EventOwnerID: 3, HolderID: userID}, nil
}

func newReserveCtx(e *echo.Echo, body string) (echo.Context, *httptest.ResponseRecorder) {
	req := httptest.NewRequest(http.MethodPost, "/v1/tickets", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.Set("user_id", float64(200)) // as the JWT middleware would
	return c, rec
}

func TestTicketHandler_Reserve(t *testing.T) {
	t.Parallel()
	e := echo.New()

	okReserver := func() *fakeReserver {
		return &fakeReserver{
			ticket: &model.Ticket{ID: 1, EventID: 7, UserID: 200, PurchasedAt: time.Now().UTC()},
			event: &model.Event{
				ID: 7, UserID: 3, Title: "Concert",
				Date:           time.Date(2026, 10, 1, 20, 0, 0, 0, time.UTC),
				Location:       "Main Hall",
				TicketQuantity: 4, TicketPrice: 2500,
			},
		}
	}

	t.Run("created", func(t *testing.T) {
		var published []queue.TicketReservedEvent
		h := &TicketHandler{
			Reservations: okReserver(),
			Publish: func(ctx context.Context, ev queue.TicketReservedEvent) error {
				published = append(published, ev)
				return nil
			},
		}
		c, rec := newReserveCtx(e, `{"event_id":7}`)

		require.NoError(t, h.Reserve(c))
		assert.Equal(t, http.StatusCreated, rec.Code)
		assert.Contains(t, rec.Body.String(), `"success":true`)

		require.Len(t, published, 1)
		assert.Equal(t, uint64(1), published[0].TicketID)
		assert.Equal(t, uint64(7), published[0].EventID)
		assert.Equal(t, "Concert", published[0].EventTitle)
		assert.Equal(t, 4, published[0].Remaining)
	})

	t.Run("broker failure does not fail the request", func(t *testing.T) {
		h := &TicketHandler{
			Reservations: okReserver(),
			Publish: func(ctx context.Context, ev queue.TicketReservedEvent) error {
				return context.DeadlineExceeded
			},
		}
		c, rec := newReserveCtx(e, `{"event_id":7}`)
		require.NoError(t, h.Reserve(c))
		assert.Equal(t, http.StatusCreated, rec.Code)
	})

	t.Run("status mapping", func(t *testing.T) {
		cases := []struct {
			name string
			err  error
			want int
		}{
			{"event not found", repository.ErrEventNotFound, http.StatusNotFound},
			{"sold out", repository.ErrSoldOut, http.StatusBadRequest},
			{"already reserved", repository.ErrAlreadyReserved, http.StatusBadRequest},
			{"storage failure", context.DeadlineExceeded, http.StatusInternalServerError},
		}
		for _, tc := range cases {
			t.Run(tc.name, func(t *testing.T) {
				h := &TicketHandler{Reservations: &fakeReserver{reserveErr: tc.err}}
				c, rec := newReserveCtx(e, `{"event_id":7}`)
				require.NoError(t, h.Reserve(c))
				assert.Equal(t, tc.want, rec.Code)
			})
		}
	})

	t.Run("missing event_id", func(t *testing.T) {
		h := &TicketHandler{Reservations: &fakeReserver{}}
		c, rec := newReserveCtx(e, `{}`)
		require.NoError(t, h.Reserve(c))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("no user in context", func(t *testing.T) {
		h := &TicketHandler{Reservations: &fakeReserver{}}
		req := httptest.NewRequest(http.MethodPost, "/v1/tickets", strings.NewReader(`{"event_id":7}`))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
		rec := httptest.NewRecorder()
		require.NoError(t, h.Reserve(e.NewContext(req, rec)))
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}

func TestTicketHandler_Delete(t *testing.T) {
	t.Parallel()
	e := echo.New()

	newDeleteCtx := func(id string) (echo.Context, *httptest.ResponseRecorder) {
		req := httptest.NewRequest(http.MethodDelete, "/v1/tickets/"+id, nil)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)
		c.SetParamNames("id")
		c.SetParamValues(id)
		c.Set("user_id", float64(200))
		return c, rec
	}

	t.Run("released", func(t *testing.T) {
		h := &TicketHandler{Reservations: &fakeReserver{}}
		c, rec := newDeleteCtx("1")
		require.NoError(t, h.Delete(c))
		assert.Equal(t, http.StatusNoContent, rec.Code)
	})

	t.Run("status mapping", func(t *testing.T) {
		cases := []struct {
			name string
			err  error
			want int
		}{
			{"ticket not found", repository.ErrTicketNotFound, http.StatusNotFound},
			{"forbidden", repository.ErrForbidden, http.StatusForbidden},
			{"storage failure", context.DeadlineExceeded, http.StatusInternalServerError},
		}
		for _, tc := range cases {
			t.Run(tc.name, func(t *testing.T) {
				h := &TicketHandler{Reservations: &fakeReserver{releaseErr: tc.err}}
				c, rec := newDeleteCtx("1")
				require.NoError(t, h.Delete(c))
				assert.Equal(t, tc.want, rec.Code)
			})
		}
	})

	t.Run("invalid id", func(t *testing.T) {
		h := &TicketHandler{Reservations: &fakeReserver{}}
		c, rec := newDeleteCtx("abc")
		require.NoError(t, h.Delete(c))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}
