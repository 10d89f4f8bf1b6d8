package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/tickzi/tickzi/internal/model"
	"github.com/tickzi/tickzi/internal/repository"
)

// fakeStore emulates the transactional store in memory. A single mutex
// held for the whole WithTx callback stands in for the event row lock:
// like the real lock it serializes competing reservations, and like a
// real transaction a callback error restores the pre-transaction state.
type fakeStore struct {
	mu      sync.Mutex
	events  map[uint64]*model.Event
	tickets map[uint64]*model.Ticket
	nextID  uint64

	insertErr error // injected failure for rollback tests
}

func newFakeStore(events ...*model.Event) *fakeStore {
	s := &fakeStore{
		events:  make(map[uint64]*model.Event),
		tickets: make(map[uint64]*model.Ticket),
		nextID:  1,
	}
	for _, ev := range events {
		cp := *ev
		s.events[ev.ID] = &cp
	}
	return s
}

func (s *fakeStore) snapshot() (map[uint64]*model.Event, map[uint64]*model.Ticket) {
	evs := make(map[uint64]*model.Event, len(s.events))
	for id, ev := range s.events {
		cp := *ev
		evs[id] = &cp
	}
	tks := make(map[uint64]*model.Ticket, len(s.tickets))
	for id, t := range s.tickets {
		cp := *t
		tks[id] = &cp
	}
	return evs, tks
}

func (s *fakeStore) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	evs, tks := s.snapshot()
	if err := fn(ctx); err != nil {
		s.events, s.tickets = evs, tks
		return err
	}
	return nil
}

func (s *fakeStore) GetEventForUpdate(ctx context.Context, eventID uint64) (*model.Event, error) {
	ev, ok := s.events[eventID]
	if !ok {
		return nil, repository.ErrEventNotFound
	}
	cp := *ev
	return &cp, nil
}

func (s *fakeStore) HasTicket(ctx context.Context, eventID, userID uint64) (bool, error) {
	for _, t := range s.tickets {
		if t.EventID == eventID && t.UserID == userID {
			return true, nil
		}
	}
	return false, nil
}

func (s *fakeStore) InsertTicket(ctx context.Context, t *model.Ticket) error {
	if s.insertErr != nil {
		return s.insertErr
	}
	t.ID = s.nextID
	s.nextID++
	t.PurchasedAt = time.Now().UTC()
	cp := *t
	s.tickets[t.ID] = &cp
	return nil
}

func (s *fakeStore) GetTicketWithOwner(ctx context.Context, ticketID uint64) (*model.Ticket, uint64, error) {
	t, ok := s.tickets[ticketID]
	if !ok {
		return nil, 0, repository.ErrTicketNotFound
	}
	ev, ok := s.events[t.EventID]
	if !ok {
		return nil, 0, repository.ErrEventNotFound
	}
	cp := *t
	return &cp, ev.UserID, nil
}

func (s *fakeStore) DeleteTicket(ctx context.Context, ticketID uint64) (bool, error) {
	if _, ok := s.tickets[ticketID]; !ok {
		return false, nil
	}
	delete(s.tickets, ticketID)
	return true, nil
}

func (s *fakeStore) AdjustTicketQuantity(ctx context.Context, eventID uint64, delta int) error {
	ev, ok := s.events[eventID]
	if !ok {
		return repository.ErrEventNotFound
	}
	ev.TicketQuantity += delta
	return nil
}

func testEvent(id, ownerID uint64, quantity int) *model.Event {
	return &model.Event{
		ID:             id,
		UserID:         ownerID,
		Title:          "Concert",
		Date:           time.Date(2026, 10, 1, 20, 0, 0, 0, time.UTC),
		Location:       "Main Hall",
		TicketQuantity: quantity,
		TicketPrice:    2500,
	}
}

func TestReservation_Reserve(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("reserves and decrements inventory", func(t *testing.T) {
		store := newFakeStore(testEvent(1, 100, 5))
		svc := NewReservation(store)

		ticket, event, err := svc.Reserve(ctx, 1, 200)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if ticket.ID == 0 {
			t.Fatalf("expected ticket id to be set")
		}
		if ticket.EventID != 1 || ticket.UserID != 200 {
			t.Fatalf("unexpected ticket %+v", ticket)
		}
		if event.TicketQuantity != 4 {
			t.Fatalf("expected returned event quantity 4, got %d", event.TicketQuantity)
		}
		if got := store.events[1].TicketQuantity; got != 4 {
			t.Fatalf("expected stored quantity 4, got %d", got)
		}
	})

	t.Run("unknown event", func(t *testing.T) {
		svc := NewReservation(newFakeStore())
		_, _, err := svc.Reserve(ctx, 42, 200)
		if !errors.Is(err, repository.ErrEventNotFound) {
			t.Fatalf("expected ErrEventNotFound, got %v", err)
		}
	})

	t.Run("sold out", func(t *testing.T) {
		store := newFakeStore(testEvent(1, 100, 0))
		svc := NewReservation(store)
		_, _, err := svc.Reserve(ctx, 1, 200)
		if !errors.Is(err, repository.ErrSoldOut) {
			t.Fatalf("expected ErrSoldOut, got %v", err)
		}
		if len(store.tickets) != 0 {
			t.Fatalf("expected no ticket created, got %d", len(store.tickets))
		}
	})

	t.Run("one ticket per user", func(t *testing.T) {
		store := newFakeStore(testEvent(1, 100, 5))
		svc := NewReservation(store)

		if _, _, err := svc.Reserve(ctx, 1, 200); err != nil {
			t.Fatalf("first reserve: %v", err)
		}
		_, _, err := svc.Reserve(ctx, 1, 200)
		if !errors.Is(err, repository.ErrAlreadyReserved) {
			t.Fatalf("expected ErrAlreadyReserved, got %v", err)
		}
		if got := store.events[1].TicketQuantity; got != 4 {
			t.Fatalf("expected quantity decremented once, got %d", got)
		}
		if len(store.tickets) != 1 {
			t.Fatalf("expected exactly one ticket, got %d", len(store.tickets))
		}
	})

	t.Run("insert failure rolls everything back", func(t *testing.T) {
		store := newFakeStore(testEvent(1, 100, 5))
		store.insertErr = errors.New("disk full")
		svc := NewReservation(store)

		_, _, err := svc.Reserve(ctx, 1, 200)
		if err == nil {
			t.Fatalf("expected error")
		}
		if got := store.events[1].TicketQuantity; got != 5 {
			t.Fatalf("expected quantity untouched, got %d", got)
		}
		if len(store.tickets) != 0 {
			t.Fatalf("expected no ticket, got %d", len(store.tickets))
		}
	})
}

// Ten users race for three remaining tickets. The serialized
// transactions must hand out exactly three and never drive inventory
// negative.
func TestReservation_Reserve_NoOversell(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	const remaining = 3
	const attempts = 10

	store := newFakeStore(testEvent(1, 100, remaining))
	svc := NewReservation(store)

	var wg sync.WaitGroup
	errs := make([]error, attempts)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, _, errs[i] = svc.Reserve(ctx, 1, uint64(200+i))
		}(i)
	}
	wg.Wait()

	var ok, soldOut int
	for _, err := range errs {
		switch {
		case err == nil:
			ok++
		case errors.Is(err, repository.ErrSoldOut):
			soldOut++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if ok != remaining {
		t.Fatalf("expected %d successful reservations, got %d", remaining, ok)
	}
	if soldOut != attempts-remaining {
		t.Fatalf("expected %d sold-out failures, got %d", attempts-remaining, soldOut)
	}
	if got := store.events[1].TicketQuantity; got != 0 {
		t.Fatalf("expected final quantity 0, got %d", got)
	}
	if len(store.tickets) != remaining {
		t.Fatalf("expected %d tickets, got %d", remaining, len(store.tickets))
	}
}

func TestReservation_Release(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	setup := func(t *testing.T) (*Reservation, *fakeStore, *model.Ticket) {
		t.Helper()
		store := newFakeStore(testEvent(1, 100, 5))
		svc := NewReservation(store)
		ticket, _, err := svc.Reserve(ctx, 1, 200)
		if err != nil {
			t.Fatalf("seed reserve: %v", err)
		}
		return svc, store, ticket
	}

	t.Run("holder releases and inventory is restored", func(t *testing.T) {
		svc, store, ticket := setup(t)

		rel, err := svc.Release(ctx, ticket.ID, 200)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if rel.EventID != 1 || rel.HolderID != 200 || rel.EventOwnerID != 100 {
			t.Fatalf("unexpected release outcome %+v", rel)
		}
		if got := store.events[1].TicketQuantity; got != 5 {
			t.Fatalf("expected quantity restored to 5, got %d", got)
		}
		if len(store.tickets) != 0 {
			t.Fatalf("expected ticket removed")
		}
	})

	t.Run("event owner may release", func(t *testing.T) {
		svc, store, ticket := setup(t)
		if _, err := svc.Release(ctx, ticket.ID, 100); err != nil {
			t.Fatalf("expected owner release to succeed, got %v", err)
		}
		if got := store.events[1].TicketQuantity; got != 5 {
			t.Fatalf("expected quantity restored, got %d", got)
		}
	})

	t.Run("stranger is forbidden", func(t *testing.T) {
		svc, store, ticket := setup(t)
		_, err := svc.Release(ctx, ticket.ID, 999)
		if !errors.Is(err, repository.ErrForbidden) {
			t.Fatalf("expected ErrForbidden, got %v", err)
		}
		if len(store.tickets) != 1 {
			t.Fatalf("expected ticket untouched")
		}
	})

	t.Run("unknown ticket", func(t *testing.T) {
		svc, _, _ := setup(t)
		_, err := svc.Release(ctx, 9999, 200)
		if !errors.Is(err, repository.ErrTicketNotFound) {
			t.Fatalf("expected ErrTicketNotFound, got %v", err)
		}
	})

	t.Run("second release does not restore twice", func(t *testing.T) {
		svc, store, ticket := setup(t)
		if _, err := svc.Release(ctx, ticket.ID, 200); err != nil {
			t.Fatalf("first release: %v", err)
		}
		_, err := svc.Release(ctx, ticket.ID, 200)
		if !errors.Is(err, repository.ErrTicketNotFound) {
			t.Fatalf("expected ErrTicketNotFound, got %v", err)
		}
		if got := store.events[1].TicketQuantity; got != 5 {
			t.Fatalf("expected quantity restored exactly once, got %d", got)
		}
	})
}
