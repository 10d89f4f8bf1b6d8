package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/tickzi/tickzi/internal/model"
)

// EventRepo manages persistence for events. An event carries its
// remaining ticket inventory in the ticket_quantity column; the
// reservation path adjusts it exclusively through AdjustTicketQuantity
// so the decrement is a server-side expression and never a
// read-modify-write of a previously fetched value.
type EventRepo struct {
	db *sql.DB
}

// NewEventRepo constructs an EventRepo with the given DB handle.
func NewEventRepo(db *sql.DB) *EventRepo { return &EventRepo{db: db} }

// DB exposes the underlying sql.DB. It allows callers to begin
// transactions spanning multiple repositories.
func (r *EventRepo) DB() *sql.DB { return r.db }

const eventColumns = `id, user_id, title, description, date, location, ticket_quantity, ticket_price, created_at`

func scanEvent(row interface{ Scan(...any) error }) (*model.Event, error) {
	var e model.Event
	var desc sql.NullString
	err := row.Scan(&e.ID, &e.UserID, &e.Title, &desc, &e.Date, &e.Location,
		&e.TicketQuantity, &e.TicketPrice, &e.CreatedAt)
	if err != nil {
		return nil, err
	}
	if desc.Valid {
		d := desc.String
		e.Description = &d
	}
	return &e, nil
}

// Create inserts a new event and populates the generated ID and
// DB-default created_at on the given struct.
func (r *EventRepo) Create(ctx context.Context, e *model.Event) error {
	const q = `INSERT INTO events (user_id, title, description, date, location, ticket_quantity, ticket_price)
	           VALUES (?, ?, ?, ?, ?, ?, ?)`
	res, err := exec(ctx, r.db).ExecContext(ctx, q,
		e.UserID, e.Title, e.Description, e.Date, e.Location, e.TicketQuantity, e.TicketPrice)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	e.ID = uint64(id)
	const sel = `SELECT created_at FROM events WHERE id = ?`
	return exec(ctx, r.db).QueryRowContext(ctx, sel, e.ID).Scan(&e.CreatedAt)
}

// GetByID returns a single event or ErrEventNotFound.
func (r *EventRepo) GetByID(ctx context.Context, id uint64) (*model.Event, error) {
	const q = `SELECT ` + eventColumns + ` FROM events WHERE id = ?`
	e, err := scanEvent(exec(ctx, r.db).QueryRowContext(ctx, q, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrEventNotFound
	}
	return e, err
}

// GetForUpdate returns the event row while taking an exclusive row
// lock on it. It must be called inside WithTx: the lock serializes
// every concurrent reservation attempt against the same event and is
// held until the surrounding transaction commits or rolls back.
func (r *EventRepo) GetForUpdate(ctx context.Context, id uint64) (*model.Event, error) {
	const q = `SELECT ` + eventColumns + ` FROM events WHERE id = ? FOR UPDATE`
	e, err := scanEvent(exec(ctx, r.db).QueryRowContext(ctx, q, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrEventNotFound
	}
	return e, err
}

// Update persists the mutable fields of an event. Returns
// ErrEventNotFound when the row no longer exists.
func (r *EventRepo) Update(ctx context.Context, e *model.Event) error {
	const q = `UPDATE events SET title = ?, description = ?, date = ?, location = ?,
	           ticket_quantity = ?, ticket_price = ? WHERE id = ?`
	res, err := exec(ctx, r.db).ExecContext(ctx, q,
		e.Title, e.Description, e.Date, e.Location, e.TicketQuantity, e.TicketPrice, e.ID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	// MySQL reports 0 affected rows for a no-op update as well; treat
	// that as success and only re-check existence.
	if n == 0 {
		if _, err := r.GetByID(ctx, e.ID); err != nil {
			return err
		}
	}
	return nil
}

// Delete removes an event. The tickets FK cascades, but callers are
// expected to refuse deletion while sold tickets exist.
func (r *EventRepo) Delete(ctx context.Context, id uint64) error {
	const q = `DELETE FROM events WHERE id = ?`
	res, err := exec(ctx, r.db).ExecContext(ctx, q, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrEventNotFound
	}
	return nil
}

// AdjustTicketQuantity applies a server-side delta to the remaining
// inventory. The expression form avoids lost updates against any other
// mutation path; callers are responsible for holding the event row
// lock when the adjustment must be serialized with availability checks.
func (r *EventRepo) AdjustTicketQuantity(ctx context.Context, id uint64, delta int) error {
	const q = `UPDATE events SET ticket_quantity = ticket_quantity + ? WHERE id = ?`
	res, err := exec(ctx, r.db).ExecContext(ctx, q, delta, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrEventNotFound
	}
	return nil
}

// ListPublic returns events that still have tickets available, ordered
// by date ascending, plus the total count for pagination.
func (r *EventRepo) ListPublic(ctx context.Context, page, limit int) ([]model.Event, int64, error) {
	var total int64
	const countQ = `SELECT COUNT(*) FROM events WHERE ticket_quantity > 0`
	if err := exec(ctx, r.db).QueryRowContext(ctx, countQ).Scan(&total); err != nil {
		return nil, 0, err
	}
	const q = `SELECT ` + eventColumns + ` FROM events WHERE ticket_quantity > 0
	           ORDER BY date ASC LIMIT ? OFFSET ?`
	return r.queryEvents(ctx, q, total, limit, (page-1)*limit)
}

// ListByOwner returns all events created by one user, ordered by date
// ascending, plus the total count for pagination.
func (r *EventRepo) ListByOwner(ctx context.Context, ownerID uint64, page, limit int) ([]model.Event, int64, error) {
	var total int64
	const countQ = `SELECT COUNT(*) FROM events WHERE user_id = ?`
	if err := exec(ctx, r.db).QueryRowContext(ctx, countQ, ownerID).Scan(&total); err != nil {
		return nil, 0, err
	}
	const q = `SELECT ` + eventColumns + ` FROM events WHERE user_id = ?
	           ORDER BY date ASC LIMIT ? OFFSET ?`
	return r.queryEvents(ctx, q, total, ownerID, limit, (page-1)*limit)
}

func (r *EventRepo) queryEvents(ctx context.Context, q string, total int64, args ...any) ([]model.Event, int64, error) {
	rows, err := exec(ctx, r.db).QueryContext(ctx, q, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	out := make([]model.Event, 0)
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, *e)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

// SearchPublic returns available events whose title, description or
// location contains the query text, case-insensitively, ordered by
// date ascending.
func (r *EventRepo) SearchPublic(ctx context.Context, query string, limit int) ([]model.Event, error) {
	const q = `SELECT ` + eventColumns + ` FROM events
	           WHERE ticket_quantity > 0
	             AND (LOWER(title) LIKE ? OR LOWER(description) LIKE ? OR LOWER(location) LIKE ?)
	           ORDER BY date ASC LIMIT ?`
	p := likePattern(query)
	items, _, err := r.queryEvents(ctx, q, 0, p, p, p, limit)
	return items, err
}

// SearchByOwner is like SearchPublic but scoped to one owner's events
// and without the availability filter, so owners can find their own
// sold-out events too.
func (r *EventRepo) SearchByOwner(ctx context.Context, ownerID uint64, query string, limit int) ([]model.Event, error) {
	const q = `SELECT ` + eventColumns + ` FROM events
	           WHERE user_id = ?
	             AND (LOWER(title) LIKE ? OR LOWER(description) LIKE ? OR LOWER(location) LIKE ?)
	           ORDER BY date ASC LIMIT ?`
	p := likePattern(query)
	items, _, err := r.queryEvents(ctx, q, 0, ownerID, p, p, p, limit)
	return items, err
}

func likePattern(query string) string {
	return "%" + strings.ToLower(query) + "%"
}
