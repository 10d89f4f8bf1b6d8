package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/tickzi/tickzi/internal/model"
)

// TicketRepo manages persistence for tickets. Tickets are only ever
// created through the reservation transaction; the methods here do not
// touch event inventory themselves.
type TicketRepo struct {
	db *sql.DB
}

// NewTicketRepo constructs a TicketRepo with the given DB handle.
func NewTicketRepo(db *sql.DB) *TicketRepo { return &TicketRepo{db: db} }

// Create inserts a new ticket and populates the generated ID and
// purchase timestamp on the given record.
func (r *TicketRepo) Create(ctx context.Context, t *model.Ticket) error {
	const q = `INSERT INTO tickets (event_id, user_id) VALUES (?, ?)`
	res, err := exec(ctx, r.db).ExecContext(ctx, q, t.EventID, t.UserID)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	t.ID = uint64(id)
	const sel = `SELECT purchased_at FROM tickets WHERE id = ?`
	return exec(ctx, r.db).QueryRowContext(ctx, sel, t.ID).Scan(&t.PurchasedAt)
}

// Exists reports whether the user already holds a ticket for the
// event. The read takes no lock of its own: it is race-free only
// because every reservation first locks the event row, which
// serializes concurrent attempts for the same event.
func (r *TicketRepo) Exists(ctx context.Context, eventID, userID uint64) (bool, error) {
	const q = `SELECT EXISTS(SELECT 1 FROM tickets WHERE event_id = ? AND user_id = ?)`
	var found bool
	if err := exec(ctx, r.db).QueryRowContext(ctx, q, eventID, userID).Scan(&found); err != nil {
		return false, err
	}
	return found, nil
}

// GetWithOwner returns a ticket together with the owning user of its
// event, for release permission checks. Returns ErrTicketNotFound when
// no row matches.
func (r *TicketRepo) GetWithOwner(ctx context.Context, id uint64) (*model.Ticket, uint64, error) {
	const q = `SELECT t.id, t.event_id, t.user_id, t.purchased_at, e.user_id
	           FROM tickets t
	           JOIN events e ON e.id = t.event_id
	           WHERE t.id = ?`
	var t model.Ticket
	var eventOwnerID uint64
	err := exec(ctx, r.db).QueryRowContext(ctx, q, id).Scan(
		&t.ID, &t.EventID, &t.UserID, &t.PurchasedAt, &eventOwnerID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, 0, ErrTicketNotFound
	}
	if err != nil {
		return nil, 0, err
	}
	return &t, eventOwnerID, nil
}

// Delete removes a ticket and reports whether a row was actually
// deleted, so callers serialized on the event row lock can detect a
// concurrent release and skip the inventory restore.
func (r *TicketRepo) Delete(ctx context.Context, id uint64) (bool, error) {
	const q = `DELETE FROM tickets WHERE id = ?`
	res, err := exec(ctx, r.db).ExecContext(ctx, q, id)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// CountByEvent returns the number of sold tickets for an event.
func (r *TicketRepo) CountByEvent(ctx context.Context, eventID uint64) (int64, error) {
	const q = `SELECT COUNT(*) FROM tickets WHERE event_id = ?`
	var n int64
	err := exec(ctx, r.db).QueryRowContext(ctx, q, eventID).Scan(&n)
	return n, err
}

const ticketEventColumns = `t.id, t.purchased_at,
	e.id, e.title, e.description, e.date, e.location, e.ticket_price`

func scanTicketWithEvent(row interface{ Scan(...any) error }) (*model.TicketWithEvent, error) {
	var tw model.TicketWithEvent
	var desc sql.NullString
	err := row.Scan(&tw.ID, &tw.PurchasedAt,
		&tw.Event.ID, &tw.Event.Title, &desc, &tw.Event.Date, &tw.Event.Location, &tw.Event.TicketPrice)
	if err != nil {
		return nil, err
	}
	if desc.Valid {
		d := desc.String
		tw.Event.Description = &d
	}
	return &tw, nil
}

// ListByUser returns the user's tickets with their event details,
// newest purchase first, plus the total count for pagination.
func (r *TicketRepo) ListByUser(ctx context.Context, userID uint64, page, limit int) ([]model.TicketWithEvent, int64, error) {
	var total int64
	const countQ = `SELECT COUNT(*) FROM tickets WHERE user_id = ?`
	if err := exec(ctx, r.db).QueryRowContext(ctx, countQ, userID).Scan(&total); err != nil {
		return nil, 0, err
	}
	const q = `SELECT ` + ticketEventColumns + `
	           FROM tickets t
	           JOIN events e ON e.id = t.event_id
	           WHERE t.user_id = ?
	           ORDER BY t.purchased_at DESC
	           LIMIT ? OFFSET ?`
	items, err := r.queryTicketsWithEvent(ctx, q, userID, limit, (page-1)*limit)
	if err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

// SearchByUser returns the user's tickets whose event title,
// description or location contains the query text, case-insensitively,
// newest purchase first.
func (r *TicketRepo) SearchByUser(ctx context.Context, userID uint64, query string, limit int) ([]model.TicketWithEvent, error) {
	const q = `SELECT ` + ticketEventColumns + `
	           FROM tickets t
	           JOIN events e ON e.id = t.event_id
	           WHERE t.user_id = ?
	             AND (LOWER(e.title) LIKE ? OR LOWER(e.description) LIKE ? OR LOWER(e.location) LIKE ?)
	           ORDER BY t.purchased_at DESC
	           LIMIT ?`
	p := likePattern(query)
	return r.queryTicketsWithEvent(ctx, q, userID, p, p, p, limit)
}

func (r *TicketRepo) queryTicketsWithEvent(ctx context.Context, q string, args ...any) ([]model.TicketWithEvent, error) {
	rows, err := exec(ctx, r.db).QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.TicketWithEvent, 0)
	for rows.Next() {
		tw, err := scanTicketWithEvent(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *tw)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// ListByEvent returns the sold tickets of one event together with the
// buyers, newest purchase first, plus the total count for pagination.
// Ownership of the event is checked by the caller.
func (r *TicketRepo) ListByEvent(ctx context.Context, eventID uint64, page, limit int) ([]model.TicketWithBuyer, int64, error) {
	var total int64
	const countQ = `SELECT COUNT(*) FROM tickets WHERE event_id = ?`
	if err := exec(ctx, r.db).QueryRowContext(ctx, countQ, eventID).Scan(&total); err != nil {
		return nil, 0, err
	}
	const q = `SELECT t.id, t.purchased_at, u.id, u.name, u.email
	           FROM tickets t
	           JOIN users u ON u.id = t.user_id
	           WHERE t.event_id = ?
	           ORDER BY t.purchased_at DESC
	           LIMIT ? OFFSET ?`
	rows, err := exec(ctx, r.db).QueryContext(ctx, q, eventID, limit, (page-1)*limit)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	out := make([]model.TicketWithBuyer, 0)
	for rows.Next() {
		var tb model.TicketWithBuyer
		if err := rows.Scan(&tb.ID, &tb.PurchasedAt, &tb.User.ID, &tb.User.Name, &tb.User.Email); err != nil {
			return nil, 0, err
		}
		out = append(out, tb)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return out, total, nil
}
