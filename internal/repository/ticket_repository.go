package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/iliyamo/movie-theater-booking/internal/model"
)

// ErrTicketNotFound is returned when a ticket lookup yields no rows.
var ErrTicketNotFound = errors.New("ticket not found")

// TicketRepo provides access to tickets.  A ticket under a confirmed
// reservation is what marks a seat as sold, so the queries here are the
// source of truth for the sold/held classification.
type TicketRepo struct {
	db *sql.DB
}

// NewTicketRepo returns a TicketRepo bound to the given database.
func NewTicketRepo(db *sql.DB) *TicketRepo { return &TicketRepo{db: db} }

// CreateTx inserts one ticket within the provided transaction and
// populates the generated ID.  Reservation creation inserts per seat so
// each ticket id is known for the response.
func (r *TicketRepo) CreateTx(ctx context.Context, tx *sql.Tx, t *model.Ticket) error {
	const q = `INSERT INTO tickets (reservation_id, seat_id, price_cents, issued_at)
	           VALUES (?, ?, ?, ?)`
	result, err := tx.ExecContext(ctx, q, t.ReservationID, t.SeatID, t.PriceCents, t.IssuedAt.UTC())
	if err != nil {
		return err
	}
	id, err := result.LastInsertId()
	if err != nil {
		return err
	}
	t.ID = uint64(id)
	return nil
}

// BlockingStatusTx classifies one seat of a showtime for the lock
// manager: "confirmed" when a ticket under a confirmed reservation
// exists (seat is sold), "pending" when a ticket under an unexpired
// pending reservation exists (seat is held by a checkout in flight),
// empty string otherwise.  Confirmed wins when both exist.
func (r *TicketRepo) BlockingStatusTx(ctx context.Context, tx *sql.Tx, showtimeID, seatID uint64) (string, error) {
	const q = `SELECT r.status FROM tickets t
	           JOIN reservations r ON r.reservation_id = t.reservation_id
	           WHERE r.showtime_id = ? AND t.seat_id = ?
	             AND (r.status = 'confirmed'
	                  OR (r.status = 'pending' AND r.expires_at > UTC_TIMESTAMP()))
	           ORDER BY r.status = 'confirmed' DESC
	           LIMIT 1`
	var status string
	err := tx.QueryRowContext(ctx, q, showtimeID, seatID).Scan(&status)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return status, nil
}

// SoldConflictsTx returns, from the given seat set, the ids already sold
// for this showtime (ticket under a confirmed reservation).  Reservation
// creation and confirmation both re-check through this inside their
// transactions.
func (r *TicketRepo) SoldConflictsTx(ctx context.Context, tx *sql.Tx, showtimeID uint64, seatIDs []uint64) ([]uint64, error) {
	if len(seatIDs) == 0 {
		return nil, nil
	}
	placeholders := make([]string, len(seatIDs))
	args := []interface{}{showtimeID}
	for i, id := range seatIDs {
		placeholders[i] = "?"
		args = append(args, id)
	}
	q := `SELECT DISTINCT t.seat_id FROM tickets t
	      JOIN reservations r ON r.reservation_id = t.reservation_id
	      WHERE r.showtime_id = ? AND r.status = 'confirmed'
	        AND t.seat_id IN (` + strings.Join(placeholders, ",") + `)
	      ORDER BY t.seat_id`
	rows, err := tx.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var sold []uint64
	for rows.Next() {
		var id uint64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		sold = append(sold, id)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return sold, nil
}

// SoldSeatIDsTx returns all seats sold for a showtime, read inside the
// availability snapshot transaction.
func (r *TicketRepo) SoldSeatIDsTx(ctx context.Context, tx *sql.Tx, showtimeID uint64) (map[uint64]struct{}, error) {
	const q = `SELECT t.seat_id FROM tickets t
	           JOIN reservations r ON r.reservation_id = t.reservation_id
	           WHERE r.showtime_id = ? AND r.status = 'confirmed'`
	return scanSeatIDSet(r.queryTx(ctx, tx, q, showtimeID))
}

// PendingHeldSeatIDsTx returns all seats held by unexpired pending
// reservations for a showtime.  The availability projection reports
// these as locked.
func (r *TicketRepo) PendingHeldSeatIDsTx(ctx context.Context, tx *sql.Tx, showtimeID uint64) (map[uint64]struct{}, error) {
	const q = `SELECT t.seat_id FROM tickets t
	           JOIN reservations r ON r.reservation_id = t.reservation_id
	           WHERE r.showtime_id = ? AND r.status = 'pending'
	             AND r.expires_at > UTC_TIMESTAMP()`
	return scanSeatIDSet(r.queryTx(ctx, tx, q, showtimeID))
}

// SeatIDsByReservationTx returns the seat ids ticketed under one
// reservation, read inside the caller's transaction.  Confirmation uses
// this to re-check sold conflicts before flipping status.
func (r *TicketRepo) SeatIDsByReservationTx(ctx context.Context, tx *sql.Tx, reservationID uint64) ([]uint64, error) {
	const q = `SELECT seat_id FROM tickets WHERE reservation_id = ? ORDER BY seat_id`
	rows, err := tx.QueryContext(ctx, q, reservationID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var seatIDs []uint64
	for rows.Next() {
		var id uint64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		seatIDs = append(seatIDs, id)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return seatIDs, nil
}

// ListByReservation returns the tickets of one reservation with seat
// labels joined in, ordered by seat for deterministic output.
func (r *TicketRepo) ListByReservation(ctx context.Context, reservationID uint64) ([]model.Ticket, error) {
	const q = `SELECT t.ticket_id, t.reservation_id, t.seat_id, t.price_cents, t.issued_at, s.seat_label
	           FROM tickets t
	           JOIN seats s ON s.seat_id = t.seat_id
	           WHERE t.reservation_id = ?
	           ORDER BY s.row_num, s.col_num`
	rows, err := r.db.QueryContext(ctx, q, reservationID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	result := make([]model.Ticket, 0)
	for rows.Next() {
		var t model.Ticket
		if err := rows.Scan(&t.ID, &t.ReservationID, &t.SeatID, &t.PriceCents,
			&t.IssuedAt, &t.SeatLabel); err != nil {
			return nil, err
		}
		result = append(result, t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// GetByID retrieves a ticket with its seat label joined in.
func (r *TicketRepo) GetByID(ctx context.Context, id uint64) (*model.Ticket, error) {
	const q = `SELECT t.ticket_id, t.reservation_id, t.seat_id, t.price_cents, t.issued_at, s.seat_label
	           FROM tickets t
	           JOIN seats s ON s.seat_id = t.seat_id
	           WHERE t.ticket_id = ?`
	var t model.Ticket
	err := r.db.QueryRowContext(ctx, q, id).
		Scan(&t.ID, &t.ReservationID, &t.SeatID, &t.PriceCents, &t.IssuedAt, &t.SeatLabel)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTicketNotFound
		}
		return nil, err
	}
	return &t, nil
}

func (r *TicketRepo) queryTx(ctx context.Context, tx *sql.Tx, q string, args ...interface{}) (*sql.Rows, error) {
	return tx.QueryContext(ctx, q, args...)
}

func scanSeatIDSet(rows *sql.Rows, err error) (map[uint64]struct{}, error) {
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	set := make(map[uint64]struct{})
	for rows.Next() {
		var id uint64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		set[id] = struct{}{}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return set, nil
}
