package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/iliyamo/movie-theater-booking/internal/model"
)

// ErrReservationNotFound is returned when a reservation lookup yields no rows.
var ErrReservationNotFound = errors.New("reservation not found")

// ReservationRepo provides access to reservations.  Status transitions
// always run inside a caller-owned transaction together with a
// GetForUpdateTx read, so concurrent transitions on the same reservation
// serialize on the row lock.
type ReservationRepo struct {
	db *sql.DB
}

// NewReservationRepo returns a ReservationRepo bound to the given database.
func NewReservationRepo(db *sql.DB) *ReservationRepo { return &ReservationRepo{db: db} }

// CreateTx inserts a new reservation within the provided transaction and
// populates the generated ID.  CreatedAt and ExpiresAt must be set by
// the caller (UTC).
func (r *ReservationRepo) CreateTx(ctx context.Context, tx *sql.Tx, res *model.Reservation) error {
	const q = `INSERT INTO reservations (user_id, showtime_id, status, created_at, expires_at)
	           VALUES (?, ?, ?, ?, ?)`
	result, err := tx.ExecContext(ctx, q,
		res.UserID, res.ShowtimeID, res.Status, res.CreatedAt.UTC(), res.ExpiresAt.UTC())
	if err != nil {
		return err
	}
	id, err := result.LastInsertId()
	if err != nil {
		return err
	}
	res.ID = uint64(id)
	return nil
}

// GetByID retrieves a reservation by its id.
func (r *ReservationRepo) GetByID(ctx context.Context, id uint64) (*model.Reservation, error) {
	const q = `SELECT reservation_id, user_id, showtime_id, status, created_at, expires_at
	           FROM reservations WHERE reservation_id = ?`
	return scanReservation(r.db.QueryRowContext(ctx, q, id))
}

// GetForUpdateTx loads a reservation with an exclusive row lock so the
// caller can read its status and transition it atomically.
func (r *ReservationRepo) GetForUpdateTx(ctx context.Context, tx *sql.Tx, id uint64) (*model.Reservation, error) {
	const q = `SELECT reservation_id, user_id, showtime_id, status, created_at, expires_at
	           FROM reservations WHERE reservation_id = ? FOR UPDATE`
	return scanReservation(tx.QueryRowContext(ctx, q, id))
}

// ExpiredByStoreTx reports whether the reservation's deadline has passed
// according to the store clock.  Expiry is evaluated everywhere else in
// SQL against UTC_TIMESTAMP(), so status transitions must compare
// against the same clock; trusting the application clock here would let
// the two disagree around the expiry boundary.
func (r *ReservationRepo) ExpiredByStoreTx(ctx context.Context, tx *sql.Tx, id uint64) (bool, error) {
	const q = `SELECT expires_at <= UTC_TIMESTAMP() FROM reservations WHERE reservation_id = ?`
	var expired bool
	err := tx.QueryRowContext(ctx, q, id).Scan(&expired)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, ErrReservationNotFound
		}
		return false, err
	}
	return expired, nil
}

// UpdateStatusTx sets the reservation's status within the transaction.
func (r *ReservationRepo) UpdateStatusTx(ctx context.Context, tx *sql.Tx, id uint64, status string) error {
	const q = `UPDATE reservations SET status = ? WHERE reservation_id = ?`
	res, err := tx.ExecContext(ctx, q, status, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrReservationNotFound
	}
	return nil
}

// ListByUser returns the user's reservations, newest first.
func (r *ReservationRepo) ListByUser(ctx context.Context, userID uint64) ([]model.Reservation, error) {
	const q = `SELECT reservation_id, user_id, showtime_id, status, created_at, expires_at
	           FROM reservations WHERE user_id = ?
	           ORDER BY created_at DESC, reservation_id DESC`
	rows, err := r.db.QueryContext(ctx, q, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	result := make([]model.Reservation, 0)
	for rows.Next() {
		var res model.Reservation
		if err := rows.Scan(&res.ID, &res.UserID, &res.ShowtimeID, &res.Status,
			&res.CreatedAt, &res.ExpiresAt); err != nil {
			return nil, err
		}
		result = append(result, res)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// MarkExpired flips pending reservations whose deadline has passed to
// expired.  Like lock deletion this is hygiene only: readers already
// treat a lapsed pending reservation as expired.
func (r *ReservationRepo) MarkExpired(ctx context.Context) (int64, error) {
	const q = `UPDATE reservations SET status = 'expired'
	           WHERE status = 'pending' AND expires_at <= UTC_TIMESTAMP()`
	res, err := r.db.ExecContext(ctx, q)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func scanReservation(row *sql.Row) (*model.Reservation, error) {
	var res model.Reservation
	err := row.Scan(&res.ID, &res.UserID, &res.ShowtimeID, &res.Status,
		&res.CreatedAt, &res.ExpiresAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrReservationNotFound
		}
		return nil, err
	}
	return &res, nil
}
