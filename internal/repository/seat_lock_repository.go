package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/iliyamo/movie-theater-booking/internal/model"
)

// SeatLockRepo provides data access to the seat_locks table.  The table
// is keyed by (showtime_id, seat_id), so one row is the single source of
// truth for who holds a seat.  Expiry is lazy: every query that matters
// filters on expires_at > UTC_TIMESTAMP(), and expired rows linger until
// the next acquisition overwrites them or the reaper sweeps them away.
type SeatLockRepo struct {
	db *sql.DB
}

// NewSeatLockRepo returns a SeatLockRepo bound to the provided database.
func NewSeatLockRepo(db *sql.DB) *SeatLockRepo { return &SeatLockRepo{db: db} }

// GetActiveTx loads the unexpired lock for (showtime, seat), or nil when
// no live lock exists.  Callers must have serialized access to the seat
// beforehand (SeatRepo.LockRowsTx) for the read to be race-free.
func (r *SeatLockRepo) GetActiveTx(ctx context.Context, tx *sql.Tx, showtimeID, seatID uint64) (*model.SeatLock, error) {
	const q = `SELECT showtime_id, seat_id, user_id, locked_at, expires_at
	           FROM seat_locks
	           WHERE showtime_id = ? AND seat_id = ? AND expires_at > UTC_TIMESTAMP()`
	var l model.SeatLock
	err := tx.QueryRowContext(ctx, q, showtimeID, seatID).
		Scan(&l.ShowtimeID, &l.SeatID, &l.UserID, &l.LockedAt, &l.ExpiresAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &l, nil
}

// UpsertTx creates the lock row or overwrites an existing one (expired,
// or a renewal by the same holder).  The (showtime_id, seat_id) primary
// key makes the overwrite atomic.
func (r *SeatLockRepo) UpsertTx(ctx context.Context, tx *sql.Tx, l *model.SeatLock) error {
	const q = `INSERT INTO seat_locks (showtime_id, seat_id, user_id, locked_at, expires_at)
	           VALUES (?, ?, ?, ?, ?)
	           ON DUPLICATE KEY UPDATE
	             user_id = VALUES(user_id),
	             locked_at = VALUES(locked_at),
	             expires_at = VALUES(expires_at)`
	_, err := tx.ExecContext(ctx, q,
		l.ShowtimeID, l.SeatID, l.UserID, l.LockedAt.UTC(), l.ExpiresAt.UTC())
	return err
}

// DeleteOwned removes the caller's unexpired lock on (showtime, seat).
// Returns ErrNoRowsAffected when no such lock exists, which the booking
// layer reports as NoActiveLock.  An expired lock counts as absent.
func (r *SeatLockRepo) DeleteOwned(ctx context.Context, showtimeID, seatID, userID uint64) error {
	const q = `DELETE FROM seat_locks
	           WHERE showtime_id = ? AND seat_id = ? AND user_id = ?
	             AND expires_at > UTC_TIMESTAMP()`
	res, err := r.db.ExecContext(ctx, q, showtimeID, seatID, userID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNoRowsAffected
	}
	return nil
}

// ActiveSeatIDsByUserTx returns, from the given seat set, the ids the
// user holds unexpired locks on for this showtime.  Reservation creation
// uses this for its all-or-nothing lock validation.
func (r *SeatLockRepo) ActiveSeatIDsByUserTx(ctx context.Context, tx *sql.Tx, showtimeID, userID uint64, seatIDs []uint64) (map[uint64]struct{}, error) {
	if len(seatIDs) == 0 {
		return map[uint64]struct{}{}, nil
	}
	placeholders := make([]string, len(seatIDs))
	args := []interface{}{showtimeID, userID}
	for i, id := range seatIDs {
		placeholders[i] = "?"
		args = append(args, id)
	}
	q := `SELECT seat_id FROM seat_locks
	      WHERE showtime_id = ? AND user_id = ?
	        AND expires_at > UTC_TIMESTAMP()
	        AND seat_id IN (` + strings.Join(placeholders, ",") + `)`
	rows, err := tx.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	held := make(map[uint64]struct{}, len(seatIDs))
	for rows.Next() {
		var id uint64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		held[id] = struct{}{}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return held, nil
}

// DeleteBySeatsTx removes the lock rows for the given seats, consumed by
// a successful reservation.
func (r *SeatLockRepo) DeleteBySeatsTx(ctx context.Context, tx *sql.Tx, showtimeID uint64, seatIDs []uint64) error {
	if len(seatIDs) == 0 {
		return nil
	}
	placeholders := make([]string, len(seatIDs))
	args := []interface{}{showtimeID}
	for i, id := range seatIDs {
		placeholders[i] = "?"
		args = append(args, id)
	}
	q := `DELETE FROM seat_locks WHERE showtime_id = ? AND seat_id IN (` +
		strings.Join(placeholders, ",") + `)`
	_, err := tx.ExecContext(ctx, q, args...)
	return err
}

// ActiveSeatIDsTx returns all seats with unexpired locks for a showtime.
// The availability projection reads this inside its snapshot transaction.
func (r *SeatLockRepo) ActiveSeatIDsTx(ctx context.Context, tx *sql.Tx, showtimeID uint64) (map[uint64]struct{}, error) {
	const q = `SELECT seat_id FROM seat_locks
	           WHERE showtime_id = ? AND expires_at > UTC_TIMESTAMP()`
	rows, err := tx.QueryContext(ctx, q, showtimeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	locked := make(map[uint64]struct{})
	for rows.Next() {
		var id uint64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		locked[id] = struct{}{}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return locked, nil
}

// DeleteExpired physically removes lapsed lock rows.  Correctness never
// depends on this; the reaper calls it for hygiene.
func (r *SeatLockRepo) DeleteExpired(ctx context.Context) (int64, error) {
	const q = `DELETE FROM seat_locks WHERE expires_at <= UTC_TIMESTAMP()`
	res, err := r.db.ExecContext(ctx, q)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
