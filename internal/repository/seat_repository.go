package repository // repository defines data access for seats

import (
	"context"      // context allows query cancellation and timeouts
	"database/sql" // sql provides DB primitives
	"errors"       // errors for sentinel definitions
	"strings"      // strings builds IN (...) placeholder lists

	"github.com/iliyamo/movie-theater-booking/internal/model"
)

// ErrSeatNotFound is returned when a seat lookup yields no rows.
var ErrSeatNotFound = errors.New("seat not found")

// SeatRepo provides methods to work with the static seat inventory.
// Seats are immutable after creation, so no mutation methods exist.
type SeatRepo struct {
	db *sql.DB
}

// NewSeatRepo constructs a SeatRepo with the given DB handle.
func NewSeatRepo(db *sql.DB) *SeatRepo {
	return &SeatRepo{db: db}
}

// GetByID retrieves a seat by its id.
func (r *SeatRepo) GetByID(ctx context.Context, id uint64) (*model.Seat, error) {
	const q = `SELECT seat_id, screen_id, seat_class, seat_label, row_num, col_num
	           FROM seats WHERE seat_id = ?`
	var s model.Seat
	err := r.db.QueryRowContext(ctx, q, id).
		Scan(&s.ID, &s.ScreenID, &s.SeatClass, &s.Label, &s.RowNum, &s.ColNum)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrSeatNotFound
		}
		return nil, err
	}
	return &s, nil
}

// ListByScreen retrieves all seats of a screen ordered by row then column.
func (r *SeatRepo) ListByScreen(ctx context.Context, screenID uint64) ([]model.Seat, error) {
	return scanSeats(r.db.QueryContext(ctx,
		`SELECT seat_id, screen_id, seat_class, seat_label, row_num, col_num
		 FROM seats WHERE screen_id = ?
		 ORDER BY row_num, col_num`, screenID))
}

// ListByScreenTx is ListByScreen inside a caller-owned transaction so the
// availability projection reads seats from the same snapshot as locks
// and tickets.
func (r *SeatRepo) ListByScreenTx(ctx context.Context, tx *sql.Tx, screenID uint64) ([]model.Seat, error) {
	return scanSeats(tx.QueryContext(ctx,
		`SELECT seat_id, screen_id, seat_class, seat_label, row_num, col_num
		 FROM seats WHERE screen_id = ?
		 ORDER BY row_num, col_num`, screenID))
}

// LockRowsTx takes row-level exclusive locks on the given seats, in
// ascending seat_id order so that two transactions locking overlapping
// seat sets never deadlock.  It returns the seat ids that exist; missing
// ids are simply absent from the result.  The caller must hold tx open
// until its seat-affecting work commits.
func (r *SeatRepo) LockRowsTx(ctx context.Context, tx *sql.Tx, seatIDs []uint64) ([]uint64, error) {
	if len(seatIDs) == 0 {
		return nil, nil
	}
	placeholders := make([]string, len(seatIDs))
	args := make([]interface{}, len(seatIDs))
	for i, id := range seatIDs {
		placeholders[i] = "?"
		args[i] = id
	}
	q := `SELECT seat_id FROM seats WHERE seat_id IN (` +
		strings.Join(placeholders, ",") + `) ORDER BY seat_id FOR UPDATE`
	rows, err := tx.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var locked []uint64
	for rows.Next() {
		var id uint64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		locked = append(locked, id)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return locked, nil
}

// GetManyTx loads the given seats inside a transaction, keyed by id.
// Used by reservation creation to price seats after their rows are locked.
func (r *SeatRepo) GetManyTx(ctx context.Context, tx *sql.Tx, seatIDs []uint64) (map[uint64]model.Seat, error) {
	if len(seatIDs) == 0 {
		return map[uint64]model.Seat{}, nil
	}
	placeholders := make([]string, len(seatIDs))
	args := make([]interface{}, len(seatIDs))
	for i, id := range seatIDs {
		placeholders[i] = "?"
		args[i] = id
	}
	q := `SELECT seat_id, screen_id, seat_class, seat_label, row_num, col_num
	      FROM seats WHERE seat_id IN (` + strings.Join(placeholders, ",") + `)`
	seats, err := scanSeats(tx.QueryContext(ctx, q, args...))
	if err != nil {
		return nil, err
	}
	byID := make(map[uint64]model.Seat, len(seats))
	for _, s := range seats {
		byID[s.ID] = s
	}
	return byID, nil
}

// scanSeats drains a seat result set into a slice.
func scanSeats(rows *sql.Rows, err error) ([]model.Seat, error) {
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var result []model.Seat
	for rows.Next() {
		var s model.Seat
		if err := rows.Scan(&s.ID, &s.ScreenID, &s.SeatClass, &s.Label, &s.RowNum, &s.ColNum); err != nil {
			return nil, err
		}
		result = append(result, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}
