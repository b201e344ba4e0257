package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/go-sql-driver/mysql"

	"github.com/iliyamo/movie-theater-booking/internal/model"
)

// Sentinel errors for showtime access.
var (
	// ErrShowtimeNotFound is returned when a showtime lookup yields no rows.
	ErrShowtimeNotFound = errors.New("showtime not found")
	// ErrShowtimeOverlap is returned when a new showtime's [start, end)
	// interval collides with an existing showtime on the same screen.
	ErrShowtimeOverlap = errors.New("showtime overlaps an existing showtime on this screen")
)

// ShowtimeRepo provides access to scheduled screenings.  Creation
// enforces the no-overlap invariant the booking core relies on; every
// other showtime mutation is out of scope.
type ShowtimeRepo struct {
	db *sql.DB
}

// NewShowtimeRepo constructs a ShowtimeRepo with the given DB handle.
func NewShowtimeRepo(db *sql.DB) *ShowtimeRepo { return &ShowtimeRepo{db: db} }

// DB exposes the underlying handle so callers can open transactions that
// span multiple repositories.
func (r *ShowtimeRepo) DB() *sql.DB { return r.db }

// GetByID retrieves a showtime with its movie title joined in.
func (r *ShowtimeRepo) GetByID(ctx context.Context, id uint64) (*model.Showtime, error) {
	const q = `SELECT st.showtime_id, st.movie_id, st.screen_id, st.start_time, st.end_time, m.title
	           FROM showtimes st
	           JOIN movies m ON m.movie_id = st.movie_id
	           WHERE st.showtime_id = ?`
	var st model.Showtime
	err := r.db.QueryRowContext(ctx, q, id).
		Scan(&st.ID, &st.MovieID, &st.ScreenID, &st.StartTime, &st.EndTime, &st.MovieTitle)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrShowtimeNotFound
		}
		return nil, err
	}
	return &st, nil
}

// GetByIDTx is GetByID inside a caller-owned transaction.
func (r *ShowtimeRepo) GetByIDTx(ctx context.Context, tx *sql.Tx, id uint64) (*model.Showtime, error) {
	const q = `SELECT st.showtime_id, st.movie_id, st.screen_id, st.start_time, st.end_time, m.title
	           FROM showtimes st
	           JOIN movies m ON m.movie_id = st.movie_id
	           WHERE st.showtime_id = ?`
	var st model.Showtime
	err := tx.QueryRowContext(ctx, q, id).
		Scan(&st.ID, &st.MovieID, &st.ScreenID, &st.StartTime, &st.EndTime, &st.MovieTitle)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrShowtimeNotFound
		}
		return nil, err
	}
	return &st, nil
}

// Create schedules a new showtime.  The whole check-then-insert runs in
// one transaction: existing showtimes on the screen are locked FOR
// UPDATE, the [start, end) interval is tested for overlap, and the row
// is inserted.  The unique key on (screen_id, start_time) backstops the
// check, so a duplicate-key error also maps to ErrShowtimeOverlap.
func (r *ShowtimeRepo) Create(ctx context.Context, st *model.Showtime) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	const overlapQ = `SELECT COUNT(*) FROM showtimes
	                  WHERE screen_id = ? AND start_time < ? AND end_time > ?
	                  FOR UPDATE`
	var n int
	if err := tx.QueryRowContext(ctx, overlapQ, st.ScreenID, st.EndTime.UTC(), st.StartTime.UTC()).Scan(&n); err != nil {
		return err
	}
	if n > 0 {
		return ErrShowtimeOverlap
	}

	const ins = `INSERT INTO showtimes (movie_id, screen_id, start_time, end_time)
	             VALUES (?, ?, ?, ?)`
	res, err := tx.ExecContext(ctx, ins, st.MovieID, st.ScreenID, st.StartTime.UTC(), st.EndTime.UTC())
	if err != nil {
		var me *mysql.MySQLError
		if errors.As(err, &me) && me.Number == 1062 {
			return ErrShowtimeOverlap
		}
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	st.ID = uint64(id)

	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	return nil
}

// Delete removes a showtime; foreign keys cascade to its reservations,
// tickets and seat locks.  Returns ErrShowtimeNotFound when the id does
// not exist.
func (r *ShowtimeRepo) Delete(ctx context.Context, id uint64) error {
	const q = `DELETE FROM showtimes WHERE showtime_id = ?`
	res, err := r.db.ExecContext(ctx, q, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrShowtimeNotFound
	}
	return nil
}
