package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/iliyamo/movie-theater-booking/internal/model"
)

// ErrScreenNotFound is returned when a screen lookup yields no rows.
var ErrScreenNotFound = errors.New("screen not found")

// ScreenRepo provides read access to screens.  Screen CRUD lives outside
// the booking core, so only lookups are exposed.
type ScreenRepo struct {
	db *sql.DB
}

// NewScreenRepo constructs a ScreenRepo with the given DB handle.
func NewScreenRepo(db *sql.DB) *ScreenRepo { return &ScreenRepo{db: db} }

// GetByID retrieves a screen by its id.
func (r *ScreenRepo) GetByID(ctx context.Context, id uint64) (*model.Screen, error) {
	const q = `SELECT screen_id, cinema_id, name, screen_format
	           FROM screens WHERE screen_id = ?`
	var s model.Screen
	err := r.db.QueryRowContext(ctx, q, id).
		Scan(&s.ID, &s.CinemaID, &s.Name, &s.Format)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrScreenNotFound
		}
		return nil, err
	}
	return &s, nil
}

// Exists reports whether a screen with the given id is present.
func (r *ScreenRepo) Exists(ctx context.Context, id uint64) (bool, error) {
	const q = `SELECT 1 FROM screens WHERE screen_id = ?`
	var one int
	err := r.db.QueryRowContext(ctx, q, id).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}
