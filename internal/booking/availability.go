package booking

import "github.com/iliyamo/movie-theater-booking/internal/model"

// projectAvailability merges the seat inventory with the sold and held
// sets into the three-way partition clients render.  Precedence is
// sold > locked > available; a seat in both sets reports sold.  The
// caller is responsible for reading all three inputs from one snapshot.
func projectAvailability(seats []model.Seat, sold, locked map[uint64]struct{}) []model.SeatAvailability {
	out := make([]model.SeatAvailability, 0, len(seats))
	for _, seat := range seats {
		status := model.SeatAvailable
		if _, ok := sold[seat.ID]; ok {
			status = model.SeatSold
		} else if _, ok := locked[seat.ID]; ok {
			status = model.SeatLocked
		}
		out = append(out, model.SeatAvailability{Seat: seat, Status: status})
	}
	return out
}
