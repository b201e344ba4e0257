package model

import "time"

// Reservation status values.  A reservation starts out pending and moves
// to exactly one of the terminal states; confirmed and cancelled are
// never left once entered, and expired is only reached from pending.
const (
	ReservationPending   = "pending"
	ReservationConfirmed = "confirmed"
	ReservationCancelled = "cancelled"
	ReservationExpired   = "expired"
)

// Reservation is a user's claim over a set of seats for one showtime.
// Its tickets carry the per-seat prices; a ticket under a confirmed
// reservation is the canonical proof that the seat is sold.
//
// Fields:
//  ID         – primary key identifier.
//  UserID     – user who created the reservation.
//  ShowtimeID – showtime being reserved.
//  Status     – pending, confirmed, cancelled or expired.
//  CreatedAt  – creation timestamp (UTC).
//  ExpiresAt  – deadline for confirmation (UTC, strictly after CreatedAt).
type Reservation struct {
	ID         uint64    // reservations.reservation_id
	UserID     uint64    // reservations.user_id
	ShowtimeID uint64    // reservations.showtime_id
	Status     string    // reservations.status
	CreatedAt  time.Time // reservations.created_at
	ExpiresAt  time.Time // reservations.expires_at
}
