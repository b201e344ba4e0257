package model

import "time"

// SeatLock is a short-lived exclusive hold on one seat for one showtime,
// taken while a user walks through checkout.  The (ShowtimeID, SeatID)
// pair is the primary key, so at most one row per seat exists and an
// acquisition over an expired row simply overwrites it.  A lock past
// ExpiresAt is dead even if the row still lingers.
//
// Fields:
//  ShowtimeID – showtime the hold applies to.
//  SeatID     – seat being held.
//  UserID     – holder of the lock.
//  LockedAt   – when the hold was first acquired (UTC); renewals keep it.
//  ExpiresAt  – when the hold lapses (UTC).
type SeatLock struct {
	ShowtimeID uint64    // seat_locks.showtime_id
	SeatID     uint64    // seat_locks.seat_id
	UserID     uint64    // seat_locks.user_id
	LockedAt   time.Time // seat_locks.locked_at
	ExpiresAt  time.Time // seat_locks.expires_at
}
