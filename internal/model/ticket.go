package model

import "time"

// Ticket is one seat under one reservation, with the price frozen at
// reservation time.  A ticket whose reservation is confirmed is the
// canonical record that the seat is sold.
//
// Fields:
//  ID            – primary key identifier.
//  ReservationID – owning reservation.
//  SeatID        – the ticketed seat.
//  PriceCents    – price captured at issue time, in cents.
//  IssuedAt      – when the ticket was created (UTC).
//  SeatLabel     – seat label joined in for display; not a column of tickets.
type Ticket struct {
	ID            uint64    // tickets.ticket_id
	ReservationID uint64    // tickets.reservation_id
	SeatID        uint64    // tickets.seat_id
	PriceCents    uint32    // tickets.price_cents
	IssuedAt      time.Time // tickets.issued_at
	SeatLabel     string    // seats.seat_label (joined)
}
