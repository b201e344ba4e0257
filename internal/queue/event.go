// Package queue defines message payloads exchanged over the message broker.
package queue

// ReservationConfirmedEvent is published when a reservation is finalized
// and its seats become sold.  It carries enough for downstream consumers
// (logging, notifications, analytics) to act without querying the
// primary database.  MessageID is a UUID so consumers can deduplicate
// redelivered messages.
type ReservationConfirmedEvent struct {
	MessageID     string   `json:"message_id"`
	ReservationID uint64   `json:"reservation_id"`
	UserID        uint64   `json:"user_id"`
	ShowtimeID    uint64   `json:"showtime_id"`
	MovieTitle    string   `json:"movie_title"`
	StartTime     string   `json:"start_time"`
	SeatLabels    []string `json:"seats"`
	TotalCents    uint32   `json:"total_cents"`
	ConfirmedAt   string   `json:"confirmed_at"`
}
