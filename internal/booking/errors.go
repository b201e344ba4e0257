package booking

import (
	"errors"
	"fmt"
)

// Kind identifies the failure class of a booking operation.  Handlers
// map kinds onto HTTP status codes; the kinds themselves are transport
// agnostic.
type Kind string

const (
	// KindNotFound signals that a referenced entity does not exist.
	KindNotFound Kind = "not_found"
	// KindValidation signals missing or malformed input.
	KindValidation Kind = "validation_error"
	// KindSeatScreenMismatch signals a seat that does not belong to the
	// screen the showtime plays in.
	KindSeatScreenMismatch Kind = "seat_screen_mismatch"
	// KindSeatAlreadySold signals a seat with a ticket under a confirmed
	// reservation.
	KindSeatAlreadySold Kind = "seat_already_sold"
	// KindSeatLockedByOther signals a seat held by another user, either
	// through an unexpired lock or an unexpired pending reservation.
	KindSeatLockedByOther Kind = "seat_locked_by_other"
	// KindSeatNotLockedByUser signals a reservation attempt over a seat
	// the user holds no live lock on.
	KindSeatNotLockedByUser Kind = "seat_not_locked_by_user"
	// KindNoActiveLock signals a release of a lock that does not exist.
	KindNoActiveLock Kind = "no_active_lock"
	// KindReservationExpired signals a confirm past the deadline.
	KindReservationExpired Kind = "reservation_expired"
	// KindInvalidState signals a transition from the wrong status.
	KindInvalidState Kind = "invalid_state"
	// KindAlreadyCancelled signals a second cancel.
	KindAlreadyCancelled Kind = "already_cancelled"
	// KindShowtimeOverlap signals a schedule collision on a screen.
	KindShowtimeOverlap Kind = "showtime_overlap"
	// KindConcurrencyConflict signals a transaction aborted by a
	// concurrent mutation; the call is safe to retry.
	KindConcurrencyConflict Kind = "concurrency_conflict"
	// KindStorage wraps unexpected store failures.  The cause never
	// reaches API clients.
	KindStorage Kind = "storage_error"
)

// Error is the typed result every failing booking operation returns.
// It names the offending identifier where one applies so callers can
// report which seat or reservation tripped the failure.
type Error struct {
	Kind          Kind
	Entity        string // entity name for not_found failures
	SeatID        uint64 // offending seat, when applicable
	ReservationID uint64 // offending reservation, when applicable
	Status        string // current status for invalid_state failures
	cause         error
}

func (e *Error) Error() string {
	switch e.Kind {
	case KindNotFound:
		return e.Entity + " not found"
	case KindValidation:
		return e.Entity // validation errors reuse Entity as the message
	case KindSeatScreenMismatch:
		return fmt.Sprintf("seat %d does not belong to the showtime screen", e.SeatID)
	case KindSeatAlreadySold:
		return fmt.Sprintf("seat %d is already sold", e.SeatID)
	case KindSeatLockedByOther:
		return fmt.Sprintf("seat %d is locked by another user", e.SeatID)
	case KindSeatNotLockedByUser:
		return fmt.Sprintf("seat %d is not locked by this user or the lock has expired", e.SeatID)
	case KindNoActiveLock:
		return fmt.Sprintf("no active lock on seat %d for this user", e.SeatID)
	case KindReservationExpired:
		return fmt.Sprintf("reservation %d has expired", e.ReservationID)
	case KindInvalidState:
		return fmt.Sprintf("reservation %d is already %s", e.ReservationID, e.Status)
	case KindAlreadyCancelled:
		return fmt.Sprintf("reservation %d is already cancelled", e.ReservationID)
	case KindShowtimeOverlap:
		return "showtime overlaps an existing showtime on this screen"
	case KindConcurrencyConflict:
		return "operation aborted by a concurrent update, retry"
	default:
		return "storage error"
	}
}

// Unwrap exposes the underlying cause for logging; API responses only
// ever carry the Error itself.
func (e *Error) Unwrap() error { return e.cause }

// Retryable reports whether the caller may safely repeat the operation.
func (e *Error) Retryable() bool { return e.Kind == KindConcurrencyConflict }

// KindOf extracts the Kind from an error, or "" for non-booking errors.
func KindOf(err error) Kind {
	var be *Error
	if errors.As(err, &be) {
		return be.Kind
	}
	return ""
}

// AsError extracts the typed booking error, or nil.
func AsError(err error) *Error {
	var be *Error
	if errors.As(err, &be) {
		return be
	}
	return nil
}

func notFound(entity string) *Error {
	return &Error{Kind: KindNotFound, Entity: entity}
}

func validation(msg string) *Error {
	return &Error{Kind: KindValidation, Entity: msg}
}

func seatErr(kind Kind, seatID uint64) *Error {
	return &Error{Kind: kind, SeatID: seatID}
}
