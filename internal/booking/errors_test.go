package booking

import (
	"errors"
	"fmt"
	"testing"
)

func TestKindOf(t *testing.T) {
	if got := KindOf(seatErr(KindSeatAlreadySold, 3)); got != KindSeatAlreadySold {
		t.Errorf("KindOf = %q, want %q", got, KindSeatAlreadySold)
	}
	if got := KindOf(errors.New("plain")); got != "" {
		t.Errorf("KindOf(plain error) = %q, want empty", got)
	}
	if got := KindOf(nil); got != "" {
		t.Errorf("KindOf(nil) = %q, want empty", got)
	}
}

func TestKindOfUnwrapsWrappedErrors(t *testing.T) {
	wrapped := fmt.Errorf("during checkout: %w", notFound("showtime"))
	if got := KindOf(wrapped); got != KindNotFound {
		t.Errorf("KindOf(wrapped) = %q, want %q", got, KindNotFound)
	}
}

func TestRetryableOnlyForConcurrencyConflict(t *testing.T) {
	conflict := &Error{Kind: KindConcurrencyConflict}
	if !conflict.Retryable() {
		t.Error("concurrency conflict should be retryable")
	}
	for _, e := range []*Error{
		seatErr(KindSeatAlreadySold, 1),
		notFound("seat"),
		{Kind: KindStorage},
	} {
		if e.Retryable() {
			t.Errorf("%q should not be retryable", e.Kind)
		}
	}
}

func TestErrorMessagesNameTheOffender(t *testing.T) {
	cases := []struct {
		err  *Error
		want string
	}{
		{notFound("reservation"), "reservation not found"},
		{seatErr(KindSeatAlreadySold, 12), "seat 12 is already sold"},
		{seatErr(KindSeatLockedByOther, 4), "seat 4 is locked by another user"},
		{&Error{Kind: KindInvalidState, ReservationID: 9, Status: "confirmed"}, "reservation 9 is already confirmed"},
		{&Error{Kind: KindReservationExpired, ReservationID: 5}, "reservation 5 has expired"},
	}
	for _, c := range cases {
		if got := c.err.Error(); got != c.want {
			t.Errorf("Error() = %q, want %q", got, c.want)
		}
	}
}

func TestUnwrapExposesCause(t *testing.T) {
	cause := errors.New("connection reset")
	e := &Error{Kind: KindStorage, cause: cause}
	if !errors.Is(e, cause) {
		t.Error("errors.Is should reach the wrapped cause")
	}
}
