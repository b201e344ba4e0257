package booking

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-sql-driver/mysql"
)

var fixedNow = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func newTestService(t *testing.T) (*Service, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	svc := NewService(db)
	svc.now = func() time.Time { return fixedNow }
	return svc, mock, db
}

func showtimeRows(id, movieID, screenID uint64) *sqlmock.Rows {
	return sqlmock.NewRows([]string{"showtime_id", "movie_id", "screen_id", "start_time", "end_time", "title"}).
		AddRow(id, movieID, screenID, fixedNow.Add(2*time.Hour), fixedNow.Add(4*time.Hour), "Dune")
}

func seatRows(id, screenID uint64, class, label string) *sqlmock.Rows {
	return sqlmock.NewRows([]string{"seat_id", "screen_id", "seat_class", "seat_label", "row_num", "col_num"}).
		AddRow(id, screenID, class, label, 1, id)
}

func expectationsMet(t *testing.T, mock sqlmock.Sqlmock) {
	t.Helper()
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestAcquireLockHappyPath(t *testing.T) {
	svc, mock, db := newTestService(t)
	defer db.Close()

	mock.ExpectQuery("FROM showtimes st").WithArgs(10).WillReturnRows(showtimeRows(10, 1, 2))
	mock.ExpectQuery("FROM seats WHERE seat_id = ").WithArgs(5).
		WillReturnRows(seatRows(5, 2, "standard", "A5"))
	mock.ExpectBegin()
	mock.ExpectQuery("ORDER BY seat_id FOR UPDATE").WithArgs(5).
		WillReturnRows(sqlmock.NewRows([]string{"seat_id"}).AddRow(5))
	mock.ExpectQuery("JOIN reservations r ON").WithArgs(10, 5).
		WillReturnRows(sqlmock.NewRows([]string{"status"}))
	mock.ExpectQuery("FROM seat_locks").WithArgs(10, 5).
		WillReturnRows(sqlmock.NewRows([]string{"showtime_id", "seat_id", "user_id", "locked_at", "expires_at"}))
	mock.ExpectExec("INSERT INTO seat_locks").
		WithArgs(10, 5, 1, fixedNow, fixedNow.Add(LockTTL)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	lock, err := svc.AcquireLock(context.Background(), 10, 5, 1)
	if err != nil {
		t.Fatalf("AcquireLock: %v", err)
	}
	if lock.UserID != 1 || lock.SeatID != 5 {
		t.Errorf("lock = %+v, want user 1 seat 5", lock)
	}
	if !lock.ExpiresAt.Equal(fixedNow.Add(LockTTL)) {
		t.Errorf("lock expiry = %v, want %v", lock.ExpiresAt, fixedNow.Add(LockTTL))
	}
	expectationsMet(t, mock)
}

func TestAcquireLockSeatSold(t *testing.T) {
	svc, mock, db := newTestService(t)
	defer db.Close()

	mock.ExpectQuery("FROM showtimes st").WithArgs(10).WillReturnRows(showtimeRows(10, 1, 2))
	mock.ExpectQuery("FROM seats WHERE seat_id = ").WithArgs(5).
		WillReturnRows(seatRows(5, 2, "standard", "A5"))
	mock.ExpectBegin()
	mock.ExpectQuery("ORDER BY seat_id FOR UPDATE").WithArgs(5).
		WillReturnRows(sqlmock.NewRows([]string{"seat_id"}).AddRow(5))
	mock.ExpectQuery("JOIN reservations r ON").WithArgs(10, 5).
		WillReturnRows(sqlmock.NewRows([]string{"status"}).AddRow("confirmed"))
	mock.ExpectRollback()

	_, err := svc.AcquireLock(context.Background(), 10, 5, 1)
	if KindOf(err) != KindSeatAlreadySold {
		t.Fatalf("error kind = %q, want %q", KindOf(err), KindSeatAlreadySold)
	}
	expectationsMet(t, mock)
}

func TestAcquireLockSeatHeldByPendingCheckout(t *testing.T) {
	svc, mock, db := newTestService(t)
	defer db.Close()

	mock.ExpectQuery("FROM showtimes st").WithArgs(10).WillReturnRows(showtimeRows(10, 1, 2))
	mock.ExpectQuery("FROM seats WHERE seat_id = ").WithArgs(5).
		WillReturnRows(seatRows(5, 2, "standard", "A5"))
	mock.ExpectBegin()
	mock.ExpectQuery("ORDER BY seat_id FOR UPDATE").WithArgs(5).
		WillReturnRows(sqlmock.NewRows([]string{"seat_id"}).AddRow(5))
	mock.ExpectQuery("JOIN reservations r ON").WithArgs(10, 5).
		WillReturnRows(sqlmock.NewRows([]string{"status"}).AddRow("pending"))
	mock.ExpectRollback()

	_, err := svc.AcquireLock(context.Background(), 10, 5, 1)
	if KindOf(err) != KindSeatLockedByOther {
		t.Fatalf("error kind = %q, want %q", KindOf(err), KindSeatLockedByOther)
	}
	expectationsMet(t, mock)
}

func TestAcquireLockHeldByOtherUser(t *testing.T) {
	svc, mock, db := newTestService(t)
	defer db.Close()

	mock.ExpectQuery("FROM showtimes st").WithArgs(10).WillReturnRows(showtimeRows(10, 1, 2))
	mock.ExpectQuery("FROM seats WHERE seat_id = ").WithArgs(5).
		WillReturnRows(seatRows(5, 2, "standard", "A5"))
	mock.ExpectBegin()
	mock.ExpectQuery("ORDER BY seat_id FOR UPDATE").WithArgs(5).
		WillReturnRows(sqlmock.NewRows([]string{"seat_id"}).AddRow(5))
	mock.ExpectQuery("JOIN reservations r ON").WithArgs(10, 5).
		WillReturnRows(sqlmock.NewRows([]string{"status"}))
	mock.ExpectQuery("FROM seat_locks").WithArgs(10, 5).
		WillReturnRows(sqlmock.NewRows([]string{"showtime_id", "seat_id", "user_id", "locked_at", "expires_at"}).
			AddRow(10, 5, 99, fixedNow.Add(-time.Minute), fixedNow.Add(10*time.Minute)))
	mock.ExpectRollback()

	_, err := svc.AcquireLock(context.Background(), 10, 5, 1)
	if KindOf(err) != KindSeatLockedByOther {
		t.Fatalf("error kind = %q, want %q", KindOf(err), KindSeatLockedByOther)
	}
	expectationsMet(t, mock)
}

func TestAcquireLockRenewalKeepsOriginalLockedAt(t *testing.T) {
	svc, mock, db := newTestService(t)
	defer db.Close()

	original := fixedNow.Add(-5 * time.Minute)
	mock.ExpectQuery("FROM showtimes st").WithArgs(10).WillReturnRows(showtimeRows(10, 1, 2))
	mock.ExpectQuery("FROM seats WHERE seat_id = ").WithArgs(5).
		WillReturnRows(seatRows(5, 2, "standard", "A5"))
	mock.ExpectBegin()
	mock.ExpectQuery("ORDER BY seat_id FOR UPDATE").WithArgs(5).
		WillReturnRows(sqlmock.NewRows([]string{"seat_id"}).AddRow(5))
	mock.ExpectQuery("JOIN reservations r ON").WithArgs(10, 5).
		WillReturnRows(sqlmock.NewRows([]string{"status"}))
	mock.ExpectQuery("FROM seat_locks").WithArgs(10, 5).
		WillReturnRows(sqlmock.NewRows([]string{"showtime_id", "seat_id", "user_id", "locked_at", "expires_at"}).
			AddRow(10, 5, 1, original, fixedNow.Add(10*time.Minute)))
	mock.ExpectExec("INSERT INTO seat_locks").
		WithArgs(10, 5, 1, original, fixedNow.Add(LockTTL)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	lock, err := svc.AcquireLock(context.Background(), 10, 5, 1)
	if err != nil {
		t.Fatalf("AcquireLock renewal: %v", err)
	}
	if !lock.LockedAt.Equal(original) {
		t.Errorf("renewal LockedAt = %v, want original %v", lock.LockedAt, original)
	}
	expectationsMet(t, mock)
}

func TestAcquireLockSeatScreenMismatch(t *testing.T) {
	svc, mock, db := newTestService(t)
	defer db.Close()

	mock.ExpectQuery("FROM showtimes st").WithArgs(10).WillReturnRows(showtimeRows(10, 1, 2))
	mock.ExpectQuery("FROM seats WHERE seat_id = ").WithArgs(5).
		WillReturnRows(seatRows(5, 3, "standard", "A5")) // different screen

	_, err := svc.AcquireLock(context.Background(), 10, 5, 1)
	if KindOf(err) != KindSeatScreenMismatch {
		t.Fatalf("error kind = %q, want %q", KindOf(err), KindSeatScreenMismatch)
	}
	expectationsMet(t, mock)
}

func TestReleaseLockNoActiveLock(t *testing.T) {
	svc, mock, db := newTestService(t)
	defer db.Close()

	mock.ExpectExec("DELETE FROM seat_locks").WithArgs(10, 5, 1).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := svc.ReleaseLock(context.Background(), 10, 5, 1)
	if KindOf(err) != KindNoActiveLock {
		t.Fatalf("error kind = %q, want %q", KindOf(err), KindNoActiveLock)
	}
	expectationsMet(t, mock)
}

func TestCreateReservationHappyPath(t *testing.T) {
	svc, mock, db := newTestService(t)
	defer db.Close()

	mock.ExpectQuery("FROM showtimes st").WithArgs(10).WillReturnRows(showtimeRows(10, 1, 2))
	mock.ExpectBegin()
	mock.ExpectQuery("ORDER BY seat_id FOR UPDATE").WithArgs(5, 6).
		WillReturnRows(sqlmock.NewRows([]string{"seat_id"}).AddRow(5).AddRow(6))
	mock.ExpectQuery("seat_class, seat_label").WithArgs(5, 6).
		WillReturnRows(sqlmock.NewRows([]string{"seat_id", "screen_id", "seat_class", "seat_label", "row_num", "col_num"}).
			AddRow(5, 2, "standard", "A5", 1, 5).
			AddRow(6, 2, "premium", "A6", 1, 6))
	mock.ExpectQuery("FROM seat_locks").WithArgs(10, 1, 5, 6).
		WillReturnRows(sqlmock.NewRows([]string{"seat_id"}).AddRow(5).AddRow(6))
	mock.ExpectQuery("DISTINCT t.seat_id").WithArgs(10, 5, 6).
		WillReturnRows(sqlmock.NewRows([]string{"seat_id"}))
	mock.ExpectExec("INSERT INTO reservations").
		WithArgs(1, 10, "pending", fixedNow, fixedNow.Add(ReservationTTL)).
		WillReturnResult(sqlmock.NewResult(77, 1))
	mock.ExpectExec("INSERT INTO tickets").
		WithArgs(77, 5, 1000, fixedNow).
		WillReturnResult(sqlmock.NewResult(501, 1))
	mock.ExpectExec("INSERT INTO tickets").
		WithArgs(77, 6, 1500, fixedNow).
		WillReturnResult(sqlmock.NewResult(502, 1))
	mock.ExpectExec("DELETE FROM seat_locks").WithArgs(10, 5, 6).
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectCommit()

	res, tickets, err := svc.CreateReservation(context.Background(), 1, 10, []uint64{6, 5, 6})
	if err != nil {
		t.Fatalf("CreateReservation: %v", err)
	}
	if res.ID != 77 || res.Status != "pending" {
		t.Errorf("reservation = %+v, want id 77 status pending", res)
	}
	if len(tickets) != 2 {
		t.Fatalf("got %d tickets, want 2", len(tickets))
	}
	if tickets[0].PriceCents != 1000 || tickets[1].PriceCents != 1500 {
		t.Errorf("ticket prices = %d, %d; want 1000, 1500", tickets[0].PriceCents, tickets[1].PriceCents)
	}
	if !res.ExpiresAt.Equal(fixedNow.Add(ReservationTTL)) {
		t.Errorf("reservation expiry = %v, want %v", res.ExpiresAt, fixedNow.Add(ReservationTTL))
	}
	expectationsMet(t, mock)
}

func TestCreateReservationMissingLockRollsBack(t *testing.T) {
	svc, mock, db := newTestService(t)
	defer db.Close()

	mock.ExpectQuery("FROM showtimes st").WithArgs(10).WillReturnRows(showtimeRows(10, 1, 2))
	mock.ExpectBegin()
	mock.ExpectQuery("ORDER BY seat_id FOR UPDATE").WithArgs(5, 6).
		WillReturnRows(sqlmock.NewRows([]string{"seat_id"}).AddRow(5).AddRow(6))
	mock.ExpectQuery("seat_class, seat_label").WithArgs(5, 6).
		WillReturnRows(sqlmock.NewRows([]string{"seat_id", "screen_id", "seat_class", "seat_label", "row_num", "col_num"}).
			AddRow(5, 2, "standard", "A5", 1, 5).
			AddRow(6, 2, "standard", "A6", 1, 6))
	// User only holds a lock on seat 5.
	mock.ExpectQuery("FROM seat_locks").WithArgs(10, 1, 5, 6).
		WillReturnRows(sqlmock.NewRows([]string{"seat_id"}).AddRow(5))
	mock.ExpectRollback()

	_, _, err := svc.CreateReservation(context.Background(), 1, 10, []uint64{5, 6})
	be := AsError(err)
	if be == nil || be.Kind != KindSeatNotLockedByUser {
		t.Fatalf("error = %v, want %q", err, KindSeatNotLockedByUser)
	}
	if be.SeatID != 6 {
		t.Errorf("offending seat = %d, want 6", be.SeatID)
	}
	expectationsMet(t, mock)
}

func TestCreateReservationSoldSeatRollsBack(t *testing.T) {
	svc, mock, db := newTestService(t)
	defer db.Close()

	mock.ExpectQuery("FROM showtimes st").WithArgs(10).WillReturnRows(showtimeRows(10, 1, 2))
	mock.ExpectBegin()
	mock.ExpectQuery("ORDER BY seat_id FOR UPDATE").WithArgs(5).
		WillReturnRows(sqlmock.NewRows([]string{"seat_id"}).AddRow(5))
	mock.ExpectQuery("seat_class, seat_label").WithArgs(5).
		WillReturnRows(seatRows(5, 2, "standard", "A5"))
	mock.ExpectQuery("FROM seat_locks").WithArgs(10, 1, 5).
		WillReturnRows(sqlmock.NewRows([]string{"seat_id"}).AddRow(5))
	mock.ExpectQuery("DISTINCT t.seat_id").WithArgs(10, 5).
		WillReturnRows(sqlmock.NewRows([]string{"seat_id"}).AddRow(5))
	mock.ExpectRollback()

	_, _, err := svc.CreateReservation(context.Background(), 1, 10, []uint64{5})
	if KindOf(err) != KindSeatAlreadySold {
		t.Fatalf("error kind = %q, want %q", KindOf(err), KindSeatAlreadySold)
	}
	expectationsMet(t, mock)
}

func reservationRow(id, userID, showtimeID uint64, status string, expiresAt time.Time) *sqlmock.Rows {
	return sqlmock.NewRows([]string{"reservation_id", "user_id", "showtime_id", "status", "created_at", "expires_at"}).
		AddRow(id, userID, showtimeID, status, fixedNow.Add(-time.Minute), expiresAt)
}

func TestConfirmReservationHappyPath(t *testing.T) {
	svc, mock, db := newTestService(t)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectQuery("FOR UPDATE").WithArgs(9).
		WillReturnRows(reservationRow(9, 1, 10, "pending", fixedNow.Add(20*time.Minute)))
	mock.ExpectQuery("expires_at <= UTC_TIMESTAMP").WithArgs(9).
		WillReturnRows(sqlmock.NewRows([]string{"expired"}).AddRow(false))
	mock.ExpectQuery("SELECT seat_id FROM tickets").WithArgs(9).
		WillReturnRows(sqlmock.NewRows([]string{"seat_id"}).AddRow(5))
	mock.ExpectQuery("ORDER BY seat_id FOR UPDATE").WithArgs(5).
		WillReturnRows(sqlmock.NewRows([]string{"seat_id"}).AddRow(5))
	mock.ExpectQuery("DISTINCT t.seat_id").WithArgs(10, 5).
		WillReturnRows(sqlmock.NewRows([]string{"seat_id"}))
	mock.ExpectExec("UPDATE reservations SET status").WithArgs("confirmed", 9).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	res, err := svc.ConfirmReservation(context.Background(), 9)
	if err != nil {
		t.Fatalf("ConfirmReservation: %v", err)
	}
	if res.Status != "confirmed" {
		t.Errorf("status = %q, want confirmed", res.Status)
	}
	expectationsMet(t, mock)
}

// A confirm that loses the race to a committed sale must block on the
// seat rows first and then surface the competitor's ticket, never
// confirm alongside it.
func TestConfirmReservationLocksSeatsBeforeSoldCheck(t *testing.T) {
	svc, mock, db := newTestService(t)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectQuery("FOR UPDATE").WithArgs(9).
		WillReturnRows(reservationRow(9, 1, 10, "pending", fixedNow.Add(20*time.Minute)))
	mock.ExpectQuery("expires_at <= UTC_TIMESTAMP").WithArgs(9).
		WillReturnRows(sqlmock.NewRows([]string{"expired"}).AddRow(false))
	mock.ExpectQuery("SELECT seat_id FROM tickets").WithArgs(9).
		WillReturnRows(sqlmock.NewRows([]string{"seat_id"}).AddRow(5))
	// The seat-row lock must come before the sold re-check: it is what
	// forces a concurrent confirm's tickets to be visible to this one.
	mock.ExpectQuery("ORDER BY seat_id FOR UPDATE").WithArgs(5).
		WillReturnRows(sqlmock.NewRows([]string{"seat_id"}).AddRow(5))
	mock.ExpectQuery("DISTINCT t.seat_id").WithArgs(10, 5).
		WillReturnRows(sqlmock.NewRows([]string{"seat_id"}).AddRow(5))
	mock.ExpectRollback()

	_, err := svc.ConfirmReservation(context.Background(), 9)
	be := AsError(err)
	if be == nil || be.Kind != KindSeatAlreadySold {
		t.Fatalf("error = %v, want %q", err, KindSeatAlreadySold)
	}
	if be.SeatID != 5 {
		t.Errorf("reported seat = %d, want 5", be.SeatID)
	}
	expectationsMet(t, mock)
}

func TestConfirmReservationExpired(t *testing.T) {
	svc, mock, db := newTestService(t)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectQuery("FOR UPDATE").WithArgs(9).
		WillReturnRows(reservationRow(9, 1, 10, "pending", fixedNow.Add(-time.Second)))
	// Expiry is judged by the store clock, not the process clock.
	mock.ExpectQuery("expires_at <= UTC_TIMESTAMP").WithArgs(9).
		WillReturnRows(sqlmock.NewRows([]string{"expired"}).AddRow(true))
	mock.ExpectExec("UPDATE reservations SET status").WithArgs("expired", 9).
		WillReturnResult(sqlmock.NewResult(0, 1))
	// The expiry flip commits even though the confirm fails.
	mock.ExpectCommit()

	_, err := svc.ConfirmReservation(context.Background(), 9)
	if KindOf(err) != KindReservationExpired {
		t.Fatalf("error kind = %q, want %q", KindOf(err), KindReservationExpired)
	}
	expectationsMet(t, mock)
}

func TestConfirmReservationAlreadyConfirmed(t *testing.T) {
	svc, mock, db := newTestService(t)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectQuery("FOR UPDATE").WithArgs(9).
		WillReturnRows(reservationRow(9, 1, 10, "confirmed", fixedNow.Add(20*time.Minute)))
	mock.ExpectRollback()

	_, err := svc.ConfirmReservation(context.Background(), 9)
	be := AsError(err)
	if be == nil || be.Kind != KindInvalidState {
		t.Fatalf("error = %v, want %q", err, KindInvalidState)
	}
	if be.Status != "confirmed" {
		t.Errorf("reported status = %q, want confirmed", be.Status)
	}
	expectationsMet(t, mock)
}

func TestCancelReservationAlreadyCancelled(t *testing.T) {
	svc, mock, db := newTestService(t)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectQuery("FOR UPDATE").WithArgs(9).
		WillReturnRows(reservationRow(9, 1, 10, "cancelled", fixedNow.Add(20*time.Minute)))
	mock.ExpectRollback()

	_, err := svc.CancelReservation(context.Background(), 9)
	if KindOf(err) != KindAlreadyCancelled {
		t.Fatalf("error kind = %q, want %q", KindOf(err), KindAlreadyCancelled)
	}
	expectationsMet(t, mock)
}

func TestCancelConfirmedReservationReleasesSeats(t *testing.T) {
	svc, mock, db := newTestService(t)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectQuery("FOR UPDATE").WithArgs(9).
		WillReturnRows(reservationRow(9, 1, 10, "confirmed", fixedNow.Add(20*time.Minute)))
	mock.ExpectExec("UPDATE reservations SET status").WithArgs("cancelled", 9).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	res, err := svc.CancelReservation(context.Background(), 9)
	if err != nil {
		t.Fatalf("CancelReservation: %v", err)
	}
	if res.Status != "cancelled" {
		t.Errorf("status = %q, want cancelled", res.Status)
	}
	expectationsMet(t, mock)
}

// A failing showtime lookup while assembling the listing is a storage
// error, not a missing row, and must surface instead of silently
// producing a detail without its showtime.
func TestListReservationsPropagatesShowtimeLookupFailure(t *testing.T) {
	svc, mock, db := newTestService(t)
	defer db.Close()

	mock.ExpectQuery("FROM reservations WHERE user_id").WithArgs(1).
		WillReturnRows(reservationRow(9, 1, 10, "confirmed", fixedNow.Add(20*time.Minute)))
	mock.ExpectQuery("ORDER BY s.row_num, s.col_num").WithArgs(9).
		WillReturnRows(sqlmock.NewRows([]string{"ticket_id", "reservation_id", "seat_id", "price_cents", "issued_at", "seat_label"}).
			AddRow(77, 9, 5, 1000, fixedNow, "A5"))
	mock.ExpectQuery("FROM showtimes st").WithArgs(10).
		WillReturnError(errors.New("connection reset"))

	_, err := svc.ListReservations(context.Background(), 1)
	if KindOf(err) != KindStorage {
		t.Fatalf("error kind = %q, want %q", KindOf(err), KindStorage)
	}
	expectationsMet(t, mock)
}

func TestListReservationsToleratesDeletedShowtime(t *testing.T) {
	svc, mock, db := newTestService(t)
	defer db.Close()

	mock.ExpectQuery("FROM reservations WHERE user_id").WithArgs(1).
		WillReturnRows(reservationRow(9, 1, 10, "confirmed", fixedNow.Add(20*time.Minute)))
	mock.ExpectQuery("ORDER BY s.row_num, s.col_num").WithArgs(9).
		WillReturnRows(sqlmock.NewRows([]string{"ticket_id", "reservation_id", "seat_id", "price_cents", "issued_at", "seat_label"}).
			AddRow(77, 9, 5, 1000, fixedNow, "A5"))
	mock.ExpectQuery("FROM showtimes st").WithArgs(10).
		WillReturnRows(sqlmock.NewRows([]string{"showtime_id", "movie_id", "screen_id", "start_time", "end_time", "title"}))

	details, err := svc.ListReservations(context.Background(), 1)
	if err != nil {
		t.Fatalf("ListReservations: %v", err)
	}
	if len(details) != 1 {
		t.Fatalf("details = %d, want 1", len(details))
	}
	if details[0].Showtime != nil {
		t.Errorf("showtime = %+v, want nil for a deleted showtime", details[0].Showtime)
	}
	if len(details[0].Tickets) != 1 {
		t.Errorf("tickets = %d, want 1", len(details[0].Tickets))
	}
	expectationsMet(t, mock)
}

func TestGetAvailabilitySnapshot(t *testing.T) {
	svc, mock, db := newTestService(t)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectQuery("FROM showtimes st").WithArgs(10).WillReturnRows(showtimeRows(10, 1, 2))
	mock.ExpectQuery("ORDER BY row_num, col_num").WithArgs(2).
		WillReturnRows(sqlmock.NewRows([]string{"seat_id", "screen_id", "seat_class", "seat_label", "row_num", "col_num"}).
			AddRow(1, 2, "standard", "A1", 1, 1).
			AddRow(2, 2, "standard", "A2", 1, 2).
			AddRow(3, 2, "standard", "A3", 1, 3).
			AddRow(4, 2, "standard", "A4", 1, 4))
	mock.ExpectQuery("r.status = 'confirmed'").WithArgs(10).
		WillReturnRows(sqlmock.NewRows([]string{"seat_id"}).AddRow(1))
	mock.ExpectQuery("FROM seat_locks").WithArgs(10).
		WillReturnRows(sqlmock.NewRows([]string{"seat_id"}).AddRow(2))
	mock.ExpectQuery("r.status = 'pending'").WithArgs(10).
		WillReturnRows(sqlmock.NewRows([]string{"seat_id"}).AddRow(3))
	mock.ExpectCommit()

	seats, err := svc.GetAvailability(context.Background(), 10)
	if err != nil {
		t.Fatalf("GetAvailability: %v", err)
	}
	want := map[uint64]string{1: "sold", 2: "locked", 3: "locked", 4: "available"}
	for _, a := range seats {
		if a.Status != want[a.ID] {
			t.Errorf("seat %d status = %q, want %q", a.ID, a.Status, want[a.ID])
		}
	}
	expectationsMet(t, mock)
}

func TestStoreErrClassification(t *testing.T) {
	svc, _, db := newTestService(t)
	defer db.Close()

	for _, num := range []uint16{1205, 1213, 1062} {
		e := svc.storeErr(&mysql.MySQLError{Number: num})
		if e.Kind != KindConcurrencyConflict || !e.Retryable() {
			t.Errorf("mysql error %d classified as %q, want retryable conflict", num, e.Kind)
		}
	}
	e := svc.storeErr(&mysql.MySQLError{Number: 1049})
	if e.Kind != KindStorage {
		t.Errorf("mysql error 1049 classified as %q, want %q", e.Kind, KindStorage)
	}
}

func TestDedupeSorted(t *testing.T) {
	got := dedupeSorted([]uint64{6, 0, 5, 6, 5, 2})
	want := []uint64{2, 5, 6}
	if len(got) != len(want) {
		t.Fatalf("dedupeSorted = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("dedupeSorted = %v, want %v", got, want)
		}
	}
}
