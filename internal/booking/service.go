// Package booking implements the seat-reservation core: short-lived
// seat locks taken during checkout, the reservation state machine that
// turns consumed locks into priced tickets, and the availability
// projection that partitions a showtime's seats into available, locked
// and sold.  The MySQL store is the only synchronization point; every
// seat-affecting operation runs as one transaction and serializes per
// seat through row locks on the seats table, taken in ascending seat_id
// order so overlapping seat sets never deadlock.
package booking

import (
	"context"
	"database/sql"
	"errors"
	"sort"
	"time"

	"github.com/go-sql-driver/mysql"

	"github.com/iliyamo/movie-theater-booking/internal/model"
	"github.com/iliyamo/movie-theater-booking/internal/repository"
)

// Fixed checkout windows.  These are contracts of the booking flow, not
// operator tunables.
const (
	// LockTTL is how long a seat lock shields a seat while the holder
	// walks through checkout.
	LockTTL = 15 * time.Minute
	// ReservationTTL is how long a pending reservation may wait for
	// confirmation before it lapses.
	ReservationTTL = 30 * time.Minute
)

// Service exposes the booking operations.  All methods return typed
// *Error values on failure and never leave partial state behind: each
// mutating call is one transaction, committed or rolled back whole.
type Service struct {
	db           *sql.DB
	movies       *repository.MovieRepo
	screens      *repository.ScreenRepo
	seats        *repository.SeatRepo
	showtimes    *repository.ShowtimeRepo
	locks        *repository.SeatLockRepo
	reservations *repository.ReservationRepo
	tickets      *repository.TicketRepo
	prices       PriceTable
	now          func() time.Time
}

// NewService wires a Service over the given database handle.
func NewService(db *sql.DB) *Service {
	return &Service{
		db:           db,
		movies:       repository.NewMovieRepo(db),
		screens:      repository.NewScreenRepo(db),
		seats:        repository.NewSeatRepo(db),
		showtimes:    repository.NewShowtimeRepo(db),
		locks:        repository.NewSeatLockRepo(db),
		reservations: repository.NewReservationRepo(db),
		tickets:      repository.NewTicketRepo(db),
		prices:       DefaultPriceTable(),
		now:          time.Now,
	}
}

// ReservationDetail bundles a reservation with its tickets and showtime
// for listing responses.
type ReservationDetail struct {
	Reservation model.Reservation
	Tickets     []model.Ticket
	Showtime    *model.Showtime
}

// ListSeats returns the static seat inventory of a screen.
func (s *Service) ListSeats(ctx context.Context, screenID uint64) ([]model.Seat, error) {
	if screenID == 0 {
		return nil, validation("screen id is required")
	}
	ok, err := s.screens.Exists(ctx, screenID)
	if err != nil {
		return nil, s.storeErr(err)
	}
	if !ok {
		return nil, notFound("screen")
	}
	seats, err := s.seats.ListByScreen(ctx, screenID)
	if err != nil {
		return nil, s.storeErr(err)
	}
	return seats, nil
}

// GetShowtime returns one showtime with its movie title.
func (s *Service) GetShowtime(ctx context.Context, showtimeID uint64) (*model.Showtime, error) {
	st, err := s.showtimes.GetByID(ctx, showtimeID)
	if err != nil {
		if errors.Is(err, repository.ErrShowtimeNotFound) {
			return nil, notFound("showtime")
		}
		return nil, s.storeErr(err)
	}
	return st, nil
}

// AcquireLock takes or renews the exclusive hold on one seat for one
// showtime.  The check-then-act sequence is serialized per seat: the
// seats row is locked FOR UPDATE before sold status and any existing
// hold are inspected, so two concurrent acquisitions for the same seat
// cannot both pass the checks.  Renewal by the current holder extends
// the expiry; a lapsed hold is overwritten regardless of holder.
func (s *Service) AcquireLock(ctx context.Context, showtimeID, seatID, userID uint64) (*model.SeatLock, error) {
	if showtimeID == 0 || seatID == 0 || userID == 0 {
		return nil, validation("showtime id, seat id and user id are required")
	}
	showtime, err := s.GetShowtime(ctx, showtimeID)
	if err != nil {
		return nil, err
	}
	seat, err := s.seats.GetByID(ctx, seatID)
	if err != nil {
		if errors.Is(err, repository.ErrSeatNotFound) {
			return nil, notFound("seat")
		}
		return nil, s.storeErr(err)
	}
	if seat.ScreenID != showtime.ScreenID {
		return nil, seatErr(KindSeatScreenMismatch, seatID)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, s.storeErr(err)
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	if _, err := s.seats.LockRowsTx(ctx, tx, []uint64{seatID}); err != nil {
		return nil, s.storeErr(err)
	}
	blocking, err := s.tickets.BlockingStatusTx(ctx, tx, showtimeID, seatID)
	if err != nil {
		return nil, s.storeErr(err)
	}
	switch blocking {
	case model.ReservationConfirmed:
		return nil, seatErr(KindSeatAlreadySold, seatID)
	case model.ReservationPending:
		// A checkout in flight holds the seat until its reservation
		// confirms, cancels or lapses.
		return nil, seatErr(KindSeatLockedByOther, seatID)
	}
	existing, err := s.locks.GetActiveTx(ctx, tx, showtimeID, seatID)
	if err != nil {
		return nil, s.storeErr(err)
	}
	if existing != nil && existing.UserID != userID {
		return nil, seatErr(KindSeatLockedByOther, seatID)
	}

	now := s.now().UTC()
	lock := &model.SeatLock{
		ShowtimeID: showtimeID,
		SeatID:     seatID,
		UserID:     userID,
		LockedAt:   now,
		ExpiresAt:  now.Add(LockTTL),
	}
	if existing != nil {
		// Renewal keeps the original acquisition time.
		lock.LockedAt = existing.LockedAt
	}
	if err := s.locks.UpsertTx(ctx, tx, lock); err != nil {
		return nil, s.storeErr(err)
	}
	if err := tx.Commit(); err != nil {
		return nil, s.storeErr(err)
	}
	committed = true
	return lock, nil
}

// ReleaseLock drops the caller's unexpired hold on a seat.  Users can
// only release their own locks; anything else reports NoActiveLock.
func (s *Service) ReleaseLock(ctx context.Context, showtimeID, seatID, userID uint64) error {
	if showtimeID == 0 || seatID == 0 || userID == 0 {
		return validation("showtime id, seat id and user id are required")
	}
	err := s.locks.DeleteOwned(ctx, showtimeID, seatID, userID)
	if errors.Is(err, repository.ErrNoRowsAffected) {
		return seatErr(KindNoActiveLock, seatID)
	}
	if err != nil {
		return s.storeErr(err)
	}
	return nil
}

// CreateReservation turns the user's locked seats into a pending
// reservation with one priced ticket per seat, consuming the locks.
// The whole operation is one transaction and all-or-nothing: if any
// seat misses a live lock held by this user, or turns out sold, nothing
// is persisted.  Seat rows are locked in ascending id order first, so
// the lock validation, the sold re-check and the inserts run inside a
// serialized critical section per seat.
func (s *Service) CreateReservation(ctx context.Context, userID, showtimeID uint64, seatIDs []uint64) (*model.Reservation, []model.Ticket, error) {
	if userID == 0 || showtimeID == 0 {
		return nil, nil, validation("user id and showtime id are required")
	}
	ids := dedupeSorted(seatIDs)
	if len(ids) == 0 {
		return nil, nil, validation("at least one seat id is required")
	}
	showtime, err := s.GetShowtime(ctx, showtimeID)
	if err != nil {
		return nil, nil, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, nil, s.storeErr(err)
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	found, err := s.seats.LockRowsTx(ctx, tx, ids)
	if err != nil {
		return nil, nil, s.storeErr(err)
	}
	if len(found) != len(ids) {
		return nil, nil, notFound("seat")
	}
	seatsByID, err := s.seats.GetManyTx(ctx, tx, ids)
	if err != nil {
		return nil, nil, s.storeErr(err)
	}
	for _, id := range ids {
		if seatsByID[id].ScreenID != showtime.ScreenID {
			return nil, nil, seatErr(KindSeatScreenMismatch, id)
		}
	}

	held, err := s.locks.ActiveSeatIDsByUserTx(ctx, tx, showtimeID, userID, ids)
	if err != nil {
		return nil, nil, s.storeErr(err)
	}
	for _, id := range ids {
		if _, ok := held[id]; !ok {
			return nil, nil, seatErr(KindSeatNotLockedByUser, id)
		}
	}

	// Last line of defense: a confirmed sale may have slipped in between
	// lock acquisition and this call.
	sold, err := s.tickets.SoldConflictsTx(ctx, tx, showtimeID, ids)
	if err != nil {
		return nil, nil, s.storeErr(err)
	}
	if len(sold) > 0 {
		return nil, nil, seatErr(KindSeatAlreadySold, sold[0])
	}

	now := s.now().UTC()
	res := &model.Reservation{
		UserID:     userID,
		ShowtimeID: showtimeID,
		Status:     model.ReservationPending,
		CreatedAt:  now,
		ExpiresAt:  now.Add(ReservationTTL),
	}
	if err := s.reservations.CreateTx(ctx, tx, res); err != nil {
		return nil, nil, s.storeErr(err)
	}

	tickets := make([]model.Ticket, 0, len(ids))
	for _, id := range ids {
		seat := seatsByID[id]
		t := model.Ticket{
			ReservationID: res.ID,
			SeatID:        id,
			PriceCents:    s.prices.Price(seat.SeatClass),
			IssuedAt:      now,
			SeatLabel:     seat.Label,
		}
		if err := s.tickets.CreateTx(ctx, tx, &t); err != nil {
			return nil, nil, s.storeErr(err)
		}
		tickets = append(tickets, t)
	}

	if err := s.locks.DeleteBySeatsTx(ctx, tx, showtimeID, ids); err != nil {
		return nil, nil, s.storeErr(err)
	}
	if err := tx.Commit(); err != nil {
		return nil, nil, s.storeErr(err)
	}
	committed = true
	return res, tickets, nil
}

// ConfirmReservation finalizes a pending reservation, making its seats
// sold.  A second confirm fails with InvalidState rather than
// succeeding idempotently.  A reservation past its deadline is flipped
// to expired as a side effect and reported as ReservationExpired.
// Concurrent confirms touching the same seats serialize on the seat
// rows, so the sold re-check always sees a committed competitor.
func (s *Service) ConfirmReservation(ctx context.Context, reservationID uint64) (*model.Reservation, error) {
	if reservationID == 0 {
		return nil, validation("reservation id is required")
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, s.storeErr(err)
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	res, err := s.reservations.GetForUpdateTx(ctx, tx, reservationID)
	if err != nil {
		if errors.Is(err, repository.ErrReservationNotFound) {
			return nil, notFound("reservation")
		}
		return nil, s.storeErr(err)
	}
	if res.Status != model.ReservationPending {
		return nil, &Error{Kind: KindInvalidState, ReservationID: reservationID, Status: res.Status}
	}
	// Expiry is judged by the store clock, the same clock every lazy
	// expiry query compares against.
	expired, err := s.reservations.ExpiredByStoreTx(ctx, tx, reservationID)
	if err != nil {
		return nil, s.storeErr(err)
	}
	if expired {
		// Passive expiry: record the lapse while we hold the row.
		if err := s.reservations.UpdateStatusTx(ctx, tx, reservationID, model.ReservationExpired); err != nil {
			return nil, s.storeErr(err)
		}
		if err := tx.Commit(); err != nil {
			return nil, s.storeErr(err)
		}
		committed = true
		return nil, &Error{Kind: KindReservationExpired, ReservationID: reservationID}
	}

	seatIDs, err := s.tickets.SeatIDsByReservationTx(ctx, tx, reservationID)
	if err != nil {
		return nil, s.storeErr(err)
	}
	if _, err := s.seats.LockRowsTx(ctx, tx, seatIDs); err != nil {
		return nil, s.storeErr(err)
	}
	sold, err := s.tickets.SoldConflictsTx(ctx, tx, res.ShowtimeID, seatIDs)
	if err != nil {
		return nil, s.storeErr(err)
	}
	if len(sold) > 0 {
		return nil, seatErr(KindSeatAlreadySold, sold[0])
	}

	if err := s.reservations.UpdateStatusTx(ctx, tx, reservationID, model.ReservationConfirmed); err != nil {
		return nil, s.storeErr(err)
	}
	if err := tx.Commit(); err != nil {
		return nil, s.storeErr(err)
	}
	committed = true
	res.Status = model.ReservationConfirmed
	return res, nil
}

// CancelReservation voids a reservation.  Only a repeat cancel is
// rejected; cancelling a confirmed sale releases its seats (they become
// immediately lockable again, no locks are re-created).
func (s *Service) CancelReservation(ctx context.Context, reservationID uint64) (*model.Reservation, error) {
	if reservationID == 0 {
		return nil, validation("reservation id is required")
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, s.storeErr(err)
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	res, err := s.reservations.GetForUpdateTx(ctx, tx, reservationID)
	if err != nil {
		if errors.Is(err, repository.ErrReservationNotFound) {
			return nil, notFound("reservation")
		}
		return nil, s.storeErr(err)
	}
	if res.Status == model.ReservationCancelled {
		return nil, &Error{Kind: KindAlreadyCancelled, ReservationID: reservationID}
	}
	if err := s.reservations.UpdateStatusTx(ctx, tx, reservationID, model.ReservationCancelled); err != nil {
		return nil, s.storeErr(err)
	}
	if err := tx.Commit(); err != nil {
		return nil, s.storeErr(err)
	}
	committed = true
	res.Status = model.ReservationCancelled
	return res, nil
}

// GetAvailability computes the available/locked/sold partition of a
// showtime's seats from one consistent snapshot: inventory, live locks,
// pending holds and confirmed tickets are all read inside a single
// read-only transaction so a concurrent confirm cannot show through as
// a half-applied state.
func (s *Service) GetAvailability(ctx context.Context, showtimeID uint64) ([]model.SeatAvailability, error) {
	if showtimeID == 0 {
		return nil, validation("showtime id is required")
	}
	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{ReadOnly: true})
	if err != nil {
		return nil, s.storeErr(err)
	}
	defer func() { _ = tx.Rollback() }()

	showtime, err := s.showtimes.GetByIDTx(ctx, tx, showtimeID)
	if err != nil {
		if errors.Is(err, repository.ErrShowtimeNotFound) {
			return nil, notFound("showtime")
		}
		return nil, s.storeErr(err)
	}
	seats, err := s.seats.ListByScreenTx(ctx, tx, showtime.ScreenID)
	if err != nil {
		return nil, s.storeErr(err)
	}
	sold, err := s.tickets.SoldSeatIDsTx(ctx, tx, showtimeID)
	if err != nil {
		return nil, s.storeErr(err)
	}
	locked, err := s.locks.ActiveSeatIDsTx(ctx, tx, showtimeID)
	if err != nil {
		return nil, s.storeErr(err)
	}
	held, err := s.tickets.PendingHeldSeatIDsTx(ctx, tx, showtimeID)
	if err != nil {
		return nil, s.storeErr(err)
	}
	if err := tx.Commit(); err != nil {
		return nil, s.storeErr(err)
	}
	for id := range held {
		locked[id] = struct{}{}
	}
	return projectAvailability(seats, sold, locked), nil
}

// GetReservation loads one reservation with its tickets.
func (s *Service) GetReservation(ctx context.Context, reservationID uint64) (*model.Reservation, []model.Ticket, error) {
	res, err := s.reservations.GetByID(ctx, reservationID)
	if err != nil {
		if errors.Is(err, repository.ErrReservationNotFound) {
			return nil, nil, notFound("reservation")
		}
		return nil, nil, s.storeErr(err)
	}
	tickets, err := s.tickets.ListByReservation(ctx, reservationID)
	if err != nil {
		return nil, nil, s.storeErr(err)
	}
	return res, tickets, nil
}

// ListReservations returns the user's reservations with tickets and
// showtime details, newest first.
func (s *Service) ListReservations(ctx context.Context, userID uint64) ([]ReservationDetail, error) {
	if userID == 0 {
		return nil, validation("user id is required")
	}
	list, err := s.reservations.ListByUser(ctx, userID)
	if err != nil {
		return nil, s.storeErr(err)
	}
	details := make([]ReservationDetail, 0, len(list))
	for _, res := range list {
		tickets, err := s.tickets.ListByReservation(ctx, res.ID)
		if err != nil {
			return nil, s.storeErr(err)
		}
		d := ReservationDetail{Reservation: res, Tickets: tickets}
		switch st, err := s.showtimes.GetByID(ctx, res.ShowtimeID); {
		case err == nil:
			d.Showtime = st
		case errors.Is(err, repository.ErrShowtimeNotFound):
			// Showtime deleted after booking; the reservation still lists.
		default:
			return nil, s.storeErr(err)
		}
		details = append(details, d)
	}
	return details, nil
}

// GetTicket loads one ticket with its seat label.
func (s *Service) GetTicket(ctx context.Context, ticketID uint64) (*model.Ticket, error) {
	t, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		if errors.Is(err, repository.ErrTicketNotFound) {
			return nil, notFound("ticket")
		}
		return nil, s.storeErr(err)
	}
	return t, nil
}

// CreateShowtime schedules a screening, rejecting overlaps on the same
// screen.  Scheduling sits outside the booking core proper, but the
// no-overlap invariant is a precondition the core relies on, so the
// check lives here next to the rest of the transactional logic.
func (s *Service) CreateShowtime(ctx context.Context, movieID, screenID uint64, start, end time.Time) (*model.Showtime, error) {
	if movieID == 0 || screenID == 0 {
		return nil, validation("movie id and screen id are required")
	}
	if !end.After(start) {
		return nil, validation("end_time must be after start_time")
	}
	movie, err := s.movies.GetByID(ctx, movieID)
	if err != nil {
		if errors.Is(err, repository.ErrMovieNotFound) {
			return nil, notFound("movie")
		}
		return nil, s.storeErr(err)
	}
	ok, err := s.screens.Exists(ctx, screenID)
	if err != nil {
		return nil, s.storeErr(err)
	}
	if !ok {
		return nil, notFound("screen")
	}
	st := &model.Showtime{
		MovieID:    movieID,
		ScreenID:   screenID,
		StartTime:  start.UTC(),
		EndTime:    end.UTC(),
		MovieTitle: movie.Title,
	}
	if err := s.showtimes.Create(ctx, st); err != nil {
		if errors.Is(err, repository.ErrShowtimeOverlap) {
			return nil, &Error{Kind: KindShowtimeOverlap}
		}
		return nil, s.storeErr(err)
	}
	return st, nil
}

// DeleteShowtime removes a screening; the store cascades to its
// reservations, tickets and seat locks.
func (s *Service) DeleteShowtime(ctx context.Context, showtimeID uint64) error {
	if showtimeID == 0 {
		return validation("showtime id is required")
	}
	err := s.showtimes.Delete(ctx, showtimeID)
	if errors.Is(err, repository.ErrShowtimeNotFound) {
		return notFound("showtime")
	}
	if err != nil {
		return s.storeErr(err)
	}
	return nil
}

// storeErr classifies driver failures.  Deadlocks, lock wait timeouts
// and duplicate-key races become retryable ConcurrencyConflict errors;
// everything else is wrapped as a storage error whose cause stays
// server-side.
func (s *Service) storeErr(err error) *Error {
	var me *mysql.MySQLError
	if errors.As(err, &me) {
		switch me.Number {
		case 1205, 1213, 1062:
			return &Error{Kind: KindConcurrencyConflict, cause: err}
		}
	}
	return &Error{Kind: KindStorage, cause: err}
}

// dedupeSorted drops zero and duplicate ids and returns the rest in
// ascending order, the order seat row locks are taken in.
func dedupeSorted(ids []uint64) []uint64 {
	seen := make(map[uint64]struct{}, len(ids))
	out := make([]uint64, 0, len(ids))
	for _, id := range ids {
		if id == 0 {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
