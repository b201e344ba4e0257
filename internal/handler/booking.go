package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/movie-theater-booking/internal/booking"
	"github.com/iliyamo/movie-theater-booking/internal/queue"
	queuepub "github.com/iliyamo/movie-theater-booking/internal/service"
)

// lockRequest identifies who is taking or releasing the seat hold.
type lockRequest struct {
	UserID uint64 `json:"user_id" validate:"required,gt=0"`
}

// createReservationRequest is the body of POST /v1/reservations.
type createReservationRequest struct {
	UserID     uint64   `json:"user_id" validate:"required,gt=0"`
	ShowtimeID uint64   `json:"showtime_id" validate:"required,gt=0"`
	SeatIDs    []uint64 `json:"seat_ids" validate:"required,min=1,dive,gt=0"`
}

// GetShowtimeSeats returns the seat map of a showtime with each seat
// classified as available, locked or sold.
func GetShowtimeSeats(svc *booking.Service) echo.HandlerFunc {
	return func(c echo.Context) error {
		showtimeID, ok := pathID(c, "id")
		if !ok {
			return badParam(c, "showtime id")
		}
		seats, err := svc.GetAvailability(c.Request().Context(), showtimeID)
		if err != nil {
			return writeError(c, err)
		}
		out := make([]echo.Map, 0, len(seats))
		for _, s := range seats {
			out = append(out, availabilityJSON(s))
		}
		return c.JSON(http.StatusOK, echo.Map{
			"showtime_id": showtimeID,
			"seats":       out,
		})
	}
}

// LockSeat acquires or renews the caller's hold on one seat.
func LockSeat(svc *booking.Service) echo.HandlerFunc {
	return func(c echo.Context) error {
		showtimeID, ok := pathID(c, "id")
		if !ok {
			return badParam(c, "showtime id")
		}
		seatID, ok := pathID(c, "seatId")
		if !ok {
			return badParam(c, "seat id")
		}
		var req lockRequest
		if err := c.Bind(&req); err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{
				"error":   string(booking.KindValidation),
				"message": "invalid request body",
			})
		}
		if err := c.Validate(&req); err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{
				"error":   string(booking.KindValidation),
				"message": "user_id is required",
			})
		}
		lock, err := svc.AcquireLock(c.Request().Context(), showtimeID, seatID, req.UserID)
		if err != nil {
			return writeError(c, err)
		}
		return c.JSON(http.StatusOK, echo.Map{
			"message": "seat locked",
			"lock":    lockJSON(lock),
		})
	}
}

// UnlockSeat releases the caller's hold on one seat.
func UnlockSeat(svc *booking.Service) echo.HandlerFunc {
	return func(c echo.Context) error {
		showtimeID, ok := pathID(c, "id")
		if !ok {
			return badParam(c, "showtime id")
		}
		seatID, ok := pathID(c, "seatId")
		if !ok {
			return badParam(c, "seat id")
		}
		var req lockRequest
		if err := c.Bind(&req); err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{
				"error":   string(booking.KindValidation),
				"message": "invalid request body",
			})
		}
		if err := c.Validate(&req); err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{
				"error":   string(booking.KindValidation),
				"message": "user_id is required",
			})
		}
		if err := svc.ReleaseLock(c.Request().Context(), showtimeID, seatID, req.UserID); err != nil {
			return writeError(c, err)
		}
		return c.JSON(http.StatusOK, echo.Map{"message": "seat unlocked"})
	}
}

// CreateReservation converts the user's locked seats into a pending
// reservation with priced tickets.
func CreateReservation(svc *booking.Service) echo.HandlerFunc {
	return func(c echo.Context) error {
		var req createReservationRequest
		if err := c.Bind(&req); err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{
				"error":   string(booking.KindValidation),
				"message": "invalid request body",
			})
		}
		if err := c.Validate(&req); err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{
				"error":   string(booking.KindValidation),
				"message": "user_id, showtime_id and a non-empty seat_ids list are required",
			})
		}
		res, tickets, err := svc.CreateReservation(c.Request().Context(), req.UserID, req.ShowtimeID, req.SeatIDs)
		if err != nil {
			return writeError(c, err)
		}
		out := make([]echo.Map, 0, len(tickets))
		var total uint32
		for _, t := range tickets {
			out = append(out, ticketJSON(t))
			total += t.PriceCents
		}
		return c.JSON(http.StatusCreated, echo.Map{
			"message":     "reservation created",
			"reservation": reservationJSON(res),
			"tickets":     out,
			"total_cents": total,
		})
	}
}

// ListReservations returns the user's reservations, newest first.  The
// user is identified by the user_id query parameter.
func ListReservations(svc *booking.Service) echo.HandlerFunc {
	return func(c echo.Context) error {
		userID, err := strconv.ParseUint(c.QueryParam("user_id"), 10, 64)
		if err != nil || userID == 0 {
			return badParam(c, "user_id")
		}
		details, err := svc.ListReservations(c.Request().Context(), userID)
		if err != nil {
			return writeError(c, err)
		}
		out := make([]echo.Map, 0, len(details))
		for i := range details {
			d := &details[i]
			m := reservationJSON(&d.Reservation)
			tickets := make([]echo.Map, 0, len(d.Tickets))
			var total uint32
			for _, t := range d.Tickets {
				tickets = append(tickets, ticketJSON(t))
				total += t.PriceCents
			}
			m["tickets"] = tickets
			m["total_cents"] = total
			if d.Showtime != nil {
				m["showtime"] = showtimeJSON(d.Showtime)
			}
			out = append(out, m)
		}
		return c.JSON(http.StatusOK, echo.Map{"reservations": out})
	}
}

// GetReservation returns one reservation with its tickets.
func GetReservation(svc *booking.Service) echo.HandlerFunc {
	return func(c echo.Context) error {
		id, ok := pathID(c, "id")
		if !ok {
			return badParam(c, "reservation id")
		}
		res, tickets, err := svc.GetReservation(c.Request().Context(), id)
		if err != nil {
			return writeError(c, err)
		}
		out := make([]echo.Map, 0, len(tickets))
		var total uint32
		for _, t := range tickets {
			out = append(out, ticketJSON(t))
			total += t.PriceCents
		}
		return c.JSON(http.StatusOK, echo.Map{
			"reservation": reservationJSON(res),
			"tickets":     out,
			"total_cents": total,
		})
	}
}

// ConfirmReservation finalizes a pending reservation.  On success a
// reservation.confirmed event is published; publish failures are logged
// by the publisher and ignored here, the sale stands regardless.
func ConfirmReservation(svc *booking.Service) echo.HandlerFunc {
	return func(c echo.Context) error {
		id, ok := pathID(c, "id")
		if !ok {
			return badParam(c, "reservation id")
		}
		res, err := svc.ConfirmReservation(c.Request().Context(), id)
		if err != nil {
			return writeError(c, err)
		}
		publishConfirmed(c, svc, res.ID)
		return c.JSON(http.StatusOK, echo.Map{
			"message":     "reservation confirmed",
			"reservation": reservationJSON(res),
		})
	}
}

// publishConfirmed builds and publishes the reservation.confirmed event
// after the confirming transaction has committed.
func publishConfirmed(c echo.Context, svc *booking.Service, reservationID uint64) {
	res, tickets, err := svc.GetReservation(c.Request().Context(), reservationID)
	if err != nil {
		return
	}
	ev := queue.ReservationConfirmedEvent{
		MessageID:     uuid.NewString(),
		ReservationID: res.ID,
		UserID:        res.UserID,
		ShowtimeID:    res.ShowtimeID,
		ConfirmedAt:   fmtTime(time.Now()),
	}
	for _, t := range tickets {
		ev.SeatLabels = append(ev.SeatLabels, t.SeatLabel)
		ev.TotalCents += t.PriceCents
	}
	if st, err := svc.GetShowtime(c.Request().Context(), res.ShowtimeID); err == nil {
		ev.MovieTitle = st.MovieTitle
		ev.StartTime = fmtTime(st.StartTime)
	}
	_ = queuepub.PublishReservationConfirmed(c.Request().Context(), ev)
}

// CancelReservation voids a reservation.
func CancelReservation(svc *booking.Service) echo.HandlerFunc {
	return func(c echo.Context) error {
		id, ok := pathID(c, "id")
		if !ok {
			return badParam(c, "reservation id")
		}
		res, err := svc.CancelReservation(c.Request().Context(), id)
		if err != nil {
			return writeError(c, err)
		}
		return c.JSON(http.StatusOK, echo.Map{
			"message":     "reservation cancelled",
			"reservation": reservationJSON(res),
		})
	}
}
