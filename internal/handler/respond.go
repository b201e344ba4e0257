// Package handler contains the HTTP handlers of the booking API.  Each
// handler is a thin adapter: it parses the request, calls the booking
// service and maps the typed error (if any) onto an HTTP status.  No
// business rules live here.
package handler

import (
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/movie-theater-booking/internal/booking"
	"github.com/iliyamo/movie-theater-booking/internal/model"
)

// writeError translates a booking error into the API's JSON error shape:
// {"error": <kind>, "message": <text>}.  Storage causes are logged
// server-side and never leak to clients.
func writeError(c echo.Context, err error) error {
	be := booking.AsError(err)
	if be == nil {
		log.Printf("handler: unexpected error: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{
			"error":   string(booking.KindStorage),
			"message": "internal server error",
		})
	}

	status := http.StatusBadRequest
	switch be.Kind {
	case booking.KindNotFound, booking.KindNoActiveLock:
		status = http.StatusNotFound
	case booking.KindShowtimeOverlap, booking.KindConcurrencyConflict:
		status = http.StatusConflict
	case booking.KindStorage:
		status = http.StatusInternalServerError
	}

	if be.Kind == booking.KindStorage {
		log.Printf("handler: storage error: %v", be.Unwrap())
		return c.JSON(status, echo.Map{
			"error":   string(be.Kind),
			"message": "internal server error",
		})
	}
	body := echo.Map{
		"error":   string(be.Kind),
		"message": be.Error(),
	}
	if be.SeatID != 0 {
		body["seat_id"] = be.SeatID
	}
	if be.ReservationID != 0 {
		body["reservation_id"] = be.ReservationID
	}
	return c.JSON(status, body)
}

// pathID parses a numeric path parameter, rejecting zero and garbage.
func pathID(c echo.Context, name string) (uint64, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		return 0, false
	}
	return id, true
}

func badParam(c echo.Context, name string) error {
	return c.JSON(http.StatusBadRequest, echo.Map{
		"error":   string(booking.KindValidation),
		"message": name + " must be a positive integer",
	})
}

func fmtTime(t time.Time) string { return t.UTC().Format(time.RFC3339) }

// JSON shapes.  Models are storage-oriented, so handlers build the wire
// representation explicitly instead of tagging the structs.

func seatJSON(s model.Seat) echo.Map {
	return echo.Map{
		"seat_id":    s.ID,
		"screen_id":  s.ScreenID,
		"seat_class": s.SeatClass,
		"label":      s.Label,
		"row":        s.RowNum,
		"col":        s.ColNum,
	}
}

func availabilityJSON(a model.SeatAvailability) echo.Map {
	m := seatJSON(a.Seat)
	m["status"] = a.Status
	return m
}

func lockJSON(l *model.SeatLock) echo.Map {
	return echo.Map{
		"showtime_id": l.ShowtimeID,
		"seat_id":     l.SeatID,
		"user_id":     l.UserID,
		"locked_at":   fmtTime(l.LockedAt),
		"expires_at":  fmtTime(l.ExpiresAt),
	}
}

func ticketJSON(t model.Ticket) echo.Map {
	return echo.Map{
		"ticket_id":      t.ID,
		"reservation_id": t.ReservationID,
		"seat_id":        t.SeatID,
		"seat_label":     t.SeatLabel,
		"price_cents":    t.PriceCents,
		"issued_at":      fmtTime(t.IssuedAt),
	}
}

func reservationJSON(r *model.Reservation) echo.Map {
	return echo.Map{
		"reservation_id": r.ID,
		"user_id":        r.UserID,
		"showtime_id":    r.ShowtimeID,
		"status":         r.Status,
		"created_at":     fmtTime(r.CreatedAt),
		"expires_at":     fmtTime(r.ExpiresAt),
	}
}

func showtimeJSON(st *model.Showtime) echo.Map {
	return echo.Map{
		"showtime_id": st.ID,
		"movie_id":    st.MovieID,
		"screen_id":   st.ScreenID,
		"movie_title": st.MovieTitle,
		"start_time":  fmtTime(st.StartTime),
		"end_time":    fmtTime(st.EndTime),
	}
}
