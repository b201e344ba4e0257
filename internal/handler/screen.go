package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/movie-theater-booking/internal/booking"
)

// ListScreenSeats returns the static seat layout of a screen, without
// per-showtime availability.  Clients use it to render the room shape
// before a showtime is picked.
func ListScreenSeats(svc *booking.Service) echo.HandlerFunc {
	return func(c echo.Context) error {
		screenID, ok := pathID(c, "id")
		if !ok {
			return badParam(c, "screen id")
		}
		seats, err := svc.ListSeats(c.Request().Context(), screenID)
		if err != nil {
			return writeError(c, err)
		}
		out := make([]echo.Map, 0, len(seats))
		for _, s := range seats {
			out = append(out, seatJSON(s))
		}
		return c.JSON(http.StatusOK, echo.Map{
			"screen_id": screenID,
			"seats":     out,
		})
	}
}
