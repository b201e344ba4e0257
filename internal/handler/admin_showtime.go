package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/movie-theater-booking/internal/booking"
)

// createShowtimeRequest is the body of POST /v1/admin/showtimes.
// Times are RFC3339.
type createShowtimeRequest struct {
	MovieID   uint64 `json:"movie_id" validate:"required,gt=0"`
	ScreenID  uint64 `json:"screen_id" validate:"required,gt=0"`
	StartTime string `json:"start_time" validate:"required"`
	EndTime   string `json:"end_time" validate:"required"`
}

// CreateShowtime schedules a screening.  Overlapping intervals on the
// same screen are rejected with 409.
func CreateShowtime(svc *booking.Service) echo.HandlerFunc {
	return func(c echo.Context) error {
		var req createShowtimeRequest
		if err := c.Bind(&req); err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{
				"error":   string(booking.KindValidation),
				"message": "invalid request body",
			})
		}
		if err := c.Validate(&req); err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{
				"error":   string(booking.KindValidation),
				"message": "movie_id, screen_id, start_time and end_time are required",
			})
		}
		start, err := time.Parse(time.RFC3339, req.StartTime)
		if err != nil {
			return badParam(c, "start_time")
		}
		end, err := time.Parse(time.RFC3339, req.EndTime)
		if err != nil {
			return badParam(c, "end_time")
		}
		st, err := svc.CreateShowtime(c.Request().Context(), req.MovieID, req.ScreenID, start, end)
		if err != nil {
			return writeError(c, err)
		}
		return c.JSON(http.StatusCreated, echo.Map{
			"message":  "showtime created",
			"showtime": showtimeJSON(st),
		})
	}
}

// DeleteShowtime removes a screening and everything booked under it.
func DeleteShowtime(svc *booking.Service) echo.HandlerFunc {
	return func(c echo.Context) error {
		id, ok := pathID(c, "id")
		if !ok {
			return badParam(c, "showtime id")
		}
		if err := svc.DeleteShowtime(c.Request().Context(), id); err != nil {
			return writeError(c, err)
		}
		return c.JSON(http.StatusOK, echo.Map{"message": "showtime deleted"})
	}
}
