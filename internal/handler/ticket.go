package handler

import (
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	qrcode "github.com/skip2/go-qrcode"

	"github.com/iliyamo/movie-theater-booking/internal/booking"
)

// GetTicket returns one ticket.
func GetTicket(svc *booking.Service) echo.HandlerFunc {
	return func(c echo.Context) error {
		id, ok := pathID(c, "id")
		if !ok {
			return badParam(c, "ticket id")
		}
		t, err := svc.GetTicket(c.Request().Context(), id)
		if err != nil {
			return writeError(c, err)
		}
		return c.JSON(http.StatusOK, echo.Map{"ticket": ticketJSON(*t)})
	}
}

// GetTicketQR renders a ticket as a PNG QR code for gate scanners.  The
// payload is a compact string, not a URL, so scanners work offline.
func GetTicketQR(svc *booking.Service) echo.HandlerFunc {
	return func(c echo.Context) error {
		id, ok := pathID(c, "id")
		if !ok {
			return badParam(c, "ticket id")
		}
		t, err := svc.GetTicket(c.Request().Context(), id)
		if err != nil {
			return writeError(c, err)
		}
		payload := fmt.Sprintf("TICKET:%d|RES:%d|SEAT:%s", t.ID, t.ReservationID, t.SeatLabel)
		png, err := qrcode.Encode(payload, qrcode.Medium, 256)
		if err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{
				"error":   string(booking.KindStorage),
				"message": "internal server error",
			})
		}
		return c.Blob(http.StatusOK, "image/png", png)
	}
}
