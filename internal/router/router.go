// Package router wires HTTP routes to their handlers and middleware.
package router

import (
	"database/sql"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/iliyamo/movie-theater-booking/internal/booking"
	"github.com/iliyamo/movie-theater-booking/internal/config"
	"github.com/iliyamo/movie-theater-booking/internal/handler"
	"github.com/iliyamo/movie-theater-booking/internal/middleware"
)

// Register attaches all API routes to the Echo instance.  The rate
// limiter covers the whole /v1 surface; the response cache sits only on
// the availability endpoint, the one read that dominates traffic.
// Admin routes additionally require a JWT with the admin role.
func Register(e *echo.Echo, db *sql.DB, svc *booking.Service, rdb *redis.Client, cfg config.Config) {
	e.GET("/health", handler.Health(db))

	v1 := e.Group("/v1", middleware.RateLimit(rdb, config.LoadRateLimitConfig()))

	// Browsing
	v1.GET("/screens/:id/seats", handler.ListScreenSeats(svc))
	v1.GET("/showtimes/:id/seats", handler.GetShowtimeSeats(svc),
		middleware.ResponseCache(rdb, config.LoadCacheConfig()))

	// Seat locks
	v1.POST("/showtimes/:id/seats/:seatId/lock", handler.LockSeat(svc))
	v1.POST("/showtimes/:id/seats/:seatId/unlock", handler.UnlockSeat(svc))

	// Reservations
	v1.POST("/reservations", handler.CreateReservation(svc))
	v1.GET("/reservations", handler.ListReservations(svc))
	v1.GET("/reservations/:id", handler.GetReservation(svc))
	v1.POST("/reservations/:id/confirm", handler.ConfirmReservation(svc))
	v1.POST("/reservations/:id/cancel", handler.CancelReservation(svc))

	// Tickets
	v1.GET("/tickets/:id", handler.GetTicket(svc))
	v1.GET("/tickets/:id/qr", handler.GetTicketQR(svc))

	// Scheduling (admin only)
	admin := v1.Group("/admin",
		middleware.JWTAuth(cfg.JWTSecret),
		middleware.RequireRole("admin"))
	admin.POST("/showtimes", handler.CreateShowtime(svc))
	admin.DELETE("/showtimes/:id", handler.DeleteShowtime(svc))
}
