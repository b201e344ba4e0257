package main

import (
	"context"
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	"github.com/iliyamo/movie-theater-booking/internal/booking"
	"github.com/iliyamo/movie-theater-booking/internal/config"
	"github.com/iliyamo/movie-theater-booking/internal/database"
	"github.com/iliyamo/movie-theater-booking/internal/handler"
	"github.com/iliyamo/movie-theater-booking/internal/queue"
	"github.com/iliyamo/movie-theater-booking/internal/router"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	if err := godotenv.Load(); err != nil {
		log.Println("no .env file found, relying on environment variables")
	}

	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database connection failed: %v", err)
	}
	defer db.Close()

	rdb := config.NewRedisClient()
	if rdb == nil {
		log.Println("redis unavailable, running without response cache and with in-process rate limiting")
	}

	svc := booking.NewService(db)

	e := echo.New()
	e.HideBanner = true
	e.Validator = handler.NewRequestValidator()
	e.Use(echomw.Recover())
	e.Use(echomw.Logger())

	router.Register(e, db, svc, rdb, cfg)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Background reaper sweeps expired locks and lapsed reservations.
	go svc.StartReaper(ctx, time.Minute)

	// Background consumer appends confirmed bookings to logs/booking.log.
	go func() {
		if err := queue.StartConfirmedConsumer(); err != nil {
			log.Printf("reservation consumer stopped: %v", err)
		}
	}()

	log.Printf("starting server on :%s (env=%s)", cfg.Port, cfg.Env)
	if err := e.Start(":" + cfg.Port); err != nil {
		log.Fatalf("server stopped: %v", err)
	}
}
