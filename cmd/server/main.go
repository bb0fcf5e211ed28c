package main

import (
	"context"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	log "github.com/sirupsen/logrus"

	"github.com/avelora/travel-booking/internal/afs"
	"github.com/avelora/travel-booking/internal/config"
	"github.com/avelora/travel-booking/internal/database"
	"github.com/avelora/travel-booking/internal/handler"
	"github.com/avelora/travel-booking/internal/middleware"
	"github.com/avelora/travel-booking/internal/queue"
	"github.com/avelora/travel-booking/internal/repository"
	"github.com/avelora/travel-booking/internal/router"
	"github.com/avelora/travel-booking/internal/service"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	log.SetFormatter(&log.JSONFormatter{})
	cfg := config.Load()
	if cfg.Env == "dev" {
		log.SetLevel(log.DebugLevel)
		log.SetFormatter(&log.TextFormatter{})
	}

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.WithError(err).Fatal("database connection failed")
	}
	defer func() { _ = db.Close() }()

	users := repository.NewUserRepo(db)
	tokens := repository.NewTokenRepo(db)
	hotels := repository.NewHotelRepo(db)
	rooms := repository.NewRoomTypeRepo(db)
	availability := repository.NewAvailabilityRepo(db)
	reservations := repository.NewReservationRepo(db)
	bookings := repository.NewBookingRepo(db)
	cart := repository.NewCartRepo(db)
	notifications := repository.NewNotificationRepo(db)

	store := repository.NewSQLStore(db)
	flights := afs.New(cfg.AFSBaseURL, cfg.AFSSecret)

	reservationSvc := service.NewReservationService(store, notifications)
	capacitySvc := service.NewCapacityService(store, notifications)
	bookingSvc := service.NewBookingService(store, flights, notifications)

	// Consumes booking events published by the handlers; reconnects on
	// broker failures with backoff.
	go queue.StartBookingConsumer(cfg.BrokerURL)

	// Expired refresh tokens accumulate forever otherwise.
	go func() {
		for {
			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			if n, err := tokens.DeleteExpired(ctx, 24*time.Hour); err != nil {
				log.WithError(err).Warn("refresh token cleanup failed")
			} else if n > 0 {
				log.WithField("deleted", n).Info("expired refresh tokens removed")
			}
			cancel()
			time.Sleep(time.Hour)
		}
	}()

	e := echo.New()
	e.HideBanner = true
	e.Use(echomw.Recover())
	e.Use(echomw.RequestID())

	router.Register(e, router.Handlers{
		Auth:         handler.NewAuthHandler(cfg, users, tokens),
		Hotel:        handler.NewHotelHandler(hotels, rooms),
		Availability: handler.NewAvailabilityHandler(rooms, availability, capacitySvc),
		Reservation:  handler.NewReservationHandler(reservationSvc, reservations, cfg.BrokerURL),
		Booking:      handler.NewBookingHandler(bookingSvc, bookings, cart, users, flights, cfg.BrokerURL),
		Cart:         handler.NewCartHandler(cart, rooms),
		Notification: handler.NewNotificationHandler(notifications),
		RateLimit:    middleware.NewTokenBucket(config.LoadRateLimitConfig(), config.NewRedisClient()),
		JWTSecret:    cfg.JWTSecret,
	})

	addr := ":" + cfg.Port
	log.WithFields(log.Fields{"addr": addr, "env": cfg.Env}).Info("server starting")
	if err := e.Start(addr); err != nil {
		log.WithError(err).Fatal("server stopped")
	}
}
