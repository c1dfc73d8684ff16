package main

import (
	"context"
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"

	"github.com/romannmaypbalingbing/hotel-room-reservation/internal/config"
	"github.com/romannmaypbalingbing/hotel-room-reservation/internal/database"
	"github.com/romannmaypbalingbing/hotel-room-reservation/internal/engine"
	"github.com/romannmaypbalingbing/hotel-room-reservation/internal/handler"
	"github.com/romannmaypbalingbing/hotel-room-reservation/internal/middleware"
	"github.com/romannmaypbalingbing/hotel-room-reservation/internal/obs"
	"github.com/romannmaypbalingbing/hotel-room-reservation/internal/queue"
	"github.com/romannmaypbalingbing/hotel-room-reservation/internal/repository"
	"github.com/romannmaypbalingbing/hotel-room-reservation/internal/router"
)

func main() {
	// .env is optional; real deployments set variables directly.
	_ = godotenv.Load()

	cfg := config.Load()
	logger := obs.NewLogger(cfg.Env)

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	// Redis backs the response cache and the rate limiter. A nil client
	// disables both and the server still runs; the constructors return
	// pass-through middleware in that case.
	rdb := config.NewRedisClient()
	if rdb == nil {
		logger.Warn("redis unavailable, cache and rate limiting disabled")
	}
	limiter := middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb)
	respCache := middleware.NewRedisCache(config.LoadCacheConfig(), rdb)

	e := echo.New()
	e.HideBanner = true

	store := repository.NewEngineStore(db)
	eng := engine.New(store)

	users := repository.NewUserRepo(db)
	tokens := repository.NewTokenRepo(db)
	reservations := repository.NewReservationRepo(db)
	rooms := repository.NewRoomRepo(db)
	guests := repository.NewGuestRepo(db)
	payments := repository.NewPaymentRepo(db)
	discounts := repository.NewDiscountRepo(db)
	bookings := repository.NewBookingRepo(db)

	authH := handler.NewAuthHandler(cfg, users, tokens)
	publicH := handler.NewPublicHandler(eng, store)
	guestH := handler.NewGuestHandler(eng, reservations, guests, payments, discounts, bookings, logger)
	staffH := handler.NewStaffHandler(reservations, rooms, bookings, discounts, logger)

	// The response cache wraps only the public catalogue and
	// availability routes; everything else carries per-user data. The
	// limiter runs after auth on protected groups so buckets key on the
	// authenticated user, not just the client IP.
	router.RegisterRoutes(e)
	router.RegisterAuth(e, authH, cfg.JWTSecret, limiter)
	router.RegisterPublic(e, publicH, limiter, respCache)
	router.RegisterGuest(e, guestH, cfg.JWTSecret, limiter)
	router.RegisterStaff(e, staffH, cfg.JWTSecret, limiter)

	// Background consumer writes confirmed bookings to logs/booking.log.
	go func() {
		if err := queue.StartBookingConsumer(); err != nil {
			logger.Error("booking consumer stopped", "err", err)
		}
	}()

	// Revoked refresh tokens are kept until expiry; sweep the stale
	// rows hourly.
	go func() {
		for range time.Tick(time.Hour) {
			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			n, err := tokens.PurgeExpired(ctx, time.Now().UTC())
			cancel()
			if err != nil {
				logger.Warn("token purge failed", "err", err)
			} else if n > 0 {
				logger.Info("purged expired refresh tokens", "count", n)
			}
		}
	}()

	addr := ":" + cfg.Port
	logger.Info("listening", "addr", addr, "env", cfg.Env)
	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
