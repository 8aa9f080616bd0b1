package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/td-airways/flightdesk/api"
	"github.com/td-airways/flightdesk/config"
	"github.com/td-airways/flightdesk/internal/auth"
	"github.com/td-airways/flightdesk/internal/bootstrap"
	"github.com/td-airways/flightdesk/internal/cache"
	"github.com/td-airways/flightdesk/internal/email"
	"github.com/td-airways/flightdesk/internal/kafka"
	"github.com/td-airways/flightdesk/internal/repository"
	"github.com/td-airways/flightdesk/internal/service/booking"
	"github.com/td-airways/flightdesk/internal/service/flights"
	"github.com/td-airways/flightdesk/internal/service/payment"
	"github.com/td-airways/flightdesk/internal/service/users"
)

func main() {
	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = "config.yaml"
	}

	cfg, err := config.LoadConfig(cfgPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := pgxpool.New(ctx, cfg.Database.DSN())
	if err != nil {
		log.Fatalf("connect postgres: %v", err)
	}
	defer pool.Close()

	redisCache := cache.NewRedisCache(cfg.Redis, time.Duration(cfg.Booking.FlightsCacheTTL)*time.Second)
	producer := kafka.NewProducer(cfg.Kafka.Brokers)
	defer producer.Close()

	mailer := email.NewSender(cfg.SMTP)
	authMgr := auth.NewManager(cfg.Auth.Secret, time.Duration(cfg.Auth.TokenTTLDays)*24*time.Hour)

	userRepo := repository.NewUserRepository(pool)
	flightRepo := repository.NewFlightRepository(pool)
	bookingRepo := repository.NewBookingRepository(pool)

	gate := payment.NewGate(userRepo, redisCache, mailer, time.Duration(cfg.Booking.OTPTTLMinutes)*time.Minute)
	userService := users.NewUserService(userRepo, gate, authMgr, users.WithAdminKey(cfg.Auth.AdminKey))
	flightService := flights.NewFlightService(flightRepo, redisCache)
	bookingService := booking.NewBookingService(
		bookingRepo,
		flightRepo,
		gate,
		producer,
		cfg.Kafka.BookingEventsTopic,
		time.Duration(cfg.Booking.StaleTTLHours)*time.Hour,
		booking.WithNotificationsTopic(cfg.Kafka.NotificationsTopic),
		booking.WithInfantSurcharge(cfg.Booking.InfantSurcharge),
		booking.WithConfirmRetries(cfg.Booking.ConfirmMaxRetries),
	)

	handlers := bootstrap.Handlers{
		Users:    api.NewUserHandler(userService),
		Admin:    api.NewAdminHandler(userService),
		Flights:  api.NewFlightHandler(flightService),
		Bookings: api.NewBookingHandler(bookingService),
	}

	if err := bootstrap.Run(ctx, cfg, authMgr, handlers); err != nil {
		log.Fatalf("server error: %v", err)
	}
}
