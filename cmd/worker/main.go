package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/td-airways/flightdesk/config"
	"github.com/td-airways/flightdesk/internal/cache"
	"github.com/td-airways/flightdesk/internal/email"
	"github.com/td-airways/flightdesk/internal/kafka"
	"github.com/td-airways/flightdesk/internal/repository"
	"github.com/td-airways/flightdesk/internal/service/booking"
	"github.com/td-airways/flightdesk/internal/service/payment"
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

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pool, err := pgxpool.New(ctx, cfg.Database.DSN())
	if err != nil {
		log.Fatalf("connect postgres: %v", err)
	}
	defer pool.Close()

	producer := kafka.NewProducer(cfg.Kafka.Brokers)
	defer producer.Close()
	redisCache := cache.NewRedisCache(cfg.Redis, time.Duration(cfg.Booking.FlightsCacheTTL)*time.Second)
	mailer := email.NewSender(cfg.SMTP)

	userRepo := repository.NewUserRepository(pool)
	flightRepo := repository.NewFlightRepository(pool)
	bookingRepo := repository.NewBookingRepository(pool)
	gate := payment.NewGate(userRepo, redisCache, mailer, time.Duration(cfg.Booking.OTPTTLMinutes)*time.Minute)

	bookingService := booking.NewBookingService(
		bookingRepo,
		flightRepo,
		gate,
		producer,
		cfg.Kafka.BookingEventsTopic,
		time.Duration(cfg.Booking.StaleTTLHours)*time.Hour,
		booking.WithNotificationsTopic(cfg.Kafka.NotificationsTopic),
		booking.WithInfantSurcharge(cfg.Booking.InfantSurcharge),
	)

	consumer := kafka.NewConsumer(cfg.Kafka.Brokers, cfg.Kafka.GroupID, cfg.Kafka.NotificationsTopic)
	defer consumer.Close()

	go func() {
		if err := consumer.Consume(ctx, func(ctx context.Context, event kafka.BookingEvent) error {
			if event.Email == "" {
				return nil
			}
			if err := mailer.SendBookingEvent(event); err != nil {
				log.Printf("send notification for booking %s: %v", event.BookingID, err)
			}
			return nil
		}); err != nil {
			log.Printf("consumer stopped: %v", err)
		}
	}()

	expireTicker := time.NewTicker(time.Duration(cfg.Worker.ExpirationSweepMinutes) * time.Minute)
	defer expireTicker.Stop()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)

	for {
		select {
		case <-expireTicker.C:
			expired, err := bookingService.ExpireStaleBookings(ctx)
			if err != nil {
				log.Printf("expire bookings error: %v", err)
				continue
			}
			if len(expired) > 0 {
				log.Printf("expired %d stale bookings", len(expired))
			}
		case s := <-sig:
			log.Printf("received signal %v, shutting down", s)
			return
		}
	}
}
