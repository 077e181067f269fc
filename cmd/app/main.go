package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/mkravets/flightdesk/config"
	"github.com/mkravets/flightdesk/internal/bootstrap"
	"github.com/mkravets/flightdesk/internal/cache"
	"github.com/mkravets/flightdesk/internal/kafka"
	"github.com/mkravets/flightdesk/internal/logger"
	"github.com/mkravets/flightdesk/internal/metrics"
	"github.com/mkravets/flightdesk/internal/repository"
	"github.com/mkravets/flightdesk/internal/service/auth"
	"github.com/mkravets/flightdesk/internal/service/booking"
	"github.com/mkravets/flightdesk/internal/service/search"
	"github.com/mkravets/flightdesk/internal/session"
	"github.com/mkravets/flightdesk/migrations"
)

func main() {
	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = "config.yaml"
	}

	cfg, err := config.LoadConfig(cfgPath)
	if err != nil {
		logger.Fatal("load config", zap.Error(err))
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := pgxpool.New(ctx, cfg.Database.DSN())
	if err != nil {
		logger.Fatal("connect postgres", zap.Error(err))
	}
	defer pool.Close()

	if err := migrations.Apply(ctx, pool); err != nil {
		logger.Fatal("apply migrations", zap.Error(err))
	}

	m := metrics.New()

	sessions := session.NewStore(cfg.Redis, cfg.Session.TTL())
	defer sessions.Close()

	searchCache := cache.NewRedisCache(cfg.Redis)
	defer searchCache.Close()

	producer := kafka.NewProducer(cfg.Kafka.Brokers)
	defer producer.Close()

	flightRepo := repository.NewFlightRepository(pool)
	reservationRepo := repository.NewReservationRepository(pool)
	userRepo := repository.NewUserRepository(pool)

	authService := auth.NewAuthService(userRepo)
	searchService := search.NewSearchService(flightRepo, searchCache, cfg.Search.CacheTTL())
	bookingService := booking.NewBookingService(
		sessions,
		flightRepo,
		reservationRepo,
		userRepo,
		cfg.Booking.Attempts(),
		cfg.Booking.RetryBase(),
		booking.WithProducer(producer, cfg.Kafka.ReservationsTopic),
		booking.WithMetrics(m),
	)

	if err := bootstrap.Run(ctx, cfg, m, sessions, authService, searchService, bookingService); err != nil {
		logger.Fatal("server error", zap.Error(err))
	}
}
