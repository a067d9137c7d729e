package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/connectday/booking-api/internal/config"
	"github.com/connectday/booking-api/internal/email"
	"github.com/connectday/booking-api/internal/handler"
	appointmentHandler "github.com/connectday/booking-api/internal/handler/appointment"
	entrepreneurHandler "github.com/connectday/booking-api/internal/handler/entrepreneur"
	eventsHandler "github.com/connectday/booking-api/internal/handler/events"
	partnerHandler "github.com/connectday/booking-api/internal/handler/partner"
	slotHandler "github.com/connectday/booking-api/internal/handler/slot"
	"github.com/connectday/booking-api/internal/hub"
	"github.com/connectday/booking-api/internal/middleware"
	"github.com/connectday/booking-api/internal/repository/postgres"
	"github.com/connectday/booking-api/internal/router"
	bookingService "github.com/connectday/booking-api/internal/service/booking"
	"github.com/connectday/booking-api/pkg/logger"
	"github.com/connectday/booking-api/pkg/metrics"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	rootLogger := logger.New(&logger.Config{
		Level:      logger.ParseLevel(cfg.Log.Level),
		TimeFormat: time.RFC3339,
		Console:    cfg.Log.Console,
	})
	log.Logger = rootLogger

	db, err := postgres.NewDB(cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer db.Close()

	m := metrics.New(cfg.Metrics.Namespace)

	partnerRepo := postgres.NewPartnerRepository(db, m)
	entrepreneurRepo := postgres.NewEntrepreneurRepository(db, m)
	slotRepo := postgres.NewSlotRepository(db, m)
	appointmentRepo := postgres.NewAppointmentRepository(db, m)

	notificationHub := hub.New(rootLogger, m, cfg.Hub.BufferSize)

	mailer := email.NewNoop()
	if cfg.SMTP.Enabled() {
		mailer = email.NewService(email.Config{
			Host:     cfg.SMTP.Host,
			Port:     cfg.SMTP.Port,
			Username: cfg.SMTP.Username,
			Password: cfg.SMTP.Password,
			From:     cfg.SMTP.From,
		})
	}

	bookingSvc := bookingService.NewService(
		slotRepo,
		appointmentRepo,
		partnerRepo,
		entrepreneurRepo,
		notificationHub,
		mailer,
		rootLogger,
	)

	h := handler.NewHandler(db)

	corsConfig := middleware.DefaultCORSConfig()
	if len(cfg.CORS.AllowedOrigins) > 0 {
		corsConfig.AllowOrigins = cfg.CORS.AllowedOrigins
	}

	r := router.NewRouter(
		slotHandler.NewHandler(bookingSvc),
		appointmentHandler.NewHandler(bookingSvc),
		partnerHandler.NewHandler(bookingSvc),
		entrepreneurHandler.NewHandler(bookingSvc),
		eventsHandler.NewHandler(notificationHub, cfg.Hub.HeartbeatInterval, rootLogger),
		h,
		router.Config{
			RateLimitRPS:   cfg.RateLimit.RPS,
			RateLimitBurst: cfg.RateLimit.Burst,
			CORS:           corsConfig,
			MetricsPrefix:  cfg.Metrics.Namespace,
		},
	)
	r.Setup()

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: r.Engine(),
	}

	go func() {
		log.Info().Int("port", cfg.Server.Port).Msg("starting server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("shutting down server...")

	// Dropping the hub first unblocks every open event stream so Shutdown
	// does not wait out long-lived connections.
	notificationHub.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal().Err(err).Msg("server forced to shutdown")
	}

	log.Info().Msg("server exited properly")
}
