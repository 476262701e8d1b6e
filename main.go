package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"doctor-booking-server/internal/admin"
	"doctor-booking-server/internal/appointments"
	"doctor-booking-server/internal/booking"
	"doctor-booking-server/internal/catalog"
	"doctor-booking-server/internal/chat"
	"doctor-booking-server/internal/config"
	"doctor-booking-server/internal/metrics"
	"doctor-booking-server/internal/middleware"
	"doctor-booking-server/internal/models"
	"doctor-booking-server/internal/notify"
	"doctor-booking-server/internal/otp"
	"doctor-booking-server/internal/payment"
	"doctor-booking-server/internal/routes"
	"doctor-booking-server/internal/session"
)

func main() {
	logger := logrus.New()

	// Load environment variables
	if err := godotenv.Load(); err != nil {
		logger.WithError(err).Warn("no .env file loaded, using process environment")
	}

	// Initialize configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Fatalf("Error loading config: %v", err)
	}
	configureLogger(logger, cfg)

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(registry)

	apptStore, chatRepo := newStores(logger, cfg)
	sessionBackend := newSessionBackend(logger, cfg)
	sessions := session.NewManager(sessionBackend, cfg.Session.JWTSecret, cfg.SessionTTL())

	appts := appointments.NewService(apptStore, logger, m)
	cat := catalog.New(time.Now(), cfg.Booking.DaysAhead, appts)
	payments := payment.NewMockProvider(cfg.Mock.PaymentDelay, logger)

	var email notify.EmailSender = notify.NewStubEmailSender(logger)
	if sg := notify.NewSendGridSender(notify.SendGridConfig{
		APIKey:    cfg.Mailer.SendGridAPIKey,
		FromEmail: cfg.Mailer.FromEmail,
		FromName:  cfg.Mailer.FromName,
	}, logger); sg != nil {
		email = sg
	}
	notifier := notify.NewNotifier(email, logger)

	hub := chat.NewHub(logger, func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		return origin == "" || origin == cfg.Origin
	})
	limiter := middleware.NewRateLimiter(cfg.RateLimit.RPS, cfg.RateLimit.Burst)
	defer limiter.Stop()

	flows := booking.NewFlowStore(cfg.Booking.FlowTTL)

	svc := routes.Services{
		Sessions:     sessions,
		Catalog:      cat,
		Appointments: appts,
		Booking:      booking.NewService(flows, cat, appts, payments, notifier, cfg.Booking.Currency, logger, m),
		Payments:     payments,
		OTP:          otp.NewMockSender(cfg.Mock.OTPDelay, logger),
		Chat:         chat.NewService(chatRepo, hub, logger, m),
		Hub:          hub,
		Notifier:     notifier,
		Profiles:     admin.NewProfiles(logger),
		RateLimiter:  limiter,
		Gatherer:     registry,
		Logger:       logger,
	}

	scheduler, err := notify.NewScheduler(cfg.Booking.ReminderSchedule, notifier, appts, cat, logger)
	if err != nil {
		logger.Fatalf("Error creating scheduler: %v", err)
	}
	if err := scheduler.AddSweeper("booking flows", cfg.Booking.SweepInterval, flows); err != nil {
		logger.Fatalf("Error creating scheduler: %v", err)
	}
	if mem, ok := sessionBackend.(*session.MemoryBackend); ok {
		if err := scheduler.AddSweeper("sessions", cfg.Booking.SweepInterval, mem); err != nil {
			logger.Fatalf("Error creating scheduler: %v", err)
		}
	}
	scheduler.Start()

	// Initialize Gin router
	if !cfg.IsDevelopment() {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery(), middleware.RequestLogger(logger))

	// Configure CORS
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = []string{cfg.Origin}
	corsConfig.AllowCredentials = true
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Request-ID"}
	corsConfig.ExposeHeaders = []string{"X-Request-ID"}
	router.Use(cors.New(corsConfig))

	routes.SetupRoutes(router, svc, cfg)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%s", cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.WithField("port", cfg.Port).Info("server running")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatalf("Failed to start server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.WithError(err).Error("server shutdown failed")
	}
	<-scheduler.Stop().Done()
}

func configureLogger(logger *logrus.Logger, cfg *config.Config) {
	if level, err := logrus.ParseLevel(cfg.LogLevel); err == nil {
		logger.SetLevel(level)
	}
	if cfg.IsDevelopment() {
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
		return
	}
	logger.SetFormatter(&logrus.JSONFormatter{})
}

// newStores picks SQL storage when a database driver is configured and
// in-memory storage otherwise.
func newStores(logger *logrus.Logger, cfg *config.Config) (appointments.Store, chat.Repository) {
	if cfg.Database.Driver == "" {
		logger.Info("no database configured, keeping appointments and chats in memory")
		return appointments.NewMemoryStore(), chat.NewMemoryRepository()
	}

	db, err := models.InitDB(models.DatabaseConfig{
		Driver: cfg.Database.Driver,
		DSN:    cfg.Database.DSN,
		Debug:  cfg.Database.Debug,
	})
	if err != nil {
		logger.Fatalf("Error connecting to database: %v", err)
	}
	logger.WithField("driver", cfg.Database.Driver).Info("database connected")
	return appointments.NewGormStore(db), chat.NewGormRepository(db)
}

// newSessionBackend uses redis when an address is configured.
func newSessionBackend(logger *logrus.Logger, cfg *config.Config) session.Backend {
	if cfg.Redis.Addr == "" {
		return session.NewMemoryBackend(cfg.SessionTTL())
	}
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		logger.Fatalf("Error connecting to redis: %v", err)
	}
	logger.WithField("addr", cfg.Redis.Addr).Info("redis session backend connected")
	return session.NewRedisBackend(client, cfg.Redis.KeyPrefix, cfg.SessionTTL())
}
