package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"

	"github.com/jwalitptl/procurement-api/internal/config"
	"github.com/jwalitptl/procurement-api/internal/email"
	alertHandler "github.com/jwalitptl/procurement-api/internal/handler/alert"
	authHandler "github.com/jwalitptl/procurement-api/internal/handler/auth"
	"github.com/jwalitptl/procurement-api/internal/handler/health"
	itemHandler "github.com/jwalitptl/procurement-api/internal/handler/item"
	notificationHandler "github.com/jwalitptl/procurement-api/internal/handler/notification"
	projectHandler "github.com/jwalitptl/procurement-api/internal/handler/project"
	"github.com/jwalitptl/procurement-api/internal/handler/prometheus"
	userHandler "github.com/jwalitptl/procurement-api/internal/handler/user"
	"github.com/jwalitptl/procurement-api/internal/middleware"
	"github.com/jwalitptl/procurement-api/internal/repository/postgres"
	"github.com/jwalitptl/procurement-api/internal/router"
	alertService "github.com/jwalitptl/procurement-api/internal/service/alert"
	authService "github.com/jwalitptl/procurement-api/internal/service/auth"
	itemService "github.com/jwalitptl/procurement-api/internal/service/item"
	notificationService "github.com/jwalitptl/procurement-api/internal/service/notification"
	projectService "github.com/jwalitptl/procurement-api/internal/service/project"
	userService "github.com/jwalitptl/procurement-api/internal/service/user"
	"github.com/jwalitptl/procurement-api/pkg/auth"
	"github.com/jwalitptl/procurement-api/pkg/logger"
	"github.com/jwalitptl/procurement-api/pkg/messaging"
	"github.com/jwalitptl/procurement-api/pkg/messaging/redis"
	"github.com/jwalitptl/procurement-api/pkg/metrics"
	"github.com/jwalitptl/procurement-api/pkg/security"
)

func main() {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	// Initialize logger
	appLogger := logger.NewLogger(&logger.Config{
		Level:      logger.ParseLevel(cfg.Log.Level),
		TimeFormat: time.RFC3339,
		Output:     os.Stdout,
		JSON:       cfg.Log.Format == "json",
	})
	log.Logger = appLogger.ZL
	zerolog.SetGlobalLevel(logger.ParseLevel(cfg.Log.Level))

	if cfg.JWT.Secret == "" {
		log.Fatal().Msg("jwt.secret must be set")
	}

	loc, err := cfg.Alerts.Location()
	if err != nil {
		log.Fatal().Err(err).Msg("invalid alerts configuration")
	}

	// Initialize database
	db, err := postgres.NewDB(cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer db.Close()

	// Initialize repositories
	baseRepo := postgres.NewBaseRepository(db)
	userRepo := postgres.NewUserRepository(baseRepo)
	projectRepo := postgres.NewProjectRepository(baseRepo)
	itemRepo := postgres.NewItemRepository(baseRepo)
	alertRepo := postgres.NewAlertRepository(baseRepo)
	notificationRepo := postgres.NewNotificationRepository(baseRepo)

	// Metrics share the HTTP registry so one endpoint serves both
	promHandler := prometheus.New()
	appMetrics := metrics.New("procurement")
	if err := appMetrics.Register(promHandler.Registry()); err != nil {
		log.Fatal().Err(err).Msg("failed to register metrics")
	}

	// In-app push is optional
	var publisher messaging.Publisher = messaging.NopPublisher{}
	if cfg.Redis.URL != "" {
		broker, err := redis.NewRedisBroker(cfg.Redis.ToBrokerConfig(), &log.Logger)
		if err != nil {
			log.Warn().Err(err).Msg("redis unavailable, in-app push disabled")
		} else {
			defer broker.Close()
			publisher = broker
		}
	}

	// Initialize services
	hasher := security.NewBcryptHasher(bcrypt.DefaultCost)
	jwtSvc := auth.NewJWTService(cfg.JWT.Secret, cfg.JWT.Expiry())

	notificationSvc := notificationService.NewService(notificationRepo, userRepo, publisher, appLogger, appMetrics)
	mailer := email.NewAlertMailer(email.NewSMTPSender(cfg.Mail), appLogger, appMetrics)
	alertSvc := alertService.NewService(itemRepo, alertRepo, mailer, appLogger, appMetrics, alertService.Config{
		Lookahead: cfg.Alerts.Lookahead,
		Location:  loc,
	})
	authSvc := authService.NewService(userRepo, jwtSvc, hasher, int64(cfg.JWT.Expiry().Seconds()))
	userSvc := userService.NewService(userRepo, hasher)
	projectSvc := projectService.NewService(projectRepo, userRepo, notificationSvc)
	itemSvc := itemService.NewService(itemRepo, projectRepo, userRepo, notificationSvc)

	// Initialize middleware
	authMiddleware := middleware.NewAuthMiddleware(jwtSvc)

	// Setup router
	r := router.NewRouter(cfg, authMiddleware, router.Handlers{
		Auth:         authHandler.NewHandler(authSvc),
		User:         userHandler.NewHandler(userSvc, authMiddleware),
		Project:      projectHandler.NewHandler(projectSvc, itemSvc, authMiddleware),
		Item:         itemHandler.NewHandler(itemSvc),
		Alert:        alertHandler.NewHandler(alertSvc, authMiddleware),
		Notification: notificationHandler.NewHandler(notificationSvc),
		Health:       health.NewHandler(db),
	}, promHandler)
	r.Setup()

	// Create server
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      r.Engine(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	// Start server
	go func() {
		log.Info().Int("port", cfg.Server.Port).Msg("starting server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("failed to start server")
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("server forced to shutdown")
	}

	log.Info().Msg("server exited properly")
}
