package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq"

	"posteventcalendar/config"
	_ "posteventcalendar/docs"
	authadapter "posteventcalendar/internal/adapters/auth"
	"posteventcalendar/internal/adapters/email"
	"posteventcalendar/internal/adapters/eventparser"
	"posteventcalendar/internal/adapters/realtime"
	httpdelivery "posteventcalendar/internal/delivery/http"
	"posteventcalendar/internal/delivery/http/controllers"
	"posteventcalendar/internal/delivery/http/middleware"
	"posteventcalendar/internal/domain"
	"posteventcalendar/internal/repository/postgres"
	"posteventcalendar/internal/services"
)

const serviceTimeout = 5 * time.Second

// @title Post Event Calendar API
// @version 1.0
// @description Scheduled events attached to posts: roster reconciliation, invite notifications, attendance.
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	logger := config.NewLogger()

	cfg, err := config.Load()
	if err != nil {
		logger.Error("load config", "error", err)
		os.Exit(1)
	}

	db, err := sql.Open("postgres", cfg.DBUrl)
	if err != nil {
		logger.Error("open database", "error", err)
		os.Exit(1)
	}
	defer db.Close()
	if err := db.Ping(); err != nil {
		logger.Error("ping database", "error", err)
		os.Exit(1)
	}

	eventRepo := postgres.NewEventRepository(db)
	inviteeRepo := postgres.NewInviteeRepository(db)
	userRepo := postgres.NewUserRepository(db)
	postRepo := postgres.NewPostRepository(db)
	resolver := postgres.NewInviteeResolverRepository(db)
	mirror := postgres.NewTopicFieldRepository(db)

	mailer, err := email.NewMailer(email.MailerConfig{
		Provider:    cfg.EmailProvider,
		FromAddress: cfg.EmailFromAddress,
		FromName:    cfg.EmailFromName,
		SES: email.SESConfig{
			Region:          cfg.SESRegion,
			AccessKeyID:     cfg.SESAccessKeyID,
			SecretAccessKey: cfg.SESSecretAccessKey,
		},
	}, logger)
	if err != nil {
		logger.Error("create mailer", "error", err)
		os.Exit(1)
	}
	notifier := services.NewEmailNotificationChannel(userRepo, mailer, email.NewTemplateRenderer())

	var publisher domain.RealtimePublisher
	if cfg.NATSUrl != "" {
		p, closePublisher, err := realtime.NewNATSPublisher(cfg.NATSUrl)
		if err != nil {
			logger.Error("connect realtime publisher", "error", err)
			os.Exit(1)
		}
		defer closePublisher()
		publisher = p
	} else {
		publisher = realtime.NewNoopPublisher(logger)
	}

	tokens := authadapter.NewJWTTokens(cfg.JWTSecret)
	hasher := authadapter.NewBcryptHasher(10)

	eventService := services.NewEventService(logger, eventRepo, inviteeRepo, userRepo, postRepo,
		eventparser.New(), resolver, notifier, publisher, mirror, serviceTimeout)
	authService := services.NewAuthService(userRepo, hasher, tokens, cfg.JWTExpiry)

	eventController := controllers.NewEventController(logger, eventService, postRepo)
	authController := controllers.NewAuthController(logger, authService)

	mux := httpdelivery.NewRouter(eventController, authController, tokens)
	handler := middleware.LoggingMiddleware(logger, middleware.CORS(cfg.AllowedOrigins, mux))

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("server listening", "port", cfg.Port, "env", cfg.Environment)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server", "error", err)
			os.Exit(1)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("shutdown", "error", err)
	}
}
