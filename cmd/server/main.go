package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"github.com/ajharbinger/profmatch-api/internal/api"
	"github.com/ajharbinger/profmatch-api/internal/auth"
	"github.com/ajharbinger/profmatch-api/internal/database"
	"github.com/ajharbinger/profmatch-api/internal/logger"
	"github.com/ajharbinger/profmatch-api/internal/mailer"
	"github.com/ajharbinger/profmatch-api/internal/middleware"
	"github.com/ajharbinger/profmatch-api/internal/repository"
	"github.com/ajharbinger/profmatch-api/internal/services"
	"github.com/ajharbinger/profmatch-api/pkg/config"
)

const shutdownTimeout = 15 * time.Second

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	}

	// Initialize configuration
	cfg := config.New()

	appLogger, err := logger.New(logger.Options{Level: cfg.LogLevel, JSON: cfg.LogJSON})
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer appLogger.Sync()

	if err := cfg.Validate(); err != nil {
		appLogger.Fatal("invalid configuration", err)
	}

	// Initialize database
	db, err := database.New(cfg.DatabaseURL)
	if err != nil {
		appLogger.Fatal("failed to connect to database", err)
	}
	defer db.Close()

	// Run migrations
	if err := database.RunMigrations(cfg.DatabaseURL); err != nil {
		appLogger.Fatal("failed to run migrations", err)
	}

	var mail mailer.Mailer
	if cfg.HasSMTPCredentials() {
		smtpMailer, err := mailer.NewSMTPMailer(mailer.SMTPConfig{
			Host:     cfg.SMTPHost,
			Port:     cfg.SMTPPort,
			Username: cfg.SMTPUsername,
			Password: cfg.SMTPPassword,
			From:     cfg.MailFrom,
		})
		if err != nil {
			appLogger.Fatal("failed to configure SMTP", err)
		}
		mail = smtpMailer
	} else {
		appLogger.Warn("SMTP is not configured, reset emails will only be logged")
		mail = mailer.NewLogMailer(appLogger, cfg.IsDevelopment())
	}

	keys := auth.NewKeyring(cfg.StudentJWTSecret, cfg.SecretaryJWTSecret, cfg.TokenTTL)
	svc := services.NewServices(services.Dependencies{
		Repos:  repository.NewRepositories(db.DB),
		Keys:   keys,
		Mailer: mail,
		Logger: appLogger,
		Config: cfg,
	})

	// Set Gin mode based on environment
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	if err := r.SetTrustedProxies(cfg.GetTrustedProxies()); err != nil {
		appLogger.Fatal("invalid trusted proxies", err)
	}

	r.Use(gin.Recovery())
	r.Use(middleware.LoggingMiddleware(appLogger))
	r.Use(middleware.SecurityHeadersMiddleware())
	r.Use(middleware.CORSMiddleware(cfg))
	r.Use(middleware.InputValidationMiddleware(cfg))
	if cfg.EnableRateLimit {
		r.Use(middleware.RateLimitingMiddleware())
	}

	api.SetupRoutes(r, api.RouteDeps{
		Services: svc,
		Keys:     keys,
		DB:       db,
		Config:   cfg,
		Logger:   appLogger,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		appLogger.Info("server starting", "port", cfg.Port, "environment", cfg.Environment)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			appLogger.Fatal("server failed", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	appLogger.Info("shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		appLogger.Error("graceful shutdown failed", err)
	}
}
