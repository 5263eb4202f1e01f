package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/globalfaces/phoenix-backend/environments"
	"github.com/globalfaces/phoenix-backend/handlers"
	"github.com/globalfaces/phoenix-backend/internal/middlewares"
	"github.com/globalfaces/phoenix-backend/internal/repository"
	"github.com/globalfaces/phoenix-backend/internal/service"
	"github.com/globalfaces/phoenix-backend/pkg/database"
	"github.com/globalfaces/phoenix-backend/pkg/logger"
	"github.com/globalfaces/phoenix-backend/pkg/payments"
	"github.com/globalfaces/phoenix-backend/pkg/redis"
	"github.com/globalfaces/phoenix-backend/pkg/storage"
	"github.com/globalfaces/phoenix-backend/pkg/twilio"
	"github.com/globalfaces/phoenix-backend/pkg/validator"
	"github.com/globalfaces/phoenix-backend/routes"

	_ "github.com/globalfaces/phoenix-backend/docs" // swagger docs
)

// @title Globalfaces Backend API
// @version 1.0
// @description Donation intake backend for face-to-face fundraising tablets
// @termsOfService http://swagger.io/terms/

// @contact.name API Support
// @contact.email engineering@globalfaces.com

// @host localhost:8080
// @BasePath /

// @schemes http https
func main() {
	// Local development reads .env; deployed environments set real env vars.
	_ = godotenv.Load()

	logger.Init()

	cfg := environments.Load()

	logger.Infof("Starting Globalfaces backend...")

	// Init warehouse connection
	db, err := database.NewSnowflakeDB(cfg.Snowflake)
	if err != nil {
		logger.Fatalf("Failed to connect to Snowflake: %v", err)
	}

	// Run migrations
	if err := database.RunMigrations(db); err != nil {
		logger.Fatalf("Failed to run migrations: %v", err)
	}

	// Seed data
	if os.Getenv("SEED_DATA") == "true" {
		if err := database.SeedTestData(db); err != nil {
			logger.Warnf("Failed to seed test data: %v", err)
		}
	}

	// Init redis; the warehouse stays authoritative so the app runs without it
	redisClient, err := redis.NewRedisClient(cfg.Redis)
	if err != nil {
		logger.Warnf("Redis not available, caching disabled: %v", err)
		redisClient = nil
	}

	// Provider clients
	stripeClient := payments.NewClient(cfg.Stripe)
	twilioClient := twilio.NewClient(cfg.Twilio)
	twilioValidator := twilio.NewValidator(cfg.Twilio.AuthToken)
	if !twilioClient.Configured() {
		logger.Warnf("Twilio not configured, SMS sending disabled")
	}

	stageStore := storage.NewStageStore(db)

	// Repositories
	fundraiserRepo := repository.NewFundraiserRepository(db)
	sessionRepo := repository.NewSessionRepository(db)
	donorRepo := repository.NewDonorRepository(db)
	productRepo := repository.NewProductRepository(db)
	verificationRepo := repository.NewVerificationRepository(db)
	signatureRepo := repository.NewSignatureRepository(db)
	paymentRepo := repository.NewPaymentRepository(db)
	eventRepo := repository.NewEventRepository(db)

	// Services
	sessionService := service.NewSessionService(
		fundraiserRepo,
		sessionRepo,
		productRepo,
		eventRepo,
		stageStore,
		cfg.Signature.PresignExpiry,
	)
	donorService := service.NewDonorService(donorRepo, sessionRepo, eventRepo)
	verificationService := service.NewVerificationService(
		verificationRepo,
		donorRepo,
		sessionRepo,
		eventRepo,
		twilioClient,
		redisClient,
	)
	paymentService := service.NewPaymentService(stripeClient, paymentRepo, eventRepo)
	webhookService := service.NewWebhookService(stripeClient, stripeClient, eventRepo, redisClient)
	signatureService := service.NewSignatureService(
		signatureRepo,
		eventRepo,
		stageStore,
		cfg.Signature.StageName,
		cfg.Signature.PresignExpiry,
	)
	eventService := service.NewEventService(eventRepo)

	// Handlers
	healthHandler := handlers.NewHealthHandler(db, redisClient)
	sessionHandler := handlers.NewSessionHandler(sessionService, cfg.Device.DeviceID)
	donorHandler := handlers.NewDonorHandler(donorService)
	productHandler := handlers.NewProductHandler(sessionService)
	verificationHandler := handlers.NewVerificationHandler(verificationService)
	paymentHandler := handlers.NewPaymentHandler(paymentService)
	signatureHandler := handlers.NewSignatureHandler(signatureService)
	webhookHandler := handlers.NewWebhookHandler(webhookService, verificationService, twilioValidator)
	eventHandler := handlers.NewEventHandler(eventService)

	e := echo.New()
	e.HideBanner = true
	e.Validator = validator.New()

	// Middleware
	e.Use(middleware.Logger())
	e.Use(middleware.RequestID())
	e.Use(middleware.Recover())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowHeaders: []string{
			echo.HeaderOrigin,
			echo.HeaderContentType,
			echo.HeaderAccept,
			echo.HeaderAuthorization,
			middlewares.APIKeyHeader,
		},
	}))

	// Setup routes
	routes.RegisterRoutes(
		e,
		healthHandler,
		sessionHandler,
		donorHandler,
		productHandler,
		verificationHandler,
		paymentHandler,
		signatureHandler,
		webhookHandler,
		eventHandler,
		cfg,
	)

	// Start server in goroutine
	go func() {
		addr := ":" + cfg.Server.Port
		logger.Infof("Server starting on http://localhost%s", addr)
		logger.Infof("Swagger docs available at http://localhost%s/swagger/index.html", addr)
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			logger.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Infof("Shutting down gracefully...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	logger.Infof("Shutting down HTTP server...")
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Errorf("Server forced to shutdown: %v", err)
	} else {
		logger.Infof("HTTP server stopped successfully")
	}

	logger.Infof("Closing warehouse connection...")
	if err := db.Close(); err != nil {
		logger.Errorf("Error closing database: %v", err)
	}

	if redisClient != nil {
		logger.Infof("Closing Redis connection...")
		if err := redisClient.Close(); err != nil {
			logger.Errorf("Error closing Redis: %v", err)
		}
	}

	logger.Infof("Graceful shutdown completed")
}
