package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"lifeline/config"
	"lifeline/database"
	"lifeline/models"
	"lifeline/repositories"
	"lifeline/routes"
	"lifeline/services"
	"lifeline/store"
	"lifeline/utils"
	"lifeline/websocket"
	"lifeline/workers"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

const version = "1.0.0"

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	}

	// Initialize configuration
	cfg := config.Load()

	// Set Gin mode
	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Initialize logger
	setupLogger(cfg)

	// Initialize database
	db, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		logrus.Fatal("Failed to connect to database: ", err)
	}
	defer database.Disconnect()

	// Initialize Redis and the shared store on top of it
	redisClient := config.InitRedis(cfg)
	defer redisClient.Close()
	sharedStore := store.NewRedisStore(redisClient, cfg.StoreKeyPrefix)

	// Initialize WebSocket hub
	hub := websocket.NewHub()
	go hub.Run()

	// Out-of-band dispatch (push + SMS): optional, degrades to log-only
	var notifier services.DispatchNotifier
	if cfg.FirebaseCredentials != "" && cfg.TwilioAccountSID != "" {
		notifications, err := utils.NewNotificationService(
			cfg.FirebaseCredentials, cfg.TwilioAccountSID, cfg.TwilioAuthToken, cfg.TwilioPhoneNumber)
		if err != nil {
			logrus.Warn("Notification service unavailable: ", err)
		} else {
			notifier = services.NewDispatchService(notifications, cfg.DevicePushToken, cfg.EmergencyContactNumber)
		}
	}

	// Core flow services
	accidentRepo := repositories.NewAccidentRepository(db)
	facilities := services.NewFacilityResolver(cfg.FacilityBaseURL, cfg.OverpassURL, hub)
	tracker := services.NewTrackerService(sharedStore, facilities, hub, services.DefaultTrackerConfig())
	telemetry := services.NewTelemetryService(sharedStore, hub)

	countdownCfg := services.DefaultCountdownConfig()
	countdownCfg.Duration = cfg.CountdownDuration
	countdownCfg.Cooldown = cfg.CooldownDuration
	countdown := services.NewCountdownService(
		sharedStore, tracker, services.NewAlertService(hub), hub, accidentRepo, notifier, countdownCfg)

	ctx := context.Background()
	if err := telemetry.Start(ctx); err != nil {
		logrus.Fatal("Failed to start telemetry listener: ", err)
	}
	if err := countdown.Start(ctx); err != nil {
		logrus.Fatal("Failed to start countdown controller: ", err)
	}

	// Inbound dashboard frames and connection snapshots
	hub.SetFixHandler(func(fix models.LocationFixRequest) {
		tracker.HandleFix(context.Background(), fix)
	})
	hub.SetSnapshot(func() []models.WSEvent {
		now := time.Now()
		return []models.WSEvent{
			{Type: models.WSEventTelemetry, Data: telemetry.Snapshot(), Timestamp: now},
			{Type: models.WSEventCountdown, Data: countdown.Status(), Timestamp: now},
			{Type: models.WSEventPOIs, Data: facilities.POIs(), Timestamp: now},
		}
	})

	// Background workers
	presence := workers.NewPresenceWorker(telemetry, hub, 2*time.Second)
	presence.Start()

	// Email + OTP
	var emailService services.EmailService
	if cfg.SMTPUsername == "" || cfg.SMTPPassword == "" {
		logrus.Warn("SMTP credentials not configured, using mock email service")
		emailService = services.NewMockEmailService()
	} else {
		emailService = services.NewSMTPEmailService(
			cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUsername, cfg.SMTPPassword, cfg.SMTPFrom)
	}
	otpService := services.NewOTPService(cfg.OTPSecret, emailService)

	// Setup routes
	router := routes.SetupRoutes(routes.Dependencies{
		Redis:         redisClient,
		Hub:           hub,
		JWT:           utils.NewJWTService(cfg.JWTSecret),
		Tracker:       tracker,
		Telemetry:     telemetry,
		Countdown:     countdown,
		Facilities:    facilities,
		OTP:           otpService,
		AccidentRepo:  accidentRepo,
		DeviceKey:     cfg.DeviceKey,
		RateLimit:     cfg.RateLimitRequests,
		RateLimitSpan: cfg.RateLimitWindow,
		StartedAt:     time.Now(),
		Version:       version,
	})

	// Create HTTP server
	server := &http.Server{
		Addr:           ":" + cfg.Port,
		Handler:        router,
		ReadTimeout:    15 * time.Second,
		WriteTimeout:   15 * time.Second,
		IdleTimeout:    60 * time.Second,
		MaxHeaderBytes: 1 << 20,
	}

	// Start server in goroutine
	go func() {
		logrus.Info("🚀 Lifeline backend starting on port ", cfg.Port)
		logrus.Info("📱 WebSocket endpoint: /ws")
		logrus.Info("💖 Health Check: /health")

		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logrus.Fatal("Failed to start server: ", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logrus.Info("🛑 Shutting down server...")

	presence.Stop()
	countdown.Stop()
	telemetry.Stop()
	tracker.Stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logrus.Fatal("Server forced to shutdown: ", err)
	}

	logrus.Info("✅ Server shutdown complete")
}

func setupLogger(cfg *config.Config) {
	logrus.SetFormatter(&logrus.JSONFormatter{})

	if cfg.Environment == "development" {
		logrus.SetFormatter(&logrus.TextFormatter{
			FullTimestamp: true,
			ForceColors:   true,
		})
		logrus.SetLevel(logrus.DebugLevel)
	} else {
		logrus.SetLevel(logrus.InfoLevel)
	}
}
