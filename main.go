package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"eon-notify/config"
	"eon-notify/connection"
	"eon-notify/controller"
	"eon-notify/data"
	"eon-notify/event-hub/consumer"
	"eon-notify/logger"
	"eon-notify/middleware"
	notificationRepository "eon-notify/repository/notification"
	"eon-notify/router"
	notificationService "eon-notify/services/notification"
	routingService "eon-notify/services/routing"
	settingsService "eon-notify/services/settings"
	"eon-notify/toast"
	"eon-notify/utils"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/rs/cors"
)

func main() {
	// Only load .env file in local development
	if os.Getenv("ENV") != data.PRODUCTION_ENV {
		if err := godotenv.Load(); err != nil {
			log.Println("No .env file found, using environment variables")
		}
	}

	cfg := config.LoadConfig()
	validate := validator.New()

	logger.Init()
	defer logger.Log.Flush()

	// Pick the notification storage backend
	repository, err := buildRepository(cfg)
	if err != nil {
		logger.Log.Error(logger.LogPayload{
			Component: "Main",
			Operation: "Storage",
			Message:   "Failed to initialize storage backend",
			Error:     err,
		})
		os.Exit(1)
	}

	notifications, err := notificationService.NewNotificationServiceImpl(repository, validate, cfg.MaxNotifications, cfg.RetentionDays)
	if err != nil {
		logger.Log.Error(logger.LogPayload{
			Component: "Main",
			Operation: "NotificationService",
			Message:   "Failed to initialize notification service",
			Error:     err,
		})
		os.Exit(1)
	}
	settings, err := settingsService.NewSettingsServiceImpl(validate)
	if err != nil {
		logger.Log.Error(logger.LogPayload{
			Component: "Main",
			Operation: "SettingsService",
			Message:   "Failed to initialize settings service",
			Error:     err,
		})
		os.Exit(1)
	}

	toaster := &toast.LogToaster{}
	manager := connection.NewManager(connection.OptionsFromConfig(cfg), toaster)
	defer manager.Close()

	roleRouter, err := routingService.NewRoleRouter(manager, notifications, settings, toaster)
	if err != nil {
		logger.Log.Error(logger.LogPayload{
			Component: "Main",
			Operation: "RoleRouter",
			Message:   "Failed to initialize role router",
			Error:     err,
		})
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// With an Event Hub connection string configured, events flow in from
	// the hub as well as the websocket channel.
	if cfg.EventHubNameSpaceConString != "" {
		go func() {
			if err := consumer.StartEventHubConsumer(ctx, manager, validate); err != nil {
				logger.Log.Error(logger.LogPayload{
					Component: "Main",
					Operation: "EventHubConsumer",
					Message:   "Failed to start Event Hub consumer",
					Error:     err,
				})
			}
		}()
	}

	// A session supplied via environment starts the pipeline immediately.
	if session, ok := sessionFromEnv(); ok {
		if err := notifications.SetSession(session); err != nil {
			logger.Log.Error(logger.LogPayload{
				Component: "Main",
				Operation: "Session",
				Message:   "Failed to activate session",
				Error:     err,
				UserId:    session.UserID,
			})
			os.Exit(1)
		}
		if err := roleRouter.Start(session); err != nil {
			logger.Log.Error(logger.LogPayload{
				Component: "Main",
				Operation: "Session",
				Message:   "Failed to start role router",
				Error:     err,
				UserId:    session.UserID,
			})
			os.Exit(1)
		}
		manager.Connect(session)
	}

	// Set gin mode
	if cfg.Environment == data.PRODUCTION_ENV {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.Default()
	r.Use(middleware.CorrelationIDMiddleware())
	router.RegisterNotificationRoutes(r, controller.NewNotificationController(notifications))

	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   utils.ProcessAllowedOrigins(cfg.AllowedOrigins),
		AllowedMethods:   []string{"GET", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "X-Correlation-ID"},
		AllowCredentials: true,
	}).Handler(r)

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: corsHandler,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Log.Error(logger.LogPayload{
				Component: "Main",
				Operation: "ListenAndServe",
				Message:   "Failed to start server",
				Error:     err,
			})
			os.Exit(1)
		}
	}()

	logger.Log.Info(logger.LogPayload{
		Component: "Main",
		Operation: "Startup",
		Message:   fmt.Sprintf("Notification pipeline started, API on port %s", cfg.Port),
	})

	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)
	<-c
	logger.Log.Info(logger.LogPayload{
		Component: "Main",
		Operation: "Shutdown",
		Message:   "Received shutdown signal",
	})
	cancel()
	roleRouter.Stop()
	manager.Close()

	ctxShutdown, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelShutdown()
	if err := srv.Shutdown(ctxShutdown); err != nil {
		logger.Log.Error(logger.LogPayload{
			Component: "Main",
			Operation: "Shutdown",
			Message:   "Server shutdown failed",
			Error:     err,
		})
		os.Exit(1)
	}
	logger.Log.Info(logger.LogPayload{
		Component: "Main",
		Operation: "Exit",
		Message:   "Pipeline exited properly",
	})
}

func buildRepository(cfg *config.Config) (notificationRepository.NotificationRepository, error) {
	switch cfg.StorageBackend {
	case data.STORAGE_REDIS:
		return notificationRepository.NewRedisRepositoryImpl(config.InitRedis()), nil
	case data.STORAGE_MONGO:
		return notificationRepository.NewMongoRepositoryImpl(config.MongoConnection()), nil
	default:
		return notificationRepository.NewFileRepositoryImpl(cfg.StorageDir)
	}
}

func sessionFromEnv() (data.Session, bool) {
	session := data.Session{
		UserID:    os.Getenv("SESSION_USER_ID"),
		Role:      os.Getenv("SESSION_ROLE"),
		AuthToken: os.Getenv("SESSION_TOKEN"),
	}
	return session, session.Valid()
}
