package main

// @title           Friendship Service API
// @version         1.0
// @description     Friendship coordination and real-time notification service
// @host            localhost:8080
// @BasePath        /api/v1
// @schemes         http https

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"friendship-service/internal/adapters/kafka"
	"friendship-service/internal/adapters/storage"
	"friendship-service/internal/api/handlers"
	"friendship-service/internal/api/routes"
	"friendship-service/internal/config"
	"friendship-service/internal/database"
	"friendship-service/internal/events"
	"friendship-service/internal/notify"
	"friendship-service/internal/repository"
	"friendship-service/internal/service"
	"friendship-service/internal/ws"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		slog.Error("Failed to load config", "error", err)
		os.Exit(1)
	}

	slog.Info("Starting friendship service")

	db, err := database.NewPostgresConnection(cfg.Database.DSN)
	if err != nil {
		slog.Error("Failed to connect to PostgreSQL", "error", err)
		os.Exit(1)
	}

	redisClient, err := database.NewRedisConnection(cfg.Redis.URI)
	if err != nil {
		slog.Error("Failed to connect to Redis", "error", err)
		os.Exit(1)
	}
	defer redisClient.Close()

	producer, err := kafka.NewSyncProducer(cfg.Kafka.Brokers)
	if err != nil {
		slog.Error("Failed to create Kafka producer", "error", err)
		os.Exit(1)
	}

	attachments, err := storage.NewAttachmentStore(
		cfg.MinIO.Endpoint, cfg.MinIO.AccessKey, cfg.MinIO.SecretKey, cfg.MinIO.Bucket)
	if err != nil {
		slog.Error("Failed to connect to MinIO", "error", err)
		os.Exit(1)
	}

	// Repositories
	userRepo := repository.NewUserRepository(db)
	friendshipRepo := repository.NewFriendshipRepository(db)
	messageRepo := repository.NewMessageRepository(db)

	// Event channels: durable broker (async) and in-process bus (sync).
	bus := events.NewBus()
	publisher := events.NewPublisher(producer, cfg.Kafka.EventsTopic)
	defer publisher.Close()

	// Domain service
	friendshipService := service.NewFriendshipService(userRepo, friendshipRepo, messageRepo, publisher, bus)
	presenceService := service.NewPresenceService(redisClient)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Live notification fan-out
	hub := ws.NewHub(friendshipService)
	go hub.Run(ctx)
	notifier := notify.NewNotifier(bus, hub)

	// Cross-service reconciler for identity events
	reader := kafka.NewUserEventsReader(cfg.Kafka.Brokers, cfg.Kafka.GroupID, cfg.Kafka.UserEventsTopic)
	reconciler := events.NewReconciler(reader, userRepo, friendshipService)
	defer reconciler.Close()
	go reconciler.Run(ctx)

	// HTTP boundary
	router := routes.NewRouter(
		handlers.NewFriendshipHandler(friendshipService),
		handlers.NewMessageHandler(friendshipService, attachments),
		handlers.NewStreamHandler(notifier, presenceService),
		handlers.NewWSHandler(hub, presenceService),
		handlers.NewPresenceHandler(presenceService),
		cfg.JWT.Secret,
	)
	router.SetupRoutes()

	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port),
		Handler:      router.GetEngine(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		slog.Info("HTTP server listening", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("HTTP server failed", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	slog.Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("Server shutdown", "error", err)
	}
}
