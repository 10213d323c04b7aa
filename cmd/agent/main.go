package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/yourorg/inventory-dashboard/internal/approval"
	"github.com/yourorg/inventory-dashboard/internal/auth"
	"github.com/yourorg/inventory-dashboard/internal/client"
	"github.com/yourorg/inventory-dashboard/internal/config"
	"github.com/yourorg/inventory-dashboard/internal/dispatch"
	"github.com/yourorg/inventory-dashboard/internal/handler"
	"github.com/yourorg/inventory-dashboard/internal/metrics"
	"github.com/yourorg/inventory-dashboard/internal/middleware"
	"github.com/yourorg/inventory-dashboard/internal/service"
	"github.com/yourorg/inventory-dashboard/internal/store"
	"github.com/yourorg/inventory-dashboard/internal/transport"
)

func main() {
	// Load configuration
	cfg, err := config.LoadConfig("config/config.yaml")
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Set up logger
	logger, err := createLogger(cfg.Logging.Level)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer logger.Sync()

	// Load the persisted access token and derive the stream identity
	token, err := auth.LoadToken(cfg.API)
	if err != nil {
		logger.Fatal("Failed to load API token", zap.Error(err))
	}
	if auth.Expired(token, time.Now()) {
		logger.Warn("API token is expired, server calls will be rejected")
	}
	identity, err := auth.IdentityFromToken(token)
	if err != nil {
		logger.Fatal("Failed to extract identity from token", zap.Error(err))
	}

	// Reconciliation store and instrumentation
	st := store.New(logger)
	m := metrics.New(func() float64 {
		return float64(st.UnreadCount())
	})

	// Dispatcher with the default store binding
	dispatcher := dispatch.New(validator.New(), m, logger)
	dispatch.BindStore(dispatcher, st)

	// Stream transport
	streamClient := transport.NewWSClient(cfg.Stream, identity, nil, m, logger)
	streamClient.OnFrame(dispatcher.HandleFrame)
	streamClient.OnStateChange(func(state transport.ConnState) {
		logger.Info("stream state changed", zap.String("state", string(state)))
	})
	if err := streamClient.Connect(); err != nil {
		// Reconnection is already scheduled; the agent starts degraded.
		logger.Warn("Initial stream connection failed", zap.Error(err))
	}

	// Optional UHF reader-event source
	var kafkaSource *transport.KafkaSource
	if cfg.Kafka.Enabled && len(cfg.Kafka.Brokers) > 0 {
		kafkaSource = transport.NewKafkaSource(cfg.Kafka, dispatcher.HandleFrame, logger)
		kafkaSource.Start(context.Background())
		logger.Info("UHF reader source started",
			zap.Strings("brokers", cfg.Kafka.Brokers),
			zap.String("topic", cfg.Kafka.Topic))
	}

	// REST clients and services
	rest := client.NewREST(cfg.API, token, logger)
	notificationService := service.NewNotificationService(client.NewNotificationClient(rest), st, logger)
	inventoryService := service.NewInventoryService(client.NewInventoryClient(rest), st, logger)
	controller := approval.NewController(client.NewApprovalClient(rest), logger)

	// Prime the store; push events reconcile on top of this baseline.
	startupCtx, cancelStartup := context.WithTimeout(context.Background(), 15*time.Second)
	if err := notificationService.Refresh(startupCtx, 1, 50); err != nil {
		logger.Warn("Initial notification fetch failed", zap.Error(err))
	}
	if err := inventoryService.Refresh(startupCtx); err != nil {
		logger.Warn("Initial low-stock fetch failed", zap.Error(err))
	}
	cancelStartup()

	// Local HTTP surface
	router := setupRouter(notificationService, inventoryService, controller, streamClient, dispatcher, m, logger)

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		logger.Info("Starting agent", zap.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down agent...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("Server forced to shutdown", zap.Error(err))
	}

	// Deliberate teardown: no leaked sockets or reconnect timers.
	streamClient.Disconnect()
	if kafkaSource != nil {
		if err := kafkaSource.Close(); err != nil {
			logger.Warn("Failed to close reader source", zap.Error(err))
		}
	}

	logger.Info("Agent exited properly")
}

func createLogger(level string) (*zap.Logger, error) {
	var zapLevel zap.AtomicLevel
	switch level {
	case "debug":
		zapLevel = zap.NewAtomicLevelAt(zap.DebugLevel)
	case "info":
		zapLevel = zap.NewAtomicLevelAt(zap.InfoLevel)
	case "warn":
		zapLevel = zap.NewAtomicLevelAt(zap.WarnLevel)
	case "error":
		zapLevel = zap.NewAtomicLevelAt(zap.ErrorLevel)
	default:
		zapLevel = zap.NewAtomicLevelAt(zap.InfoLevel)
	}

	config := zap.Config{
		Level:            zapLevel,
		Development:      false,
		Encoding:         "json",
		EncoderConfig:    zap.NewProductionEncoderConfig(),
		OutputPaths:      []string{"stdout"},
		ErrorOutputPaths: []string{"stderr"},
	}

	return config.Build()
}

func setupRouter(
	notificationService *service.NotificationService,
	inventoryService *service.InventoryService,
	controller *approval.Controller,
	streamClient transport.Client,
	dispatcher *dispatch.Dispatcher,
	m *metrics.Metrics,
	logger *zap.Logger,
) *gin.Engine {
	router := gin.New()

	router.Use(gin.Recovery())
	router.Use(middleware.Logger(logger))

	// Health check
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "healthy"})
	})
	router.GET("/metrics", gin.WrapH(m.Handler()))

	notifHandler := handler.NewNotificationHandler(notificationService, logger)
	invHandler := handler.NewInventoryHandler(inventoryService, logger)
	approvalHandler := handler.NewApprovalHandler(controller, logger)
	streamHandler := handler.NewStreamHandler(streamClient, dispatcher, logger)

	v1 := router.Group("/api/v1")
	{
		state := v1.Group("/state")
		{
			state.GET("/notifications", notifHandler.GetNotifications)
			state.GET("/low-stock", invHandler.GetLowStock)
		}

		notifications := v1.Group("/notifications")
		{
			notifications.POST("/refresh", notifHandler.Refresh)
			notifications.PUT("/:id/read", notifHandler.MarkRead)
			notifications.PUT("/read-all", notifHandler.MarkAllRead)
			notifications.DELETE("/:id", notifHandler.Delete)
			notifications.POST("/test", notifHandler.SendTest)
		}

		inventory := v1.Group("/inventory")
		{
			inventory.POST("/refresh", invHandler.Refresh)
			inventory.PUT("/:id/threshold", invHandler.UpdateThreshold)
		}

		files := v1.Group("/files")
		{
			files.POST("/:id/load", approvalHandler.Load)

			review := files.Group("/review")
			review.GET("", approvalHandler.GetReview)
			review.POST("/select-all", approvalHandler.SelectAll)
			review.POST("/deselect-all", approvalHandler.DeselectAll)
			review.POST("/rows/:recordID/toggle", approvalHandler.ToggleRow)
			review.POST("/rows/:recordID/approve", approvalHandler.ApproveRecord)
			review.POST("/rows/:recordID/reject", approvalHandler.RejectRecord)
			review.POST("/approve", approvalHandler.ApproveFile)
			review.POST("/reject", approvalHandler.RejectFile)
		}

		stream := v1.Group("/stream")
		{
			stream.GET("/status", streamHandler.Status)
		}

		v1.POST("/simulate", streamHandler.Simulate)
		v1.POST("/broadcast", streamHandler.Broadcast)
	}

	return router
}
