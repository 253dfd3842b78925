package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/valyala/fasthttp/fasthttpadaptor"
	"go.uber.org/zap"

	"github.com/mauriciomeseguer/configurador/internal/adapter/agent"
	"github.com/mauriciomeseguer/configurador/internal/adapter/cache"
	"github.com/mauriciomeseguer/configurador/internal/adapter/http/fiber/handlers"
	"github.com/mauriciomeseguer/configurador/internal/adapter/http/fiber/middleware"
	"github.com/mauriciomeseguer/configurador/internal/adapter/queue"
	"github.com/mauriciomeseguer/configurador/internal/adapter/storage/postgres"
	wsAdapter "github.com/mauriciomeseguer/configurador/internal/adapter/websocket"
	"github.com/mauriciomeseguer/configurador/internal/observability/telemetry"
	"github.com/mauriciomeseguer/configurador/internal/ports"
	"github.com/mauriciomeseguer/configurador/internal/service/account"
	"github.com/mauriciomeseguer/configurador/internal/service/chat"
	"github.com/mauriciomeseguer/configurador/internal/service/configuration"
	"github.com/mauriciomeseguer/configurador/internal/service/playback"
	"github.com/mauriciomeseguer/configurador/pkg/config"
)

const (
	serviceName    = "configurador-pc"
	serviceVersion = "v1.0.0"
)

func main() {
	// 1. Initialize Logger
	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatal("Failed to initialize logger:", err)
	}
	defer logger.Sync()

	logger.Info("Starting Configurador PC",
		zap.String("service", serviceName),
		zap.String("version", serviceVersion),
	)

	// 2. Load Configuration
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Failed to load configuration", zap.Error(err))
	}

	// 3. Initialize OpenTelemetry (Distributed Tracing)
	if cfg.Tracing.Enabled {
		tracerProvider, err := telemetry.InitTracer(serviceName, serviceVersion, cfg.Tracing.JaegerEndpoint)
		if err != nil {
			logger.Fatal("Failed to initialize tracer", zap.Error(err))
		}
		defer func() {
			if err := tracerProvider.Shutdown(context.Background()); err != nil {
				logger.Error("Error shutting down tracer provider", zap.Error(err))
			}
		}()
	}

	// 4. Initialize PostgreSQL Connection Pool
	db, err := postgres.NewConnection(cfg.Database, logger)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	sqlDB, err := db.DB()
	if err != nil {
		logger.Fatal("Failed to get underlying SQL DB", zap.Error(err))
	}
	defer sqlDB.Close()

	if cfg.Database.AutoMigrate {
		if err := postgres.RunMigrations(db); err != nil {
			logger.Fatal("Failed to run migrations", zap.Error(err))
		}
	}

	// 5. Initialize Cache (Redis, or in-process when not configured)
	var appCache ports.Cache
	if cfg.Redis.URL != "" {
		appCache, err = cache.NewRedisCache(cfg.Redis.URL, logger)
		if err != nil {
			logger.Fatal("Failed to connect to Redis", zap.Error(err))
		}
	} else {
		appCache = cache.NewLocalCache(time.Minute, logger)
	}
	defer appCache.Close()

	// 6. Initialize Message Queue
	var messageQueue queue.MessageQueue
	switch cfg.Queue.Provider {
	case "nats":
		messageQueue, err = queue.NewNATSQueue(cfg.Queue.NATSURL, logger)
		if err != nil {
			logger.Fatal("Failed to connect to NATS", zap.Error(err))
		}
		defer messageQueue.Close()
	case "rabbitmq":
		messageQueue, err = queue.NewRabbitMQQueue(cfg.Queue.RabbitMQURL, logger)
		if err != nil {
			logger.Fatal("Failed to connect to RabbitMQ", zap.Error(err))
		}
		defer messageQueue.Close()
	default:
		logger.Info("Message queue disabled")
	}
	events := queue.NewEventPublisher(messageQueue, logger)

	// 7. Initialize Repositories
	userRepo := postgres.NewUserRepository(db, logger)
	chatRepo := postgres.NewChatRepository(db, logger)
	messageRepo := postgres.NewMessageRepository(db, logger)
	configurationRepo := postgres.NewConfigurationRepository(db, logger)
	wishlistRepo := postgres.NewWishlistRepository(db, logger)

	// 8. Initialize WebSocket Hub
	hub := wsAdapter.NewHub(logger)
	go hub.Run()

	// Relay message-saved events from other instances into the local hub.
	if err := events.SubscribeTranscriptFanout(hub); err != nil {
		logger.Warn("Failed to subscribe to transcript fan-out", zap.Error(err))
	}

	// 9. Initialize Playback Negotiator (browser player behind the hub)
	player := wsAdapter.NewPlayer(hub)
	negotiator := playback.NewNegotiator(player, cfg.Playback, logger,
		playback.WithListener(wsAdapter.StatusPusher(hub)))

	// 10. Initialize Agent Client and Services
	agentClient := agent.NewClient(cfg.Agent, logger)

	accountService := account.NewService(userRepo, chatRepo, configurationRepo, wishlistRepo, appCache, cfg.Cache, logger)
	chatService := chat.NewService(userRepo, chatRepo, messageRepo, agentClient, negotiator, hub, events, logger)
	configurationService := configuration.NewService(userRepo, configurationRepo, wishlistRepo, appCache, events, logger)

	// 11. Initialize Fiber HTTP Server
	app := fiber.New(fiber.Config{
		AppName:               serviceName,
		ServerHeader:          serviceName,
		DisableStartupMessage: true,
		ReadTimeout:           cfg.HTTP.ReadTimeout,
		WriteTimeout:          cfg.HTTP.WriteTimeout,
		IdleTimeout:           cfg.HTTP.IdleTimeout,
		ErrorHandler:          middleware.ErrorHandler(logger),
	})

	// Global Middleware
	app.Use(recover.New())
	app.Use(fiberlogger.New())
	if cfg.CORS.Enabled {
		app.Use(middleware.NewCORS(cfg.CORS))
	} else {
		app.Use(middleware.DefaultCORS())
	}
	app.Use(middleware.CircuitBreaker(logger))

	// Health Check Endpoints
	app.Get("/health/live", func(c *fiber.Ctx) error {
		return c.SendString("OK")
	})
	app.Get("/health/ready", func(c *fiber.Ctx) error {
		if err := sqlDB.Ping(); err != nil {
			return c.Status(503).SendString("Database not ready")
		}
		if err := appCache.Ping(); err != nil {
			return c.Status(503).SendString("Cache not ready")
		}
		return c.SendString("Ready")
	})

	// Metrics endpoint for Prometheus
	if cfg.Prometheus.Enabled {
		app.Get(cfg.Prometheus.Path, func(c *fiber.Ctx) error {
			handler := fasthttpadaptor.NewFastHTTPHandler(promhttp.Handler())
			handler(c.Context())
			return nil
		})
	}

	// 12. API Routes
	api := app.Group("/api")

	userHandler := handlers.NewUserHandler(accountService, logger)
	api.Post("/init-user", userHandler.InitUser)
	api.Get("/dashboard/:userId", userHandler.Dashboard)

	chatHandler := handlers.NewChatHandler(chatService, logger)
	api.Post("/save-message", chatHandler.SaveMessage)
	api.Get("/chats/:userId", chatHandler.UserChats)
	api.Get("/chat-messages/:chatId/:userId", chatHandler.ChatMessages)

	sendHandler := handlers.NewSendHandler(chatService, logger)
	api.Post("/send-message", sendHandler.SendMessage)

	configurationHandler := handlers.NewConfigurationHandler(configurationService, logger)
	api.Post("/save-configuration", configurationHandler.Save)
	api.Get("/configurations/:userId", configurationHandler.List)
	api.Post("/wishlist", configurationHandler.AddToWishlist)
	api.Get("/wishlist/:userId", configurationHandler.Wishlist)

	// 13. Chat WebSocket (transcript, playback directives, voice relay)
	relay := wsAdapter.NewRelay(hub, chatService, negotiator, cfg.Voice, logger)
	relay.Register(app, "/ws/chat")

	// 14. Start HTTP Server
	go func() {
		logger.Info("Starting HTTP Server", zap.Int("port", cfg.HTTP.Port))
		if err := app.Listen(fmt.Sprintf(":%d", cfg.HTTP.Port)); err != nil {
			logger.Fatal("HTTP Server failed", zap.Error(err))
		}
	}()

	// 15. Graceful Shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(ctx); err != nil {
		logger.Fatal("Server forced to shutdown", zap.Error(err))
	}

	logger.Info("Server exited gracefully")
}
