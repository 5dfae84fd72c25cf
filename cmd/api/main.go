package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	httptransport "github.com/shopmena/helpdesk/internal/api/http"
	"github.com/shopmena/helpdesk/internal/api/http/handlers"
	"github.com/shopmena/helpdesk/internal/auth"
	"github.com/shopmena/helpdesk/internal/config"
	"github.com/shopmena/helpdesk/internal/events"
	"github.com/shopmena/helpdesk/internal/observability"
	"github.com/shopmena/helpdesk/internal/persistence"
	"github.com/shopmena/helpdesk/internal/realtime"
	"github.com/shopmena/helpdesk/internal/repository"
	"github.com/shopmena/helpdesk/internal/service"
	"github.com/shopmena/helpdesk/internal/worker"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		logger.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer pg.Close()

	if cfg.Postgres.RunMigrations {
		if err := persistence.RunMigrations(ctx, pg.PoolHandle(), logger); err != nil {
			logger.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	redis := persistence.NewRedis(cfg.Redis, logger)
	defer redis.Close()

	registry := prometheus.NewRegistry()
	metrics := observability.NewMetrics(registry)

	pool := pg.PoolHandle()
	userRepo := repository.NewUserRepository(pool)
	ticketRepo := repository.NewTicketRepository(pool)
	messageRepo := repository.NewTicketMessageRepository(pool)
	notificationRepo := repository.NewNotificationRepository(pool)

	dispatcher := events.NewInMemoryDispatcher()

	// Change feed: domain events -> redis pub/sub -> in-process broker
	// -> websocket gateway.
	publisher := realtime.NewRedisPublisher(redis.Client, metrics)
	realtime.RegisterEventBridge(dispatcher, publisher, logger)

	broker := realtime.NewBroker()
	relay := realtime.NewRedisRelay(redis.Client, broker, logger)
	go relay.Run(ctx)

	tokens := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTLMinutes)

	ticketService := service.NewTicketService(service.TicketDependencies{
		TicketRepo:  ticketRepo,
		MessageRepo: messageRepo,
		Dispatcher:  dispatcher,
	})
	notificationService := service.NewNotificationService(service.NotificationDependencies{
		NotificationRepo: notificationRepo,
		UserRepo:         userRepo,
		Dispatcher:       dispatcher,
		Logger:           logger,
	})
	authService := service.NewAuthService(service.AuthDependencies{
		UserRepo:   userRepo,
		Tokens:     tokens,
		BcryptCost: cfg.Auth.BcryptCost,
	})

	worker.NewNotificationWorker(notificationService, ticketRepo, logger).Register(dispatcher)

	gateway := realtime.NewGateway(cfg.Realtime, tokens, ticketRepo, broker, logger, metrics)
	go func() {
		if err := gateway.ListenAndServe(ctx); err != nil {
			logger.Error("realtime gateway stopped", zap.Error(err))
		}
	}()

	authMiddleware := auth.NewAuthMiddleware(tokens, userRepo)

	app := fiber.New(fiber.Config{
		AppName:               cfg.App.Name,
		DisableStartupMessage: cfg.App.Env == "production",
	})
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:             handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, pg, redis),
		Auth:               handlers.NewAuthHandler(authService),
		Tickets:            handlers.NewTicketsHandler(ticketService),
		AdminTickets:       handlers.NewAdminTicketsHandler(ticketService),
		Notifications:      handlers.NewNotificationsHandler(notificationService),
		AdminNotifications: handlers.NewAdminNotificationsHandler(notificationService),
		AuthMiddleware:     authMiddleware,
		MetricsRegistry:    registry,
	})

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)
	cancel()

	_ = app.Shutdown()
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
