package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/deskhive/ticketing/internal/api/http"
	"github.com/deskhive/ticketing/internal/api/http/handlers"
	"github.com/deskhive/ticketing/internal/auth"
	"github.com/deskhive/ticketing/internal/config"
	"github.com/deskhive/ticketing/internal/events"
	"github.com/deskhive/ticketing/internal/locking"
	"github.com/deskhive/ticketing/internal/observability"
	"github.com/deskhive/ticketing/internal/persistence"
	"github.com/deskhive/ticketing/internal/repository"
	"github.com/deskhive/ticketing/internal/service"
	"github.com/deskhive/ticketing/internal/worker"
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

	var (
		ticketRepo repository.TicketRepository
		agentRepo  repository.AgentRepository
		locker     locking.Locker
		redisConn  *persistence.Redis
	)

	if pool := pg.PoolHandle(); pool != nil {
		ticketRepo = repository.NewTicketRepository(pool)
		agentRepo = repository.NewAgentRepository(pool)
		redisConn = persistence.NewRedis(cfg.Redis, logger)
		defer redisConn.Close()
		locker = locking.NewRedisLocker(redisConn.Client, cfg.Locking.Wait(), cfg.Locking.Lease(), cfg.Locking.Retry(), logger)
	} else {
		// Database-less development mode: single-process stores and
		// locking only.
		logger.Warn("running with in-memory store and locker")
		ticketRepo = repository.NewMemoryTicketRepository()
		agentRepo = repository.NewMemoryAgentRepository()
		locker = locking.NewMemoryLocker(cfg.Locking.Wait(), cfg.Locking.Lease(), cfg.Locking.Retry(), logger)
	}

	dispatcher := events.NewInMemoryDispatcher()
	notificationService := service.NewNotificationService(dispatcher, logger, cfg.Notification)
	worker.StartNotificationWorker(notificationService)

	ticketService := service.NewTicketService(service.TicketDependencies{
		TicketRepo: ticketRepo,
		Locker:     locker,
		Dispatcher: dispatcher,
		Logger:     logger,
	})
	authService := service.NewAuthService(cfg.Auth, agentRepo)
	authMiddleware := auth.NewMiddleware(authService.TokenManager(), agentRepo)

	metrics := observability.NewMetrics()

	app := fiber.New()
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, pg, redisConn),
		Tickets:        handlers.NewTicketsHandler(ticketService),
		Agents:         handlers.NewAgentsHandler(authService),
		AuthMiddleware: authMiddleware,
	})

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	_ = app.Shutdown()
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
