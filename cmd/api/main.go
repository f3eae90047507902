package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/road-damage-service/internal/api/http"
	"github.com/spec-kit/road-damage-service/internal/api/http/handlers"
	"github.com/spec-kit/road-damage-service/internal/auth"
	"github.com/spec-kit/road-damage-service/internal/config"
	"github.com/spec-kit/road-damage-service/internal/events"
	"github.com/spec-kit/road-damage-service/internal/observability"
	"github.com/spec-kit/road-damage-service/internal/persistence"
	"github.com/spec-kit/road-damage-service/internal/repository"
	"github.com/spec-kit/road-damage-service/internal/service"
	"github.com/spec-kit/road-damage-service/internal/worker"
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

	pool := pg.PoolHandle()
	userRepo := repository.NewUserRepository(pool)
	ticketRepo := repository.NewTicketRepository(pool)
	historyRepo := repository.NewTicketHistoryRepository(pool)
	sessionStore := auth.NewRedisSessionStore(redis.Client)

	dispatcher := events.NewInMemoryDispatcher()

	authService := service.NewAuthService(*cfg, service.AuthDependencies{
		UserRepo:     userRepo,
		SessionStore: sessionStore,
	})
	ticketService := service.NewTicketService(*cfg, service.TicketDependencies{
		TicketRepo:  ticketRepo,
		HistoryRepo: historyRepo,
		Dispatcher:  dispatcher,
	})
	statsService := service.NewStatsService(ticketRepo, userRepo)

	auditService := service.NewAuditService(dispatcher, logger)
	worker.StartAuditWorker(auditService)

	if admin, err := authService.EnsureBootstrapAdmin(ctx, cfg.Bootstrap); err != nil {
		logger.Fatal("failed to seed bootstrap admin", zap.Error(err))
	} else if admin != nil {
		logger.Info("bootstrap admin present", zap.String("username", admin.Username))
	}

	authMiddleware := auth.NewAuthMiddleware(authService.TokenManager(), sessionStore, userRepo)

	app := fiber.New()
	metrics := observability.NewMetrics()
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, pg, redis),
		Auth:           handlers.NewAuthHandler(authService),
		Tickets:        handlers.NewTicketsHandler(ticketService),
		AdminTickets:   handlers.NewAdminTicketsHandler(ticketService),
		Dashboard:      handlers.NewDashboardHandler(statsService),
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
