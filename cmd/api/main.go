package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/fluxdesk/helpdesk-sla/internal/api/http"
	"github.com/fluxdesk/helpdesk-sla/internal/api/http/handlers"
	"github.com/fluxdesk/helpdesk-sla/internal/auth"
	"github.com/fluxdesk/helpdesk-sla/internal/cache"
	"github.com/fluxdesk/helpdesk-sla/internal/config"
	"github.com/fluxdesk/helpdesk-sla/internal/domain"
	"github.com/fluxdesk/helpdesk-sla/internal/events"
	"github.com/fluxdesk/helpdesk-sla/internal/observability"
	"github.com/fluxdesk/helpdesk-sla/internal/persistence"
	"github.com/fluxdesk/helpdesk-sla/internal/repository"
	"github.com/fluxdesk/helpdesk-sla/internal/service"
	"github.com/fluxdesk/helpdesk-sla/internal/sla"
	"github.com/fluxdesk/helpdesk-sla/internal/worker"
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

	cutover, err := cfg.Sla.Cutover()
	if err != nil {
		logger.Fatal("invalid sla configuration", zap.Error(err))
	}

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
	ticketRepo := repository.NewTicketRepository(pool)
	configRepo := repository.NewSlaConfigRepository(pool)
	hoursRepo := repository.NewBusinessHoursRepository(pool)
	holidayRepo := repository.NewHolidayRepository(pool)
	pauseRepo := repository.NewPauseRepository(pool)
	resultRepo := repository.NewSlaResultRepository(pool)
	runRepo := repository.NewSlaRunRepository(pool)
	historyRepo := repository.NewStatusHistoryRepository(pool)

	var metricsCache cache.MetricsCache
	if redis.Ping(ctx) == nil {
		metricsCache = cache.NewRedisMetricsCache(redis.Client, logger)
	} else {
		logger.Warn("redis unavailable; using in-memory dashboard cache")
		metricsCache = cache.NewMemoryMetricsCache()
	}

	calendar := sla.NewCalendar(holidayRepo, hoursRepo, logger)
	accumulator := sla.NewAccumulator(calendar)
	tracker := sla.NewPauseTracker(pauseRepo, logger)
	evaluator := sla.NewEvaluator(accumulator, pauseRepo, cutover,
		domain.NormalizePriority(cfg.Sla.DefaultPriority), logger)

	dispatcher := events.NewInMemoryDispatcher(logger)

	ticketService := service.NewTicketService(service.TicketDependencies{
		TicketRepo:  ticketRepo,
		HistoryRepo: historyRepo,
		Tracker:     tracker,
		Dispatcher:  dispatcher,
		Logger:      logger,
	})
	slaService := service.NewSlaService(service.SlaDependencies{
		TicketRepo: ticketRepo,
		ConfigRepo: configRepo,
		ResultRepo: resultRepo,
		RunRepo:    runRepo,
		Evaluator:  evaluator,
		Tracker:    tracker,
		Metrics:    metricsCache,
		Dispatcher: dispatcher,
		Logger:     logger,
	})
	metricsService := service.NewMetricsService(service.MetricsDependencies{
		TicketRepo: ticketRepo,
		ConfigRepo: configRepo,
		Evaluator:  evaluator,
		Metrics:    metricsCache,
		CacheTTL:   cfg.Sla.DashboardTTL(),
		Logger:     logger,
	})
	configService := service.NewConfigService(service.ConfigDependencies{
		ConfigRepo:  configRepo,
		HoursRepo:   hoursRepo,
		HolidayRepo: holidayRepo,
		Calendar:    calendar,
		Metrics:     metricsCache,
		Logger:      logger,
	})

	tokenManager := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTLMinutes)
	authMiddleware := auth.NewAuthMiddleware(tokenManager)

	httpMetrics := observability.NewMetrics()

	app := fiber.New(fiber.Config{AppName: cfg.App.Name})
	httptransport.RegisterMiddlewares(app, logger, httpMetrics, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, pg, redis),
		Sla:            handlers.NewSlaHandler(slaService, metricsService),
		Config:         handlers.NewConfigHandler(configService),
		Tickets:        handlers.NewTicketsHandler(ticketService),
		AuthMiddleware: authMiddleware,
	})

	var scheduler *worker.SlaScheduler
	if cfg.Sla.SchedulerEnabled {
		scheduler = worker.NewSlaScheduler(slaService, metricsService, cfg.Sla.RecomputeIntervalMin, logger)
		if err := scheduler.Start(); err != nil {
			logger.Fatal("failed to start sla scheduler", zap.Error(err))
		}
	}

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	if scheduler != nil {
		scheduler.Stop()
	}
	_ = app.Shutdown()
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
