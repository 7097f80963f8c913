package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/civicdesk/complaint-service/internal/api/http"
	"github.com/civicdesk/complaint-service/internal/api/http/handlers"
	"github.com/civicdesk/complaint-service/internal/auth"
	"github.com/civicdesk/complaint-service/internal/config"
	"github.com/civicdesk/complaint-service/internal/events"
	"github.com/civicdesk/complaint-service/internal/observability"
	"github.com/civicdesk/complaint-service/internal/persistence"
	"github.com/civicdesk/complaint-service/internal/repository"
	"github.com/civicdesk/complaint-service/internal/service"
	"github.com/civicdesk/complaint-service/internal/worker"
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

	shutdownTracer, err := observability.InitTracer(ctx, cfg.App, cfg.Tracing)
	if err != nil {
		logger.Fatal("failed to init tracer", zap.Error(err))
	}

	if cfg.Postgres.RunMigrations {
		if err := persistence.RunMigrations(cfg.Postgres.DSN, logger); err != nil {
			logger.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		logger.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer pg.Close()

	redis := persistence.NewRedis(cfg.Redis, logger)
	defer redis.Close()

	var metrics *observability.Metrics
	if cfg.Metrics.Enabled {
		metrics = observability.NewMetrics()
	}

	store := repository.NewStore(pg.PoolHandle())
	repos := store.Repositories()
	dispatcher := events.NewInMemoryDispatcher()

	tokens := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTLMinutes)
	hasher, err := auth.NewPasswordHasher(cfg.Auth)
	if err != nil {
		logger.Fatal("invalid password hashing config", zap.Error(err))
	}
	authService := service.NewAuthService(hasher, repos.Users, tokens, logger)
	tracking := service.NewTrackingCodeGenerator(repos.Complaints, cfg.Tracking.Prefix, cfg.Tracking.MaxAttempts, logger, metrics)
	complaintService := service.NewComplaintService(service.ComplaintDependencies{
		Repos:      repos,
		Tx:         store,
		Tracking:   tracking,
		Dispatcher: dispatcher,
		Logger:     logger,
		Metrics:    metrics,
	})
	feedbackService := service.NewFeedbackService(service.FeedbackDependencies{
		Repos:      repos,
		Tx:         store,
		Dispatcher: dispatcher,
		Logger:     logger,
		Metrics:    metrics,
	})
	notificationService := service.NewNotificationService(repos.Notifications, logger)
	memberService := service.NewDepartmentMemberService(repos, store, logger)
	catalogService := service.NewCatalogService(repos.Categories, repos.Departments, cfg.Catalog.CacheSize, cfg.Catalog.CacheTTL, metrics)

	var feedCache service.FeedCache
	if c := persistence.NewFeedCache(redis, cfg.App.Name+":feed", cfg.Feed.CacheTTL); c != nil {
		feedCache = c
	}
	feed := service.NewPublicFeedProjector(repos.Complaints, feedCache, cfg.Feed.DefaultPageSize, cfg.Feed.MaxPageSize, logger, metrics)

	worker.StartEventSubscribers(dispatcher, feed, logger)

	deps := map[string]handlers.Pinger{"postgres": pg}
	if redis != nil {
		deps["redis"] = redis
	}

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ErrorHandler: httptransport.ErrorHandler(logger),
	})
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())
	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, deps),
		Auth:           handlers.NewAuthHandler(authService),
		Complaints:     handlers.NewComplaintsHandler(complaintService),
		Agent:          handlers.NewAgentHandler(complaintService),
		Public:         handlers.NewPublicHandler(complaintService, feed, catalogService),
		Feedback:       handlers.NewFeedbackHandler(feedbackService),
		Notifications:  handlers.NewNotificationsHandler(notificationService),
		Members:        handlers.NewMembersHandler(memberService),
		AuthMiddleware: auth.NewAuthMiddleware(authService.TokenManager(), repos.Users),
		Metrics:        metrics,
		MetricsPath:    cfg.Metrics.Path,
	})

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		logger.Warn("http shutdown", zap.Error(err))
	}
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := shutdownTracer(shutdownCtx); err != nil {
		logger.Warn("tracer shutdown", zap.Error(err))
	}
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
