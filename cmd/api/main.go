package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/portal-qssma/portal-service/internal/announce"
	apihttp "github.com/portal-qssma/portal-service/internal/api/http"
	"github.com/portal-qssma/portal-service/internal/api/http/handlers"
	"github.com/portal-qssma/portal-service/internal/config"
	"github.com/portal-qssma/portal-service/internal/directory"
	"github.com/portal-qssma/portal-service/internal/events"
	"github.com/portal-qssma/portal-service/internal/identity"
	"github.com/portal-qssma/portal-service/internal/observability"
	"github.com/portal-qssma/portal-service/internal/persistence"
	"github.com/portal-qssma/portal-service/internal/service"
	"github.com/portal-qssma/portal-service/internal/session"
	"github.com/portal-qssma/portal-service/internal/worker"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		panic(err)
	}
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	postgres, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		logger.Fatal("postgres connection failed", zap.Error(err))
	}
	defer postgres.Close()

	if postgres.PoolHandle() != nil && cfg.Postgres.RunMigrations {
		if err := persistence.RunMigrations(ctx, postgres.PoolHandle(), cfg.Postgres.MigrationsDir, logger); err != nil {
			logger.Fatal("migrations failed", zap.Error(err))
		}
	}

	rdb := persistence.NewRedis(cfg.Redis, logger)
	defer rdb.Close()

	var store directory.Store
	if postgres.PoolHandle() != nil {
		store = directory.NewPostgresStore(postgres.PoolHandle(), rdb.Client, logger)
	} else {
		memory := directory.NewMemoryStore()
		seedDirectory(memory, cfg.Auth.BcryptCost, logger)
		store = memory
	}

	tokens := directory.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.TokenTTLMinutes)
	var authRedis = rdb.Client
	if postgres.PoolHandle() == nil {
		// Memory mode keeps auth state local too.
		authRedis = nil
	}
	auth := directory.NewCredentialAuthenticator(store, authRedis, tokens, cfg.Auth.MaxLoginAttempts, cfg.Auth.ThrottleWindow(), logger)

	resolver := identity.NewResolver(store, auth, logger)
	synchronizer := announce.NewSynchronizer(store, logger)

	fileStore := session.NewFileStore(cfg.Session.FilePath, logger)
	sess := session.New(fileStore, resolver, synchronizer, auth, logger)
	if profile := sess.Restore(ctx); profile != nil {
		logger.Info("session restored", zap.String("role", string(profile.Role)))
	}

	dispatcher := events.NewInMemoryDispatcher(logger)
	incidents := service.NewIncidentService(store, dispatcher, logger)
	feedback := service.NewFeedbackService(store, dispatcher, logger)
	reports := service.NewReportService(store, logger)
	notifications := service.NewNotificationService(dispatcher, synchronizer, cfg.Notification.WebhookURL, logger)
	stopWorker := worker.StartNotificationWorker(notifications)
	defer stopWorker()

	metrics := observability.NewMetrics()

	app := fiber.New(fiber.Config{
		AppName:               cfg.App.Name,
		DisableStartupMessage: cfg.App.Env == "production",
	})
	apihttp.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())
	apihttp.RegisterRoutes(app, apihttp.RouteConfig{
		Health:         handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, postgres, rdb),
		Session:        handlers.NewSessionHandler(sess, metrics),
		Announcements:  handlers.NewAnnouncementsHandler(synchronizer, metrics, logger),
		Safety:         handlers.NewSafetyHandler(incidents, feedback, reports),
		RequireManager: apihttp.RequireManager(sess),
	})

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("server stopped", zap.Error(err))
		}
	}()
	logger.Info("portal listening", zap.String("addr", cfg.App.Addr()))

	<-ctx.Done()
	logger.Info("shutting down")

	synchronizer.Stop()
	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		logger.Error("shutdown failed", zap.Error(err))
	}
}

// seedDirectory loads demo records so the portal is usable without Postgres.
func seedDirectory(store *directory.MemoryStore, bcryptCost int, logger *zap.Logger) {
	now := time.Now().UTC()

	store.SeedDocument(directory.CollectionCollaborators, "QSS001", map[string]any{
		"name":       "Ana Souza",
		"active":     true,
		"department": "Safety",
		"jobTitle":   "Field Technician",
	}, now)

	store.SeedDocument(directory.CollectionManagers, "mgr-1", map[string]any{
		"name":       "Carlos Lima",
		"email":      "manager@qssma.local",
		"active":     true,
		"department": "Management",
	}, now)

	hash, err := directory.HashPassword("manager123", bcryptCost)
	if err != nil {
		logger.Warn("demo account seeding failed", zap.Error(err))
		return
	}
	store.SeedDocument(directory.CollectionAccounts, "acct-1", map[string]any{
		"email":        "manager@qssma.local",
		"passwordHash": hash,
	}, now)

	store.SeedDocument(directory.CollectionAnnouncements, "ann-1", map[string]any{
		"title":    "Welcome to the safety portal",
		"body":     "Report incidents as soon as they happen.",
		"active":   true,
		"audience": "All",
	}, now)

	logger.Info("seeded in-memory directory with demo records")
}
