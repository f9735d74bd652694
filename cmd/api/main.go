package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/classroom-chat/internal/api/http"
	"github.com/spec-kit/classroom-chat/internal/api/http/handlers"
	"github.com/spec-kit/classroom-chat/internal/auth"
	"github.com/spec-kit/classroom-chat/internal/clients"
	"github.com/spec-kit/classroom-chat/internal/config"
	"github.com/spec-kit/classroom-chat/internal/observability"
	"github.com/spec-kit/classroom-chat/internal/persistence"
	"github.com/spec-kit/classroom-chat/internal/ratelimit"
	"github.com/spec-kit/classroom-chat/internal/repository"
	"github.com/spec-kit/classroom-chat/internal/service"
	"github.com/spec-kit/classroom-chat/internal/worker"
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
	courseRepo := repository.NewCourseRepository(pool)
	sessionRepo := repository.NewSessionRepository(pool)
	settingsRepo := repository.NewSettingsRepository(pool)
	chatRepo := repository.NewChatRepository(pool)

	authService := service.NewAuthService(cfg.Auth, service.AuthDependencies{
		UserRepo:     userRepo,
		CourseRepo:   courseRepo,
		SessionRepo:  sessionRepo,
		SettingsRepo: settingsRepo,
	})
	if err := authService.EnsureAdminPassword(ctx, cfg.Auth.AdminPassword); err != nil {
		logger.Fatal("failed to seed admin password", zap.Error(err))
	}

	rosterService := service.NewRosterService(userRepo, courseRepo)
	chatService := service.NewChatService(chatRepo)
	chatBackend := clients.NewChatClient(cfg.Chat)
	limiter := ratelimit.NewLoginLimiter(redis.Client, logger, cfg.RateLimit.LoginAttempts, cfg.RateLimit.LoginWindow())
	gate := auth.NewGate(authService)

	worker.StartSessionSweeper(ctx, sessionRepo, cfg.Auth.SweepInterval(), logger)

	metrics := observability.NewMetrics()
	app := fiber.New()
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health: handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, pg, redis),
		Auth:   handlers.NewAuthHandler(authService, limiter, cfg.Auth.CookieSecure),
		Roster: handlers.NewRosterHandler(rosterService),
		Chat:   handlers.NewChatHandler(chatService, chatBackend, logger),
		Export: handlers.NewExportHandler(chatService),
		Gate:   gate,
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
