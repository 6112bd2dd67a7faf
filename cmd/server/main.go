package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"familytree/internal/config"
	"familytree/internal/database"
	"familytree/internal/handlers"
	"familytree/internal/logging"
	"familytree/internal/repository"
	"familytree/internal/security"
	"familytree/internal/service"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "server: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logger, err := logging.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		return err
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Initialize database with config (supports sqlite, postgres, mysql)
	db, err := database.InitializeWithConfig(cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer db.Close()
	logger.Info("database connection established", zap.String("type", cfg.DatabaseType))

	if err := db.RunMigrations(ctx, cfg.MigrationsPath, logger); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	// Initialize repositories
	userRepo := repository.NewUserRepository(db)
	familyRepo := repository.NewFamilyRepository(db)
	memberRepo := repository.NewMemberRepository(db)
	relationshipRepo := repository.NewRelationshipRepository(db)
	joinRequestRepo := repository.NewJoinRequestRepository(db)

	// Initialize services
	emailService, err := service.NewEmailService(ctx, cfg.AWSRegion, cfg.SESFromEmail, cfg.SESFromName, cfg.AppBaseURL, logger)
	if err != nil {
		return err
	}
	tokens := security.NewTokenManager(cfg.JWTSecret, cfg.TokenDuration)
	authService := service.NewAuthService(userRepo, tokens, emailService, logger)
	familyService := service.NewFamilyService(familyRepo, memberRepo, relationshipRepo, userRepo, logger)
	loader := service.NewRepositoryLoader(familyRepo, memberRepo, relationshipRepo)
	treeService := service.NewTreeService(familyService, loader, logger)
	joinRequestService := service.NewJoinRequestService(familyService, familyRepo, memberRepo, joinRequestRepo, emailService, logger)
	backupService := service.NewBackupService(db, logger)

	// Login and registration are limited per client IP
	limiter := security.NewRateLimiter(cfg.LoginRateLimit, cfg.LoginRateBurst)
	go limiter.RunCleanup(10*time.Minute, ctx.Done())

	router := handlers.Routes(handlers.Handlers{
		Middleware:   handlers.NewMiddleware(authService, limiter, logger),
		Auth:         handlers.NewAuthHandler(authService, logger),
		Families:     handlers.NewFamilyHandler(familyService, logger),
		Trees:        handlers.NewTreeHandler(treeService, logger),
		JoinRequests: handlers.NewJoinRequestHandler(joinRequestService, logger),
		Admin:        handlers.NewAdminHandler(backupService, logger),
		Health:       handlers.NewHealthHandler(db, logger),
		Metrics:      promhttp.Handler(),
	})

	addr := ":" + cfg.ServerPort
	server := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		logger.Info("server starting", zap.String("addr", addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	select {
	case err := <-serverErr:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("server shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}
	return nil
}
