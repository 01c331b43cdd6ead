package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "notekeeper/docs" // swagger docs

	"github.com/labstack/echo/v4"

	"notekeeper/internal/auth"
	"notekeeper/internal/cache"
	"notekeeper/internal/config"
	"notekeeper/internal/db"
	"notekeeper/internal/handler"
	"notekeeper/internal/logging"
	"notekeeper/internal/repository"
	"notekeeper/internal/repository/memory"
	"notekeeper/internal/router"
	"notekeeper/internal/service"
	"notekeeper/internal/summarizer"
)

// @title Notekeeper API
// @version 1.0
// @description Personal notes with JWT authentication and AI-generated summaries.
// @host localhost:8080
// @BasePath /
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.
func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("config", "err", err)
		os.Exit(1)
	}

	logger := logging.New(os.Stdout, cfg.LogLevel, cfg.LogFormat)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	users, notes, err := openStores(cfg, logger)
	if err != nil {
		logger.Error("database init", "err", err)
		os.Exit(1)
	}

	cacheClient := cache.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
	if cacheClient.Enabled() {
		if err := cacheClient.Ping(ctx); err != nil {
			logger.Warn("redis unreachable, note cache will miss", "addr", cfg.RedisAddr, "err", err)
		}
		defer cacheClient.Close()
	}

	jwtService := auth.NewJWTService(cfg.JWTSecret, cfg.JWTTTL)
	logger.Info("token service configured", "ttl", jwtService.TTL().String())

	summaries := summarizer.New(summarizer.Config{
		APIKey:    cfg.ClaudeAPIKey,
		Model:     cfg.ClaudeModel,
		MaxTokens: cfg.ClaudeMaxTokens,
	}, logger)

	if _, _, err := service.Bootstrap(ctx, users, service.DefaultAccounts, logger); err != nil {
		logger.Error("bootstrap accounts", "err", err)
		os.Exit(1)
	}

	// Initialize services
	authService := service.NewAuthService(users, jwtService)
	noteService := service.NewNoteService(users, notes, summaries, cacheClient, logger)

	e := echo.New()
	e.HideBanner = true

	router.Register(
		e,
		logger,
		jwtService,
		handler.NewAuthHandler(authService),
		handler.NewNoteHandler(noteService),
		handler.NewDemoHandler(),
	)

	logger.Info("swagger documentation available", "url", cfg.SwaggerURL())

	go func() {
		addr := ":" + cfg.ServerPort
		logger.Info("server starting", "addr", addr, "db_driver", cfg.DBDriver)
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server start", "err", err)
			stop()
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown", "err", err)
	}
	logger.Info("server stopped")
}

func openStores(cfg *config.Config, logger *slog.Logger) (repository.UserRepository, repository.NoteRepository, error) {
	if cfg.DBDriver == config.DriverMemory {
		logger.Warn("using in-memory store, data is lost on restart")
		store := memory.New()
		return store.Users(), store.Notes(), nil
	}

	gormDB, err := db.Open(cfg.DBDriver, cfg.DSN())
	if err != nil {
		return nil, nil, err
	}
	if cfg.ResetDB {
		logger.Warn("RESET_DB=true detected, dropping all tables")
	}
	if err := db.Migrate(gormDB, cfg.ResetDB); err != nil {
		return nil, nil, err
	}
	return repository.NewUserRepository(gormDB), repository.NewNoteRepository(gormDB), nil
}
