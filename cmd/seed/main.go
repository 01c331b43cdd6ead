package main

import (
	"context"
	"log/slog"
	"os"

	"notekeeper/internal/config"
	"notekeeper/internal/db"
	"notekeeper/internal/logging"
	"notekeeper/internal/repository"
	"notekeeper/internal/service"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("config", "err", err)
		os.Exit(1)
	}
	logger := logging.New(os.Stdout, cfg.LogLevel, cfg.LogFormat)

	if cfg.DBDriver == config.DriverMemory {
		logger.Error("seed needs a persistent database, DB_DRIVER=memory has nothing to seed")
		os.Exit(1)
	}

	logger.Info("starting seed", "db_driver", cfg.DBDriver)

	gormDB, err := db.Open(cfg.DBDriver, cfg.DSN())
	if err != nil {
		logger.Error("failed to connect to database", "err", err)
		os.Exit(1)
	}

	// Run migrations to ensure schema is up to date
	if err := db.Migrate(gormDB, cfg.ResetDB); err != nil {
		logger.Error("failed to run migrations", "err", err)
		os.Exit(1)
	}

	users := repository.NewUserRepository(gormDB)
	created, existing, err := service.Bootstrap(context.Background(), users, service.DefaultAccounts, logger)
	if err != nil {
		logger.Error("failed to seed accounts", "err", err)
		os.Exit(1)
	}

	logger.Info("seed completed",
		"created", created,
		"existing", existing,
		"total", created+existing,
	)
}
