package service

import (
	"context"
	"fmt"
	"log/slog"

	"notekeeper/internal/auth"
	"notekeeper/internal/model"
	"notekeeper/internal/repository"
)

// SeedAccount describes an account created at startup.
type SeedAccount struct {
	Username string
	Password string
	Role     string
}

// DefaultAccounts are the fixed accounts every deployment starts with.
var DefaultAccounts = []SeedAccount{
	{Username: "demo", Password: "demo", Role: model.RoleUser},
	{Username: "admin", Password: "admin", Role: model.RoleAdmin},
}

// Bootstrap creates every account whose username is not yet taken. Running
// it again creates nothing.
func Bootstrap(ctx context.Context, users repository.UserRepository, accounts []SeedAccount, logger *slog.Logger) (created, existing int, err error) {
	if logger == nil {
		logger = slog.Default()
	}

	for _, acc := range accounts {
		exists, err := users.ExistsByUsername(ctx, acc.Username)
		if err != nil {
			return created, existing, fmt.Errorf("check user %s: %w", acc.Username, err)
		}
		if exists {
			logger.InfoContext(ctx, "user already exists", "username", acc.Username)
			existing++
			continue
		}

		hash, err := auth.HashPassword(acc.Password)
		if err != nil {
			return created, existing, fmt.Errorf("hash password for %s: %w", acc.Username, err)
		}

		user := &model.User{
			Username:     acc.Username,
			PasswordHash: hash,
			Role:         acc.Role,
			Enabled:      true,
		}
		if err := users.Create(ctx, user); err != nil {
			return created, existing, fmt.Errorf("create user %s: %w", acc.Username, err)
		}
		logger.InfoContext(ctx, "user created", "username", acc.Username, "role", acc.Role)
		created++
	}

	return created, existing, nil
}
