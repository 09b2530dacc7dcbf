package main

import (
	"fmt"
	"log/slog"

	"github.com/cuddly-waffle/account-api/internal/config"
	"github.com/cuddly-waffle/account-api/internal/platform/logger"
)

// loadAppConfig loads and validates configuration. A missing signing secret
// or pepper fails here, before anything is started.
func loadAppConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	return cfg, nil
}

// setupAppLogger installs the JSON logger at the configured level.
func setupAppLogger(cfg *config.Config) (*slog.Logger, error) {
	l, err := logger.Setup(cfg.Server)
	if err != nil {
		return nil, fmt.Errorf("failed to set up logger: %w", err)
	}

	l.Info("server configuration loaded",
		"port", cfg.Server.Port,
		"log_level", cfg.Server.LogLevel,
		"token_lifetime_minutes", cfg.Auth.TokenLifetimeMinutes,
		"login_per_minute", cfg.RateLimit.LoginPerMinute,
		"redis_rate_limit", cfg.RateLimit.RedisURL != "")
	return l, nil
}
