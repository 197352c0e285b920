package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/cruzverde/attendance/internal/account"
	"github.com/cruzverde/attendance/internal/app"
	"github.com/cruzverde/attendance/internal/auth"
	"github.com/cruzverde/attendance/internal/config"
	"github.com/cruzverde/attendance/internal/logging"
)

// Seed creates the initial administrator unless its email is already taken.
func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}
	logger, err := logging.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	if cfg.StoreBackend == "memory" {
		logger.Fatal("seeding the in-memory store has no effect; set STORE_BACKEND=postgres")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	backends, err := app.Open(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("open backends", zap.Error(err))
	}
	defer backends.Close()

	tokens := auth.NewTokenManager(cfg.JWTSigningKey, cfg.JWTIssuer, cfg.TokenTTL)
	svc := account.NewService(backends.Accounts, auth.NewBcryptHasher(cfg.BcryptCost), tokens, logger)

	acc, created, err := svc.EnsureAdmin(ctx, account.Registration{
		Name:     cfg.SeedAdminName,
		Email:    cfg.SeedAdminEmail,
		Password: cfg.SeedAdminPassword,
	})
	if err != nil {
		logger.Fatal("seed admin", zap.Error(err))
	}
	if !created {
		logger.Info("admin already exists", zap.String("email", acc.Email), zap.String("role", string(acc.Role)))
		return
	}
	logger.Info("admin created", zap.String("email", acc.Email), zap.String("id", acc.ID))
}
