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

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"

	"github.com/cruzverde/attendance/internal/account"
	"github.com/cruzverde/attendance/internal/activity"
	"github.com/cruzverde/attendance/internal/app"
	"github.com/cruzverde/attendance/internal/attendance"
	"github.com/cruzverde/attendance/internal/auth"
	"github.com/cruzverde/attendance/internal/config"
	"github.com/cruzverde/attendance/internal/httpapi"
	"github.com/cruzverde/attendance/internal/logging"
	"github.com/cruzverde/attendance/internal/metrics"
	"github.com/cruzverde/attendance/internal/report"
)

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

	if cfg.Production() {
		gin.SetMode(gin.ReleaseMode)
	}

	if err := runHTTP(cfg, logger); err != nil {
		logger.Fatal("http server failed", zap.Error(err))
	}
}

func runHTTP(cfg config.App, logger *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	backends, err := app.Open(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := backends.Close(); err != nil {
			logger.Warn("closing backends", zap.Error(err))
		}
	}()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	collector := metrics.NewCollector(reg)

	loc := cfg.Location()
	tokens := auth.NewTokenManager(cfg.JWTSigningKey, cfg.JWTIssuer, cfg.TokenTTL)
	accounts := account.NewService(backends.Accounts, auth.NewBcryptHasher(cfg.BcryptCost), tokens, logger.Named("account"))
	sessions := attendance.NewService(backends.Ledger, logger.Named("attendance"),
		attendance.WithLocation(loc),
		attendance.WithNotifier(activity.NewPublisher(backends.Queue, logger.Named("activity"))),
		attendance.WithRecorder(collector),
	)
	reports := report.NewService(backends.Ledger, backends.Accounts, logger.Named("report"), report.WithLocation(loc))

	if backends.InProcessQueue() {
		go func() {
			if err := activity.Consume(ctx, backends.Queue, backends.Feed, logger.Named("activity")); err != nil && !errors.Is(err, context.Canceled) {
				logger.Error("activity consumer stopped", zap.Error(err))
			}
		}()
	}

	var checks []httpapi.HealthCheck
	if backends.DB != nil {
		checks = append(checks, httpapi.HealthCheck{Name: "db", Check: backends.DB.Healthy})
	}
	if backends.Redis != nil {
		checks = append(checks, httpapi.HealthCheck{Name: "redis", Check: backends.Redis.Healthy})
	}

	h := httpapi.NewHandler(httpapi.Config{
		Accounts:   accounts,
		Sessions:   sessions,
		Reports:    reports,
		Tokens:     tokens,
		Denylist:   backends.Denylist,
		Directory:  backends.Accounts,
		Feed:       backends.Feed,
		Health:     checks,
		Logger:     logger,
		Production: cfg.Production(),
	})
	r := httpapi.NewRouter(h, httpapi.RouterOptions{
		CORSOrigins:     cfg.CORSOrigins,
		RateLimitPerMin: cfg.RateLimitPerMin,
		RequestTimeout:  cfg.RequestTimeout,
		Logger:          logger,
		Metrics:         collector,
		Gatherer:        reg,
	})

	srv := &http.Server{
		Addr:         cfg.HTTPAddress(),
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("starting server",
			zap.String("addr", srv.Addr),
			zap.String("env", cfg.Env),
			zap.String("store", cfg.StoreBackend),
			zap.String("queue", cfg.QueueBackend),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}
	logger.Info("shutting down server")

	// Give outstanding requests 10 seconds to complete
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Warn("server forced shutdown", zap.Error(err))
	}

	logger.Info("server exited")
	return nil
}
