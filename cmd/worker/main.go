package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/cruzverde/attendance/internal/activity"
	"github.com/cruzverde/attendance/internal/config"
	"github.com/cruzverde/attendance/internal/logging"
	"github.com/cruzverde/attendance/internal/queue"
	"github.com/cruzverde/attendance/internal/store"
)

// Worker consumes attendance events from the queue into the activity feed.
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

	if cfg.QueueBackend == "memory" {
		logger.Fatal("the in-memory queue is consumed by the api process; set QUEUE_BACKEND=redis to run a worker")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	redisClient := store.NewRedis(cfg.RedisAddr)
	defer redisClient.Close()
	if !redisClient.Healthy(ctx) {
		logger.Warn("redis not reachable yet; will keep retrying", zap.String("addr", cfg.RedisAddr))
	}

	q := queue.NewRedisQueue(redisClient.Client, queue.DefaultKey, logger)
	feed := activity.NewRedisFeed(redisClient.Client, "", cfg.ActivityFeed)

	logger.Info("worker started, waiting for messages")
	if err := activity.Consume(ctx, q, feed, logger.Named("activity")); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("worker stopped", zap.Error(err))
		return
	}
	logger.Info("worker stopped")
}
