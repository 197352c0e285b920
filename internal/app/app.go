// Package app wires configuration into the storage backends shared by the
// api, worker and seed commands.
package app

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/cruzverde/attendance/internal/account"
	"github.com/cruzverde/attendance/internal/activity"
	"github.com/cruzverde/attendance/internal/attendance"
	"github.com/cruzverde/attendance/internal/auth"
	"github.com/cruzverde/attendance/internal/config"
	"github.com/cruzverde/attendance/internal/queue"
	"github.com/cruzverde/attendance/internal/store"
)

const memoryQueueSize = 256

// Backends are the opened stores for one process.
type Backends struct {
	DB       *store.DB
	Redis    *store.Redis
	Accounts account.Repository
	Ledger   attendance.Repository
	Queue    queue.Queue
	Feed     activity.Feed
	Denylist auth.Denylist
}

// Open connects the backends selected by cfg. The postgres backend is
// migrated before use.
func Open(ctx context.Context, cfg config.App, logger *zap.Logger) (*Backends, error) {
	b := &Backends{}

	switch cfg.StoreBackend {
	case "memory":
		logger.Warn("using in-memory store; data is lost on restart")
		b.Accounts = account.NewMemoryRepository()
		b.Ledger = attendance.NewMemoryRepository()
	default:
		db, err := store.NewDB(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		if err := store.Migrate(db.Client, logger); err != nil {
			_ = db.Close()
			return nil, err
		}
		b.DB = db
		b.Accounts = account.NewPostgresRepository(db.Client)
		b.Ledger = attendance.NewPostgresRepository(db.Client)
	}

	switch cfg.QueueBackend {
	case "memory":
		b.Queue = queue.NewInMemory(memoryQueueSize)
		b.Feed = activity.NewMemoryFeed(cfg.ActivityFeed)
		b.Denylist = auth.NewMemoryDenylist()
	default:
		b.Redis = store.NewRedis(cfg.RedisAddr)
		if !b.Redis.Healthy(ctx) {
			logger.Warn("redis not reachable at startup", zap.String("addr", cfg.RedisAddr))
		}
		b.Queue = queue.NewRedisQueue(b.Redis.Client, queue.DefaultKey, logger)
		b.Feed = activity.NewRedisFeed(b.Redis.Client, "", cfg.ActivityFeed)
		b.Denylist = auth.NewRedisDenylist(b.Redis.Client)
	}
	return b, nil
}

// InProcessQueue reports whether queued events must be consumed by this
// process because no separate worker can reach them.
func (b *Backends) InProcessQueue() bool {
	_, ok := b.Queue.(*queue.InMemory)
	return ok
}

// Close releases every open connection.
func (b *Backends) Close() error {
	var firstErr error
	if err := b.DB.Close(); err != nil {
		firstErr = fmt.Errorf("close postgres: %w", err)
	}
	if err := b.Redis.Close(); err != nil && firstErr == nil {
		firstErr = fmt.Errorf("close redis: %w", err)
	}
	return firstErr
}
