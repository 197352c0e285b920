package activity

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/redis/go-redis/v9"

	"github.com/cruzverde/attendance/internal/attendance"
)

// Feed keeps the most recent events, newest first.
type Feed interface {
	Push(ctx context.Context, evt attendance.Event) error
	Recent(ctx context.Context, limit int) ([]attendance.Event, error)
}

// RedisFeed stores the feed as a capped Redis list.
type RedisFeed struct {
	client *redis.Client
	key    string
	size   int
}

// NewRedisFeed keeps at most size events under key.
func NewRedisFeed(client *redis.Client, key string, size int) *RedisFeed {
	if key == "" {
		key = "attendance:activity"
	}
	if size <= 0 {
		size = 50
	}
	return &RedisFeed{client: client, key: key, size: size}
}

func (f *RedisFeed) Push(ctx context.Context, evt attendance.Event) error {
	payload, err := json.Marshal(evt)
	if err != nil {
		return err
	}
	pipe := f.client.TxPipeline()
	pipe.LPush(ctx, f.key, payload)
	pipe.LTrim(ctx, f.key, 0, int64(f.size-1))
	_, err = pipe.Exec(ctx)
	return err
}

func (f *RedisFeed) Recent(ctx context.Context, limit int) ([]attendance.Event, error) {
	if limit <= 0 || limit > f.size {
		limit = f.size
	}
	raw, err := f.client.LRange(ctx, f.key, 0, int64(limit-1)).Result()
	if err != nil {
		return nil, err
	}
	events := make([]attendance.Event, 0, len(raw))
	for _, item := range raw {
		var evt attendance.Event
		if err := json.Unmarshal([]byte(item), &evt); err != nil {
			continue
		}
		events = append(events, evt)
	}
	return events, nil
}

// MemoryFeed is the in-process feed for dev and tests.
type MemoryFeed struct {
	mu     sync.RWMutex
	events []attendance.Event
	size   int
}

// NewMemoryFeed keeps at most size events.
func NewMemoryFeed(size int) *MemoryFeed {
	if size <= 0 {
		size = 50
	}
	return &MemoryFeed{size: size}
}

func (f *MemoryFeed) Push(_ context.Context, evt attendance.Event) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append([]attendance.Event{evt}, f.events...)
	if len(f.events) > f.size {
		f.events = f.events[:f.size]
	}
	return nil
}

func (f *MemoryFeed) Recent(_ context.Context, limit int) ([]attendance.Event, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	if limit <= 0 || limit > len(f.events) {
		limit = len(f.events)
	}
	out := make([]attendance.Event, limit)
	copy(out, f.events[:limit])
	return out, nil
}
