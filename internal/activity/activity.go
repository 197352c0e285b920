// Package activity publishes check-in and check-out events to the queue and
// folds them into the recent-activity feed shown on the admin dashboard.
package activity

import (
	"context"
	"encoding/json"
	"strings"

	"go.uber.org/zap"

	"github.com/cruzverde/attendance/internal/attendance"
	"github.com/cruzverde/attendance/internal/queue"
)

const messagePrefix = "attendance."

// Publisher forwards session transitions to a queue.
type Publisher struct {
	queue  queue.Queue
	logger *zap.Logger
}

var _ attendance.Notifier = (*Publisher)(nil)

// NewPublisher creates a publisher on q.
func NewPublisher(q queue.Queue, logger *zap.Logger) *Publisher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Publisher{queue: q, logger: logger}
}

// Notify enqueues evt. Failures are logged and dropped.
func (p *Publisher) Notify(ctx context.Context, evt attendance.Event) {
	body, err := json.Marshal(evt)
	if err != nil {
		p.logger.Error("encode activity event", zap.Error(err))
		return
	}
	if err := p.queue.Publish(ctx, queue.Message{Type: messagePrefix + string(evt.Kind), Body: body}); err != nil {
		p.logger.Warn("publish activity event",
			zap.String("record_id", evt.RecordID),
			zap.Error(err),
		)
	}
}

// Decode extracts the attendance event carried by msg.
func Decode(msg queue.Message) (attendance.Event, bool, error) {
	if !strings.HasPrefix(msg.Type, messagePrefix) {
		return attendance.Event{}, false, nil
	}
	var evt attendance.Event
	if err := json.Unmarshal(msg.Body, &evt); err != nil {
		return attendance.Event{}, false, err
	}
	return evt, true, nil
}

// Consume moves events from q into feed until ctx ends.
func Consume(ctx context.Context, q queue.Queue, feed Feed, logger *zap.Logger) error {
	if logger == nil {
		logger = zap.NewNop()
	}
	msgs, err := q.Consume(ctx)
	if err != nil {
		return err
	}
	for msg := range msgs {
		evt, ok, err := Decode(msg)
		if err != nil {
			logger.Warn("skipping undecodable message", zap.String("type", msg.Type), zap.Error(err))
			continue
		}
		if !ok {
			logger.Debug("ignoring message", zap.String("type", msg.Type))
			continue
		}
		if err := feed.Push(ctx, evt); err != nil {
			logger.Error("push activity", zap.String("record_id", evt.RecordID), zap.Error(err))
			continue
		}
		logger.Debug("activity recorded",
			zap.String("kind", string(evt.Kind)),
			zap.String("user_id", evt.UserID),
		)
	}
	return ctx.Err()
}
