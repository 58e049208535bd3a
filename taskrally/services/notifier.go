package services

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

// Notification kinds published on the notification channel.
const (
	NotifySubmissionAccepted = "SUBMISSION_ACCEPTED"
	NotifySubmissionRefused  = "SUBMISSION_REFUSED"
	NotifyFeedPostDraft      = "FEED_POST_DRAFT"
)

const notificationChannel = "EVENT_NOTIFICATIONS"

// Notifier is the fire-and-forget notification sink. Delivery transport past
// the publish call is owned by a separate consumer service.
type Notifier interface {
	Notify(ctx context.Context, userID int64, kind string, payload map[string]any) error
}

// RedisNotifier publishes notification events to a redis pub/sub channel.
type RedisNotifier struct {
	rdb *redis.Client
}

func NewRedisNotifier(rdb *redis.Client) *RedisNotifier {
	return &RedisNotifier{rdb: rdb}
}

type notificationEvent struct {
	UserID    int64          `json:"user_id"`
	Kind      string         `json:"kind"`
	Payload   map[string]any `json:"payload,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
}

func (n *RedisNotifier) Notify(ctx context.Context, userID int64, kind string, payload map[string]any) error {
	event, err := json.Marshal(notificationEvent{
		UserID:    userID,
		Kind:      kind,
		Payload:   payload,
		CreatedAt: time.Now(),
	})
	if err != nil {
		return err
	}
	return n.rdb.Publish(ctx, notificationChannel, event).Err()
}

// NotifyBestEffort wraps a Notify call for the post-commit path: failures are
// logged and swallowed, never surfaced to the caller. The acceptance already
// committed and must not look failed because a side channel hiccuped.
func NotifyBestEffort(ctx context.Context, n Notifier, userID int64, kind string, payload map[string]any) {
	if n == nil {
		return
	}
	if err := n.Notify(ctx, userID, kind, payload); err != nil {
		slog.Error("Notification dispatch failed",
			slog.String("type", "notify"),
			slog.Int64("user_id", userID),
			slog.String("kind", kind),
			slog.Any("error", err))
	}
}
