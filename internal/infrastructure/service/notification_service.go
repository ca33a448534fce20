package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	eredis "github.com/sledzspecke/smk-progress-hub/internal/infrastructure/persistence/redis"
)

// ══════════════════════════════════════════════════════════════════════════════
// NOTIFICATION SENDER
// ══════════════════════════════════════════════════════════════════════════════

// notificationTrailTTL bounds how long a user's recent notifications stay
// readable; the trail is a convenience view, not an archive.
const (
	notificationTrailTTL = 7 * 24 * time.Hour
	notificationTrailMax = 50
)

// Notification is one delivered message, kept in the per-user trail.
type Notification struct {
	UserID string    `json:"user_id"`
	Title  string    `json:"title"`
	Body   string    `json:"body"`
	SentAt time.Time `json:"sent_at"`
}

// NotificationService delivers user-facing notifications. Delivery is a log
// line plus an entry in the user's Redis trail; a push channel can be layered
// on later without touching the event handlers.
type NotificationService struct {
	cache  *eredis.Cache
	logger *slog.Logger
}

// NewNotificationService creates a notification service. The cache may be nil,
// in which case only logging delivery happens.
func NewNotificationService(cache *eredis.Cache, logger *slog.Logger) *NotificationService {
	if logger == nil {
		logger = slog.Default()
	}
	return &NotificationService{
		cache:  cache,
		logger: logger.With("component", "notifications"),
	}
}

// Send implements eventhandler.NotificationSender.
func (s *NotificationService) Send(ctx context.Context, userID, title, body string) error {
	s.logger.Info("notification sent", "user_id", userID, "title", title)

	if s.cache == nil {
		return nil
	}

	notif := Notification{
		UserID: userID,
		Title:  title,
		Body:   body,
		SentAt: time.Now(),
	}

	data, err := json.Marshal(notif)
	if err != nil {
		return fmt.Errorf("failed to encode notification: %w", err)
	}

	key := trailKey(userID)
	pipe := s.cache.Client().TxPipeline()
	pipe.LPush(ctx, key, data)
	pipe.LTrim(ctx, key, 0, notificationTrailMax-1)
	pipe.Expire(ctx, key, notificationTrailTTL)
	if _, err := pipe.Exec(ctx); err != nil {
		// A dead trail must not block the notification itself.
		s.logger.Warn("notification trail write failed", "user_id", userID, "error", err)
	}

	return nil
}

// Recent returns the newest notifications for a user, up to limit.
func (s *NotificationService) Recent(ctx context.Context, userID string, limit int) ([]Notification, error) {
	if s.cache == nil {
		return nil, nil
	}
	if limit <= 0 || limit > notificationTrailMax {
		limit = notificationTrailMax
	}

	raw, err := s.cache.Client().LRange(ctx, trailKey(userID), 0, int64(limit-1)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read notification trail: %w", err)
	}

	out := make([]Notification, 0, len(raw))
	for _, item := range raw {
		var notif Notification
		if err := json.Unmarshal([]byte(item), &notif); err != nil {
			s.logger.Warn("skipping corrupt trail entry", "user_id", userID, "error", err)
			continue
		}
		out = append(out, notif)
	}
	return out, nil
}

func trailKey(userID string) string {
	return "notifications:" + userID
}
