package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"coursegen-backend/internal/models"
)

// Notifier delivers status messages to a user's websocket sessions.
type Notifier interface {
	Publish(ctx context.Context, userID uuid.UUID, msg models.WSMessage)
}

// RedisNotifier publishes on user_updates:{userID}, where the websocket hub
// is subscribed.
type RedisNotifier struct {
	client *redis.Client
	logger *slog.Logger
}

func NewRedisNotifier(client *redis.Client, logger *slog.Logger) *RedisNotifier {
	return &RedisNotifier{client: client, logger: logger}
}

func UserChannel(userID uuid.UUID) string {
	return fmt.Sprintf("user_updates:%s", userID.String())
}

func (n *RedisNotifier) Publish(ctx context.Context, userID uuid.UUID, msg models.WSMessage) {
	data, err := json.Marshal(msg)
	if err != nil {
		n.logger.Error("failed to encode status message", "type", msg.Type, "error", err)
		return
	}
	if err := n.client.Publish(ctx, UserChannel(userID), data).Err(); err != nil {
		n.logger.Warn("failed to publish status message", "type", msg.Type, "user_id", userID, "error", err)
	}
}

// NopNotifier drops every message. Used when Redis is not configured.
type NopNotifier struct{}

func (NopNotifier) Publish(context.Context, uuid.UUID, models.WSMessage) {}
