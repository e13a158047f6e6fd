package notify

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/go-redis/redis/v8"
)

// RedisSink публикует уведомления в Redis Pub/Sub: канал <prefix><channel>,
// тело — JSON Message. Внешние real-time шлюзы подписываются на эти каналы.
type RedisSink struct {
	client *redis.Client
	prefix string
}

func NewRedisSink(client *redis.Client, prefix string) *RedisSink {
	return &RedisSink{client: client, prefix: prefix}
}

func (s *RedisSink) Publish(ctx context.Context, msg Message) error {
	body, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("notify: marshal message: %w", err)
	}
	if err := s.client.Publish(ctx, s.prefix+msg.Channel, body).Err(); err != nil {
		return fmt.Errorf("notify: redis publish %s: %w", msg.Channel, err)
	}
	return nil
}
