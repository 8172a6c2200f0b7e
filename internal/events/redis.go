package events

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/susp3kt93/myfleet-sub000/pkg/redis"
)

const DefaultChannelPrefix = "fleet:events:"

// RedisPublisher publishes events as JSON on a per-company pub/sub channel.
type RedisPublisher struct {
	client *redis.Client
	prefix string
}

func NewRedisPublisher(client *redis.Client, prefix string) *RedisPublisher {
	if prefix == "" {
		prefix = DefaultChannelPrefix
	}
	return &RedisPublisher{client: client, prefix: prefix}
}

func (p *RedisPublisher) Channel(companyID string) string {
	return p.prefix + companyID
}

func (p *RedisPublisher) Publish(ctx context.Context, event Event) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	rc := p.client.GetClient()
	if rc == nil {
		return fmt.Errorf("redis client not initialized")
	}
	if err := rc.Publish(ctx, p.Channel(event.CompanyID), data).Err(); err != nil {
		return fmt.Errorf("failed to publish event: %w", err)
	}
	return nil
}
