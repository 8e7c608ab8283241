package events

import (
	"context"
	"encoding/json"
	"fmt"

	"cake-tracker/internal/config"

	"github.com/go-redis/redis/v8"
)

// RedisStreamPublisher appends events to a Redis stream (XADD).
type RedisStreamPublisher struct {
	client *redis.Client
	stream string
}

func NewRedisClient(cfg *config.RedisConfig) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
}

func NewRedisStreamPublisher(client *redis.Client, stream string) *RedisStreamPublisher {
	return &RedisStreamPublisher{client: client, stream: stream}
}

func (p *RedisStreamPublisher) Publish(ctx context.Context, e Event) error {
	data, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	_, err = p.client.XAdd(ctx, &redis.XAddArgs{
		Stream: p.stream,
		Values: map[string]interface{}{
			"type":        string(e.Type),
			"incident_id": e.Incident.ID,
			"data":        string(data),
			"timestamp":   e.OccurredAt.Unix(),
		},
	}).Result()
	if err != nil {
		return fmt.Errorf("failed to publish to stream %s: %w", p.stream, err)
	}
	return nil
}
