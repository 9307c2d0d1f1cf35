// Package notify fans persisted telemetry out to live subscribers.
package notify

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/PratikDhanave/safedrive-service/internal/models"
)

const (
	SensorChannel   = "safedrive:sensor"
	AccidentChannel = "safedrive:accidents"
)

// RedisPublisher publishes each persisted record as JSON on a pub/sub channel.
type RedisPublisher struct {
	client *redis.Client
}

// NewRedisPublisher connects to Redis and fails fast when it is unreachable.
func NewRedisPublisher(ctx context.Context, addr, password string) (*RedisPublisher, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		PoolSize: 10,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return &RedisPublisher{client: client}, nil
}

func (r *RedisPublisher) Close() error {
	return r.client.Close()
}

func (r *RedisPublisher) PublishSensorReading(ctx context.Context, reading models.SensorReading) error {
	return r.publish(ctx, SensorChannel, reading)
}

func (r *RedisPublisher) PublishAccidentEvent(ctx context.Context, event models.AccidentEvent) error {
	return r.publish(ctx, AccidentChannel, event)
}

func (r *RedisPublisher) publish(ctx context.Context, channel string, v interface{}) error {
	payload, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to marshal %s message: %w", channel, err)
	}
	if err := r.client.Publish(ctx, channel, payload).Err(); err != nil {
		return fmt.Errorf("redis publish to %s failed: %w", channel, err)
	}
	return nil
}
