package notify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	defaultRedisMaxRetries  = 3
	defaultRedisDialTimeout = 5 * time.Second
)

// RedisConfig configures a RedisNotifier.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	Channel  string
}

// RedisNotifier publishes each event as JSON on a pub/sub channel.
type RedisNotifier struct {
	client  redis.UniversalClient
	channel string

	closeOnce sync.Once
	closeErr  error
}

// NewRedisNotifier connects to the server and verifies it with a ping.
func NewRedisNotifier(ctx context.Context, cfg RedisConfig) (*RedisNotifier, error) {
	if cfg.Addr == "" {
		return nil, fmt.Errorf("redis addr is required")
	}
	if cfg.Channel == "" {
		return nil, fmt.Errorf("redis channel is required")
	}

	client := redis.NewClient(&redis.Options{
		Addr:        cfg.Addr,
		Password:    cfg.Password,
		DB:          cfg.DB,
		MaxRetries:  defaultRedisMaxRetries,
		DialTimeout: defaultRedisDialTimeout,
	})

	n := &RedisNotifier{client: client, channel: cfg.Channel}
	if err := n.pingWithRetry(ctx, defaultRedisMaxRetries); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}
	return n, nil
}

func (n *RedisNotifier) Notify(ctx context.Context, ev Event) error {
	data, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal alert %s: %w", ev.ID, err)
	}
	if err := n.client.Publish(ctx, n.channel, data).Err(); err != nil {
		return fmt.Errorf("publishing alert %s to redis: %w", ev.ID, err)
	}
	return nil
}

// Close releases the client. It is idempotent.
func (n *RedisNotifier) Close() error {
	n.closeOnce.Do(func() {
		n.closeErr = n.client.Close()
	})
	return n.closeErr
}

func (n *RedisNotifier) pingWithRetry(ctx context.Context, maxRetries int) error {
	attempts := maxRetries + 1
	backoff := 100 * time.Millisecond
	var lastErr error
	for i := 0; i < attempts; i++ {
		if err := n.client.Ping(ctx).Err(); err == nil {
			return nil
		} else {
			lastErr = err
		}

		if i == attempts-1 {
			break
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(backoff):
		}
		backoff *= 2
	}

	if lastErr == nil {
		lastErr = errors.New("ping failed with unknown error")
	}
	return lastErr
}
