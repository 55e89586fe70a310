package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"seatmap-scraper/models"
	"seatmap-scraper/utils"

	"github.com/redis/go-redis/v9"
)

// RedisWriter keeps the latest result and summary of each event in Redis
type RedisWriter struct {
	client *redis.Client
	ttl    time.Duration
	logger *utils.Logger
}

// NewRedisWriter connects to addr and pings it with a short timeout
func NewRedisWriter(ctx context.Context, addr string, ttl time.Duration, logger *utils.Logger) (*RedisWriter, error) {
	client := redis.NewClient(&redis.Options{Addr: addr})

	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to ping redis at %s: %w", addr, err)
	}

	logger.Info("Connected to Redis at %s", addr)
	return newRedisWriter(client, ttl, logger), nil
}

func newRedisWriter(client *redis.Client, ttl time.Duration, logger *utils.Logger) *RedisWriter {
	return &RedisWriter{client: client, ttl: ttl, logger: logger}
}

func (w *RedisWriter) Name() string { return "redis" }

// LatestKey is the key holding the most recent full result of an event
func LatestKey(event string) string { return "seatmap:" + event + ":latest" }

// SummaryKey is the key holding the most recent summary of an event
func SummaryKey(event string) string { return "seatmap:" + event + ":summary" }

// Save overwrites the event's latest result and summary atomically
func (w *RedisWriter) Save(ctx context.Context, run *models.Run) error {
	if run.Result == nil {
		return fmt.Errorf("run %s has no result", run.ID)
	}
	result, err := json.Marshal(run.Result)
	if err != nil {
		return fmt.Errorf("failed to encode result: %w", err)
	}
	summary, err := json.Marshal(run.Result.Summary)
	if err != nil {
		return fmt.Errorf("failed to encode summary: %w", err)
	}

	event := run.EventKey()
	_, err = w.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, LatestKey(event), result, w.ttl)
		pipe.Set(ctx, SummaryKey(event), summary, w.ttl)
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to store result in redis: %w", err)
	}

	w.logger.Info("Latest result for event %s stored in Redis", event)
	return nil
}

func (w *RedisWriter) Close() error {
	return w.client.Close()
}
