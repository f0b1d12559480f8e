package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"adpulse/internal/config"
	"adpulse/internal/models"

	"github.com/redis/go-redis/v9"
)

const statusKey = "adpulse:scheduler_status"

// NewRedisClient создает новый клиент Redis на основе конфигурации
func NewRedisClient(cfg config.RedisConfig) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     cfg.Address,
		Password: cfg.Password,
		DB:       cfg.DB,
		PoolSize: cfg.PoolSize,
	})
}

// RedisStatusRepository publishes scheduler status snapshots so the
// dashboard process can read them without touching the scheduler.
type RedisStatusRepository struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisStatusRepository(client *redis.Client, ttl time.Duration) *RedisStatusRepository {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &RedisStatusRepository{client: client, ttl: ttl}
}

func (r *RedisStatusRepository) SaveStatus(ctx context.Context, status models.SchedulerStatus) error {
	if r.client == nil {
		return fmt.Errorf("redis client is nil")
	}
	data, err := json.Marshal(status)
	if err != nil {
		return fmt.Errorf("failed to marshal status: %w", err)
	}
	if err := r.client.Set(ctx, statusKey, data, r.ttl).Err(); err != nil {
		return fmt.Errorf("failed to save status to redis: %w", err)
	}
	return nil
}

func (r *RedisStatusRepository) LoadStatus(ctx context.Context) (*models.SchedulerStatus, error) {
	if r.client == nil {
		return nil, fmt.Errorf("redis client is nil")
	}
	val, err := r.client.Get(ctx, statusKey).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load status from redis: %w", err)
	}

	var status models.SchedulerStatus
	if err := json.Unmarshal([]byte(val), &status); err != nil {
		return nil, fmt.Errorf("failed to unmarshal status: %w", err)
	}
	return &status, nil
}
