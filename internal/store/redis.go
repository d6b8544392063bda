package store

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

const knownShowsKey = "shows:known"

// RedisStore backs the cache and the known-shows registry with a single
// Redis database. Raw payloads are stored as plain string values with a TTL;
// the registry is a Redis set.
type RedisStore struct {
	client *redis.Client
	log    *slog.Logger
}

// NewRedisStore connects to Redis and verifies the connection before
// returning. The caller owns the lifecycle and must Close on shutdown.
func NewRedisStore(ctx context.Context, addr, password string, db int) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping %s: %w", addr, err)
	}
	return &RedisStore{
		client: client,
		log:    slog.Default().With("component", "store"),
	}, nil
}

func (s *RedisStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	val, err := s.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis get %s: %w", key, err)
	}
	return val, true, nil
}

func (s *RedisStore) Set(ctx context.Context, key string, payload []byte, ttl time.Duration) error {
	if err := s.client.Set(ctx, key, payload, ttl).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", key, err)
	}
	return nil
}

func (s *RedisStore) AddKnownShow(ctx context.Context, key string) error {
	if key == "" {
		return errors.New("empty show key")
	}
	if err := s.client.SAdd(ctx, knownShowsKey, key).Err(); err != nil {
		return fmt.Errorf("redis sadd %s: %w", key, err)
	}
	return nil
}

func (s *RedisStore) KnownShowKeys(ctx context.Context) ([]string, error) {
	keys, err := s.client.SMembers(ctx, knownShowsKey).Result()
	if err != nil {
		return nil, fmt.Errorf("redis smembers: %w", err)
	}
	return keys, nil
}

func (s *RedisStore) Close() error {
	s.log.Info("closing redis store")
	return s.client.Close()
}
