package ledger

import (
	"context"
	"errors"

	"github.com/redis/go-redis/v9"
)

// RedisStore backs the ledger with a single durable Redis key per viewer.
type RedisStore struct {
	client *redis.Client
}

func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func (s *RedisStore) Get(ctx context.Context, key string) (string, error) {
	value, err := s.client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return value, nil
}

func (s *RedisStore) Set(ctx context.Context, key, value string) error {
	// The ledger is permanent for the viewer, so no TTL.
	return s.client.Set(ctx, key, value, 0).Err()
}
