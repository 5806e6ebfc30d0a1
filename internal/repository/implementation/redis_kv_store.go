package implementation

import (
	"context"
	"errors"
	"fmt"

	"whisper-client/internal/repository/contract"

	"github.com/redis/go-redis/v9"
)

const redisKeyPrefix = "whisper:"

type RedisKeyValueStore struct {
	rdb *redis.Client
}

func NewRedisKeyValueStore(ctx context.Context, redisURL string) (contract.KeyValueStore, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("invalid redis url: %w", err)
	}
	rdb := redis.NewClient(opt)
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	return &RedisKeyValueStore{rdb: rdb}, nil
}

func (s *RedisKeyValueStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	val, err := s.rdb.Get(ctx, redisKeyPrefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return val, true, nil
}

func (s *RedisKeyValueStore) Set(ctx context.Context, key string, value []byte) error {
	return s.rdb.Set(ctx, redisKeyPrefix+key, value, 0).Err()
}

func (s *RedisKeyValueStore) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	prefixed := make([]string, len(keys))
	for i, k := range keys {
		prefixed[i] = redisKeyPrefix + k
	}
	return s.rdb.Del(ctx, prefixed...).Err()
}

func (s *RedisKeyValueStore) Close() error {
	return s.rdb.Close()
}
