package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

const redisKeyPrefix = "session:"

// redisBackend keeps session documents in Redis under "session:{id}".
// A zero TTL means sessions never expire.
type redisBackend struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisBackend creates a Backend over an existing Redis client.
func NewRedisBackend(client *redis.Client, ttl time.Duration) Backend {
	return &redisBackend{client: client, ttl: ttl}
}

func (b *redisBackend) List(ctx context.Context) ([]string, error) {
	var ids []string
	iter := b.client.Scan(ctx, 0, redisKeyPrefix+"*", 0).Iterator()
	for iter.Next(ctx) {
		ids = append(ids, strings.TrimPrefix(iter.Val(), redisKeyPrefix))
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLoadFailed, err)
	}
	return ids, nil
}

func (b *redisBackend) Load(ctx context.Context, id string) ([]byte, error) {
	data, err := b.client.Get(ctx, redisKeyPrefix+id).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
		}
		return nil, fmt.Errorf("%w: %s: %v", ErrLoadFailed, id, err)
	}
	return data, nil
}

func (b *redisBackend) Save(ctx context.Context, id string, data []byte) error {
	if err := b.client.Set(ctx, redisKeyPrefix+id, data, b.ttl).Err(); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrSaveFailed, id, err)
	}
	return nil
}

func (b *redisBackend) Delete(ctx context.Context, id string) error {
	n, err := b.client.Del(ctx, redisKeyPrefix+id).Result()
	if err != nil {
		return fmt.Errorf("delete failed: %s: %w", id, err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return nil
}

func (b *redisBackend) Close() error {
	return b.client.Close()
}
