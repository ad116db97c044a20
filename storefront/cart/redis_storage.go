package cart

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisStorage persists the cart as a single JSON blob under one key, so a
// save replaces the whole cart atomically. A zero TTL keeps the key forever.
type RedisStorage struct {
	client *redis.Client
	key    string
	ttl    time.Duration
}

func NewRedisStorage(client *redis.Client, key string, ttl time.Duration) *RedisStorage {
	return &RedisStorage{
		client: client,
		key:    key,
		ttl:    ttl,
	}
}

func (r *RedisStorage) Load(ctx context.Context) ([]byte, error) {
	data, err := r.client.Get(ctx, r.key).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return data, nil
}

func (r *RedisStorage) Save(ctx context.Context, data []byte) error {
	return r.client.Set(ctx, r.key, data, r.ttl).Err()
}

func (r *RedisStorage) Delete(ctx context.Context) error {
	return r.client.Del(ctx, r.key).Err()
}
