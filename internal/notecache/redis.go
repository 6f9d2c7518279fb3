package notecache

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// RedisStore keeps entries as plain string keys without expiry.
type RedisStore struct {
	client *redis.Client
	prefix string
}

func NewRedisStore(client *redis.Client, prefix string) *RedisStore {
	return &RedisStore{
		client: client,
		prefix: prefix,
	}
}

// ConnectRedis dials addr and checks the connection before returning the store.
func ConnectRedis(ctx context.Context, options *redis.Options, prefix string) (*RedisStore, error) {
	client := redis.NewClient(options)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis at %s: %w", options.Addr, err)
	}
	return NewRedisStore(client, prefix), nil
}

func (store *RedisStore) key(key string) string {
	return store.prefix + key
}

func (store *RedisStore) Get(ctx context.Context, key string) (string, bool, error) {
	text, err := store.client.Get(ctx, store.key(key)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("redis GET %s: %w", store.key(key), err)
	}
	return text, true, nil
}

func (store *RedisStore) Put(ctx context.Context, key, text string) error {
	if err := store.client.Set(ctx, store.key(key), text, 0).Err(); err != nil {
		return fmt.Errorf("redis SET %s: %w", store.key(key), err)
	}
	return nil
}

func (store *RedisStore) Close() error {
	return store.client.Close()
}
