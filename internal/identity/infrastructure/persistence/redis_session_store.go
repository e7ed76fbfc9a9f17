package persistence

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// DefaultRedisNamespace prefixes every session key in Redis.
const DefaultRedisNamespace = "tasksync:session"

// RedisSessionStore implements domain.SessionStore in Redis.
// Keys are namespaced as {namespace}:{key}.
type RedisSessionStore struct {
	client    *redis.Client
	namespace string
}

func NewRedisSessionStore(client *redis.Client, namespace string) *RedisSessionStore {
	if namespace == "" {
		namespace = DefaultRedisNamespace
	}
	return &RedisSessionStore{client: client, namespace: namespace}
}

func (s *RedisSessionStore) key(k string) string {
	return s.namespace + ":" + k
}

func (s *RedisSessionStore) Get(ctx context.Context, key string) (string, bool, error) {
	val, err := s.client.Get(ctx, s.key(key)).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("read session value %s: %w", key, err)
	}
	return val, true, nil
}

func (s *RedisSessionStore) Set(ctx context.Context, key, value string) error {
	return s.client.Set(ctx, s.key(key), value, 0).Err()
}

func (s *RedisSessionStore) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	full := make([]string, len(keys))
	for i, k := range keys {
		full[i] = s.key(k)
	}
	return s.client.Del(ctx, full...).Err()
}
