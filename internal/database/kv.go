package database

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrKeyMissing is returned by KV.Get when a key does not exist or has expired.
var ErrKeyMissing = errors.New("key missing")

// KV is the minimal key-value contract the services need from Redis:
// short-lived pending registrations, login session mirrors and the
// presented-question cache are all plain string values with a TTL.
type KV interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	Del(ctx context.Context, keys ...string) error
}

// RedisKV adapts a redis.Client to the KV interface.
type RedisKV struct {
	rdb *redis.Client
}

// NewRedisKV creates a RedisKV backed by the given client.
func NewRedisKV(rdb *redis.Client) *RedisKV {
	return &RedisKV{rdb: rdb}
}

func (kv *RedisKV) Get(ctx context.Context, key string) (string, error) {
	val, err := kv.rdb.Get(ctx, key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", ErrKeyMissing
		}
		return "", err
	}
	return val, nil
}

func (kv *RedisKV) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	return kv.rdb.Set(ctx, key, value, ttl).Err()
}

func (kv *RedisKV) Del(ctx context.Context, keys ...string) error {
	return kv.rdb.Del(ctx, keys...).Err()
}
