package kv

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// Redis keeps values as plain string keys under a prefix.
type Redis struct {
	rdb    *redis.Client
	prefix string
}

const redisPrefix = "weather-browser:"

// OpenRedis connects and pings the server at addr.
func OpenRedis(ctx context.Context, addr, pass string, db int) (*Redis, error) {
	if addr == "" {
		return nil, errors.New("kv: redis address is empty")
	}
	rdb := redis.NewClient(&redis.Options{Addr: addr, Password: pass, DB: db})
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping %s: %w", addr, err)
	}
	return &Redis{rdb: rdb, prefix: redisPrefix}, nil
}

func (r *Redis) Get(ctx context.Context, key string) ([]byte, error) {
	v, err := r.rdb.Get(ctx, r.prefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("kv get %s: %w", key, err)
	}
	return v, nil
}

func (r *Redis) Set(ctx context.Context, key string, value []byte) error {
	if err := r.rdb.Set(ctx, r.prefix+key, value, 0).Err(); err != nil {
		return fmt.Errorf("kv set %s: %w", key, err)
	}
	return nil
}

func (r *Redis) Remove(ctx context.Context, key string) error {
	if err := r.rdb.Del(ctx, r.prefix+key).Err(); err != nil {
		return fmt.Errorf("kv remove %s: %w", key, err)
	}
	return nil
}

func (r *Redis) Close() error { return r.rdb.Close() }
