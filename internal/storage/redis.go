package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Redis stores each profile as a hash. Every read and write refreshes the
// hash TTL, so only abandoned profiles expire.
type Redis struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedis constructs a Redis backend. A zero ttl disables expiry.
func NewRedis(client *redis.Client, ttl time.Duration) *Redis {
	return &Redis{client: client, ttl: ttl}
}

// Profile implements Provider.
func (b *Redis) Profile(profileID string) Store {
	return &redisStore{backend: b, hash: "profile:" + profileID}
}

type redisStore struct {
	backend *Redis
	hash    string
}

func (s *redisStore) Get(ctx context.Context, key string) (string, bool, error) {
	if key == "" {
		return "", false, ErrEmptyKey
	}
	var get *redis.StringCmd
	_, err := s.backend.client.Pipelined(ctx, func(pipe redis.Pipeliner) error {
		get = pipe.HGet(ctx, s.hash, key)
		if s.backend.ttl > 0 {
			pipe.Expire(ctx, s.hash, s.backend.ttl)
		}
		return nil
	})
	if err != nil && !errors.Is(err, redis.Nil) {
		return "", false, fmt.Errorf("storage: redis get %s: %w", key, err)
	}
	value, err := get.Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("storage: redis get %s: %w", key, err)
	}
	return value, true, nil
}

func (s *redisStore) Set(ctx context.Context, key, value string) error {
	if key == "" {
		return ErrEmptyKey
	}
	_, err := s.backend.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSet(ctx, s.hash, key, value)
		if s.backend.ttl > 0 {
			pipe.Expire(ctx, s.hash, s.backend.ttl)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("storage: redis set %s: %w", key, err)
	}
	return nil
}

func (s *redisStore) Delete(ctx context.Context, key string) error {
	if key == "" {
		return ErrEmptyKey
	}
	if err := s.backend.client.HDel(ctx, s.hash, key).Err(); err != nil && !errors.Is(err, redis.Nil) {
		return fmt.Errorf("storage: redis delete %s: %w", key, err)
	}
	return nil
}
