package otp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const redisKeyPrefix = "otp:v1:"

// RedisStore keeps entries as JSON values that expire after ttl. Expiry
// checks still happen on read; the TTL only reclaims memory.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisStore builds a Redis-backed Store.
func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{client: client, ttl: ttl}
}

func (s *RedisStore) Put(ctx context.Context, phone string, entry Entry) error {
	payload, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("encode otp entry: %w", err)
	}
	if err := s.client.Set(ctx, redisKeyPrefix+phone, payload, s.ttl).Err(); err != nil {
		return fmt.Errorf("store otp entry: %w", err)
	}
	return nil
}

func (s *RedisStore) Get(ctx context.Context, phone string) (Entry, bool, error) {
	raw, err := s.client.Get(ctx, redisKeyPrefix+phone).Bytes()
	if errors.Is(err, redis.Nil) {
		return Entry{}, false, nil
	}
	if err != nil {
		return Entry{}, false, fmt.Errorf("load otp entry: %w", err)
	}
	var entry Entry
	if err := json.Unmarshal(raw, &entry); err != nil {
		return Entry{}, false, fmt.Errorf("decode otp entry: %w", err)
	}
	return entry, true, nil
}
