package ratelimit

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisStore implements Store and SlidingWindowStore on Redis, allowing
// rate limit state to be shared across processes. Fixed-window buckets
// use plain counters with a TTL; sliding windows use a sorted set keyed
// by timestamp.
type RedisStore struct {
	client    redis.UniversalClient
	keyPrefix string
}

// RedisStoreOption configures a RedisStore.
type RedisStoreOption func(*RedisStore)

// WithKeyPrefix sets the prefix prepended to all Redis keys.
// Default is "ratelimit:".
func WithKeyPrefix(prefix string) RedisStoreOption {
	return func(s *RedisStore) {
		if prefix != "" {
			s.keyPrefix = prefix
		}
	}
}

// NewRedisStore creates a Redis-backed rate limit store.
func NewRedisStore(client redis.UniversalClient, opts ...RedisStoreOption) (*RedisStore, error) {
	if client == nil {
		return nil, ErrStoreRequired
	}

	s := &RedisStore{
		client:    client,
		keyPrefix: "ratelimit:",
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

func (s *RedisStore) key(key string) string {
	return s.keyPrefix + key
}

// incrScript increments a counter and sets the window TTL on first use,
// returning the new count and the remaining TTL in milliseconds.
var incrScript = redis.NewScript(`
local count = redis.call("INCRBY", KEYS[1], ARGV[1])
if count == tonumber(ARGV[1]) then
	redis.call("PEXPIRE", KEYS[1], ARGV[2])
end
local ttl = redis.call("PTTL", KEYS[1])
return {count, ttl}
`)

// IncrementAndGet atomically increments the fixed-window counter.
func (s *RedisStore) IncrementAndGet(ctx context.Context, key string, incr int, window time.Duration) (int64, time.Duration, error) {
	res, err := incrScript.Run(ctx, s.client, []string{s.key(key)},
		incr, window.Milliseconds()).Slice()
	if err != nil {
		return 0, 0, fmt.Errorf("ratelimit: redis increment failed: %w", err)
	}

	count, ttlMs, err := parsePair(res)
	if err != nil {
		return 0, 0, err
	}
	return count, time.Duration(ttlMs) * time.Millisecond, nil
}

// Get returns the current counter value and TTL for the key.
func (s *RedisStore) Get(ctx context.Context, key string) (int64, time.Duration, error) {
	pipe := s.client.Pipeline()
	getCmd := pipe.Get(ctx, s.key(key))
	ttlCmd := pipe.PTTL(ctx, s.key(key))
	if _, err := pipe.Exec(ctx); err != nil && err != redis.Nil {
		return 0, 0, fmt.Errorf("ratelimit: redis get failed: %w", err)
	}

	count, err := getCmd.Int64()
	if err == redis.Nil {
		return 0, 0, nil
	}
	if err != nil {
		return 0, 0, fmt.Errorf("ratelimit: redis get failed: %w", err)
	}

	ttl := ttlCmd.Val()
	if ttl < 0 {
		ttl = 0
	}
	return count, ttl, nil
}

// Delete removes the key from the store.
func (s *RedisStore) Delete(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, s.key(key)).Err(); err != nil {
		return fmt.Errorf("ratelimit: redis delete failed: %w", err)
	}
	return nil
}

// slidingScript prunes expired members, checks the limit, and records n
// new members when allowed. Member uniqueness comes from a sequence
// suffix so simultaneous timestamps do not collide.
var slidingScript = redis.NewScript(`
redis.call("ZREMRANGEBYSCORE", KEYS[1], "-inf", ARGV[1])
local count = redis.call("ZCARD", KEYS[1])
local limit = tonumber(ARGV[3])
local n = tonumber(ARGV[4])
if count + n > limit then
	return {0, count}
end
for i = 1, n do
	redis.call("ZADD", KEYS[1], ARGV[2], ARGV[2] .. "-" .. redis.call("INCR", KEYS[1] .. ":seq"))
end
redis.call("PEXPIRE", KEYS[1], ARGV[5])
redis.call("PEXPIRE", KEYS[1] .. ":seq", ARGV[5])
return {1, count + n}
`)

// RecordIfAllowed atomically checks the sliding window and records the
// timestamps when the limit permits.
func (s *RedisStore) RecordIfAllowed(ctx context.Context, key string, timestamp time.Time, window time.Duration, limit, n int) (bool, int64, error) {
	nowMs := timestamp.UnixMilli()
	cutoffMs := timestamp.Add(-window).UnixMilli()

	res, err := slidingScript.Run(ctx, s.client, []string{s.key(key)},
		cutoffMs, nowMs, limit, n, window.Milliseconds()).Slice()
	if err != nil {
		return false, 0, fmt.Errorf("ratelimit: redis sliding window failed: %w", err)
	}

	allowed, count, err := parsePair(res)
	if err != nil {
		return false, 0, err
	}
	return allowed == 1, count, nil
}

// CountInWindow returns the number of live timestamps in the window.
func (s *RedisStore) CountInWindow(ctx context.Context, key string, window time.Duration) (int64, error) {
	cutoffMs := time.Now().Add(-window).UnixMilli()

	pipe := s.client.Pipeline()
	pipe.ZRemRangeByScore(ctx, s.key(key), "-inf", strconv.FormatInt(cutoffMs, 10))
	cardCmd := pipe.ZCard(ctx, s.key(key))
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, fmt.Errorf("ratelimit: redis count failed: %w", err)
	}

	return cardCmd.Val(), nil
}

// parsePair extracts two int64 values from a Lua script reply.
func parsePair(res []any) (int64, int64, error) {
	if len(res) != 2 {
		return 0, 0, fmt.Errorf("ratelimit: unexpected redis reply of length %d", len(res))
	}
	first, ok1 := res[0].(int64)
	second, ok2 := res[1].(int64)
	if !ok1 || !ok2 {
		return 0, 0, fmt.Errorf("ratelimit: unexpected redis reply types %T, %T", res[0], res[1])
	}
	return first, second, nil
}
