// Package cache provides a Redis-backed coordinate cache.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/okian/pulse/internal/domain/model"
	"github.com/okian/pulse/internal/domain/orchestrator"
)

const defaultKeyPrefix = "pulse:coords:"

// RedisCache stores coordinates in one Redis hash per session, keyed by
// student id. Each orchestrator owns its own session so caches never mix.
type RedisCache struct {
	client  redis.UniversalClient
	prefix  string
	session string
	ttl     time.Duration
}

var _ orchestrator.CoordinateCache = (*RedisCache)(nil)

// NewRedis returns a cache on client with a fresh session id.
func NewRedis(client redis.UniversalClient, opts ...Option) *RedisCache {
	c := &RedisCache{
		client:  client,
		prefix:  defaultKeyPrefix,
		session: uuid.NewString(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Connect opens a client for addr/db and verifies it with PING.
func Connect(ctx context.Context, addr string, db int) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{Addr: addr, DB: db})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("%w: ping %s: %w", ErrBackend, addr, err)
	}
	return client, nil
}

// Key returns the Redis key of this session's hash.
func (c *RedisCache) Key() string { return c.prefix + c.session }

// Get implements orchestrator.CoordinateCache.
func (c *RedisCache) Get(ctx context.Context, studentID int64) (model.Coordinate, bool, error) {
	raw, err := c.client.HGet(ctx, c.Key(), field(studentID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return model.Coordinate{}, false, nil
	}
	if err != nil {
		return model.Coordinate{}, false, fmt.Errorf("%w: hget: %w", ErrBackend, err)
	}
	var coord model.Coordinate
	if err := json.Unmarshal(raw, &coord); err != nil {
		return model.Coordinate{}, false, fmt.Errorf("%w: student %d: %w", ErrDecode, studentID, err)
	}
	return coord, true, nil
}

// Put implements orchestrator.CoordinateCache.
func (c *RedisCache) Put(ctx context.Context, studentID int64, coord model.Coordinate) error {
	raw, err := json.Marshal(coord)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrDecode, err)
	}
	key := c.Key()
	_, err = c.client.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.HSet(ctx, key, field(studentID), raw)
		if c.ttl > 0 {
			p.Expire(ctx, key, c.ttl)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("%w: hset: %w", ErrBackend, err)
	}
	return nil
}

// Len implements orchestrator.CoordinateCache.
func (c *RedisCache) Len(ctx context.Context) (int, error) {
	n, err := c.client.HLen(ctx, c.Key()).Result()
	if err != nil {
		return 0, fmt.Errorf("%w: hlen: %w", ErrBackend, err)
	}
	return int(n), nil
}

// Clear drops every entry of the session.
func (c *RedisCache) Clear(ctx context.Context) error {
	if err := c.client.Del(ctx, c.Key()).Err(); err != nil {
		return fmt.Errorf("%w: del: %w", ErrBackend, err)
	}
	return nil
}

func field(studentID int64) string { return strconv.FormatInt(studentID, 10) }
