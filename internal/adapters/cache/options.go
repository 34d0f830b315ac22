package cache

import "time"

// Option applies a configuration option to the RedisCache.
type Option func(*RedisCache)

// WithTTL expires the whole session hash ttl after its last write.
// Zero keeps entries until Clear.
func WithTTL(ttl time.Duration) Option {
	return func(c *RedisCache) {
		if ttl >= 0 {
			c.ttl = ttl
		}
	}
}

// WithSession pins the session id instead of generating one. Two caches
// with the same session share entries.
func WithSession(id string) Option {
	return func(c *RedisCache) {
		if id != "" {
			c.session = id
		}
	}
}

// WithKeyPrefix sets the prefix of the session hash key.
func WithKeyPrefix(prefix string) Option {
	return func(c *RedisCache) {
		if prefix != "" {
			c.prefix = prefix
		}
	}
}
