package repository

import "time"

// MemoryOption applies a configuration option to the MemoryStore.
type MemoryOption func(*MemoryStore)

// ThrottleFunc picks which items of a batch a MemoryStore reports as
// unprocessed. It must return a subset of items.
type ThrottleFunc func(partition string, items []Item) []Item

// WithThrottle makes the store reject the items fn returns, simulating
// provisioned-throughput pressure.
func WithThrottle(fn ThrottleFunc) MemoryOption {
	return func(s *MemoryStore) {
		if fn != nil {
			s.throttle = fn
		}
	}
}

// RedisOption applies a configuration option to the RedisStore.
type RedisOption func(*RedisStore)

// WithKeyTTL expires written keys after ttl. Zero keeps them forever.
func WithKeyTTL(ttl time.Duration) RedisOption {
	return func(s *RedisStore) {
		if ttl >= 0 {
			s.ttl = ttl
		}
	}
}

// WithKeySeparator sets the separator between partition and item key.
func WithKeySeparator(sep string) RedisOption {
	return func(s *RedisStore) {
		if sep != "" {
			s.sep = sep
		}
	}
}
