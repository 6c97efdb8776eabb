package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisConfig locates a Redis server.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	// TTL expires written keys; zero keeps them.
	TTL time.Duration
}

// RedisStore writes each item as a JSON string under "partition:key". A
// batch is sent as one pipeline.
type RedisStore struct {
	client redis.UniversalClient
	ttl    time.Duration
	sep    string
}

// NewRedisStore wraps an existing client.
func NewRedisStore(client redis.UniversalClient, opts ...RedisOption) *RedisStore {
	s := &RedisStore{
		client: client,
		sep:    ":",
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// DialRedis connects to cfg.Addr and checks the connection with PING.
func DialRedis(ctx context.Context, cfg RedisConfig, opts ...RedisOption) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:        cfg.Addr,
		Password:    cfg.Password,
		DB:          cfg.DB,
		DialTimeout: 5 * time.Second,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping %s: %w", cfg.Addr, err)
	}
	return NewRedisStore(client, append([]RedisOption{WithKeyTTL(cfg.TTL)}, opts...)...), nil
}

// Key returns the Redis key an item is stored under.
func (s *RedisStore) Key(partition, key string) string {
	return partition + s.sep + key
}

// BatchUpsert pipelines one SET per item. Items whose command failed with a
// server reply are returned unprocessed; a transport failure that affects
// the whole pipeline is returned as an error.
func (s *RedisStore) BatchUpsert(ctx context.Context, partition string, items []Item) ([]Item, error) {
	if err := checkBatch(partition, items); err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, nil
	}

	payloads := make([][]byte, len(items))
	for i, it := range items {
		b, err := json.Marshal(it.Value)
		if err != nil {
			return nil, fmt.Errorf("%w: %s/%s: %v", ErrMarshalItem, partition, it.Key, err)
		}
		payloads[i] = b
	}

	pipe := s.client.Pipeline()
	cmds := make([]*redis.StatusCmd, len(items))
	for i, it := range items {
		cmds[i] = pipe.Set(ctx, s.Key(partition, it.Key), payloads[i], s.ttl)
	}

	_, err := pipe.Exec(ctx)
	if err != nil {
		var replyErr redis.Error
		if !errors.As(err, &replyErr) {
			return nil, fmt.Errorf("redis pipeline %s: %w", partition, err)
		}
	}

	var unprocessed []Item
	for i, cmd := range cmds {
		if cmd.Err() != nil {
			unprocessed = append(unprocessed, items[i])
		}
	}
	return unprocessed, nil
}

// Close releases the client.
func (s *RedisStore) Close() error {
	return s.client.Close()
}
