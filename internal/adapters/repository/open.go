package repository

import (
	"context"
	"fmt"
)

// Config selects and locates a backend for Open.
type Config struct {
	Backend string
	Dynamo  DynamoConfig
	Redis   RedisConfig
}

// Open builds the backend named by cfg.Backend.
func Open(ctx context.Context, cfg Config) (Store, error) {
	switch cfg.Backend {
	case BackendDynamo:
		s, err := NewDynamoStore(ctx, cfg.Dynamo)
		if err != nil {
			return nil, err
		}
		return s, nil
	case BackendRedis:
		s, err := DialRedis(ctx, cfg.Redis)
		if err != nil {
			return nil, err
		}
		return s, nil
	case BackendMemory:
		return NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownStore, cfg.Backend)
	}
}
