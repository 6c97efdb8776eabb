package config

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Env prefixes read by Load.
const (
	EnvConfigFile = "SEED_CONFIG"
	seedPrefix    = "SEED_"
	dynamoPrefix  = "DYNAMODB_"
	redisPrefix   = "REDIS_"
)

// Load reads the layered config and validates it.
func Load(ctx context.Context) (*Config, error) {
	cfg, err := Read(ctx)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Read builds a Config by layering defaults, optional file, and env vars.
// Order of precedence (low -> high):
//  1. defaults (New())
//  2. file (YAML) if SEED_CONFIG is set
//  3. env: SEED_* with the prefix dropped, DYNAMODB_* and REDIS_* kept whole
//
// The result is not validated, so callers can apply further overrides
// (command-line flags) before calling Validate.
func Read(_ context.Context) (*Config, error) {
	base := New()

	k := koanf.New(".")

	if path := os.Getenv(EnvConfigFile); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrLoadConfig, path, err)
		}
	}

	// SEED_NUM_GAMES -> num_games
	seedEnv := env.Provider(seedPrefix, ".", func(s string) string {
		return strings.ToLower(strings.TrimPrefix(s, seedPrefix))
	})
	// DYNAMODB_USERS_TABLE -> dynamodb_users_table, REDIS_ADDR -> redis_addr
	keepPrefix := func(s string) string { return strings.ToLower(s) }

	for _, p := range []koanf.Provider{
		seedEnv,
		env.Provider(dynamoPrefix, ".", keepPrefix),
		env.Provider(redisPrefix, ".", keepPrefix),
	} {
		if err := k.Load(p, nil); err != nil {
			return nil, fmt.Errorf("%w: env: %w", ErrLoadConfig, err)
		}
	}

	cfg := *base
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}
	return &cfg, nil
}
