// Package config defines seeder configuration and its validation.
//
// Keys are flat and snake_case. Seeder settings come from SEED_* env vars,
// store locations from DYNAMODB_* and REDIS_* so the same environment can
// be shared with the serving backend.
package config

import (
	"fmt"
	"time"

	"github.com/okian/pickpool/internal/adapters/repository"
	"github.com/okian/pickpool/internal/domain/model"
	"github.com/okian/pickpool/internal/domain/persona"
	"github.com/okian/pickpool/internal/domain/random"
)

// MaxBackoffBaseMS bounds backoff_base_ms. Doubling a larger base thirty
// times leaves the range of time.Duration.
const MaxBackoffBaseMS = 60_000

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// DatasetID prefixes every generated identifier.
	DatasetID string `koanf:"dataset_id"`

	// RandomSeed seeds generation. Only the low 32 bits are used.
	RandomSeed int64 `koanf:"random_seed"`

	NumGames           int `koanf:"num_games"`
	NumPredictionGames int `koanf:"num_prediction_games"`

	// ReferenceTime is the RFC3339 instant treated as "now". Empty means the
	// wall clock at run start.
	ReferenceTime string `koanf:"reference_time"`

	// Store selects the backend: dynamodb, redis or memory.
	Store string `koanf:"store"`

	BatchSize       int     `koanf:"batch_size"`
	MaxRetries      int     `koanf:"max_retries"`
	BackoffBaseMS   int     `koanf:"backoff_base_ms"`
	BackoffJitterMS int     `koanf:"backoff_jitter_ms"`
	Concurrency     int     `koanf:"concurrency"`
	RateLimit       float64 `koanf:"rate_limit"`

	// MetricsTextfile, when set, receives a Prometheus textfile dump after
	// each run.
	MetricsTextfile string `koanf:"metrics_textfile"`

	DynamoRegion          string `koanf:"dynamodb_region"`
	DynamoEndpoint        string `koanf:"dynamodb_endpoint"`
	DynamoAccessKeyID     string `koanf:"dynamodb_access_key_id"`
	DynamoSecretAccessKey string `koanf:"dynamodb_secret_access_key"`
	UsersTable            string `koanf:"dynamodb_users_table"`
	GamesTable            string `koanf:"dynamodb_games_table"`
	PredictionsTable      string `koanf:"dynamodb_predictions_table"`

	RedisAddr     string `koanf:"redis_addr"`
	RedisPassword string `koanf:"redis_password"`
	RedisDB       int    `koanf:"redis_db"`

	// RedisTTLSeconds expires seeded keys; zero keeps them.
	RedisTTLSeconds int `koanf:"redis_ttl_seconds"`

	// Personas and Teams replace the built-in catalogs when non-empty.
	Personas []persona.Persona `koanf:"personas"`
	Teams    []model.Team      `koanf:"teams"`
}

// New returns a Config holding the defaults.
func New() *Config {
	return &Config{
		LogLevel:           "info",
		DatasetID:          "dev-dataset",
		RandomSeed:         42,
		NumGames:           75,
		NumPredictionGames: 40,
		Store:              repository.BackendDynamo,
		BatchSize:          repository.MaxBatchItems,
		MaxRetries:         8,
		BackoffBaseMS:      50,
		BackoffJitterMS:    100,
		Concurrency:        1,
		DynamoRegion:       "us-east-1",
		DynamoEndpoint:     "http://localhost:8000",
		UsersTable:         "mlb-prediction-pool-users",
		GamesTable:         "mlb-prediction-pool-games",
		PredictionsTable:   "mlb-prediction-pool-predictions",
		RedisAddr:          "localhost:6379",
	}
}

// Validate checks ranges and required values.
func (c *Config) Validate() error {
	switch {
	case c.DatasetID == "":
		return fmt.Errorf("%w: dataset_id must not be empty", ErrInvalidConfig)
	case c.NumGames < 0 || c.NumPredictionGames < 0:
		return fmt.Errorf("%w: game counts must not be negative", ErrInvalidConfig)
	case c.BatchSize < 1 || c.BatchSize > repository.MaxBatchItems:
		return fmt.Errorf("%w: batch_size %d outside 1..%d", ErrInvalidConfig, c.BatchSize, repository.MaxBatchItems)
	case c.MaxRetries < 0:
		return fmt.Errorf("%w: max_retries must not be negative", ErrInvalidConfig)
	case c.BackoffBaseMS < 0 || c.BackoffJitterMS < 0:
		return fmt.Errorf("%w: backoff must not be negative", ErrInvalidConfig)
	case c.BackoffBaseMS > MaxBackoffBaseMS:
		return fmt.Errorf("%w: backoff_base_ms must be at most %d", ErrInvalidConfig, MaxBackoffBaseMS)
	case c.RedisTTLSeconds < 0:
		return fmt.Errorf("%w: redis_ttl_seconds must not be negative", ErrInvalidConfig)
	case c.Concurrency < 1:
		return fmt.Errorf("%w: concurrency must be at least 1", ErrInvalidConfig)
	case c.RateLimit < 0:
		return fmt.Errorf("%w: rate_limit must not be negative", ErrInvalidConfig)
	case c.UsersTable == "" || c.GamesTable == "" || c.PredictionsTable == "":
		return fmt.Errorf("%w: partition names must not be empty", ErrInvalidConfig)
	case !repository.KnownBackend(c.Store):
		return fmt.Errorf("%w: unknown store %q", ErrInvalidConfig, c.Store)
	case len(c.Teams) == 1:
		return fmt.Errorf("%w: at least two teams are required", ErrInvalidConfig)
	}

	if len(c.Personas) > 0 {
		if err := persona.Catalog(c.Personas).Validate(); err != nil {
			return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
		}
	}
	if _, err := c.Reference(); err != nil {
		return err
	}
	return nil
}

// Seed returns the configured seed wrapped to 32 bits.
func (c *Config) Seed() uint32 { return random.WrapSeed(c.RandomSeed) }

// Reference parses ReferenceTime. It returns the zero time when unset.
func (c *Config) Reference() (time.Time, error) {
	if c.ReferenceTime == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(time.RFC3339, c.ReferenceTime)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: reference_time: %v", ErrInvalidConfig, err)
	}
	return t, nil
}

// BackoffBase returns the base backoff wait.
func (c *Config) BackoffBase() time.Duration {
	return time.Duration(c.BackoffBaseMS) * time.Millisecond
}

// BackoffJitter returns the upper bound of the backoff jitter.
func (c *Config) BackoffJitter() time.Duration {
	return time.Duration(c.BackoffJitterMS) * time.Millisecond
}

// Repository returns the settings repository.Open needs.
func (c *Config) Repository() repository.Config {
	return repository.Config{
		Backend: c.Store,
		Dynamo: repository.DynamoConfig{
			Region:          c.DynamoRegion,
			Endpoint:        c.DynamoEndpoint,
			AccessKeyID:     c.DynamoAccessKeyID,
			SecretAccessKey: c.DynamoSecretAccessKey,
		},
		Redis: repository.RedisConfig{
			Addr:     c.RedisAddr,
			Password: c.RedisPassword,
			DB:       c.RedisDB,
			TTL:      time.Duration(c.RedisTTLSeconds) * time.Second,
		},
	}
}
