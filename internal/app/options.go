package app

import (
	"time"

	"github.com/okian/pickpool/internal/adapters/batch"
	"github.com/okian/pickpool/internal/domain/generator"
	"github.com/okian/pickpool/pkg/logger"
)

// Option applies a configuration option to the Seeder.
type Option func(*Seeder)

// WithLogger sets a custom logger for the seeder.
func WithLogger(l logger.Logger) Option {
	return func(s *Seeder) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithGeneratorOptions configures the dataset generator. The reference time
// is always supplied by the seeder.
func WithGeneratorOptions(opts ...generator.Option) Option {
	return func(s *Seeder) {
		s.generatorOpts = append(s.generatorOpts, opts...)
	}
}

// WithWriterOptions configures the batch writer used for every partition.
func WithWriterOptions(opts ...batch.Option) Option {
	return func(s *Seeder) {
		s.writerOpts = append(s.writerOpts, opts...)
	}
}

// WithPartitions names the partitions (tables) each entity kind is written to.
func WithPartitions(users, games, predictions string) Option {
	return func(s *Seeder) {
		if users != "" {
			s.partitions.Users = users
		}
		if games != "" {
			s.partitions.Games = games
		}
		if predictions != "" {
			s.partitions.Predictions = predictions
		}
	}
}

// WithSeed sets the random seed.
func WithSeed(seed uint32) Option {
	return func(s *Seeder) {
		s.seed = seed
	}
}

// WithReference pins the instant treated as "now". Without it the clock is
// read once at the start of each run.
func WithReference(t time.Time) Option {
	return func(s *Seeder) {
		s.reference = t
	}
}

// WithClock replaces the wall clock.
func WithClock(now func() time.Time) Option {
	return func(s *Seeder) {
		if now != nil {
			s.clock = now
		}
	}
}
