// Package app wires generation and persistence into a single seed run.
package app

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/okian/pickpool/internal/adapters/batch"
	"github.com/okian/pickpool/internal/adapters/repository"
	"github.com/okian/pickpool/internal/domain/dedupe"
	"github.com/okian/pickpool/internal/domain/generator"
	"github.com/okian/pickpool/internal/domain/model"
	"github.com/okian/pickpool/internal/domain/random"
	"github.com/okian/pickpool/pkg/logger"
	"github.com/okian/pickpool/pkg/metrics"
)

// Default partition names.
const (
	DefaultUsersPartition       = "mlb-prediction-pool-users"
	DefaultGamesPartition       = "mlb-prediction-pool-games"
	DefaultPredictionsPartition = "mlb-prediction-pool-predictions"
	DefaultSeed                 = 42
)

// Partitions names where each entity kind is written.
type Partitions struct {
	Users       string
	Games       string
	Predictions string
}

// Summary describes a finished run.
type Summary struct {
	RunID          uuid.UUID
	DatasetID      string
	Seed           uint32
	Reference      time.Time
	Users          int
	Games          int
	CompletedGames int
	Predictions    int
	Retries        int
	Duration       time.Duration
}

func (s Summary) String() string {
	return fmt.Sprintf("run %s: dataset=%s seed=%d users=%d games=%d (completed=%d, upcoming=%d) predictions=%d retries=%d in %s",
		s.RunID, s.DatasetID, s.Seed, s.Users, s.Games, s.CompletedGames, s.Games-s.CompletedGames,
		s.Predictions, s.Retries, s.Duration.Round(time.Millisecond))
}

// Seeder generates a dataset and persists it partition by partition.
type Seeder struct {
	store         repository.Store
	generatorOpts []generator.Option
	writerOpts    []batch.Option
	partitions    Partitions
	seed          uint32
	reference     time.Time
	clock         func() time.Time

	logger logger.Logger
}

// New constructs a Seeder writing to store.
func New(store repository.Store, opts ...Option) *Seeder {
	s := &Seeder{
		store: store,
		partitions: Partitions{
			Users:       DefaultUsersPartition,
			Games:       DefaultGamesPartition,
			Predictions: DefaultPredictionsPartition,
		},
		seed:   DefaultSeed,
		clock:  time.Now,
		logger: logger.Get().Named("seeder"),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Generate builds the dataset without touching the store.
func (s *Seeder) Generate(ctx context.Context) (generator.Dataset, error) {
	ds, _, err := s.generate(ctx)
	return ds, err
}

func (s *Seeder) generate(ctx context.Context) (generator.Dataset, *generator.Generator, error) {
	if err := ctx.Err(); err != nil {
		return generator.Dataset{}, nil, err
	}

	ref := s.reference
	if ref.IsZero() {
		ref = s.clock()
	}
	opts := append(append([]generator.Option{}, s.generatorOpts...), generator.WithReference(ref))
	gen := generator.New(opts...)

	ds, err := gen.Generate(random.New(s.seed))
	if err != nil {
		return generator.Dataset{}, nil, fmt.Errorf("generate dataset: %w", err)
	}

	metrics.RecordEntitiesGenerated("users", len(ds.Users))
	metrics.RecordEntitiesGenerated("games", len(ds.Games))
	metrics.RecordEntitiesGenerated("predictions", len(ds.Predictions))
	metrics.UpdateCompletedGames(ds.CompletedGames())
	return ds, gen, nil
}

// Run generates the dataset, checks natural keys, and writes users, games
// and predictions in that order. The first failing partition ends the run;
// its error names the partition.
func (s *Seeder) Run(ctx context.Context) (Summary, error) {
	start := time.Now()
	summary := Summary{RunID: uuid.New(), Seed: s.seed}
	log := s.logger.With(logger.String("run_id", summary.RunID.String()))

	summary, err := s.run(ctx, log, summary)
	summary.Duration = time.Since(start)

	if err != nil {
		metrics.RecordRun("failure", float64(summary.Duration.Milliseconds()))
		log.Error(ctx, "seed run failed", logger.Error(err))
		return summary, err
	}

	metrics.RecordRun("success", float64(summary.Duration.Milliseconds()))
	log.Info(ctx, "seed run complete",
		logger.String("dataset", summary.DatasetID),
		logger.Int("users", summary.Users),
		logger.Int("games", summary.Games),
		logger.Int("completed_games", summary.CompletedGames),
		logger.Int("predictions", summary.Predictions),
		logger.Int("retries", summary.Retries),
		logger.Duration("duration", summary.Duration))
	return summary, nil
}

func (s *Seeder) run(ctx context.Context, log logger.Logger, summary Summary) (Summary, error) {
	if s.store == nil {
		return summary, ErrNoStore
	}

	ds, gen, err := s.generate(ctx)
	if err != nil {
		return summary, err
	}
	summary.DatasetID = gen.DatasetID()
	summary.Reference = gen.Reference()
	summary.Users = len(ds.Users)
	summary.Games = len(ds.Games)
	summary.CompletedGames = ds.CompletedGames()
	summary.Predictions = len(ds.Predictions)

	log.Info(ctx, "dataset generated",
		logger.String("dataset", summary.DatasetID),
		logger.Int64("seed", int64(s.seed)),
		logger.String("summary", ds.Summary()))

	steps := []struct {
		partition string
		items     []repository.Item
	}{
		{s.partitions.Users, toItems(ds.Users)},
		{s.partitions.Games, toItems(ds.Games)},
		{s.partitions.Predictions, toItems(ds.Predictions)},
	}

	for _, st := range steps {
		if err := checkUnique(ctx, st.partition, st.items); err != nil {
			return summary, err
		}
	}

	writer := batch.NewWriter(s.store, append([]batch.Option{batch.WithLogger(log.Named("batch"))}, s.writerOpts...)...)
	for _, st := range steps {
		report, err := writer.Write(ctx, st.partition, st.items)
		summary.Retries += report.Retries
		if err != nil {
			return summary, fmt.Errorf("seed %s: %w", st.partition, err)
		}
	}
	return summary, nil
}

func toItems[T model.Keyed](records []T) []repository.Item {
	items := make([]repository.Item, len(records))
	for i, r := range records {
		items[i] = repository.Item{Key: r.Key(), Value: r}
	}
	return items
}

// checkUnique rejects a partition that repeats a natural key.
func checkUnique(ctx context.Context, partition string, items []repository.Item) error {
	seen := dedupe.NewInMemoryDeduper(dedupe.WithCapacity(len(items)))
	for _, it := range items {
		if seen.SeenAndRecord(ctx, it.Key) {
			return fmt.Errorf("%w: %s in %s", ErrDuplicateKey, it.Key, partition)
		}
	}
	return nil
}
