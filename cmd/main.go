// Command pickpool-seed generates a reproducible prediction-pool dataset and
// writes it to DynamoDB, Redis or memory.
//
// Usage:
//
//	pickpool-seed run
//	pickpool-seed run --store redis --seed 7
//	pickpool-seed generate --games 12 --out dataset.json
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/okian/pickpool/internal/adapters/batch"
	"github.com/okian/pickpool/internal/adapters/repository"
	"github.com/okian/pickpool/internal/app"
	"github.com/okian/pickpool/internal/config"
	"github.com/okian/pickpool/internal/domain/generator"
	"github.com/okian/pickpool/internal/domain/persona"
	"github.com/okian/pickpool/pkg/logger"
	"github.com/okian/pickpool/pkg/metrics"
)

func main() {
	// Load .env if present
	_ = godotenv.Load(".env")

	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "pickpool-seed:", err)
		os.Exit(1)
	}
}

// rootFlags override values loaded from config when set.
type rootFlags struct {
	dataset         string
	seed            int64
	games           int
	predictionGames int
	store           string
}

func newRootCmd() *cobra.Command {
	f := &rootFlags{}
	root := &cobra.Command{
		Use:           "pickpool-seed",
		Short:         "Seed the prediction pool with a reproducible synthetic dataset",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	pf := root.PersistentFlags()
	pf.StringVar(&f.dataset, "dataset", "", "dataset identifier prefixed to every key")
	pf.Int64Var(&f.seed, "seed", 0, "random seed (low 32 bits are used)")
	pf.IntVar(&f.games, "games", 0, "number of games to generate")
	pf.IntVar(&f.predictionGames, "prediction-games", 0, "number of leading games that get predictions")
	pf.StringVar(&f.store, "store", "", "store backend: dynamodb, redis or memory")

	root.AddCommand(runCmd(f))
	root.AddCommand(generateCmd(f))
	return root
}

func runCmd(f *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Generate the dataset and write it to the configured store",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			cfg, err := setup(ctx, cmd, f)
			if err != nil {
				return err
			}
			log := logger.Named("cli")

			opts, err := seederOptions(cfg)
			if err != nil {
				return err
			}

			store, err := repository.Open(ctx, cfg.Repository())
			if err != nil {
				return fmt.Errorf("open %s store: %w", cfg.Store, err)
			}
			if c, ok := store.(io.Closer); ok {
				defer func() { _ = c.Close() }()
			}
			log.Info(ctx, "store opened", logger.String("store", cfg.Store))

			summary, runErr := app.New(store, opts...).Run(ctx)
			if err := metrics.WriteTextfile(cfg.MetricsTextfile); err != nil {
				log.Warn(ctx, "metrics textfile not written", logger.Error(err))
			}
			if runErr != nil {
				return runErr
			}

			fmt.Fprintln(cmd.OutOrStdout(), summary.String())
			return nil
		},
	}
}

func generateCmd(f *rootFlags) *cobra.Command {
	var out string
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate the dataset and print it as JSON without writing to a store",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			cfg, err := setup(ctx, cmd, f)
			if err != nil {
				return err
			}

			opts, err := seederOptions(cfg)
			if err != nil {
				return err
			}

			ds, err := app.New(nil, opts...).Generate(ctx)
			if err != nil {
				return err
			}

			data, err := json.MarshalIndent(ds, "", "  ")
			if err != nil {
				return fmt.Errorf("encode dataset: %w", err)
			}
			data = append(data, '\n')

			if out == "" {
				_, err = cmd.OutOrStdout().Write(data)
				return err
			}
			if err := os.WriteFile(out, data, 0o644); err != nil { //nolint:gosec // dataset is not secret
				return fmt.Errorf("write %s: %w", out, err)
			}
			logger.Named("cli").Info(ctx, "dataset written",
				logger.String("path", out),
				logger.String("summary", ds.Summary()))
			return nil
		},
	}
	cmd.Flags().StringVar(&out, "out", "", "write JSON to this file instead of stdout")
	return cmd
}

// setup initializes logging on stderr, loads config, and applies flag
// overrides.
func setup(ctx context.Context, cmd *cobra.Command, f *rootFlags) (*config.Config, error) {
	if err := logger.InitWithWriter(cmd.ErrOrStderr()); err != nil {
		return nil, fmt.Errorf("init logging: %w", err)
	}

	cfg, err := config.Read(ctx)
	if err != nil {
		return nil, err
	}

	flags := cmd.Flags()
	if flags.Changed("dataset") {
		cfg.DatasetID = f.dataset
	}
	if flags.Changed("seed") {
		cfg.RandomSeed = f.seed
	}
	if flags.Changed("games") {
		cfg.NumGames = f.games
	}
	if flags.Changed("prediction-games") {
		cfg.NumPredictionGames = f.predictionGames
	}
	if flags.Changed("store") {
		cfg.Store = f.store
	}
	// Validated after flags so a flag can correct a bad env or file value.
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		logger.Get().Warn(ctx, "invalid log_level; falling back to info",
			logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}
	return cfg, nil
}

// seederOptions translates config into seeder, generator and writer options.
func seederOptions(cfg *config.Config) ([]app.Option, error) {
	ref, err := cfg.Reference()
	if err != nil {
		return nil, err
	}

	genOpts := []generator.Option{
		generator.WithDatasetID(cfg.DatasetID),
		generator.WithNumGames(cfg.NumGames),
		generator.WithNumPredictionGames(cfg.NumPredictionGames),
		generator.WithTeams(cfg.Teams),
	}
	if len(cfg.Personas) > 0 {
		genOpts = append(genOpts, generator.WithPersonas(persona.Catalog(cfg.Personas)))
	}

	return []app.Option{
		app.WithLogger(logger.Named("seeder")),
		app.WithSeed(cfg.Seed()),
		app.WithReference(ref),
		app.WithPartitions(cfg.UsersTable, cfg.GamesTable, cfg.PredictionsTable),
		app.WithGeneratorOptions(genOpts...),
		app.WithWriterOptions(
			batch.WithBatchSize(cfg.BatchSize),
			batch.WithMaxRetries(cfg.MaxRetries),
			batch.WithBackoff(cfg.BackoffBase(), cfg.BackoffJitter()),
			batch.WithConcurrency(cfg.Concurrency),
			batch.WithRateLimit(cfg.RateLimit),
		),
	}, nil
}
