package generator

import (
	"time"

	"github.com/okian/pickpool/internal/domain/model"
	"github.com/okian/pickpool/internal/domain/persona"
)

// Option applies a configuration option to the Generator.
type Option func(*Generator)

// WithDatasetID sets the identifier prefix of every generated key.
func WithDatasetID(id string) Option {
	return func(g *Generator) {
		if id != "" {
			g.datasetID = id
		}
	}
}

// WithTeams replaces the team catalog.
func WithTeams(teams []model.Team) Option {
	return func(g *Generator) {
		if len(teams) > 0 {
			g.teams = append([]model.Team(nil), teams...)
		}
	}
}

// WithPersonas replaces the persona catalog.
func WithPersonas(c persona.Catalog) Option {
	return func(g *Generator) {
		if len(c) > 0 {
			g.personas = append(persona.Catalog(nil), c...)
		}
	}
}

// WithNumGames sets how many games are generated.
func WithNumGames(n int) Option {
	return func(g *Generator) {
		if n >= 0 {
			g.numGames = n
		}
	}
}

// WithNumPredictionGames sets how many leading games receive predictions.
func WithNumPredictionGames(n int) Option {
	return func(g *Generator) {
		if n >= 0 {
			g.numPredictionGames = n
		}
	}
}

// WithReference sets the instant generation treats as "now". Game dates,
// statuses and timestamps are derived from it.
func WithReference(t time.Time) Option {
	return func(g *Generator) {
		if !t.IsZero() {
			g.reference = t
		}
	}
}
