// Package generator builds a reproducible dataset of users, games and
// predictions from a dataset identifier and a random source.
//
// The random source is consumed in one fixed order: all games in index
// order, then predictions game-major and user-minor. Users draw nothing.
// Any reordering changes every value that follows, so the loops here are
// deliberately sequential.
package generator

import (
	"fmt"
	"strings"
	"time"

	"github.com/okian/pickpool/internal/domain/model"
	"github.com/okian/pickpool/internal/domain/persona"
	"github.com/okian/pickpool/internal/domain/random"
	"github.com/okian/pickpool/internal/domain/scoring"
)

// Default generation parameters.
const (
	DefaultDatasetID          = "dev-dataset"
	DefaultNumGames           = 75
	DefaultNumPredictionGames = 40
)

// Schedule and score model constants.
const (
	gamesPerDay       = 6
	firstDayOffset    = -5
	maxGameScore      = 18
	maxPredictedScore = 20
	gameScoreStdev    = 2.0

	gameScoreMin  = 1.0
	gameScoreMax  = 8.0
	priorScoreMin = 2.5
	priorScoreMax = 5.5

	homeAdvantage = 0.52

	overconfidentMin = 0.85
	overconfidentMax = 0.99
	wrongPickConfMin = 0.45
	wrongPickConfMax = 0.65

	scorePlaces      = 1
	confidencePlaces = 2
)

// Generator produces datasets. It holds only configuration; all run state
// lives in the random.Source passed to each call.
type Generator struct {
	datasetID          string
	teams              []model.Team
	personas           persona.Catalog
	numGames           int
	numPredictionGames int
	reference          time.Time
}

// New creates a Generator with the built-in teams and personas.
func New(opts ...Option) *Generator {
	g := &Generator{
		datasetID:          DefaultDatasetID,
		teams:              model.DefaultTeams(),
		personas:           persona.Default(),
		numGames:           DefaultNumGames,
		numPredictionGames: DefaultNumPredictionGames,
	}

	for _, opt := range opts {
		opt(g)
	}

	return g
}

// DatasetID returns the identifier prefix used for generated keys.
func (g *Generator) DatasetID() string { return g.datasetID }

// Reference returns the instant treated as "now".
func (g *Generator) Reference() time.Time { return g.reference }

// Dataset is one generated run.
type Dataset struct {
	Users       []model.User       `json:"users"`
	Games       []model.Game       `json:"games"`
	Predictions []model.Prediction `json:"predictions"`
}

// CompletedGames counts games with a final result.
func (d Dataset) CompletedGames() int {
	n := 0
	for _, g := range d.Games {
		if g.IsCompleted() {
			n++
		}
	}
	return n
}

// Summary returns a human-readable count line.
func (d Dataset) Summary() string {
	return fmt.Sprintf("users=%d games=%d completed=%d predictions=%d",
		len(d.Users), len(d.Games), d.CompletedGames(), len(d.Predictions))
}

// Generate builds users, games and predictions from rnd, in that order.
func (g *Generator) Generate(rnd *random.Source) (Dataset, error) {
	if err := g.personas.Validate(); err != nil {
		return Dataset{}, err
	}

	users, err := g.Users()
	if err != nil {
		return Dataset{}, err
	}
	games, err := g.Games(rnd)
	if err != nil {
		return Dataset{}, err
	}

	return Dataset{
		Users:       users,
		Games:       games,
		Predictions: g.Predictions(rnd, users, games),
	}, nil
}

// Users returns one user per persona, in catalog order, all created at the
// reference time.
func (g *Generator) Users() ([]model.User, error) {
	if g.reference.IsZero() {
		return nil, ErrNoReference
	}

	createdAt := g.reference.UTC()
	users := make([]model.User, len(g.personas))
	for i, p := range g.personas {
		users[i] = model.User{
			UserID:    fmt.Sprintf("%s-user-%d", g.datasetID, i+1),
			Username:  p.Name,
			Email:     strings.ToLower(p.Name) + "@example.com",
			CreatedAt: createdAt,
		}
	}
	return users, nil
}

// Games returns the configured number of games. Six games are scheduled
// per day starting five days before the reference time; games dated
// strictly before it are completed.
func (g *Generator) Games(rnd *random.Source) ([]model.Game, error) {
	if g.reference.IsZero() {
		return nil, ErrNoReference
	}
	if len(g.teams) < 2 {
		return nil, fmt.Errorf("%w: got %d", ErrNotEnoughTeams, len(g.teams))
	}

	games := make([]model.Game, 0, g.numGames)
	for i := 0; i < g.numGames; i++ {
		games = append(games, g.game(rnd, i))
	}
	return games, nil
}

func (g *Generator) game(rnd *random.Source, i int) model.Game {
	last := len(g.teams) - 1
	home := g.teams[rnd.UniformInt(0, last)]
	away := g.teams[rnd.UniformInt(0, last)]
	for away.ID == home.ID {
		away = g.teams[rnd.UniformInt(0, last)]
	}

	date := g.reference.AddDate(0, 0, i/gamesPerDay+firstDayOffset)

	game := model.Game{
		GameID:     fmt.Sprintf("%s-game-%04d", g.datasetID, i+1),
		Date:       date.UTC(),
		HomeTeam:   home.Name,
		HomeTeamID: home.ID,
		AwayTeam:   away.Name,
		AwayTeamID: away.ID,
		Status:     model.StatusUpcoming,
	}
	if !date.Before(g.reference) {
		return game
	}

	game.HomeScore = finalScore(rnd)
	game.AwayScore = finalScore(rnd)
	if game.HomeScore == game.AwayScore {
		game.HomeScore++
	}

	winner := away.ID
	if game.HomeScore > game.AwayScore {
		winner = home.ID
	}
	game.Status = model.StatusCompleted
	game.Winner = &winner
	return game
}

func finalScore(rnd *random.Source) int {
	raw := rnd.UniformFloat(gameScoreMin, gameScoreMax) + rnd.ApproxNormal(0, gameScoreStdev)
	return int(random.Clamp(random.RoundHalfUp(raw), 0, maxGameScore))
}

// Predictions returns one scored prediction per user for each of the first
// numPredictionGames games.
func (g *Generator) Predictions(rnd *random.Source, users []model.User, games []model.Game) []model.Prediction {
	n := min(g.numPredictionGames, len(games))
	submittedAt := g.reference.UTC()

	predictions := make([]model.Prediction, 0, n*len(users))
	for _, game := range games[:n] {
		for _, u := range users {
			p := g.personas.Lookup(u.Username)

			winnerID := pickWinner(rnd, game, p)
			home, away, total := predictScores(rnd, game, p)
			conf := confidence(rnd, game, p, winnerID)

			predictions = append(predictions, scoring.Score(model.Prediction{
				UserID:              u.UserID,
				GameID:              game.GameID,
				HomeScorePredicted:  home,
				AwayScorePredicted:  away,
				TotalScorePredicted: total,
				Confidence:          conf,
				PredictedWinnerID:   winnerID,
				SubmittedAt:         submittedAt,
			}, game))
		}
	}
	return predictions
}

// pickWinner uses a mild home-advantage prior for unplayed games and the
// persona's skill for completed ones.
func pickWinner(rnd *random.Source, game model.Game, p persona.Persona) string {
	if !game.IsCompleted() {
		if rnd.Next() < homeAdvantage {
			return game.HomeTeamID
		}
		return game.AwayTeamID
	}

	if rnd.Next() < p.WinnerSkill {
		return *game.Winner
	}
	if *game.Winner == game.HomeTeamID {
		return game.AwayTeamID
	}
	return game.HomeTeamID
}

// predictScores centers on the final score when known, otherwise on a
// prior, and adds persona noise. The total is the sum of the rounded parts.
func predictScores(rnd *random.Source, game model.Game, p persona.Persona) (home, away, total float64) {
	var baseHome, baseAway float64
	if game.Status == model.StatusCompleted {
		baseHome = float64(game.HomeScore)
		baseAway = float64(game.AwayScore)
	} else {
		baseHome = rnd.UniformFloat(priorScoreMin, priorScoreMax)
		baseAway = rnd.UniformFloat(priorScoreMin, priorScoreMax)
	}

	h := random.Clamp(baseHome+rnd.ApproxNormal(0, p.ScoreStdev), 0, maxPredictedScore)
	a := random.Clamp(baseAway+rnd.ApproxNormal(0, p.ScoreStdev), 0, maxPredictedScore)

	home = random.RoundTo(h, scorePlaces)
	away = random.RoundTo(a, scorePlaces)
	total = random.RoundTo(home+away, scorePlaces)
	return home, away, total
}

// confidence loosely follows correctness on completed games so leaderboards
// have something to show.
func confidence(rnd *random.Source, game model.Game, p persona.Persona, winnerID string) float64 {
	if !game.IsCompleted() {
		return random.RoundTo(rnd.UniformFloat(p.ConfMin, p.ConfMax), confidencePlaces)
	}
	if p.Overconfident {
		return random.RoundTo(rnd.UniformFloat(overconfidentMin, overconfidentMax), confidencePlaces)
	}
	if winnerID == *game.Winner {
		return random.RoundTo(rnd.UniformFloat(p.ConfMin, p.ConfMax), confidencePlaces)
	}
	return random.RoundTo(rnd.UniformFloat(wrongPickConfMin, wrongPickConfMax), confidencePlaces)
}
