// Package model contains the records the seeder generates and persists.
//
// Field names on the wire (json and dynamodbav tags) are the camelCase names
// downstream readers look up; do not rename them.
package model

import "time"

// Status is the lifecycle state of a Game at generation time.
type Status string

// Game statuses.
const (
	StatusCompleted Status = "completed"
	StatusUpcoming  Status = "upcoming"
)

// KeySeparator joins the parts of a composite natural key.
const KeySeparator = "#"

// User is a simulated pool participant, one per persona.
type User struct {
	UserID    string    `json:"userId" dynamodbav:"userId"`
	Username  string    `json:"username" dynamodbav:"username"`
	Email     string    `json:"email" dynamodbav:"email"`
	CreatedAt time.Time `json:"createdAt" dynamodbav:"createdAt"`
}

// Key returns the user's natural key.
func (u User) Key() string { return u.UserID }

// Team is static reference data used to populate games.
type Team struct {
	ID   string `json:"id" koanf:"id"`
	Name string `json:"name" koanf:"name"`
}

// DefaultTeams returns the built-in team catalog.
func DefaultTeams() []Team {
	return []Team{
		{ID: "147", Name: "New York Yankees"},
		{ID: "111", Name: "Boston Red Sox"},
		{ID: "137", Name: "San Francisco Giants"},
		{ID: "119", Name: "Los Angeles Dodgers"},
		{ID: "145", Name: "Chicago White Sox"},
		{ID: "112", Name: "Chicago Cubs"},
	}
}

// Game is a scheduled matchup. Completed games carry final scores and a
// winner; upcoming games have zero scores and no winner.
type Game struct {
	GameID     string    `json:"gameId" dynamodbav:"gameId"`
	Date       time.Time `json:"date" dynamodbav:"date"`
	HomeTeam   string    `json:"homeTeam" dynamodbav:"homeTeam"`
	HomeTeamID string    `json:"homeTeamId" dynamodbav:"homeTeamId"`
	AwayTeam   string    `json:"awayTeam" dynamodbav:"awayTeam"`
	AwayTeamID string    `json:"awayTeamId" dynamodbav:"awayTeamId"`
	HomeScore  int       `json:"homeScore" dynamodbav:"homeScore"`
	AwayScore  int       `json:"awayScore" dynamodbav:"awayScore"`
	Status     Status    `json:"status" dynamodbav:"status"`
	Winner     *string   `json:"winner,omitempty" dynamodbav:"winner,omitempty"`
}

// Key returns the game's natural key.
func (g Game) Key() string { return g.GameID }

// IsCompleted reports whether the game has a final result.
func (g Game) IsCompleted() bool {
	return g.Status == StatusCompleted && g.Winner != nil
}

// TotalScore returns the combined final score.
func (g Game) TotalScore() int { return g.HomeScore + g.AwayScore }

// Prediction is one user's pick for one game. The scored fields are set
// only when the game was completed at generation time.
type Prediction struct {
	UserID              string    `json:"userId" dynamodbav:"userId"`
	GameID              string    `json:"gameId" dynamodbav:"gameId"`
	HomeScorePredicted  float64   `json:"homeScorePredicted" dynamodbav:"homeScorePredicted"`
	AwayScorePredicted  float64   `json:"awayScorePredicted" dynamodbav:"awayScorePredicted"`
	TotalScorePredicted float64   `json:"totalScorePredicted" dynamodbav:"totalScorePredicted"`
	Confidence          float64   `json:"confidence" dynamodbav:"confidence"`
	PredictedWinnerID   string    `json:"predictedWinnerId" dynamodbav:"predictedWinnerId"`
	SubmittedAt         time.Time `json:"submittedAt" dynamodbav:"submittedAt"`

	ActualWinnerID  *string  `json:"actualWinnerId,omitempty" dynamodbav:"actualWinnerId,omitempty"`
	WinnerCorrect   *bool    `json:"winnerCorrect,omitempty" dynamodbav:"winnerCorrect,omitempty"`
	HomeScoreError  *float64 `json:"homeScoreError,omitempty" dynamodbav:"homeScoreError,omitempty"`
	AwayScoreError  *float64 `json:"awayScoreError,omitempty" dynamodbav:"awayScoreError,omitempty"`
	TotalScoreError *float64 `json:"totalScoreError,omitempty" dynamodbav:"totalScoreError,omitempty"`
}

// Key returns the composite (userId, gameId) natural key.
func (p Prediction) Key() string { return p.UserID + KeySeparator + p.GameID }

// Keyed is implemented by every persisted record.
type Keyed interface {
	Key() string
}
