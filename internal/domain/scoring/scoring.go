// Package scoring grades predictions against completed games.
package scoring

import (
	"math"

	"github.com/okian/pickpool/internal/domain/model"
	"github.com/okian/pickpool/internal/domain/random"
)

// errorPlaces is the decimal precision of stored score errors.
const errorPlaces = 4

// Score returns p with its scored fields filled in from g. Predictions for
// games that are not completed are returned unchanged. Score is pure and
// idempotent: scoring an already scored prediction against the same game
// yields the same values.
func Score(p model.Prediction, g model.Game) model.Prediction {
	if !g.IsCompleted() {
		return p
	}

	actual := *g.Winner
	correct := p.PredictedWinnerID == actual
	homeErr := random.RoundTo(math.Abs(p.HomeScorePredicted-float64(g.HomeScore)), errorPlaces)
	awayErr := random.RoundTo(math.Abs(p.AwayScorePredicted-float64(g.AwayScore)), errorPlaces)
	totalErr := random.RoundTo(math.Abs(p.TotalScorePredicted-float64(g.TotalScore())), errorPlaces)

	p.ActualWinnerID = &actual
	p.WinnerCorrect = &correct
	p.HomeScoreError = &homeErr
	p.AwayScoreError = &awayErr
	p.TotalScoreError = &totalErr
	return p
}

// IsScored reports whether every scored field of p is present.
func IsScored(p model.Prediction) bool {
	return p.ActualWinnerID != nil &&
		p.WinnerCorrect != nil &&
		p.HomeScoreError != nil &&
		p.AwayScoreError != nil &&
		p.TotalScoreError != nil
}

// IsUnscored reports whether every scored field of p is absent.
func IsUnscored(p model.Prediction) bool {
	return p.ActualWinnerID == nil &&
		p.WinnerCorrect == nil &&
		p.HomeScoreError == nil &&
		p.AwayScoreError == nil &&
		p.TotalScoreError == nil
}
