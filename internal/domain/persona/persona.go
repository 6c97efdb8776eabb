// Package persona holds the behavioral profiles simulated users predict with.
package persona

import (
	"errors"
	"fmt"
)

// ErrInvalidPersona is returned by Validate for an out-of-range profile.
var ErrInvalidPersona = errors.New("invalid persona")

// Persona parametrizes how a simulated user predicts games.
type Persona struct {
	Name string `koanf:"name" json:"name"`

	// WinnerSkill is the probability of picking the true winner of a completed game.
	WinnerSkill float64 `koanf:"winner_skill" json:"winnerSkill"`

	// ScoreStdev is the noise amplitude added to predicted scores, in runs.
	ScoreStdev float64 `koanf:"score_stdev" json:"scoreStdev"`

	// ConfMin and ConfMax bound the self-reported confidence.
	ConfMin float64 `koanf:"conf_min" json:"confMin"`
	ConfMax float64 `koanf:"conf_max" json:"confMax"`

	// Overconfident personas report a high confidence band on completed
	// games regardless of whether their pick was right.
	Overconfident bool `koanf:"overconfident" json:"overconfident,omitempty"`
}

// Validate checks the profile's ranges.
func (p Persona) Validate() error {
	switch {
	case p.Name == "":
		return fmt.Errorf("%w: empty name", ErrInvalidPersona)
	case p.WinnerSkill < 0 || p.WinnerSkill > 1:
		return fmt.Errorf("%w: %s winner skill %v outside [0,1]", ErrInvalidPersona, p.Name, p.WinnerSkill)
	case p.ScoreStdev <= 0:
		return fmt.Errorf("%w: %s score stdev must be positive", ErrInvalidPersona, p.Name)
	case p.ConfMin < 0 || p.ConfMax > 1 || p.ConfMin > p.ConfMax:
		return fmt.Errorf("%w: %s confidence range [%v,%v]", ErrInvalidPersona, p.Name, p.ConfMin, p.ConfMax)
	}
	return nil
}

// Catalog is an ordered set of personas. Order matters: users are created
// one per persona in catalog order.
type Catalog []Persona

// Default returns the built-in five-persona catalog.
func Default() Catalog {
	return Catalog{
		{Name: "SharpModel", WinnerSkill: 0.72, ScoreStdev: 1.2, ConfMin: 0.65, ConfMax: 0.95},
		{Name: "SolidModel", WinnerSkill: 0.62, ScoreStdev: 1.8, ConfMin: 0.55, ConfMax: 0.85},
		{Name: "CoinFlip", WinnerSkill: 0.50, ScoreStdev: 2.5, ConfMin: 0.50, ConfMax: 0.70},
		{Name: "Overconfident", WinnerSkill: 0.53, ScoreStdev: 2.2, ConfMin: 0.80, ConfMax: 0.99, Overconfident: true},
		{Name: "WildCard", WinnerSkill: 0.58, ScoreStdev: 3.0, ConfMin: 0.40, ConfMax: 0.90},
	}
}

// Lookup returns the first persona named name. A miss falls back to the
// first persona in the catalog instead of failing.
func (c Catalog) Lookup(name string) Persona {
	for _, p := range c {
		if p.Name == name {
			return p
		}
	}
	return c[0]
}

// Validate checks that the catalog is non-empty and every persona is valid.
func (c Catalog) Validate() error {
	if len(c) == 0 {
		return fmt.Errorf("%w: empty catalog", ErrInvalidPersona)
	}
	for _, p := range c {
		if err := p.Validate(); err != nil {
			return err
		}
	}
	return nil
}
