package generator_test

import (
	"errors"
	"testing"
	"time"

	"github.com/okian/pickpool/internal/domain/generator"
	"github.com/okian/pickpool/internal/domain/model"
	"github.com/okian/pickpool/internal/domain/persona"
	"github.com/okian/pickpool/internal/domain/random"
	"github.com/okian/pickpool/internal/domain/scoring"
	. "github.com/smartystreets/goconvey/convey"
)

var reference = time.Date(2025, time.June, 15, 12, 0, 0, 0, time.UTC)

func newGenerator(opts ...generator.Option) *generator.Generator {
	return generator.New(append([]generator.Option{generator.WithReference(reference)}, opts...)...)
}

func TestGenerate_DefaultShape(t *testing.T) {
	Convey("Given the default generator seeded with 42", t, func() {
		ds, err := newGenerator().Generate(random.New(42))
		So(err, ShouldBeNil)

		Convey("Then it should produce one user per persona", func() {
			So(ds.Users, ShouldHaveLength, 5)
			So(ds.Users[0].UserID, ShouldEqual, "dev-dataset-user-1")
			So(ds.Users[0].Username, ShouldEqual, "SharpModel")
			So(ds.Users[0].Email, ShouldEqual, "sharpmodel@example.com")
			So(ds.Users[4].UserID, ShouldEqual, "dev-dataset-user-5")
			So(ds.Users[4].CreatedAt, ShouldEqual, reference)
		})

		Convey("Then it should split 75 games into 30 completed and 45 upcoming", func() {
			So(ds.Games, ShouldHaveLength, 75)
			So(ds.CompletedGames(), ShouldEqual, 30)
			for i, g := range ds.Games {
				So(g.IsCompleted(), ShouldEqual, i < 30)
			}
			So(ds.Summary(), ShouldEqual, "users=5 games=75 completed=30 predictions=200")
		})

		Convey("Then game ids and dates should follow the schedule", func() {
			So(ds.Games[0].GameID, ShouldEqual, "dev-dataset-game-0001")
			So(ds.Games[74].GameID, ShouldEqual, "dev-dataset-game-0075")
			So(ds.Games[0].Date, ShouldEqual, reference.AddDate(0, 0, -5))
			So(ds.Games[5].Date, ShouldEqual, reference.AddDate(0, 0, -5))
			So(ds.Games[6].Date, ShouldEqual, reference.AddDate(0, 0, -4))
			So(ds.Games[30].Date, ShouldEqual, reference)
		})

		Convey("Then the first game should match the reference draw sequence", func() {
			g := ds.Games[0]
			So(g.HomeTeamID, ShouldEqual, "119")
			So(g.HomeTeam, ShouldEqual, "Los Angeles Dodgers")
			So(g.AwayTeamID, ShouldEqual, "137")
			So(g.HomeScore, ShouldEqual, 7)
			So(g.AwayScore, ShouldEqual, 4)
			So(*g.Winner, ShouldEqual, "119")
		})

		Convey("Then predictions should cover the first 40 games for every user", func() {
			So(ds.Predictions, ShouldHaveLength, 200)
			first := ds.Predictions[0]
			So(first.UserID, ShouldEqual, "dev-dataset-user-1")
			So(first.GameID, ShouldEqual, "dev-dataset-game-0001")
			So(first.PredictedWinnerID, ShouldEqual, "119")
			So(first.HomeScorePredicted, ShouldEqual, 6.9)
			So(first.AwayScorePredicted, ShouldEqual, 3.8)
			So(first.TotalScorePredicted, ShouldEqual, 10.7)
			So(first.Confidence, ShouldEqual, 0.91)
			So(first.SubmittedAt, ShouldEqual, reference)

			last := ds.Predictions[199]
			So(last.UserID, ShouldEqual, "dev-dataset-user-5")
			So(last.GameID, ShouldEqual, "dev-dataset-game-0040")
			So(last.PredictedWinnerID, ShouldEqual, "137")
			So(last.TotalScorePredicted, ShouldEqual, 6.6)
			So(last.Confidence, ShouldEqual, 0.58)
		})
	})
}

func TestGenerate_Invariants(t *testing.T) {
	Convey("Given datasets generated from several seeds", t, func() {
		for _, seed := range []uint32{0, 1, 42, 1234567, 0xffffffff} {
			ds, err := newGenerator().Generate(random.New(seed))
			So(err, ShouldBeNil)

			games := map[string]model.Game{}
			for _, g := range ds.Games {
				games[g.GameID] = g

				So(g.HomeTeamID, ShouldNotEqual, g.AwayTeamID)
				if g.IsCompleted() {
					So(g.HomeScore, ShouldNotEqual, g.AwayScore)
					So(g.HomeScore, ShouldBeBetweenOrEqual, 0, 19)
					So(g.AwayScore, ShouldBeBetweenOrEqual, 0, 18)
					if g.HomeScore > g.AwayScore {
						So(*g.Winner, ShouldEqual, g.HomeTeamID)
					} else {
						So(*g.Winner, ShouldEqual, g.AwayTeamID)
					}
				} else {
					So(g.Winner, ShouldBeNil)
					So(g.HomeScore, ShouldEqual, 0)
					So(g.AwayScore, ShouldEqual, 0)
				}
			}

			keys := map[string]bool{}
			for _, p := range ds.Predictions {
				So(keys[p.Key()], ShouldBeFalse)
				keys[p.Key()] = true

				g := games[p.GameID]
				So(p.PredictedWinnerID, ShouldBeIn, []string{g.HomeTeamID, g.AwayTeamID})
				So(p.HomeScorePredicted, ShouldBeBetweenOrEqual, 0, 20)
				So(p.AwayScorePredicted, ShouldBeBetweenOrEqual, 0, 20)
				So(p.Confidence, ShouldBeBetweenOrEqual, 0.40, 0.99)
				So(p.TotalScorePredicted, ShouldEqual, random.RoundTo(p.HomeScorePredicted+p.AwayScorePredicted, 1))

				if g.IsCompleted() {
					So(scoring.IsScored(p), ShouldBeTrue)
					So(*p.WinnerCorrect, ShouldEqual, p.PredictedWinnerID == *g.Winner)
				} else {
					So(scoring.IsUnscored(p), ShouldBeTrue)
				}
			}
		}
	})
}

func TestGenerate_Determinism(t *testing.T) {
	Convey("Given two runs with the same seed and dataset", t, func() {
		a, errA := newGenerator(generator.WithDatasetID("qa")).Generate(random.New(99))
		b, errB := newGenerator(generator.WithDatasetID("qa")).Generate(random.New(99))
		So(errA, ShouldBeNil)
		So(errB, ShouldBeNil)

		Convey("Then the datasets should be identical", func() {
			So(a, ShouldResemble, b)
			So(a.Games[0].GameID, ShouldEqual, "qa-game-0001")
		})
	})

	Convey("Given two runs with different seeds", t, func() {
		a, _ := newGenerator().Generate(random.New(1))
		b, _ := newGenerator().Generate(random.New(2))

		Convey("Then the games should differ", func() {
			So(a.Games, ShouldNotResemble, b.Games)
		})
	})
}

func TestGenerate_Options(t *testing.T) {
	Convey("Given custom counts", t, func() {
		Convey("When more prediction games than games are requested", func() {
			ds, err := newGenerator(generator.WithNumGames(8), generator.WithNumPredictionGames(40)).Generate(random.New(3))

			Convey("Then predictions should cover every game", func() {
				So(err, ShouldBeNil)
				So(ds.Games, ShouldHaveLength, 8)
				So(ds.Predictions, ShouldHaveLength, 40)
			})
		})

		Convey("When zero games are requested", func() {
			ds, err := newGenerator(generator.WithNumGames(0)).Generate(random.New(3))

			Convey("Then only users should be produced", func() {
				So(err, ShouldBeNil)
				So(ds.Users, ShouldHaveLength, 5)
				So(ds.Games, ShouldBeEmpty)
				So(ds.Predictions, ShouldBeEmpty)
			})
		})

		Convey("When a single custom persona is used", func() {
			ds, err := newGenerator(generator.WithPersonas(persona.Catalog{
				{Name: "Solo", WinnerSkill: 1, ScoreStdev: 0.5, ConfMin: 0.6, ConfMax: 0.7},
			})).Generate(random.New(5))

			Convey("Then a perfect-skill user should always pick completed winners", func() {
				So(err, ShouldBeNil)
				So(ds.Users, ShouldHaveLength, 1)
				So(ds.Users[0].Email, ShouldEqual, "solo@example.com")
				for _, p := range ds.Predictions {
					if p.WinnerCorrect != nil {
						So(*p.WinnerCorrect, ShouldBeTrue)
					}
				}
			})
		})
	})

	Convey("Given too few teams", t, func() {
		_, err := newGenerator(generator.WithTeams([]model.Team{{ID: "1", Name: "Only"}})).Generate(random.New(1))

		Convey("Then generation should fail", func() {
			So(errors.Is(err, generator.ErrNotEnoughTeams), ShouldBeTrue)
		})
	})

	Convey("Given no reference time", t, func() {
		_, err := generator.New().Generate(random.New(1))

		Convey("Then generation should fail", func() {
			So(errors.Is(err, generator.ErrNoReference), ShouldBeTrue)
		})
	})

	Convey("Given an invalid persona", t, func() {
		_, err := newGenerator(generator.WithPersonas(persona.Catalog{{Name: "Bad", WinnerSkill: 2, ScoreStdev: 1}})).
			Generate(random.New(1))

		Convey("Then generation should fail", func() {
			So(errors.Is(err, persona.ErrInvalidPersona), ShouldBeTrue)
		})
	})
}

func TestPredictions_PersonaFallback(t *testing.T) {
	Convey("Given a user whose name matches no persona", t, func() {
		g := newGenerator()
		games, err := g.Games(random.New(42))
		So(err, ShouldBeNil)

		users := []model.User{{UserID: "stranger", Username: "Unknown"}}
		sharp := []model.User{{UserID: "stranger", Username: "SharpModel"}}

		Convey("Then predictions should use the first persona", func() {
			got := g.Predictions(random.New(7), users, games)
			want := g.Predictions(random.New(7), sharp, games)
			So(got, ShouldResemble, want)
			So(got, ShouldHaveLength, 40)
		})
	})
}
