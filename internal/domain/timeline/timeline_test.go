package timeline_test

import (
	"math/rand"
	"testing"

	"github.com/okian/matchday/internal/domain/model"
	"github.com/okian/matchday/internal/domain/timeline"
	. "github.com/smartystreets/goconvey/convey"
)

func goalsFor(m *timeline.Match, side model.Side) int {
	own := m.Of(side)
	n := 0
	for _, e := range own.Events {
		if e.Type.Scores() {
			n++
		}
	}
	return n + m.Of(side.Other()).Count(model.EventOwnGoal)
}

func TestGenerate(t *testing.T) {
	Convey("Given a generator with a fixed seed", t, func() {
		rng := rand.New(rand.NewSource(11))

		Convey("When generating many matches", func() {
			g := timeline.New(rng, timeline.WithInjuryProbability(0.4))
			severities := []model.Severity{model.SeverityLow, model.SeverityMedium, model.SeverityHigh}

			for i := 0; i < 300; i++ {
				in := model.Score{Home: i % 5, Away: (i / 5) % 4}
				m := g.Generate(in, severities[i%3])

				for _, side := range []model.Side{model.Home, model.Away} {
					tl := m.Of(side)
					seen := map[model.EventTime]bool{}
					for j, e := range tl.Events {
						So(seen[e.Time], ShouldBeFalse)
						seen[e.Time] = true
						if j > 0 {
							So(tl.Events[j-1].Time.Less(e.Time), ShouldBeTrue)
						}
						if e.Time.Extra {
							So(e.Time.Minute-e.Time.Base(), ShouldBeBetweenOrEqual, 0, model.MaxExtraOffset)
						}
					}
					So(tl.Count(model.EventSentinel), ShouldEqual, 1)
					So(tl.Count(model.EventSubstitution), ShouldBeLessThanOrEqualTo, 5)
					So(tl.Count(model.EventSubstitution), ShouldBeGreaterThanOrEqualTo, tl.Count(model.EventInjury))

					// scored goals plus opponent own goals add up to the final score,
					// and every missed penalty took one goal back
					So(goalsFor(m, side), ShouldEqual, m.Score.Of(side))
					So(m.Score.Of(side)+tl.Count(model.EventPenaltyMiss), ShouldEqual, in.Of(side))
				}
			}
		})

		Convey("When a side scores twice with no own goals or misses", func() {
			g := timeline.New(rng, timeline.WithGoalTypeWeights(80, 20, 0), timeline.WithPenaltyConversion(1))
			m := g.Generate(model.Score{Home: 2, Away: 0}, model.SeverityMedium)

			Convey("Then exactly two goal entries exist for that side", func() {
				So(m.Home.Count(model.EventGoal)+m.Home.Count(model.EventPenaltyGoal), ShouldEqual, 2)
				So(m.Away.Count(model.EventOwnGoal), ShouldEqual, 0)
				So(m.Score, ShouldResemble, model.Score{Home: 2, Away: 0})
			})
		})

		Convey("When every goal is an own goal", func() {
			g := timeline.New(rng, timeline.WithGoalTypeWeights(0, 0, 1))
			m := g.Generate(model.Score{Home: 3, Away: 1}, model.SeverityLow)

			Convey("Then own goals sit in the conceding side's timeline", func() {
				So(m.Away.Count(model.EventOwnGoal), ShouldEqual, 3)
				So(m.Home.Count(model.EventOwnGoal), ShouldEqual, 1)
				So(m.Home.Count(model.EventGoal), ShouldEqual, 0)
			})
		})

		Convey("When every penalty is missed", func() {
			g := timeline.New(rng, timeline.WithGoalTypeWeights(0, 1, 0), timeline.WithPenaltyConversion(0))
			m := g.Generate(model.Score{Home: 2, Away: 1}, model.SeverityLow)

			Convey("Then the misses are recorded and the score drops", func() {
				So(m.Home.Count(model.EventPenaltyMiss), ShouldEqual, 2)
				So(m.Away.Count(model.EventPenaltyMiss), ShouldEqual, 1)
				So(m.Score, ShouldResemble, model.Score{})
			})
		})

		Convey("When substitutions are capped", func() {
			g := timeline.New(rng, timeline.WithMaxSubstitutions(1), timeline.WithInjuryProbability(1))
			m := g.Generate(model.Score{}, model.SeverityLow)

			Convey("Then neither side schedules more than the cap", func() {
				So(m.Home.Count(model.EventSubstitution), ShouldBeLessThanOrEqualTo, 1)
				So(m.Away.Count(model.EventSubstitution), ShouldBeLessThanOrEqualTo, 1)
				So(m.Home.Count(model.EventInjury), ShouldEqual, 1)
			})
		})
	})
}

func TestAddInjury(t *testing.T) {
	Convey("Given an empty timeline", t, func() {
		g := timeline.New(rand.New(rand.NewSource(5)))
		tl := model.NewTimeline(model.Away)

		Convey("When a player is injured at 30:30", func() {
			injury, sub, ok := g.AddInjury(tl, model.EventTime{Minute: 30, Second: 30})

			Convey("Then the forced substitution is pinned at 31:30", func() {
				So(ok, ShouldBeTrue)
				So(injury, ShouldResemble, model.EventTime{Minute: 30, Second: 30})
				So(sub, ShouldResemble, model.EventTime{Minute: 31, Second: 30})
				So(tl.Events[len(tl.Events)-1].Forced, ShouldBeTrue)
			})
		})

		Convey("When 31:30 is already taken", func() {
			tl.Insert(model.Event{Time: model.EventTime{Minute: 31, Second: 30}, Type: model.EventYellowCard})
			_, sub, _ := g.AddInjury(tl, model.EventTime{Minute: 30, Second: 30})

			Convey("Then the collision probe moves it ten seconds on", func() {
				So(sub, ShouldResemble, model.EventTime{Minute: 31, Second: 40})
			})
		})

		Convey("When a player is injured just before the break", func() {
			_, sub, _ := g.AddInjury(tl, model.EventTime{Minute: 44, Second: 20})

			Convey("Then the substitution happens in stoppage time", func() {
				So(sub.Extra, ShouldBeTrue)
				So(sub.Display(), ShouldEqual, "45+1")
			})
		})

		Convey("When a player is injured late in stoppage time", func() {
			_, sub, _ := g.AddInjury(tl, model.EventTime{Minute: 94, Second: 40, Extra: true})

			Convey("Then the substitution stays inside the stoppage cap", func() {
				So(sub, ShouldResemble, model.EventTime{Minute: 94, Second: 59, Extra: true})
			})
		})

		Convey("When the last stoppage second is taken", func() {
			tl.Insert(model.Event{Time: model.EventTime{Minute: 49, Second: 59, Extra: true}, Type: model.EventYellowCard})
			injury, sub, ok := g.AddInjury(tl, model.EventTime{Minute: 49, Second: 20, Extra: true})

			Convey("Then the substitution still follows the injury", func() {
				So(ok, ShouldBeTrue)
				So(injury.Less(sub), ShouldBeTrue)
				So(sub, ShouldResemble, model.EventTime{Minute: 49, Second: 21, Extra: true})
			})
		})

		Convey("When every stoppage second after the injury is taken", func() {
			for sec := 51; sec <= 59; sec++ {
				tl.Insert(model.Event{Time: model.EventTime{Minute: 94, Second: sec, Extra: true}, Type: model.EventYellowCard})
			}
			_, _, ok := g.AddInjury(tl, model.EventTime{Minute: 94, Second: 50, Extra: true})

			Convey("Then the injury is dropped instead of subbing someone off early", func() {
				So(ok, ShouldBeFalse)
				So(tl.Count(model.EventInjury), ShouldEqual, 0)
				So(tl.Count(model.EventSubstitution), ShouldEqual, 0)
			})
		})
	})
}
