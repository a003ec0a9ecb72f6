package substitution_test

import (
	"testing"

	"github.com/okian/matchday/internal/domain/model"
	"github.com/okian/matchday/internal/domain/substitution"
	. "github.com/smartystreets/goconvey/convey"
)

func player(id string, codes ...model.PositionCode) model.Player {
	return model.Player{ID: id, Position: codes[0].General(), SpecificPositions: codes}
}

// fixture builds a 4-4-2 with a bench of the given players.
func fixture(bench ...model.Player) (model.Selection, map[string]model.Player) {
	starters := []model.Player{
		player("gk", model.GK),
		player("lb", model.LB), player("lcb", model.LCB), player("rcb", model.RCB), player("rb", model.RB),
		player("lm", model.LM), player("lcm", model.LCM), player("rcm", model.RCM), player("rm", model.RM),
		player("ls", model.LS), player("rs", model.RS),
	}
	roster := map[string]model.Player{}
	sel := model.Selection{Lineup: map[model.PositionCode]string{}}
	for _, p := range starters {
		roster[p.ID] = p
		sel.Lineup[p.SpecificPositions[0]] = p.ID
	}
	for _, p := range bench {
		roster[p.ID] = p
		sel.Bench = append(sel.Bench, p.ID)
	}
	return sel, roster
}

func TestSubstitute(t *testing.T) {
	Convey("Given a side with a mixed bench", t, func() {
		sel, roster := fixture(
			player("b-st", model.ST),
			player("b-cb", model.CB),
			player("b-lcb", model.LCB),
			player("b-gk", model.GK),
		)
		team := substitution.New(sel, roster)

		Convey("When a centre back comes off", func() {
			swap, ok := team.Substitute("lcb")

			Convey("Then the exact match is preferred over the compatible one", func() {
				So(ok, ShouldBeTrue)
				So(swap.On, ShouldEqual, "b-lcb")
				So(swap.Rule, ShouldEqual, substitution.RuleExact)
				So(swap.Position, ShouldEqual, model.LCB)
				So(team.Bench(), ShouldResemble, []string{"b-st", "b-cb", "b-gk"})
			})
		})

		Convey("When a right centre back comes off", func() {
			swap, _ := team.Substitute("rcb")

			Convey("Then a compatible player covers the slot", func() {
				So(swap.On, ShouldEqual, "b-cb")
				So(swap.Rule, ShouldEqual, substitution.RuleCompatible)
				So(swap.Position, ShouldEqual, model.RCB)
			})
		})

		Convey("When a wide midfielder comes off and nobody fits", func() {
			swap, _ := team.Substitute("rm")

			Convey("Then the formation changes to fit a bench player", func() {
				So(swap.Rule, ShouldEqual, substitution.RuleFormation)
				So(swap.On, ShouldEqual, "b-st")
				So(swap.Vacated, ShouldEqual, model.RM)
				So(swap.Position, ShouldEqual, model.ST)
				lineup := team.Lineup()
				So(lineup, ShouldNotContainKey, model.RM)
				So(lineup[model.ST], ShouldEqual, "b-st")
			})
		})

		Convey("When a player who is not on the pitch is named", func() {
			_, ok := team.Substitute("b-cb")

			Convey("Then nothing happens", func() {
				So(ok, ShouldBeFalse)
				So(team.Used(), ShouldEqual, 0)
			})
		})

		Convey("When more substitutions are asked for than allowed", func() {
			capped := substitution.New(sel, roster, substitution.WithMaxSubstitutions(2))
			made := 0
			for _, off := range []string{"lb", "rb", "lm", "rm"} {
				if _, ok := capped.Substitute(off); ok {
					made++
				}
			}

			Convey("Then the allowance holds and no bench player is reused", func() {
				So(made, ShouldEqual, 2)
				So(capped.Used(), ShouldEqual, 2)
				So(capped.Remaining(), ShouldEqual, 0)
				So(len(capped.Bench()), ShouldEqual, 2)
				seen := map[string]bool{}
				for _, id := range capped.OnPitch() {
					So(seen[id], ShouldBeFalse)
					seen[id] = true
				}
			})
		})
	})

	Convey("Given a bench with only a goalkeeper", t, func() {
		sel, roster := fixture(player("b-gk", model.GK))
		team := substitution.New(sel, roster)

		Convey("When a striker comes off", func() {
			swap, ok := team.Substitute("ls")

			Convey("Then the nearest available player is used anyway", func() {
				So(ok, ShouldBeTrue)
				So(swap.On, ShouldEqual, "b-gk")
				So(swap.Rule, ShouldEqual, substitution.RuleNearest)
				So(swap.Position, ShouldEqual, model.LS)
			})
		})
	})
}

func TestKeeperSentOff(t *testing.T) {
	card := model.EventTime{Minute: 30, Second: 0}

	Convey("Given a goalkeeper sent off with substitutions left", t, func() {
		sel, roster := fixture(player("b-gk", model.GK), player("b-cm", model.CM))
		team := substitution.New(sel, roster)
		tl := model.NewTimeline(model.Home)
		_, _ = team.SendOff("gk")

		at, ok := team.KeeperSentOff(tl, card)

		Convey("Then a keeper-for-outfielder substitution is scheduled shortly after", func() {
			So(ok, ShouldBeTrue)
			So(at, ShouldResemble, model.EventTime{Minute: 30, Second: 30})
			So(tl.Count(model.EventSubstitution), ShouldEqual, 1)
			So(team.NeedsKeeper(), ShouldBeTrue)
		})

		Convey("When the substitution is made", func() {
			var off string
			for _, e := range tl.Events {
				if e.Type == model.EventSubstitution {
					off = e.PlayerOff
				}
			}
			swap, done := team.Substitute(off)

			Convey("Then the forward makes way for the bench keeper", func() {
				So(done, ShouldBeTrue)
				So(off, ShouldEqual, "rs")
				So(swap.On, ShouldEqual, "b-gk")
				So(swap.Position, ShouldEqual, model.GK)
				So(team.NeedsKeeper(), ShouldBeFalse)
				So(len(team.OnPitch()), ShouldEqual, 10)
			})
		})
	})

	Convey("Given a goalkeeper sent off with every substitution used", t, func() {
		sel, roster := fixture(player("b-gk", model.GK), player("b-cm", model.CM))
		team := substitution.New(sel, roster, substitution.WithMaxSubstitutions(1))
		_, _ = team.Substitute("lcm")
		tl := model.NewTimeline(model.Home)
		_, _ = team.SendOff("gk")

		_, ok := team.KeeperSentOff(tl, card)

		Convey("Then no substitution event is generated", func() {
			So(ok, ShouldBeFalse)
			So(tl.Count(model.EventSubstitution), ShouldEqual, 0)
			So(team.Used(), ShouldEqual, 1)
		})

		Convey("Then an outfielder, forwards first, goes in goal", func() {
			lineup := team.Lineup()
			So(lineup[model.GK], ShouldEqual, "rs")
			So(lineup, ShouldNotContainKey, model.RS)
			So(team.NeedsKeeper(), ShouldBeFalse)
		})
	})
}

func TestAppearances(t *testing.T) {
	Convey("Given a match with one substitution and one red card", t, func() {
		sel, roster := fixture(player("b-st", model.ST, model.LS))
		team := substitution.New(sel, roster)
		_, _ = team.Substitute("ls")
		_, _ = team.SendOff("lb")

		apps := map[string]substitution.Appearance{}
		for _, a := range team.Appearances() {
			apps[a.PlayerID] = a
		}

		Convey("Then start and end positions describe each involvement", func() {
			So(len(apps), ShouldEqual, 12)
			So(*apps["gk"].Start, ShouldEqual, model.GK)
			So(*apps["gk"].End, ShouldEqual, model.GK)
			So(*apps["ls"].Start, ShouldEqual, model.LS)
			So(apps["ls"].End, ShouldBeNil)
			So(apps["b-st"].Start, ShouldBeNil)
			So(*apps["b-st"].End, ShouldEqual, model.LS)
			So(apps["lb"].End, ShouldBeNil)
		})
	})
}
