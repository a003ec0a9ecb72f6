package match_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/okian/matchday/internal/domain/match"
	"github.com/okian/matchday/internal/domain/model"
	"github.com/okian/matchday/internal/domain/rating"
	. "github.com/smartystreets/goconvey/convey"
)

//nolint:gochecknoglobals // test formation
var (
	formation = []model.PositionCode{
		model.GK, model.LB, model.LCB, model.RCB, model.RB,
		model.LM, model.LCM, model.RCM, model.RM, model.LS, model.RS,
	}
	benchCodes = []model.PositionCode{model.GK, model.CB, model.CM, model.ST, model.LW, model.RB, model.DM}
)

func squad(teamID string, ability float64) match.Side {
	side := match.Side{
		Team:      model.Team{ID: teamID, Name: teamID, LeagueID: "L1"},
		Selection: model.Selection{Lineup: map[model.PositionCode]string{}},
	}
	add := func(id string, code model.PositionCode) {
		side.Players = append(side.Players, model.Player{
			ID:                id,
			TeamID:            teamID,
			Position:          code.General(),
			SpecificPositions: []model.PositionCode{code},
			CurrentAbility:    ability,
			Morale:            80,
			Fitness:           90,
			Sharpness:         70,
		})
	}
	for i, code := range formation {
		id := fmt.Sprintf("%s-s%d", teamID, i)
		add(id, code)
		side.Selection.Lineup[code] = id
	}
	for i, code := range benchCodes {
		id := fmt.Sprintf("%s-b%d", teamID, i)
		add(id, code)
		side.Selection.Bench = append(side.Selection.Bench, id)
	}
	return side
}

func input(seed int64) match.Input {
	return match.Input{
		Fixture: model.Fixture{ID: fmt.Sprintf("fx-%d", seed), HomeID: "H", AwayID: "A", LeagueID: "L1", Matchday: 1},
		Home:    squad("H", 70),
		Away:    squad("A", 66),
		Referee: model.Referee{ID: "ref", Severity: model.SeverityHigh},
		Seed:    seed,
	}
}

func TestRun(t *testing.T) {
	ctx := context.Background()

	Convey("Given a runner", t, func() {
		runner := match.NewRunner(match.WithInjuryProbability(0.5))

		Convey("When the same fixture is simulated twice with one seed", func() {
			a, errA := runner.Run(ctx, input(17))
			b, errB := runner.Run(ctx, input(17))

			Convey("Then the results are identical", func() {
				So(errA, ShouldBeNil)
				So(errB, ShouldBeNil)
				So(a.Payload, ShouldResemble, b.Payload)
				So(a.Score, ShouldResemble, b.Score)
			})
		})

		Convey("When many fixtures are simulated", func() {
			for seed := int64(1); seed <= 60; seed++ {
				in := input(seed)
				res, err := runner.Run(ctx, in)
				So(err, ShouldBeNil)
				p := res.Payload

				// score rows agree with counted goals
				goals := model.Score{}
				for _, g := range match.Goals(res.Home, res.Away) {
					goals.Add(g.For)
				}
				So(goals, ShouldResemble, res.Score)
				So(p.Scores, ShouldResemble, []model.ScoreRow{{MatchID: in.Fixture.ID, Home: res.Score.Home, Away: res.Score.Away}})

				// events are sequenced and never carry the sentinel
				for i, row := range p.Events {
					So(row.Sequence, ShouldEqual, i+1)
					So(row.Type, ShouldNotEqual, model.EventSentinel)
					So(row.PlayerID, ShouldNotBeEmpty)
				}

				// stoppage stays within bounds
				So(res.Stoppage[0], ShouldBeBetweenOrEqual, 0, model.MaxStoppage)
				So(res.Stoppage[1], ShouldBeBetweenOrEqual, 0, model.MaxStoppage)

				// nobody appears twice and substitutions respect the cap
				perTeam := map[string]int{}
				seen := map[string]bool{}
				for _, row := range p.Lineups {
					So(seen[row.PlayerID], ShouldBeFalse)
					seen[row.PlayerID] = true
					So(row.Rating, ShouldBeBetweenOrEqual, rating.Min, rating.Max)
					if row.StartPosition == nil {
						perTeam[row.TeamID]++
					}
				}
				So(perTeam["H"], ShouldBeLessThanOrEqualTo, 5)
				So(perTeam["A"], ShouldBeLessThanOrEqualTo, 5)

				// table deltas mirror each other
				So(len(p.Table), ShouldEqual, 2)
				So(p.Table[0].GoalsFor, ShouldEqual, p.Table[1].GoalsAgainst)
				So(p.Table[0].Points+p.Table[1].Points, ShouldBeIn, []int{2, 3})
			}
		})

		Convey("When an observer is attached", func() {
			var minutes []model.EventTime
			var scores []model.Score
			observed := match.NewRunner(match.WithObserver(func(e model.Event, s model.Score) {
				minutes = append(minutes, e.Time)
				scores = append(scores, s)
			}))
			res, err := observed.Run(ctx, input(5))

			Convey("Then it sees every persisted event in order and the final score", func() {
				So(err, ShouldBeNil)
				So(len(minutes), ShouldEqual, len(res.Payload.Events))
				So(len(scores), ShouldBeGreaterThan, 0)
				for i := 1; i < len(minutes); i++ {
					So(minutes[i].Less(minutes[i-1]), ShouldBeFalse)
					So(scores[i].Home, ShouldBeGreaterThanOrEqualTo, scores[i-1].Home)
					So(scores[i].Away, ShouldBeGreaterThanOrEqualTo, scores[i-1].Away)
				}
				So(scores[len(scores)-1], ShouldResemble, res.Score)
			})
		})
	})

	Convey("Given invalid input", t, func() {
		runner := match.NewRunner()

		Convey("When both sides are the same team", func() {
			in := input(1)
			in.Away = squad("H", 60)
			_, err := runner.Run(ctx, in)
			So(errors.Is(err, match.ErrSameTeam), ShouldBeTrue)
		})

		Convey("When a lineup is empty", func() {
			in := input(1)
			in.Away.Selection.Lineup = nil
			_, err := runner.Run(ctx, in)
			So(errors.Is(err, match.ErrEmptyLineup), ShouldBeTrue)
		})

		Convey("When a bench player is not in the roster", func() {
			in := input(1)
			in.Home.Selection.Bench = append(in.Home.Selection.Bench, "ghost")
			_, err := runner.Run(ctx, in)
			So(errors.Is(err, match.ErrUnknownPlayer), ShouldBeTrue)
		})
	})
}

func TestTurnarounds(t *testing.T) {
	ids := [2]string{"H", "A"}
	at := func(m int) model.EventTime { return model.EventTime{Minute: m} }

	Convey("Given a home side that came from two down", t, func() {
		goals := []match.Goal{
			{Time: at(10), For: model.Away},
			{Time: at(20), For: model.Away},
			{Time: at(50), For: model.Home},
			{Time: at(60), For: model.Home},
			{Time: at(88), For: model.Home},
		}

		Convey("Then home records a comeback and away a choke", func() {
			So(match.Turnarounds("m", ids, goals), ShouldResemble, []model.Turnaround{
				{MatchID: "m", TeamID: "H", Kind: model.ComebackWin, Deficit: 2},
				{MatchID: "m", TeamID: "A", Kind: model.ChokeLoss, Deficit: 2},
			})
		})
	})

	Convey("Given a winner who never trailed", t, func() {
		goals := []match.Goal{{Time: at(5), For: model.Away}, {Time: at(9), For: model.Away}, {Time: at(70), For: model.Home}}

		Convey("Then nothing is reported", func() {
			So(match.Turnarounds("m", ids, goals), ShouldBeEmpty)
		})
	})

	Convey("Given goals by both sides at the same instant", t, func() {
		home := model.NewTimeline(model.Home)
		away := model.NewTimeline(model.Away)
		away.Insert(model.Event{Time: at(30), Type: model.EventGoal})
		home.Insert(model.Event{Time: at(30), Type: model.EventGoal})
		home.Insert(model.Event{Time: at(40), Type: model.EventOwnGoal})

		Convey("Then home is counted first and own goals count for the opponent", func() {
			So(match.Goals(home, away), ShouldResemble, []match.Goal{
				{Time: at(30), For: model.Home},
				{Time: at(30), For: model.Away},
				{Time: at(40), For: model.Away},
			})
		})
	})
}

func TestAbility(t *testing.T) {
	Convey("Given players in different condition", t, func() {
		fresh := model.Player{CurrentAbility: 80, Fitness: 100, Morale: 100, Sharpness: 100}
		jaded := model.Player{CurrentAbility: 80}

		Convey("Then condition scales ability between 70% and 100%", func() {
			So(match.Ability([]model.Player{fresh}), ShouldAlmostEqual, 80, 1e-9)
			So(match.Ability([]model.Player{jaded}), ShouldAlmostEqual, 56, 1e-9)
			So(match.Ability(nil), ShouldEqual, 0)
		})
	})
}
