package match

import (
	"fmt"
	"math/rand"
	"testing"

	"github.com/okian/matchday/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func fullSide(teamID string) Side {
	lineup := []model.PositionCode{
		model.GK, model.LB, model.LCB, model.RCB, model.RB,
		model.LM, model.LCM, model.RCM, model.RM, model.LS, model.RS,
	}
	bench := []model.PositionCode{model.GK, model.CB, model.CM, model.ST}
	s := Side{
		Team:      model.Team{ID: teamID, LeagueID: "L1"},
		Selection: model.Selection{Lineup: map[model.PositionCode]string{}},
	}
	add := func(id string, code model.PositionCode) {
		s.Players = append(s.Players, model.Player{
			ID: id, TeamID: teamID, Position: code.General(),
			SpecificPositions: []model.PositionCode{code},
			CurrentAbility:    60, Morale: 70, Fitness: 90, Sharpness: 70,
		})
	}
	for i, code := range lineup {
		id := fmt.Sprintf("%s-s%d", teamID, i)
		add(id, code)
		s.Selection.Lineup[code] = id
	}
	for i, code := range bench {
		id := fmt.Sprintf("%s-b%d", teamID, i)
		add(id, code)
		s.Selection.Bench = append(s.Selection.Bench, id)
	}
	return s
}

func TestForcedSubstitutionAfterSendOff(t *testing.T) {
	Convey("Given an injured player who is sent off before being replaced", t, func() {
		in := Input{Fixture: model.Fixture{ID: "fx", LeagueID: "L1"}, Home: fullSide("H"), Away: fullSide("A")}
		g := newGame(in, rand.New(rand.NewSource(3)), 5, nil)
		g.tls = [2]*model.Timeline{model.NewTimeline(model.Home), model.NewTimeline(model.Away)}

		injury := g.apply(model.Event{Side: model.Home, Type: model.EventInjury, Time: model.EventTime{Minute: 30}})
		So(injury.Skipped, ShouldBeFalse)
		g.sendOff(model.Home, model.Event{Side: model.Home, Type: model.EventRedCard, Player: injury.Player, Time: model.EventTime{Minute: 30, Second: 40}})
		before := g.teams[model.Home].OnPitch()

		Convey("When the forced substitution comes due", func() {
			sub := g.apply(model.Event{Side: model.Home, Type: model.EventSubstitution, Forced: true, Time: model.EventTime{Minute: 31}})

			Convey("Then it is skipped and no fit player is taken off", func() {
				So(sub.Skipped, ShouldBeTrue)
				So(sub.PlayerOff, ShouldBeEmpty)
				So(g.teams[model.Home].OnPitch(), ShouldResemble, before)
			})
		})
	})
}
