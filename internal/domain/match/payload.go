package match

import (
	"math"
	"sort"

	"github.com/okian/matchday/internal/domain/model"
)

// Morale change by result, before the rating adjustment.
const (
	moraleWin  = 5.0
	moraleDraw = 1.0
	moraleLoss = -4.0
	ratingPar  = 6.5
)

// payload assembles the storage mutations of the finished match.
func (g *game) payload(ratings map[string]float64) model.Payload {
	var p model.Payload
	id := g.fixture.ID

	for i, e := range ordered(g.tls[model.Home], g.tls[model.Away]) {
		row := model.EventRow{
			MatchID:     id,
			TeamID:      g.sides[e.Side].Team.ID,
			Sequence:    i + 1,
			Type:        e.Type,
			Minute:      e.Time.Display(),
			PlayerID:    e.Player,
			AssisterID:  e.Assister,
			PlayerOffID: e.PlayerOff,
		}
		if e.Type == model.EventSubstitution {
			row.PlayerID = e.PlayerOn
		}
		p.Events = append(p.Events, row)
	}

	p.Scores = append(p.Scores, model.ScoreRow{MatchID: id, Home: g.live.Home, Away: g.live.Away})

	for _, side := range []model.Side{model.Home, model.Away} {
		teamID := g.sides[side].Team.ID
		result := g.live.Result(side)
		for _, a := range g.teams[side].Appearances() {
			r := ratings[a.PlayerID]
			p.Lineups = append(p.Lineups, model.LineupRow{
				MatchID:       id,
				TeamID:        teamID,
				PlayerID:      a.PlayerID,
				StartPosition: a.Start,
				EndPosition:   a.End,
				Rating:        r,
			})
			p.Morale = append(p.Morale, model.MoraleDelta{
				TeamID:   teamID,
				PlayerID: a.PlayerID,
				Delta:    math.Round((moraleFor(result)+r-ratingPar)*100) / 100,
			})
		}
		p.Table = append(p.Table, tableDelta(g.fixture.LeagueID, teamID, g.live.Of(side), g.live.Of(side.Other())))

		booked := make([]string, 0, len(g.booked[side]))
		for playerID := range g.booked[side] {
			booked = append(booked, playerID)
		}
		sort.Strings(booked)
		for _, playerID := range booked {
			p.YellowChecks = append(p.YellowChecks, model.YellowCheck{
				PlayerID: playerID,
				TeamID:   teamID,
				LeagueID: g.fixture.LeagueID,
			})
		}
	}

	p.Bans = append(p.Bans, g.bans...)
	p.Turnarounds = Turnarounds(id,
		[2]string{g.sides[model.Home].Team.ID, g.sides[model.Away].Team.ID},
		Goals(g.tls[model.Home], g.tls[model.Away]))
	return p
}

func moraleFor(result int) float64 {
	switch {
	case result > 0:
		return moraleWin
	case result < 0:
		return moraleLoss
	default:
		return moraleDraw
	}
}

func tableDelta(leagueID, teamID string, scored, conceded int) model.TableDelta {
	d := model.TableDelta{
		LeagueID:     leagueID,
		TeamID:       teamID,
		Played:       1,
		GoalsFor:     scored,
		GoalsAgainst: conceded,
	}
	switch {
	case scored > conceded:
		d.Wins, d.Points = 1, 3
	case scored < conceded:
		d.Losses = 1
	default:
		d.Draws, d.Points = 1, 1
	}
	return d
}

// ordered merges both sides' persistable events by time, home first on ties.
func ordered(home, away *model.Timeline) []model.Event {
	out := append(home.Persistable(), away.Persistable()...)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Time == out[j].Time {
			return out[i].Side < out[j].Side
		}
		return out[i].Time.Less(out[j].Time)
	})
	return out
}

// Goal is a counted goal: who it counts for and when it happened.
type Goal struct {
	Time model.EventTime
	For  model.Side
}

// Goals lists every counted goal in time order. Own goals count for the
// opponent of the side that committed them. Goals at the same instant are
// ordered home before away.
func Goals(home, away *model.Timeline) []Goal {
	var out []Goal
	for _, e := range ordered(home, away) {
		switch {
		case e.Type.Scores():
			out = append(out, Goal{Time: e.Time, For: e.Side})
		case e.Type == model.EventOwnGoal:
			out = append(out, Goal{Time: e.Time, For: e.Side.Other()})
		}
	}
	return out
}

// Turnarounds reports a comeback win for a side that won after trailing and a
// choke loss for the side that lost after leading. Deficit is the largest
// margin the winner trailed by.
func Turnarounds(matchID string, teamIDs [2]string, goals []Goal) []model.Turnaround {
	var score model.Score
	var deficit [2]int
	for _, goal := range goals {
		score.Add(goal.For)
		for _, side := range []model.Side{model.Home, model.Away} {
			if d := score.Of(side.Other()) - score.Of(side); d > deficit[side] {
				deficit[side] = d
			}
		}
	}
	for _, side := range []model.Side{model.Home, model.Away} {
		if score.Result(side) <= 0 || deficit[side] == 0 {
			continue
		}
		return []model.Turnaround{
			{MatchID: matchID, TeamID: teamIDs[side], Kind: model.ComebackWin, Deficit: deficit[side]},
			{MatchID: matchID, TeamID: teamIDs[side.Other()], Kind: model.ChokeLoss, Deficit: deficit[side]},
		}
	}
	return nil
}
