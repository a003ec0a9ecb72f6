package match

import (
	"math/rand"
	"slices"

	"github.com/okian/matchday/internal/domain/dice"
	"github.com/okian/matchday/internal/domain/model"
	"github.com/okian/matchday/internal/domain/substitution"
	"github.com/okian/matchday/pkg/metrics"
)

// Dispatch constants.
const (
	assistProbability = 0.7
	secondYellowBan   = 1
	straightRedBan    = 3
	minInjuryBan      = 1
	maxInjuryBan      = 6
	fitnessCeiling    = 110.0
	minFatigueWeight  = 10.0
)

// Who is likely to be involved in each kind of event, by general position.
//
//nolint:gochecknoglobals // fixed tables
var (
	scorerWeights  = map[model.Position]float64{model.Forward: 6, model.Midfielder: 3, model.Defender: 1, model.Goalkeeper: 0.05}
	assistWeights  = map[model.Position]float64{model.Forward: 3, model.Midfielder: 5, model.Defender: 2, model.Goalkeeper: 0.2}
	ownGoalWeights = map[model.Position]float64{model.Defender: 5, model.Midfielder: 2, model.Goalkeeper: 1, model.Forward: 1}
	cardWeights    = map[model.Position]float64{model.Defender: 3, model.Midfielder: 3, model.Forward: 2, model.Goalkeeper: 0.5}
	injuryWeights  = map[model.Position]float64{model.Defender: 1, model.Midfielder: 1, model.Forward: 1, model.Goalkeeper: 1}
)

// game is the mutable state of one match. Only the clock goroutine touches it
// until the clock has finished.
type game struct {
	fixture  model.Fixture
	sides    [2]Side
	rng      *rand.Rand
	teams    [2]*substitution.Team
	tls      [2]*model.Timeline
	live     model.Score
	booked   [2]map[string]bool
	injured  [2][]string
	bans     []model.Ban
	observer Observer
}

func newGame(in Input, rng *rand.Rand, maxSubs int, observer Observer) *game {
	g := &game{
		fixture:  in.Fixture,
		sides:    [2]Side{in.Home, in.Away},
		rng:      rng,
		booked:   [2]map[string]bool{{}, {}},
		observer: observer,
	}
	for i, s := range g.sides {
		roster := make(map[string]model.Player, len(s.Players))
		for _, p := range s.Players {
			roster[p.ID] = p
		}
		g.teams[i] = substitution.New(s.Selection, roster, substitution.WithMaxSubstitutions(maxSubs))
	}
	return g
}

// starters returns the roster entries of side's starting eleven.
func (g *game) starters(side model.Side) []model.Player {
	t := g.teams[side]
	ids := t.OnPitch()
	out := make([]model.Player, 0, len(ids))
	for _, id := range ids {
		if p, ok := t.Player(id); ok {
			out = append(out, p)
		}
	}
	return out
}

// apply is the clock handler: it decides who was involved in e and applies
// its effect on lineups and the live score.
func (g *game) apply(e model.Event) model.Event {
	side := e.Side
	switch e.Type {
	case model.EventGoal, model.EventPenaltyGoal:
		scorer, ok := g.pick(side, scorerWeights, "")
		if !ok {
			e.Skipped = true
			break
		}
		e.Player = scorer
		if e.Type == model.EventGoal && dice.Chance(g.rng, assistProbability) {
			e.Assister, _ = g.pick(side, assistWeights, scorer)
		}
		g.live.Add(side)
	case model.EventPenaltyMiss:
		e.Player, e.Skipped = g.involve(side, scorerWeights)
	case model.EventOwnGoal:
		e.Player, e.Skipped = g.involve(side, ownGoalWeights)
		if !e.Skipped {
			g.live.Add(side.Other())
		}
	case model.EventYellowCard:
		e.Player, e.Skipped = g.involve(side, cardWeights)
		if e.Skipped {
			break
		}
		if g.booked[side][e.Player] {
			e.Type = model.EventRedCard
			e.SecondYellow = true
			g.sendOff(side, e)
			break
		}
		g.booked[side][e.Player] = true
	case model.EventRedCard:
		e.Player, e.Skipped = g.involve(side, cardWeights)
		if !e.Skipped {
			g.sendOff(side, e)
		}
	case model.EventInjury:
		e.Player, e.Skipped = g.involve(side, injuryWeights)
		if !e.Skipped {
			g.injured[side] = append(g.injured[side], e.Player)
			g.ban(side, e.Player, model.BanInjury, dice.Between(g.rng, minInjuryBan, maxInjuryBan))
		}
	case model.EventSubstitution:
		g.substitute(side, &e)
	}

	if e.Skipped {
		return e
	}
	metrics.RecordEventDispatched(string(e.Type))
	if g.observer != nil {
		g.observer(e, g.live)
	}
	return e
}

// involve picks the player for a single-player event and reports whether the
// event has to be skipped for lack of players.
func (g *game) involve(side model.Side, weights map[model.Position]float64) (string, bool) {
	id, ok := g.pick(side, weights, "")
	return id, !ok
}

func (g *game) sendOff(side model.Side, e model.Event) {
	team := g.teams[side]
	code, ok := team.SendOff(e.Player)
	if !ok {
		return
	}
	g.injured[side] = slices.DeleteFunc(g.injured[side], func(id string) bool { return id == e.Player })
	length := straightRedBan
	if e.SecondYellow {
		length = secondYellowBan
	}
	g.ban(side, e.Player, model.BanRedCard, length)
	if code == model.GK {
		team.KeeperSentOff(g.tls[side], e.Time)
	}
}

func (g *game) substitute(side model.Side, e *model.Event) {
	team := g.teams[side]
	off := e.PlayerOff
	if off == "" && e.Forced {
		// nobody left to replace: the injured player was sent off first
		if off = g.popInjured(side); off == "" {
			e.Skipped = true
			return
		}
	}
	if off == "" {
		off = g.tired(side)
	}
	swap, ok := team.Substitute(off)
	if !ok {
		e.Skipped = true
		if team.NeedsKeeper() {
			team.ForceIntoGoal()
		}
		return
	}
	e.PlayerOff = swap.Off
	e.PlayerOn = swap.On
	e.Player = swap.On
}

// popInjured returns the earliest injured player still on the pitch.
func (g *game) popInjured(side model.Side) string {
	for len(g.injured[side]) > 0 {
		id := g.injured[side][0]
		g.injured[side] = g.injured[side][1:]
		if _, on := g.teams[side].PositionOf(id); on {
			return id
		}
	}
	return ""
}

// tired picks an outfielder to take off, favouring the least fit.
func (g *game) tired(side model.Side) string {
	team := g.teams[side]
	var ids []string
	var weights []float64
	for _, id := range team.OnPitch() {
		if code, _ := team.PositionOf(id); code == model.GK {
			continue
		}
		p, _ := team.Player(id)
		ids = append(ids, id)
		weights = append(weights, max(fitnessCeiling-p.Fitness, minFatigueWeight))
	}
	if len(ids) == 0 {
		return ""
	}
	return dice.PickFloat(g.rng, ids, weights)
}

// pick draws an on-pitch player of side weighted by general position.
func (g *game) pick(side model.Side, weights map[model.Position]float64, exclude string) (string, bool) {
	team := g.teams[side]
	var ids []string
	var w []float64
	for _, id := range team.OnPitch() {
		if id == exclude {
			continue
		}
		p, _ := team.Player(id)
		ids = append(ids, id)
		w = append(w, weights[p.Position])
	}
	if len(ids) == 0 {
		return "", false
	}
	return dice.PickFloat(g.rng, ids, w), true
}

func (g *game) ban(side model.Side, playerID string, kind model.BanType, length int) {
	g.bans = append(g.bans, model.Ban{
		PlayerID:    playerID,
		TeamID:      g.sides[side].Team.ID,
		Type:        kind,
		Length:      length,
		Competition: g.fixture.LeagueID,
	})
}

// finish settles state the clock could not: a goal left empty because the
// keeper substitution never came.
func (g *game) finish() {
	for _, t := range g.teams {
		if t.NeedsKeeper() {
			t.ForceIntoGoal()
		}
	}
}
