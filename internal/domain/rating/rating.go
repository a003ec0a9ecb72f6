// Package rating turns a player's match events and role into a performance
// rating between 0 and 10.
package rating

import (
	"math"
	"math/rand"

	"github.com/okian/matchday/internal/domain/dice"
	"github.com/okian/matchday/internal/domain/model"
)

// Rating bounds and bases.
const (
	Min       = 0.0
	Max       = 10.0
	BaseWin   = 7.0
	BaseDraw  = 6.5
	BaseLoss  = 6.0
	ShoutStep = 0.5
)

// Shout is a manager's touchline intervention applied to a whole side.
type Shout int

// Shouts.
const (
	ShoutNone Shout = iota
	ShoutEncourage
	ShoutCriticise
)

// Delta returns the rating change a shout applies.
func (s Shout) Delta() float64 {
	switch s {
	case ShoutEncourage:
		return ShoutStep
	case ShoutCriticise:
		return -ShoutStep
	default:
		return 0
	}
}

//nolint:gochecknoglobals // fixed tables
var (
	eventDeltas = map[model.EventType][]float64{
		model.EventGoal:        {0.6, 0.8, 1.0, 1.2},
		model.EventPenaltyGoal: {0.4, 0.5, 0.6},
		model.EventPenaltyMiss: {-0.8, -0.6, -0.5},
		model.EventYellowCard:  {-0.3, -0.2, -0.1},
		model.EventRedCard:     {-1.5, -1.2, -1.0},
		model.EventOwnGoal:     {-1.0, -0.8, -0.6},
	}
	assistDeltas = []float64{0.3, 0.4, 0.5, 0.6}

	cleanDeltas    = []float64{0.2, 0.4, 0.6, 0.8}  // conceded <= 1
	leakyDeltas    = []float64{-0.4, -0.2, 0, 0.2}  // conceded <= 3
	collapseDeltas = []float64{-1.2, -1.0, -0.8}    // conceded > 3
	neutralDeltas  = []float64{-0.3, -0.1, 0, 0.1, 0.3}
)

// Appearance is everything the engine needs to rate one player.
type Appearance struct {
	PlayerID string
	Position model.Position
	// Result is +1 for a win, 0 for a draw and -1 for a loss.
	Result        int
	GoalsConceded int
	// Events are the persisted events of the player's own side.
	Events []model.Event
	Shout  Shout
}

// Base returns the starting rating for a result.
func Base(result int) float64 {
	switch {
	case result > 0:
		return BaseWin
	case result < 0:
		return BaseLoss
	default:
		return BaseDraw
	}
}

// Rate returns the rating of a. It depends only on a and the draws made from rng.
func Rate(rng *rand.Rand, a Appearance) float64 {
	r := Base(a.Result)
	contributed := false
	for _, e := range a.Events {
		if e.Player == a.PlayerID {
			if deltas, ok := eventDeltas[e.Type]; ok {
				r += dice.OneOf(rng, deltas)
			}
			if e.Type.Scores() {
				contributed = true
			}
		}
		if e.Assister != "" && e.Assister == a.PlayerID {
			r += dice.OneOf(rng, assistDeltas)
			contributed = true
		}
	}
	if !contributed {
		r += dice.OneOf(rng, positional(a.Position, a.GoalsConceded))
	}
	r += a.Shout.Delta()
	return math.Round(Clamp(r)*100) / 100
}

func positional(pos model.Position, conceded int) []float64 {
	if pos != model.Goalkeeper && pos != model.Defender {
		return neutralDeltas
	}
	switch {
	case conceded <= 1:
		return cleanDeltas
	case conceded <= 3:
		return leakyDeltas
	default:
		return collapseDeltas
	}
}

// Clamp bounds r to [Min, Max].
func Clamp(r float64) float64 {
	return math.Max(Min, math.Min(Max, r))
}
