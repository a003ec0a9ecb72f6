// Package outcome decides the result and final score of a match from the
// ability levels of the two sides.
package outcome

import (
	"math"
	"math/rand"

	"github.com/okian/matchday/internal/domain/dice"
	"github.com/okian/matchday/internal/domain/model"
)

// Default model configuration constants.
const (
	defaultHomeAdvantage = 5.0
	percent              = 100.0
)

// Verdict is the winner of a match.
type Verdict int

// Verdicts.
const (
	HomeWin Verdict = iota
	Draw
	AwayWin
)

func (v Verdict) String() string {
	switch v {
	case HomeWin:
		return "home_win"
	case AwayWin:
		return "away_win"
	default:
		return "draw"
	}
}

// Probabilities are the chances of each result, summing to 1.
type Probabilities struct {
	WinA float64
	Draw float64
	WinB float64
}

// Result is the decided outcome of a match.
type Result struct {
	Verdict Verdict
	Score   model.Score
	// Upset is set when the winner had the lower effective ability.
	Upset bool
	Odds  Probabilities
}

// Option applies a configuration option to the Model.
type Option func(*Model)

// WithHomeAdvantage sets the ability bonus applied to the home side.
func WithHomeAdvantage(bonus float64) Option {
	return func(m *Model) {
		if bonus >= 0 {
			m.homeAdvantage = bonus
		}
	}
}

// Model samples match outcomes. It is not safe for concurrent use; every
// match owns its own Model and random source.
type Model struct {
	rng           *rand.Rand
	homeAdvantage float64
}

// New creates a Model drawing from rng.
func New(rng *rand.Rand, opts ...Option) *Model {
	m := &Model{rng: rng, homeAdvantage: defaultHomeAdvantage}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Interpolate returns draw% and win% of the stronger side for an absolute
// ability gap, linearly interpolated between the control points. At a zero
// gap the non-draw share is split evenly, so the stronger side's win chance
// never drops below its loss chance.
func Interpolate(gap float64) (draw, win float64) {
	gap = math.Abs(gap)
	last := controlPoints[len(controlPoints)-1]
	if gap >= last.gap {
		return last.draw, last.win
	}
	for i := 1; i < len(controlPoints); i++ {
		hi := controlPoints[i]
		if gap > hi.gap {
			continue
		}
		lo := controlPoints[i-1]
		if lo.gap == 0 {
			lo.win = (percent - lo.draw) / 2
		}
		f := (gap - lo.gap) / (hi.gap - lo.gap)
		return lo.draw + f*(hi.draw-lo.draw), lo.win + f*(hi.win-lo.win)
	}
	return last.draw, last.win
}

// Odds returns the result probabilities for abilities a and b. The stronger
// side gets the interpolated win chance whichever side it is.
func Odds(a, b float64) Probabilities {
	draw, win := Interpolate(a - b)
	loss := percent - draw - win
	if a > b {
		return Probabilities{WinA: win / percent, Draw: draw / percent, WinB: loss / percent}
	}
	return Probabilities{WinA: loss / percent, Draw: draw / percent, WinB: win / percent}
}

// Decide samples the verdict and the final score. When homeAdvantage is set
// the configured bonus is added to the home ability first.
func (m *Model) Decide(home, away float64, homeAdvantage bool) Result {
	if homeAdvantage {
		home += m.homeAdvantage
	}
	odds := Odds(home, away)
	gap := math.Abs(home - away)

	u := m.rng.Float64()
	var res Result
	res.Odds = odds
	switch {
	case u < odds.WinA:
		res.Verdict = HomeWin
	case u < odds.WinA+odds.Draw:
		res.Verdict = Draw
	default:
		res.Verdict = AwayWin
	}

	if res.Verdict == Draw {
		g := m.pick(drawn)
		res.Score = model.Score{Home: g, Away: g}
		return res
	}

	winnerAbility, loserAbility := home, away
	if res.Verdict == AwayWin {
		winnerAbility, loserAbility = away, home
	}
	res.Upset = winnerAbility < loserAbility

	table := winningTable(gap)
	if res.Upset {
		table = restrained
	}
	won := m.pick(table)
	lost := m.pick(losing)
	for lost >= won {
		lost = m.pick(losing)
	}

	if res.Verdict == HomeWin {
		res.Score = model.Score{Home: won, Away: lost}
	} else {
		res.Score = model.Score{Home: lost, Away: won}
	}
	return res
}

// pick draws one value from a weighted table.
func (m *Model) pick(w weighted) int {
	return dice.Pick(m.rng, w.values, w.weights)
}
