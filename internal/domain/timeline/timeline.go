// Package timeline generates the collision-free event timelines of a match
// from its final score and the referee's severity.
package timeline

import (
	"math/rand"

	"github.com/okian/matchday/internal/domain/dice"
	"github.com/okian/matchday/internal/domain/model"
)

// Default generator configuration constants.
const (
	defaultInjuryProbability  = 0.08
	defaultMaxSubstitutions   = 5
	defaultSecondHalfSubShare = 0.85
	defaultPenaltyConversion  = 0.78
	maxInjuriesPerSide        = 2
	forcedSubDelaySeconds     = 60
	lastSecond                = 59
)

type goalKind int

const (
	kindOpenPlay goalKind = iota
	kindPenalty
	kindOwnGoal
)

//nolint:gochecknoglobals // fixed distributions
var (
	yellowCounts = map[model.Severity][]int{
		model.SeverityLow:    {30, 35, 20, 10, 4, 1},
		model.SeverityMedium: {15, 28, 28, 18, 8, 3},
		model.SeverityHigh:   {6, 18, 28, 26, 15, 7},
	}
	redCounts = map[model.Severity][]int{
		model.SeverityLow:    {97, 3, 0},
		model.SeverityMedium: {94, 6, 0},
		model.SeverityHigh:   {89, 10, 1},
	}
	countValues       = []int{0, 1, 2, 3, 4, 5}
	substitutionCount = []int{3, 5, 12, 25, 30, 25}
	goalKinds         = []goalKind{kindOpenPlay, kindPenalty, kindOwnGoal}

	// second-half substitution minute segments and their weights
	subSegments = [][2]int{{46, 60}, {61, 75}, {76, 89}}
	subWeights  = []int{20, 35, 45}
)

// Option applies a configuration option to the Generator.
type Option func(*Generator)

// WithInjuryProbability sets the chance of each of the two injury draws per side.
func WithInjuryProbability(p float64) Option {
	return func(g *Generator) {
		if p >= 0 && p <= 1 {
			g.injuryProbability = p
		}
	}
}

// WithMaxSubstitutions caps the substitutions scheduled per side.
func WithMaxSubstitutions(n int) Option {
	return func(g *Generator) {
		if n >= 0 {
			g.maxSubstitutions = n
		}
	}
}

// WithSecondHalfSubShare sets the share of tactical substitutions made after the break.
func WithSecondHalfSubShare(share float64) Option {
	return func(g *Generator) {
		if share >= 0 && share <= 1 {
			g.secondHalfSubShare = share
		}
	}
}

// WithGoalTypeWeights sets the relative weights of open-play goals, penalties and own goals.
func WithGoalTypeWeights(openPlay, penalty, ownGoal int) Option {
	return func(g *Generator) {
		if openPlay >= 0 && penalty >= 0 && ownGoal >= 0 && openPlay+penalty+ownGoal > 0 {
			g.goalWeights = []int{openPlay, penalty, ownGoal}
		}
	}
}

// WithPenaltyConversion sets the probability that a penalty is scored.
func WithPenaltyConversion(p float64) Option {
	return func(g *Generator) {
		if p >= 0 && p <= 1 {
			g.penaltyConversion = p
		}
	}
}

// Generator produces timelines. It is not safe for concurrent use.
type Generator struct {
	rng                *rand.Rand
	injuryProbability  float64
	maxSubstitutions   int
	secondHalfSubShare float64
	goalWeights        []int
	penaltyConversion  float64
}

// New creates a Generator drawing from rng.
func New(rng *rand.Rand, opts ...Option) *Generator {
	g := &Generator{
		rng:                rng,
		injuryProbability:  defaultInjuryProbability,
		maxSubstitutions:   defaultMaxSubstitutions,
		secondHalfSubShare: defaultSecondHalfSubShare,
		goalWeights:        []int{85, 10, 5},
		penaltyConversion:  defaultPenaltyConversion,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Match holds both sides' timelines and the score they imply.
type Match struct {
	Home  *model.Timeline
	Away  *model.Timeline
	Score model.Score
}

// Of returns the timeline of side.
func (m *Match) Of(side model.Side) *model.Timeline {
	if side == model.Home {
		return m.Home
	}
	return m.Away
}

// Generate builds both timelines for a decided score. Missed penalties take
// their goal back, so the returned Score may be lower than the input.
func (g *Generator) Generate(score model.Score, severity model.Severity) *Match {
	m := &Match{
		Home:  model.NewTimeline(model.Home),
		Away:  model.NewTimeline(model.Away),
		Score: score,
	}
	for _, side := range []model.Side{model.Home, model.Away} {
		g.goals(m, side, score.Of(side))
	}
	for _, side := range []model.Side{model.Home, model.Away} {
		tl := m.Of(side)
		g.cards(tl, severity)
		injuries := g.injuries(tl)
		g.substitutions(tl, injuries)
	}
	return m
}

// goals writes one entry per goal of side. Own goals are committed by the
// opponent and therefore land in the opponent's timeline.
func (g *Generator) goals(m *Match, side model.Side, n int) {
	for i := 0; i < n; i++ {
		switch dice.Pick(g.rng, goalKinds, g.goalWeights) {
		case kindOpenPlay:
			m.Of(side).Insert(model.Event{Time: g.randomTime(), Type: model.EventGoal})
		case kindPenalty:
			if dice.Chance(g.rng, g.penaltyConversion) {
				m.Of(side).Insert(model.Event{Time: g.randomTime(), Type: model.EventPenaltyGoal})
				continue
			}
			m.Of(side).Insert(model.Event{Time: g.randomTime(), Type: model.EventPenaltyMiss})
			m.Score.Remove(side)
		case kindOwnGoal:
			m.Of(side.Other()).Insert(model.Event{Time: g.randomTime(), Type: model.EventOwnGoal})
		}
	}
}

func (g *Generator) cards(tl *model.Timeline, severity model.Severity) {
	yellows, ok := yellowCounts[severity]
	if !ok {
		yellows = yellowCounts[model.SeverityMedium]
	}
	reds, ok := redCounts[severity]
	if !ok {
		reds = redCounts[model.SeverityMedium]
	}
	for i := dice.Pick(g.rng, countValues, yellows); i > 0; i-- {
		tl.Insert(model.Event{Time: g.randomTime(), Type: model.EventYellowCard})
	}
	for i := dice.Pick(g.rng, countValues[:len(reds)], reds); i > 0; i-- {
		tl.Insert(model.Event{Time: g.randomTime(), Type: model.EventRedCard})
	}
}

// injuries draws and schedules injuries with their forced substitutions and
// returns how many were scheduled.
func (g *Generator) injuries(tl *model.Timeline) int {
	n := 0
	for i := 0; i < maxInjuriesPerSide && n < g.maxSubstitutions; i++ {
		if dice.Chance(g.rng, g.injuryProbability) {
			if _, _, ok := g.AddInjury(tl, g.randomTime()); ok {
				n++
			}
		}
	}
	return n
}

// AddInjury schedules an injury at (or after) at and the substitution that
// replaces the injured player one simulated minute later. It returns the
// times both events were stored at. When a stoppage-time injury leaves no
// free slot after it before the stoppage cap, the injury is dropped and ok
// is false.
func (g *Generator) AddInjury(tl *model.Timeline, at model.EventTime) (injury, sub model.EventTime, ok bool) {
	injury = tl.Insert(model.Event{Time: at, Type: model.EventInjury})
	pinned := injury.Advance(forcedSubDelaySeconds)
	if !injury.Extra {
		sub = tl.Insert(model.Event{Time: pinned, Type: model.EventSubstitution, Forced: true})
		return injury, sub, true
	}

	limit := model.EventTime{Minute: injury.Base() + model.MaxExtraOffset, Second: lastSecond, Extra: true}
	if limit.Less(pinned) {
		pinned = limit
	}
	sub, ok = slotAfter(tl, injury, pinned, limit)
	if !ok {
		tl.Remove(injury)
		return injury, model.EventTime{}, false
	}
	tl.Insert(model.Event{Time: sub, Type: model.EventSubstitution, Forced: true})
	return injury, sub, true
}

// slotAfter finds a free time after injury and no later than limit: first by
// probing from pinned, then by scanning every remaining second.
func slotAfter(tl *model.Timeline, injury, pinned, limit model.EventTime) (model.EventTime, bool) {
	for t := pinned; !limit.Less(t); t = t.Advance(model.CollisionStep) {
		if !tl.Has(t) {
			return t, true
		}
	}
	for t := injury.Advance(1); !limit.Less(t); t = t.Advance(1) {
		if !tl.Has(t) {
			return t, true
		}
	}
	return model.EventTime{}, false
}

// substitutions tops the forced substitutions up to the drawn count with
// tactical ones.
func (g *Generator) substitutions(tl *model.Timeline, forced int) {
	n := dice.Pick(g.rng, countValues, substitutionCount)
	if n < forced {
		n = forced
	}
	if n > g.maxSubstitutions {
		n = g.maxSubstitutions
	}
	for i := forced; i < n; i++ {
		tl.Insert(model.Event{Time: g.substitutionTime(), Type: model.EventSubstitution})
	}
}

// randomTime draws a minute in 1..90; the half boundaries become stoppage time.
func (g *Generator) randomTime() model.EventTime {
	minute := dice.Between(g.rng, 1, model.FullTime)
	second := dice.Between(g.rng, 0, lastSecond)
	if minute == model.HalfTime || minute == model.FullTime {
		return model.EventTime{
			Minute: minute + dice.Between(g.rng, 0, model.MaxExtraOffset),
			Second: second,
			Extra:  true,
		}
	}
	return model.EventTime{Minute: minute, Second: second}
}

func (g *Generator) substitutionTime() model.EventTime {
	second := dice.Between(g.rng, 0, lastSecond)
	if !dice.Chance(g.rng, g.secondHalfSubShare) {
		return model.EventTime{Minute: dice.Between(g.rng, 1, model.HalfTime-1), Second: second}
	}
	seg := dice.Pick(g.rng, subSegments, subWeights)
	return model.EventTime{Minute: dice.Between(g.rng, seg[0], seg[1]), Second: second}
}
