// Package match runs one fixture end to end: outcome, timeline, clock-driven
// dispatch, ratings and the payload of storage mutations it implies.
package match

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/okian/matchday/internal/domain/clock"
	"github.com/okian/matchday/internal/domain/model"
	"github.com/okian/matchday/internal/domain/outcome"
	"github.com/okian/matchday/internal/domain/rating"
	"github.com/okian/matchday/internal/domain/timeline"
	"github.com/okian/matchday/pkg/logger"
	"github.com/okian/matchday/pkg/metrics"
)

// Default runner configuration constants.
const (
	defaultMaxSubstitutions  = 5
	defaultHomeAdvantage     = 5.0
	defaultInjuryProbability = 0.08
)

// Side is everything known about one team before kick-off.
type Side struct {
	Team      model.Team
	Players   []model.Player
	Selection model.Selection
	Shout     rating.Shout
}

// Input describes one fixture to simulate.
type Input struct {
	Fixture      model.Fixture
	Home         Side
	Away         Side
	Referee      model.Referee
	Seed         int64
	NeutralVenue bool
}

// Observer receives every dispatched event with the live score after it.
// It runs on the match clock goroutine.
type Observer func(e model.Event, score model.Score)

// Result is a simulated match.
type Result struct {
	FixtureID string
	Score     model.Score
	Outcome   outcome.Result
	Home      *model.Timeline
	Away      *model.Timeline
	Ratings   map[string]float64
	Stoppage  [2]int
	Payload   model.Payload
}

// Runner simulates fixtures. It holds configuration only and is safe for
// concurrent use; every Run owns its own state and random source.
type Runner struct {
	logger            logger.Logger
	maxSubs           int
	homeAdvantage     float64
	injuryProbability float64
	pace              time.Duration
	observer          Observer
}

// NewRunner creates a Runner.
func NewRunner(opts ...Option) *Runner {
	r := &Runner{
		logger:            logger.Get(),
		maxSubs:           defaultMaxSubstitutions,
		homeAdvantage:     defaultHomeAdvantage,
		injuryProbability: defaultInjuryProbability,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run simulates in to completion. A match cannot be cancelled once started;
// ctx only scopes logging.
func (r *Runner) Run(ctx context.Context, in Input) (*Result, error) {
	if err := validate(in); err != nil {
		return nil, fmt.Errorf("fixture %s: %w", in.Fixture.ID, err)
	}
	start := time.Now()
	rng := rand.New(rand.NewSource(in.Seed)) //nolint:gosec // simulation, not crypto

	g := newGame(in, rng, r.maxSubs, r.observer)
	decided := outcome.New(rng, outcome.WithHomeAdvantage(r.homeAdvantage)).
		Decide(Ability(g.starters(model.Home)), Ability(g.starters(model.Away)), !in.NeutralVenue)

	planned := timeline.New(rng,
		timeline.WithInjuryProbability(r.injuryProbability),
		timeline.WithMaxSubstitutions(r.maxSubs),
	).Generate(decided.Score, in.Referee.Severity)
	g.tls = [2]*model.Timeline{planned.Home, planned.Away}

	summary := clock.New(planned.Home, planned.Away, g.apply, clock.WithPace(r.pace)).Run()
	g.finish()

	ratings := g.rate()
	res := &Result{
		FixtureID: in.Fixture.ID,
		Score:     g.live,
		Outcome:   decided,
		Home:      planned.Home,
		Away:      planned.Away,
		Ratings:   ratings,
		Stoppage:  summary.Stoppage,
		Payload:   g.payload(ratings),
	}

	metrics.RecordStoppage(1, summary.Stoppage[0])
	metrics.RecordStoppage(2, summary.Stoppage[1])
	metrics.RecordMatchSimulated(time.Since(start))
	r.logger.Debug(ctx, "match simulated",
		logger.String("fixture_id", in.Fixture.ID),
		logger.Int("home_goals", res.Score.Home),
		logger.Int("away_goals", res.Score.Away),
		logger.Bool("upset", decided.Upset),
		logger.Int("events", summary.Dispatched),
		logger.Int("skipped", summary.Skipped),
	)
	return res, nil
}

func validate(in Input) error {
	if in.Home.Team.ID == in.Away.Team.ID {
		return ErrSameTeam
	}
	for _, s := range []Side{in.Home, in.Away} {
		if len(s.Selection.Lineup) == 0 {
			return fmt.Errorf("team %s: %w", s.Team.ID, ErrEmptyLineup)
		}
		known := make(map[string]bool, len(s.Players))
		for _, p := range s.Players {
			known[p.ID] = true
		}
		for _, id := range s.Selection.Lineup {
			if !known[id] {
				return fmt.Errorf("team %s player %s: %w", s.Team.ID, id, ErrUnknownPlayer)
			}
		}
		for _, id := range s.Selection.Bench {
			if !known[id] {
				return fmt.Errorf("team %s player %s: %w", s.Team.ID, id, ErrUnknownPlayer)
			}
		}
	}
	return nil
}

// rate computes every participant's rating once the clock has finished.
func (g *game) rate() map[string]float64 {
	out := make(map[string]float64)
	for _, side := range []model.Side{model.Home, model.Away} {
		events := g.tls[side].Persistable()
		for _, a := range g.teams[side].Appearances() {
			p, _ := g.teams[side].Player(a.PlayerID)
			out[a.PlayerID] = rating.Rate(g.rng, rating.Appearance{
				PlayerID:      a.PlayerID,
				Position:      p.Position,
				Result:        g.live.Result(side),
				GoalsConceded: g.live.Of(side.Other()),
				Events:        events,
				Shout:         g.sides[side].Shout,
			})
		}
	}
	return out
}
