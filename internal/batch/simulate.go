package batch

import (
	"context"
	"fmt"
	"hash/fnv"

	"github.com/okian/matchday/internal/adapters/mq/queue"
	"github.com/okian/matchday/internal/adapters/repository"
	"github.com/okian/matchday/internal/domain/match"
	"github.com/okian/matchday/internal/domain/model"
	"github.com/okian/matchday/internal/domain/rating"
	"github.com/okian/matchday/internal/lineup"
)

// seedFor derives a fixture's seed so reruns of the same fixture with the
// same base seed are identical whatever worker picks them up.
func seedFor(base int64, fixtureID string) int64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(fixtureID))
	return base ^ int64(h.Sum64()) //nolint:gosec // wrap-around is fine for a seed
}

// simulator loads a fixture's inputs from a store copy and runs it.
type simulator struct {
	runner   *match.Runner
	selector *lineup.Selector
	shouts   [2]rating.Shout
}

func (s *simulator) Simulate(ctx context.Context, src repository.Reader, t queue.Task) (model.Payload, error) { //nolint:gocritic // hugeParam: Task matches the worker contract
	res, err := s.run(ctx, src, t.Fixture, t.Seed)
	if err != nil {
		return model.Payload{}, err
	}
	return res.Payload, nil
}

func (s *simulator) run(ctx context.Context, src repository.Reader, f model.Fixture, seed int64) (*match.Result, error) {
	in, err := s.input(ctx, src, f, seed)
	if err != nil {
		return nil, err
	}
	return s.runner.Run(ctx, in)
}

func (s *simulator) input(ctx context.Context, src repository.Reader, f model.Fixture, seed int64) (match.Input, error) {
	ref, err := src.Referee(ctx, f.RefereeID)
	if err != nil {
		return match.Input{}, fmt.Errorf("fixture %s: %w", f.ID, err)
	}
	home, err := s.side(ctx, src, f.HomeID)
	if err != nil {
		return match.Input{}, fmt.Errorf("fixture %s: %w", f.ID, err)
	}
	away, err := s.side(ctx, src, f.AwayID)
	if err != nil {
		return match.Input{}, fmt.Errorf("fixture %s: %w", f.ID, err)
	}
	home.Shout, away.Shout = s.shouts[model.Home], s.shouts[model.Away]
	return match.Input{Fixture: f, Home: home, Away: away, Referee: ref, Seed: seed}, nil
}

func (s *simulator) side(ctx context.Context, src repository.Reader, teamID string) (match.Side, error) {
	team, err := src.Team(ctx, teamID)
	if err != nil {
		return match.Side{}, err
	}
	players, err := src.Players(ctx, teamID)
	if err != nil {
		return match.Side{}, err
	}
	bans, err := src.Bans(ctx, teamID)
	if err != nil {
		return match.Side{}, err
	}
	sel, err := s.selector.Select(players, bans)
	if err != nil {
		return match.Side{}, fmt.Errorf("team %s: %w", teamID, err)
	}
	return match.Side{Team: team, Players: players, Selection: sel}, nil
}
