package batch

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/okian/matchday/internal/adapters/mq/queue"
	"github.com/okian/matchday/internal/adapters/mq/worker"
	"github.com/okian/matchday/internal/domain/match"
	"github.com/okian/matchday/internal/domain/rating"
	"github.com/okian/matchday/pkg/logger"
)

// OneOption configures SimulateOne.
type OneOption func(*oneConfig)

type oneConfig struct {
	shouts   [2]rating.Shout
	observer match.Observer
	pace     time.Duration
	seed     *int64
}

// WithShouts sets the managers' touchline shouts for the home and away side.
func WithShouts(home, away rating.Shout) OneOption {
	return func(c *oneConfig) {
		c.shouts = [2]rating.Shout{home, away}
	}
}

// WithObserver streams every dispatched event as it happens.
func WithObserver(fn match.Observer) OneOption {
	return func(c *oneConfig) {
		c.observer = fn
	}
}

// WithLivePace sleeps d per simulated second so the match can be followed.
func WithLivePace(d time.Duration) OneOption {
	return func(c *oneConfig) {
		c.pace = d
	}
}

// WithFixtureSeed overrides the derived seed.
func WithFixtureSeed(seed int64) OneOption {
	return func(c *oneConfig) {
		c.seed = &seed
	}
}

// SimulateOne plays a single fixture against a private store copy and
// commits it, then applies the same league updates as a batch.
func (o *Orchestrator) SimulateOne(ctx context.Context, fixtureID string, opts ...OneOption) (*match.Result, *Result, error) {
	var cfg oneConfig
	for _, opt := range opts {
		opt(&cfg)
	}
	start := time.Now()

	if o.claims.SeenAndRecord(ctx, fixtureID) {
		return nil, nil, fmt.Errorf("fixture %s: %w", fixtureID, ErrFixtureBusy)
	}
	defer o.claims.Unrecord(context.WithoutCancel(ctx), fixtureID)

	c, err := o.store.BeginCopy(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("open copy: %w", err)
	}
	committed := false
	defer func() {
		if !committed {
			if err := o.store.DiscardCopy(context.WithoutCancel(ctx), c); err != nil {
				o.logger.Error(ctx, "discarding copy failed", logger.String("copy_id", c.ID()), logger.Error(err))
			}
		}
	}()

	f, err := c.Fixture(ctx, fixtureID)
	if err != nil {
		return nil, nil, err
	}
	if f.Played {
		return nil, nil, fmt.Errorf("fixture %s: %w", fixtureID, ErrFixturePlayed)
	}
	seed := seedFor(o.seed, f.ID)
	if cfg.seed != nil {
		seed = *cfg.seed
	}

	var extra []match.Option
	if cfg.observer != nil {
		extra = append(extra, match.WithObserver(cfg.observer))
	}
	if cfg.pace > 0 {
		extra = append(extra, match.WithPace(cfg.pace))
	}
	sim := o.simulator(extra...)
	sim.shouts = cfg.shouts

	played, err := sim.run(ctx, c, f, seed)
	if err != nil {
		return nil, nil, err
	}
	if err := c.Write(ctx, played.Payload); err != nil {
		return nil, nil, fmt.Errorf("write copy: %w", err)
	}
	committed = true
	if err := o.store.CommitCopy(ctx, c); err != nil {
		return nil, nil, fmt.Errorf("commit copy: %w", err)
	}

	res := &Result{BatchID: uuid.NewString(), Simulated: []string{f.ID}, Payload: played.Payload}
	done := []worker.Outcome{{Task: queue.Task{BatchID: res.BatchID, Fixture: f, Seed: seed}, Payload: played.Payload}}
	if err := o.settle(ctx, done, res); err != nil {
		return played, nil, err
	}
	res.Duration = time.Since(start)
	return played, res, nil
}
