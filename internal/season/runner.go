// Package season plays a league one matchday window at a time, either
// in-process against a generated league or against a running service.
package season

import (
	"context"
	"fmt"
	"time"

	"github.com/okian/matchday/internal/adapters/repository"
	service "github.com/okian/matchday/internal/app"
	"github.com/okian/matchday/internal/batch"
	"github.com/okian/matchday/internal/domain/model"
	"github.com/okian/matchday/internal/seed"
	"github.com/okian/matchday/pkg/logger"
)

// window returns the time range covering matchday md.
func (c *Config) window(md int) (time.Time, time.Time) {
	from := c.Start.Add(time.Duration(md-1) * c.Interval)
	return from, from.Add(c.Interval - time.Nanosecond)
}

// Run plays the configured matchdays and returns the final table.
func Run(ctx context.Context, cfg *Config) ([]Row, *Stats, error) {
	if cfg.BaseURL != "" {
		return runRemote(ctx, cfg)
	}
	return runLocal(ctx, cfg)
}

func runLocal(ctx context.Context, cfg *Config) ([]Row, *Stats, error) {
	log := logger.Get().Named("season")
	stats := &Stats{StartTime: time.Now()}

	sc := seed.Config{
		LeagueID:  cfg.LeagueID,
		Teams:     cfg.Teams,
		Referees:  cfg.Referees,
		UserTeams: 1,
		Start:     cfg.Start,
		Interval:  cfg.Interval,
		Seed:      cfg.Seed,
	}
	ds, err := seed.Generate(ctx, sc)
	if err != nil {
		return nil, nil, fmt.Errorf("generate league: %w", err)
	}

	var store repository.Store = repository.NewMemoryStore(repository.WithLogger(log))
	if cfg.DatabasePath != "" {
		if store, err = repository.OpenSQLStore(ctx, cfg.DatabasePath, repository.WithLogger(log)); err != nil {
			return nil, nil, fmt.Errorf("open league database: %w", err)
		}
	}
	teams, err := store.Teams(ctx, cfg.LeagueID)
	if err != nil {
		_ = store.Close()
		return nil, nil, fmt.Errorf("load league: %w", err)
	}
	if len(teams) == 0 {
		if err := store.Import(ctx, ds); err != nil {
			_ = store.Close()
			return nil, nil, fmt.Errorf("import league: %w", err)
		}
		teams = ds.Teams
	} else {
		log.Info(ctx, "resuming existing league", logger.Int("teams", len(teams)))
	}

	svc := service.New(
		service.WithStore(store),
		service.WithWorkerCount(cfg.Workers),
		service.WithSeed(cfg.Seed),
		service.WithLogger(log),
		service.WithBatchOptions(batch.WithProgress(func(p batch.Progress) {
			log.Debug(ctx, "chunk done",
				logger.String("batch_id", p.BatchID),
				logger.Int("chunk", p.Chunk),
				logger.Int("chunks", p.Chunks),
				logger.Int("done", p.Done),
				logger.Int("total", p.Total),
			)
		})),
	)
	if err := svc.Start(ctx); err != nil {
		_ = store.Close()
		return nil, nil, err
	}
	defer svc.Stop()

	last := seed.Matchdays(len(teams))
	if cfg.Matchdays > 0 && cfg.Matchdays < last {
		last = cfg.Matchdays
	}
	for md := 1; md <= last; md++ {
		from, to := cfg.window(md)
		res, err := svc.RunBatch(ctx, from, to)
		if err != nil {
			return nil, nil, fmt.Errorf("matchday %d: %w", md, err)
		}
		stats.add(res)
		log.Info(ctx, "matchday played",
			logger.Int("matchday", md),
			logger.Int("simulated", len(res.Simulated)),
			logger.Int("failed", len(res.Failed)),
		)
	}

	table, err := svc.Standings(ctx, cfg.LeagueID)
	if err != nil {
		return nil, nil, err
	}
	names := make(map[string]string, len(teams))
	for _, t := range teams {
		names[t.ID] = t.Name
	}
	stats.finish()
	return rows(table, names), stats, nil
}

func (s *Stats) add(res *batch.Result) {
	s.Matchdays++
	s.Simulated += len(res.Simulated)
	s.Failed += len(res.Failed)
	s.Narratives += len(res.Narratives)
	s.Bans += len(res.Payload.Bans) + len(res.Bans)
}

func (s *Stats) finish() {
	s.EndTime = time.Now()
	s.Duration = s.EndTime.Sub(s.StartTime)
}

func rows(table []model.TableRow, names map[string]string) []Row {
	out := make([]Row, len(table))
	for i, r := range table {
		name := names[r.TeamID]
		if name == "" {
			name = r.TeamID
		}
		out[i] = Row{
			Team: name, Played: r.Played, Wins: r.Wins, Draws: r.Draws, Losses: r.Losses,
			GoalsFor: r.GoalsFor, GoalsAgainst: r.GoalsAgainst, Points: r.Points,
		}
	}
	return out
}
