// Package service wires the league store, the batch orchestrator and the
// demo data into the dependencies required by the HTTP API.
package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/okian/matchday/internal/adapters/repository"
	"github.com/okian/matchday/internal/batch"
	"github.com/okian/matchday/internal/domain/dedupe"
	"github.com/okian/matchday/internal/domain/match"
	"github.com/okian/matchday/internal/domain/model"
	"github.com/okian/matchday/internal/seed"
	"github.com/okian/matchday/pkg/logger"
)

// ErrNotStarted is returned by operations that need a started service.
var ErrNotStarted = errors.New("service not started")

// Service implements the API dependencies for the league simulation.
type Service struct {
	mu sync.RWMutex

	// Core components
	store  repository.Store
	claims dedupe.Deduper
	orch   *batch.Orchestrator

	// Configuration
	workerCount  int
	databasePath string
	workerDir    string
	seed         int64
	pace         time.Duration
	runnerOpts   []match.Option
	batchOpts    []batch.Option
	demo         *seed.Config

	// State
	started   bool
	batches   int
	simulated int
	failed    int
	lastBatch string

	logger logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithWorkerCount sets the batch worker pool size. Zero keeps the default.
func WithWorkerCount(count int) Option {
	return func(s *Service) {
		if count > 0 {
			s.workerCount = count
		}
	}
}

// WithDatabasePath persists the league in a sqlite file. Without it the
// league lives in memory.
func WithDatabasePath(path, workerDir string) Option {
	return func(s *Service) {
		s.databasePath = path
		s.workerDir = workerDir
	}
}

// WithStore uses an already opened store. The service takes ownership.
func WithStore(store repository.Store) Option {
	return func(s *Service) {
		s.store = store
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithSeed fixes the base seed of every batch.
func WithSeed(seed int64) Option {
	return func(s *Service) {
		if seed != 0 {
			s.seed = seed
		}
	}
}

// WithLivePace sets the wall-clock delay per simulated second for single
// fixture runs.
func WithLivePace(d time.Duration) Option {
	return func(s *Service) {
		s.pace = d
	}
}

// WithRunnerOptions configures the match runner.
func WithRunnerOptions(opts ...match.Option) Option {
	return func(s *Service) {
		s.runnerOpts = append(s.runnerOpts, opts...)
	}
}

// WithBatchOptions passes extra options to the orchestrator.
func WithBatchOptions(opts ...batch.Option) Option {
	return func(s *Service) {
		s.batchOpts = append(s.batchOpts, opts...)
	}
}

// WithDemoLeague seeds cfg's league on start when the store has no teams for it.
func WithDemoLeague(cfg seed.Config) Option {
	return func(s *Service) {
		s.demo = &cfg
	}
}

// New constructs a new Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		seed:   time.Now().UnixNano(),
		logger: logger.Get().Named("service"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start opens the store, seeds the demo league if configured and builds
// the orchestrator.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}
	s.logger.Info(ctx, "starting matchday service")

	if s.store == nil {
		store, err := s.open(ctx)
		if err != nil {
			return err
		}
		s.store = store
	}
	if s.demo != nil {
		if err := s.seedDemo(ctx); err != nil {
			return err
		}
	}

	s.claims = dedupe.NewInMemoryDeduper()
	opts := []batch.Option{
		batch.WithLogger(s.logger),
		batch.WithWorkers(s.workerCount),
		batch.WithSeed(s.seed),
		batch.WithDeduper(s.claims),
		batch.WithRunnerOptions(s.runnerOpts...),
	}
	s.orch = batch.New(s.store, append(opts, s.batchOpts...)...)

	s.started = true
	s.logger.Info(ctx, "matchday service started",
		logger.Int("workers", s.workerCount),
		logger.String("database", s.databasePath),
	)
	return nil
}

func (s *Service) open(ctx context.Context) (repository.Store, error) {
	if s.databasePath == "" {
		s.logger.Info(ctx, "using in-memory store")
		return repository.NewMemoryStore(repository.WithLogger(s.logger)), nil
	}
	var ropts []repository.Option
	ropts = append(ropts, repository.WithLogger(s.logger))
	if s.workerDir != "" {
		ropts = append(ropts, repository.WithWorkerDir(s.workerDir))
	}
	store, err := repository.OpenSQLStore(ctx, s.databasePath, ropts...)
	if err != nil {
		return nil, fmt.Errorf("open store %s: %w", s.databasePath, err)
	}
	s.logger.Info(ctx, "using sqlite store", logger.String("path", s.databasePath))
	return store, nil
}

func (s *Service) seedDemo(ctx context.Context) error {
	teams, err := s.store.Teams(ctx, s.demo.LeagueID)
	if err != nil {
		return fmt.Errorf("check demo league: %w", err)
	}
	if len(teams) > 0 {
		return nil
	}
	ds, err := seed.Generate(ctx, *s.demo)
	if err != nil {
		return fmt.Errorf("generate demo league: %w", err)
	}
	if err := s.store.Import(ctx, ds); err != nil {
		return fmt.Errorf("import demo league: %w", err)
	}
	s.logger.Info(ctx, "seeded demo league",
		logger.String("league_id", s.demo.LeagueID),
		logger.Int("teams", len(ds.Teams)),
		logger.Int("fixtures", len(ds.Fixtures)),
	)
	return nil
}

// Stop closes the store.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}
	ctx := context.Background()
	s.logger.Info(ctx, "stopping matchday service")
	if err := s.store.Close(); err != nil {
		s.logger.Error(ctx, "closing store failed", logger.Error(err))
	}
	s.store = nil
	s.started = false
	s.logger.Info(ctx, "matchday service stopped")
}

func (s *Service) running() (repository.Store, *batch.Orchestrator, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.started {
		return nil, nil, ErrNotStarted
	}
	return s.store, s.orch, nil
}

// RunBatch simulates every unplayed fixture dated within [from, to].
func (s *Service) RunBatch(ctx context.Context, from, to time.Time) (*batch.Result, error) {
	_, orch, err := s.running()
	if err != nil {
		return nil, err
	}
	res, err := orch.Run(ctx, from, to)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	s.batches++
	s.simulated += len(res.Simulated)
	s.failed += len(res.Failed)
	s.lastBatch = res.BatchID
	s.mu.Unlock()
	return res, nil
}

// SimulateFixture plays one fixture at the configured live pace.
func (s *Service) SimulateFixture(ctx context.Context, fixtureID string) (*match.Result, error) {
	_, orch, err := s.running()
	if err != nil {
		return nil, err
	}
	played, _, err := orch.SimulateOne(ctx, fixtureID, batch.WithLivePace(s.pace))
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	s.simulated++
	s.mu.Unlock()
	return played, nil
}

// Standings returns the current table of a league.
func (s *Service) Standings(ctx context.Context, leagueID string) ([]model.TableRow, error) {
	store, _, err := s.running()
	if err != nil {
		return nil, err
	}
	return store.Standings(ctx, leagueID)
}

// History returns the matchday snapshots of a league.
func (s *Service) History(ctx context.Context, leagueID string) ([]model.Snapshot, error) {
	store, _, err := s.running()
	if err != nil {
		return nil, err
	}
	return store.History(ctx, leagueID)
}

// Fixture returns one fixture.
func (s *Service) Fixture(ctx context.Context, id string) (model.Fixture, error) {
	store, _, err := s.running()
	if err != nil {
		return model.Fixture{}, err
	}
	return store.Fixture(ctx, id)
}

// Events returns the persisted events of a match.
func (s *Service) Events(ctx context.Context, matchID string) ([]model.EventRow, error) {
	store, _, err := s.running()
	if err != nil {
		return nil, err
	}
	return store.Events(ctx, matchID)
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]any {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := map[string]any{
		"started":           s.started,
		"workerCount":       s.workerCount,
		"batches":           s.batches,
		"fixturesSimulated": s.simulated,
		"fixturesFailed":    s.failed,
		"lastBatch":         s.lastBatch,
	}
	if s.claims != nil {
		stats["fixturesInFlight"] = s.claims.Size()
	}
	return stats
}
