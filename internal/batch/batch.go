// Package batch simulates every unplayed fixture in a time window in
// parallel, pools the payloads and applies the league-level consequences:
// standings, history snapshots, accumulation bans and narratives.
package batch

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sort"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/okian/matchday/internal/adapters/mq/queue"
	"github.com/okian/matchday/internal/adapters/mq/worker"
	"github.com/okian/matchday/internal/adapters/repository"
	"github.com/okian/matchday/internal/domain/dedupe"
	"github.com/okian/matchday/internal/domain/match"
	"github.com/okian/matchday/internal/domain/model"
	"github.com/okian/matchday/internal/domain/standings"
	"github.com/okian/matchday/internal/lineup"
	"github.com/okian/matchday/pkg/logger"
	"github.com/okian/matchday/pkg/metrics"
)

// Default orchestration constants.
const (
	defaultYellowThreshold   = 5
	defaultNarrativeMatchday = 5
	defaultRelegationSlots   = 3
	accumulationBanLength    = 1
)

// Progress is reported after each chunk completes.
type Progress struct {
	BatchID string
	Chunk   int
	Chunks  int
	Done    int
	Total   int
	Failed  int
}

// Failure is a fixture that produced no payload.
type Failure struct {
	FixtureID string
	Err       error
}

// Result summarises a batch.
type Result struct {
	BatchID string
	// Simulated lists fixtures whose payload was persisted, sorted.
	Simulated []string
	Failed    []Failure
	// Busy lists fixtures skipped because another batch holds them.
	Busy       []string
	Payload    model.Payload
	Standings  map[string][]model.TableRow
	Snapshots  []model.Snapshot
	Narratives []standings.Narrative
	// Bans holds the accumulation bans issued after the batch.
	Bans     []model.Ban
	Duration time.Duration
}

// Orchestrator runs batches against a store.
type Orchestrator struct {
	store      repository.Store
	logger     logger.Logger
	workers    int
	seed       int64
	runnerOpts []match.Option
	selector   *lineup.Selector
	claims     dedupe.Deduper
	notifier   Notifier
	progress   func(Progress)

	yellowThreshold   int
	narrativeMatchday int
	relegationSlots   int
}

// New creates an Orchestrator over store.
func New(store repository.Store, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		store:             store,
		logger:            logger.Get().Named("batch"),
		workers:           max(runtime.NumCPU()-1, 1),
		seed:              time.Now().UnixNano(),
		selector:          lineup.NewSelector(),
		claims:            dedupe.NewInMemoryDeduper(),
		yellowThreshold:   defaultYellowThreshold,
		narrativeMatchday: defaultNarrativeMatchday,
		relegationSlots:   defaultRelegationSlots,
	}
	for _, opt := range opts {
		opt(o)
	}
	if o.notifier == nil {
		o.notifier = NewLogNotifier(o.logger)
	}
	return o
}

func (o *Orchestrator) simulator(extra ...match.Option) *simulator {
	opts := append([]match.Option{match.WithLogger(o.logger)}, o.runnerOpts...)
	return &simulator{
		runner:   match.NewRunner(append(opts, extra...)...),
		selector: o.selector,
	}
}

// chunk splits fixtures into consecutive groups of size.
func chunk(fixtures []model.Fixture, size int) [][]model.Fixture {
	var out [][]model.Fixture
	for size < len(fixtures) {
		out = append(out, fixtures[:size:size])
		fixtures = fixtures[size:]
	}
	if len(fixtures) > 0 {
		out = append(out, fixtures)
	}
	return out
}

// claim returns the unplayed fixtures this batch now owns, each once.
func (o *Orchestrator) claim(ctx context.Context, fixtures []model.Fixture, res *Result) []model.Fixture {
	seen := make(map[string]bool, len(fixtures))
	var out []model.Fixture
	for _, f := range fixtures {
		if f.Played || seen[f.ID] {
			continue
		}
		seen[f.ID] = true
		if o.claims.SeenAndRecord(ctx, f.ID) {
			res.Busy = append(res.Busy, f.ID)
			continue
		}
		out = append(out, f)
	}
	return out
}

func (o *Orchestrator) release(ctx context.Context, fixtures []model.Fixture) {
	for _, f := range fixtures {
		o.claims.Unrecord(ctx, f.ID)
	}
}

// Run simulates every unplayed fixture dated within [from, to]. Fixtures are
// played one matchday at a time: each matchday is written and settled before
// the next one starts, so bans, injuries and morale carry over inside the
// window. Individual fixture failures are reported in the result. An error
// means the failing matchday and every later one were not persisted.
func (o *Orchestrator) Run(ctx context.Context, from, to time.Time) (*Result, error) {
	start := time.Now()
	res := &Result{BatchID: uuid.NewString()}
	log := o.logger.With(logger.String("batch_id", res.BatchID))

	all, err := o.store.FixturesBetween(ctx, from, to)
	if err != nil {
		return nil, fmt.Errorf("load fixtures: %w", err)
	}
	fixtures := o.claim(ctx, all, res)
	defer o.release(context.WithoutCancel(ctx), fixtures)

	if len(fixtures) == 0 {
		log.Info(ctx, "no fixtures to simulate",
			logger.String("from", from.Format(time.RFC3339)),
			logger.String("to", to.Format(time.RFC3339)),
			logger.Int("busy", len(res.Busy)),
		)
		res.Duration = time.Since(start)
		return res, nil
	}

	waves := matchdays(fixtures)
	t := &tally{total: len(fixtures)}
	for _, w := range waves {
		t.chunks += len(chunk(w, min(len(w), o.workers)))
	}
	log.Info(ctx, "batch started",
		logger.Int("fixtures", len(fixtures)),
		logger.Int("matchdays", len(waves)),
		logger.Int("workers", min(len(fixtures), o.workers)),
		logger.Int("chunks", t.chunks),
	)

	for _, w := range waves {
		if err := o.runWave(ctx, res, w, t); err != nil {
			return nil, err
		}
	}
	sort.Strings(res.Simulated)
	sort.Slice(res.Failed, func(i, j int) bool { return res.Failed[i].FixtureID < res.Failed[j].FixtureID })

	res.Duration = time.Since(start)
	metrics.RecordBatch(res.Duration, len(res.Simulated), res.Payload.Rows())
	log.Info(ctx, "batch finished",
		logger.Int("simulated", len(res.Simulated)),
		logger.Int("failed", len(res.Failed)),
		logger.Int("rows", res.Payload.Rows()),
		logger.Duration("duration", res.Duration),
	)
	return res, nil
}

// matchdays groups fixtures by matchday, earliest first.
func matchdays(fixtures []model.Fixture) [][]model.Fixture {
	byDay := make(map[int][]model.Fixture)
	for _, f := range fixtures {
		byDay[f.Matchday] = append(byDay[f.Matchday], f)
	}
	days := make([]int, 0, len(byDay))
	for md := range byDay {
		days = append(days, md)
	}
	sort.Ints(days)
	out := make([][]model.Fixture, len(days))
	for i, md := range days {
		out[i] = byDay[md]
	}
	return out
}

// runWave plays one matchday on fresh store copies, writes its pooled
// payload and settles it, then folds it into res.
func (o *Orchestrator) runWave(ctx context.Context, res *Result, fixtures []model.Fixture, t *tally) error {
	size := min(len(fixtures), o.workers)
	outcomes, err := o.execute(ctx, res.BatchID, chunk(fixtures, size), size, o.simulator(), t)
	if err != nil {
		metrics.RecordErrorByComponent("batch", "execute")
		return err
	}

	wave := &Result{BatchID: res.BatchID}
	done := o.collect(ctx, outcomes, wave)
	wave.Payload = pool(done)
	if err := o.store.Write(ctx, wave.Payload); err != nil {
		metrics.RecordErrorByComponent("batch", "write")
		return fmt.Errorf("write pooled payload: %w", err)
	}
	if err := o.settle(ctx, done, wave); err != nil {
		return err
	}
	res.absorb(wave)
	return nil
}

func (r *Result) absorb(w *Result) {
	r.Simulated = append(r.Simulated, w.Simulated...)
	r.Failed = append(r.Failed, w.Failed...)
	r.Payload.Merge(w.Payload)
	if len(w.Standings) > 0 && r.Standings == nil {
		r.Standings = make(map[string][]model.TableRow, len(w.Standings))
	}
	for id, rows := range w.Standings {
		r.Standings[id] = rows
	}
	r.Snapshots = append(r.Snapshots, w.Snapshots...)
	r.Narratives = append(r.Narratives, w.Narratives...)
	r.Bans = append(r.Bans, w.Bans...)
}

// tally tracks progress across every matchday of a batch.
type tally struct {
	chunk, chunks int
	done, total   int
	failed        int
}

// execute feeds chunks to a worker pool one at a time and gathers every
// outcome. Each worker opens its store copy once for the pool's lifetime.
func (o *Orchestrator) execute(ctx context.Context, batchID string, chunks [][]model.Fixture, size int, sim worker.Simulator, t *tally) ([]worker.Outcome, error) {
	q := queue.NewInMemoryQueue(queue.WithCapacity(size))
	results := make(chan worker.Outcome, size)
	p := worker.NewPool(size, q, o.store, sim, results, worker.WithLogger(o.logger))

	total := 0
	for _, c := range chunks {
		total += len(c)
	}
	outcomes := make([]worker.Outcome, 0, total)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return p.Run(gctx) })
	g.Go(func() error {
		defer func() { _ = q.Close() }()
		for _, c := range chunks {
			if err := gctx.Err(); err != nil {
				return err
			}
			for _, f := range c {
				task := queue.Task{BatchID: batchID, Chunk: t.chunk, Fixture: f, Seed: seedFor(o.seed, f.ID)}
				if !q.Enqueue(gctx, task) {
					if gctx.Err() != nil {
						return gctx.Err()
					}
					return fmt.Errorf("fixture %s: %w", f.ID, queue.ErrRejected)
				}
			}
			for range c {
				select {
				case out := <-results:
					if out.Err != nil {
						t.failed++
					}
					outcomes = append(outcomes, out)
				case <-gctx.Done():
					return gctx.Err()
				}
			}
			t.chunk++
			t.done += len(c)
			if o.progress != nil {
				o.progress(Progress{
					BatchID: batchID, Chunk: t.chunk, Chunks: t.chunks,
					Done: t.done, Total: t.total, Failed: t.failed,
				})
			}
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil, fmt.Errorf("batch %s cancelled: %w", batchID, err)
		}
		return nil, fmt.Errorf("batch %s: %w", batchID, err)
	}
	return outcomes, nil
}

// collect splits outcomes into failures and successes, sorted by fixture id.
func (o *Orchestrator) collect(ctx context.Context, outcomes []worker.Outcome, res *Result) []worker.Outcome {
	var done []worker.Outcome
	for _, out := range outcomes {
		if out.Err != nil {
			metrics.RecordMatchFailed("simulation")
			res.Failed = append(res.Failed, Failure{FixtureID: out.Task.Fixture.ID, Err: out.Err})
			continue
		}
		done = append(done, out)
	}
	sort.Slice(done, func(i, j int) bool { return done[i].Task.Fixture.ID < done[j].Task.Fixture.ID })
	sort.Slice(res.Failed, func(i, j int) bool { return res.Failed[i].FixtureID < res.Failed[j].FixtureID })
	for _, out := range done {
		res.Simulated = append(res.Simulated, out.Task.Fixture.ID)
	}
	if len(res.Failed) > 0 {
		o.logger.Warn(ctx, "fixtures failed and were not persisted",
			logger.String("batch_id", res.BatchID),
			logger.Int("failed", len(res.Failed)),
		)
	}
	return done
}

// pool concatenates the payloads of done.
func pool(done []worker.Outcome) model.Payload {
	payloads := make([]model.Payload, len(done))
	for i, out := range done {
		payloads[i] = out.Payload
	}
	return model.Pool(payloads...)
}
