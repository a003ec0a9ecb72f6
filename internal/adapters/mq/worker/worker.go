package worker

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/okian/matchday/internal/adapters/mq/queue"
	"github.com/okian/matchday/internal/adapters/repository"
	"github.com/okian/matchday/internal/domain/model"
	"github.com/okian/matchday/pkg/logger"
	"github.com/okian/matchday/pkg/metrics"
)

// ErrPanic marks a simulation that panicked.
var ErrPanic = errors.New("simulation panicked")

// Simulator turns one task into a payload, reading whatever it needs from src.
type Simulator interface {
	Simulate(ctx context.Context, src repository.Reader, t queue.Task) (model.Payload, error)
}

// SimulatorFunc adapts a function to Simulator.
type SimulatorFunc func(ctx context.Context, src repository.Reader, t queue.Task) (model.Payload, error)

// Simulate calls f.
func (f SimulatorFunc) Simulate(ctx context.Context, src repository.Reader, t queue.Task) (model.Payload, error) {
	return f(ctx, src, t)
}

// Copier hands out private store copies.
type Copier interface {
	BeginCopy(ctx context.Context) (repository.Copy, error)
	DiscardCopy(ctx context.Context, c repository.Copy) error
}

// Queue defines how workers receive tasks.
type Queue interface {
	Dequeue(ctx context.Context) <-chan queue.Task
}

// Outcome is the result of one task. Err is set when the fixture produced
// no payload.
type Outcome struct {
	Task    queue.Task
	Worker  string
	Payload model.Payload
	Err     error
}

// InMemoryWorker opens one store copy, simulates tasks until the queue is
// drained and discards the copy on the way out.
type InMemoryWorker struct {
	queue   Queue
	copier  Copier
	sim     Simulator
	results chan<- Outcome
	name    string

	shutdown     chan struct{}
	shutdownOnce sync.Once
	done         chan struct{}

	logger logger.Logger
}

// NewInMemoryWorker creates a new worker with configuration options.
func NewInMemoryWorker(q Queue, copier Copier, sim Simulator, results chan<- Outcome, opts ...Option) *InMemoryWorker {
	w := &InMemoryWorker{
		queue:    q,
		copier:   copier,
		sim:      sim,
		results:  results,
		name:     "worker",
		shutdown: make(chan struct{}),
		done:     make(chan struct{}),
		logger:   logger.Get().Named("worker"),
	}
	for _, opt := range opts {
		opt(w)
	}
	if w.name != "worker" {
		w.logger = w.logger.Named(w.name)
	}
	return w
}

// Run processes tasks until the queue closes, ctx is cancelled or Shutdown is
// called. It fails only when the store copy cannot be opened.
func (w *InMemoryWorker) Run(ctx context.Context) error {
	defer close(w.done)

	c, err := w.copier.BeginCopy(ctx)
	if err != nil {
		metrics.RecordWorkerError("copy")
		return fmt.Errorf("%s: open copy: %w", w.name, err)
	}
	defer func() {
		// cleanup must survive cancellation
		if err := w.copier.DiscardCopy(context.WithoutCancel(ctx), c); err != nil {
			w.logger.Error(ctx, "discarding copy failed", logger.String("copy_id", c.ID()), logger.Error(err))
		}
	}()
	w.logger.Debug(ctx, "worker started", logger.String("copy_id", c.ID()))

	tasks := w.queue.Dequeue(ctx)
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-w.shutdown:
			return nil
		case t, ok := <-tasks:
			if !ok {
				return nil
			}
			o := w.process(ctx, c, t)
			select {
			case w.results <- o:
			case <-ctx.Done():
				return nil
			}
		}
	}
}

// Shutdown stops the worker after its current task.
func (w *InMemoryWorker) Shutdown(ctx context.Context) error {
	w.shutdownOnce.Do(func() { close(w.shutdown) })
	select {
	case <-w.done:
		return nil
	case <-ctx.Done():
		w.logger.Warn(ctx, "shutdown timed out")
		return fmt.Errorf("shutdown timed out: %w", ctx.Err())
	}
}

// process runs one task. A panic loses only this fixture.
func (w *InMemoryWorker) process(ctx context.Context, src repository.Reader, t queue.Task) (o Outcome) { //nolint:gocritic // hugeParam: Task is passed by value for channel semantics
	start := time.Now()
	o = Outcome{Task: t, Worker: w.name}
	defer func() {
		if r := recover(); r != nil {
			o.Payload = model.Payload{}
			o.Err = fmt.Errorf("%w: %v", ErrPanic, r)
		}
		metrics.RecordWorkerProcessingLatency(time.Since(start))
		if o.Err != nil {
			reason := "simulation"
			if errors.Is(o.Err, ErrPanic) {
				reason = "panic"
			}
			metrics.RecordWorkerError(reason)
			w.logger.Error(ctx, "fixture failed",
				logger.String("fixture_id", t.Fixture.ID),
				logger.Error(o.Err),
			)
		}
	}()
	o.Payload, o.Err = w.sim.Simulate(ctx, src, t)
	return o
}

// Pool runs a fixed set of workers over one queue.
type Pool struct {
	workers []*InMemoryWorker
	logger  logger.Logger
}

// NewPool creates a pool of n workers (at least one).
func NewPool(n int, q Queue, copier Copier, sim Simulator, results chan<- Outcome, opts ...Option) *Pool {
	if n < 1 {
		n = 1
	}
	p := &Pool{
		workers: make([]*InMemoryWorker, n),
		logger:  logger.Get().Named("worker-pool"),
	}
	for i := range p.workers {
		wopts := append([]Option{WithName("worker-" + strconv.Itoa(i))}, opts...)
		p.workers[i] = NewInMemoryWorker(q, copier, sim, results, wopts...)
	}
	return p
}

// Size returns the number of workers.
func (p *Pool) Size() int { return len(p.workers) }

// Run starts every worker and blocks until all have returned. The first
// worker error cancels the others.
func (p *Pool) Run(ctx context.Context) error {
	metrics.UpdateWorkerActiveCount(len(p.workers))
	defer metrics.UpdateWorkerActiveCount(0)

	g, gctx := errgroup.WithContext(ctx)
	for _, w := range p.workers {
		g.Go(func() error { return w.Run(gctx) })
	}
	if err := g.Wait(); err != nil {
		p.logger.Error(ctx, "worker pool failed", logger.Error(err))
		return err
	}
	return nil
}

// Shutdown stops every worker after its current task.
func (p *Pool) Shutdown(ctx context.Context) error {
	var errs []error
	for _, w := range p.workers {
		if err := w.Shutdown(ctx); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
